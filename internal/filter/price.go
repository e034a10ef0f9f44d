package filter

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/run651/rakumart-1688/internal/domain"
)

var nonNumeric = regexp.MustCompile(`[^\d.,]`)

// SourcePrice returns the listed price in source currency. Each of PriceKeys
// is tried in order and the first parsable value wins.
func SourcePrice(p *domain.Product) (decimal.Decimal, bool) {
	for _, key := range PriceKeys {
		if d, ok := ParsePrice(p.Get(key)); ok {
			return d, true
		}
	}
	return decimal.Decimal{}, false
}

// TargetPrice converts the source price with the given rate. A rate that is
// not a positive finite number is replaced by DefaultExchangeRate.
func TargetPrice(p *domain.Product, rate float64) (decimal.Decimal, bool) {
	d, ok := SourcePrice(p)
	if !ok {
		return decimal.Decimal{}, false
	}
	return d.Mul(decimal.NewFromFloat(effectiveRate(rate))), true
}

func effectiveRate(rate float64) float64 {
	if rate > 0 && finite(rate) {
		return rate
	}
	return DefaultExchangeRate
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// ParsePrice reads a price that may carry currency symbols and separators,
// e.g. "¥1,234.50" or "12,5". Text that is already a number is taken as is
// and must be finite. A minus sign before the first digit is kept.
func ParsePrice(v any) (decimal.Decimal, bool) {
	switch t := v.(type) {
	case nil, bool, map[string]any, []any:
		return decimal.Decimal{}, false
	case string:
		return parsePriceText(t)
	}
	f, ok := number(v)
	if !ok || !finite(f) {
		return decimal.Decimal{}, false
	}
	return decimal.NewFromFloat(f), true
}

func parsePriceText(text string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(text)
	if f, err := strconv.ParseFloat(s, 64); err == nil || errors.Is(err, strconv.ErrRange) {
		if !finite(f) {
			return decimal.Decimal{}, false
		}
		if d, err := decimal.NewFromString(s); err == nil {
			return d, true
		}
		return decimal.NewFromFloat(f), true
	}

	clean := normalizeSeparators(nonNumeric.ReplaceAllString(s, ""))
	if clean == "" {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Decimal{}, false
	}
	if negativeSign(s) {
		d = d.Neg()
	}
	return d, true
}

// negativeSign reports whether a '-' appears before the first digit.
func negativeSign(s string) bool {
	i := strings.IndexAny(s, "0123456789")
	return i > 0 && strings.Contains(s[:i], "-")
}

// normalizeSeparators turns a digits-and-separators string into a plain
// decimal. With both ',' and '.', commas group thousands. With commas only,
// a single comma followed by one or two digits is the decimal point and any
// other comma groups thousands.
func normalizeSeparators(s string) string {
	hasDot := strings.Contains(s, ".")
	commas := strings.Count(s, ",")
	switch {
	case commas == 0:
	case hasDot:
		s = strings.ReplaceAll(s, ",", "")
	case commas == 1 && isDecimalTail(s[strings.Index(s, ",")+1:]):
		s = strings.Replace(s, ",", ".", 1)
	default:
		s = strings.ReplaceAll(s, ",", "")
	}
	if strings.Count(s, ".") > 1 {
		return ""
	}
	return s
}

func isDecimalTail(s string) bool {
	if len(s) < 1 || len(s) > 2 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
