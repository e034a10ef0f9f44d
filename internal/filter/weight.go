package filter

import (
	"regexp"
	"strings"
)

// Grams per unit.
const (
	gramsPerKilogram = 1000.0
	gramsPerPound    = 453.592
	gramsPerOunce    = 28.3495
)

// bareKilogramThreshold: unit-less values above it are read as kilograms.
const bareKilogramThreshold = 10.0

var weightUnits = map[string]float64{
	"":          1,
	"g":         1,
	"gr":        1,
	"gram":      1,
	"grams":     1,
	"克":         1,
	"kg":        gramsPerKilogram,
	"kgs":       gramsPerKilogram,
	"kilo":      gramsPerKilogram,
	"kilogram":  gramsPerKilogram,
	"kilograms": gramsPerKilogram,
	"公斤":        gramsPerKilogram,
	"千克":        gramsPerKilogram,
	"lb":        gramsPerPound,
	"lbs":       gramsPerPound,
	"pound":     gramsPerPound,
	"pounds":    gramsPerPound,
	"oz":        gramsPerOunce,
	"ounce":     gramsPerOunce,
	"ounces":    gramsPerOunce,
}

var weightPattern = regexp.MustCompile(`^(\d[\d.,]*)\s*(\S*)$`)

// ParseWeight normalizes a weight value to grams. Strings may carry a unit
// suffix (kg, g, lb, oz and their Chinese forms). A value without a unit is
// taken as grams unless it exceeds 10, in which case it is read as
// kilograms.
func ParseWeight(v any) (float64, bool) {
	if s, ok := v.(string); ok {
		return parseWeightString(s)
	}
	n, ok := number(v)
	if !ok || n < 0 {
		return 0, false
	}
	return bare(n), true
}

func parseWeightString(s string) (float64, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	m := weightPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	n, ok := number(normalizeSeparators(m[1]))
	if !ok {
		return 0, false
	}
	unit := strings.TrimSuffix(m[2], ".")
	factor, known := weightUnits[unit]
	if !known {
		return 0, false
	}
	if unit == "" {
		return bare(n), true
	}
	return n * factor, true
}

func bare(n float64) float64 {
	if n > bareKilogramThreshold {
		return n * gramsPerKilogram
	}
	return n
}
