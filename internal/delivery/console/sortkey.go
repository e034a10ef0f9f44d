package console

import (
	"strconv"
	"strings"

	"github.com/run651/rakumart-1688/internal/domain"
)

// sortKey orders numbers before text. Missing values are placed by the
// caller.
type sortKey struct {
	missing bool
	numeric bool
	num     float64
	text    string
}

func sortKeyOf(v any) sortKey {
	switch t := v.(type) {
	case nil:
		return sortKey{missing: true}
	case float64:
		return sortKey{numeric: true, num: t}
	case string:
		if n, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			return sortKey{numeric: true, num: n}
		}
		return sortKey{text: strings.ToLower(t)}
	}
	return sortKey{text: strings.ToLower(domain.FormatValue(v))}
}

func (k sortKey) less(o sortKey) bool {
	switch {
	case k.numeric != o.numeric:
		return k.numeric
	case k.numeric:
		return k.num < o.num
	}
	return k.text < o.text
}
