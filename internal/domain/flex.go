package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Flex is a JSON scalar the API sends either as a string or as a number
// (prices, counters, error codes). It remembers which form it arrived in so
// that re-encoding produces the same JSON.
type Flex struct {
	Text   string
	Quoted bool
	Valid  bool
}

// FlexString builds a quoted Flex value.
func FlexString(s string) Flex {
	return Flex{Text: s, Quoted: true, Valid: true}
}

// FlexNumber builds an unquoted numeric Flex value.
func FlexNumber(f float64) Flex {
	return Flex{Text: strconv.FormatFloat(f, 'f', -1, 64), Valid: true}
}

// UnmarshalJSON accepts strings, numbers and null. Objects, arrays and
// booleans are rejected so callers can keep them as generic values.
func (f *Flex) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = Flex{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("flex value must be a string or number, got %s", kindOf(data))
	}
	*f = Flex{Text: n.String(), Valid: true}
	return nil
}

func kindOf(data []byte) string {
	if len(data) == 0 {
		return "nothing"
	}
	switch data[0] {
	case '{':
		return "object"
	case '[':
		return "array"
	case 't', 'f':
		return "boolean"
	}
	return "literal"
}

// MarshalJSON writes the value back in its original form.
func (f Flex) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	if f.Quoted {
		return json.Marshal(f.Text)
	}
	return []byte(f.Text), nil
}

// String returns the textual form, empty when absent.
func (f Flex) String() string {
	return f.Text
}

// IsZero reports whether the value is absent or blank.
func (f Flex) IsZero() bool {
	return !f.Valid || f.Text == ""
}

// Int returns the value as an integer when it is a plain integer.
func (f Flex) Int() (int, bool) {
	if f.IsZero() {
		return 0, false
	}
	n, err := strconv.Atoi(f.Text)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Value returns the value in the form a generic JSON decoder would produce:
// string for quoted values, float64 for numbers, nil when absent.
func (f Flex) Value() any {
	if !f.Valid {
		return nil
	}
	if f.Quoted {
		return f.Text
	}
	if n, err := strconv.ParseFloat(f.Text, 64); err == nil {
		return n
	}
	return f.Text
}
