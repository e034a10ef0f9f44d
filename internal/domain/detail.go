package domain

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cast"
)

// ProductDetail is the payload of the detail endpoint. Images and
// Description are pulled out for enrichment; Raw keeps the full document.
type ProductDetail struct {
	Images      []string
	Description string
	Raw         map[string]any
}

// UnmarshalJSON decodes the detail object and extracts images and
// description when they have the expected shape.
func (d *ProductDetail) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := ProductDetail{Raw: raw}
	if list, ok := raw["images"].([]any); ok {
		out.Images = make([]string, 0, len(list))
		for _, v := range list {
			if s, ok := v.(string); ok && s != "" {
				out.Images = append(out.Images, s)
			}
		}
	}
	if s, ok := raw["description"].(string); ok {
		out.Description = s
	}
	*d = out
	return nil
}

// MarshalJSON writes the full detail document.
func (d ProductDetail) MarshalJSON() ([]byte, error) {
	if d.Raw != nil {
		return json.Marshal(d.Raw)
	}
	return json.Marshal(map[string]any{"images": d.Images, "description": d.Description})
}

// ImageSearch is the result of an image-id lookup.
type ImageSearch struct {
	ImageID string `json:"imageId"`
	Link    string `json:"link"`
}

// Logistics is one carrier supported by the account.
type Logistics struct {
	ID   Flex   `json:"id"`
	Name string `json:"name"`
}

// Tag is one labelling option supported by the warehouse.
type Tag struct {
	Type     string `json:"type"`
	Japanese string `json:"japanese"`
}

// Payload is an order-side API response body whose shape is not fixed. The
// helpers navigate it without failing on unexpected types.
type Payload struct {
	Value any
}

// NewPayload decodes raw JSON into a Payload.
func NewPayload(data []byte) (*Payload, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return &Payload{Value: v}, nil
}

// MarshalJSON writes the wrapped value.
func (p Payload) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Value)
}

// UnmarshalJSON stores the decoded value.
func (p *Payload) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &p.Value)
}

// IsEmpty reports whether the payload carries nothing useful.
func (p *Payload) IsEmpty() bool {
	if p == nil || p.Value == nil {
		return true
	}
	switch v := p.Value.(type) {
	case []any:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	case string:
		return v == ""
	}
	return false
}

// Field walks nested objects by key and returns the value found, or nil.
func (p *Payload) Field(path ...string) any {
	if p == nil {
		return nil
	}
	cur := p.Value
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[key]
	}
	return cur
}

// String returns the field at path rendered as text, empty when absent.
func (p *Payload) String(path ...string) string {
	return FormatValue(p.Field(path...))
}

// FormatValue renders a generic JSON value as text: nil is empty and
// containers are written as compact JSON.
func FormatValue(v any) string {
	switch v.(type) {
	case nil:
		return ""
	case map[string]any, []any, []string:
		b, _ := json.Marshal(v)
		return string(b)
	}
	return cast.ToString(v)
}

// Items returns the list found at path. With no path it returns the payload
// itself when it is a list, or the first of "data", "list", "items" that is.
func (p *Payload) Items(path ...string) []map[string]any {
	var v any
	if len(path) > 0 {
		v = p.Field(path...)
	} else if p != nil {
		v = p.Value
		if _, ok := v.([]any); !ok {
			for _, key := range []string{"data", "list", "items"} {
				if list, ok := p.Field(key).([]any); ok {
					v = list
					break
				}
			}
		}
	}
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

// Pretty renders the payload as indented JSON.
func (p *Payload) Pretty() string {
	if p == nil {
		return "null"
	}
	b, err := json.MarshalIndent(p.Value, "", "  ")
	if err != nil {
		return fmt.Sprint(p.Value)
	}
	return strings.TrimSpace(string(b))
}
