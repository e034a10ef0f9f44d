package rakumart

import (
	"fmt"
	"net/url"
	"strings"
)

// Field is one request field. A non-nil File makes it a multipart file part.
type Field struct {
	Name  string
	Value string
	File  *Attachment
}

// Attachment is an uploaded file.
type Attachment struct {
	Filename string
	Content  []byte
}

// Fields is an ordered request body.
type Fields []Field

// Add appends a plain field.
func (f *Fields) Add(name, value string) {
	*f = append(*f, Field{Name: name, Value: value})
}

// AddIf appends a plain field when value is not empty.
func (f *Fields) AddIf(name, value string) {
	if value != "" {
		f.Add(name, value)
	}
}

// AddFile appends a file part.
func (f *Fields) AddFile(name string, file Attachment) {
	*f = append(*f, Field{Name: name, File: &file})
}

// Get returns the first value stored under name.
func (f Fields) Get(name string) (string, bool) {
	for _, field := range f {
		if field.Name == name {
			return field.Value, true
		}
	}
	return "", false
}

// HasFiles reports whether any field is a file part.
func (f Fields) HasFiles() bool {
	for _, field := range f {
		if field.File != nil {
			return true
		}
	}
	return false
}

// Encode renders the fields as application/x-www-form-urlencoded, keeping
// their order.
func (f Fields) Encode() string {
	var b strings.Builder
	for i, field := range f {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(field.Name))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(field.Value))
	}
	return b.String()
}

// String lists the fields for verbose output. File contents are summarized.
func (f Fields) String() string {
	var b strings.Builder
	for _, field := range f {
		if field.File != nil {
			fmt.Fprintf(&b, "  %s = <file %s, %d bytes>\n", field.Name, field.File.Filename, len(field.File.Content))
			continue
		}
		fmt.Fprintf(&b, "  %s = %s\n", field.Name, field.Value)
	}
	return b.String()
}

// key builds an indexed name such as goods[0][price] or
// goods[0][props][1][key].
func key(prefix string, parts ...any) string {
	var b strings.Builder
	b.WriteString(prefix)
	for _, p := range parts {
		fmt.Fprintf(&b, "[%v]", p)
	}
	return b.String()
}
