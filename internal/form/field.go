package form

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind is the input kind of a field. It decides how raw text is coerced
// before validation and which JSON type the field has.
type Kind int

const (
	Text Kind = iota
	LongText
	Email
	URL
	Color
	Date
	Number
	Integer
	Bool
)

func (k Kind) String() string {
	switch k {
	case LongText:
		return "long text"
	case Email:
		return "email"
	case URL:
		return "url"
	case Color:
		return "color"
	case Date:
		return "date"
	case Number:
		return "number"
	case Integer:
		return "integer"
	case Bool:
		return "bool"
	default:
		return "text"
	}
}

func (k Kind) jsonType() string {
	switch k {
	case Number:
		return "number"
	case Integer:
		return "integer"
	case Bool:
		return "boolean"
	default:
		return "string"
	}
}

// IsString reports whether values of this kind stay strings after coercion.
func (k Kind) IsString() bool {
	return k.jsonType() == "string"
}

// Field describes one input of a form and its constraints.
type Field struct {
	Name        string
	Label       string
	Kind        Kind
	Placeholder string
	Required    bool
	MinLength   int
	Min         *float64
	Max         *float64
	Pattern     string
	// Blank is the value the field resets to.
	Blank string
	// Messages maps a JSON Schema keyword to the message shown when it fails.
	Messages map[string]string
}

// NewField starts a field definition.
func NewField(name, label string, kind Kind) Field {
	f := Field{Name: name, Label: label, Kind: kind}
	switch kind {
	case Number, Integer:
		f.Blank = "0"
	case Bool:
		f.Blank = "false"
	}
	return f
}

func (f Field) message(keyword, msg string) Field {
	m := make(map[string]string, len(f.Messages)+1)
	for k, v := range f.Messages {
		m[k] = v
	}
	if msg != "" {
		m[keyword] = msg
	}
	f.Messages = m
	return f
}

// Require marks the field as required. Required text must be non-empty.
func (f Field) Require(msg string) Field {
	f.Required = true
	if f.Kind.IsString() && f.MinLength < 1 {
		f.MinLength = 1
		f = f.message("minLength", msg)
	}
	return f.message("required", msg)
}

// MinLen sets a minimum text length. It implies Require.
func (f Field) MinLen(n int, msg string) Field {
	f = f.Require(msg)
	f.MinLength = n
	return f.message("minLength", msg)
}

// AtLeast sets an inclusive lower bound.
func (f Field) AtLeast(v float64, msg string) Field {
	f.Min = &v
	return f.message("minimum", msg)
}

// AtMost sets an inclusive upper bound.
func (f Field) AtMost(v float64, msg string) Field {
	f.Max = &v
	return f.message("maximum", msg)
}

// Match constrains text to a regular expression.
func (f Field) Match(pattern, msg string) Field {
	f.Pattern = pattern
	return f.message("pattern", msg)
}

// Invalid sets the message for a malformed value, such as a bad email or date.
func (f Field) Invalid(msg string) Field {
	return f.message("format", msg).message("type", msg)
}

// Hint sets the placeholder text.
func (f Field) Hint(placeholder string) Field {
	f.Placeholder = placeholder
	return f
}

// schema returns the JSON Schema property for the field.
func (f Field) schema() map[string]any {
	p := map[string]any{"type": f.Kind.jsonType()}
	if f.MinLength > 0 {
		p["minLength"] = f.MinLength
	}
	if f.Min != nil {
		p["minimum"] = *f.Min
	}
	if f.Max != nil {
		p["maximum"] = *f.Max
	}
	if f.Pattern != "" {
		p["pattern"] = f.Pattern
	}
	switch f.Kind {
	case Email:
		p["format"] = "email"
	case Date:
		p["format"] = "date"
	case URL:
		p["format"] = "uri"
	}
	return p
}

// decode coerces raw input to the field's type. ok is false when the field
// was left empty and should be absent from the decoded values.
func (f Field) decode(raw string) (v any, ok bool, err error) {
	text := strings.TrimSpace(raw)
	switch f.Kind {
	case Number, Integer:
		if text == "" {
			return nil, false, nil
		}
		n, err := strconv.ParseFloat(text, 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return nil, false, fmt.Errorf("%s must be a number.", f.Label)
		}
		return n, true, nil
	case Bool:
		switch strings.ToLower(text) {
		case "", "false", "no", "n", "0", "off":
			return false, true, nil
		case "true", "yes", "y", "1", "on":
			return true, true, nil
		}
		return nil, false, fmt.Errorf("%s must be yes or no.", f.Label)
	default:
		if text == "" && !f.Required {
			return nil, false, nil
		}
		return text, true, nil
	}
}
