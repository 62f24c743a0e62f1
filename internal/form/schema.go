package form

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const schemaBase = "https://shopdash.local/forms/"

var printer = message.NewPrinter(language.English)

// Values holds raw field input keyed by field name.
type Values map[string]string

// Clone returns a copy of v.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// Schema is a compiled set of fields.
type Schema struct {
	name     string
	fields   []Field
	index    map[string]int
	compiled *jsonschema.Schema
}

// NewSchema compiles fields into a JSON Schema validator.
func NewSchema(name string, fields ...Field) (*Schema, error) {
	s := &Schema{
		name:   name,
		fields: fields,
		index:  make(map[string]int, len(fields)),
	}
	for i, f := range fields {
		if _, dup := s.index[f.Name]; dup {
			return nil, fmt.Errorf("form %s: duplicate field %q", name, f.Name)
		}
		s.index[f.Name] = i
	}

	doc, err := toJSONValue(s.Document())
	if err != nil {
		return nil, fmt.Errorf("form %s: encode schema: %w", name, err)
	}

	url := schemaBase + name + ".json"
	c := jsonschema.NewCompiler()
	c.AssertFormat()
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("form %s: add schema: %w", name, err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("form %s: compile schema: %w", name, err)
	}
	s.compiled = compiled
	return s, nil
}

// MustSchema is like NewSchema but panics on error.
func MustSchema(name string, fields ...Field) *Schema {
	s, err := NewSchema(name, fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// Name returns the schema name.
func (s *Schema) Name() string {
	return s.name
}

// Fields returns the fields in display order.
func (s *Schema) Fields() []Field {
	return s.fields
}

// Field looks up a field by name.
func (s *Schema) Field(name string) (Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// Blank returns the blank shape of the form.
func (s *Schema) Blank() Values {
	v := make(Values, len(s.fields))
	for _, f := range s.fields {
		v[f.Name] = f.Blank
	}
	return v
}

// Document returns the JSON Schema document for the form.
func (s *Schema) Document() map[string]any {
	props := make(map[string]any, len(s.fields))
	var required []string
	for _, f := range s.fields {
		props[f.Name] = f.schema()
		if f.Required {
			required = append(required, f.Name)
		}
	}
	doc := map[string]any{
		"$schema":    "https://json-schema.org/draft/2020-12/schema",
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		doc["required"] = required
	}
	return doc
}

// Validate coerces raw input and validates it. On success it returns typed
// values for every field, with nil for optional fields left empty. On
// failure it returns ValidationErrors with one message per invalid field.
func (s *Schema) Validate(raw Values) (map[string]any, error) {
	failed := make(map[string]string)
	decoded := make(map[string]any, len(s.fields))
	present := make(map[string]any, len(s.fields))

	for _, f := range s.fields {
		v, ok, err := f.decode(raw[f.Name])
		if err != nil {
			if msg, ok := f.Messages["type"]; ok {
				failed[f.Name] = msg
			} else {
				failed[f.Name] = err.Error()
			}
			continue
		}
		if !ok {
			decoded[f.Name] = nil
			continue
		}
		if f.Kind == Integer {
			if n, isNum := v.(float64); isNum && n == float64(int64(n)) {
				decoded[f.Name] = int64(n)
			} else {
				decoded[f.Name] = v
			}
		} else {
			decoded[f.Name] = v
		}
		present[f.Name] = v
	}

	inst, err := toJSONValue(present)
	if err != nil {
		return nil, fmt.Errorf("form %s: encode values: %w", s.name, err)
	}
	if err := s.compiled.Validate(inst); err != nil {
		var ve *jsonschema.ValidationError
		if !errors.As(err, &ve) {
			return nil, fmt.Errorf("form %s: validate: %w", s.name, err)
		}
		s.collect(ve, present, failed)
	}

	if len(failed) > 0 {
		return nil, s.errorsFrom(failed)
	}
	return decoded, nil
}

// collect walks the leaves of a validation error tree and records the first
// message per field.
func (s *Schema) collect(ve *jsonschema.ValidationError, present map[string]any, failed map[string]string) {
	if len(ve.Causes) > 0 {
		for _, cause := range ve.Causes {
			s.collect(cause, present, failed)
		}
		return
	}

	keyword := ""
	if path := ve.ErrorKind.KeywordPath(); len(path) > 0 {
		keyword = path[len(path)-1]
	}

	if req, ok := ve.ErrorKind.(*kind.Required); ok {
		for _, name := range req.Missing {
			s.fail(failed, name, "required", "")
		}
		return
	}
	if len(ve.InstanceLocation) == 0 {
		if keyword == "required" {
			for _, f := range s.fields {
				if _, ok := present[f.Name]; f.Required && !ok {
					s.fail(failed, f.Name, "required", "")
				}
			}
		}
		return
	}
	s.fail(failed, ve.InstanceLocation[0], keyword, ve.ErrorKind.LocalizedString(printer))
}

func (s *Schema) fail(failed map[string]string, name, keyword, fallback string) {
	if _, seen := failed[name]; seen {
		return
	}
	f, ok := s.Field(name)
	if !ok {
		return
	}
	if msg, ok := f.Messages[keyword]; ok {
		failed[name] = msg
		return
	}
	if keyword == "required" || fallback == "" {
		failed[name] = f.Label + " is required."
		return
	}
	failed[name] = fallback
}

func (s *Schema) errorsFrom(failed map[string]string) ValidationErrors {
	errs := make(ValidationErrors, 0, len(failed))
	for name, msg := range failed {
		errs = append(errs, &ValidationError{Field: name, Message: msg})
	}
	sort.Slice(errs, func(i, j int) bool {
		return s.index[errs[i].Field] < s.index[errs[j].Field]
	})
	return errs
}

// toJSONValue round-trips v through JSON so numbers and collections have the
// representation the validator expects.
func toJSONValue(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return jsonschema.UnmarshalJSON(bytes.NewReader(b))
}
