package coach

import (
	"reflect"
	"strconv"
	"strings"
)

// Field describes one tool input parameter.
type Field struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Required    bool     `json:"required"`
	Enum        []string `json:"enum,omitempty"`
	Minimum     *float64 `json:"minimum,omitempty"`
	Maximum     *float64 `json:"maximum,omitempty"`

	// ExclusiveMinimum and ExclusiveMaximum come from gt and lt rules.
	ExclusiveMinimum *float64 `json:"exclusive_minimum,omitempty"`
	ExclusiveMaximum *float64 `json:"exclusive_maximum,omitempty"`

	Format      string `json:"format,omitempty"`
	Description string `json:"description,omitempty"`
}

// Schema is the declared input of a tool, derived from the tags of its input struct:
// json names the field, jsonschema describes it and validate carries the constraints.
type Schema struct {
	Fields []Field `json:"fields"`
}

func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

func schemaFor(t reflect.Type) Schema {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	s := Schema{Fields: []Field{}}
	if t.Kind() != reflect.Struct {
		return s
	}

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name := jsonName(sf)
		if name == "" {
			continue
		}

		f := Field{
			Name:        name,
			Type:        jsonType(sf.Type),
			Description: sf.Tag.Get("jsonschema"),
		}
		applyValidateTag(&f, sf.Tag.Get("validate"))
		s.Fields = append(s.Fields, f)
	}

	return s
}

func jsonName(sf reflect.StructField) string {
	tag := sf.Tag.Get("json")
	if tag == "-" {
		return ""
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" {
		return sf.Name
	}
	return name
}

func jsonType(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Slice, reflect.Array:
		return "array"
	default:
		return "object"
	}
}

func applyValidateTag(f *Field, tag string) {
	if tag == "" {
		return
	}
	for _, rule := range strings.Split(tag, ",") {
		key, value, _ := strings.Cut(rule, "=")
		switch key {
		case "required":
			f.Required = true
		case "oneof":
			f.Enum = strings.Fields(value)
		case "uuid":
			f.Format = "uuid"
		case "datetime":
			if value == "2006-01-02" {
				f.Format = "date"
			}
		case "min", "gte":
			if isNumeric(f.Type) {
				f.Minimum = parseBound(value)
			}
		case "gt":
			if isNumeric(f.Type) {
				f.ExclusiveMinimum = parseBound(value)
			}
		case "max", "lte":
			if isNumeric(f.Type) {
				f.Maximum = parseBound(value)
			}
		case "lt":
			if isNumeric(f.Type) {
				f.ExclusiveMaximum = parseBound(value)
			}
		}
	}
}

func isNumeric(typ string) bool {
	return typ == "integer" || typ == "number"
}

func parseBound(v string) *float64 {
	b, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil
	}
	return &b
}
