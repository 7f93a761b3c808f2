package coach

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var ErrUnknownTool = errors.New("unknown tool")

// ValidationError reports tool input that does not match the tool schema. The tool did
// not run.
type ValidationError struct {
	Tool     string   `json:"tool"`
	Problems []string `json:"problems"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid input for %s: %s", e.Tool, strings.Join(e.Problems, "; "))
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(sf reflect.StructField) string {
		return jsonName(sf)
	})
	return v
}

// decodeInput strictly decodes raw into a new In and validates it. Unknown fields,
// trailing data and constraint violations are all reported as *ValidationError.
func decodeInput[In any](tool string, raw json.RawMessage) (In, error) {
	var in In
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		trimmed = []byte("{}")
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		return in, &ValidationError{Tool: tool, Problems: []string{decodeProblem(err)}}
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return in, &ValidationError{Tool: tool, Problems: []string{"unexpected data after input object"}}
	}

	if err := validate.Struct(&in); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return in, &ValidationError{Tool: tool, Problems: []string{err.Error()}}
		}
		problems := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			problems = append(problems, describe(fe))
		}
		return in, &ValidationError{Tool: tool, Problems: problems}
	}

	return in, nil
}

func decodeProblem(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return fmt.Sprintf("%s must be of type %s", typeErr.Field, typeErr.Type.String())
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return "input is not valid JSON"
	}
	return err.Error()
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "uuid":
		return field + " must be a UUID"
	case "datetime":
		return fmt.Sprintf("%s must be a date formatted %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
