package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/fwojciec/cookbook"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// decode reads a JSON body into v and validates it. On failure the error
// response has been written and decode returns false.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.Error(w, r, cookbook.Errorf(cookbook.EINVALID, "Invalid JSON body"))
		return false
	}
	if err := validate.Struct(v); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:  "Invalid request data",
			Code:   cookbook.EINVALID,
			Fields: validationFields(err),
		})
		return false
	}
	return true
}

// validationFields formats validation errors by field name.
func validationFields(err error) map[string]string {
	fields := make(map[string]string)

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		fields["body"] = "Invalid request format"
		return fields
	}

	for _, e := range verrs {
		name := e.Field()
		switch e.Tag() {
		case "required", "notblank":
			fields[name] = "This field is required"
		case "url", "http_url":
			fields[name] = "Must be a valid URL"
		case "max", "lte":
			fields[name] = fmt.Sprintf("Must be at most %s", e.Param())
		case "min", "gte":
			fields[name] = fmt.Sprintf("Must be at least %s", e.Param())
		case "oneof":
			fields[name] = fmt.Sprintf("Must be one of: %s", e.Param())
		default:
			fields[name] = "Invalid value"
		}
	}
	return fields
}

// queryInt parses an optional integer query parameter bounded by [min, max].
func queryInt(r *http.Request, name string, def, min, max int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < min || n > max {
		return 0, cookbook.Errorf(cookbook.EINVALID, "%s must be an integer between %d and %d", name, min, max)
	}
	return n, nil
}
