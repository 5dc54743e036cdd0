package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// validate checks request DTOs against their `validate` struct tags.
// Field names in messages use the json tag so they match the request body.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeBody reads a JSON body into dst and validates it.
// The returned message is suitable for a 400 or 422 response.
func decodeBody(r *http.Request, dst any) (status int, message string, ok bool) {
	if err := render.DecodeJSON(r.Body, dst); err != nil {
		if errors.Is(err, io.EOF) {
			return http.StatusBadRequest, "request body is required", false
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return http.StatusRequestEntityTooLarge, "request body too large", false
		}
		return http.StatusBadRequest, "malformed JSON: " + err.Error(), false
	}
	if err := validate.Struct(dst); err != nil {
		return http.StatusUnprocessableEntity, validationMessage(err), false
	}
	return 0, "", true
}

// validationMessage renders validator errors as "field: rule" pairs.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Namespace()[strings.Index(fe.Namespace(), ".")+1:], rule))
	}
	return strings.Join(parts, "; ")
}

// pathUUID binds a required UUID path parameter.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid format for parameter %s: %w", name, err)
	}
	return id, nil
}

// queryUUID binds an optional UUID query parameter.
func queryUUID(r *http.Request, name string) (*uuid.UUID, error) {
	var id *openapi_types.UUID
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), &id); err != nil {
		return nil, fmt.Errorf("invalid format for parameter %s: %w", name, err)
	}
	return id, nil
}

// queryInt binds an optional integer query parameter.
func queryInt(r *http.Request, name string) (*int, error) {
	var n *int
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), &n); err != nil {
		return nil, fmt.Errorf("invalid format for parameter %s: %w", name, err)
	}
	return n, nil
}

// queryString binds an optional string query parameter, returning "" when absent.
func queryString(r *http.Request, name string) (string, error) {
	var s *string
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), &s); err != nil {
		return "", fmt.Errorf("invalid format for parameter %s: %w", name, err)
	}
	if s == nil {
		return "", nil
	}
	return *s, nil
}

// queryBool binds an optional boolean query parameter, false when absent.
func queryBool(r *http.Request, name string) (bool, error) {
	var b *bool
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), &b); err != nil {
		return false, fmt.Errorf("invalid format for parameter %s: %w", name, err)
	}
	return b != nil && *b, nil
}

// dayIn places a calendar date at midnight in loc.
func dayIn(d openapi_types.Date, loc *time.Location) time.Time {
	if d.Time.IsZero() {
		return time.Time{}
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
}

// dateOf renders t as a calendar date in loc.
func dateOf(t time.Time, loc *time.Location) openapi_types.Date {
	return openapi_types.Date{Time: t.In(loc)}
}
