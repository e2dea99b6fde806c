// Package validation wraps a shared go-playground validator configured with
// JSON field names and the custom rules used by recipe and user payloads.
package validation

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	instance *validator.Validate
)

// Get returns the process-wide validator.
func Get() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("image_ref", validateImageRef)
		instance = v
	})
	return instance
}

// Struct validates s and converts failures into a single readable error.
func Struct(s any) error {
	if err := Get().Struct(s); err != nil {
		return errors.New(Message(err))
	}
	return nil
}

// Message renders validator errors as "field: reason; field: reason".
func Message(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s: %s", fieldPath(fe), reason(fe)))
	}
	return strings.Join(parts, "; ")
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("needs at least %s item(s)", fe.Param())
		}
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("accepts at most %s item(s)", fe.Param())
		}
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "image_ref":
		return "must be an http(s) URL or a data:image URI"
	default:
		return fmt.Sprintf("failed %q", fe.Tag())
	}
}

// validateImageRef accepts absolute http(s) URLs and data:image/...;base64 URIs.
func validateImageRef(fl validator.FieldLevel) bool {
	raw := strings.TrimSpace(fl.Field().String())
	if raw == "" {
		return true
	}
	if strings.HasPrefix(raw, "data:image/") {
		return strings.Contains(raw, ";base64,")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
