// Package validation registers the project's form rules on gin's validator
// and turns validator errors into per-field messages for templates.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// NonFieldErrors is the key for errors that do not belong to a single field.
const NonFieldErrors = "__all__"

var (
	slugRegex     = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	usernameRegex = regexp.MustCompile(`^[\w.@+-]+$`)

	registerOnce sync.Once
	registerErr  error
)

// Register installs the custom rules (notblank, slug, username) and makes
// error field names follow the form/json tags. Safe to call repeatedly.
func Register() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = errors.New("gin validator engine is not go-playground/validator")
			return
		}
		v.RegisterTagNameFunc(tagName)
		if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
			registerErr = err
			return
		}
		if err := v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
			return slugRegex.MatchString(fl.Field().String())
		}); err != nil {
			registerErr = err
			return
		}
		registerErr = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return usernameRegex.MatchString(fl.Field().String())
		})
	})
	return registerErr
}

// MustRegister is Register for package initialisation paths.
func MustRegister() {
	if err := Register(); err != nil {
		panic(err)
	}
}

func tagName(field reflect.StructField) string {
	for _, key := range []string{"form", "json"} {
		name := strings.SplitN(field.Tag.Get(key), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return field.Name
}

// FieldErrors maps a binding error to messages keyed by form field name.
func FieldErrors(err error) map[string]string {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{NonFieldErrors: err.Error()}
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; !seen {
			out[fe.Field()] = message(fe)
		}
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "This field is required."
	case "min":
		return fmt.Sprintf("Ensure this value has at least %s characters.", fe.Param())
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	case "email":
		return "Enter a valid email address."
	case "eqfield":
		return "The two password fields didn't match."
	case "slug":
		return "Enter a valid slug consisting of letters, numbers, underscores or hyphens."
	case "username":
		return "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	}
	return "Enter a valid value."
}
