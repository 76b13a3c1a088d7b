package httpapi

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// formErrors maps a form field name to the message shown next to it.
type formErrors map[string]string

func (e formErrors) Error() string {
	fields := make([]string, 0, len(e))
	for f, msg := range e {
		fields = append(fields, f+": "+msg)
	}
	sort.Strings(fields)
	return "invalid form: " + strings.Join(fields, "; ")
}

var (
	slugPattern    = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
	validatorsOnce sync.Once
)

// registerValidators teaches gin's validator the form tag names and the slug rule.
func registerValidators() {
	validatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
		_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
			return slugPattern.MatchString(fl.Field().String())
		})
	})
}

// bindErrors turns a binding failure into per-field messages.
func bindErrors(err error) formErrors {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return formErrors{"__all__": "The submitted form could not be read."}
	}
	out := formErrors{}
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; seen {
			continue
		}
		out[fe.Field()] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	case "slug":
		return "Enter a valid value consisting of letters, numbers, underscores or hyphens."
	}
	return "Enter a valid value."
}

type userForm struct {
	Username  string `form:"username" binding:"required,max=100,slug"`
	Email     string `form:"email" binding:"required,max=254,email"`
	FirstName string `form:"first_name" binding:"max=100"`
	LastName  string `form:"last_name" binding:"max=100"`
	Bio       string `form:"bio"`
}

type postForm struct {
	Title   string `form:"title" binding:"required,max=200"`
	Content string `form:"content" binding:"required"`
}

type groupForm struct {
	Name        string `form:"name" binding:"required,max=100"`
	Description string `form:"description"`
}

type loginForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
	Next     string `form:"next"`
}
