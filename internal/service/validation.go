package service

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	appErrors "github.com/unclebandit/mailto-campaigns/internal/errors"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	slugPattern  = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// IsValidEmail applies the same basic local@domain.tld check the form uses.
func IsValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

func IsValidSlug(s string) bool {
	return len(s) <= 64 && slugPattern.MatchString(s)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("mailbox", func(fl validator.FieldLevel) bool {
		return IsValidEmail(fl.Field().String())
	})
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return IsValidSlug(fl.Field().String())
	})
	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := parseDateField(fl.Field().String())
		return err == nil
	})
	return v
}

// validateStruct runs the tag rules and reports the first failure as a
// ValidationError with wording fit for end users.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	field := fieldName(fe)
	return appErrors.NewValidation(field, messageFor(fe, field))
}

// fieldName strips the struct prefix and any slice index from the namespace.
func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		ns = rest
	}
	if i := strings.IndexByte(ns, '['); i >= 0 {
		ns = ns[:i]
	}
	return ns
}

func messageFor(fe validator.FieldError, field string) string {
	label := strings.ReplaceAll(field, "_", " ")
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s needs at least %s address", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "max":
		return fmt.Sprintf("%s is too long", label)
	case "mailbox":
		return fmt.Sprintf("%q is not a valid email address", fe.Value())
	case "slug":
		return "slug may only contain lowercase letters, digits and single hyphens"
	case "isodate":
		return label + " must be a date in YYYY-MM-DD format"
	case "url":
		return label + " must be a valid URL"
	}
	return label + " is invalid"
}
