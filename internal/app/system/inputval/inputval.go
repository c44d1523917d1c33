// Package inputval validates form input structs using `validate` struct tags
// and turns failures into user-facing messages built from `label` tags.
//
//	type signupInput struct {
//	    Username string `validate:"required,min=3,max=30,username" label:"Username"`
//	}
//
// Besides the go-playground/validator built-ins, the following tags are
// registered:
//
//   - username:       letters, digits, underscore and hyphen only
//   - strongpassword: 8..128 chars with lower, upper, digit and one of @$!%*?&
//   - notcommon:      rejects passwords containing well-known weak patterns
//   - trackingstatus: one of models.TrackingStatuses
package inputval

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/domain/models"
	"github.com/go-playground/validator/v10"
)

// PasswordSpecials is the set of special characters a password must draw from.
const PasswordSpecials = "@$!%*?&"

var (
	usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	// Full-string pattern: only allowed characters.
	passwordCharsRe = regexp.MustCompile(`^[A-Za-z\d@$!%*?&]{8,128}$`)

	weakPatterns = []string{
		"password", "123456", "qwerty", "admin",
		"letmein", "welcome", "monkey", "dragon",
	}
)

var (
	once sync.Once
	v    *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		v = validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			if l := f.Tag.Get("label"); l != "" {
				return l
			}
			return f.Name
		})
		must(v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return usernameRe.MatchString(fl.Field().String())
		}))
		must(v.RegisterValidation("strongpassword", func(fl validator.FieldLevel) bool {
			return IsStrongPassword(fl.Field().String())
		}))
		must(v.RegisterValidation("notcommon", func(fl validator.FieldLevel) bool {
			return !HasWeakPattern(fl.Field().String())
		}))
		must(v.RegisterValidation("trackingstatus", func(fl validator.FieldLevel) bool {
			return models.ValidStatus(models.TrackingStatus(fl.Field().String()))
		}))
	})
	return v
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// IsStrongPassword reports whether p is 8..128 characters drawn from letters,
// digits and PasswordSpecials, with at least one of each class.
func IsStrongPassword(p string) bool {
	if !passwordCharsRe.MatchString(p) {
		return false
	}
	var lower, upper, digit, special bool
	for _, r := range p {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(PasswordSpecials, r):
			special = true
		}
	}
	return lower && upper && digit && special
}

// HasWeakPattern reports whether p contains a well-known weak pattern,
// case-insensitively.
func HasWeakPattern(p string) bool {
	lp := strings.ToLower(p)
	for _, w := range weakPatterns {
		if strings.Contains(lp, w) {
			return true
		}
	}
	return false
}

// FieldError is one failed rule on one field.
type FieldError struct {
	Field   string
	Message string
}

// Result collects validation failures in struct field order.
type Result struct {
	Errors []FieldError
}

// HasErrors reports whether any rule failed.
func (r Result) HasErrors() bool { return len(r.Errors) > 0 }

// First returns the first message, or "" when valid.
func (r Result) First() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Message
}

// Messages returns every message in order.
func (r Result) Messages() []string {
	out := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		out = append(out, e.Message)
	}
	return out
}

// Validate checks s (a struct or pointer to struct) against its tags.
func Validate(s any) Result {
	err := instance().Struct(s)
	if err == nil {
		return Result{}
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Result{Errors: []FieldError{{Message: "Invalid input."}}}
	}

	res := Result{Errors: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		res.Errors = append(res.Errors, FieldError{
			Field:   fe.StructField(),
			Message: message(fe),
		})
	}
	return res
}

func message(fe validator.FieldError) string {
	label := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required.", label)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters.", label, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters.", label, fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address.", label)
	case "username":
		return fmt.Sprintf("%s may contain only letters, numbers, underscores and hyphens.", label)
	case "strongpassword":
		return fmt.Sprintf("%s must be 8-128 characters and include an uppercase letter, a lowercase letter, a number and one of %s.", label, PasswordSpecials)
	case "notcommon":
		return fmt.Sprintf("%s is too common. Please choose a stronger one.", label)
	case "oneof", "trackingstatus":
		return fmt.Sprintf("%s is invalid.", label)
	case "latitude", "longitude":
		return fmt.Sprintf("%s is out of range.", label)
	}
	return fmt.Sprintf("%s is invalid.", label)
}
