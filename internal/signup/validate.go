// internal/signup/validate.go
//
// Waitlist signup: server-side validation and normalization.
//
// Context
// -------
// Validate is the only gate between raw input and the store.  It trims
// every field, lower-cases the email, and then checks the normalized
// Request against go-playground/validator tags plus two custom rules:
//
//   - waitlist_email     – ^[^\s@]+@[^\s@]+\.[^\s@]+$, where \s is any
//                          Unicode whitespace, not only ASCII
//   - waitlist_category  – one of Categories
//
// Every failing field is reported (collect-all), one error per field,
// in declaration order.  The function is pure and safe for concurrent use.
package signup

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// emailChar is any rune except '@' and whitespace.  RE2's \s is ASCII only,
// so the class also excludes \v, Unicode separators, and the BOM.
const emailChar = `[^\s\v\p{Z}\x{FEFF}@]`

var emailPattern = regexp.MustCompile(`^` + emailChar + `+@` + emailChar + `+\.` + emailChar + `+$`)

// structFields maps Request struct field names to form keys.
var structFields = map[string]Field{
	"FirstName": FieldFirstName,
	"LastName":  FieldLastName,
	"Email":     FieldEmail,
	"Category":  FieldCategory,
}

var v = newValidator()

func newValidator() *validator.Validate {
	vd := validator.New(validator.WithRequiredStructEnabled())
	mustRegister(vd, "waitlist_email", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	mustRegister(vd, "waitlist_category", func(fl validator.FieldLevel) bool {
		return IsCategory(fl.Field().String())
	})
	return vd
}

func mustRegister(vd *validator.Validate, tag string, fn validator.Func) {
	if err := vd.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("signup: register %s: %v", tag, err))
	}
}

// IsCategory reports whether s is an accepted category value.
func IsCategory(s string) bool {
	for _, c := range Categories {
		if string(c) == s {
			return true
		}
	}
	return false
}

// Normalize trims every field and lower-cases the email.  It performs no
// checks; Validate calls it before applying the rules.
func Normalize(raw Fields) Request {
	return Request{
		FirstName: strings.TrimSpace(raw.FirstName),
		LastName:  strings.TrimSpace(raw.LastName),
		Email:     strings.ToLower(strings.TrimSpace(raw.Email)),
		Category:  Category(strings.TrimSpace(raw.Category)),
	}
}

// Validate normalizes raw and checks it.  On success the error slice is
// nil.  On failure the returned Request is the zero value.
func Validate(raw Fields) (Request, []FieldError) {
	req := Normalize(raw)

	err := v.Struct(&req)
	if err == nil {
		return req, nil
	}

	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return Request{}, []FieldError{{Rule: "internal", Message: "Invalid input."}}
	}

	errs := make([]FieldError, 0, len(ves))
	for _, fe := range ves {
		errs = append(errs, FieldError{
			Field:   structFields[fe.StructField()],
			Rule:    fe.Tag(),
			Message: ruleMessage(fe),
		})
	}
	return Request{}, errs
}

// ruleMessage returns the user-facing text for one failed rule.
func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Must be at most %s characters.", fe.Param())
	case "waitlist_email":
		return "Please enter a valid email address."
	case "waitlist_category":
		return "Please select one of the listed categories."
	default:
		return "Invalid input."
	}
}
