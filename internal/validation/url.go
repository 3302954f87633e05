// Package validation checks submitted URLs: their syntax and, optionally,
// whether they answer an HTTP request.
package validation

import (
	"github.com/go-playground/validator/v10"
)

const urlRules = "required,max=2048,http_url"

// URLValidator checks URL syntax. A URL is valid when it is absolute, uses the
// http or https scheme and has a host.
type URLValidator struct {
	validate *validator.Validate
}

func NewURLValidator(validate *validator.Validate) *URLValidator {
	if validate == nil {
		validate = validator.New()
	}

	return &URLValidator{validate: validate}
}

func (v *URLValidator) IsValidURL(rawURL string) bool {
	return v.validate.Var(rawURL, urlRules) == nil
}
