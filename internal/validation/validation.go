// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package validation sanitizes and validates single user supplied values against a declared
// field type. All functions are pure and safe for concurrent use.
package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

// FieldType is the declared shape of a value.
type FieldType string

const (
	TypeText     FieldType = "text"
	TypeEmail    FieldType = "email"
	TypeURL      FieldType = "url"
	TypePhone    FieldType = "phone"
	TypeTextarea FieldType = "textarea"
)

const (
	phoneMinDigits = 7
	phoneMaxDigits = 15
)

var emailRegExp = regexp.MustCompile(`^[a-zA-Z0-9.!#$%&'*+/=?^_{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*\.[a-zA-Z]{2,}$`)

// Rules declares how a value is sanitized and what it has to satisfy. A zero MinLength or
// MaxLength disables the respective check.
type Rules struct {
	Type      FieldType
	Required  bool
	MinLength int
	MaxLength int
	AllowHTML bool
	// Label names the value in error messages. Defaults to "Value".
	Label string
}

// Result is the outcome of a single Validate call.
type Result struct {
	IsValid        bool     `json:"is_valid"`
	SanitizedValue string   `json:"sanitized_value"`
	Errors         []string `json:"errors,omitempty"`
}

// Validate trims and sanitizes value according to its type and checks it against rules.
// Format and length errors accumulate. A required value that is empty after trimming yields
// exactly one error and no further checks.
func Validate(value string, rules Rules) Result {
	label := rules.Label
	if label == "" {
		label = "Value"
	}

	value = strings.TrimSpace(value)
	if value == "" {
		if rules.Required {
			return Result{Errors: []string{fmt.Sprintf("%s is required", label)}}
		}
		return Result{IsValid: true}
	}

	sanitized := Sanitize(value, rules.Type, rules.AllowHTML)
	var errs []string
	if sanitized == "" && rules.Required {
		errs = append(errs, fmt.Sprintf("%s is required", label))
	}

	switch rules.Type {
	case TypeEmail:
		if !IsEmail(sanitized) {
			errs = append(errs, fmt.Sprintf("%s must be a valid email address", label))
		}
	case TypeURL:
		if !IsURL(sanitized) {
			errs = append(errs, fmt.Sprintf("%s must be a valid URL", label))
		}
	case TypePhone:
		if !IsPhone(sanitized) {
			errs = append(errs, fmt.Sprintf("%s must be a valid phone number", label))
		}
	}

	length := utf8.RuneCountInString(sanitized)
	if rules.MinLength > 0 && length < rules.MinLength {
		errs = append(errs, fmt.Sprintf("%s must be at least %d characters long", label, rules.MinLength))
	}
	if rules.MaxLength > 0 && length > rules.MaxLength {
		errs = append(errs, fmt.Sprintf("%s must be at most %d characters long", label, rules.MaxLength))
	}

	return Result{
		IsValid:        len(errs) == 0,
		SanitizedValue: sanitized,
		Errors:         errs,
	}
}

// Sanitize cleans an already trimmed value for the given type. Free text has its markup
// stripped unless allowHTML is set, in which case only unsafe markup is removed. Email
// addresses are lowercased.
func Sanitize(value string, fieldType FieldType, allowHTML bool) string {
	switch fieldType {
	case TypeEmail:
		return strings.ToLower(value)
	case TypeURL, TypePhone:
		return value
	default:
		if allowHTML {
			return strings.TrimSpace(SanitizeHTML(value))
		}
		return strings.TrimSpace(StripHTML(value))
	}
}

// IsEmail reports whether value has the shape local@domain.tld.
func IsEmail(value string) bool {
	return emailRegExp.MatchString(value)
}

// IsURL reports whether value is an absolute URL with a host.
func IsURL(value string) bool {
	u, err := url.Parse(value)
	if err != nil {
		return false
	}
	return u.IsAbs() && u.Host != ""
}

// IsPhone reports whether value holds between 7 and 15 digits. Everything else is ignored.
func IsPhone(value string) bool {
	digits := 0
	for _, r := range value {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits >= phoneMinDigits && digits <= phoneMaxDigits
}
