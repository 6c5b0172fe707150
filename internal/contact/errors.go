// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package contact

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrSpamDetected = errors.New("submission rejected as spam")
	ErrValidation   = errors.New("submission validation failed")
	ErrRateLimited  = errors.New("too many submissions")
	ErrDelivery     = errors.New("failed to deliver submission")
)

// FieldError lists everything that is wrong with a single field.
type FieldError struct {
	Field    string   `json:"field"`
	Messages []string `json:"messages"`
}

// ValidationError aggregates the errors of all invalid fields in form order.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, field := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field.Field, strings.Join(field.Messages, ", ")))
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, "; "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Field returns the messages of the given field, or nil if it is valid.
func (e *ValidationError) Field(name string) []string {
	for _, field := range e.Fields {
		if field.Field == name {
			return field.Messages
		}
	}
	return nil
}

// RateLimitError is returned when the attempt budget is used up. RetryAt is the end of the
// current window.
type RateLimitError struct {
	RetryAt time.Time
}

func (e *RateLimitError) Error() string {
	if e.RetryAt.IsZero() {
		return ErrRateLimited.Error()
	}
	return fmt.Sprintf("%s, retry at %s", ErrRateLimited, e.RetryAt.Format(time.RFC3339))
}

func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimited
}

// RetryAfter returns the time left until RetryAt, rounded up to full seconds.
func (e *RateLimitError) RetryAfter(now time.Time) time.Duration {
	wait := e.RetryAt.Sub(now)
	if wait <= 0 {
		return 0
	}
	return (wait + time.Second - 1).Truncate(time.Second)
}

// DeliveryError wraps the failure of the Sender.
type DeliveryError struct {
	Err error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("%s: %s", ErrDelivery, e.Err)
}

func (e *DeliveryError) Unwrap() []error {
	return []error{ErrDelivery, e.Err}
}
