// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package contact guards the contact form. A Flow validates a submission, checks the rate limit
// and only then hands the message to a Sender.
package contact

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/wneessen/folio/internal/logger"
	"github.com/wneessen/folio/internal/metrics"
	"github.com/wneessen/folio/internal/validation"
)

const (
	// IdentifierGlobal counts all submissions against one budget.
	IdentifierGlobal = "global"
	// IdentifierClientIP counts submissions per client IP address.
	IdentifierClientIP = "client_ip"

	// GlobalIdentifier is the rate limit key used by IdentifierGlobal.
	GlobalIdentifier = "contact-form"
)

const (
	FieldName    = "name"
	FieldEmail   = "email"
	FieldSubject = "subject"
	FieldMessage = "message"
)

const msgDangerousContent = "Message contains content that is not allowed"

// Submission is the raw input of the contact form.
type Submission struct {
	Name     string
	Email    string
	Subject  string
	Message  string
	Honeypot string
	Metadata Metadata
}

// Metadata describes the circumstances of a submission. ID and Timestamp are filled in by
// the Flow when empty.
type Metadata struct {
	ID        string
	Timestamp time.Time
	Referrer  string
	UserAgent string
	Language  string
	ClientIP  string
}

// Message is a validated and sanitized submission ready to be sent.
type Message struct {
	Name     string
	Email    string
	Subject  string
	Body     string
	Metadata Metadata
}

// Receipt confirms a delivered submission.
type Receipt struct {
	ID        string    `json:"id"`
	SentAt    time.Time `json:"sent_at"`
	Remaining int       `json:"remaining_attempts"`
}

// Sender delivers a Message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SenderFunc adapts a function to the Sender interface.
type SenderFunc func(ctx context.Context, msg Message) error

func (f SenderFunc) Send(ctx context.Context, msg Message) error {
	return f(ctx, msg)
}

// Limiter decides whether another submission is permitted.
type Limiter interface {
	IsAllowed(id string) bool
	RemainingAttempts(id string) int
	ResetAt(id string) (time.Time, bool)
}

// Fields holds the validation rules of the form fields.
type Fields struct {
	Name    validation.Rules
	Email   validation.Rules
	Subject validation.Rules
	Message validation.Rules
}

// DefaultFields returns the rules of the contact form.
func DefaultFields() Fields {
	return Fields{
		Name: validation.Rules{Type: validation.TypeText, Required: true, MinLength: 2, MaxLength: 100,
			Label: "Name"},
		Email: validation.Rules{Type: validation.TypeEmail, Required: true, MaxLength: 254,
			Label: "Email"},
		Subject: validation.Rules{Type: validation.TypeText, MaxLength: 200, Label: "Subject"},
		Message: validation.Rules{Type: validation.TypeTextarea, Required: true, MinLength: 10,
			MaxLength: 5000, Label: "Message"},
	}
}

type Options struct {
	Identifier string
	Fields     *Fields
	Clock      func() time.Time
	Logger     *logger.Logger
	Metrics    *metrics.Metrics
}

type Flow struct {
	limiter    Limiter
	sender     Sender
	identifier string
	fields     Fields
	now        func() time.Time
	log        *logger.Logger
	metrics    *metrics.Metrics
}

func NewFlow(limiter Limiter, sender Sender, opts Options) *Flow {
	if opts.Identifier == "" {
		opts.Identifier = IdentifierGlobal
	}
	if opts.Fields == nil {
		fields := DefaultFields()
		opts.Fields = &fields
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewLogger(slog.LevelError, io.Discard, logger.Opts{})
	}
	return &Flow{
		limiter:    limiter,
		sender:     sender,
		identifier: opts.Identifier,
		fields:     *opts.Fields,
		now:        opts.Clock,
		log:        opts.Logger.With(slog.String("component", "contact")),
		metrics:    opts.Metrics,
	}
}

// Submit runs a submission through the honeypot, field validation and the rate limit and sends
// it. Rejected spam and invalid submissions do not count against the rate limit, a failed
// delivery counts as one attempt.
func (f *Flow) Submit(ctx context.Context, sub Submission) (*Receipt, error) {
	if sub.Metadata.ID == "" {
		sub.Metadata.ID = uuid.NewString()
	}
	if sub.Metadata.Timestamp.IsZero() {
		sub.Metadata.Timestamp = f.now()
	}
	log := f.log.With(slog.String("submission.id", sub.Metadata.ID))

	if sub.Honeypot != "" {
		f.metrics.Submission(metrics.SubmissionSpam)
		log.Warn("submission did not pass honeypot validation")
		return nil, ErrSpamDetected
	}

	msg, err := f.validate(sub)
	if err != nil {
		f.metrics.Submission(metrics.SubmissionInvalid)
		log.Info("submission did not pass field validation", logger.Err(err))
		return nil, err
	}

	id := f.limitKey(sub.Metadata)
	allowed := f.limiter.IsAllowed(id)
	f.metrics.RateLimitDecision(allowed)
	if !allowed {
		retryAt, _ := f.limiter.ResetAt(id)
		f.metrics.Submission(metrics.SubmissionLimited)
		log.Warn("submission rate limited", slog.Time("retry_at", retryAt))
		return nil, &RateLimitError{RetryAt: retryAt}
	}

	if err = f.sender.Send(ctx, msg); err != nil {
		f.metrics.Submission(metrics.SubmissionFailed)
		log.Error("failed to send submission", logger.Err(err))
		return nil, &DeliveryError{Err: err}
	}

	f.metrics.Submission(metrics.SubmissionSent)
	log.Info("submission sent")
	return &Receipt{
		ID:        sub.Metadata.ID,
		SentAt:    f.now(),
		Remaining: f.limiter.RemainingAttempts(id),
	}, nil
}

// Remaining returns the submissions left in the current window for the given metadata.
func (f *Flow) Remaining(meta Metadata) int {
	return f.limiter.RemainingAttempts(f.limitKey(meta))
}

// RetryAfter returns the time left until a rate limited caller may submit again, measured
// with the clock of the Flow.
func (f *Flow) RetryAfter(err *RateLimitError) time.Duration {
	return err.RetryAfter(f.now())
}

func (f *Flow) validate(sub Submission) (Message, error) {
	var fieldErrs []FieldError
	check := func(field, value string, rules validation.Rules) string {
		result := validation.Validate(value, rules)
		if !result.IsValid {
			fieldErrs = append(fieldErrs, FieldError{Field: field, Messages: result.Errors})
		}
		return result.SanitizedValue
	}

	msg := Message{
		Name:     check(FieldName, sub.Name, f.fields.Name),
		Email:    check(FieldEmail, sub.Email, f.fields.Email),
		Subject:  check(FieldSubject, sub.Subject, f.fields.Subject),
		Metadata: sub.Metadata,
	}

	body := validation.Validate(sub.Message, f.fields.Message)
	messages := body.Errors
	if validation.ContainsDangerousContent(sub.Message) {
		messages = append(messages, msgDangerousContent)
	}
	if len(messages) > 0 {
		fieldErrs = append(fieldErrs, FieldError{Field: FieldMessage, Messages: messages})
	}
	msg.Body = body.SanitizedValue

	if len(fieldErrs) > 0 {
		return Message{}, &ValidationError{Fields: fieldErrs}
	}
	return msg, nil
}

func (f *Flow) limitKey(meta Metadata) string {
	if f.identifier == IdentifierClientIP && meta.ClientIP != "" {
		return GlobalIdentifier + ":" + meta.ClientIP
	}
	return GlobalIdentifier
}
