// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package server

import (
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/render"

	"github.com/wneessen/folio/internal/contact"
	"github.com/wneessen/folio/internal/logger"
)

const formMaxMemory = 1 << 20

var ErrFailedToParseForm = errors.New("failed to parse contact form submission")

type ContactLimitResponse struct {
	Remaining int `json:"remaining_attempts"`
}

// HandlerAPIContactGet reports the submissions left for the caller in the current window.
func (s *Server) HandlerAPIContactGet(w http.ResponseWriter, r *http.Request) {
	remaining := s.flow.Remaining(contact.Metadata{ClientIP: clientIP(r)})
	resp := NewResponse(http.StatusOK, "contact form rate limit", ContactLimitResponse{Remaining: remaining})
	if err := render.Render(w, r, resp); err != nil {
		s.log.Error("failed to render ContactLimitResponse", logger.Err(err))
	}
}

func (s *Server) HandlerAPIContactPost(w http.ResponseWriter, r *http.Request) {
	log := s.log.With(logger.RequestID(r), logger.ClientIP(r))
	sub, err := s.parseSubmission(r)
	if err != nil {
		log.Warn("failed to parse contact form submission", logger.Err(err))
		s.renderErr(w, r, ErrBadRequest(ErrFailedToParseForm))
		return
	}

	receipt, err := s.flow.Submit(r.Context(), sub)
	var validationErr *contact.ValidationError
	var limitErr *contact.RateLimitError
	switch {
	case err == nil:
	case errors.As(err, &validationErr):
		log.Info("contact form submission rejected", logger.Err(err))
		resp := ErrBadRequest(contact.ErrValidation)
		resp.Errors = validationMessages(validationErr)
		resp.Data = validationErr.Fields
		s.renderErr(w, r, resp)
		return
	case errors.Is(err, contact.ErrSpamDetected):
		log.Warn("contact form submission rejected as spam")
		s.renderErr(w, r, ErrBadRequest(err))
		return
	case errors.As(err, &limitErr):
		retryAfter := s.flow.RetryAfter(limitErr)
		log.Warn("contact form submission rate limited", slog.Duration("retry_after", retryAfter))
		w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
		s.renderErr(w, r, ErrTooManyRequests(contact.ErrRateLimited))
		return
	case errors.Is(err, contact.ErrDelivery):
		log.Error("contact form submission could not be delivered", logger.Err(err))
		s.renderErr(w, r, ErrBadGateway(contact.ErrDelivery))
		return
	default:
		log.Error("contact form submission failed", logger.Err(err))
		s.renderErr(w, r, ErrUnexpected(err))
		return
	}

	resp := NewResponse(http.StatusCreated, "contact form submission sent", receipt)
	if err = render.Render(w, r, resp); err != nil {
		s.log.Error("failed to render contact receipt", logger.Err(err))
	}
}

// parseSubmission reads a JSON body or a (multipart) form body into a Submission. The honeypot
// is read from the configured field name.
func (s *Server) parseSubmission(r *http.Request) (contact.Submission, error) {
	sub := contact.Submission{
		Metadata: contact.Metadata{
			Referrer:  r.Referer(),
			UserAgent: r.UserAgent(),
			Language:  s.requestLanguage(r),
			ClientIP:  clientIP(r),
		},
	}
	honeypot := s.config.Contact.HoneypotField

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/json":
		var body map[string]any
		if err := render.DecodeJSON(r.Body, &body); err != nil {
			return sub, err
		}
		sub.Name = stringValue(body, "name")
		sub.Email = stringValue(body, "email")
		sub.Subject = stringValue(body, "subject")
		sub.Message = stringValue(body, "message")
		sub.Honeypot = stringValue(body, honeypot)
	case "multipart/form-data":
		if err := r.ParseMultipartForm(formMaxMemory); err != nil {
			return sub, err
		}
		sub = formSubmission(r, sub, honeypot)
	default:
		if err := r.ParseForm(); err != nil {
			return sub, err
		}
		sub = formSubmission(r, sub, honeypot)
	}
	return sub, nil
}

func formSubmission(r *http.Request, sub contact.Submission, honeypot string) contact.Submission {
	sub.Name = r.PostFormValue("name")
	sub.Email = r.PostFormValue("email")
	sub.Subject = r.PostFormValue("subject")
	sub.Message = r.PostFormValue("message")
	sub.Honeypot = r.PostFormValue(honeypot)
	return sub
}

func stringValue(body map[string]any, key string) string {
	switch value := body[key].(type) {
	case nil:
		return ""
	case string:
		return value
	default:
		return fmt.Sprint(value)
	}
}

func validationMessages(err *contact.ValidationError) []string {
	var messages []string
	for _, field := range err.Fields {
		messages = append(messages, field.Messages...)
	}
	return messages
}

// clientIP returns the unmasked client address. Masking only applies to log output.
func clientIP(r *http.Request) string {
	return logger.ClientIP(r).Value.String()
}
