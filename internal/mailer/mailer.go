// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package mailer delivers contact form submissions via SMTP.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/wneessen/folio/internal/contact"
	"github.com/wneessen/folio/internal/logger"
)

const defaultSubject = "New contact form submission"

var (
	// version is the version of the application (will be set at build time)
	version = "dev"

	// userAgent is the User-Agent that is set on all outgoing mails
	userAgent = fmt.Sprintf("folio/%s // https://github.com/wneessen/folio", version)

	ErrNoSender     = errors.New("no sender address configured")
	ErrNoRecipients = errors.New("no recipient addresses configured")
)

type Confirmation struct {
	Enabled bool
	Subject string
	Content string
}

type Options struct {
	Host          string
	Port          int
	Username      string
	Password      string
	ForceTLS      bool
	DryRun        bool
	Timeout       time.Duration
	Sender        string
	Recipients    []string
	SubjectPrefix string
	Confirmation  Confirmation
	Logger        *logger.Logger
}

// Mailer sends contact messages to the configured recipients and optionally a confirmation
// to the visitor.
type Mailer struct {
	client *mail.Client
	opts   Options
	log    *logger.Logger
}

func New(opts Options) (*Mailer, error) {
	if opts.Logger == nil {
		opts.Logger = logger.NewLogger(slog.LevelError, io.Discard, logger.Opts{})
	}
	if opts.Sender == "" {
		return nil, ErrNoSender
	}
	if err := mail.NewMsg().From(opts.Sender); err != nil {
		return nil, fmt.Errorf("invalid sender address: %w", err)
	}
	if len(opts.Recipients) == 0 && !opts.DryRun {
		return nil, ErrNoRecipients
	}

	clientOpts := []mail.Option{mail.WithTLSPolicy(mail.DefaultTLSPolicy)}
	if opts.Port > 0 {
		clientOpts = append(clientOpts, mail.WithPort(opts.Port))
	}
	if opts.Timeout > 0 {
		clientOpts = append(clientOpts, mail.WithTimeout(opts.Timeout))
	}
	if opts.Username != "" {
		clientOpts = append(clientOpts, mail.WithSMTPAuth(mail.SMTPAuthAutoDiscover),
			mail.WithUsername(opts.Username), mail.WithPassword(opts.Password))
	}
	client, err := mail.NewClient(opts.Host, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail client: %w", err)
	}
	if !opts.ForceTLS {
		client.SetTLSPolicy(mail.TLSOpportunistic)
	}

	return &Mailer{
		client: client,
		opts:   opts,
		log:    opts.Logger.With(slog.String("component", "mailer")),
	}, nil
}

// Send delivers msg to the recipients. A failing confirmation mail is logged but does not fail
// the delivery, since the message itself already went out.
func (m *Mailer) Send(ctx context.Context, msg contact.Message) error {
	message, err := m.message(msg)
	if err != nil {
		return err
	}
	var confirmation *mail.Msg
	if m.opts.Confirmation.Enabled {
		if confirmation, err = m.confirmation(msg); err != nil {
			return err
		}
	}

	if m.opts.DryRun {
		m.log.Info("dry-run mode enabled, skipping actual mail delivery",
			slog.String("submission.id", msg.Metadata.ID))
		return nil
	}

	if err = m.client.DialAndSendWithContext(ctx, message); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	m.log.Debug("message sent", slog.String("submission.id", msg.Metadata.ID),
		slog.String("response", message.ServerResponse()))

	if confirmation != nil {
		if err = m.client.DialAndSendWithContext(ctx, confirmation); err != nil {
			m.log.Error("failed to send confirmation mail", logger.Err(err),
				slog.String("submission.id", msg.Metadata.ID))
		}
	}
	return nil
}

// message composes the mail to the recipients.
func (m *Mailer) message(msg contact.Message) (*mail.Msg, error) {
	message := mail.NewMsg()
	if err := message.From(m.opts.Sender); err != nil {
		return nil, fmt.Errorf("failed to set sender address: %w", err)
	}
	if err := message.To(m.opts.Recipients...); err != nil {
		return nil, fmt.Errorf("failed to set recipient address: %w", err)
	}
	if err := message.ReplyTo(msg.Email); err != nil {
		return nil, fmt.Errorf("failed to set reply-to address: %w", err)
	}
	message.Subject(m.subject(msg.Subject))
	message.SetUserAgent(userAgent)
	message.SetGenHeader(mail.Header("X-Folio-Submission-ID"), msg.Metadata.ID)
	if !msg.Metadata.Timestamp.IsZero() {
		message.SetDateWithValue(msg.Metadata.Timestamp)
	}
	message.SetBodyString(mail.TypeTextPlain, body(msg))
	return message, nil
}

// confirmation composes the mail to the visitor.
func (m *Mailer) confirmation(msg contact.Message) (*mail.Msg, error) {
	message := mail.NewMsg()
	if err := message.From(m.opts.Sender); err != nil {
		return nil, fmt.Errorf("failed to set sender address: %w", err)
	}
	if err := message.To(msg.Email); err != nil {
		return nil, fmt.Errorf("failed to set confirmation recipient address: %w", err)
	}
	message.Subject(m.opts.Confirmation.Subject)
	message.SetUserAgent(userAgent)
	message.SetBodyString(mail.TypeTextPlain, m.opts.Confirmation.Content)
	return message, nil
}

func (m *Mailer) subject(subject string) string {
	if subject == "" {
		subject = defaultSubject
	}
	if m.opts.SubjectPrefix == "" {
		return subject
	}
	return m.opts.SubjectPrefix + " " + subject
}

func body(msg contact.Message) string {
	sb := strings.Builder{}
	sb.WriteString("A new message was sent via the contact form:\n\n")
	fmt.Fprintf(&sb, "Name: %s\n", msg.Name)
	fmt.Fprintf(&sb, "Email: %s\n", msg.Email)
	if msg.Subject != "" {
		fmt.Fprintf(&sb, "Subject: %s\n", msg.Subject)
	}
	sb.WriteString("\n")
	sb.WriteString(msg.Body)
	sb.WriteString("\n\n--\n")

	meta := msg.Metadata
	fmt.Fprintf(&sb, "Submission ID: %s\n", meta.ID)
	if !meta.Timestamp.IsZero() {
		fmt.Fprintf(&sb, "Submitted at: %s\n", meta.Timestamp.Format(time.RFC3339))
	}
	for _, item := range []struct{ label, value string }{
		{"Language", meta.Language},
		{"Referrer", meta.Referrer},
		{"User agent", meta.UserAgent},
		{"Client IP", meta.ClientIP},
	} {
		if item.value != "" {
			fmt.Fprintf(&sb, "%s: %s\n", item.label, item.value)
		}
	}
	return sb.String()
}
