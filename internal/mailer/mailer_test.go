// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package mailer

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/wneessen/folio/internal/contact"
	"github.com/wneessen/folio/internal/testhelper"
)

func testOptions() Options {
	return Options{
		Host:          "localhost",
		Port:          2525,
		Timeout:       time.Second,
		Sender:        "folio@example.com",
		Recipients:    []string{"jane@example.com"},
		SubjectPrefix: "[Portfolio]",
		Logger:        testhelper.Logger(),
	}
}

func testMessage() contact.Message {
	return contact.Message{
		Name:    "John Doe",
		Email:   "john@example.org",
		Subject: "Project inquiry",
		Body:    "Hello Jane,\nlet's talk about a project.",
		Metadata: contact.Metadata{
			ID:        "2f1d7c1e-0000-4000-8000-000000000001",
			Timestamp: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
			Referrer:  "https://folio.example.com/",
			Language:  "en",
		},
	}
}

func TestNew(t *testing.T) {
	t.Run("valid options", func(t *testing.T) {
		opts := testOptions()
		opts.Username = "user"
		opts.Password = "secret"
		opts.ForceTLS = true
		if _, err := New(opts); err != nil {
			t.Errorf("failed to create mailer: %s", err)
		}
	})
	t.Run("missing sender", func(t *testing.T) {
		opts := testOptions()
		opts.Sender = ""
		if _, err := New(opts); !errors.Is(err, ErrNoSender) {
			t.Errorf("expected error to be %s, got %v", ErrNoSender, err)
		}
	})
	t.Run("invalid sender", func(t *testing.T) {
		opts := testOptions()
		opts.Sender = "not a mail address"
		if _, err := New(opts); err == nil {
			t.Error("expected invalid sender to fail")
		}
	})
	t.Run("missing recipients", func(t *testing.T) {
		opts := testOptions()
		opts.Recipients = nil
		if _, err := New(opts); !errors.Is(err, ErrNoRecipients) {
			t.Errorf("expected error to be %s, got %v", ErrNoRecipients, err)
		}
	})
	t.Run("dry run does not need recipients", func(t *testing.T) {
		opts := testOptions()
		opts.Recipients = nil
		opts.DryRun = true
		if _, err := New(opts); err != nil {
			t.Errorf("failed to create mailer: %s", err)
		}
	})
	t.Run("missing host", func(t *testing.T) {
		opts := testOptions()
		opts.Host = ""
		if _, err := New(opts); err == nil {
			t.Error("expected missing host to fail")
		}
	})
}

func TestMailer_message(t *testing.T) {
	m, err := New(testOptions())
	if err != nil {
		t.Fatalf("failed to create mailer: %s", err)
	}
	msg, err := m.message(testMessage())
	if err != nil {
		t.Fatalf("failed to compose message: %s", err)
	}
	buf := bytes.NewBuffer(nil)
	if _, err = msg.WriteTo(buf); err != nil {
		t.Fatalf("failed to write message: %s", err)
	}
	mailText := buf.String()
	for _, want := range []string{
		"Subject: [Portfolio] Project inquiry",
		"Reply-To: <john@example.org>",
		"To: <jane@example.com>",
		"From: <folio@example.com>",
		"X-Folio-Submission-ID: 2f1d7c1e-0000-4000-8000-000000000001",
		"Name: John Doe",
		"Email: john@example.org",
		"Submitted at: 2026-03-01T10:00:00Z",
		"Referrer: https://folio.example.com/",
	} {
		if !strings.Contains(mailText, want) {
			t.Errorf("expected mail to contain %q, got:\n%s", want, mailText)
		}
	}
	if strings.Contains(mailText, "Client IP") {
		t.Error("expected empty metadata to be omitted")
	}
}

func TestMailer_confirmation(t *testing.T) {
	opts := testOptions()
	opts.Confirmation = Confirmation{Enabled: true, Subject: "Thanks", Content: "I will get back to you."}
	m, err := New(opts)
	if err != nil {
		t.Fatalf("failed to create mailer: %s", err)
	}
	msg, err := m.confirmation(testMessage())
	if err != nil {
		t.Fatalf("failed to compose confirmation: %s", err)
	}
	buf := bytes.NewBuffer(nil)
	if _, err = msg.WriteTo(buf); err != nil {
		t.Fatalf("failed to write confirmation: %s", err)
	}
	for _, want := range []string{"To: <john@example.org>", "Subject: Thanks", "I will get back to you."} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("expected confirmation to contain %q", want)
		}
	}
}

func TestMailer_subject(t *testing.T) {
	tests := []struct {
		name    string
		prefix  string
		subject string
		want    string
	}{
		{"prefix and subject", "[Portfolio]", "Hello", "[Portfolio] Hello"},
		{"empty subject", "[Portfolio]", "", "[Portfolio] " + defaultSubject},
		{"no prefix", "", "Hello", "Hello"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := &Mailer{opts: Options{SubjectPrefix: tc.prefix}}
			if got := m.subject(tc.subject); got != tc.want {
				t.Errorf("expected subject %q, got %q", tc.want, got)
			}
		})
	}
}

func TestMailer_Send(t *testing.T) {
	t.Run("dry run skips delivery", func(t *testing.T) {
		opts := testOptions()
		opts.DryRun = true
		opts.Confirmation = Confirmation{Enabled: true, Subject: "Thanks", Content: "Thanks"}
		m, err := New(opts)
		if err != nil {
			t.Fatalf("failed to create mailer: %s", err)
		}
		if err = m.Send(t.Context(), testMessage()); err != nil {
			t.Errorf("expected dry run to succeed, got %s", err)
		}
	})
	t.Run("invalid reply-to address fails", func(t *testing.T) {
		opts := testOptions()
		opts.DryRun = true
		m, err := New(opts)
		if err != nil {
			t.Fatalf("failed to create mailer: %s", err)
		}
		msg := testMessage()
		msg.Email = "not an address"
		if err = m.Send(t.Context(), msg); err == nil {
			t.Error("expected invalid reply-to address to fail")
		}
	})
	t.Run("unreachable server fails", func(t *testing.T) {
		opts := testOptions()
		opts.Host = "127.0.0.1"
		opts.Port = 1
		m, err := New(opts)
		if err != nil {
			t.Fatalf("failed to create mailer: %s", err)
		}
		err = m.Send(t.Context(), testMessage())
		if err == nil || !strings.Contains(err.Error(), "failed to send message") {
			t.Errorf("expected delivery to fail, got %v", err)
		}
	})
}

func TestMailer_ImplementsSender(t *testing.T) {
	var _ contact.Sender = (*Mailer)(nil)
}
