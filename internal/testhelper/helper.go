// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package testhelper

import (
	"bytes"
	"io"
	"log/slog"
	stdhttp "net/http"
	"os"
	"strings"
	"testing"

	"github.com/wneessen/folio/internal/logger"
)

const (
	TestOnlineAPIURL = "https://api.restful-api.dev/objects"
)

func PerformIntegrationTests(t *testing.T) {
	t.Helper()
	if val := os.Getenv("PERFORM_INTEGRATION_TEST"); !strings.EqualFold(val, "true") {
		t.Skip("skipping integration test")
	}
}

// Logger returns a text logger that discards all output.
func Logger() *logger.Logger {
	return logger.NewLogger(slog.LevelDebug, io.Discard, logger.Opts{Format: "text"})
}

type MockRoundTripper struct {
	Fn func(req *stdhttp.Request) (*stdhttp.Response, error)
}

func (m MockRoundTripper) RoundTrip(req *stdhttp.Request) (*stdhttp.Response, error) {
	return m.Fn(req)
}

// Response returns a HTTP response with the given status code and body.
func Response(code int, body string) *stdhttp.Response {
	header := make(stdhttp.Header)
	header.Set("Content-Type", "application/json")
	return &stdhttp.Response{
		StatusCode: code,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     header,
	}
}
