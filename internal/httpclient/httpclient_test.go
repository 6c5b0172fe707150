// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package httpclient

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	stdhttp "net/http"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/wneessen/folio/internal/logger"
	"github.com/wneessen/folio/internal/testhelper"
)

type testType struct {
	String string  `json:"string"`
	Int    int     `json:"int"`
	Float  float64 `json:"float"`
	Bool   bool    `json:"bool"`
}

const testFile = "../../testdata/testtype.json"

func testLogger() *logger.Logger {
	return logger.NewLogger(slog.LevelInfo, io.Discard, logger.Opts{Format: "text"})
}

func TestNew(t *testing.T) {
	client := New(testLogger())
	if client == nil {
		t.Fatal("expected client to be non-nil")
	}
	if client.Timeout != DefaultTimeout {
		t.Errorf("expected timeout to be %s, got %s", DefaultTimeout, client.Timeout)
	}
}

func TestClient_Get(t *testing.T) {
	t.Run("getting and serializing JSON should work", func(t *testing.T) {
		rtFn := func(req *stdhttp.Request) (*stdhttp.Response, error) {
			if req.URL.Query().Get("key") != "value" {
				t.Errorf("expected query parameter to be set, got %s", req.URL.RawQuery)
			}
			if req.Header.Get("X-Custom-Header") != "custom-value" {
				t.Errorf("expected custom header to be set")
			}
			if req.Header.Get("User-Agent") != UserAgent {
				t.Errorf("expected user agent to be %s, got %s", UserAgent, req.Header.Get("User-Agent"))
			}
			data, err := os.Open(testFile)
			if err != nil {
				t.Fatalf("failed to open JSON response file: %s", err)
			}

			return &stdhttp.Response{
				StatusCode: 200,
				Body:       data,
				Header:     make(stdhttp.Header),
			}, nil
		}

		client := New(testLogger())
		client.Transport = testhelper.MockRoundTripper{Fn: rtFn}
		query := url.Values{}
		query.Add("key", "value")
		headers := make(map[string]string)
		headers["X-Custom-Header"] = "custom-value"

		target := new(testType)
		response, err := client.Get(t.Context(), "https://example.com", target, query, headers)
		if err != nil {
			t.Fatalf("failed to get JSON response: %s", err)
		}

		if response != 200 {
			t.Errorf("expected status code 200, got %d", response)
		}
		if target.String != "test" {
			t.Errorf("expected target string to be 'test', got %s", target.String)
		}
		if target.Int != 123 {
			t.Errorf("expected target int to be 123, got %d", target.Int)
		}
		if target.Float != 123.456 {
			t.Errorf("expected target float to be 123.456, got %f", target.Float)
		}
		if !target.Bool {
			t.Error("expected target bool to be true")
		}
	})
	t.Run("raw messages keep the document untouched", func(t *testing.T) {
		rtFn := func(req *stdhttp.Request) (*stdhttp.Response, error) {
			return &stdhttp.Response{
				StatusCode: 200,
				Body:       io.NopCloser(bytes.NewBufferString(`{"a":[1,2,3]}`)),
				Header:     make(stdhttp.Header),
			}, nil
		}
		client := New(testLogger())
		client.Transport = testhelper.MockRoundTripper{Fn: rtFn}

		var target json.RawMessage
		if _, err := client.Get(t.Context(), "https://example.com", &target, nil, nil); err != nil {
			t.Fatalf("failed to get JSON response: %s", err)
		}
		if string(target) != `{"a":[1,2,3]}` {
			t.Errorf("expected raw document, got %s", target)
		}
	})
	t.Run("non-2xx status codes are returned as StatusError", func(t *testing.T) {
		rtFn := func(req *stdhttp.Request) (*stdhttp.Response, error) {
			return &stdhttp.Response{
				StatusCode: 404,
				Body:       io.NopCloser(bytes.NewBufferString("<html>not found</html>")),
				Header:     make(stdhttp.Header),
			}, nil
		}
		client := New(testLogger())
		client.Transport = testhelper.MockRoundTripper{Fn: rtFn}

		target := new(testType)
		code, err := client.Get(t.Context(), "https://example.com/data/ar/projects.json", target, nil, nil)
		if err == nil {
			t.Fatal("expected get to fail")
		}
		if code != 404 {
			t.Errorf("expected status code 404, got %d", code)
		}
		if !errors.Is(err, ErrUnexpectedStatus) {
			t.Errorf("expected error to be %s, got %s", ErrUnexpectedStatus, err)
		}
		var statusErr *StatusError
		if !errors.As(err, &statusErr) {
			t.Fatalf("expected error to be a StatusError, got %T", err)
		}
		if statusErr.StatusCode != 404 {
			t.Errorf("expected status error code 404, got %d", statusErr.StatusCode)
		}
	})
	t.Run("unmarshalling into non-pointer should fail", func(t *testing.T) {
		client := New(testLogger())
		var target testType
		_, err := client.Get(t.Context(), "https://example.com", target, nil, nil)
		if err == nil {
			t.Fatal("expected get to fail")
		}
		if !errors.Is(err, ErrNonPointerTarget) {
			t.Errorf("expected error to be %s, got %s", ErrNonPointerTarget, err)
		}
	})
	t.Run("parsing an invalid url should fail", func(t *testing.T) {
		client := New(testLogger())
		target := new(testType)
		_, err := client.Get(t.Context(), "https://example.com/xyz%", target, nil, nil)
		if err == nil {
			t.Fatal("expected get to fail")
		}
		if !strings.Contains(err.Error(), "failed to parse URL") {
			t.Errorf("expected error to contain 'failed to parse URL', got %s", err)
		}
	})
	t.Run("get request fails", func(t *testing.T) {
		rtFn := func(req *stdhttp.Request) (*stdhttp.Response, error) {
			return nil, errors.New("intentionally failing")
		}

		client := New(testLogger())
		client.Transport = testhelper.MockRoundTripper{Fn: rtFn}

		target := new(testType)
		_, err := client.Get(t.Context(), "https://example.com", target, nil, nil)
		if err == nil {
			t.Fatal("expected get request to fail")
		}
	})
	t.Run("undecodable body fails", func(t *testing.T) {
		rtFn := func(req *stdhttp.Request) (*stdhttp.Response, error) {
			return &stdhttp.Response{
				StatusCode: 200,
				Body:       &failReadCloser{},
				Header:     make(stdhttp.Header),
			}, nil
		}

		client := New(testLogger())
		client.Transport = testhelper.MockRoundTripper{Fn: rtFn}

		target := new(testType)
		_, err := client.Get(t.Context(), "https://example.com", target, nil, nil)
		if err == nil {
			t.Fatal("expected get request to fail")
		}
	})
}

type failReadCloser struct{}

func (failReadCloser) Read(p []byte) (int, error) { return len(p), nil }
func (failReadCloser) Close() error               { return errors.New("failed to close") }
