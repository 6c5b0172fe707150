// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package content

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"

	"github.com/wneessen/folio/internal/httpclient"
)

// Fetcher retrieves the raw JSON of a document in a given language. Implementations return
// an error for anything but a valid JSON document.
type Fetcher interface {
	Fetch(ctx context.Context, language string, document Document) (json.RawMessage, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, language string, document Document) (json.RawMessage, error)

func (f FetcherFunc) Fetch(ctx context.Context, language string, document Document) (json.RawMessage, error) {
	return f(ctx, language, document)
}

// HTTPFetcher requests documents from {base}/{language}/{document}.json.
type HTTPFetcher struct {
	client  *httpclient.Client
	baseURL *url.URL
}

func NewHTTPFetcher(client *httpclient.Client, baseURL string) (*HTTPFetcher, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse content base URL: %w", err)
	}
	if !base.IsAbs() || base.Host == "" {
		return nil, fmt.Errorf("content base URL must be absolute: %q", baseURL)
	}
	return &HTTPFetcher{client: client, baseURL: base}, nil
}

// URL returns the location of the document in the given language.
func (f *HTTPFetcher) URL(language string, document Document) string {
	return f.baseURL.JoinPath(language, string(document)+".json").String()
}

func (f *HTTPFetcher) Fetch(ctx context.Context, language string, document Document) (json.RawMessage, error) {
	var doc json.RawMessage
	if _, err := f.client.Get(ctx, f.URL(language, document), &doc, nil, nil); err != nil {
		return nil, fmt.Errorf("failed to fetch %s/%s: %w", language, document, err)
	}
	return doc, nil
}

// DirFetcher reads documents from {dir}/{language}/{document}.json. Lookups cannot leave dir.
type DirFetcher struct {
	root *os.Root
}

func NewDirFetcher(dir string) (*DirFetcher, error) {
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open content directory: %w", err)
	}
	return &DirFetcher{root: root}, nil
}

func (f *DirFetcher) Fetch(_ context.Context, language string, document Document) (json.RawMessage, error) {
	file, err := f.root.Open(path.Join(language, string(document)+".json"))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s/%s: %w", language, document, err)
	}
	defer func() {
		_ = file.Close()
	}()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s/%s: %w", language, document, err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("failed to read %s/%s: %w", language, document, ErrInvalidDocument)
	}
	return data, nil
}

func (f *DirFetcher) Close() error {
	return f.root.Close()
}
