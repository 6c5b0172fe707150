// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package section provides typed access to the content documents. An Accessor follows an
// active language and keeps the state of the latest resolution. A Site bundles one accessor
// per section.
package section

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/wneessen/folio/internal/content"
)

var ErrInvalidPayload = errors.New("content document does not match the section type")

// Source delivers raw content documents.
type Source interface {
	Get(ctx context.Context, document content.Document, language string) (json.RawMessage, error)
}

// State is a snapshot of an Accessor. Once a resolution settled exactly one of Data and Err
// is set. While a resolution is in flight the previous Data stays available.
type State[T any] struct {
	Data     *T
	Loading  bool
	Err      error
	Language string
}

// Accessor resolves one document into T. Every language change starts a new resolution that
// is tagged with a generation; completions of older generations are discarded, so the state
// always reflects the latest requested language.
type Accessor[T any] struct {
	source   Source
	document content.Document

	mu         sync.Mutex
	state      State[T]
	generation uint64
	settled    chan struct{}
	onChange   func(State[T])
}

// NewAccessor returns an idle Accessor for document. It does not resolve anything until
// SetLanguage is called.
func NewAccessor[T any](source Source, document content.Document) *Accessor[T] {
	settled := make(chan struct{})
	close(settled)
	return &Accessor[T]{
		source:   source,
		document: document,
		settled:  settled,
	}
}

// Document returns the document the accessor resolves.
func (a *Accessor[T]) Document() content.Document {
	return a.document
}

// OnChange registers fn to be called with every state change. fn must not block.
func (a *Accessor[T]) OnChange(fn func(State[T])) {
	a.mu.Lock()
	a.onChange = fn
	a.mu.Unlock()
}

// SetLanguage makes language the active language and starts resolving the document in it.
// It returns immediately, use Wait to block until the resolution settled.
func (a *Accessor[T]) SetLanguage(ctx context.Context, language string) {
	a.start(ctx, language)
}

// Refetch resolves the document again in the active language. Cached documents are served
// from cache as long as they are fresh.
func (a *Accessor[T]) Refetch(ctx context.Context) {
	a.mu.Lock()
	language := a.state.Language
	a.mu.Unlock()
	a.start(ctx, language)
}

// State returns a snapshot of the current state.
func (a *Accessor[T]) State() State[T] {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Wait blocks until the latest resolution settled or ctx is done. Resolutions started while
// waiting are waited for as well.
func (a *Accessor[T]) Wait(ctx context.Context) error {
	for {
		a.mu.Lock()
		settled := a.settled
		a.mu.Unlock()

		select {
		case <-settled:
		case <-ctx.Done():
			return ctx.Err()
		}

		a.mu.Lock()
		latest := settled == a.settled
		a.mu.Unlock()
		if latest {
			return nil
		}
	}
}

// Resolve fetches and decodes the document in language without touching the accessor state.
func (a *Accessor[T]) Resolve(ctx context.Context, language string) (T, error) {
	var data T
	raw, err := a.source.Get(ctx, a.document, language)
	if err != nil {
		return data, err
	}
	if err = json.Unmarshal(raw, &data); err != nil {
		return data, fmt.Errorf("%w: %s: %w", ErrInvalidPayload, a.document, err)
	}
	return data, nil
}

func (a *Accessor[T]) start(ctx context.Context, language string) {
	settled := make(chan struct{})

	a.mu.Lock()
	a.generation++
	generation := a.generation
	a.settled = settled
	a.state.Loading = true
	a.state.Language = language
	state, onChange := a.state, a.onChange
	a.mu.Unlock()

	if onChange != nil {
		onChange(state)
	}

	go func() {
		defer close(settled)
		data, err := a.Resolve(ctx, language)
		a.apply(generation, data, err)
	}()
}

// apply stores the outcome of a resolution unless a newer one has been started since.
func (a *Accessor[T]) apply(generation uint64, data T, err error) {
	a.mu.Lock()
	if generation != a.generation {
		a.mu.Unlock()
		return
	}
	if err != nil {
		a.state.Data = nil
		a.state.Err = err
	} else {
		a.state.Data = &data
		a.state.Err = nil
	}
	a.state.Loading = false
	state, onChange := a.state, a.onChange
	a.mu.Unlock()

	if onChange != nil {
		onChange(state)
	}
}
