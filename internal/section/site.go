// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package section

import (
	"context"
	"errors"
	"fmt"

	"github.com/wneessen/folio/internal/content"
)

// Store is a Source that can be administrated.
type Store interface {
	Source
	Clear(ctx context.Context) error
	CacheStatus(ctx context.Context) (content.Status, error)
}

// Snapshot is the untyped, serializable state of a section.
type Snapshot struct {
	Document content.Document `json:"document"`
	Language string           `json:"language"`
	Loading  bool             `json:"loading"`
	Data     any              `json:"data,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// section is the type independent part of an Accessor.
type section interface {
	Document() content.Document
	SetLanguage(ctx context.Context, language string)
	Refetch(ctx context.Context)
	Wait(ctx context.Context) error
	snapshot() Snapshot
	resolve(ctx context.Context, language string) (any, error)
}

func (a *Accessor[T]) snapshot() Snapshot {
	state := a.State()
	snap := Snapshot{
		Document: a.document,
		Language: state.Language,
		Loading:  state.Loading,
	}
	if state.Data != nil {
		snap.Data = state.Data
	}
	if state.Err != nil {
		snap.Error = state.Err.Error()
	}
	return snap
}

func (a *Accessor[T]) resolve(ctx context.Context, language string) (any, error) {
	return a.Resolve(ctx, language)
}

// Site holds one accessor per section and moves all of them to the same language.
type Site struct {
	Hero       *Accessor[Hero]
	About      *Accessor[About]
	Skills     *Accessor[Skills]
	Projects   *Accessor[Projects]
	Experience *Accessor[Experience]
	Contact    *Accessor[Contact]

	store    Store
	sections []section
}

func NewSite(store Store) *Site {
	site := &Site{
		Hero:       NewAccessor[Hero](store, content.Hero),
		About:      NewAccessor[About](store, content.About),
		Skills:     NewAccessor[Skills](store, content.Skills),
		Projects:   NewAccessor[Projects](store, content.Projects),
		Experience: NewAccessor[Experience](store, content.Experience),
		Contact:    NewAccessor[Contact](store, content.Contact),
		store:      store,
	}
	site.sections = []section{site.Hero, site.About, site.Skills, site.Projects, site.Experience, site.Contact}
	return site
}

// SetLanguage switches every section to language.
func (s *Site) SetLanguage(ctx context.Context, language string) {
	for _, sec := range s.sections {
		sec.SetLanguage(ctx, language)
	}
}

// Refetch resolves every section again in its active language.
func (s *Site) Refetch(ctx context.Context) {
	for _, sec := range s.sections {
		sec.Refetch(ctx)
	}
}

// Wait blocks until every section settled.
func (s *Site) Wait(ctx context.Context) error {
	for _, sec := range s.sections {
		if err := sec.Wait(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Snapshot returns the state of every section in document order.
func (s *Site) Snapshot() []Snapshot {
	snaps := make([]Snapshot, 0, len(s.sections))
	for _, sec := range s.sections {
		snaps = append(snaps, sec.snapshot())
	}
	return snaps
}

// Resolve returns the typed data of document in language.
func (s *Site) Resolve(ctx context.Context, document content.Document, language string) (any, error) {
	for _, sec := range s.sections {
		if sec.Document() == document {
			return sec.resolve(ctx, language)
		}
	}
	return nil, fmt.Errorf("%w: %q", content.ErrUnknownDocument, document)
}

// Warm resolves every section in each of the given languages, populating the content cache.
// The sections are left in the last language. Failed sections are reported as a joined error.
func (s *Site) Warm(ctx context.Context, languages ...string) error {
	var errs []error
	for _, language := range languages {
		s.SetLanguage(ctx, language)
		if err := s.Wait(ctx); err != nil {
			return err
		}
		for _, snap := range s.Snapshot() {
			if snap.Error != "" {
				errs = append(errs, fmt.Errorf("%s/%s: %s", language, snap.Document, snap.Error))
			}
		}
	}
	return errors.Join(errs...)
}

// ClearCache drops every cached document and resolves all sections again. The resolutions
// outlive the cancellation of ctx.
func (s *Site) ClearCache(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return err
	}
	s.Refetch(context.WithoutCancel(ctx))
	return nil
}

func (s *Site) CacheStatus(ctx context.Context) (content.Status, error) {
	return s.store.CacheStatus(ctx)
}
