// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package content serves localized JSON documents. A Store caches every document it fetches for
// a fixed TTL and resolves misses through a fallback chain: the requested language, then the
// default language, then a static default. Whatever tier answers is cached under the key of the
// requested language.
package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/wneessen/folio/internal/cache"
	"github.com/wneessen/folio/internal/logger"
	"github.com/wneessen/folio/internal/metrics"
)

var errFlightAborted = errors.New("shared resolution aborted")

// DefaultTTL is the time a fetched document is served from cache.
const DefaultTTL = time.Minute * 5

// Tier names used in logs and in UnavailableError.
const (
	TierLanguage        = metrics.TierLanguage
	TierDefaultLanguage = metrics.TierDefaultLang
	TierStaticDefault   = metrics.TierStaticDefault
)

// Options configures a Store. Zero values select the defaults.
type Options struct {
	TTL             time.Duration
	DefaultLanguage string
	Defaults        map[Document]json.RawMessage
	Clock           func() time.Time
	Logger          *logger.Logger
	Metrics         *metrics.Metrics
}

type Store struct {
	cache       cache.Cache
	fetcher     Fetcher
	ttl         time.Duration
	defaultLang string
	defaults    map[Document]json.RawMessage
	now         func() time.Time
	log         *logger.Logger
	metrics     *metrics.Metrics
	group       singleflight.Group

	mu      sync.Mutex
	flights map[string]*flight
}

// flight is the context a shared resolution runs on. It is canceled once no caller waits
// for the resolution anymore.
type flight struct {
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

// Status describes the cache of a Store.
type Status struct {
	Keys            []string `json:"keys"`
	Size            int      `json:"size"`
	TTL             string   `json:"ttl"`
	DefaultLanguage string   `json:"default_language"`
}

// New returns a Store reading through fetcher and caching in c.
func New(fetcher Fetcher, c cache.Cache, opts Options) *Store {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	opts.DefaultLanguage = NormalizeLanguage(opts.DefaultLanguage, DefaultLanguage)
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewLogger(slog.LevelError, io.Discard, logger.Opts{})
	}
	if opts.Defaults == nil {
		opts.Defaults = make(map[Document]json.RawMessage)
	}

	return &Store{
		cache:       c,
		fetcher:     fetcher,
		ttl:         opts.TTL,
		defaultLang: opts.DefaultLanguage,
		defaults:    opts.Defaults,
		now:         opts.Clock,
		log:         opts.Logger.With(slog.String("component", "content")),
		metrics:     opts.Metrics,
		flights:     make(map[string]*flight),
	}
}

// DefaultLanguage returns the normalized default language of the store.
func (s *Store) DefaultLanguage() string {
	return s.defaultLang
}

// TTL returns the freshness window of cached documents.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Get returns document in the given language. Within the TTL of a previous resolution the cached
// value is returned without fetching. Concurrent calls for the same key share one resolution.
// Only when all tiers fail an error matching ErrContentUnavailable is returned, and nothing is
// cached.
func (s *Store) Get(ctx context.Context, document Document, language string) (json.RawMessage, error) {
	if !document.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDocument, document)
	}
	key := NewKey(NormalizeLanguage(language, s.defaultLang), document)

	if value, ok := s.lookup(ctx, key); ok {
		s.metrics.Resolved(document.String(), metrics.TierCache)
		return value, nil
	}

	for {
		value, err := s.await(ctx, key)
		if !errors.Is(err, errFlightAborted) {
			return value, err
		}
	}
}

// await joins the shared resolution of key and waits for it or for ctx, whichever is first.
// A caller leaving does not abort the resolution for the others. errFlightAborted is returned
// when the joined resolution was aborted because all of its callers left before this one joined.
func (s *Store) await(ctx context.Context, key Key) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fl := s.join(ctx, key)
	defer s.leave(key, fl)

	resultCh := s.group.DoChan(key.String(), func() (any, error) {
		// A flight for the same key may have completed between our lookup and DoChan.
		if value, ok := s.lookup(fl.ctx, key); ok {
			s.metrics.Resolved(key.Document.String(), metrics.TierCache)
			return value, nil
		}
		return s.resolve(fl.ctx, key)
	})

	select {
	case result := <-resultCh:
		if result.Err != nil {
			if isContextErr(result.Err) && ctx.Err() == nil {
				return nil, errFlightAborted
			}
			return nil, result.Err
		}
		return result.Val.(json.RawMessage), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Store) join(ctx context.Context, key Key) *flight {
	s.mu.Lock()
	defer s.mu.Unlock()
	fl, ok := s.flights[key.String()]
	if !ok {
		flightCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		fl = &flight{ctx: flightCtx, cancel: cancel}
		s.flights[key.String()] = fl
	}
	fl.waiters++
	return fl
}

func (s *Store) leave(key Key, fl *flight) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fl.waiters--
	if fl.waiters > 0 {
		return
	}
	fl.cancel()
	if s.flights[key.String()] == fl {
		delete(s.flights, key.String())
	}
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// Clear removes every cached document.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.cache.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear content cache: %w", err)
	}
	s.metrics.CacheCleared()
	s.log.Info("content cache cleared")
	return nil
}

// CacheStatus lists the populated cache keys. Stale entries are listed until they are replaced.
func (s *Store) CacheStatus(ctx context.Context) (Status, error) {
	keys, err := s.cache.Keys(ctx)
	if err != nil {
		return Status{}, fmt.Errorf("failed to list content cache keys: %w", err)
	}
	if keys == nil {
		keys = []string{}
	}
	return Status{
		Keys:            keys,
		Size:            len(keys),
		TTL:             s.ttl.String(),
		DefaultLanguage: s.defaultLang,
	}, nil
}

func (s *Store) lookup(ctx context.Context, key Key) (json.RawMessage, bool) {
	entry, err := s.cache.Get(ctx, key.String())
	if err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			s.log.Warn("content cache lookup failed", logger.Err(err), slog.String("key", key.String()))
		}
		return nil, false
	}
	if !entry.Fresh(s.now(), s.ttl) {
		return nil, false
	}
	return entry.Value, true
}

func (s *Store) resolve(ctx context.Context, key Key) (json.RawMessage, error) {
	failures := make([]TierFailure, 0, 2)

	value, err := s.fetcher.Fetch(ctx, key.Language, key.Document)
	if err == nil {
		return s.settle(ctx, key, value, TierLanguage), nil
	}
	s.fetchFailed(key, key.Language, err)
	failures = append(failures, TierFailure{Tier: TierLanguage, Language: key.Language, Err: err})
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	if key.Language != s.defaultLang {
		value, err = s.fetcher.Fetch(ctx, s.defaultLang, key.Document)
		if err == nil {
			return s.settle(ctx, key, value, TierDefaultLanguage), nil
		}
		s.fetchFailed(key, s.defaultLang, err)
		failures = append(failures, TierFailure{Tier: TierDefaultLanguage, Language: s.defaultLang, Err: err})
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
	}

	if value, ok := s.defaults[key.Document]; ok {
		return s.settle(ctx, key, value, TierStaticDefault), nil
	}

	s.metrics.Resolved(key.Document.String(), metrics.TierUnavailable)
	unavailable := &UnavailableError{Key: key, Failures: failures}
	s.log.Error("content unavailable", logger.Err(unavailable), slog.String("key", key.String()))
	return nil, unavailable
}

// settle caches value under the originally requested key and returns it.
func (s *Store) settle(ctx context.Context, key Key, value json.RawMessage, tier string) json.RawMessage {
	entry := cache.Entry{Value: value, FetchedAt: s.now()}
	if err := s.cache.Set(ctx, key.String(), entry); err != nil {
		s.log.Warn("failed to cache content document", logger.Err(err), slog.String("key", key.String()))
	}
	s.metrics.Resolved(key.Document.String(), tier)
	if tier != TierLanguage {
		s.log.Info("content resolved by fallback", slog.String("key", key.String()),
			slog.String("tier", tier))
	} else {
		s.log.Debug("content fetched", slog.String("key", key.String()))
	}
	return value
}

func (s *Store) fetchFailed(key Key, language string, err error) {
	s.metrics.FetchFailed(key.Document.String(), language)
	s.log.Warn("content fetch failed", logger.Err(err), slog.String("key", key.String()),
		slog.String("language", language))
}
