// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package section

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/wneessen/folio/internal/cache/inmemory"
	"github.com/wneessen/folio/internal/content"
	"github.com/wneessen/folio/internal/testhelper"
)

var testSiteDocs = map[string]string{
	"en/hero":       testHeroEN,
	"en/about":      `{"title":"About me","paragraphs":["Hello"]}`,
	"en/skills":     `{"categories":[{"name":"Backend","skills":[{"name":"Go","level":90}]}]}`,
	"en/projects":   `{"projects":[{"id":"folio","title":"Folio"}]}`,
	"en/experience": `{"positions":[{"company":"ACME","role":"Engineer","start":"2020-01"}]}`,
	"en/contact":    `{"title":"Get in touch"}`,
	"de/hero":       testHeroDE,
}

func testSite(t *testing.T, docs map[string]string) (*Site, *atomic.Int32) {
	t.Helper()
	var fetches atomic.Int32
	fetcher := content.FetcherFunc(func(_ context.Context, language string, document content.Document) (json.RawMessage, error) {
		fetches.Add(1)
		doc, ok := docs[content.NewKey(language, document).String()]
		if !ok {
			return nil, fmt.Errorf("%s/%s: %w", language, document, errTestSource)
		}
		return json.RawMessage(doc), nil
	})
	store := content.New(fetcher, inmemory.New(), content.Options{
		Defaults: content.StaticDefaults(),
		Logger:   testhelper.Logger(),
	})
	return NewSite(store), &fetches
}

func TestSite_SetLanguage(t *testing.T) {
	site, _ := testSite(t, testSiteDocs)
	site.SetLanguage(t.Context(), "de")
	if err := site.Wait(t.Context()); err != nil {
		t.Fatalf("failed to wait for site: %s", err)
	}

	hero := site.Hero.State()
	if hero.Data == nil || hero.Data.Headline != "Softwareentwicklerin" {
		t.Errorf("expected german hero, got %+v", hero.Data)
	}
	skills := site.Skills.State()
	if skills.Data == nil || len(skills.Data.Categories) != 1 || skills.Data.Categories[0].Skills[0].Level != 90 {
		t.Errorf("expected english skills fallback, got %+v", skills.Data)
	}
	for _, snap := range site.Snapshot() {
		if snap.Language != "de" {
			t.Errorf("expected %s to be in de, got %s", snap.Document, snap.Language)
		}
		if snap.Loading || snap.Error != "" || snap.Data == nil {
			t.Errorf("expected %s to be settled with data, got %+v", snap.Document, snap)
		}
	}
}

func TestSite_Snapshot(t *testing.T) {
	site, _ := testSite(t, map[string]string{})
	site.SetLanguage(t.Context(), "en")
	_ = site.Wait(t.Context())

	snaps := site.Snapshot()
	documents := make([]content.Document, 0, len(snaps))
	for _, snap := range snaps {
		documents = append(documents, snap.Document)
		switch snap.Document {
		case content.Hero, content.About, content.Contact:
			if snap.Data == nil || snap.Error != "" {
				t.Errorf("expected static default for %s, got %+v", snap.Document, snap)
			}
		default:
			if snap.Data != nil || !strings.Contains(snap.Error, "content unavailable") {
				t.Errorf("expected %s to be unavailable, got %+v", snap.Document, snap)
			}
		}
	}
	if !slices.Equal(documents, content.Documents()) {
		t.Errorf("expected snapshots in document order, got %v", documents)
	}
}

func TestSite_Resolve(t *testing.T) {
	site, _ := testSite(t, testSiteDocs)
	data, err := site.Resolve(t.Context(), content.Experience, "en")
	if err != nil {
		t.Fatalf("failed to resolve experience: %s", err)
	}
	experience, ok := data.(Experience)
	if !ok {
		t.Fatalf("expected Experience, got %T", data)
	}
	if len(experience.Positions) != 1 || experience.Positions[0].Company != "ACME" {
		t.Errorf("unexpected experience: %+v", experience)
	}

	_, err = site.Resolve(t.Context(), content.Document("blog"), "en")
	if !errors.Is(err, content.ErrUnknownDocument) {
		t.Errorf("expected error to be %s, got %v", content.ErrUnknownDocument, err)
	}
}

func TestSite_Warm(t *testing.T) {
	t.Run("warming populates the cache", func(t *testing.T) {
		site, fetches := testSite(t, testSiteDocs)
		if err := site.Warm(t.Context(), "en", "de"); err != nil {
			t.Fatalf("failed to warm site: %s", err)
		}
		status, err := site.CacheStatus(t.Context())
		if err != nil {
			t.Fatalf("failed to get cache status: %s", err)
		}
		if status.Size != 12 {
			t.Errorf("expected 12 cached documents, got %v", status.Keys)
		}
		before := fetches.Load()
		site.SetLanguage(t.Context(), "de")
		_ = site.Wait(t.Context())
		if fetches.Load() != before {
			t.Error("expected warmed documents to be served from cache")
		}
		if site.Hero.State().Language != "de" {
			t.Error("expected site to stay in the last warmed language")
		}
	})
	t.Run("unavailable sections are reported", func(t *testing.T) {
		site, _ := testSite(t, map[string]string{"en/hero": testHeroEN})
		err := site.Warm(t.Context(), "en")
		if err == nil {
			t.Fatal("expected warming to report unavailable sections")
		}
		if !strings.Contains(err.Error(), "en/skills") || strings.Contains(err.Error(), "en/hero") {
			t.Errorf("unexpected warm error: %s", err)
		}
	})
}

func TestSite_ClearCache(t *testing.T) {
	site, fetches := testSite(t, testSiteDocs)
	if err := site.Warm(t.Context(), "en"); err != nil {
		t.Fatalf("failed to warm site: %s", err)
	}
	before := fetches.Load()
	if err := site.ClearCache(t.Context()); err != nil {
		t.Fatalf("failed to clear cache: %s", err)
	}
	if err := site.Wait(t.Context()); err != nil {
		t.Fatalf("failed to wait for site: %s", err)
	}
	if got := fetches.Load() - before; got != 6 {
		t.Errorf("expected every section to be fetched again, got %d fetches", got)
	}
	status, _ := site.CacheStatus(t.Context())
	if status.Size != 6 {
		t.Errorf("expected refetched sections to be cached again, got %v", status.Keys)
	}
}
