// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package server

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/wneessen/folio/internal/content"
	"github.com/wneessen/folio/internal/logger"
	"github.com/wneessen/folio/internal/section"
)

type SectionResponse struct {
	Section  content.Document `json:"section"`
	Language string           `json:"language"`
	Data     any              `json:"data"`
}

type SectionsResponse struct {
	Sections []section.Snapshot `json:"sections"`
}

// HandlerAPISectionsGet returns the state of all section accessors.
func (s *Server) HandlerAPISectionsGet(w http.ResponseWriter, r *http.Request) {
	resp := NewResponse(http.StatusOK, "section states", SectionsResponse{Sections: s.site.Snapshot()})
	if err := render.Render(w, r, resp); err != nil {
		s.log.Error("failed to render SectionsResponse", logger.Err(err))
	}
}

// HandlerAPISectionGet resolves a single typed section in the request language.
func (s *Server) HandlerAPISectionGet(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "section")
	document, ok := content.ParseDocument(name)
	if !ok {
		s.renderErr(w, r, ErrNotFound(fmt.Errorf("%w: %q", content.ErrUnknownDocument, name)))
		return
	}
	lang := s.requestLanguage(r)

	data, err := s.site.Resolve(r.Context(), document, lang)
	if err != nil {
		s.renderContentErr(w, r, err)
		return
	}

	w.Header().Set("Content-Language", lang)
	resp := NewResponse(http.StatusOK, "section resolved", SectionResponse{
		Section:  document,
		Language: lang,
		Data:     data,
	})
	if err = render.Render(w, r, resp); err != nil {
		s.log.Error("failed to render SectionResponse", logger.Err(err))
	}
}
