// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"golang.org/x/text/language"

	"github.com/wneessen/folio/internal/content"
	"github.com/wneessen/folio/internal/logger"
	"github.com/wneessen/folio/internal/section"
)

type ContentResponse struct {
	Document content.Document `json:"document"`
	Language string           `json:"language"`
	Content  json.RawMessage  `json:"content"`
}

func (s *Server) HandlerAPIContentGet(w http.ResponseWriter, r *http.Request) {
	document, ok := content.ParseDocument(chi.URLParam(r, "document"))
	if !ok {
		s.renderErr(w, r, ErrNotFound(fmt.Errorf("%w: %q", content.ErrUnknownDocument,
			chi.URLParam(r, "document"))))
		return
	}
	lang := content.NormalizeLanguage(chi.URLParam(r, "lang"), s.content.DefaultLanguage())

	raw, err := s.content.Get(r.Context(), document, lang)
	if err != nil {
		s.renderContentErr(w, r, err)
		return
	}

	resp := NewResponse(http.StatusOK, "content document resolved", ContentResponse{
		Document: document,
		Language: lang,
		Content:  raw,
	})
	if err = render.Render(w, r, resp); err != nil {
		s.log.Error("failed to render ContentResponse", logger.Err(err))
	}
}

// requestLanguage returns the language of the request. The lang query parameter takes
// precedence over the Accept-Language header, the store default is used if neither is set.
func (s *Server) requestLanguage(r *http.Request) string {
	fallback := s.content.DefaultLanguage()
	if lang := r.URL.Query().Get("lang"); lang != "" {
		return content.NormalizeLanguage(lang, fallback)
	}
	tags, _, err := language.ParseAcceptLanguage(r.Header.Get("Accept-Language"))
	if err != nil || len(tags) == 0 {
		return fallback
	}
	base, _ := tags[0].Base()
	return content.NormalizeLanguage(base.String(), fallback)
}

func (s *Server) renderContentErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, content.ErrUnknownDocument):
		s.renderErr(w, r, ErrNotFound(err))
	case errors.Is(err, content.ErrContentUnavailable):
		s.renderErr(w, r, ErrServiceUnavailable(err))
	case errors.Is(err, section.ErrInvalidPayload):
		s.log.Error("content document does not match its section", logger.Err(err))
		s.renderErr(w, r, ErrBadGateway(err))
	case errors.Is(err, context.Canceled):
		s.log.Debug("client went away before content was resolved", slog.String("path", r.URL.Path))
	default:
		s.log.Error("failed to resolve content", logger.Err(err), slog.String("path", r.URL.Path))
		s.renderErr(w, r, ErrUnexpected(err))
	}
}

func (s *Server) renderErr(w http.ResponseWriter, r *http.Request, resp *Response) {
	if err := render.Render(w, r, resp); err != nil {
		s.log.Error("failed to render error response", logger.Err(err))
	}
}
