// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package server

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/wneessen/folio/internal/logger"
)

func (s *Server) HandlerAPICacheGet(w http.ResponseWriter, r *http.Request) {
	status, err := s.site.CacheStatus(r.Context())
	if err != nil {
		s.log.Error("failed to read cache status", logger.Err(err))
		s.renderErr(w, r, ErrUnexpected(err))
		return
	}
	if err = render.Render(w, r, NewResponse(http.StatusOK, "content cache status", status)); err != nil {
		s.log.Error("failed to render cache status", logger.Err(err))
	}
}

func (s *Server) HandlerAPICacheDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.site.ClearCache(r.Context()); err != nil {
		s.log.Error("failed to clear content cache", logger.Err(err))
		s.renderErr(w, r, ErrUnexpected(err))
		return
	}
	if err := render.Render(w, r, NewResponse(http.StatusOK, "content cache cleared", nil)); err != nil {
		s.log.Error("failed to render cache clear response", logger.Err(err))
	}
}
