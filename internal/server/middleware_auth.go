// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package server

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/render"

	"github.com/wneessen/folio/internal/logger"
)

var ErrInvalidToken = errors.New("missing or invalid admin token")

// adminAuth requires the configured admin token as bearer token. Requests are always denied
// while no token is configured.
func (s *Server) adminAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := s.config.Server.AdminToken
		scheme, given, ok := strings.Cut(r.Header.Get("Authorization"), " ")
		if token == "" || !ok || !strings.EqualFold(scheme, "bearer") ||
			subtle.ConstantTimeCompare([]byte(strings.TrimSpace(given)), []byte(token)) != 1 {
			w.Header().Set("WWW-Authenticate", `Bearer realm="folio"`)
			if err := render.Render(w, r, ErrUnauthorized(ErrInvalidToken)); err != nil {
				s.log.Error("failed to render error response", logger.Err(err))
			}
			return
		}
		next.ServeHTTP(w, r)
	})
}
