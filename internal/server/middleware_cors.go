// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package server

import (
	"log/slog"
	"net/http"
	"strings"
)

const AccessControlMaxAge = "600"

// preflightCheck answers CORS requests for the configured origins. Requests without an Origin
// header pass through untouched. An empty origin list allows every origin.
func (s *Server) preflightCheck(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			next.ServeHTTP(w, r)
			return
		}

		if !s.originAllowed(origin) {
			s.log.Warn("origin not allowed", slog.String("origin", origin),
				slog.String("path", r.URL.Path), slog.String("method", r.Method))
			w.WriteHeader(http.StatusForbidden)
			return
		}

		// must be set for all CORS responses
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Vary", "Origin")

		// Set CORS headers for preflight requests
		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE")
			w.Header().Set("Access-Control-Allow-Headers", r.Header.Get("Access-Control-Request-Headers"))
			w.Header().Set("Access-Control-Max-Age", AccessControlMaxAge)
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) originAllowed(origin string) bool {
	if len(s.config.Server.AllowedOrigins) == 0 {
		return true
	}
	for _, allowed := range s.config.Server.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(origin, strings.TrimSuffix(allowed, "/")) {
			return true
		}
	}
	return false
}
