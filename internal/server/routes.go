// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package server

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v3"
)

func (s *Server) routes(_ context.Context) {
	logFormat := httplog.SchemaECS
	logSkipPath := []string{"/ping", "/metrics"}
	logger := s.log.With(slog.String("service", "http"))
	logHandler := httplog.RequestLogger(
		logger.Logger,
		&httplog.Options{
			Level: s.config.Log.Level,
			Skip: func(req *http.Request, code int) bool {
				for _, skip := range logSkipPath {
					if strings.HasPrefix(req.URL.Path, skip) && code == 200 {
						return true
					}
				}
				return false
			},
			Schema:        logFormat,
			RecoverPanics: true,
		},
	)

	// Register middleware
	s.mux.Use(middleware.RequestID)
	s.mux.Use(middleware.RealIP)
	s.mux.Use(middleware.StripSlashes)
	s.mux.Use(middleware.Compress(5))
	s.mux.Use(logHandler)
	s.mux.Use(s.serverHeader)
	s.mux.Use(s.preflightCheck)

	// Register routes
	s.mux.Get("/ping", s.HandlerAPIPingGet)
	s.mux.Route("/api/v1", func(r chi.Router) {
		r.Get("/content/{lang}/{document}", s.HandlerAPIContentGet)
		r.Get("/sections", s.HandlerAPISectionsGet)
		r.Get("/sections/{section}", s.HandlerAPISectionGet)
		if s.config.Server.AdminToken != "" {
			r.With(s.adminAuth).Route("/cache", func(r chi.Router) {
				r.Get("/", s.HandlerAPICacheGet)
				r.Delete("/", s.HandlerAPICacheDelete)
			})
		} else {
			s.log.Info("no admin token configured, cache administration is disabled")
		}
		r.Get("/contact", s.HandlerAPIContactGet)
		r.Post("/contact", s.HandlerAPIContactPost)
	})
	if s.metrics != nil {
		s.mux.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}
}
