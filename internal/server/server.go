// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wneessen/folio/internal/cache"
	"github.com/wneessen/folio/internal/cache/inmemory"
	"github.com/wneessen/folio/internal/cache/redis"
	"github.com/wneessen/folio/internal/config"
	"github.com/wneessen/folio/internal/contact"
	"github.com/wneessen/folio/internal/content"
	"github.com/wneessen/folio/internal/httpclient"
	"github.com/wneessen/folio/internal/logger"
	"github.com/wneessen/folio/internal/mailer"
	"github.com/wneessen/folio/internal/metrics"
	"github.com/wneessen/folio/internal/ratelimit"
	"github.com/wneessen/folio/internal/section"
)

const (
	CacheTypeInMemory = "inmemory"
	CacheTypeRedis    = "redis"

	ContentSourceHTTP = "http"
	ContentSourceDir  = "dir"
)

var ErrUnsupportedOption = errors.New("unsupported configuration option")

type Server struct {
	config  *config.Config
	content *content.Store
	site    *section.Site
	flow    *contact.Flow
	metrics *metrics.Metrics
	httpSrv *http.Server
	log     *logger.Logger
	mux     *chi.Mux
	version string
	closers []func() error
}

// New returns a new server instance with all services initialized from the config
func New(conf *config.Config, log *logger.Logger, version string) (*Server, error) {
	mux := chi.NewMux()
	listenAddr := net.JoinHostPort(conf.Server.BindAddress, conf.Server.BindPort)
	server := &Server{
		config: conf,
		httpSrv: &http.Server{
			Addr:              listenAddr,
			Handler:           mux,
			ReadTimeout:       conf.Server.Timeout,
			ReadHeaderTimeout: conf.Server.Timeout,
			WriteTimeout:      conf.Server.Timeout,
			IdleTimeout:       conf.Server.Timeout,
		},
		log:     log,
		mux:     mux,
		version: version,
	}
	if conf.Metrics.Enabled {
		server.metrics = metrics.New(metrics.DefaultNamespace)
	}

	backend, err := server.cacheBackend()
	if err != nil {
		return nil, err
	}
	fetcher, err := server.contentFetcher()
	if err != nil {
		server.close()
		return nil, err
	}
	server.content = content.New(fetcher, backend, content.Options{
		TTL:             conf.Cache.Lifetime,
		DefaultLanguage: conf.Content.DefaultLanguage,
		Defaults:        content.StaticDefaults(),
		Logger:          log,
		Metrics:         server.metrics,
	})
	server.site = section.NewSite(server.content)

	if server.flow, err = server.contactFlow(); err != nil {
		server.close()
		return nil, err
	}

	return server, nil
}

// Start starts up the server and waits for a shutdown signal
func (s *Server) Start(ctx context.Context) error {
	ctxServer, cancelServer := context.WithCancel(ctx)
	defer cancelServer()
	defer s.close()

	s.log.Info("starting folio http server", slog.String("listen_addr", s.httpSrv.Addr))

	// Assign routes
	s.routes(ctxServer)

	// Warm up the content cache
	if len(s.config.Content.WarmLanguages) > 0 {
		go s.warm(ctxServer, s.config.Content.WarmLanguages)
	}

	// Start http server
	var listenerFailed atomic.Bool
	go func() {
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("failed to start http listener", logger.Err(err))
			listenerFailed.Store(true)
		}
		cancelServer()
	}()
	<-ctxServer.Done()
	if listenerFailed.Load() {
		return fmt.Errorf("failed to start http listener")
	}

	// Shut down server and services
	s.log.Info("shutting down folio http server")
	ctxShutdown, cancelStop := context.WithTimeout(context.WithoutCancel(ctxServer), time.Second*5)
	defer cancelStop()
	if err := s.httpSrv.Shutdown(ctxShutdown); err != nil {
		s.log.Error("failed to shut down http server gracefully", logger.Err(err))
	}

	return nil
}

func (s *Server) warm(ctx context.Context, languages []string) {
	start := time.Now()
	if err := s.site.Warm(ctx, languages...); err != nil {
		s.log.Warn("content cache warm-up incomplete", logger.Err(err))
		return
	}
	s.log.Info("content cache warmed up", slog.Any("languages", languages),
		slog.Duration("duration", time.Since(start)))
}

func (s *Server) cacheBackend() (cache.Cache, error) {
	switch strings.ToLower(s.config.Cache.Type) {
	case "", CacheTypeInMemory:
		return inmemory.New(), nil
	case CacheTypeRedis:
		conf := s.config.Cache.Redis
		backend := redis.New(redis.Config{
			Addr:      conf.Address,
			Password:  conf.Password,
			DB:        conf.DB,
			KeyPrefix: conf.KeyPrefix,
			Expiry:    s.config.Cache.Lifetime,
		})
		s.closers = append(s.closers, backend.Close)
		return backend, nil
	default:
		return nil, fmt.Errorf("%w: cache type %q", ErrUnsupportedOption, s.config.Cache.Type)
	}
}

func (s *Server) contentFetcher() (content.Fetcher, error) {
	switch strings.ToLower(s.config.Content.Source) {
	case "", ContentSourceHTTP:
		fetcher, err := content.NewHTTPFetcher(httpclient.New(s.log), s.config.Content.BaseURL)
		if err != nil {
			return nil, err
		}
		return fetcher, nil
	case ContentSourceDir:
		fetcher, err := content.NewDirFetcher(s.config.Content.Directory)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, fetcher.Close)
		return fetcher, nil
	default:
		return nil, fmt.Errorf("%w: content source %q", ErrUnsupportedOption, s.config.Content.Source)
	}
}

func (s *Server) contactFlow() (*contact.Flow, error) {
	conf := s.config
	switch conf.Contact.Identifier {
	case contact.IdentifierGlobal, contact.IdentifierClientIP:
	default:
		return nil, fmt.Errorf("%w: contact identifier %q", ErrUnsupportedOption, conf.Contact.Identifier)
	}

	limiter, err := ratelimit.New(ratelimit.Options{
		MaxAttempts: conf.Contact.MaxAttempts,
		Window:      conf.Contact.Window,
	})
	if err != nil {
		return nil, err
	}
	s.closers = append(s.closers, limiter.Close)

	sender, err := mailer.New(mailer.Options{
		Host:          conf.Mail.Host,
		Port:          conf.Mail.Port,
		Username:      conf.Mail.Username,
		Password:      conf.Mail.Password,
		ForceTLS:      conf.Mail.ForceTLS,
		DryRun:        conf.Mail.DryRun,
		Timeout:       conf.Mail.Timeout,
		Sender:        conf.Mail.Sender,
		Recipients:    conf.Mail.Recipients,
		SubjectPrefix: conf.Mail.SubjectPrefix,
		Confirmation: mailer.Confirmation{
			Enabled: conf.Mail.Confirmation.Enabled,
			Subject: conf.Mail.Confirmation.Subject,
			Content: conf.Mail.Confirmation.Content,
		},
		Logger: s.log,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create mailer: %w", err)
	}

	return contact.NewFlow(limiter, sender, contact.Options{
		Identifier: conf.Contact.Identifier,
		Logger:     s.log,
		Metrics:    s.metrics,
	}), nil
}

// close releases the resources of all services.
func (s *Server) close() {
	for _, closeFn := range s.closers {
		if err := closeFn(); err != nil {
			s.log.Error("failed to close service", logger.Err(err))
		}
	}
	s.closers = nil
}
