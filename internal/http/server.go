package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/recipebook-backend/internal/platform/logger"
)

type Server struct {
	log             *logger.Logger
	httpServer      *http.Server
	shutdownTimeout time.Duration
}

func NewServer(log *logger.Logger, addr string, shutdownTimeout time.Duration, cfg RouterConfig) *Server {
	return &Server{
		log: log.With("component", "HTTPServer"),
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           NewRouter(cfg),
			ReadHeaderTimeout: 10 * time.Second,
		},
		shutdownTimeout: shutdownTimeout,
	}
}

func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

// Run serves until ctx is cancelled, then drains in-flight requests for at
// most the shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.log.Info("HTTP server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		s.log.Info("HTTP server shutting down")
		return s.httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
