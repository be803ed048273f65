package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sillygoals/sillygoals/internal/observability/logger"
)

// Server runs the app listener and, when configured, a separate
// metrics listener.
type Server struct {
	app     *http.Server
	metrics *http.Server
}

// NewServer builds the listeners. metricsAddr may be empty to skip the
// metrics endpoint.
func NewServer(addr string, handler http.Handler, metricsAddr string, metricsHandler http.Handler) *Server {
	s := &Server{
		app: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
	if metricsAddr != "" && metricsHandler != nil {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metricsHandler)
		s.metrics = &http.Server{
			Addr:              metricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		}
	}
	return s
}

// Run serves until ctx is canceled, then drains both listeners.
func (s *Server) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.L().Info("http server listening", logger.String("addr", s.app.Addr))
		if err := s.app.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if s.metrics != nil {
		g.Go(func() error {
			logger.L().Info("metrics server listening", logger.String("addr", s.metrics.Addr))
			if err := s.metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		logger.L().Info("shutting down")
		if s.metrics != nil {
			_ = s.metrics.Shutdown(shutdownCtx)
		}
		return s.app.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
