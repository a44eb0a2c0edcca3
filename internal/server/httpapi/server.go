package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/svalekar/voterreg/internal/logging"
)

// HTTPServer runs the REST surface and drains in-flight requests on
// shutdown.
type HTTPServer struct {
	srv             *http.Server
	shutdownTimeout time.Duration
	logger          logging.Logger
}

func NewHTTPServer(addr string, handler http.Handler, shutdownTimeout time.Duration, logger logging.Logger) *HTTPServer {
	return &HTTPServer{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		shutdownTimeout: shutdownTimeout,
		logger:          logger,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully within the
// configured timeout.
func (s *HTTPServer) Run(ctx context.Context) error {

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "http server listening", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	s.logger.Info(shutdownCtx, "http server shutting down")
	return s.srv.Shutdown(shutdownCtx)
}
