package provider

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/nickldimartino/bdct/internal/logging"
)

const (
	DefaultPort     = "9010"
	listenHost      = "127.0.0.1"
	shutdownTimeout = 10 * time.Second
)

// Addr returns the loopback listen address for port, or for DefaultPort
// when port is empty.
func Addr(port string) string {
	if port == "" {
		port = DefaultPort
	}
	return net.JoinHostPort(listenHost, port)
}

// Serve listens on addr until ctx is done, then shuts down gracefully.
func Serve(ctx context.Context, addr string, logger *slog.Logger) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return serveListener(ctx, ln, logger)
}

func serveListener(ctx context.Context, ln net.Listener, logger *slog.Logger) error {
	if logger == nil {
		logger = logging.Discard()
	}
	srv := &http.Server{
		Handler:           NewRouter(logger),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errorCh := make(chan error, 1)
	go func() {
		logger.Info("provider listening", "url", "http://"+ln.Addr().String())
		errorCh <- srv.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		logger.Info("provider stopped")
		return nil
	case err := <-errorCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
