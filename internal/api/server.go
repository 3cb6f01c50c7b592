package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/eleven-am/genkit/internal/logger"
)

// ServerOptions configures ListenAndServe.
type ServerOptions struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// ListenAndServe serves handler until ctx is canceled, then shuts down gracefully.
func ListenAndServe(ctx context.Context, opts ServerOptions, handler http.Handler) error {
	server := &http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadTimeout:       opts.ReadTimeout,
		ReadHeaderTimeout: opts.ReadTimeout,
		WriteTimeout:      opts.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.API().Info("Starting server", "addr", opts.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.API().Info("Shutting down server")
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
