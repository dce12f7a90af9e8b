// cmd/distalert-backend/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bernardothives/projeto-final-dsme/internal/backend"
	"github.com/bernardothives/projeto-final-dsme/internal/logger"
)

func main() {
	addr := flag.String("addr", ":3000", "listen address")
	level := flag.String("log-level", "INFO", "log level")
	flag.Parse()

	root := logger.New(*level, logger.FormatJSON)
	defer func() { _ = root.Sync() }()
	log := logger.For(root, "backend")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              *addr,
		Handler:           backend.NewRouter(backend.NewStore(), root),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Infow("backend listening", "addr", *addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalw("backend listener failed", "err", err)
	}
}
