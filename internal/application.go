package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rocketscienceinc/chess-relay/internal/config"
	"github.com/rocketscienceinc/chess-relay/internal/registry"
	"github.com/rocketscienceinc/chess-relay/internal/relay"
	"github.com/rocketscienceinc/chess-relay/transport/rest"
	"github.com/rocketscienceinc/chess-relay/transport/websocket"
)

const shutdownTimeout = 10 * time.Second

// RunApp - runs the application until SIGINT/SIGTERM or a server failure.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return Run(ctx, logger, conf)
}

// Run - serves the relay until ctx is canceled.
func Run(ctx context.Context, logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	sessions := registry.New()
	hub := websocket.NewHub(logger, conf.WebSocket.SendBuffer)
	relayHandler := relay.New(logger, sessions, hub)
	wsServer := websocket.New(logger, hub, relayHandler, conf.WebSocket.MaxMessageSize)

	httpServer := rest.NewServer(logger, conf.Port, wsServer)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.Info("Starting HTTP server", "port", conf.Port)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}

		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		log.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		err := httpServer.Shutdown(shutdownCtx)

		// hijacked websocket connections are not tracked by the HTTP server
		hub.Close()

		log.Info("Relay stopped", "sessions", sessions.Len())

		if err != nil {
			return fmt.Errorf("failed to shutdown HTTP server: %w", err)
		}

		return nil
	})

	if err := group.Wait(); err != nil {
		return err
	}

	return nil
}
