// internal/api/api.go
// Provides StartServer: NATS wiring, the hub loop and the HTTP routes.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/erilali/chatrelay/internal/hub"
	"github.com/erilali/chatrelay/internal/logger"
	"github.com/erilali/chatrelay/internal/util"
	"github.com/nats-io/nats.go"
)

const (
	version          = "1.0.0"
	natsConnectWait  = 2 * time.Second
	natsDrainTimeout = 5 * time.Second
)

// ConnectNATS dials the mirror broker. An empty URL means the mirror is off
// and returns a nil connection without error.
func ConnectNATS(cfg util.NatsConfig, serverLogger *logger.Logger) (*nats.Conn, error) {
	if cfg.URL == "" {
		return nil, nil
	}
	serverLogger.Infof("Connecting to NATS at %s", cfg.URL)
	nc, err := nats.Connect(cfg.URL,
		nats.Name("chatrelay"),
		nats.Timeout(natsConnectWait),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				serverLogger.Warnf("NATS disconnected: %v", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			serverLogger.Infof("NATS reconnected to %s", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS at %s: %w", cfg.URL, err)
	}
	return nc, nil
}

// NewMux builds the HTTP routes around h. nc may be nil.
func NewMux(cfg util.ServerConfig, h *hub.Hub, nc *nats.Conn) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc(cfg.WebSocketPath, h.ServeWs)
	mux.HandleFunc("/health", healthHandler(h, nc))
	if cfg.StaticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(cfg.StaticDir)))
	}
	return mux
}

func healthHandler(h *hub.Hub, nc *nats.Conn) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		natsStatus := "disabled"
		if nc != nil {
			natsStatus = "disconnected"
			if nc.Status() == nats.CONNECTED {
				natsStatus = "connected"
			}
		}
		health := map[string]interface{}{
			"status":  "ok",
			"version": version,
			"clients": h.Count(),
			"nats":    natsStatus,
			"uptime":  time.Since(h.StartTime).Round(time.Second).String(),
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(health)
	}
}

// StartServer runs the relay until ctx is cancelled, then shuts the HTTP
// server, the hub and the NATS connection down in that order.
func StartServer(ctx context.Context, cfg util.Config, serverLogger *logger.Logger) error {
	nc, err := ConnectNATS(cfg.Nats, serverLogger)
	if err != nil {
		serverLogger.Errorf("Error connecting to NATS: %v", err)
		serverLogger.Warn("Running without NATS connection. Event mirroring will be disabled.")
	} else if nc != nil {
		serverLogger.Info("Successfully connected to NATS")
	}

	hubLogger := logger.NewLogger("hub")
	mirror := hub.NewNatsMirror(nc, cfg.Nats.SubjectPrefix, hubLogger)
	h := hub.NewHub(hub.Options{
		SendBuffer:     cfg.Server.SendBuffer,
		MaxMessageSize: cfg.Server.MaxMessageSize,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}, mirror, hubLogger)

	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go h.Run(hubCtx)

	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           NewMux(cfg.Server, h, nc),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		serverLogger.Infof("Server started at %s (websocket %s)", cfg.Server.Address, cfg.Server.WebSocketPath)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		stopHub()
		<-h.Done()
		closeNATS(nc, serverLogger)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen on %s: %w", cfg.Server.Address, err)
	case <-ctx.Done():
	}

	serverLogger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		serverLogger.Warnf("HTTP shutdown: %v", err)
	}
	stopHub()
	<-h.Done()
	closeNATS(nc, serverLogger)
	return nil
}

func closeNATS(nc *nats.Conn, serverLogger *logger.Logger) {
	if nc == nil {
		return
	}
	done := make(chan struct{})
	nc.SetClosedHandler(func(*nats.Conn) { close(done) })
	if err := nc.Drain(); err != nil {
		serverLogger.Warnf("NATS drain: %v", err)
		nc.Close()
		return
	}
	select {
	case <-done:
	case <-time.After(natsDrainTimeout):
		nc.Close()
	}
}
