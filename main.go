// main.go
// Application entry point: loads configuration, initializes the logger and runs the relay.
package main

import (
	"context"
	"flag"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/erilali/chatrelay/internal/api"
	"github.com/erilali/chatrelay/internal/logger"
	"github.com/erilali/chatrelay/internal/util"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	config, err := util.LoadConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v, using defaults\n", err)
	}

	logger.InitLogger(config.Logger)
	serverLogger := logger.NewLogger("server")
	serverLogger.WithFields(map[string]interface{}{
		"level":       config.Logger.Level,
		"log_to_file": config.Logger.LogToFile,
		"log_to_json": config.Logger.LogToJSON,
		"address":     config.Server.Address,
		"nats_url":    config.Nats.URL,
	}).Info("Configuration loaded")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := api.StartServer(ctx, config, serverLogger); err != nil {
		serverLogger.Fatalf("Server error: %v", err)
	}
}
