package util

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/erilali/chatrelay/internal/logger"
	"gopkg.in/yaml.v2"
)

const defaultPort = "9000"

// ServerConfig controls the HTTP/WebSocket listener.
type ServerConfig struct {
	Address         string        `yaml:"address"`
	WebSocketPath   string        `yaml:"websocket_path"`
	StaticDir       string        `yaml:"static_dir"`
	SendBuffer      int           `yaml:"send_buffer"`
	MaxMessageSize  int64         `yaml:"max_message_size"` // 0 disables the transport read limit
	AllowedOrigins  []string      `yaml:"allowed_origins"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// NatsConfig controls the optional event mirror. An empty URL disables it.
type NatsConfig struct {
	URL           string `yaml:"url"`
	SubjectPrefix string `yaml:"subject_prefix"`
}

// Config is the full relay configuration.
type Config struct {
	Server ServerConfig     `yaml:"server"`
	Nats   NatsConfig       `yaml:"nats"`
	Logger logger.LogConfig `yaml:"logger"`
}

func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Address:         ":" + defaultPort,
			WebSocketPath:   "/socket",
			StaticDir:       "public",
			SendBuffer:      256,
			ShutdownTimeout: 10 * time.Second,
		},
		Nats: NatsConfig{
			SubjectPrefix: "chatrelay",
		},
		Logger: logger.DefaultLogConfig(),
	}
}

// LoadConfig reads a YAML config file on top of the defaults and applies
// environment overrides. A missing file is not an error.
func LoadConfig(filePath string) (Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(filePath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &config); err != nil {
			config = DefaultConfig()
			applyEnv(&config)
			return config, fmt.Errorf("parse %s: %w", filePath, err)
		}
	case os.IsNotExist(err):
	default:
		applyEnv(&config)
		return config, fmt.Errorf("read %s: %w", filePath, err)
	}

	applyEnv(&config)
	return config, nil
}

func applyEnv(config *Config) {
	if port := os.Getenv("PORT"); port != "" {
		host, _, err := net.SplitHostPort(config.Server.Address)
		if err != nil {
			host = ""
		}
		config.Server.Address = net.JoinHostPort(host, port)
	}
	if url := os.Getenv("NATS_URL"); url != "" {
		config.Nats.URL = url
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.Logger.Level = level
	}
}
