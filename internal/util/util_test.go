package util

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("NATS_URL", "")
	t.Setenv("LOG_LEVEL", "")

	config, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	want := DefaultConfig()
	if config.Server.Address != ":9000" || config.Server.WebSocketPath != want.Server.WebSocketPath {
		t.Errorf("server = %+v", config.Server)
	}
	if config.Nats.URL != "" {
		t.Errorf("NATS should be disabled by default, got %q", config.Nats.URL)
	}
	if config.Server.MaxMessageSize != 0 {
		t.Errorf("MaxMessageSize = %d, want 0", config.Server.MaxMessageSize)
	}
}

func TestLoadConfigFile(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("NATS_URL", "")
	t.Setenv("LOG_LEVEL", "")
	path := writeConfig(t, `
server:
  address: "127.0.0.1:8081"
  send_buffer: 64
  allowed_origins: ["https://chat.example"]
  shutdown_timeout: 3s
nats:
  url: nats://broker:4222
logger:
  level: debug
  log_to_json: true
`)

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if config.Server.Address != "127.0.0.1:8081" {
		t.Errorf("Address = %q", config.Server.Address)
	}
	if config.Server.SendBuffer != 64 {
		t.Errorf("SendBuffer = %d", config.Server.SendBuffer)
	}
	if len(config.Server.AllowedOrigins) != 1 || config.Server.AllowedOrigins[0] != "https://chat.example" {
		t.Errorf("AllowedOrigins = %v", config.Server.AllowedOrigins)
	}
	if config.Server.ShutdownTimeout != 3*time.Second {
		t.Errorf("ShutdownTimeout = %v", config.Server.ShutdownTimeout)
	}
	if config.Server.WebSocketPath != "/socket" {
		t.Errorf("unset fields should keep defaults, WebSocketPath = %q", config.Server.WebSocketPath)
	}
	if config.Nats.URL != "nats://broker:4222" || config.Nats.SubjectPrefix != "chatrelay" {
		t.Errorf("nats = %+v", config.Nats)
	}
	if config.Logger.Level != "debug" || !config.Logger.LogToJSON {
		t.Errorf("logger = %+v", config.Logger)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "7000")
	t.Setenv("NATS_URL", "nats://env:4222")
	t.Setenv("LOG_LEVEL", "warn")
	path := writeConfig(t, "server:\n  address: \"0.0.0.0:8081\"\n")

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if config.Server.Address != "0.0.0.0:7000" {
		t.Errorf("Address = %q, want 0.0.0.0:7000", config.Server.Address)
	}
	if config.Nats.URL != "nats://env:4222" {
		t.Errorf("Nats.URL = %q", config.Nats.URL)
	}
	if config.Logger.Level != "warn" {
		t.Errorf("Logger.Level = %q", config.Logger.Level)
	}
}

func TestLoadConfigMalformed(t *testing.T) {
	t.Setenv("PORT", "")
	path := writeConfig(t, "server: [not, a, map")

	config, err := LoadConfig(path)
	if err == nil {
		t.Fatal("LoadConfig() expected error for malformed YAML")
	}
	if config.Server.Address != ":9000" {
		t.Errorf("defaults should be returned on error, Address = %q", config.Server.Address)
	}
}
