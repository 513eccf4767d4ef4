package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds every environment-driven setting the server reads at
// startup. Fields map 1:1 onto the env vars documented for the MCP
// surface; defaults match what a bare `terminator-mcp` invocation needs
// to run against stdio with no extra setup.
type Config struct {
	// Transport is "stdio" or "http".
	Transport string
	HTTPAddr  string

	AuthToken        string
	MaxConcurrent    int
	DefaultTimeout   time.Duration
	LogDir           string
	LogLevel         string
	WorkspaceDir     string
	BridgePort       int
	BridgeAuthSecret string
}

// Load reads Config from the process environment, applying the same
// defaults documented for the MCP server.
func Load() *Config {
	c := &Config{
		Transport:        getEnvDefault("TERMINATOR_MCP_TRANSPORT", "stdio"),
		HTTPAddr:         getEnvDefault("MCP_HTTP_ADDR", "127.0.0.1:8787"),
		AuthToken:        os.Getenv("MCP_AUTH_TOKEN"),
		MaxConcurrent:    getEnvInt("MCP_MAX_CONCURRENT", 4),
		DefaultTimeout:   time.Duration(getEnvInt("MCP_DEFAULT_TIMEOUT_MS", 30000)) * time.Millisecond,
		LogDir:           getEnvDefault("TERMINATOR_LOG_DIR", ""),
		LogLevel:         getEnvDefault("LOG_LEVEL", "info"),
		WorkspaceDir:     getEnvDefault("WORKSPACE_DIR", "."),
		BridgePort:       getEnvInt("TERMINATOR_BRIDGE_PORT", 17373),
		BridgeAuthSecret: os.Getenv("TERMINATOR_BRIDGE_SECRET"),
	}
	log.Printf("[Config] transport=%s http_addr=%s max_concurrent=%d default_timeout=%s bridge_port=%d",
		c.Transport, c.HTTPAddr, c.MaxConcurrent, c.DefaultTimeout, c.BridgePort)
	return c
}

func getEnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("[Config] invalid integer for %s=%q, using default %d", key, v, def)
		return def
	}
	return n
}
