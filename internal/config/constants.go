package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	ENV_PREFIX         = "NOVACHAT"
	ENV_ADDR           = "ADDR"
	ENV_PROXY_PATH     = "PROXY_PATH"
	ENV_PROVIDER       = "PROVIDER"
	ENV_MODEL          = "MODEL"
	ENV_UPSTREAM_URL   = "UPSTREAM_URL"
	ENV_SCHEMA         = "SCHEMA"
	ENV_RAW_FALLBACK   = "RAW_FALLBACK"
	ENV_CREDENTIAL_ENV = "CREDENTIAL_ENV"
	ENV_PROXY_URL      = "PROXY_URL"
	ENV_OPTIONS        = "OPTIONS"
	ENV_STORE          = "STORE"
	ENV_DATA_DIR       = "DATA_DIR"
	ENV_STORAGE_KEY    = "STORAGE_KEY"
	ENV_LOG_FILE       = "LOG_FILE"
	ENV_LOG_LEVEL      = "LOG_LEVEL"
	ENV_TELEMETRY_DIR  = "TELEMETRY_DIR"
)

const (
	DEFAULT_ADDR           = ":8888"
	DEFAULT_PROXY_PATH     = "/api/gemini"
	DEFAULT_PROVIDER       = "gemini"
	DEFAULT_CREDENTIAL_ENV = "GEMINI_API_KEY"
	DEFAULT_PROXY_URL      = "http://localhost:8888/api/gemini"
	DEFAULT_STORE          = "file"
	DEFAULT_STORAGE_KEY    = "nova_chat_history_v1"
	DEFAULT_LOG_LEVEL      = "info"
	CHAT_LOG_FILE_NAME     = "novachat.log"
)

func GetEnvWithPrefix(env string) string {
	return fmt.Sprintf("%s_%s", ENV_PREFIX, env)
}

// DefaultDataDir is where chat history and chat logs live unless overridden.
func DefaultDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".novachat"
	}
	return filepath.Join(dir, "novachat")
}
