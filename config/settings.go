// Package config loads application settings from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Settings holds everything the agents and adapters need at startup.
type Settings struct {
	// LLM configuration.
	LLMProvider string
	LLMAPIKey   string
	LLMModel    string
	LLMBaseURL  string

	// Web search.
	BraveAPIKey string

	// Gmail OAuth.
	GmailCredentialsFile string
	GmailTokenFile       string
	GmailScopes          []string

	// Application settings.
	LogLevel         string
	MaxSearchResults int
	RequestTimeout   time.Duration
}

// Load reads settings from the environment. A .env file in the working
// directory is loaded first if present; real environment variables win.
// LLM_API_KEY and BRAVE_API_KEY are required.
func Load() (*Settings, error) {
	_ = godotenv.Load()

	s := &Settings{
		LLMProvider:          getenv("LLM_PROVIDER", "openai"),
		LLMAPIKey:            os.Getenv("LLM_API_KEY"),
		LLMModel:             getenv("LLM_MODEL", "gpt-4o"),
		LLMBaseURL:           getenv("LLM_BASE_URL", "https://api.openai.com"),
		BraveAPIKey:          os.Getenv("BRAVE_API_KEY"),
		GmailCredentialsFile: getenv("GMAIL_CREDENTIALS_FILE", "credentials/credentials.json"),
		GmailTokenFile:       getenv("GMAIL_TOKEN_FILE", "credentials/token.json"),
		GmailScopes:          []string{"https://www.googleapis.com/auth/gmail.modify"},
		LogLevel:             getenv("LOG_LEVEL", "info"),
	}

	var missing []string
	if s.LLMAPIKey == "" {
		missing = append(missing, "LLM_API_KEY")
	}
	if s.BraveAPIKey == "" {
		missing = append(missing, "BRAVE_API_KEY")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	var err error
	if s.MaxSearchResults, err = getint("MAX_SEARCH_RESULTS", 10); err != nil {
		return nil, err
	}
	timeoutSecs, err := getint("REQUEST_TIMEOUT", 30)
	if err != nil {
		return nil, err
	}
	s.RequestTimeout = time.Duration(timeoutSecs) * time.Second

	return s, nil
}

// NewLogger builds a production zap logger at the configured level.
func (s *Settings) NewLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(s.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", s.LogLevel, err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	return cfg.Build()
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getint(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}
