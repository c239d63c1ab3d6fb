package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds everything the app reads from the environment. A .env file is
// honored when present (loaded in main), real environment variables win.
type Config struct {
	Addr          string
	DatabasePath  string
	SecretKey     string
	SessionMaxAge int // seconds
	TemplateDir   string
	StaticDir     string
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int, errs *[]string) int {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("invalid value for %s: expected integer, got %q", key, v))
		return fallback
	}
	return n
}

// loadConfig reads the environment, collecting every problem before failing
// so a misconfigured deployment reports all of it at once.
func loadConfig() (*Config, error) {
	var errs []string

	cfg := &Config{
		Addr:          getEnv("JOURNAL_ADDR", ":3000"),
		DatabasePath:  getEnv("JOURNAL_DB_PATH", "./journal.db"),
		SecretKey:     getEnv("JOURNAL_SECRET_KEY", ""),
		SessionMaxAge: getEnvInt("JOURNAL_SESSION_MAX_AGE", 86400, &errs),
		TemplateDir:   getEnv("JOURNAL_TEMPLATE_DIR", "templates"),
		StaticDir:     getEnv("JOURNAL_STATIC_DIR", "static"),
	}

	if cfg.SessionMaxAge <= 0 {
		errs = append(errs, "JOURNAL_SESSION_MAX_AGE must be positive")
	}
	if cfg.SecretKey == "" {
		errs = append(errs, "missing required environment variable: JOURNAL_SECRET_KEY")
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration errors:\n- %s", strings.Join(errs, "\n- "))
	}
	return cfg, nil
}
