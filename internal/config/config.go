package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config is the process-wide runtime configuration, loaded once at startup.
type Config struct {
	Addr         string
	DatabasePath string
	AppEnv       string

	// SetsToWin is the number of sets a side must take to win a match.
	SetsToWin int
}

func LoadFromEnv() (Config, error) {
	cfg := Config{
		Addr:         os.Getenv("BACKEND_ADDR"),
		DatabasePath: os.Getenv("DATABASE_PATH"),
		AppEnv:       strings.TrimSpace(os.Getenv("APP_ENV")),
		SetsToWin:    2,
	}
	if cfg.AppEnv == "" {
		cfg.AppEnv = "development"
	}

	if v := strings.TrimSpace(os.Getenv("MATCH_SETS_TO_WIN")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SetsToWin = n
		} else {
			fmt.Fprintf(os.Stderr, "WARNING: invalid MATCH_SETS_TO_WIN=%q, using default %d\n", v, cfg.SetsToWin)
		}
	}

	var missing []string
	if cfg.DatabasePath == "" {
		missing = append(missing, "DATABASE_PATH")
	}
	// BACKEND_ADDR is optional if PORT is set by the hosting environment.
	if cfg.Addr == "" {
		if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
			if strings.Contains(port, ":") {
				cfg.Addr = port
			} else {
				cfg.Addr = ":" + port
			}
		}
	}
	if cfg.Addr == "" {
		missing = append(missing, "BACKEND_ADDR (or PORT)")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing/invalid env: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}
