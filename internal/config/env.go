package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// ApplyEnvOverrides reads configuration values from environment variables and
// overrides fields in the provided Config. Returns an error if parsing fails.
//
// Environment variables supported:
// - FORGE_BASE_IMAGE (string, e.g. "python:3.12-slim")
// - FORGE_WORKDIR (string, e.g. "/app")
// - FORGE_PORT (int, e.g. 8000)
// - FORGE_ENTRYPOINT (string, e.g. "main.py")
// - FORGE_MANIFEST (string, e.g. "requirements.txt")
// - FORGE_VERIFY_BASE_IMAGE (bool)
// - FORGE_VERIFY_TIMEOUT (duration, e.g. "15s")
// - FORGE_LISTEN_ADDR (string, e.g. ":3000")
// - FORGE_PROXY_DOMAIN (string, e.g. "localhost")
// - FORGE_STOP_TIMEOUT (duration)
// - FORGE_METRICS_ENABLED (bool)
// - FORGE_METRICS_PORT (int)
// - FORGE_STATE_DIR (string)
// - FORGE_LOG_LEVEL (string)
func ApplyEnvOverrides(cfg *Config) error {
	for _, s := range []struct {
		key string
		dst *string
	}{
		{"FORGE_BASE_IMAGE", &cfg.BaseImage},
		{"FORGE_WORKDIR", &cfg.WorkDir},
		{"FORGE_ENTRYPOINT", &cfg.Entrypoint},
		{"FORGE_MANIFEST", &cfg.Manifest},
		{"FORGE_LISTEN_ADDR", &cfg.ListenAddr},
		{"FORGE_PROXY_DOMAIN", &cfg.ProxyDomain},
		{"FORGE_STATE_DIR", &cfg.StateDir},
		{"FORGE_LOG_LEVEL", &cfg.LogLevel},
	} {
		if v := os.Getenv(s.key); v != "" {
			*s.dst = v
		}
	}

	for _, i := range []struct {
		key string
		dst *int
	}{
		{"FORGE_PORT", &cfg.Port},
		{"FORGE_METRICS_PORT", &cfg.MetricsPort},
	} {
		if v := os.Getenv(i.key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", i.key, err)
			}
			*i.dst = n
		}
	}

	for _, d := range []struct {
		key string
		dst *time.Duration
	}{
		{"FORGE_VERIFY_TIMEOUT", &cfg.VerifyTimeout},
		{"FORGE_STOP_TIMEOUT", &cfg.StopTimeout},
	} {
		if v := os.Getenv(d.key); v != "" {
			dur, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", d.key, err)
			}
			*d.dst = dur
		}
	}

	if err := setBoolEnv("FORGE_VERIFY_BASE_IMAGE", func(b bool) { cfg.VerifyBaseImage = b }); err != nil {
		return err
	}
	if err := setBoolEnv("FORGE_METRICS_ENABLED", func(b bool) { cfg.MetricsEnabled = b }); err != nil {
		return err
	}
	return nil
}

func setBoolEnv(key string, set func(bool)) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	set(b)
	return nil
}
