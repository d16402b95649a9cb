package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/SlickbitTechnologies/doclens-forge/internal/core/domain"
)

// Config holds runtime configuration for forge
type Config struct {
	// Build defaults, overridable per request / per CLI invocation.
	BaseImage  string `json:"base_image" yaml:"base_image"`
	WorkDir    string `json:"workdir" yaml:"workdir"`
	Port       int    `json:"port" yaml:"port"`
	Entrypoint string `json:"entrypoint" yaml:"entrypoint"`
	Manifest   string `json:"manifest" yaml:"manifest"`

	// VerifyBaseImage checks the base reference against its registry before
	// handing the build to the daemon. Requires network access to the
	// registry, so it is opt-in.
	VerifyBaseImage bool          `json:"verify_base_image" yaml:"verify_base_image"`
	VerifyTimeout   time.Duration `json:"verify_timeout" yaml:"verify_timeout"`

	// API server
	ListenAddr string `json:"listen_addr" yaml:"listen_addr"`
	// ProxyDomain is the suffix the subdomain reverse proxy strips, e.g.
	// "localhost" routes doclens.localhost to the container named doclens.
	ProxyDomain string `json:"proxy_domain" yaml:"proxy_domain"`

	// StopTimeout bounds graceful container shutdown.
	StopTimeout time.Duration `json:"stop_timeout" yaml:"stop_timeout"`

	// Metrics
	MetricsEnabled bool `json:"metrics_enabled" yaml:"metrics_enabled"`
	MetricsPort    int  `json:"metrics_port" yaml:"metrics_port"`

	// StateDir holds the build history file. Empty means the default
	// location (see internal/state).
	StateDir string `json:"state_dir" yaml:"state_dir"`

	LogLevel string `json:"log_level" yaml:"log_level"`
}

// DefaultConfig returns a sane default configuration
func DefaultConfig() *Config {
	return &Config{
		BaseImage:  domain.DefaultBaseImage,
		WorkDir:    domain.DefaultWorkDir,
		Port:       domain.DefaultPort,
		Entrypoint: domain.DefaultEntrypoint,
		Manifest:   domain.DefaultManifest,

		VerifyBaseImage: false,
		VerifyTimeout:   15 * time.Second,

		ListenAddr:  ":3000",
		ProxyDomain: "localhost",
		StopTimeout: 10 * time.Second,

		MetricsEnabled: false,
		MetricsPort:    9090,

		LogLevel: "info",
	}
}

// BuildSpec materializes the configured build defaults.
func (c *Config) BuildSpec() domain.BuildSpec {
	return domain.BuildSpec{
		BaseImage:  c.BaseImage,
		WorkDir:    c.WorkDir,
		Port:       c.Port,
		Entrypoint: c.Entrypoint,
		Manifest:   c.Manifest,
	}
}

// Validate returns a list of non-fatal configuration warnings.
func (c *Config) Validate() []string {
	var warnings []string
	checks := []struct {
		cond bool
		msg  string
	}{
		{c.Port < 1 || c.Port > 65535, fmt.Sprintf("port %d out of range, builds will be rejected", c.Port)},
		{c.MetricsEnabled && (c.MetricsPort < 1 || c.MetricsPort > 65535), fmt.Sprintf("invalid metrics port %d", c.MetricsPort)},
		{c.VerifyBaseImage && c.VerifyTimeout <= 0, "base image verification enabled with a non-positive timeout"},
		{c.StopTimeout <= 0, "stop timeout must be positive"},
	}
	for _, ch := range checks {
		if ch.cond {
			warnings = append(warnings, ch.msg)
		}
	}
	return warnings
}

// LoadConfigFromFile loads config from a YAML/JSON file
func LoadConfigFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
