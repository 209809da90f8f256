package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Load reads configuration from configPath, merging any included files.
// An empty configPath yields Defaults with environment interpolation, which
// is enough to run with only DISCORD_PUBLIC_KEY set.
func Load(configPath string) (*Config, error) {
	cfg := Defaults()

	if configPath != "" {
		absPath, err := resolveConfigPath(configPath)
		if err != nil {
			return nil, err
		}

		files, err := overlayFile(cfg, absPath, make(map[string]bool))
		if err != nil {
			return nil, err
		}

		if err := verifyChecksums(files); err != nil {
			return nil, err
		}
	}

	// Defaults may still hold placeholders the files never overrode.
	cfg.Interactions.PublicKey = interpolateEnv(cfg.Interactions.PublicKey)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// DiscoverConfigPath finds a config file by checking standard locations.
// Priority order: $SLASHGW_CONFIG, ~/.config/slashgw/config.yaml,
// /etc/slashgw/config.yaml, ./config.yaml. Returns "" when none exist.
func DiscoverConfigPath() string {
	candidates := []string{}
	if p := os.Getenv("SLASHGW_CONFIG"); p != "" {
		candidates = append(candidates, p)
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(homeDir, ".config", "slashgw", "config.yaml"))
	}
	candidates = append(candidates, "/etc/slashgw/config.yaml", "./config.yaml")

	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// ConfigFiles returns the root config file and every file it includes.
func ConfigFiles(configPath string) ([]string, error) {
	absPath, err := resolveConfigPath(configPath)
	if err != nil {
		return nil, err
	}
	return overlayFile(Defaults(), absPath, make(map[string]bool))
}

func resolveConfigPath(configPath string) (string, error) {
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve config path %q: %w", configPath, err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return "", fmt.Errorf("config file not found: %s\n"+
			"Hint: Check the path or run with --config flag", absPath)
	}

	if info.IsDir() {
		absPath = filepath.Join(absPath, "config.yaml")
		if _, err := os.Stat(absPath); err != nil {
			return "", fmt.Errorf("directory provided but config.yaml not found: %s", absPath)
		}
	}
	return absPath, nil
}

// overlayFile decodes path on top of cfg, then each of its includes in order,
// so later files win. Returns every file read, root first.
func overlayFile(cfg *Config, path string, visited map[string]bool) ([]string, error) {
	if visited[path] {
		return nil, fmt.Errorf("circular include detected: %s", path)
	}
	visited[path] = true

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	parentIncludes := cfg.Include
	cfg.Include = nil

	dec := yaml.NewDecoder(bytes.NewReader([]byte(interpolateEnv(string(data)))))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse YAML in %s: %w", path, err)
	}

	includes := cfg.Include
	files := []string{path}
	baseDir := filepath.Dir(path)

	for i, includePath := range includes {
		if !filepath.IsAbs(includePath) {
			includePath = filepath.Join(baseDir, includePath)
		}
		absPath, err := filepath.Abs(includePath)
		if err != nil {
			return nil, fmt.Errorf("include[%d]: failed to resolve path %q: %w", i, includePath, err)
		}
		if _, err := os.Stat(absPath); err != nil {
			return nil, fmt.Errorf("include[%d]: file not found: %s\n"+
				"Referenced from: %s", i, absPath, path)
		}

		included, err := overlayFile(cfg, absPath, visited)
		if err != nil {
			return nil, fmt.Errorf("include[%d]: %w", i, err)
		}
		files = append(files, included...)
	}

	if parentIncludes != nil {
		cfg.Include = parentIncludes
	} else {
		cfg.Include = includes
	}
	return files, nil
}

// interpolateEnv replaces ${VAR} with environment variable values.
// Unset variables are left in place so validation can name them.
func interpolateEnv(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if value, exists := os.LookupEnv(varName); exists {
			return value
		}
		return match
	})
}

// validate performs basic validation on the configuration.
func validate(cfg *Config) error {
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[cfg.Service.LogLevel] {
		return fmt.Errorf("service.log_level must be one of: debug, info, warn, error (got %q)", cfg.Service.LogLevel)
	}

	if cfg.Server.Listen == "" {
		return fmt.Errorf("server.listen is required")
	}
	if !strings.HasPrefix(cfg.Server.Path, "/") {
		return fmt.Errorf("server.path must start with / (got %q)", cfg.Server.Path)
	}
	if _, err := ParseSize(cfg.Server.MaxBodySize); err != nil {
		return fmt.Errorf("server.max_body_size %q: %w", cfg.Server.MaxBodySize, err)
	}
	if cfg.Server.ReadTimeout <= 0 || cfg.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server.read_timeout and server.write_timeout must be positive")
	}

	if matches := envVarPattern.FindStringSubmatch(cfg.Interactions.PublicKey); len(matches) > 1 {
		return fmt.Errorf("interactions.public_key: environment variable ${%s} is not set", matches[1])
	}
	if strings.TrimSpace(cfg.Interactions.PublicKey) == "" {
		return fmt.Errorf("interactions.public_key is required")
	}
	if _, err := cfg.TrustedKey(); err != nil {
		return fmt.Errorf("interactions.public_key: %w", err)
	}
	if cfg.Interactions.SignatureHeader == "" || cfg.Interactions.TimestampHeader == "" {
		return fmt.Errorf("interactions.signature_header and interactions.timestamp_header are required")
	}
	if strings.EqualFold(cfg.Interactions.SignatureHeader, cfg.Interactions.TimestampHeader) {
		return fmt.Errorf("interactions.signature_header and interactions.timestamp_header must differ")
	}
	if cfg.Interactions.MaxTimestampSkew < 0 {
		return fmt.Errorf("interactions.max_timestamp_skew must not be negative")
	}

	if cfg.Metrics.Enabled {
		if !strings.HasPrefix(cfg.Metrics.Path, "/") {
			return fmt.Errorf("metrics.path must start with / (got %q)", cfg.Metrics.Path)
		}
		for _, reserved := range []string{cfg.Server.Path, "/healthz", "/events"} {
			if cfg.Metrics.Path == reserved {
				return fmt.Errorf("metrics.path %q collides with a reserved route", cfg.Metrics.Path)
			}
		}
	}
	if cfg.Server.Path == "/healthz" || cfg.Server.Path == "/events" {
		return fmt.Errorf("server.path %q collides with a reserved route", cfg.Server.Path)
	}

	if cfg.Events.Buffer < 0 {
		return fmt.Errorf("events.buffer must not be negative")
	}

	return nil
}

// MaxSize is the largest value ParseSize accepts.
const MaxSize int64 = 1 << 30

// ParseSize parses size strings like "1MB", "64KB", "2048576" to bytes.
// Values above MaxSize (1GB) are rejected.
func ParseSize(size string) (int64, error) {
	if strings.TrimSpace(size) == "" {
		return 0, fmt.Errorf("size is empty")
	}

	upper := strings.ToUpper(strings.TrimSpace(size))
	multiplier := int64(1)

	switch {
	case strings.HasSuffix(upper, "KB"):
		multiplier = 1024
		upper = strings.TrimSuffix(upper, "KB")
	case strings.HasSuffix(upper, "MB"):
		multiplier = 1024 * 1024
		upper = strings.TrimSuffix(upper, "MB")
	case strings.HasSuffix(upper, "GB"):
		multiplier = 1024 * 1024 * 1024
		upper = strings.TrimSuffix(upper, "GB")
	}

	value, err := strconv.ParseInt(strings.TrimSpace(upper), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size value: %w", err)
	}
	if value <= 0 {
		return 0, fmt.Errorf("size must be positive")
	}

	if value > MaxSize/multiplier {
		return 0, fmt.Errorf("size too large (max 1GB)")
	}
	return value * multiplier, nil
}
