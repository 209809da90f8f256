package webhook

import (
	"fmt"

	"github.com/mattjoyce/slashgw/internal/config"
)

// FromGlobalConfig converts config.Config to webhook.Config.
func FromGlobalConfig(cfg *config.Config) (Config, error) {
	if cfg == nil {
		return Config{}, fmt.Errorf("config is nil")
	}

	maxBodySize, err := cfg.MaxBodyBytes()
	if err != nil {
		return Config{}, fmt.Errorf("invalid max_body_size %q: %w", cfg.Server.MaxBodySize, err)
	}

	return Config{
		Listen:       cfg.Server.Listen,
		Path:         cfg.Server.Path,
		MaxBodySize:  maxBodySize,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		Headers:      cfg.HeaderNames(),
	}, nil
}
