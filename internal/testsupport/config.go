package testsupport

import (
	"testing"

	"github.com/handiism/organisiert/internal/config"
)

// ConfigOption customizes the configuration returned by NewConfig.
type ConfigOption func(*config.Config)

// NewConfig returns the default configuration with opts applied. The result
// must still validate.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	cfg := config.Default()
	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("invalid test config: %v", err)
	}
	return cfg
}

// WithDuplicates sets rules.handle_duplicates.
func WithDuplicates(policy config.DuplicatePolicy) ConfigOption {
	return func(c *config.Config) {
		c.Rules.HandleDuplicates = policy
	}
}

// WithMissingMetadata sets rules.handle_missing_metadata.
func WithMissingMetadata(policy config.MissingMetadataPolicy) ConfigOption {
	return func(c *config.Config) {
		c.Rules.HandleMissingMetadata = policy
	}
}

// WithStructure sets organization.structure.
func WithStructure(template string) ConfigOption {
	return func(c *config.Config) {
		c.Organization.Structure = template
	}
}

// WithWorkers sets performance.workers.
func WithWorkers(n int) ConfigOption {
	return func(c *config.Config) {
		c.Performance.Workers = n
	}
}
