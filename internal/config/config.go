package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/handiism/organisiert/internal/errs"
	"github.com/handiism/organisiert/internal/pathfmt"
)

const (
	defaultStructure            = "{artist}/{year} - {album}/{track:02} - {title}"
	defaultCompilationStructure = "Compilations/{album}/{track:02} - {artist} - {title}"
	defaultFallbackStructure    = "{filename}"
	defaultMaxFilenameLength    = 255
	defaultLogLevel             = "info"
	defaultLogMaxSizeMB         = 10
	defaultLogMaxBackups        = 3
	defaultLogMaxAgeDays        = 30

	// maxFilenameLengthLimit is the largest segment length most filesystems accept.
	maxFilenameLengthLimit = 255
)

// Organization holds the path templates.
type Organization struct {
	Structure            string `toml:"structure"`
	CompilationStructure string `toml:"compilation_structure,omitempty"`
	FallbackStructure    string `toml:"fallback_structure"`
}

// Rules holds the missing-metadata and duplicate policies.
type Rules struct {
	HandleMissingMetadata MissingMetadataPolicy `toml:"handle_missing_metadata"`
	HandleDuplicates      DuplicatePolicy       `toml:"handle_duplicates"`
}

// Formatting holds name sanitization settings.
type Formatting struct {
	ReplaceChars      map[string]string `toml:"replace_chars"`
	MaxFilenameLength int               `toml:"max_filename_length"`
}

// Performance holds worker pool settings.
type Performance struct {
	// Workers is the number of files organized in parallel. Zero uses every CPU.
	Workers int `toml:"workers"`
}

// Logging holds log output settings.
type Logging struct {
	Level      string `toml:"level"`
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
	Compress   bool   `toml:"compress"`
}

// Config holds all configuration options.
type Config struct {
	Organization Organization `toml:"organization"`
	Rules        Rules        `toml:"rules"`
	Formatting   Formatting   `toml:"formatting"`
	Performance  Performance  `toml:"performance"`
	Logging      Logging      `toml:"logging"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Organization: Organization{
			Structure:            defaultStructure,
			CompilationStructure: defaultCompilationStructure,
			FallbackStructure:    defaultFallbackStructure,
		},
		Rules: Rules{
			HandleMissingMetadata: MissingFallback,
			HandleDuplicates:      DuplicateSkip,
		},
		Formatting: Formatting{
			ReplaceChars:      defaultReplaceChars(),
			MaxFilenameLength: defaultMaxFilenameLength,
		},
		Logging: Logging{
			Level:      defaultLogLevel,
			MaxSizeMB:  defaultLogMaxSizeMB,
			MaxBackups: defaultLogMaxBackups,
			MaxAgeDays: defaultLogMaxAgeDays,
		},
	}
}

func defaultReplaceChars() map[string]string {
	return map[string]string{
		"/": "-",
		":": "-",
		"?": "",
	}
}

// DefaultConfigPath returns <user config dir>/organisiert/config.toml.
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", errs.Wrap(errs.ErrConfiguration, "config", "locate config dir", "Config directory could not be found", err)
	}
	return filepath.Join(dir, "organisiert", "config.toml"), nil
}

// Load reads configuration from a TOML file. A missing file yields the
// defaults. Values absent from the file keep their defaults, except that a
// replace_chars table replaces the default map entirely.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, errs.Wrap(errs.ErrConfiguration, "config", "read", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates TOML configuration data.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	cfg.Formatting.ReplaceChars = nil

	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(cfg); err != nil {
		return nil, errs.Wrap(errs.ErrConfiguration, "config", "parse", "", err)
	}
	if cfg.Formatting.ReplaceChars == nil {
		cfg.Formatting.ReplaceChars = defaultReplaceChars()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrCreate loads the configuration at path, writing the defaults there
// first when the file does not exist. An empty path uses DefaultConfigPath.
// created reports whether the file was written.
func LoadOrCreate(path string) (cfg *Config, resolved string, created bool, err error) {
	resolved = strings.TrimSpace(path)
	if resolved == "" {
		if resolved, err = DefaultConfigPath(); err != nil {
			return nil, "", false, err
		}
	}

	if _, statErr := os.Stat(resolved); statErr != nil {
		if !errors.Is(statErr, fs.ErrNotExist) {
			return nil, resolved, false, errs.Wrap(errs.ErrConfiguration, "config", "stat", resolved, statErr)
		}
		cfg = Default()
		if err := cfg.Save(resolved); err != nil {
			return nil, resolved, false, err
		}
		return cfg, resolved, true, nil
	}

	cfg, err = Load(resolved)
	return cfg, resolved, false, err
}

// Save writes the configuration to a TOML file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errs.Wrap(errs.ErrConfiguration, "config", "create dir", filepath.Dir(path), err)
	}

	data, err := c.Marshal()
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errs.Wrap(errs.ErrConfiguration, "config", "write", path, err)
	}
	return nil
}

// Marshal encodes the configuration as TOML.
func (c *Config) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	encoder := toml.NewEncoder(&buf)
	encoder.SetIndentTables(true)
	if err := encoder.Encode(c); err != nil {
		return nil, errs.Wrap(errs.ErrConfiguration, "config", "encode", "", err)
	}
	return buf.Bytes(), nil
}

// Validate checks the configuration for values the organizer cannot use.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Organization.Structure) == "" {
		problems = append(problems, "organization.structure must not be empty")
	}
	if strings.TrimSpace(c.Organization.FallbackStructure) == "" {
		problems = append(problems, "organization.fallback_structure must not be empty")
	}
	for _, name := range pathfmt.Compile(c.Organization.FallbackStructure).Placeholders() {
		if name != "filename" {
			problems = append(problems, fmt.Sprintf("organization.fallback_structure may only use {filename}, found {%s}", name))
		}
	}
	if c.Formatting.MaxFilenameLength < 1 || c.Formatting.MaxFilenameLength > maxFilenameLengthLimit {
		problems = append(problems, fmt.Sprintf("formatting.max_filename_length must be between 1 and %d, got %d", maxFilenameLengthLimit, c.Formatting.MaxFilenameLength))
	}
	if _, ok := c.Formatting.ReplaceChars[""]; ok {
		problems = append(problems, "formatting.replace_chars must not contain an empty key")
	}
	if c.Performance.Workers < 0 {
		problems = append(problems, fmt.Sprintf("performance.workers must be >= 0, got %d", c.Performance.Workers))
	}

	if len(problems) > 0 {
		return errs.Wrap(errs.ErrConfiguration, "config", "validate", strings.Join(problems, "; "), nil)
	}
	return nil
}

// Warnings returns non-fatal template problems.
func (c *Config) Warnings() []string {
	var warnings []string
	for _, source := range []string{c.Organization.Structure, c.Organization.CompilationStructure} {
		if source == "" {
			continue
		}
		warnings = append(warnings, pathfmt.Compile(source).Warnings()...)
	}
	return warnings
}

// WorkerCount resolves the number of workers. A positive override wins, then
// performance.workers, then the number of CPUs.
func (c *Config) WorkerCount(override int) int {
	if override > 0 {
		return override
	}
	if c.Performance.Workers > 0 {
		return c.Performance.Workers
	}
	return runtime.NumCPU()
}

// Sanitizer builds the sanitizer described by the formatting section.
func (c *Config) Sanitizer() *pathfmt.Sanitizer {
	return pathfmt.NewSanitizer(c.Formatting.ReplaceChars, c.Formatting.MaxFilenameLength)
}
