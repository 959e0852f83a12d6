// Package config provides configuration management for organisiert.
//
// This package handles:
//   - Loading settings from a TOML file, creating it with defaults on first use
//   - Default configuration values
//   - Validation, including the closed set of policy values
//
// # Default Config
//
// Use Default() to get the built-in settings:
//
//	cfg := config.Default()
//	// structure: {artist}/{year} - {album}/{track:02} - {title}
//	// missing metadata falls back to {filename}
//	// duplicates are skipped
//
// # Loading from File
//
//	cfg, created, err := config.LoadOrCreate("")
//	if err != nil {
//	    // errors.Is(err, errs.ErrConfiguration)
//	}
//
// An empty path resolves to <user config dir>/organisiert/config.toml.
//
// # Configuration Options
//
//	[organization]
//	structure = "{artist}/{year} - {album}/{track:02} - {title}"
//	compilation_structure = "Compilations/{album}/{track:02} - {artist} - {title}"
//	fallback_structure = "{filename}"
//
//	[rules]
//	handle_missing_metadata = "fallback" # skip | fallback
//	handle_duplicates = "skip"           # skip | rename | overwrite
//
//	[formatting]
//	max_filename_length = 255
//	[formatting.replace_chars]
//	"/" = "-"
//	":" = "-"
//	"?" = ""
//
//	[performance]
//	workers = 0 # 0 uses every CPU
//
//	[logging]
//	level = "info"
//	file = ""   # rotating JSON log when set
package config
