package config

import (
	"fmt"
	"strings"
)

// MissingMetadataPolicy decides what happens to files whose metadata cannot
// fill the path template.
type MissingMetadataPolicy int

const (
	// MissingFallback places the file using the fallback structure.
	MissingFallback MissingMetadataPolicy = iota

	// MissingSkip leaves the file where it is.
	MissingSkip
)

// String returns the configuration value of the policy.
func (p MissingMetadataPolicy) String() string {
	switch p {
	case MissingFallback:
		return "fallback"
	case MissingSkip:
		return "skip"
	default:
		return fmt.Sprintf("MissingMetadataPolicy(%d)", int(p))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p MissingMetadataPolicy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Unknown values are
// rejected.
func (p *MissingMetadataPolicy) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "fallback":
		*p = MissingFallback
	case "skip":
		*p = MissingSkip
	default:
		return fmt.Errorf("handle_missing_metadata must be skip or fallback, got %q", string(text))
	}
	return nil
}

// DuplicatePolicy decides what happens when a file's identity was already
// placed.
type DuplicatePolicy int

const (
	// DuplicateSkip leaves the incoming file untouched.
	DuplicateSkip DuplicatePolicy = iota

	// DuplicateRename places the incoming file under "<name> (N)<ext>".
	DuplicateRename

	// DuplicateOverwrite removes the existing file and places the new one.
	DuplicateOverwrite
)

// String returns the configuration value of the policy.
func (p DuplicatePolicy) String() string {
	switch p {
	case DuplicateSkip:
		return "skip"
	case DuplicateRename:
		return "rename"
	case DuplicateOverwrite:
		return "overwrite"
	default:
		return fmt.Sprintf("DuplicatePolicy(%d)", int(p))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p DuplicatePolicy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Unknown values are
// rejected.
func (p *DuplicatePolicy) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "skip":
		*p = DuplicateSkip
	case "rename":
		*p = DuplicateRename
	case "overwrite":
		*p = DuplicateOverwrite
	default:
		return fmt.Errorf("handle_duplicates must be skip, rename or overwrite, got %q", string(text))
	}
	return nil
}
