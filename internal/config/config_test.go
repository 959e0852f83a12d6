package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/handiism/organisiert/internal/errs"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Organization.Structure != "{artist}/{year} - {album}/{track:02} - {title}" {
		t.Errorf("Structure = %q", cfg.Organization.Structure)
	}
	if cfg.Rules.HandleMissingMetadata != MissingFallback {
		t.Errorf("HandleMissingMetadata = %v, want fallback", cfg.Rules.HandleMissingMetadata)
	}
	if cfg.Rules.HandleDuplicates != DuplicateSkip {
		t.Errorf("HandleDuplicates = %v, want skip", cfg.Rules.HandleDuplicates)
	}
	if got := cfg.Formatting.ReplaceChars["/"]; got != "-" {
		t.Errorf(`ReplaceChars["/"] = %q, want "-"`, got)
	}
	if len(cfg.Warnings()) != 0 {
		t.Errorf("default config should have no warnings, got %v", cfg.Warnings())
	}
}

func TestParse(t *testing.T) {
	data := []byte(`
[organization]
structure = "{genre}/{artist}/{title}"
fallback_structure = "Unsorted/{filename}"

[rules]
handle_missing_metadata = "skip"
handle_duplicates = "rename"

[formatting]
max_filename_length = 120
[formatting.replace_chars]
":" = "_"
`)

	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Organization.Structure != "{genre}/{artist}/{title}" {
		t.Errorf("Structure = %q", cfg.Organization.Structure)
	}
	if cfg.Organization.CompilationStructure != defaultCompilationStructure {
		t.Errorf("CompilationStructure should keep its default, got %q", cfg.Organization.CompilationStructure)
	}
	if cfg.Rules.HandleMissingMetadata != MissingSkip {
		t.Errorf("HandleMissingMetadata = %v, want skip", cfg.Rules.HandleMissingMetadata)
	}
	if cfg.Rules.HandleDuplicates != DuplicateRename {
		t.Errorf("HandleDuplicates = %v, want rename", cfg.Rules.HandleDuplicates)
	}
	if cfg.Formatting.MaxFilenameLength != 120 {
		t.Errorf("MaxFilenameLength = %d, want 120", cfg.Formatting.MaxFilenameLength)
	}
	if len(cfg.Formatting.ReplaceChars) != 1 || cfg.Formatting.ReplaceChars[":"] != "_" {
		t.Errorf("ReplaceChars should replace the defaults, got %v", cfg.Formatting.ReplaceChars)
	}
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"unknown duplicate policy", "[rules]\nhandle_duplicates = \"merge\"\n"},
		{"unknown missing policy", "[rules]\nhandle_missing_metadata = \"ignore\"\n"},
		{"fallback with metadata", "[organization]\nfallback_structure = \"{artist}/{filename}\"\n"},
		{"empty structure", "[organization]\nstructure = \"\"\n"},
		{"zero length", "[formatting]\nmax_filename_length = 0\n"},
		{"length too large", "[formatting]\nmax_filename_length = 300\n"},
		{"negative workers", "[performance]\nworkers = -1\n"},
		{"unknown key", "[rules]\nhandle_everything = true\n"},
		{"malformed", "[rules\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if err == nil {
				t.Fatal("Parse() should fail")
			}
			if !errors.Is(err, errs.ErrConfiguration) {
				t.Errorf("error should be a configuration error, got %v", err)
			}
		})
	}
}

func TestWarnings(t *testing.T) {
	cfg := Default()
	cfg.Organization.Structure = "{artist}/{track:3} {title}"

	warnings := cfg.Warnings()
	if len(warnings) != 1 || !strings.Contains(warnings[0], "track:3") {
		t.Errorf("Warnings() = %v, want one track format warning", warnings)
	}
}

func TestLoadOrCreate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "organisiert", "config.toml")

	cfg, resolved, created, err := LoadOrCreate(path)
	if err != nil {
		t.Fatalf("LoadOrCreate() error = %v", err)
	}
	if !created {
		t.Error("first call should create the file")
	}
	if resolved != path {
		t.Errorf("resolved = %q, want %q", resolved, path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	again, _, created, err := LoadOrCreate(path)
	if err != nil {
		t.Fatalf("second LoadOrCreate() error = %v", err)
	}
	if created {
		t.Error("second call should not create the file")
	}
	if again.Organization != cfg.Organization || again.Rules != cfg.Rules {
		t.Errorf("round trip changed config: %+v vs %+v", again, cfg)
	}
	if len(again.Formatting.ReplaceChars) != 3 {
		t.Errorf("ReplaceChars = %v, want the three defaults", again.Formatting.ReplaceChars)
	}
}

func TestLoad_Missing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Rules.HandleDuplicates != DuplicateSkip {
		t.Error("missing file should yield defaults")
	}
}

func TestWorkerCount(t *testing.T) {
	cfg := Default()

	if got := cfg.WorkerCount(3); got != 3 {
		t.Errorf("WorkerCount(3) = %d, want 3", got)
	}
	cfg.Performance.Workers = 5
	if got := cfg.WorkerCount(0); got != 5 {
		t.Errorf("WorkerCount(0) = %d, want 5", got)
	}
	cfg.Performance.Workers = 0
	if got := cfg.WorkerCount(0); got < 1 {
		t.Errorf("WorkerCount(0) = %d, want >= 1", got)
	}
}

func TestPolicy_Text(t *testing.T) {
	for _, p := range []DuplicatePolicy{DuplicateSkip, DuplicateRename, DuplicateOverwrite} {
		text, _ := p.MarshalText()
		var back DuplicatePolicy
		if err := back.UnmarshalText(text); err != nil || back != p {
			t.Errorf("DuplicatePolicy %v did not survive text round trip", p)
		}
	}
	var m MissingMetadataPolicy
	if err := m.UnmarshalText([]byte("SKIP")); err != nil || m != MissingSkip {
		t.Errorf("UnmarshalText(SKIP) = %v, %v", m, err)
	}
}
