package pathfmt

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSanitizer_SanitizePath(t *testing.T) {
	defaults := map[string]string{"/": "-", ":": "-", "?": ""}

	tests := []struct {
		name      string
		replace   map[string]string
		maxLength int
		input     string
		want      string
	}{
		{"separator kept", defaults, 255, "Air/Moon Safari/01 - Song.mp3", "Air/Moon Safari/01 - Song.mp3"},
		{"characters replaced", defaults, 255, "Air/Who?/Part: One.mp3", "Air/Who/Part- One.mp3"},
		{"segment truncated keeping extension", nil, 8, "dir/abcdefghij.mp3", "dir/abcd.mp3"},
		{"segment without extension truncated", nil, 4, "abcdefgh/x.m", "abcd/x.m"},
		{"short segments untouched", nil, 10, "a/b.mp3", "a/b.mp3"},
		{"extension longer than cap", nil, 3, "ab.flac", ".flac"},
		{"cap disabled", nil, 0, strings.Repeat("a", 300) + ".mp3", strings.Repeat("a", 300) + ".mp3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewSanitizer(tt.replace, tt.maxLength).SanitizePath(tt.input)
			if got != tt.want {
				t.Errorf("SanitizePath(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizer_TruncateKeepsRunes(t *testing.T) {
	s := NewSanitizer(nil, 6)

	got := s.SanitizePath("ééééé.mp3")
	if !utf8.ValidString(got) {
		t.Fatalf("SanitizePath produced invalid UTF-8: %q", got)
	}
	if got != "é.mp3" {
		t.Errorf("SanitizePath() = %q, want %q", got, "é.mp3")
	}
}

func TestSanitizer_SanitizeValue(t *testing.T) {
	s := NewSanitizer(map[string]string{"/": "-", "?": ""}, 255)

	if got := s.SanitizeValue("AC/DC?"); got != "AC-DC" {
		t.Errorf("SanitizeValue() = %q, want %q", got, "AC-DC")
	}
}

func TestSanitizer_OrderIsFixed(t *testing.T) {
	s := NewSanitizer(map[string]string{"a": "b", "ab": "x", "": "ignored", "c": "d"}, 0)

	var froms []string
	for _, r := range s.replacements {
		froms = append(froms, r.From)
	}
	if strings.Join(froms, ",") != "ab,a,c" {
		t.Errorf("replacement order = %v, want [ab a c]", froms)
	}
	// "ab" runs before "a", so "ab" becomes "x" rather than "bb".
	if got := s.SanitizeValue("abc"); got != "xd" {
		t.Errorf("SanitizeValue(%q) = %q, want %q", "abc", got, "xd")
	}
}
