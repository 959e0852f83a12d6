package pathfmt

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// replacement is one configured substitution.
type replacement struct {
	From string
	To   string
}

// Sanitizer makes rendered names safe for the filesystem.
type Sanitizer struct {
	replacements []replacement
	maxLength    int
}

// NewSanitizer builds a sanitizer from the configured replacement map and
// per-segment length cap. A maxLength of zero or less disables truncation.
//
// Replacements run in a fixed order, longer From strings first and ties
// broken lexically, so overlapping pairs behave the same on every run.
// Empty From strings are ignored.
func NewSanitizer(replaceChars map[string]string, maxLength int) *Sanitizer {
	replacements := make([]replacement, 0, len(replaceChars))
	for from, to := range replaceChars {
		if from == "" {
			continue
		}
		replacements = append(replacements, replacement{From: from, To: to})
	}
	sort.Slice(replacements, func(i, j int) bool {
		a, b := replacements[i].From, replacements[j].From
		if len(a) != len(b) {
			return len(a) > len(b)
		}
		return a < b
	})
	return &Sanitizer{replacements: replacements, maxLength: maxLength}
}

// SanitizeValue applies every replacement, including the separator mapping,
// to a single metadata value.
func (s *Sanitizer) SanitizeValue(value string) string {
	for _, r := range s.replacements {
		value = strings.ReplaceAll(value, r.From, r.To)
	}
	return value
}

// SanitizePath sanitizes each segment of a rendered path.
//
// The separator is structural: a replacement whose From is the separator is
// skipped here. Segments longer than the length cap are truncated, keeping
// the extension after the last dot.
func (s *Sanitizer) SanitizePath(path string) string {
	segments := strings.Split(path, Separator)
	for i, segment := range segments {
		for _, r := range s.replacements {
			if r.From == Separator {
				continue
			}
			segment = strings.ReplaceAll(segment, r.From, r.To)
		}
		segments[i] = s.truncate(segment)
	}
	return strings.Join(segments, Separator)
}

// truncate caps a segment to maxLength bytes without splitting runes.
func (s *Sanitizer) truncate(segment string) string {
	if s.maxLength <= 0 || len(segment) <= s.maxLength {
		return segment
	}
	dot := strings.LastIndexByte(segment, '.')
	if dot < 0 {
		return cutBytes(segment, s.maxLength)
	}
	name, ext := segment[:dot], segment[dot:]
	available := s.maxLength - len(ext)
	if available < 0 {
		available = 0
	}
	return cutBytes(name, available) + ext
}

func cutBytes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
