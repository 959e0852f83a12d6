package pathfmt

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/handiism/organisiert/internal/model"
)

// Separator separates path segments in templates and rendered paths.
const Separator = "/"

type field int

const (
	fieldArtist field = iota
	fieldTitle
	fieldAlbum
	fieldYear
	fieldGenre
	fieldTrack
	fieldFilename
)

var fieldNames = map[string]field{
	"artist":   fieldArtist,
	"title":    fieldTitle,
	"album":    fieldAlbum,
	"year":     fieldYear,
	"genre":    fieldGenre,
	"track":    fieldTrack,
	"filename": fieldFilename,
}

// token is either literal text or a placeholder (isField set).
type token struct {
	isField bool
	text    string
	name    string
	field   field
	format  string
}

// Template is a compiled path template. It is immutable and safe for
// concurrent use.
type Template struct {
	source   string
	tokens   []token
	warnings []string
}

// Compile tokenizes a template string.
//
// Compilation never fails: unknown placeholders and unmatched braces are
// kept as literal text. Track format specifiers other than "02" are accepted
// but render unpadded; each one is reported by Warnings.
func Compile(source string) *Template {
	t := &Template{source: source}

	rest := source
	var literal strings.Builder
	for rest != "" {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			literal.WriteString(rest)
			break
		}
		literal.WriteString(rest[:open])
		rest = rest[open:]

		end := strings.IndexByte(rest, '}')
		if end < 0 {
			literal.WriteString(rest)
			break
		}
		inner := rest[1:end]
		if strings.IndexByte(inner, '{') >= 0 {
			// "{{title}": the first brace is literal, retry from the next one.
			literal.WriteByte('{')
			rest = rest[1:]
			continue
		}

		tok, ok := t.parsePlaceholder(inner)
		if !ok {
			literal.WriteString(rest[:end+1])
			rest = rest[end+1:]
			continue
		}
		if literal.Len() > 0 {
			t.tokens = append(t.tokens, token{text: literal.String()})
			literal.Reset()
		}
		t.tokens = append(t.tokens, tok)
		rest = rest[end+1:]
	}
	if literal.Len() > 0 {
		t.tokens = append(t.tokens, token{text: literal.String()})
	}

	return t
}

func (t *Template) parsePlaceholder(inner string) (token, bool) {
	name, format, hasFormat := strings.Cut(inner, ":")
	f, ok := fieldNames[name]
	if !ok {
		return token{}, false
	}
	if hasFormat {
		if f != fieldTrack {
			return token{}, false
		}
		if format != "02" {
			t.warnings = append(t.warnings, fmt.Sprintf("unsupported track format %q in %q renders unpadded", format, "{"+inner+"}"))
		}
	}
	return token{isField: true, name: name, field: f, format: format}, true
}

// String returns the template source.
func (t *Template) String() string {
	return t.source
}

// Warnings returns the problems found while compiling.
func (t *Template) Warnings() []string {
	return t.warnings
}

// Placeholders returns the placeholder names referenced by the template, in
// order of appearance, without format specifiers.
func (t *Template) Placeholders() []string {
	var names []string
	for _, tok := range t.tokens {
		if tok.isField {
			names = append(names, tok.name)
		}
	}
	return names
}

// Render builds the relative destination path for a file.
//
// It returns false when the template references a field the metadata does
// not have. For compilations {artist} must come from the track artist; for
// other files the album artist is preferred. String values are passed
// through values.SanitizeValue before insertion when values is non-nil. The
// result always ends with the source file's extension.
func (t *Template) Render(meta model.Metadata, sourcePath string, values *Sanitizer) (string, bool) {
	compilation := meta.IsCompilation()

	var b strings.Builder
	for _, tok := range t.tokens {
		if !tok.isField {
			b.WriteString(tok.text)
			continue
		}

		var value string
		switch tok.field {
		case fieldArtist:
			if compilation {
				value = meta.Artist
			} else {
				value = meta.EffectiveArtist()
			}
		case fieldTitle:
			value = meta.Title
		case fieldAlbum:
			value = meta.Album
		case fieldGenre:
			value = meta.Genre
		case fieldYear:
			if !meta.HasYear() {
				return "", false
			}
			b.WriteString(strconv.Itoa(meta.Year))
			continue
		case fieldTrack:
			if !meta.HasTrack() {
				return "", false
			}
			if tok.format == "02" {
				fmt.Fprintf(&b, "%02d", meta.Track)
			} else {
				b.WriteString(strconv.Itoa(int(meta.Track)))
			}
			continue
		case fieldFilename:
			b.WriteString(filepath.Base(sourcePath))
			continue
		}

		if value == "" {
			return "", false
		}
		if values != nil {
			value = values.SanitizeValue(value)
		}
		b.WriteString(value)
	}

	out := b.String()
	if ext := filepath.Ext(sourcePath); ext != "" && !strings.HasSuffix(out, ext) {
		out += ext
	}
	return out, true
}
