package model

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Unknown fills the artist and album of a fallback key.
const Unknown = "Unknown"

// MetadataKey identifies a track for duplicate detection.
//
// Two files with equal keys are considered the same track regardless of their
// paths. Track is zero when the file has no track number.
type MetadataKey struct {
	Artist string
	Album  string
	Title  string
	Track  uint16
}

// KeyFor derives the identity of a file.
//
// When artist (album artist preferred), album and title are all present the
// key is built from them plus the track number. Otherwise the fallback key
// (Unknown, Unknown, <file stem>, no track) is used.
func KeyFor(meta Metadata, sourcePath string) MetadataKey {
	artist := meta.EffectiveArtist()
	if artist == "" || meta.Album == "" || meta.Title == "" {
		return FallbackKey(sourcePath)
	}
	return MetadataKey{
		Artist: artist,
		Album:  meta.Album,
		Title:  meta.Title,
		Track:  meta.Track,
	}
}

// FallbackKey returns the key used for files without enough metadata.
func FallbackKey(sourcePath string) MetadataKey {
	base := filepath.Base(sourcePath)
	return MetadataKey{
		Artist: Unknown,
		Album:  Unknown,
		Title:  strings.TrimSuffix(base, filepath.Ext(base)),
	}
}

// WithSuffix returns the derived key used for the n-th renamed copy: the
// title gains " (n)".
func (k MetadataKey) WithSuffix(n int) MetadataKey {
	k.Title = fmt.Sprintf("%s (%d)", k.Title, n)
	return k
}

// String renders the key for logs.
func (k MetadataKey) String() string {
	if k.Track == 0 {
		return fmt.Sprintf("%s / %s / %s", k.Artist, k.Album, k.Title)
	}
	return fmt.Sprintf("%s / %s / %02d %s", k.Artist, k.Album, k.Track, k.Title)
}
