package model

import "golang.org/x/text/cases"

// VariousArtists is the album artist value that marks a compilation.
const VariousArtists = "Various Artists"

// Metadata represents the tags embedded in a single media file.
//
// Fields are independently optional. Empty strings and zero numbers mean the
// tag was not present in the file; a year or track number of zero is not a
// valid tag value, so it doubles as "absent".
type Metadata struct {
	// Title is the track title.
	Title string

	// Artist is the track artist.
	Artist string

	// Album is the album title.
	Album string

	// AlbumArtist is the album artist, reduced to its first artist.
	AlbumArtist string

	// Year is the release year.
	Year int

	// Genre is the genre name.
	Genre string

	// Track is the track number within the album.
	Track uint16
}

// HasYear reports whether a release year is present.
func (m Metadata) HasYear() bool {
	return m.Year != 0
}

// HasTrack reports whether a track number is present.
func (m Metadata) HasTrack() bool {
	return m.Track != 0
}

// IsCompilation reports whether the album artist is "Various Artists",
// compared without regard to case.
func (m Metadata) IsCompilation() bool {
	if m.AlbumArtist == "" {
		return false
	}
	// Casers keep state between calls and must not be shared across goroutines.
	fold := cases.Fold()
	return fold.String(m.AlbumArtist) == fold.String(VariousArtists)
}

// EffectiveArtist returns the album artist if present, else the track artist.
func (m Metadata) EffectiveArtist() string {
	if m.AlbumArtist != "" {
		return m.AlbumArtist
	}
	return m.Artist
}
