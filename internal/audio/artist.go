package audio

import "strings"

// artistDelimiters separate collaborating artists in an album artist tag.
var artistDelimiters = []string{
	", ", " & ", " and ", " feat. ", " feat ", " ft. ", " ft ",
	" x ", " X ", " vs ", " vs. ", " with ", " + ", " / ",
}

// FirstArtist returns the artist before the earliest delimiter, trimmed.
//
// Example:
//
//	FirstArtist("Simon & Garfunkel")       // "Simon"
//	FirstArtist("Massive Attack, Tricky")  // "Massive Attack"
//	FirstArtist("Air")                     // "Air"
func FirstArtist(s string) string {
	earliest := len(s)
	for _, delimiter := range artistDelimiters {
		if i := strings.Index(s, delimiter); i >= 0 && i < earliest {
			earliest = i
		}
	}
	return strings.TrimSpace(s[:earliest])
}
