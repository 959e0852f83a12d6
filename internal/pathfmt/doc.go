// Package pathfmt turns file metadata into relative destination paths.
//
// A path template is compiled once into a sequence of literal and
// placeholder tokens:
//
//	tmpl := pathfmt.Compile("{artist}/{year} - {album}/{track:02} - {title}")
//
// Rendering substitutes metadata values and fails when a referenced field is
// missing:
//
//	rel, ok := tmpl.Render(meta, "/in/song.mp3", sanitizer)
//	// rel = "Air/1998 - Moon Safari/03 - All I Need.mp3"
//
// Recognized placeholders: {artist}, {title}, {album}, {year}, {genre},
// {track}, {track:02} and {filename}. Anything else in braces is kept
// literally.
//
// # Sanitizing
//
// A Sanitizer applies the configured character replacements. Values are
// sanitized before insertion, whole paths are sanitized segment by segment
// and each segment is capped to the maximum filename length:
//
//	s := pathfmt.NewSanitizer(map[string]string{":": "-"}, 255)
//	s.SanitizePath("Air/Moon: Safari/01 - La femme d'argent.mp3")
package pathfmt
