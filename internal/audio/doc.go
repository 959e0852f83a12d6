// Package audio reads the tags embedded in music files.
//
// MP3 files are parsed with github.com/bogem/id3v2; when an MP3 carries no
// ID3v2 frames, and for every other supported container (FLAC, MP4/M4A, OGG),
// github.com/dhowden/tag is used, which also understands ID3v1.
//
// # Extraction
//
//	extractor := audio.NewExtractor(afero.NewOsFs())
//	meta, err := extractor.Extract("/music/in/track.mp3")
//	if err != nil {
//	    // errors.Is(err, errs.ErrExtraction)
//	}
//
// A file without any tag block yields an empty Metadata rather than an
// error, so it can still be placed through the fallback structure. The album
// artist is reduced to its first artist:
//
//	audio.FirstArtist("Daft Punk feat. Pharrell") // "Daft Punk"
//
// # Supported formats
//
//   - MP3 (ID3v2.3, ID3v2.4, ID3v1)
//   - FLAC (Vorbis comments)
//   - M4A / AAC in MP4
//   - OGG (Vorbis comments)
//   - WAV and raw AAC have no tag support and yield empty metadata
package audio
