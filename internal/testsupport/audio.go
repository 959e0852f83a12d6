// Package testsupport builds fixtures shared by package tests.
package testsupport

import (
	"bytes"
	"encoding/binary"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/bogem/id3v2"
	"github.com/handiism/organisiert/internal/model"
	"github.com/spf13/afero"
)

// frameNoise stands in for audio data after the tag block.
var frameNoise = bytes.Repeat([]byte{0xFF, 0xFB, 0x90, 0x00}, 64)

// WriteMP3 writes an MP3 file whose ID3v2.4 tag carries meta. Empty fields
// are left out of the tag.
func WriteMP3(t testing.TB, fs afero.Fs, path string, meta model.Metadata) {
	t.Helper()

	tag := id3v2.NewEmptyTag()
	tag.SetDefaultEncoding(id3v2.EncodingUTF8)
	if meta.Title != "" {
		tag.SetTitle(meta.Title)
	}
	if meta.Artist != "" {
		tag.SetArtist(meta.Artist)
	}
	if meta.Album != "" {
		tag.SetAlbum(meta.Album)
	}
	if meta.AlbumArtist != "" {
		tag.AddTextFrame("TPE2", id3v2.EncodingUTF8, meta.AlbumArtist)
	}
	if meta.Genre != "" {
		tag.SetGenre(meta.Genre)
	}
	if meta.HasYear() {
		tag.SetYear(strconv.Itoa(meta.Year))
	}
	if meta.HasTrack() {
		tag.AddTextFrame(tag.CommonID("Track number/Position in set"), id3v2.EncodingUTF8, strconv.Itoa(int(meta.Track)))
	}

	var buf bytes.Buffer
	if _, err := tag.WriteTo(&buf); err != nil {
		t.Fatalf("encode id3v2 tag for %s: %v", path, err)
	}
	buf.Write(frameNoise)
	writeFile(t, fs, path, buf.Bytes())
}

// WriteFLAC writes a FLAC file with a single Vorbis comment block carrying
// meta.
func WriteFLAC(t testing.TB, fs afero.Fs, path string, meta model.Metadata) {
	t.Helper()

	var comments []string
	add := func(key, value string) {
		if value != "" {
			comments = append(comments, key+"="+value)
		}
	}
	add("TITLE", meta.Title)
	add("ARTIST", meta.Artist)
	add("ALBUM", meta.Album)
	add("ALBUMARTIST", meta.AlbumArtist)
	add("GENRE", meta.Genre)
	if meta.HasYear() {
		add("DATE", strconv.Itoa(meta.Year))
	}
	if meta.HasTrack() {
		add("TRACKNUMBER", strconv.Itoa(int(meta.Track)))
	}

	var block bytes.Buffer
	vendor := "organisiert tests"
	_ = binary.Write(&block, binary.LittleEndian, uint32(len(vendor)))
	block.WriteString(vendor)
	_ = binary.Write(&block, binary.LittleEndian, uint32(len(comments)))
	for _, c := range comments {
		_ = binary.Write(&block, binary.LittleEndian, uint32(len(c)))
		block.WriteString(c)
	}

	var buf bytes.Buffer
	buf.WriteString("fLaC")
	// Last-block flag plus block type 4 (VORBIS_COMMENT), then a 24-bit length.
	size := block.Len()
	buf.Write([]byte{0x80 | 4, byte(size >> 16), byte(size >> 8), byte(size)})
	buf.Write(block.Bytes())
	buf.Write(frameNoise)
	writeFile(t, fs, path, buf.Bytes())
}

// WriteUntagged writes a file with audio-like bytes and no tag block.
func WriteUntagged(t testing.TB, fs afero.Fs, path string) {
	t.Helper()
	writeFile(t, fs, path, frameNoise)
}

func writeFile(t testing.TB, fs afero.Fs, path string, data []byte) {
	t.Helper()
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
