package audio

import (
	"errors"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bogem/id3v2"
	"github.com/dhowden/tag"
	"github.com/handiism/organisiert/internal/errs"
	"github.com/handiism/organisiert/internal/model"
	"github.com/spf13/afero"
)

// Extractor reads Metadata from files on a file system.
//
// Extractor holds no mutable state; one instance may be shared by any number
// of goroutines.
type Extractor struct {
	fs afero.Fs
}

// NewExtractor creates an Extractor reading through fs.
func NewExtractor(fs afero.Fs) *Extractor {
	return &Extractor{fs: fs}
}

// Extract reads the tags of the file at path.
//
// Errors are tagged with errs.ErrExtraction.
func (e *Extractor) Extract(path string) (model.Metadata, error) {
	f, err := e.fs.Open(path)
	if err != nil {
		return model.Metadata{}, errs.Wrap(errs.ErrExtraction, "extract", "open", path, err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".mp3") {
		meta, found, err := readID3v2(f)
		if err != nil {
			return model.Metadata{}, errs.Wrap(errs.ErrExtraction, "extract", "read id3v2", path, err)
		}
		if found {
			return meta, nil
		}
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return model.Metadata{}, errs.Wrap(errs.ErrExtraction, "extract", "rewind", path, err)
		}
	}

	meta, err := readTag(f)
	if err != nil {
		return model.Metadata{}, errs.Wrap(errs.ErrExtraction, "extract", "read tags", path, err)
	}
	return meta, nil
}

// readID3v2 parses an ID3v2 header. found is false when the file has no
// ID3v2 frames.
func readID3v2(r io.Reader) (model.Metadata, bool, error) {
	t, err := id3v2.ParseReader(r, id3v2.Options{Parse: true})
	if err != nil {
		return model.Metadata{}, false, err
	}
	if !t.HasFrames() {
		return model.Metadata{}, false, nil
	}

	meta := model.Metadata{
		Title:       clean(t.Title()),
		Artist:      clean(t.Artist()),
		Album:       clean(t.Album()),
		AlbumArtist: FirstArtist(clean(t.GetTextFrame("TPE2").Text)),
		Genre:       clean(t.Genre()),
		Year:        parseYear(t.Year()),
		Track:       parseTrack(t.GetTextFrame(t.CommonID("Track number/Position in set")).Text),
	}
	return meta, true, nil
}

// readTag reads any format dhowden/tag understands. A file without a tag
// block yields empty metadata.
func readTag(r io.ReadSeeker) (model.Metadata, error) {
	m, err := tag.ReadFrom(r)
	if err != nil {
		if errors.Is(err, tag.ErrNoTagsFound) {
			return model.Metadata{}, nil
		}
		return model.Metadata{}, err
	}

	track, _ := m.Track()
	meta := model.Metadata{
		Title:       clean(m.Title()),
		Artist:      clean(m.Artist()),
		Album:       clean(m.Album()),
		AlbumArtist: FirstArtist(clean(m.AlbumArtist())),
		Genre:       clean(m.Genre()),
	}
	// Unparseable vorbis dates come back as year 1.
	if year := m.Year(); year > 1 {
		meta.Year = year
	}
	if track > 0 && track <= 0xFFFF {
		meta.Track = uint16(track)
	}
	return meta, nil
}

func clean(s string) string {
	return strings.TrimSpace(strings.Trim(s, "\x00"))
}

// parseYear accepts "1998" as well as timestamps such as "1998-05-12".
func parseYear(s string) int {
	s = clean(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	year, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return year
}

// parseTrack accepts "3" as well as "3/12".
func parseTrack(s string) uint16 {
	s = clean(s)
	if i := strings.IndexByte(s, '/'); i >= 0 {
		s = s[:i]
	}
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 16)
	if err != nil {
		return 0
	}
	return uint16(n)
}
