package scan

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/handiism/organisiert/internal/audio"
	"github.com/handiism/organisiert/internal/model"
	"github.com/handiism/organisiert/internal/testsupport"
	"github.com/spf13/afero"
)

func TestIsSupported(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/in/a.mp3", true},
		{"/in/a.MP3", true},
		{"/in/a.flac", true},
		{"/in/a.m4a", true},
		{"/in/a.wav", true},
		{"/in/a.ogg", true},
		{"/in/a.aac", true},
		{"/in/cover.jpg", false},
		{"/in/mp3", false},
		{"/in/.organisiert.lock", false},
	}

	for _, tt := range tests {
		if got := IsSupported(tt.path); got != tt.want {
			t.Errorf("IsSupported(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestScanner_Find(t *testing.T) {
	fs := afero.NewMemMapFs()
	testsupport.WriteUntagged(t, fs, "/in/b.mp3")
	testsupport.WriteUntagged(t, fs, "/in/sub/a.FLAC")
	testsupport.WriteUntagged(t, fs, "/in/sub/deeper/c.ogg")
	_ = afero.WriteFile(fs, "/in/cover.jpg", []byte("jpeg"), 0o644)
	_ = afero.WriteFile(fs, "/in/notes.txt", []byte("text"), 0o644)

	s := NewScanner(fs, audio.NewExtractor(fs), Options{})
	got, err := s.Find("/in")
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}

	want := []string{"/in/b.mp3", "/in/sub/a.FLAC", "/in/sub/deeper/c.ogg"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Find() = %v, want %v", got, want)
	}
}

func TestScanner_FindMissingRoot(t *testing.T) {
	s := NewScanner(afero.NewMemMapFs(), nil, Options{})
	if _, err := s.Find("/nope"); err == nil {
		t.Error("Find() expected error for missing root")
	}
}

func TestScanner_Scan(t *testing.T) {
	fs := afero.NewMemMapFs()
	air := model.Metadata{Title: "All I Need", Artist: "Air", Album: "Moon Safari", Year: 1998, Track: 3}
	testsupport.WriteMP3(t, fs, "/in/air.mp3", air)
	testsupport.WriteFLAC(t, fs, "/in/teardrop.flac", model.Metadata{Title: "Teardrop", Artist: "Massive Attack"})
	testsupport.WriteUntagged(t, fs, "/in/memo.wav")

	var mu sync.Mutex
	var events []model.ProgressEvent
	s := NewScanner(fs, audio.NewExtractor(fs), Options{
		Workers: 4,
		OnProgress: func(e model.ProgressEvent) {
			mu.Lock()
			events = append(events, e)
			mu.Unlock()
		},
	})

	result, err := s.Scan(context.Background(), "/in")
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(result.Entries) != 3 || len(result.Failures) != 0 {
		t.Fatalf("Scan() = %d entries, %d failures, want 3, 0", len(result.Entries), len(result.Failures))
	}
	if result.Entries[0].Path != "/in/air.mp3" || result.Entries[0].Metadata != air {
		t.Errorf("first entry = %+v, want air.mp3 with %+v", result.Entries[0], air)
	}
	if len(events) != 3 {
		t.Errorf("progress events = %d, want 3", len(events))
	}
	for _, e := range events {
		if e.Total != 3 || e.Done < 1 || e.Done > 3 {
			t.Errorf("progress event %+v out of range", e)
		}
	}
}

type failingExtractor struct {
	fail string
}

func (f failingExtractor) Extract(path string) (model.Metadata, error) {
	if strings.HasSuffix(path, f.fail) {
		return model.Metadata{}, errors.New("corrupt tag")
	}
	return model.Metadata{Title: path}, nil
}

func TestScanner_ScanFailures(t *testing.T) {
	fs := afero.NewMemMapFs()
	testsupport.WriteUntagged(t, fs, "/in/good.mp3")
	testsupport.WriteUntagged(t, fs, "/in/bad.mp3")

	s := NewScanner(fs, failingExtractor{fail: "bad.mp3"}, Options{Workers: 2})
	result, err := s.Scan(context.Background(), "/in")
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(result.Entries) != 1 || result.Entries[0].Path != "/in/good.mp3" {
		t.Errorf("Entries = %+v, want only good.mp3", result.Entries)
	}
	if len(result.Failures) != 1 || result.Failures[0].Path != "/in/bad.mp3" {
		t.Errorf("Failures = %+v, want only bad.mp3", result.Failures)
	}
}

func TestScanner_ScanEmpty(t *testing.T) {
	fs := afero.NewMemMapFs()
	_ = fs.MkdirAll("/in", 0o755)

	result, err := NewScanner(fs, failingExtractor{}, Options{}).Scan(context.Background(), "/in")
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(result.Entries) != 0 {
		t.Errorf("Entries = %v, want none", result.Entries)
	}
}

func TestResult_Summary(t *testing.T) {
	tests := []struct {
		result Result
		want   string
	}{
		{
			Result{Entries: make([]Entry, 12), Duration: 1500 * time.Millisecond},
			"12 files processed in 1.50s",
		},
		{
			Result{Entries: make([]Entry, 10), Failures: make([]Failure, 2), Duration: 250 * time.Millisecond},
			"10 files processed, 2 failed in 0.25s",
		},
	}

	for _, tt := range tests {
		if got := tt.result.Summary(); got != tt.want {
			t.Errorf("Summary() = %q, want %q", got, tt.want)
		}
	}
}
