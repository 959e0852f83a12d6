package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/handiism/organisiert/internal/errs"
	"github.com/handiism/organisiert/internal/model"
	"github.com/handiism/organisiert/internal/organize"
	"github.com/handiism/organisiert/internal/testsupport"
	"github.com/spf13/afero"
)

type recorder struct {
	mu     sync.Mutex
	stages []string
	infos  []string
	events int
}

func (r *recorder) Stage(step int, title string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stages = append(r.stages, fmt.Sprintf("[%d/%d] %s", step, TotalStages, title))
}

func (r *recorder) Progress(model.ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events++
}

func (r *recorder) Info(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.infos = append(r.infos, message)
}

func TestVerifyPaths(t *testing.T) {
	fs := afero.NewMemMapFs()
	_ = fs.MkdirAll("/in", 0o755)
	_ = fs.MkdirAll("/out", 0o755)
	_ = afero.WriteFile(fs, "/file.mp3", []byte("x"), 0o644)

	tests := []struct {
		input, output string
		ok            bool
	}{
		{"/in", "/out", true},
		{"/missing", "/out", false},
		{"/in", "/missing", false},
		{"/file.mp3", "/out", false},
	}
	for _, tt := range tests {
		err := VerifyPaths(fs, tt.input, tt.output)
		if (err == nil) != tt.ok {
			t.Errorf("VerifyPaths(%q, %q) = %v, want ok=%v", tt.input, tt.output, err, tt.ok)
		}
		if err != nil && !errors.Is(err, errs.ErrPathValidation) {
			t.Errorf("VerifyPaths(%q, %q) error %v is not a path validation error", tt.input, tt.output, err)
		}
	}
}

func TestPipeline_Run(t *testing.T) {
	fs := afero.NewMemMapFs()
	_ = fs.MkdirAll("/out", 0o755)
	for i := 1; i <= 7; i++ {
		testsupport.WriteMP3(t, fs, fmt.Sprintf("/in/%02d.mp3", i), model.Metadata{
			Artist: "Air", Album: "Moon Safari", Year: 1998, Title: fmt.Sprintf("Song %d", i), Track: uint16(i),
		})
	}

	rec := &recorder{}
	p := New(fs, testsupport.NewConfig(t), Params{InputDir: "/in", OutputDir: "/out", Workers: 3, Verbose: true}, nil)
	summary, err := p.Run(context.Background(), rec)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if summary.Workers != 3 {
		t.Errorf("Workers = %d, want 3", summary.Workers)
	}
	if len(summary.Scan.Entries) != 7 || summary.Result.Moved != 7 {
		t.Errorf("scanned %d, moved %d, want 7 and 7", len(summary.Scan.Entries), summary.Result.Moved)
	}
	if want := []string{"[3/4] Scanning music files...", "[4/4] Organizing music files..."}; strings.Join(rec.stages, "|") != strings.Join(want, "|") {
		t.Errorf("stages = %v, want %v", rec.stages, want)
	}
	if !contains(rec.infos, "... and 2 more files") {
		t.Errorf("verbose preview missing, infos = %v", rec.infos)
	}
	if rec.events != 14 {
		t.Errorf("progress events = %d, want 14", rec.events)
	}
	if ok, _ := afero.Exists(fs, "/out/Air/1998 - Moon Safari/07 - Song 7.mp3"); !ok {
		t.Error("organized file missing")
	}
}

func TestPipeline_RunTwice(t *testing.T) {
	fs := afero.NewMemMapFs()
	_ = fs.MkdirAll("/out", 0o755)
	testsupport.WriteMP3(t, fs, "/in/a.mp3", model.Metadata{Artist: "Air", Album: "Moon Safari", Year: 1998, Title: "All I Need", Track: 3})

	params := Params{InputDir: "/in", OutputDir: "/out", Mode: organize.Copy}
	if _, err := New(fs, testsupport.NewConfig(t), params, nil).Run(context.Background(), &recorder{}); err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	summary, err := New(fs, testsupport.NewConfig(t), params, nil).Run(context.Background(), &recorder{})
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	if summary.Seeded != 1 || summary.Result.Moved != 0 || summary.Result.Duplicates != 1 {
		t.Errorf("second run = seeded %d, %+v; want 1 seeded, 1 duplicate", summary.Seeded, summary.Result)
	}
}

func TestPipeline_RunEmpty(t *testing.T) {
	fs := afero.NewMemMapFs()
	_ = fs.MkdirAll("/in", 0o755)
	_ = fs.MkdirAll("/out", 0o755)

	rec := &recorder{}
	summary, err := New(fs, testsupport.NewConfig(t), Params{InputDir: "/in", OutputDir: "/out"}, nil).Run(context.Background(), rec)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if summary.Result.Total() != 0 {
		t.Errorf("Total() = %d, want 0", summary.Result.Total())
	}
	if !contains(rec.infos, "No music files found to organize.") {
		t.Errorf("infos = %v, want empty-input notice", rec.infos)
	}
	if len(rec.stages) != 1 {
		t.Errorf("stages = %v, want only the scan stage", rec.stages)
	}
}

func contains(lines []string, want string) bool {
	for _, line := range lines {
		if line == want {
			return true
		}
	}
	return false
}
