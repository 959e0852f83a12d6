package tui

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/handiism/organisiert/internal/model"
	"github.com/handiism/organisiert/internal/pipeline"
)

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestModel_Stages(t *testing.T) {
	m := NewModel(false)

	m = update(t, m, StageMsg{Step: 3, Title: "Scanning music files..."})
	if m.state != StateScanning {
		t.Errorf("state = %v, want StateScanning", m.state)
	}
	if !strings.Contains(m.View(), "[3/4] Scanning music files...") {
		t.Error("view missing scan stage header")
	}

	m = update(t, m, StageMsg{Step: 4, Title: "Organizing music files..."})
	if m.state != StateOrganizing {
		t.Errorf("state = %v, want StateOrganizing", m.state)
	}
}

func TestModel_ProgressFiltersVerbose(t *testing.T) {
	m := NewModel(false)
	m = update(t, m, StageMsg{Step: 4, Title: "Organizing music files..."})

	m = update(t, m, ProgressMsg{Event: model.ProgressEvent{Message: "Duplicate: a.mp3", Level: model.LevelVerbose, Done: 1, Total: 2}})
	m = update(t, m, ProgressMsg{Event: model.ProgressEvent{Message: "Failed: b.mp3", Level: model.LevelError, Done: 2, Total: 2}})

	if len(m.logs) != 1 || m.logs[0].Message != "Failed: b.mp3" {
		t.Errorf("logs = %+v, want only the failure", m.logs)
	}
	if m.percent() != 1 {
		t.Errorf("percent() = %v, want 1", m.percent())
	}
	if !strings.Contains(m.View(), "Files: 2/2") {
		t.Error("view missing file counter")
	}
}

func TestModel_KeepsLastLogs(t *testing.T) {
	m := NewModel(true)
	for i := 0; i < maxLogs+5; i++ {
		m = update(t, m, InfoMsg{Message: "line"})
	}
	if len(m.logs) != maxLogs {
		t.Errorf("len(logs) = %d, want %d", len(m.logs), maxLogs)
	}
}

func TestModel_Done(t *testing.T) {
	m := NewModel(false)
	summary := &pipeline.Summary{Result: model.OrganizeResult{Moved: 3, Duplicates: 1, Duration: time.Second}}

	m = update(t, m, DoneMsg{Summary: summary})
	if m.state != StateComplete {
		t.Fatalf("state = %v, want StateComplete", m.state)
	}
	view := m.View()
	if !strings.Contains(view, "Moved:      3") || !strings.Contains(view, "Duplicates: 1") {
		t.Errorf("complete view missing counters:\n%s", view)
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Error("q should quit on the final screen")
	}
}

func TestModel_DoneWithError(t *testing.T) {
	m := NewModel(false)
	m = update(t, m, DoneMsg{Err: errors.New("input directory missing")})

	if m.state != StateError || !strings.Contains(m.View(), "input directory missing") {
		t.Errorf("state = %v, view = %q", m.state, m.View())
	}
}

func TestModel_CtrlCInterrupts(t *testing.T) {
	m := NewModel(false)
	m = update(t, m, StageMsg{Step: 3, Title: "Scanning music files..."})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})

	if !m.interrupted {
		t.Error("ctrl+c during a run should mark the model interrupted")
	}
}

func TestStartJob_Reports(t *testing.T) {
	var (
		mu   sync.Mutex
		sent []tea.Msg
	)
	send := func(msg tea.Msg) {
		mu.Lock()
		defer mu.Unlock()
		sent = append(sent, msg)
	}
	job := func(ctx context.Context, r pipeline.Reporter) (*pipeline.Summary, error) {
		r.Stage(3, "Scanning music files...")
		r.Progress(model.ProgressEvent{Message: "a.mp3", Done: 1, Total: 1})
		r.Info("1 files processed in 0.01s")
		return &pipeline.Summary{}, nil
	}

	done := <-startJob(context.Background(), job, send)
	if done.Summary == nil || done.Err != nil {
		t.Fatalf("DoneMsg = %+v, want a summary and no error", done)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(sent) != 4 {
		t.Fatalf("sent %d messages, want 4", len(sent))
	}
	if _, ok := sent[0].(StageMsg); !ok {
		t.Errorf("first message = %T, want StageMsg", sent[0])
	}
	if _, ok := sent[3].(DoneMsg); !ok {
		t.Errorf("last message = %T, want DoneMsg", sent[3])
	}
}

func TestRun_WaitsForCancelledJob(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var finished atomic.Bool
	job := func(ctx context.Context, r pipeline.Reporter) (*pipeline.Summary, error) {
		r.Stage(4, "Organizing music files...")
		cancel()
		<-ctx.Done()
		// A copy still unwinding after the interrupt.
		time.Sleep(100 * time.Millisecond)
		finished.Store(true)
		return &pipeline.Summary{}, ctx.Err()
	}

	_, err := run(ctx, job, false, tea.WithInput(nil), tea.WithOutput(io.Discard))
	if !errors.Is(err, ErrInterrupted) {
		t.Errorf("run() error = %v, want ErrInterrupted", err)
	}
	if !finished.Load() {
		t.Error("run() returned before the job finished")
	}
}
