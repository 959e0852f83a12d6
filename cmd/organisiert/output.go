package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/handiism/organisiert/internal/model"
	"github.com/handiism/organisiert/internal/organize"
	"github.com/handiism/organisiert/internal/pipeline"
)

var (
	stageStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))
)

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func printStage(out io.Writer, step int, title string) {
	fmt.Fprintln(out, stageStyle.Render(fmt.Sprintf("[%d/%d] %s", step, pipeline.TotalStages, title)))
}

func printInfo(out io.Writer, message string) {
	fmt.Fprintf(out, "  %s\n", message)
}

func printWarning(out io.Writer, message string) {
	fmt.Fprintf(out, "  %s %s\n", warningStyle.Render("warning:"), message)
}

// plainReporter prints pipeline output line by line. Workers report
// concurrently, so writes are serialized.
type plainReporter struct {
	mu      sync.Mutex
	out     io.Writer
	verbose bool
}

func newPlainReporter(out io.Writer, verbose bool) *plainReporter {
	return &plainReporter{out: out, verbose: verbose}
}

func (r *plainReporter) Stage(step int, title string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	printStage(r.out, step, title)
}

func (r *plainReporter) Progress(event model.ProgressEvent) {
	// Per-file success lines are only interesting in verbose mode.
	if !r.verbose && (event.Level == model.LevelVerbose || event.Level == model.LevelSuccess) {
		return
	}

	var prefix string
	switch event.Level {
	case model.LevelError:
		prefix = errorStyle.Render("✗")
	case model.LevelWarning:
		prefix = warningStyle.Render("!")
	case model.LevelSuccess:
		prefix = successStyle.Render("✓")
	default:
		prefix = dimStyle.Render("•")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, "  %s %s\n", prefix, event.Message)
}

func (r *plainReporter) Info(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	printInfo(r.out, message)
}

func printSummary(out io.Writer, summary *pipeline.Summary, mode organize.Mode, interactive bool) {
	if summary == nil || summary.Scan == nil {
		return
	}
	if len(summary.Scan.Entries) == 0 {
		if interactive {
			printInfo(out, "No music files found to organize.")
		}
		return
	}

	result := summary.Result
	placed := "Moved"
	if mode == organize.Copy {
		placed = "Copied"
	}

	rows := [][]string{
		{placed, strconv.Itoa(result.Moved)},
		{"Skipped", strconv.Itoa(result.Skipped)},
		{"Duplicates", strconv.Itoa(result.Duplicates)},
		{"Failed", strconv.Itoa(result.Failed)},
	}
	if n := len(summary.Scan.Failures); n > 0 {
		rows = append(rows, []string{"Unreadable", strconv.Itoa(n)})
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, successStyle.Render("Organization complete!"))
	fmt.Fprintln(out, renderTable([]string{"Outcome", "Files"}, rows, []columnAlignment{alignLeft, alignRight}))
	fmt.Fprintf(out, "%d of %d files placed in %.2fs using %d workers\n",
		result.Moved, result.Total(), result.Duration.Seconds(), summary.Workers)
}
