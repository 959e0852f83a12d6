package model

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents a scan or organize progress update.
//
// Done and Total count files of the current stage; Done is monotonic within
// a stage. Events are purely observational.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
	Done    int
	Total   int
}
