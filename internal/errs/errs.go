// Package errs classifies the failures the organizer can hit.
//
// Startup failures (configuration, input/output paths) are fatal; extraction
// and transfer failures stay local to one file. Callers test the class with
// errors.Is against the exported markers.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrConfiguration  = errors.New("configuration error")
	ErrPathValidation = errors.New("path validation error")
	ErrExtraction     = errors.New("metadata extraction error")
	ErrTransfer       = errors.New("transfer error")
)

// Wrap builds an error carrying stage and operation context, tagged with
// marker. marker defaults to ErrTransfer when nil.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransfer
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "failure"
	}
	return strings.Join(parts, ": ")
}
