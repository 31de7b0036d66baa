package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Staged cycle execution: Fetch → Merge → Commit → Notify
//
// A reconciliation cycle moves through fixed stages. A failure in an early
// stage aborts the cycle before any later stage touches state:
//   1. FETCH   - pull the remote snapshot; failure leaves the store untouched
//   2. MERGE   - reconcile remote against the current store contents
//   3. COMMIT  - persist the merged sequence; failure leaves the store untouched
//   4. NOTIFY  - report the outcome and refresh the display
//   5. PUSH    - optionally send the merged snapshot back; never rolled back

// Stage identifies a step of a reconciliation cycle.
type Stage string

const (
	StageFetch  Stage = "fetch"
	StageMerge  Stage = "merge"
	StageCommit Stage = "commit"
	StageNotify Stage = "notify"
	StagePush   Stage = "push"
)

// StageError wraps errors with the stage where they occurred.
type StageError struct {
	Stage   Stage
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *StageError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s failed: %s: %v", e.Stage, e.Message, e.Cause)
	}

	return fmt.Sprintf("%s failed: %s", e.Stage, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *StageError) Unwrap() error {
	return e.Cause
}

// NewStageError creates an error for the given stage.
func NewStageError(stage Stage, message string, cause error) error {
	return &StageError{Stage: stage, Message: message, Cause: cause}
}

// IsStageError checks if an error occurred inside a cycle stage.
func IsStageError(err error) bool {
	var stageErr *StageError

	return errors.As(err, &stageErr)
}

// GetStage extracts the stage from a stage error.
func GetStage(err error) (Stage, bool) {
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		return stageErr.Stage, true
	}

	return "", false
}

// runStage executes one stage with debug tracing and wraps its failure.
func runStage(ctx context.Context, logger *slog.Logger, stage Stage, message string, fn func(context.Context) error) error {
	logger = logger.With(slog.String("stage", string(stage)))
	logger.DebugContext(ctx, "stage started")

	if err := fn(ctx); err != nil {
		logger.WarnContext(ctx, "stage failed", slog.Any("error", err))

		return NewStageError(stage, message, err)
	}

	logger.DebugContext(ctx, "stage completed")

	return nil
}
