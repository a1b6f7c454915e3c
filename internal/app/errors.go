package app

import "fmt"

// Stage identifies where in the pipeline a fatal error occurred.
type Stage string

const (
	// StageConnect covers target resolution and session acquisition.
	StageConnect Stage = "connect"
	// StagePush covers remote directory setup and the source sync.
	StagePush Stage = "sync-push"
	// StageBuild covers the remote build command.
	StageBuild Stage = "remote-build"
	// StagePull covers artifact retrieval. Pull failures are warnings,
	// never PipelineErrors; the stage exists for reporting symmetry.
	StagePull Stage = "sync-pull"
)

// PipelineError is a fatal pipeline failure carrying the stage it
// occurred in, so the operator can diagnose without re-running verbosely.
type PipelineError struct {
	// Stage is the pipeline stage that failed.
	Stage Stage
	// Cause is the underlying error.
	Cause error
}

// Error implements the error interface.
func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Cause)
}

// Unwrap returns the underlying error.
func (e *PipelineError) Unwrap() error {
	return e.Cause
}

// NewPipelineError creates a PipelineError for a stage.
func NewPipelineError(stage Stage, cause error) *PipelineError {
	return &PipelineError{Stage: stage, Cause: cause}
}
