// internal/controller/types.go
package controller

import (
	"context"
	"time"

	"github.com/bernardothives/projeto-final-dsme/internal/mirror"
)

// StepStatus is the outcome of one step within a cycle.
type StepStatus int

const (
	StepSkipped StepStatus = iota
	StepOK
	StepFailed
)

func (s StepStatus) String() string {
	switch s {
	case StepOK:
		return "ok"
	case StepFailed:
		return "failed"
	default:
		return "skipped"
	}
}

// StepResult is what a step left behind. Err is set only when Status is StepFailed.
type StepResult struct {
	Status StepStatus
	Err    error
}

func okStep() StepResult              { return StepResult{Status: StepOK} }
func failedStep(err error) StepResult { return StepResult{Status: StepFailed, Err: err} }
func skippedStep() StepResult         { return StepResult{Status: StepSkipped} }

// CycleResult is a snapshot produced by one cycle.
type CycleResult struct {
	Seq uint64
	At  time.Time

	Fetch   StepResult
	Measure StepResult
	Post    StepResult
	Mirror  StepResult
	Actuate StepResult

	// ThresholdCm is the value the actuation decision used.
	ThresholdCm int
	// DistanceCm is valid only when Measure succeeded.
	DistanceCm int
	Pulsed     bool
	Duration   time.Duration
}

// ---- collaborators ----

// Remote is the configuration and telemetry backend.
type Remote interface {
	FetchThreshold(ctx context.Context) (int, error)
	PostMeasurement(ctx context.Context, distanceCm int) error
}

// Mirror receives a copy of each successful reading.
type Mirror interface {
	Publish(r mirror.Reading) error
}
