package pipeline

import (
	"context"
	"sync"
	"time"

	apperrors "github.com/Aarxn-Jibz/BoQ-Optimization-and-Formwork-Fitting/internal/errors"
	"github.com/Aarxn-Jibz/BoQ-Optimization-and-Formwork-Fitting/pkg/contracts/domain"
)

// Step names
const (
	StepGenerate = "generate"
	StepClean    = "clean"
)

// Step is one named unit of a pipeline run
type Step interface {
	// Name returns the step name used in reports, spans and metrics
	Name() string

	// Execute runs the step. It reads and writes the shared run state and
	// returns the number of records it produced.
	Execute(ctx context.Context, run *RunState) (int, error)
}

// StepState represents the runtime state of a Step
type StepState struct {
	mu        sync.RWMutex
	name      string
	status    domain.StepStatus
	startTime *time.Time
	endTime   *time.Time
	records   int
	err       error
}

// NewStepState creates a pending step state
func NewStepState(name string) *StepState {
	return &StepState{
		name:   name,
		status: domain.StepStatusPending,
	}
}

// Start marks the step as active and sets the start time
func (s *StepState) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.startTime = &now
	s.status = domain.StepStatusActive
}

// Complete marks the step as completed with the records it produced
func (s *StepState) Complete(records int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.endTime = &now
	s.status = domain.StepStatusCompleted
	s.records = records
}

// Fail marks the step as failed with the given error
func (s *StepState) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.endTime = &now
	s.status = domain.StepStatusFailed
	s.err = err
}

// Skip marks a step that never ran because an earlier one failed
func (s *StepState) Skip() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.status = domain.StepStatusSkipped
}

// Status returns the current status
func (s *StepState) Status() domain.StepStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Duration returns the duration of the step execution
func (s *StepState) Duration() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.startTime == nil {
		return 0
	}
	if s.endTime != nil {
		return s.endTime.Sub(*s.startTime)
	}
	return time.Since(*s.startTime)
}

// Report returns the externally visible snapshot of the step
func (s *StepState) Report() domain.StepReport {
	duration := s.Duration()

	s.mu.RLock()
	defer s.mu.RUnlock()

	r := domain.StepReport{
		Name:        s.name,
		Status:      s.status,
		StartedAt:   s.startTime,
		CompletedAt: s.endTime,
		Records:     s.records,
	}
	if s.endTime != nil {
		r.DurationMS = duration.Milliseconds()
	}
	if s.err != nil {
		r.Error = s.err.Error()
		r.ErrorType = string(apperrors.TypeOf(s.err))
	}
	return r
}
