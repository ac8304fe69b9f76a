// Package saga runs an ordered list of local steps and undoes the completed
// ones when a later step fails. It replaces a multi-document transaction for
// the lifecycle cascades, where each step is a single-document write.
package saga

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Step is one local action with an optional compensation.
// Compensate is only invoked when Action succeeded and a later step failed.
type Step struct {
	Name       string
	Action     func(ctx context.Context) error
	Compensate func(ctx context.Context) error
}

// StepError reports which step of a saga failed.
type StepError struct {
	Saga string
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: step %s failed: %v", e.Saga, e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Saga is a named, ordered sequence of steps.
type Saga struct {
	name   string
	steps  []Step
	logger *zap.Logger
	// OnCompensate, when set, is called once per compensation that runs.
	OnCompensate func(saga, step string)
}

func New(name string, logger *zap.Logger) *Saga {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Saga{name: name, logger: logger}
}

// Add appends a step and returns the saga for chaining.
func (s *Saga) Add(step Step) *Saga {
	s.steps = append(s.steps, step)
	return s
}

// Run executes the steps in order. When step k fails, compensations for
// steps k-1..1 run in reverse order and the original error is returned
// wrapped in a *StepError. Compensation failures are logged and joined
// onto the returned error; they never hide the original cause.
func (s *Saga) Run(ctx context.Context) error {
	for i, step := range s.steps {
		err := step.Action(ctx)
		if err == nil {
			continue
		}

		s.logger.Warn("saga step failed, compensating",
			zap.String("saga", s.name),
			zap.String("step", step.Name),
			zap.Error(err),
		)

		failure := &StepError{Saga: s.name, Step: step.Name, Err: err}
		if compErr := s.compensate(ctx, i); compErr != nil {
			return errors.Join(failure, compErr)
		}
		return failure
	}
	return nil
}

func (s *Saga) compensate(ctx context.Context, failed int) error {
	// Compensations must still run when the request context was cancelled.
	ctx = context.WithoutCancel(ctx)

	var errs []error
	for i := failed - 1; i >= 0; i-- {
		step := s.steps[i]
		if step.Compensate == nil {
			continue
		}
		if s.OnCompensate != nil {
			s.OnCompensate(s.name, step.Name)
		}
		if err := step.Compensate(ctx); err != nil {
			s.logger.Error("saga compensation failed",
				zap.String("saga", s.name),
				zap.String("step", step.Name),
				zap.Error(err),
			)
			errs = append(errs, fmt.Errorf("compensate %s: %w", step.Name, err))
		}
	}
	return errors.Join(errs...)
}
