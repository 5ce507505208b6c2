// Package saga runs an ordered list of steps where each completed step may
// register an undo action. When a step fails, the undo actions of the steps
// that already completed run in reverse order.
package saga

import (
	"context"
	"errors"
	"fmt"

	"github.com/orris-inc/tracksync/internal/shared/logger"
)

// Step is one unit of work. Undo may be nil when the step cannot be reversed.
type Step struct {
	Name string
	Do   func(ctx context.Context) error
	Undo func(ctx context.Context) error
}

// StepError reports which step failed and whether compensation completed.
type StepError struct {
	Step string
	Err  error
	// CompensationErr joins every undo failure. Nil means all undos succeeded.
	CompensationErr error
}

func (e *StepError) Error() string {
	if e.CompensationErr != nil {
		return fmt.Sprintf("saga step %q failed: %v (compensation failed: %v)", e.Step, e.Err, e.CompensationErr)
	}
	return fmt.Sprintf("saga step %q failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Compensated reports whether every completed step was rolled back.
func (e *StepError) Compensated() bool {
	return e.CompensationErr == nil
}

// Saga executes steps in order.
type Saga struct {
	name   string
	steps  []Step
	logger logger.Interface
}

func New(name string, log logger.Interface, steps ...Step) *Saga {
	return &Saga{name: name, steps: steps, logger: log}
}

// Run executes the steps. On failure it returns a *StepError after running
// compensation. Undo actions run with a context detached from ctx's
// cancellation so a cancelled request still cleans up.
func (s *Saga) Run(ctx context.Context) error {
	completed := make([]Step, 0, len(s.steps))

	for _, step := range s.steps {
		if err := step.Do(ctx); err != nil {
			s.logger.Warnw("saga step failed, compensating",
				"saga", s.name,
				"step", step.Name,
				"error", err,
			)
			return &StepError{
				Step:            step.Name,
				Err:             err,
				CompensationErr: s.compensate(context.WithoutCancel(ctx), completed),
			}
		}
		completed = append(completed, step)
	}

	return nil
}

func (s *Saga) compensate(ctx context.Context, completed []Step) error {
	var errs []error
	for i := len(completed) - 1; i >= 0; i-- {
		step := completed[i]
		if step.Undo == nil {
			continue
		}
		if err := step.Undo(ctx); err != nil {
			s.logger.Errorw("saga compensation failed",
				"saga", s.name,
				"step", step.Name,
				"error", err,
			)
			errs = append(errs, fmt.Errorf("undo %s: %w", step.Name, err))
		}
	}
	return errors.Join(errs...)
}
