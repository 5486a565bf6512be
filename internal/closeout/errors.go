package closeout

import (
	"errors"
	"fmt"
)

// ClosureStep identifies the pipeline step a closeout failure originated from.
type ClosureStep string

const (
	StepValidating          ClosureStep = "validating"
	StepResolvingRegimen    ClosureStep = "resolving-regimen"
	StepPersistingResult    ClosureStep = "persisting-result"
	StepTransitioningStatus ClosureStep = "transitioning-status"
)

// ErrMissingStatusSelection is returned when the booking category requires a
// closing status and neither completed nor re-examination was chosen.
var ErrMissingStatusSelection = errors.New("a closing status of completed or re-examination must be selected")

// MissingFieldError reports a required field that is absent for the
// booking's category.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("required field %q is missing", e.Field)
}

// ScheduleError reports a medication slot whose supplied times do not
// satisfy it.
type ScheduleError struct {
	Slot    MedicationSlot
	Index   int // offending time entry, -1 for slot-level problems
	Message string
}

func (e *ScheduleError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("medication slot %q: %s", e.Slot, e.Message)
	}
	return fmt.Sprintf("medication slot %q, time %d: %s", e.Slot, e.Index, e.Message)
}

// NotFoundError reports a stale reference to a booking, regimen or result.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// ClosureError is the terminal failure of a closeout, tagged with the
// pipeline step it originated from. Steps 2-5 of the pipeline wrap
// collaborator errors here; validation failures carry StepValidating.
type ClosureError struct {
	Step ClosureStep
	Err  error
}

func (e *ClosureError) Error() string {
	return fmt.Sprintf("closeout failed while %s: %v", e.Step, e.Err)
}

func (e *ClosureError) Unwrap() error {
	return e.Err
}

func failAt(step ClosureStep, err error) *ClosureError {
	return &ClosureError{Step: step, Err: err}
}
