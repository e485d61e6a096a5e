// Package flow holds the quiz interaction state that is independent of scoring:
// step navigation, the contact-form gate and the redirect countdown.
package flow

import "clarity-score-service/internal/domain"

// Stepper tracks the active step of the multi-step quiz.
type Stepper struct {
	total   int
	current int
}

// NewStepper starts at the first step. total below 1 is treated as 1.
func NewStepper(total int) *Stepper {
	return &Stepper{total: max(1, total)}
}

// Next advances one step unless already on the last one.
func (s *Stepper) Next() domain.StepState {
	if s.current < s.total-1 {
		s.current++
	}
	return s.State()
}

// Prev goes back one step unless already on the first one.
func (s *Stepper) Prev() domain.StepState {
	if s.current > 0 {
		s.current--
	}
	return s.State()
}

// State reports the current step and rounded progress percentage.
func (s *Stepper) State() domain.StepState {
	return domain.StepState{
		Index:    s.current,
		Total:    s.total,
		Progress: (200*(s.current+1) + s.total) / (2 * s.total),
	}
}
