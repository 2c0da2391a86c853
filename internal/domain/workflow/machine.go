package workflow

import "context"

// StateMachine tracks the status of a single letter and validates transitions.
type StateMachine interface {
	State() State

	// CanFire reports whether trigger is configured for the current state.
	// Guards are not evaluated.
	CanFire(trigger Trigger) bool

	// Fire moves to the target state of the first transition whose guard passes.
	Fire(ctx context.Context, trigger Trigger) error

	PermittedTriggers() []Trigger
}
