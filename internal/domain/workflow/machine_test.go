package workflow

import (
	"context"
	"errors"
	"testing"
)

type guardKey struct{}

func TestState_IsTerminal(t *testing.T) {
	tests := []struct {
		state    State
		expected bool
	}{
		{StateDraft, false},
		{StatePendingApproval, false},
		{StateApproved, false},
		{StateRevision, false},
		{StateSent, false},
		{StateRejected, true},
		{StateArchived, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			if got := tt.state.IsTerminal(); got != tt.expected {
				t.Errorf("State.IsTerminal() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		expected bool
	}{
		{"draft", StateDraft, true},
		{"archived", StateArchived, true},
		{"received", StateReceived, true},
		{"unknown", State("INVALID"), false},
		{"empty", State(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.expected {
				t.Errorf("State.IsValid() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestBuilder_ConfigurePanicsOnInvalidState(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Configure() should panic on invalid state")
		}
	}()

	NewBuilder().Configure(State("INVALID"))
}

func TestBuilder_BuildPanicsOnInvalidInitialState(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Build() should panic on invalid initial state")
		}
	}()

	NewBuilder().Build(State("nope"))
}

func TestStateConfiguration_PermitPanicsOnInvalidTarget(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Permit() should panic on invalid target state")
		}
	}()

	NewBuilder().Configure(StateDraft).Permit(TriggerSubmit, State("INVALID"))
}

func TestStateConfiguration_Permit(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StateDraft).Permit(TriggerSubmit, StatePendingApproval)

	machine := builder.Build(StateDraft)

	if !machine.CanFire(TriggerSubmit) {
		t.Error("CanFire() should return true for permitted trigger")
	}
	if err := machine.Fire(context.Background(), TriggerSubmit); err != nil {
		t.Fatalf("Fire() failed: %v", err)
	}
	if machine.State() != StatePendingApproval {
		t.Errorf("State after Fire() = %v, want %v", machine.State(), StatePendingApproval)
	}
}

func TestStateConfiguration_PermitReentry(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StateApproved).PermitReentry(TriggerSign)

	machine := builder.Build(StateApproved)
	if err := machine.Fire(context.Background(), TriggerSign); err != nil {
		t.Fatalf("Fire() failed: %v", err)
	}
	if machine.State() != StateApproved {
		t.Errorf("State after reentry = %v, want %v", machine.State(), StateApproved)
	}
}

func TestStateConfiguration_PermitIf_GuardFails(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StateApproved).
		PermitIf(TriggerSend, StateSent, func(ctx context.Context) bool { return false })

	machine := builder.Build(StateApproved)

	err := machine.Fire(context.Background(), TriggerSend)
	if !errors.Is(err, ErrGuardFailed) {
		t.Fatalf("Fire() error = %v, want %v", err, ErrGuardFailed)
	}
	if machine.State() != StateApproved {
		t.Errorf("State should remain %v after failed Fire(), got %v", StateApproved, machine.State())
	}
}

func TestStateConfiguration_PermitIf_FirstPassingGuardWins(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StatePendingApproval).
		PermitIf(TriggerApprove, StateApproved, func(ctx context.Context) bool {
			return ctx.Value(guardKey{}).(bool)
		}).
		PermitIf(TriggerApprove, StatePendingApproval, func(ctx context.Context) bool {
			return !ctx.Value(guardKey{}).(bool)
		})

	last := builder.Build(StatePendingApproval)
	if err := last.Fire(context.WithValue(context.Background(), guardKey{}, true), TriggerApprove); err != nil {
		t.Fatalf("Fire() failed: %v", err)
	}
	if last.State() != StateApproved {
		t.Errorf("State = %v, want %v", last.State(), StateApproved)
	}

	middle := builder.Build(StatePendingApproval)
	if err := middle.Fire(context.WithValue(context.Background(), guardKey{}, false), TriggerApprove); err != nil {
		t.Fatalf("Fire() failed: %v", err)
	}
	if middle.State() != StatePendingApproval {
		t.Errorf("State = %v, want %v", middle.State(), StatePendingApproval)
	}
}

func TestStateMachine_Fire_InvalidTransition(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StateDraft).Permit(TriggerSubmit, StatePendingApproval)

	machine := builder.Build(StateDraft)

	err := machine.Fire(context.Background(), TriggerApprove)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("Fire() error = %v, want %v", err, ErrInvalidTransition)
	}
	if machine.State() != StateDraft {
		t.Errorf("State should remain %v after failed Fire(), got %v", StateDraft, machine.State())
	}
}

func TestStateMachine_Fire_NoConfiguration(t *testing.T) {
	machine := NewBuilder().Build(StateRejected)

	if err := machine.Fire(context.Background(), TriggerSubmit); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Fire() error = %v, want %v", err, ErrInvalidTransition)
	}
	if got := machine.PermittedTriggers(); len(got) != 0 {
		t.Errorf("PermittedTriggers() = %v, want none", got)
	}
}

func TestStateMachine_PermittedTriggersSorted(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StateApproved).
		PermitReentry(TriggerSign).
		Permit(TriggerArchive, StateArchived).
		Permit(TriggerSend, StateSent)

	got := builder.Build(StateApproved).PermittedTriggers()
	want := []Trigger{TriggerArchive, TriggerSend, TriggerSign}
	if len(got) != len(want) {
		t.Fatalf("PermittedTriggers() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("PermittedTriggers()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestStateMachine_Independence(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StateDraft).Permit(TriggerSubmit, StatePendingApproval)

	machine1 := builder.Build(StateDraft)
	machine2 := builder.Build(StateDraft)

	// configured after machine2 was built
	builder.Configure(StateDraft).PermitReentry(TriggerEdit)

	if err := machine1.Fire(context.Background(), TriggerSubmit); err != nil {
		t.Fatalf("Fire() failed: %v", err)
	}
	if machine2.State() != StateDraft {
		t.Errorf("machine2 state = %v, want %v", machine2.State(), StateDraft)
	}
	if machine2.CanFire(TriggerEdit) {
		t.Error("machine2 should not see transitions configured after Build()")
	}
}
