package service

import "fmt"

// ToggleState is the lifecycle of one optimistic active-flag change.
type ToggleState string

const (
	ToggleIdle       ToggleState = "idle"
	TogglePending    ToggleState = "pending"
	ToggleCommitted  ToggleState = "committed"
	ToggleRolledBack ToggleState = "rolled_back"
)

// RowToggle tracks one row's switch from Idle through Pending to either
// Committed or RolledBack. The displayed value during Pending is the desired
// one; a rollback restores the previous value.
type RowToggle struct {
	state    ToggleState
	previous bool
	desired  bool
}

func NewRowToggle(current bool) *RowToggle {
	return &RowToggle{state: ToggleIdle, previous: current, desired: current}
}

func (t *RowToggle) State() ToggleState { return t.state }

// Value is what the row should display right now.
func (t *RowToggle) Value() bool {
	if t.state == ToggleRolledBack || t.state == ToggleIdle {
		return t.previous
	}
	return t.desired
}

// Begin moves Idle (or a settled row) to Pending.
func (t *RowToggle) Begin(desired bool) error {
	if t.state == TogglePending {
		return fmt.Errorf("toggle already pending")
	}
	if t.state == ToggleCommitted {
		t.previous = t.desired
	}
	t.desired = desired
	t.state = TogglePending
	return nil
}

func (t *RowToggle) Commit() error {
	if t.state != TogglePending {
		return fmt.Errorf("cannot commit from %s", t.state)
	}
	t.state = ToggleCommitted
	return nil
}

func (t *RowToggle) Rollback() error {
	if t.state != TogglePending {
		return fmt.Errorf("cannot roll back from %s", t.state)
	}
	t.state = ToggleRolledBack
	return nil
}
