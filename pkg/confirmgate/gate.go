package confirmgate

import (
	"context"
	"errors"
	"sync"
)

// State of the confirmation gate.
type State int

const (
	// StateIdle: no dialog open, nothing pending.
	StateIdle State = iota
	// StateAwaitingConfirmation: dialog open, acknowledgment unchecked.
	StateAwaitingConfirmation
	// StateConfirmed: acknowledgment checked, trigger is armed.
	StateConfirmed
	// StateInFlight: action running, all input disabled.
	StateInFlight
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingConfirmation:
		return "awaiting_confirmation"
	case StateConfirmed:
		return "confirmed"
	case StateInFlight:
		return "in_flight"
	}
	return "unknown"
}

var (
	// ErrNotConfirmed is returned by Trigger when the gate is not armed;
	// the action callback is never invoked in that case.
	ErrNotConfirmed = errors.New("action not confirmed")
	// ErrNotOpen is returned when no target is pending.
	ErrNotOpen = errors.New("gate is not open")
)

// ConfirmFunc runs the guarded irreversible action for a target.
type ConfirmFunc func(ctx context.Context, targetID string) error

// Gate forces explicit human acknowledgment before an irreversible action
// executes and guarantees the action runs at most once per confirmation.
// Triggering while the action is already in flight is a no-op, so a
// double-click cannot double-submit. Safe for concurrent use.
type Gate struct {
	mu       sync.Mutex
	state    State
	targetID string
	confirm  ConfirmFunc
}

func New(confirm ConfirmFunc) *Gate {
	return &Gate{state: StateIdle, confirm: confirm}
}

// Open presents the dialog for a target. A no-op unless the gate is idle.
func (g *Gate) Open(targetID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != StateIdle {
		return
	}
	g.targetID = targetID
	g.state = StateAwaitingConfirmation
}

// Acknowledge reflects the acknowledgment control. Checking arms the
// trigger; unchecking disarms it. Ignored while idle or in flight.
func (g *Gate) Acknowledge(checked bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	switch g.state {
	case StateAwaitingConfirmation:
		if checked {
			g.state = StateConfirmed
		}
	case StateConfirmed:
		if !checked {
			g.state = StateAwaitingConfirmation
		}
	}
}

// Cancel closes the dialog without invoking the action and resets the
// acknowledgment. Ignored while in flight: a running mutation cannot be
// cancelled from the client.
func (g *Gate) Cancel() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == StateInFlight {
		return
	}
	g.reset()
}

// Trigger runs the confirmed action. A no-op returning ErrNotConfirmed
// unless the state is exactly Confirmed, which covers both the unchecked
// dialog and re-triggers while in flight.
//
// On success the gate resets to idle with the acknowledgment cleared. On
// failure it returns to Confirmed with the acknowledgment intact, so the
// user can retry without re-reading the warning.
func (g *Gate) Trigger(ctx context.Context) error {
	g.mu.Lock()
	if g.state != StateConfirmed {
		g.mu.Unlock()
		return ErrNotConfirmed
	}
	if g.targetID == "" {
		g.mu.Unlock()
		return ErrNotOpen
	}
	targetID := g.targetID
	g.state = StateInFlight
	g.mu.Unlock()

	err := g.confirm(ctx, targetID)

	g.mu.Lock()
	defer g.mu.Unlock()
	if err != nil {
		g.state = StateConfirmed
		return err
	}
	g.reset()
	return nil
}

// State returns the current gate state.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// InFlight reports whether the action is currently running, for disabling
// host controls.
func (g *Gate) InFlight() bool {
	return g.State() == StateInFlight
}

// Acknowledged reports whether the acknowledgment control is checked.
func (g *Gate) Acknowledged() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state == StateConfirmed || g.state == StateInFlight
}

// reset must be called with the lock held.
func (g *Gate) reset() {
	g.state = StateIdle
	g.targetID = ""
}
