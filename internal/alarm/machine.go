// Package alarm holds the wake-alarm lifecycle: a pure state machine over
// Idle/Armed/Ringing/Snoozed and the controller that executes its side
// effects against the scheduler, sound player, and store.
package alarm

import (
	"fmt"
	"time"

	"github.com/lucidlog/lucidlog/internal/models"
	"github.com/lucidlog/lucidlog/internal/recurrence"
)

type State int

const (
	StateIdle State = iota
	StateArmed
	StateRinging
	StateSnoozed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateArmed:
		return "armed"
	case StateRinging:
		return "ringing"
	case StateSnoozed:
		return "snoozed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Machine is a snapshot of the state machine: the enumerated state plus
// the runtime record that is persisted on every transition.
type Machine struct {
	State   State
	Runtime models.AlarmRuntimeState
}

// Policy is the slice of settings a transition needs. It is captured at
// dispatch time so the machine stays pure.
type Policy struct {
	Armed         bool
	SnoozeMinutes int
	MaxSnoozes    int
}

// DeriveState reconstructs the enumerated state from a hydrated runtime
// record, so a restart resumes exactly where the previous session left off.
func DeriveState(runtime models.AlarmRuntimeState, armed bool, now time.Time) State {
	switch {
	case runtime.IsRinging:
		return StateRinging
	case runtime.SnoozeUntil != nil && runtime.SnoozeUntil.After(now):
		return StateSnoozed
	case armed && runtime.NextAlarmAt != nil && runtime.NextAlarmAt.After(now):
		return StateArmed
	default:
		return StateIdle
	}
}

// Event is a sealed set of inputs dispatched into the machine.
type Event interface{ isAlarmEvent() }

type (
	// Recomputed carries a fresh recurrence resolution (nil when no alarm
	// is configured). Dispatched on startup and whenever settings change.
	Recomputed struct {
		Next *recurrence.Next
	}

	// Triggered is the scheduler firing for the target it was armed with.
	// A firing can race with a re-arm: the old callback may already be
	// waiting on the controller mutex when Start replaces the target. The
	// machine compares At against the pending target and drops mismatches.
	Triggered struct {
		At time.Time
	}

	// SnoozeRequested and StopRequested are the user actions from the
	// ring overlay.
	SnoozeRequested struct{}
	StopRequested   struct{}
)

func (Recomputed) isAlarmEvent()      {}
func (Triggered) isAlarmEvent()       {}
func (SnoozeRequested) isAlarmEvent() {}
func (StopRequested) isAlarmEvent()   {}

// Effect is a sealed set of side effects, returned in execution order;
// the controller runs them against the real scheduler, player, store, and
// event recorder.
type Effect interface{ isAlarmEffect() }

type (
	PlaySound     struct{}
	StopSound     struct{}
	ArmTrigger    struct{ At time.Time }
	CancelTrigger struct{}
	Persist       struct{}
	EmitRang      struct {
		Scheduled time.Time
		Source    models.AlarmSource
	}
	EmitSnoozed struct {
		Count int
		Until time.Time
	}
	EmitStopped struct {
		Count   int
		Success bool
	}
	// Handoff navigates to the morning capture flow. AlarmID is left
	// empty when the alarm had no scheduled time; the controller fills
	// in a generated id.
	Handoff struct{ Context models.AlarmContext }
	Notice  struct {
		Warning bool
		Message string
	}
)

func (PlaySound) isAlarmEffect()     {}
func (StopSound) isAlarmEffect()     {}
func (ArmTrigger) isAlarmEffect()    {}
func (CancelTrigger) isAlarmEffect() {}
func (Persist) isAlarmEffect()       {}
func (EmitRang) isAlarmEffect()      {}
func (EmitSnoozed) isAlarmEffect()   {}
func (EmitStopped) isAlarmEffect()   {}
func (Handoff) isAlarmEffect()       {}
func (Notice) isAlarmEffect()        {}

// Transition applies one event and returns the new machine snapshot plus
// the ordered side effects. It never performs I/O and never fails: an
// invalid event for the current state returns the machine unchanged with
// no effects (or a Notice where the user needs to know).
func Transition(m Machine, policy Policy, event Event, now time.Time) (Machine, []Effect) {
	switch event := event.(type) {
	case Recomputed:
		return recompute(m, policy, event.Next, now)
	case Triggered:
		return ring(m, event.At, now)
	case SnoozeRequested:
		return snooze(m, policy, now)
	case StopRequested:
		return stop(m, now)
	default:
		return m, nil
	}
}

// recompute re-resolves the pending target. A live ring is never clobbered
// by a settings change; a still-pending snooze outlives recomputation so a
// restart cannot silently drop a deferred alarm.
func recompute(m Machine, policy Policy, next *recurrence.Next, now time.Time) (Machine, []Effect) {
	if m.State == StateRinging || m.Runtime.IsRinging {
		// Hydrated mid-ring: resume the ring rather than recompute.
		m.State = StateRinging
		return m, []Effect{PlaySound{}}
	}

	if until := m.Runtime.SnoozeUntil; until != nil && until.After(now) && policy.Armed {
		m.State = StateSnoozed
		return m, []Effect{ArmTrigger{At: *until}, Persist{}}
	}

	m.Runtime.SnoozeUntil = nil
	m.Runtime.RingStartedAt = nil
	m.Runtime.LastComputedAt = now

	if policy.Armed && next != nil {
		at := next.At
		m.Runtime.NextAlarmAt = &at
		m.Runtime.Source = next.Source
		m.Runtime.SourceDate = now.Format("2006-01-02")
		m.State = StateArmed
		return m, []Effect{ArmTrigger{At: at}, Persist{}}
	}

	m.Runtime.NextAlarmAt = nil
	m.Runtime.Source = ""
	m.Runtime.SourceDate = ""
	m.State = StateIdle
	return m, []Effect{CancelTrigger{}, Persist{}}
}

func ring(m Machine, at, now time.Time) (Machine, []Effect) {
	if m.State != StateArmed && m.State != StateSnoozed {
		return m, nil
	}

	// Stale firing: the fired target no longer matches the pending one,
	// so a re-arm superseded it after the poller consumed the trigger.
	expected := m.Runtime.NextAlarmAt
	if m.State == StateSnoozed {
		expected = m.Runtime.SnoozeUntil
	}
	if expected == nil || !expected.Equal(at) {
		return m, nil
	}

	// A fresh ring starts a new snooze budget; a ring that follows a
	// snooze keeps counting against the same budget.
	if m.State == StateArmed {
		m.Runtime.SnoozeCount = 0
	}

	scheduled := now
	if m.Runtime.NextAlarmAt != nil {
		scheduled = *m.Runtime.NextAlarmAt
	}
	source := m.Runtime.Source
	if source == "" {
		source = models.SourceSchedule
	}

	m.Runtime.IsRinging = true
	m.Runtime.RingStartedAt = &now
	m.Runtime.SnoozeUntil = nil
	m.State = StateRinging

	return m, []Effect{
		Persist{},
		PlaySound{},
		EmitRang{Scheduled: scheduled, Source: source},
	}
}

func snooze(m Machine, policy Policy, now time.Time) (Machine, []Effect) {
	if m.State != StateRinging {
		return m, nil
	}
	if m.Runtime.SnoozeCount >= policy.MaxSnoozes {
		return m, []Effect{Notice{Warning: true, Message: "Maximum snoozes reached"}}
	}

	until := now.Add(time.Duration(policy.SnoozeMinutes) * time.Minute)
	m.Runtime.IsRinging = false
	m.Runtime.SnoozeUntil = &until
	m.Runtime.SnoozeCount++
	m.State = StateSnoozed

	return m, []Effect{
		StopSound{},
		Persist{},
		EmitSnoozed{Count: m.Runtime.SnoozeCount, Until: until},
		ArmTrigger{At: until},
		Notice{Message: "Snoozed until " + until.Format("3:04 PM")},
	}
}

func stop(m Machine, now time.Time) (Machine, []Effect) {
	if m.State != StateRinging {
		return m, nil
	}

	context := models.AlarmContext{
		ActualStopTime: now,
		SnoozeCount:    m.Runtime.SnoozeCount,
		ScheduledTime:  now,
	}
	if m.Runtime.NextAlarmAt != nil {
		context.ScheduledTime = *m.Runtime.NextAlarmAt
		context.AlarmID = m.Runtime.NextAlarmAt.Format(time.RFC3339)
	}
	stoppedCount := m.Runtime.SnoozeCount

	m.Runtime = models.NewIdleRuntimeState(now)
	m.State = StateIdle

	return m, []Effect{
		StopSound{},
		CancelTrigger{},
		EmitStopped{Count: stoppedCount, Success: true},
		Persist{},
		Handoff{Context: context},
	}
}
