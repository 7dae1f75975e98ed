package alarm

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lucidlog/lucidlog/internal/events"
	"github.com/lucidlog/lucidlog/internal/logger"
	"github.com/lucidlog/lucidlog/internal/models"
	"github.com/lucidlog/lucidlog/internal/recurrence"
	"github.com/lucidlog/lucidlog/internal/storage"
)

// TriggerScheduler is the slice of the trigger package the controller
// drives.
type TriggerScheduler interface {
	OnTrigger(func(target time.Time))
	Start(target time.Time)
	Cancel()
}

// SoundPlayer abstracts audio output so tests and headless environments can
// substitute a fake.
type SoundPlayer interface {
	Play(soundID string, volume int) error
	Stop()
}

// Snapshot is the read view of the controller handed to the UI on each
// poll tick.
type Snapshot struct {
	State    State
	Runtime  models.AlarmRuntimeState
	Settings models.AlarmSettings
	NextText string
}

// Options wires the controller's collaborators. Store, Scheduler, and
// Player are required; the rest default to sensible no-ops.
type Options struct {
	Store     storage.Provider
	Scheduler TriggerScheduler
	Player    SoundPlayer
	Recorder  *events.Recorder
	Location  *time.Location
	Now       func() time.Time

	// Navigate receives the morning handoff when a ring is stopped.
	Navigate func(models.AlarmContext)
	// Notify receives user-facing notices (snooze confirmations, limits).
	Notify func(Notice)
}

// Controller owns the alarm lifecycle. It is the only writer of the
// persisted runtime state: every user action and trigger firing is run
// through the pure transition function and the returned effects are
// executed here, in order, against the real collaborators.
type Controller struct {
	mu        sync.Mutex
	store     storage.Provider
	scheduler TriggerScheduler
	player    SoundPlayer
	recorder  *events.Recorder
	loc       *time.Location
	now       func() time.Time
	navigate  func(models.AlarmContext)
	notify    func(Notice)

	machine  Machine
	settings models.AlarmSettings
}

func NewController(opts Options) *Controller {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Navigate == nil {
		opts.Navigate = func(models.AlarmContext) {}
	}
	if opts.Notify == nil {
		opts.Notify = func(Notice) {}
	}

	c := &Controller{
		store:     opts.Store,
		scheduler: opts.Scheduler,
		player:    opts.Player,
		recorder:  opts.Recorder,
		loc:       opts.Location,
		now:       opts.Now,
		navigate:  opts.Navigate,
		notify:    opts.Notify,
	}
	c.scheduler.OnTrigger(c.handleTrigger)
	return c
}

// Refresh hydrates settings and persisted runtime state from the store,
// re-resolves the next alarm, and reconciles the machine. It is called on
// startup and after every settings change.
func (c *Controller) Refresh() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refreshLocked()
}

func (c *Controller) refreshLocked() error {
	now := c.now().In(c.loc)

	settings, err := c.store.GetAlarmSettings()
	if err != nil {
		return err
	}
	c.settings = settings

	persisted, err := c.store.AlarmState()
	if err != nil {
		return err
	}
	if persisted != nil {
		c.machine.Runtime = *persisted
	} else {
		c.machine.Runtime = models.NewIdleRuntimeState(now)
	}
	c.machine.State = DeriveState(c.machine.Runtime, settings.IsArmed, now)

	override, err := c.store.TonightOverride(now.Format("2006-01-02"))
	if err != nil {
		return err
	}

	var next *recurrence.Next
	if resolved, ok := recurrence.NextAlarm(now, settings.Schedule, override, c.loc, settings.LastSetTime); ok {
		next = &resolved
	}

	c.dispatchLocked(Recomputed{Next: next}, now)
	return nil
}

// SetArmed flips the master switch and recomputes.
func (c *Controller) SetArmed(armed bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.SetArmed(armed); err != nil {
		return err
	}
	if err := c.refreshLocked(); err != nil {
		return err
	}
	if c.recorder != nil {
		if armed {
			c.recorder.AlarmArmed(c.machine.Runtime.NextAlarmAt)
		} else {
			c.recorder.AlarmDisarmed()
		}
	}
	return nil
}

// UpdateSchedule replaces the weekly schedule and recomputes.
func (c *Controller) UpdateSchedule(schedule []models.ScheduleRule) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.UpdateSchedule(schedule); err != nil {
		return err
	}
	if c.recorder != nil {
		c.recorder.SettingsUpdated("schedule")
	}
	return c.refreshLocked()
}

// UpdateSound changes the alarm sound and volume. No recompute is needed;
// the next ring picks the new settings up.
func (c *Controller) UpdateSound(soundID string, volume int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.UpdateSound(soundID, volume); err != nil {
		return err
	}
	if c.recorder != nil {
		c.recorder.SettingsUpdated("sound")
	}
	settings, err := c.store.GetAlarmSettings()
	if err != nil {
		return err
	}
	c.settings = settings
	return nil
}

// UpdateSnooze changes the snooze policy.
func (c *Controller) UpdateSnooze(snoozeMinutes, maxSnoozes int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.UpdateSnooze(snoozeMinutes, maxSnoozes); err != nil {
		return err
	}
	if c.recorder != nil {
		c.recorder.SettingsUpdated("snooze")
	}
	settings, err := c.store.GetAlarmSettings()
	if err != nil {
		return err
	}
	c.settings = settings
	return nil
}

// SetTonightOverride stores a one-time wake time for tonight and
// recomputes so it takes effect immediately.
func (c *Controller) SetTonightOverride(override models.TonightOverride) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.SetTonightOverride(override); err != nil {
		return err
	}
	if c.recorder != nil {
		c.recorder.SettingsUpdated("override")
	}
	return c.refreshLocked()
}

// ClearTonightOverride removes tonight's override and falls back to the
// weekly schedule.
func (c *Controller) ClearTonightOverride(date string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.ClearTonightOverride(date); err != nil {
		return err
	}
	if c.recorder != nil {
		c.recorder.SettingsUpdated("override")
	}
	return c.refreshLocked()
}

// Snooze defers a ringing alarm by the configured snooze interval.
func (c *Controller) Snooze() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dispatchLocked(SnoozeRequested{}, c.now().In(c.loc))
}

// Stop silences a ringing alarm, resets the lifecycle, and hands off to
// the morning capture flow.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dispatchLocked(StopRequested{}, c.now().In(c.loc))
}

// Snapshot returns the current read view for the UI.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snapshot := Snapshot{
		State:    c.machine.State,
		Runtime:  c.machine.Runtime,
		Settings: c.settings,
	}
	if at := c.machine.Runtime.NextAlarmAt; at != nil {
		snapshot.NextText = recurrence.FormatAlarmTime(*at, c.now().In(c.loc), c.loc)
	}
	return snapshot
}

// Close cancels the pending trigger and stops playback. The store is owned
// by the caller and is not closed here.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scheduler.Cancel()
	c.player.Stop()
}

// handleTrigger runs on the scheduler's goroutine. The fired target rides
// along so the machine can discard a firing that a settings change
// superseded while this call was waiting on the mutex.
func (c *Controller) handleTrigger(target time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dispatchLocked(Triggered{At: target}, c.now().In(c.loc))
}

func (c *Controller) dispatchLocked(event Event, now time.Time) {
	next, effects := Transition(c.machine, c.policyLocked(), event, now)
	c.machine = next
	c.applyLocked(effects)
}

func (c *Controller) policyLocked() Policy {
	return Policy{
		Armed:         c.settings.IsArmed,
		SnoozeMinutes: c.settings.SnoozeMinutes,
		MaxSnoozes:    c.settings.MaxSnoozes,
	}
}

// applyLocked executes effects in order. Failures are logged and never
// interrupt the sequence: a sound device error must not stop the state from
// persisting, and vice versa.
func (c *Controller) applyLocked(effects []Effect) {
	for _, effect := range effects {
		switch effect := effect.(type) {
		case PlaySound:
			if err := c.player.Play(c.settings.SoundID, c.settings.Volume); err != nil {
				logger.Error("alarm playback blocked", "error", err)
				c.notify(Notice{Warning: true, Message: "Sound unavailable; alarm is ringing silently"})
			}
		case StopSound:
			c.player.Stop()
		case ArmTrigger:
			c.scheduler.Start(effect.At)
		case CancelTrigger:
			c.scheduler.Cancel()
		case Persist:
			if err := c.store.SaveAlarmState(c.machine.Runtime); err != nil {
				logger.Error("failed to persist alarm state", "error", err)
			}
		case EmitRang:
			if c.recorder != nil {
				c.recorder.AlarmRang(effect.Scheduled, effect.Source)
			}
		case EmitSnoozed:
			if c.recorder != nil {
				c.recorder.AlarmSnoozed(effect.Count, effect.Until)
			}
		case EmitStopped:
			if c.recorder != nil {
				c.recorder.AlarmStopped(effect.Count, effect.Success)
			}
		case Handoff:
			context := effect.Context
			if context.AlarmID == "" {
				context.AlarmID = uuid.New().String()
			}
			c.navigate(context)
		case Notice:
			c.notify(effect)
		}
	}
}
