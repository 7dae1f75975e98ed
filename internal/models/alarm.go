package models

import "time"

// AlarmSource identifies which input produced a computed alarm time.
type AlarmSource string

const (
	SourceSchedule AlarmSource = "schedule"
	SourceOverride AlarmSource = "override"
)

// ScheduleRule is the wake rule for a single day of the week.
// A full schedule is exactly one rule per day, Sunday=0 through Saturday=6.
type ScheduleRule struct {
	DayOfWeek     int    `json:"day_of_week"`
	Enabled       bool   `json:"enabled"`
	WakeTimeLocal string `json:"wake_time_local"` // HH:MM, 24-hour
}

// TonightOverride is a one-time wake time for the current night only,
// created by the night check-in flow. It supersedes the weekly schedule
// while still in the future, and is keyed by its calendar date.
type TonightOverride struct {
	Enabled  bool      `json:"enabled"`
	WakeTime time.Time `json:"wake_time"`
	Date     string    `json:"date"` // YYYY-MM-DD
}

// AlarmSettings is the user-configured alarm preference set, owned by the
// settings store and read-only to the alarm controller.
type AlarmSettings struct {
	IsArmed       bool           `json:"is_armed"`
	Schedule      []ScheduleRule `json:"schedule"` // always length 7
	SoundID       string         `json:"sound_id"`
	Volume        int            `json:"volume"` // 0-100
	SnoozeMinutes int            `json:"snooze_minutes"`
	MaxSnoozes    int            `json:"max_snoozes"`
	LastSetTime   string         `json:"last_set_time,omitempty"` // HH:MM fallback when no rule is enabled
}

// AlarmRuntimeState is the persisted live state of the alarm lifecycle,
// owned exclusively by the controller. IsRinging and a non-nil SnoozeUntil
// are mutually exclusive.
type AlarmRuntimeState struct {
	NextAlarmAt    *time.Time  `json:"next_alarm_at,omitempty"`
	IsRinging      bool        `json:"is_ringing"`
	RingStartedAt  *time.Time  `json:"ring_started_at,omitempty"`
	SnoozeUntil    *time.Time  `json:"snooze_until,omitempty"`
	SnoozeCount    int         `json:"snooze_count"`
	LastComputedAt time.Time   `json:"last_computed_at"`
	Source         AlarmSource `json:"source,omitempty"`
	SourceDate     string      `json:"source_date,omitempty"`
}

// NewIdleRuntimeState returns the fresh idle shape the runtime state is
// reset to on stop and created with on first run.
func NewIdleRuntimeState(now time.Time) AlarmRuntimeState {
	return AlarmRuntimeState{
		SnoozeCount:    0,
		LastComputedAt: now,
	}
}

// AlarmContext is handed to the morning capture flow when the user stops a
// ringing alarm. It is ephemeral and never persisted.
type AlarmContext struct {
	AlarmID        string    `json:"alarm_id"`
	ScheduledTime  time.Time `json:"scheduled_time"`
	ActualStopTime time.Time `json:"actual_stop_time"`
	SnoozeCount    int       `json:"snooze_count"`
}

// AlarmEvent is an append-only record of an alarm lifecycle event.
type AlarmEvent struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	OccurredAt time.Time      `json:"occurred_at"`
	Payload    map[string]any `json:"payload,omitempty"`
}

// Sound describes one entry of the static alarm sound catalog.
type Sound struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	File        string `json:"file"` // sounds/alarms/<slug>.wav
	Description string `json:"description"`
}
