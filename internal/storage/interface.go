package storage

import (
	"github.com/lucidlog/lucidlog/internal/models"
	"github.com/lucidlog/lucidlog/internal/recurrence"
	"github.com/lucidlog/lucidlog/internal/sound"
)

// Provider is the durable store behind the alarm subsystem. It covers the
// settings contract (read plus the four mutators the settings surface
// uses), the tonight-override boundary fed by the night check-in flow, the
// runtime state persisted on every controller transition, and the
// append-only event log.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Settings
	GetAlarmSettings() (models.AlarmSettings, error)
	UpdateSchedule(schedule []models.ScheduleRule) error
	SetArmed(armed bool) error
	UpdateSound(soundID string, volume int) error
	UpdateSnooze(snoozeMinutes, maxSnoozes int) error

	// Tonight override, keyed by YYYY-MM-DD
	TonightOverride(date string) (*models.TonightOverride, error)
	SetTonightOverride(override models.TonightOverride) error
	ClearTonightOverride(date string) error

	// Runtime state (single row; nil means never persisted)
	AlarmState() (*models.AlarmRuntimeState, error)
	SaveAlarmState(state models.AlarmRuntimeState) error
	ClearAlarmState() error

	// Event log
	AppendEvent(event models.AlarmEvent) error
	Events(limit int) ([]models.AlarmEvent, error)

	// Utils
	ConfigPath() string
}

// DefaultSettings is the shape new stores are initialized with: disarmed,
// every day at 07:00, the default sound at volume 80, ten-minute snoozes
// capped at three.
func DefaultSettings() models.AlarmSettings {
	return models.AlarmSettings{
		IsArmed:       false,
		Schedule:      recurrence.DefaultSchedule(),
		SoundID:       sound.DefaultSoundID,
		Volume:        80,
		SnoozeMinutes: 10,
		MaxSnoozes:    3,
		LastSetTime:   "07:00",
	}
}
