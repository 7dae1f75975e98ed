// Package events records alarm lifecycle events to the store. Recording is
// fire-and-forget: a failed append is logged and never reaches the caller,
// so telemetry can never break the alarm path.
package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/lucidlog/lucidlog/internal/logger"
	"github.com/lucidlog/lucidlog/internal/models"
	"github.com/lucidlog/lucidlog/internal/storage"
)

// Event type names, shared with the journaling side of the application.
const (
	TypeRang            = "alarm.rang"
	TypeSnoozed         = "alarm.snoozed"
	TypeStopped         = "alarm.stopped"
	TypeArmed           = "alarm.armed"
	TypeDisarmed        = "alarm.disarmed"
	TypeSettingsUpdated = "alarm.settings.updated"
)

type Recorder struct {
	store storage.Provider
	now   func() time.Time
}

func NewRecorder(store storage.Provider) *Recorder {
	return &Recorder{store: store, now: time.Now}
}

// NewRecorderWithClock is NewRecorder with an injected clock for tests.
func NewRecorderWithClock(store storage.Provider, now func() time.Time) *Recorder {
	return &Recorder{store: store, now: now}
}

func (r *Recorder) AlarmRang(scheduled time.Time, source models.AlarmSource) {
	r.emit(TypeRang, map[string]any{
		"scheduled_time": scheduled.Format(time.RFC3339),
		"source":         string(source),
	})
}

func (r *Recorder) AlarmSnoozed(snoozeCount int, until time.Time) {
	r.emit(TypeSnoozed, map[string]any{
		"snooze_count": snoozeCount,
		"snooze_until": until.Format(time.RFC3339),
	})
}

func (r *Recorder) AlarmStopped(snoozeCount int, success bool) {
	r.emit(TypeStopped, map[string]any{
		"snooze_count": snoozeCount,
		"success":      success,
	})
}

func (r *Recorder) AlarmArmed(nextAlarmAt *time.Time) {
	payload := map[string]any{
		"armed_at": r.now().Format(time.RFC3339),
	}
	if nextAlarmAt != nil {
		payload["next_alarm_at"] = nextAlarmAt.Format(time.RFC3339)
	}
	r.emit(TypeArmed, payload)
}

func (r *Recorder) AlarmDisarmed() {
	r.emit(TypeDisarmed, map[string]any{
		"disarmed_at": r.now().Format(time.RFC3339),
	})
}

func (r *Recorder) SettingsUpdated(section string) {
	r.emit(TypeSettingsUpdated, map[string]any{
		"section": section,
	})
}

func (r *Recorder) emit(eventType string, payload map[string]any) {
	event := models.AlarmEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		OccurredAt: r.now(),
		Payload:    payload,
	}
	if err := r.store.AppendEvent(event); err != nil {
		logger.Warn("failed to record event", "type", eventType, "error", err)
	}
}
