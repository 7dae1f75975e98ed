// Package validation checks alarm settings against the bounds the settings
// surface enforces, so corrupt or hand-edited stores are caught before the
// controller arms anything from them.
package validation

import (
	"fmt"

	"github.com/lucidlog/lucidlog/internal/models"
	"github.com/lucidlog/lucidlog/internal/recurrence"
	"github.com/lucidlog/lucidlog/internal/sound"
)

type ConflictType string

const (
	ConflictScheduleShape ConflictType = "schedule_shape"
	ConflictInvalidTime   ConflictType = "invalid_time"
	ConflictVolumeRange   ConflictType = "volume_range"
	ConflictSnoozeRange   ConflictType = "snooze_range"
	ConflictUnknownSound  ConflictType = "unknown_sound"
	ConflictDuplicateDay  ConflictType = "duplicate_day"
	ConflictDayOutOfRange ConflictType = "day_out_of_range"
)

// Snooze bounds, matching the settings form.
const (
	MinSnoozeMinutes = 1
	MaxSnoozeMinutes = 30
	MinMaxSnoozes    = 0
	MaxMaxSnoozes    = 10
)

type Conflict struct {
	Type    ConflictType
	Message string
}

type ValidationResult struct {
	Conflicts []Conflict
}

func (r ValidationResult) HasConflicts() bool {
	return len(r.Conflicts) > 0
}

type Validator struct{}

func New() *Validator {
	return &Validator{}
}

// ValidateSettings checks a full settings record. Unknown sound ids are
// reported but are non-fatal at runtime (the player no-ops on them).
func (v *Validator) ValidateSettings(settings models.AlarmSettings) ValidationResult {
	var result ValidationResult

	result.Conflicts = append(result.Conflicts, v.ValidateSchedule(settings.Schedule).Conflicts...)

	if settings.Volume < 0 || settings.Volume > 100 {
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:    ConflictVolumeRange,
			Message: fmt.Sprintf("volume %d is outside 0-100", settings.Volume),
		})
	}
	if settings.SnoozeMinutes < MinSnoozeMinutes || settings.SnoozeMinutes > MaxSnoozeMinutes {
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:    ConflictSnoozeRange,
			Message: fmt.Sprintf("snooze minutes %d is outside %d-%d", settings.SnoozeMinutes, MinSnoozeMinutes, MaxSnoozeMinutes),
		})
	}
	if settings.MaxSnoozes < MinMaxSnoozes || settings.MaxSnoozes > MaxMaxSnoozes {
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:    ConflictSnoozeRange,
			Message: fmt.Sprintf("max snoozes %d is outside %d-%d", settings.MaxSnoozes, MinMaxSnoozes, MaxMaxSnoozes),
		})
	}
	if _, ok := sound.Lookup(settings.SoundID); !ok {
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:    ConflictUnknownSound,
			Message: fmt.Sprintf("sound %q is not in the catalog", settings.SoundID),
		})
	}

	return result
}

// ValidateSchedule checks the weekly schedule shape: exactly one rule per
// day 0..6, and a valid HH:MM wake time on every enabled rule.
func (v *Validator) ValidateSchedule(schedule []models.ScheduleRule) ValidationResult {
	var result ValidationResult

	if len(schedule) != 7 {
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:    ConflictScheduleShape,
			Message: fmt.Sprintf("schedule has %d rules, want 7", len(schedule)),
		})
	}

	seen := make(map[int]bool)
	for _, rule := range schedule {
		if rule.DayOfWeek < 0 || rule.DayOfWeek > 6 {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:    ConflictDayOutOfRange,
				Message: fmt.Sprintf("day of week %d is outside 0-6", rule.DayOfWeek),
			})
			continue
		}
		if seen[rule.DayOfWeek] {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:    ConflictDuplicateDay,
				Message: fmt.Sprintf("duplicate rule for day %d", rule.DayOfWeek),
			})
		}
		seen[rule.DayOfWeek] = true

		if rule.Enabled {
			if _, _, err := recurrence.ParseClock(rule.WakeTimeLocal); err != nil {
				result.Conflicts = append(result.Conflicts, Conflict{
					Type:    ConflictInvalidTime,
					Message: fmt.Sprintf("day %d has invalid wake time %q", rule.DayOfWeek, rule.WakeTimeLocal),
				})
			}
		}
	}

	return result
}
