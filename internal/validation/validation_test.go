package validation

import (
	"testing"

	"github.com/lucidlog/lucidlog/internal/models"
	"github.com/lucidlog/lucidlog/internal/recurrence"
)

func validSettings() models.AlarmSettings {
	return models.AlarmSettings{
		Schedule:      recurrence.DefaultSchedule(),
		SoundID:       "gentle-rise",
		Volume:        80,
		SnoozeMinutes: 10,
		MaxSnoozes:    3,
	}
}

func countType(result ValidationResult, conflictType ConflictType) int {
	n := 0
	for _, conflict := range result.Conflicts {
		if conflict.Type == conflictType {
			n++
		}
	}
	return n
}

func TestValidateSettings_CleanSettingsPass(t *testing.T) {
	validator := New()
	if result := validator.ValidateSettings(validSettings()); result.HasConflicts() {
		t.Errorf("expected no conflicts, got %+v", result.Conflicts)
	}
}

func TestValidateSettings_RangeChecks(t *testing.T) {
	validator := New()

	cases := []struct {
		name   string
		mutate func(*models.AlarmSettings)
		want   ConflictType
	}{
		{"volume too high", func(s *models.AlarmSettings) { s.Volume = 150 }, ConflictVolumeRange},
		{"volume negative", func(s *models.AlarmSettings) { s.Volume = -1 }, ConflictVolumeRange},
		{"snooze minutes zero", func(s *models.AlarmSettings) { s.SnoozeMinutes = 0 }, ConflictSnoozeRange},
		{"snooze minutes too long", func(s *models.AlarmSettings) { s.SnoozeMinutes = 45 }, ConflictSnoozeRange},
		{"max snoozes negative", func(s *models.AlarmSettings) { s.MaxSnoozes = -1 }, ConflictSnoozeRange},
		{"max snoozes too high", func(s *models.AlarmSettings) { s.MaxSnoozes = 99 }, ConflictSnoozeRange},
		{"unknown sound", func(s *models.AlarmSettings) { s.SoundID = "airhorn" }, ConflictUnknownSound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			settings := validSettings()
			tc.mutate(&settings)
			result := validator.ValidateSettings(settings)
			if countType(result, tc.want) == 0 {
				t.Errorf("expected %s conflict, got %+v", tc.want, result.Conflicts)
			}
		})
	}
}

func TestValidateSchedule_Shape(t *testing.T) {
	validator := New()

	short := recurrence.DefaultSchedule()[:5]
	if countType(validator.ValidateSchedule(short), ConflictScheduleShape) == 0 {
		t.Error("expected schedule shape conflict for 5 rules")
	}

	duplicate := recurrence.DefaultSchedule()
	duplicate[2].DayOfWeek = 1
	if countType(validator.ValidateSchedule(duplicate), ConflictDuplicateDay) == 0 {
		t.Error("expected duplicate day conflict")
	}

	outOfRange := recurrence.DefaultSchedule()
	outOfRange[0].DayOfWeek = 9
	if countType(validator.ValidateSchedule(outOfRange), ConflictDayOutOfRange) == 0 {
		t.Error("expected day out of range conflict")
	}
}

func TestValidateSchedule_WakeTimes(t *testing.T) {
	validator := New()

	schedule := recurrence.DefaultSchedule()
	schedule[1].WakeTimeLocal = "25:00"
	schedule[2].WakeTimeLocal = "07:70"
	schedule[3].WakeTimeLocal = "not-a-time"
	result := validator.ValidateSchedule(schedule)
	if got := countType(result, ConflictInvalidTime); got != 3 {
		t.Errorf("expected 3 invalid time conflicts, got %d: %+v", got, result.Conflicts)
	}

	// Disabled rules may carry an empty or stale time without conflict.
	disabled := recurrence.DefaultSchedule()
	disabled[4].Enabled = false
	disabled[4].WakeTimeLocal = ""
	if result := validator.ValidateSchedule(disabled); result.HasConflicts() {
		t.Errorf("disabled rule should not require a valid time: %+v", result.Conflicts)
	}
}
