package recurrence

import (
	"testing"
	"time"

	"github.com/lucidlog/lucidlog/internal/models"
)

func mustLoc(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Fatalf("LoadLocation(%s) failed: %v", name, err)
	}
	return loc
}

func scheduleWith(days map[int]string) []models.ScheduleRule {
	schedule := make([]models.ScheduleRule, 7)
	for day := 0; day < 7; day++ {
		schedule[day] = models.ScheduleRule{DayOfWeek: day}
		if clock, ok := days[day]; ok {
			schedule[day].Enabled = true
			schedule[day].WakeTimeLocal = clock
		}
	}
	return schedule
}

func TestNextAlarm_NoRulesNoOverrideNoFallback(t *testing.T) {
	now := time.Date(2026, 1, 7, 8, 0, 0, 0, time.UTC) // Wednesday
	_, ok := NextAlarm(now, scheduleWith(nil), nil, time.UTC, "")
	if ok {
		t.Fatal("expected no alarm when nothing is configured")
	}
}

func TestNextAlarm_AlwaysStrictlyFuture(t *testing.T) {
	// Now is exactly Wednesday 07:00 with Wednesday 07:00 enabled; the rule
	// equal to now must be skipped in favor of next Wednesday.
	now := time.Date(2026, 1, 7, 7, 0, 0, 0, time.UTC) // Wednesday
	next, ok := NextAlarm(now, scheduleWith(map[int]string{3: "07:00"}), nil, time.UTC, "")
	if !ok {
		t.Fatal("expected an alarm")
	}
	if !next.At.After(now) {
		t.Errorf("next alarm %v is not strictly after now %v", next.At, now)
	}
	want := time.Date(2026, 1, 14, 7, 0, 0, 0, time.UTC)
	if !next.At.Equal(want) {
		t.Errorf("expected next Wednesday %v, got %v", want, next.At)
	}
}

func TestNextAlarm_FutureOverrideWins(t *testing.T) {
	now := time.Date(2026, 1, 7, 22, 0, 0, 0, time.UTC)
	wake := time.Date(2026, 1, 8, 5, 30, 0, 0, time.UTC)
	override := &models.TonightOverride{Enabled: true, WakeTime: wake, Date: "2026-01-07"}

	// Schedule would fire at 07:00, later than the override.
	next, ok := NextAlarm(now, scheduleWith(map[int]string{4: "07:00"}), override, time.UTC, "")
	if !ok {
		t.Fatal("expected an alarm")
	}
	if !next.At.Equal(wake) {
		t.Errorf("expected override time %v, got %v", wake, next.At)
	}
	if next.Source != models.SourceOverride {
		t.Errorf("expected source override, got %q", next.Source)
	}
}

func TestNextAlarm_ExpiredOverrideFallsBackToSchedule(t *testing.T) {
	now := time.Date(2026, 1, 8, 6, 0, 0, 0, time.UTC) // Thursday
	past := now.Add(-30 * time.Minute)
	override := &models.TonightOverride{Enabled: true, WakeTime: past, Date: "2026-01-08"}

	next, ok := NextAlarm(now, scheduleWith(map[int]string{4: "07:00"}), override, time.UTC, "")
	if !ok {
		t.Fatal("expected an alarm")
	}
	want := time.Date(2026, 1, 8, 7, 0, 0, 0, time.UTC)
	if !next.At.Equal(want) {
		t.Errorf("expected schedule time %v, got %v", want, next.At)
	}
	if next.Source != models.SourceSchedule {
		t.Errorf("expected source schedule, got %q", next.Source)
	}
}

func TestNextAlarm_DisabledOverrideIgnored(t *testing.T) {
	now := time.Date(2026, 1, 7, 8, 0, 0, 0, time.UTC)
	override := &models.TonightOverride{Enabled: false, WakeTime: now.Add(time.Hour)}

	next, ok := NextAlarm(now, scheduleWith(map[int]string{5: "07:00"}), override, time.UTC, "")
	if !ok {
		t.Fatal("expected an alarm")
	}
	if next.Source != models.SourceSchedule {
		t.Errorf("expected schedule to drive a disabled override, got %q", next.Source)
	}
}

func TestNextAlarm_SingleFridayRule(t *testing.T) {
	// Wednesday 08:00 with only Friday 07:00 enabled must hit the upcoming
	// Friday, not one a week later.
	now := time.Date(2026, 1, 7, 8, 0, 0, 0, time.UTC) // Wednesday
	next, ok := NextAlarm(now, scheduleWith(map[int]string{5: "07:00"}), nil, time.UTC, "")
	if !ok {
		t.Fatal("expected an alarm")
	}
	want := time.Date(2026, 1, 9, 7, 0, 0, 0, time.UTC) // Friday
	if !next.At.Equal(want) {
		t.Errorf("expected upcoming Friday %v, got %v", want, next.At)
	}
}

func TestNextAlarm_EmptyScheduleUsesFallback(t *testing.T) {
	now := time.Date(2026, 1, 7, 22, 30, 0, 0, time.UTC)
	next, ok := NextAlarm(now, scheduleWith(nil), nil, time.UTC, "07:00")
	if !ok {
		t.Fatal("expected fallback alarm")
	}
	want := time.Date(2026, 1, 8, 7, 0, 0, 0, time.UTC)
	if !next.At.Equal(want) {
		t.Errorf("expected tomorrow 07:00 %v, got %v", want, next.At)
	}
}

func TestNextAlarm_WeekdayScheduleSkipsWeekend(t *testing.T) {
	weekdays := scheduleWith(map[int]string{1: "07:00", 2: "07:00", 3: "07:00", 4: "07:00", 5: "07:00"})
	now := time.Date(2026, 1, 10, 10, 0, 0, 0, time.UTC) // Saturday

	next, ok := NextAlarm(now, weekdays, nil, time.UTC, "")
	if !ok {
		t.Fatal("expected an alarm")
	}
	want := time.Date(2026, 1, 12, 7, 0, 0, 0, time.UTC) // Monday
	if !next.At.Equal(want) {
		t.Errorf("expected Monday 07:00 %v, got %v", want, next.At)
	}
}

func TestNextAlarm_SameDayLaterTime(t *testing.T) {
	now := time.Date(2026, 1, 7, 6, 0, 0, 0, time.UTC) // Wednesday, before 07:00
	next, ok := NextAlarm(now, scheduleWith(map[int]string{3: "07:00"}), nil, time.UTC, "")
	if !ok {
		t.Fatal("expected an alarm")
	}
	want := time.Date(2026, 1, 7, 7, 0, 0, 0, time.UTC)
	if !next.At.Equal(want) {
		t.Errorf("expected today 07:00 %v, got %v", want, next.At)
	}
}

func TestNextAlarm_HonorsTimezone(t *testing.T) {
	ny := mustLoc(t, "America/New_York")
	// 01:00 UTC on Jan 8 is still Jan 7 evening in New York; the Wednesday
	// rule already passed there, so Thursday must be selected.
	now := time.Date(2026, 1, 8, 1, 0, 0, 0, time.UTC)
	next, ok := NextAlarm(now, scheduleWith(map[int]string{3: "07:00", 4: "07:00"}), nil, ny, "")
	if !ok {
		t.Fatal("expected an alarm")
	}
	want := time.Date(2026, 1, 8, 7, 0, 0, 0, ny) // Thursday morning NY
	if !next.At.Equal(want) {
		t.Errorf("expected %v, got %v", want, next.At)
	}
}

func TestNextAlarm_InvalidFallbackYieldsNoAlarm(t *testing.T) {
	now := time.Date(2026, 1, 7, 8, 0, 0, 0, time.UTC)
	if _, ok := NextAlarm(now, scheduleWith(nil), nil, time.UTC, "7am"); ok {
		t.Error("expected malformed fallback to yield no alarm")
	}
}

func TestRepeatLabel(t *testing.T) {
	cases := []struct {
		name string
		days map[int]string
		want string
	}{
		{"none", nil, "never"},
		{"all", map[int]string{0: "07:00", 1: "07:00", 2: "07:00", 3: "07:00", 4: "07:00", 5: "07:00", 6: "07:00"}, "everyday"},
		{"weekdays", map[int]string{1: "07:00", 2: "07:00", 3: "07:00", 4: "07:00", 5: "07:00"}, "weekdays"},
		{"weekends", map[int]string{0: "08:00", 6: "08:00"}, "weekends"},
		{"single", map[int]string{1: "07:00"}, "Mondays"},
		{"custom", map[int]string{1: "07:00", 3: "07:00"}, "every:"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := RepeatLabel(scheduleWith(tc.days)); got != tc.want {
				t.Errorf("RepeatLabel = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestDefaultSchedule(t *testing.T) {
	schedule := DefaultSchedule()
	if len(schedule) != 7 {
		t.Fatalf("expected 7 rules, got %d", len(schedule))
	}
	for day, rule := range schedule {
		if rule.DayOfWeek != day {
			t.Errorf("rule %d has day_of_week %d", day, rule.DayOfWeek)
		}
		if !rule.Enabled || rule.WakeTimeLocal != "07:00" {
			t.Errorf("rule %d: expected enabled 07:00, got %+v", day, rule)
		}
	}
}
