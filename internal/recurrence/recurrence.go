package recurrence

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lucidlog/lucidlog/internal/models"
)

// lookaheadDays bounds the forward scan. Two full weeks guarantees a hit
// for any enabled day-of-week rule.
const lookaheadDays = 14

// Next is a resolved upcoming alarm.
type Next struct {
	At     time.Time
	Source models.AlarmSource
}

// NextAlarm computes the next moment the alarm must fire.
//
// Resolution order:
//  1. An enabled tonight override still in the future wins outright.
//  2. With no enabled schedule rule, a non-empty fallbackTime ("HH:MM")
//     yields tomorrow at that time.
//  3. With no enabled rule and no fallback there is no alarm.
//  4. Otherwise the schedule is scanned day by day for up to two weeks and
//     the first rule time strictly after now is returned. A time exactly
//     equal to now is never selected, so re-arming at the fire instant
//     cannot ring immediately again.
func NextAlarm(now time.Time, schedule []models.ScheduleRule, override *models.TonightOverride, loc *time.Location, fallbackTime string) (Next, bool) {
	if loc == nil {
		loc = time.Local
	}

	if override != nil && override.Enabled && override.WakeTime.After(now) {
		return Next{At: override.WakeTime, Source: models.SourceOverride}, true
	}

	var enabled []models.ScheduleRule
	for _, rule := range schedule {
		if rule.Enabled {
			enabled = append(enabled, rule)
		}
	}

	if len(enabled) == 0 {
		if fallbackTime == "" {
			return Next{}, false
		}
		hour, minute, err := ParseClock(fallbackTime)
		if err != nil {
			return Next{}, false
		}
		base := now.In(loc)
		tomorrow := time.Date(base.Year(), base.Month(), base.Day()+1, hour, minute, 0, 0, loc)
		return Next{At: tomorrow, Source: models.SourceSchedule}, true
	}

	base := now.In(loc)
	for daysAhead := 0; daysAhead < lookaheadDays; daysAhead++ {
		day := time.Date(base.Year(), base.Month(), base.Day()+daysAhead, 0, 0, 0, 0, loc)
		rule, ok := ruleForDay(enabled, day.Weekday())
		if !ok {
			continue
		}
		hour, minute, err := ParseClock(rule.WakeTimeLocal)
		if err != nil {
			continue
		}
		at := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, loc)
		if at.After(now) {
			return Next{At: at, Source: models.SourceSchedule}, true
		}
	}

	return Next{}, false
}

// ruleForDay returns the first enabled rule matching the weekday. Duplicate
// rules for a day are not expected; if present the first match wins.
func ruleForDay(rules []models.ScheduleRule, weekday time.Weekday) (models.ScheduleRule, bool) {
	for _, rule := range rules {
		if rule.DayOfWeek == int(weekday) {
			return rule, true
		}
	}
	return models.ScheduleRule{}, false
}

// ParseClock parses a 24-hour "HH:MM" string.
func ParseClock(clock string) (hour, minute int, err error) {
	parts := strings.Split(clock, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time format: %q", clock)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", clock)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", clock)
	}
	return hour, minute, nil
}

// DefaultSchedule returns the out-of-the-box weekly schedule: every day
// enabled at 07:00.
func DefaultSchedule() []models.ScheduleRule {
	schedule := make([]models.ScheduleRule, 7)
	for day := 0; day < 7; day++ {
		schedule[day] = models.ScheduleRule{
			DayOfWeek:     day,
			Enabled:       true,
			WakeTimeLocal: "07:00",
		}
	}
	return schedule
}

var dayNamesPlural = [7]string{"Sundays", "Mondays", "Tuesdays", "Wednesdays", "Thursdays", "Fridays", "Saturdays"}

// RepeatLabel summarizes which days the schedule repeats on. It returns the
// variable part only, meant to be prefixed with "Repeats" by the caller:
// "never", "everyday", "weekdays", "weekends", a plural day name, or
// "every:" for custom selections.
func RepeatLabel(schedule []models.ScheduleRule) string {
	enabled := make(map[int]bool)
	for _, rule := range schedule {
		if rule.Enabled {
			enabled[rule.DayOfWeek] = true
		}
	}

	switch len(enabled) {
	case 0:
		return "never"
	case 7:
		return "everyday"
	case 1:
		for day := range enabled {
			if day >= 0 && day < 7 {
				return dayNamesPlural[day]
			}
		}
	case 5:
		if enabled[1] && enabled[2] && enabled[3] && enabled[4] && enabled[5] {
			return "weekdays"
		}
	case 2:
		if enabled[0] && enabled[6] {
			return "weekends"
		}
	}
	return "every:"
}
