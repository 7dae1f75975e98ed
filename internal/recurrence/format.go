package recurrence

import "time"

// DayTime is an alarm time split into its display parts.
type DayTime struct {
	Day  string
	Time string
}

// FormatAlarmTime renders an alarm time as "Today at 7:30 AM",
// "Tomorrow at 7:30 AM", or "Mon at 7:30 AM". Calendar-day comparison uses
// the supplied location so the label matches the user's timezone.
func FormatAlarmTime(at, now time.Time, loc *time.Location) string {
	split := FormatAlarmTimeSplit(at, now, loc)
	return split.Day + " at " + split.Time
}

// FormatAlarmTimeSplit is FormatAlarmTime with the day label and clock time
// returned separately, for surfaces that render them apart.
func FormatAlarmTimeSplit(at, now time.Time, loc *time.Location) DayTime {
	if loc == nil {
		loc = time.Local
	}

	local := at.In(loc)
	today := startOfDay(now.In(loc))
	alarmDay := startOfDay(local)

	var day string
	switch {
	case alarmDay.Equal(today):
		day = "Today"
	case alarmDay.Equal(today.AddDate(0, 0, 1)):
		day = "Tomorrow"
	default:
		day = local.Format("Mon")
	}

	return DayTime{Day: day, Time: local.Format("3:04 PM")}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
