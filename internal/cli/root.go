// Package cli implements the command surface: one-shot commands for
// scripting (arm, schedule, override, next, status) and the tui command
// that runs the live alarm loop.
package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lucidlog/lucidlog/internal/storage"
)

type Context struct {
	Store    storage.Provider
	Location *time.Location
	Debug    bool
}

// Today returns the current calendar date in the configured location,
// which keys tonight's override.
func (c *Context) Today() string {
	return time.Now().In(c.Location).Format("2006-01-02")
}

// ParseWeekdays parses a comma-separated list of weekdays. Names (mon,
// monday) and numbers (0=Sunday, 6=Saturday) are both accepted.
func ParseWeekdays(s string) ([]time.Weekday, error) {
	parts := strings.Split(s, ",")
	var weekdays []time.Weekday

	dayMap := map[string]time.Weekday{
		"sun":       time.Sunday,
		"sunday":    time.Sunday,
		"mon":       time.Monday,
		"monday":    time.Monday,
		"tue":       time.Tuesday,
		"tuesday":   time.Tuesday,
		"wed":       time.Wednesday,
		"wednesday": time.Wednesday,
		"thu":       time.Thursday,
		"thursday":  time.Thursday,
		"fri":       time.Friday,
		"friday":    time.Friday,
		"sat":       time.Saturday,
		"saturday":  time.Saturday,
	}

	for _, part := range parts {
		part = strings.TrimSpace(strings.ToLower(part))
		if part == "all" {
			for d := time.Sunday; d <= time.Saturday; d++ {
				weekdays = append(weekdays, d)
			}
			continue
		}
		if wd, ok := dayMap[part]; ok {
			weekdays = append(weekdays, wd)
			continue
		}
		num, err := strconv.Atoi(part)
		if err == nil && num >= 0 && num <= 6 {
			weekdays = append(weekdays, time.Weekday(num))
		} else {
			return nil, fmt.Errorf("invalid weekday: %s", part)
		}
	}

	return weekdays, nil
}
