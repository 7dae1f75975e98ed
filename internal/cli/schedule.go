package cli

import (
	"fmt"
	"time"

	"github.com/lucidlog/lucidlog/internal/recurrence"
	"github.com/lucidlog/lucidlog/internal/validation"
)

type ScheduleShowCmd struct{}

func (c *ScheduleShowCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	settings, err := ctx.Store.GetAlarmSettings()
	if err != nil {
		return err
	}

	fmt.Printf("Weekly schedule (%s):\n", recurrence.RepeatLabel(settings.Schedule))
	for _, rule := range settings.Schedule {
		mark := " "
		if rule.Enabled {
			mark = "x"
		}
		fmt.Printf("  [%s] %-9s %s\n", mark, time.Weekday(rule.DayOfWeek), rule.WakeTimeLocal)
	}
	return nil
}

type ScheduleSetCmd struct {
	Days string `arg:"" help:"Comma-separated weekdays (mon,tue,... or 0-6, or 'all')."`
	Time string `arg:"" help:"Wake time as HH:MM (24-hour)."`
	Off  bool   `help:"Disable the given days instead of enabling them."`
}

func (c *ScheduleSetCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	if !c.Off {
		if _, _, err := recurrence.ParseClock(c.Time); err != nil {
			return fmt.Errorf("invalid wake time %q: use HH:MM", c.Time)
		}
	}

	weekdays, err := ParseWeekdays(c.Days)
	if err != nil {
		return err
	}

	settings, err := ctx.Store.GetAlarmSettings()
	if err != nil {
		return err
	}

	schedule := settings.Schedule
	for _, weekday := range weekdays {
		for i := range schedule {
			if schedule[i].DayOfWeek != int(weekday) {
				continue
			}
			schedule[i].Enabled = !c.Off
			if !c.Off {
				schedule[i].WakeTimeLocal = c.Time
			}
		}
	}

	if result := validation.New().ValidateSchedule(schedule); result.HasConflicts() {
		for _, conflict := range result.Conflicts {
			fmt.Printf("  ⚠ %s\n", conflict.Message)
		}
		return fmt.Errorf("schedule has %d conflict(s)", len(result.Conflicts))
	}

	if err := ctx.Store.UpdateSchedule(schedule); err != nil {
		return err
	}

	fmt.Printf("Schedule updated (%s)\n", recurrence.RepeatLabel(schedule))
	if text, ok := nextAlarmText(ctx); ok {
		fmt.Printf("Next alarm: %s\n", text)
	}
	return nil
}
