package cli

import (
	"fmt"
	"time"

	"github.com/lucidlog/lucidlog/internal/alarm"
	"github.com/lucidlog/lucidlog/internal/recurrence"
)

type StatusCmd struct {
	Events int `help:"Show the N most recent alarm events." default:"0"`
}

func (c *StatusCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	settings, err := ctx.Store.GetAlarmSettings()
	if err != nil {
		return err
	}

	if settings.IsArmed {
		fmt.Println("Alarm: armed")
	} else {
		fmt.Println("Alarm: off")
	}
	fmt.Printf("Schedule: %s\n", recurrence.RepeatLabel(settings.Schedule))
	fmt.Printf("Sound: %s at volume %d\n", settings.SoundID, settings.Volume)
	fmt.Printf("Snooze: %d min, max %d per alarm\n", settings.SnoozeMinutes, settings.MaxSnoozes)

	if text, ok := nextAlarmText(ctx); ok {
		fmt.Printf("Next alarm: %s\n", text)
	} else {
		fmt.Println("Next alarm: none")
	}

	now := time.Now().In(ctx.Location)
	if state, err := ctx.Store.AlarmState(); err == nil && state != nil {
		derived := alarm.DeriveState(*state, settings.IsArmed, now)
		fmt.Printf("Lifecycle: %s\n", derived)
		if until := state.SnoozeUntil; until != nil && until.After(now) {
			fmt.Printf("Snoozed until %s (%d of %d used)\n",
				until.In(ctx.Location).Format("3:04 PM"), state.SnoozeCount, settings.MaxSnoozes)
		}
	}

	if c.Events > 0 {
		events, err := ctx.Store.Events(c.Events)
		if err != nil {
			return err
		}
		if len(events) > 0 {
			fmt.Println("\nRecent events:")
			for _, event := range events {
				fmt.Printf("  %s  %s\n", event.OccurredAt.In(ctx.Location).Format("Jan 2 3:04 PM"), event.Type)
			}
		}
	}
	return nil
}
