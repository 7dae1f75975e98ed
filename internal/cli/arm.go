package cli

import (
	"fmt"
	"time"

	"github.com/lucidlog/lucidlog/internal/models"
	"github.com/lucidlog/lucidlog/internal/recurrence"
)

type ArmCmd struct{}

func (c *ArmCmd) Run(ctx *Context) error {
	return setArmed(ctx, true)
}

type DisarmCmd struct{}

func (c *DisarmCmd) Run(ctx *Context) error {
	return setArmed(ctx, false)
}

func setArmed(ctx *Context, armed bool) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	if err := ctx.Store.SetArmed(armed); err != nil {
		return err
	}

	if !armed {
		fmt.Println("Alarm disarmed")
		return nil
	}

	fmt.Println("Alarm armed")
	if text, ok := nextAlarmText(ctx); ok {
		fmt.Printf("Next alarm: %s\n", text)
	} else {
		fmt.Println("No wake time configured; enable a schedule day or set an override")
	}
	return nil
}

// nextAlarmText resolves and formats the next alarm for one-shot commands.
// The live trigger only runs inside the TUI; these commands just report.
func nextAlarmText(ctx *Context) (string, bool) {
	settings, err := ctx.Store.GetAlarmSettings()
	if err != nil {
		return "", false
	}
	override, err := ctx.Store.TonightOverride(ctx.Today())
	if err != nil {
		return "", false
	}

	now := time.Now().In(ctx.Location)
	next, ok := recurrence.NextAlarm(now, settings.Schedule, override, ctx.Location, settings.LastSetTime)
	if !ok {
		return "", false
	}
	text := recurrence.FormatAlarmTime(next.At, now, ctx.Location)
	if next.Source == models.SourceOverride {
		text += " (tonight's override)"
	}
	return text, true
}
