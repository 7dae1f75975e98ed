package cli

import (
	"fmt"
	"time"

	"github.com/lucidlog/lucidlog/internal/models"
	"github.com/lucidlog/lucidlog/internal/recurrence"
)

type OverrideSetCmd struct {
	Time string `arg:"" help:"One-time wake time as HH:MM, applied tonight only."`
}

func (c *OverrideSetCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	hour, minute, err := recurrence.ParseClock(c.Time)
	if err != nil {
		return fmt.Errorf("invalid wake time %q: use HH:MM", c.Time)
	}

	// Tonight means the next occurrence of HH:MM: later today if still
	// ahead, otherwise tomorrow morning.
	now := time.Now().In(ctx.Location)
	wake := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, ctx.Location)
	if !wake.After(now) {
		wake = wake.AddDate(0, 0, 1)
	}

	override := models.TonightOverride{
		Enabled:  true,
		WakeTime: wake,
		Date:     ctx.Today(),
	}
	if err := ctx.Store.SetTonightOverride(override); err != nil {
		return err
	}

	fmt.Printf("Tonight's wake time set to %s\n", recurrence.FormatAlarmTime(wake, now, ctx.Location))
	fmt.Println("Back to the weekly schedule after this alarm.")
	return nil
}

type OverrideClearCmd struct{}

func (c *OverrideClearCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	if err := ctx.Store.ClearTonightOverride(ctx.Today()); err != nil {
		return err
	}
	fmt.Println("Tonight's override cleared")
	if text, ok := nextAlarmText(ctx); ok {
		fmt.Printf("Next alarm: %s\n", text)
	}
	return nil
}

type OverrideShowCmd struct{}

func (c *OverrideShowCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	override, err := ctx.Store.TonightOverride(ctx.Today())
	if err != nil {
		return err
	}
	if override == nil || !override.Enabled {
		fmt.Println("No override set for tonight")
		return nil
	}

	now := time.Now().In(ctx.Location)
	fmt.Printf("Tonight: %s\n", recurrence.FormatAlarmTime(override.WakeTime, now, ctx.Location))
	if !override.WakeTime.After(now) {
		fmt.Println("(already passed)")
	}
	return nil
}
