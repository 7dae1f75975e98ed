package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/lucidlog/lucidlog/internal/sound"
	"github.com/lucidlog/lucidlog/internal/validation"
)

type SoundListCmd struct{}

func (c *SoundListCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	settings, err := ctx.Store.GetAlarmSettings()
	if err != nil {
		return err
	}

	fmt.Printf("Alarm sounds (volume %d):\n", settings.Volume)
	for _, s := range sound.Catalog() {
		mark := " "
		if s.ID == settings.SoundID {
			mark = "*"
		}
		fmt.Printf("  %s %-14s %s\n", mark, s.ID, s.Description)
	}
	return nil
}

type SoundSetCmd struct {
	ID     string `arg:"" help:"Sound id from 'sound list'."`
	Volume int    `help:"Playback volume 0-100." default:"-1"`
}

func (c *SoundSetCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	if _, ok := sound.Lookup(c.ID); !ok {
		return fmt.Errorf("unknown sound %q; see 'lucidlog sound list'", c.ID)
	}

	volume := c.Volume
	if volume < 0 {
		settings, err := ctx.Store.GetAlarmSettings()
		if err != nil {
			return err
		}
		volume = settings.Volume
	}
	if volume > 100 {
		return fmt.Errorf("volume %d is outside 0-100", volume)
	}

	if err := ctx.Store.UpdateSound(c.ID, volume); err != nil {
		return err
	}
	fmt.Printf("Alarm sound set to %s (volume %d)\n", c.ID, volume)
	return nil
}

type SoundPreviewCmd struct {
	ID     string `arg:"" optional:"" help:"Sound id to preview; defaults to the configured sound."`
	Assets string `help:"Directory containing the sounds/ asset tree." type:"path"`
}

func (c *SoundPreviewCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	settings, err := ctx.Store.GetAlarmSettings()
	if err != nil {
		return err
	}

	id := c.ID
	if id == "" {
		id = settings.SoundID
	}
	if _, ok := sound.Lookup(id); !ok {
		return fmt.Errorf("unknown sound %q; see 'lucidlog sound list'", id)
	}

	assetDir := c.Assets
	if assetDir == "" {
		assetDir = filepath.Dir(ctx.Store.ConfigPath())
	}

	player := sound.NewPlayer(assetDir)
	if err := player.Preview(id, settings.Volume); err != nil {
		return err
	}
	fmt.Printf("Previewing %s...\n", id)
	time.Sleep(5 * time.Second)
	player.Stop()
	return nil
}

type SnoozeCmd struct {
	Minutes int `arg:"" help:"Snooze length in minutes."`
	Max     int `arg:"" optional:"" default:"-1" help:"Maximum snoozes per alarm."`
}

func (c *SnoozeCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	settings, err := ctx.Store.GetAlarmSettings()
	if err != nil {
		return err
	}
	max := c.Max
	if max < 0 {
		max = settings.MaxSnoozes
	}

	settings.SnoozeMinutes = c.Minutes
	settings.MaxSnoozes = max
	if result := validation.New().ValidateSettings(settings); result.HasConflicts() {
		for _, conflict := range result.Conflicts {
			fmt.Printf("  ⚠ %s\n", conflict.Message)
		}
		return fmt.Errorf("invalid snooze settings")
	}

	if err := ctx.Store.UpdateSnooze(c.Minutes, max); err != nil {
		return err
	}
	fmt.Printf("Snooze set to %d minutes, max %d per alarm\n", c.Minutes, max)
	return nil
}
