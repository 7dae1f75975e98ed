package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lucidlog/lucidlog/internal/alarm"
	"github.com/lucidlog/lucidlog/internal/events"
	"github.com/lucidlog/lucidlog/internal/lockfile"
	"github.com/lucidlog/lucidlog/internal/sound"
	"github.com/lucidlog/lucidlog/internal/trigger"
	"github.com/lucidlog/lucidlog/internal/tui"
)

type TuiCmd struct {
	Assets string `help:"Directory containing the sounds/ asset tree." type:"path"`
}

func (c *TuiCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	configDir := filepath.Dir(ctx.Store.ConfigPath())

	// Only one live instance may arm triggers and ring; a second one would
	// double-fire the same alarm.
	lock, err := lockfile.Acquire(filepath.Join(configDir, "lucidlog.lock"))
	if err != nil {
		if errors.Is(err, lockfile.ErrHeld) {
			return fmt.Errorf("lucidlog is already running: %w", err)
		}
		return err
	}
	defer lock.Release()

	assetDir := c.Assets
	if assetDir == "" {
		assetDir = configDir
	}

	player := sound.NewPlayer(assetDir)
	bridge := tui.NewBridge()

	controller := alarm.NewController(alarm.Options{
		Store:     ctx.Store,
		Scheduler: trigger.New(),
		Player:    player,
		Recorder:  events.NewRecorder(ctx.Store),
		Location:  ctx.Location,
		Navigate:  bridge.Navigate,
		Notify:    bridge.Notify,
	})
	if err := controller.Refresh(); err != nil {
		return err
	}
	defer controller.Close()

	p := tea.NewProgram(tui.NewModel(ctx.Store, controller, player, bridge), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Alas, there's been an error: %v", err)
		os.Exit(1)
	}
	return nil
}
