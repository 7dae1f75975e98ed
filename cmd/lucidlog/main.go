package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/kong"

	"github.com/lucidlog/lucidlog/internal/cli"
	"github.com/lucidlog/lucidlog/internal/logger"
	"github.com/lucidlog/lucidlog/internal/storage"
)

var CLI struct {
	Version  kong.VersionFlag
	Config   string `help:"Store path. A .json extension selects the JSON backend; anything else is SQLite." type:"path" default:"~/.config/lucidlog/lucidlog.db"`
	Timezone string `help:"IANA timezone for wake times; defaults to the system local zone."`
	Debug    bool   `help:"Verbose logging to stderr."`

	Init   cli.InitCmd   `cmd:"" help:"Initialize lucidlog storage."`
	Tui    cli.TuiCmd    `cmd:"" help:"Launch the interactive alarm TUI." default:"1"`
	Arm    cli.ArmCmd    `cmd:"" help:"Arm the wake alarm."`
	Disarm cli.DisarmCmd `cmd:"" help:"Disarm the wake alarm."`
	Next   cli.NextCmd   `cmd:"" help:"Show the next resolved wake time."`
	Status cli.StatusCmd `cmd:"" help:"Show alarm settings and lifecycle state."`
	Snooze cli.SnoozeCmd `cmd:"" help:"Configure snooze length and limit."`
	Doctor cli.DoctorCmd `cmd:"" help:"Run health checks and diagnostics."`
	Schedule struct {
		Show cli.ScheduleShowCmd `cmd:"" help:"Show the weekly wake schedule." default:"1"`
		Set  cli.ScheduleSetCmd  `cmd:"" help:"Enable days at a wake time, or disable them with --off."`
	} `cmd:"" help:"Manage the weekly wake schedule."`
	Override struct {
		Show  cli.OverrideShowCmd  `cmd:"" help:"Show tonight's override." default:"1"`
		Set   cli.OverrideSetCmd   `cmd:"" help:"Set a one-time wake time for tonight."`
		Clear cli.OverrideClearCmd `cmd:"" help:"Clear tonight's override."`
	} `cmd:"" help:"Manage tonight's one-time wake override."`
	Sound struct {
		List    cli.SoundListCmd    `cmd:"" help:"List available alarm sounds." default:"1"`
		Set     cli.SoundSetCmd     `cmd:"" help:"Choose the alarm sound and volume."`
		Preview cli.SoundPreviewCmd `cmd:"" help:"Play a five-second sample."`
	} `cmd:"" help:"Manage the alarm sound."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("lucidlog"),
		kong.Description("Dream journal wake alarm"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": "v0.2.0"},
	)

	if err := logger.Init(logger.Config{
		Debug:     CLI.Debug,
		ConfigDir: filepath.Dir(CLI.Config),
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging unavailable: %v\n", err)
	}

	loc := time.Local
	if CLI.Timezone != "" {
		parsed, err := time.LoadLocation(CLI.Timezone)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: unknown timezone %q\n", CLI.Timezone)
			os.Exit(1)
		}
		loc = parsed
	}

	var store storage.Provider
	if strings.HasSuffix(CLI.Config, ".json") {
		store = storage.NewJSONStore(CLI.Config)
	} else {
		store = storage.NewSQLiteStore(CLI.Config)
	}
	defer store.Close()

	appCtx := &cli.Context{
		Store:    store,
		Location: loc,
		Debug:    CLI.Debug,
	}

	if err := ctx.Run(appCtx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
