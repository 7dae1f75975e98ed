package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/lucidlog/lucidlog/internal/recurrence"
	"github.com/lucidlog/lucidlog/internal/validation"
)

func validateClock(s string) error {
	if _, _, err := recurrence.ParseClock(s); err != nil {
		return fmt.Errorf("invalid time format, use HH:MM")
	}
	return nil
}

// NewTimeForm edits the wake time of a single schedule day.
func NewTimeForm(fm *TimeFormModel, day string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(fmt.Sprintf("Wake time for %s (HH:MM)", day)).
				Value(&fm.Time).
				Validate(validateClock),
		),
	).WithTheme(huh.ThemeDracula())
}

// NewOverrideForm edits tonight's one-time wake override.
func NewOverrideForm(fm *OverrideFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Wake me tonight").
				Description("One-time override; back to the weekly schedule after").
				Value(&fm.Enabled),
			huh.NewInput().
				Title("Wake time (HH:MM)").
				Value(&fm.Time).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return nil
					}
					return validateClock(s)
				}),
		),
	).WithTheme(huh.ThemeDracula())
}

// NewVolumeForm edits the alarm volume.
func NewVolumeForm(fm *VolumeFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Volume (0-100)").
				Value(&fm.Volume).
				Validate(func(s string) error {
					i, err := strconv.Atoi(s)
					if err != nil {
						return err
					}
					if i < 0 || i > 100 {
						return fmt.Errorf("volume must be 0-100")
					}
					return nil
				}),
		),
	).WithTheme(huh.ThemeDracula())
}

// NewMorningForm is the capture prompt shown right after a ring is
// stopped, while dream recall is freshest.
func NewMorningForm(fm *MorningFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title("Good morning. What do you remember dreaming?").
				Description("Leave empty to skip").
				Value(&fm.Note),
		),
	).WithTheme(huh.ThemeDracula())
}

// NewSnoozeForm edits the snooze policy.
func NewSnoozeForm(fm *SnoozeFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Snooze minutes").
				Value(&fm.SnoozeMinutes).
				Validate(func(s string) error {
					i, err := strconv.Atoi(s)
					if err != nil {
						return err
					}
					if i < validation.MinSnoozeMinutes || i > validation.MaxSnoozeMinutes {
						return fmt.Errorf("snooze minutes must be %d-%d", validation.MinSnoozeMinutes, validation.MaxSnoozeMinutes)
					}
					return nil
				}),
			huh.NewInput().
				Title("Max snoozes").
				Value(&fm.MaxSnoozes).
				Validate(func(s string) error {
					i, err := strconv.Atoi(s)
					if err != nil {
						return err
					}
					if i < validation.MinMaxSnoozes || i > validation.MaxMaxSnoozes {
						return fmt.Errorf("max snoozes must be %d-%d", validation.MinMaxSnoozes, validation.MaxMaxSnoozes)
					}
					return nil
				}),
		),
	).WithTheme(huh.ThemeDracula())
}
