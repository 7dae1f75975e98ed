package tui

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/google/uuid"

	"github.com/lucidlog/lucidlog/internal/alarm"
	"github.com/lucidlog/lucidlog/internal/models"
	"github.com/lucidlog/lucidlog/internal/recurrence"
	"github.com/lucidlog/lucidlog/internal/sound"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		m.snapshot = m.controller.Snapshot()
		m = m.reconcileRing()
		return m, tick()

	case noticeMsg:
		m.statusLine = msg.Message
		m.statusWarning = msg.Warning
		return m, m.waitForNotice()

	case handoffMsg:
		ctx := models.AlarmContext(msg)
		m.handoff = &ctx
		m.morningForm = &MorningFormModel{}
		m.form = NewMorningForm(m.morningForm)
		m.state = StateMorning
		m.snapshot = m.controller.Snapshot()
		return m, tea.Batch(m.form.Init(), m.waitForHandoff())
	}

	switch m.state {
	case StateRinging:
		return m.updateRinging(msg)
	case StateMorning:
		return m.updateMorning(msg)
	case StateEditTime, StateEditOverride, StateEditVolume, StateEditSnooze:
		return m.updateForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		return m.updateTabs(msg)
	}
	return m, nil
}

// reconcileRing forces the ring overlay on whenever the controller reports
// a live ring, whatever screen the user was on.
func (m Model) reconcileRing() Model {
	ringing := m.snapshot.State == alarm.StateRinging
	if ringing && m.state != StateRinging {
		m.previousState = m.state
		if m.previousState >= tabCount {
			m.previousState = StateStatus
		}
		m.state = StateRinging
	}
	if !ringing && m.state == StateRinging {
		m.state = m.previousState
	}
	return m
}

func (m Model) updateRinging(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Enter):
		m.controller.Stop()
		m.snapshot = m.controller.Snapshot()
		// The handoff message moves us to the morning screen.
		return m, nil
	case key.Matches(keyMsg, m.keys.Snooze):
		m.controller.Snooze()
		m.snapshot = m.controller.Snapshot()
		m = m.reconcileRing()
		return m, nil
	}
	return m, nil
}

func (m Model) updateMorning(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		if note := strings.TrimSpace(m.morningForm.Note); note != "" && m.handoff != nil {
			event := models.AlarmEvent{
				ID:         uuid.New().String(),
				Type:       "journal.morning",
				OccurredAt: time.Now(),
				Payload: map[string]any{
					"alarm_id":     m.handoff.AlarmID,
					"note":         note,
					"snooze_count": m.handoff.SnoozeCount,
				},
			}
			if err := m.store.AppendEvent(event); err != nil {
				m.statusLine = "Failed to save morning note"
				m.statusWarning = true
			}
		}
		m.handoff = nil
		m.state = StateStatus
		// Re-arm for the next scheduled morning.
		if err := m.controller.Refresh(); err != nil {
			m.statusLine = "Failed to recompute next alarm"
			m.statusWarning = true
		}
		m.snapshot = m.controller.Snapshot()
	case huh.StateAborted:
		m.handoff = nil
		m.state = StateStatus
		if err := m.controller.Refresh(); err == nil {
			m.snapshot = m.controller.Snapshot()
		}
	}
	return m, cmd
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = m.previousState
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.formError = ""
		if err := m.applyForm(); err != nil {
			m.formError = err.Error()
		}
		m.snapshot = m.controller.Snapshot()
		m.state = m.previousState
	case huh.StateAborted:
		m.state = m.previousState
	}
	return m, cmd
}

func (m *Model) applyForm() error {
	switch m.state {
	case StateEditTime:
		schedule := append([]models.ScheduleRule(nil), m.snapshot.Settings.Schedule...)
		if m.scheduleCursor < len(schedule) {
			schedule[m.scheduleCursor].WakeTimeLocal = m.timeForm.Time
			schedule[m.scheduleCursor].Enabled = true
		}
		return m.controller.UpdateSchedule(schedule)

	case StateEditOverride:
		today := time.Now().Format("2006-01-02")
		if !m.overrideForm.Enabled {
			return m.controller.ClearTonightOverride(today)
		}
		wake, err := nextOccurrence(m.overrideForm.Time, time.Now())
		if err != nil {
			return err
		}
		return m.controller.SetTonightOverride(models.TonightOverride{
			Enabled:  true,
			WakeTime: wake,
			Date:     today,
		})

	case StateEditVolume:
		volume, err := strconv.Atoi(m.volumeForm.Volume)
		if err != nil {
			return err
		}
		return m.controller.UpdateSound(m.snapshot.Settings.SoundID, volume)

	case StateEditSnooze:
		minutes, err := strconv.Atoi(m.snoozeForm.SnoozeMinutes)
		if err != nil {
			return err
		}
		max, err := strconv.Atoi(m.snoozeForm.MaxSnoozes)
		if err != nil {
			return err
		}
		return m.controller.UpdateSnooze(minutes, max)
	}
	return nil
}

// nextOccurrence resolves HH:MM to its next occurrence after now: tonight
// if the time has not passed yet, otherwise tomorrow morning.
func nextOccurrence(clock string, now time.Time) (time.Time, error) {
	hour, minute, err := recurrence.ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	candidate := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !candidate.After(now) {
		candidate = candidate.AddDate(0, 0, 1)
	}
	return candidate, nil
}

func (m Model) updateTabs(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.Tab):
		m.state = (m.state + 1) % tabCount
		return m, nil

	case key.Matches(msg, m.keys.ShiftTab):
		m.state = (m.state + tabCount - 1) % tabCount
		return m, nil

	case key.Matches(msg, m.keys.Arm):
		if err := m.controller.SetArmed(!m.snapshot.Settings.IsArmed); err != nil {
			m.statusLine = "Failed to update alarm: " + err.Error()
			m.statusWarning = true
		}
		m.snapshot = m.controller.Snapshot()
		return m, nil

	case key.Matches(msg, m.keys.Override):
		m.previousState = m.state
		m.overrideForm = &OverrideFormModel{Time: m.snapshot.Settings.LastSetTime}
		if override := m.currentOverride(); override != nil && override.Enabled {
			m.overrideForm.Enabled = true
			m.overrideForm.Time = override.WakeTime.Format("15:04")
		}
		m.form = NewOverrideForm(m.overrideForm)
		m.state = StateEditOverride
		return m, m.form.Init()
	}

	switch m.state {
	case StateSchedule:
		return m.updateSchedule(msg)
	case StateSound:
		return m.updateSound(msg)
	case StateSettings:
		if key.Matches(msg, m.keys.Edit) {
			m.previousState = m.state
			m.snoozeForm = &SnoozeFormModel{
				SnoozeMinutes: strconv.Itoa(m.snapshot.Settings.SnoozeMinutes),
				MaxSnoozes:    strconv.Itoa(m.snapshot.Settings.MaxSnoozes),
			}
			m.form = NewSnoozeForm(m.snoozeForm)
			m.state = StateEditSnooze
			return m, m.form.Init()
		}
	}
	return m, nil
}

func (m Model) updateSchedule(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.scheduleCursor > 0 {
			m.scheduleCursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.scheduleCursor < len(m.snapshot.Settings.Schedule)-1 {
			m.scheduleCursor++
		}
	case key.Matches(msg, m.keys.Enter):
		schedule := append([]models.ScheduleRule(nil), m.snapshot.Settings.Schedule...)
		if m.scheduleCursor < len(schedule) {
			schedule[m.scheduleCursor].Enabled = !schedule[m.scheduleCursor].Enabled
			if err := m.controller.UpdateSchedule(schedule); err != nil {
				m.statusLine = "Failed to update schedule: " + err.Error()
				m.statusWarning = true
			}
			m.snapshot = m.controller.Snapshot()
		}
	case key.Matches(msg, m.keys.Edit):
		if m.scheduleCursor < len(m.snapshot.Settings.Schedule) {
			rule := m.snapshot.Settings.Schedule[m.scheduleCursor]
			m.previousState = m.state
			m.timeForm = &TimeFormModel{Time: rule.WakeTimeLocal}
			m.form = NewTimeForm(m.timeForm, dayName(rule.DayOfWeek))
			m.state = StateEditTime
			return m, m.form.Init()
		}
	}
	return m, nil
}

func (m Model) updateSound(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	catalog := sound.Catalog()

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.soundCursor > 0 {
			m.soundCursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.soundCursor < len(catalog)-1 {
			m.soundCursor++
		}
	case key.Matches(msg, m.keys.Enter):
		if m.soundCursor < len(catalog) {
			if err := m.controller.UpdateSound(catalog[m.soundCursor].ID, m.snapshot.Settings.Volume); err != nil {
				m.statusLine = "Failed to update sound: " + err.Error()
				m.statusWarning = true
			}
			m.snapshot = m.controller.Snapshot()
		}
	case key.Matches(msg, m.keys.Preview):
		if m.soundCursor < len(catalog) && m.previewer != nil {
			if err := m.previewer.Preview(catalog[m.soundCursor].ID, m.snapshot.Settings.Volume); err != nil {
				m.statusLine = "Preview unavailable: " + err.Error()
				m.statusWarning = true
			}
		}
	case key.Matches(msg, m.keys.Edit):
		m.previousState = m.state
		m.volumeForm = &VolumeFormModel{Volume: strconv.Itoa(m.snapshot.Settings.Volume)}
		m.form = NewVolumeForm(m.volumeForm)
		m.state = StateEditVolume
		return m, m.form.Init()
	}
	return m, nil
}

func (m Model) currentOverride() *models.TonightOverride {
	override, err := m.store.TonightOverride(time.Now().Format("2006-01-02"))
	if err != nil {
		return nil
	}
	return override
}

func dayName(day int) string {
	names := []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}
	if day < 0 || day >= len(names) {
		return "?"
	}
	return names[day]
}
