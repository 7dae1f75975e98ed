package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/lucidlog/lucidlog/internal/models"
	"github.com/lucidlog/lucidlog/internal/recurrence"
	"github.com/lucidlog/lucidlog/internal/sound"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	switch m.state {
	case StateRinging:
		return m.viewRinging()
	case StateMorning, StateEditTime, StateEditOverride, StateEditVolume, StateEditSnooze:
		view := m.form.View()
		if m.formError != "" {
			view += "\n" + warningStyle.Render(m.formError)
		}
		return docStyle.Render(view)
	}

	var content string
	switch m.state {
	case StateStatus:
		content = m.viewStatus()
	case StateSchedule:
		content = m.viewSchedule()
	case StateSound:
		content = m.viewSound()
	case StateSettings:
		content = m.viewSettings()
	}

	var status string
	if m.statusLine != "" {
		if m.statusWarning {
			status = warningStyle.Render(m.statusLine)
		} else {
			status = mutedStyle.Render(m.statusLine)
		}
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		content,
		status,
		m.help.View(m),
	)
}

func (m Model) viewTabs() string {
	var tabs []string
	tabTitles := []string{"Status", "Schedule", "Sound", "Settings"}
	for i, title := range tabTitles {
		if m.state == SessionState(i) {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewStatus() string {
	var b strings.Builder

	if m.snapshot.Settings.IsArmed {
		b.WriteString(armedStyle.Render("● Alarm armed"))
	} else {
		b.WriteString(mutedStyle.Render("○ Alarm off"))
	}
	b.WriteString("\n\n")

	switch {
	case m.snapshot.NextText != "":
		b.WriteString("Next alarm: " + m.snapshot.NextText + "\n")
		if m.snapshot.Runtime.Source == models.SourceOverride {
			b.WriteString(warningStyle.Render("One-time override for tonight") + "\n")
		}
	case m.snapshot.Settings.IsArmed:
		b.WriteString(mutedStyle.Render("No wake time configured") + "\n")
	default:
		b.WriteString(mutedStyle.Render("Press a to arm the alarm") + "\n")
	}

	if until := m.snapshot.Runtime.SnoozeUntil; until != nil {
		b.WriteString(fmt.Sprintf("Snoozed until %s (%d of %d used)\n",
			until.Format("3:04 PM"), m.snapshot.Runtime.SnoozeCount, m.snapshot.Settings.MaxSnoozes))
	}

	return docStyle.Render(b.String())
}

func (m Model) viewSchedule() string {
	var b strings.Builder
	b.WriteString("Weekly wake schedule")
	b.WriteString(mutedStyle.Render("  (" + recurrence.RepeatLabel(m.snapshot.Settings.Schedule) + ")"))
	b.WriteString("\n\n")

	for i, rule := range m.snapshot.Settings.Schedule {
		cursor := "  "
		if i == m.scheduleCursor {
			cursor = "> "
		}
		mark := "[ ]"
		if rule.Enabled {
			mark = "[x]"
		}
		line := fmt.Sprintf("%s%s %-9s %s", cursor, mark, dayName(rule.DayOfWeek), rule.WakeTimeLocal)
		if !rule.Enabled {
			line = mutedStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}

	return docStyle.Render(b.String())
}

func (m Model) viewSound() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Alarm sound  (volume %d)\n\n", m.snapshot.Settings.Volume))

	for i, s := range sound.Catalog() {
		cursor := "  "
		if i == m.soundCursor {
			cursor = "> "
		}
		mark := "   "
		if s.ID == m.snapshot.Settings.SoundID {
			mark = " ● "
		}
		b.WriteString(fmt.Sprintf("%s%s%s", cursor, mark, s.Name))
		b.WriteString(mutedStyle.Render("  " + s.Description))
		b.WriteString("\n")
	}

	return docStyle.Render(b.String())
}

func (m Model) viewSettings() string {
	var b strings.Builder
	b.WriteString("Snooze\n\n")
	b.WriteString(fmt.Sprintf("  Snooze length: %d min\n", m.snapshot.Settings.SnoozeMinutes))
	b.WriteString(fmt.Sprintf("  Max snoozes:   %d\n", m.snapshot.Settings.MaxSnoozes))
	b.WriteString("\n" + mutedStyle.Render("Press e to edit") + "\n")
	return docStyle.Render(b.String())
}

func (m Model) viewRinging() string {
	started := ""
	if at := m.snapshot.Runtime.RingStartedAt; at != nil {
		started = "Ringing since " + at.Format("3:04 PM")
	}
	elapsed := ""
	if at := m.snapshot.Runtime.RingStartedAt; at != nil {
		elapsed = fmt.Sprintf("(%s)", time.Since(*at).Round(time.Second))
	}

	return lipgloss.Place(max(m.width, 40), max(m.height, 10),
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			ringStyle.Render("⏰  WAKE UP  ⏰"),
			"",
			started,
			mutedStyle.Render(elapsed),
			"",
			"[enter] I'm awake",
			fmt.Sprintf("[s] Snooze %d min", m.snapshot.Settings.SnoozeMinutes),
		),
	)
}
