// Package tui is the interactive terminal surface: an alarm status
// dashboard with schedule, sound, and snooze editing, a full-screen ring
// overlay while the alarm sounds, and the morning capture screen shown
// after a ring is stopped.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/lucidlog/lucidlog/internal/alarm"
	"github.com/lucidlog/lucidlog/internal/models"
	"github.com/lucidlog/lucidlog/internal/storage"
)

type SessionState int

const (
	StateStatus SessionState = iota
	StateSchedule
	StateSound
	StateSettings
	StateRinging
	StateMorning
	StateEditTime
	StateEditOverride
	StateEditVolume
	StateEditSnooze
)

// tabCount is the number of top-level tabs; the remaining states are
// overlays and forms.
const tabCount = 4

// Previewer plays a short sample of a sound, used from the sound tab.
type Previewer interface {
	Preview(soundID string, volume int) error
}

// Bridge carries controller callbacks into the bubbletea message loop.
// The controller fires from the trigger goroutine; the channels hand those
// signals to the program without sharing model state across goroutines.
type Bridge struct {
	Notices  chan alarm.Notice
	Handoffs chan models.AlarmContext
}

func NewBridge() *Bridge {
	return &Bridge{
		Notices:  make(chan alarm.Notice, 8),
		Handoffs: make(chan models.AlarmContext, 1),
	}
}

// Notify and Navigate are wired into alarm.Options. Both drop on a full
// channel rather than block the controller.
func (b *Bridge) Notify(notice alarm.Notice) {
	select {
	case b.Notices <- notice:
	default:
	}
}

func (b *Bridge) Navigate(ctx models.AlarmContext) {
	select {
	case b.Handoffs <- ctx:
	default:
	}
}

type TimeFormModel struct {
	Time string
}

type OverrideFormModel struct {
	Enabled bool
	Time    string
}

type VolumeFormModel struct {
	Volume string
}

type SnoozeFormModel struct {
	SnoozeMinutes string
	MaxSnoozes    string
}

type MorningFormModel struct {
	Note string
}

type Model struct {
	store      storage.Provider
	controller *alarm.Controller
	previewer  Previewer
	bridge     *Bridge

	state         SessionState
	previousState SessionState
	keys          KeyMap
	help          help.Model

	snapshot alarm.Snapshot
	handoff  *models.AlarmContext

	scheduleCursor int
	soundCursor    int

	form         *huh.Form
	timeForm     *TimeFormModel
	overrideForm *OverrideFormModel
	volumeForm   *VolumeFormModel
	snoozeForm   *SnoozeFormModel
	morningForm  *MorningFormModel

	statusLine    string
	statusWarning bool
	formError     string

	quitting bool
	width    int
	height   int
}

func NewModel(store storage.Provider, controller *alarm.Controller, previewer Previewer, bridge *Bridge) Model {
	m := Model{
		store:      store,
		controller: controller,
		previewer:  previewer,
		bridge:     bridge,
		state:      StateStatus,
		keys:       DefaultKeyMap(),
		help:       help.New(),
	}
	m.snapshot = controller.Snapshot()
	return m
}

func (m Model) ShortHelp() []key.Binding {
	switch m.state {
	case StateRinging:
		return []key.Binding{m.keys.Enter, m.keys.Snooze}
	case StateStatus:
		return []key.Binding{m.keys.Tab, m.keys.Arm, m.keys.Override, m.keys.Quit, m.keys.Help}
	case StateSchedule:
		return []key.Binding{m.keys.Tab, m.keys.Enter, m.keys.Edit, m.keys.Quit, m.keys.Help}
	case StateSound:
		return []key.Binding{m.keys.Tab, m.keys.Enter, m.keys.Preview, m.keys.Edit, m.keys.Quit}
	default:
		return []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	}
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help}
	navigation := []key.Binding{m.keys.Up, m.keys.Down, m.keys.Enter}
	actions := []key.Binding{m.keys.Arm, m.keys.Edit, m.keys.Override, m.keys.Preview, m.keys.Snooze}
	return [][]key.Binding{global, navigation, actions}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(tick(), m.waitForNotice(), m.waitForHandoff())
}

type tickMsg time.Time

type noticeMsg alarm.Notice

type handoffMsg models.AlarmContext

// tick drives the snapshot poll that keeps the next-alarm countdown and
// ring overlay current.
func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) waitForNotice() tea.Cmd {
	return func() tea.Msg {
		return noticeMsg(<-m.bridge.Notices)
	}
}

func (m Model) waitForHandoff() tea.Cmd {
	return func() tea.Msg {
		return handoffMsg(<-m.bridge.Handoffs)
	}
}
