package alarm

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/lucidlog/lucidlog/internal/events"
	"github.com/lucidlog/lucidlog/internal/models"
	"github.com/lucidlog/lucidlog/internal/storage"
)

type fakeScheduler struct {
	mu       sync.Mutex
	callback func(time.Time)
	target   time.Time
	armed    bool
	cancels  int
}

func (f *fakeScheduler) OnTrigger(callback func(time.Time)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callback = callback
}

func (f *fakeScheduler) Start(target time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.target = target
	f.armed = true
}

func (f *fakeScheduler) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.armed = false
	f.cancels++
}

func (f *fakeScheduler) fire() {
	f.mu.Lock()
	callback := f.callback
	target := f.target
	f.armed = false
	f.mu.Unlock()
	callback(target)
}

// fireAt delivers a firing for an explicit target, as a poller that
// consumed its trigger before a concurrent Start would.
func (f *fakeScheduler) fireAt(target time.Time) {
	f.mu.Lock()
	callback := f.callback
	f.mu.Unlock()
	callback(target)
}

func (f *fakeScheduler) pending() (time.Time, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.target, f.armed
}

type fakePlayer struct {
	mu      sync.Mutex
	playErr error
	plays   []string
	stops   int
}

func (f *fakePlayer) Play(soundID string, volume int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.playErr != nil {
		return f.playErr
	}
	f.plays = append(f.plays, soundID)
	return nil
}

func (f *fakePlayer) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
}

type harness struct {
	controller *Controller
	store      storage.Provider
	scheduler  *fakeScheduler
	player     *fakePlayer
	clock      *time.Time
	handoffs   []models.AlarmContext
	notices    []Notice
}

// newHarness builds a controller over a real JSON store with fake
// collaborators and a manually advanced clock starting Wednesday
// 2026-01-07 22:00 UTC.
func newHarness(t *testing.T) *harness {
	t.Helper()

	start := time.Date(2026, 1, 7, 22, 0, 0, 0, time.UTC)
	h := &harness{
		scheduler: &fakeScheduler{},
		player:    &fakePlayer{},
		clock:     &start,
	}

	h.store = storage.NewJSONStore(filepath.Join(t.TempDir(), "lucidlog.json"))
	if err := h.store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() { h.store.Close() })

	now := func() time.Time { return *h.clock }
	h.controller = NewController(Options{
		Store:     h.store,
		Scheduler: h.scheduler,
		Player:    h.player,
		Recorder:  events.NewRecorderWithClock(h.store, now),
		Location:  time.UTC,
		Now:       now,
		Navigate:  func(ctx models.AlarmContext) { h.handoffs = append(h.handoffs, ctx) },
		Notify:    func(n Notice) { h.notices = append(h.notices, n) },
	})
	return h
}

func (h *harness) advance(d time.Duration) {
	*h.clock = h.clock.Add(d)
}

func TestController_ArmSchedulesNextAlarm(t *testing.T) {
	h := newHarness(t)

	if err := h.controller.SetArmed(true); err != nil {
		t.Fatalf("SetArmed failed: %v", err)
	}

	// Default schedule rings every day at 07:00, so tomorrow morning.
	want := time.Date(2026, 1, 8, 7, 0, 0, 0, time.UTC)
	target, armed := h.scheduler.pending()
	if !armed || !target.Equal(want) {
		t.Fatalf("pending = %v (%v), want %v", target, armed, want)
	}

	snapshot := h.controller.Snapshot()
	if snapshot.State != StateArmed {
		t.Errorf("state = %s, want armed", snapshot.State)
	}
	if snapshot.NextText != "Tomorrow at 7:00 AM" {
		t.Errorf("next text = %q", snapshot.NextText)
	}

	// State survives in the store.
	persisted, err := h.store.AlarmState()
	if err != nil || persisted == nil {
		t.Fatalf("AlarmState = %+v, %v", persisted, err)
	}
	if persisted.NextAlarmAt == nil || !persisted.NextAlarmAt.Equal(want) {
		t.Errorf("persisted next = %v, want %v", persisted.NextAlarmAt, want)
	}
}

func TestController_DisarmCancelsTrigger(t *testing.T) {
	h := newHarness(t)
	if err := h.controller.SetArmed(true); err != nil {
		t.Fatalf("SetArmed failed: %v", err)
	}
	if err := h.controller.SetArmed(false); err != nil {
		t.Fatalf("SetArmed(false) failed: %v", err)
	}

	if _, armed := h.scheduler.pending(); armed {
		t.Error("trigger still armed after disarm")
	}
	if snapshot := h.controller.Snapshot(); snapshot.State != StateIdle {
		t.Errorf("state = %s, want idle", snapshot.State)
	}
}

func TestController_RingSnoozeStopCycle(t *testing.T) {
	h := newHarness(t)
	if err := h.controller.SetArmed(true); err != nil {
		t.Fatalf("SetArmed failed: %v", err)
	}

	scheduled := time.Date(2026, 1, 8, 7, 0, 0, 0, time.UTC)
	h.advance(9 * time.Hour)
	h.scheduler.fire()

	snapshot := h.controller.Snapshot()
	if snapshot.State != StateRinging {
		t.Fatalf("state = %s, want ringing", snapshot.State)
	}
	if len(h.player.plays) != 1 || h.player.plays[0] != "gentle-rise" {
		t.Fatalf("plays = %v", h.player.plays)
	}

	h.advance(30 * time.Second)
	h.controller.Snooze()

	snapshot = h.controller.Snapshot()
	if snapshot.State != StateSnoozed || snapshot.Runtime.SnoozeCount != 1 {
		t.Fatalf("after snooze: %s count=%d", snapshot.State, snapshot.Runtime.SnoozeCount)
	}
	if h.player.stops == 0 {
		t.Error("snooze did not stop playback")
	}
	wantUntil := h.clock.Add(10 * time.Minute)
	if target, armed := h.scheduler.pending(); !armed || !target.Equal(wantUntil) {
		t.Fatalf("snooze trigger = %v (%v), want %v", target, armed, wantUntil)
	}

	h.advance(10 * time.Minute)
	h.scheduler.fire()
	if snapshot := h.controller.Snapshot(); snapshot.State != StateRinging {
		t.Fatalf("state = %s after snooze expiry, want ringing", snapshot.State)
	}

	h.advance(15 * time.Second)
	stopAt := *h.clock
	h.controller.Stop()

	snapshot = h.controller.Snapshot()
	if snapshot.State != StateIdle || snapshot.Runtime.SnoozeCount != 0 {
		t.Fatalf("after stop: %s count=%d", snapshot.State, snapshot.Runtime.SnoozeCount)
	}
	if len(h.handoffs) != 1 {
		t.Fatalf("handoffs = %d, want 1", len(h.handoffs))
	}
	handoff := h.handoffs[0]
	if handoff.AlarmID == "" {
		t.Error("handoff missing alarm id")
	}
	if handoff.SnoozeCount != 1 || !handoff.ActualStopTime.Equal(stopAt) {
		t.Errorf("handoff = %+v", handoff)
	}
	if !handoff.ScheduledTime.Equal(scheduled) {
		t.Errorf("handoff scheduled = %v, want %v", handoff.ScheduledTime, scheduled)
	}

	recorded, err := h.store.Events(10)
	if err != nil {
		t.Fatalf("Events failed: %v", err)
	}
	types := map[string]int{}
	for _, event := range recorded {
		types[event.Type]++
	}
	if types[events.TypeRang] != 2 || types[events.TypeSnoozed] != 1 || types[events.TypeStopped] != 1 {
		t.Errorf("event counts = %v", types)
	}
}

func TestController_StaleTriggerDoesNotRingRearmedTarget(t *testing.T) {
	h := newHarness(t)
	if err := h.controller.SetArmed(true); err != nil {
		t.Fatalf("SetArmed failed: %v", err)
	}
	stale, _ := h.scheduler.pending() // tomorrow 07:00

	// The 07:00 poller consumes its trigger just as an override re-arms
	// 09:00; the stale callback then gets the mutex.
	h.advance(9*time.Hour + time.Second)
	rearmed := time.Date(2026, 1, 8, 9, 0, 0, 0, time.UTC)
	if err := h.controller.SetTonightOverride(models.TonightOverride{
		Enabled:  true,
		WakeTime: rearmed,
		Date:     "2026-01-08",
	}); err != nil {
		t.Fatalf("SetTonightOverride failed: %v", err)
	}
	h.scheduler.fireAt(stale)

	snapshot := h.controller.Snapshot()
	if snapshot.State != StateArmed {
		t.Fatalf("state = %s, stale firing must not ring the re-armed alarm", snapshot.State)
	}
	if len(h.player.plays) != 0 {
		t.Errorf("playback started on stale firing: %v", h.player.plays)
	}
	if target, armed := h.scheduler.pending(); !armed || !target.Equal(rearmed) {
		t.Errorf("pending = %v (%v), want %v", target, armed, rearmed)
	}

	// The re-armed target itself still rings.
	h.advance(2 * time.Hour)
	h.scheduler.fire()
	if snapshot := h.controller.Snapshot(); snapshot.State != StateRinging {
		t.Errorf("state = %s at re-armed target, want ringing", snapshot.State)
	}
}

func TestController_SnoozeLimitNotifies(t *testing.T) {
	h := newHarness(t)
	if err := h.controller.UpdateSnooze(10, 1); err != nil {
		t.Fatalf("UpdateSnooze failed: %v", err)
	}
	if err := h.controller.SetArmed(true); err != nil {
		t.Fatalf("SetArmed failed: %v", err)
	}

	h.advance(9 * time.Hour)
	h.scheduler.fire()
	h.controller.Snooze()
	h.advance(10 * time.Minute)
	h.scheduler.fire()

	h.controller.Snooze()
	snapshot := h.controller.Snapshot()
	if snapshot.State != StateRinging {
		t.Fatalf("state = %s, want still ringing at snooze limit", snapshot.State)
	}

	warned := false
	for _, notice := range h.notices {
		if notice.Warning {
			warned = true
		}
	}
	if !warned {
		t.Errorf("expected warning notice, got %+v", h.notices)
	}
}

func TestController_PlaybackErrorRingsSilently(t *testing.T) {
	h := newHarness(t)
	h.player.playErr = errors.New("no audio device")

	if err := h.controller.SetArmed(true); err != nil {
		t.Fatalf("SetArmed failed: %v", err)
	}
	h.advance(9 * time.Hour)
	h.scheduler.fire()

	snapshot := h.controller.Snapshot()
	if snapshot.State != StateRinging {
		t.Fatalf("state = %s, playback failure must not block the ring", snapshot.State)
	}
	warned := false
	for _, notice := range h.notices {
		if notice.Warning {
			warned = true
		}
	}
	if !warned {
		t.Error("expected silent-ring warning")
	}

	// Stop and snooze still work without a sound device.
	h.controller.Stop()
	if snapshot := h.controller.Snapshot(); snapshot.State != StateIdle {
		t.Errorf("state = %s after stop, want idle", snapshot.State)
	}
}

func TestController_OverrideBeatsSchedule(t *testing.T) {
	h := newHarness(t)

	override := models.TonightOverride{
		Enabled:  true,
		WakeTime: time.Date(2026, 1, 8, 5, 30, 0, 0, time.UTC),
		Date:     "2026-01-07",
	}
	if err := h.controller.SetTonightOverride(override); err != nil {
		t.Fatalf("SetTonightOverride failed: %v", err)
	}
	if err := h.controller.SetArmed(true); err != nil {
		t.Fatalf("SetArmed failed: %v", err)
	}

	target, armed := h.scheduler.pending()
	if !armed || !target.Equal(override.WakeTime) {
		t.Fatalf("pending = %v (%v), want override %v", target, armed, override.WakeTime)
	}
	if snapshot := h.controller.Snapshot(); snapshot.Runtime.Source != models.SourceOverride {
		t.Errorf("source = %q, want override", snapshot.Runtime.Source)
	}

	if err := h.controller.ClearTonightOverride("2026-01-07"); err != nil {
		t.Fatalf("ClearTonightOverride failed: %v", err)
	}
	want := time.Date(2026, 1, 8, 7, 0, 0, 0, time.UTC)
	if target, armed := h.scheduler.pending(); !armed || !target.Equal(want) {
		t.Errorf("pending = %v (%v) after clear, want %v", target, armed, want)
	}
}

func TestController_RestartResumesSnooze(t *testing.T) {
	h := newHarness(t)
	if err := h.controller.SetArmed(true); err != nil {
		t.Fatalf("SetArmed failed: %v", err)
	}
	h.advance(9 * time.Hour)
	h.scheduler.fire()
	h.controller.Snooze()
	wantUntil := h.clock.Add(10 * time.Minute)

	// Fresh controller over the same store, as after a process restart.
	now := func() time.Time { return *h.clock }
	scheduler := &fakeScheduler{}
	restarted := NewController(Options{
		Store:     h.store,
		Scheduler: scheduler,
		Player:    &fakePlayer{},
		Location:  time.UTC,
		Now:       now,
	})
	if err := restarted.Refresh(); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	snapshot := restarted.Snapshot()
	if snapshot.State != StateSnoozed || snapshot.Runtime.SnoozeCount != 1 {
		t.Fatalf("restarted state = %s count=%d", snapshot.State, snapshot.Runtime.SnoozeCount)
	}
	if target, armed := scheduler.pending(); !armed || !target.Equal(wantUntil) {
		t.Errorf("restarted trigger = %v (%v), want %v", target, armed, wantUntil)
	}
}

func TestController_RestartResumesRing(t *testing.T) {
	h := newHarness(t)
	if err := h.controller.SetArmed(true); err != nil {
		t.Fatalf("SetArmed failed: %v", err)
	}
	h.advance(9 * time.Hour)
	h.scheduler.fire()

	now := func() time.Time { return *h.clock }
	player := &fakePlayer{}
	restarted := NewController(Options{
		Store:     h.store,
		Scheduler: &fakeScheduler{},
		Player:    player,
		Location:  time.UTC,
		Now:       now,
	})
	if err := restarted.Refresh(); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	if snapshot := restarted.Snapshot(); snapshot.State != StateRinging {
		t.Fatalf("restarted state = %s, want ringing", snapshot.State)
	}
	if len(player.plays) != 1 {
		t.Errorf("restart should resume playback, plays = %v", player.plays)
	}
}
