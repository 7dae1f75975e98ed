package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lucidlog/lucidlog/internal/models"
)

// Store is the JSON document layout written to disk.
type Store struct {
	Version   int                               `json:"version"`
	Settings  models.AlarmSettings              `json:"settings"`
	Overrides map[string]models.TonightOverride `json:"overrides"` // keyed by YYYY-MM-DD
	State     *models.AlarmRuntimeState         `json:"state,omitempty"`
	Events    []models.AlarmEvent               `json:"events"`
}

// JSONStore keeps everything in a single JSON file. It exists for
// inspectable dev setups and for tests; SQLite is the default backend.
//
// Not safe for concurrent use by multiple processes sharing the same path.
type JSONStore struct {
	path  string
	store *Store
}

func NewJSONStore(configPath string) *JSONStore {
	return &JSONStore{path: configPath}
}

func (s *JSONStore) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(s.path); err == nil {
		return fmt.Errorf("storage already initialized at %s", s.path)
	}

	s.store = &Store{
		Version:   1,
		Settings:  DefaultSettings(),
		Overrides: make(map[string]models.TonightOverride),
	}
	return s.save()
}

func (s *JSONStore) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("storage not initialized, run 'lucidlog init' first")
		}
		return fmt.Errorf("failed to read storage: %w", err)
	}

	s.store = &Store{}
	if err := json.Unmarshal(data, s.store); err != nil {
		return fmt.Errorf("failed to parse storage: %w", err)
	}

	if s.store.Overrides == nil {
		s.store.Overrides = make(map[string]models.TonightOverride)
	}
	if len(s.store.Settings.Schedule) != 7 {
		s.store.Settings = DefaultSettings()
	}

	return nil
}

func (s *JSONStore) Close() error {
	return nil
}

func (s *JSONStore) save() error {
	data, err := json.MarshalIndent(s.store, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	return nil
}

func (s *JSONStore) loaded() error {
	if s.store == nil {
		return fmt.Errorf("storage not loaded")
	}
	return nil
}

func (s *JSONStore) GetAlarmSettings() (models.AlarmSettings, error) {
	if err := s.loaded(); err != nil {
		return models.AlarmSettings{}, err
	}
	return s.store.Settings, nil
}

func (s *JSONStore) UpdateSchedule(schedule []models.ScheduleRule) error {
	if err := s.loaded(); err != nil {
		return err
	}
	s.store.Settings.Schedule = schedule
	if t := firstEnabledTime(schedule); t != "" {
		s.store.Settings.LastSetTime = t
	}
	return s.save()
}

func (s *JSONStore) SetArmed(armed bool) error {
	if err := s.loaded(); err != nil {
		return err
	}
	s.store.Settings.IsArmed = armed
	return s.save()
}

func (s *JSONStore) UpdateSound(soundID string, volume int) error {
	if err := s.loaded(); err != nil {
		return err
	}
	s.store.Settings.SoundID = soundID
	s.store.Settings.Volume = volume
	return s.save()
}

func (s *JSONStore) UpdateSnooze(snoozeMinutes, maxSnoozes int) error {
	if err := s.loaded(); err != nil {
		return err
	}
	s.store.Settings.SnoozeMinutes = snoozeMinutes
	s.store.Settings.MaxSnoozes = maxSnoozes
	return s.save()
}

func (s *JSONStore) TonightOverride(date string) (*models.TonightOverride, error) {
	if err := s.loaded(); err != nil {
		return nil, err
	}
	override, ok := s.store.Overrides[date]
	if !ok {
		return nil, nil
	}
	return &override, nil
}

func (s *JSONStore) SetTonightOverride(override models.TonightOverride) error {
	if err := s.loaded(); err != nil {
		return err
	}
	if override.Date == "" {
		return fmt.Errorf("override date is required")
	}
	s.store.Overrides[override.Date] = override
	return s.save()
}

func (s *JSONStore) ClearTonightOverride(date string) error {
	if err := s.loaded(); err != nil {
		return err
	}
	delete(s.store.Overrides, date)
	return s.save()
}

func (s *JSONStore) AlarmState() (*models.AlarmRuntimeState, error) {
	if err := s.loaded(); err != nil {
		return nil, err
	}
	if s.store.State == nil {
		return nil, nil
	}
	state := *s.store.State
	return &state, nil
}

func (s *JSONStore) SaveAlarmState(state models.AlarmRuntimeState) error {
	if err := s.loaded(); err != nil {
		return err
	}
	s.store.State = &state
	return s.save()
}

func (s *JSONStore) ClearAlarmState() error {
	if err := s.loaded(); err != nil {
		return err
	}
	s.store.State = nil
	return s.save()
}

func (s *JSONStore) AppendEvent(event models.AlarmEvent) error {
	if err := s.loaded(); err != nil {
		return err
	}
	s.store.Events = append(s.store.Events, event)
	return s.save()
}

func (s *JSONStore) Events(limit int) ([]models.AlarmEvent, error) {
	if err := s.loaded(); err != nil {
		return nil, err
	}
	events := s.store.Events
	if limit > 0 && len(events) > limit {
		events = events[len(events)-limit:]
	}
	// Newest first, matching the SQLite backend.
	out := make([]models.AlarmEvent, len(events))
	for i, event := range events {
		out[len(events)-1-i] = event
	}
	return out, nil
}

func (s *JSONStore) ConfigPath() string {
	return s.path
}

// firstEnabledTime returns the wake time of the first enabled rule. It is
// remembered as LastSetTime so a later fully-disabled schedule still has a
// sane fallback wake time.
func firstEnabledTime(schedule []models.ScheduleRule) string {
	for _, rule := range schedule {
		if rule.Enabled {
			return rule.WakeTimeLocal
		}
	}
	return ""
}
