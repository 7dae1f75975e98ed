package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lucidlog/lucidlog/internal/models"
	_ "modernc.org/sqlite"
)

// schemaVersion is written to PRAGMA user_version. The subsystem owns a
// small fixed schema, so versioned DDL statements replace a file-based
// migration runner.
const schemaVersion = 1

var schemaDDL = []string{
	`CREATE TABLE IF NOT EXISTS alarm_settings (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		is_armed INTEGER NOT NULL DEFAULT 0,
		sound_id TEXT NOT NULL,
		volume INTEGER NOT NULL,
		snooze_minutes INTEGER NOT NULL,
		max_snoozes INTEGER NOT NULL,
		last_set_time TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS schedule_rules (
		day_of_week INTEGER PRIMARY KEY CHECK (day_of_week BETWEEN 0 AND 6),
		enabled INTEGER NOT NULL DEFAULT 0,
		wake_time_local TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS tonight_override (
		date TEXT PRIMARY KEY,
		enabled INTEGER NOT NULL DEFAULT 0,
		wake_time TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS alarm_state (
		key TEXT PRIMARY KEY CHECK (key = 'current'),
		next_alarm_at TEXT,
		is_ringing INTEGER NOT NULL DEFAULT 0,
		ring_started_at TEXT,
		snooze_until TEXT,
		snooze_count INTEGER NOT NULL DEFAULT 0,
		last_computed_at TEXT NOT NULL,
		source TEXT NOT NULL DEFAULT '',
		source_date TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		type TEXT NOT NULL,
		occurred_at TEXT NOT NULL,
		payload TEXT NOT NULL DEFAULT '{}'
	)`,
}

// SQLiteStore is the default Provider backend, a single-file pure-Go
// SQLite database.
type SQLiteStore struct {
	path string
	db   *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func (s *SQLiteStore) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db

	if err := s.applySchema(); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	if _, err := s.GetAlarmSettings(); err != nil {
		if err := s.writeSettings(DefaultSettings()); err != nil {
			return fmt.Errorf("failed to save default settings: %w", err)
		}
	}

	return nil
}

func (s *SQLiteStore) Load() error {
	if s.db != nil {
		return nil
	}

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return fmt.Errorf("storage not initialized, run 'lucidlog init' first")
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db

	var version int
	if err := s.db.QueryRow(`PRAGMA user_version`).Scan(&version); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if version > schemaVersion {
		return fmt.Errorf("storage schema version %d is newer than supported version %d", version, schemaVersion)
	}
	if version < schemaVersion {
		// Forward-apply; the DDL is idempotent.
		if err := s.applySchema(); err != nil {
			return fmt.Errorf("failed to upgrade schema: %w", err)
		}
	}

	return nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) applySchema() error {
	for _, ddl := range schemaDDL {
		if _, err := s.db.Exec(ddl); err != nil {
			return err
		}
	}
	_, err := s.db.Exec(fmt.Sprintf(`PRAGMA user_version = %d`, schemaVersion))
	return err
}

func (s *SQLiteStore) ready() error {
	if s.db == nil {
		return fmt.Errorf("storage not loaded")
	}
	return nil
}

func (s *SQLiteStore) GetAlarmSettings() (models.AlarmSettings, error) {
	if err := s.ready(); err != nil {
		return models.AlarmSettings{}, err
	}

	var settings models.AlarmSettings
	var armed int
	err := s.db.QueryRow(
		`SELECT is_armed, sound_id, volume, snooze_minutes, max_snoozes, last_set_time
		 FROM alarm_settings WHERE id = 1`,
	).Scan(&armed, &settings.SoundID, &settings.Volume, &settings.SnoozeMinutes, &settings.MaxSnoozes, &settings.LastSetTime)
	if err == sql.ErrNoRows {
		return models.AlarmSettings{}, fmt.Errorf("alarm settings not found")
	}
	if err != nil {
		return models.AlarmSettings{}, fmt.Errorf("failed to read alarm settings: %w", err)
	}
	settings.IsArmed = armed != 0

	rows, err := s.db.Query(`SELECT day_of_week, enabled, wake_time_local FROM schedule_rules ORDER BY day_of_week`)
	if err != nil {
		return models.AlarmSettings{}, fmt.Errorf("failed to read schedule: %w", err)
	}
	defer rows.Close()

	schedule := make([]models.ScheduleRule, 0, 7)
	for rows.Next() {
		var rule models.ScheduleRule
		var enabled int
		if err := rows.Scan(&rule.DayOfWeek, &enabled, &rule.WakeTimeLocal); err != nil {
			return models.AlarmSettings{}, fmt.Errorf("failed to scan schedule rule: %w", err)
		}
		rule.Enabled = enabled != 0
		schedule = append(schedule, rule)
	}
	if err := rows.Err(); err != nil {
		return models.AlarmSettings{}, fmt.Errorf("failed to read schedule: %w", err)
	}
	settings.Schedule = schedule

	return settings, nil
}

func (s *SQLiteStore) writeSettings(settings models.AlarmSettings) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO alarm_settings (id, is_armed, sound_id, volume, snooze_minutes, max_snoozes, last_set_time)
		 VALUES (1, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
			is_armed = excluded.is_armed,
			sound_id = excluded.sound_id,
			volume = excluded.volume,
			snooze_minutes = excluded.snooze_minutes,
			max_snoozes = excluded.max_snoozes,
			last_set_time = excluded.last_set_time`,
		boolToInt(settings.IsArmed), settings.SoundID, settings.Volume,
		settings.SnoozeMinutes, settings.MaxSnoozes, settings.LastSetTime,
	)
	if err != nil {
		return err
	}

	for _, rule := range settings.Schedule {
		if _, err := tx.Exec(
			`INSERT INTO schedule_rules (day_of_week, enabled, wake_time_local)
			 VALUES (?, ?, ?)
			 ON CONFLICT (day_of_week) DO UPDATE SET
				enabled = excluded.enabled,
				wake_time_local = excluded.wake_time_local`,
			rule.DayOfWeek, boolToInt(rule.Enabled), rule.WakeTimeLocal,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) UpdateSchedule(schedule []models.ScheduleRule) error {
	if err := s.ready(); err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, rule := range schedule {
		if _, err := tx.Exec(
			`INSERT INTO schedule_rules (day_of_week, enabled, wake_time_local)
			 VALUES (?, ?, ?)
			 ON CONFLICT (day_of_week) DO UPDATE SET
				enabled = excluded.enabled,
				wake_time_local = excluded.wake_time_local`,
			rule.DayOfWeek, boolToInt(rule.Enabled), rule.WakeTimeLocal,
		); err != nil {
			return fmt.Errorf("failed to update schedule: %w", err)
		}
	}

	if t := firstEnabledTime(schedule); t != "" {
		if _, err := tx.Exec(`UPDATE alarm_settings SET last_set_time = ? WHERE id = 1`, t); err != nil {
			return fmt.Errorf("failed to update last set time: %w", err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) SetArmed(armed bool) error {
	if err := s.ready(); err != nil {
		return err
	}
	if _, err := s.db.Exec(`UPDATE alarm_settings SET is_armed = ? WHERE id = 1`, boolToInt(armed)); err != nil {
		return fmt.Errorf("failed to update armed state: %w", err)
	}
	return nil
}

func (s *SQLiteStore) UpdateSound(soundID string, volume int) error {
	if err := s.ready(); err != nil {
		return err
	}
	if _, err := s.db.Exec(`UPDATE alarm_settings SET sound_id = ?, volume = ? WHERE id = 1`, soundID, volume); err != nil {
		return fmt.Errorf("failed to update sound settings: %w", err)
	}
	return nil
}

func (s *SQLiteStore) UpdateSnooze(snoozeMinutes, maxSnoozes int) error {
	if err := s.ready(); err != nil {
		return err
	}
	if _, err := s.db.Exec(
		`UPDATE alarm_settings SET snooze_minutes = ?, max_snoozes = ? WHERE id = 1`,
		snoozeMinutes, maxSnoozes,
	); err != nil {
		return fmt.Errorf("failed to update snooze settings: %w", err)
	}
	return nil
}

func (s *SQLiteStore) TonightOverride(date string) (*models.TonightOverride, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	var override models.TonightOverride
	var enabled int
	var wakeTime string
	err := s.db.QueryRow(
		`SELECT date, enabled, wake_time FROM tonight_override WHERE date = ?`, date,
	).Scan(&override.Date, &enabled, &wakeTime)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read tonight override: %w", err)
	}

	override.Enabled = enabled != 0
	override.WakeTime, err = time.Parse(time.RFC3339, wakeTime)
	if err != nil {
		return nil, fmt.Errorf("invalid override wake time %q: %w", wakeTime, err)
	}
	return &override, nil
}

func (s *SQLiteStore) SetTonightOverride(override models.TonightOverride) error {
	if err := s.ready(); err != nil {
		return err
	}
	if override.Date == "" {
		return fmt.Errorf("override date is required")
	}
	if _, err := s.db.Exec(
		`INSERT INTO tonight_override (date, enabled, wake_time)
		 VALUES (?, ?, ?)
		 ON CONFLICT (date) DO UPDATE SET
			enabled = excluded.enabled,
			wake_time = excluded.wake_time`,
		override.Date, boolToInt(override.Enabled), override.WakeTime.Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("failed to save tonight override: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ClearTonightOverride(date string) error {
	if err := s.ready(); err != nil {
		return err
	}
	if _, err := s.db.Exec(`DELETE FROM tonight_override WHERE date = ?`, date); err != nil {
		return fmt.Errorf("failed to clear tonight override: %w", err)
	}
	return nil
}

func (s *SQLiteStore) AlarmState() (*models.AlarmRuntimeState, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	var state models.AlarmRuntimeState
	var ringing int
	var nextAlarmAt, ringStartedAt, snoozeUntil sql.NullString
	var lastComputedAt, source string
	err := s.db.QueryRow(
		`SELECT next_alarm_at, is_ringing, ring_started_at, snooze_until, snooze_count, last_computed_at, source, source_date
		 FROM alarm_state WHERE key = 'current'`,
	).Scan(&nextAlarmAt, &ringing, &ringStartedAt, &snoozeUntil, &state.SnoozeCount, &lastComputedAt, &source, &state.SourceDate)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read alarm state: %w", err)
	}

	state.IsRinging = ringing != 0
	state.Source = models.AlarmSource(source)
	if state.NextAlarmAt, err = nullableTime(nextAlarmAt); err != nil {
		return nil, err
	}
	if state.RingStartedAt, err = nullableTime(ringStartedAt); err != nil {
		return nil, err
	}
	if state.SnoozeUntil, err = nullableTime(snoozeUntil); err != nil {
		return nil, err
	}
	if state.LastComputedAt, err = time.Parse(time.RFC3339, lastComputedAt); err != nil {
		return nil, fmt.Errorf("invalid last computed time %q: %w", lastComputedAt, err)
	}

	return &state, nil
}

func (s *SQLiteStore) SaveAlarmState(state models.AlarmRuntimeState) error {
	if err := s.ready(); err != nil {
		return err
	}
	if _, err := s.db.Exec(
		`INSERT INTO alarm_state (key, next_alarm_at, is_ringing, ring_started_at, snooze_until, snooze_count, last_computed_at, source, source_date)
		 VALUES ('current', ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (key) DO UPDATE SET
			next_alarm_at = excluded.next_alarm_at,
			is_ringing = excluded.is_ringing,
			ring_started_at = excluded.ring_started_at,
			snooze_until = excluded.snooze_until,
			snooze_count = excluded.snooze_count,
			last_computed_at = excluded.last_computed_at,
			source = excluded.source,
			source_date = excluded.source_date`,
		timeOrNil(state.NextAlarmAt), boolToInt(state.IsRinging), timeOrNil(state.RingStartedAt),
		timeOrNil(state.SnoozeUntil), state.SnoozeCount, state.LastComputedAt.Format(time.RFC3339),
		string(state.Source), state.SourceDate,
	); err != nil {
		return fmt.Errorf("failed to save alarm state: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ClearAlarmState() error {
	if err := s.ready(); err != nil {
		return err
	}
	if _, err := s.db.Exec(`DELETE FROM alarm_state WHERE key = 'current'`); err != nil {
		return fmt.Errorf("failed to clear alarm state: %w", err)
	}
	return nil
}

func (s *SQLiteStore) AppendEvent(event models.AlarmEvent) error {
	if err := s.ready(); err != nil {
		return err
	}

	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("failed to serialize event payload: %w", err)
	}
	if _, err := s.db.Exec(
		`INSERT INTO events (id, type, occurred_at, payload) VALUES (?, ?, ?, ?)`,
		event.ID, event.Type, event.OccurredAt.Format(time.RFC3339), string(payload),
	); err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Events(limit int) ([]models.AlarmEvent, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	query := `SELECT id, type, occurred_at, payload FROM events ORDER BY occurred_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to read events: %w", err)
	}
	defer rows.Close()

	var events []models.AlarmEvent
	for rows.Next() {
		var event models.AlarmEvent
		var occurredAt, payload string
		if err := rows.Scan(&event.ID, &event.Type, &occurredAt, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		if event.OccurredAt, err = time.Parse(time.RFC3339, occurredAt); err != nil {
			return nil, fmt.Errorf("invalid event time %q: %w", occurredAt, err)
		}
		if err := json.Unmarshal([]byte(payload), &event.Payload); err != nil {
			return nil, fmt.Errorf("invalid event payload: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read events: %w", err)
	}

	return events, nil
}

func (s *SQLiteStore) ConfigPath() string {
	return s.path
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func timeOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339)
}

func nullableTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s.String)
	if err != nil {
		return nil, fmt.Errorf("invalid stored time %q: %w", s.String, err)
	}
	return &t, nil
}
