// Package sqlite provides a SQLite-backed rooms storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sqlitemigrate "github.com/louisbranch/gather.space/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/gather.space/internal/rooms/admission"
	"github.com/louisbranch/gather.space/internal/rooms/domain"
	"github.com/louisbranch/gather.space/internal/rooms/storage"
	"github.com/louisbranch/gather.space/internal/rooms/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store persists rooms, grants, and recording-signal attempts in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

func toNullMillis(value time.Time) any {
	if value.IsZero() {
		return nil
	}
	return toMillis(value)
}

func fromNullMillis(value sql.NullInt64) time.Time {
	if !value.Valid {
		return time.Time{}
	}
	return fromMillis(value.Int64)
}

// Open opens a SQLite rooms store and applies embedded migrations.
//
// Transactions take the write lock immediately so the admission count and
// the room insert form one serialized span across concurrent creators.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL&_txlock=immediate"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

const currentSlotCountSQL = `SELECT COUNT(*) FROM rooms
 WHERE (scheduled_start IS NOT NULL AND scheduled_end IS NOT NULL
        AND scheduled_start <= ? AND scheduled_end >= ?)
    OR (started IS NOT NULL AND ended IS NULL AND started >= ?)`

// CreateRoomInSlot counts current slot occupants, admits the candidate, and
// inserts the room with its owner grants inside one write transaction.
func (s *Store) CreateRoomInSlot(ctx context.Context, room domain.Room, ownerGrants []domain.Capability, policy admission.Policy, now time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(room.ID) == "" {
		return fmt.Errorf("room id is required")
	}
	if strings.TrimSpace(room.Slug) == "" {
		return fmt.Errorf("room slug is required")
	}
	if strings.TrimSpace(room.OwnerID) == "" {
		return fmt.Errorf("room owner is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create room: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	policy = policy.Normalized()
	nowMillis := toMillis(now)
	graceStart := toMillis(now.Add(-policy.LiveGrace))
	var current int
	if err := tx.QueryRowContext(ctx, currentSlotCountSQL, nowMillis, nowMillis, graceStart).Scan(&current); err != nil {
		return fmt.Errorf("count current slots: %w", err)
	}
	if err := policy.Admit(current); err != nil {
		return err
	}

	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO rooms (id, slug, description, owner_id, is_open, is_recording,
		                    scheduled_start, scheduled_end, started, ended,
		                    recording_target, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		room.ID,
		room.Slug,
		room.Description,
		room.OwnerID,
		boolToInt(room.IsOpen),
		boolToInt(room.IsRecording),
		toNullMillis(room.ScheduledStart),
		toNullMillis(room.ScheduledEnd),
		toNullMillis(room.Started),
		toNullMillis(room.Ended),
		room.RecordingTarget,
		toMillis(room.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrSlugTaken
		}
		return fmt.Errorf("insert room: %w", err)
	}

	for _, capability := range ownerGrants {
		if _, err := tx.ExecContext(
			ctx,
			`INSERT OR IGNORE INTO grants (room_id, subject_id, group_id, capability, created_at)
			 VALUES (?, ?, '', ?, ?)`,
			room.ID,
			room.OwnerID,
			string(capability),
			toMillis(now),
		); err != nil {
			return fmt.Errorf("insert owner grant: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create room: %w", err)
	}
	return nil
}

// GetRoomBySlug returns the room with the given slug.
func (s *Store) GetRoomBySlug(ctx context.Context, slug string) (domain.Room, error) {
	if err := ctx.Err(); err != nil {
		return domain.Room{}, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.Room{}, fmt.Errorf("storage is not configured")
	}
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return domain.Room{}, fmt.Errorf("room slug is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, slug, description, owner_id, is_open, is_recording,
		        scheduled_start, scheduled_end, started, ended,
		        recording_target, created_at
		 FROM rooms
		 WHERE slug = ?`,
		slug,
	)
	return scanRoom(row)
}

// UpdateRoom persists the room's mutable fields. The slug is immutable and
// is not written.
func (s *Store) UpdateRoom(ctx context.Context, room domain.Room) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(room.ID) == "" {
		return fmt.Errorf("room id is required")
	}

	result, err := s.sqlDB.ExecContext(
		ctx,
		`UPDATE rooms SET
		   description = ?,
		   owner_id = ?,
		   is_open = ?,
		   is_recording = ?,
		   scheduled_start = ?,
		   scheduled_end = ?,
		   started = ?,
		   ended = ?,
		   recording_target = ?
		 WHERE id = ?`,
		room.Description,
		room.OwnerID,
		boolToInt(room.IsOpen),
		boolToInt(room.IsRecording),
		toNullMillis(room.ScheduledStart),
		toNullMillis(room.ScheduledEnd),
		toNullMillis(room.Started),
		toNullMillis(room.Ended),
		room.RecordingTarget,
		room.ID,
	)
	if err != nil {
		return fmt.Errorf("update room: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update room rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// CountCurrentSlots returns how many rooms occupy a slot at now.
func (s *Store) CountCurrentSlots(ctx context.Context, policy admission.Policy, now time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}

	policy = policy.Normalized()
	nowMillis := toMillis(now)
	graceStart := toMillis(now.Add(-policy.LiveGrace))
	var current int
	err := s.sqlDB.QueryRowContext(ctx, currentSlotCountSQL, nowMillis, nowMillis, graceStart).Scan(&current)
	if err != nil {
		return 0, fmt.Errorf("count current slots: %w", err)
	}
	return current, nil
}

// PutGrant upserts one capability grant. Grants are additive; re-granting is
// a no-op.
func (s *Store) PutGrant(ctx context.Context, grant storage.Grant) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	subjectID := strings.TrimSpace(grant.SubjectID)
	groupID := strings.TrimSpace(grant.GroupID)
	if (subjectID == "") == (groupID == "") {
		return fmt.Errorf("exactly one of subject id and group id is required")
	}
	if !grant.Capability.Valid() {
		return fmt.Errorf("capability %q is not valid", grant.Capability)
	}
	if strings.TrimSpace(grant.RoomID) == "" {
		return fmt.Errorf("room id is required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT OR IGNORE INTO grants (room_id, subject_id, group_id, capability, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		grant.RoomID,
		subjectID,
		groupID,
		string(grant.Capability),
		toMillis(grant.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("put grant: %w", err)
	}
	return nil
}

// HasGrant reports whether the subject holds the capability on the room,
// directly or through any of the given groups.
func (s *Store) HasGrant(ctx context.Context, subjectID string, groups []string, capability domain.Capability, roomID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if s == nil || s.sqlDB == nil {
		return false, fmt.Errorf("storage is not configured")
	}
	subjectID = strings.TrimSpace(subjectID)
	roomID = strings.TrimSpace(roomID)
	if roomID == "" {
		return false, fmt.Errorf("room id is required")
	}

	query := `SELECT 1 FROM grants WHERE room_id = ? AND capability = ? AND (subject_id = ?`
	args := []any{roomID, string(capability), subjectID}
	if len(groups) > 0 {
		query += ` OR group_id IN (?` + strings.Repeat(",?", len(groups)-1) + `)`
		for _, group := range groups {
			args = append(args, group)
		}
	}
	query += `) LIMIT 1`

	var found int
	err := s.sqlDB.QueryRowContext(ctx, query, args...).Scan(&found)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check grant: %w", err)
	}
	return true, nil
}

// RecordSignalAttempt appends one recording-signal delivery outcome.
func (s *Store) RecordSignalAttempt(ctx context.Context, attempt storage.SignalAttempt) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(attempt.RoomID) == "" {
		return fmt.Errorf("room id is required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO recording_signal_attempts (room_id, action, target, outcome, attempt, last_error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		attempt.RoomID,
		attempt.Action,
		attempt.Target,
		attempt.Outcome,
		attempt.Attempt,
		attempt.LastError,
		toMillis(attempt.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("record signal attempt: %w", err)
	}
	return nil
}

// ListSignalAttempts returns the most recent signal attempts for a room.
func (s *Store) ListSignalAttempts(ctx context.Context, roomID string, limit int) ([]storage.SignalAttempt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	roomID = strings.TrimSpace(roomID)
	if roomID == "" {
		return nil, fmt.Errorf("room id is required")
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, room_id, action, target, outcome, attempt, last_error, created_at
		 FROM recording_signal_attempts
		 WHERE room_id = ?
		 ORDER BY id DESC
		 LIMIT ?`,
		roomID,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list signal attempts: %w", err)
	}
	defer rows.Close()

	var attempts []storage.SignalAttempt
	for rows.Next() {
		var (
			attempt   storage.SignalAttempt
			createdAt int64
		)
		if err := rows.Scan(
			&attempt.ID,
			&attempt.RoomID,
			&attempt.Action,
			&attempt.Target,
			&attempt.Outcome,
			&attempt.Attempt,
			&attempt.LastError,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("list signal attempts: %w", err)
		}
		attempt.CreatedAt = fromMillis(createdAt)
		attempts = append(attempts, attempt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list signal attempts: %w", err)
	}
	return attempts, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoom(row rowScanner) (domain.Room, error) {
	var (
		room           domain.Room
		isOpen         int
		isRecording    int
		scheduledStart sql.NullInt64
		scheduledEnd   sql.NullInt64
		started        sql.NullInt64
		ended          sql.NullInt64
		createdAt      int64
	)
	err := row.Scan(
		&room.ID,
		&room.Slug,
		&room.Description,
		&room.OwnerID,
		&isOpen,
		&isRecording,
		&scheduledStart,
		&scheduledEnd,
		&started,
		&ended,
		&room.RecordingTarget,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Room{}, storage.ErrNotFound
		}
		return domain.Room{}, fmt.Errorf("get room: %w", err)
	}
	room.IsOpen = isOpen != 0
	room.IsRecording = isRecording != 0
	room.ScheduledStart = fromNullMillis(scheduledStart)
	room.ScheduledEnd = fromNullMillis(scheduledEnd)
	room.Started = fromNullMillis(started)
	room.Ended = fromNullMillis(ended)
	room.CreatedAt = fromMillis(createdAt)
	return room, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

var _ storage.RoomStore = (*Store)(nil)
var _ storage.GrantStore = (*Store)(nil)
var _ storage.SignalStore = (*Store)(nil)
