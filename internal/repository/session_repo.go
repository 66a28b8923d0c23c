package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"roastlog/internal/models"

	"github.com/google/uuid"
)

type SessionSQLite struct {
	db  *sql.DB
	now func() time.Time
}

func NewSessionSQLite(db *sql.DB) *SessionSQLite {
	return &SessionSQLite{db: db, now: func() time.Time { return time.Now().UTC() }}
}

var _ SessionRepo = (*SessionSQLite)(nil)

const (
	sessionColumns = `id, user_id, bean_profile, roast_level, machine, weight_before_g, weight_after_g, created_at, updated_at`

	insertSessionSQL = `INSERT INTO roast_sessions (` + sessionColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	selectSessionSQL = `SELECT ` + sessionColumns + ` FROM roast_sessions WHERE id = ?`

	selectSessionsByUserSQL = `SELECT ` + sessionColumns + ` FROM roast_sessions WHERE user_id = ? ORDER BY created_at DESC`

	updateSessionSQL = `
		UPDATE roast_sessions
		SET bean_profile = ?, roast_level = ?, machine = ?, weight_before_g = ?, weight_after_g = ?, updated_at = ?
		WHERE id = ?
	`

	touchSessionSQL = `UPDATE roast_sessions SET updated_at = ? WHERE id = ?`

	deleteSessionSQL = `DELETE FROM roast_sessions WHERE id = ?`
)

// Create inserts s, assigning ID and timestamps when empty.
func (r *SessionSQLite) Create(ctx context.Context, s models.RoastSession) (models.RoastSession, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	now := r.now()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = s.CreatedAt
	}
	s.CreatedAt = s.CreatedAt.UTC()
	s.UpdatedAt = s.UpdatedAt.UTC()

	_, err := r.db.ExecContext(ctx, insertSessionSQL,
		s.ID,
		s.UserID,
		s.BeanProfile,
		s.RoastLevel,
		s.Machine,
		nullable(s.WeightBeforeG),
		nullable(s.WeightAfterG),
		s.CreatedAt,
		s.UpdatedAt,
	)
	if err != nil {
		return models.RoastSession{}, fmt.Errorf("insert roast session: %w", err)
	}
	return s, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (models.RoastSession, error) {
	var (
		s             models.RoastSession
		before, after sql.NullFloat64
	)
	if err := row.Scan(
		&s.ID,
		&s.UserID,
		&s.BeanProfile,
		&s.RoastLevel,
		&s.Machine,
		&before,
		&after,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		return models.RoastSession{}, err
	}
	s.WeightBeforeG = nullFloat(before)
	s.WeightAfterG = nullFloat(after)
	s.CreatedAt = s.CreatedAt.UTC()
	s.UpdatedAt = s.UpdatedAt.UTC()
	return s, nil
}

// Get returns ErrNotFound when no session has the id.
func (r *SessionSQLite) Get(ctx context.Context, id string) (models.RoastSession, error) {
	s, err := scanSession(r.db.QueryRowContext(ctx, selectSessionSQL, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.RoastSession{}, ErrNotFound
		}
		return models.RoastSession{}, fmt.Errorf("select roast session %q: %w", id, err)
	}
	return s, nil
}

// ListByUser returns the user's sessions, newest first.
func (r *SessionSQLite) ListByUser(ctx context.Context, userID int) ([]models.RoastSession, error) {
	rows, err := r.db.QueryContext(ctx, selectSessionsByUserSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("list roast sessions: %w", err)
	}
	defer rows.Close()

	out := make([]models.RoastSession, 0, 16)
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan roast session: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update overwrites the descriptive fields and weights and bumps updated_at.
func (r *SessionSQLite) Update(ctx context.Context, s models.RoastSession) error {
	res, err := r.db.ExecContext(ctx, updateSessionSQL,
		s.BeanProfile,
		s.RoastLevel,
		s.Machine,
		nullable(s.WeightBeforeG),
		nullable(s.WeightAfterG),
		r.now(),
		s.ID,
	)
	if err != nil {
		return fmt.Errorf("update roast session %q: %w", s.ID, err)
	}
	return checkAffected(res)
}

// Touch bumps updated_at; called whenever the event log changes.
func (r *SessionSQLite) Touch(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, touchSessionSQL, r.now(), id)
	if err != nil {
		return fmt.Errorf("touch roast session %q: %w", id, err)
	}
	return checkAffected(res)
}

// Delete removes the session; its events go with it (ON DELETE CASCADE).
func (r *SessionSQLite) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, deleteSessionSQL, id)
	if err != nil {
		return fmt.Errorf("delete roast session %q: %w", id, err)
	}
	return checkAffected(res)
}

// nullable unwraps an optional field into a driver value; nil becomes NULL.
func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func nullInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
