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

type EventSQLite struct {
	db *sql.DB
}

func NewEventSQLite(db *sql.DB) *EventSQLite { return &EventSQLite{db: db} }

var _ EventRepo = (*EventSQLite)(nil)

const (
	eventColumns = `id, roast_id, kind, time_offset_s, temperature_f, fan_level, heat_level, note, created_at`

	insertEventSQL = `INSERT INTO roast_events (` + eventColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	selectEventSQL = `SELECT ` + eventColumns + ` FROM roast_events WHERE roast_id = ? AND id = ?`

	// rowid keeps insertion order for events sharing an offset and a created_at.
	listEventsSQL = `SELECT ` + eventColumns + ` FROM roast_events WHERE roast_id = ? ORDER BY time_offset_s ASC, created_at ASC, rowid ASC`

	updateEventSQL = `
		UPDATE roast_events
		SET kind = ?, time_offset_s = ?, temperature_f = ?, fan_level = ?, heat_level = ?, note = ?
		WHERE roast_id = ? AND id = ?
	`

	deleteEventSQL = `DELETE FROM roast_events WHERE roast_id = ? AND id = ?`
)

// Append inserts e. If ID or CreatedAt are empty, they're set.
func (r *EventSQLite) Append(ctx context.Context, e models.RoastEvent) (models.RoastEvent, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	} else {
		e.CreatedAt = e.CreatedAt.UTC()
	}

	_, err := r.db.ExecContext(ctx, insertEventSQL,
		e.ID,
		e.RoastID,
		string(e.Kind),
		e.TimeOffsetSeconds,
		nullable(e.TemperatureF),
		nullable(e.FanLevel),
		nullable(e.HeatLevel),
		nullable(e.Note),
		e.CreatedAt,
	)
	if err != nil {
		return models.RoastEvent{}, fmt.Errorf("insert roast event: %w", err)
	}
	return e, nil
}

func scanEvent(row rowScanner) (models.RoastEvent, error) {
	var (
		e         models.RoastEvent
		kind      string
		temp      sql.NullFloat64
		fan, heat sql.NullInt64
		note      sql.NullString
	)
	if err := row.Scan(&e.ID, &e.RoastID, &kind, &e.TimeOffsetSeconds, &temp, &fan, &heat, &note, &e.CreatedAt); err != nil {
		return models.RoastEvent{}, err
	}
	e.Kind = models.EventKind(kind)
	e.TemperatureF = nullFloat(temp)
	e.FanLevel = nullInt(fan)
	e.HeatLevel = nullInt(heat)
	e.Note = nullString(note)
	e.CreatedAt = e.CreatedAt.UTC()
	return e, nil
}

func (r *EventSQLite) Get(ctx context.Context, roastID, id string) (models.RoastEvent, error) {
	e, err := scanEvent(r.db.QueryRowContext(ctx, selectEventSQL, roastID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.RoastEvent{}, ErrNotFound
		}
		return models.RoastEvent{}, fmt.Errorf("select roast event %q: %w", id, err)
	}
	return e, nil
}

// Update rewrites the editable fields; id, roast and created_at never change.
func (r *EventSQLite) Update(ctx context.Context, e models.RoastEvent) error {
	res, err := r.db.ExecContext(ctx, updateEventSQL,
		string(e.Kind),
		e.TimeOffsetSeconds,
		nullable(e.TemperatureF),
		nullable(e.FanLevel),
		nullable(e.HeatLevel),
		nullable(e.Note),
		e.RoastID,
		e.ID,
	)
	if err != nil {
		return fmt.Errorf("update roast event %q: %w", e.ID, err)
	}
	return checkAffected(res)
}

func (r *EventSQLite) Delete(ctx context.Context, roastID, id string) error {
	res, err := r.db.ExecContext(ctx, deleteEventSQL, roastID, id)
	if err != nil {
		return fmt.Errorf("delete roast event %q: %w", id, err)
	}
	return checkAffected(res)
}

// List returns a roast's events ordered by offset, then creation.
func (r *EventSQLite) List(ctx context.Context, roastID string) ([]models.RoastEvent, error) {
	rows, err := r.db.QueryContext(ctx, listEventsSQL, roastID)
	if err != nil {
		return nil, fmt.Errorf("list roast events: %w", err)
	}
	defer rows.Close()

	out := make([]models.RoastEvent, 0, 64)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan roast event: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
