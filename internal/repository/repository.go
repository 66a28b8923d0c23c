package repository

import (
	"context"
	"database/sql"
	"errors"

	"roastlog/internal/models"
)

// ErrNotFound is returned when a session or event row does not exist.
var ErrNotFound = errors.New("not found")

type Authorization interface {
	Create(ctx context.Context, username, hash string) (int, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

type SessionRepo interface {
	Create(ctx context.Context, s models.RoastSession) (models.RoastSession, error)
	Get(ctx context.Context, id string) (models.RoastSession, error)
	ListByUser(ctx context.Context, userID int) ([]models.RoastSession, error)
	Update(ctx context.Context, s models.RoastSession) error
	Touch(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

type EventRepo interface {
	Append(ctx context.Context, e models.RoastEvent) (models.RoastEvent, error)
	Get(ctx context.Context, roastID, id string) (models.RoastEvent, error)
	Update(ctx context.Context, e models.RoastEvent) error
	Delete(ctx context.Context, roastID, id string) error
	List(ctx context.Context, roastID string) ([]models.RoastEvent, error)
}

type Repository struct {
	SessionRepo SessionRepo
	EventRepo   EventRepo
	Auth        Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		SessionRepo: NewSessionSQLite(db),
		EventRepo:   NewEventSQLite(db),
		Auth:        NewUserRepository(db),
	}
}

// checkAffected maps a zero-row UPDATE/DELETE to ErrNotFound.
func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
