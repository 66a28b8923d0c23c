package service

import (
	"context"
	"errors"

	"roastlog/internal/config"
	"roastlog/internal/logger"
	"roastlog/internal/models"
	"roastlog/internal/repository"
	"roastlog/internal/roastlog"
)

// Domain errors shared by the roast services.
var (
	ErrRoastNotFound  = errors.New("roast not found")
	ErrEventNotFound  = errors.New("roast event not found")
	ErrInvalidSession = errors.New("invalid roast session")
)

type Authorization interface {
	SignUp(ctx context.Context, username, password string) (int, error)
	GenerateToken(ctx context.Context, username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Sessions manages roast sessions owned by a user.
type Sessions interface {
	Create(ctx context.Context, userID int, in SessionInput) (models.RoastSession, error)
	Get(ctx context.Context, userID int, id string) (models.RoastSession, error)
	List(ctx context.Context, userID int) ([]models.RoastSession, error)
	Update(ctx context.Context, userID int, id string, p SessionPatch) (models.RoastSession, error)
	Delete(ctx context.Context, userID int, id string) error
}

// EventLog validates and stores the events of one roast.
type EventLog interface {
	Append(ctx context.Context, userID int, roastID string, in roastlog.EventInput) (models.RoastEvent, error)
	Edit(ctx context.Context, userID int, roastID, eventID string, in roastlog.EventInput) (models.RoastEvent, error)
	Delete(ctx context.Context, userID int, roastID, eventID string) error
	List(ctx context.Context, userID int, roastID string) ([]models.RoastEvent, error)
}

// Analysis derives summaries and curves from a stored roast.
type Analysis interface {
	Summary(ctx context.Context, userID int, roastID string) (roastlog.Summary, error)
	Curve(ctx context.Context, userID int, roastID string, q CurveQuery) (CurveView, error)
	Report(ctx context.Context, userID int, roastID string, q CurveQuery) (Report, error)
}

// DemoRoaster feeds a synthetic roast until done or ctx is canceled.
type DemoRoaster interface {
	Run(ctx context.Context)
}

// Recorder receives ingestion outcomes; *metrics.Metrics implements it.
type Recorder interface {
	EventIngested(kind models.EventKind)
	EventRejected(field string)
}

type noopRecorder struct{}

func (noopRecorder) EventIngested(models.EventKind) {}
func (noopRecorder) EventRejected(string)           {}

type Service struct {
	Authorization
	Sessions
	EventLog
	Analysis
	DemoRoaster
}

// NewService wires the repository layer into concrete services. rec and log
// may be nil.
func NewService(repos *repository.Repository, cfg *config.Config, rec Recorder, log *logger.Logger) *Service {
	if rec == nil {
		rec = noopRecorder{}
	}
	if log == nil {
		log = logger.Nop()
	}
	sessions := NewSessionService(repos.SessionRepo)
	events := NewEventLogService(repos.SessionRepo, repos.EventRepo, rec, log)
	return &Service{
		Authorization: NewAuthService(repos.Auth, cfg.Auth),
		Sessions:      sessions,
		EventLog:      events,
		Analysis:      NewAnalysisService(repos.SessionRepo, repos.EventRepo),
		DemoRoaster:   NewDemoRoaster(cfg.Demo, repos.Auth, sessions, events, log),
	}
}

// ownedSession loads roast id and hides sessions of other users behind
// ErrRoastNotFound.
func ownedSession(ctx context.Context, repo repository.SessionRepo, userID int, id string) (models.RoastSession, error) {
	s, err := repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.RoastSession{}, ErrRoastNotFound
		}
		return models.RoastSession{}, err
	}
	if s.UserID != userID {
		return models.RoastSession{}, ErrRoastNotFound
	}
	return s, nil
}
