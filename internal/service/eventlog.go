package service

import (
	"context"
	"errors"

	"roastlog/internal/logger"
	"roastlog/internal/models"
	"roastlog/internal/repository"
	"roastlog/internal/roastlog"
)

type EventLogService struct {
	sessions repository.SessionRepo
	events   repository.EventRepo
	rec      Recorder
	log      *logger.Logger
}

func NewEventLogService(sessions repository.SessionRepo, events repository.EventRepo, rec Recorder, log *logger.Logger) *EventLogService {
	if rec == nil {
		rec = noopRecorder{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &EventLogService{sessions: sessions, events: events, rec: rec, log: log}
}

// admit validates in and counts the outcome.
func (s *EventLogService) admit(roastID string, in roastlog.EventInput) (models.RoastEvent, error) {
	e, err := roastlog.NewEvent(roastID, in)
	if err != nil {
		var ve *roastlog.ValidationError
		if errors.As(err, &ve) {
			s.rec.EventRejected(ve.Field)
		}
		return models.RoastEvent{}, err
	}
	return e, nil
}

// Append stores a validated event. Out-of-order offsets are accepted.
func (s *EventLogService) Append(ctx context.Context, userID int, roastID string, in roastlog.EventInput) (models.RoastEvent, error) {
	if _, err := ownedSession(ctx, s.sessions, userID, roastID); err != nil {
		return models.RoastEvent{}, err
	}
	e, err := s.admit(roastID, in)
	if err != nil {
		return models.RoastEvent{}, err
	}
	stored, err := s.events.Append(ctx, e)
	if err != nil {
		return models.RoastEvent{}, err
	}
	s.touch(ctx, roastID)
	s.rec.EventIngested(stored.Kind)
	return stored, nil
}

// Edit replaces the fields of an existing event; ID and CreatedAt survive
// so its tie-break position is unchanged.
func (s *EventLogService) Edit(ctx context.Context, userID int, roastID, eventID string, in roastlog.EventInput) (models.RoastEvent, error) {
	if _, err := ownedSession(ctx, s.sessions, userID, roastID); err != nil {
		return models.RoastEvent{}, err
	}
	cur, err := s.events.Get(ctx, roastID, eventID)
	if err != nil {
		return models.RoastEvent{}, mapEventErr(err)
	}
	e, err := s.admit(roastID, in)
	if err != nil {
		return models.RoastEvent{}, err
	}
	e.ID = cur.ID
	e.CreatedAt = cur.CreatedAt
	if err := s.events.Update(ctx, e); err != nil {
		return models.RoastEvent{}, mapEventErr(err)
	}
	s.touch(ctx, roastID)
	return e, nil
}

func (s *EventLogService) Delete(ctx context.Context, userID int, roastID, eventID string) error {
	if _, err := ownedSession(ctx, s.sessions, userID, roastID); err != nil {
		return err
	}
	if err := s.events.Delete(ctx, roastID, eventID); err != nil {
		return mapEventErr(err)
	}
	s.touch(ctx, roastID)
	return nil
}

// List returns the events ordered by offset, ties in creation order.
func (s *EventLogService) List(ctx context.Context, userID int, roastID string) ([]models.RoastEvent, error) {
	if _, err := ownedSession(ctx, s.sessions, userID, roastID); err != nil {
		return nil, err
	}
	events, err := s.events.List(ctx, roastID)
	if err != nil {
		return nil, err
	}
	out := roastlog.Ordered(events)
	if out == nil {
		out = []models.RoastEvent{}
	}
	return out, nil
}

// touch bumps the session's updatedAt after an event write. The event write
// has already committed, so a failure here is logged rather than returned;
// reporting it would invite a retry that duplicates the event.
func (s *EventLogService) touch(ctx context.Context, roastID string) {
	if err := s.sessions.Touch(ctx, roastID); err != nil {
		s.log.Warnw("roast_touch_failed", "roast_id", roastID, "err", err)
	}
}

func mapEventErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrEventNotFound
	}
	return err
}
