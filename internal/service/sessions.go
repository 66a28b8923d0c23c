package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"roastlog/internal/models"
	"roastlog/internal/repository"
)

// SessionInput carries the descriptive fields of a new roast.
type SessionInput struct {
	BeanProfile   string
	RoastLevel    string
	Machine       string
	WeightBeforeG *float64
	WeightAfterG  *float64
}

// SessionPatch updates only the non-nil fields.
type SessionPatch struct {
	BeanProfile   *string
	RoastLevel    *string
	Machine       *string
	WeightBeforeG *float64
	WeightAfterG  *float64
}

type SessionService struct {
	repo repository.SessionRepo
}

func NewSessionService(repo repository.SessionRepo) *SessionService {
	return &SessionService{repo: repo}
}

func (s *SessionService) Create(ctx context.Context, userID int, in SessionInput) (models.RoastSession, error) {
	if err := checkWeights(in.WeightBeforeG, in.WeightAfterG); err != nil {
		return models.RoastSession{}, err
	}
	return s.repo.Create(ctx, models.RoastSession{
		UserID:        userID,
		BeanProfile:   strings.TrimSpace(in.BeanProfile),
		RoastLevel:    strings.TrimSpace(in.RoastLevel),
		Machine:       strings.TrimSpace(in.Machine),
		WeightBeforeG: in.WeightBeforeG,
		WeightAfterG:  in.WeightAfterG,
	})
}

func (s *SessionService) Get(ctx context.Context, userID int, id string) (models.RoastSession, error) {
	return ownedSession(ctx, s.repo, userID, id)
}

func (s *SessionService) List(ctx context.Context, userID int) ([]models.RoastSession, error) {
	out, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.RoastSession{}
	}
	return out, nil
}

// Update applies p and returns the stored session with its new updated_at.
func (s *SessionService) Update(ctx context.Context, userID int, id string, p SessionPatch) (models.RoastSession, error) {
	cur, err := ownedSession(ctx, s.repo, userID, id)
	if err != nil {
		return models.RoastSession{}, err
	}
	if p.BeanProfile != nil {
		cur.BeanProfile = strings.TrimSpace(*p.BeanProfile)
	}
	if p.RoastLevel != nil {
		cur.RoastLevel = strings.TrimSpace(*p.RoastLevel)
	}
	if p.Machine != nil {
		cur.Machine = strings.TrimSpace(*p.Machine)
	}
	if p.WeightBeforeG != nil {
		cur.WeightBeforeG = p.WeightBeforeG
	}
	if p.WeightAfterG != nil {
		cur.WeightAfterG = p.WeightAfterG
	}
	if err := checkWeights(cur.WeightBeforeG, cur.WeightAfterG); err != nil {
		return models.RoastSession{}, err
	}
	if err := s.repo.Update(ctx, cur); err != nil {
		return models.RoastSession{}, mapSessionErr(err)
	}
	return ownedSession(ctx, s.repo, userID, id)
}

// Delete removes the session; its events go with it.
func (s *SessionService) Delete(ctx context.Context, userID int, id string) error {
	if _, err := ownedSession(ctx, s.repo, userID, id); err != nil {
		return err
	}
	return mapSessionErr(s.repo.Delete(ctx, id))
}

func checkWeights(before, after *float64) error {
	for _, w := range []struct {
		name string
		v    *float64
	}{{"weight_before_g", before}, {"weight_after_g", after}} {
		if w.v == nil {
			continue
		}
		if math.IsNaN(*w.v) || math.IsInf(*w.v, 0) || *w.v < 0 {
			return fmt.Errorf("%w: %s must be a non-negative number", ErrInvalidSession, w.name)
		}
	}
	return nil
}

func mapSessionErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrRoastNotFound
	}
	return err
}
