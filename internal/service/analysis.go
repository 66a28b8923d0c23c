package service

import (
	"context"
	"slices"

	"roastlog/internal/models"
	"roastlog/internal/repository"
	"roastlog/internal/roastlog"
)

// CurveQuery selects the marker mode and whether rate of rise is included.
type CurveQuery struct {
	Mode    roastlog.Mode
	WithROR bool
}

// CurveView is a materialized curve ready for JSON.
type CurveView struct {
	Mode    string              `json:"mode"`
	Points  []roastlog.Point    `json:"points"`
	Markers []roastlog.Marker   `json:"markers"`
	ROR     []roastlog.RORPoint `json:"ror,omitempty"`
}

// Report is everything a detail view or live stream shows for one roast.
type Report struct {
	Session models.RoastSession `json:"session"`
	Summary roastlog.Summary    `json:"summary"`
	Curve   CurveView           `json:"curve"`
}

type AnalysisService struct {
	sessions repository.SessionRepo
	events   repository.EventRepo
}

func NewAnalysisService(sessions repository.SessionRepo, events repository.EventRepo) *AnalysisService {
	return &AnalysisService{sessions: sessions, events: events}
}

func (s *AnalysisService) Summary(ctx context.Context, userID int, roastID string) (roastlog.Summary, error) {
	session, events, err := s.load(ctx, userID, roastID)
	if err != nil {
		return roastlog.Summary{}, err
	}
	return roastlog.Summarize(events, session), nil
}

func (s *AnalysisService) Curve(ctx context.Context, userID int, roastID string, q CurveQuery) (CurveView, error) {
	_, events, err := s.load(ctx, userID, roastID)
	if err != nil {
		return CurveView{}, err
	}
	return BuildCurve(events, q), nil
}

func (s *AnalysisService) Report(ctx context.Context, userID int, roastID string, q CurveQuery) (Report, error) {
	session, events, err := s.load(ctx, userID, roastID)
	if err != nil {
		return Report{}, err
	}
	return Report{
		Session: session,
		Summary: roastlog.Summarize(events, session),
		Curve:   BuildCurve(events, q),
	}, nil
}

// BuildCurve materializes the lazy curve sequences of events.
func BuildCurve(events []models.RoastEvent, q CurveQuery) CurveView {
	c := roastlog.ResampleForCurve(events, q.Mode)
	v := CurveView{
		Mode:    q.Mode.String(),
		Points:  nonNil(slices.Collect(c.Points)),
		Markers: nonNil(slices.Collect(c.Markers)),
	}
	if q.WithROR {
		v.ROR = nonNil(slices.Collect(roastlog.RateOfRise(c.Points)))
	}
	return v
}

func (s *AnalysisService) load(ctx context.Context, userID int, roastID string) (models.RoastSession, []models.RoastEvent, error) {
	session, err := ownedSession(ctx, s.sessions, userID, roastID)
	if err != nil {
		return models.RoastSession{}, nil, err
	}
	events, err := s.events.List(ctx, roastID)
	if err != nil {
		return models.RoastSession{}, nil, err
	}
	return session, events, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
