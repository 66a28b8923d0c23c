package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"roastlog/internal/models"
	"roastlog/internal/repository"
)

// memSessionRepo is an in-memory repository.SessionRepo.
type memSessionRepo struct {
	mu       sync.Mutex
	rows     map[string]models.RoastSession
	seq      int
	clock    time.Time
	touches  int
	getErr   error
	touchErr error
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{
		rows:  map[string]models.RoastSession{},
		clock: time.Date(2025, time.May, 10, 9, 0, 0, 0, time.UTC),
	}
}

func (r *memSessionRepo) tick() time.Time {
	r.clock = r.clock.Add(time.Second)
	return r.clock
}

func (r *memSessionRepo) Create(_ context.Context, s models.RoastSession) (models.RoastSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	if s.ID == "" {
		s.ID = fmt.Sprintf("roast-%d", r.seq)
	}
	s.CreatedAt = r.tick()
	s.UpdatedAt = s.CreatedAt
	r.rows[s.ID] = s
	return s, nil
}

func (r *memSessionRepo) Get(_ context.Context, id string) (models.RoastSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return models.RoastSession{}, r.getErr
	}
	s, ok := r.rows[id]
	if !ok {
		return models.RoastSession{}, repository.ErrNotFound
	}
	return s, nil
}

func (r *memSessionRepo) ListByUser(_ context.Context, userID int) ([]models.RoastSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.RoastSession
	for _, s := range r.rows {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memSessionRepo) Update(_ context.Context, s models.RoastSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.rows[s.ID]
	if !ok {
		return repository.ErrNotFound
	}
	s.CreatedAt = cur.CreatedAt
	s.UpdatedAt = r.tick()
	r.rows[s.ID] = s
	return nil
}

func (r *memSessionRepo) Touch(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.touchErr != nil {
		return r.touchErr
	}
	s, ok := r.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	s.UpdatedAt = r.tick()
	r.rows[id] = s
	r.touches++
	return nil
}

func (r *memSessionRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

// memEventRepo keeps events in insertion order, which is also the order
// List returns them in; callers must sort.
type memEventRepo struct {
	mu        sync.Mutex
	rows      []models.RoastEvent
	seq       int
	appendErr error
}

func (r *memEventRepo) Append(_ context.Context, e models.RoastEvent) (models.RoastEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.appendErr != nil {
		return models.RoastEvent{}, r.appendErr
	}
	r.seq++
	e.ID = fmt.Sprintf("ev-%d", r.seq)
	e.CreatedAt = time.Date(2025, time.May, 10, 9, 0, r.seq, 0, time.UTC)
	r.rows = append(r.rows, e)
	return e, nil
}

func (r *memEventRepo) find(roastID, id string) int {
	for i, e := range r.rows {
		if e.RoastID == roastID && e.ID == id {
			return i
		}
	}
	return -1
}

func (r *memEventRepo) Get(_ context.Context, roastID, id string) (models.RoastEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.find(roastID, id)
	if i < 0 {
		return models.RoastEvent{}, repository.ErrNotFound
	}
	return r.rows[i], nil
}

func (r *memEventRepo) Update(_ context.Context, e models.RoastEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.find(e.RoastID, e.ID)
	if i < 0 {
		return repository.ErrNotFound
	}
	r.rows[i] = e
	return nil
}

func (r *memEventRepo) Delete(_ context.Context, roastID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.find(roastID, id)
	if i < 0 {
		return repository.ErrNotFound
	}
	r.rows = append(r.rows[:i], r.rows[i+1:]...)
	return nil
}

func (r *memEventRepo) List(_ context.Context, roastID string) ([]models.RoastEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.RoastEvent
	for _, e := range r.rows {
		if e.RoastID == roastID {
			out = append(out, e)
		}
	}
	return out, nil
}

// countingRecorder tallies ingestion outcomes.
type countingRecorder struct {
	mu       sync.Mutex
	ingested map[models.EventKind]int
	rejected map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{ingested: map[models.EventKind]int{}, rejected: map[string]int{}}
}

func (c *countingRecorder) EventIngested(kind models.EventKind) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ingested[kind]++
}

func (c *countingRecorder) EventRejected(field string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rejected[field]++
}

var errBoom = errors.New("boom")

func f64(v float64) *float64 { return &v }
func iptr(v int) *int        { return &v }
