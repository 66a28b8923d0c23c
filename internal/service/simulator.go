package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"roastlog/internal/config"
	"roastlog/internal/logger"
	"roastlog/internal/models"
	"roastlog/internal/repository"
	"roastlog/internal/roastlog"

	"github.com/google/uuid"
)

// ----------- Demo roast profile -----------
const (
	DemoBatchG     = 250.0
	DemoRoastedG   = 212.5
	demoBeanLabel  = "Demo Ethiopia Guji"
	demoRoastLevel = "city+"
	demoMachine    = "demo-roaster"
)

// profilePoint is a bean-probe keyframe; readings between keyframes are
// linear.
type profilePoint struct {
	at    int
	tempF float64
}

var demoProfile = []profilePoint{
	{0, 400}, {60, 210}, {90, 200}, {270, 300}, {480, 390}, {600, 420}, {610, 380}, {700, 150},
}

// scriptStep is a control change or milestone logged at a fixed offset.
type scriptStep struct {
	at   int
	kind models.EventKind
	fan  *int
	heat *int
	note string
}

func level(v int) *int { return &v }

var demoScript = []scriptStep{
	{at: 0, kind: models.KindSet, fan: level(3), heat: level(8), note: "charge"},
	{at: 270, kind: models.KindDryEnd},
	{at: 300, kind: models.KindSet, fan: level(5), heat: level(6)},
	{at: 480, kind: models.KindFirstCrack},
	{at: 500, kind: models.KindSet, heat: level(4)},
	{at: 600, kind: models.KindDrop},
	{at: 610, kind: models.KindCool, fan: level(9), heat: level(0)},
	{at: 700, kind: models.KindEnd},
}

// DemoRoasterService plays demoScript into a fresh session, one tick at a
// time, through the same validated append path clients use.
type DemoRoasterService struct {
	cfg      config.DemoConfig
	users    repository.Authorization
	sessions Sessions
	events   EventLog
	log      *logger.Logger
}

func NewDemoRoaster(cfg config.DemoConfig, users repository.Authorization, sessions Sessions, events EventLog, log *logger.Logger) *DemoRoasterService {
	return &DemoRoasterService{cfg: cfg, users: users, sessions: sessions, events: events, log: log}
}

// demoRun is the progress of one demo roast.
type demoRun struct {
	userID  int
	roastID string
	clock   int
	next    int
	lastAt  int
}

// Run ticks at cfg.Tick until the roast ends or ctx is canceled. It is a
// no-op when demo mode is disabled.
func (s *DemoRoasterService) Run(ctx context.Context) {
	if !s.cfg.Enabled {
		return
	}
	run, err := s.start(ctx)
	if err != nil {
		s.log.Errorw("demo_roast_start_failed", "err", err)
		return
	}
	s.log.Infow("demo_roast_started", "roast_id", run.roastID, "user", s.cfg.Username)

	t := time.NewTicker(s.cfg.Tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			done, err := s.step(ctx, run)
			if err != nil {
				// retried on the next tick
				s.log.Warnw("demo_roast_step_failed", "roast_id", run.roastID, "offset_s", run.clock, "err", err)
				continue
			}
			if done {
				s.finish(ctx, run)
				return
			}
		}
	}
}

// start makes sure the demo user exists and opens a new session for it.
func (s *DemoRoasterService) start(ctx context.Context) (*demoRun, error) {
	userID, err := s.ensureUser(ctx)
	if err != nil {
		return nil, err
	}
	batch := DemoBatchG
	session, err := s.sessions.Create(ctx, userID, SessionInput{
		BeanProfile:   demoBeanLabel,
		RoastLevel:    demoRoastLevel,
		Machine:       demoMachine,
		WeightBeforeG: &batch,
	})
	if err != nil {
		return nil, fmt.Errorf("create demo session: %w", err)
	}
	return &demoRun{userID: userID, roastID: session.ID, lastAt: -1}, nil
}

func (s *DemoRoasterService) ensureUser(ctx context.Context) (int, error) {
	u, err := s.users.GetByUsername(ctx, s.cfg.Username)
	if err != nil {
		return 0, err
	}
	if u != nil {
		return u.ID, nil
	}
	// nobody signs in as the demo user; the password is thrown away
	hash, err := hashPassword(uuid.NewString())
	if err != nil {
		return 0, err
	}
	return s.users.Create(ctx, s.cfg.Username, hash)
}

// step logs every scripted event due by the roast clock plus one
// temperature sample, then advances the clock by cfg.Speed roast seconds.
// It reports true once END has been logged.
func (s *DemoRoasterService) step(ctx context.Context, r *demoRun) (bool, error) {
	for r.next < len(demoScript) && demoScript[r.next].at <= r.clock {
		st := demoScript[r.next]
		if _, err := s.events.Append(ctx, r.userID, r.roastID, scriptInput(st)); err != nil {
			return false, err
		}
		r.lastAt = st.at
		r.next++
	}
	if r.next == len(demoScript) {
		return true, nil
	}
	if r.clock != r.lastAt {
		at := r.clock
		temp := profileTemp(at)
		in := roastlog.EventInput{Kind: string(models.KindSet), TimeOffsetSeconds: &at, TemperatureF: &temp}
		if _, err := s.events.Append(ctx, r.userID, r.roastID, in); err != nil {
			return false, err
		}
	}
	r.clock += s.cfg.Speed
	return false, nil
}

// finish records the roasted weight so the demo shows a weight loss.
func (s *DemoRoasterService) finish(ctx context.Context, r *demoRun) {
	after := DemoRoastedG
	if _, err := s.sessions.Update(ctx, r.userID, r.roastID, SessionPatch{WeightAfterG: &after}); err != nil {
		s.log.Errorw("demo_roast_finish_failed", "roast_id", r.roastID, "err", err)
		return
	}
	s.log.Infow("demo_roast_finished", "roast_id", r.roastID)
}

func scriptInput(st scriptStep) roastlog.EventInput {
	at := st.at
	temp := profileTemp(at)
	in := roastlog.EventInput{
		Kind:              string(st.kind),
		TimeOffsetSeconds: &at,
		TemperatureF:      &temp,
		FanLevel:          st.fan,
		HeatLevel:         st.heat,
	}
	if st.note != "" {
		note := st.note
		in.Note = &note
	}
	return in
}

// profileTemp interpolates demoProfile at offset, rounded to 0.1 °F.
func profileTemp(offset int) float64 {
	first, last := demoProfile[0], demoProfile[len(demoProfile)-1]
	if offset <= first.at {
		return first.tempF
	}
	if offset >= last.at {
		return last.tempF
	}
	for i := 1; i < len(demoProfile); i++ {
		a, b := demoProfile[i-1], demoProfile[i]
		if offset > b.at {
			continue
		}
		frac := float64(offset-a.at) / float64(b.at-a.at)
		return math.Round((a.tempF+(b.tempF-a.tempF)*frac)*10) / 10
	}
	return last.tempF
}
