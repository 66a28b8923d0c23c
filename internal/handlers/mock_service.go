package handlers

import (
	"context"
	"net/http"

	"roastlog/internal/models"
	"roastlog/internal/roastlog"
	"roastlog/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(_ context.Context, username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(_ context.Context, username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockSessions struct {
	session models.RoastSession
	list    []models.RoastSession
	err     error

	lastUserID int
	lastID     string
	lastInput  service.SessionInput
	lastPatch  service.SessionPatch
	deleted    int
}

func (m *mockSessions) Create(_ context.Context, userID int, in service.SessionInput) (models.RoastSession, error) {
	m.lastUserID = userID
	m.lastInput = in
	return m.session, m.err
}
func (m *mockSessions) Get(_ context.Context, userID int, id string) (models.RoastSession, error) {
	m.lastUserID, m.lastID = userID, id
	return m.session, m.err
}
func (m *mockSessions) List(_ context.Context, userID int) ([]models.RoastSession, error) {
	m.lastUserID = userID
	return m.list, m.err
}
func (m *mockSessions) Update(_ context.Context, userID int, id string, p service.SessionPatch) (models.RoastSession, error) {
	m.lastUserID, m.lastID = userID, id
	m.lastPatch = p
	return m.session, m.err
}
func (m *mockSessions) Delete(_ context.Context, userID int, id string) error {
	m.lastUserID, m.lastID = userID, id
	m.deleted++
	return m.err
}

type mockEventLog struct {
	event  models.RoastEvent
	events []models.RoastEvent
	err    error

	lastUserID  int
	lastRoastID string
	lastEventID string
	lastInput   roastlog.EventInput
	appends     int
}

func (m *mockEventLog) Append(_ context.Context, userID int, roastID string, in roastlog.EventInput) (models.RoastEvent, error) {
	m.appends++
	m.lastUserID, m.lastRoastID, m.lastInput = userID, roastID, in
	return m.event, m.err
}
func (m *mockEventLog) Edit(_ context.Context, userID int, roastID, eventID string, in roastlog.EventInput) (models.RoastEvent, error) {
	m.lastUserID, m.lastRoastID, m.lastEventID, m.lastInput = userID, roastID, eventID, in
	return m.event, m.err
}
func (m *mockEventLog) Delete(_ context.Context, userID int, roastID, eventID string) error {
	m.lastUserID, m.lastRoastID, m.lastEventID = userID, roastID, eventID
	return m.err
}
func (m *mockEventLog) List(_ context.Context, userID int, roastID string) ([]models.RoastEvent, error) {
	m.lastUserID, m.lastRoastID = userID, roastID
	return m.events, m.err
}

// mockAnalysis computes real results from a fixed event slice.
type mockAnalysis struct {
	session models.RoastSession
	events  []models.RoastEvent
	err     error

	lastQuery service.CurveQuery
	reports   int
}

func (m *mockAnalysis) Summary(_ context.Context, _ int, _ string) (roastlog.Summary, error) {
	if m.err != nil {
		return roastlog.Summary{}, m.err
	}
	return roastlog.Summarize(m.events, m.session), nil
}
func (m *mockAnalysis) Curve(_ context.Context, _ int, _ string, q service.CurveQuery) (service.CurveView, error) {
	m.lastQuery = q
	if m.err != nil {
		return service.CurveView{}, m.err
	}
	return service.BuildCurve(m.events, q), nil
}
func (m *mockAnalysis) Report(_ context.Context, _ int, _ string, q service.CurveQuery) (service.Report, error) {
	m.lastQuery = q
	m.reports++
	if m.err != nil {
		return service.Report{}, m.err
	}
	return service.Report{
		Session: m.session,
		Summary: roastlog.Summarize(m.events, m.session),
		Curve:   service.BuildCurve(m.events, q),
	}, nil
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil, Options{})
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}

func withAuth(req *http.Request) *http.Request {
	for k, vv := range authHeader("valid") {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	return req
}

func f64(v float64) *float64 { return &v }
func iptr(v int) *int        { return &v }
