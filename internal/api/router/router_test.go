package router

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/UTDallasEPICS/the-samaritan-inn/config"
	"github.com/UTDallasEPICS/the-samaritan-inn/internal/api/handler"
	"github.com/UTDallasEPICS/the-samaritan-inn/internal/dto"
	"github.com/UTDallasEPICS/the-samaritan-inn/internal/model"
	"github.com/UTDallasEPICS/the-samaritan-inn/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ── stub services ──

// calls records which service operation a request reached.
type calls struct{ names []string }

func (c *calls) hit(name string) { c.names = append(c.names, name) }

func (c *calls) last() string {
	if len(c.names) == 0 {
		return ""
	}
	return c.names[len(c.names)-1]
}

type stubAuth struct{ *calls }

func (s stubAuth) Register(context.Context, *dto.RegisterRequest) (*dto.UserResponse, error) {
	s.hit("auth.register")
	return &dto.UserResponse{}, nil
}
func (s stubAuth) Login(context.Context, *dto.LoginRequest) (*dto.LoginResponse, error) {
	s.hit("auth.login")
	return &dto.LoginResponse{ExpiresAt: time.Now().Add(time.Hour).Format(time.RFC3339)}, nil
}
func (s stubAuth) Logout(context.Context, string, time.Time) error {
	s.hit("auth.logout")
	return nil
}
func (s stubAuth) GetCurrentUser(context.Context, *dto.Principal) (*dto.UserResponse, error) {
	s.hit("auth.me")
	return &dto.UserResponse{}, nil
}

type stubCurfew struct {
	*calls
	lastID string
}

func (s *stubCurfew) Submit(context.Context, *dto.Principal, *dto.SubmitCurfewRequest) (*dto.CurfewResponse, error) {
	s.hit("curfew.submit")
	return &dto.CurfewResponse{}, nil
}
func (s *stubCurfew) Decide(context.Context, *dto.Principal, *dto.DecideCurfewRequest) (*dto.CurfewResponse, error) {
	s.hit("curfew.decide")
	return &dto.CurfewResponse{}, nil
}
func (s *stubCurfew) List(context.Context, *dto.Principal, *dto.CurfewListRequest) ([]dto.CurfewResponse, error) {
	s.hit("curfew.list")
	return []dto.CurfewResponse{}, nil
}
func (s *stubCurfew) Get(_ context.Context, _ *dto.Principal, id string) (*dto.CurfewResponse, error) {
	s.hit("curfew.get")
	s.lastID = id
	return &dto.CurfewResponse{ID: id}, nil
}
func (s *stubCurfew) ListCaseWorkers(context.Context) ([]dto.CaseWorkerResponse, error) {
	s.hit("curfew.caseworkers")
	return []dto.CaseWorkerResponse{}, nil
}

type stubAnnouncement struct{ *calls }

func (s stubAnnouncement) List(context.Context, *dto.Principal) ([]dto.AnnouncementResponse, error) {
	s.hit("announcement.list")
	return []dto.AnnouncementResponse{}, nil
}
func (s stubAnnouncement) Create(context.Context, *dto.Principal, *dto.AnnouncementRequest) (*dto.AnnouncementResponse, error) {
	s.hit("announcement.create")
	return &dto.AnnouncementResponse{}, nil
}
func (s stubAnnouncement) Update(context.Context, *dto.Principal, string, *dto.AnnouncementRequest) (*dto.AnnouncementResponse, error) {
	s.hit("announcement.update")
	return &dto.AnnouncementResponse{}, nil
}
func (s stubAnnouncement) Delete(context.Context, *dto.Principal, string) error {
	s.hit("announcement.delete")
	return nil
}

type stubEvent struct{ *calls }

func (s stubEvent) List(context.Context, *dto.Principal, *dto.EventListRequest) ([]dto.EventResponse, error) {
	s.hit("event.list")
	return []dto.EventResponse{}, nil
}
func (s stubEvent) Create(context.Context, *dto.Principal, *dto.EventRequest) (*dto.EventResponse, error) {
	s.hit("event.create")
	return &dto.EventResponse{}, nil
}
func (s stubEvent) Update(context.Context, *dto.Principal, string, *dto.EventRequest) (*dto.EventResponse, error) {
	s.hit("event.update")
	return &dto.EventResponse{}, nil
}
func (s stubEvent) Delete(context.Context, *dto.Principal, string) error {
	s.hit("event.delete")
	return nil
}
func (s stubEvent) ImportICS(context.Context, *dto.Principal, io.Reader) (*dto.ImportEventsResponse, error) {
	s.hit("event.import")
	return &dto.ImportEventsResponse{}, nil
}
func (s stubEvent) ImportICSFromURL(context.Context, *dto.Principal, string) (*dto.ImportEventsResponse, error) {
	s.hit("event.import")
	return &dto.ImportEventsResponse{}, nil
}
func (s stubEvent) CalendarFeed(context.Context, *dto.Principal) ([]byte, error) {
	s.hit("event.feed")
	return []byte("BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n"), nil
}

type stubExport struct{ *calls }

func (s stubExport) ExportCurfewRequests(context.Context, *dto.Principal, string) (*bytes.Buffer, string, error) {
	s.hit("export.curfew")
	return bytes.NewBufferString("xlsx"), "curfew-requests.xlsx", nil
}

// ── fixture ──

type testServer struct {
	engine *gin.Engine
	jwtMgr *jwt.Manager
	calls  *calls
	curfew *stubCurfew
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := &config.Config{}
	cfg.Server.BodyLimitBytes = 1 << 20
	cfg.Auth.JWTSecret = "router-test-secret-0123456789"
	cfg.Auth.SessionTTL = time.Hour
	cfg.Auth.Cookie.Name = "samaritan_session"

	rec := &calls{}
	curfew := &stubCurfew{calls: rec}
	h := &handler.Handler{
		Auth:         handler.NewAuthHandler(stubAuth{rec}, &cfg.Auth.Cookie),
		Curfew:       handler.NewCurfewHandler(curfew),
		Announcement: handler.NewAnnouncementHandler(stubAnnouncement{rec}),
		Event:        handler.NewEventHandler(stubEvent{rec}),
		Export:       handler.NewExportHandler(stubExport{rec}),
	}
	jwtMgr := jwt.NewManager(&cfg.Auth)

	return &testServer{
		engine: Setup(cfg, h, jwtMgr, nil, nil, nil, zap.NewNop()),
		jwtMgr: jwtMgr,
		calls:  rec,
		curfew: curfew,
	}
}

func (s *testServer) token(t *testing.T, role string) string {
	t.Helper()
	tok, _, err := s.jwtMgr.GenerateSessionToken("user-"+role, role+"@example.org", "Test "+role, role)
	if err != nil {
		t.Fatalf("GenerateSessionToken: %v", err)
	}
	return tok
}

func (s *testServer) do(method, target, token string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

const submitBody = `{"caseWorker":"Sarah Johnson","startDate":"2025-05-01","endDate":"2025-05-01",` +
	`"startTime":"19:00","endTime":"21:00","reason":"Job interview","signature":"Ann Resident"}`

// ── tests ──

func TestRouter_CurfewExportAdminOnly(t *testing.T) {
	s := newTestServer(t)

	w := s.do("GET", "/api/v1/curfew/export", s.token(t, model.RoleResident), nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("resident: expected 403, got %d", w.Code)
	}
	if s.calls.last() != "" {
		t.Errorf("resident must not reach a service, reached %q", s.calls.last())
	}

	w = s.do("GET", "/api/v1/curfew/export", s.token(t, model.RoleAdmin), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("admin: expected 200, got %d", w.Code)
	}
	if s.calls.last() != "export.curfew" {
		t.Errorf("expected export to run, got %q", s.calls.last())
	}
	if !strings.HasPrefix(w.Header().Get("Content-Type"), "application/vnd.openxmlformats") {
		t.Errorf("expected spreadsheet content type, got %q", w.Header().Get("Content-Type"))
	}
}

func TestRouter_ExportNotRoutedAsID(t *testing.T) {
	s := newTestServer(t)

	s.do("GET", "/api/v1/curfew/export", s.token(t, model.RoleAdmin), nil)
	if s.curfew.lastID != "" {
		t.Errorf("/export must not reach Get, got id %q", s.curfew.lastID)
	}

	id := "3f2504e0-4f89-11d3-9a0c-0305e82c3301"
	w := s.do("GET", "/api/v1/curfew/"+id, s.token(t, model.RoleResident), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if s.calls.last() != "curfew.get" || s.curfew.lastID != id {
		t.Errorf("expected Get with %s, got %q / %q", id, s.calls.last(), s.curfew.lastID)
	}
}

func TestRouter_SubmitRejectsAdmins(t *testing.T) {
	s := newTestServer(t)

	w := s.do("POST", "/api/v1/curfew/submit", s.token(t, model.RoleAdmin), strings.NewReader(submitBody))
	if w.Code != http.StatusForbidden {
		t.Errorf("admin: expected 403, got %d", w.Code)
	}
	if s.calls.last() != "" {
		t.Errorf("admin must be stopped before the service, reached %q", s.calls.last())
	}

	for _, role := range []string{model.RoleResident, model.RoleUser} {
		w = s.do("POST", "/api/v1/curfew/submit", s.token(t, role), strings.NewReader(submitBody))
		if w.Code != http.StatusCreated {
			t.Errorf("%s: expected 201, got %d", role, w.Code)
		}
	}
}

func TestRouter_DecideAdminOnly(t *testing.T) {
	s := newTestServer(t)
	body := `{"id":"3f2504e0-4f89-11d3-9a0c-0305e82c3301","accepted":true}`

	w := s.do("POST", "/api/v1/curfew", s.token(t, model.RoleResident), strings.NewReader(body))
	if w.Code != http.StatusForbidden {
		t.Errorf("resident: expected 403, got %d", w.Code)
	}

	w = s.do("POST", "/api/v1/curfew", s.token(t, model.RoleAdmin), strings.NewReader(body))
	if w.Code != http.StatusOK || s.calls.last() != "curfew.decide" {
		t.Errorf("admin: expected decide, got %d %q", w.Code, s.calls.last())
	}
}

func TestRouter_WritesAdminOnly(t *testing.T) {
	s := newTestServer(t)
	resident := s.token(t, model.RoleResident)

	for _, tc := range []struct{ method, target string }{
		{"POST", "/api/v1/announcements"},
		{"DELETE", "/api/v1/announcements/3f2504e0-4f89-11d3-9a0c-0305e82c3301"},
		{"POST", "/api/v1/events"},
		{"POST", "/api/v1/events/import"},
		{"DELETE", "/api/v1/events/3f2504e0-4f89-11d3-9a0c-0305e82c3301"},
	} {
		if w := s.do(tc.method, tc.target, resident, nil); w.Code != http.StatusForbidden {
			t.Errorf("%s %s: expected 403, got %d", tc.method, tc.target, w.Code)
		}
	}
	if s.calls.last() != "" {
		t.Errorf("no write may reach a service, reached %q", s.calls.last())
	}

	if w := s.do("GET", "/api/v1/announcements", resident, nil); w.Code != http.StatusOK {
		t.Errorf("residents read announcements: expected 200, got %d", w.Code)
	}
}

func TestRouter_RequiresSession(t *testing.T) {
	s := newTestServer(t)

	for _, target := range []string{"/api/v1/curfew", "/api/v1/curfew/export", "/api/v1/auth/me", "/api/v1/calendar.ics"} {
		if w := s.do("GET", target, "", nil); w.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", target, w.Code)
		}
	}
	if w := s.do("GET", "/api/v1/curfew", "not-a-token", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("bad token: expected 401, got %d", w.Code)
	}
}

func TestRouter_SessionCookieAccepted(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest("GET", "/api/v1/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: "samaritan_session", Value: s.token(t, model.RoleResident)})
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	if w.Code != http.StatusOK || s.calls.last() != "auth.me" {
		t.Errorf("expected cookie session to reach me, got %d %q", w.Code, s.calls.last())
	}
}

func TestRouter_HealthAndDisabledRealtime(t *testing.T) {
	s := newTestServer(t)

	w := s.do("GET", "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("health: expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"redis":"disabled"`) {
		t.Errorf("expected redis reported disabled, got %s", w.Body.String())
	}

	if w := s.do("GET", "/api/v1/ws", s.token(t, model.RoleResident), nil); w.Code != http.StatusNotFound {
		t.Errorf("ws without realtime: expected 404, got %d", w.Code)
	}
}
