package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/UTDallasEPICS/the-samaritan-inn/internal/model"
	"github.com/UTDallasEPICS/the-samaritan-inn/internal/repository"
	pkgerrors "github.com/UTDallasEPICS/the-samaritan-inn/pkg/errors"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	mu        sync.Mutex
	users     map[string]*model.User
	seq       int
	createErr error
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	if user.UserID == "" {
		m.seq++
		user.UserID = fmt.Sprintf("user-%d", m.seq)
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	cp := *user
	m.users[user.UserID] = &cp
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) ListByRole(_ context.Context, role string) ([]model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.User
	for _, u := range m.users {
		if role == "" || u.Role == role {
			result = append(result, *u)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return result[i].UserID < result[j].UserID
	})
	return result, nil
}

// ── Mock CurfewRepository ──

// mockCurfewRepo stores copies so that callers mutating a loaded record do
// not change what is "persisted", mirroring a real database.
type mockCurfewRepo struct {
	mu       sync.Mutex
	requests map[string]*model.CurfewRequest
	users    *mockUserRepo
	seq      int
	createFn func(*model.CurfewRequest) error
}

func newMockCurfewRepo(users *mockUserRepo) *mockCurfewRepo {
	return &mockCurfewRepo{requests: make(map[string]*model.CurfewRequest), users: users}
}

func (m *mockCurfewRepo) Create(_ context.Context, req *model.CurfewRequest) error {
	if m.createFn != nil {
		if err := m.createFn(req); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	if req.CurfewRequestID == "" {
		req.CurfewRequestID = seqID(m.seq)
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Date(2025, 1, 1, 0, 0, m.seq, 0, time.UTC)
	}
	cp := *req
	cp.User = nil
	m.requests[req.CurfewRequestID] = &cp
	return nil
}

func (m *mockCurfewRepo) load(r *model.CurfewRequest) model.CurfewRequest {
	cp := *r
	if m.users != nil {
		if u, err := m.users.GetByID(context.Background(), r.UserID); err == nil {
			cp.User = u
		}
	}
	return cp
}

func (m *mockCurfewRepo) GetByID(_ context.Context, id string) (*model.CurfewRequest, error) {
	if err := uuidColumn(id); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.requests[id]; ok {
		cp := m.load(r)
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCurfewRepo) List(_ context.Context, filter repository.CurfewFilter) ([]model.CurfewRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.CurfewRequest
	for _, r := range m.requests {
		if filter.UserID != "" && r.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		result = append(result, m.load(r))
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].CurfewRequestID > result[j].CurfewRequestID
	})
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (m *mockCurfewRepo) Decide(_ context.Context, req *model.CurfewRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.requests[req.CurfewRequestID]
	if !ok || stored.Status != model.CurfewStatusPending || stored.Version != req.Version {
		return pkgerrors.ErrOptimisticLock
	}
	stored.Status = req.Status
	stored.ReasonForDenial = req.ReasonForDenial
	stored.DecidedBy = req.DecidedBy
	stored.DecidedAt = req.DecidedAt
	stored.Version++
	req.Version++
	return nil
}

func (m *mockCurfewRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

func (m *mockCurfewRepo) stored(id string) *model.CurfewRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.requests[id]; ok {
		cp := *r
		return &cp
	}
	return nil
}

// ── Mock AnnouncementRepository ──

type mockAnnouncementRepo struct {
	items map[string]*model.Announcement
	seq   int
}

func newMockAnnouncementRepo() *mockAnnouncementRepo {
	return &mockAnnouncementRepo{items: make(map[string]*model.Announcement)}
}

func (m *mockAnnouncementRepo) Create(_ context.Context, a *model.Announcement) error {
	m.seq++
	if a.AnnouncementID == "" {
		a.AnnouncementID = seqID(m.seq)
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Date(2025, 1, 1, 0, 0, m.seq, 0, time.UTC)
		a.UpdatedAt = a.CreatedAt
	}
	cp := *a
	m.items[a.AnnouncementID] = &cp
	return nil
}

func (m *mockAnnouncementRepo) GetByID(_ context.Context, id string) (*model.Announcement, error) {
	if err := uuidColumn(id); err != nil {
		return nil, err
	}
	if a, ok := m.items[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAnnouncementRepo) List(_ context.Context) ([]model.Announcement, error) {
	var result []model.Announcement
	for _, a := range m.items {
		result = append(result, *a)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (m *mockAnnouncementRepo) Update(_ context.Context, a *model.Announcement) error {
	cp := *a
	m.items[a.AnnouncementID] = &cp
	return nil
}

func (m *mockAnnouncementRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.items, id)
	return nil
}

// ── Mock EventRepository ──

type mockEventRepo struct {
	events map[string]*model.Event
	seq    int
	// last List bounds, for assertions
	lastFrom, lastTo *time.Time
}

func newMockEventRepo() *mockEventRepo {
	return &mockEventRepo{events: make(map[string]*model.Event)}
}

func (m *mockEventRepo) Create(_ context.Context, e *model.Event) error {
	m.seq++
	if e.EventID == "" {
		e.EventID = seqID(m.seq)
	}
	cp := *e
	m.events[e.EventID] = &cp
	return nil
}

func (m *mockEventRepo) CreateBatch(ctx context.Context, events []model.Event) error {
	for i := range events {
		if err := m.Create(ctx, &events[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockEventRepo) GetByID(_ context.Context, id string) (*model.Event, error) {
	if err := uuidColumn(id); err != nil {
		return nil, err
	}
	if e, ok := m.events[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEventRepo) List(_ context.Context, from, to *time.Time) ([]model.Event, error) {
	m.lastFrom, m.lastTo = from, to
	var result []model.Event
	for _, e := range m.events {
		if from != nil && e.EndAt.Before(*from) {
			continue
		}
		if to != nil && e.StartAt.After(*to) {
			continue
		}
		result = append(result, *e)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartAt.Before(result[j].StartAt) })
	return result, nil
}

func (m *mockEventRepo) Update(_ context.Context, e *model.Event) error {
	cp := *e
	m.events[e.EventID] = &cp
	return nil
}

func (m *mockEventRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.events, id)
	return nil
}

// ── Mock Notifier ──

type notification struct {
	entity, action, id string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notification
}

func (n *recordingNotifier) Notify(entity, action, id string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification{entity, action, id})
}

func (n *recordingNotifier) all() []notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notification(nil), n.sent...)
}

// ── fixtures ──

// seqID returns a UUID-shaped id whose string order follows seq.
func seqID(seq int) string {
	return fmt.Sprintf("00000000-0000-0000-0000-%012d", seq)
}

// uuidColumn mimics Postgres rejecting malformed input for a uuid column,
// which is a driver error and not gorm.ErrRecordNotFound.
func uuidColumn(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("ERROR: invalid input syntax for type uuid: %q (SQLSTATE 22P02)", id)
	}
	return nil
}

type testRepos struct {
	repo         *repository.Repository
	users        *mockUserRepo
	curfew       *mockCurfewRepo
	announcement *mockAnnouncementRepo
	event        *mockEventRepo
}

func newTestRepos() *testRepos {
	users := newMockUserRepo()
	curfew := newMockCurfewRepo(users)
	ann := newMockAnnouncementRepo()
	evt := newMockEventRepo()
	return &testRepos{
		repo: &repository.Repository{
			User:         users,
			Curfew:       curfew,
			Announcement: ann,
			Event:        evt,
		},
		users:        users,
		curfew:       curfew,
		announcement: ann,
		event:        evt,
	}
}

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}
