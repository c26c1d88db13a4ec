package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/UTDallasEPICS/the-samaritan-inn/internal/dto"
	"github.com/UTDallasEPICS/the-samaritan-inn/internal/model"
	"github.com/UTDallasEPICS/the-samaritan-inn/internal/repository"
)

var (
	ErrEventNotFound  = errors.New("event not found")
	ErrEventAdminOnly = fmt.Errorf("%w: only admins can manage events", ErrForbidden)
)

// EventService shelter calendar events.
//
// ICS import and the calendar feed share the same timezone as manual entry,
// so an event created in either way renders identically.
type EventService interface {
	List(ctx context.Context, p *dto.Principal, req *dto.EventListRequest) ([]dto.EventResponse, error)
	Create(ctx context.Context, p *dto.Principal, req *dto.EventRequest) (*dto.EventResponse, error)
	Update(ctx context.Context, p *dto.Principal, id string, req *dto.EventRequest) (*dto.EventResponse, error)
	Delete(ctx context.Context, p *dto.Principal, id string) error
	// ImportICS creates one event per usable VEVENT in r.
	ImportICS(ctx context.Context, p *dto.Principal, r io.Reader) (*dto.ImportEventsResponse, error)
	// ImportICSFromURL fetches a calendar and imports it like ImportICS.
	ImportICSFromURL(ctx context.Context, p *dto.Principal, rawURL string) (*dto.ImportEventsResponse, error)
	// CalendarFeed renders all events as an iCalendar document.
	CalendarFeed(ctx context.Context, p *dto.Principal) ([]byte, error)
}

type eventService struct {
	repo     *repository.Repository
	loc      *time.Location
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
	fetch    func(ctx context.Context, rawURL string) (io.ReadCloser, error)
}

// NewEventService creates an EventService.
func NewEventService(repo *repository.Repository, loc *time.Location, notifier Notifier, logger *zap.Logger) EventService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &eventService{
		repo:     repo,
		loc:      loc,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
		fetch:    FetchICSContent,
	}
}

// ────────────────────── List ──────────────────────

func (s *eventService) List(ctx context.Context, p *dto.Principal, req *dto.EventListRequest) ([]dto.EventResponse, error) {
	if p == nil || p.ID == "" {
		return nil, ErrUnauthenticated
	}

	var from, to *time.Time
	if req != nil {
		var fc fieldChecker
		if strings.TrimSpace(req.From) != "" {
			d, err := parseDate(req.From)
			if err != nil {
				fc.add("from")
			} else {
				t := combineDateTime(d, 0, 0, 0, s.loc)
				from = &t
			}
		}
		if strings.TrimSpace(req.To) != "" {
			d, err := parseDate(req.To)
			if err != nil {
				fc.add("to")
			} else {
				// inclusive: through the end of that day
				t := combineDateTime(d, 0, 0, 0, s.loc).AddDate(0, 0, 1).Add(-time.Nanosecond)
				to = &t
			}
		}
		if err := fc.err(); err != nil {
			return nil, err
		}
		if from != nil && to != nil && to.Before(*from) {
			return nil, newValidationError("to")
		}
	}

	events, err := s.repo.Event.List(ctx, from, to)
	if err != nil {
		s.logger.Error("list events failed", zap.Error(err))
		return nil, err
	}

	result := make([]dto.EventResponse, 0, len(events))
	for i := range events {
		result = append(result, *s.toEventResponse(&events[i]))
	}
	return result, nil
}

// ────────────────────── Create / Update / Delete ──────────────────────

func (s *eventService) Create(ctx context.Context, p *dto.Principal, req *dto.EventRequest) (*dto.EventResponse, error) {
	if err := requireAdmin(p, ErrEventAdminOnly); err != nil {
		return nil, err
	}
	startAt, endAt, err := s.validateEvent(req)
	if err != nil {
		return nil, err
	}

	createdBy := p.ID
	e := &model.Event{
		Title:   strings.TrimSpace(req.Title),
		Content: strings.TrimSpace(req.Content),
		StartAt: startAt,
		EndAt:   endAt,
	}
	e.CreatedBy = &createdBy
	e.UpdatedBy = &createdBy

	if err := s.repo.Event.Create(ctx, e); err != nil {
		s.logger.Error("create event failed", zap.Error(err))
		return nil, err
	}

	s.logger.Info("event created", zap.String("id", e.EventID), zap.String("by", p.ID))
	s.notifier.Notify(EntityEvent, ActionCreated, e.EventID)
	return s.toEventResponse(e), nil
}

func (s *eventService) Update(ctx context.Context, p *dto.Principal, id string, req *dto.EventRequest) (*dto.EventResponse, error) {
	if err := requireAdmin(p, ErrEventAdminOnly); err != nil {
		return nil, err
	}
	startAt, endAt, err := s.validateEvent(req)
	if err != nil {
		return nil, err
	}

	e, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	updatedBy := p.ID
	e.Title = strings.TrimSpace(req.Title)
	e.Content = strings.TrimSpace(req.Content)
	e.StartAt = startAt
	e.EndAt = endAt
	e.UpdatedBy = &updatedBy

	if err := s.repo.Event.Update(ctx, e); err != nil {
		s.logger.Error("update event failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	s.notifier.Notify(EntityEvent, ActionUpdated, e.EventID)
	return s.toEventResponse(e), nil
}

func (s *eventService) Delete(ctx context.Context, p *dto.Principal, id string) error {
	if err := requireAdmin(p, ErrEventAdminOnly); err != nil {
		return err
	}
	e, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Event.Delete(ctx, e.EventID, p.ID); err != nil {
		s.logger.Error("delete event failed", zap.String("id", e.EventID), zap.Error(err))
		return err
	}

	s.logger.Info("event deleted", zap.String("id", e.EventID), zap.String("by", p.ID))
	s.notifier.Notify(EntityEvent, ActionDeleted, e.EventID)
	return nil
}

// ────────────────────── ICS ──────────────────────

func (s *eventService) ImportICS(ctx context.Context, p *dto.Principal, r io.Reader) (*dto.ImportEventsResponse, error) {
	if err := requireAdmin(p, ErrEventAdminOnly); err != nil {
		return nil, err
	}

	content, err := readICS(r)
	if err != nil {
		return nil, err
	}

	events, skipped, err := ParseICSEvents(content, s.loc)
	if err != nil {
		return nil, err
	}

	createdBy := p.ID
	for i := range events {
		events[i].CreatedBy = &createdBy
		events[i].UpdatedBy = &createdBy
	}

	if err := s.repo.Event.CreateBatch(ctx, events); err != nil {
		s.logger.Error("import events failed", zap.Int("count", len(events)), zap.Error(err))
		return nil, err
	}

	s.logger.Info("events imported",
		zap.Int("imported", len(events)),
		zap.Int("skipped", skipped),
		zap.String("by", p.ID),
	)
	for i := range events {
		s.notifier.Notify(EntityEvent, ActionCreated, events[i].EventID)
	}

	return &dto.ImportEventsResponse{Imported: len(events), Skipped: skipped}, nil
}

func (s *eventService) ImportICSFromURL(ctx context.Context, p *dto.Principal, rawURL string) (*dto.ImportEventsResponse, error) {
	if err := requireAdmin(p, ErrEventAdminOnly); err != nil {
		return nil, err
	}
	if strings.TrimSpace(rawURL) == "" {
		return nil, newValidationError("url")
	}

	body, err := s.fetch(ctx, rawURL)
	if err != nil {
		s.logger.Warn("fetch calendar failed", zap.String("url", rawURL), zap.Error(err))
		return nil, err
	}
	defer body.Close()

	return s.ImportICS(ctx, p, body)
}

func (s *eventService) CalendarFeed(ctx context.Context, p *dto.Principal) ([]byte, error) {
	if p == nil || p.ID == "" {
		return nil, ErrUnauthenticated
	}

	events, err := s.repo.Event.List(ctx, nil, nil)
	if err != nil {
		s.logger.Error("list events for feed failed", zap.Error(err))
		return nil, err
	}

	return []byte(BuildICSFeed(events, s.now())), nil
}

// ── helpers ──

func (s *eventService) validateEvent(req *dto.EventRequest) (time.Time, time.Time, error) {
	var fc fieldChecker
	fc.check("title", req.Title, ruleTitle)
	fc.check("content", req.Content, ruleContent)
	fc.required("startDate", req.StartDate)
	fc.required("endDate", req.EndDate)
	fc.required("startTime", req.StartTime)
	fc.required("endTime", req.EndTime)
	startAt, endAt := dateTimeWindow(&fc, s.loc, req.StartDate, req.StartTime, req.EndDate, req.EndTime)
	if err := fc.err(); err != nil {
		return time.Time{}, time.Time{}, err
	}
	if endAt.Before(startAt) {
		return time.Time{}, time.Time{}, newValidationError("endDate")
	}
	return startAt, endAt, nil
}

func (s *eventService) load(ctx context.Context, id string) (*model.Event, error) {
	rowID, ok := canonicalID(id)
	if !ok {
		return nil, ErrEventNotFound
	}
	e, err := s.repo.Event.GetByID(ctx, rowID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		s.logger.Error("load event failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return e, nil
}

func (s *eventService) toEventResponse(e *model.Event) *dto.EventResponse {
	return &dto.EventResponse{
		ID:        e.EventID,
		Title:     e.Title,
		Content:   e.Content,
		StartDate: formatDate(e.StartAt, s.loc),
		EndDate:   formatDate(e.EndAt, s.loc),
		StartTime: formatClock(e.StartAt, s.loc),
		EndTime:   formatClock(e.EndAt, s.loc),
		StartAt:   formatTimestamp(e.StartAt),
		EndAt:     formatTimestamp(e.EndAt),
		CreatedAt: formatTimestamp(e.CreatedAt),
		UpdatedAt: formatTimestamp(e.UpdatedAt),
	}
}
