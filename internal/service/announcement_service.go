package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/UTDallasEPICS/the-samaritan-inn/internal/dto"
	"github.com/UTDallasEPICS/the-samaritan-inn/internal/model"
	"github.com/UTDallasEPICS/the-samaritan-inn/internal/repository"
)

var (
	ErrAnnouncementNotFound  = errors.New("announcement not found")
	ErrAnnouncementAdminOnly = fmt.Errorf("%w: only admins can manage announcements", ErrForbidden)
)

// AnnouncementService house announcements. Everyone reads, admins write.
type AnnouncementService interface {
	List(ctx context.Context, p *dto.Principal) ([]dto.AnnouncementResponse, error)
	Create(ctx context.Context, p *dto.Principal, req *dto.AnnouncementRequest) (*dto.AnnouncementResponse, error)
	Update(ctx context.Context, p *dto.Principal, id string, req *dto.AnnouncementRequest) (*dto.AnnouncementResponse, error)
	Delete(ctx context.Context, p *dto.Principal, id string) error
}

type announcementService struct {
	repo     *repository.Repository
	notifier Notifier
	logger   *zap.Logger
}

// NewAnnouncementService creates an AnnouncementService.
func NewAnnouncementService(repo *repository.Repository, notifier Notifier, logger *zap.Logger) AnnouncementService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &announcementService{repo: repo, notifier: notifier, logger: logger}
}

func (s *announcementService) List(ctx context.Context, p *dto.Principal) ([]dto.AnnouncementResponse, error) {
	if p == nil || p.ID == "" {
		return nil, ErrUnauthenticated
	}

	list, err := s.repo.Announcement.List(ctx)
	if err != nil {
		s.logger.Error("list announcements failed", zap.Error(err))
		return nil, err
	}

	result := make([]dto.AnnouncementResponse, 0, len(list))
	for i := range list {
		result = append(result, *toAnnouncementResponse(&list[i]))
	}
	return result, nil
}

func (s *announcementService) Create(ctx context.Context, p *dto.Principal, req *dto.AnnouncementRequest) (*dto.AnnouncementResponse, error) {
	if err := requireAdmin(p, ErrAnnouncementAdminOnly); err != nil {
		return nil, err
	}
	if err := validateAnnouncement(req); err != nil {
		return nil, err
	}

	author := strings.TrimSpace(p.Name)
	if author == "" {
		author = p.Email
	}
	createdBy := p.ID
	a := &model.Announcement{
		Title:   strings.TrimSpace(req.Title),
		Content: strings.TrimSpace(req.Content),
		Author:  author,
	}
	a.CreatedBy = &createdBy
	a.UpdatedBy = &createdBy

	if err := s.repo.Announcement.Create(ctx, a); err != nil {
		s.logger.Error("create announcement failed", zap.Error(err))
		return nil, err
	}

	s.logger.Info("announcement created", zap.String("id", a.AnnouncementID), zap.String("by", p.ID))
	s.notifier.Notify(EntityAnnouncement, ActionCreated, a.AnnouncementID)
	return toAnnouncementResponse(a), nil
}

func (s *announcementService) Update(ctx context.Context, p *dto.Principal, id string, req *dto.AnnouncementRequest) (*dto.AnnouncementResponse, error) {
	if err := requireAdmin(p, ErrAnnouncementAdminOnly); err != nil {
		return nil, err
	}
	if err := validateAnnouncement(req); err != nil {
		return nil, err
	}

	a, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	updatedBy := p.ID
	a.Title = strings.TrimSpace(req.Title)
	a.Content = strings.TrimSpace(req.Content)
	a.UpdatedBy = &updatedBy

	if err := s.repo.Announcement.Update(ctx, a); err != nil {
		s.logger.Error("update announcement failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	s.notifier.Notify(EntityAnnouncement, ActionUpdated, a.AnnouncementID)
	return toAnnouncementResponse(a), nil
}

func (s *announcementService) Delete(ctx context.Context, p *dto.Principal, id string) error {
	if err := requireAdmin(p, ErrAnnouncementAdminOnly); err != nil {
		return err
	}
	a, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Announcement.Delete(ctx, a.AnnouncementID, p.ID); err != nil {
		s.logger.Error("delete announcement failed", zap.String("id", a.AnnouncementID), zap.Error(err))
		return err
	}

	s.logger.Info("announcement deleted", zap.String("id", a.AnnouncementID), zap.String("by", p.ID))
	s.notifier.Notify(EntityAnnouncement, ActionDeleted, a.AnnouncementID)
	return nil
}

func (s *announcementService) load(ctx context.Context, id string) (*model.Announcement, error) {
	rowID, ok := canonicalID(id)
	if !ok {
		return nil, ErrAnnouncementNotFound
	}
	a, err := s.repo.Announcement.GetByID(ctx, rowID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAnnouncementNotFound
		}
		s.logger.Error("load announcement failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return a, nil
}

// ── helpers ──

// requireAdmin rejects anonymous callers and non-admins. denied is returned
// for authenticated non-admins so each module can say what was refused.
func requireAdmin(p *dto.Principal, denied error) error {
	if p == nil || p.ID == "" {
		return ErrUnauthenticated
	}
	if p.Role != model.RoleAdmin {
		return denied
	}
	return nil
}

func validateAnnouncement(req *dto.AnnouncementRequest) error {
	var fc fieldChecker
	fc.check("title", req.Title, ruleTitle)
	fc.check("content", req.Content, ruleContent)
	return fc.err()
}

func toAnnouncementResponse(a *model.Announcement) *dto.AnnouncementResponse {
	return &dto.AnnouncementResponse{
		ID:        a.AnnouncementID,
		Title:     a.Title,
		Content:   a.Content,
		Author:    a.Author,
		CreatedAt: formatTimestamp(a.CreatedAt),
		UpdatedAt: formatTimestamp(a.UpdatedAt),
	}
}
