package service

import (
	"go.uber.org/zap"

	"github.com/UTDallasEPICS/the-samaritan-inn/config"
	"github.com/UTDallasEPICS/the-samaritan-inn/internal/repository"
	"github.com/UTDallasEPICS/the-samaritan-inn/pkg/jwt"
)

// Service aggregates every business service.
type Service struct {
	Auth         AuthService
	User         UserService
	Curfew       CurfewService
	Announcement AnnouncementService
	Event        EventService
	Export       ExportService
}

// NewService wires the services. revoker and notifier may be nil.
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	revoker TokenRevoker,
	notifier Notifier,
	logger *zap.Logger,
) *Service {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	loc := cfg.Curfew.Location()
	users := NewUserService(repo, logger)

	return &Service{
		Auth:         NewAuthService(repo, users, jwtMgr, revoker, logger),
		User:         users,
		Curfew:       NewCurfewService(repo, loc, notifier, logger),
		Announcement: NewAnnouncementService(repo, notifier, logger),
		Event:        NewEventService(repo, loc, notifier, logger),
		Export:       NewExportService(repo, loc, cfg.Curfew.ExportMaxRows, logger),
	}
}
