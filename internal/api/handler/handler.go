package handler

import (
	"github.com/UTDallasEPICS/the-samaritan-inn/config"
	"github.com/UTDallasEPICS/the-samaritan-inn/internal/service"
)

// Handler aggregates every HTTP handler.
type Handler struct {
	Auth         *AuthHandler
	Curfew       *CurfewHandler
	Announcement *AnnouncementHandler
	Event        *EventHandler
	Export       *ExportHandler
}

// NewHandler wires handlers to services.
func NewHandler(cfg *config.Config, svc *service.Service) *Handler {
	return &Handler{
		Auth:         NewAuthHandler(svc.Auth, &cfg.Auth.Cookie),
		Curfew:       NewCurfewHandler(svc.Curfew),
		Announcement: NewAnnouncementHandler(svc.Announcement),
		Event:        NewEventHandler(svc.Event),
		Export:       NewExportHandler(svc.Export),
	}
}
