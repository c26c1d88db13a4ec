package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/UTDallasEPICS/the-samaritan-inn/internal/dto"
	"github.com/UTDallasEPICS/the-samaritan-inn/internal/service"
	"github.com/UTDallasEPICS/the-samaritan-inn/pkg/response"
)

// AnnouncementHandler announcement board endpoints
type AnnouncementHandler struct {
	svc service.AnnouncementService
}

// NewAnnouncementHandler creates an AnnouncementHandler.
func NewAnnouncementHandler(svc service.AnnouncementService) *AnnouncementHandler {
	return &AnnouncementHandler{svc: svc}
}

// List GET /api/v1/announcements
func (h *AnnouncementHandler) List(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	list, err := h.svc.List(c.Request.Context(), p)
	if err != nil {
		handleAnnouncementError(c, err)
		return
	}

	response.OK(c, list)
}

// Create POST /api/v1/announcements
func (h *AnnouncementHandler) Create(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	var req dto.AnnouncementRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.svc.Create(c.Request.Context(), p, &req)
	if err != nil {
		handleAnnouncementError(c, err)
		return
	}

	response.Created(c, resp)
}

// Update PUT /api/v1/announcements/:id
func (h *AnnouncementHandler) Update(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	var req dto.AnnouncementRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.svc.Update(c.Request.Context(), p, c.Param("id"), &req)
	if err != nil {
		handleAnnouncementError(c, err)
		return
	}

	response.OK(c, resp)
}

// Delete DELETE /api/v1/announcements/:id
func (h *AnnouncementHandler) Delete(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), p, c.Param("id")); err != nil {
		handleAnnouncementError(c, err)
		return
	}

	response.OK(c, nil)
}

func handleAnnouncementError(c *gin.Context, err error) {
	if handleCommonError(c, err) {
		return
	}
	if errors.Is(err, service.ErrAnnouncementNotFound) {
		response.NotFound(c, 13001, "announcement not found")
		return
	}
	response.InternalError(c)
}
