package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/UTDallasEPICS/the-samaritan-inn/internal/dto"
	"github.com/UTDallasEPICS/the-samaritan-inn/internal/service"
	"github.com/UTDallasEPICS/the-samaritan-inn/pkg/response"
)

// EventHandler calendar event endpoints
type EventHandler struct {
	svc service.EventService
}

// NewEventHandler creates an EventHandler.
func NewEventHandler(svc service.EventService) *EventHandler {
	return &EventHandler{svc: svc}
}

// List GET /api/v1/events?from=&to=
func (h *EventHandler) List(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	var req dto.EventListRequest
	if !bindQuery(c, &req) {
		return
	}

	list, err := h.svc.List(c.Request.Context(), p, &req)
	if err != nil {
		handleEventError(c, err)
		return
	}

	response.OK(c, list)
}

// Create POST /api/v1/events
func (h *EventHandler) Create(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	var req dto.EventRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.svc.Create(c.Request.Context(), p, &req)
	if err != nil {
		handleEventError(c, err)
		return
	}

	response.Created(c, resp)
}

// Update PUT /api/v1/events/:id
func (h *EventHandler) Update(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	var req dto.EventRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.svc.Update(c.Request.Context(), p, c.Param("id"), &req)
	if err != nil {
		handleEventError(c, err)
		return
	}

	response.OK(c, resp)
}

// Delete DELETE /api/v1/events/:id
func (h *EventHandler) Delete(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), p, c.Param("id")); err != nil {
		handleEventError(c, err)
		return
	}

	response.OK(c, nil)
}

// ImportICS imports a calendar from an uploaded file or a URL
// POST /api/v1/events/import
//
// multipart/form-data with a "file" field, or JSON {"url": "..."}
func (h *EventHandler) ImportICS(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		file, _, err := c.Request.FormFile("file")
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				response.Error(c, http.StatusRequestEntityTooLarge, response.CodeBodyTooLarge, "request body too large")
				return
			}
			response.ErrorWithDetails(c, http.StatusBadRequest, response.CodeValidation,
				"missing or invalid fields", "file")
			return
		}
		defer file.Close()

		result, err := h.svc.ImportICS(c.Request.Context(), p, file)
		if err != nil {
			handleEventError(c, err)
			return
		}
		response.Created(c, result)
		return
	}

	var req dto.ImportEventsRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.svc.ImportICSFromURL(c.Request.Context(), p, req.URL)
	if err != nil {
		handleEventError(c, err)
		return
	}

	response.Created(c, result)
}

// CalendarFeed serves every event as text/calendar
// GET /api/v1/calendar.ics
func (h *EventHandler) CalendarFeed(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	body, err := h.svc.CalendarFeed(c.Request.Context(), p)
	if err != nil {
		handleEventError(c, err)
		return
	}

	c.Header("Content-Disposition", `inline; filename="samaritan-inn.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", body)
}

func handleEventError(c *gin.Context, err error) {
	if handleCommonError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrEventNotFound):
		response.NotFound(c, 14001, "event not found")
	case errors.Is(err, service.ErrICSInvalidURL):
		response.ErrorWithDetails(c, http.StatusBadRequest, 14002, "invalid calendar url", "url")
	case errors.Is(err, service.ErrICSFetch):
		response.BadRequest(c, 14003, "failed to fetch calendar")
	case errors.Is(err, service.ErrICSMalformed):
		response.BadRequest(c, 14004, "calendar could not be parsed")
	case errors.Is(err, service.ErrICSTooLarge):
		response.Error(c, http.StatusRequestEntityTooLarge, 14005, "calendar file too large")
	default:
		response.InternalError(c)
	}
}
