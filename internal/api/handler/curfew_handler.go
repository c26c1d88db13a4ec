package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/UTDallasEPICS/the-samaritan-inn/internal/dto"
	"github.com/UTDallasEPICS/the-samaritan-inn/internal/service"
	"github.com/UTDallasEPICS/the-samaritan-inn/pkg/response"
)

// CurfewHandler curfew extension request endpoints
type CurfewHandler struct {
	svc service.CurfewService
}

// NewCurfewHandler creates a CurfewHandler.
func NewCurfewHandler(svc service.CurfewService) *CurfewHandler {
	return &CurfewHandler{svc: svc}
}

// Submit resident files a request
// POST /api/v1/curfew/submit
func (h *CurfewHandler) Submit(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	var req dto.SubmitCurfewRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.svc.Submit(c.Request.Context(), p, &req)
	if err != nil {
		handleCurfewError(c, err)
		return
	}

	response.Created(c, resp)
}

// Decide admin approves or denies
// POST /api/v1/curfew
func (h *CurfewHandler) Decide(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	var req dto.DecideCurfewRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.svc.Decide(c.Request.Context(), p, &req)
	if err != nil {
		handleCurfewError(c, err)
		return
	}

	response.OK(c, resp)
}

// List requests visible to the caller
// GET /api/v1/curfew?status=
func (h *CurfewHandler) List(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	var req dto.CurfewListRequest
	if !bindQuery(c, &req) {
		return
	}

	list, err := h.svc.List(c.Request.Context(), p, &req)
	if err != nil {
		handleCurfewError(c, err)
		return
	}

	response.OK(c, list)
}

// Get one request
// GET /api/v1/curfew/:id
func (h *CurfewHandler) Get(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	resp, err := h.svc.Get(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		handleCurfewError(c, err)
		return
	}

	response.OK(c, resp)
}

// ListCaseWorkers admins selectable as case worker
// GET /api/v1/caseworkers
func (h *CurfewHandler) ListCaseWorkers(c *gin.Context) {
	workers, err := h.svc.ListCaseWorkers(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, workers)
}

func handleCurfewError(c *gin.Context, err error) {
	if handleCommonError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrCurfewNotFound):
		response.NotFound(c, 12001, "curfew request not found")
	case errors.Is(err, service.ErrCurfewAlreadyDecided):
		response.Conflict(c, 12002, "curfew request has already been decided")
	default:
		response.InternalError(c)
	}
}
