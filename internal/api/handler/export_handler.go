package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/UTDallasEPICS/the-samaritan-inn/internal/service"
	"github.com/UTDallasEPICS/the-samaritan-inn/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler spreadsheet exports
type ExportHandler struct {
	svc service.ExportService
}

// NewExportHandler creates an ExportHandler.
func NewExportHandler(svc service.ExportService) *ExportHandler {
	return &ExportHandler{svc: svc}
}

// ExportCurfewRequests downloads curfew requests as xlsx
// GET /api/v1/curfew/export?status=
func (h *ExportHandler) ExportCurfewRequests(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	buf, filename, err := h.svc.ExportCurfewRequests(c.Request.Context(), p, c.Query("status"))
	if err != nil {
		if handleCommonError(c, err) {
			return
		}
		if errors.Is(err, service.ErrExportGenerateFail) {
			response.Error(c, http.StatusInternalServerError, 16001, "failed to generate spreadsheet")
			return
		}
		response.InternalError(c)
		return
	}

	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
