package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/UTDallasEPICS/the-samaritan-inn/internal/dto"
	"github.com/UTDallasEPICS/the-samaritan-inn/internal/model"
	"github.com/UTDallasEPICS/the-samaritan-inn/internal/repository"
)

var (
	ErrExportAdminOnly    = fmt.Errorf("%w: only admins can export curfew requests", ErrForbidden)
	ErrExportGenerateFail = errors.New("failed to generate spreadsheet")
)

const exportSheetName = "Curfew Requests"

var exportHeaders = []string{
	"Request ID", "Resident", "Email", "Case Worker",
	"Start", "End", "Reason", "Extra Info", "Chore Coverage", "Signature",
	"Status", "Reason for Denial", "Submitted", "Decided",
}

// ExportService spreadsheet exports for staff.
//
// The workbook is returned as a buffer together with a suggested file name;
// the handler sets the download headers.
type ExportService interface {
	ExportCurfewRequests(ctx context.Context, p *dto.Principal, status string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo    *repository.Repository
	loc     *time.Location
	maxRows int
	logger  *zap.Logger
	now     func() time.Time
}

// NewExportService creates an ExportService. maxRows <= 0 means unlimited.
func NewExportService(repo *repository.Repository, loc *time.Location, maxRows int, logger *zap.Logger) ExportService {
	return &exportService{
		repo:    repo,
		loc:     loc,
		maxRows: maxRows,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *exportService) ExportCurfewRequests(ctx context.Context, p *dto.Principal, status string) (*bytes.Buffer, string, error) {
	if err := requireAdmin(p, ErrExportAdminOnly); err != nil {
		return nil, "", err
	}
	if status != "" && !model.IsValidCurfewStatus(status) {
		return nil, "", newValidationError("status")
	}

	records, err := s.repo.Curfew.List(ctx, repository.CurfewFilter{Status: status, Limit: s.maxRows})
	if err != nil {
		s.logger.Error("list curfew requests for export failed", zap.Error(err))
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	idx, _ := f.NewSheet(exportSheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	widths := []float64{38, 22, 28, 22, 18, 18, 40, 30, 30, 20, 12, 36, 22, 22}
	for i, w := range widths {
		col := colName(i)
		f.SetColWidth(exportSheetName, col, col, w)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	for i, h := range exportHeaders {
		f.SetCellValue(exportSheetName, cell(colName(i), 1), h)
	}
	f.SetCellStyle(exportSheetName, "A1", cell(colName(len(exportHeaders)-1), 1), headerStyle)
	f.SetPanes(exportSheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	for i := range records {
		r := &records[i]
		row := i + 2

		name, email := "", ""
		if r.User != nil {
			name, email = r.User.Name, r.User.Email
		}
		denial, decided := "", ""
		if r.ReasonForDenial != nil {
			denial = *r.ReasonForDenial
		}
		if r.DecidedAt != nil {
			decided = s.formatLocal(*r.DecidedAt)
		}

		values := []interface{}{
			r.CurfewRequestID, name, email, r.CaseWorker,
			s.formatLocal(r.StartAt), s.formatLocal(r.EndAt),
			r.Reason, r.ExtraInfo, r.ChoreCoverage, r.Signature,
			r.Status, denial, s.formatLocal(r.CreatedAt), decided,
		}
		for col, v := range values {
			f.SetCellValue(exportSheetName, cell(colName(col), row), v)
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("write workbook failed", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	s.logger.Info("curfew requests exported", zap.Int("rows", len(records)), zap.String("by", p.ID))

	filename := fmt.Sprintf("curfew-requests_%s.xlsx", s.now().In(s.loc).Format("20060102"))
	return buf, filename, nil
}

func (s *exportService) formatLocal(t time.Time) string {
	return t.In(s.loc).Format("2006-01-02 15:04")
}

// ── helpers ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
