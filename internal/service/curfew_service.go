package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/UTDallasEPICS/the-samaritan-inn/internal/dto"
	"github.com/UTDallasEPICS/the-samaritan-inn/internal/model"
	"github.com/UTDallasEPICS/the-samaritan-inn/internal/repository"
	pkgerrors "github.com/UTDallasEPICS/the-samaritan-inn/pkg/errors"
)

// ── curfew module errors ──

var (
	ErrCurfewNotFound       = errors.New("curfew request not found")
	ErrCurfewAlreadyDecided = errors.New("curfew request has already been decided")
	ErrCurfewResidentsOnly  = fmt.Errorf("%w: only residents can submit curfew requests", ErrForbidden)
	ErrCurfewAdminOnly      = fmt.Errorf("%w: only admins can decide curfew requests", ErrForbidden)
)

// CurfewService curfew extension request lifecycle.
//
//	submit → pending → approved | denied
//
// Only residents submit, only admins decide, and a decision is applied to a
// pending request exactly once.
type CurfewService interface {
	Submit(ctx context.Context, p *dto.Principal, req *dto.SubmitCurfewRequest) (*dto.CurfewResponse, error)
	Decide(ctx context.Context, p *dto.Principal, req *dto.DecideCurfewRequest) (*dto.CurfewResponse, error)
	// List returns every request to admins and only their own to residents, newest first.
	List(ctx context.Context, p *dto.Principal, req *dto.CurfewListRequest) ([]dto.CurfewResponse, error)
	Get(ctx context.Context, p *dto.Principal, id string) (*dto.CurfewResponse, error)
	ListCaseWorkers(ctx context.Context) ([]dto.CaseWorkerResponse, error)
}

type curfewService struct {
	repo     *repository.Repository
	loc      *time.Location
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

// NewCurfewService creates a CurfewService. loc is the zone request dates
// and times are entered in.
func NewCurfewService(repo *repository.Repository, loc *time.Location, notifier Notifier, logger *zap.Logger) CurfewService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &curfewService{
		repo:     repo,
		loc:      loc,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// ────────────────────── Submit ──────────────────────

func (s *curfewService) Submit(ctx context.Context, p *dto.Principal, req *dto.SubmitCurfewRequest) (*dto.CurfewResponse, error) {
	if p == nil || p.ID == "" {
		return nil, ErrUnauthenticated
	}
	if !model.IsResidentRole(p.Role) {
		return nil, ErrCurfewResidentsOnly
	}

	var fc fieldChecker
	fc.check("caseWorker", req.CaseWorker, ruleCaseWorker)
	fc.required("startDate", req.StartDate)
	fc.required("endDate", req.EndDate)
	fc.required("startTime", req.StartTime)
	fc.required("endTime", req.EndTime)
	fc.check("reason", req.Reason, ruleLongText)
	fc.check("extraInfo", req.ExtraInfo, ruleOptText)
	fc.check("choreCoverage", req.ChoreCoverage, ruleOptText)
	fc.check("signature", req.Signature, ruleSignature)
	startAt, endAt := dateTimeWindow(&fc, s.loc, req.StartDate, req.StartTime, req.EndDate, req.EndTime)
	if err := fc.err(); err != nil {
		return nil, err
	}
	if !endAt.After(startAt) {
		return nil, newValidationError("endDate")
	}

	record := &model.CurfewRequest{
		UserID:        p.ID,
		CaseWorker:    strings.TrimSpace(req.CaseWorker),
		StartAt:       startAt,
		EndAt:         endAt,
		Reason:        strings.TrimSpace(req.Reason),
		ExtraInfo:     strings.TrimSpace(req.ExtraInfo),
		ChoreCoverage: strings.TrimSpace(req.ChoreCoverage),
		Signature:     strings.TrimSpace(req.Signature),
		Status:        model.CurfewStatusPending,
		Version:       1,
	}
	now := s.now()
	record.CreatedAt = now
	record.UpdatedAt = now

	if err := s.repo.Curfew.Create(ctx, record); err != nil {
		s.logger.Error("create curfew request failed", zap.String("user_id", p.ID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("curfew request submitted",
		zap.String("id", record.CurfewRequestID),
		zap.String("user_id", p.ID),
	)
	s.notifier.Notify(EntityCurfewRequest, ActionCreated, record.CurfewRequestID)

	record.User = &model.User{UserID: p.ID, Name: p.Name, Email: p.Email}
	return s.toCurfewResponse(record), nil
}

// ────────────────────── Decide ──────────────────────

func (s *curfewService) Decide(ctx context.Context, p *dto.Principal, req *dto.DecideCurfewRequest) (*dto.CurfewResponse, error) {
	if p == nil || p.ID == "" {
		return nil, ErrUnauthenticated
	}
	if p.Role != model.RoleAdmin {
		return nil, ErrCurfewAdminOnly
	}

	var fc fieldChecker
	fc.required("id", req.ID)
	if req.Accepted == nil {
		fc.add("accepted")
	}
	if req.Reason != nil {
		fc.check("reason", *req.Reason, ruleOptText)
	}
	if err := fc.err(); err != nil {
		return nil, err
	}

	id, ok := canonicalID(req.ID)
	if !ok {
		return nil, ErrCurfewNotFound
	}
	record, err := s.repo.Curfew.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCurfewNotFound
		}
		s.logger.Error("load curfew request failed", zap.String("id", req.ID), zap.Error(err))
		return nil, err
	}

	if !record.IsPending() {
		return nil, ErrCurfewAlreadyDecided
	}

	now := s.now()
	decidedBy := p.ID
	record.DecidedBy = &decidedBy
	record.DecidedAt = &now
	if *req.Accepted {
		record.Status = model.CurfewStatusApproved
		record.ReasonForDenial = nil
	} else {
		reason := ""
		if req.Reason != nil {
			reason = strings.TrimSpace(*req.Reason)
		}
		record.Status = model.CurfewStatusDenied
		record.ReasonForDenial = &reason
	}

	if err := s.repo.Curfew.Decide(ctx, record); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, ErrCurfewAlreadyDecided
		}
		s.logger.Error("decide curfew request failed", zap.String("id", record.CurfewRequestID), zap.Error(err))
		return nil, err
	}
	record.UpdatedAt = now

	s.logger.Info("curfew request decided",
		zap.String("id", record.CurfewRequestID),
		zap.String("status", record.Status),
		zap.String("decided_by", p.ID),
	)
	s.notifier.Notify(EntityCurfewRequest, ActionUpdated, record.CurfewRequestID)

	return s.toCurfewResponse(record), nil
}

// ────────────────────── List ──────────────────────

func (s *curfewService) List(ctx context.Context, p *dto.Principal, req *dto.CurfewListRequest) ([]dto.CurfewResponse, error) {
	if p == nil || p.ID == "" {
		return nil, ErrUnauthenticated
	}

	var filter repository.CurfewFilter
	if req != nil && req.Status != "" {
		if !model.IsValidCurfewStatus(req.Status) {
			return nil, newValidationError("status")
		}
		filter.Status = req.Status
	}

	switch {
	case p.Role == model.RoleAdmin:
		// all residents
	case model.IsResidentRole(p.Role):
		filter.UserID = p.ID
	default:
		return nil, ErrForbidden
	}

	records, err := s.repo.Curfew.List(ctx, filter)
	if err != nil {
		s.logger.Error("list curfew requests failed", zap.String("user_id", p.ID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.CurfewResponse, 0, len(records))
	for i := range records {
		result = append(result, *s.toCurfewResponse(&records[i]))
	}
	return result, nil
}

// ────────────────────── Get ──────────────────────

func (s *curfewService) Get(ctx context.Context, p *dto.Principal, id string) (*dto.CurfewResponse, error) {
	if p == nil || p.ID == "" {
		return nil, ErrUnauthenticated
	}

	rowID, ok := canonicalID(id)
	if !ok {
		return nil, ErrCurfewNotFound
	}
	record, err := s.repo.Curfew.GetByID(ctx, rowID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCurfewNotFound
		}
		s.logger.Error("load curfew request failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	// other residents' requests are reported as missing
	if p.Role != model.RoleAdmin && record.UserID != p.ID {
		return nil, ErrCurfewNotFound
	}

	return s.toCurfewResponse(record), nil
}

// ────────────────────── ListCaseWorkers ──────────────────────

func (s *curfewService) ListCaseWorkers(ctx context.Context) ([]dto.CaseWorkerResponse, error) {
	admins, err := s.repo.User.ListByRole(ctx, model.RoleAdmin)
	if err != nil {
		s.logger.Error("list case workers failed", zap.Error(err))
		return nil, err
	}

	result := make([]dto.CaseWorkerResponse, 0, len(admins))
	for _, u := range admins {
		result = append(result, dto.CaseWorkerResponse{ID: u.UserID, Name: u.Name})
	}
	return result, nil
}

// ── helpers ──

func (s *curfewService) toCurfewResponse(r *model.CurfewRequest) *dto.CurfewResponse {
	resp := &dto.CurfewResponse{
		ID:              r.CurfewRequestID,
		UserID:          r.UserID,
		CaseWorker:      r.CaseWorker,
		StartDate:       formatDate(r.StartAt, s.loc),
		EndDate:         formatDate(r.EndAt, s.loc),
		StartTime:       formatClock(r.StartAt, s.loc),
		EndTime:         formatClock(r.EndAt, s.loc),
		Reason:          r.Reason,
		ExtraInfo:       r.ExtraInfo,
		ChoreCoverage:   r.ChoreCoverage,
		Signature:       r.Signature,
		Status:          r.Status,
		ReasonForDenial: r.ReasonForDenial,
		DecidedBy:       r.DecidedBy,
		CreatedAt:       formatTimestamp(r.CreatedAt),
	}
	if r.DecidedAt != nil {
		decidedAt := formatTimestamp(*r.DecidedAt)
		resp.DecidedAt = &decidedAt
	}
	if r.User != nil {
		resp.UserName = r.User.Name
		resp.UserEmail = r.User.Email
	}
	return resp
}
