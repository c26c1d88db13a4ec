package model

import "time"

// Curfew request states. Approved and denied are terminal.
const (
	CurfewStatusPending  = "pending"
	CurfewStatusApproved = "approved"
	CurfewStatusDenied   = "denied"
)

// IsValidCurfewStatus reports whether s is a known status.
func IsValidCurfewStatus(s string) bool {
	switch s {
	case CurfewStatusPending, CurfewStatusApproved, CurfewStatusDenied:
		return true
	}
	return false
}

// CurfewRequest curfew extension request, table curfew_requests
type CurfewRequest struct {
	CurfewRequestID string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"curfew_request_id"`
	UserID          string     `gorm:"type:uuid;not null;index"                       json:"user_id"`
	CaseWorker      string     `gorm:"type:varchar(100);not null"                     json:"case_worker"`
	StartAt         time.Time  `gorm:"not null"                                       json:"start_at"`
	EndAt           time.Time  `gorm:"not null"                                       json:"end_at"`
	Reason          string     `gorm:"type:text;not null"                             json:"reason"`
	ExtraInfo       string     `gorm:"type:text;not null;default:''"                  json:"extra_info,omitempty"`
	ChoreCoverage   string     `gorm:"type:text;not null;default:''"                  json:"chore_coverage,omitempty"`
	Signature       string     `gorm:"type:varchar(200);not null"                     json:"signature"`
	Status          string     `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"` // pending | approved | denied
	ReasonForDenial *string    `gorm:"type:text"                                      json:"reason_for_denial,omitempty"`
	DecidedBy       *string    `gorm:"type:uuid"                                      json:"decided_by,omitempty"`
	DecidedAt       *time.Time `json:"decided_at,omitempty"`
	Version         int        `gorm:"not null;default:1"                             json:"version"`
	BaseModel

	// associations
	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName table name
func (CurfewRequest) TableName() string { return "curfew_requests" }

// IsPending reports whether the request still awaits a decision.
func (r *CurfewRequest) IsPending() bool {
	return r.Status == CurfewStatusPending
}
