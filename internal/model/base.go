package model

import (
	"time"

	"gorm.io/gorm"
)

// Account roles
const (
	RoleResident = "resident"
	RoleUser     = "user"
	RoleAdmin    = "admin"
)

// IsResidentRole reports whether role may file curfew requests.
func IsResidentRole(role string) bool {
	return role == RoleResident || role == RoleUser
}

// IsValidRole reports whether role is a known account role.
func IsValidRole(role string) bool {
	return IsResidentRole(role) || role == RoleAdmin
}

// BaseModel common timestamps
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// AuditModel timestamps plus the acting admin
type AuditModel struct {
	BaseModel
	CreatedBy *string `gorm:"type:uuid" json:"created_by,omitempty"`
	UpdatedBy *string `gorm:"type:uuid" json:"updated_by,omitempty"`
}

// SoftDeleteModel audit fields with soft delete
type SoftDeleteModel struct {
	AuditModel
	DeletedAt gorm.DeletedAt `gorm:"index"     json:"deleted_at,omitempty"`
	DeletedBy *string        `gorm:"type:uuid" json:"deleted_by,omitempty"`
}
