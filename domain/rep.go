package domain

import (
	"time"

	"gorm.io/gorm"
)

const (
	RepStatusActive    = "active"
	RepStatusSuspended = "suspended"

	RoleAdmin = "admin"
	RoleRep   = "rep"
)

// SalesRep is a rep / affiliate account scoped to one clinic.
// PlanID is the commission plan the rep currently earns under.
type SalesRep struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	ClinicID uint   `gorm:"column:clinic_id;index;not null" json:"clinic_id"`
	FullName string `gorm:"column:full_name;not null" json:"full_name"`
	Email    string `gorm:"column:email;uniqueIndex;not null" json:"email"`
	Password string `gorm:"column:password;not null" json:"-"`
	Status   string `gorm:"column:status;default:active" json:"status"`

	PlanID *uint `gorm:"column:plan_id;index" json:"plan_id,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (SalesRep) TableName() string {
	return "sales_reps"
}
