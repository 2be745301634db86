package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	// Zero-amount business outcomes, not failures.
	CommissionStatusNotApplicable         = "NOT_APPLICABLE"
	CommissionStatusRecurringWindowClosed = "RECURRING_WINDOW_CLOSED"

	// Hold / payout lifecycle.
	CommissionStatusPending    = "PENDING"
	CommissionStatusPayable    = "PAYABLE"
	CommissionStatusClawedBack = "CLAWED_BACK"
)

// Commission is the persisted outcome of resolving a plan against a sale.
// GrossAmountCents keeps the computed amount even after a clawback zeroes
// NetAmountCents, so the audit trail survives.
type Commission struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	UUID     uuid.UUID `gorm:"column:uuid;type:uuid;uniqueIndex" json:"uuid"`
	ClinicID uint      `gorm:"column:clinic_id;index;not null" json:"clinic_id"`
	SaleID   uint      `gorm:"column:sale_id;uniqueIndex;not null" json:"sale_id"`
	RepID    uint      `gorm:"column:rep_id;index;not null" json:"rep_id"`
	PlanID   uint      `gorm:"column:plan_id;index;not null" json:"plan_id"`

	GrossAmountCents int64  `gorm:"column:gross_amount_cents;not null" json:"gross_amount_cents"`
	NetAmountCents   int64  `gorm:"column:net_amount_cents;not null" json:"net_amount_cents"`
	Status           string `gorm:"column:status;type:varchar(30);index;not null" json:"status"`

	PayableAt      time.Time `gorm:"column:payable_at" json:"payable_at"`
	AmbiguousMatch bool      `gorm:"column:ambiguous_match;default:false" json:"ambiguous_match"`

	// Breakdown is the resolver's audit list: base, each matched rule,
	// multi-item bonus.
	Breakdown datatypes.JSON `gorm:"column:breakdown;type:jsonb" json:"breakdown"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Commission) TableName() string {
	return "commissions"
}

// CommissionSummary aggregates a rep's earnings for the dashboard.
type CommissionSummary struct {
	RepID            uint  `json:"rep_id"`
	TotalGrossCents  int64 `json:"total_gross_cents"`
	TotalNetCents    int64 `json:"total_net_cents"`
	PendingCents     int64 `json:"pending_cents"`
	PayableCents     int64 `json:"payable_cents"`
	ClawedBackCount  int64 `json:"clawed_back_count"`
	CommissionsCount int64 `json:"commissions_count"`
}
