package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	PlanTypeFlat    = "FLAT"
	PlanTypePercent = "PERCENT"

	RateModeSingle   = "SINGLE"
	RateModeSeparate = "SEPARATE"

	AppliesToAllPayments   = "ALL_PAYMENTS"
	AppliesToInitialOnly   = "INITIAL_ONLY"
	AppliesToRecurringOnly = "RECURRING_ONLY"

	BonusTypePercent = "PERCENT"
	BonusTypeFlat    = "FLAT"
)

// CommissionPlan is the per-clinic rate card for a sales rep / affiliate.
// Money is integer cents, rates are integer basis points (1000 bps = 10%).
// Plans are never hard-deleted while reps are assigned; deactivate instead.
type CommissionPlan struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	UUID     uuid.UUID `gorm:"column:uuid;type:uuid;uniqueIndex" json:"uuid"`
	ClinicID uint      `gorm:"column:clinic_id;index;not null" json:"clinic_id"`
	Name     string    `gorm:"column:name;type:text" json:"name"`

	// PlanType decides which of the rate fields is authoritative.
	PlanType string `gorm:"column:plan_type;type:varchar(10);not null" json:"plan_type"`

	// RateMode SEPARATE switches the plan to the initial_*/recurring_* pair
	// matching PlanType; the base field is then only a fallback.
	RateMode string `gorm:"column:rate_mode;type:varchar(10);default:SINGLE" json:"rate_mode"`

	FlatAmountCents *int64 `gorm:"column:flat_amount_cents" json:"flat_amount_cents,omitempty"`
	PercentBps      *int64 `gorm:"column:percent_bps" json:"percent_bps,omitempty"`

	InitialFlatAmountCents   *int64 `gorm:"column:initial_flat_amount_cents" json:"initial_flat_amount_cents,omitempty"`
	InitialPercentBps        *int64 `gorm:"column:initial_percent_bps" json:"initial_percent_bps,omitempty"`
	RecurringFlatAmountCents *int64 `gorm:"column:recurring_flat_amount_cents" json:"recurring_flat_amount_cents,omitempty"`
	RecurringPercentBps      *int64 `gorm:"column:recurring_percent_bps" json:"recurring_percent_bps,omitempty"`

	AppliesTo string `gorm:"column:applies_to;type:varchar(20);default:ALL_PAYMENTS" json:"applies_to"`

	HoldDays        int  `gorm:"column:hold_days;default:0" json:"hold_days"`
	ClawbackEnabled bool `gorm:"column:clawback_enabled;default:false" json:"clawback_enabled"`

	RecurringEnabled bool `gorm:"column:recurring_enabled;default:false" json:"recurring_enabled"`
	// RecurringMonths bounds how many cycles earn commission; nil = lifetime.
	RecurringMonths *int `gorm:"column:recurring_months" json:"recurring_months,omitempty"`

	MultiItemBonusEnabled    bool   `gorm:"column:multi_item_bonus_enabled;default:false" json:"multi_item_bonus_enabled"`
	MultiItemBonusType       string `gorm:"column:multi_item_bonus_type;type:varchar(10)" json:"multi_item_bonus_type,omitempty"`
	MultiItemBonusPercentBps *int64 `gorm:"column:multi_item_bonus_percent_bps" json:"multi_item_bonus_percent_bps,omitempty"`
	MultiItemBonusFlatCents  *int64 `gorm:"column:multi_item_bonus_flat_cents" json:"multi_item_bonus_flat_cents,omitempty"`
	MultiItemMinQuantity     int    `gorm:"column:multi_item_min_quantity;default:2" json:"multi_item_min_quantity"`

	IsActive bool `gorm:"column:is_active;default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Rules []ProductCommissionRule `gorm:"foreignKey:PlanID" json:"rules,omitempty"`
}

func (CommissionPlan) TableName() string {
	return "commission_plans"
}

// ProductCommissionRule is an additive per-product/per-bundle bonus line.
// Exactly one of ProductID / ProductBundleID is set, enforced at write time.
type ProductCommissionRule struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	PlanID uint `gorm:"column:plan_id;index;not null" json:"plan_id"`

	ProductID       *uint64 `gorm:"column:product_id;index:idx_rule_plan_product" json:"product_id,omitempty"`
	ProductBundleID *uint64 `gorm:"column:product_bundle_id;index:idx_rule_plan_bundle" json:"product_bundle_id,omitempty"`

	BonusType       string `gorm:"column:bonus_type;type:varchar(10);not null" json:"bonus_type"`
	PercentBps      *int64 `gorm:"column:percent_bps" json:"percent_bps,omitempty"`
	FlatAmountCents *int64 `gorm:"column:flat_amount_cents" json:"flat_amount_cents,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ProductCommissionRule) TableName() string {
	return "product_commission_rules"
}
