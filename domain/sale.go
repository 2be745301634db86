package domain

import "time"

// Sale is a payment event pushed in by the billing pipeline.
// PaymentSequenceNumber 1 is the initial charge, >1 a recurring cycle.
type Sale struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	ClinicID    uint   `gorm:"column:clinic_id;index;not null" json:"clinic_id"`
	RepID       uint   `gorm:"column:rep_id;index;not null" json:"rep_id"`
	ExternalRef string `gorm:"column:external_ref;uniqueIndex" json:"external_ref"`

	AmountCents           int64      `gorm:"column:amount_cents;not null" json:"amount_cents"`
	PaymentSequenceNumber int        `gorm:"column:payment_sequence_number;default:1" json:"payment_sequence_number"`
	OccurredAt            time.Time  `gorm:"column:occurred_at;not null" json:"occurred_at"`
	RefundedAt            *time.Time `gorm:"column:refunded_at" json:"refunded_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	LineItems []SaleLineItem `gorm:"foreignKey:SaleID" json:"line_items"`
}

func (Sale) TableName() string {
	return "sales"
}

// SaleLineItem references a product or a bundle (never both) with the
// amount attributed to that line.
type SaleLineItem struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	SaleID uint `gorm:"column:sale_id;index;not null" json:"sale_id"`

	ProductID       *uint64 `gorm:"column:product_id" json:"product_id,omitempty"`
	ProductBundleID *uint64 `gorm:"column:product_bundle_id" json:"product_bundle_id,omitempty"`

	Quantity    int   `gorm:"column:quantity;default:1" json:"quantity"`
	AmountCents int64 `gorm:"column:amount_cents;default:0" json:"amount_cents"`
}

func (SaleLineItem) TableName() string {
	return "sale_line_items"
}
