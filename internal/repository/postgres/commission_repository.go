package postgres

import (
	"context"
	"errors"
	"time"

	"clinicCommission/domain"

	"gorm.io/gorm"
)

type CommissionRepository struct {
	DB *gorm.DB
}

func NewCommissionRepository(db *gorm.DB) *CommissionRepository {
	return &CommissionRepository{
		DB: db,
	}
}

func (r *CommissionRepository) Create(ctx context.Context, c *domain.Commission) error {
	if err := r.DB.WithContext(ctx).Create(c).Error; err != nil {
		return err
	}

	return nil
}

func (r *CommissionRepository) FindBySaleID(ctx context.Context, saleID uint) (domain.Commission, error) {
	var c domain.Commission
	err := r.DB.WithContext(ctx).Where("sale_id = ?", saleID).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Commission{}, errors.New("commission not found")
		}
		return domain.Commission{}, err
	}

	return c, nil
}

func (r *CommissionRepository) ListByRep(ctx context.Context, repID uint) ([]domain.Commission, error) {
	var commissions []domain.Commission
	err := r.DB.WithContext(ctx).
		Where("rep_id = ?", repID).
		Order("created_at DESC").
		Find(&commissions).Error
	if err != nil {
		return nil, err
	}

	return commissions, nil
}

func (r *CommissionRepository) Update(ctx context.Context, c *domain.Commission) error {
	row := r.DB.WithContext(ctx).Save(c)
	if err := row.Error; err != nil {
		return err
	}

	if row.RowsAffected == 0 {
		return errors.New("commission not found")
	}

	return nil
}

// ReleaseDue is the hold sweep: one bulk update, returns how many rows moved.
func (r *CommissionRepository) ReleaseDue(ctx context.Context, clinicID uint, now time.Time) (int64, error) {
	row := r.DB.WithContext(ctx).
		Model(&domain.Commission{}).
		Where("clinic_id = ?", clinicID).
		Where("status = ?", domain.CommissionStatusPending).
		Where("payable_at <= ?", now).
		Update("status", domain.CommissionStatusPayable)
	if err := row.Error; err != nil {
		return 0, err
	}

	return row.RowsAffected, nil
}

func (r *CommissionRepository) SummaryByRep(ctx context.Context, repID uint) (domain.CommissionSummary, error) {
	var summary domain.CommissionSummary
	err := r.DB.WithContext(ctx).
		Model(&domain.Commission{}).
		Select(`count(*) as commissions_count,
			coalesce(sum(gross_amount_cents), 0) as total_gross_cents,
			coalesce(sum(net_amount_cents), 0) as total_net_cents,
			coalesce(sum(net_amount_cents) filter (where status = ?), 0) as pending_cents,
			coalesce(sum(net_amount_cents) filter (where status = ?), 0) as payable_cents,
			count(*) filter (where status = ?) as clawed_back_count`,
			domain.CommissionStatusPending,
			domain.CommissionStatusPayable,
			domain.CommissionStatusClawedBack,
		).
		Where("rep_id = ?", repID).
		Scan(&summary).Error
	if err != nil {
		return domain.CommissionSummary{}, err
	}

	summary.RepID = repID
	return summary, nil
}
