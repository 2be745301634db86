package postgres

import (
	"context"
	"errors"
	"time"

	"clinicCommission/domain"

	"gorm.io/gorm"
)

type SaleRepository struct {
	DB *gorm.DB
}

func NewSaleRepository(db *gorm.DB) *SaleRepository {
	return &SaleRepository{
		DB: db,
	}
}

func (r *SaleRepository) Create(ctx context.Context, sale *domain.Sale) error {
	// line items ride along through the association
	if err := r.DB.WithContext(ctx).Create(sale).Error; err != nil {
		return err
	}

	return nil
}

func (r *SaleRepository) FindByID(ctx context.Context, id uint) (domain.Sale, error) {
	var sale domain.Sale
	err := r.DB.WithContext(ctx).
		Preload("LineItems").
		First(&sale, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Sale{}, errors.New("sale not found")
		}
		return domain.Sale{}, err
	}

	return sale, nil
}

func (r *SaleRepository) FindByExternalRef(ctx context.Context, externalRef string) (domain.Sale, error) {
	var sale domain.Sale
	err := r.DB.WithContext(ctx).
		Preload("LineItems").
		Where("external_ref = ?", externalRef).
		First(&sale).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Sale{}, errors.New("sale not found")
		}
		return domain.Sale{}, err
	}

	return sale, nil
}

func (r *SaleRepository) MarkRefunded(ctx context.Context, id uint, refundedAt time.Time) error {
	row := r.DB.WithContext(ctx).
		Model(&domain.Sale{}).
		Where("id = ?", id).
		Where("refunded_at IS NULL").
		Update("refunded_at", refundedAt)
	if err := row.Error; err != nil {
		return err
	}

	if row.RowsAffected == 0 {
		return errors.New("sale not found or already refunded")
	}

	return nil
}
