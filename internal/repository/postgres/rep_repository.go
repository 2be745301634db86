package postgres

import (
	"context"
	"errors"

	"clinicCommission/domain"

	"gorm.io/gorm"
)

type RepRepository struct {
	DB *gorm.DB
}

func NewRepRepository(db *gorm.DB) *RepRepository {
	return &RepRepository{
		DB: db,
	}
}

func (r *RepRepository) Create(ctx context.Context, rep *domain.SalesRep) error {
	if err := r.DB.WithContext(ctx).Create(rep).Error; err != nil {
		return err
	}

	return nil
}

func (r *RepRepository) FindByID(ctx context.Context, id uint) (domain.SalesRep, error) {
	var rep domain.SalesRep
	err := r.DB.WithContext(ctx).First(&rep, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.SalesRep{}, errors.New("rep not found")
		}
		return domain.SalesRep{}, err
	}

	return rep, nil
}

func (r *RepRepository) FindByEmail(ctx context.Context, email string) (domain.SalesRep, error) {
	var rep domain.SalesRep
	err := r.DB.WithContext(ctx).Where("email = ?", email).First(&rep).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.SalesRep{}, errors.New("rep not found")
		}
		return domain.SalesRep{}, err
	}

	return rep, nil
}

func (r *RepRepository) Update(ctx context.Context, rep *domain.SalesRep) error {
	row := r.DB.WithContext(ctx).Save(rep)
	if err := row.Error; err != nil {
		return err
	}

	if row.RowsAffected == 0 {
		return errors.New("rep not found")
	}

	return nil
}

func (r *RepRepository) AssignPlan(ctx context.Context, repID, planID uint) error {
	row := r.DB.WithContext(ctx).
		Model(&domain.SalesRep{}).
		Where("id = ?", repID).
		Update("plan_id", planID)
	if err := row.Error; err != nil {
		return err
	}

	if row.RowsAffected == 0 {
		return errors.New("rep not found")
	}

	return nil
}
