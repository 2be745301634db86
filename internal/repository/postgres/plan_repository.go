package postgres

import (
	"context"
	"errors"

	"clinicCommission/domain"

	"gorm.io/gorm"
)

type PlanRepository struct {
	DB *gorm.DB
}

func NewPlanRepository(db *gorm.DB) *PlanRepository {
	return &PlanRepository{
		DB: db,
	}
}

func (r *PlanRepository) Create(ctx context.Context, plan *domain.CommissionPlan) error {
	if err := r.DB.WithContext(ctx).Create(plan).Error; err != nil {
		return err
	}

	return nil
}

func (r *PlanRepository) Update(ctx context.Context, plan *domain.CommissionPlan) error {
	// Save writes every column, so cleared pointer fields become NULL
	row := r.DB.WithContext(ctx).Omit("Rules").Save(plan)
	if err := row.Error; err != nil {
		return err
	}

	if row.RowsAffected == 0 {
		return errors.New("plan not found")
	}

	return nil
}

func (r *PlanRepository) FindByID(ctx context.Context, clinicID, id uint) (domain.CommissionPlan, error) {
	var plan domain.CommissionPlan
	err := r.DB.WithContext(ctx).
		Preload("Rules").
		Where("clinic_id = ?", clinicID).
		First(&plan, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.CommissionPlan{}, errors.New("plan not found")
		}
		return domain.CommissionPlan{}, err
	}

	return plan, nil
}

// GetPlanWithRules is the sale-intake lookup: by plan id only, since rep
// assignment already pinned the clinic.
func (r *PlanRepository) GetPlanWithRules(ctx context.Context, planID uint) (domain.CommissionPlan, error) {
	var plan domain.CommissionPlan
	err := r.DB.WithContext(ctx).
		Preload("Rules").
		First(&plan, planID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.CommissionPlan{}, errors.New("plan not found")
		}
		return domain.CommissionPlan{}, err
	}

	return plan, nil
}

func (r *PlanRepository) FindAll(ctx context.Context, clinicID uint) ([]domain.CommissionPlan, error) {
	var plans []domain.CommissionPlan
	err := r.DB.WithContext(ctx).
		Preload("Rules").
		Where("clinic_id = ?", clinicID).
		Find(&plans).Error
	if err != nil {
		return nil, err
	}

	return plans, nil
}

func (r *PlanRepository) Deactivate(ctx context.Context, clinicID, id uint) error {
	row := r.DB.WithContext(ctx).
		Model(&domain.CommissionPlan{}).
		Where("id = ?", id).
		Where("clinic_id = ?", clinicID).
		Update("is_active", false)
	if err := row.Error; err != nil {
		return err
	}

	if row.RowsAffected == 0 {
		return errors.New("plan not found")
	}

	return nil
}

func (r *PlanRepository) ReplaceRules(ctx context.Context, planID uint, rules []domain.ProductCommissionRule) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("plan_id = ?", planID).Delete(&domain.ProductCommissionRule{}).Error; err != nil {
			return err
		}

		if len(rules) == 0 {
			return nil
		}
		return tx.Create(&rules).Error
	})
}
