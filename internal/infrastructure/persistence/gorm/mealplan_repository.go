package gorm

import (
	"context"
	"errors"

	"github.com/alchemorsel/mealplan/internal/domain/mealplan"
	"github.com/alchemorsel/mealplan/internal/ports/outbound"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MealPlanRepository implements the meal plan repository interface using GORM
type MealPlanRepository struct {
	db *gorm.DB
}

// NewMealPlanRepository creates a new meal plan repository
func NewMealPlanRepository(db *gorm.DB) outbound.MealPlanRepository {
	return &MealPlanRepository{db: db}
}

// Create stores a plan with its days and any entries already on them
func (r *MealPlanRepository) Create(ctx context.Context, plan *mealplan.MealPlan) error {
	return r.db.WithContext(ctx).Create(MealPlanToModel(plan)).Error
}

// FindByID loads a plan with days in date order and entries in sort order
func (r *MealPlanRepository) FindByID(ctx context.Context, id uuid.UUID) (*mealplan.MealPlan, error) {
	var model MealPlanModel

	result := r.db.WithContext(ctx).
		Preload("Days", func(db *gorm.DB) *gorm.DB {
			return db.Order("date ASC")
		}).
		Preload("Days.Entries", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Preload("Days.Entries.Recipe").
		First(&model, "id = ?", id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, mealplan.ErrPlanNotFound
		}
		return nil, result.Error
	}

	return ModelToMealPlan(&model), nil
}

// AddEntry persists a single entry
func (r *MealPlanRepository) AddEntry(ctx context.Context, entry *mealplan.Entry) error {
	return r.db.WithContext(ctx).Create(EntryToModel(entry)).Error
}

// DeleteEntry removes an entry of the plan and its snapshots
func (r *MealPlanRepository) DeleteEntry(ctx context.Context, planID, entryID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&MealPlanEntryModel{}).
			Joins("JOIN meal_plan_days ON meal_plan_days.id = meal_plan_entries.day_id").
			Where("meal_plan_entries.id = ? AND meal_plan_days.meal_plan_id = ?", entryID, planID).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count == 0 {
			return mealplan.ErrEntryNotFound
		}

		if err := tx.Where("entry_id = ?", entryID).Delete(&ScaledRecipeModel{}).Error; err != nil {
			return err
		}
		return tx.Delete(&MealPlanEntryModel{}, "id = ?", entryID).Error
	})
}
