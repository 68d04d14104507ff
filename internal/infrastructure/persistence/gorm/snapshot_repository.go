package gorm

import (
	"context"

	"github.com/alchemorsel/mealplan/internal/domain/mealplan"
	"github.com/alchemorsel/mealplan/internal/ports/outbound"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SnapshotRepository implements the scaled recipe repository interface using GORM
type SnapshotRepository struct {
	db *gorm.DB
}

// NewSnapshotRepository creates a new scaled recipe repository
func NewSnapshotRepository(db *gorm.DB) outbound.SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Create inserts a snapshot. An existing (entry, person) row is left untouched
// and reported as mealplan.ErrDuplicateSnapshot.
func (r *SnapshotRepository) Create(ctx context.Context, snapshot *mealplan.ScaledRecipe) error {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "entry_id"}, {Name: "person_id"}},
			DoNothing: true,
		}).
		Create(ScaledRecipeToModel(snapshot))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return mealplan.ErrDuplicateSnapshot
	}
	return nil
}

// DeleteAllForPlan removes every snapshot of the plan
func (r *SnapshotRepository) DeleteAllForPlan(ctx context.Context, planID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Where("meal_plan_id = ?", planID).Delete(&ScaledRecipeModel{})
	return result.RowsAffected, result.Error
}

// ListForPlan returns every snapshot of the plan
func (r *SnapshotRepository) ListForPlan(ctx context.Context, planID uuid.UUID) ([]mealplan.ScaledRecipe, error) {
	var models []ScaledRecipeModel

	err := r.db.WithContext(ctx).
		Where("meal_plan_id = ?", planID).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	snapshots := make([]mealplan.ScaledRecipe, len(models))
	for i := range models {
		snapshots[i] = ModelToScaledRecipe(&models[i])
	}
	return snapshots, nil
}

// ShoppingListRepository implements the shopping list repository interface using GORM
type ShoppingListRepository struct {
	db *gorm.DB
}

// NewShoppingListRepository creates a new shopping list repository
func NewShoppingListRepository(db *gorm.DB) outbound.ShoppingListRepository {
	return &ShoppingListRepository{db: db}
}

// Upsert replaces the plan's shopping list
func (r *ShoppingListRepository) Upsert(ctx context.Context, list *mealplan.ShoppingList) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "meal_plan_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"id", "items", "generated_at"}),
		}).
		Create(ShoppingListToModel(list)).Error
}

// FindByPlanID returns the plan's shopping list
func (r *ShoppingListRepository) FindByPlanID(ctx context.Context, planID uuid.UUID) (*mealplan.ShoppingList, error) {
	var models []ShoppingListModel

	err := r.db.WithContext(ctx).Where("meal_plan_id = ?", planID).Limit(1).Find(&models).Error
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, mealplan.ErrShoppingListNotFound
	}
	return ModelToShoppingList(&models[0]), nil
}
