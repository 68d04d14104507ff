package gorm

import (
	"context"

	"github.com/alchemorsel/mealplan/internal/domain/mealplan"
	"github.com/alchemorsel/mealplan/internal/ports/outbound"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PersonRepository implements the person repository interface using GORM
type PersonRepository struct {
	db *gorm.DB
}

// NewPersonRepository creates a new person repository
func NewPersonRepository(db *gorm.DB) outbound.PersonRepository {
	return &PersonRepository{db: db}
}

// ListForPlan returns the plan's persons in the order they joined
func (r *PersonRepository) ListForPlan(ctx context.Context, planID uuid.UUID) ([]mealplan.Person, error) {
	var models []PersonModel

	err := r.db.WithContext(ctx).
		Where("meal_plan_id = ?", planID).
		Order("created_at ASC, id ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	persons := make([]mealplan.Person, len(models))
	for i := range models {
		persons[i] = ModelToPerson(&models[i])
	}
	return persons, nil
}

// Create stores a person
func (r *PersonRepository) Create(ctx context.Context, person *mealplan.Person) error {
	return r.db.WithContext(ctx).Create(PersonToModel(person)).Error
}

// Delete removes a person of the plan and its snapshots
func (r *PersonRepository) Delete(ctx context.Context, planID, personID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&PersonModel{}, "id = ? AND meal_plan_id = ?", personID, planID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return mealplan.ErrPersonNotFound
		}
		return tx.Where("person_id = ?", personID).Delete(&ScaledRecipeModel{}).Error
	})
}
