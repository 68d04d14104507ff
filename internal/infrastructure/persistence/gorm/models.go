// Package gorm provides GORM model definitions for the application
package gorm

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/alchemorsel/mealplan/internal/domain/mealplan"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RecipeModel represents the GORM model for recipes
type RecipeModel struct {
	ID                uuid.UUID `gorm:"type:char(36);primaryKey"`
	Name              string    `gorm:"type:varchar(200);not null"`
	Category          string    `gorm:"type:varchar(20);not null;index:idx_recipes_category_calories,priority:1"`
	AlternateCategory string    `gorm:"type:varchar(20);index"`

	// Nutrition per serving
	Calories      int     `gorm:"not null;default:0;index:idx_recipes_category_calories,priority:2"`
	Protein       float64 `gorm:"not null;default:0"`
	Carbohydrates float64 `gorm:"not null;default:0"`
	Fat           float64 `gorm:"not null;default:0"`

	Ingredients string `gorm:"type:text;not null"`
	DoNotScale  bool   `gorm:"not null;default:false"`

	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

// TableName overrides the table name
func (RecipeModel) TableName() string { return "recipes" }

// MealPlanModel represents the GORM model for meal plans
type MealPlanModel struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey"`
	Name      string    `gorm:"type:varchar(200);not null"`
	StartDate time.Time `gorm:"not null"`
	EndDate   time.Time `gorm:"not null"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time

	// Relationships
	Days    []MealPlanDayModel `gorm:"foreignKey:MealPlanID;constraint:OnDelete:CASCADE"`
	Persons []PersonModel      `gorm:"foreignKey:MealPlanID;constraint:OnDelete:CASCADE"`
}

// TableName overrides the table name
func (MealPlanModel) TableName() string { return "meal_plans" }

// MealPlanDayModel represents one date of a plan
type MealPlanDayModel struct {
	ID         uuid.UUID `gorm:"type:char(36);primaryKey"`
	MealPlanID uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:idx_plan_day_date,priority:1"`
	Date       time.Time `gorm:"not null;uniqueIndex:idx_plan_day_date,priority:2"`
	Weekday    int       `gorm:"not null;check:weekday >= 0 AND weekday <= 6"`

	// Relationships
	Entries []MealPlanEntryModel `gorm:"foreignKey:DayID;constraint:OnDelete:CASCADE"`
}

// TableName overrides the table name
func (MealPlanDayModel) TableName() string { return "meal_plan_days" }

// MealPlanEntryModel assigns a recipe to a day
type MealPlanEntryModel struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey"`
	DayID     uuid.UUID `gorm:"type:char(36);not null;index"`
	RecipeID  uuid.UUID `gorm:"type:char(36);not null;index"`
	Category  string    `gorm:"type:varchar(20);not null"`
	SortOrder int       `gorm:"not null;default:0"`
	CreatedAt time.Time

	// Relationships, read only
	Recipe *RecipeModel `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
}

// TableName overrides the table name
func (MealPlanEntryModel) TableName() string { return "meal_plan_entries" }

// PersonModel represents a person sharing a plan
type PersonModel struct {
	ID             uuid.UUID `gorm:"type:char(36);primaryKey"`
	MealPlanID     uuid.UUID `gorm:"type:char(36);not null;index"`
	Name           string    `gorm:"type:varchar(100);not null"`
	TargetCalories int       `gorm:"not null;check:target_calories >= 1000 AND target_calories <= 5000"`
	CreatedAt      time.Time `gorm:"index"`
}

// TableName overrides the table name
func (PersonModel) TableName() string { return "meal_plan_persons" }

// ScaledRecipeModel stores one person's snapshot of an entry
type ScaledRecipeModel struct {
	ID         uuid.UUID `gorm:"type:char(36);primaryKey"`
	MealPlanID uuid.UUID `gorm:"type:char(36);not null;index"`
	EntryID    uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:idx_scaled_entry_person,priority:1"`
	PersonID   uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:idx_scaled_entry_person,priority:2;index"`
	Factor     float64   `gorm:"not null"`

	Calories      int     `gorm:"not null"`
	Protein       float64 `gorm:"not null"`
	Carbohydrates float64 `gorm:"not null"`
	Fat           float64 `gorm:"not null"`

	Ingredients StringSlice `gorm:"type:text;not null"`
	CreatedAt   time.Time
}

// TableName overrides the table name
func (ScaledRecipeModel) TableName() string { return "meal_plan_recipes" }

// ShoppingListModel stores the single shopping list of a plan
type ShoppingListModel struct {
	ID          uuid.UUID     `gorm:"type:char(36);primaryKey"`
	MealPlanID  uuid.UUID     `gorm:"type:char(36);not null;uniqueIndex"`
	Items       ShoppingItems `gorm:"type:text;not null"`
	GeneratedAt time.Time
}

// TableName overrides the table name
func (ShoppingListModel) TableName() string { return "shopping_lists" }

// AllModels lists every model in dependency order for auto-migration
func AllModels() []interface{} {
	return []interface{}{
		&RecipeModel{},
		&MealPlanModel{},
		&MealPlanDayModel{},
		&MealPlanEntryModel{},
		&PersonModel{},
		&ScaledRecipeModel{},
		&ShoppingListModel{},
	}
}

// StringSlice custom type for handling string slices in JSON
type StringSlice []string

// Scan implements the sql.Scanner interface
func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = StringSlice{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("cannot scan %T into StringSlice", value)
	}
}

// Value implements the driver.Valuer interface
func (s StringSlice) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// ShoppingItems stores shopping list lines as JSON
type ShoppingItems []mealplan.ShoppingItem

// Scan implements the sql.Scanner interface
func (s *ShoppingItems) Scan(value interface{}) error {
	if value == nil {
		*s = ShoppingItems{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("cannot scan %T into ShoppingItems", value)
	}
}

// Value implements the driver.Valuer interface
func (s ShoppingItems) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// BeforeCreate hook for RecipeModel
func (r *RecipeModel) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// BeforeCreate hook for MealPlanModel
func (p *MealPlanModel) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// BeforeCreate hook for MealPlanEntryModel
func (e *MealPlanEntryModel) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
