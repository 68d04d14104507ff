package mealplan

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Person limits
const (
	MinTargetCalories   = 1000
	MaxTargetCalories   = 5000
	MaxPersonsPerPlan   = 5
	MaxPersonNameLength = 100
)

// Person shares a meal plan with their own daily calorie target
type Person struct {
	ID             uuid.UUID
	PlanID         uuid.UUID
	Name           string
	TargetCalories int
	CreatedAt      time.Time
}

// NewPerson validates and creates a person for a plan
func NewPerson(planID uuid.UUID, name string, targetCalories int) (*Person, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrPersonNameRequired
	}
	if utf8.RuneCountInString(name) > MaxPersonNameLength {
		return nil, ErrPersonNameTooLong
	}
	if targetCalories < MinTargetCalories || targetCalories > MaxTargetCalories {
		return nil, ErrTargetCaloriesOutOfRange
	}

	return &Person{
		ID:             uuid.New(),
		PlanID:         planID,
		Name:           name,
		TargetCalories: targetCalories,
		CreatedAt:      time.Now(),
	}, nil
}

// CheckCanJoin verifies p can be added next to the existing persons of a plan
func (p *Person) CheckCanJoin(existing []Person) error {
	if len(existing) >= MaxPersonsPerPlan {
		return ErrTooManyPersons
	}
	for _, other := range existing {
		if strings.EqualFold(other.Name, p.Name) {
			return ErrDuplicatePersonName
		}
	}
	return nil
}

// MaxTarget returns the highest target among persons, or 0 if there are none
func MaxTarget(persons []Person) int {
	highest := 0
	for _, p := range persons {
		if p.TargetCalories > highest {
			highest = p.TargetCalories
		}
	}
	return highest
}
