// Package mealplan contains the meal plan aggregate: days, entries, the persons
// sharing the plan and the per-person scaled recipe snapshots.
package mealplan

import (
	"strings"
	"time"

	"github.com/alchemorsel/mealplan/internal/domain/recipe"
	"github.com/google/uuid"
)

// MaxPlanDays bounds the date range of a single plan
const MaxPlanDays = 31

const dateLayout = "2006-01-02"

// MealPlan is an ordered list of days between two dates
type MealPlan struct {
	ID        uuid.UUID
	Name      string
	StartDate time.Time
	EndDate   time.Time
	Days      []Day
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Day is one calendar date of a plan
type Day struct {
	ID      uuid.UUID
	PlanID  uuid.UUID
	Date    time.Time
	Weekday int // Monday=0 .. Sunday=6
	Entries []Entry
}

// Entry assigns one recipe to a meal slot of a day
type Entry struct {
	ID        uuid.UUID
	DayID     uuid.UUID
	Recipe    *recipe.Recipe
	Category  recipe.Category
	SortOrder int
}

// NewMealPlan creates a plan with one day per date in [start, end]
func NewMealPlan(name string, start, end time.Time) (*MealPlan, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrPlanNameRequired
	}

	start = truncateDate(start)
	end = truncateDate(end)
	if end.Before(start) {
		return nil, ErrInvalidDateRange
	}

	plan := &MealPlan{
		ID:        uuid.New(),
		Name:      name,
		StartDate: start,
		EndDate:   end,
	}

	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if len(plan.Days) == MaxPlanDays {
			return nil, ErrPlanTooLong
		}
		plan.Days = append(plan.Days, Day{
			ID:      uuid.New(),
			PlanID:  plan.ID,
			Date:    d,
			Weekday: WeekdayIndex(d),
		})
	}

	now := time.Now()
	plan.CreatedAt = now
	plan.UpdatedAt = now
	return plan, nil
}

// WeekdayIndex maps a date to Monday=0 .. Sunday=6
func WeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

func truncateDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Entries returns every entry of the plan in day order
func (p *MealPlan) Entries() []Entry {
	var entries []Entry
	for _, day := range p.Days {
		entries = append(entries, day.Entries...)
	}
	return entries
}

// RecipeIDs returns the ids of every recipe already used in the plan
func (p *MealPlan) RecipeIDs() []uuid.UUID {
	seen := make(map[uuid.UUID]struct{})
	var ids []uuid.UUID
	for _, entry := range p.Entries() {
		if entry.Recipe == nil {
			continue
		}
		id := entry.Recipe.ID()
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

// FindEntry looks up an entry anywhere in the plan
func (p *MealPlan) FindEntry(id uuid.UUID) (Entry, bool) {
	for _, day := range p.Days {
		for _, entry := range day.Entries {
			if entry.ID == id {
				return entry, true
			}
		}
	}
	return Entry{}, false
}

// Label renders the day's date
func (d Day) Label() string {
	return d.Date.Format(dateLayout)
}

// CountCategory returns how many entries of category c the day holds
func (d Day) CountCategory(c recipe.Category) int {
	n := 0
	for _, entry := range d.Entries {
		if entry.Category == c {
			n++
		}
	}
	return n
}

// Calories sums the base calories of every entry of the day
func (d Day) Calories() int {
	total := 0
	for _, entry := range d.Entries {
		if entry.Recipe != nil {
			total += entry.Recipe.Calories()
		}
	}
	return total
}

// NextSortOrder returns the sort order for an entry appended to the day
func (d Day) NextSortOrder() int {
	next := 0
	for _, entry := range d.Entries {
		if entry.SortOrder >= next {
			next = entry.SortOrder + 1
		}
	}
	return next
}

// NewEntry creates an entry for recipe r in slot category c
func NewEntry(dayID uuid.UUID, r *recipe.Recipe, c recipe.Category, sortOrder int) (Entry, error) {
	if !c.IsValid() {
		return Entry{}, recipe.ErrInvalidCategory
	}
	return Entry{
		ID:        uuid.New(),
		DayID:     dayID,
		Recipe:    r,
		Category:  c,
		SortOrder: sortOrder,
	}, nil
}
