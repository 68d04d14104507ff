package mealplan

import (
	"time"

	"github.com/alchemorsel/mealplan/internal/application/planner"
	"github.com/alchemorsel/mealplan/internal/application/scaling"
	"github.com/alchemorsel/mealplan/internal/domain/mealplan"
	"github.com/alchemorsel/mealplan/internal/ports/inbound"
	"github.com/google/uuid"
)

func toMealPlanDTO(plan *mealplan.MealPlan, persons []mealplan.Person, snapshots []mealplan.ScaledRecipe) *inbound.MealPlanDTO {
	byEntry := make(map[uuid.UUID][]inbound.ScaledRecipeDTO)
	for _, s := range snapshots {
		byEntry[s.EntryID] = append(byEntry[s.EntryID], inbound.ScaledRecipeDTO{
			PersonID:    s.PersonID,
			Factor:      s.Factor,
			Nutrition:   inbound.NewNutritionDTO(s.Nutrition),
			Ingredients: s.Ingredients,
		})
	}

	dto := &inbound.MealPlanDTO{
		ID:        plan.ID,
		Name:      plan.Name,
		StartDate: plan.StartDate.Format(dateLayout),
		EndDate:   plan.EndDate.Format(dateLayout),
		Days:      make([]inbound.DayDTO, 0, len(plan.Days)),
		Persons:   make([]inbound.PersonDTO, 0, len(persons)),
	}

	for _, day := range plan.Days {
		d := inbound.DayDTO{
			ID:      day.ID,
			Date:    day.Label(),
			Weekday: day.Weekday,
			Entries: make([]inbound.EntryDTO, 0, len(day.Entries)),
		}
		for _, entry := range day.Entries {
			e := inbound.EntryDTO{
				ID:        entry.ID,
				Category:  entry.Category,
				SortOrder: entry.SortOrder,
				Scaled:    byEntry[entry.ID],
			}
			if entry.Recipe != nil {
				e.RecipeID = entry.Recipe.ID()
				e.Name = entry.Recipe.Name()
				e.Calories = entry.Recipe.Calories()
			}
			d.Entries = append(d.Entries, e)
		}
		dto.Days = append(dto.Days, d)
	}

	for _, p := range persons {
		dto.Persons = append(dto.Persons, toPersonDTO(p))
	}

	return dto
}

func toPersonDTO(p mealplan.Person) inbound.PersonDTO {
	return inbound.PersonDTO{
		ID:             p.ID,
		Name:           p.Name,
		TargetCalories: p.TargetCalories,
	}
}

func toAutoGenerateResult(r *planner.Result, plan *inbound.MealPlanDTO) *inbound.AutoGenerateResult {
	out := &inbound.AutoGenerateResult{
		Added:     r.Added,
		Optimized: r.Optimized,
		Target:    r.Target,
		Warnings:  r.Warnings,
		Plan:      plan,
	}
	for _, s := range r.Shortfalls {
		out.Shortfalls = append(out.Shortfalls, inbound.ShortfallDTO{
			Date:     s.Date,
			Category: s.Category,
			Missing:  s.Missing,
		})
	}
	if r.Scaling != nil {
		out.Scaling = toScaleResult(r.Scaling)
	}
	return out
}

func toScaleResult(r *scaling.Result) *inbound.ScaleResult {
	return &inbound.ScaleResult{
		Mode:     inbound.ScaleMode(r.Mode),
		Deleted:  r.Deleted,
		Scaled:   r.Scaled,
		Skipped:  r.Skipped,
		Failed:   r.Failed,
		Warnings: r.Warnings,
	}
}

func toShoppingListDTO(list *mealplan.ShoppingList) *inbound.ShoppingListDTO {
	dto := &inbound.ShoppingListDTO{
		PlanID:      list.PlanID,
		Items:       make([]inbound.ShoppingItemDTO, 0, len(list.Items)),
		GeneratedAt: list.GeneratedAt.Format(time.RFC3339),
	}
	for _, item := range list.Items {
		dto.Items = append(dto.Items, inbound.ShoppingItemDTO{
			Name:     item.Name,
			Quantity: item.Quantity,
			Category: item.Category,
		})
	}
	return dto
}
