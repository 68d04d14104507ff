// Package gorm provides mapping between domain entities and GORM models
package gorm

import (
	"github.com/alchemorsel/mealplan/internal/domain/mealplan"
	"github.com/alchemorsel/mealplan/internal/domain/recipe"
)

// RecipeToModel converts a domain recipe to a GORM model
func RecipeToModel(r *recipe.Recipe) *RecipeModel {
	s := r.ToSnapshot()
	return &RecipeModel{
		ID:                s.ID,
		Name:              s.Name,
		Category:          string(s.Category),
		AlternateCategory: string(s.AlternateCategory),
		Calories:          s.Nutrition.Calories,
		Protein:           s.Nutrition.Protein,
		Carbohydrates:     s.Nutrition.Carbohydrates,
		Fat:               s.Nutrition.Fat,
		Ingredients:       s.Ingredients,
		DoNotScale:        s.DoNotScale,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}
}

// ModelToRecipe converts a GORM model to a domain recipe
func ModelToRecipe(m *RecipeModel) *recipe.Recipe {
	return recipe.Reconstitute(recipe.Snapshot{
		ID:                m.ID,
		Name:              m.Name,
		Category:          recipe.Category(m.Category),
		AlternateCategory: recipe.Category(m.AlternateCategory),
		Nutrition: recipe.NutritionInfo{
			Calories:      m.Calories,
			Protein:       m.Protein,
			Carbohydrates: m.Carbohydrates,
			Fat:           m.Fat,
		},
		Ingredients: m.Ingredients,
		DoNotScale:  m.DoNotScale,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	})
}

// MealPlanToModel converts a plan with its days and entries. Recipes are
// referenced by id only.
func MealPlanToModel(p *mealplan.MealPlan) *MealPlanModel {
	model := &MealPlanModel{
		ID:        p.ID,
		Name:      p.Name,
		StartDate: p.StartDate,
		EndDate:   p.EndDate,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
		Days:      make([]MealPlanDayModel, len(p.Days)),
	}
	for i, day := range p.Days {
		dm := MealPlanDayModel{
			ID:         day.ID,
			MealPlanID: p.ID,
			Date:       day.Date,
			Weekday:    day.Weekday,
		}
		for _, e := range day.Entries {
			dm.Entries = append(dm.Entries, *EntryToModel(&e))
		}
		model.Days[i] = dm
	}
	return model
}

// ModelToMealPlan converts a fully preloaded plan model
func ModelToMealPlan(m *MealPlanModel) *mealplan.MealPlan {
	plan := &mealplan.MealPlan{
		ID:        m.ID,
		Name:      m.Name,
		StartDate: m.StartDate,
		EndDate:   m.EndDate,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
		Days:      make([]mealplan.Day, len(m.Days)),
	}
	for i, dm := range m.Days {
		day := mealplan.Day{
			ID:      dm.ID,
			PlanID:  dm.MealPlanID,
			Date:    dm.Date,
			Weekday: dm.Weekday,
		}
		for j := range dm.Entries {
			day.Entries = append(day.Entries, ModelToEntry(&dm.Entries[j]))
		}
		plan.Days[i] = day
	}
	return plan
}

// EntryToModel converts an entry without its recipe association
func EntryToModel(e *mealplan.Entry) *MealPlanEntryModel {
	model := &MealPlanEntryModel{
		ID:        e.ID,
		DayID:     e.DayID,
		Category:  string(e.Category),
		SortOrder: e.SortOrder,
	}
	if e.Recipe != nil {
		model.RecipeID = e.Recipe.ID()
	}
	return model
}

// ModelToEntry converts an entry model with its preloaded recipe
func ModelToEntry(m *MealPlanEntryModel) mealplan.Entry {
	entry := mealplan.Entry{
		ID:        m.ID,
		DayID:     m.DayID,
		Category:  recipe.Category(m.Category),
		SortOrder: m.SortOrder,
	}
	if m.Recipe != nil {
		entry.Recipe = ModelToRecipe(m.Recipe)
	}
	return entry
}

// PersonToModel converts a domain person
func PersonToModel(p *mealplan.Person) *PersonModel {
	return &PersonModel{
		ID:             p.ID,
		MealPlanID:     p.PlanID,
		Name:           p.Name,
		TargetCalories: p.TargetCalories,
		CreatedAt:      p.CreatedAt,
	}
}

// ModelToPerson converts a person model
func ModelToPerson(m *PersonModel) mealplan.Person {
	return mealplan.Person{
		ID:             m.ID,
		PlanID:         m.MealPlanID,
		Name:           m.Name,
		TargetCalories: m.TargetCalories,
		CreatedAt:      m.CreatedAt,
	}
}

// ScaledRecipeToModel converts a snapshot
func ScaledRecipeToModel(s *mealplan.ScaledRecipe) *ScaledRecipeModel {
	return &ScaledRecipeModel{
		ID:            s.ID,
		MealPlanID:    s.PlanID,
		EntryID:       s.EntryID,
		PersonID:      s.PersonID,
		Factor:        s.Factor,
		Calories:      s.Nutrition.Calories,
		Protein:       s.Nutrition.Protein,
		Carbohydrates: s.Nutrition.Carbohydrates,
		Fat:           s.Nutrition.Fat,
		Ingredients:   StringSlice(s.Ingredients),
		CreatedAt:     s.CreatedAt,
	}
}

// ModelToScaledRecipe converts a snapshot model
func ModelToScaledRecipe(m *ScaledRecipeModel) mealplan.ScaledRecipe {
	return mealplan.ScaledRecipe{
		ID:       m.ID,
		PlanID:   m.MealPlanID,
		EntryID:  m.EntryID,
		PersonID: m.PersonID,
		Factor:   m.Factor,
		Nutrition: recipe.NutritionInfo{
			Calories:      m.Calories,
			Protein:       m.Protein,
			Carbohydrates: m.Carbohydrates,
			Fat:           m.Fat,
		},
		Ingredients: []string(m.Ingredients),
		CreatedAt:   m.CreatedAt,
	}
}

// ShoppingListToModel converts a shopping list
func ShoppingListToModel(l *mealplan.ShoppingList) *ShoppingListModel {
	return &ShoppingListModel{
		ID:          l.ID,
		MealPlanID:  l.PlanID,
		Items:       ShoppingItems(l.Items),
		GeneratedAt: l.GeneratedAt,
	}
}

// ModelToShoppingList converts a shopping list model
func ModelToShoppingList(m *ShoppingListModel) *mealplan.ShoppingList {
	return &mealplan.ShoppingList{
		ID:          m.ID,
		PlanID:      m.MealPlanID,
		Items:       []mealplan.ShoppingItem(m.Items),
		GeneratedAt: m.GeneratedAt,
	}
}
