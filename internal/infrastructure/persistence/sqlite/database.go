// Package sqlite provides SQLite database setup and configuration
package sqlite

import (
	"context"
	"fmt"

	"github.com/alchemorsel/mealplan/internal/domain/recipe"
	gormModels "github.com/alchemorsel/mealplan/internal/infrastructure/persistence/gorm"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// SetupDatabase opens the SQLite database at dbPath and migrates every model
func SetupDatabase(dbPath string, logLevel string, log *zap.Logger) (*gorm.DB, error) {
	// Use in-memory database if no path provided
	if dbPath == "" {
		dbPath = ":memory:"
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: gormModels.NewLogger(log, logLevel, 0),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	// SQLite serializes writers; one connection also keeps :memory: stable
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(gormModels.AllModels()...); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Info("SQLite database ready", zap.String("path", dbPath))
	return db, nil
}

type demoRecipe struct {
	name        string
	category    recipe.Category
	alternate   recipe.Category
	nutrition   recipe.NutritionInfo
	ingredients string
	fixed       bool
}

var demoRecipes = []demoRecipe{
	{name: "Overnight Oats", category: recipe.CategoryBreakfast,
		nutrition:   recipe.NutritionInfo{Calories: 420, Protein: 16, Carbohydrates: 62, Fat: 11},
		ingredients: "80 g rolled oats\n200 ml milk\n100 g Greek yogurt\n1 tbsp honey\n50 g blueberries"},
	{name: "Spinach Omelette", category: recipe.CategoryBreakfast,
		nutrition:   recipe.NutritionInfo{Calories: 380, Protein: 26, Carbohydrates: 4, Fat: 28},
		ingredients: "3 eggs\n50 g baby spinach\n30 g feta\n1 tsp olive oil\nsalt\npepper"},
	{name: "Banana Pancakes", category: recipe.CategoryBreakfast, alternate: recipe.CategoryDessert,
		nutrition:   recipe.NutritionInfo{Calories: 510, Protein: 14, Carbohydrates: 78, Fat: 15},
		ingredients: "1 ripe banana\n2 eggs\n60 g flour\n100 ml milk\n1 tbsp butter\n1 tbsp maple syrup"},
	{name: "Sourdough Loaf", category: recipe.CategoryBreakfast, fixed: true,
		nutrition:   recipe.NutritionInfo{Calories: 260, Protein: 9, Carbohydrates: 50, Fat: 2},
		ingredients: "1 sourdough loaf"},
	{name: "Chicken Caesar Salad", category: recipe.CategoryLunch,
		nutrition:   recipe.NutritionInfo{Calories: 560, Protein: 42, Carbohydrates: 18, Fat: 34},
		ingredients: "150 g chicken breast\n1 romaine lettuce\n30 g parmesan\n40 g croutons\n3 tbsp Caesar dressing"},
	{name: "Lentil Soup", category: recipe.CategoryLunch,
		nutrition:   recipe.NutritionInfo{Calories: 450, Protein: 24, Carbohydrates: 66, Fat: 8},
		ingredients: "120 g red lentils\n1 carrot\n1 onion\n1 garlic clove\n750 ml vegetable stock\n1 tsp cumin"},
	{name: "Tuna Wrap", category: recipe.CategoryLunch,
		nutrition:   recipe.NutritionInfo{Calories: 610, Protein: 38, Carbohydrates: 52, Fat: 26},
		ingredients: "1 large tortilla\n120 g canned tuna\n2 tbsp mayonnaise\n1 tomato\n30 g lettuce"},
	{name: "Beef Stew", category: recipe.CategoryDinner,
		nutrition:   recipe.NutritionInfo{Calories: 690, Protein: 48, Carbohydrates: 40, Fat: 36},
		ingredients: "200 g stewing beef\n2 potatoes\n2 carrots\n1 onion\n300 ml beef stock\n1 tbsp tomato paste"},
	{name: "Salmon with Rice", category: recipe.CategoryDinner,
		nutrition:   recipe.NutritionInfo{Calories: 640, Protein: 40, Carbohydrates: 58, Fat: 24},
		ingredients: "150 g salmon fillet\n80 g basmati rice\n100 g broccoli\n1 tbsp soy sauce\n1 lemon"},
	{name: "Vegetable Curry", category: recipe.CategoryDinner, alternate: recipe.CategoryLunch,
		nutrition:   recipe.NutritionInfo{Calories: 580, Protein: 16, Carbohydrates: 70, Fat: 24},
		ingredients: "200 g chickpeas\n1 sweet potato\n200 ml coconut milk\n1 onion\n2 tbsp curry paste\n80 g rice"},
	{name: "Spaghetti Bolognese", category: recipe.CategoryDinner,
		nutrition:   recipe.NutritionInfo{Calories: 720, Protein: 38, Carbohydrates: 84, Fat: 24},
		ingredients: "100 g spaghetti\n125 g minced beef\n200 g chopped tomatoes\n1 onion\n1 garlic clove\n20 g parmesan"},
	{name: "Chocolate Mousse", category: recipe.CategoryDessert,
		nutrition:   recipe.NutritionInfo{Calories: 340, Protein: 6, Carbohydrates: 26, Fat: 24},
		ingredients: "60 g dark chocolate\n2 eggs\n1 tbsp sugar\n50 ml cream"},
	{name: "Apple Crumble", category: recipe.CategoryDessert,
		nutrition:   recipe.NutritionInfo{Calories: 390, Protein: 4, Carbohydrates: 58, Fat: 16},
		ingredients: "2 apples\n40 g flour\n30 g butter\n30 g brown sugar\n20 g oats"},
	{name: "Berry Smoothie", category: recipe.CategoryDrink, alternate: recipe.CategoryBreakfast,
		nutrition:   recipe.NutritionInfo{Calories: 240, Protein: 8, Carbohydrates: 44, Fat: 4},
		ingredients: "150 g mixed berries\n1 banana\n200 ml almond milk\n1 tbsp chia seeds"},
	{name: "Orange Juice Bottle", category: recipe.CategoryDrink, fixed: true,
		nutrition:   recipe.NutritionInfo{Calories: 110, Protein: 2, Carbohydrates: 26, Fat: 0},
		ingredients: "1 bottle orange juice (330 ml)"},
}

// SeedDatabase populates an empty recipe catalog with demo recipes
func SeedDatabase(ctx context.Context, db *gorm.DB) error {
	var count int64
	if err := db.WithContext(ctx).Model(&gormModels.RecipeModel{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count recipes: %w", err)
	}
	if count > 0 {
		return nil // Already seeded
	}

	repo := gormModels.NewRecipeRepository(db)
	for _, d := range demoRecipes {
		r, err := recipe.NewRecipe(d.name, d.category, d.nutrition, d.ingredients)
		if err != nil {
			return fmt.Errorf("invalid demo recipe %q: %w", d.name, err)
		}
		if err := r.SetAlternateCategory(d.alternate); err != nil {
			return fmt.Errorf("invalid demo recipe %q: %w", d.name, err)
		}
		if d.fixed {
			r.MarkDoNotScale()
		}
		if err := repo.Create(ctx, r); err != nil {
			return fmt.Errorf("failed to create demo recipe %q: %w", d.name, err)
		}
	}

	return nil
}
