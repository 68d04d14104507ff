package planner

import (
	"context"
	"sync"

	"github.com/alchemorsel/mealplan/internal/application/scaling"
	"github.com/alchemorsel/mealplan/internal/domain/mealplan"
	"github.com/alchemorsel/mealplan/internal/domain/recipe"
	"github.com/alchemorsel/mealplan/internal/ports/outbound"
	"github.com/alchemorsel/mealplan/pkg/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PlanScaler runs scaling for a plan after generation
type PlanScaler interface {
	Scale(ctx context.Context, planID uuid.UUID, mode scaling.Mode) (*scaling.Result, error)
}

// Defaults are applied to zero-valued request fields
type Defaults struct {
	Categories     []recipe.Category
	PerDay         int
	CalorieMargin  int
	TargetCalories int
}

// DefaultDefaults returns the built-in generation defaults
func DefaultDefaults() Defaults {
	return Defaults{
		Categories:     []recipe.Category{recipe.CategoryBreakfast, recipe.CategoryLunch, recipe.CategoryDinner},
		PerDay:         1,
		CalorieMargin:  200,
		TargetCalories: 2000,
	}
}

// Request describes one auto-generation run
type Request struct {
	Categories       []recipe.Category
	PerDay           int
	TargetCalories   int
	CalorieMargin    int
	OptimizeCalories bool
	SkipScaling      bool
}

// Result aggregates the outcome of every day
type Result struct {
	Added      int
	Optimized  bool
	Target     int
	Shortfalls []Shortfall
	Warnings   []string
	Scaling    *scaling.Result
}

// Generator drives the DayFiller across every day of a plan
type Generator struct {
	persons outbound.PersonRepository
	filler  *DayFiller
	scaler  PlanScaler
	metrics outbound.MetricsRecorder
	logger  *zap.Logger

	mu       sync.RWMutex
	defaults Defaults
}

// NewGenerator creates a plan auto-generator
func NewGenerator(
	persons outbound.PersonRepository,
	filler *DayFiller,
	scaler PlanScaler,
	defaults Defaults,
	metrics outbound.MetricsRecorder,
	logger *zap.Logger,
) *Generator {
	metrics = outbound.MetricsOrNop(metrics)
	return &Generator{
		persons:  persons,
		filler:   filler,
		scaler:   scaler,
		metrics:  metrics,
		logger:   logger.Named("plan-generator"),
		defaults: defaults,
	}
}

// SetDefaults replaces the generation defaults, e.g. after a config reload
func (g *Generator) SetDefaults(d Defaults) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.defaults = d
}

func (g *Generator) currentDefaults() Defaults {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.defaults
}

// Generate fills every day of plan. When the plan has persons the target is
// the most demanding person's and calorie optimization is always on; scaling
// then runs in fill-missing mode unless skipped, and its failures only
// produce warnings.
func (g *Generator) Generate(ctx context.Context, plan *mealplan.MealPlan, req Request) (*Result, error) {
	if len(plan.Days) == 0 {
		return nil, errors.NewNoDaysError(plan.ID.String())
	}

	persons, err := g.persons.ListForPlan(ctx, plan.ID)
	if err != nil {
		return nil, errors.NewDatabaseError("list plan persons", err)
	}

	opts := g.resolveOptions(req, persons)
	result := &Result{Optimized: opts.Optimize}
	if opts.Optimize {
		result.Target = opts.Target
	}

	g.logger.Info("Auto-generating meal plan",
		zap.String("plan_id", plan.ID.String()),
		zap.Int("days", len(plan.Days)),
		zap.Int("persons", len(persons)),
		zap.Bool("optimize", opts.Optimize),
		zap.Int("target", opts.Target),
	)

	used := NewUsedSet(plan.RecipeIDs()...)

	for i := range plan.Days {
		dayResult, err := g.filler.Fill(ctx, &plan.Days[i], opts, used)
		if err != nil {
			return nil, errors.NewDatabaseError("fill meal plan day", err)
		}
		result.Added += len(dayResult.Added)
		result.Shortfalls = append(result.Shortfalls, dayResult.Shortfalls...)
		result.Warnings = append(result.Warnings, dayResult.Warnings...)
		for _, s := range dayResult.Shortfalls {
			g.metrics.Shortfall(string(s.Category), s.Missing)
		}
	}
	g.metrics.RecipesAdded(result.Added)

	if len(persons) > 0 && !req.SkipScaling && g.scaler != nil {
		scaled, err := g.scaler.Scale(ctx, plan.ID, scaling.ModeFillMissing)
		if err != nil {
			g.logger.Warn("Scaling after generation failed", zap.Error(err))
			result.Warnings = append(result.Warnings, "Scaling skipped: "+err.Error())
		} else {
			result.Scaling = scaled
		}
	}

	return result, nil
}

func (g *Generator) resolveOptions(req Request, persons []mealplan.Person) FillOptions {
	d := g.currentDefaults()

	opts := FillOptions{
		Categories: req.Categories,
		PerDay:     req.PerDay,
		Target:     req.TargetCalories,
		Margin:     req.CalorieMargin,
		Optimize:   req.OptimizeCalories,
	}
	if len(opts.Categories) == 0 {
		opts.Categories = d.Categories
	}
	if opts.PerDay <= 0 {
		opts.PerDay = d.PerDay
	}
	if opts.Margin <= 0 {
		opts.Margin = d.CalorieMargin
	}
	if opts.Target <= 0 {
		opts.Target = d.TargetCalories
	}

	// Base recipes are sized for the most demanding person
	if len(persons) > 0 {
		opts.Target = mealplan.MaxTarget(persons)
		opts.Optimize = true
	}

	return opts
}
