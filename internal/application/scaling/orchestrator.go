// Package scaling turns a plan's base recipes into per-person snapshots using
// the day-level scaling factor of each person.
package scaling

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/alchemorsel/mealplan/internal/domain/mealplan"
	"github.com/alchemorsel/mealplan/internal/ports/outbound"
	"github.com/alchemorsel/mealplan/pkg/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Mode selects how existing snapshots are treated
type Mode string

const (
	ModeReset       Mode = "reset"
	ModeFillMissing Mode = "fill_missing"
)

// Result summarizes one scaling run
type Result struct {
	Mode     Mode
	Deleted  int64
	Scaled   int
	Skipped  int
	Failed   int
	Warnings []string
}

// Orchestrator iterates day, person and entry, in that order, and persists
// one snapshot per missing (entry, person) pair. It runs sequentially and
// takes no lock of its own.
type Orchestrator struct {
	plans      outbound.MealPlanRepository
	persons    outbound.PersonRepository
	snapshots  outbound.SnapshotRepository
	scaler     outbound.IngredientScaler
	calculator mealplan.ScalingCalculator
	metrics    outbound.MetricsRecorder
	logger     *zap.Logger
}

// NewOrchestrator creates a scaling orchestrator
func NewOrchestrator(
	plans outbound.MealPlanRepository,
	persons outbound.PersonRepository,
	snapshots outbound.SnapshotRepository,
	scaler outbound.IngredientScaler,
	calculator mealplan.ScalingCalculator,
	metrics outbound.MetricsRecorder,
	logger *zap.Logger,
) *Orchestrator {
	metrics = outbound.MetricsOrNop(metrics)
	return &Orchestrator{
		plans:      plans,
		persons:    persons,
		snapshots:  snapshots,
		scaler:     scaler,
		calculator: calculator,
		metrics:    metrics,
		logger:     logger.Named("scaling-orchestrator"),
	}
}

// Scale computes snapshots for every (entry, person) pair of the plan.
// Missing plan, days, persons or AI provider abort before any write; per-pair
// failures are reported as warnings.
func (o *Orchestrator) Scale(ctx context.Context, planID uuid.UUID, mode Mode) (*Result, error) {
	if mode != ModeReset && mode != ModeFillMissing {
		return nil, errors.NewValidationError(fmt.Sprintf("unknown scaling mode %q", mode))
	}

	plan, err := o.plans.FindByID(ctx, planID)
	if err != nil {
		if stderrors.Is(err, mealplan.ErrPlanNotFound) {
			return nil, errors.NewMealPlanNotFoundError(planID.String())
		}
		return nil, errors.NewDatabaseError("load meal plan", err)
	}
	if len(plan.Days) == 0 {
		return nil, errors.NewNoDaysError(planID.String())
	}

	persons, err := o.persons.ListForPlan(ctx, planID)
	if err != nil {
		return nil, errors.NewDatabaseError("list plan persons", err)
	}
	if len(persons) == 0 {
		return nil, errors.NewNoPersonsError(planID.String())
	}

	if err := o.scaler.Ready(); err != nil {
		return nil, errors.NewAIProviderUnavailableError(err)
	}

	result := &Result{Mode: mode}
	existing := make(map[mealplan.PairKey]struct{})

	switch mode {
	case ModeReset:
		deleted, err := o.snapshots.DeleteAllForPlan(ctx, planID)
		if err != nil {
			return nil, errors.NewDatabaseError("delete scaled recipes", err)
		}
		result.Deleted = deleted
	case ModeFillMissing:
		snapshots, err := o.snapshots.ListForPlan(ctx, planID)
		if err != nil {
			return nil, errors.NewDatabaseError("list scaled recipes", err)
		}
		for _, s := range snapshots {
			existing[s.Key()] = struct{}{}
		}
	}

	o.logger.Info("Scaling meal plan",
		zap.String("plan_id", planID.String()),
		zap.String("mode", string(mode)),
		zap.Int("days", len(plan.Days)),
		zap.Int("persons", len(persons)),
		zap.Int("existing", len(existing)),
	)

	for _, day := range plan.Days {
		for _, person := range persons {
			o.scaleDayForPerson(ctx, plan.ID, day, person, existing, result)
		}
	}

	o.logger.Info("Scaling finished",
		zap.String("plan_id", planID.String()),
		zap.Int("scaled", result.Scaled),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
		zap.Int("warnings", len(result.Warnings)),
	)

	return result, nil
}

func (o *Orchestrator) scaleDayForPerson(
	ctx context.Context,
	planID uuid.UUID,
	day mealplan.Day,
	person mealplan.Person,
	existing map[mealplan.PairKey]struct{},
	result *Result,
) {
	if len(day.Entries) == 0 {
		return
	}

	decision := o.calculator.ForDay(day, person.TargetCalories)
	if decision.Degenerate && hasPending(day, person, existing) {
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"%s: %s's target of %d kcal cannot be reached by scaling (base %d kcal), portions left unchanged",
			day.Label(), person.Name, person.TargetCalories, decision.DailyBase,
		))
	}

	for _, entry := range day.Entries {
		key := mealplan.PairKey{EntryID: entry.ID, PersonID: person.ID}
		if _, ok := existing[key]; ok {
			result.Skipped++
			o.metrics.Snapshot(outbound.OutcomeSkipped)
			continue
		}
		if entry.Recipe == nil {
			continue
		}

		factor := decision.FactorFor(entry.Recipe.DoNotScale())
		ingredients, outcome := o.ingredientsFor(ctx, entry, person, factor, result)

		snapshot := mealplan.NewScaledRecipe(planID, entry, person, factor, ingredients)
		if err := o.snapshots.Create(ctx, snapshot); err != nil {
			if stderrors.Is(err, mealplan.ErrDuplicateSnapshot) {
				result.Skipped++
				o.metrics.Snapshot(outbound.OutcomeSkipped)
				continue
			}
			o.logger.Error("Failed to persist scaled recipe",
				zap.String("recipe", entry.Recipe.Name()),
				zap.String("person", person.Name),
				zap.Error(err),
			)
			result.Failed++
			result.Warnings = append(result.Warnings, fmt.Sprintf(
				"Could not save scaled %q for %s: %v", entry.Recipe.Name(), person.Name, err,
			))
			o.metrics.Snapshot(outbound.OutcomeFailed)
			continue
		}

		existing[key] = struct{}{}
		result.Scaled++
		o.metrics.Snapshot(outcome)
		o.metrics.ScalingFactor(factor)
	}
}

// hasPending reports whether any entry of day still lacks a snapshot for person
func hasPending(day mealplan.Day, person mealplan.Person, existing map[mealplan.PairKey]struct{}) bool {
	for _, entry := range day.Entries {
		if entry.Recipe == nil {
			continue
		}
		if _, ok := existing[mealplan.PairKey{EntryID: entry.ID, PersonID: person.ID}]; !ok {
			return true
		}
	}
	return false
}

// ingredientsFor returns the lines for one pair. Factor 1.0 copies the base
// text without calling the scaler; a failed or empty scaler result falls back
// to the base text with a warning.
func (o *Orchestrator) ingredientsFor(
	ctx context.Context,
	entry mealplan.Entry,
	person mealplan.Person,
	factor float64,
	result *Result,
) ([]string, string) {
	base := entry.Recipe.IngredientLines()
	if factor == 1.0 {
		return base, outbound.OutcomeVerbatim
	}

	lines, err := o.scaler.ScaleIngredients(ctx, outbound.ScaleRequest{
		Recipe:   entry.Recipe,
		Factor:   factor,
		Category: entry.Category,
	})
	if err == nil && len(lines) == 0 {
		err = &outbound.ScaleError{Reason: outbound.ScaleReasonEmpty, Recipe: entry.Recipe.Name()}
	}
	if err != nil {
		o.logger.Warn("Ingredient scaling failed, using base ingredients",
			zap.String("recipe", entry.Recipe.Name()),
			zap.String("person", person.Name),
			zap.Float64("factor", factor),
			zap.Error(err),
		)
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"Scaling %q for %s failed, base ingredients used: %v", entry.Recipe.Name(), person.Name, err,
		))
		return base, outbound.OutcomeFallback
	}

	return lines, outbound.OutcomeScaled
}
