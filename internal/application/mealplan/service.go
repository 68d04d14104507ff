// Package mealplan provides the application layer for meal plans.
// It implements the use cases defined in the inbound ports and serializes
// plan-mutating operations with a per-plan lock.
package mealplan

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/alchemorsel/mealplan/internal/application/planner"
	"github.com/alchemorsel/mealplan/internal/application/scaling"
	"github.com/alchemorsel/mealplan/internal/application/shopping"
	"github.com/alchemorsel/mealplan/internal/domain/mealplan"
	"github.com/alchemorsel/mealplan/internal/domain/recipe"
	"github.com/alchemorsel/mealplan/internal/ports/inbound"
	"github.com/alchemorsel/mealplan/internal/ports/outbound"
	"github.com/alchemorsel/mealplan/pkg/errors"
	"github.com/alchemorsel/mealplan/pkg/validation"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// Repositories groups the stores the service reads and writes
type Repositories struct {
	Recipes   outbound.RecipeRepository
	Plans     outbound.MealPlanRepository
	Persons   outbound.PersonRepository
	Snapshots outbound.SnapshotRepository
}

// Service implements inbound.MealPlanService
type Service struct {
	repos        Repositories
	locker       outbound.PlanLocker
	generator    *planner.Generator
	orchestrator *scaling.Orchestrator
	aggregator   *shopping.Aggregator
	validator    *validation.Validator
	tracer       trace.Tracer
	logger       *zap.Logger
}

// NewService creates a new meal plan service
func NewService(
	repos Repositories,
	locker outbound.PlanLocker,
	generator *planner.Generator,
	orchestrator *scaling.Orchestrator,
	aggregator *shopping.Aggregator,
	logger *zap.Logger,
) inbound.MealPlanService {
	return &Service{
		repos:        repos,
		locker:       locker,
		generator:    generator,
		orchestrator: orchestrator,
		aggregator:   aggregator,
		validator:    validation.New(),
		tracer:       otel.Tracer("github.com/alchemorsel/mealplan/internal/application/mealplan"),
		logger:       logger.Named("mealplan-service"),
	}
}

// CreatePlan creates a plan with one day per date of its range
func (s *Service) CreatePlan(ctx context.Context, cmd inbound.CreatePlanCommand) (*inbound.MealPlanDTO, error) {
	if err := s.validator.Struct(cmd); err != nil {
		return nil, err
	}

	start, _ := time.Parse(dateLayout, cmd.StartDate)
	end, _ := time.Parse(dateLayout, cmd.EndDate)

	plan, err := mealplan.NewMealPlan(cmd.Name, start, end)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	if err := s.repos.Plans.Create(ctx, plan); err != nil {
		return nil, errors.NewDatabaseError("create meal plan", err)
	}

	s.logger.Info("Meal plan created",
		zap.String("plan_id", plan.ID.String()),
		zap.Int("days", len(plan.Days)),
	)

	return toMealPlanDTO(plan, nil, nil), nil
}

// GetPlan returns a plan with its persons and snapshots
func (s *Service) GetPlan(ctx context.Context, planID uuid.UUID) (*inbound.MealPlanDTO, error) {
	plan, err := s.loadPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	return s.planDTO(ctx, plan)
}

// AddEntry adds a recipe to one day of the plan
func (s *Service) AddEntry(ctx context.Context, cmd inbound.AddEntryCommand) (*inbound.MealPlanDTO, error) {
	if err := s.validator.Struct(cmd); err != nil {
		return nil, err
	}

	var dto *inbound.MealPlanDTO
	err := s.withPlanLock(ctx, cmd.PlanID, func(ctx context.Context) error {
		plan, err := s.loadPlan(ctx, cmd.PlanID)
		if err != nil {
			return err
		}

		var day *mealplan.Day
		for i := range plan.Days {
			if plan.Days[i].ID == cmd.DayID {
				day = &plan.Days[i]
				break
			}
		}
		if day == nil {
			return errors.NewAppError(errors.CodeNotFound, "Meal plan day not found", "").
				WithMetadata("day_id", cmd.DayID.String())
		}

		r, err := s.repos.Recipes.FindByID(ctx, cmd.RecipeID)
		if err != nil {
			if stderrors.Is(err, recipe.ErrRecipeNotFound) {
				return errors.NewAppError(errors.CodeNotFound, "Recipe not found", "").
					WithMetadata("recipe_id", cmd.RecipeID.String())
			}
			return errors.NewDatabaseError("load recipe", err)
		}

		category := cmd.Category
		if category == "" {
			category = r.Category()
		}

		entry, err := mealplan.NewEntry(day.ID, r, category, day.NextSortOrder())
		if err != nil {
			return errors.NewValidationError(err.Error())
		}
		if err := s.repos.Plans.AddEntry(ctx, &entry); err != nil {
			return errors.NewDatabaseError("add meal plan entry", err)
		}
		day.Entries = append(day.Entries, entry)

		dto, err = s.planDTO(ctx, plan)
		return err
	})
	if err != nil {
		return nil, err
	}

	return dto, nil
}

// RemoveEntry deletes an entry and its snapshots
func (s *Service) RemoveEntry(ctx context.Context, planID, entryID uuid.UUID) error {
	return s.withPlanLock(ctx, planID, func(ctx context.Context) error {
		if err := s.repos.Plans.DeleteEntry(ctx, planID, entryID); err != nil {
			if stderrors.Is(err, mealplan.ErrEntryNotFound) {
				return errors.NewEntryNotFoundError(entryID.String())
			}
			return errors.NewDatabaseError("delete meal plan entry", err)
		}
		s.logger.Info("Meal plan entry removed",
			zap.String("plan_id", planID.String()),
			zap.String("entry_id", entryID.String()),
		)
		return nil
	})
}

// AddPerson registers a person on the plan
func (s *Service) AddPerson(ctx context.Context, cmd inbound.AddPersonCommand) (*inbound.PersonDTO, error) {
	if err := s.validator.Struct(cmd); err != nil {
		return nil, err
	}

	var dto *inbound.PersonDTO
	err := s.withPlanLock(ctx, cmd.PlanID, func(ctx context.Context) error {
		if _, err := s.loadPlan(ctx, cmd.PlanID); err != nil {
			return err
		}

		person, err := mealplan.NewPerson(cmd.PlanID, cmd.Name, cmd.TargetCalories)
		if err != nil {
			return errors.NewValidationError(err.Error())
		}

		existing, err := s.repos.Persons.ListForPlan(ctx, cmd.PlanID)
		if err != nil {
			return errors.NewDatabaseError("list plan persons", err)
		}

		switch err := person.CheckCanJoin(existing); {
		case stderrors.Is(err, mealplan.ErrTooManyPersons):
			return errors.NewQuotaExceededError("persons per meal plan", mealplan.MaxPersonsPerPlan)
		case stderrors.Is(err, mealplan.ErrDuplicatePersonName):
			return errors.NewConflictError(err.Error())
		case err != nil:
			return errors.NewValidationError(err.Error())
		}

		if err := s.repos.Persons.Create(ctx, person); err != nil {
			return errors.NewDatabaseError("create person", err)
		}

		s.logger.Info("Person added to meal plan",
			zap.String("plan_id", cmd.PlanID.String()),
			zap.String("person_id", person.ID.String()),
			zap.Int("target_calories", person.TargetCalories),
		)

		p := toPersonDTO(*person)
		dto = &p
		return nil
	})
	if err != nil {
		return nil, err
	}

	return dto, nil
}

// RemovePerson deletes a person and its snapshots
func (s *Service) RemovePerson(ctx context.Context, planID, personID uuid.UUID) error {
	return s.withPlanLock(ctx, planID, func(ctx context.Context) error {
		if err := s.repos.Persons.Delete(ctx, planID, personID); err != nil {
			if stderrors.Is(err, mealplan.ErrPersonNotFound) {
				return errors.NewPersonNotFoundError(personID.String())
			}
			return errors.NewDatabaseError("delete person", err)
		}
		return nil
	})
}

// AutoGenerate fills the plan's empty slots and, with persons, scales them
func (s *Service) AutoGenerate(ctx context.Context, cmd inbound.AutoGenerateCommand) (*inbound.AutoGenerateResult, error) {
	if err := s.validator.Struct(cmd); err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "mealplan.AutoGenerate",
		trace.WithAttributes(attribute.String("plan.id", cmd.PlanID.String())))
	defer span.End()

	var result *inbound.AutoGenerateResult
	err := s.withPlanLock(ctx, cmd.PlanID, func(ctx context.Context) error {
		plan, err := s.loadPlan(ctx, cmd.PlanID)
		if err != nil {
			return err
		}

		generated, err := s.generator.Generate(ctx, plan, planner.Request{
			Categories:       cmd.Categories,
			PerDay:           cmd.PerDay,
			TargetCalories:   cmd.TargetCalories,
			CalorieMargin:    cmd.CalorieMargin,
			OptimizeCalories: cmd.OptimizeCalories,
			SkipScaling:      cmd.SkipScaling,
		})
		if err != nil {
			return err
		}

		refreshed, err := s.GetPlan(ctx, cmd.PlanID)
		if err != nil {
			return err
		}

		result = toAutoGenerateResult(generated, refreshed)
		span.SetAttributes(
			attribute.Int("recipes.added", generated.Added),
			attribute.Int("warnings", len(generated.Warnings)),
		)
		return nil
	})
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	return result, nil
}

// Scale creates per-person snapshots for the plan
func (s *Service) Scale(ctx context.Context, cmd inbound.ScaleCommand) (*inbound.ScaleResult, error) {
	if err := s.validator.Struct(cmd); err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "mealplan.Scale", trace.WithAttributes(
		attribute.String("plan.id", cmd.PlanID.String()),
		attribute.String("scale.mode", string(cmd.Mode)),
	))
	defer span.End()

	var result *inbound.ScaleResult
	err := s.withPlanLock(ctx, cmd.PlanID, func(ctx context.Context) error {
		scaled, err := s.orchestrator.Scale(ctx, cmd.PlanID, scaling.Mode(cmd.Mode))
		if err != nil {
			return err
		}

		refreshed, err := s.GetPlan(ctx, cmd.PlanID)
		if err != nil {
			return err
		}

		result = toScaleResult(scaled)
		result.Plan = refreshed
		span.SetAttributes(
			attribute.Int("snapshots.scaled", scaled.Scaled),
			attribute.Int("snapshots.skipped", scaled.Skipped),
		)
		return nil
	})
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	return result, nil
}

// GenerateShoppingList regenerates and stores the plan's shopping list
func (s *Service) GenerateShoppingList(ctx context.Context, planID uuid.UUID) (*inbound.ShoppingListDTO, error) {
	ctx, span := s.tracer.Start(ctx, "mealplan.GenerateShoppingList",
		trace.WithAttributes(attribute.String("plan.id", planID.String())))
	defer span.End()

	var dto *inbound.ShoppingListDTO
	err := s.withPlanLock(ctx, planID, func(ctx context.Context) error {
		list, err := s.aggregator.Generate(ctx, planID)
		if err != nil {
			return err
		}
		dto = toShoppingListDTO(list)
		return nil
	})
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	return dto, nil
}

// GetShoppingList returns the stored shopping list
func (s *Service) GetShoppingList(ctx context.Context, planID uuid.UUID) (*inbound.ShoppingListDTO, error) {
	list, err := s.aggregator.Find(ctx, planID)
	if err != nil {
		return nil, err
	}
	return toShoppingListDTO(list), nil
}

// withPlanLock runs fn while holding the plan's lock
func (s *Service) withPlanLock(ctx context.Context, planID uuid.UUID, fn func(ctx context.Context) error) error {
	release, err := s.locker.Acquire(ctx, planID)
	if err != nil {
		if stderrors.Is(err, outbound.ErrLockHeld) {
			s.logger.Info("Meal plan is locked", zap.String("plan_id", planID.String()))
			return errors.NewResourceLockedError("meal plan")
		}
		return errors.NewAppError(errors.CodeServiceUnavailable, "Lock service unavailable", "").WithCause(err)
	}
	defer release()

	return fn(ctx)
}

func (s *Service) loadPlan(ctx context.Context, planID uuid.UUID) (*mealplan.MealPlan, error) {
	plan, err := s.repos.Plans.FindByID(ctx, planID)
	if err != nil {
		if stderrors.Is(err, mealplan.ErrPlanNotFound) {
			return nil, errors.NewMealPlanNotFoundError(planID.String())
		}
		return nil, errors.NewDatabaseError("load meal plan", err)
	}
	return plan, nil
}

func (s *Service) planDTO(ctx context.Context, plan *mealplan.MealPlan) (*inbound.MealPlanDTO, error) {
	persons, err := s.repos.Persons.ListForPlan(ctx, plan.ID)
	if err != nil {
		return nil, errors.NewDatabaseError("list plan persons", err)
	}
	snapshots, err := s.repos.Snapshots.ListForPlan(ctx, plan.ID)
	if err != nil {
		return nil, errors.NewDatabaseError("list scaled recipes", err)
	}
	return toMealPlanDTO(plan, persons, snapshots), nil
}

func recordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, string(errors.GetCode(err)))
}
