package planner

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"

	"github.com/alchemorsel/mealplan/internal/domain/mealplan"
	"github.com/alchemorsel/mealplan/internal/domain/recipe"
	"github.com/alchemorsel/mealplan/internal/ports/outbound"
	"go.uber.org/zap"
)

// Filler defaults
const (
	DefaultFallbackSampleSize = 20
	DefaultTopK               = 3
)

// FillOptions controls how one day is filled
type FillOptions struct {
	Categories []recipe.Category
	PerDay     int
	Target     int
	Margin     int
	Optimize   bool
}

// Shortfall records slots the candidate pool could not fill
type Shortfall struct {
	Date     string
	Category recipe.Category
	Missing  int
}

// DayResult is the outcome of filling one day
type DayResult struct {
	Added      []mealplan.Entry
	Shortfalls []Shortfall
	Warnings   []string
}

// DayFiller fills the empty category slots of a single day
type DayFiller struct {
	selector       *CandidateSelector
	plans          outbound.MealPlanRepository
	fallbackSample int
	topK           int
	logger         *zap.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewDayFiller creates a day filler. rng drives the top-k pick.
func NewDayFiller(selector *CandidateSelector, plans outbound.MealPlanRepository, rng *rand.Rand, logger *zap.Logger) *DayFiller {
	return &DayFiller{
		selector:       selector,
		plans:          plans,
		fallbackSample: DefaultFallbackSampleSize,
		topK:           DefaultTopK,
		logger:         logger.Named("day-filler"),
		rng:            rng,
	}
}

// SetSampling overrides the fallback sample size and the top-k pool size
func (f *DayFiller) SetSampling(fallbackSample, topK int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if fallbackSample > 0 {
		f.fallbackSample = fallbackSample
	}
	if topK > 0 {
		f.topK = topK
	}
}

// Fill fills day in place and persists the new entries. In optimized mode
// every chosen recipe is added to used.
func (f *DayFiller) Fill(ctx context.Context, day *mealplan.Day, opts FillOptions, used UsedSet) (*DayResult, error) {
	if opts.Optimize {
		return f.fillOptimized(ctx, day, opts, used)
	}
	return f.fillStandard(ctx, day, opts)
}

func (f *DayFiller) fillStandard(ctx context.Context, day *mealplan.Day, opts FillOptions) (*DayResult, error) {
	result := &DayResult{}

	for _, category := range opts.Categories {
		needed := opts.PerDay - day.CountCategory(category)
		if needed <= 0 {
			continue
		}

		candidates, err := f.selector.ByCategory(ctx, category, needed, nil)
		if err != nil {
			return nil, fmt.Errorf("select %s candidates: %w", category, err)
		}
		if len(candidates) > needed {
			candidates = candidates[:needed]
		}

		for _, r := range candidates {
			entry, err := f.addEntry(ctx, day, r, category)
			if err != nil {
				return nil, err
			}
			result.Added = append(result.Added, entry)
		}

		if missing := needed - len(candidates); missing > 0 {
			f.logger.Debug("Candidate pool exhausted",
				zap.String("date", day.Label()),
				zap.String("category", string(category)),
				zap.Int("missing", missing),
			)
			result.Shortfalls = append(result.Shortfalls, Shortfall{
				Date:     day.Label(),
				Category: category,
				Missing:  missing,
			})
		}
	}

	return result, nil
}

func (f *DayFiller) fillOptimized(ctx context.Context, day *mealplan.Day, opts FillOptions, used UsedSet) (*DayResult, error) {
	result := &DayResult{}
	if len(opts.Categories) == 0 {
		return result, nil
	}

	budget := opts.Target / len(opts.Categories)

	for _, category := range opts.Categories {
		// Already planned slots keep their recipe and count toward the total
		if day.CountCategory(category) > 0 {
			continue
		}

		candidates, err := f.selector.ByCategoryAndCalorieRange(ctx, category, budget-opts.Margin, budget+opts.Margin, used.IDs())
		if err != nil {
			return nil, fmt.Errorf("select %s candidates: %w", category, err)
		}

		if len(candidates) == 0 {
			candidates, err = f.selector.ByCategory(ctx, category, f.fallbackSampleSize(), used.IDs())
			if err != nil {
				return nil, fmt.Errorf("sample %s candidates: %w", category, err)
			}
		}

		if len(candidates) == 0 {
			result.Warnings = append(result.Warnings, fmt.Sprintf(
				"%s: no %s recipe available near %d kcal, category skipped",
				day.Label(), category, budget,
			))
			continue
		}

		chosen := f.pickClosest(candidates, budget)
		used.Add(chosen.ID())

		entry, err := f.addEntry(ctx, day, chosen, category)
		if err != nil {
			return nil, err
		}
		result.Added = append(result.Added, entry)
	}

	if len(result.Added) > 0 {
		total := day.Calories()
		deviation := total - opts.Target
		if abs(deviation) > opts.Margin {
			result.Warnings = append(result.Warnings, fmt.Sprintf(
				"%s: total %d kcal deviates from target %d kcal by %+d kcal",
				day.Label(), total, opts.Target, deviation,
			))
		}
	}

	return result, nil
}

// pickClosest picks uniformly among the topK candidates nearest to budget
func (f *DayFiller) pickClosest(candidates []*recipe.Recipe, budget int) *recipe.Recipe {
	ranked := make([]*recipe.Recipe, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		return abs(ranked[i].Calories()-budget) < abs(ranked[j].Calories()-budget)
	})

	f.mu.Lock()
	defer f.mu.Unlock()

	k := f.topK
	if k > len(ranked) {
		k = len(ranked)
	}
	return ranked[f.rng.Intn(k)]
}

func (f *DayFiller) fallbackSampleSize() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fallbackSample
}

func (f *DayFiller) addEntry(ctx context.Context, day *mealplan.Day, r *recipe.Recipe, category recipe.Category) (mealplan.Entry, error) {
	entry, err := mealplan.NewEntry(day.ID, r, category, day.NextSortOrder())
	if err != nil {
		return mealplan.Entry{}, err
	}
	if err := f.plans.AddEntry(ctx, &entry); err != nil {
		return mealplan.Entry{}, fmt.Errorf("add entry for %s: %w", day.Label(), err)
	}
	day.Entries = append(day.Entries, entry)
	return entry, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
