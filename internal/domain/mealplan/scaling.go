package mealplan

// DefaultToleranceKcal is the band within which a day is left unscaled
const DefaultToleranceKcal = 50

// DayCalories splits a day's base calories by scalability
type DayCalories struct {
	NonScalable int
	Scalable    int
}

// Total returns the day's base calories
func (c DayCalories) Total() int {
	return c.NonScalable + c.Scalable
}

// SumDay splits the base calories of a day's entries
func SumDay(day Day) DayCalories {
	var sums DayCalories
	for _, entry := range day.Entries {
		if entry.Recipe == nil {
			continue
		}
		if entry.Recipe.DoNotScale() {
			sums.NonScalable += entry.Recipe.Calories()
		} else {
			sums.Scalable += entry.Recipe.Calories()
		}
	}
	return sums
}

// ScalingDecision is the factor computed for one person on one day
type ScalingDecision struct {
	Factor          float64
	DailyBase       int
	Diff            int
	WithinTolerance bool
	// Degenerate is set when the target is out of tolerance but nothing
	// scalable can absorb the difference.
	Degenerate bool
}

// FactorFor returns the factor for a single entry. Fixed-portion recipes
// always get 1.0.
func (d ScalingDecision) FactorFor(doNotScale bool) float64 {
	if doNotScale {
		return 1.0
	}
	return d.Factor
}

// NeedsScaler reports whether an entry needs its ingredient text rewritten
func (d ScalingDecision) NeedsScaler(doNotScale bool) bool {
	return d.FactorFor(doNotScale) != 1.0
}

// ScalingCalculator computes per-day, per-person scaling factors. It has no
// side effects.
type ScalingCalculator struct {
	tolerance int
}

// NewScalingCalculator creates a calculator. A negative tolerance selects the default.
func NewScalingCalculator(toleranceKcal int) ScalingCalculator {
	if toleranceKcal < 0 {
		toleranceKcal = DefaultToleranceKcal
	}
	return ScalingCalculator{tolerance: toleranceKcal}
}

// Tolerance returns the tolerance band in kcal
func (c ScalingCalculator) Tolerance() int {
	return c.tolerance
}

// Calculate derives the factor for a target from a day's calorie split
func (c ScalingCalculator) Calculate(sums DayCalories, targetCalories int) ScalingDecision {
	base := sums.Total()
	diff := base - targetCalories
	if diff < 0 {
		diff = -diff
	}

	decision := ScalingDecision{Factor: 1.0, DailyBase: base, Diff: diff}

	switch {
	case diff <= c.tolerance:
		decision.WithinTolerance = true
	case sums.Scalable == 0:
		decision.Degenerate = true
	default:
		factor := float64(targetCalories-sums.NonScalable) / float64(sums.Scalable)
		// Fixed portions alone exceed the target
		if factor <= 0 {
			decision.Degenerate = true
			return decision
		}
		decision.Factor = factor
	}

	return decision
}

// ForDay is Calculate applied to the entries of day
func (c ScalingCalculator) ForDay(day Day, targetCalories int) ScalingDecision {
	return c.Calculate(SumDay(day), targetCalories)
}
