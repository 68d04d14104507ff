package testutils

import (
	"context"
	"math/rand"
	"sort"
	"sync"

	"github.com/alchemorsel/mealplan/internal/domain/mealplan"
	"github.com/alchemorsel/mealplan/internal/domain/recipe"
	"github.com/alchemorsel/mealplan/internal/ports/outbound"
	"github.com/google/uuid"
)

// MemoryStore is an in-memory implementation of every repository port.
// Plans are returned as fresh copies so callers may mutate them freely.
type MemoryStore struct {
	mu sync.Mutex

	rng         *rand.Rand
	recipes     map[uuid.UUID]*recipe.Recipe
	recipeOrder []uuid.UUID
	plans       map[uuid.UUID]*mealplan.MealPlan
	entries     map[uuid.UUID][]mealplan.Entry // by day id
	persons     map[uuid.UUID][]mealplan.Person
	snapshots   map[uuid.UUID][]mealplan.ScaledRecipe
	lists       map[uuid.UUID]*mealplan.ShoppingList

	snapshotWrites int

	// FailSnapshot, when set, is consulted before each snapshot write
	FailSnapshot func(*mealplan.ScaledRecipe) error
}

// NewMemoryStore creates an empty store with a seeded sampler
func NewMemoryStore(seed int64) *MemoryStore {
	return &MemoryStore{
		rng:       rand.New(rand.NewSource(seed)),
		recipes:   make(map[uuid.UUID]*recipe.Recipe),
		plans:     make(map[uuid.UUID]*mealplan.MealPlan),
		entries:   make(map[uuid.UUID][]mealplan.Entry),
		persons:   make(map[uuid.UUID][]mealplan.Person),
		snapshots: make(map[uuid.UUID][]mealplan.ScaledRecipe),
		lists:     make(map[uuid.UUID]*mealplan.ShoppingList),
	}
}

// Recipes returns the recipe repository view
func (s *MemoryStore) Recipes() outbound.RecipeRepository { return memRecipes{s} }

// Plans returns the meal plan repository view
func (s *MemoryStore) Plans() outbound.MealPlanRepository { return memPlans{s} }

// Persons returns the person repository view
func (s *MemoryStore) Persons() outbound.PersonRepository { return memPersons{s} }

// Snapshots returns the snapshot repository view
func (s *MemoryStore) Snapshots() outbound.SnapshotRepository { return memSnapshots{s} }

// ShoppingLists returns the shopping list repository view
func (s *MemoryStore) ShoppingLists() outbound.ShoppingListRepository { return memLists{s} }

// SnapshotWrites counts successful snapshot creations
func (s *MemoryStore) SnapshotWrites() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotWrites
}

// AddRecipes stores recipes directly
func (s *MemoryStore) AddRecipes(recipes ...*recipe.Recipe) {
	for _, r := range recipes {
		_ = memRecipes{s}.Create(context.Background(), r)
	}
}

// SavePlan stores a plan including any entries already attached to its days
func (s *MemoryStore) SavePlan(plan *mealplan.MealPlan) {
	_ = memPlans{s}.Create(context.Background(), plan)
}

// SavePersons stores persons for a plan
func (s *MemoryStore) SavePersons(persons ...mealplan.Person) {
	for i := range persons {
		_ = memPersons{s}.Create(context.Background(), &persons[i])
	}
}

type memRecipes struct{ s *MemoryStore }

func (r memRecipes) Create(_ context.Context, rec *recipe.Recipe) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.recipes[rec.ID()]; !ok {
		r.s.recipeOrder = append(r.s.recipeOrder, rec.ID())
	}
	r.s.recipes[rec.ID()] = rec
	return nil
}

func (r memRecipes) FindByID(_ context.Context, id uuid.UUID) (*recipe.Recipe, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.recipes[id]
	if !ok {
		return nil, recipe.ErrRecipeNotFound
	}
	return rec, nil
}

func (r memRecipes) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.recipes[id]; !ok {
		return recipe.ErrRecipeNotFound
	}
	delete(r.s.recipes, id)

	removed := make(map[uuid.UUID]struct{})
	for dayID, entries := range r.s.entries {
		kept := entries[:0]
		for _, e := range entries {
			if e.Recipe != nil && e.Recipe.ID() == id {
				removed[e.ID] = struct{}{}
				continue
			}
			kept = append(kept, e)
		}
		r.s.entries[dayID] = kept
	}
	r.s.dropSnapshots(func(sn mealplan.ScaledRecipe) bool {
		_, ok := removed[sn.EntryID]
		return ok
	})
	return nil
}

func (r memRecipes) candidates(category recipe.Category, exclude []uuid.UUID, keep func(*recipe.Recipe) bool) []*recipe.Recipe {
	excluded := make(map[uuid.UUID]struct{}, len(exclude))
	for _, id := range exclude {
		excluded[id] = struct{}{}
	}
	var out []*recipe.Recipe
	for _, id := range r.s.recipeOrder {
		rec, ok := r.s.recipes[id]
		if !ok || !rec.MatchesCategory(category) {
			continue
		}
		if _, skip := excluded[id]; skip {
			continue
		}
		if keep == nil || keep(rec) {
			out = append(out, rec)
		}
	}
	return out
}

func (r memRecipes) RandomByCategory(_ context.Context, category recipe.Category, count int, exclude []uuid.UUID) ([]*recipe.Recipe, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	pool := r.candidates(category, exclude, nil)
	r.s.rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	if len(pool) > count {
		pool = pool[:count]
	}
	return pool, nil
}

func (r memRecipes) FindByCategoryAndCalorieRange(_ context.Context, category recipe.Category, minCal, maxCal int, exclude []uuid.UUID) ([]*recipe.Recipe, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.candidates(category, exclude, func(rec *recipe.Recipe) bool {
		return rec.Calories() >= minCal && rec.Calories() <= maxCal
	}), nil
}

type memPlans struct{ s *MemoryStore }

func (p memPlans) Create(_ context.Context, plan *mealplan.MealPlan) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	stored := *plan
	stored.Days = make([]mealplan.Day, len(plan.Days))
	for i, day := range plan.Days {
		stored.Days[i] = day
		stored.Days[i].Entries = nil
		p.s.entries[day.ID] = append([]mealplan.Entry(nil), day.Entries...)
	}
	p.s.plans[plan.ID] = &stored
	return nil
}

func (p memPlans) FindByID(_ context.Context, id uuid.UUID) (*mealplan.MealPlan, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	stored, ok := p.s.plans[id]
	if !ok {
		return nil, mealplan.ErrPlanNotFound
	}
	plan := *stored
	plan.Days = make([]mealplan.Day, len(stored.Days))
	for i, day := range stored.Days {
		plan.Days[i] = day
		entries := append([]mealplan.Entry(nil), p.s.entries[day.ID]...)
		sort.SliceStable(entries, func(a, b int) bool { return entries[a].SortOrder < entries[b].SortOrder })
		plan.Days[i].Entries = entries
	}
	return &plan, nil
}

func (p memPlans) AddEntry(_ context.Context, entry *mealplan.Entry) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	p.s.entries[entry.DayID] = append(p.s.entries[entry.DayID], *entry)
	return nil
}

func (p memPlans) DeleteEntry(_ context.Context, planID, entryID uuid.UUID) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	plan, ok := p.s.plans[planID]
	if !ok {
		return mealplan.ErrPlanNotFound
	}
	for _, day := range plan.Days {
		entries := p.s.entries[day.ID]
		for i, e := range entries {
			if e.ID == entryID {
				p.s.entries[day.ID] = append(entries[:i:i], entries[i+1:]...)
				p.s.dropSnapshots(func(sn mealplan.ScaledRecipe) bool { return sn.EntryID == entryID })
				return nil
			}
		}
	}
	return mealplan.ErrEntryNotFound
}

type memPersons struct{ s *MemoryStore }

func (p memPersons) ListForPlan(_ context.Context, planID uuid.UUID) ([]mealplan.Person, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	return append([]mealplan.Person(nil), p.s.persons[planID]...), nil
}

func (p memPersons) Create(_ context.Context, person *mealplan.Person) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	p.s.persons[person.PlanID] = append(p.s.persons[person.PlanID], *person)
	return nil
}

func (p memPersons) Delete(_ context.Context, planID, personID uuid.UUID) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	persons := p.s.persons[planID]
	for i, person := range persons {
		if person.ID == personID {
			p.s.persons[planID] = append(persons[:i:i], persons[i+1:]...)
			p.s.dropSnapshots(func(sn mealplan.ScaledRecipe) bool { return sn.PersonID == personID })
			return nil
		}
	}
	return mealplan.ErrPersonNotFound
}

type memSnapshots struct{ s *MemoryStore }

func (m memSnapshots) Create(_ context.Context, snapshot *mealplan.ScaledRecipe) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.FailSnapshot != nil {
		if err := m.s.FailSnapshot(snapshot); err != nil {
			return err
		}
	}
	for _, existing := range m.s.snapshots[snapshot.PlanID] {
		if existing.Key() == snapshot.Key() {
			return mealplan.ErrDuplicateSnapshot
		}
	}
	m.s.snapshots[snapshot.PlanID] = append(m.s.snapshots[snapshot.PlanID], *snapshot)
	m.s.snapshotWrites++
	return nil
}

func (m memSnapshots) DeleteAllForPlan(_ context.Context, planID uuid.UUID) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	n := int64(len(m.s.snapshots[planID]))
	delete(m.s.snapshots, planID)
	return n, nil
}

func (m memSnapshots) ListForPlan(_ context.Context, planID uuid.UUID) ([]mealplan.ScaledRecipe, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return append([]mealplan.ScaledRecipe(nil), m.s.snapshots[planID]...), nil
}

type memLists struct{ s *MemoryStore }

func (l memLists) Upsert(_ context.Context, list *mealplan.ShoppingList) error {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	stored := *list
	l.s.lists[list.PlanID] = &stored
	return nil
}

func (l memLists) FindByPlanID(_ context.Context, planID uuid.UUID) (*mealplan.ShoppingList, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	list, ok := l.s.lists[planID]
	if !ok {
		return nil, mealplan.ErrShoppingListNotFound
	}
	copied := *list
	return &copied, nil
}

// dropSnapshots removes matching snapshots; callers hold s.mu
func (s *MemoryStore) dropSnapshots(match func(mealplan.ScaledRecipe) bool) {
	for planID, snaps := range s.snapshots {
		kept := snaps[:0]
		for _, sn := range snaps {
			if !match(sn) {
				kept = append(kept, sn)
			}
		}
		s.snapshots[planID] = kept
	}
}
