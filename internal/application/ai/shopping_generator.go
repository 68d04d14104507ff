package ai

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/alchemorsel/mealplan/internal/domain/mealplan"
	"github.com/alchemorsel/mealplan/internal/ports/outbound"
	"go.uber.org/zap"
)

// DefaultChunkDays is how many day ordinals go into one provider call
const DefaultChunkDays = 3

const shoppingSystemPrompt = `You build grocery shopping lists.
Combine the ingredients of all recipes below, merge duplicates and add up quantities that share a unit.
Assign each item a store section: produce, meat, fish, dairy, bakery, pantry, frozen, beverages or other.
Reply with JSON only: {"items": [{"name": "...", "quantity": "...", "category": "..."}]}`

// ShoppingListGenerator aggregates pseudo-recipes into shopping items, one
// provider call per chunk of days, merging items across chunks
type ShoppingListGenerator struct {
	generator outbound.TextGenerator
	chunkDays int
	metrics   outbound.MetricsRecorder
	logger    *zap.Logger
}

// NewShoppingListGenerator creates a generator. A non-positive chunkDays selects the default.
func NewShoppingListGenerator(generator outbound.TextGenerator, chunkDays int, metrics outbound.MetricsRecorder, logger *zap.Logger) *ShoppingListGenerator {
	if chunkDays <= 0 {
		chunkDays = DefaultChunkDays
	}
	metrics = outbound.MetricsOrNop(metrics)
	return &ShoppingListGenerator{
		generator: generator,
		chunkDays: chunkDays,
		metrics:   metrics,
		logger:    logger.Named("shopping-generator"),
	}
}

// Ready reports whether a provider is configured
func (g *ShoppingListGenerator) Ready() error {
	if g.generator == nil {
		return outbound.ErrNoAIProvider
	}
	return nil
}

// GenerateShoppingList returns the merged items of every chunk. Any failed
// chunk fails the whole list so a partial list never replaces a complete one.
func (g *ShoppingListGenerator) GenerateShoppingList(ctx context.Context, days map[int][]mealplan.PseudoRecipe) ([]mealplan.ShoppingItem, error) {
	if err := g.Ready(); err != nil {
		return nil, err
	}

	merged := newItemMerger()
	chunks := chunkOrdinals(days, g.chunkDays)

	for i, chunk := range chunks {
		reply, err := g.generator.GenerateJSON(ctx, shoppingSystemPrompt, buildShoppingPrompt(chunk, days))
		if err != nil {
			g.metrics.AICall("shopping_list", "error")
			return nil, fmt.Errorf("chunk %d of %d: %w", i+1, len(chunks), err)
		}

		var payload struct {
			Items []mealplan.ShoppingItem `json:"items"`
		}
		if err := decodeReply(reply, &payload); err != nil {
			g.metrics.AICall("shopping_list", "invalid")
			return nil, fmt.Errorf("chunk %d of %d: %w", i+1, len(chunks), err)
		}

		g.metrics.AICall("shopping_list", "success")
		g.logger.Debug("Shopping list chunk generated",
			zap.Ints("days", chunk),
			zap.Int("items", len(payload.Items)),
		)
		for _, item := range payload.Items {
			merged.add(item)
		}
	}

	return merged.items(), nil
}

// chunkOrdinals sorts the day ordinals and splits them into groups of size
func chunkOrdinals(days map[int][]mealplan.PseudoRecipe, size int) [][]int {
	ordinals := make([]int, 0, len(days))
	for ordinal, recipes := range days {
		if len(recipes) > 0 {
			ordinals = append(ordinals, ordinal)
		}
	}
	sort.Ints(ordinals)

	var chunks [][]int
	for start := 0; start < len(ordinals); start += size {
		end := start + size
		if end > len(ordinals) {
			end = len(ordinals)
		}
		chunks = append(chunks, ordinals[start:end])
	}
	return chunks
}

func buildShoppingPrompt(ordinals []int, days map[int][]mealplan.PseudoRecipe) string {
	var b strings.Builder
	for _, ordinal := range ordinals {
		fmt.Fprintf(&b, "Day %d:\n", ordinal)
		for _, r := range days[ordinal] {
			fmt.Fprintf(&b, "* %s (%s, %d kcal)\n", r.Name, r.Category, r.Calories)
			for _, line := range strings.Split(r.Ingredients, "\n") {
				if line = strings.TrimSpace(line); line != "" {
					fmt.Fprintf(&b, "  - %s\n", line)
				}
			}
		}
	}
	return b.String()
}

type itemKey struct {
	name     string
	category string
}

// itemMerger combines items with the same name and section, keeping first-seen order
type itemMerger struct {
	order []itemKey
	byKey map[itemKey]*mealplan.ShoppingItem
}

func newItemMerger() *itemMerger {
	return &itemMerger{byKey: make(map[itemKey]*mealplan.ShoppingItem)}
}

func (m *itemMerger) add(item mealplan.ShoppingItem) {
	item.Name = strings.TrimSpace(item.Name)
	item.Quantity = strings.TrimSpace(item.Quantity)
	item.Category = strings.TrimSpace(item.Category)
	if item.Name == "" {
		return
	}

	key := itemKey{name: strings.ToLower(item.Name), category: strings.ToLower(item.Category)}
	existing, ok := m.byKey[key]
	if !ok {
		copied := item
		m.byKey[key] = &copied
		m.order = append(m.order, key)
		return
	}

	switch {
	case item.Quantity == "":
	case existing.Quantity == "":
		existing.Quantity = item.Quantity
	default:
		existing.Quantity = existing.Quantity + " + " + item.Quantity
	}
}

func (m *itemMerger) items() []mealplan.ShoppingItem {
	out := make([]mealplan.ShoppingItem, 0, len(m.order))
	for _, key := range m.order {
		out = append(out, *m.byKey[key])
	}
	return out
}
