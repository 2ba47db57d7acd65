package content

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/example/lingualisten/pkg/models"
	"github.com/google/uuid"
)

// payloadVersion is bumped whenever the persisted layout changes; older
// payloads are then treated as corrupt and refetched.
const payloadVersion = 1

// Generation is one complete, immutable snapshot of the content sheet
type Generation struct {
	ID        string
	FetchedAt time.Time

	items  []models.Item
	byCode map[string]int
}

// NewGeneration indexes items into a new generation
func NewGeneration(items []models.Item, fetchedAt time.Time) *Generation {
	g := &Generation{
		ID:        uuid.NewString(),
		FetchedAt: fetchedAt,
		items:     append([]models.Item(nil), items...),
	}
	g.index()
	return g
}

func (g *Generation) index() {
	g.byCode = make(map[string]int, len(g.items))
	for i, it := range g.items {
		key := strings.ToLower(it.Code)
		// first row wins on duplicate codes
		if _, ok := g.byCode[key]; !ok {
			g.byCode[key] = i
		}
	}
}

// Len returns the number of items in the generation
func (g *Generation) Len() int {
	return len(g.items)
}

// Items returns a copy of all items
func (g *Generation) Items() []models.Item {
	return append([]models.Item(nil), g.items...)
}

// LookupByCode finds an item by code, ignoring case
func (g *Generation) LookupByCode(code string) (models.Item, bool) {
	i, ok := g.byCode[strings.ToLower(strings.TrimSpace(code))]
	if !ok {
		return models.Item{}, false
	}
	return g.items[i], true
}

// ByCategory returns the items of one category in sheet order
func (g *Generation) ByCategory(category models.Category) []models.Item {
	var out []models.Item
	for _, it := range g.items {
		if it.Category == category {
			out = append(out, it)
		}
	}
	return out
}

// CategoryCounts returns how many items each category holds
func (g *Generation) CategoryCounts() map[models.Category]int {
	counts := make(map[models.Category]int)
	for _, it := range g.items {
		counts[it.Category]++
	}
	return counts
}

// Search returns items whose code or texts contain query, ignoring case
func (g *Generation) Search(query string) []models.Item {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	var out []models.Item
	for _, it := range g.items {
		if strings.Contains(strings.ToLower(it.Code), q) ||
			strings.Contains(strings.ToLower(it.TextTarget), q) ||
			strings.Contains(strings.ToLower(it.TextNative), q) {
			out = append(out, it)
		}
	}
	return out
}

type generationPayload struct {
	Version   int           `json:"version"`
	ID        string        `json:"id"`
	FetchedAt time.Time     `json:"fetched_at"`
	Items     []models.Item `json:"items"`
}

// MarshalBinary encodes the generation for the local persisted cache
func (g *Generation) MarshalBinary() ([]byte, error) {
	return json.Marshal(generationPayload{
		Version:   payloadVersion,
		ID:        g.ID,
		FetchedAt: g.FetchedAt,
		Items:     g.items,
	})
}

// decodeGeneration restores a persisted generation
func decodeGeneration(data []byte) (*Generation, error) {
	var p generationPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptCache, err)
	}
	if p.Version != payloadVersion {
		return nil, fmt.Errorf("%w: payload version %d", ErrCorruptCache, p.Version)
	}
	if len(p.Items) == 0 {
		return nil, fmt.Errorf("%w: no items", ErrCorruptCache)
	}

	g := &Generation{ID: p.ID, FetchedAt: p.FetchedAt, items: p.Items}
	g.index()
	return g, nil
}
