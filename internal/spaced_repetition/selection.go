package spaced_repetition

import (
	"time"

	"github.com/example/lingualisten/pkg/models"
)

// Defaults of the due-selection policy
const (
	DefaultDueAfter    = 12 * time.Hour
	DefaultSessionSize = 20
)

// Candidate joins an item with the user's learning record for it
type Candidate struct {
	Item   models.Item
	Record models.LearningRecord
}

// SelectDue builds a review queue from candidates.
// Previously practiced items that are due come first, then never practiced
// items; practiced items that are not yet due are left out. Relative order of
// the input is kept inside each group and the result holds at most limit entries.
func SelectDue(candidates []Candidate, now time.Time, dueAfter time.Duration, limit int) []Candidate {
	var dueSeen, fresh []Candidate
	for _, c := range candidates {
		if c.Record.IsNew() {
			fresh = append(fresh, c)
			continue
		}
		if IsDue(c.Record, now, dueAfter) {
			dueSeen = append(dueSeen, c)
		}
	}

	queue := append(dueSeen, fresh...)
	if limit >= 0 && len(queue) > limit {
		queue = queue[:limit]
	}
	return queue
}

// JoinRecords pairs every item with the record stored for it. Items without a
// record get an empty one carrying only the item id.
func JoinRecords(items []models.Item, records []models.LearningRecord) []Candidate {
	byItem := make(map[string]models.LearningRecord, len(records))
	for _, r := range records {
		byItem[r.ItemID] = r
	}

	out := make([]Candidate, 0, len(items))
	for _, it := range items {
		rec, ok := byItem[it.ID]
		if !ok {
			rec = models.LearningRecord{ItemID: it.ID}
		}
		out = append(out, Candidate{Item: it, Record: rec})
	}
	return out
}
