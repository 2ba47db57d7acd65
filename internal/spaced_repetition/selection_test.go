package spaced_repetition

import (
	"fmt"
	"testing"
	"time"

	"github.com/example/lingualisten/pkg/models"
)

func candidate(id string, last *time.Time, count int) Candidate {
	return Candidate{
		Item:   models.Item{ID: id, Code: "C-" + id},
		Record: models.LearningRecord{ItemID: id, LastPracticedAt: last, PracticeCount: count},
	}
}

func ids(cs []Candidate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Item.ID
	}
	return out
}

func TestSelectDueOrdersDueSeenBeforeNew(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	old := now.Add(-13 * time.Hour)
	recent := now.Add(-time.Hour)

	in := []Candidate{
		candidate("new-1", nil, 0),
		candidate("due-1", &old, 2),
		candidate("recent-1", &recent, 1),
		candidate("new-2", nil, 0),
		candidate("due-2", &old, 5),
	}

	got := ids(SelectDue(in, now, DefaultDueAfter, DefaultSessionSize))
	want := []string{"due-1", "due-2", "new-1", "new-2"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("queue = %v, want %v", got, want)
	}
}

func TestSelectDueCapsQueue(t *testing.T) {
	now := time.Now()
	var in []Candidate
	for i := 0; i < 45; i++ {
		in = append(in, candidate(fmt.Sprintf("n%02d", i), nil, 0))
	}

	got := SelectDue(in, now, DefaultDueAfter, DefaultSessionSize)
	if len(got) != DefaultSessionSize {
		t.Fatalf("len = %d, want %d", len(got), DefaultSessionSize)
	}
	if got[0].Item.ID != "n00" || got[19].Item.ID != "n19" {
		t.Fatalf("unexpected truncation: %v", ids(got))
	}
}

func TestSelectDueExcludesNotYetDue(t *testing.T) {
	now := time.Now()
	recent := now.Add(-30 * time.Minute)
	in := []Candidate{candidate("a", &recent, 1), candidate("b", &recent, 3)}

	if got := SelectDue(in, now, DefaultDueAfter, DefaultSessionSize); len(got) != 0 {
		t.Fatalf("expected empty queue, got %v", ids(got))
	}
}

func TestJoinRecords(t *testing.T) {
	ts := time.Now()
	items := []models.Item{{ID: "1"}, {ID: "2"}}
	records := []models.LearningRecord{{ItemID: "2", PracticeCount: 4, LastPracticedAt: &ts}, {ItemID: "9"}}

	got := JoinRecords(items, records)
	if len(got) != 2 {
		t.Fatalf("len = %d", len(got))
	}
	if !got[0].Record.IsNew() || got[0].Record.ItemID != "1" {
		t.Errorf("item 1 should have an empty record, got %+v", got[0].Record)
	}
	if got[1].Record.PracticeCount != 4 {
		t.Errorf("item 2 record not joined: %+v", got[1].Record)
	}
}
