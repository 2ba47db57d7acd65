package models

import "testing"

func TestNormalizeCategory(t *testing.T) {
	tests := []struct {
		raw  string
		want Category
	}{
		{"greetings", CategoryGreetings},
		{"  Greetings ", CategoryGreetings},
		{"FOOD", CategoryFood},
		{"", CategoryMisc},
		{"weather", CategoryMisc},
		{"misc", CategoryMisc},
	}
	for _, tt := range tests {
		if got := NormalizeCategory(tt.raw); got != tt.want {
			t.Errorf("NormalizeCategory(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestCategoryLabelFallsBackToMisc(t *testing.T) {
	if got := Category("unknown").Label(); got != "Miscellaneous" {
		t.Fatalf("unexpected label %q", got)
	}
	if got := CategoryFood.Label(); got != "Food & Dining" {
		t.Fatalf("unexpected label %q", got)
	}
	if len(Categories()) != len(categoryLabels) {
		t.Fatalf("Categories() and labels are out of sync")
	}
}
