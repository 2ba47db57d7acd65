package models

// UserStatistics summarizes a user's learning records
type UserStatistics struct {
	UserID          string  `json:"user_id" db:"user_id"`
	PracticedItems  int     `json:"practiced_items" db:"practiced_items"`
	MasteredItems   int     `json:"mastered_items" db:"mastered_items"`
	DueItems        int     `json:"due_items" db:"due_items"`
	AverageAccuracy float64 `json:"average_accuracy" db:"average_accuracy"`
	TotalPractices  int     `json:"total_practices" db:"total_practices"`
}
