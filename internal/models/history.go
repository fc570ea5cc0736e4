package models

import "time"

// HistoryRecord captures a finished level.
type HistoryRecord struct {
	Level         int      `json:"level"`
	CourseIDs     []string `json:"courseIds"`
	ECTSEarned    int      `json:"ectsEarned"`
	ScoreEarned   int      `json:"scoreEarned"`
	WillpowerCost int      `json:"willpowerCost"`
}

// History is the ordered list of finished levels.
type History []HistoryRecord

// TotalECTS sums credits banked in previous levels.
func (h History) TotalECTS() int {
	total := 0
	for _, rec := range h {
		total += rec.ECTSEarned
	}
	return total
}

// TotalScore sums score earned in previous levels.
func (h History) TotalScore() int {
	total := 0
	for _, rec := range h {
		total += rec.ScoreEarned
	}
	return total
}

// CourseIDs returns every course id taken in any previous level.
func (h History) CourseIDs() []string {
	var ids []string
	for _, rec := range h {
		ids = append(ids, rec.CourseIDs...)
	}
	return ids
}

// Snapshot is the persistable state of a game session.
type Snapshot struct {
	Level     int       `json:"level" validate:"min=1"`
	History   History   `json:"history"`
	Selection []string  `json:"selection"`
	SavedAt   time.Time `json:"savedAt"`
}
