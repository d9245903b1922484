package srs

import (
	"time"

	"github.com/japaniel/vocabforge/pkg/db"
)

// HeatmapWindow is the default number of days in a heatmap.
const HeatmapWindow = 365

// DayCount is the number of cards reviewed on one day.
type DayCount struct {
	Date  time.Time `json:"date"`
	Count int       `json:"count"`
}

// Heatmap returns one entry per day for the window days ending today,
// oldest first. Days without a session count zero.
func Heatmap(sessions []db.ReviewSession, today time.Time, window int) []DayCount {
	if window <= 0 {
		window = HeatmapWindow
	}
	byDay := make(map[string]int, len(sessions))
	for _, rs := range sessions {
		byDay[db.FormatDate(rs.Date)] += rs.CardsReviewed
	}
	today = Day(today)
	out := make([]DayCount, window)
	for i := range out {
		d := today.AddDate(0, 0, i-window+1)
		out[i] = DayCount{Date: d, Count: byDay[db.FormatDate(d)]}
	}
	return out
}

// Accuracy is the share of reviews not graded again, in [0, 1]. No reviews
// give zero.
func Accuracy(total, correct int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(correct) / float64(total)
}

// Statistics summarizes a user's study progress.
type Statistics struct {
	TotalCards    int                   `json:"total_cards"`
	NewCards      int                   `json:"new_cards"`
	LearningCards int                   `json:"learning_cards"`
	ReviewCards   int                   `json:"review_cards"`
	MasteredCards int                   `json:"mastered_cards"`
	ReviewedToday int                   `json:"reviewed_today"`
	TotalReviews  int                   `json:"total_reviews"`
	Accuracy      float64               `json:"accuracy"`
	Streak        int                   `json:"streak"`
	WordStatuses  map[db.WordStatus]int `json:"word_statuses"`
	Heatmap       []DayCount            `json:"heatmap"`
	Decks         []DeckSummary         `json:"decks"`
}

// DeckSummary pairs a deck with its card counts.
type DeckSummary struct {
	Deck  db.Deck           `json:"deck"`
	Stats db.DeckStatistics `json:"stats"`
}
