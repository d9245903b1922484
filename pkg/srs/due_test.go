package srs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/japaniel/vocabforge/pkg/db"
)

func TestSelectDue(t *testing.T) {
	today := day0
	var cards []db.Card
	id := int64(0)
	add := func(reps, interval int, next time.Time) {
		id++
		cards = append(cards, db.Card{ID: id, Repetitions: reps, Interval: interval, EaseFactor: 2.5, NextReviewDate: next})
	}
	for i := 0; i < 50; i++ {
		add(0, 0, today)
	}
	for i := 0; i < 20; i++ {
		add(2, 3, today.AddDate(0, 0, -(i%4)))
	}
	add(3, 7, today.AddDate(0, 0, 2)) // not due

	got := SelectDue(cards, today, 10)
	require.Len(t, got, 30)

	for i, c := range got[:20] {
		assert.False(t, IsNew(c), "position %d should be a review card", i)
		if i > 0 {
			assert.False(t, c.NextReviewDate.Before(got[i-1].NextReviewDate), "reviews must be ordered by date")
		}
	}
	for _, c := range got[20:] {
		assert.True(t, IsNew(c))
	}
	assert.Equal(t, int64(1), got[20].ID, "new cards keep creation order")
}

func TestSelectDueNewCap(t *testing.T) {
	cards := make([]db.Card, 15)
	for i := range cards {
		cards[i] = db.Card{ID: int64(i + 1), EaseFactor: 2.5, NextReviewDate: day0}
	}
	for _, cap := range []int{0, 3, 10, 20} {
		got := SelectDue(cards, day0, cap)
		assert.LessOrEqual(t, len(got), cap)
	}
	assert.Len(t, SelectDue(cards, day0, -1), 15)
}

func TestIsDue(t *testing.T) {
	c := db.Card{NextReviewDate: day0}
	assert.True(t, IsDue(c, day0.Add(23*time.Hour)))
	assert.False(t, IsDue(c, day0.AddDate(0, 0, -1)))
}

func TestHeatmap(t *testing.T) {
	sessions := []db.ReviewSession{
		{Date: day0, CardsReviewed: 4},
		{Date: day0.AddDate(0, 0, -2), CardsReviewed: 1},
		{Date: day0.AddDate(0, 0, -400), CardsReviewed: 9},
	}
	hm := Heatmap(sessions, day0, 7)
	require.Len(t, hm, 7)
	assert.Equal(t, day0.AddDate(0, 0, -6), hm[0].Date)
	assert.Equal(t, day0, hm[6].Date)
	assert.Equal(t, 4, hm[6].Count)
	assert.Equal(t, 0, hm[5].Count)
	assert.Equal(t, 1, hm[4].Count)

	assert.Len(t, Heatmap(nil, day0, 0), HeatmapWindow)
}

func TestAccuracy(t *testing.T) {
	assert.Equal(t, 0.0, Accuracy(0, 0))
	assert.Equal(t, 0.75, Accuracy(4, 3))
}
