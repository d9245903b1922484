package srs

import (
	"cmp"
	"slices"
	"time"

	"github.com/samber/lo"

	"github.com/japaniel/vocabforge/pkg/db"
)

// IsNew reports whether a card has never been successfully reviewed.
func IsNew(c db.Card) bool {
	return c.Repetitions == 0 && c.Interval == 0
}

// IsDue reports whether a card is due on today.
func IsDue(c db.Card, today time.Time) bool {
	return !c.NextReviewDate.After(Day(today))
}

// SelectDue returns the cards to study today: every due review card,
// earliest next review date first, then at most newCap new cards. A
// negative newCap does not limit new cards.
func SelectDue(cards []db.Card, today time.Time, newCap int) []db.Card {
	due := lo.Filter(cards, func(c db.Card, _ int) bool { return IsDue(c, today) })
	byDate := func(a, b db.Card) int {
		if c := a.NextReviewDate.Compare(b.NextReviewDate); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	}
	slices.SortStableFunc(due, byDate)

	review := lo.Filter(due, func(c db.Card, _ int) bool { return !IsNew(c) })
	fresh := lo.Filter(due, func(c db.Card, _ int) bool { return IsNew(c) })
	if newCap >= 0 && len(fresh) > newCap {
		fresh = fresh[:newCap]
	}
	return append(review, fresh...)
}
