// Package srs implements the spaced-repetition scheduler and the review
// service built on the card store.
package srs

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/japaniel/vocabforge/pkg/db"
)

// Grade is the learner's self-assessed recall quality.
type Grade string

const (
	GradeAgain Grade = "again"
	GradeHard  Grade = "hard"
	GradeGood  Grade = "good"
	GradeEasy  Grade = "easy"
)

// Valid reports whether g is one of the four grades.
func (g Grade) Valid() bool {
	switch g {
	case GradeAgain, GradeHard, GradeGood, GradeEasy:
		return true
	}
	return false
}

// ParseGrade accepts a grade name in any case or its number 1..4.
func ParseGrade(s string) (Grade, error) {
	switch g := strings.ToLower(strings.TrimSpace(s)); g {
	case "1":
		return GradeAgain, nil
	case "2":
		return GradeHard, nil
	case "3":
		return GradeGood, nil
	case "4":
		return GradeEasy, nil
	default:
		if Grade(g).Valid() {
			return Grade(g), nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidGrade, s)
}

const (
	MinEase     = 1.30
	MaxEase     = 2.50
	DefaultEase = 2.50
)

// State is the scheduling state of a card.
type State struct {
	Interval       int
	Repetitions    int
	EaseFactor     float64
	Lapses         int
	LastReviewDate *time.Time
	NextReviewDate time.Time
}

// StateOf extracts the scheduling state of a stored card.
func StateOf(c db.Card) State {
	return State{
		Interval:       c.Interval,
		Repetitions:    c.Repetitions,
		EaseFactor:     c.EaseFactor,
		Lapses:         c.Lapses,
		LastReviewDate: c.LastReviewDate,
		NextReviewDate: c.NextReviewDate,
	}
}

// Update returns the card update that stores s.
func (s State) Update() db.CardUpdate {
	return db.CardUpdate{
		Interval:       &s.Interval,
		Repetitions:    &s.Repetitions,
		EaseFactor:     &s.EaseFactor,
		Lapses:         &s.Lapses,
		LastReviewDate: s.LastReviewDate,
		NextReviewDate: &s.NextReviewDate,
	}
}

// Schedule is a pure function: it returns the state after reviewing st with
// grade g on day. An invalid grade returns st unchanged.
func Schedule(st State, g Grade, day time.Time) State {
	if !g.Valid() {
		return st
	}
	day = Day(day)
	out := st
	out.LastReviewDate = &day

	switch g {
	case GradeAgain:
		out.Repetitions = 0
		out.Interval = 0
		out.Lapses++
		out.EaseFactor = st.EaseFactor - 0.20

	case GradeHard:
		out.Repetitions++
		if st.Interval == 0 {
			out.Interval = 1
		} else {
			out.Interval = max(1, trunc(float64(st.Interval)*1.2))
		}
		out.EaseFactor = st.EaseFactor - 0.15

	case GradeGood:
		out.Repetitions++
		switch st.Interval {
		case 0:
			out.Interval = 1
		case 1:
			out.Interval = 3
		default:
			out.Interval = trunc(float64(st.Interval) * st.EaseFactor)
		}

	case GradeEasy:
		out.Repetitions++
		switch st.Interval {
		case 0:
			out.Interval = 2
		case 1:
			out.Interval = 4
		default:
			out.Interval = trunc(float64(st.Interval) * st.EaseFactor * 1.3)
		}
		out.EaseFactor = st.EaseFactor + 0.15
	}

	out.EaseFactor = clampEase(out.EaseFactor)
	out.NextReviewDate = day.AddDate(0, 0, out.Interval)
	return out
}

// clampEase bounds ease to [MinEase, MaxEase] at two decimals so repeated
// small steps do not drift.
func clampEase(e float64) float64 {
	e = math.Round(e*100) / 100
	return min(MaxEase, max(MinEase, e))
}

// trunc truncates a non-negative product of stored decimals, absorbing the
// binary representation error of values such as 2.3.
func trunc(x float64) int {
	return int(x + 1e-9)
}

// Day truncates t to its UTC calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
