package db

import "time"

// DateLayout is the storage encoding of calendar days.
const DateLayout = "2006-01-02"

// FormatDate encodes the UTC calendar day of t.
func FormatDate(t time.Time) string { return t.UTC().Format(DateLayout) }

// ParseDate decodes a stored calendar day as UTC midnight.
func ParseDate(s string) (time.Time, error) { return time.ParseInLocation(DateLayout, s, time.UTC) }

// Word is the canonical vocabulary entry, keyed by lemma.
type Word struct {
	ID               int64  `json:"id"`
	Lemma            string `json:"lemma"`
	Translation      string `json:"translation"`
	ExampleSentences string `json:"example_sentences"`
	CEFRLevel        string `json:"cefr_level"`
	InBrownCorpus    bool   `json:"in_brown_corpus"`
	AudioReady       bool   `json:"audio_ready"`
	AudioRef         string `json:"audio_ref"`
	AudioHintURL     string `json:"audio_hint_url"`
}

// WordInput is an upsert request. Nil fields never overwrite stored values.
type WordInput struct {
	Lemma            string
	Translation      *string
	ExampleSentences *string
	CEFRLevel        *string
	InBrownCorpus    *bool
	AudioHintURL     *string
}

// Book is an ingested text.
type Book struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	Level       string    `json:"level"`
	WordsTotal  int       `json:"words_total"`
	UniqueWords int       `json:"unique_words"`
	CreatedAt   time.Time `json:"created_at"`
}

// BookInput carries book metadata for UpsertBook.
type BookInput struct {
	Title  string
	Author string
	Level  string
}

// Link adds Frequency occurrences of a word to a book.
type Link struct {
	WordID    int64
	Frequency int
}

// BookWord is a word with its frequency in one book.
type BookWord struct {
	Word
	Frequency int `json:"frequency"`
}

// Deck groups a user's cards. Each user has at most one main deck.
type Deck struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsMain      bool      `json:"is_main"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Card is the scheduling state of one word in one deck.
type Card struct {
	ID             int64      `json:"id"`
	DeckID         int64      `json:"deck_id"`
	WordID         int64      `json:"word_id"`
	Interval       int        `json:"interval"`
	Repetitions    int        `json:"repetitions"`
	EaseFactor     float64    `json:"ease_factor"`
	Lapses         int        `json:"lapses"`
	LastReviewDate *time.Time `json:"last_review_date,omitempty"`
	NextReviewDate time.Time  `json:"next_review_date"`
	CreatedAt      time.Time  `json:"created_at"`
}

// CardUpdate is a partial card update; nil fields are left unchanged.
type CardUpdate struct {
	Interval       *int
	Repetitions    *int
	EaseFactor     *float64
	Lapses         *int
	LastReviewDate *time.Time
	NextReviewDate *time.Time
}

// DeckStatistics counts a deck's cards by category on a given day.
type DeckStatistics struct {
	Total    int `json:"total"`
	New      int `json:"new"`
	Learning int `json:"learning"`
	Review   int `json:"review"`
	Mastered int `json:"mastered"`
}

// WordStatus is a user's learning status for a word.
type WordStatus string

const (
	StatusNew      WordStatus = "new"
	StatusStudying WordStatus = "studying"
	StatusStudied  WordStatus = "studied"
)

// ReviewSession is one day of a user's review activity.
type ReviewSession struct {
	UserID          int64     `json:"user_id"`
	Date            time.Time `json:"date"`
	CardsReviewed   int       `json:"cards_reviewed"`
	DurationSeconds int       `json:"duration_seconds"`
}

// ReviewLogEntry records a single graded review.
type ReviewLogEntry struct {
	ID            int64     `json:"id"`
	CardID        int64     `json:"card_id"`
	UserID        int64     `json:"user_id"`
	Grade         string    `json:"grade"`
	ReviewedAt    time.Time `json:"reviewed_at"`
	IntervalAfter int       `json:"interval_after"`
	EaseAfter     float64   `json:"ease_after"`
}
