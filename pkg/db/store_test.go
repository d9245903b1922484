package db_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/japaniel/vocabforge/pkg/db"
	"github.com/japaniel/vocabforge/pkg/db/dbtest"
)

func ptr[T any](v T) *T { return &v }

func TestMigrateCreatesSchema(t *testing.T) {
	s := dbtest.New(t)
	for _, table := range []string{"words", "books", "word_book_links", "decks", "cards", "user_word_status", "review_session_log", "review_log"} {
		var name string
		if err := s.DB().QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name = ?", table).Scan(&name); err != nil {
			t.Fatalf("%s table missing: %v", table, err)
		}
	}
	// Running again is a no-op.
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

func TestUpsertBook(t *testing.T) {
	s := dbtest.New(t)
	ctx := context.Background()

	id1, err := s.UpsertBook(ctx, db.BookInput{Title: "Moby Dick", Author: "Melville"}, false)
	if err != nil {
		t.Fatalf("create book: %v", err)
	}
	id2, err := s.UpsertBook(ctx, db.BookInput{Title: "  MOBY dick ", Author: "Someone Else"}, false)
	if err != nil {
		t.Fatalf("get book: %v", err)
	}
	if id1 != id2 {
		t.Fatalf("expected same id, got %d and %d", id1, id2)
	}
	b, _ := s.GetBook(ctx, id1)
	if b.Author != "Melville" || b.Title != "Moby Dick" {
		t.Fatalf("metadata changed without overwrite: %+v", b)
	}

	if _, err := s.UpsertBook(ctx, db.BookInput{Title: "moby dick", Author: "H. Melville", Level: "C1"}, true); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	b, _ = s.GetBook(ctx, id1)
	if b.Author != "H. Melville" || b.Level != "C1" {
		t.Fatalf("metadata not overwritten: %+v", b)
	}

	if _, err := s.UpsertBook(ctx, db.BookInput{Title: " "}, false); err == nil {
		t.Fatal("expected error for empty title")
	}
}

func TestBulkUpsertWords_CoalescePolicy(t *testing.T) {
	s := dbtest.New(t)
	ctx := context.Background()

	ids, err := s.BulkUpsertWords(ctx, []db.WordInput{
		{Lemma: "cat", Translation: ptr("кошка"), InBrownCorpus: ptr(true)},
		{Lemma: "run"},
		{Lemma: "cat"},
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if len(ids) != 2 || ids["cat"] == 0 || ids["run"] == 0 {
		t.Fatalf("unexpected ids %v", ids)
	}

	again, err := s.BulkUpsertWords(ctx, []db.WordInput{
		{Lemma: "cat", InBrownCorpus: ptr(false), AudioHintURL: ptr("https://forvo.com/word/cat/#en")},
		{Lemma: "run", Translation: ptr("бежать")},
	})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if again["cat"] != ids["cat"] || again["run"] != ids["run"] {
		t.Fatalf("ids changed: %v vs %v", again, ids)
	}

	cat, _ := s.GetWordByLemma(ctx, "cat")
	if cat.Translation != "кошка" {
		t.Errorf("translation clobbered: %q", cat.Translation)
	}
	if !cat.InBrownCorpus {
		t.Error("brown flag turned off")
	}
	if cat.AudioHintURL != "https://forvo.com/word/cat/#en" {
		t.Errorf("audio hint not stored: %q", cat.AudioHintURL)
	}
	run, _ := s.GetWord(ctx, ids["run"])
	if run.Translation != "бежать" {
		t.Errorf("translation not filled: %q", run.Translation)
	}

	missing, err := s.WordsWithoutTranslation(ctx)
	if err != nil || len(missing) != 0 {
		t.Fatalf("WordsWithoutTranslation = %v, %v", missing, err)
	}
}

func TestBulkUpsertWords_RejectsBadLemma(t *testing.T) {
	s := dbtest.New(t)
	_, err := s.BulkUpsertWords(context.Background(), []db.WordInput{{Lemma: "ok"}, {Lemma: "Not-OK"}})
	var dbErr *db.Error
	if !errors.As(err, &dbErr) {
		t.Fatalf("expected *db.Error, got %v", err)
	}
	if _, err := s.GetWordByLemma(context.Background(), "ok"); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("batch should not be written, got %v", err)
	}
}

func TestLinksAndStats(t *testing.T) {
	s := dbtest.New(t)
	ctx := context.Background()

	bookID, _ := s.UpsertBook(ctx, db.BookInput{Title: "B"}, false)
	ids, _ := s.BulkUpsertWords(ctx, []db.WordInput{{Lemma: "cat"}, {Lemma: "run"}, {Lemma: "dog"}})

	links := []db.Link{{WordID: ids["cat"], Frequency: 3}, {WordID: ids["run"], Frequency: 3}, {WordID: ids["dog"], Frequency: 1}}
	if err := s.BulkLinkWords(ctx, bookID, links); err != nil {
		t.Fatalf("link: %v", err)
	}
	if err := s.BulkLinkWords(ctx, bookID, links[:1]); err != nil {
		t.Fatalf("link again: %v", err)
	}

	words, err := s.GetWordsByBook(ctx, bookID, 0)
	if err != nil {
		t.Fatalf("GetWordsByBook: %v", err)
	}
	got := map[string]int{}
	for _, w := range words {
		got[w.Lemma] = w.Frequency
	}
	if got["cat"] != 6 || got["run"] != 3 || got["dog"] != 1 {
		t.Fatalf("frequencies %v", got)
	}
	if words[0].Lemma != "cat" || words[1].Lemma != "run" {
		t.Fatalf("expected frequency order, got %v", words)
	}

	top, _ := s.GetWordsByBook(ctx, bookID, 1)
	if len(top) != 1 {
		t.Fatalf("limit ignored: %d rows", len(top))
	}

	if err := s.ClearBookWordLinks(ctx, bookID); err != nil {
		t.Fatalf("clear: %v", err)
	}
	words, _ = s.GetWordsByBook(ctx, bookID, 0)
	if len(words) != 0 {
		t.Fatalf("links not cleared: %v", words)
	}

	if err := s.UpdateBookStats(ctx, bookID, 7, 2); err != nil {
		t.Fatalf("stats: %v", err)
	}
	b, _ := s.GetBook(ctx, bookID)
	if b.WordsTotal != 7 || b.UniqueWords != 2 {
		t.Fatalf("stats not stored: %+v", b)
	}
	if err := s.UpdateBookStats(ctx, bookID, 1, 2); err == nil {
		t.Fatal("expected check violation for words_total < unique_words")
	}
	if err := s.UpdateBookStats(ctx, 999, 1, 1); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.BulkLinkWords(ctx, bookID, []db.Link{{WordID: ids["cat"], Frequency: 0}}); err == nil {
		t.Fatal("expected error for zero frequency")
	}
}

func TestDecksAndCards(t *testing.T) {
	s := dbtest.New(t)
	ctx := context.Background()
	today := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	main1, err := s.EnsureMainDeck(ctx, 7)
	if err != nil {
		t.Fatalf("ensure main: %v", err)
	}
	main2, _ := s.EnsureMainDeck(ctx, 7)
	if main1.ID != main2.ID || !main1.IsMain || main1.Name != db.MainDeckName {
		t.Fatalf("main deck not stable: %+v %+v", main1, main2)
	}
	other, _ := s.CreateDeck(ctx, 7, "Verbs", "irregular", false)
	decks, _ := s.ListDecksByUser(ctx, 7)
	if len(decks) != 2 || decks[0].ID != main1.ID || decks[1].ID != other.ID {
		t.Fatalf("unexpected decks %+v", decks)
	}

	ids, _ := s.BulkUpsertWords(ctx, []db.WordInput{{Lemma: "cat"}, {Lemma: "dog"}, {Lemma: "owl"}})
	c1, created, err := s.CreateCard(ctx, main1.ID, ids["cat"], today)
	if err != nil || !created {
		t.Fatalf("create card: %v created=%v", err, created)
	}
	c1again, created, _ := s.CreateCard(ctx, main1.ID, ids["cat"], today)
	if c1again != c1 || created {
		t.Fatalf("CreateCard not idempotent: %d vs %d", c1again, c1)
	}

	card, err := s.GetCard(ctx, c1)
	if err != nil {
		t.Fatalf("get card: %v", err)
	}
	if card.Interval != 0 || card.Repetitions != 0 || card.EaseFactor != 2.5 || card.Lapses != 0 ||
		card.LastReviewDate != nil || !card.NextReviewDate.Equal(today) {
		t.Fatalf("fresh card state wrong: %+v", card)
	}

	c2, _, _ := s.CreateCard(ctx, main1.ID, ids["dog"], today.AddDate(0, 0, -2))
	c3, _, _ := s.CreateCard(ctx, main1.ID, ids["owl"], today.AddDate(0, 0, 5))

	due, err := s.GetCardsDue(ctx, main1.ID, today)
	if err != nil {
		t.Fatalf("due: %v", err)
	}
	if len(due) != 2 || due[0].ID != c2 || due[1].ID != c1 {
		t.Fatalf("unexpected due order %+v", due)
	}

	if err := s.UpdateCard(ctx, c3, db.CardUpdate{Repetitions: ptr(2), Interval: ptr(3)}); err != nil {
		t.Fatalf("update: %v", err)
	}
	c3card, _ := s.GetCard(ctx, c3)
	if c3card.Repetitions != 2 || c3card.Interval != 3 || c3card.EaseFactor != 2.5 {
		t.Fatalf("partial update wrong: %+v", c3card)
	}
	if err := s.UpdateCard(ctx, 999, db.CardUpdate{Lapses: ptr(1)}); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	reviewed, err := s.ReviewCard(ctx, c1, func(c db.Card) (db.CardUpdate, error) {
		next := today.AddDate(0, 0, 1)
		return db.CardUpdate{Repetitions: ptr(c.Repetitions + 1), Interval: ptr(1), LastReviewDate: &today, NextReviewDate: &next}, nil
	})
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if reviewed.Repetitions != 1 || reviewed.LastReviewDate == nil || !reviewed.LastReviewDate.Equal(today) {
		t.Fatalf("review not applied: %+v", reviewed)
	}
	if _, err := s.ReviewCard(ctx, 999, nil); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	st, err := s.GetDeckStatistics(ctx, main1.ID, today.AddDate(0, 0, 1), 7)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	// dog is new; cat is learning and due; owl has reps but is not yet due.
	want := db.DeckStatistics{Total: 3, New: 1, Learning: 1, Review: 1, Mastered: 0}
	if st != want {
		t.Fatalf("stats = %+v, want %+v", st, want)
	}

	if err := s.DeleteDeck(ctx, main1.ID); err != nil {
		t.Fatalf("delete deck: %v", err)
	}
	if _, err := s.GetCard(ctx, c1); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("cards not cascaded: %v", err)
	}
	if err := s.DeleteCard(ctx, c1); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLogReviewSession_Accumulates(t *testing.T) {
	s := dbtest.New(t)
	ctx := context.Background()
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	if err := s.LogReviewSession(ctx, 1, day, 3, ptr(30)); err != nil {
		t.Fatalf("log: %v", err)
	}
	if err := s.LogReviewSession(ctx, 1, day, 4, nil); err != nil {
		t.Fatalf("log: %v", err)
	}
	_ = s.LogReviewSession(ctx, 1, day.AddDate(0, 0, 1), 1, nil)
	_ = s.LogReviewSession(ctx, 2, day, 9, nil)

	sessions, err := s.GetReviewSessions(ctx, 1, time.Time{})
	if err != nil {
		t.Fatalf("sessions: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 days, got %+v", sessions)
	}
	if sessions[0].CardsReviewed != 7 || sessions[0].DurationSeconds != 30 || !sessions[0].Date.Equal(day) {
		t.Fatalf("first day = %+v", sessions[0])
	}

	streak, err := s.GetUserStreak(ctx, 1, day.AddDate(0, 0, 2))
	if err != nil || streak != 2 {
		t.Fatalf("streak = %d, %v", streak, err)
	}
}

func TestGetUserStreakBeyondOneYear(t *testing.T) {
	s := dbtest.New(t)
	ctx := context.Background()
	today := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	for i := range 500 {
		if err := s.LogReviewSession(ctx, 1, today.AddDate(0, 0, -i), 1, nil); err != nil {
			t.Fatal(err)
		}
	}
	if streak, err := s.GetUserStreak(ctx, 1, today); err != nil || streak != 500 {
		t.Fatalf("streak = %d, %v", streak, err)
	}
}

func TestStreak(t *testing.T) {
	today := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	day := func(offset, n int) db.ReviewSession {
		return db.ReviewSession{Date: today.AddDate(0, 0, offset), CardsReviewed: n}
	}
	tests := []struct {
		name     string
		sessions []db.ReviewSession
		want     int
	}{
		{"empty", nil, 0},
		{"today only", []db.ReviewSession{day(0, 3)}, 1},
		{"through today", []db.ReviewSession{day(-2, 1), day(-1, 1), day(0, 1)}, 3},
		{"today empty counts from yesterday", []db.ReviewSession{day(-2, 1), day(-1, 1)}, 2},
		{"broken yesterday", []db.ReviewSession{day(-3, 1), day(-2, 1)}, 0},
		{"gap", []db.ReviewSession{day(-3, 1), day(-1, 1), day(0, 1)}, 2},
		{"zero count day breaks", []db.ReviewSession{day(-1, 0), day(0, 2)}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := db.Streak(tt.sessions, today); got != tt.want {
				t.Fatalf("Streak = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestReviewLogAndWordStatus(t *testing.T) {
	s := dbtest.New(t)
	ctx := context.Background()
	today := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	deck, _ := s.EnsureMainDeck(ctx, 1)
	ids, _ := s.BulkUpsertWords(ctx, []db.WordInput{{Lemma: "cat"}})
	cardID, _, _ := s.CreateCard(ctx, deck.ID, ids["cat"], today)

	for _, g := range []string{"good", "again", "easy"} {
		if _, err := s.AddReviewLog(ctx, db.ReviewLogEntry{CardID: cardID, UserID: 1, Grade: g, IntervalAfter: 1, EaseAfter: 2.5}); err != nil {
			t.Fatalf("review log: %v", err)
		}
	}
	total, correct, err := s.ReviewCounts(ctx, 1, "again")
	if err != nil || total != 3 || correct != 2 {
		t.Fatalf("ReviewCounts = %d, %d, %v", total, correct, err)
	}
	hist, _ := s.GetCardReviews(ctx, cardID)
	if len(hist) != 3 || hist[0].Grade != "good" {
		t.Fatalf("history %+v", hist)
	}

	st, _ := s.GetWordStatus(ctx, 1, ids["cat"])
	if st != db.StatusNew {
		t.Fatalf("untouched word status = %q", st)
	}
	_ = s.AdvanceWordStatus(ctx, 1, ids["cat"], db.StatusStudying)
	_ = s.AdvanceWordStatus(ctx, 1, ids["cat"], db.StatusStudied)
	_ = s.AdvanceWordStatus(ctx, 1, ids["cat"], db.StatusStudying)
	st, _ = s.GetWordStatus(ctx, 1, ids["cat"])
	if st != db.StatusStudied {
		t.Fatalf("status regressed to %q", st)
	}
	counts, _ := s.CountWordStatuses(ctx, 1)
	if counts[db.StatusStudied] != 1 {
		t.Fatalf("counts %v", counts)
	}
}

func TestErrorWrapping(t *testing.T) {
	s := dbtest.New(t)
	_, err := s.GetDeck(context.Background(), 42)
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Op != "get deck" {
		t.Fatalf("expected *db.Error for get deck, got %v", err)
	}
	if !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
