package srs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/japaniel/vocabforge/pkg/db"
)

// Store is the card store the service works on.
type Store interface {
	GetWord(ctx context.Context, id int64) (db.Word, error)

	CreateDeck(ctx context.Context, userID int64, name, description string, isMain bool) (db.Deck, error)
	GetDeck(ctx context.Context, id int64) (db.Deck, error)
	ListDecksByUser(ctx context.Context, userID int64) ([]db.Deck, error)
	DeleteDeck(ctx context.Context, id int64) error
	EnsureMainDeck(ctx context.Context, userID int64) (db.Deck, error)
	GetDeckStatistics(ctx context.Context, deckID int64, today time.Time, learnedThreshold int) (db.DeckStatistics, error)

	CreateCard(ctx context.Context, deckID, wordID int64, today time.Time) (int64, bool, error)
	GetCard(ctx context.Context, id int64) (db.Card, error)
	GetCardsByDeck(ctx context.Context, deckID int64) ([]db.Card, error)
	GetCardsDue(ctx context.Context, deckID int64, onDate time.Time) ([]db.Card, error)
	ReviewCard(ctx context.Context, id int64, fn func(db.Card) (db.CardUpdate, error)) (db.Card, error)
	DeleteCard(ctx context.Context, id int64) error

	LogReviewSession(ctx context.Context, userID int64, day time.Time, n int, durationSeconds *int) error
	GetReviewSessions(ctx context.Context, userID int64, since time.Time) ([]db.ReviewSession, error)
	AddReviewLog(ctx context.Context, e db.ReviewLogEntry) (int64, error)
	ReviewCounts(ctx context.Context, userID int64, failedGrade string) (total, correct int, err error)
	GetCardReviews(ctx context.Context, cardID int64) ([]db.ReviewLogEntry, error)

	AdvanceWordStatus(ctx context.Context, userID, wordID int64, to db.WordStatus) error
	CountWordStatuses(ctx context.Context, userID int64) (map[db.WordStatus]int, error)
}

// Config holds scheduling limits.
type Config struct {
	NewCardsPerDay   int
	LearnedThreshold int
	Logger           logrus.FieldLogger
	// Now is the service clock; nil means time.Now.
	Now func() time.Time
}

// Service exposes the review workflow. It is safe for concurrent use.
type Service struct {
	store Store
	cfg   Config
	log   logrus.FieldLogger
}

// NewService creates a review service.
func NewService(store Store, cfg Config) *Service {
	if cfg.NewCardsPerDay < 0 {
		cfg.NewCardsPerDay = 0
	}
	if cfg.LearnedThreshold < 1 {
		cfg.LearnedThreshold = 7
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		cfg.Logger = l
	}
	return &Service{store: store, cfg: cfg, log: cfg.Logger}
}

func (s *Service) today() time.Time { return Day(s.cfg.Now()) }

// notFound maps the store's not-found error to target.
func notFound(err, target error) error {
	if errors.Is(err, db.ErrNotFound) {
		return target
	}
	return err
}

// GetDeck returns a deck owned by userID.
func (s *Service) GetDeck(ctx context.Context, userID, deckID int64) (db.Deck, error) {
	d, err := s.store.GetDeck(ctx, deckID)
	if err != nil {
		return db.Deck{}, notFound(err, ErrDeckNotFound)
	}
	if d.UserID != userID {
		return db.Deck{}, ErrDeckNotFound
	}
	return d, nil
}

// ListDecks returns the user's decks, main deck first.
func (s *Service) ListDecks(ctx context.Context, userID int64) ([]db.Deck, error) {
	return s.store.ListDecksByUser(ctx, userID)
}

// CreateDeck creates a secondary deck.
func (s *Service) CreateDeck(ctx context.Context, userID int64, name, description string) (db.Deck, error) {
	return s.store.CreateDeck(ctx, userID, name, description, false)
}

// DeleteDeck removes a deck and its cards.
func (s *Service) DeleteDeck(ctx context.Context, userID, deckID int64) error {
	if _, err := s.GetDeck(ctx, userID, deckID); err != nil {
		return err
	}
	return notFound(s.store.DeleteDeck(ctx, deckID), ErrDeckNotFound)
}

// DeckStatistics counts a deck's cards by category as of today.
func (s *Service) DeckStatistics(ctx context.Context, userID, deckID int64) (db.DeckStatistics, error) {
	if _, err := s.GetDeck(ctx, userID, deckID); err != nil {
		return db.DeckStatistics{}, err
	}
	return s.store.GetDeckStatistics(ctx, deckID, s.today(), s.cfg.LearnedThreshold)
}

// DeckCards returns every card of a deck.
func (s *Service) DeckCards(ctx context.Context, userID, deckID int64) ([]db.Card, error) {
	if _, err := s.GetDeck(ctx, userID, deckID); err != nil {
		return nil, err
	}
	return s.store.GetCardsByDeck(ctx, deckID)
}

// GetCardsForReview returns today's cards of a deck: due reviews first,
// then new cards up to the daily budget unless limitNew is false.
func (s *Service) GetCardsForReview(ctx context.Context, deckID int64, limitNew bool) ([]db.Card, error) {
	today := s.today()
	cards, err := s.store.GetCardsDue(ctx, deckID, today)
	if err != nil {
		return nil, fmt.Errorf("get due cards: %w", err)
	}
	newCap := s.cfg.NewCardsPerDay
	if !limitNew {
		newCap = -1
	}
	out := SelectDue(cards, today, newCap)
	s.log.WithFields(logrus.Fields{"deck_id": deckID, "due": len(cards), "selected": len(out)}).Debug("review queue built")
	return out, nil
}

// card returns a card whose deck belongs to userID.
func (s *Service) card(ctx context.Context, userID, cardID int64) (db.Card, error) {
	c, err := s.store.GetCard(ctx, cardID)
	if err != nil {
		return db.Card{}, notFound(err, ErrCardNotFound)
	}
	if _, err := s.GetDeck(ctx, userID, c.DeckID); err != nil {
		return db.Card{}, err
	}
	return c, nil
}

// ProcessReview applies a grade to a card. The card update is one
// transaction; the review log, word status and daily session log are
// written after it, and failures there are logged without undoing the
// review.
func (s *Service) ProcessReview(ctx context.Context, cardID, userID int64, grade Grade) (db.Card, error) {
	if !grade.Valid() {
		return db.Card{}, fmt.Errorf("%w: %q", ErrInvalidGrade, grade)
	}
	if _, err := s.card(ctx, userID, cardID); err != nil {
		return db.Card{}, err
	}

	today := s.today()
	updated, err := s.store.ReviewCard(ctx, cardID, func(c db.Card) (db.CardUpdate, error) {
		return Schedule(StateOf(c), grade, today).Update(), nil
	})
	if err != nil {
		return db.Card{}, notFound(err, ErrCardNotFound)
	}

	log := s.log.WithFields(logrus.Fields{"card_id": cardID, "user_id": userID, "grade": grade})
	if _, err := s.store.AddReviewLog(ctx, db.ReviewLogEntry{
		CardID:        cardID,
		UserID:        userID,
		Grade:         string(grade),
		ReviewedAt:    s.cfg.Now(),
		IntervalAfter: updated.Interval,
		EaseAfter:     updated.EaseFactor,
	}); err != nil {
		log.WithError(err).Warn("failed to write review log")
	}
	if updated.Repetitions >= s.cfg.LearnedThreshold {
		if err := s.store.AdvanceWordStatus(ctx, userID, updated.WordID, db.StatusStudied); err != nil {
			log.WithError(err).Warn("failed to mark word studied")
		}
	}
	if err := s.store.LogReviewSession(ctx, userID, today, 1, nil); err != nil {
		log.WithError(err).Warn("failed to log review session")
	}

	log.WithFields(logrus.Fields{"interval": updated.Interval, "ease": updated.EaseFactor}).Debug("card reviewed")
	return updated, nil
}

// AddWordToDeck creates a card for a word, in the user's main deck when
// deckID is nil. Adding the same word twice returns the existing card.
func (s *Service) AddWordToDeck(ctx context.Context, userID, wordID int64, deckID *int64) (int64, error) {
	if _, err := s.store.GetWord(ctx, wordID); err != nil {
		return 0, notFound(err, ErrWordNotFound)
	}

	var (
		deck db.Deck
		err  error
	)
	if deckID == nil {
		deck, err = s.store.EnsureMainDeck(ctx, userID)
	} else {
		deck, err = s.GetDeck(ctx, userID, *deckID)
	}
	if err != nil {
		return 0, err
	}

	id, created, err := s.store.CreateCard(ctx, deck.ID, wordID, s.today())
	if err != nil {
		return 0, fmt.Errorf("create card: %w", err)
	}
	if err := s.store.AdvanceWordStatus(ctx, userID, wordID, db.StatusStudying); err != nil {
		return 0, fmt.Errorf("update word status: %w", err)
	}
	if created {
		s.log.WithFields(logrus.Fields{"user_id": userID, "deck_id": deck.ID, "card_id": id}).Info("card created")
	}
	return id, nil
}

// RemoveCard deletes a card from its deck.
func (s *Service) RemoveCard(ctx context.Context, userID, cardID int64) error {
	if _, err := s.card(ctx, userID, cardID); err != nil {
		return err
	}
	return notFound(s.store.DeleteCard(ctx, cardID), ErrCardNotFound)
}

// CardHistory returns the reviews of a card, oldest first.
func (s *Service) CardHistory(ctx context.Context, userID, cardID int64) ([]db.ReviewLogEntry, error) {
	if _, err := s.card(ctx, userID, cardID); err != nil {
		return nil, err
	}
	return s.store.GetCardReviews(ctx, cardID)
}

// GetUserStatistics aggregates card counts over all of the user's decks
// with the streak, heatmap and accuracy derived from the review logs.
func (s *Service) GetUserStatistics(ctx context.Context, userID int64) (Statistics, error) {
	today := s.today()
	var st Statistics

	decks, err := s.store.ListDecksByUser(ctx, userID)
	if err != nil {
		return Statistics{}, fmt.Errorf("list decks: %w", err)
	}
	for _, d := range decks {
		ds, err := s.store.GetDeckStatistics(ctx, d.ID, today, s.cfg.LearnedThreshold)
		if err != nil {
			return Statistics{}, fmt.Errorf("deck %d statistics: %w", d.ID, err)
		}
		st.Decks = append(st.Decks, DeckSummary{Deck: d, Stats: ds})
		st.TotalCards += ds.Total
		st.NewCards += ds.New
		st.LearningCards += ds.Learning
		st.ReviewCards += ds.Review
		st.MasteredCards += ds.Mastered
	}

	// The streak can reach past the heatmap window, so load the whole log.
	sessions, err := s.store.GetReviewSessions(ctx, userID, time.Time{})
	if err != nil {
		return Statistics{}, fmt.Errorf("review sessions: %w", err)
	}
	st.Streak = db.Streak(sessions, today)
	st.Heatmap = Heatmap(sessions, today, HeatmapWindow)
	st.ReviewedToday = st.Heatmap[len(st.Heatmap)-1].Count

	total, correct, err := s.store.ReviewCounts(ctx, userID, string(GradeAgain))
	if err != nil {
		return Statistics{}, fmt.Errorf("review counts: %w", err)
	}
	st.TotalReviews = total
	st.Accuracy = Accuracy(total, correct)

	if st.WordStatuses, err = s.store.CountWordStatuses(ctx, userID); err != nil {
		return Statistics{}, fmt.Errorf("word statuses: %w", err)
	}
	return st, nil
}
