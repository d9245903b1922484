package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
)

const deckColumns = "id, user_id, name, description, is_main, created_at, updated_at"

func scanDeck(r scanner) (Deck, error) {
	var d Deck
	err := r.Scan(&d.ID, &d.UserID, &d.Name, &d.Description, &d.IsMain, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}

// CreateDeck creates a deck for a user.
func (s *Store) CreateDeck(ctx context.Context, userID int64, name, description string, isMain bool) (Deck, error) {
	const op = "create deck"
	name = strings.TrimSpace(name)
	if name == "" {
		return Deck{}, wrap(op, errors.New("name must be non-empty"))
	}
	now := time.Now().UTC()
	query, args, err := s.sb.Insert("decks").
		Columns("user_id", "name", "description", "is_main", "created_at", "updated_at").
		Values(userID, name, description, isMain, now, now).
		Suffix("RETURNING " + deckColumns).
		ToSql()
	if err != nil {
		return Deck{}, wrap(op, err)
	}
	d, err := scanDeck(s.db.QueryRowContext(ctx, query, args...))
	return d, wrap(op, err)
}

// GetDeck returns a deck by id.
func (s *Store) GetDeck(ctx context.Context, id int64) (Deck, error) {
	d, err := scanDeck(s.db.QueryRowContext(ctx, s.rebind(`SELECT `+deckColumns+` FROM decks WHERE id = ?`), id))
	return d, wrap("get deck", err)
}

// ListDecksByUser returns a user's decks, main deck first.
func (s *Store) ListDecksByUser(ctx context.Context, userID int64) ([]Deck, error) {
	const op = "list decks"
	query, args, err := s.sb.Select(deckColumns).From("decks").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("is_main DESC", "id").
		ToSql()
	if err != nil {
		return nil, wrap(op, err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer rows.Close()
	var out []Deck
	for rows.Next() {
		d, err := scanDeck(rows)
		if err != nil {
			return nil, wrap(op, err)
		}
		out = append(out, d)
	}
	return out, wrap(op, rows.Err())
}

// DeleteDeck removes a deck and, through the foreign key, its cards.
func (s *Store) DeleteDeck(ctx context.Context, id int64) error {
	return s.withTx(ctx, "delete deck", func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM decks WHERE id = ?`), id)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// MainDeckName is the name given to automatically created main decks.
const MainDeckName = "Main"

// EnsureMainDeck returns the user's main deck, creating it on first use.
func (s *Store) EnsureMainDeck(ctx context.Context, userID int64) (Deck, error) {
	const op = "ensure main deck"
	const maxRetries = 3
	for attempt := 0; attempt < maxRetries; attempt++ {
		d, err := scanDeck(s.db.QueryRowContext(ctx,
			s.rebind(`SELECT `+deckColumns+` FROM decks WHERE user_id = ? AND is_main`), userID))
		if err == nil {
			return d, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return Deck{}, wrap(op, err)
		}

		d, err = s.CreateDeck(ctx, userID, MainDeckName, "", true)
		if err == nil {
			return d, nil
		}
		if !isUniqueConstraintErr(err) {
			return Deck{}, err
		}
	}
	return Deck{}, wrap(op, fmt.Errorf("could not create or get main deck after %d retries", maxRetries))
}

// GetDeckStatistics counts a deck's cards by category as of today. New is
// checked first, so learning and review never include new cards; mastered
// cards have reached learnedThreshold repetitions.
func (s *Store) GetDeckStatistics(ctx context.Context, deckID int64, today time.Time, learnedThreshold int) (DeckStatistics, error) {
	const op = "get deck statistics"
	day := FormatDate(today)
	query := s.rebind(`SELECT
		COUNT(*),
		COALESCE(SUM(CASE WHEN repetitions = 0 AND interval_days = 0 THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN NOT (repetitions = 0 AND interval_days = 0)
			AND repetitions > 0 AND repetitions < ? AND next_review_date <= ? THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN NOT (repetitions = 0 AND interval_days = 0)
			AND next_review_date <= ? THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN repetitions >= ? THEN 1 ELSE 0 END), 0)
		FROM cards WHERE deck_id = ?`)

	var st DeckStatistics
	err := s.db.QueryRowContext(ctx, query, learnedThreshold, day, day, learnedThreshold, deckID).
		Scan(&st.Total, &st.New, &st.Learning, &st.Review, &st.Mastered)
	return st, wrap(op, err)
}
