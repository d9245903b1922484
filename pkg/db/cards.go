package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
)

const cardColumns = "id, deck_id, word_id, interval_days, repetitions, ease_factor, lapses, last_review_date, next_review_date, created_at"

func scanCard(r scanner) (Card, error) {
	var (
		c         Card
		last      sql.NullString
		next      string
		createdAt time.Time
	)
	if err := r.Scan(&c.ID, &c.DeckID, &c.WordID, &c.Interval, &c.Repetitions, &c.EaseFactor, &c.Lapses, &last, &next, &createdAt); err != nil {
		return Card{}, err
	}
	c.CreatedAt = createdAt
	if last.Valid {
		t, err := ParseDate(last.String)
		if err != nil {
			return Card{}, err
		}
		c.LastReviewDate = &t
	}
	t, err := ParseDate(next)
	if err != nil {
		return Card{}, err
	}
	c.NextReviewDate = t
	return c, nil
}

// CreateCard adds a fresh card for a word to a deck, due on today. It is
// idempotent on (deck, word): an existing card's id is returned with
// created=false.
func (s *Store) CreateCard(ctx context.Context, deckID, wordID int64, today time.Time) (id int64, created bool, err error) {
	const op = "create card"
	err = s.withTx(ctx, op, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, s.rebind(`INSERT INTO cards (deck_id, word_id, next_review_date, created_at)
			VALUES (?, ?, ?, ?) ON CONFLICT (deck_id, word_id) DO NOTHING`),
			deckID, wordID, FormatDate(today), time.Now().UTC())
		if err != nil {
			return err
		}
		n, _ := res.RowsAffected()
		created = n > 0
		return tx.QueryRowContext(ctx, s.rebind(`SELECT id FROM cards WHERE deck_id = ? AND word_id = ?`), deckID, wordID).Scan(&id)
	})
	return id, created, err
}

// GetCard returns a card by id.
func (s *Store) GetCard(ctx context.Context, id int64) (Card, error) {
	c, err := scanCard(s.db.QueryRowContext(ctx, s.rebind(`SELECT `+cardColumns+` FROM cards WHERE id = ?`), id))
	return c, wrap("get card", err)
}

// GetCardsByDeck returns all cards of a deck in creation order.
func (s *Store) GetCardsByDeck(ctx context.Context, deckID int64) ([]Card, error) {
	return s.queryCards(ctx, "get cards by deck", s.sb.Select(cardColumns).From("cards").
		Where(sq.Eq{"deck_id": deckID}).
		OrderBy("id"))
}

// GetCardsDue returns cards with next_review_date on or before onDate,
// earliest first, then in creation order.
func (s *Store) GetCardsDue(ctx context.Context, deckID int64, onDate time.Time) ([]Card, error) {
	return s.queryCards(ctx, "get cards due", s.sb.Select(cardColumns).From("cards").
		Where(sq.Eq{"deck_id": deckID}).
		Where(sq.LtOrEq{"next_review_date": FormatDate(onDate)}).
		OrderBy("next_review_date", "id"))
}

func (s *Store) queryCards(ctx context.Context, op string, q sq.SelectBuilder) ([]Card, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, wrap(op, err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer rows.Close()
	var out []Card
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, wrap(op, err)
		}
		out = append(out, c)
	}
	return out, wrap(op, rows.Err())
}

func (s *Store) updateCard(ctx context.Context, ex DBExecutor, id int64, u CardUpdate) error {
	set := map[string]any{}
	if u.Interval != nil {
		set["interval_days"] = *u.Interval
	}
	if u.Repetitions != nil {
		set["repetitions"] = *u.Repetitions
	}
	if u.EaseFactor != nil {
		set["ease_factor"] = *u.EaseFactor
	}
	if u.Lapses != nil {
		set["lapses"] = *u.Lapses
	}
	if u.LastReviewDate != nil {
		set["last_review_date"] = FormatDate(*u.LastReviewDate)
	}
	if u.NextReviewDate != nil {
		set["next_review_date"] = FormatDate(*u.NextReviewDate)
	}
	if len(set) == 0 {
		return nil
	}

	query, args, err := s.sb.Update("cards").SetMap(set).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	res, err := ex.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateCard applies a partial update in a single statement.
func (s *Store) UpdateCard(ctx context.Context, id int64, u CardUpdate) error {
	return s.withTx(ctx, "update card", func(tx *sql.Tx) error {
		return s.updateCard(ctx, tx, id, u)
	})
}

// ReviewCard reads a card, lets fn compute its update and writes it back in
// one transaction. The updated card is returned.
func (s *Store) ReviewCard(ctx context.Context, id int64, fn func(Card) (CardUpdate, error)) (Card, error) {
	var out Card
	err := s.withTx(ctx, "review card", func(tx *sql.Tx) error {
		c, err := scanCard(tx.QueryRowContext(ctx, s.rebind(`SELECT `+cardColumns+` FROM cards WHERE id = ?`), id))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}
		u, err := fn(c)
		if err != nil {
			return err
		}
		if err := s.updateCard(ctx, tx, id, u); err != nil {
			return err
		}
		out, err = scanCard(tx.QueryRowContext(ctx, s.rebind(`SELECT `+cardColumns+` FROM cards WHERE id = ?`), id))
		return err
	})
	return out, err
}

// DeleteCard removes a card.
func (s *Store) DeleteCard(ctx context.Context, id int64) error {
	return s.withTx(ctx, "delete card", func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM cards WHERE id = ?`), id)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// CountCardsByUser returns the number of cards across all of a user's decks.
func (s *Store) CountCardsByUser(ctx context.Context, userID int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT COUNT(*) FROM cards c JOIN decks d ON d.id = c.deck_id WHERE d.user_id = ?`), userID).Scan(&n)
	return n, wrap("count cards", err)
}
