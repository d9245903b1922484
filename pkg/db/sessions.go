package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// LogReviewSession records n reviews for a user on a day. Repeated calls for
// the same day accumulate; a nil duration counts as zero.
func (s *Store) LogReviewSession(ctx context.Context, userID int64, day time.Time, n int, durationSeconds *int) error {
	dur := 0
	if durationSeconds != nil {
		dur = *durationSeconds
	}
	return s.withTx(ctx, "log review session", func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, s.rebind(`INSERT INTO review_session_log (user_id, session_date, cards_reviewed, duration_seconds)
			VALUES (?, ?, ?, ?)
			ON CONFLICT (user_id, session_date) DO UPDATE SET
			  cards_reviewed = review_session_log.cards_reviewed + excluded.cards_reviewed,
			  duration_seconds = review_session_log.duration_seconds + excluded.duration_seconds`),
			userID, FormatDate(day), n, dur)
		return err
	})
}

// GetReviewSessions returns a user's daily review log, oldest first. A zero
// since returns the whole history.
func (s *Store) GetReviewSessions(ctx context.Context, userID int64, since time.Time) ([]ReviewSession, error) {
	const op = "get review sessions"
	q := s.sb.Select("user_id", "session_date", "cards_reviewed", "duration_seconds").
		From("review_session_log").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("session_date")
	if !since.IsZero() {
		q = q.Where(sq.GtOrEq{"session_date": FormatDate(since)})
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, wrap(op, err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer rows.Close()

	var out []ReviewSession
	for rows.Next() {
		var (
			rs  ReviewSession
			day string
		)
		if err := rows.Scan(&rs.UserID, &day, &rs.CardsReviewed, &rs.DurationSeconds); err != nil {
			return nil, wrap(op, err)
		}
		if rs.Date, err = ParseDate(day); err != nil {
			return nil, wrap(op, err)
		}
		out = append(out, rs)
	}
	return out, wrap(op, rows.Err())
}

// GetUserStreak returns the number of consecutive days with reviews ending
// today, or ending yesterday when today has no reviews yet.
func (s *Store) GetUserStreak(ctx context.Context, userID int64, today time.Time) (int, error) {
	sessions, err := s.GetReviewSessions(ctx, userID, time.Time{})
	if err != nil {
		return 0, err
	}
	return Streak(sessions, today), nil
}

// Streak computes the review streak from a daily log.
func Streak(sessions []ReviewSession, today time.Time) int {
	active := make(map[string]bool, len(sessions))
	for _, rs := range sessions {
		if rs.CardsReviewed > 0 {
			active[FormatDate(rs.Date)] = true
		}
	}
	day := today
	if !active[FormatDate(day)] {
		day = day.AddDate(0, 0, -1)
	}
	n := 0
	for active[FormatDate(day)] {
		n++
		day = day.AddDate(0, 0, -1)
	}
	return n
}

// AddReviewLog records one graded review.
func (s *Store) AddReviewLog(ctx context.Context, e ReviewLogEntry) (int64, error) {
	const op = "add review log"
	if e.ReviewedAt.IsZero() {
		e.ReviewedAt = time.Now()
	}
	query, args, err := s.sb.Insert("review_log").
		Columns("card_id", "user_id", "grade", "reviewed_at", "interval_after", "ease_after").
		Values(e.CardID, e.UserID, e.Grade, e.ReviewedAt.UTC(), e.IntervalAfter, e.EaseAfter).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, wrap(op, err)
	}
	var id int64
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&id)
	return id, wrap(op, err)
}

// ReviewCounts returns how many reviews a user made and how many of them
// were graded something other than failed.
func (s *Store) ReviewCounts(ctx context.Context, userID int64, failedGrade string) (total, correct int, err error) {
	err = s.db.QueryRowContext(ctx, s.rebind(`SELECT COUNT(*), COALESCE(SUM(CASE WHEN grade <> ? THEN 1 ELSE 0 END), 0)
		FROM review_log WHERE user_id = ?`), failedGrade, userID).Scan(&total, &correct)
	return total, correct, wrap("review counts", err)
}

// GetCardReviews returns the review history of a card, oldest first.
func (s *Store) GetCardReviews(ctx context.Context, cardID int64) ([]ReviewLogEntry, error) {
	const op = "get card reviews"
	rows, err := s.db.QueryContext(ctx, s.rebind(`SELECT id, card_id, user_id, grade, reviewed_at, interval_after, ease_after
		FROM review_log WHERE card_id = ? ORDER BY reviewed_at, id`), cardID)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer rows.Close()
	var out []ReviewLogEntry
	for rows.Next() {
		var e ReviewLogEntry
		if err := rows.Scan(&e.ID, &e.CardID, &e.UserID, &e.Grade, &e.ReviewedAt, &e.IntervalAfter, &e.EaseAfter); err != nil {
			return nil, wrap(op, err)
		}
		out = append(out, e)
	}
	return out, wrap(op, rows.Err())
}

// GetWordStatus returns a user's status for a word; words never touched are new.
func (s *Store) GetWordStatus(ctx context.Context, userID, wordID int64) (WordStatus, error) {
	var st string
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT status FROM user_word_status WHERE user_id = ? AND word_id = ?`), userID, wordID).Scan(&st)
	if errors.Is(err, sql.ErrNoRows) {
		return StatusNew, nil
	}
	return WordStatus(st), wrap("get word status", err)
}

// AdvanceWordStatus moves a user's word status forward to to, never back:
// new -> studying -> studied.
func (s *Store) AdvanceWordStatus(ctx context.Context, userID, wordID int64, to WordStatus) error {
	rank := map[WordStatus]int{StatusNew: 0, StatusStudying: 1, StatusStudied: 2}
	return s.withTx(ctx, "advance word status", func(tx *sql.Tx) error {
		var cur string
		err := tx.QueryRowContext(ctx, s.rebind(`SELECT status FROM user_word_status WHERE user_id = ? AND word_id = ?`), userID, wordID).Scan(&cur)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			_, err = tx.ExecContext(ctx, s.rebind(`INSERT INTO user_word_status (user_id, word_id, status, updated_at) VALUES (?, ?, ?, ?)
				ON CONFLICT (user_id, word_id) DO NOTHING`), userID, wordID, string(to), time.Now().UTC())
			return err
		case err != nil:
			return err
		}
		if rank[to] <= rank[WordStatus(cur)] {
			return nil
		}
		_, err = tx.ExecContext(ctx, s.rebind(`UPDATE user_word_status SET status = ?, updated_at = ? WHERE user_id = ? AND word_id = ?`),
			string(to), time.Now().UTC(), userID, wordID)
		return err
	})
}

// CountWordStatuses returns how many of a user's words are in each status.
func (s *Store) CountWordStatuses(ctx context.Context, userID int64) (map[WordStatus]int, error) {
	const op = "count word statuses"
	rows, err := s.db.QueryContext(ctx, s.rebind(`SELECT status, COUNT(*) FROM user_word_status WHERE user_id = ? GROUP BY status`), userID)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer rows.Close()
	out := map[WordStatus]int{}
	for rows.Next() {
		var (
			st string
			n  int
		)
		if err := rows.Scan(&st, &n); err != nil {
			return nil, wrap(op, err)
		}
		out[WordStatus(st)] = n
	}
	return out, wrap(op, rows.Err())
}
