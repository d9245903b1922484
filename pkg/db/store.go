package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/samber/lo"
)

// rowsPerStatement bounds multi-row inserts below SQLite's variable limit.
const rowsPerStatement = 500

var reLemma = regexp.MustCompile(`^[a-z]+$`)

type scanner interface {
	Scan(dest ...any) error
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// UpsertBook returns the id of the book whose title matches in.Title
// case-insensitively, creating it if needed. Stored metadata is replaced
// only when overwrite is set.
func (s *Store) UpsertBook(ctx context.Context, in BookInput, overwrite bool) (int64, error) {
	const op = "upsert book"
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return 0, wrap(op, errors.New("title must be non-empty"))
	}

	const maxRetries = 3
	for attempt := 0; attempt < maxRetries; attempt++ {
		// First, try to find an existing book.
		var id int64
		err := s.db.QueryRowContext(ctx, s.rebind(`SELECT id FROM books WHERE lower(title) = lower(?)`), title).Scan(&id)
		if err == nil {
			if overwrite {
				_, err = s.db.ExecContext(ctx, s.rebind(`UPDATE books SET title = ?, author = ?, level = ? WHERE id = ?`),
					title, nullString(in.Author), nullString(in.Level), id)
				if err != nil {
					return 0, wrap(op, err)
				}
			}
			return id, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return 0, wrap(op, err)
		}

		// No existing row; try to insert one.
		err = s.db.QueryRowContext(ctx, s.rebind(`INSERT INTO books (title, author, level) VALUES (?, ?, ?) RETURNING id`),
			title, nullString(in.Author), nullString(in.Level)).Scan(&id)
		if err != nil {
			// A concurrent insert of the same title won; retry the SELECT.
			if isUniqueConstraintErr(err) {
				continue
			}
			return 0, wrap(op, err)
		}
		return id, nil
	}
	return 0, wrap(op, fmt.Errorf("could not create or get book after %d retries", maxRetries))
}

const bookColumns = "id, title, author, level, words_total, unique_words, created_at"

func scanBook(r scanner) (Book, error) {
	var (
		b             Book
		author, level sql.NullString
	)
	err := r.Scan(&b.ID, &b.Title, &author, &level, &b.WordsTotal, &b.UniqueWords, &b.CreatedAt)
	b.Author, b.Level = author.String, level.String
	return b, err
}

// GetBook returns a book by id.
func (s *Store) GetBook(ctx context.Context, id int64) (Book, error) {
	b, err := scanBook(s.db.QueryRowContext(ctx, s.rebind(`SELECT `+bookColumns+` FROM books WHERE id = ?`), id))
	return b, wrap("get book", err)
}

// ListBooks returns all books ordered by title.
func (s *Store) ListBooks(ctx context.Context) ([]Book, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+bookColumns+` FROM books ORDER BY lower(title)`)
	if err != nil {
		return nil, wrap("list books", err)
	}
	defer rows.Close()
	var out []Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, wrap("list books", err)
		}
		out = append(out, b)
	}
	return out, wrap("list books", rows.Err())
}

// BulkUpsertWords inserts or updates words by lemma in one transaction and
// returns the id of every lemma. Non-null incoming fields replace stored
// values; null fields never clobber them. Brown membership only ever turns on.
func (s *Store) BulkUpsertWords(ctx context.Context, words []WordInput) (map[string]int64, error) {
	const op = "bulk upsert words"
	words = lo.UniqBy(words, func(w WordInput) string { return w.Lemma })
	for _, w := range words {
		if !reLemma.MatchString(w.Lemma) {
			return nil, wrap(op, fmt.Errorf("invalid lemma %q", w.Lemma))
		}
	}

	ids := make(map[string]int64, len(words))
	err := s.withTx(ctx, op, func(tx *sql.Tx) error {
		for _, chunk := range lo.Chunk(words, rowsPerStatement) {
			q := s.sb.Insert("words").Columns(
				"lemma", "translation", "example_sentences", "cefr_level", "in_brown_corpus", "audio_hint_url",
			)
			for _, w := range chunk {
				q = q.Values(w.Lemma, w.Translation, w.ExampleSentences, w.CEFRLevel,
					sq.Expr("COALESCE(?, FALSE)", w.InBrownCorpus), w.AudioHintURL)
			}
			q = q.Suffix(`ON CONFLICT (lemma) DO UPDATE SET
				translation = COALESCE(excluded.translation, words.translation),
				example_sentences = COALESCE(excluded.example_sentences, words.example_sentences),
				cefr_level = COALESCE(excluded.cefr_level, words.cefr_level),
				in_brown_corpus = (words.in_brown_corpus OR excluded.in_brown_corpus),
				audio_hint_url = COALESCE(excluded.audio_hint_url, words.audio_hint_url)
				RETURNING id, lemma`)

			query, args, err := q.ToSql()
			if err != nil {
				return err
			}
			rows, err := tx.QueryContext(ctx, query, args...)
			if err != nil {
				return err
			}
			for rows.Next() {
				var (
					id    int64
					lemma string
				)
				if err := rows.Scan(&id, &lemma); err != nil {
					rows.Close()
					return err
				}
				ids[lemma] = id
			}
			if err := rows.Close(); err != nil {
				return err
			}
			if err := rows.Err(); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// BulkLinkWords adds link frequencies to a book in one transaction. Existing
// links accumulate: frequency = frequency + incoming.
func (s *Store) BulkLinkWords(ctx context.Context, bookID int64, links []Link) error {
	const op = "bulk link words"
	if bookID <= 0 {
		return wrap(op, errors.New("bookID must be positive"))
	}

	merged := make(map[int64]int, len(links))
	order := make([]int64, 0, len(links))
	for _, l := range links {
		if l.WordID <= 0 || l.Frequency < 1 {
			return wrap(op, fmt.Errorf("invalid link %+v", l))
		}
		if _, ok := merged[l.WordID]; !ok {
			order = append(order, l.WordID)
		}
		merged[l.WordID] += l.Frequency
	}

	return s.withTx(ctx, op, func(tx *sql.Tx) error {
		for _, chunk := range lo.Chunk(order, rowsPerStatement) {
			q := s.sb.Insert("word_book_links").Columns("word_id", "book_id", "frequency")
			for _, wordID := range chunk {
				q = q.Values(wordID, bookID, merged[wordID])
			}
			q = q.Suffix(`ON CONFLICT (word_id, book_id) DO UPDATE SET
				frequency = word_book_links.frequency + excluded.frequency`)
			query, args, err := q.ToSql()
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return err
			}
		}
		return nil
	})
}

// ClearBookWordLinks removes every link of a book.
func (s *Store) ClearBookWordLinks(ctx context.Context, bookID int64) error {
	return s.withTx(ctx, "clear book word links", func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM word_book_links WHERE book_id = ?`), bookID)
		return err
	})
}

// UpdateBookStats stores the token and distinct lemma counts of a book.
func (s *Store) UpdateBookStats(ctx context.Context, bookID int64, wordsTotal, uniqueWords int) error {
	const op = "update book stats"
	return s.withTx(ctx, op, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, s.rebind(`UPDATE books SET words_total = ?, unique_words = ? WHERE id = ?`),
			wordsTotal, uniqueWords, bookID)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}
		return nil
	})
}

const wordColumns = "w.id, w.lemma, w.translation, w.example_sentences, w.cefr_level, w.in_brown_corpus, w.audio_ready, w.audio_ref, w.audio_hint_url"

func scanWord(r scanner, extra ...any) (Word, error) {
	var (
		w                                 Word
		tr, ex, cefr, audioRef, audioHint sql.NullString
	)
	dest := append([]any{&w.ID, &w.Lemma, &tr, &ex, &cefr, &w.InBrownCorpus, &w.AudioReady, &audioRef, &audioHint}, extra...)
	if err := r.Scan(dest...); err != nil {
		return Word{}, err
	}
	w.Translation, w.ExampleSentences, w.CEFRLevel = tr.String, ex.String, cefr.String
	w.AudioRef, w.AudioHintURL = audioRef.String, audioHint.String
	return w, nil
}

// GetWord returns a word by id.
func (s *Store) GetWord(ctx context.Context, id int64) (Word, error) {
	w, err := scanWord(s.db.QueryRowContext(ctx, s.rebind(`SELECT `+wordColumns+` FROM words w WHERE w.id = ?`), id))
	return w, wrap("get word", err)
}

// GetWordByLemma returns a word by its lemma.
func (s *Store) GetWordByLemma(ctx context.Context, lemma string) (Word, error) {
	w, err := scanWord(s.db.QueryRowContext(ctx, s.rebind(`SELECT `+wordColumns+` FROM words w WHERE w.lemma = ?`), lemma))
	return w, wrap("get word by lemma", err)
}

// GetWordsByBook returns the words linked to a book, most frequent first.
// A limit of zero returns all of them.
func (s *Store) GetWordsByBook(ctx context.Context, bookID int64, limit int) ([]BookWord, error) {
	const op = "get words by book"
	q := s.sb.Select(wordColumns, "l.frequency").
		From("words w").
		Join("word_book_links l ON l.word_id = w.id").
		Where(sq.Eq{"l.book_id": bookID}).
		OrderBy("l.frequency DESC", "w.lemma")
	if limit > 0 {
		q = q.Limit(uint64(limit))
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
	var out []BookWord
	for rows.Next() {
		var bw BookWord
		w, err := scanWord(rows, &bw.Frequency)
		if err != nil {
			return nil, wrap(op, err)
		}
		bw.Word = w
		out = append(out, bw)
	}
	return out, wrap(op, rows.Err())
}

// WordsWithoutTranslation returns the lemmas that have no translation yet.
func (s *Store) WordsWithoutTranslation(ctx context.Context) ([]string, error) {
	const op = "words without translation"
	rows, err := s.db.QueryContext(ctx, `SELECT lemma FROM words WHERE translation IS NULL OR translation = '' ORDER BY lemma`)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var l string
		if err := rows.Scan(&l); err != nil {
			return nil, wrap(op, err)
		}
		out = append(out, l)
	}
	return out, wrap(op, rows.Err())
}
