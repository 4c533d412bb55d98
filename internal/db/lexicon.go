package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LexiconRepository handles emotion lexicon database operations.
type LexiconRepository struct {
	pool *pgxpool.Pool
}

// ReplaceAll swaps the stored lexicon for the given emotions and entries in
// one transaction. Emotion order is preserved through its position column.
func (r *LexiconRepository) ReplaceAll(ctx context.Context, emotions []string, entries []LexiconEntry) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM lexicon_entries`); err != nil {
		return fmt.Errorf("clearing lexicon entries: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM lexicon_emotions`); err != nil {
		return fmt.Errorf("clearing lexicon emotions: %w", err)
	}

	positions := make([]int, len(emotions))
	for i := range emotions {
		positions[i] = i
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO lexicon_emotions (name, position)
		SELECT * FROM unnest($1::text[], $2::int[])
	`, emotions, positions)
	if err != nil {
		return fmt.Errorf("inserting lexicon emotions: %w", err)
	}

	if err := upsertEntries(ctx, tx, entries); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing lexicon: %w", err)
	}
	return nil
}

func upsertEntries(ctx context.Context, tx pgx.Tx, entries []LexiconEntry) error {
	if len(entries) == 0 {
		return nil
	}

	query := `
		INSERT INTO lexicon_entries (word, emotion, flag, english_word, updated_at)
		SELECT * FROM unnest($1::text[], $2::text[], $3::int[], $4::text[], $5::timestamptz[])
		ON CONFLICT (word, emotion) DO UPDATE SET
			flag = EXCLUDED.flag,
			english_word = EXCLUDED.english_word,
			updated_at = EXCLUDED.updated_at
	`

	words := make([]string, len(entries))
	emotions := make([]string, len(entries))
	flags := make([]int, len(entries))
	englishWords := make([]string, len(entries))
	updatedAts := make([]time.Time, len(entries))

	now := time.Now()
	for i, e := range entries {
		words[i] = e.Word
		emotions[i] = e.Emotion
		flags[i] = e.Flag
		englishWords[i] = e.EnglishWord
		updatedAts[i] = now
	}

	if _, err := tx.Exec(ctx, query, words, emotions, flags, englishWords, updatedAts); err != nil {
		return fmt.Errorf("batch upserting lexicon entries: %w", err)
	}
	return nil
}

// Emotions returns the emotion columns in their original order. It returns
// ErrNotFound when no lexicon has been imported.
func (r *LexiconRepository) Emotions(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT name FROM lexicon_emotions ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("querying lexicon emotions: %w", err)
	}
	defer rows.Close()

	var emotions []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning emotion: %w", err)
		}
		emotions = append(emotions, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(emotions) == 0 {
		return nil, ErrNotFound
	}
	return emotions, nil
}

// Entries returns every stored (word, emotion, flag) row.
func (r *LexiconRepository) Entries(ctx context.Context) ([]LexiconEntry, error) {
	query := `
		SELECT word, emotion, flag, english_word, updated_at
		FROM lexicon_entries
		ORDER BY word, emotion
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying lexicon entries: %w", err)
	}
	defer rows.Close()

	var entries []LexiconEntry
	for rows.Next() {
		var e LexiconEntry
		if err := rows.Scan(&e.Word, &e.Emotion, &e.Flag, &e.EnglishWord, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning lexicon entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CountWords returns the number of distinct words stored.
func (r *LexiconRepository) CountWords(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT count(DISTINCT word) FROM lexicon_entries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting lexicon words: %w", err)
	}
	return n, nil
}
