package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// EmbeddingRecord is an immutable indexed chunk: insert or bulk-delete
// only, never updated in place. ChunkText is the global dedup key.
type EmbeddingRecord struct {
	ID           int64
	BookID       int64
	ContentID    *int64
	ChunkText    string
	Vector       []float64
	ChapterTitle string
	Page         int
	WordCount    int
	CreatedAt    time.Time
}

// InsertEmbedding persists a new embedding record.
func (s *Store) InsertEmbedding(ctx context.Context, rec EmbeddingRecord) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO embeddings (book_id, content_id, chunk_text, vector, chapter_title, page, word_count)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.BookID, rec.ContentID, rec.ChunkText, rec.Vector,
		rec.ChapterTitle, rec.Page, rec.WordCount)
	if err != nil {
		return fmt.Errorf("insert embedding: %w", err)
	}
	return nil
}

// FindEmbeddingByText looks a record up by exact chunk text. Returns
// (nil, nil) when absent.
func (s *Store) FindEmbeddingByText(ctx context.Context, chunkText string) (*EmbeddingRecord, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, book_id, content_id, chunk_text, vector, chapter_title, page, word_count, created_at
		 FROM embeddings WHERE chunk_text = $1`, chunkText)

	rec, err := scanEmbedding(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find embedding by text: %w", err)
	}
	return rec, nil
}

// QueryEmbeddings fetches up to limit candidate records, optionally
// scoped to a book. This is a bounded, non-exhaustive fetch: similarity
// scoring happens in the retriever.
func (s *Store) QueryEmbeddings(ctx context.Context, bookID *int64, limit int) ([]EmbeddingRecord, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if bookID != nil {
		rows, err = s.pool.Query(ctx,
			`SELECT id, book_id, content_id, chunk_text, vector, chapter_title, page, word_count, created_at
			 FROM embeddings WHERE book_id = $1 ORDER BY id LIMIT $2`, *bookID, limit)
	} else {
		rows, err = s.pool.Query(ctx,
			`SELECT id, book_id, content_id, chunk_text, vector, chapter_title, page, word_count, created_at
			 FROM embeddings ORDER BY id LIMIT $1`, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("query embeddings: %w", err)
	}
	defer rows.Close()

	var records []EmbeddingRecord
	for rows.Next() {
		rec, err := scanEmbedding(rows)
		if err != nil {
			return nil, fmt.Errorf("scan embedding: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate embeddings: %w", err)
	}
	return records, nil
}

// PurgeEmbeddingsOlderThan bulk-deletes records past the retention age
// and returns the number removed.
func (s *Store) PurgeEmbeddingsOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	cutoff := time.Now().Add(-age)
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM embeddings WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge embeddings: %w", err)
	}
	return tag.RowsAffected(), nil
}

// CountEmbeddings returns the index size, optionally scoped to a book.
func (s *Store) CountEmbeddings(ctx context.Context, bookID *int64) (int64, error) {
	var n int64
	var err error
	if bookID != nil {
		err = s.pool.QueryRow(ctx,
			`SELECT count(*) FROM embeddings WHERE book_id = $1`, *bookID).Scan(&n)
	} else {
		err = s.pool.QueryRow(ctx, `SELECT count(*) FROM embeddings`).Scan(&n)
	}
	if err != nil {
		return 0, fmt.Errorf("count embeddings: %w", err)
	}
	return n, nil
}

// CountBooks returns the number of ingested books.
func (s *Store) CountBooks(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM books`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count books: %w", err)
	}
	return n, nil
}

// CountQuestions returns the number of extracted questions.
func (s *Store) CountQuestions(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM questions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count questions: %w", err)
	}
	return n, nil
}

func scanEmbedding(row pgx.Row) (*EmbeddingRecord, error) {
	var rec EmbeddingRecord
	err := row.Scan(&rec.ID, &rec.BookID, &rec.ContentID, &rec.ChunkText,
		&rec.Vector, &rec.ChapterTitle, &rec.Page, &rec.WordCount, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
