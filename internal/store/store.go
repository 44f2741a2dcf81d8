// Package store persists books, structure, questions and embeddings in
// Postgres.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// uniqueViolation is the Postgres error code for unique-constraint hits.
const uniqueViolation = "23505"

// Store wraps a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// New connects to Postgres and verifies the connection.
func New(ctx context.Context, connString string) (*Store, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Initialize creates the schema when absent.
func (s *Store) Initialize(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS books (
			id BIGSERIAL PRIMARY KEY,
			title TEXT NOT NULL UNIQUE,
			source TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE TABLE IF NOT EXISTS chapters (
			id BIGSERIAL PRIMARY KEY,
			book_id BIGINT NOT NULL REFERENCES books(id) ON DELETE CASCADE,
			title TEXT NOT NULL,
			summary TEXT NOT NULL DEFAULT '',
			concepts JSONB NOT NULL DEFAULT '[]'::jsonb,
			first_page INTEGER NOT NULL,
			last_page INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS sections (
			id BIGSERIAL PRIMARY KEY,
			book_id BIGINT NOT NULL REFERENCES books(id) ON DELETE CASCADE,
			chapter_id BIGINT REFERENCES chapters(id) ON DELETE CASCADE,
			title TEXT NOT NULL,
			first_page INTEGER NOT NULL,
			last_page INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS contents (
			id BIGSERIAL PRIMARY KEY,
			book_id BIGINT NOT NULL REFERENCES books(id) ON DELETE CASCADE,
			chapter_id BIGINT REFERENCES chapters(id) ON DELETE CASCADE,
			section_id BIGINT REFERENCES sections(id) ON DELETE CASCADE,
			block_type TEXT NOT NULL,
			body TEXT NOT NULL,
			page INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS questions (
			id BIGSERIAL PRIMARY KEY,
			content_id BIGINT NOT NULL REFERENCES contents(id) ON DELETE CASCADE,
			statement TEXT NOT NULL,
			alternatives JSONB NOT NULL DEFAULT '{}'::jsonb,
			page INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS answer_keys (
			id BIGSERIAL PRIMARY KEY,
			question_id BIGINT NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
			letter TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS embeddings (
			id BIGSERIAL PRIMARY KEY,
			book_id BIGINT NOT NULL REFERENCES books(id) ON DELETE CASCADE,
			content_id BIGINT REFERENCES contents(id) ON DELETE SET NULL,
			chunk_text TEXT NOT NULL UNIQUE,
			vector DOUBLE PRECISION[] NOT NULL,
			chapter_title TEXT,
			page INTEGER,
			word_count INTEGER,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS embeddings_book_idx ON embeddings (book_id);
	`)
	if err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Close releases the pool.
func (s *Store) Close() {
	s.pool.Close()
}

// InsertBook inserts a book and returns its id. A duplicate title is not
// an error: the existing book is fetched by title instead.
func (s *Store) InsertBook(ctx context.Context, title, source string) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO books (title, source) VALUES ($1, $2) RETURNING id`,
		title, source).Scan(&id)
	if err == nil {
		return id, nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		if err := s.pool.QueryRow(ctx,
			`SELECT id FROM books WHERE title = $1`, title).Scan(&id); err != nil {
			return 0, fmt.Errorf("refetch book by title: %w", err)
		}
		return id, nil
	}
	return 0, fmt.Errorf("insert book: %w", err)
}

// InsertChapter inserts a chapter row. Summary and concepts are optional
// AI enrichment, computed before insertion; rows are never updated.
func (s *Store) InsertChapter(ctx context.Context, bookID int64, title, summary string, concepts []string, firstPage, lastPage int) (int64, error) {
	if concepts == nil {
		concepts = []string{}
	}
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO chapters (book_id, title, summary, concepts, first_page, last_page)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		bookID, title, summary, concepts, firstPage, lastPage).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert chapter: %w", err)
	}
	return id, nil
}

// InsertSection inserts a section row. chapterID may be nil for standalone
// sections that appeared before any chapter.
func (s *Store) InsertSection(ctx context.Context, bookID int64, chapterID *int64, title string, firstPage, lastPage int) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO sections (book_id, chapter_id, title, first_page, last_page)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		bookID, chapterID, title, firstPage, lastPage).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert section: %w", err)
	}
	return id, nil
}

// InsertContent inserts a content block row.
func (s *Store) InsertContent(ctx context.Context, bookID int64, chapterID, sectionID *int64, blockType, body string, page int) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO contents (book_id, chapter_id, section_id, block_type, body, page)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		bookID, chapterID, sectionID, blockType, body, page).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert content: %w", err)
	}
	return id, nil
}

// InsertQuestion inserts a question row with its alternatives as JSONB.
func (s *Store) InsertQuestion(ctx context.Context, contentID int64, statement string, alternatives map[string]string, page int) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO questions (content_id, statement, alternatives, page)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		contentID, statement, alternatives, page).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert question: %w", err)
	}
	return id, nil
}

// InsertAnswerKey records the correct letter for a question. Only called
// when an explicit answer was actually found.
func (s *Store) InsertAnswerKey(ctx context.Context, questionID int64, letter string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO answer_keys (question_id, letter) VALUES ($1, $2)`,
		questionID, letter)
	if err != nil {
		return fmt.Errorf("insert answer key: %w", err)
	}
	return nil
}
