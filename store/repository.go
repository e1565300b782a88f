package store

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/vdubya/aca-viewer/pkg/viewer"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint is violated.
	ErrDuplicate = errors.New("record already exists")
)

const uniqueViolation = "23505"

// Repository persists documents, saved searches and comments in Postgres.
type Repository struct {
	DB     *sql.DB
	logger *logrus.Logger
}

func NewRepository(db *sql.DB) *Repository {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	return &Repository{DB: db, logger: logger}
}

// Migrate creates the schema when it does not exist yet.
func (r *Repository) Migrate() error {
	const schema = `
CREATE TABLE IF NOT EXISTS documents (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	ext TEXT NOT NULL,
	content_type TEXT NOT NULL,
	size BIGINT NOT NULL,
	raw BYTEA NOT NULL,
	text_content TEXT NOT NULL,
	rendered TEXT NOT NULL DEFAULT '',
	page_offsets JSONB NOT NULL,
	toc JSONB NOT NULL,
	uploaded_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS searches (
	term TEXT PRIMARY KEY,
	hits BIGINT NOT NULL DEFAULT 0,
	color TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS comments (
	id UUID PRIMARY KEY,
	file TEXT NOT NULL,
	snippet TEXT NOT NULL,
	note TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);`
	_, err := r.DB.Exec(schema)
	return errors.Wrap(err, "migrating schema")
}

func (r *Repository) CreateDocument(doc *DocumentRecord) error {
	offsets, err := json.Marshal(doc.PageOffsets)
	if err != nil {
		return errors.Wrap(err, "encoding page offsets")
	}
	toc, err := json.Marshal(doc.Toc)
	if err != nil {
		return errors.Wrap(err, "encoding toc")
	}

	_, err = r.DB.Exec(
		`INSERT INTO documents (id, name, ext, content_type, size, raw, text_content, rendered, page_offsets, toc, uploaded_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		doc.ID, doc.Name, doc.Ext, doc.ContentType, doc.Size, doc.Raw, doc.Text, doc.Rendered, offsets, toc, doc.UploadedAt,
	)
	if err != nil {
		r.logger.WithError(err).WithField("doc_id", doc.ID).Error("Failed to create document")
		return errors.Wrap(err, "inserting document")
	}
	return nil
}

func (r *Repository) GetDocument(id string) (*DocumentRecord, error) {
	var (
		doc     DocumentRecord
		offsets []byte
		toc     []byte
	)
	err := r.DB.QueryRow(
		`SELECT id, name, ext, content_type, size, raw, text_content, rendered, page_offsets, toc, uploaded_at
		 FROM documents WHERE id = $1`, id,
	).Scan(&doc.ID, &doc.Name, &doc.Ext, &doc.ContentType, &doc.Size, &doc.Raw, &doc.Text, &doc.Rendered, &offsets, &toc, &doc.UploadedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "querying document")
	}

	if err := json.Unmarshal(offsets, &doc.PageOffsets); err != nil {
		return nil, errors.Wrap(err, "decoding page offsets")
	}
	if err := json.Unmarshal(toc, &doc.Toc); err != nil {
		return nil, errors.Wrap(err, "decoding toc")
	}
	return &doc, nil
}

func (r *Repository) ListDocuments() ([]DocumentInfo, error) {
	rows, err := r.DB.Query(
		`SELECT id, name, ext, content_type, size, jsonb_array_length(page_offsets), uploaded_at
		 FROM documents ORDER BY uploaded_at DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "listing documents")
	}
	defer rows.Close()

	docs := make([]DocumentInfo, 0)
	for rows.Next() {
		var d DocumentInfo
		if err := rows.Scan(&d.ID, &d.Name, &d.Ext, &d.ContentType, &d.Size, &d.PageCount, &d.UploadedAt); err != nil {
			return nil, errors.Wrap(err, "scanning document row")
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (r *Repository) DeleteDocument(id string) error {
	result, err := r.DB.Exec(`DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting document")
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateSearch saves a term, assigning the next pool color by insertion
// order. Duplicate terms return ErrDuplicate.
func (r *Repository) CreateSearch(term string, now time.Time) (*viewer.SearchTerm, error) {
	var count int
	if err := r.DB.QueryRow(`SELECT COUNT(*) FROM searches`).Scan(&count); err != nil {
		return nil, errors.Wrap(err, "counting searches")
	}

	saved := viewer.SearchTerm{
		Term:      term,
		Color:     viewer.NextColor(count),
		CreatedAt: now,
	}
	_, err := r.DB.Exec(
		`INSERT INTO searches (term, hits, color, created_at) VALUES ($1, 0, $2, $3)`,
		saved.Term, saved.Color, saved.CreatedAt,
	)
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == uniqueViolation {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, errors.Wrap(err, "inserting search term")
	}
	return &saved, nil
}

func (r *Repository) ListSearches() ([]viewer.SearchTerm, error) {
	rows, err := r.DB.Query(`SELECT term, hits, color, created_at FROM searches ORDER BY created_at`)
	if err != nil {
		return nil, errors.Wrap(err, "listing searches")
	}
	defer rows.Close()

	terms := make([]viewer.SearchTerm, 0)
	for rows.Next() {
		var t viewer.SearchTerm
		if err := rows.Scan(&t.Term, &t.Hits, &t.Color, &t.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scanning search row")
		}
		terms = append(terms, t)
	}
	return terms, rows.Err()
}

func (r *Repository) DeleteSearch(term string) error {
	result, err := r.DB.Exec(`DELETE FROM searches WHERE term = $1`, term)
	if err != nil {
		return errors.Wrap(err, "deleting search term")
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementHits adds n to a term's accumulated hit count.
func (r *Repository) IncrementHits(term string, n int64) error {
	_, err := r.DB.Exec(`UPDATE searches SET hits = hits + $1 WHERE term = $2`, n, term)
	return errors.Wrap(err, "incrementing search hits")
}

func (r *Repository) CreateComment(c *viewer.Comment) error {
	_, err := r.DB.Exec(
		`INSERT INTO comments (id, file, snippet, note, created_at) VALUES ($1, $2, $3, $4, $5)`,
		c.ID, c.File, c.Snippet, c.Note, c.CreatedAt,
	)
	if err != nil {
		r.logger.WithError(err).WithField("file", c.File).Error("Failed to create comment")
		return errors.Wrap(err, "inserting comment")
	}
	return nil
}

// ListComments returns comments, newest first, optionally filtered by file.
func (r *Repository) ListComments(file string) ([]viewer.Comment, error) {
	query := `SELECT id, file, snippet, note, created_at FROM comments`
	args := []interface{}{}
	if file != "" {
		query += ` WHERE file = $1`
		args = append(args, file)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "listing comments")
	}
	defer rows.Close()

	comments := make([]viewer.Comment, 0)
	for rows.Next() {
		var c viewer.Comment
		if err := rows.Scan(&c.ID, &c.File, &c.Snippet, &c.Note, &c.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scanning comment row")
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
