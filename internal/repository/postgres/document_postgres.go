package postgres

import (
	"context"
	"database/sql"
	"time"

	"portal/internal/model"
	"portal/internal/repository"
)

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

const documentColumns = `id, project_id, name, original_filename, content_type, classification,
		size, storage_key, url, tags, uploaded_by, uploaded_at, last_accessed`

func scanDocument(s scanner) (*model.Document, error) {
	var (
		d            model.Document
		class        string
		url          sql.NullString
		tags         []byte
		lastAccessed sql.NullTime
	)
	if err := s.Scan(
		&d.ID,
		&d.ProjectID,
		&d.Name,
		&d.OriginalFilename,
		&d.ContentType,
		&class,
		&d.Size,
		&d.StorageKey,
		&url,
		&tags,
		&d.UploadedBy,
		&d.UploadedAt,
		&lastAccessed,
	); err != nil {
		return nil, err
	}
	d.Classification = model.Classification(class)
	d.URL = stringPtr(url)
	if lastAccessed.Valid {
		t := lastAccessed.Time
		d.LastAccessed = &t
	}
	parsed, err := parseJSONList(tags)
	if err != nil {
		return nil, err
	}
	d.Tags = parsed
	return &d, nil
}

// Create inserts a new document row and returns the stored record.
func (r *DocumentPostgres) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	tags, err := jsonList(doc.Tags)
	if err != nil {
		return nil, err
	}
	q := `
		INSERT INTO documents (` + documentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING ` + documentColumns
	var lastAccessed sql.NullTime
	if doc.LastAccessed != nil {
		lastAccessed = sql.NullTime{Time: *doc.LastAccessed, Valid: true}
	}
	row := r.db.QueryRowContext(ctx, q,
		doc.ID,
		doc.ProjectID,
		doc.Name,
		doc.OriginalFilename,
		doc.ContentType,
		string(doc.Classification),
		doc.Size,
		doc.StorageKey,
		nullString(doc.URL),
		tags,
		doc.UploadedBy,
		doc.UploadedAt,
		lastAccessed,
	)
	out, err := scanDocument(row)
	if err != nil {
		return nil, mapErr(err)
	}
	return out, nil
}

// FindByID fetches a single document by its ID.
func (r *DocumentPostgres) FindByID(ctx context.Context, id string) (*model.Document, error) {
	q := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	d, err := scanDocument(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, mapErr(err)
	}
	return d, nil
}

// ListByProject returns the project's documents, newest upload first.
func (r *DocumentPostgres) ListByProject(ctx context.Context, projectID string) ([]model.Document, error) {
	q := `SELECT ` + documentColumns + `
		FROM documents
		WHERE project_id = $1
		ORDER BY uploaded_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// TouchAccess sets last_accessed.
func (r *DocumentPostgres) TouchAccess(ctx context.Context, id string, at time.Time) error {
	const q = `UPDATE documents SET last_accessed = $2 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id, at)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// Delete removes a document by ID. It does not return an error if the row does not exist.
func (r *DocumentPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM documents WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}

// DeleteByProject removes all documents of a project.
func (r *DocumentPostgres) DeleteByProject(ctx context.Context, projectID string) (int64, error) {
	const q = `DELETE FROM documents WHERE project_id = $1`
	res, err := r.db.ExecContext(ctx, q, projectID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
