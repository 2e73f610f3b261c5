package postgres

import (
	"context"
	"database/sql"

	"portal/internal/model"
	"portal/internal/repository"
)

// ProjectPostgres is a PostgreSQL implementation of repository.ProjectRepository.
// The document id set lives in a JSONB array column.
type ProjectPostgres struct {
	db *sql.DB
}

// NewProjectPostgres creates a new ProjectPostgres repository.
func NewProjectPostgres(db *sql.DB) *ProjectPostgres {
	return &ProjectPostgres{db: db}
}

var _ repository.ProjectRepository = (*ProjectPostgres)(nil)

const projectColumns = `id, company_id, name, slug, description, status, document_ids, created_at, updated_at`

func scanProject(s scanner) (*model.Project, error) {
	var (
		p         model.Project
		companyID sql.NullString
		status    string
		docIDs    []byte
	)
	if err := s.Scan(
		&p.ID,
		&companyID,
		&p.Name,
		&p.Slug,
		&p.Description,
		&status,
		&docIDs,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	p.CompanyID = stringPtr(companyID)
	p.Status = model.ProjectStatus(status)
	ids, err := parseJSONList(docIDs)
	if err != nil {
		return nil, err
	}
	p.DocumentIDs = ids
	return &p, nil
}

func (r *ProjectPostgres) Create(ctx context.Context, p *model.Project) (*model.Project, error) {
	ids, err := jsonList(p.DocumentIDs)
	if err != nil {
		return nil, err
	}
	q := `
		INSERT INTO projects (` + projectColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + projectColumns
	row := r.db.QueryRowContext(ctx, q,
		p.ID,
		nullString(p.CompanyID),
		p.Name,
		p.Slug,
		p.Description,
		string(p.Status),
		ids,
		p.CreatedAt,
		p.UpdatedAt,
	)
	out, err := scanProject(row)
	if err != nil {
		return nil, mapErr(err)
	}
	return out, nil
}

func (r *ProjectPostgres) FindByID(ctx context.Context, id string) (*model.Project, error) {
	q := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`
	p, err := scanProject(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, mapErr(err)
	}
	return p, nil
}

// List returns projects using LIMIT/OFFSET pagination and a total count.
func (r *ProjectPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Project], error) {
	const qCount = `SELECT COUNT(*) FROM projects`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount).Scan(&total); err != nil {
		return nil, err
	}

	q := `SELECT ` + projectColumns + `
		FROM projects
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2`
	items, err := r.query(ctx, q, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Project]{Items: items, Total: total}, nil
}

func (r *ProjectPostgres) ListByCompany(ctx context.Context, companyID string) ([]model.Project, error) {
	q := `SELECT ` + projectColumns + `
		FROM projects
		WHERE company_id = $1
		ORDER BY created_at DESC, id DESC`
	return r.query(ctx, q, companyID)
}

func (r *ProjectPostgres) query(ctx context.Context, q string, args ...any) ([]model.Project, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *ProjectPostgres) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM projects WHERE slug = $1 AND id <> $2)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, q, slug, excludeID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *ProjectPostgres) Update(ctx context.Context, p *model.Project) error {
	const q = `
		UPDATE projects
		SET company_id = $2, name = $3, slug = $4, description = $5, status = $6, updated_at = $7
		WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q,
		p.ID,
		nullString(p.CompanyID),
		p.Name,
		p.Slug,
		p.Description,
		string(p.Status),
		p.UpdatedAt,
	)
	if err != nil {
		return mapErr(err)
	}
	return requireAffected(res)
}

// AttachDocument appends docID unless the set already contains it, in one statement.
func (r *ProjectPostgres) AttachDocument(ctx context.Context, projectID, docID string) error {
	const q = `
		UPDATE projects
		SET document_ids = CASE
				WHEN document_ids @> jsonb_build_array($2::text) THEN document_ids
				ELSE document_ids || jsonb_build_array($2::text)
			END,
			updated_at = now()
		WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, projectID, docID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// DetachDocument removes every occurrence of docID from the set.
func (r *ProjectPostgres) DetachDocument(ctx context.Context, projectID, docID string) error {
	const q = `
		UPDATE projects
		SET document_ids = document_ids - $2::text, updated_at = now()
		WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, projectID, docID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *ProjectPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM projects WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}
