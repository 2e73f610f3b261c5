package postgres

import (
	"context"
	"database/sql"

	"portal/internal/model"
	"portal/internal/repository"
)

// CompanyPostgres is a PostgreSQL implementation of repository.CompanyRepository.
type CompanyPostgres struct {
	db *sql.DB
}

// NewCompanyPostgres creates a new CompanyPostgres repository.
func NewCompanyPostgres(db *sql.DB) *CompanyPostgres {
	return &CompanyPostgres{db: db}
}

var _ repository.CompanyRepository = (*CompanyPostgres)(nil)

const companyColumns = `id, name, slug, description, website, created_at, updated_at`

func scanCompany(s scanner) (*model.Company, error) {
	var c model.Company
	if err := s.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.Website, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CompanyPostgres) Create(ctx context.Context, c *model.Company) (*model.Company, error) {
	q := `
		INSERT INTO companies (` + companyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + companyColumns
	out, err := scanCompany(r.db.QueryRowContext(ctx, q,
		c.ID, c.Name, c.Slug, c.Description, c.Website, c.CreatedAt, c.UpdatedAt))
	if err != nil {
		return nil, mapErr(err)
	}
	return out, nil
}

func (r *CompanyPostgres) FindByID(ctx context.Context, id string) (*model.Company, error) {
	q := `SELECT ` + companyColumns + ` FROM companies WHERE id = $1`
	c, err := scanCompany(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, mapErr(err)
	}
	return c, nil
}

func (r *CompanyPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Company], error) {
	const qCount = `SELECT COUNT(*) FROM companies`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount).Scan(&total); err != nil {
		return nil, err
	}

	q := `SELECT ` + companyColumns + `
		FROM companies
		ORDER BY name ASC, id ASC
		LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, q, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Company, 0)
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Company]{Items: items, Total: total}, nil
}

func (r *CompanyPostgres) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM companies WHERE slug = $1 AND id <> $2)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, q, slug, excludeID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *CompanyPostgres) Update(ctx context.Context, c *model.Company) error {
	const q = `
		UPDATE companies
		SET name = $2, slug = $3, description = $4, website = $5, updated_at = $6
		WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, c.ID, c.Name, c.Slug, c.Description, c.Website, c.UpdatedAt)
	if err != nil {
		return mapErr(err)
	}
	return requireAffected(res)
}

func (r *CompanyPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM companies WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}
