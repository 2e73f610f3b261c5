package repository

import (
	"context"

	"portal/internal/model"
)

// CompanyRepository persists companies.
type CompanyRepository interface {
	Create(ctx context.Context, c *model.Company) (*model.Company, error)
	FindByID(ctx context.Context, id string) (*model.Company, error)
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Company], error)
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
	Update(ctx context.Context, c *model.Company) error
	Delete(ctx context.Context, id string) error
}
