package repository

import (
	"context"

	"portal/internal/model"
)

// ProjectRepository persists projects and their document id sets.
type ProjectRepository interface {
	Create(ctx context.Context, p *model.Project) (*model.Project, error)
	FindByID(ctx context.Context, id string) (*model.Project, error)
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Project], error)
	ListByCompany(ctx context.Context, companyID string) ([]model.Project, error)

	// SlugExists reports whether another project (id != excludeID) already uses slug.
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)

	// Update writes the mutable fields of p. ErrNotFound if p.ID is unknown.
	Update(ctx context.Context, p *model.Project) error

	// AttachDocument adds docID to the project's set; adding twice is a no-op.
	AttachDocument(ctx context.Context, projectID, docID string) error

	// DetachDocument removes docID from the project's set; a missing id is a no-op.
	DetachDocument(ctx context.Context, projectID, docID string) error

	Delete(ctx context.Context, id string) error
}
