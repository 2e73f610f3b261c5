package repository

import (
	"context"
	"time"

	"portal/internal/model"
)

// DocumentRepository persists document metadata. No business logic here.
type DocumentRepository interface {
	// Create inserts a new document record and returns the stored document.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns a document by its ID or ErrNotFound.
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// ListByProject returns the project's documents, most recently uploaded first.
	ListByProject(ctx context.Context, projectID string) ([]model.Document, error)

	// TouchAccess records the time a view URL was issued for the document.
	TouchAccess(ctx context.Context, id string, at time.Time) error

	// Delete removes a document by ID. It returns nil if the row was deleted or did not exist.
	Delete(ctx context.Context, id string) error

	// DeleteByProject removes every record still pointing at the project and reports how many.
	DeleteByProject(ctx context.Context, projectID string) (int64, error)
}
