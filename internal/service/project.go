package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"portal/internal/model"
	"portal/internal/repository"
	"portal/internal/slug"
	"portal/internal/storage"
)

// Cascade outcomes per document.
const (
	OutcomeDeleted              = "deleted"
	OutcomeDeletedStorageFailed = "deleted_storage_failed"
	OutcomeMissing              = "missing"
	OutcomeFailed               = "failed"
)

// CascadeItem is what happened to one document during a project deletion.
type CascadeItem struct {
	DocumentID string `json:"document_id"`
	Outcome    string `json:"outcome"`
	StorageErr error  `json:"-"`
	Err        error  `json:"-"`
}

// CascadeReport lists every document a project deletion touched.
// Swept counts records removed by the final project-wide sweep.
type CascadeReport struct {
	ProjectID string        `json:"project_id"`
	Items     []CascadeItem `json:"items"`
	Swept     int64         `json:"swept"`
}

// Failed counts items whose storage or record deletion did not succeed.
func (r *CascadeReport) Failed() int {
	n := 0
	for _, it := range r.Items {
		if it.Err != nil || it.StorageErr != nil {
			n++
		}
	}
	return n
}

// ProjectService defines the use cases for projects.
type ProjectService interface {
	Create(ctx context.Context, in model.NewProject) (*model.Project, error)
	Get(ctx context.Context, id string) (*model.Project, error)
	List(ctx context.Context, limit, offset int) (*ListResult[model.Project], error)
	Update(ctx context.Context, id string, patch model.ProjectPatch) (*model.Project, error)

	// Delete removes every document of the project, then the project itself.
	// Individual document failures do not stop the cascade; they are reported.
	Delete(ctx context.Context, id string) (*CascadeReport, error)
}

type projectService struct {
	projects  repository.ProjectRepository
	companies repository.CompanyRepository
	docs      repository.DocumentRepository
	store     storage.Storage
	options
}

// NewProjectService constructs a new ProjectService.
func NewProjectService(
	projects repository.ProjectRepository,
	companies repository.CompanyRepository,
	docs repository.DocumentRepository,
	store storage.Storage,
	opts ...Option,
) ProjectService {
	return &projectService{
		projects:  projects,
		companies: companies,
		docs:      docs,
		store:     store,
		options:   newOptions(opts),
	}
}

func (s *projectService) Create(ctx context.Context, in model.NewProject) (*model.Project, error) {
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.ensureCompany(ctx, in.CompanyID); err != nil {
		return nil, err
	}
	sl, err := slug.Unique(ctx, slug.Make(in.Name), func(ctx context.Context, candidate string) (bool, error) {
		return s.projects.SlugExists(ctx, candidate, "")
	})
	if err != nil {
		return nil, err
	}

	now := s.now()
	p := &model.Project{
		ID:          uuid.NewString(),
		CompanyID:   in.CompanyID,
		Name:        in.Name,
		Slug:        sl,
		Description: in.Description,
		Status:      in.Status,
		DocumentIDs: []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	out, err := s.projects.Create(ctx, p)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrSlugConflict
		}
		return nil, err
	}
	return out, nil
}

func (s *projectService) ensureCompany(ctx context.Context, companyID *string) error {
	if companyID == nil || *companyID == "" {
		return nil
	}
	if _, err := s.companies.FindByID(ctx, *companyID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCompanyNotFound
		}
		return err
	}
	return nil
}

func (s *projectService) Get(ctx context.Context, id string) (*model.Project, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	p, err := s.projects.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *projectService) List(ctx context.Context, limit, offset int) (*ListResult[model.Project], error) {
	limit, offset = normalizePage(limit, offset)
	res, err := s.projects.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &ListResult[model.Project]{Items: res.Items, Total: res.Total}, nil
}

// Update applies the allow-listed fields of patch. A name change regenerates the slug.
func (s *projectService) Update(ctx context.Context, id string, patch model.ProjectPatch) (*model.Project, error) {
	if err := patch.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureCompany(ctx, patch.CompanyID); err != nil {
		return nil, err
	}

	if patch.Apply(p) {
		sl, err := slug.Unique(ctx, slug.Make(p.Name), func(ctx context.Context, candidate string) (bool, error) {
			return s.projects.SlugExists(ctx, candidate, p.ID)
		})
		if err != nil {
			return nil, err
		}
		p.Slug = sl
	}
	p.UpdatedAt = s.now()

	if err := s.projects.Update(ctx, p); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrProjectNotFound
		case errors.Is(err, repository.ErrConflict):
			return nil, ErrSlugConflict
		}
		return nil, err
	}
	return p, nil
}

// Delete walks the project's document set plus any record still pointing at the
// project, deleting each one sequentially, then sweeps and removes the project.
func (s *projectService) Delete(ctx context.Context, id string) (*CascadeReport, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	ids := append([]string{}, p.DocumentIDs...)
	seen := make(map[string]struct{}, len(ids))
	for _, d := range ids {
		seen[d] = struct{}{}
	}
	if linked, err := s.docs.ListByProject(ctx, p.ID); err != nil {
		s.log.Warn("cascade_list_failed", zap.String("project_id", p.ID), zap.Error(err))
	} else {
		for _, d := range linked {
			if _, ok := seen[d.ID]; !ok {
				seen[d.ID] = struct{}{}
				ids = append(ids, d.ID)
			}
		}
	}

	report := &CascadeReport{ProjectID: p.ID, Items: make([]CascadeItem, 0, len(ids))}
	for _, docID := range ids {
		item := s.deleteForCascade(ctx, p.ID, docID)
		s.metrics.CascadeItem(item.Outcome)
		report.Items = append(report.Items, item)
	}

	// Anything left pointing at the project goes, whatever happened above.
	swept, err := s.docs.DeleteByProject(ctx, p.ID)
	if err != nil {
		return report, fmt.Errorf("%w: sweep documents: %v", ErrRecordPersist, err)
	}
	report.Swept = swept

	if err := s.projects.Delete(ctx, p.ID); err != nil {
		return report, fmt.Errorf("%w: delete project: %v", ErrRecordPersist, err)
	}
	s.log.Info("project_deleted",
		zap.String("project_id", p.ID),
		zap.Int("documents", len(report.Items)),
		zap.Int("failed", report.Failed()),
		zap.Int64("swept", swept),
	)
	return report, nil
}

func (s *projectService) deleteForCascade(ctx context.Context, projectID, docID string) CascadeItem {
	item := CascadeItem{DocumentID: docID}
	doc, err := s.docs.FindByID(ctx, docID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			item.Outcome = OutcomeMissing
			return item
		}
		item.Outcome = OutcomeFailed
		item.Err = err
		s.log.Warn("cascade_lookup_failed", zap.String("project_id", projectID), zap.String("document_id", docID), zap.Error(err))
		return item
	}

	item.Outcome = OutcomeDeleted
	if _, err := s.store.Remove(ctx, doc.StorageKey); err != nil {
		item.Outcome = OutcomeDeletedStorageFailed
		item.StorageErr = err
		s.metrics.StorageDeleteFailed(s.store.Driver())
		s.log.Warn("cascade_storage_delete_failed",
			zap.String("project_id", projectID),
			zap.String("document_id", docID),
			zap.String("storage_key", doc.StorageKey),
			zap.Error(err),
		)
	}
	if err := s.docs.Delete(ctx, docID); err != nil {
		item.Outcome = OutcomeFailed
		item.Err = err
		s.log.Warn("cascade_record_delete_failed", zap.String("project_id", projectID), zap.String("document_id", docID), zap.Error(err))
	}
	return item
}
