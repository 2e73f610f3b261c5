package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"portal/internal/filetype"
	"portal/internal/metrics"
	"portal/internal/model"
	"portal/internal/repository"
	"portal/internal/storage"
)

// UploadInput is one file submitted for a project.
type UploadInput struct {
	ProjectID   string
	Filename    string
	ContentType string
	// Size is the client-declared length, used only for the early ceiling check.
	Size        int64
	Reader      io.Reader
	DisplayName string
	Tags        []string
	UploaderID  string
}

// ViewResult is a freshly resolved URL for a document plus minimal metadata.
type ViewResult struct {
	URL            string               `json:"url"`
	ExpiresAt      *time.Time           `json:"expires_at,omitempty"`
	Name           string               `json:"name"`
	Classification model.Classification `json:"classification"`
	Size           int64                `json:"size"`
}

// UploadResult carries the created document and, for expiring URLs, one ready to use.
type UploadResult struct {
	Document *model.Document `json:"document"`
	ViewURL  *ViewResult     `json:"view_url,omitempty"`
}

// DocumentService defines the use cases for handling documents.
type DocumentService interface {
	// Upload validates, stores and records a file, then links it to its project.
	Upload(ctx context.Context, in UploadInput) (*UploadResult, error)

	// Get returns a single document by its ID.
	Get(ctx context.Context, id string) (*model.Document, error)

	// ListByProject returns the project's documents, newest first.
	ListByProject(ctx context.Context, projectID string) ([]model.Document, error)

	// ViewURL resolves a URL for reading the document and records the access.
	ViewURL(ctx context.Context, id string) (*ViewResult, error)

	// Delete removes the stored bytes (best-effort), the project link and the record.
	Delete(ctx context.Context, id string) error
}

// documentService is a concrete implementation of DocumentService.
type documentService struct {
	store     storage.Storage
	docs      repository.DocumentRepository
	projects  repository.ProjectRepository
	companies repository.CompanyRepository
	validator *filetype.Validator
	options
}

// NewDocumentService constructs a new DocumentService.
func NewDocumentService(
	store storage.Storage,
	docs repository.DocumentRepository,
	projects repository.ProjectRepository,
	companies repository.CompanyRepository,
	validator *filetype.Validator,
	opts ...Option,
) DocumentService {
	if validator == nil {
		validator = filetype.NewValidator(0)
	}
	return &documentService{
		store:     store,
		docs:      docs,
		projects:  projects,
		companies: companies,
		validator: validator,
		options:   newOptions(opts),
	}
}

func (s *documentService) Upload(ctx context.Context, in UploadInput) (*UploadResult, error) {
	if in.ProjectID == "" {
		return nil, ErrIDRequired
	}
	if in.Reader == nil {
		return nil, ErrReaderNil
	}

	// Nothing is written anywhere until the payload is accepted.
	if err := s.validator.Check(in.ContentType, in.Size); err != nil {
		s.metrics.Upload(string(filetype.Classify(in.ContentType)), metrics.ResultRejected)
		return nil, err
	}
	payload, err := s.validator.Buffer(in.Reader, in.ContentType, in.Filename)
	if err != nil {
		if errors.Is(err, filetype.ErrUnsupportedMediaType) || errors.Is(err, filetype.ErrPayloadTooLarge) {
			s.metrics.Upload(string(filetype.Classify(in.ContentType)), metrics.ResultRejected)
		}
		return nil, err
	}
	class := string(payload.Classification)

	project, err := s.projects.FindByID(ctx, in.ProjectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("lookup project: %w", err)
	}
	scope, err := s.scopeFor(ctx, project)
	if err != nil {
		return nil, err
	}

	info, err := s.store.Put(ctx, payload.Reader(), storage.PutObjectOptions{
		Filename:    in.Filename,
		ContentType: payload.ContentType,
		Size:        payload.Size(),
		Scope:       scope,
		Metadata: map[string]string{
			"original-filename": in.Filename,
			"project-id":        project.ID,
		},
	})
	if err != nil {
		s.metrics.Upload(class, metrics.ResultFailed)
		return nil, fmt.Errorf("%w: %v", ErrStorageWrite, err)
	}

	resolved, resolveErr := s.store.Resolve(ctx, info.Key)
	if resolveErr != nil {
		s.log.Warn("upload_resolve_failed",
			zap.String("storage_key", info.Key),
			zap.String("driver", s.store.Driver()),
			zap.Error(resolveErr),
		)
	}

	name := strings.TrimSpace(in.DisplayName)
	if name == "" {
		name = in.Filename
	}
	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}
	doc := &model.Document{
		ID:               uuid.NewString(),
		ProjectID:        project.ID,
		Name:             name,
		OriginalFilename: in.Filename,
		ContentType:      payload.ContentType,
		Classification:   payload.Classification,
		Size:             info.Size,
		StorageKey:       info.Key,
		Tags:             tags,
		UploadedBy:       in.UploaderID,
		UploadedAt:       s.now(),
	}
	if resolveErr == nil && resolved.ExpiresAt == nil {
		u := resolved.URL
		doc.URL = &u
	}

	stored, err := s.docs.Create(ctx, doc)
	if err != nil {
		s.metrics.Upload(class, metrics.ResultFailed)
		if _, rmErr := s.store.Remove(ctx, info.Key); rmErr != nil {
			s.metrics.StorageDeleteFailed(s.store.Driver())
			s.log.Warn("upload_rollback_failed",
				zap.String("storage_key", info.Key),
				zap.Error(rmErr),
			)
		}
		return nil, fmt.Errorf("%w: %v", ErrRecordPersist, err)
	}

	if err := s.projects.AttachDocument(ctx, project.ID, stored.ID); err != nil {
		// The record stays behind, unreachable from any project.
		s.metrics.Upload(class, metrics.ResultFailed)
		s.log.Error("document_orphaned",
			zap.String("document_id", stored.ID),
			zap.String("project_id", project.ID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: attach to project: %v", ErrRecordPersist, err)
	}

	s.metrics.Upload(class, metrics.ResultAccepted)
	s.log.Info("document_uploaded",
		zap.String("document_id", stored.ID),
		zap.String("project_id", project.ID),
		zap.String("classification", class),
		zap.Int64("size", stored.Size),
	)

	res := &UploadResult{Document: stored}
	if resolveErr == nil && resolved.ExpiresAt != nil {
		s.metrics.ViewURLIssued(s.store.Driver())
		res.ViewURL = viewResult(stored, resolved)
	}
	return res, nil
}

// scopeFor returns the slugs used to place the object. A missing company is "unassigned".
func (s *documentService) scopeFor(ctx context.Context, p *model.Project) (storage.Scope, error) {
	scope := storage.Scope{ProjectSlug: p.Slug}
	if p.CompanyID == nil || *p.CompanyID == "" {
		return scope, nil
	}
	c, err := s.companies.FindByID(ctx, *p.CompanyID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.log.Warn("project_company_missing",
				zap.String("project_id", p.ID),
				zap.String("company_id", *p.CompanyID),
			)
			return scope, nil
		}
		return scope, fmt.Errorf("lookup company: %w", err)
	}
	scope.CompanySlug = c.Slug
	return scope, nil
}

func (s *documentService) Get(ctx context.Context, id string) (*model.Document, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	doc, err := s.docs.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	return doc, nil
}

func (s *documentService) ListByProject(ctx context.Context, projectID string) ([]model.Document, error) {
	if projectID == "" {
		return nil, ErrIDRequired
	}
	if _, err := s.projects.FindByID(ctx, projectID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return s.docs.ListByProject(ctx, projectID)
}

func (s *documentService) ViewURL(ctx context.Context, id string) (*ViewResult, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	resolved, err := s.store.Resolve(ctx, doc.StorageKey)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("resolve view url: %w", err)
	}
	s.metrics.ViewURLIssued(s.store.Driver())

	if err := s.docs.TouchAccess(ctx, doc.ID, s.now()); err != nil {
		s.log.Warn("touch_access_failed", zap.String("document_id", doc.ID), zap.Error(err))
	}
	return viewResult(doc, resolved), nil
}

// Delete removes storage bytes first, then the project link, then the record.
func (s *documentService) Delete(ctx context.Context, id string) error {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	s.removeObject(ctx, doc)

	if err := s.projects.DetachDocument(ctx, doc.ProjectID, doc.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: detach from project: %v", ErrRecordPersist, err)
	}
	if err := s.docs.Delete(ctx, doc.ID); err != nil {
		return fmt.Errorf("%w: delete record: %v", ErrRecordPersist, err)
	}
	s.log.Info("document_deleted", zap.String("document_id", doc.ID), zap.String("project_id", doc.ProjectID))
	return nil
}

// removeObject deletes the stored bytes. Failures are logged and counted only.
func (s *documentService) removeObject(ctx context.Context, doc *model.Document) {
	removal, err := s.store.Remove(ctx, doc.StorageKey)
	if err != nil {
		s.metrics.StorageDeleteFailed(s.store.Driver())
		s.log.Warn("storage_delete_failed",
			zap.String("document_id", doc.ID),
			zap.String("storage_key", doc.StorageKey),
			zap.String("driver", s.store.Driver()),
			zap.Error(err),
		)
		return
	}
	if removal == storage.AlreadyAbsent {
		s.log.Info("storage_object_already_absent", zap.String("storage_key", doc.StorageKey))
	}
}

func viewResult(doc *model.Document, u storage.ResolvedURL) *ViewResult {
	return &ViewResult{
		URL:            u.URL,
		ExpiresAt:      u.ExpiresAt,
		Name:           doc.Name,
		Classification: doc.Classification,
		Size:           doc.Size,
	}
}
