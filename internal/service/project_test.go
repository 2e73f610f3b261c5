package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"portal/internal/model"
	"portal/internal/repository"
	"portal/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func (m docMocks) projectService() ProjectService {
	return NewProjectService(m.projects, m.companies, m.docs, m.store, WithClock(func() time.Time { return fixedNow }))
}

func TestProjectService_Create(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		in         model.NewProject
		setupMocks func(m docMocks)
		wantErr    error
		wantSlug   string
	}{
		{
			name: "slug derived from name",
			in:   model.NewProject{Name: "Harbour Bridge"},
			setupMocks: func(m docMocks) {
				m.projects.On("SlugExists", mock.Anything, "harbour-bridge", "").Return(false, nil)
				m.projects.On("Create", mock.Anything, mock.MatchedBy(func(p *model.Project) bool {
					return p.Slug == "harbour-bridge" && p.Status == model.ProjectPlanning &&
						p.ID != "" && p.DocumentIDs != nil && p.CreatedAt.Equal(fixedNow)
				})).Return(&model.Project{ID: "P1", Slug: "harbour-bridge"}, nil)
			},
			wantSlug: "harbour-bridge",
		},
		{
			name: "taken slug gets a suffix",
			in:   model.NewProject{Name: "Harbour Bridge"},
			setupMocks: func(m docMocks) {
				m.projects.On("SlugExists", mock.Anything, "harbour-bridge", "").Return(true, nil)
				m.projects.On("SlugExists", mock.Anything, "harbour-bridge-2", "").Return(false, nil)
				m.projects.On("Create", mock.Anything, mock.MatchedBy(func(p *model.Project) bool {
					return p.Slug == "harbour-bridge-2"
				})).Return(&model.Project{ID: "P1", Slug: "harbour-bridge-2"}, nil)
			},
			wantSlug: "harbour-bridge-2",
		},
		{
			name:       "missing name",
			in:         model.NewProject{},
			setupMocks: func(m docMocks) {},
			wantErr:    ErrInvalidInput,
		},
		{
			name:       "bad status",
			in:         model.NewProject{Name: "X", Status: "done"},
			setupMocks: func(m docMocks) {},
			wantErr:    ErrInvalidInput,
		},
		{
			name: "unknown company",
			in:   model.NewProject{Name: "X", CompanyID: strPtr("ghost")},
			setupMocks: func(m docMocks) {
				m.companies.On("FindByID", mock.Anything, "ghost").Return(nil, repository.ErrNotFound)
			},
			wantErr: ErrCompanyNotFound,
		},
		{
			name: "concurrent slug conflict",
			in:   model.NewProject{Name: "X"},
			setupMocks: func(m docMocks) {
				m.projects.On("SlugExists", mock.Anything, "x", "").Return(false, nil)
				m.projects.On("Create", mock.Anything, mock.Anything).Return(nil, repository.ErrConflict)
			},
			wantErr: ErrSlugConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newDocMocks()
			tt.setupMocks(m)

			p, err := m.projectService().Create(ctx, tt.in)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, p)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantSlug, p.Slug)
			}
			m.assert(t)
		})
	}
}

func TestProjectService_Update(t *testing.T) {
	ctx := context.Background()
	existing := func() *model.Project {
		return &model.Project{ID: "P1", Name: "Old Name", Slug: "old-name", Status: model.ProjectPlanning, CompanyID: strPtr("C1")}
	}

	tests := []struct {
		name       string
		patch      model.ProjectPatch
		setupMocks func(m docMocks)
		wantErr    error
		check      func(t *testing.T, p *model.Project)
	}{
		{
			name:  "rename regenerates slug",
			patch: model.ProjectPatch{Name: strPtr("New Name")},
			setupMocks: func(m docMocks) {
				m.projects.On("FindByID", mock.Anything, "P1").Return(existing(), nil)
				m.projects.On("SlugExists", mock.Anything, "new-name", "P1").Return(false, nil)
				m.projects.On("Update", mock.Anything, mock.MatchedBy(func(p *model.Project) bool {
					return p.Slug == "new-name" && p.Name == "New Name"
				})).Return(nil)
			},
			check: func(t *testing.T, p *model.Project) {
				assert.Equal(t, "new-name", p.Slug)
				assert.Equal(t, fixedNow, p.UpdatedAt)
			},
		},
		{
			name:  "status only keeps slug",
			patch: model.ProjectPatch{Status: statusPtr(model.ProjectActive)},
			setupMocks: func(m docMocks) {
				m.projects.On("FindByID", mock.Anything, "P1").Return(existing(), nil)
				m.projects.On("Update", mock.Anything, mock.Anything).Return(nil)
			},
			check: func(t *testing.T, p *model.Project) {
				assert.Equal(t, "old-name", p.Slug)
				assert.Equal(t, model.ProjectActive, p.Status)
			},
		},
		{
			name:  "empty company id detaches",
			patch: model.ProjectPatch{CompanyID: strPtr("")},
			setupMocks: func(m docMocks) {
				m.projects.On("FindByID", mock.Anything, "P1").Return(existing(), nil)
				m.projects.On("Update", mock.Anything, mock.MatchedBy(func(p *model.Project) bool {
					return p.CompanyID == nil
				})).Return(nil)
			},
			check: func(t *testing.T, p *model.Project) {
				assert.Nil(t, p.CompanyID)
			},
		},
		{
			name:       "empty patch",
			patch:      model.ProjectPatch{},
			setupMocks: func(m docMocks) {},
			wantErr:    ErrInvalidPatch,
		},
		{
			name:  "unknown project",
			patch: model.ProjectPatch{Description: strPtr("d")},
			setupMocks: func(m docMocks) {
				m.projects.On("FindByID", mock.Anything, "P1").Return(nil, repository.ErrNotFound)
			},
			wantErr: ErrProjectNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newDocMocks()
			tt.setupMocks(m)

			p, err := m.projectService().Update(ctx, "P1", tt.patch)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				m.projects.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
			} else {
				require.NoError(t, err)
				tt.check(t, p)
			}
			m.assert(t)
		})
	}
}

func statusPtr(s model.ProjectStatus) *model.ProjectStatus { return &s }

func TestProjectService_List(t *testing.T) {
	m := newDocMocks()
	m.projects.On("List", mock.Anything, repository.PageQuery{Limit: 100, Offset: 0}).
		Return(&repository.PageResult[model.Project]{Items: []model.Project{{ID: "P1"}}, Total: 1}, nil)

	res, err := m.projectService().List(context.Background(), 500, -3)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
	assert.Len(t, res.Items, 1)
	m.assert(t)
}

func TestProjectService_Delete_Cascade(t *testing.T) {
	ctx := context.Background()

	t.Run("storage failure on one document does not stop the cascade", func(t *testing.T) {
		m := newDocMocks()
		m.projects.On("FindByID", mock.Anything, "P1").
			Return(&model.Project{ID: "P1", DocumentIDs: []string{"d1", "d2", "d3"}}, nil)
		m.docs.On("ListByProject", mock.Anything, "P1").
			Return([]model.Document{{ID: "d3"}, {ID: "d2"}, {ID: "d1"}}, nil)
		for _, id := range []string{"d1", "d2", "d3"} {
			m.docs.On("FindByID", mock.Anything, id).Return(&model.Document{ID: id, StorageKey: "k-" + id}, nil)
			m.docs.On("Delete", mock.Anything, id).Return(nil).Once()
		}
		m.store.On("Remove", mock.Anything, "k-d1").Return(storage.Removed, nil)
		m.store.On("Remove", mock.Anything, "k-d2").Return(storage.Removed, errors.New("connection reset"))
		m.store.On("Remove", mock.Anything, "k-d3").Return(storage.AlreadyAbsent, nil)
		m.docs.On("DeleteByProject", mock.Anything, "P1").Return(int64(0), nil)
		m.projects.On("Delete", mock.Anything, "P1").Return(nil)

		report, err := m.projectService().Delete(ctx, "P1")

		require.NoError(t, err)
		require.Len(t, report.Items, 3)
		assert.Equal(t, OutcomeDeleted, report.Items[0].Outcome)
		assert.Equal(t, OutcomeDeletedStorageFailed, report.Items[1].Outcome)
		assert.Error(t, report.Items[1].StorageErr)
		assert.Equal(t, OutcomeDeleted, report.Items[2].Outcome)
		assert.Equal(t, 1, report.Failed())
		m.docs.AssertNumberOfCalls(t, "Delete", 3)
		m.assert(t)
	})

	t.Run("records pointing at the project outside its set are removed too", func(t *testing.T) {
		m := newDocMocks()
		m.projects.On("FindByID", mock.Anything, "P1").
			Return(&model.Project{ID: "P1", DocumentIDs: []string{"gone"}}, nil)
		m.docs.On("ListByProject", mock.Anything, "P1").Return([]model.Document{{ID: "stray"}}, nil)
		m.docs.On("FindByID", mock.Anything, "gone").Return(nil, repository.ErrNotFound)
		m.docs.On("FindByID", mock.Anything, "stray").Return(&model.Document{ID: "stray", StorageKey: "k"}, nil)
		m.store.On("Remove", mock.Anything, "k").Return(storage.Removed, nil)
		m.docs.On("Delete", mock.Anything, "stray").Return(nil)
		m.docs.On("DeleteByProject", mock.Anything, "P1").Return(int64(0), nil)
		m.projects.On("Delete", mock.Anything, "P1").Return(nil)

		report, err := m.projectService().Delete(ctx, "P1")

		require.NoError(t, err)
		require.Len(t, report.Items, 2)
		assert.Equal(t, OutcomeMissing, report.Items[0].Outcome)
		assert.Equal(t, OutcomeDeleted, report.Items[1].Outcome)
		m.assert(t)
	})

	t.Run("record delete failure is swept", func(t *testing.T) {
		m := newDocMocks()
		m.projects.On("FindByID", mock.Anything, "P1").
			Return(&model.Project{ID: "P1", DocumentIDs: []string{"d1"}}, nil)
		m.docs.On("ListByProject", mock.Anything, "P1").Return(nil, errors.New("timeout"))
		m.docs.On("FindByID", mock.Anything, "d1").Return(&model.Document{ID: "d1", StorageKey: "k"}, nil)
		m.store.On("Remove", mock.Anything, "k").Return(storage.Removed, nil)
		m.docs.On("Delete", mock.Anything, "d1").Return(errors.New("lock timeout"))
		m.docs.On("DeleteByProject", mock.Anything, "P1").Return(int64(1), nil)
		m.projects.On("Delete", mock.Anything, "P1").Return(nil)

		report, err := m.projectService().Delete(ctx, "P1")

		require.NoError(t, err)
		assert.Equal(t, OutcomeFailed, report.Items[0].Outcome)
		assert.Equal(t, int64(1), report.Swept)
		m.assert(t)
	})

	t.Run("sweep failure keeps the project", func(t *testing.T) {
		m := newDocMocks()
		m.projects.On("FindByID", mock.Anything, "P1").Return(&model.Project{ID: "P1"}, nil)
		m.docs.On("ListByProject", mock.Anything, "P1").Return([]model.Document{}, nil)
		m.docs.On("DeleteByProject", mock.Anything, "P1").Return(int64(0), errors.New("db down"))

		_, err := m.projectService().Delete(ctx, "P1")

		assert.ErrorIs(t, err, ErrRecordPersist)
		m.projects.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
		m.assert(t)
	})

	t.Run("unknown project", func(t *testing.T) {
		m := newDocMocks()
		m.projects.On("FindByID", mock.Anything, "nope").Return(nil, repository.ErrNotFound)

		_, err := m.projectService().Delete(ctx, "nope")

		assert.ErrorIs(t, err, ErrProjectNotFound)
		m.assert(t)
	})
}
