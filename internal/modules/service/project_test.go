package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/projectpulse-io/projectpulse/internal/modules/model"
	"github.com/projectpulse-io/projectpulse/internal/modules/repo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MockProjectRepo is a mock implementation of ProjectRepo
type MockProjectRepo struct {
	mock.Mock
}

func (m *MockProjectRepo) Create(ctx context.Context, p *model.Project) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProjectRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *MockProjectRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (bool, error) {
	args := m.Called(ctx, id, updates)
	return args.Bool(0), args.Error(1)
}

func (m *MockProjectRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockProjectRepo) List(ctx context.Context, q repo.ListProjectsQuery) ([]model.Project, int64, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]model.Project), args.Get(1).(int64), args.Error(2)
}

func validCreateInput(actor uuid.UUID) CreateProjectInput {
	return CreateProjectInput{
		ProjectName: "Payments Revamp",
		Department:  model.DepartmentIT,
		Location:    model.LocationPune,
		StartDate:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC),
		Manager:     "Asha Rao",
		ActorID:     actor,
	}
}

func TestProjectService_Create(t *testing.T) {
	ctx := context.Background()
	actor := uuid.New()

	tests := []struct {
		name       string
		mutate     func(*CreateProjectInput)
		wantErr    bool
		wantFields []string
	}{
		{
			name:   "valid input defaults to Registered and Medium priority",
			mutate: func(in *CreateProjectInput) {},
		},
		{
			name: "end date equal to start date rejected",
			mutate: func(in *CreateProjectInput) {
				in.EndDate = in.StartDate
			},
			wantErr:    true,
			wantFields: []string{"endDate must be after startDate"},
		},
		{
			name: "end date before start date rejected",
			mutate: func(in *CreateProjectInput) {
				in.EndDate = in.StartDate.AddDate(0, 0, -1)
			},
			wantErr:    true,
			wantFields: []string{"endDate must be after startDate"},
		},
		{
			name: "invalid enums reported per field",
			mutate: func(in *CreateProjectInput) {
				in.Department = "Engineering"
				in.Location = "Delhi"
				in.Priority = "Urgent"
			},
			wantErr: true,
			wantFields: []string{
				"Engineering is not a valid department",
				"Delhi is not a valid location",
				"Urgent is not a valid priority",
			},
		},
		{
			name: "missing fields all enumerated",
			mutate: func(in *CreateProjectInput) {
				in.ProjectName = "   "
				in.Manager = ""
				in.Department = ""
			},
			wantErr: true,
			wantFields: []string{
				"projectName is required",
				"department is required",
				"manager is required",
			},
		},
		{
			name: "name over 200 chars rejected",
			mutate: func(in *CreateProjectInput) {
				long := make([]byte, 201)
				for i := range long {
					long[i] = 'x'
				}
				in.ProjectName = string(long)
			},
			wantErr:    true,
			wantFields: []string{"projectName cannot exceed 200 characters"},
		},
		{
			name: "multibyte name counted in characters not bytes",
			mutate: func(in *CreateProjectInput) {
				// 200 runes but 600 bytes; must pass the length cap
				in.ProjectName = strings.Repeat("परियोजना", 25)
			},
		},
		{
			name: "201 multibyte runes rejected",
			mutate: func(in *CreateProjectInput) {
				in.ProjectName = strings.Repeat("ॐ", 201)
			},
			wantErr:    true,
			wantFields: []string{"projectName cannot exceed 200 characters"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validCreateInput(actor)
			tt.mutate(&in)

			mockRepo := &MockProjectRepo{}
			if !tt.wantErr {
				created := &model.Project{}
				mockRepo.On("Create", ctx, mock.AnythingOfType("*model.Project")).
					Run(func(args mock.Arguments) {
						p := args.Get(1).(*model.Project)
						p.ID = uuid.New()
						*created = *p
					}).
					Return(nil)
				mockRepo.On("GetByID", ctx, mock.AnythingOfType("uuid.UUID")).
					Return(created, nil)
			}

			svc := NewProjectService(mockRepo, zap.NewNop())
			p, err := svc.Create(ctx, in)

			if tt.wantErr {
				assert.Error(t, err)
				ve, ok := AsValidationError(err)
				assert.True(t, ok)
				for _, f := range tt.wantFields {
					assert.Contains(t, ve.Fields, f)
				}
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, model.StatusRegistered, p.Status)
			assert.Equal(t, model.PriorityMedium, p.Priority)
			assert.Equal(t, actor, p.CreatedByID)
			assert.True(t, p.EndDate.After(p.StartDate))
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestProjectService_Update_MergedDates(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	actor := uuid.New()

	current := &model.Project{
		ID:        id,
		StartDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
	}

	t.Run("new end date before stored start date rejected", func(t *testing.T) {
		mockRepo := &MockProjectRepo{}
		mockRepo.On("GetByID", ctx, id).Return(current, nil)

		svc := NewProjectService(mockRepo, zap.NewNop())

		badEnd := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
		_, err := svc.Update(ctx, UpdateProjectInput{ID: id, EndDate: &badEnd, ActorID: actor})

		ve, ok := AsValidationError(err)
		assert.True(t, ok)
		assert.Contains(t, ve.Fields, "endDate must be after startDate")
		mockRepo.AssertNotCalled(t, "Update")
	})

	t.Run("zero start date rejected, nothing persisted", func(t *testing.T) {
		mockRepo := &MockProjectRepo{}
		mockRepo.On("GetByID", ctx, id).Return(current, nil)

		svc := NewProjectService(mockRepo, zap.NewNop())

		var zero time.Time
		_, err := svc.Update(ctx, UpdateProjectInput{ID: id, StartDate: &zero, ActorID: actor})

		ve, ok := AsValidationError(err)
		assert.True(t, ok)
		assert.Contains(t, ve.Fields, "startDate cannot be empty")
		mockRepo.AssertNotCalled(t, "Update")
	})

	t.Run("zero end date rejected, nothing persisted", func(t *testing.T) {
		mockRepo := &MockProjectRepo{}
		mockRepo.On("GetByID", ctx, id).Return(current, nil)

		svc := NewProjectService(mockRepo, zap.NewNop())

		var zero time.Time
		_, err := svc.Update(ctx, UpdateProjectInput{ID: id, EndDate: &zero, ActorID: actor})

		ve, ok := AsValidationError(err)
		assert.True(t, ok)
		assert.Contains(t, ve.Fields, "endDate cannot be empty")
		mockRepo.AssertNotCalled(t, "Update")
	})

	t.Run("partial update keeps omitted fields and stamps updated_by", func(t *testing.T) {
		mockRepo := &MockProjectRepo{}
		mockRepo.On("GetByID", ctx, id).Return(current, nil)
		mockRepo.On("Update", ctx, id, mock.MatchedBy(func(u map[string]interface{}) bool {
			_, hasName := u["project_name"]
			return u["updated_by_id"] == actor && hasName && len(u) == 3 // name + updated_by_id + updated_at
		})).Return(true, nil)

		svc := NewProjectService(mockRepo, zap.NewNop())

		name := "  Renamed Project  "
		_, err := svc.Update(ctx, UpdateProjectInput{ID: id, ProjectName: &name, ActorID: actor})
		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("unknown project id", func(t *testing.T) {
		mockRepo := &MockProjectRepo{}
		mockRepo.On("GetByID", ctx, id).Return(nil, gorm.ErrRecordNotFound)

		svc := NewProjectService(mockRepo, zap.NewNop())
		name := "x"
		_, err := svc.Update(ctx, UpdateProjectInput{ID: id, ProjectName: &name, ActorID: actor})
		assert.ErrorIs(t, err, ErrProjectNotFound)
	})
}

func TestProjectService_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	actor := uuid.New()

	t.Run("every member status accepted regardless of prior state", func(t *testing.T) {
		for _, status := range model.Statuses() {
			mockRepo := &MockProjectRepo{}
			mockRepo.On("Update", ctx, id, mock.Anything).Return(true, nil)
			mockRepo.On("GetByID", ctx, id).Return(&model.Project{ID: id, Status: status}, nil)

			svc := NewProjectService(mockRepo, zap.NewNop())
			p, err := svc.UpdateStatus(ctx, UpdateStatusInput{ID: id, Status: status, ActorID: actor})
			assert.NoError(t, err)
			assert.Equal(t, status, p.Status)
		}
	})

	t.Run("non-member status rejected naming the allowed set", func(t *testing.T) {
		mockRepo := &MockProjectRepo{}
		svc := NewProjectService(mockRepo, zap.NewNop())

		_, err := svc.UpdateStatus(ctx, UpdateStatusInput{ID: id, Status: "Paused", ActorID: actor})
		ve, ok := AsValidationError(err)
		assert.True(t, ok)
		assert.Contains(t, ve.Fields[0], "Registered, Running, Closed, Cancelled")
		mockRepo.AssertNotCalled(t, "Update")
	})

	t.Run("unknown id maps to not found", func(t *testing.T) {
		mockRepo := &MockProjectRepo{}
		mockRepo.On("Update", ctx, id, mock.Anything).Return(false, nil)

		svc := NewProjectService(mockRepo, zap.NewNop())
		_, err := svc.UpdateStatus(ctx, UpdateStatusInput{ID: id, Status: model.StatusRunning, ActorID: actor})
		assert.ErrorIs(t, err, ErrProjectNotFound)
	})
}

func TestProjectService_Delete(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	admin := &model.User{ID: uuid.New(), Role: model.RoleAdmin}
	regular := &model.User{ID: uuid.New(), Role: model.RoleUser}

	t.Run("non-admin forbidden", func(t *testing.T) {
		mockRepo := &MockProjectRepo{}
		svc := NewProjectService(mockRepo, zap.NewNop())

		err := svc.Delete(ctx, id, regular)
		assert.ErrorIs(t, err, ErrForbidden)
		mockRepo.AssertNotCalled(t, "Delete")
	})

	t.Run("admin deletes regardless of status", func(t *testing.T) {
		mockRepo := &MockProjectRepo{}
		mockRepo.On("Delete", ctx, id).Return(true, nil)

		svc := NewProjectService(mockRepo, zap.NewNop())
		assert.NoError(t, svc.Delete(ctx, id, admin))
		mockRepo.AssertExpectations(t)
	})

	t.Run("missing project not found", func(t *testing.T) {
		mockRepo := &MockProjectRepo{}
		mockRepo.On("Delete", ctx, id).Return(false, nil)

		svc := NewProjectService(mockRepo, zap.NewNop())
		assert.ErrorIs(t, svc.Delete(ctx, id, admin), ErrProjectNotFound)
	})
}

func TestProjectService_List_Pagination(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name          string
		in            ListProjectsInput
		total         int64
		wantPage      int
		wantPages     int
		wantNext      bool
		wantPrev      bool
		wantSortBy    string
		wantSortDesc  bool
		wantRepoLimit int
	}{
		{
			name:          "defaults applied",
			in:            ListProjectsInput{},
			total:         25,
			wantPage:      1,
			wantPages:     3,
			wantNext:      true,
			wantPrev:      false,
			wantSortBy:    "createdAt",
			wantSortDesc:  true,
			wantRepoLimit: 10,
		},
		{
			name:          "middle page has both neighbours",
			in:            ListProjectsInput{Page: 2, Limit: 10},
			total:         25,
			wantPage:      2,
			wantPages:     3,
			wantNext:      true,
			wantPrev:      true,
			wantSortBy:    "createdAt",
			wantSortDesc:  true,
			wantRepoLimit: 10,
		},
		{
			name:          "ascending sort honoured",
			in:            ListProjectsInput{SortBy: "endDate", SortOrder: "asc", Limit: 5},
			total:         2,
			wantPage:      1,
			wantPages:     1,
			wantNext:      false,
			wantPrev:      false,
			wantSortBy:    "endDate",
			wantSortDesc:  false,
			wantRepoLimit: 5,
		},
		{
			name:          "empty result is valid",
			in:            ListProjectsInput{Status: model.StatusRunning},
			total:         0,
			wantPage:      1,
			wantPages:     0,
			wantNext:      false,
			wantPrev:      false,
			wantSortBy:    "createdAt",
			wantSortDesc:  true,
			wantRepoLimit: 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &MockProjectRepo{}
			mockRepo.On("List", ctx, mock.MatchedBy(func(q repo.ListProjectsQuery) bool {
				return q.SortBy == tt.wantSortBy && q.SortDesc == tt.wantSortDesc && q.Limit == tt.wantRepoLimit
			})).Return([]model.Project{}, tt.total, nil)

			svc := NewProjectService(mockRepo, zap.NewNop())
			out, err := svc.List(ctx, tt.in)

			assert.NoError(t, err)
			assert.Equal(t, tt.wantPage, out.Pagination.CurrentPage)
			assert.Equal(t, tt.wantPages, out.Pagination.TotalPages)
			assert.Equal(t, tt.total, out.Pagination.TotalProjects)
			assert.Equal(t, tt.wantNext, out.Pagination.HasNextPage)
			assert.Equal(t, tt.wantPrev, out.Pagination.HasPrevPage)
			mockRepo.AssertExpectations(t)
		})
	}
}
