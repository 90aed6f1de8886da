package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/projectpulse-io/projectpulse/internal/modules/model"
	"github.com/projectpulse-io/projectpulse/internal/modules/repo"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ProjectService interface {
	Create(ctx context.Context, in CreateProjectInput) (*model.Project, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Project, error)
	Update(ctx context.Context, in UpdateProjectInput) (*model.Project, error)
	UpdateStatus(ctx context.Context, in UpdateStatusInput) (*model.Project, error)
	Delete(ctx context.Context, id uuid.UUID, actor *model.User) error
	List(ctx context.Context, in ListProjectsInput) (*ListProjectsOutput, error)
}

type projectService struct {
	r   repo.ProjectRepo
	log *zap.Logger
}

func NewProjectService(r repo.ProjectRepo, log *zap.Logger) ProjectService {
	return &projectService{r: r, log: log}
}

type CreateProjectInput struct {
	ProjectName string           `json:"project_name"`
	Department  model.Department `json:"department"`
	Location    model.Location   `json:"location"`
	StartDate   time.Time        `json:"start_date"`
	EndDate     time.Time        `json:"end_date"`
	Manager     string           `json:"manager"`
	Description string           `json:"description"`
	Priority    model.Priority   `json:"priority"`

	ActorID uuid.UUID `json:"-"`
}

func (s *projectService) Create(ctx context.Context, in CreateProjectInput) (*model.Project, error) {
	in.ProjectName = strings.TrimSpace(in.ProjectName)
	in.Manager = strings.TrimSpace(in.Manager)
	in.Description = strings.TrimSpace(in.Description)
	if in.Priority == "" {
		in.Priority = model.PriorityMedium
	}

	var fields []string
	if in.ProjectName == "" {
		fields = append(fields, "projectName is required")
	} else if utf8.RuneCountInString(in.ProjectName) > 200 {
		fields = append(fields, "projectName cannot exceed 200 characters")
	}
	if in.Department == "" {
		fields = append(fields, "department is required")
	} else if !in.Department.Valid() {
		fields = append(fields, fmt.Sprintf("%s is not a valid department", in.Department))
	}
	if in.Location == "" {
		fields = append(fields, "location is required")
	} else if !in.Location.Valid() {
		fields = append(fields, fmt.Sprintf("%s is not a valid location", in.Location))
	}
	if in.StartDate.IsZero() {
		fields = append(fields, "startDate is required")
	}
	if in.EndDate.IsZero() {
		fields = append(fields, "endDate is required")
	}
	if !in.StartDate.IsZero() && !in.EndDate.IsZero() && !in.EndDate.After(in.StartDate) {
		fields = append(fields, "endDate must be after startDate")
	}
	if in.Manager == "" {
		fields = append(fields, "manager is required")
	}
	if utf8.RuneCountInString(in.Description) > 1000 {
		fields = append(fields, "description cannot exceed 1000 characters")
	}
	if !in.Priority.Valid() {
		fields = append(fields, fmt.Sprintf("%s is not a valid priority", in.Priority))
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	p := &model.Project{
		ProjectName: in.ProjectName,
		Department:  in.Department,
		Location:    in.Location,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		Status:      model.StatusRegistered,
		Manager:     in.Manager,
		Description: in.Description,
		Priority:    in.Priority,
		CreatedByID: in.ActorID,
	}
	if err := s.r.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	// Re-read so created_by is resolved to a displayable identity.
	return s.Get(ctx, p.ID)
}

func (s *projectService) Get(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	p, err := s.r.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return p, nil
}

// UpdateProjectInput carries partial-update fields; nil means "keep the
// current value".
type UpdateProjectInput struct {
	ID          uuid.UUID         `json:"-"`
	ProjectName *string           `json:"project_name"`
	Department  *model.Department `json:"department"`
	Location    *model.Location   `json:"location"`
	StartDate   *time.Time        `json:"start_date"`
	EndDate     *time.Time        `json:"end_date"`
	Manager     *string           `json:"manager"`
	Description *string           `json:"description"`
	Priority    *model.Priority   `json:"priority"`

	ActorID uuid.UUID `json:"-"`
}

func (s *projectService) Update(ctx context.Context, in UpdateProjectInput) (*model.Project, error) {
	current, err := s.Get(ctx, in.ID)
	if err != nil {
		return nil, err
	}

	var fields []string
	updates := map[string]interface{}{}

	if in.ProjectName != nil {
		name := strings.TrimSpace(*in.ProjectName)
		switch {
		case name == "":
			fields = append(fields, "projectName cannot be empty")
		case utf8.RuneCountInString(name) > 200:
			fields = append(fields, "projectName cannot exceed 200 characters")
		default:
			updates["project_name"] = name
		}
	}
	if in.Department != nil {
		if !in.Department.Valid() {
			fields = append(fields, fmt.Sprintf("%s is not a valid department", *in.Department))
		} else {
			updates["department"] = *in.Department
		}
	}
	if in.Location != nil {
		if !in.Location.Valid() {
			fields = append(fields, fmt.Sprintf("%s is not a valid location", *in.Location))
		} else {
			updates["location"] = *in.Location
		}
	}
	if in.Manager != nil {
		manager := strings.TrimSpace(*in.Manager)
		if manager == "" {
			fields = append(fields, "manager cannot be empty")
		} else {
			updates["manager"] = manager
		}
	}
	if in.Description != nil {
		desc := strings.TrimSpace(*in.Description)
		if utf8.RuneCountInString(desc) > 1000 {
			fields = append(fields, "description cannot exceed 1000 characters")
		} else {
			updates["description"] = desc
		}
	}
	if in.Priority != nil {
		if !in.Priority.Valid() {
			fields = append(fields, fmt.Sprintf("%s is not a valid priority", *in.Priority))
		} else {
			updates["priority"] = *in.Priority
		}
	}

	// The date invariant holds on the merged result, not just on the
	// supplied fields. Zero dates are rejected so a cleared value can never
	// overwrite a stored one.
	startDate := current.StartDate
	endDate := current.EndDate
	if in.StartDate != nil {
		if in.StartDate.IsZero() {
			fields = append(fields, "startDate cannot be empty")
		} else {
			startDate = *in.StartDate
			updates["start_date"] = startDate
		}
	}
	if in.EndDate != nil {
		if in.EndDate.IsZero() {
			fields = append(fields, "endDate cannot be empty")
		} else {
			endDate = *in.EndDate
			updates["end_date"] = endDate
		}
	}
	if !endDate.After(startDate) {
		fields = append(fields, "endDate must be after startDate")
	}

	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	updates["updated_by_id"] = in.ActorID
	updates["updated_at"] = time.Now().UTC()

	matched, err := s.r.Update(ctx, in.ID, updates)
	if err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	if !matched {
		return nil, ErrProjectNotFound
	}

	return s.Get(ctx, in.ID)
}

type UpdateStatusInput struct {
	ID      uuid.UUID    `json:"-"`
	Status  model.Status `json:"status"`
	ActorID uuid.UUID    `json:"-"`
}

func (s *projectService) UpdateStatus(ctx context.Context, in UpdateStatusInput) (*model.Project, error) {
	// Membership check only: the lifecycle imposes no transition graph, so
	// any valid status is accepted regardless of the prior one.
	if !in.Status.Valid() {
		allowed := make([]string, 0, len(model.Statuses()))
		for _, st := range model.Statuses() {
			allowed = append(allowed, string(st))
		}
		return nil, &ValidationError{Fields: []string{
			"status must be one of: " + strings.Join(allowed, ", "),
		}}
	}

	updates := map[string]interface{}{
		"status":        in.Status,
		"updated_by_id": in.ActorID,
		"updated_at":    time.Now().UTC(),
	}
	matched, err := s.r.Update(ctx, in.ID, updates)
	if err != nil {
		return nil, fmt.Errorf("failed to update project status: %w", err)
	}
	if !matched {
		return nil, ErrProjectNotFound
	}

	return s.Get(ctx, in.ID)
}

func (s *projectService) Delete(ctx context.Context, id uuid.UUID, actor *model.User) error {
	if actor == nil || actor.Role != model.RoleAdmin {
		return ErrForbidden
	}

	// Deletion is unconditional on status; a Running project can be removed.
	deleted, err := s.r.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if !deleted {
		return ErrProjectNotFound
	}

	s.log.Info("project deleted",
		zap.String("project_id", id.String()),
		zap.String("deleted_by", actor.ID.String()),
	)
	return nil
}

type ListProjectsInput struct {
	Search     string           `json:"search"`
	Status     model.Status     `json:"status"`
	Department model.Department `json:"department"`
	Location   model.Location   `json:"location"`
	SortBy     string           `json:"sort_by"`
	SortOrder  string           `json:"sort_order"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
}

type Pagination struct {
	CurrentPage   int   `json:"current_page"`
	TotalPages    int   `json:"total_pages"`
	TotalProjects int64 `json:"total_projects"`
	HasNextPage   bool  `json:"has_next_page"`
	HasPrevPage   bool  `json:"has_prev_page"`
	Limit         int   `json:"limit"`
}

type ListProjectsOutput struct {
	Items      []model.Project `json:"items"`
	Pagination Pagination      `json:"pagination"`
}

func (s *projectService) List(ctx context.Context, in ListProjectsInput) (*ListProjectsOutput, error) {
	if in.Page < 1 {
		in.Page = 1
	}
	if in.Limit < 1 {
		in.Limit = 10
	}
	if in.SortBy == "" {
		in.SortBy = "createdAt"
	}
	sortDesc := in.SortOrder != "asc"

	items, total, err := s.r.List(ctx, repo.ListProjectsQuery{
		Search:     in.Search,
		Status:     in.Status,
		Department: in.Department,
		Location:   in.Location,
		SortBy:     in.SortBy,
		SortDesc:   sortDesc,
		Page:       in.Page,
		Limit:      in.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	totalPages := int((total + int64(in.Limit) - 1) / int64(in.Limit))

	return &ListProjectsOutput{
		Items: items,
		Pagination: Pagination{
			CurrentPage:   in.Page,
			TotalPages:    totalPages,
			TotalProjects: total,
			HasNextPage:   in.Page < totalPages,
			HasPrevPage:   in.Page > 1,
			Limit:         in.Limit,
		},
	}, nil
}
