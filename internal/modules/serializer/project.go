package serializer

import (
	"time"

	"github.com/google/uuid"
	"github.com/projectpulse-io/projectpulse/internal/modules/model"
	"github.com/projectpulse-io/projectpulse/internal/modules/service"
)

// UserRef is the displayable identity a created_by/updated_by reference
// resolves to.
type UserRef struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

func buildUserRef(u *model.User) *UserRef {
	if u == nil {
		return nil
	}
	return &UserRef{ID: u.ID, Name: u.Name, Email: u.Email}
}

// ProjectView is a Project with its derived fields attached and its user
// references resolved. Derived fields are computed here, at the
// serialization boundary, and never persisted.
type ProjectView struct {
	ID          uuid.UUID        `json:"id"`
	ProjectName string           `json:"project_name"`
	Department  model.Department `json:"department"`
	Location    model.Location   `json:"location"`
	StartDate   time.Time        `json:"start_date"`
	EndDate     time.Time        `json:"end_date"`
	Status      model.Status     `json:"status"`
	Manager     string           `json:"manager"`
	Description string           `json:"description,omitempty"`
	Priority    model.Priority   `json:"priority"`
	CreatedBy   *UserRef         `json:"created_by,omitempty"`
	UpdatedBy   *UserRef         `json:"updated_by,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`

	IsDelayed      bool `json:"is_delayed"`
	DurationInDays int  `json:"duration_in_days"`
}

func BuildProject(p *model.Project, now time.Time) ProjectView {
	return ProjectView{
		ID:             p.ID,
		ProjectName:    p.ProjectName,
		Department:     p.Department,
		Location:       p.Location,
		StartDate:      p.StartDate,
		EndDate:        p.EndDate,
		Status:         p.Status,
		Manager:        p.Manager,
		Description:    p.Description,
		Priority:       p.Priority,
		CreatedBy:      buildUserRef(p.CreatedBy),
		UpdatedBy:      buildUserRef(p.UpdatedBy),
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
		IsDelayed:      p.IsDelayed(now),
		DurationInDays: p.DurationInDays(),
	}
}

type ProjectListData struct {
	Projects   []ProjectView      `json:"projects"`
	Pagination service.Pagination `json:"pagination"`
	Filters    ListFilters        `json:"filters"`
}

// ListFilters echoes the effective query back to the caller, matching the
// list response contract.
type ListFilters struct {
	Search     string `json:"search"`
	Status     string `json:"status,omitempty"`
	Department string `json:"department,omitempty"`
	Location   string `json:"location,omitempty"`
	SortBy     string `json:"sort_by"`
	SortOrder  string `json:"sort_order"`
}

func BuildProjectList(out *service.ListProjectsOutput, filters ListFilters, now time.Time) ProjectListData {
	views := make([]ProjectView, 0, len(out.Items))
	for i := range out.Items {
		views = append(views, BuildProject(&out.Items[i], now))
	}
	return ProjectListData{
		Projects:   views,
		Pagination: out.Pagination,
		Filters:    filters,
	}
}
