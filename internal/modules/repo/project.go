package repo

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/projectpulse-io/projectpulse/internal/modules/model"
	"gorm.io/gorm"
)

type ProjectRepo interface {
	Create(ctx context.Context, p *model.Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Project, error)
	// Update applies the given column set to one project and reports whether
	// a row matched.
	Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	// List runs a single filtered, sorted, paginated query plus its matching
	// count against the store.
	List(ctx context.Context, q ListProjectsQuery) ([]model.Project, int64, error)
}

// ListProjectsQuery captures the list surface: free-text search OR-ed across
// name/manager/location/description, optional exact-match filters, a
// whitelisted sort key, and 1-based pagination.
type ListProjectsQuery struct {
	Search     string
	Status     model.Status
	Department model.Department
	Location   model.Location
	SortBy     string
	SortDesc   bool
	Page       int
	Limit      int
}

// sortColumns whitelists ORDER BY targets; unknown keys fall back to
// insertion order (created_at).
var sortColumns = map[string]string{
	"projectName": "project_name",
	"department":  "department",
	"location":    "location",
	"startDate":   "start_date",
	"endDate":     "end_date",
	"status":      "status",
	"priority":    "priority",
	"manager":     "manager",
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
}

type projectRepo struct{ db *gorm.DB }

func NewProjectRepo(db *gorm.DB) ProjectRepo {
	return &projectRepo{db: db}
}

func (r *projectRepo) Create(ctx context.Context, p *model.Project) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *projectRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	var p model.Project
	err := r.db.WithContext(ctx).
		Preload("CreatedBy").
		Preload("UpdatedBy").
		First(&p, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *projectRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Project{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *projectRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&model.Project{}, "id = ?", id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *projectRepo) List(ctx context.Context, q ListProjectsQuery) ([]model.Project, int64, error) {
	base := r.db.WithContext(ctx).Model(&model.Project{})

	if s := strings.TrimSpace(q.Search); s != "" {
		pattern := "%" + s + "%"
		base = base.Where(
			"project_name ILIKE ? OR manager ILIKE ? OR location ILIKE ? OR description ILIKE ?",
			pattern, pattern, pattern, pattern,
		)
	}
	if q.Status != "" {
		base = base.Where("status = ?", q.Status)
	}
	if q.Department != "" {
		base = base.Where("department = ?", q.Department)
	}
	if q.Location != "" {
		base = base.Where("location = ?", q.Location)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column, ok := sortColumns[q.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "ASC"
	if q.SortDesc {
		direction = "DESC"
	}

	offset := (q.Page - 1) * q.Limit

	var items []model.Project
	err := base.Session(&gorm.Session{}).
		Preload("CreatedBy").
		Preload("UpdatedBy").
		Order(column + " " + direction).
		Offset(offset).
		Limit(q.Limit).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
