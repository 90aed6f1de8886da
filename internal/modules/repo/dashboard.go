package repo

import (
	"context"
	"time"

	"github.com/projectpulse-io/projectpulse/internal/modules/model"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type DashboardRepo interface {
	// StatusCounts reduces the whole collection to per-status totals in one
	// pass of concurrent count queries. Pure read.
	StatusCounts(ctx context.Context, now time.Time) (*StatusCounts, error)
	// DepartmentRollup groups all projects by department with per-status
	// counts, sorted alphabetically by department.
	DepartmentRollup(ctx context.Context) ([]DepartmentRow, error)
	// TimelineBuckets groups projects by creation date at the given
	// granularity, ascending. Month/week are zero when the period does not
	// use them, which also makes absent keys sort lowest.
	TimelineBuckets(ctx context.Context, period TimelinePeriod) ([]TimelineRow, error)
}

type StatusCounts struct {
	Total          int64
	Closed         int64
	Running        int64
	Cancelled      int64
	Registered     int64
	RunningDelayed int64
}

type DepartmentRow struct {
	Department model.Department `gorm:"column:department"`
	Total      int64            `gorm:"column:total"`
	Closed     int64            `gorm:"column:closed"`
	Running    int64            `gorm:"column:running"`
	Cancelled  int64            `gorm:"column:cancelled"`
	Registered int64            `gorm:"column:registered"`
}

type TimelinePeriod string

const (
	PeriodWeek  TimelinePeriod = "week"
	PeriodMonth TimelinePeriod = "month"
	PeriodYear  TimelinePeriod = "year"
)

func (p TimelinePeriod) Valid() bool {
	switch p {
	case PeriodWeek, PeriodMonth, PeriodYear:
		return true
	}
	return false
}

type TimelineRow struct {
	Year            int   `gorm:"column:year"`
	Month           int   `gorm:"column:month"`
	Week            int   `gorm:"column:week"`
	ProjectsCreated int64 `gorm:"column:projects_created"`
	ProjectsClosed  int64 `gorm:"column:projects_closed"`
}

type dashboardRepo struct{ db *gorm.DB }

func NewDashboardRepo(db *gorm.DB) DashboardRepo {
	return &dashboardRepo{db: db}
}

func (r *dashboardRepo) StatusCounts(ctx context.Context, now time.Time) (*StatusCounts, error) {
	counts := &StatusCounts{}

	g, gctx := errgroup.WithContext(ctx)

	count := func(dst *int64, conds ...interface{}) func() error {
		return func() error {
			q := r.db.WithContext(gctx).Model(&model.Project{})
			if len(conds) > 0 {
				q = q.Where(conds[0], conds[1:]...)
			}
			return q.Count(dst).Error
		}
	}

	g.Go(count(&counts.Total))
	g.Go(count(&counts.Closed, "status = ?", model.StatusClosed))
	g.Go(count(&counts.Running, "status = ?", model.StatusRunning))
	g.Go(count(&counts.Cancelled, "status = ?", model.StatusCancelled))
	g.Go(count(&counts.Registered, "status = ?", model.StatusRegistered))
	g.Go(count(&counts.RunningDelayed, "status = ? AND end_date < ?", model.StatusRunning, now))

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *dashboardRepo) DepartmentRollup(ctx context.Context) ([]DepartmentRow, error) {
	var rows []DepartmentRow
	err := r.db.WithContext(ctx).
		Model(&model.Project{}).
		Select(`department,
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE status = 'Closed') AS closed,
			COUNT(*) FILTER (WHERE status = 'Running') AS running,
			COUNT(*) FILTER (WHERE status = 'Cancelled') AS cancelled,
			COUNT(*) FILTER (WHERE status = 'Registered') AS registered`).
		Group("department").
		Order("department ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *dashboardRepo) TimelineBuckets(ctx context.Context, period TimelinePeriod) ([]TimelineRow, error) {
	var sel, grp string
	switch period {
	case PeriodWeek:
		// ISO year pairs with week-of-year so the first January days land in
		// the right bucket.
		sel = `EXTRACT(ISOYEAR FROM created_at)::int AS year,
			0 AS month,
			EXTRACT(WEEK FROM created_at)::int AS week`
		grp = "EXTRACT(ISOYEAR FROM created_at), EXTRACT(WEEK FROM created_at)"
	case PeriodYear:
		sel = `EXTRACT(YEAR FROM created_at)::int AS year,
			0 AS month,
			0 AS week`
		grp = "EXTRACT(YEAR FROM created_at)"
	default: // month
		sel = `EXTRACT(YEAR FROM created_at)::int AS year,
			EXTRACT(MONTH FROM created_at)::int AS month,
			0 AS week`
		grp = "EXTRACT(YEAR FROM created_at), EXTRACT(MONTH FROM created_at)"
	}

	var rows []TimelineRow
	err := r.db.WithContext(ctx).
		Model(&model.Project{}).
		Select(sel + `,
			COUNT(*) AS projects_created,
			COUNT(*) FILTER (WHERE status = 'Closed') AS projects_closed`).
		Group(grp).
		Order("year ASC, month ASC, week ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
