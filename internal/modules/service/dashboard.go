package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/projectpulse-io/projectpulse/internal/modules/repo"
	"go.uber.org/zap"
)

type DashboardService interface {
	GetCounters(ctx context.Context) (*Counters, error)
	GetDepartmentChart(ctx context.Context) (*DepartmentChartOutput, error)
	GetTimelineStats(ctx context.Context, period repo.TimelinePeriod) (*TimelineOutput, error)
}

type dashboardService struct {
	r   repo.DashboardRepo
	log *zap.Logger
}

func NewDashboardService(r repo.DashboardRepo, log *zap.Logger) DashboardService {
	return &dashboardService{r: r, log: log}
}

// Counters summarizes the whole project collection. completed aliases closed;
// active is running + registered.
type Counters struct {
	Total          int64 `json:"total"`
	Closed         int64 `json:"closed"`
	Running        int64 `json:"running"`
	Cancelled      int64 `json:"cancelled"`
	Registered     int64 `json:"registered"`
	RunningDelayed int64 `json:"running_delayed"`

	Completed int64 `json:"completed"`
	Active    int64 `json:"active"`
	// CompletionRate is closed/total as a whole percentage; 0 for an empty
	// collection.
	CompletionRate int `json:"completion_rate"`
	// OnTimeDelivery is the share of running projects still inside their end
	// date. No running projects reports 100, by convention.
	OnTimeDelivery int `json:"on_time_delivery"`
}

func (s *dashboardService) GetCounters(ctx context.Context) (*Counters, error) {
	counts, err := s.r.StatusCounts(ctx, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to compute dashboard counters: %w", err)
	}

	c := &Counters{
		Total:          counts.Total,
		Closed:         counts.Closed,
		Running:        counts.Running,
		Cancelled:      counts.Cancelled,
		Registered:     counts.Registered,
		RunningDelayed: counts.RunningDelayed,
	}
	c.Completed = c.Closed
	c.Active = c.Running + c.Registered
	if c.Total > 0 {
		c.CompletionRate = int(math.Round(float64(c.Closed) / float64(c.Total) * 100))
	}
	c.OnTimeDelivery = 100
	if c.Running > 0 {
		c.OnTimeDelivery = int(math.Round(float64(c.Running-c.RunningDelayed) / float64(c.Running) * 100))
	}
	return c, nil
}

type ChartSeries struct {
	Name  string    `json:"name"`
	Data  []float64 `json:"data"`
	Color string    `json:"color"`
}

// ChartData is the chart-ready shape: department names as categories plus one
// percentage series per status.
type ChartData struct {
	Categories []string      `json:"categories"`
	Series     []ChartSeries `json:"series"`
}

type DepartmentTableRow struct {
	Department           string  `json:"department"`
	Total                int64   `json:"total"`
	Closed               int64   `json:"closed"`
	Running              int64   `json:"running"`
	Registered           int64   `json:"registered"`
	Cancelled            int64   `json:"cancelled"`
	CompletionPercentage float64 `json:"completion_percentage"`
	SuccessRate          float64 `json:"success_rate"`
}

type DepartmentSummary struct {
	TotalDepartments  int     `json:"total_departments"`
	AverageCompletion float64 `json:"average_completion"`
}

type DepartmentChartOutput struct {
	ChartData ChartData            `json:"chart_data"`
	TableData []DepartmentTableRow `json:"table_data"`
	Summary   DepartmentSummary    `json:"summary"`
}

func (s *dashboardService) GetDepartmentChart(ctx context.Context) (*DepartmentChartOutput, error) {
	rows, err := s.r.DepartmentRollup(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compute department rollup: %w", err)
	}

	out := &DepartmentChartOutput{
		ChartData: ChartData{
			Categories: make([]string, 0, len(rows)),
			Series: []ChartSeries{
				{Name: "Completed", Data: make([]float64, 0, len(rows)), Color: "#28a745"},
				{Name: "Running", Data: make([]float64, 0, len(rows)), Color: "#17a2b8"},
				{Name: "Registered", Data: make([]float64, 0, len(rows)), Color: "#ffc107"},
				{Name: "Cancelled", Data: make([]float64, 0, len(rows)), Color: "#dc3545"},
			},
		},
		TableData: make([]DepartmentTableRow, 0, len(rows)),
	}

	var completionSum float64
	for _, row := range rows {
		completion := percentage(row.Closed, row.Total)
		// A department where every project is cancelled has no deliverable
		// base; its success rate reads as 0 rather than dividing by zero.
		successRate := percentage(row.Closed, row.Total-row.Cancelled)
		completionSum += completion

		out.ChartData.Categories = append(out.ChartData.Categories, string(row.Department))
		out.ChartData.Series[0].Data = append(out.ChartData.Series[0].Data, round2(completion))
		out.ChartData.Series[1].Data = append(out.ChartData.Series[1].Data, round2(percentage(row.Running, row.Total)))
		out.ChartData.Series[2].Data = append(out.ChartData.Series[2].Data, round2(percentage(row.Registered, row.Total)))
		out.ChartData.Series[3].Data = append(out.ChartData.Series[3].Data, round2(percentage(row.Cancelled, row.Total)))

		out.TableData = append(out.TableData, DepartmentTableRow{
			Department:           string(row.Department),
			Total:                row.Total,
			Closed:               row.Closed,
			Running:              row.Running,
			Registered:           row.Registered,
			Cancelled:            row.Cancelled,
			CompletionPercentage: round2(completion),
			SuccessRate:          round2(successRate),
		})
	}

	out.Summary.TotalDepartments = len(rows)
	if len(rows) > 0 {
		out.Summary.AverageCompletion = round2(completionSum / float64(len(rows)))
	}
	return out, nil
}

type TimelineBucket struct {
	Year            int   `json:"year"`
	Month           int   `json:"month,omitempty"`
	Week            int   `json:"week,omitempty"`
	ProjectsCreated int64 `json:"projects_created"`
	ProjectsClosed  int64 `json:"projects_closed"`
}

type TimelineOutput struct {
	Timeline []TimelineBucket    `json:"timeline"`
	Period   repo.TimelinePeriod `json:"period"`
}

func (s *dashboardService) GetTimelineStats(ctx context.Context, period repo.TimelinePeriod) (*TimelineOutput, error) {
	if !period.Valid() {
		period = repo.PeriodMonth
	}

	rows, err := s.r.TimelineBuckets(ctx, period)
	if err != nil {
		return nil, fmt.Errorf("failed to compute timeline stats: %w", err)
	}

	out := &TimelineOutput{
		Timeline: make([]TimelineBucket, 0, len(rows)),
		Period:   period,
	}
	for _, row := range rows {
		out.Timeline = append(out.Timeline, TimelineBucket{
			Year:            row.Year,
			Month:           row.Month,
			Week:            row.Week,
			ProjectsCreated: row.ProjectsCreated,
			ProjectsClosed:  row.ProjectsClosed,
		})
	}
	return out, nil
}

func percentage(part, whole int64) float64 {
	if whole <= 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
