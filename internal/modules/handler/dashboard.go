package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/projectpulse-io/projectpulse/internal/modules/repo"
	"github.com/projectpulse-io/projectpulse/internal/modules/serializer"
	"github.com/projectpulse-io/projectpulse/internal/modules/service"
)

type DashboardHandler struct {
	svc service.DashboardService
}

func NewDashboardHandler(s service.DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: s}
}

type countersData struct {
	Counters    *service.Counters `json:"counters"`
	LastUpdated time.Time         `json:"last_updated"`
}

// GetCounters godoc
//
//	@Summary		Dashboard counters
//	@Description	Per-status totals plus completion and on-time delivery rates over the whole project collection
//	@Tags			dashboard
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=countersData}
//	@Router			/dashboard/counters [get]
func (h *DashboardHandler) GetCounters(c *gin.Context) {
	counters, err := h.svc.GetCounters(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		return
	}

	c.JSON(http.StatusOK, serializer.Response{
		Data: countersData{Counters: counters, LastUpdated: time.Now().UTC()},
	})
}

type chartData struct {
	*service.DepartmentChartOutput
	LastUpdated time.Time `json:"last_updated"`
}

// GetDepartmentChart godoc
//
//	@Summary		Department chart
//	@Description	Department-wise completion rollup: chart-ready series, raw table rows, and a summary
//	@Tags			dashboard
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=chartData}
//	@Router			/dashboard/chart [get]
func (h *DashboardHandler) GetDepartmentChart(c *gin.Context) {
	out, err := h.svc.GetDepartmentChart(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		return
	}

	c.JSON(http.StatusOK, serializer.Response{
		Data: chartData{DepartmentChartOutput: out, LastUpdated: time.Now().UTC()},
	})
}

type TimelineReq struct {
	// Unknown periods fall back to month in the service.
	Period string `form:"period,default=month"`
}

type timelineData struct {
	*service.TimelineOutput
	LastUpdated time.Time `json:"last_updated"`
}

// GetTimelineStats godoc
//
//	@Summary		Timeline stats
//	@Description	Projects created and closed per time bucket, grouped by week, month, or year of creation
//	@Tags			dashboard
//	@Produce		json
//	@Param			period	query	string	false	"week, month, or year; unknown values fall back to month"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=timelineData}
//	@Router			/dashboard/timeline [get]
func (h *DashboardHandler) GetTimelineStats(c *gin.Context) {
	req := TimelineReq{}
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	out, err := h.svc.GetTimelineStats(c.Request.Context(), repo.TimelinePeriod(req.Period))
	if err != nil {
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		return
	}

	c.JSON(http.StatusOK, serializer.Response{
		Data: timelineData{TimelineOutput: out, LastUpdated: time.Now().UTC()},
	})
}
