package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/projectpulse-io/projectpulse/internal/modules/model"
	"github.com/projectpulse-io/projectpulse/internal/modules/serializer"
	"github.com/projectpulse-io/projectpulse/internal/modules/service"
)

type ProjectHandler struct {
	svc service.ProjectService
}

func NewProjectHandler(s service.ProjectService) *ProjectHandler {
	return &ProjectHandler{svc: s}
}

// currentUser pulls the authenticated user set by the auth middleware.
func currentUser(c *gin.Context) (*model.User, bool) {
	u, ok := c.MustGet("user").(*model.User)
	return u, ok
}

// dateLayouts accepted for start/end dates; forms send bare dates, API
// clients tend to send RFC3339.
var dateLayouts = []string{"2006-01-02", time.RFC3339}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	// Empty strings fall through here: a cleared form field is not a date.
	return time.Time{}, false
}

// respondServiceErr maps service-layer failures onto the response envelope.
func respondServiceErr(c *gin.Context, err error) {
	if ve, ok := service.AsValidationError(err); ok {
		c.JSON(http.StatusBadRequest, serializer.ValidationErr(ve.Fields))
		return
	}
	switch {
	case errors.Is(err, service.ErrProjectNotFound):
		c.JSON(http.StatusNotFound, serializer.NotFoundErr(err.Error()))
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, serializer.ForbiddenErr(err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
	}
}

type CreateProjectReq struct {
	ProjectName string `json:"project_name" binding:"required"`
	Department  string `json:"department" binding:"required"`
	Location    string `json:"location" binding:"required"`
	StartDate   string `json:"start_date" binding:"required"`
	EndDate     string `json:"end_date" binding:"required"`
	Manager     string `json:"manager" binding:"required"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

// CreateProject godoc
//
//	@Summary		Create project
//	@Description	Create a new project in Registered status owned by the caller
//	@Tags			project
//	@Accept			json
//	@Produce		json
//	@Param			body	body	CreateProjectReq	true	"Project fields"
//	@Security		BearerAuth
//	@Success		201	{object}	serializer.Response{data=serializer.ProjectView}
//	@Failure		400	{object}	serializer.Response
//	@Router			/projects [post]
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	req := CreateProjectReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("please provide all required fields: projectName, department, location, startDate, endDate, manager", err))
		return
	}

	start, okStart := parseDate(req.StartDate)
	end, okEnd := parseDate(req.EndDate)
	if !okStart || !okEnd {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("dates must be YYYY-MM-DD or RFC3339", nil))
		return
	}

	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
		return
	}

	p, err := h.svc.Create(c.Request.Context(), service.CreateProjectInput{
		ProjectName: req.ProjectName,
		Department:  model.Department(req.Department),
		Location:    model.Location(req.Location),
		StartDate:   start,
		EndDate:     end,
		Manager:     req.Manager,
		Description: req.Description,
		Priority:    model.Priority(req.Priority),
		ActorID:     user.ID,
	})
	if err != nil {
		respondServiceErr(c, err)
		return
	}

	c.JSON(http.StatusCreated, serializer.Response{
		Msg:  "project created successfully",
		Data: serializer.BuildProject(p, time.Now()),
	})
}

type ListProjectsReq struct {
	Page       int    `form:"page,default=1" binding:"omitempty,min=1"`
	Limit      int    `form:"limit,default=10" binding:"omitempty,min=1,max=100"`
	Search     string `form:"search"`
	SortBy     string `form:"sort_by,default=createdAt"`
	SortOrder  string `form:"sort_order,default=desc" binding:"omitempty,oneof=asc desc"`
	Status     string `form:"status"`
	Department string `form:"department"`
	Location   string `form:"location"`
}

// GetProjects godoc
//
//	@Summary		List projects
//	@Description	List projects with free-text search, exact-match filters, sorting, and page-based pagination
//	@Tags			project
//	@Produce		json
//	@Param			page		query	integer	false	"1-based page number"
//	@Param			limit		query	integer	false	"Page size, default 10"
//	@Param			search		query	string	false	"Matched case-insensitively against name, manager, location, description"
//	@Param			sort_by		query	string	false	"Sort key; unknown keys fall back to createdAt"
//	@Param			sort_order	query	string	false	"asc or desc"
//	@Param			status		query	string	false	"Exact status filter"
//	@Param			department	query	string	false	"Exact department filter"
//	@Param			location	query	string	false	"Exact location filter"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=serializer.ProjectListData}
//	@Router			/projects [get]
func (h *ProjectHandler) GetProjects(c *gin.Context) {
	req := ListProjectsReq{}
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	out, err := h.svc.List(c.Request.Context(), service.ListProjectsInput{
		Search:     req.Search,
		Status:     model.Status(req.Status),
		Department: model.Department(req.Department),
		Location:   model.Location(req.Location),
		SortBy:     req.SortBy,
		SortOrder:  req.SortOrder,
		Page:       req.Page,
		Limit:      req.Limit,
	})
	if err != nil {
		respondServiceErr(c, err)
		return
	}

	filters := serializer.ListFilters{
		Search:     req.Search,
		Status:     req.Status,
		Department: req.Department,
		Location:   req.Location,
		SortBy:     req.SortBy,
		SortOrder:  req.SortOrder,
	}
	c.JSON(http.StatusOK, serializer.Response{
		Data: serializer.BuildProjectList(out, filters, time.Now()),
	})
}

// GetProject godoc
//
//	@Summary		Get project
//	@Description	Get one project by id with derived fields and resolved user references
//	@Tags			project
//	@Produce		json
//	@Param			id	path	string	true	"Project ID"	format(uuid)
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=serializer.ProjectView}
//	@Failure		404	{object}	serializer.Response
//	@Router			/projects/{id} [get]
func (h *ProjectHandler) GetProject(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid project id", err))
		return
	}

	p, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceErr(c, err)
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: serializer.BuildProject(p, time.Now())})
}

type UpdateProjectReq struct {
	ProjectName *string `json:"project_name"`
	Department  *string `json:"department"`
	Location    *string `json:"location"`
	StartDate   *string `json:"start_date"`
	EndDate     *string `json:"end_date"`
	Manager     *string `json:"manager"`
	Description *string `json:"description"`
	Priority    *string `json:"priority"`
}

// UpdateProject godoc
//
//	@Summary		Update project
//	@Description	Partially update a project; omitted fields keep their current values and the date invariant is re-checked on the merged result
//	@Tags			project
//	@Accept			json
//	@Produce		json
//	@Param			id		path	string				true	"Project ID"	format(uuid)
//	@Param			body	body	UpdateProjectReq	true	"Fields to update"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=serializer.ProjectView}
//	@Failure		400	{object}	serializer.Response
//	@Failure		404	{object}	serializer.Response
//	@Router			/projects/{id} [put]
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid project id", err))
		return
	}

	req := UpdateProjectReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
		return
	}

	in := service.UpdateProjectInput{
		ID:          id,
		ProjectName: req.ProjectName,
		Manager:     req.Manager,
		Description: req.Description,
		ActorID:     user.ID,
	}
	if req.Department != nil {
		d := model.Department(*req.Department)
		in.Department = &d
	}
	if req.Location != nil {
		l := model.Location(*req.Location)
		in.Location = &l
	}
	if req.Priority != nil {
		p := model.Priority(*req.Priority)
		in.Priority = &p
	}
	if req.StartDate != nil {
		t, ok := parseDate(*req.StartDate)
		if !ok {
			c.JSON(http.StatusBadRequest, serializer.ParamErr("startDate must be YYYY-MM-DD or RFC3339", nil))
			return
		}
		in.StartDate = &t
	}
	if req.EndDate != nil {
		t, ok := parseDate(*req.EndDate)
		if !ok {
			c.JSON(http.StatusBadRequest, serializer.ParamErr("endDate must be YYYY-MM-DD or RFC3339", nil))
			return
		}
		in.EndDate = &t
	}

	p, err := h.svc.Update(c.Request.Context(), in)
	if err != nil {
		respondServiceErr(c, err)
		return
	}

	c.JSON(http.StatusOK, serializer.Response{
		Msg:  "project updated successfully",
		Data: serializer.BuildProject(p, time.Now()),
	})
}

type UpdateProjectStatusReq struct {
	Status string `json:"status" binding:"required"`
}

// UpdateProjectStatus godoc
//
//	@Summary		Update project status
//	@Description	Set a project's lifecycle status; any member of the status set is accepted from any prior status
//	@Tags			project
//	@Accept			json
//	@Produce		json
//	@Param			id		path	string					true	"Project ID"	format(uuid)
//	@Param			body	body	UpdateProjectStatusReq	true	"Target status"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=serializer.ProjectView}
//	@Failure		400	{object}	serializer.Response
//	@Failure		404	{object}	serializer.Response
//	@Router			/projects/{id}/status [patch]
func (h *ProjectHandler) UpdateProjectStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid project id", err))
		return
	}

	req := UpdateProjectStatusReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("status is required", err))
		return
	}

	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
		return
	}

	p, err := h.svc.UpdateStatus(c.Request.Context(), service.UpdateStatusInput{
		ID:      id,
		Status:  model.Status(req.Status),
		ActorID: user.ID,
	})
	if err != nil {
		respondServiceErr(c, err)
		return
	}

	c.JSON(http.StatusOK, serializer.Response{
		Msg:  "project status updated successfully",
		Data: serializer.BuildProject(p, time.Now()),
	})
}

// DeleteProject godoc
//
//	@Summary		Delete project
//	@Description	Permanently delete a project regardless of its status. Admin role required.
//	@Tags			project
//	@Produce		json
//	@Param			id	path	string	true	"Project ID"	format(uuid)
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response
//	@Failure		403	{object}	serializer.Response
//	@Failure		404	{object}	serializer.Response
//	@Router			/projects/{id} [delete]
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid project id", err))
		return
	}

	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id, user); err != nil {
		respondServiceErr(c, err)
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Msg: "project deleted successfully"})
}
