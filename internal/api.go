package internal

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/archway-no/archway/internal/generation"
	"github.com/archway-no/archway/internal/member"
	"github.com/archway-no/archway/internal/project"
	"github.com/archway-no/archway/internal/training"
	"github.com/archway-no/archway/pkg/model"
)

// callerHeader carries the caller's member id, supplied by the external
// identity layer in front of the core.
const callerHeader = "X-Archway-Member"

func (c *Core) registerRoutes() {
	api := c.echo.Group("/api/v1")

	api.GET("/info", c.getInfo)

	api.GET("/dataset", c.getDataset)
	api.POST("/dataset/images", c.postDatasetImages)
	api.DELETE("/dataset/images/:id", c.deleteDatasetImage)
	api.DELETE("/dataset", c.clearDataset)

	api.GET("/training", c.getTraining)
	api.POST("/training", c.postTraining)

	api.POST("/generations", c.postGeneration)
	api.GET("/generations", c.getGenerations)
	api.GET("/generations/:id", c.getGeneration)

	api.GET("/projects", c.getProjects)
	api.POST("/projects", c.postProject)
	api.PATCH("/projects/:id", c.patchProject)
	api.DELETE("/projects/:id", c.deleteProject)
	api.POST("/projects/:id/share", c.shareProject)
	api.GET("/projects/selection", c.getSelection)
	api.PUT("/projects/selection", c.putSelection)

	api.GET("/members", c.getMembers)
	api.POST("/members", c.postMember)
	api.DELETE("/members/:id", c.deleteMember)
	api.PATCH("/members/:id", c.patchMember)
	api.GET("/members/counts", c.getMemberCounts)
}

// httpError translates the core's error taxonomy for the wire: validation
// rejections are 400, precondition blocks 403/409, unknown entities 404.
func httpError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, project.ErrEmptyName),
		errors.Is(err, project.ErrEmptyEmail),
		errors.Is(err, member.ErrEmptyEmail),
		errors.Is(err, generation.ErrMissingInput):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, training.ErrPermissionDenied),
		errors.Is(err, member.ErrProtectedMember):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, training.ErrGateClosed),
		errors.Is(err, training.ErrAlreadyRunning),
		errors.Is(err, generation.ErrDuplicatePending):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, project.ErrProjectNotFound),
		errors.Is(err, generation.ErrUnknownProject),
		errors.Is(err, generation.ErrJobNotFound),
		errors.Is(err, member.ErrMemberNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	default:
		return err
	}
}

func (c *Core) getInfo(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{
		"version": c.version,
		"studio":  c.config.Studio,
	})
}

func (c *Core) getDataset(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]interface{}{
		"size":      c.dataset.Size(),
		"can_train": c.dataset.CanTrain(),
		"images":    c.dataset.Images(),
	})
}

func (c *Core) postDatasetImages(ctx echo.Context) error {
	var files []model.FileUpload
	if err := ctx.Bind(&files); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	added := c.dataset.AddImages(files)
	return ctx.JSON(http.StatusOK, map[string]interface{}{
		"added": len(added),
		"size":  c.dataset.Size(),
	})
}

func (c *Core) deleteDatasetImage(ctx echo.Context) error {
	c.dataset.RemoveImage(model.ImageID(ctx.Param("id")))
	return ctx.NoContent(http.StatusNoContent)
}

func (c *Core) clearDataset(ctx echo.Context) error {
	c.dataset.Clear()
	return ctx.NoContent(http.StatusNoContent)
}

func (c *Core) getTraining(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, c.training.Job())
}

func (c *Core) postTraining(ctx echo.Context) error {
	caller := model.MemberID(ctx.Request().Header.Get(callerHeader))
	jobID, err := c.training.Submit(ctx.Request().Context(), caller)
	if err != nil {
		return httpError(err)
	}
	return ctx.JSON(http.StatusAccepted, map[string]model.JobID{"job_id": jobID})
}

type generationRequest struct {
	Input     *model.ImageRef `json:"input"`
	StyleRef  *model.ImageRef `json:"style_ref"`
	ProjectID model.ProjectID `json:"project_id"`
	Category  string          `json:"category"`
}

func (c *Core) postGeneration(ctx echo.Context) error {
	var req generationRequest
	if err := ctx.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	jobID, err := c.generation.Submit(
		ctx.Request().Context(), req.Input, req.StyleRef, req.ProjectID, req.Category)
	if err != nil {
		return httpError(err)
	}
	return ctx.JSON(http.StatusAccepted, map[string]model.JobID{"job_id": jobID})
}

func (c *Core) getGenerations(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, c.generation.Jobs())
}

func (c *Core) getGeneration(ctx echo.Context) error {
	job, err := c.generation.Job(model.JobID(ctx.Param("id")))
	if err != nil {
		return httpError(err)
	}
	return ctx.JSON(http.StatusOK, job)
}

func (c *Core) getProjects(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, c.projects.List())
}

type projectRequest struct {
	Name string `json:"name"`
}

func (c *Core) postProject(ctx echo.Context) error {
	var req projectRequest
	if err := ctx.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := c.projects.Create(req.Name)
	if err != nil {
		return httpError(err)
	}
	return ctx.JSON(http.StatusCreated, p)
}

func (c *Core) patchProject(ctx echo.Context) error {
	var req projectRequest
	if err := ctx.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.projects.Rename(model.ProjectID(ctx.Param("id")), req.Name); err != nil {
		return httpError(err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (c *Core) deleteProject(ctx echo.Context) error {
	c.projects.Remove(model.ProjectID(ctx.Param("id")))
	return ctx.NoContent(http.StatusNoContent)
}

type shareRequest struct {
	Email string `json:"email"`
}

func (c *Core) shareProject(ctx echo.Context) error {
	var req shareRequest
	if err := ctx.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.projects.Share(model.ProjectID(ctx.Param("id")), req.Email); err != nil {
		return httpError(err)
	}
	c.notifier.Success("Prosjekt delt med bruker", req.Email)
	return ctx.NoContent(http.StatusNoContent)
}

func (c *Core) getSelection(ctx echo.Context) error {
	selected := c.projects.Selected()
	if selected == nil {
		return ctx.NoContent(http.StatusNoContent)
	}
	return ctx.JSON(http.StatusOK, selected)
}

type selectionRequest struct {
	ID model.ProjectID `json:"id"`
}

func (c *Core) putSelection(ctx echo.Context) error {
	var req selectionRequest
	if err := ctx.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.ID == "" {
		c.projects.ClearSelection()
		return ctx.NoContent(http.StatusNoContent)
	}
	if err := c.projects.Select(req.ID); err != nil {
		return httpError(err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (c *Core) getMembers(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, c.members.List())
}

type inviteRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (c *Core) postMember(ctx echo.Context) error {
	var req inviteRequest
	if err := ctx.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	role, err := model.ParseRole(req.Role)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	m, err := c.members.Invite(req.Email, role)
	if err != nil {
		return httpError(err)
	}
	return ctx.JSON(http.StatusCreated, m)
}

func (c *Core) deleteMember(ctx echo.Context) error {
	if err := c.members.Remove(model.MemberID(ctx.Param("id"))); err != nil {
		return httpError(err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

type roleRequest struct {
	Role string `json:"role"`
}

func (c *Core) patchMember(ctx echo.Context) error {
	var req roleRequest
	if err := ctx.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	role, err := model.ParseRole(req.Role)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.members.SetRole(model.MemberID(ctx.Param("id")), role); err != nil {
		return httpError(err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (c *Core) getMemberCounts(ctx echo.Context) error {
	active, pending := c.members.Counts()
	return ctx.JSON(http.StatusOK, map[string]int{
		"active":  active,
		"pending": pending,
	})
}
