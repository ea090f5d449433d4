package httpapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/jubaworks/juba/internal/models"
	"github.com/jubaworks/juba/internal/store"
)

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// Ready reports whether the store answers queries.
func (h *Handler) Ready(c echo.Context) error {
	if _, err := h.Store.Jobs().Count(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "store unavailable"})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ready"})
}

type CreateJobRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	Location    string `json:"location" validate:"required"`
	Timeline    string `json:"timeline"`
}

func (h *Handler) CreateJob(c echo.Context) error {
	req := new(CreateJobRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := h.Validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	clientID, _ := c.Get("user_id").(string)
	job, err := h.Jobs.Create(c.Request().Context(), clientID, req.Title, req.Description, req.Location, req.Timeline)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, job)
}

func (h *Handler) ListJobs(c echo.Context) error {
	filter := store.JobFilter{
		Status:         models.JobStatus(c.QueryParam("status")),
		TitleSubstring: c.QueryParam("search"),
	}
	page := store.Page{Number: 1, Limit: 20}
	if v, err := strconv.Atoi(c.QueryParam("page")); err == nil && v > 0 {
		page.Number = v
	}
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil && v > 0 && v <= 100 {
		page.Limit = v
	}

	jobs, total, err := h.Jobs.List(c.Request().Context(), filter, page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"jobs":  jobs,
		"total": total,
		"page":  page.Number,
		"limit": page.Limit,
	})
}

func (h *Handler) GetJob(c echo.Context) error {
	job, err := h.Jobs.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, job)
}

func (h *Handler) MyJobs(c echo.Context) error {
	clientID, _ := c.Get("user_id").(string)
	jobs, err := h.Jobs.ListByClient(c.Request().Context(), clientID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"jobs": jobs})
}

type ApplyRequest struct {
	ProposedRate float64 `json:"proposed_rate" validate:"required,gt=0"`
}

func (h *Handler) Apply(c echo.Context) error {
	req := new(ApplyRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := h.Validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	freelancerID, _ := c.Get("user_id").(string)
	app, err := h.Apps.Apply(c.Request().Context(), c.Param("id"), freelancerID, req.ProposedRate)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, app)
}

// ListApplications is restricted to the job owner and admins.
func (h *Handler) ListApplications(c echo.Context) error {
	ctx := c.Request().Context()
	jobID := c.Param("id")

	job, err := h.Jobs.GetByID(ctx, jobID)
	if err != nil {
		return writeError(c, err)
	}
	actorID, _ := c.Get("user_id").(string)
	role, _ := c.Get("role").(string)
	if job.ClientID != actorID && role != "admin" {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
	}

	apps, err := h.Apps.ListByJob(ctx, jobID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"applications": apps})
}

func (h *Handler) MyApplications(c echo.Context) error {
	freelancerID, _ := c.Get("user_id").(string)
	apps, err := h.Apps.ListByFreelancer(c.Request().Context(), freelancerID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"applications": apps})
}

func (h *Handler) SelectFreelancer(c echo.Context) error {
	actorID, _ := c.Get("user_id").(string)
	tr, err := h.Coordinator.SelectFreelancer(c.Request().Context(), c.Param("id"), c.Param("freelancerId"), actorID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, tr)
}

func (h *Handler) CompleteJob(c echo.Context) error {
	actorID, _ := c.Get("user_id").(string)
	job, err := h.Jobs.Complete(c.Request().Context(), c.Param("id"), actorID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, job)
}

func (h *Handler) CancelJob(c echo.Context) error {
	actorID, _ := c.Get("user_id").(string)
	if err := h.Jobs.Cancel(c.Request().Context(), c.Param("id"), actorID); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "job cancelled"})
}
