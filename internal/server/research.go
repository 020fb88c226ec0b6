package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/nacala04/ripel-gosset-wrapper/config"
	agentcore "github.com/nacala04/ripel-gosset-wrapper/internal/agent/core"
	"github.com/nacala04/ripel-gosset-wrapper/internal/store"
)

// researcher is the slice of the orchestrator the handler needs.
type researcher interface {
	ProcessTask(ctx context.Context, task agentcore.Task) agentcore.TaskResult
}

// ResearchHandler serves research runs. Store is optional: when nil, runs
// are not persisted and lookups return 503.
type ResearchHandler struct {
	Orch     researcher
	Store    *store.Store
	Defaults config.ResearchConfig
	Logger   *log.Logger
}

func (h *ResearchHandler) Register(g *echo.Group, apiKey string) {
	g.Use(func(next echo.HandlerFunc) echo.HandlerFunc { return withAuth(next, apiKey) })
	g.POST("/research", h.research)
	g.GET("/research/:id", h.getRun)
}

// Research
//
//	@Summary		Run a research task
//	@Description	Runs the full research loop and returns accumulated results
//	@Tags			research
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		QueryRequest	true	"Research task"
//	@Success		200		{object}	ResearchResponse
//	@Failure		400		{object}	HTTPError
//	@Failure		401		{object}	HTTPError
//	@Router			/gosset/research [post]
func (h *ResearchHandler) research(c echo.Context) error {
	var req QueryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query is required")
	}
	if req.MaxSearches < 0 || req.MaxResults < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "budgets must be non-negative")
	}
	if req.MaxSearches == 0 {
		req.MaxSearches = h.Defaults.DefaultMaxSearches
	}
	if req.MaxResults == 0 {
		req.MaxResults = h.Defaults.DefaultMaxResults
	}

	res := h.Orch.ProcessTask(c.Request().Context(), agentcore.Task{
		Query:       req.Query,
		MaxSearches: req.MaxSearches,
		MaxResults:  req.MaxResults,
	})

	id := uuid.New().String()
	if h.Store != nil {
		run := store.ResearchRun{
			ID:          id,
			Query:       req.Query,
			MaxSearches: req.MaxSearches,
			MaxResults:  req.MaxResults,
			Results:     res.Results,
			Comments:    res.Comments,
			CreatedAt:   time.Now().UTC(),
		}
		if err := h.Store.SaveRun(c.Request().Context(), run); err != nil {
			// losing persistence must not lose the caller's results
			h.Logger.Printf("save run %s: %v", id, err)
		}
	}

	return c.JSON(http.StatusOK, ResearchResponse{
		QueryID:  id,
		Results:  res.Results,
		Comments: res.Comments,
	})
}

// GetRun
//
//	@Summary	Fetch a stored research run
//	@Tags		research
//	@Produce	json
//	@Param		id	path		string	true	"Run ID"
//	@Success	200	{object}	ResearchResponse
//	@Failure	404	{object}	HTTPError
//	@Failure	503	{object}	HTTPError
//	@Router		/gosset/research/{id} [get]
func (h *ResearchHandler) getRun(c echo.Context) error {
	if h.Store == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "persistence not configured")
	}
	run, err := h.Store.GetRun(c.Request().Context(), c.Param("id"))
	if err != nil {
		if err == store.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "run not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, ResearchResponse{
		QueryID:  run.ID,
		Results:  run.Results,
		Comments: run.Comments,
	})
}
