package server

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nacala04/ripel-gosset-wrapper/internal/sources"
)

// MCPSHandler exposes the upstream research sources directly, bypassing the
// agent loop. One endpoint per configured source.
type MCPSHandler struct {
	Sources map[string]sources.Searcher
	Logger  *log.Logger
}

func (h *MCPSHandler) Register(g *echo.Group, apiKey string) {
	g.Use(func(next echo.HandlerFunc) echo.HandlerFunc { return withAuth(next, apiKey) })
	for name := range h.Sources {
		g.POST("/"+name, h.search(name))
	}
}

// Search
//
//	@Summary	Query an upstream source directly
//	@Tags		mcps
//	@Accept		json
//	@Produce	json
//	@Param		payload	body		MCPRequest	true	"Query"
//	@Success	200		{object}	MCPResponse
//	@Failure	400		{object}	HTTPError
//	@Failure	502		{object}	HTTPError
//	@Router		/mcps/{source} [post]
func (h *MCPSHandler) search(name string) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req MCPRequest
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		if req.Query == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "query is required")
		}
		src, ok := h.Sources[name]
		if !ok {
			return echo.NewHTTPError(http.StatusNotFound, "unknown source")
		}
		items, err := src.Search(c.Request().Context(), req.Query)
		if err != nil {
			h.Logger.Printf("%s search failed: %v", name, err)
			return echo.NewHTTPError(http.StatusBadGateway, err.Error())
		}
		if items == nil {
			items = []sources.Item{}
		}
		return c.JSON(http.StatusOK, MCPResponse{Source: name, Items: items})
	}
}
