package routes

import (
	"fmt"
	"net/http"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"

	"github.com/studygraph/backend/internal/server/middleware"
	"github.com/studygraph/backend/internal/server/util"
	"github.com/studygraph/backend/pkg/logger"
)

// GetGraphHandler returns the user's knowledge graph in the node/edge
// shape visualization clients render.
func GetGraphHandler(c echo.Context) error {
	type getGraphRequest struct {
		UserID string `param:"user_id" validate:"required"`
	}

	data := new(getGraphRequest)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if !util.ValidUserID(data.UserID) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid user id"})
	}

	ctx := c.Request().Context()
	controller := c.(*middleware.AppContext).App.Controller

	state := controller.Visualize(ctx, data.UserID)
	if !state.Success {
		logger.Error("Failed to export graph", "user_id", data.UserID, "err", state.Error)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	return c.JSON(http.StatusOK, state.GraphData)
}

// ExportGraphHandler returns the user's graph bundled with summary
// statistics as a JSON download.
func ExportGraphHandler(c echo.Context) error {
	type exportGraphRequest struct {
		UserID string `param:"user_id" validate:"required"`
	}

	data := new(exportGraphRequest)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if !util.ValidUserID(data.UserID) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid user id"})
	}

	ctx := c.Request().Context()
	controller := c.(*middleware.AppContext).App.Controller

	export, err := controller.Export(ctx, data.UserID)
	if err != nil {
		logger.Error("Failed to export graph", "user_id", data.UserID, "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", util.ExportFilename(data.UserID)))
	return c.JSON(http.StatusOK, export)
}
