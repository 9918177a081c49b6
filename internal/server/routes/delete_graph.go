package routes

import (
	"net/http"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"

	"github.com/studygraph/backend/internal/server/middleware"
	"github.com/studygraph/backend/internal/server/util"
	"github.com/studygraph/backend/pkg/logger"
)

// DeleteGraphHandler deletes everything stored for the user: entities,
// relationships, and chunks.
func DeleteGraphHandler(c echo.Context) error {
	type deleteGraphRequest struct {
		UserID string `param:"user_id" validate:"required"`
	}

	type deleteGraphResponse struct {
		Message string `json:"message"`
		Success bool   `json:"success"`
	}

	data := new(deleteGraphRequest)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, deleteGraphResponse{Message: "Invalid request"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, deleteGraphResponse{Message: "Invalid request"})
	}
	if !util.ValidUserID(data.UserID) {
		return c.JSON(http.StatusBadRequest, deleteGraphResponse{Message: "Invalid user id"})
	}

	ctx := c.Request().Context()
	controller := c.(*middleware.AppContext).App.Controller

	if err := controller.Reset(ctx, data.UserID); err != nil {
		logger.Error("Failed to delete user graph", "user_id", data.UserID, "err", err)
		return c.JSON(http.StatusInternalServerError, deleteGraphResponse{Message: "Internal server error"})
	}

	return c.JSON(http.StatusOK, deleteGraphResponse{
		Message: "User data deleted",
		Success: true,
	})
}
