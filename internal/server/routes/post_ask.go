package routes

import (
	"net/http"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"

	"github.com/studygraph/backend/internal/server/middleware"
	"github.com/studygraph/backend/internal/server/util"
	"github.com/studygraph/backend/pkg/query"
)

// AskHandler answers a question from the user's uploaded materials.
// With trace set, the response carries what the query pipeline
// considered and used, for debugging retrieval quality.
func AskHandler(c echo.Context) error {
	type askBody struct {
		UserID   string `json:"user_id" validate:"required"`
		Question string `json:"question" validate:"required"`
		Trace    bool   `json:"trace"`
	}

	type askResponse struct {
		Success     bool                      `json:"success"`
		QueryResult *query.AskResult          `json:"query_result,omitempty"`
		Trace       *query.QueryTraceSnapshot `json:"trace,omitempty"`
		Error       string                    `json:"error,omitempty"`
	}

	data := new(askBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, askResponse{Error: "Invalid request body"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, askResponse{Error: "Invalid request body"})
	}
	if !util.ValidUserID(data.UserID) {
		return c.JSON(http.StatusBadRequest, askResponse{Error: "Invalid user id"})
	}

	ctx := c.Request().Context()
	controller := c.(*middleware.AppContext).App.Controller

	var tracers []query.Tracer
	var trace *query.QueryTrace
	if data.Trace {
		trace = query.NewQueryTrace()
		tracers = append(tracers, trace)
	}

	state := controller.Ask(ctx, data.UserID, data.Question, tracers...)
	if !state.Success {
		return c.JSON(http.StatusInternalServerError, askResponse{Error: state.Error})
	}

	resp := askResponse{
		Success:     true,
		QueryResult: state.QueryResult,
	}
	if trace != nil {
		snapshot := trace.Snapshot()
		resp.Trace = &snapshot
	}
	return c.JSON(http.StatusOK, resp)
}
