package routes

import (
	"io"
	"net/http"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"

	"github.com/studygraph/backend/internal/server/middleware"
	"github.com/studygraph/backend/internal/server/util"
	"github.com/studygraph/backend/pkg/graph"
	"github.com/studygraph/backend/pkg/loader"
	"github.com/studygraph/backend/pkg/logger"
	"github.com/studygraph/backend/pkg/workflow"
)

// UploadFileHandler ingests one uploaded document into the user's
// knowledge graph from multipart/form-data.
func UploadFileHandler(c echo.Context) error {
	type uploadFileBody struct {
		UserID string `form:"user_id" validate:"required"`
	}

	type uploadFileResponse struct {
		Success          bool                 `json:"success"`
		FileType         string               `json:"file_type,omitempty"`
		ProcessingResult *graph.ProcessResult `json:"processing_result,omitempty"`
		Error            string               `json:"error,omitempty"`
	}

	data := new(uploadFileBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, uploadFileResponse{Error: "Invalid request body"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, uploadFileResponse{Error: "Invalid request body"})
	}
	if !util.ValidUserID(data.UserID) {
		return c.JSON(http.StatusBadRequest, uploadFileResponse{Error: "Invalid user id"})
	}

	file, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, uploadFileResponse{Error: "Missing file"})
	}
	src, err := file.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, uploadFileResponse{Error: "Invalid request body"})
	}
	defer src.Close()
	fileData, err := io.ReadAll(src)
	if err != nil {
		logger.Error("Failed to read upload", "filename", file.Filename, "err", err)
		return c.JSON(http.StatusInternalServerError, uploadFileResponse{Error: "Internal server error"})
	}

	ctx := c.Request().Context()
	controller := c.(*middleware.AppContext).App.Controller

	state := controller.Upload(ctx, data.UserID, fileData, file.Filename)
	if !state.Success {
		status := http.StatusInternalServerError
		if state.Error == workflow.TextExtractionFailed {
			status = http.StatusBadRequest
		}
		return c.JSON(status, uploadFileResponse{Error: state.Error})
	}

	return c.JSON(http.StatusOK, uploadFileResponse{
		Success:          true,
		FileType:         state.FileType,
		ProcessingResult: state.Processing,
	})
}

// UploadURLHandler ingests the readable article text of a web page.
func UploadURLHandler(c echo.Context) error {
	type uploadURLBody struct {
		UserID string `json:"user_id" validate:"required"`
		URL    string `json:"url" validate:"required,url"`
	}

	type uploadURLResponse struct {
		Success          bool                 `json:"success"`
		FileType         string               `json:"file_type,omitempty"`
		ProcessingResult *graph.ProcessResult `json:"processing_result,omitempty"`
		Error            string               `json:"error,omitempty"`
	}

	data := new(uploadURLBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, uploadURLResponse{Error: "Invalid request body"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, uploadURLResponse{Error: "Invalid request body"})
	}
	if !util.ValidUserID(data.UserID) {
		return c.JSON(http.StatusBadRequest, uploadURLResponse{Error: "Invalid user id"})
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	text, err := app.WebLoader.ExtractURL(ctx, data.URL)
	if err != nil {
		logger.Warn("Failed to extract url", "url", data.URL, "err", err)
		return c.JSON(http.StatusBadRequest, uploadURLResponse{Error: workflow.TextExtractionFailed})
	}

	state := app.Controller.UploadText(ctx, data.UserID, loader.CleanText(text), "web")
	if !state.Success {
		status := http.StatusInternalServerError
		if state.Error == workflow.TextExtractionFailed {
			status = http.StatusBadRequest
		}
		return c.JSON(status, uploadURLResponse{Error: state.Error})
	}

	return c.JSON(http.StatusOK, uploadURLResponse{
		Success:          true,
		FileType:         state.FileType,
		ProcessingResult: state.Processing,
	})
}
