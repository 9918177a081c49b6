package server

import (
	"github.com/studygraph/backend/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	apiRoutes := e.Group("/api")

	// Health check route
	apiRoutes.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	// Upload routes
	apiRoutes.POST("/upload", routes.UploadFileHandler)
	apiRoutes.POST("/upload/url", routes.UploadURLHandler)

	// Query routes
	apiRoutes.POST("/ask", routes.AskHandler)

	// Graph routes
	apiRoutes.GET("/graph/:user_id", routes.GetGraphHandler)
	apiRoutes.GET("/graph/:user_id/export", routes.ExportGraphHandler)
	apiRoutes.DELETE("/graph/:user_id", routes.DeleteGraphHandler)
}
