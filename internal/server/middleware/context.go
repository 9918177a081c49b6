package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/studygraph/backend/pkg/loader/web"
	"github.com/studygraph/backend/pkg/workflow"
)

// App carries the shared service dependencies handlers use. Everything
// in it is constructed once at startup; handlers must not mutate it.
type App struct {
	Controller *workflow.Controller
	WebLoader  *web.Extractor
}

type AppContext struct {
	echo.Context
	App *App
}

func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &AppContext{c, app}
			return next(cc)
		}
	}
}
