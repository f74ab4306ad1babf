package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lepko/lepko/internal/infra/ports/http/handlers"
	"github.com/lepko/lepko/internal/infra/ports/http/middleware"
)

func New(
	wsHandler *handlers.WebSocketHandler,
	dropHandler *handlers.DropHandler,
	keyHandler *handlers.KeyHandler,
	langHandler *handlers.LangHandler,
	statsHandler *handlers.StatsHandler,
) *echo.Echo {
	e := echo.New()

	e.HideBanner = true

	e.Use(middleware.SlogLogger())
	e.Use(middleware.PrometheusMiddleware())

	// Pad rooms: one persistent connection per participant.
	e.GET("/ws/:room", wsHandler.Handle)

	// Drop: one-shot file hand-off.
	e.POST("/upload", dropHandler.Upload)
	e.GET("/file/:id", dropHandler.Download)

	// Anonymous access keys.
	keys := e.Group("/keys")
	{
		keys.GET("/check/:key", keyHandler.Check)
		keys.POST("/generate", keyHandler.Generate)
		keys.POST("/generate_trial", keyHandler.GenerateTrial)
	}

	e.GET("/static/lang/:lang", langHandler.Dictionary)

	e.GET("/stats", statsHandler.Stats)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	return e
}
