package handlers

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lepko/lepko/internal/application/constant"
	"github.com/lepko/lepko/internal/usecase"
)

type StatsHandler struct {
	keyUsecase  usecase.KeyUsecase
	dropUsecase usecase.DropUsecase
}

func NewStatsHandler(keyUsecase usecase.KeyUsecase, dropUsecase usecase.DropUsecase) *StatsHandler {
	return &StatsHandler{
		keyUsecase:  keyUsecase,
		dropUsecase: dropUsecase,
	}
}

// Stats feeds the public counters on the home page.
func (h *StatsHandler) Stats(c echo.Context) error {
	keys, err := h.keyUsecase.Count(c.Request().Context())
	if err != nil {
		slog.Error("count access keys", slog.Any(constant.Error, err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to load stats"})
	}

	return c.JSON(http.StatusOK, map[string]int64{
		"keys_generated":    keys,
		"files_transferred": h.dropUsecase.Transferred(),
	})
}
