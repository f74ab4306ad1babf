package handlers

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lepko/lepko/internal/application/config"
	"github.com/lepko/lepko/internal/application/constant"
	"github.com/lepko/lepko/internal/domain/models"
	"github.com/lepko/lepko/internal/usecase"
)

type KeyHandler struct {
	keyUsecase usecase.KeyUsecase

	paymentURL string
}

func NewKeyHandler(cfg *config.Config, keyUsecase usecase.KeyUsecase) *KeyHandler {
	return &KeyHandler{
		keyUsecase: keyUsecase,
		paymentURL: cfg.PaymentURL,
	}
}

// Check reports the status of an access key. The frontend stores keys in
// local storage and re-validates on load.
func (h *KeyHandler) Check(c echo.Context) error {
	status, plan, err := h.keyUsecase.Check(c.Request().Context(), c.Param("key"))
	if err != nil {
		slog.Error("check access key", slog.Any(constant.Error, err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to check key"})
	}

	switch status {
	case usecase.KeyActive:
		return c.JSON(http.StatusOK, map[string]string{
			"status": string(status),
			"plan":   string(plan),
		})
	case usecase.KeyExpired:
		return c.JSON(http.StatusOK, map[string]string{"status": string(status)})
	default:
		return c.JSON(http.StatusNotFound, map[string]string{"status": string(usecase.KeyNotFound)})
	}
}

// Generate issues a paid key, or hands back the payment redirect when a
// payment provider is configured.
func (h *KeyHandler) Generate(c echo.Context) error {
	plan := models.Plan(c.FormValue("plan_type"))

	if _, ok := plan.Duration(); !ok || plan == models.PlanTrial {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid plan_type"})
	}

	if h.paymentURL != "" {
		return c.JSON(http.StatusOK, map[string]string{
			"payment_url": h.paymentURL + "?plan=" + string(plan),
		})
	}

	key, err := h.keyUsecase.Generate(c.Request().Context(), plan)
	if err != nil {
		slog.Error("generate access key", slog.Any(constant.Error, err), slog.Any(constant.Plan, plan))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to generate key"})
	}

	return c.JSON(http.StatusOK, map[string]string{"access_key": key.KeyString})
}

// GenerateTrial issues a 7-day trial key, no payment involved.
func (h *KeyHandler) GenerateTrial(c echo.Context) error {
	key, err := h.keyUsecase.Generate(c.Request().Context(), models.PlanTrial)
	if err != nil {
		slog.Error("generate trial key", slog.Any(constant.Error, err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to generate key"})
	}

	return c.JSON(http.StatusOK, map[string]string{"access_key": key.KeyString})
}
