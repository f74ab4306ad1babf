package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"os"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/lepko/lepko/internal/application/constant"
	"github.com/lepko/lepko/internal/usecase"
)

type DropHandler struct {
	dropUsecase usecase.DropUsecase
}

func NewDropHandler(dropUsecase usecase.DropUsecase) *DropHandler {
	return &DropHandler{dropUsecase: dropUsecase}
}

// Upload accepts a multipart file and returns the one-shot file id.
func (h *DropHandler) Upload(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "file is required"})
	}

	src, err := fileHeader.Open()
	if err != nil {
		slog.Error("open uploaded file", slog.Any(constant.Error, err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to read upload"})
	}
	defer src.Close()

	id, err := h.dropUsecase.Store(c.Request().Context(), src, fileHeader.Filename)
	if err != nil {
		slog.Error("store drop", slog.Any(constant.Error, err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to store file"})
	}

	return c.JSON(http.StatusOK, map[string]string{"file_id": id.String()})
}

// Download streams a drop exactly once, then removes it from disk. Expired,
// claimed and unknown ids all answer the same 404.
func (h *DropHandler) Download(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "file not found or expired"})
	}

	drop, err := h.dropUsecase.Claim(c.Request().Context(), id)
	if errors.Is(err, usecase.ErrDropNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "file not found or expired"})
	}
	if err != nil {
		slog.Error("claim drop", slog.Any(constant.Error, err), slog.Any(constant.FileID, id))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to fetch file"})
	}

	defer func() {
		if err := os.Remove(drop.Path); err != nil {
			slog.Error("remove claimed drop file", slog.Any(constant.Error, err))
		}
	}()

	return c.Attachment(drop.Path, drop.Filename)
}
