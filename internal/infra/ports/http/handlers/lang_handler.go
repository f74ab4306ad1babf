package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/lepko/lepko/internal/application/lang"
)

type LangHandler struct{}

func NewLangHandler() *LangHandler {
	return &LangHandler{}
}

// Dictionary serves the flat key→string map for a language; an unknown code
// falls back to English rather than erroring.
func (h *LangHandler) Dictionary(c echo.Context) error {
	code := strings.TrimSuffix(c.Param("lang"), ".json")

	return c.JSON(http.StatusOK, lang.Dictionary(code))
}
