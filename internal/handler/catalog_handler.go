package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"foodgram/internal/service"
)

// CatalogHandler serves tag and ingredient reference data.
type CatalogHandler struct {
	catalogService service.CatalogService
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(catalogService service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// ListTags godoc
// @Summary List tags
// @Tags tags
// @Produce json
// @Success 200 {array} view.TagView
// @Router /tags/ [get]
func (h *CatalogHandler) ListTags(c echo.Context) error {
	tags, err := h.catalogService.ListTags(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, tags)
}

// GetTag godoc
// @Summary Get a tag
// @Tags tags
// @Produce json
// @Param id path int true "Tag ID"
// @Success 200 {object} view.TagView
// @Failure 404 {object} errors.ErrorResponse
// @Router /tags/{id}/ [get]
func (h *CatalogHandler) GetTag(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	tag, err := h.catalogService.GetTag(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, tag)
}

// ListIngredients godoc
// @Summary List ingredients
// @Tags ingredients
// @Produce json
// @Param name query string false "Case-insensitive name prefix"
// @Success 200 {array} view.IngredientView
// @Router /ingredients/ [get]
func (h *CatalogHandler) ListIngredients(c echo.Context) error {
	ingredients, err := h.catalogService.ListIngredients(c.Request().Context(), c.QueryParam("name"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, ingredients)
}

// GetIngredient godoc
// @Summary Get an ingredient
// @Tags ingredients
// @Produce json
// @Param id path int true "Ingredient ID"
// @Success 200 {object} view.IngredientView
// @Failure 404 {object} errors.ErrorResponse
// @Router /ingredients/{id}/ [get]
func (h *CatalogHandler) GetIngredient(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	ingredient, err := h.catalogService.GetIngredient(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, ingredient)
}
