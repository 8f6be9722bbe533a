package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"foodgram/internal/service"
)

// RecipeHandler handles recipe CRUD, relation actions and the shopping list
// download.
type RecipeHandler struct {
	recipeService       service.RecipeService
	socialService       service.SocialService
	shoppingListService service.ShoppingListService
}

// NewRecipeHandler creates a new recipe handler.
func NewRecipeHandler(
	recipeService service.RecipeService,
	socialService service.SocialService,
	shoppingListService service.ShoppingListService,
) *RecipeHandler {
	return &RecipeHandler{
		recipeService:       recipeService,
		socialService:       socialService,
		shoppingListService: shoppingListService,
	}
}

// RecipeIngredientRequest references an ingredient with an amount.
type RecipeIngredientRequest struct {
	ID     uint `json:"id" validate:"required"`
	Amount int  `json:"amount" validate:"required"`
}

// RecipeRequest represents a recipe create/update payload. Range and set
// rules (amount bounds, distinct ids, name collisions) are checked by the
// service so failures come back field-scoped.
type RecipeRequest struct {
	Ingredients []RecipeIngredientRequest `json:"ingredients"`
	Tags        []uint                    `json:"tags"`
	Image       string                    `json:"image"`
	Name        string                    `json:"name" validate:"required,max=256"`
	Text        string                    `json:"text" validate:"required"`
	CookingTime int                       `json:"cooking_time" validate:"required"`
}

func (r *RecipeRequest) toInput() service.RecipeInput {
	ingredients := make([]service.IngredientAmount, 0, len(r.Ingredients))
	for _, item := range r.Ingredients {
		ingredients = append(ingredients, service.IngredientAmount{ID: item.ID, Amount: item.Amount})
	}
	return service.RecipeInput{
		Name:        r.Name,
		Text:        r.Text,
		Image:       r.Image,
		CookingTime: r.CookingTime,
		TagIDs:      r.Tags,
		Ingredients: ingredients,
	}
}

// ListRecipes godoc
// @Summary List recipes
// @Tags recipes
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size (default 6)"
// @Param tags query []string false "Tag slugs" collectionFormat(multi)
// @Param author query int false "Author ID"
// @Param is_favorited query bool false "Only the viewer's favorites"
// @Param is_in_shopping_cart query bool false "Only the viewer's cart"
// @Success 200 {object} Page
// @Router /recipes/ [get]
func (h *RecipeHandler) ListRecipes(c echo.Context) error {
	page, limit, offset := parsePagination(c)

	params := service.RecipeListParams{
		TagSlugs: c.QueryParams()["tags"],
		Offset:   offset,
		Limit:    limit,
	}
	if v, err := strconv.Atoi(c.QueryParam("author")); err == nil && v > 0 {
		params.AuthorID = uint(v)
	}
	params.Favorited = boolFilter(c.QueryParam("is_favorited"))
	params.InCart = boolFilter(c.QueryParam("is_in_shopping_cart"))

	views, total, err := h.recipeService.List(c.Request().Context(), ViewerID(c), params)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, paginate(c, total, page, limit, views))
}

// GetRecipe godoc
// @Summary Get a recipe
// @Tags recipes
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 200 {object} view.RecipeView
// @Failure 404 {object} errors.ErrorResponse
// @Router /recipes/{id}/ [get]
func (h *RecipeHandler) GetRecipe(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	recipe, err := h.recipeService.Get(c.Request().Context(), id, ViewerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, recipe)
}

// CreateRecipe godoc
// @Summary Create a recipe
// @Tags recipes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body RecipeRequest true "Recipe payload"
// @Success 201 {object} view.RecipeView
// @Failure 400 {object} map[string][]string
// @Failure 401 {object} errors.ErrorResponse
// @Router /recipes/ [post]
func (h *RecipeHandler) CreateRecipe(c echo.Context) error {
	var req RecipeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	recipe, err := h.recipeService.Create(c.Request().Context(), ViewerID(c), req.toInput())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, recipe)
}

// UpdateRecipe godoc
// @Summary Update a recipe
// @Tags recipes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Recipe ID"
// @Param request body RecipeRequest true "Recipe payload"
// @Success 200 {object} view.RecipeView
// @Failure 400 {object} map[string][]string
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /recipes/{id}/ [patch]
func (h *RecipeHandler) UpdateRecipe(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req RecipeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	recipe, err := h.recipeService.Update(c.Request().Context(), id, ViewerID(c), req.toInput())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, recipe)
}

// DeleteRecipe godoc
// @Summary Delete a recipe
// @Tags recipes
// @Security BearerAuth
// @Param id path int true "Recipe ID"
// @Success 204
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /recipes/{id}/ [delete]
func (h *RecipeHandler) DeleteRecipe(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.recipeService.Delete(c.Request().Context(), id, ViewerID(c)); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// GetShortLink godoc
// @Summary Get a recipe's short link
// @Tags recipes
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} errors.ErrorResponse
// @Router /recipes/{id}/get-link/ [get]
func (h *RecipeHandler) GetShortLink(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	link, err := h.recipeService.GetShortLink(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"short-link": link})
}

// ShortLinkRedirect godoc
// @Summary Redirect a short link to the recipe page
// @Tags recipes
// @Param token path string true "Short URL token"
// @Success 302
// @Failure 404 {object} errors.ErrorResponse
// @Router /s/{token} [get]
func (h *RecipeHandler) ShortLinkRedirect(c echo.Context) error {
	id, err := h.recipeService.ResolveShortLink(c.Request().Context(), c.Param("token"))
	if err != nil {
		return respondError(c, err)
	}
	return c.Redirect(http.StatusFound, fmt.Sprintf("/recipes/%d/", id))
}

// Favorite godoc
// @Summary Add a recipe to favorites
// @Tags recipes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Recipe ID"
// @Success 201 {object} view.RecipeShortView
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /recipes/{id}/favorite/ [post]
func (h *RecipeHandler) Favorite(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	short, err := h.socialService.Favorite(c.Request().Context(), ViewerID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, short)
}

// Unfavorite godoc
// @Summary Remove a recipe from favorites
// @Tags recipes
// @Security BearerAuth
// @Param id path int true "Recipe ID"
// @Success 204
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /recipes/{id}/favorite/ [delete]
func (h *RecipeHandler) Unfavorite(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.socialService.Unfavorite(c.Request().Context(), ViewerID(c), id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// CartAdd godoc
// @Summary Add a recipe to the shopping cart
// @Tags recipes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Recipe ID"
// @Success 201 {object} view.RecipeShortView
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /recipes/{id}/shopping_cart/ [post]
func (h *RecipeHandler) CartAdd(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	short, err := h.socialService.CartAdd(c.Request().Context(), ViewerID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, short)
}

// CartRemove godoc
// @Summary Remove a recipe from the shopping cart
// @Tags recipes
// @Security BearerAuth
// @Param id path int true "Recipe ID"
// @Success 204
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /recipes/{id}/shopping_cart/ [delete]
func (h *RecipeHandler) CartRemove(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.socialService.CartRemove(c.Request().Context(), ViewerID(c), id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// DownloadShoppingCart godoc
// @Summary Download the aggregated shopping list
// @Tags recipes
// @Produce plain
// @Security BearerAuth
// @Success 200 {string} string "One line per ingredient"
// @Router /recipes/download_shopping_cart/ [get]
func (h *RecipeHandler) DownloadShoppingCart(c echo.Context) error {
	report, err := h.shoppingListService.BuildReport(c.Request().Context(), ViewerID(c))
	if err != nil {
		return respondError(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename=%q`, report.Filename))
	return c.Blob(http.StatusOK, "text/plain; charset=utf-8", []byte(report.Content))
}

// boolFilter parses a tri-state query flag: nil when absent.
func boolFilter(raw string) *bool {
	if raw == "" {
		return nil
	}
	switch raw {
	case "1", "t", "T", "true", "TRUE", "True", "yes", "y":
		v := true
		return &v
	default:
		v := false
		return &v
	}
}
