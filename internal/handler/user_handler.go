package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"foodgram/internal/service"
)

// UserHandler handles profile and subscription endpoints.
type UserHandler struct {
	userService   service.UserService
	socialService service.SocialService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(userService service.UserService, socialService service.SocialService) *UserHandler {
	return &UserHandler{userService: userService, socialService: socialService}
}

// SetPasswordRequest carries a password change.
type SetPasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// AvatarRequest carries a base64 avatar payload.
type AvatarRequest struct {
	Avatar string `json:"avatar" validate:"required"`
}

// ListUsers godoc
// @Summary List user profiles
// @Tags users
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size (default 6)"
// @Success 200 {object} Page
// @Router /users/ [get]
func (h *UserHandler) ListUsers(c echo.Context) error {
	page, limit, offset := parsePagination(c)
	views, total, err := h.userService.ListProfiles(c.Request().Context(), ViewerID(c), offset, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, paginate(c, total, page, limit, views))
}

// GetUser godoc
// @Summary Get a user profile
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} view.ProfileView
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id}/ [get]
func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	profile, err := h.userService.GetProfile(c.Request().Context(), id, ViewerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, profile)
}

// Me godoc
// @Summary Get the authenticated user's profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} view.ProfileView
// @Failure 401 {object} errors.ErrorResponse
// @Router /users/me/ [get]
func (h *UserHandler) Me(c echo.Context) error {
	viewer := ViewerID(c)
	profile, err := h.userService.GetProfile(c.Request().Context(), viewer, viewer)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, profile)
}

// SetPassword godoc
// @Summary Change the authenticated user's password
// @Tags users
// @Accept json
// @Security BearerAuth
// @Param request body SetPasswordRequest true "Passwords"
// @Success 204
// @Failure 400 {object} errors.ErrorResponse
// @Router /users/set_password/ [post]
func (h *UserHandler) SetPassword(c echo.Context) error {
	var req SetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	err := h.userService.SetPassword(c.Request().Context(), ViewerID(c), req.CurrentPassword, req.NewPassword)
	if err != nil {
		if errors.Is(err, service.ErrWrongPassword) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// PutAvatar godoc
// @Summary Upload the authenticated user's avatar
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body AvatarRequest true "Base64 image data URI"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string][]string
// @Router /users/me/avatar/ [put]
func (h *UserHandler) PutAvatar(c echo.Context) error {
	var req AvatarRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	url, err := h.userService.SetAvatar(c.Request().Context(), ViewerID(c), req.Avatar)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"avatar": url})
}

// DeleteAvatar godoc
// @Summary Delete the authenticated user's avatar
// @Tags users
// @Security BearerAuth
// @Success 204
// @Router /users/me/avatar/ [delete]
func (h *UserHandler) DeleteAvatar(c echo.Context) error {
	if err := h.userService.DeleteAvatar(c.Request().Context(), ViewerID(c)); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Subscriptions godoc
// @Summary List the authenticated user's subscriptions
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Page size (default 6)"
// @Param recipes_limit query int false "Max recipe previews per author"
// @Success 200 {object} Page
// @Router /users/subscriptions/ [get]
func (h *UserHandler) Subscriptions(c echo.Context) error {
	page, limit, offset := parsePagination(c)
	views, total, err := h.socialService.ListSubscriptions(
		c.Request().Context(), ViewerID(c), recipesLimit(c), offset, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, paginate(c, total, page, limit, views))
}

// Subscribe godoc
// @Summary Follow a user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "Author ID"
// @Param recipes_limit query int false "Max recipe previews"
// @Success 201 {object} view.SubscriptionView
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id}/subscribe/ [post]
func (h *UserHandler) Subscribe(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	sub, err := h.socialService.Follow(c.Request().Context(), ViewerID(c), id, recipesLimit(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, sub)
}

// Unsubscribe godoc
// @Summary Unfollow a user
// @Tags users
// @Security BearerAuth
// @Param id path int true "Author ID"
// @Success 204
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id}/subscribe/ [delete]
func (h *UserHandler) Unsubscribe(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.socialService.Unfollow(c.Request().Context(), ViewerID(c), id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func recipesLimit(c echo.Context) int {
	if v, err := strconv.Atoi(c.QueryParam("recipes_limit")); err == nil && v > 0 {
		return v
	}
	return 0
}
