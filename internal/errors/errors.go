package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrUserNotFound is returned when a user profile is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrRecipeNotFound is returned when a recipe is not found.
	ErrRecipeNotFound = errors.New("recipe not found")
	// ErrTagNotFound is returned when a tag is not found.
	ErrTagNotFound = errors.New("tag not found")
	// ErrIngredientNotFound is returned when an ingredient is not found.
	ErrIngredientNotFound = errors.New("ingredient not found")
	// ErrNotOwner is returned when a user mutates someone else's recipe.
	ErrNotOwner = errors.New("only the author may modify this recipe")
	// ErrSelfFollow is returned on an attempt to follow oneself.
	ErrSelfFollow = errors.New("cannot follow yourself")
	// ErrAlreadyFollowing is returned on a duplicate follow.
	ErrAlreadyFollowing = errors.New("already following this user")
	// ErrNotFollowing is returned when unfollowing an absent follow.
	ErrNotFollowing = errors.New("not following this user")
	// ErrAlreadyFavorited is returned on a duplicate favorite.
	ErrAlreadyFavorited = errors.New("recipe already in favorites")
	// ErrNotFavorited is returned when removing an absent favorite.
	ErrNotFavorited = errors.New("recipe is not in favorites")
	// ErrAlreadyInCart is returned on a duplicate shopping cart entry.
	ErrAlreadyInCart = errors.New("recipe already in shopping cart")
	// ErrNotInCart is returned when removing an absent cart entry.
	ErrNotInCart = errors.New("recipe is not in shopping cart")
)

// ValidationError carries field-scoped validation messages. No partial
// write may have happened when one of these is returned.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	for field, msgs := range e.Fields {
		if len(msgs) > 0 {
			return field + ": " + msgs[0]
		}
	}
	return "validation failed"
}

// NewValidationError builds a single-field validation error.
func NewValidationError(field string, messages ...string) *ValidationError {
	return &ValidationError{Fields: map[string][]string{field: messages}}
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"errors"`
	Code  string `json:"code,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Relation-state
// rejections come back as 400 with a readable reason, ownership
// violations as 403, missing entities as 404.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "USER_NOT_FOUND")
	case errors.Is(err, ErrRecipeNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "RECIPE_NOT_FOUND")
	case errors.Is(err, ErrTagNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "TAG_NOT_FOUND")
	case errors.Is(err, ErrIngredientNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "INGREDIENT_NOT_FOUND")
	case errors.Is(err, ErrNotOwner):
		return NewHTTPError(http.StatusForbidden, err.Error(), "NOT_OWNER")
	case errors.Is(err, ErrSelfFollow):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "SELF_FOLLOW")
	case errors.Is(err, ErrAlreadyFollowing):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "ALREADY_FOLLOWING")
	case errors.Is(err, ErrNotFollowing):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "NOT_FOLLOWING")
	case errors.Is(err, ErrAlreadyFavorited):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "ALREADY_FAVORITED")
	case errors.Is(err, ErrNotFavorited):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "NOT_FAVORITED")
	case errors.Is(err, ErrAlreadyInCart):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "ALREADY_IN_CART")
	case errors.Is(err, ErrNotInCart):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "NOT_IN_CART")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
