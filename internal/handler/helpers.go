package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	apperrors "foodgram/internal/errors"
)

// DefaultPageSize matches the API contract: six items per page unless the
// client asks otherwise via ?limit=.
const DefaultPageSize = 6

// ViewerKey is the context key the optional-auth middleware stores the
// resolved viewer id under.
const ViewerKey = "viewer_id"

// ViewerID resolves the acting user id from the request context. Zero means
// anonymous. It understands both the optional-auth middleware and the
// echo-jwt token set on secured routes. echo-jwt parses with jwt/v5, so the
// stored token is a v5 one regardless of what library minted it.
func ViewerID(c echo.Context) uint {
	if id, ok := c.Get(ViewerKey).(uint); ok {
		return id
	}
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return 0
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0
	}
	id, ok := claims["user_id"].(float64)
	if !ok {
		return 0
	}
	return uint(id)
}

// respondError translates a service error into the HTTP response shape:
// field-scoped maps for validation failures, {errors, code} otherwise.
func respondError(c echo.Context, err error) error {
	var vErr *apperrors.ValidationError
	if errors.As(err, &vErr) {
		return c.JSON(http.StatusBadRequest, vErr.Fields)
	}
	httpErr := apperrors.MapErrorToHTTP(err)
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}

// Page is the list response envelope.
type Page struct {
	Count    int64       `json:"count"`
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  interface{} `json:"results"`
}

// parsePagination reads ?page= and ?limit= with the default page size.
func parsePagination(c echo.Context) (page, limit, offset int) {
	page = 1
	if v, err := strconv.Atoi(c.QueryParam("page")); err == nil && v > 0 {
		page = v
	}
	limit = DefaultPageSize
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil && v > 0 {
		limit = v
	}
	return page, limit, (page - 1) * limit
}

// paginate builds the envelope with next/previous links derived from the
// request URL.
func paginate(c echo.Context, count int64, page, limit int, results interface{}) Page {
	p := Page{Count: count, Results: results}

	if int64(page*limit) < count {
		p.Next = pageLink(c, page+1)
	}
	if page > 1 {
		p.Previous = pageLink(c, page-1)
	}
	return p
}

func pageLink(c echo.Context, page int) *string {
	u := *c.Request().URL
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	link := u.String()
	return &link
}

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return uint(id), nil
}
