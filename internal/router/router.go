package router

import (
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"foodgram/internal/auth"
	"foodgram/internal/config"
	"foodgram/internal/handler"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	jwtService *auth.JWTService,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	catalogHandler *handler.CatalogHandler,
	recipeHandler *handler.RecipeHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Short links live outside the API prefix so they stay copy-paste short.
	e.GET("/s/:token", recipeHandler.ShortLinkRedirect)

	api := e.Group("/api")

	// Public routes. Reads carry OptionalAuth so viewer-relative fields
	// (is_subscribed, is_favorited, is_in_shopping_cart) resolve when a
	// token is present without requiring one.
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.Refresh)

	public := api.Group("", OptionalAuth(jwtService))
	public.GET("/users/", userHandler.ListUsers)
	public.GET("/users/:id/", userHandler.GetUser)
	public.GET("/tags/", catalogHandler.ListTags)
	public.GET("/tags/:id/", catalogHandler.GetTag)
	public.GET("/ingredients/", catalogHandler.ListIngredients)
	public.GET("/ingredients/:id/", catalogHandler.GetIngredient)
	public.GET("/recipes/", recipeHandler.ListRecipes)
	public.GET("/recipes/:id/", recipeHandler.GetRecipe)
	public.GET("/recipes/:id/get-link/", recipeHandler.GetShortLink)

	// Secured routes (require JWT authentication)
	secured := api.Group("", jwtMiddleware(cfg.JWTSecret))

	secured.POST("/auth/logout", authHandler.Logout)

	// User routes
	secured.GET("/users/me/", userHandler.Me)
	secured.POST("/users/set_password/", userHandler.SetPassword)
	secured.PUT("/users/me/avatar/", userHandler.PutAvatar)
	secured.DELETE("/users/me/avatar/", userHandler.DeleteAvatar)
	secured.GET("/users/subscriptions/", userHandler.Subscriptions)
	secured.POST("/users/:id/subscribe/", userHandler.Subscribe)
	secured.DELETE("/users/:id/subscribe/", userHandler.Unsubscribe)

	// Recipe routes
	secured.POST("/recipes/", recipeHandler.CreateRecipe)
	secured.PATCH("/recipes/:id/", recipeHandler.UpdateRecipe)
	secured.DELETE("/recipes/:id/", recipeHandler.DeleteRecipe)
	secured.POST("/recipes/:id/favorite/", recipeHandler.Favorite)
	secured.DELETE("/recipes/:id/favorite/", recipeHandler.Unfavorite)
	secured.POST("/recipes/:id/shopping_cart/", recipeHandler.CartAdd)
	secured.DELETE("/recipes/:id/shopping_cart/", recipeHandler.CartRemove)
	secured.GET("/recipes/download_shopping_cart/", recipeHandler.DownloadShoppingCart)
}

// jwtMiddleware rejects requests that do not carry a valid Bearer access
// token. The default token lookup already strips the "Bearer " scheme from
// the Authorization header.
func jwtMiddleware(secret string) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(secret),
	})
}

// OptionalAuth resolves the viewer from a Bearer token when one is present
// and valid; otherwise the request proceeds anonymously.
func OptionalAuth(jwtService *auth.JWTService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if strings.HasPrefix(header, "Bearer ") {
				claims, err := jwtService.ValidateToken(strings.TrimPrefix(header, "Bearer "))
				if err == nil {
					c.Set(handler.ViewerKey, claims.UserID)
				}
			}
			return next(c)
		}
	}
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
