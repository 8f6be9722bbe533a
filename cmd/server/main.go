package main

import (
	"context"
	"log"
	"net/http"
	"os"

	_ "foodgram/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"foodgram/internal/auth"
	"foodgram/internal/cache"
	"foodgram/internal/config"
	"foodgram/internal/db"
	"foodgram/internal/handler"
	"foodgram/internal/media"
	"foodgram/internal/model"
	"foodgram/internal/repository"
	"foodgram/internal/router"
	"foodgram/internal/service"
)

// @title Foodgram API
// @version 1.0
// @description Recipe sharing API with favorites, subscriptions and a downloadable shopping list.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	e := echo.New()
	e.Use(middleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	// Drop tables if RESET_DB environment variable is set
	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, dropping all tables...")
		tables := []interface{}{
			&model.ShoppingListItem{},
			&model.Favorite{},
			&model.Follow{},
			&model.IngredientRecipe{},
			&model.Recipe{},
			&model.Ingredient{},
			&model.Tag{},
			&model.UserProfile{},
		}
		for _, table := range tables {
			if err := gormDB.Migrator().DropTable(table); err != nil {
				log.Printf("Warning: Failed to drop table (may not exist): %v", err)
			}
		}
		log.Println("Tables dropped")
	}

	// Run migrations for all models
	if err := gormDB.AutoMigrate(
		&model.UserProfile{},
		&model.Tag{},
		&model.Ingredient{},
		&model.Recipe{},
		&model.IngredientRecipe{},
		&model.Follow{},
		&model.Favorite{},
		&model.ShoppingListItem{},
	); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	mediaStore, err := media.NewS3Store(context.Background(), cfg)
	if err != nil {
		log.Fatalf("media store init: %v", err)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	tagRepo := repository.NewTagRepository(gormDB)
	ingredientRepo := repository.NewIngredientRepository(gormDB)
	recipeRepo := repository.NewRecipeRepository(gormDB)
	relationRepo := repository.NewRelationRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtService, tokenStore)
	userService := service.NewUserService(userRepo, relationRepo, mediaStore)
	catalogService := service.NewCatalogService(tagRepo, ingredientRepo, cacheClient)
	recipeService := service.NewRecipeService(recipeRepo, tagRepo, ingredientRepo, relationRepo, mediaStore, cfg.BaseURL)
	socialService := service.NewSocialService(userRepo, recipeRepo, relationRepo)
	shoppingListService := service.NewShoppingListService(userRepo, relationRepo)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService, socialService)
	catalogHandler := handler.NewCatalogHandler(catalogService)
	recipeHandler := handler.NewRecipeHandler(recipeService, socialService, shoppingListService)

	// Register routes
	router.Register(
		e,
		cfg,
		jwtService,
		authHandler,
		userHandler,
		catalogHandler,
		recipeHandler,
	)

	// Log swagger full path
	var swaggerURL string
	if cfg.SwaggerHost != "" {
		// SwaggerHost may already include scheme (http:// or https://)
		if len(cfg.SwaggerHost) >= 7 && cfg.SwaggerHost[:7] == "http://" {
			swaggerURL = cfg.SwaggerHost + "/swagger/index.html"
		} else if len(cfg.SwaggerHost) >= 8 && cfg.SwaggerHost[:8] == "https://" {
			swaggerURL = cfg.SwaggerHost + "/swagger/index.html"
		} else {
			swaggerURL = "http://" + cfg.SwaggerHost + "/swagger/index.html"
		}
	} else {
		swaggerURL = "http://localhost:" + cfg.ServerPort + "/swagger/index.html"
	}
	log.Printf("Swagger documentation available at: %s", swaggerURL)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
