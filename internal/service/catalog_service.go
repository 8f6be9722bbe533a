package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"foodgram/internal/cache"
	apperrors "foodgram/internal/errors"
	"foodgram/internal/repository"
	"foodgram/internal/view"
)

// Reference data changes only through admin tooling, so a short TTL is enough.
const catalogCacheTTL = 5 * time.Minute

// CatalogService serves tag and ingredient reference data.
type CatalogService interface {
	ListTags(ctx context.Context) ([]view.TagView, error)
	GetTag(ctx context.Context, id uint) (*view.TagView, error)
	ListIngredients(ctx context.Context, namePrefix string) ([]view.IngredientView, error)
	GetIngredient(ctx context.Context, id uint) (*view.IngredientView, error)
}

type catalogService struct {
	tagRepo        repository.TagRepository
	ingredientRepo repository.IngredientRepository
	cache          *cache.Client
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(tagRepo repository.TagRepository, ingredientRepo repository.IngredientRepository, cache *cache.Client) CatalogService {
	return &catalogService{
		tagRepo:        tagRepo,
		ingredientRepo: ingredientRepo,
		cache:          cache,
	}
}

// ListTags returns all tags, cached.
func (s *catalogService) ListTags(ctx context.Context) ([]view.TagView, error) {
	const key = "tags:all"
	var cached []view.TagView
	if s.cache.GetJSON(ctx, key, &cached) {
		return cached, nil
	}

	tags, err := s.tagRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}

	views := make([]view.TagView, 0, len(tags))
	for _, t := range tags {
		views = append(views, view.NewTagView(t))
	}

	_ = s.cache.SetJSON(ctx, key, views, catalogCacheTTL)
	return views, nil
}

// GetTag returns one tag, cached.
func (s *catalogService) GetTag(ctx context.Context, id uint) (*view.TagView, error) {
	key := fmt.Sprintf("tag:%d", id)
	var cached view.TagView
	if s.cache.GetJSON(ctx, key, &cached) {
		return &cached, nil
	}

	tag, err := s.tagRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTagNotFound
		}
		return nil, err
	}

	v := view.NewTagView(*tag)
	_ = s.cache.SetJSON(ctx, key, v, catalogCacheTTL)
	return &v, nil
}

// ListIngredients returns ingredients filtered by a case-insensitive name
// prefix. Only the unfiltered list is cached.
func (s *catalogService) ListIngredients(ctx context.Context, namePrefix string) ([]view.IngredientView, error) {
	const key = "ingredients:all"
	if namePrefix == "" {
		var cached []view.IngredientView
		if s.cache.GetJSON(ctx, key, &cached) {
			return cached, nil
		}
	}

	ingredients, err := s.ingredientRepo.List(ctx, namePrefix)
	if err != nil {
		return nil, fmt.Errorf("list ingredients: %w", err)
	}

	views := make([]view.IngredientView, 0, len(ingredients))
	for _, ing := range ingredients {
		views = append(views, view.NewIngredientView(ing))
	}

	if namePrefix == "" {
		_ = s.cache.SetJSON(ctx, key, views, catalogCacheTTL)
	}
	return views, nil
}

// GetIngredient returns one ingredient.
func (s *catalogService) GetIngredient(ctx context.Context, id uint) (*view.IngredientView, error) {
	ingredient, err := s.ingredientRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrIngredientNotFound
		}
		return nil, err
	}
	v := view.NewIngredientView(*ingredient)
	return &v, nil
}
