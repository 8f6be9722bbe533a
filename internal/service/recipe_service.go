package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "foodgram/internal/errors"
	"foodgram/internal/media"
	"foodgram/internal/model"
	"foodgram/internal/repository"
	"foodgram/internal/view"
)

// shortURLMaxAttempts caps collision retries on token generation.
const shortURLMaxAttempts = 100

// IngredientAmount references an ingredient with the amount used.
type IngredientAmount struct {
	ID     uint
	Amount int
}

// RecipeInput is a candidate recipe payload for create or update. Image is
// either a base64 data URI (stored on save) or empty to keep the current one.
type RecipeInput struct {
	Name        string
	Text        string
	Image       string
	CookingTime int
	TagIDs      []uint
	Ingredients []IngredientAmount
}

// RecipeListParams narrows and pages the recipe list.
type RecipeListParams struct {
	TagSlugs  []string
	AuthorID  uint
	Favorited *bool
	InCart    *bool
	Offset    int
	Limit     int
}

// RecipeService validates and assembles recipe writes and shapes read views.
type RecipeService interface {
	Create(ctx context.Context, authorID uint, input RecipeInput) (*view.RecipeView, error)
	Update(ctx context.Context, recipeID, actorID uint, input RecipeInput) (*view.RecipeView, error)
	Delete(ctx context.Context, recipeID, actorID uint) error
	Get(ctx context.Context, recipeID, viewerID uint) (*view.RecipeView, error)
	List(ctx context.Context, viewerID uint, params RecipeListParams) ([]view.RecipeView, int64, error)
	GetShortLink(ctx context.Context, recipeID uint) (string, error)
	ResolveShortLink(ctx context.Context, token string) (uint, error)
}

type recipeService struct {
	recipeRepo     repository.RecipeRepository
	tagRepo        repository.TagRepository
	ingredientRepo repository.IngredientRepository
	relationRepo   repository.RelationRepository
	mediaStore     media.Store
	baseURL        string
}

// NewRecipeService creates a new recipe service.
func NewRecipeService(
	recipeRepo repository.RecipeRepository,
	tagRepo repository.TagRepository,
	ingredientRepo repository.IngredientRepository,
	relationRepo repository.RelationRepository,
	mediaStore media.Store,
	baseURL string,
) RecipeService {
	return &recipeService{
		recipeRepo:     recipeRepo,
		tagRepo:        tagRepo,
		ingredientRepo: ingredientRepo,
		relationRepo:   relationRepo,
		mediaStore:     mediaStore,
		baseURL:        strings.TrimRight(baseURL, "/"),
	}
}

// Create validates the payload, persists the recipe with its tag set and
// ingredient rows in one transaction and returns the full read view.
func (s *recipeService) Create(ctx context.Context, authorID uint, input RecipeInput) (*view.RecipeView, error) {
	tags, items, err := s.validate(ctx, authorID, 0, input)
	if err != nil {
		return nil, err
	}
	if input.Image == "" {
		return nil, apperrors.NewValidationError("image", "image is required")
	}

	imageURL, err := s.storeImage(ctx, input.Image)
	if err != nil {
		return nil, err
	}

	token, err := s.generateShortURL(ctx)
	if err != nil {
		return nil, err
	}

	recipe := &model.Recipe{
		AuthorID:    authorID,
		Name:        input.Name,
		Image:       imageURL,
		Text:        input.Text,
		CookingTime: input.CookingTime,
		ShortURL:    token,
	}
	if err := s.recipeRepo.Create(ctx, recipe, tags, items); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.NewValidationError("name", "you already have a recipe with this name")
		}
		return nil, fmt.Errorf("create recipe: %w", err)
	}

	return s.present(ctx, recipe.ID, authorID)
}

// Update replaces the recipe's scalar fields, tag set and ingredient set
// wholesale, atomically. Only the author may update.
func (s *recipeService) Update(ctx context.Context, recipeID, actorID uint, input RecipeInput) (*view.RecipeView, error) {
	recipe, err := s.findRecipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if recipe.AuthorID != actorID {
		return nil, apperrors.ErrNotOwner
	}

	tags, items, err := s.validate(ctx, actorID, recipeID, input)
	if err != nil {
		return nil, err
	}

	imageURL := recipe.Image
	if input.Image != "" {
		imageURL, err = s.storeImage(ctx, input.Image)
		if err != nil {
			return nil, err
		}
	}

	recipe.Name = input.Name
	recipe.Text = input.Text
	recipe.Image = imageURL
	recipe.CookingTime = input.CookingTime
	recipe.Tags = nil
	recipe.RecipeIngredients = nil

	if err := s.recipeRepo.Update(ctx, recipe, tags, items); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.NewValidationError("name", "you already have a recipe with this name")
		}
		return nil, fmt.Errorf("update recipe: %w", err)
	}

	return s.present(ctx, recipe.ID, actorID)
}

// Delete removes a recipe. Only the author may delete.
func (s *recipeService) Delete(ctx context.Context, recipeID, actorID uint) error {
	recipe, err := s.findRecipe(ctx, recipeID)
	if err != nil {
		return err
	}
	if recipe.AuthorID != actorID {
		return apperrors.ErrNotOwner
	}
	return s.recipeRepo.Delete(ctx, recipeID)
}

// Get returns the read view of one recipe relative to the viewer. A zero
// viewerID means anonymous; the viewer-relative flags are then false.
func (s *recipeService) Get(ctx context.Context, recipeID, viewerID uint) (*view.RecipeView, error) {
	return s.present(ctx, recipeID, viewerID)
}

// List returns paged recipe views. A truthy viewer-relative filter combined
// with an anonymous viewer yields an empty result set; falsy filters are
// dropped for anonymous viewers.
func (s *recipeService) List(ctx context.Context, viewerID uint, params RecipeListParams) ([]view.RecipeView, int64, error) {
	filter := repository.RecipeListFilter{
		TagSlugs:  params.TagSlugs,
		AuthorID:  params.AuthorID,
		ViewerID:  viewerID,
		Favorited: params.Favorited,
		InCart:    params.InCart,
	}
	if viewerID == 0 {
		if (params.Favorited != nil && *params.Favorited) || (params.InCart != nil && *params.InCart) {
			return []view.RecipeView{}, 0, nil
		}
		filter.Favorited = nil
		filter.InCart = nil
	}

	recipes, total, err := s.recipeRepo.List(ctx, filter, params.Offset, params.Limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list recipes: %w", err)
	}

	views := make([]view.RecipeView, 0, len(recipes))
	for _, recipe := range recipes {
		flags, err := s.viewerFlags(ctx, viewerID, &recipe)
		if err != nil {
			return nil, 0, err
		}
		views = append(views, view.NewRecipeView(recipe, flags))
	}
	return views, total, nil
}

// GetShortLink returns the absolute short link for a recipe, generating a
// token first if the row predates short URLs.
func (s *recipeService) GetShortLink(ctx context.Context, recipeID uint) (string, error) {
	recipe, err := s.findRecipe(ctx, recipeID)
	if err != nil {
		return "", err
	}

	if recipe.ShortURL == "" {
		token, err := s.generateShortURL(ctx)
		if err != nil {
			return "", err
		}
		if err := s.recipeRepo.SetShortURL(ctx, recipe.ID, token); err != nil {
			return "", fmt.Errorf("set short url: %w", err)
		}
		recipe.ShortURL = token
	}

	return fmt.Sprintf("%s/s/%s", s.baseURL, recipe.ShortURL), nil
}

// ResolveShortLink maps a short URL token back to the recipe id.
func (s *recipeService) ResolveShortLink(ctx context.Context, token string) (uint, error) {
	recipe, err := s.recipeRepo.FindByShortURL(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, apperrors.ErrRecipeNotFound
		}
		return 0, err
	}
	return recipe.ID, nil
}

// validate runs the composer checks in order, failing fast with a
// field-scoped error, and resolves tag and ingredient references. No write
// happens while any check can still fail.
func (s *recipeService) validate(ctx context.Context, authorID, excludeRecipeID uint, input RecipeInput) ([]model.Tag, []model.IngredientRecipe, error) {
	// 1. Tags: non-empty, distinct, resolvable.
	if len(input.TagIDs) == 0 {
		return nil, nil, apperrors.NewValidationError("tags", "add at least one tag")
	}
	if hasDuplicates(input.TagIDs) {
		return nil, nil, apperrors.NewValidationError("tags", "tags must be unique")
	}
	tags, err := s.tagRepo.FindByIDs(ctx, input.TagIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve tags: %w", err)
	}
	if len(tags) != len(input.TagIDs) {
		return nil, nil, apperrors.NewValidationError("tags", "unknown tag id")
	}

	// 2. Ingredients: non-empty, distinct, amounts in range, resolvable.
	if len(input.Ingredients) == 0 {
		return nil, nil, apperrors.NewValidationError("ingredients", "add at least one ingredient")
	}
	ids := make([]uint, 0, len(input.Ingredients))
	for _, item := range input.Ingredients {
		ids = append(ids, item.ID)
	}
	if hasDuplicates(ids) {
		return nil, nil, apperrors.NewValidationError("ingredients", "ingredients must be unique")
	}
	for _, item := range input.Ingredients {
		if item.Amount < model.MinAmount || item.Amount > model.MaxAmount {
			return nil, nil, apperrors.NewValidationError("ingredients",
				fmt.Sprintf("amount must be between %d and %d", model.MinAmount, model.MaxAmount))
		}
	}
	known, err := s.ingredientRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve ingredients: %w", err)
	}
	if len(known) != len(ids) {
		// Report every unresolvable id at once.
		found := make(map[uint]bool, len(known))
		for _, ing := range known {
			found[ing.ID] = true
		}
		var missing []string
		for _, id := range ids {
			if !found[id] {
				missing = append(missing, fmt.Sprint(id))
			}
		}
		return nil, nil, apperrors.NewValidationError("ingredients",
			"unknown ingredient ids: "+strings.Join(missing, ", "))
	}

	if input.CookingTime < model.MinCookingTime || input.CookingTime > model.MaxCookingTime {
		return nil, nil, apperrors.NewValidationError("cooking_time",
			fmt.Sprintf("cooking time must be between %d and %d", model.MinCookingTime, model.MaxCookingTime))
	}

	// 3. Name must not collide with another recipe by the same author.
	taken, err := s.recipeRepo.ExistsByAuthorAndName(ctx, authorID, input.Name, excludeRecipeID)
	if err != nil {
		return nil, nil, fmt.Errorf("check recipe name: %w", err)
	}
	if taken {
		return nil, nil, apperrors.NewValidationError("name", "you already have a recipe with this name")
	}

	items := make([]model.IngredientRecipe, 0, len(input.Ingredients))
	for _, item := range input.Ingredients {
		items = append(items, model.IngredientRecipe{IngredientID: item.ID, Amount: item.Amount})
	}
	return tags, items, nil
}

// present reloads a recipe with its relations and maps it to the read view.
func (s *recipeService) present(ctx context.Context, recipeID, viewerID uint) (*view.RecipeView, error) {
	recipe, err := s.findRecipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	flags, err := s.viewerFlags(ctx, viewerID, recipe)
	if err != nil {
		return nil, err
	}
	v := view.NewRecipeView(*recipe, flags)
	return &v, nil
}

func (s *recipeService) viewerFlags(ctx context.Context, viewerID uint, recipe *model.Recipe) (view.ViewerFlags, error) {
	if viewerID == 0 {
		return view.ViewerFlags{}, nil
	}

	favorited, err := s.relationRepo.FavoriteExists(ctx, viewerID, recipe.ID)
	if err != nil {
		return view.ViewerFlags{}, err
	}
	inCart, err := s.relationRepo.CartItemExists(ctx, viewerID, recipe.ID)
	if err != nil {
		return view.ViewerFlags{}, err
	}
	subscribed, err := s.relationRepo.FollowExists(ctx, viewerID, recipe.AuthorID)
	if err != nil {
		return view.ViewerFlags{}, err
	}
	return view.ViewerFlags{Favorited: favorited, InShoppingCart: inCart, SubscribedToAuthor: subscribed}, nil
}

func (s *recipeService) findRecipe(ctx context.Context, id uint) (*model.Recipe, error) {
	recipe, err := s.recipeRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRecipeNotFound
		}
		return nil, err
	}
	return recipe, nil
}

func (s *recipeService) storeImage(ctx context.Context, payload string) (string, error) {
	url, err := s.mediaStore.SaveBase64(ctx, payload, "recipes/images")
	if err != nil {
		if errors.Is(err, media.ErrInvalidImagePayload) {
			return "", apperrors.NewValidationError("image", err.Error())
		}
		return "", fmt.Errorf("store image: %w", err)
	}
	return url, nil
}

// generateShortURL draws random tokens until one is collision-free.
func (s *recipeService) generateShortURL(ctx context.Context) (string, error) {
	for i := 0; i < shortURLMaxAttempts; i++ {
		token := uuid.New().String()[:model.ShortURLLength]
		exists, err := s.recipeRepo.ShortURLExists(ctx, token)
		if err != nil {
			return "", fmt.Errorf("check short url: %w", err)
		}
		if !exists {
			return token, nil
		}
	}
	return "", fmt.Errorf("could not generate a unique short url after %d attempts", shortURLMaxAttempts)
}

func hasDuplicates(ids []uint) bool {
	seen := make(map[uint]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return true
		}
		seen[id] = true
	}
	return false
}
