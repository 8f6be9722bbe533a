package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	apperrors "foodgram/internal/errors"
	"foodgram/internal/model"
	"foodgram/internal/repository"
	"foodgram/internal/view"
)

// SocialService manages the boolean user relations: follows, favorites and
// cart membership. Each relation is a two-state machine (absent/present);
// creating an existing relation or deleting an absent one is rejected with
// a readable reason.
type SocialService interface {
	Follow(ctx context.Context, userID, targetID uint, recipesLimit int) (*view.SubscriptionView, error)
	Unfollow(ctx context.Context, userID, targetID uint) error
	ListSubscriptions(ctx context.Context, userID uint, recipesLimit, offset, limit int) ([]view.SubscriptionView, int64, error)

	Favorite(ctx context.Context, userID, recipeID uint) (*view.RecipeShortView, error)
	Unfavorite(ctx context.Context, userID, recipeID uint) error

	CartAdd(ctx context.Context, userID, recipeID uint) (*view.RecipeShortView, error)
	CartRemove(ctx context.Context, userID, recipeID uint) error
}

type socialService struct {
	userRepo     repository.UserRepository
	recipeRepo   repository.RecipeRepository
	relationRepo repository.RelationRepository
}

// NewSocialService creates a new social service.
func NewSocialService(
	userRepo repository.UserRepository,
	recipeRepo repository.RecipeRepository,
	relationRepo repository.RelationRepository,
) SocialService {
	return &socialService{
		userRepo:     userRepo,
		recipeRepo:   recipeRepo,
		relationRepo: relationRepo,
	}
}

// Follow subscribes userID to targetID and returns the target's profile
// enriched with recipe previews. Self-follows and duplicates are rejected
// before any write; a concurrent duplicate surfaces as the same rejection
// via the unique constraint.
func (s *socialService) Follow(ctx context.Context, userID, targetID uint, recipesLimit int) (*view.SubscriptionView, error) {
	if userID == targetID {
		return nil, apperrors.ErrSelfFollow
	}

	target, err := s.findUser(ctx, targetID)
	if err != nil {
		return nil, err
	}

	exists, err := s.relationRepo.FollowExists(ctx, userID, targetID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.ErrAlreadyFollowing
	}

	if err := s.relationRepo.CreateFollow(ctx, userID, targetID); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrAlreadyFollowing
		}
		return nil, fmt.Errorf("create follow: %w", err)
	}

	return s.subscriptionView(ctx, *target, recipesLimit)
}

// Unfollow removes the subscription; absent relations are rejected.
func (s *socialService) Unfollow(ctx context.Context, userID, targetID uint) error {
	if _, err := s.findUser(ctx, targetID); err != nil {
		return err
	}

	deleted, err := s.relationRepo.DeleteFollow(ctx, userID, targetID)
	if err != nil {
		return fmt.Errorf("delete follow: %w", err)
	}
	if deleted == 0 {
		return apperrors.ErrNotFollowing
	}
	return nil
}

// ListSubscriptions returns every profile the user follows, each enriched
// with recipe previews and a recipe count.
func (s *socialService) ListSubscriptions(ctx context.Context, userID uint, recipesLimit, offset, limit int) ([]view.SubscriptionView, int64, error) {
	authors, total, err := s.relationRepo.ListFollowing(ctx, userID, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list subscriptions: %w", err)
	}

	views := make([]view.SubscriptionView, 0, len(authors))
	for _, author := range authors {
		sub, err := s.subscriptionView(ctx, author, recipesLimit)
		if err != nil {
			return nil, 0, err
		}
		views = append(views, *sub)
	}
	return views, total, nil
}

// Favorite bookmarks a recipe and returns its short view.
func (s *socialService) Favorite(ctx context.Context, userID, recipeID uint) (*view.RecipeShortView, error) {
	return s.addRecipeRelation(ctx, userID, recipeID,
		s.relationRepo.FavoriteExists, s.relationRepo.CreateFavorite, apperrors.ErrAlreadyFavorited)
}

// Unfavorite removes a bookmark; absent relations are rejected.
func (s *socialService) Unfavorite(ctx context.Context, userID, recipeID uint) error {
	return s.removeRecipeRelation(ctx, userID, recipeID, s.relationRepo.DeleteFavorite, apperrors.ErrNotFavorited)
}

// CartAdd puts a recipe into the user's shopping cart and returns its short view.
func (s *socialService) CartAdd(ctx context.Context, userID, recipeID uint) (*view.RecipeShortView, error) {
	return s.addRecipeRelation(ctx, userID, recipeID,
		s.relationRepo.CartItemExists, s.relationRepo.CreateCartItem, apperrors.ErrAlreadyInCart)
}

// CartRemove takes a recipe out of the cart; absent relations are rejected.
func (s *socialService) CartRemove(ctx context.Context, userID, recipeID uint) error {
	return s.removeRecipeRelation(ctx, userID, recipeID, s.relationRepo.DeleteCartItem, apperrors.ErrNotInCart)
}

func (s *socialService) addRecipeRelation(
	ctx context.Context,
	userID, recipeID uint,
	exists func(context.Context, uint, uint) (bool, error),
	create func(context.Context, uint, uint) error,
	conflict error,
) (*view.RecipeShortView, error) {
	recipe, err := s.recipeRepo.FindByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRecipeNotFound
		}
		return nil, err
	}

	present, err := exists(ctx, userID, recipeID)
	if err != nil {
		return nil, err
	}
	if present {
		return nil, conflict
	}

	if err := create(ctx, userID, recipeID); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, conflict
		}
		return nil, fmt.Errorf("create relation: %w", err)
	}

	short := view.NewRecipeShortView(*recipe)
	return &short, nil
}

func (s *socialService) removeRecipeRelation(
	ctx context.Context,
	userID, recipeID uint,
	remove func(context.Context, uint, uint) (int64, error),
	absent error,
) error {
	if _, err := s.recipeRepo.FindByID(ctx, recipeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrRecipeNotFound
		}
		return err
	}

	deleted, err := remove(ctx, userID, recipeID)
	if err != nil {
		return fmt.Errorf("delete relation: %w", err)
	}
	if deleted == 0 {
		return absent
	}
	return nil
}

func (s *socialService) subscriptionView(ctx context.Context, author model.UserProfile, recipesLimit int) (*view.SubscriptionView, error) {
	recipes, err := s.recipeRepo.ListByAuthor(ctx, author.ID, recipesLimit)
	if err != nil {
		return nil, fmt.Errorf("list author recipes: %w", err)
	}
	count, err := s.recipeRepo.CountByAuthor(ctx, author.ID)
	if err != nil {
		return nil, fmt.Errorf("count author recipes: %w", err)
	}

	sub := view.NewSubscriptionView(author, recipes, count, true)
	return &sub, nil
}

func (s *socialService) findUser(ctx context.Context, id uint) (*model.UserProfile, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
