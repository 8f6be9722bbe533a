package repository

import (
	"context"

	"gorm.io/gorm"

	"foodgram/internal/model"
)

// ShoppingListRow is one aggregated line of a shopping list: the total
// amount of an ingredient across every recipe in a user's cart, grouped by
// (name, measurement unit).
type ShoppingListRow struct {
	Name            string
	MeasurementUnit string
	TotalAmount     int
}

// RelationRepository persists the boolean user relations: follows,
// favorites and shopping cart membership. Delete methods report how many
// rows went away so the caller can distinguish "removed" from "was absent".
type RelationRepository interface {
	CreateFollow(ctx context.Context, userID, followingID uint) error
	DeleteFollow(ctx context.Context, userID, followingID uint) (int64, error)
	FollowExists(ctx context.Context, userID, followingID uint) (bool, error)
	ListFollowing(ctx context.Context, userID uint, offset, limit int) ([]model.UserProfile, int64, error)

	CreateFavorite(ctx context.Context, userID, recipeID uint) error
	DeleteFavorite(ctx context.Context, userID, recipeID uint) (int64, error)
	FavoriteExists(ctx context.Context, userID, recipeID uint) (bool, error)

	CreateCartItem(ctx context.Context, userID, recipeID uint) error
	DeleteCartItem(ctx context.Context, userID, recipeID uint) (int64, error)
	CartItemExists(ctx context.Context, userID, recipeID uint) (bool, error)

	AggregateShoppingList(ctx context.Context, userID uint) ([]ShoppingListRow, error)
}

type relationRepository struct {
	db *gorm.DB
}

// NewRelationRepository creates a new relation repository.
func NewRelationRepository(db *gorm.DB) RelationRepository {
	return &relationRepository{db: db}
}

func (r *relationRepository) CreateFollow(ctx context.Context, userID, followingID uint) error {
	return r.db.WithContext(ctx).Create(&model.Follow{UserID: userID, FollowingID: followingID}).Error
}

func (r *relationRepository) DeleteFollow(ctx context.Context, userID, followingID uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND following_id = ?", userID, followingID).
		Delete(&model.Follow{})
	return res.RowsAffected, res.Error
}

func (r *relationRepository) FollowExists(ctx context.Context, userID, followingID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Follow{}).
		Where("user_id = ? AND following_id = ?", userID, followingID).
		Count(&count).Error
	return count > 0, err
}

func (r *relationRepository) ListFollowing(ctx context.Context, userID uint, offset, limit int) ([]model.UserProfile, int64, error) {
	base := r.db.WithContext(ctx).Model(&model.UserProfile{}).
		Joins("JOIN follows ON follows.following_id = user_profiles.id").
		Where("follows.user_id = ?", userID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []model.UserProfile
	err := base.Order("user_profiles.id").
		Offset(offset).Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *relationRepository) CreateFavorite(ctx context.Context, userID, recipeID uint) error {
	return r.db.WithContext(ctx).Create(&model.Favorite{UserID: userID, RecipeID: recipeID}).Error
}

func (r *relationRepository) DeleteFavorite(ctx context.Context, userID, recipeID uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&model.Favorite{})
	return res.RowsAffected, res.Error
}

func (r *relationRepository) FavoriteExists(ctx context.Context, userID, recipeID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Favorite{}).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error
	return count > 0, err
}

func (r *relationRepository) CreateCartItem(ctx context.Context, userID, recipeID uint) error {
	return r.db.WithContext(ctx).Create(&model.ShoppingListItem{UserID: userID, RecipeID: recipeID}).Error
}

func (r *relationRepository) DeleteCartItem(ctx context.Context, userID, recipeID uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&model.ShoppingListItem{})
	return res.RowsAffected, res.Error
}

func (r *relationRepository) CartItemExists(ctx context.Context, userID, recipeID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.ShoppingListItem{}).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error
	return count > 0, err
}

// AggregateShoppingList sums ingredient amounts across every recipe in the
// user's cart, grouped by ingredient name and unit, ordered by name.
func (r *relationRepository) AggregateShoppingList(ctx context.Context, userID uint) ([]ShoppingListRow, error) {
	var rows []ShoppingListRow
	err := r.db.WithContext(ctx).
		Table("ingredient_recipes").
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, SUM(ingredient_recipes.amount) AS total_amount").
		Joins("JOIN ingredients ON ingredients.id = ingredient_recipes.ingredient_id").
		Joins("JOIN shopping_list_items ON shopping_list_items.recipe_id = ingredient_recipes.recipe_id").
		Where("shopping_list_items.user_id = ?", userID).
		Group("ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
