package repository

import (
	"context"

	"gorm.io/gorm"

	"foodgram/internal/model"
)

// UserRepository defines user profile persistence operations.
type UserRepository interface {
	Create(ctx context.Context, user *model.UserProfile) error
	Update(ctx context.Context, user *model.UserProfile) error
	FindByID(ctx context.Context, id uint) (*model.UserProfile, error)
	FindByEmail(ctx context.Context, email string) (*model.UserProfile, error)
	FindByUsername(ctx context.Context, username string) (*model.UserProfile, error)
	List(ctx context.Context, offset, limit int) ([]model.UserProfile, int64, error)
	Delete(ctx context.Context, id uint) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.UserProfile) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) Update(ctx context.Context, user *model.UserProfile) error {
	return r.db.WithContext(ctx).Omit("Recipes").Save(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*model.UserProfile, error) {
	var user model.UserProfile
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.UserProfile, error) {
	var user model.UserProfile
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*model.UserProfile, error) {
	var user model.UserProfile
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context, offset, limit int) ([]model.UserProfile, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.UserProfile{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []model.UserProfile
	err := r.db.WithContext(ctx).
		Order("id").
		Offset(offset).Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// Delete removes a user together with everything hanging off it: follows in
// both directions, the user's relation rows, the user's recipes and their
// junction rows. One transaction, explicit cascade order.
func (r *userRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ownRecipes := tx.Model(&model.Recipe{}).Select("id").Where("author_id = ?", id)

		if err := tx.Where("recipe_id IN (?)", ownRecipes).Delete(&model.IngredientRecipe{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id IN (?)", ownRecipes).Delete(&model.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id IN (?)", ownRecipes).Delete(&model.ShoppingListItem{}).Error; err != nil {
			return err
		}
		if err := tx.Exec(
			"DELETE FROM recipe_tags WHERE recipe_id IN (SELECT id FROM recipes WHERE author_id = ?)", id,
		).Error; err != nil {
			return err
		}
		if err := tx.Where("author_id = ?", id).Delete(&model.Recipe{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ? OR following_id = ?", id, id).Delete(&model.Follow{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&model.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&model.ShoppingListItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.UserProfile{}, id).Error
	})
}
