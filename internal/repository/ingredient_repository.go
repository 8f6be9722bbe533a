package repository

import (
	"context"

	"gorm.io/gorm"

	"foodgram/internal/model"
)

// IngredientRepository defines ingredient persistence operations.
type IngredientRepository interface {
	Create(ctx context.Context, ingredient *model.Ingredient) error
	CreateBatch(ctx context.Context, ingredients []model.Ingredient) error
	FindByID(ctx context.Context, id uint) (*model.Ingredient, error)
	FindByIDs(ctx context.Context, ids []uint) ([]model.Ingredient, error)
	// List returns ingredients, optionally restricted to a case-insensitive
	// name prefix, ordered by name.
	List(ctx context.Context, namePrefix string) ([]model.Ingredient, error)
	ExistsByNameAndUnit(ctx context.Context, name, unit string) (bool, error)
}

type ingredientRepository struct {
	db *gorm.DB
}

// NewIngredientRepository creates a new ingredient repository.
func NewIngredientRepository(db *gorm.DB) IngredientRepository {
	return &ingredientRepository{db: db}
}

func (r *ingredientRepository) Create(ctx context.Context, ingredient *model.Ingredient) error {
	return r.db.WithContext(ctx).Create(ingredient).Error
}

func (r *ingredientRepository) CreateBatch(ctx context.Context, ingredients []model.Ingredient) error {
	if len(ingredients) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(ingredients, 100).Error
}

func (r *ingredientRepository) FindByID(ctx context.Context, id uint) (*model.Ingredient, error) {
	var ingredient model.Ingredient
	if err := r.db.WithContext(ctx).First(&ingredient, id).Error; err != nil {
		return nil, err
	}
	return &ingredient, nil
}

func (r *ingredientRepository) FindByIDs(ctx context.Context, ids []uint) ([]model.Ingredient, error) {
	var ingredients []model.Ingredient
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&ingredients).Error; err != nil {
		return nil, err
	}
	return ingredients, nil
}

func (r *ingredientRepository) List(ctx context.Context, namePrefix string) ([]model.Ingredient, error) {
	q := r.db.WithContext(ctx).Order("name")
	if namePrefix != "" {
		// MySQL LIKE is case-insensitive under the default collation.
		q = q.Where("name LIKE ?", namePrefix+"%")
	}

	var ingredients []model.Ingredient
	if err := q.Find(&ingredients).Error; err != nil {
		return nil, err
	}
	return ingredients, nil
}

func (r *ingredientRepository) ExistsByNameAndUnit(ctx context.Context, name, unit string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Ingredient{}).
		Where("name = ? AND measurement_unit = ?", name, unit).
		Count(&count).Error
	return count > 0, err
}
