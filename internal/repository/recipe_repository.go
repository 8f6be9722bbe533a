package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"foodgram/internal/model"
)

// RecipeListFilter narrows the recipe list query. Zero values mean "no
// filter". Favorited/InCart are only meaningful with a non-zero ViewerID;
// the anonymous-viewer short circuit happens in the service.
type RecipeListFilter struct {
	TagSlugs  []string
	AuthorID  uint
	ViewerID  uint
	Favorited *bool
	InCart    *bool
}

// RecipeRepository defines recipe persistence operations. Create, Update and
// Delete run their multi-statement writes in one transaction so readers never
// observe a recipe with a partially replaced tag or ingredient set.
type RecipeRepository interface {
	Create(ctx context.Context, recipe *model.Recipe, tags []model.Tag, items []model.IngredientRecipe) error
	Update(ctx context.Context, recipe *model.Recipe, tags []model.Tag, items []model.IngredientRecipe) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*model.Recipe, error)
	FindByShortURL(ctx context.Context, token string) (*model.Recipe, error)
	List(ctx context.Context, filter RecipeListFilter, offset, limit int) ([]model.Recipe, int64, error)
	ListByAuthor(ctx context.Context, authorID uint, limit int) ([]model.Recipe, error)
	CountByAuthor(ctx context.Context, authorID uint) (int64, error)
	ExistsByAuthorAndName(ctx context.Context, authorID uint, name string, excludeID uint) (bool, error)
	ShortURLExists(ctx context.Context, token string) (bool, error)
	SetShortURL(ctx context.Context, id uint, token string) error
}

type recipeRepository struct {
	db *gorm.DB
}

// NewRecipeRepository creates a new recipe repository.
func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{db: db}
}

// Create persists the recipe row, its tag set and its ingredient rows
// atomically.
func (r *recipeRepository) Create(ctx context.Context, recipe *model.Recipe, tags []model.Tag, items []model.IngredientRecipe) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(recipe).Error; err != nil {
			return err
		}
		if err := tx.Model(recipe).Association("Tags").Replace(&tags); err != nil {
			return err
		}
		for i := range items {
			items[i].RecipeID = recipe.ID
		}
		return tx.CreateInBatches(&items, 100).Error
	})
}

// Update applies scalar changes and replaces the tag and ingredient sets
// wholesale. Not a diff: existing junction rows are deleted and the new set
// is inserted, all-or-nothing.
func (r *recipeRepository) Update(ctx context.Context, recipe *model.Recipe, tags []model.Tag, items []model.IngredientRecipe) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(recipe).Error; err != nil {
			return err
		}
		if err := tx.Model(recipe).Association("Tags").Replace(&tags); err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&model.IngredientRecipe{}).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].ID = 0
			items[i].RecipeID = recipe.ID
		}
		return tx.CreateInBatches(&items, 100).Error
	})
}

// Delete removes the recipe and, explicitly and first, every row referencing
// it: ingredient rows, tag links, favorites and cart entries.
func (r *recipeRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", id).Delete(&model.IngredientRecipe{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&model.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&model.ShoppingListItem{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM recipe_tags WHERE recipe_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Recipe{}, id).Error
	})
}

func (r *recipeRepository) FindByID(ctx context.Context, id uint) (*model.Recipe, error) {
	var recipe model.Recipe
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Tags").
		Preload("RecipeIngredients.Ingredient").
		First(&recipe, id).Error
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (r *recipeRepository) FindByShortURL(ctx context.Context, token string) (*model.Recipe, error) {
	var recipe model.Recipe
	if err := r.db.WithContext(ctx).Where("short_url = ?", token).First(&recipe).Error; err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (r *recipeRepository) List(ctx context.Context, filter RecipeListFilter, offset, limit int) ([]model.Recipe, int64, error) {
	q := r.listQuery(ctx, filter)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var recipes []model.Recipe
	err := q.Order("recipes.pub_date DESC").
		Offset(offset).Limit(limit).
		Preload("Author").
		Preload("Tags").
		Preload("RecipeIngredients.Ingredient").
		Find(&recipes).Error
	if err != nil {
		return nil, 0, err
	}
	return recipes, total, nil
}

// listQuery applies every filter as a WHERE clause on the recipes table.
// Set-valued filters use IN subqueries rather than joins so the same builder
// works for both Count and Find without DISTINCT.
func (r *recipeRepository) listQuery(ctx context.Context, filter RecipeListFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&model.Recipe{})

	if len(filter.TagSlugs) > 0 {
		sub := r.db.Table("recipe_tags").
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", filter.TagSlugs)
		q = q.Where("recipes.id IN (?)", sub)
	}
	if filter.AuthorID != 0 {
		q = q.Where("recipes.author_id = ?", filter.AuthorID)
	}
	if filter.Favorited != nil && filter.ViewerID != 0 {
		sub := r.db.Model(&model.Favorite{}).Select("recipe_id").Where("user_id = ?", filter.ViewerID)
		if *filter.Favorited {
			q = q.Where("recipes.id IN (?)", sub)
		} else {
			q = q.Where("recipes.id NOT IN (?)", sub)
		}
	}
	if filter.InCart != nil && filter.ViewerID != 0 {
		sub := r.db.Model(&model.ShoppingListItem{}).Select("recipe_id").Where("user_id = ?", filter.ViewerID)
		if *filter.InCart {
			q = q.Where("recipes.id IN (?)", sub)
		} else {
			q = q.Where("recipes.id NOT IN (?)", sub)
		}
	}

	return q
}

func (r *recipeRepository) ListByAuthor(ctx context.Context, authorID uint, limit int) ([]model.Recipe, error) {
	q := r.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("pub_date DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var recipes []model.Recipe
	if err := q.Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}

func (r *recipeRepository) CountByAuthor(ctx context.Context, authorID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Recipe{}).
		Where("author_id = ?", authorID).
		Count(&count).Error
	return count, err
}

func (r *recipeRepository) ExistsByAuthorAndName(ctx context.Context, authorID uint, name string, excludeID uint) (bool, error) {
	q := r.db.WithContext(ctx).Model(&model.Recipe{}).
		Where("author_id = ? AND name = ?", authorID, name)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *recipeRepository) ShortURLExists(ctx context.Context, token string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Recipe{}).
		Where("short_url = ?", token).
		Count(&count).Error
	return count > 0, err
}

func (r *recipeRepository) SetShortURL(ctx context.Context, id uint, token string) error {
	return r.db.WithContext(ctx).Model(&model.Recipe{}).
		Where("id = ?", id).
		Update("short_url", token).Error
}
