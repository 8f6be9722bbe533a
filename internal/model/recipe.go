package model

import "time"

// Recipe belongs to exactly one author. The name is unique within that
// author's recipes, the short URL token is unique globally.
type Recipe struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	AuthorID    uint      `json:"author_id" gorm:"not null;index;uniqueIndex:idx_author_recipe_name"`
	Name        string    `json:"name" gorm:"size:256;not null;uniqueIndex:idx_author_recipe_name"`
	Image       string    `json:"image" gorm:"size:512"`
	Text        string    `json:"text" gorm:"type:text;not null"`
	CookingTime int       `json:"cooking_time" gorm:"not null"`
	ShortURL    string    `json:"-" gorm:"size:8;uniqueIndex"`
	PubDate     time.Time `json:"pub_date" gorm:"autoCreateTime;index"`
	UpdatedAt   time.Time `json:"-"`

	// Relations
	Author            UserProfile        `json:"-" gorm:"foreignKey:AuthorID"`
	Tags              []Tag              `json:"-" gorm:"many2many:recipe_tags"`
	RecipeIngredients []IngredientRecipe `json:"-" gorm:"foreignKey:RecipeID"`
}

// IngredientRecipe is the recipe<->ingredient junction carrying the amount.
// Rows are replaced wholesale on recipe update, never diffed.
type IngredientRecipe struct {
	ID           uint `json:"id" gorm:"primaryKey"`
	RecipeID     uint `json:"recipe_id" gorm:"not null;uniqueIndex:idx_recipe_ingredient"`
	IngredientID uint `json:"ingredient_id" gorm:"not null;uniqueIndex:idx_recipe_ingredient"`
	Amount       int  `json:"amount" gorm:"not null;default:1"`

	// Relations
	Recipe     Recipe     `json:"-" gorm:"foreignKey:RecipeID"`
	Ingredient Ingredient `json:"-" gorm:"foreignKey:IngredientID"`
}
