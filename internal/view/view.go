// Package view shapes entities into API read views. Every function here is
// a pure projection: it takes already-loaded entities plus viewer-relative
// flags and returns a plain response structure. Anonymous viewers are fine;
// their flags are simply false.
package view

import "foodgram/internal/model"

// TagView is the read view of a tag.
type TagView struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// IngredientView is the read view of reference ingredient data.
type IngredientView struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

// RecipeIngredientView is an ingredient as used by a recipe, amount included.
type RecipeIngredientView struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

// ProfileView is the read view of a user profile.
type ProfileView struct {
	ID           uint   `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsSubscribed bool   `json:"is_subscribed"`
	Avatar       string `json:"avatar,omitempty"`
}

// RecipeView is the full read view of a recipe.
type RecipeView struct {
	ID               uint                   `json:"id"`
	Tags             []TagView              `json:"tags"`
	Author           ProfileView            `json:"author"`
	Ingredients      []RecipeIngredientView `json:"ingredients"`
	IsFavorited      bool                   `json:"is_favorited"`
	IsInShoppingCart bool                   `json:"is_in_shopping_cart"`
	Name             string                 `json:"name"`
	Image            string                 `json:"image"`
	Text             string                 `json:"text"`
	CookingTime      int                    `json:"cooking_time"`
}

// RecipeShortView is the compact recipe view returned by relation actions
// and embedded in subscription listings.
type RecipeShortView struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

// SubscriptionView is a followed author's profile enriched with recipe
// previews and a total recipe count.
type SubscriptionView struct {
	ProfileView
	Recipes      []RecipeShortView `json:"recipes"`
	RecipesCount int64             `json:"recipes_count"`
}

// ViewerFlags carries the viewer-relative booleans of a single recipe.
type ViewerFlags struct {
	Favorited          bool
	InShoppingCart     bool
	SubscribedToAuthor bool
}

// NewTagView maps a tag.
func NewTagView(t model.Tag) TagView {
	return TagView{ID: t.ID, Name: t.Name, Slug: t.Slug}
}

// NewIngredientView maps an ingredient.
func NewIngredientView(i model.Ingredient) IngredientView {
	return IngredientView{ID: i.ID, Name: i.Name, MeasurementUnit: i.MeasurementUnit}
}

// NewProfileView maps a user profile with the viewer's subscription flag.
func NewProfileView(u model.UserProfile, isSubscribed bool) ProfileView {
	return ProfileView{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: isSubscribed,
		Avatar:       u.Avatar,
	}
}

// NewRecipeView maps a recipe with its preloaded relations. The ingredient
// entries keep the ingredient's own id, not the junction row's.
func NewRecipeView(r model.Recipe, flags ViewerFlags) RecipeView {
	tags := make([]TagView, 0, len(r.Tags))
	for _, t := range r.Tags {
		tags = append(tags, NewTagView(t))
	}

	ingredients := make([]RecipeIngredientView, 0, len(r.RecipeIngredients))
	for _, ri := range r.RecipeIngredients {
		ingredients = append(ingredients, RecipeIngredientView{
			ID:              ri.Ingredient.ID,
			Name:            ri.Ingredient.Name,
			MeasurementUnit: ri.Ingredient.MeasurementUnit,
			Amount:          ri.Amount,
		})
	}

	return RecipeView{
		ID:               r.ID,
		Tags:             tags,
		Author:           NewProfileView(r.Author, flags.SubscribedToAuthor),
		Ingredients:      ingredients,
		IsFavorited:      flags.Favorited,
		IsInShoppingCart: flags.InShoppingCart,
		Name:             r.Name,
		Image:            r.Image,
		Text:             r.Text,
		CookingTime:      r.CookingTime,
	}
}

// NewRecipeShortView maps the compact recipe preview.
func NewRecipeShortView(r model.Recipe) RecipeShortView {
	return RecipeShortView{ID: r.ID, Name: r.Name, Image: r.Image, CookingTime: r.CookingTime}
}

// NewSubscriptionView maps a followed profile with its recipe previews.
func NewSubscriptionView(u model.UserProfile, recipes []model.Recipe, total int64, isSubscribed bool) SubscriptionView {
	previews := make([]RecipeShortView, 0, len(recipes))
	for _, r := range recipes {
		previews = append(previews, NewRecipeShortView(r))
	}
	return SubscriptionView{
		ProfileView:  NewProfileView(u, isSubscribed),
		Recipes:      previews,
		RecipesCount: total,
	}
}
