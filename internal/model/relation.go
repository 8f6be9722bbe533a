package model

// Follow is a user->author subscription. Self-follows are rejected before
// the write; the unique pair index guards concurrent duplicates.
type Follow struct {
	ID          uint `json:"id" gorm:"primaryKey"`
	UserID      uint `json:"user_id" gorm:"not null;uniqueIndex:idx_user_following"`
	FollowingID uint `json:"following_id" gorm:"not null;uniqueIndex:idx_user_following"`

	User      UserProfile `json:"-" gorm:"foreignKey:UserID"`
	Following UserProfile `json:"-" gorm:"foreignKey:FollowingID"`
}

// Favorite bookmarks a recipe for a user.
type Favorite struct {
	ID       uint `json:"id" gorm:"primaryKey"`
	UserID   uint `json:"user_id" gorm:"not null;uniqueIndex:idx_user_favorite_recipe"`
	RecipeID uint `json:"recipe_id" gorm:"not null;uniqueIndex:idx_user_favorite_recipe"`

	User   UserProfile `json:"-" gorm:"foreignKey:UserID"`
	Recipe Recipe      `json:"-" gorm:"foreignKey:RecipeID"`
}

// ShoppingListItem marks a recipe as present in a user's cart.
type ShoppingListItem struct {
	ID       uint `json:"id" gorm:"primaryKey"`
	UserID   uint `json:"user_id" gorm:"not null;uniqueIndex:idx_user_cart_recipe"`
	RecipeID uint `json:"recipe_id" gorm:"not null;uniqueIndex:idx_user_cart_recipe"`

	User   UserProfile `json:"-" gorm:"foreignKey:UserID"`
	Recipe Recipe      `json:"-" gorm:"foreignKey:RecipeID"`
}
