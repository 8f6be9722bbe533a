package model

// Field bounds shared by storage constraints and request validation.
const (
	MinCookingTime = 1
	MaxCookingTime = 32000
	MinAmount      = 1
	MaxAmount      = 32000

	UsernameMaxLength       = 150
	EmailMaxLength          = 150
	RecipeNameMaxLength     = 256
	TagNameMaxLength        = 32
	TagSlugMaxLength        = 32
	IngredientNameMaxLength = 128
	MeasurementUnitMaxLen   = 64
	ShortURLLength          = 8
)
