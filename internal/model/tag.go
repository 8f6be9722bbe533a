package model

// Tag is admin-managed reference data attached to recipes.
type Tag struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"uniqueIndex;size:32;not null"`
	Slug string `json:"slug" gorm:"uniqueIndex;size:32;not null"`
}
