package model

// Ingredient is reference data. The (name, measurement_unit) pair is not
// globally unique: the same name may exist with several units.
type Ingredient struct {
	ID              uint   `json:"id" gorm:"primaryKey"`
	Name            string `json:"name" gorm:"size:128;not null;index"`
	MeasurementUnit string `json:"measurement_unit" gorm:"size:64;not null"`
}
