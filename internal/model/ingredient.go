package model

import "time"

// MinQuantity is the smallest quantity an ingredient may carry
const MinQuantity = 0.1

// Ingredient is a catalog ingredient. Name is stored lowercase and is unique
// across the catalog. An ID of zero means the ingredient is not persisted yet.
type Ingredient struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null;uniqueIndex" json:"name"`
	Quantity  float64   `gorm:"not null" json:"quantity"`
	Unit      string    `gorm:"size:64;not null" json:"unit"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (Ingredient) TableName() string {
	return "ingredients"
}

// Persisted reports whether the ingredient has a database identity
func (i Ingredient) Persisted() bool {
	return i.ID != 0
}
