package models

import "time"

type MenuItem struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"not null"`
	Category    string    `json:"category" gorm:"not null;index"`
	BasePrice   float64   `json:"base_price" gorm:"not null"`
	Description string    `json:"description"`
	IsAvailable bool      `json:"is_available" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AddOn is offered for every menu item of the same category.
type AddOn struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"not null"`
	Category    string    `json:"category" gorm:"not null;index"`
	Type        string    `json:"type"` // topping, size, drink...
	Price       float64   `json:"price" gorm:"not null"`
	IsAvailable bool      `json:"is_available" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (a AddOn) Snapshot() AddOnSnapshot {
	return AddOnSnapshot{ID: a.ID, Name: a.Name, Price: a.Price}
}
