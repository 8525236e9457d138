package models

import "time"

// Restaurant is the single settings record. IsActive gates new orders.
type Restaurant struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"not null"`
	Address      string    `json:"address" gorm:"not null"`
	Phone        string    `json:"phone" gorm:"not null"`
	Email        string    `json:"email"`
	OpeningHours string    `json:"opening_hours"`
	IsActive     bool      `json:"is_active" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
