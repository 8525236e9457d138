package models

import "time"

type Customer struct {
	ID                     uint       `json:"id" gorm:"primaryKey"`
	Name                   string     `json:"name" gorm:"not null"`
	Phone                  string     `json:"phone" gorm:"uniqueIndex;not null"`
	Email                  string     `json:"email"`
	PreferredPaymentMethod string     `json:"preferred_payment_method"`
	DietaryPreferences     string     `json:"dietary_preferences"`
	LastOrderDate          *time.Time `json:"last_order_date"`
	TotalOrders            int        `json:"total_orders" gorm:"not null;default:0"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
}
