package models

import (
	"time"

	"phone-order-api/pricing"
)

// OrderStatus represents the states an order moves through from intake to pickup
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

// DefaultPreparationMinutes is applied when an order is confirmed without a time.
const DefaultPreparationMinutes = 30

type Order struct {
	ID                       uint                 `json:"id" gorm:"primaryKey"`
	CustomerID               *uint                `json:"customer_id" gorm:"index"`
	CustomerName             string               `json:"customer_name" gorm:"not null"`
	CustomerPhone            string               `json:"customer_phone" gorm:"not null;index"`
	Items                    []OrderItem          `json:"order_items" gorm:"foreignKey:OrderID"`
	TotalAmount              float64              `json:"total_amount"`
	Status                   OrderStatus          `json:"status" gorm:"not null;default:'pending';index"`
	EstimatedPreparationTime *int                 `json:"estimated_preparation_time"`
	PaymentMethod            string               `json:"payment_method,omitempty"`
	SpecialInstructions      string               `json:"special_instructions,omitempty"`
	StatusHistory            []OrderStatusHistory `json:"status_history,omitempty" gorm:"foreignKey:OrderID"`
	CreatedAt                time.Time            `json:"created_at"`
	UpdatedAt                time.Time            `json:"updated_at"`
}

// Reprice recomputes every line and the order total.
func (o *Order) Reprice() error {
	totals := make([]float64, len(o.Items))
	for i := range o.Items {
		if err := o.Items[i].Reprice(); err != nil {
			return err
		}
		totals[i] = o.Items[i].TotalPrice
	}
	total, err := pricing.Sum(totals...)
	if err != nil {
		return err
	}
	o.TotalAmount = total
	return nil
}

// OrderItem is a snapshot of a menu item at the time the order was taken.
type OrderItem struct {
	ID         uint            `json:"id" gorm:"primaryKey"`
	OrderID    uint            `json:"-" gorm:"not null;index"`
	MenuItemID uint            `json:"menu_item_id" gorm:"not null"`
	Name       string          `json:"name"`
	Quantity   int             `json:"quantity" gorm:"not null"`
	BasePrice  float64         `json:"base_price" gorm:"not null"`
	AddOns     []AddOnSnapshot `json:"add_ons" gorm:"serializer:json"`
	TotalPrice float64         `json:"total_price"`
}

// Reprice sets TotalPrice from quantity, base price and add-ons. On error
// TotalPrice is left as it was.
func (i *OrderItem) Reprice() error {
	prices := make([]float64, len(i.AddOns))
	for n, a := range i.AddOns {
		prices[n] = a.Price
	}
	total, err := pricing.LineTotal(i.BasePrice, i.Quantity, prices)
	if err != nil {
		return err
	}
	i.TotalPrice = total
	return nil
}

type AddOnSnapshot struct {
	ID    uint    `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// OrderStatusHistory tracks every status change
type OrderStatusHistory struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	OrderID    uint        `json:"order_id" gorm:"not null;index"`
	FromStatus OrderStatus `json:"from_status"`
	ToStatus   OrderStatus `json:"to_status" gorm:"not null"`
	ChangedBy  uint        `json:"changed_by"` // user ID who triggered the transition
	Note       string      `json:"note"`
	CreatedAt  time.Time   `json:"created_at"`
}
