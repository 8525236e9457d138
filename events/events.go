// Package events carries order lifecycle notifications out of the request
// path: a RabbitMQ fan-out for live dashboards and SMS for customers.
package events

import (
	"context"
	"errors"
	"time"

	"phone-order-api/models"
)

const (
	TypeOrderCreated       = "order.created"
	TypeOrderStatusChanged = "order.status_changed"
	TypeOrderTimeUpdated   = "order.time_updated"
)

type Event interface {
	Type() string
}

type Dispatcher interface {
	Dispatch(ctx context.Context, event Event) error
}

type OrderCreated struct {
	OrderID       uint      `json:"order_id"`
	CustomerName  string    `json:"customer_name"`
	CustomerPhone string    `json:"customer_phone"`
	TotalAmount   float64   `json:"total_amount"`
	ItemCount     int       `json:"item_count"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func (OrderCreated) Type() string { return TypeOrderCreated }

type OrderStatusChanged struct {
	OrderID                  uint               `json:"order_id"`
	From                     models.OrderStatus `json:"from"`
	To                       models.OrderStatus `json:"to"`
	EstimatedPreparationTime *int               `json:"estimated_preparation_time,omitempty"`
	CustomerPhone            string             `json:"customer_phone"`
	RestaurantName           string             `json:"restaurant_name"`
	RestaurantAddress        string             `json:"restaurant_address"`
	ChangedBy                uint               `json:"changed_by"`
	OccurredAt               time.Time          `json:"occurred_at"`
}

func (OrderStatusChanged) Type() string { return TypeOrderStatusChanged }

type OrderTimeUpdated struct {
	OrderID        uint      `json:"order_id"`
	Minutes        int       `json:"minutes"`
	CustomerPhone  string    `json:"customer_phone"`
	RestaurantName string    `json:"restaurant_name"`
	ChangedBy      uint      `json:"changed_by"`
	OccurredAt     time.Time `json:"occurred_at"`
}

func (OrderTimeUpdated) Type() string { return TypeOrderTimeUpdated }

// Discard drops every event.
type Discard struct{}

func (Discard) Dispatch(context.Context, Event) error { return nil }

// Multi hands each event to every dispatcher, even when an earlier one fails.
type Multi []Dispatcher

func (m Multi) Dispatch(ctx context.Context, event Event) error {
	var errs []error
	for _, d := range m {
		if err := d.Dispatch(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Recorder keeps dispatched events in memory.
type Recorder struct {
	Events []Event
}

func (r *Recorder) Dispatch(_ context.Context, event Event) error {
	r.Events = append(r.Events, event)
	return nil
}

func (r *Recorder) Reset() { r.Events = nil }
