package statemachine

import (
	"errors"
	"fmt"
	"strings"

	"phone-order-api/models"
)

var (
	ErrInvalidTransition = errors.New("invalid transition")
	ErrUnknownStatus     = errors.New("unknown order status")
)

// Transition defines a valid state change and the staff action that performs it
type Transition struct {
	From   models.OrderStatus `json:"from"`
	To     models.OrderStatus `json:"to"`
	Action string             `json:"action"`
}

// validTransitions is the authoritative state machine definition
var validTransitions = []Transition{
	{From: models.StatusPending, To: models.StatusConfirmed, Action: "confirm"},
	{From: models.StatusPending, To: models.StatusCancelled, Action: "cancel"},
	// A confirmed order can still be cancelled before the kitchen starts
	{From: models.StatusConfirmed, To: models.StatusPreparing, Action: "start preparing"},
	{From: models.StatusConfirmed, To: models.StatusCancelled, Action: "cancel"},
	{From: models.StatusPreparing, To: models.StatusReady, Action: "mark ready"},
	{From: models.StatusReady, To: models.StatusDelivered, Action: "hand over"},
}

var allStatuses = []models.OrderStatus{
	models.StatusPending,
	models.StatusConfirmed,
	models.StatusPreparing,
	models.StatusReady,
	models.StatusDelivered,
	models.StatusCancelled,
}

type transitionKey struct {
	From models.OrderStatus
	To   models.OrderStatus
}

var transitionMap = func() map[transitionKey]bool {
	m := make(map[transitionKey]bool)
	for _, t := range validTransitions {
		m[transitionKey{t.From, t.To}] = true
	}
	return m
}()

// ParseStatus accepts a status name in any letter case.
func ParseStatus(s string) (models.OrderStatus, error) {
	status := models.OrderStatus(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range allStatuses {
		if status == known {
			return status, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}

// ValidTransitionsFrom returns all valid next states from a given state
func ValidTransitionsFrom(status models.OrderStatus) []models.OrderStatus {
	nexts := []models.OrderStatus{}
	for _, t := range validTransitions {
		if t.From == status {
			nexts = append(nexts, t.To)
		}
	}
	return nexts
}

// IsTerminal reports whether no transition leaves the status.
func IsTerminal(status models.OrderStatus) bool {
	return status == models.StatusDelivered || status == models.StatusCancelled
}

// CanTransition checks whether an order may move from one state to another
func CanTransition(from, to models.OrderStatus) error {
	if transitionMap[transitionKey{From: from, To: to}] {
		return nil
	}
	return fmt.Errorf("%w: %s → %s is not allowed; valid transitions from %s are: %s",
		ErrInvalidTransition, from, to, from, describeValidFrom(from))
}

func describeValidFrom(status models.OrderStatus) string {
	nexts := ValidTransitionsFrom(status)
	if len(nexts) == 0 {
		return "none (terminal state)"
	}
	names := make([]string, len(nexts))
	for i, s := range nexts {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

// GetAllTransitions returns the full state machine for documentation
func GetAllTransitions() []Transition {
	out := make([]Transition, len(validTransitions))
	copy(out, validTransitions)
	return out
}

// TerminalStatuses lists the states no order leaves.
func TerminalStatuses() []models.OrderStatus {
	return []models.OrderStatus{models.StatusDelivered, models.StatusCancelled}
}
