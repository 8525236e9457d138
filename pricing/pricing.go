// Package pricing holds the one formula used to price order lines.
//
// Amounts are carried as float64 dollars in the models, but every sum and
// product here is done in integer cents so that repeated recomputation is
// deterministic.
package pricing

import (
	"math"

	"github.com/pkg/errors"
)

// Limits accepted on a single line. The request binding tags use the same
// numbers.
const (
	MaxQuantity = 1000
	MaxPrice    = 10000.0
)

// ErrOutOfRange is returned when an amount or quantity cannot be priced.
var ErrOutOfRange = errors.New("amount out of range")

// maxCents keeps every cents value exactly representable as a float64.
const maxCents = 1 << 53

// ToCents converts a dollar amount to whole cents, rounding half away from
// zero. Amounts that are not finite or would not fit are rejected.
func ToCents(amount float64) (int64, error) {
	c := math.Round(amount * 100)
	if math.IsNaN(c) || math.Abs(c) > maxCents {
		return 0, errors.Wrapf(ErrOutOfRange, "%v", amount)
	}
	return int64(c), nil
}

// FromCents converts whole cents back to dollars.
func FromCents(cents int64) float64 {
	return float64(cents) / 100
}

func addCents(a, b int64) (int64, error) {
	s := a + b
	if s > maxCents || s < -maxCents {
		return 0, errors.Wrapf(ErrOutOfRange, "%d + %d cents", a, b)
	}
	return s, nil
}

func mulCents(a int64, n int64) (int64, error) {
	if a == 0 || n == 0 {
		return 0, nil
	}
	p := a * n
	if p/n != a || p > maxCents || p < -maxCents {
		return 0, errors.Wrapf(ErrOutOfRange, "%d * %d cents", a, n)
	}
	return p, nil
}

// LineTotal prices one order line. Add-ons are charged per unit:
//
//	quantity × (basePrice + Σ addOnPrices)
//
// A quantity below one prices to zero. Quantities above MaxQuantity, prices
// outside [0, MaxPrice] and results that overflow return ErrOutOfRange.
func LineTotal(basePrice float64, quantity int, addOnPrices []float64) (float64, error) {
	if quantity < 1 {
		return 0, nil
	}
	if quantity > MaxQuantity {
		return 0, errors.Wrapf(ErrOutOfRange, "quantity %d exceeds %d", quantity, MaxQuantity)
	}
	if err := checkPrice(basePrice); err != nil {
		return 0, err
	}
	unit, err := ToCents(basePrice)
	if err != nil {
		return 0, err
	}
	for _, p := range addOnPrices {
		if err := checkPrice(p); err != nil {
			return 0, err
		}
		c, err := ToCents(p)
		if err != nil {
			return 0, err
		}
		if unit, err = addCents(unit, c); err != nil {
			return 0, err
		}
	}
	total, err := mulCents(unit, int64(quantity))
	if err != nil {
		return 0, err
	}
	return FromCents(total), nil
}

func checkPrice(p float64) error {
	if math.IsNaN(p) || p < 0 || p > MaxPrice {
		return errors.Wrapf(ErrOutOfRange, "price %v", p)
	}
	return nil
}

// Sum adds dollar amounts in cents.
func Sum(amounts ...float64) (float64, error) {
	var total int64
	for _, a := range amounts {
		c, err := ToCents(a)
		if err != nil {
			return 0, err
		}
		if total, err = addCents(total, c); err != nil {
			return 0, err
		}
	}
	return FromCents(total), nil
}
