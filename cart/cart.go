// Package cart is the dashboard's draft order. Lines are priced with the same
// formula the server uses, and nothing leaves the process until Submit.
package cart

import (
	"context"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"phone-order-api/models"
	"phone-order-api/phone"
	"phone-order-api/pricing"
)

var (
	ErrValidation       = errors.New("invalid order")
	ErrUnavailable      = errors.New("not available")
	ErrCategoryMismatch = errors.New("add-on does not belong to the item's category")
	ErrQuantity         = errors.New("quantity must be between 1 and 1000")
	ErrNoSuchLine       = errors.New("no such line")
)

// OrderCreator is the order store's create operation, normally *client.Client.
type OrderCreator interface {
	CreateOrder(ctx context.Context, req models.CreateOrderRequest) (*models.Order, error)
}

type line struct {
	item   models.MenuItem
	addOns []models.AddOn
	priced models.OrderItem
}

// reprice prices the line at quantity. On error the line keeps its
// previous pricing.
func (l *line) reprice(quantity int, addOns []models.AddOn) error {
	snapshots := make([]models.AddOnSnapshot, len(addOns))
	for i, a := range addOns {
		snapshots[i] = a.Snapshot()
	}
	priced := models.OrderItem{
		MenuItemID: l.item.ID,
		Name:       l.item.Name,
		Quantity:   quantity,
		BasePrice:  l.item.BasePrice,
		AddOns:     snapshots,
	}
	if err := priced.Reprice(); err != nil {
		return errors.Wrapf(err, "menu item %q", l.item.Name)
	}
	l.addOns = append([]models.AddOn(nil), addOns...)
	l.priced = priced
	return nil
}

func checkQuantity(quantity int) error {
	if quantity < 1 || quantity > pricing.MaxQuantity {
		return errors.Wrapf(ErrQuantity, "got %d", quantity)
	}
	return nil
}

type Cart struct {
	CustomerName        string
	CustomerPhone       string
	PaymentMethod       string
	SpecialInstructions string

	lines []*line
}

func New() *Cart { return &Cart{} }

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// validatorInstance reads the same binding tags gin enforces on the server.
func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.SetTagName("binding")
	})
	return validate
}

func checkAddOns(item models.MenuItem, addOns []models.AddOn) error {
	for _, a := range addOns {
		if !a.IsAvailable {
			return errors.Wrapf(ErrUnavailable, "add-on %q", a.Name)
		}
		if a.Category != item.Category {
			return errors.Wrapf(ErrCategoryMismatch, "%q on %q", a.Name, item.Name)
		}
	}
	return nil
}

// AddLine appends a priced line and returns its index.
func (c *Cart) AddLine(item models.MenuItem, quantity int, addOns []models.AddOn) (int, error) {
	if !item.IsAvailable {
		return -1, errors.Wrapf(ErrUnavailable, "menu item %q", item.Name)
	}
	if err := checkQuantity(quantity); err != nil {
		return -1, err
	}
	if err := checkAddOns(item, addOns); err != nil {
		return -1, err
	}
	l := &line{item: item}
	if err := l.reprice(quantity, addOns); err != nil {
		return -1, err
	}
	c.lines = append(c.lines, l)
	return len(c.lines) - 1, nil
}

func (c *Cart) line(i int) (*line, error) {
	if i < 0 || i >= len(c.lines) {
		return nil, errors.Wrapf(ErrNoSuchLine, "index %d", i)
	}
	return c.lines[i], nil
}

// SetQuantity reprices the line with its current add-ons.
func (c *Cart) SetQuantity(i, quantity int) error {
	l, err := c.line(i)
	if err != nil {
		return err
	}
	if err := checkQuantity(quantity); err != nil {
		return err
	}
	return l.reprice(quantity, l.addOns)
}

// SetAddOns replaces the add-ons on a line.
func (c *Cart) SetAddOns(i int, addOns []models.AddOn) error {
	l, err := c.line(i)
	if err != nil {
		return err
	}
	if err := checkAddOns(l.item, addOns); err != nil {
		return err
	}
	return l.reprice(l.priced.Quantity, addOns)
}

func (c *Cart) RemoveLine(i int) error {
	if _, err := c.line(i); err != nil {
		return err
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	return nil
}

// Lines returns copies of the priced lines.
func (c *Cart) Lines() []models.OrderItem {
	out := make([]models.OrderItem, len(c.lines))
	for i, l := range c.lines {
		out[i] = l.priced
		out[i].AddOns = append([]models.AddOnSnapshot(nil), l.priced.AddOns...)
	}
	return out
}

// Total is the sum of the line totals. Every line was priced when it was
// added, so an error here means the lines together overflow.
func (c *Cart) Total() (float64, error) {
	order := models.Order{Items: c.Lines()}
	if err := order.Reprice(); err != nil {
		return 0, err
	}
	return order.TotalAmount, nil
}

func (c *Cart) Len() int { return len(c.lines) }

// Clear drops every line and the customer details.
func (c *Cart) Clear() { *c = Cart{} }

// Build validates the draft and produces the create-order request.
func (c *Cart) Build() (models.CreateOrderRequest, error) {
	name := strings.TrimSpace(c.CustomerName)
	if name == "" {
		return models.CreateOrderRequest{}, errors.Wrap(ErrValidation, "customer name is required")
	}
	digits, err := phone.Normalize(c.CustomerPhone)
	if err != nil {
		return models.CreateOrderRequest{}, errors.Wrap(ErrValidation, err.Error())
	}
	if len(c.lines) == 0 {
		return models.CreateOrderRequest{}, errors.Wrap(ErrValidation, "order needs at least one item")
	}

	req := models.CreateOrderRequest{
		CustomerName:        name,
		CustomerPhone:       digits,
		PaymentMethod:       strings.TrimSpace(c.PaymentMethod),
		SpecialInstructions: strings.TrimSpace(c.SpecialInstructions),
		Items:               make([]models.OrderLineRequest, len(c.lines)),
	}
	for i, l := range c.lines {
		ids := make([]uint, len(l.addOns))
		for n, a := range l.addOns {
			ids[n] = a.ID
		}
		req.Items[i] = models.OrderLineRequest{
			MenuItemID: l.item.ID,
			Quantity:   l.priced.Quantity,
			AddOnIDs:   ids,
		}
	}
	if err := validatorInstance().Struct(req); err != nil {
		return models.CreateOrderRequest{}, errors.Wrap(ErrValidation, err.Error())
	}
	return req, nil
}

// Submit builds the request and sends it. The cart is left untouched so a
// failed submission can be retried.
func (c *Cart) Submit(ctx context.Context, creator OrderCreator) (*models.Order, error) {
	req, err := c.Build()
	if err != nil {
		return nil, err
	}
	return creator.CreateOrder(ctx, req)
}
