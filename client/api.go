package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"phone-order-api/models"
)

// ── Auth & users ────────────────────────────────────────────────

func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	var out struct {
		User models.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/users/register", nil, req, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// Login authenticates and stores the token in the session.
func (c *Client) Login(ctx context.Context, email, password string) (*models.TokenResponse, error) {
	var out models.TokenResponse
	req := models.LoginRequest{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/users/login", nil, req, &out); err != nil {
		return nil, err
	}
	if err := c.Session.Set(out.AccessToken, &out.User); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Logout() error { return c.Session.Clear() }

func (c *Client) Me(ctx context.Context) (*models.User, error) {
	return c.user(ctx, http.MethodGet, "/users/me", nil)
}

func (c *Client) UpdateMe(ctx context.Context, req models.ProfileUpdate) (*models.User, error) {
	return c.user(ctx, http.MethodPut, "/users/me", req)
}

func (c *Client) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	req := models.ChangePasswordRequest{OldPassword: oldPassword, NewPassword: newPassword}
	return c.do(ctx, http.MethodPost, "/users/change-password", nil, req, nil)
}

func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	var out struct {
		Users []models.User `json:"users"`
	}
	if err := c.do(ctx, http.MethodGet, "/users", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Users, nil
}

func (c *Client) UpdateUser(ctx context.Context, id uint, req models.UserAdminUpdate) (*models.User, error) {
	return c.user(ctx, http.MethodPut, idPath("/users", id), req)
}

func (c *Client) DeleteUser(ctx context.Context, id uint) error {
	return c.do(ctx, http.MethodDelete, idPath("/users", id), nil, nil, nil)
}

func (c *Client) user(ctx context.Context, method, path string, body interface{}) (*models.User, error) {
	var out struct {
		User models.User `json:"user"`
	}
	if err := c.do(ctx, method, path, nil, body, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// ── Menu & add-ons ──────────────────────────────────────────────

// CatalogFilter narrows menu and add-on listings.
type CatalogFilter struct {
	Category      string
	AvailableOnly bool
}

func (f CatalogFilter) query() url.Values {
	q := url.Values{}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if f.AvailableOnly {
		q.Set("available", "true")
	}
	return q
}

func (c *Client) ListMenuItems(ctx context.Context, filter CatalogFilter) ([]models.MenuItem, error) {
	var out struct {
		Menu []models.MenuItem `json:"menu"`
	}
	if err := c.do(ctx, http.MethodGet, "/menu", filter.query(), nil, &out); err != nil {
		return nil, err
	}
	return out.Menu, nil
}

func (c *Client) GetMenuItem(ctx context.Context, id uint) (*models.MenuItem, error) {
	return c.menuItem(ctx, http.MethodGet, idPath("/menu", id), nil)
}

func (c *Client) CreateMenuItem(ctx context.Context, req models.MenuItemRequest) (*models.MenuItem, error) {
	return c.menuItem(ctx, http.MethodPost, "/menu", req)
}

func (c *Client) UpdateMenuItem(ctx context.Context, id uint, req models.MenuItemUpdate) (*models.MenuItem, error) {
	return c.menuItem(ctx, http.MethodPut, idPath("/menu", id), req)
}

// ToggleMenuItemAvailability changes is_available and nothing else.
func (c *Client) ToggleMenuItemAvailability(ctx context.Context, id uint, available bool) (*models.MenuItem, error) {
	return c.UpdateMenuItem(ctx, id, models.MenuItemUpdate{IsAvailable: &available})
}

func (c *Client) DeleteMenuItem(ctx context.Context, id uint) error {
	return c.do(ctx, http.MethodDelete, idPath("/menu", id), nil, nil, nil)
}

func (c *Client) menuItem(ctx context.Context, method, path string, body interface{}) (*models.MenuItem, error) {
	var out struct {
		Item models.MenuItem `json:"item"`
	}
	if err := c.do(ctx, method, path, nil, body, &out); err != nil {
		return nil, err
	}
	return &out.Item, nil
}

func (c *Client) ListAddOns(ctx context.Context, filter CatalogFilter) ([]models.AddOn, error) {
	var out struct {
		AddOns []models.AddOn `json:"addons"`
	}
	if err := c.do(ctx, http.MethodGet, "/addons", filter.query(), nil, &out); err != nil {
		return nil, err
	}
	return out.AddOns, nil
}

func (c *Client) GetAddOn(ctx context.Context, id uint) (*models.AddOn, error) {
	return c.addOn(ctx, http.MethodGet, idPath("/addons", id), nil)
}

func (c *Client) CreateAddOn(ctx context.Context, req models.AddOnRequest) (*models.AddOn, error) {
	return c.addOn(ctx, http.MethodPost, "/addons", req)
}

func (c *Client) UpdateAddOn(ctx context.Context, id uint, req models.AddOnUpdate) (*models.AddOn, error) {
	return c.addOn(ctx, http.MethodPut, idPath("/addons", id), req)
}

func (c *Client) ToggleAddOnAvailability(ctx context.Context, id uint, available bool) (*models.AddOn, error) {
	return c.UpdateAddOn(ctx, id, models.AddOnUpdate{IsAvailable: &available})
}

func (c *Client) DeleteAddOn(ctx context.Context, id uint) error {
	return c.do(ctx, http.MethodDelete, idPath("/addons", id), nil, nil, nil)
}

func (c *Client) addOn(ctx context.Context, method, path string, body interface{}) (*models.AddOn, error) {
	var out struct {
		AddOn models.AddOn `json:"addon"`
	}
	if err := c.do(ctx, method, path, nil, body, &out); err != nil {
		return nil, err
	}
	return &out.AddOn, nil
}

// ── Orders ──────────────────────────────────────────────────────

type OrderList struct {
	Count   int            `json:"count"`
	Summary map[string]int `json:"order_summary"`
	Orders  []models.Order `json:"orders"`
}

// ListOrders returns orders newest first; an empty status lists all of them.
func (c *Client) ListOrders(ctx context.Context, status models.OrderStatus) (*OrderList, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", string(status))
	}
	var out OrderList
	if err := c.do(ctx, http.MethodGet, "/orders", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	return c.order(ctx, http.MethodGet, idPath("/orders", id), nil)
}

func (c *Client) CreateOrder(ctx context.Context, req models.CreateOrderRequest) (*models.Order, error) {
	return c.order(ctx, http.MethodPost, "/orders", req)
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id uint, req models.UpdateOrderStatusRequest) (*models.Order, error) {
	return c.order(ctx, http.MethodPut, idPath("/orders", id, "/status"), req)
}

// ConfirmOrder confirms a pending order. Zero minutes lets the server apply its default.
func (c *Client) ConfirmOrder(ctx context.Context, id uint, minutes int) (*models.Order, error) {
	req := models.UpdateOrderStatusRequest{Status: models.StatusConfirmed}
	if minutes > 0 {
		req.EstimatedPreparationTime = &minutes
	}
	return c.UpdateOrderStatus(ctx, id, req)
}

func (c *Client) CancelOrder(ctx context.Context, id uint, note string) (*models.Order, error) {
	return c.UpdateOrderStatus(ctx, id, models.UpdateOrderStatusRequest{Status: models.StatusCancelled, Note: note})
}

func (c *Client) SetOrderTime(ctx context.Context, id uint, minutes int) (*models.Order, error) {
	return c.order(ctx, http.MethodPost, idPath("/set-time", id), models.SetTimeRequest{Minutes: minutes})
}

func (c *Client) order(ctx context.Context, method, path string, body interface{}) (*models.Order, error) {
	var out struct {
		Order models.Order `json:"order"`
	}
	if err := c.do(ctx, method, path, nil, body, &out); err != nil {
		return nil, err
	}
	return &out.Order, nil
}

// ── Customers ───────────────────────────────────────────────────

func (c *Client) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	var out struct {
		Customers []models.Customer `json:"customers"`
	}
	if err := c.do(ctx, http.MethodGet, "/customers", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Customers, nil
}

func (c *Client) CreateCustomer(ctx context.Context, req models.CustomerRequest) (*models.Customer, error) {
	return c.customer(ctx, http.MethodPost, "/customers", req)
}

// GetCustomer accepts a phone number or a numeric id.
func (c *Client) GetCustomer(ctx context.Context, key string) (*models.Customer, error) {
	return c.customer(ctx, http.MethodGet, "/customers/"+url.PathEscape(key), nil)
}

func (c *Client) GetCustomerByID(ctx context.Context, id uint) (*models.Customer, error) {
	return c.GetCustomer(ctx, strconv.FormatUint(uint64(id), 10))
}

func (c *Client) UpdateCustomer(ctx context.Context, phoneNumber string, req models.CustomerUpdate) (*models.Customer, error) {
	return c.customer(ctx, http.MethodPut, "/customers/"+url.PathEscape(phoneNumber), req)
}

func (c *Client) CustomerOrders(ctx context.Context, key string) ([]models.Order, error) {
	var out struct {
		Orders []models.Order `json:"orders"`
	}
	if err := c.do(ctx, http.MethodGet, "/customers/"+url.PathEscape(key)+"/orders", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Orders, nil
}

func (c *Client) customer(ctx context.Context, method, path string, body interface{}) (*models.Customer, error) {
	var out struct {
		Customer models.Customer `json:"customer"`
	}
	if err := c.do(ctx, method, path, nil, body, &out); err != nil {
		return nil, err
	}
	return &out.Customer, nil
}

// ── Restaurant ──────────────────────────────────────────────────

func (c *Client) GetRestaurant(ctx context.Context) (*models.Restaurant, error) {
	return c.restaurant(ctx, http.MethodGet, "/restaurant", nil)
}

func (c *Client) UpdateRestaurant(ctx context.Context, req models.RestaurantUpdate) (*models.Restaurant, error) {
	return c.restaurant(ctx, http.MethodPut, "/restaurant", req)
}

// SetRestaurantActive opens or closes the restaurant for new orders.
func (c *Client) SetRestaurantActive(ctx context.Context, active bool) (*models.Restaurant, error) {
	return c.UpdateRestaurant(ctx, models.RestaurantUpdate{IsActive: &active})
}

func (c *Client) restaurant(ctx context.Context, method, path string, body interface{}) (*models.Restaurant, error) {
	var out struct {
		Restaurant models.Restaurant `json:"restaurant"`
	}
	if err := c.do(ctx, method, path, nil, body, &out); err != nil {
		return nil, err
	}
	return &out.Restaurant, nil
}

// ── Info ────────────────────────────────────────────────────────

func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil, nil)
}
