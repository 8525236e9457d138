package models

// Request and response bodies shared by the API handlers and the dashboard
// client. The binding tags are enforced by gin on the server and by the
// validator in the cart before anything is sent.

type CreateOrderRequest struct {
	CustomerName        string             `json:"customer_name" binding:"required"`
	CustomerPhone       string             `json:"customer_phone" binding:"required"`
	Items               []OrderLineRequest `json:"order_items" binding:"required,min=1,dive"`
	PaymentMethod       string             `json:"payment_method"`
	SpecialInstructions string             `json:"special_instructions"`
}

type OrderLineRequest struct {
	MenuItemID uint   `json:"menu_item_id" binding:"required"`
	Quantity   int    `json:"quantity" binding:"required,min=1,max=1000"`
	AddOnIDs   []uint `json:"add_on_ids"`
}

type UpdateOrderStatusRequest struct {
	Status                   OrderStatus `json:"status" binding:"required"`
	EstimatedPreparationTime *int        `json:"estimated_preparation_time" binding:"omitempty,min=1"`
	Note                     string      `json:"note"`
}

type SetTimeRequest struct {
	Minutes int `json:"minutes" binding:"required,min=1"`
}

type MenuItemRequest struct {
	Name        string  `json:"name" binding:"required"`
	Category    string  `json:"category" binding:"required"`
	BasePrice   float64 `json:"base_price" binding:"gte=0,lte=10000"`
	Description string  `json:"description"`
	IsAvailable *bool   `json:"is_available"`
}

// MenuItemUpdate is a partial update; nil fields are left untouched.
type MenuItemUpdate struct {
	Name        *string  `json:"name,omitempty" binding:"omitempty,min=1"`
	Category    *string  `json:"category,omitempty" binding:"omitempty,min=1"`
	BasePrice   *float64 `json:"base_price,omitempty" binding:"omitempty,gte=0,lte=10000"`
	Description *string  `json:"description,omitempty"`
	IsAvailable *bool    `json:"is_available,omitempty"`
}

type AddOnRequest struct {
	Name        string  `json:"name" binding:"required"`
	Category    string  `json:"category" binding:"required"`
	Type        string  `json:"type"`
	Price       float64 `json:"price" binding:"gte=0,lte=10000"`
	IsAvailable *bool   `json:"is_available"`
}

type AddOnUpdate struct {
	Name        *string  `json:"name,omitempty" binding:"omitempty,min=1"`
	Category    *string  `json:"category,omitempty" binding:"omitempty,min=1"`
	Type        *string  `json:"type,omitempty"`
	Price       *float64 `json:"price,omitempty" binding:"omitempty,gte=0,lte=10000"`
	IsAvailable *bool    `json:"is_available,omitempty"`
}

type CustomerRequest struct {
	Name                   string `json:"name" binding:"required"`
	Phone                  string `json:"phone" binding:"required"`
	Email                  string `json:"email" binding:"omitempty,email"`
	PreferredPaymentMethod string `json:"preferred_payment_method"`
	DietaryPreferences     string `json:"dietary_preferences"`
}

type CustomerUpdate struct {
	Name                   *string `json:"name,omitempty" binding:"omitempty,min=1"`
	Phone                  *string `json:"phone,omitempty"`
	Email                  *string `json:"email,omitempty" binding:"omitempty,email"`
	PreferredPaymentMethod *string `json:"preferred_payment_method,omitempty"`
	DietaryPreferences     *string `json:"dietary_preferences,omitempty"`
}

type RestaurantUpdate struct {
	Name         *string `json:"name,omitempty" binding:"omitempty,min=1"`
	Address      *string `json:"address,omitempty"`
	Phone        *string `json:"phone,omitempty"`
	Email        *string `json:"email,omitempty"`
	OpeningHours *string `json:"opening_hours,omitempty"`
	IsActive     *bool   `json:"is_active,omitempty"`
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        User   `json:"user"`
}

type ProfileUpdate struct {
	Username *string `json:"username,omitempty" binding:"omitempty,min=1"`
	Email    *string `json:"email,omitempty" binding:"omitempty,email"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

// UserAdminUpdate is what an admin may change on another account.
type UserAdminUpdate struct {
	IsActive *bool `json:"is_active,omitempty"`
	IsAdmin  *bool `json:"is_admin,omitempty"`
}
