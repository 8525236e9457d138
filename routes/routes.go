package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"

	"phone-order-api/handlers"
	"phone-order-api/middleware"
)

// NewRouter builds the REST API engine with request ids, logging and recovery.
func NewRouter() *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery())
	SetupRoutes(r)
	return r
}

func SetupRoutes(r *gin.Engine) {
	// ── Public routes ──────────────────────────────────────────────
	r.GET("/health", handlers.Health)
	r.GET("/state-machine", handlers.GetStateMachineInfo)
	r.POST("/users/register", handlers.Register)
	r.POST("/users/login", handlers.Login)

	// ── Authenticated routes ───────────────────────────────────────
	auth := r.Group("/")
	auth.Use(middleware.AuthRequired())
	{
		// Account
		auth.GET("/users/me", handlers.GetProfile)
		auth.PUT("/users/me", handlers.UpdateProfile)
		auth.POST("/users/change-password", handlers.ChangePassword)

		// Menu & add-ons
		auth.GET("/menu", handlers.ListMenuItems)
		auth.POST("/menu", handlers.CreateMenuItem)
		auth.GET("/menu/:id", handlers.GetMenuItem)
		auth.PUT("/menu/:id", handlers.UpdateMenuItem)
		auth.DELETE("/menu/:id", handlers.DeleteMenuItem)

		auth.GET("/addons", handlers.ListAddOns)
		auth.POST("/addons", handlers.CreateAddOn)
		auth.GET("/addons/:id", handlers.GetAddOn)
		auth.PUT("/addons/:id", handlers.UpdateAddOn)
		auth.DELETE("/addons/:id", handlers.DeleteAddOn)

		// Orders
		auth.GET("/orders", handlers.ListOrders)
		auth.POST("/orders", handlers.CreateOrder)
		auth.GET("/orders/:id", handlers.GetOrder)
		auth.PUT("/orders/:id/status", handlers.UpdateOrderStatus)
		auth.POST("/set-time/:id", handlers.SetOrderTime)

		// Customers
		auth.GET("/customers", handlers.ListCustomers)
		auth.POST("/customers", handlers.CreateCustomer)
		auth.GET("/customers/:key", handlers.GetCustomer)
		auth.PUT("/customers/:key", handlers.UpdateCustomer)
		auth.GET("/customers/:key/orders", handlers.GetCustomerOrders)

		// Restaurant settings
		auth.GET("/restaurant", handlers.GetRestaurant)
		auth.GET("/restaurant/:id", handlers.GetRestaurant)
	}

	// ── Admin routes ───────────────────────────────────────────────
	admin := r.Group("/")
	admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
	{
		admin.PUT("/restaurant", handlers.UpdateRestaurant)
		admin.PUT("/restaurant/:id", handlers.UpdateRestaurant)

		admin.GET("/users", handlers.AdminListUsers)
		admin.PUT("/users/:id", handlers.AdminUpdateUser)
		admin.DELETE("/users/:id", handlers.AdminDeleteUser)
	}
}

// WithCORS lets the dashboard origins call the API from a browser.
func WithCORS(h http.Handler, origins []string) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
	}).Handler(h)
}
