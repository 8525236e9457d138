package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"phone-order-api/config"
	"phone-order-api/events"
	"phone-order-api/handlers"
	"phone-order-api/middleware"
	"phone-order-api/models"
	"phone-order-api/routes"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

type testEnv struct {
	t          *testing.T
	db         *gorm.DB
	router     *gin.Engine
	events     *events.Recorder
	admin      *models.User
	staff      *models.User
	adminToken string
	staffToken string
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	db, err := config.OpenDB(":memory:")
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	_, err = config.EnsureRestaurant(db)
	require.NoError(t, err)

	rec := &events.Recorder{}
	config.DB = db
	config.Events = rec
	t.Cleanup(func() {
		config.Events = events.Discard{}
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	admin, err := handlers.CreateUser(db, "admin", "admin@example.com", "adminpass", true)
	require.NoError(t, err)
	staff, err := handlers.CreateUser(db, "staff", "staff@example.com", "staffpass", false)
	require.NoError(t, err)
	adminToken, err := middleware.GenerateToken(admin)
	require.NoError(t, err)
	staffToken, err := middleware.GenerateToken(staff)
	require.NoError(t, err)

	return &testEnv{
		t:          t,
		db:         db,
		router:     routes.NewRouter(),
		events:     rec,
		admin:      admin,
		staff:      staff,
		adminToken: adminToken,
		staffToken: staffToken,
	}
}

func (e *testEnv) request(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	e.t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// as issues a request with the staff token.
func (e *testEnv) as(method, path string, body interface{}) *httptest.ResponseRecorder {
	e.t.Helper()
	return e.request(method, path, e.staffToken, body)
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

type orderBody struct {
	Message string       `json:"message"`
	Order   models.Order `json:"order"`
}

type catalog struct {
	pizza, burger, soldOut   models.MenuItem
	cheese, bacon, offCheese models.AddOn
}

func (e *testEnv) seedCatalog() catalog {
	e.t.Helper()
	c := catalog{
		pizza:     models.MenuItem{Name: "Margherita Pizza", Category: "pizza", BasePrice: 8.99, IsAvailable: true},
		burger:    models.MenuItem{Name: "Classic Burger", Category: "burger", BasePrice: 12.99, IsAvailable: true},
		soldOut:   models.MenuItem{Name: "Calzone", Category: "pizza", BasePrice: 11.00, IsAvailable: false},
		cheese:    models.AddOn{Name: "Extra Cheese", Category: "pizza", Price: 1.50, IsAvailable: true},
		bacon:     models.AddOn{Name: "Bacon", Category: "burger", Price: 2.00, IsAvailable: true},
		offCheese: models.AddOn{Name: "Vegan Cheese", Category: "pizza", Price: 1.00, IsAvailable: false},
	}
	for _, item := range []*models.MenuItem{&c.pizza, &c.burger, &c.soldOut} {
		require.NoError(e.t, e.db.Create(item).Error)
	}
	for _, addOn := range []*models.AddOn{&c.cheese, &c.bacon, &c.offCheese} {
		require.NoError(e.t, e.db.Create(addOn).Error)
	}
	return c
}

// placeOrder creates a pending order for two pizzas with extra cheese.
func (e *testEnv) placeOrder(c catalog) models.Order {
	e.t.Helper()
	w := e.as(http.MethodPost, "/orders", models.CreateOrderRequest{
		CustomerName:  "Ada Lovelace",
		CustomerPhone: "555-123-4567",
		Items: []models.OrderLineRequest{
			{MenuItemID: c.pizza.ID, Quantity: 2, AddOnIDs: []uint{c.cheese.ID}},
		},
	})
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())
	var body orderBody
	decode(e.t, w, &body)
	return body.Order
}
