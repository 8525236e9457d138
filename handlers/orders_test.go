package handlers_test

import (
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phone-order-api/events"
	"phone-order-api/models"
)

func TestCreateOrderPricesFromCatalog(t *testing.T) {
	env := setup(t)
	c := env.seedCatalog()

	w := env.as(http.MethodPost, "/orders", models.CreateOrderRequest{
		CustomerName:  "  Ada Lovelace ",
		CustomerPhone: "(555) 123-4567",
		PaymentMethod: "cash",
		Items: []models.OrderLineRequest{
			{MenuItemID: c.pizza.ID, Quantity: 2, AddOnIDs: []uint{c.cheese.ID}},
			{MenuItemID: c.burger.ID, Quantity: 1, AddOnIDs: []uint{c.bacon.ID}},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var body orderBody
	decode(t, w, &body)
	order := body.Order
	assert.Equal(t, models.StatusPending, order.Status)
	assert.Nil(t, order.EstimatedPreparationTime)
	assert.Equal(t, "Ada Lovelace", order.CustomerName)
	assert.Equal(t, "5551234567", order.CustomerPhone)
	require.Len(t, order.Items, 2)
	assert.InDelta(t, 20.98, order.Items[0].TotalPrice, 1e-9)
	assert.InDelta(t, 14.99, order.Items[1].TotalPrice, 1e-9)
	assert.InDelta(t, 35.97, order.TotalAmount, 1e-9)
	require.Len(t, order.Items[0].AddOns, 1)
	assert.Equal(t, "Extra Cheese", order.Items[0].AddOns[0].Name)

	require.Len(t, order.StatusHistory, 1)
	assert.Equal(t, models.StatusPending, order.StatusHistory[0].ToStatus)
	assert.Equal(t, env.staff.ID, order.StatusHistory[0].ChangedBy)

	require.Len(t, env.events.Events, 1)
	created, ok := env.events.Events[0].(events.OrderCreated)
	require.True(t, ok)
	assert.Equal(t, order.ID, created.OrderID)
	assert.Equal(t, 2, created.ItemCount)
}

func TestCreateOrderUpsertsCustomer(t *testing.T) {
	env := setup(t)
	c := env.seedCatalog()

	first := env.placeOrder(c)
	second := env.placeOrder(c)

	var customer models.Customer
	require.NoError(t, env.db.Where("phone = ?", "5551234567").First(&customer).Error)
	assert.Equal(t, 2, customer.TotalOrders)
	assert.NotNil(t, customer.LastOrderDate)
	require.NotNil(t, first.CustomerID)
	require.NotNil(t, second.CustomerID)
	assert.Equal(t, customer.ID, *first.CustomerID)
	assert.Equal(t, customer.ID, *second.CustomerID)

	var count int64
	env.db.Model(&models.Customer{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestCreateOrderRejections(t *testing.T) {
	env := setup(t)
	c := env.seedCatalog()

	line := func(id uint, qty int, addOns ...uint) []models.OrderLineRequest {
		return []models.OrderLineRequest{{MenuItemID: id, Quantity: qty, AddOnIDs: addOns}}
	}
	cases := []struct {
		name string
		req  models.CreateOrderRequest
	}{
		{"short phone", models.CreateOrderRequest{CustomerName: "Ada", CustomerPhone: "555-123", Items: line(c.pizza.ID, 1)}},
		{"blank name", models.CreateOrderRequest{CustomerName: "   ", CustomerPhone: "5551234567", Items: line(c.pizza.ID, 1)}},
		{"no items", models.CreateOrderRequest{CustomerName: "Ada", CustomerPhone: "5551234567", Items: []models.OrderLineRequest{}}},
		{"zero quantity", models.CreateOrderRequest{CustomerName: "Ada", CustomerPhone: "5551234567", Items: line(c.pizza.ID, 0)}},
		{"quantity over limit", models.CreateOrderRequest{CustomerName: "Ada", CustomerPhone: "5551234567", Items: line(c.pizza.ID, 1001)}},
		{"quantity that would overflow", models.CreateOrderRequest{CustomerName: "Ada", CustomerPhone: "5551234567", Items: line(c.pizza.ID, 2000000000000000000, c.cheese.ID)}},
		{"unknown item", models.CreateOrderRequest{CustomerName: "Ada", CustomerPhone: "5551234567", Items: line(9999, 1)}},
		{"unavailable item", models.CreateOrderRequest{CustomerName: "Ada", CustomerPhone: "5551234567", Items: line(c.soldOut.ID, 1)}},
		{"unavailable add-on", models.CreateOrderRequest{CustomerName: "Ada", CustomerPhone: "5551234567", Items: line(c.pizza.ID, 1, c.offCheese.ID)}},
		{"add-on from another category", models.CreateOrderRequest{CustomerName: "Ada", CustomerPhone: "5551234567", Items: line(c.pizza.ID, 1, c.bacon.ID)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := env.as(http.MethodPost, "/orders", tc.req)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}

	var orders, customers int64
	env.db.Model(&models.Order{}).Count(&orders)
	env.db.Model(&models.Customer{}).Count(&customers)
	assert.Zero(t, orders)
	assert.Zero(t, customers)
	assert.Empty(t, env.events.Events)
}

func TestCreateOrderRejectsPriceOutOfRange(t *testing.T) {
	env := setup(t)
	// Stored directly, bypassing the menu API's price limit.
	item := models.MenuItem{Name: "Gold Leaf Pizza", Category: "pizza", BasePrice: 1e17, IsAvailable: true}
	require.NoError(t, env.db.Create(&item).Error)

	w := env.as(http.MethodPost, "/orders", models.CreateOrderRequest{
		CustomerName:  "Ada",
		CustomerPhone: "5551234567",
		Items:         []models.OrderLineRequest{{MenuItemID: item.ID, Quantity: 1000}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "out of range")

	var orders int64
	env.db.Model(&models.Order{}).Count(&orders)
	assert.Zero(t, orders)
}

func TestCreateOrderLargestLine(t *testing.T) {
	env := setup(t)
	c := env.seedCatalog()

	w := env.as(http.MethodPost, "/orders", models.CreateOrderRequest{
		CustomerName:  "Ada",
		CustomerPhone: "5551234567",
		Items:         []models.OrderLineRequest{{MenuItemID: c.pizza.ID, Quantity: 1000, AddOnIDs: []uint{c.cheese.ID}}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var body orderBody
	decode(t, w, &body)
	assert.InDelta(t, 10490.0, body.Order.TotalAmount, 1e-9)
}

func TestCreateOrderKeepsExistingCustomerDetails(t *testing.T) {
	env := setup(t)
	c := env.seedCatalog()
	require.NoError(t, env.db.Create(&models.Customer{
		Name:                   "Ada Lovelace",
		Phone:                  "5551234567",
		Email:                  "ada@example.com",
		PreferredPaymentMethod: "card",
	}).Error)

	order := env.placeOrder(c)

	var customer models.Customer
	require.NoError(t, env.db.Where("phone = ?", "5551234567").First(&customer).Error)
	assert.Equal(t, 1, customer.TotalOrders)
	assert.NotNil(t, customer.LastOrderDate)
	assert.Equal(t, "ada@example.com", customer.Email)
	assert.Equal(t, "card", customer.PreferredPaymentMethod)
	require.NotNil(t, order.CustomerID)
	assert.Equal(t, customer.ID, *order.CustomerID)
}

func TestConcurrentFirstOrdersShareOneCustomer(t *testing.T) {
	env := setup(t)
	c := env.seedCatalog()
	req := models.CreateOrderRequest{
		CustomerName:  "Ada",
		CustomerPhone: "5559876543",
		Items:         []models.OrderLineRequest{{MenuItemID: c.pizza.ID, Quantity: 1}},
	}

	const n = 5
	codes := make([]int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			codes[i] = env.as(http.MethodPost, "/orders", req).Code
		}(i)
	}
	wg.Wait()

	for _, code := range codes {
		assert.Equal(t, http.StatusCreated, code)
	}
	var customer models.Customer
	require.NoError(t, env.db.Where("phone = ?", "5559876543").First(&customer).Error)
	assert.Equal(t, n, customer.TotalOrders)

	var customers int64
	env.db.Model(&models.Customer{}).Count(&customers)
	assert.EqualValues(t, 1, customers)
}

func TestCreateOrderWhenRestaurantClosed(t *testing.T) {
	env := setup(t)
	c := env.seedCatalog()
	require.NoError(t, env.db.Model(&models.Restaurant{}).Where("1 = 1").Update("is_active", false).Error)

	w := env.as(http.MethodPost, "/orders", models.CreateOrderRequest{
		CustomerName:  "Ada",
		CustomerPhone: "5551234567",
		Items:         []models.OrderLineRequest{{MenuItemID: c.pizza.ID, Quantity: 1}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Restaurant is currently closed")
}

func TestOrderLifecycle(t *testing.T) {
	env := setup(t)
	order := env.placeOrder(env.seedCatalog())
	path := fmt.Sprintf("/orders/%d/status", order.ID)

	w := env.as(http.MethodPut, path, models.UpdateOrderStatusRequest{Status: models.StatusConfirmed})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var body orderBody
	decode(t, w, &body)
	assert.Equal(t, models.StatusConfirmed, body.Order.Status)
	require.NotNil(t, body.Order.EstimatedPreparationTime)
	assert.Equal(t, models.DefaultPreparationMinutes, *body.Order.EstimatedPreparationTime)

	for _, next := range []models.OrderStatus{models.StatusPreparing, models.StatusReady, models.StatusDelivered} {
		w = env.as(http.MethodPut, path, models.UpdateOrderStatusRequest{Status: next})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	w = env.as(http.MethodPut, path, models.UpdateOrderStatusRequest{Status: models.StatusCancelled})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var rejected struct {
		ValidNextStates []models.OrderStatus `json:"valid_next_states"`
	}
	decode(t, w, &rejected)
	assert.Empty(t, rejected.ValidNextStates)

	w = env.as(http.MethodGet, fmt.Sprintf("/orders/%d", order.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &body)
	assert.Equal(t, models.StatusDelivered, body.Order.Status)
	require.Len(t, body.Order.StatusHistory, 5)
	assert.Equal(t, models.StatusReady, body.Order.StatusHistory[4].FromStatus)
	assert.Equal(t, models.StatusDelivered, body.Order.StatusHistory[4].ToStatus)

	// created + four transitions
	require.Len(t, env.events.Events, 5)
	changed, ok := env.events.Events[1].(events.OrderStatusChanged)
	require.True(t, ok)
	assert.Equal(t, models.StatusConfirmed, changed.To)
	assert.Equal(t, "Tote AI Restaurant", changed.RestaurantName)
	require.NotNil(t, changed.EstimatedPreparationTime)
	assert.Equal(t, 30, *changed.EstimatedPreparationTime)
}

func TestConfirmWithExplicitTime(t *testing.T) {
	env := setup(t)
	order := env.placeOrder(env.seedCatalog())
	minutes := 20

	w := env.as(http.MethodPut, fmt.Sprintf("/orders/%d/status", order.ID),
		models.UpdateOrderStatusRequest{Status: models.StatusConfirmed, EstimatedPreparationTime: &minutes})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var body orderBody
	decode(t, w, &body)
	require.NotNil(t, body.Order.EstimatedPreparationTime)
	assert.Equal(t, 20, *body.Order.EstimatedPreparationTime)
}

func TestStatusRejections(t *testing.T) {
	env := setup(t)
	order := env.placeOrder(env.seedCatalog())
	path := fmt.Sprintf("/orders/%d/status", order.ID)

	w := env.as(http.MethodPut, path, models.UpdateOrderStatusRequest{Status: models.StatusPreparing})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var rejected struct {
		CurrentStatus   models.OrderStatus   `json:"current_status"`
		ValidNextStates []models.OrderStatus `json:"valid_next_states"`
	}
	decode(t, w, &rejected)
	assert.Equal(t, models.StatusPending, rejected.CurrentStatus)
	assert.ElementsMatch(t, []models.OrderStatus{models.StatusConfirmed, models.StatusCancelled}, rejected.ValidNextStates)

	w = env.as(http.MethodPut, path, map[string]string{"status": "teleported"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.as(http.MethodPut, "/orders/9999/status", models.UpdateOrderStatusRequest{Status: models.StatusConfirmed})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.as(http.MethodPut, "/orders/abc/status", models.UpdateOrderStatusRequest{Status: models.StatusConfirmed})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSameStatusIsNoOp(t *testing.T) {
	env := setup(t)
	order := env.placeOrder(env.seedCatalog())

	w := env.as(http.MethodPut, fmt.Sprintf("/orders/%d/status", order.ID),
		models.UpdateOrderStatusRequest{Status: models.StatusPending})
	require.Equal(t, http.StatusOK, w.Code)

	var history int64
	env.db.Model(&models.OrderStatusHistory{}).Where("order_id = ?", order.ID).Count(&history)
	assert.EqualValues(t, 1, history)
	assert.Len(t, env.events.Events, 1)
}

func TestCancelFromPendingAndConfirmed(t *testing.T) {
	env := setup(t)
	c := env.seedCatalog()

	pending := env.placeOrder(c)
	w := env.as(http.MethodPut, fmt.Sprintf("/orders/%d/status", pending.ID),
		models.UpdateOrderStatusRequest{Status: models.StatusCancelled, Note: "customer called back"})
	assert.Equal(t, http.StatusOK, w.Code)

	confirmed := env.placeOrder(c)
	path := fmt.Sprintf("/orders/%d/status", confirmed.ID)
	require.Equal(t, http.StatusOK, env.as(http.MethodPut, path, models.UpdateOrderStatusRequest{Status: models.StatusConfirmed}).Code)
	assert.Equal(t, http.StatusOK, env.as(http.MethodPut, path, models.UpdateOrderStatusRequest{Status: models.StatusCancelled}).Code)

	preparing := env.placeOrder(c)
	path = fmt.Sprintf("/orders/%d/status", preparing.ID)
	require.Equal(t, http.StatusOK, env.as(http.MethodPut, path, models.UpdateOrderStatusRequest{Status: models.StatusConfirmed}).Code)
	require.Equal(t, http.StatusOK, env.as(http.MethodPut, path, models.UpdateOrderStatusRequest{Status: models.StatusPreparing}).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, env.as(http.MethodPut, path, models.UpdateOrderStatusRequest{Status: models.StatusCancelled}).Code)
}

func TestSetOrderTime(t *testing.T) {
	env := setup(t)
	order := env.placeOrder(env.seedCatalog())
	setTime := fmt.Sprintf("/set-time/%d", order.ID)
	status := fmt.Sprintf("/orders/%d/status", order.ID)

	w := env.as(http.MethodPost, setTime, models.SetTimeRequest{Minutes: 45})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, "pending orders have no time to change")

	require.Equal(t, http.StatusOK, env.as(http.MethodPut, status, models.UpdateOrderStatusRequest{Status: models.StatusConfirmed}).Code)
	env.events.Reset()

	w = env.as(http.MethodPost, setTime, models.SetTimeRequest{Minutes: 45})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var body orderBody
	decode(t, w, &body)
	require.NotNil(t, body.Order.EstimatedPreparationTime)
	assert.Equal(t, 45, *body.Order.EstimatedPreparationTime)
	assert.Equal(t, models.StatusConfirmed, body.Order.Status)

	require.Len(t, env.events.Events, 1)
	updated, ok := env.events.Events[0].(events.OrderTimeUpdated)
	require.True(t, ok)
	assert.Equal(t, 45, updated.Minutes)
	assert.Equal(t, "5551234567", updated.CustomerPhone)

	w = env.as(http.MethodPost, setTime, models.SetTimeRequest{Minutes: 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	require.Equal(t, http.StatusOK, env.as(http.MethodPut, status, models.UpdateOrderStatusRequest{Status: models.StatusPreparing}).Code)
	w = env.as(http.MethodPost, setTime, models.SetTimeRequest{Minutes: 10})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = env.as(http.MethodPost, "/set-time/9999", models.SetTimeRequest{Minutes: 10})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListOrdersFiltersAndSummarises(t *testing.T) {
	env := setup(t)
	c := env.seedCatalog()
	first := env.placeOrder(c)
	second := env.placeOrder(c)
	require.Equal(t, http.StatusOK, env.as(http.MethodPut, fmt.Sprintf("/orders/%d/status", first.ID),
		models.UpdateOrderStatusRequest{Status: models.StatusConfirmed}).Code)

	w := env.as(http.MethodGet, "/orders", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Count   int            `json:"count"`
		Summary map[string]int `json:"order_summary"`
		Orders  []models.Order `json:"orders"`
	}
	decode(t, w, &list)
	assert.Equal(t, 2, list.Count)
	assert.Equal(t, map[string]int{"pending": 1, "confirmed": 1}, list.Summary)
	assert.Equal(t, second.ID, list.Orders[0].ID, "newest first")

	w = env.as(http.MethodGet, "/orders?status=confirmed", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &list)
	require.Equal(t, 1, list.Count)
	assert.Equal(t, first.ID, list.Orders[0].ID)

	w = env.as(http.MethodGet, "/orders?status=lost", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetOrderNotFound(t *testing.T) {
	env := setup(t)
	assert.Equal(t, http.StatusNotFound, env.as(http.MethodGet, "/orders/42", nil).Code)
}
