package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"phone-order-api/config"
	"phone-order-api/events"
	"phone-order-api/middleware"
	"phone-order-api/models"
	"phone-order-api/phone"
	"phone-order-api/pricing"
	"phone-order-api/statemachine"
)

// orderDetail preloads the lines and audit trail in insertion order.
func orderDetail(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("id asc") }).
		Preload("StatusHistory", func(tx *gorm.DB) *gorm.DB { return tx.Order("id asc") })
}

// dispatch hands an event to the configured dispatcher. Failures are logged only.
func dispatch(c *gin.Context, event events.Event) {
	if err := config.Events.Dispatch(c.Request.Context(), event); err != nil {
		log.WithFields(log.Fields{
			"event":      event.Type(),
			"request_id": c.GetString(middleware.RequestIDKey),
		}).WithError(err).Error("Failed to dispatch order event")
	}
}

// ListOrders returns orders newest first with a per-status summary
func ListOrders(c *gin.Context) {
	query := config.DB.Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("id asc") })

	if raw := c.Query("status"); raw != "" {
		status, err := statemachine.ParseStatus(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, err.Error(), nil)
			return
		}
		query = query.Where("status = ?", status)
	}

	var orders []models.Order
	if err := query.Order("created_at desc").Order("id desc").Find(&orders).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to load orders", err)
		return
	}

	summary := map[string]int{}
	for _, o := range orders {
		summary[string(o.Status)]++
	}

	c.JSON(http.StatusOK, gin.H{
		"order_summary": summary,
		"count":         len(orders),
		"orders":        orders,
	})
}

// GetOrder returns one order with its lines and status history
func GetOrder(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var order models.Order
	if !findOr404(c, orderDetail(config.DB), &order, id, "Order") {
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// CreateOrder prices the lines from the catalog, upserts the customer by phone
// and stores the order as pending, all in one transaction.
func CreateOrder(c *gin.Context) {
	var req models.CreateOrderRequest
	if !bindJSON(c, &req) {
		return
	}
	name := strings.TrimSpace(req.CustomerName)
	if name == "" {
		respondError(c, http.StatusBadRequest, "Customer name is required", nil)
		return
	}
	digits, err := phone.Normalize(req.CustomerPhone)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Phone number must contain exactly 10 digits", err)
		return
	}

	userID := middleware.GetUserID(c)
	order := models.Order{
		CustomerName:        name,
		CustomerPhone:       digits,
		Status:              models.StatusPending,
		PaymentMethod:       strings.TrimSpace(req.PaymentMethod),
		SpecialInstructions: strings.TrimSpace(req.SpecialInstructions),
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		restaurant, err := loadRestaurant(tx)
		if err != nil {
			return err
		}
		if !restaurant.IsActive {
			return badRequest("Restaurant is currently closed")
		}

		items, err := buildOrderItems(tx, req.Items)
		if err != nil {
			return err
		}
		order.Items = items
		if err := order.Reprice(); err != nil {
			return badRequest("Order total is out of range")
		}

		customer, err := upsertCustomer(tx, name, digits, order.PaymentMethod)
		if err != nil {
			return err
		}
		order.CustomerID = &customer.ID

		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		return tx.Create(&models.OrderStatusHistory{
			OrderID:   order.ID,
			ToStatus:  models.StatusPending,
			ChangedBy: userID,
			Note:      "Order created",
		}).Error
	})
	if err != nil {
		respondTxError(c, err, "Failed to create order")
		return
	}

	if err := orderDetail(config.DB).First(&order, order.ID).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to load order", err)
		return
	}

	log.WithFields(log.Fields{
		"order_id": order.ID,
		"total":    order.TotalAmount,
		"items":    len(order.Items),
	}).Info("Order created")

	dispatch(c, events.OrderCreated{
		OrderID:       order.ID,
		CustomerName:  order.CustomerName,
		CustomerPhone: order.CustomerPhone,
		TotalAmount:   order.TotalAmount,
		ItemCount:     len(order.Items),
		OccurredAt:    time.Now(),
	})

	c.JSON(http.StatusCreated, gin.H{"message": "Order created successfully", "order": order})
}

// buildOrderItems snapshots the requested menu items and add-ons.
// Only available entries are accepted and add-ons must share the item's category.
func buildOrderItems(tx *gorm.DB, lines []models.OrderLineRequest) ([]models.OrderItem, error) {
	items := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		if line.Quantity < 1 {
			return nil, badRequest("Quantity must be at least 1")
		}
		if line.Quantity > pricing.MaxQuantity {
			return nil, badRequest(fmt.Sprintf("Quantity must be at most %d", pricing.MaxQuantity))
		}
		var menuItem models.MenuItem
		if err := tx.First(&menuItem, line.MenuItemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, badRequest(fmt.Sprintf("Menu item %d not found", line.MenuItemID))
			}
			return nil, err
		}
		if !menuItem.IsAvailable {
			return nil, badRequest(fmt.Sprintf("Menu item '%s' is not available", menuItem.Name))
		}

		snapshots, err := addOnSnapshots(tx, menuItem, line.AddOnIDs)
		if err != nil {
			return nil, err
		}
		item := models.OrderItem{
			MenuItemID: menuItem.ID,
			Name:       menuItem.Name,
			Quantity:   line.Quantity,
			BasePrice:  menuItem.BasePrice,
			AddOns:     snapshots,
		}
		if err := item.Reprice(); err != nil {
			return nil, badRequest(fmt.Sprintf("Price of '%s' is out of range", menuItem.Name))
		}
		items = append(items, item)
	}
	return items, nil
}

func addOnSnapshots(tx *gorm.DB, menuItem models.MenuItem, ids []uint) ([]models.AddOnSnapshot, error) {
	if len(ids) == 0 {
		return []models.AddOnSnapshot{}, nil
	}
	var found []models.AddOn
	if err := tx.Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint]models.AddOn, len(found))
	for _, a := range found {
		byID[a.ID] = a
	}

	snapshots := make([]models.AddOnSnapshot, 0, len(ids))
	for _, id := range ids {
		addOn, ok := byID[id]
		switch {
		case !ok:
			return nil, badRequest(fmt.Sprintf("Add-on %d not found", id))
		case !addOn.IsAvailable:
			return nil, badRequest(fmt.Sprintf("Add-on '%s' is not available", addOn.Name))
		case addOn.Category != menuItem.Category:
			return nil, badRequest(fmt.Sprintf("Add-on '%s' cannot be added to '%s'", addOn.Name, menuItem.Name))
		}
		snapshots = append(snapshots, addOn.Snapshot())
	}
	return snapshots, nil
}

// upsertCustomer creates the customer on first order, otherwise bumps the
// order counters. It is a single INSERT .. ON CONFLICT so concurrent first
// orders from the same phone both succeed.
func upsertCustomer(tx *gorm.DB, name, digits, paymentMethod string) (*models.Customer, error) {
	now := time.Now()
	customer := models.Customer{
		Name:                   name,
		Phone:                  digits,
		PreferredPaymentMethod: paymentMethod,
		TotalOrders:            1,
		LastOrderDate:          &now,
	}
	bump := clause.Assignments(map[string]interface{}{
		"total_orders":    gorm.Expr("customers.total_orders + ?", 1),
		"last_order_date": now,
	})
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "phone"}},
		DoUpdates: bump,
	}).Create(&customer).Error
	if err != nil {
		return nil, err
	}
	var stored models.Customer
	if err := tx.Where("phone = ?", digits).First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

// UpdateOrderStatus moves an order through the lifecycle
func UpdateOrderStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req models.UpdateOrderStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	next, err := statemachine.ParseStatus(string(req.Status))
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	var order models.Order
	if !findOr404(c, config.DB, &order, id, "Order") {
		return
	}

	if order.Status == next {
		if err := orderDetail(config.DB).First(&order, order.ID).Error; err != nil {
			respondError(c, http.StatusInternalServerError, "Failed to load order", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Order status unchanged", "order": order})
		return
	}

	if err := statemachine.CanTransition(order.Status, next); err != nil {
		log.WithFields(log.Fields{"order_id": order.ID, "from": order.Status, "to": next}).
			Warn("Rejected status transition")
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{
			"error":             "Invalid state transition",
			"current_status":    order.Status,
			"requested":         next,
			"reason":            err.Error(),
			"valid_next_states": statemachine.ValidTransitionsFrom(order.Status),
		})
		return
	}

	prev := order.Status
	userID := middleware.GetUserID(c)
	updates := map[string]interface{}{"status": next}
	if next == models.StatusConfirmed {
		eta := models.DefaultPreparationMinutes
		if req.EstimatedPreparationTime != nil {
			eta = *req.EstimatedPreparationTime
		}
		updates["estimated_preparation_time"] = eta
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, prev).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return &requestError{status: http.StatusConflict, message: "Order status was changed by another request"}
		}
		return tx.Create(&models.OrderStatusHistory{
			OrderID:    order.ID,
			FromStatus: prev,
			ToStatus:   next,
			ChangedBy:  userID,
			Note:       req.Note,
		}).Error
	})
	if err != nil {
		respondTxError(c, err, "Failed to update order status")
		return
	}

	if err := orderDetail(config.DB).First(&order, order.ID).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to load order", err)
		return
	}

	log.WithFields(log.Fields{"order_id": order.ID, "from": prev, "to": next}).Info("Order status updated")

	event := events.OrderStatusChanged{
		OrderID:                  order.ID,
		From:                     prev,
		To:                       next,
		EstimatedPreparationTime: order.EstimatedPreparationTime,
		CustomerPhone:            order.CustomerPhone,
		ChangedBy:                userID,
		OccurredAt:               time.Now(),
	}
	if restaurant, err := loadRestaurant(config.DB); err == nil {
		event.RestaurantName = restaurant.Name
		event.RestaurantAddress = restaurant.Address
	}
	dispatch(c, event)

	c.JSON(http.StatusOK, gin.H{"message": "Order status updated", "order": order})
}

// SetOrderTime changes the preparation estimate of a confirmed order
func SetOrderTime(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req models.SetTimeRequest
	if !bindJSON(c, &req) {
		return
	}

	var order models.Order
	if !findOr404(c, config.DB, &order, id, "Order") {
		return
	}
	if order.Status != models.StatusConfirmed {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{
			"error":          "Preparation time can only be set while the order is confirmed",
			"current_status": order.Status,
		})
		return
	}

	res := config.DB.Model(&models.Order{}).
		Where("id = ? AND status = ?", order.ID, models.StatusConfirmed).
		Update("estimated_preparation_time", req.Minutes)
	if res.Error != nil {
		respondError(c, http.StatusInternalServerError, "Failed to set preparation time", res.Error)
		return
	}
	if res.RowsAffected == 0 {
		respondError(c, http.StatusConflict, "Order status was changed by another request", nil)
		return
	}

	if err := orderDetail(config.DB).First(&order, order.ID).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to load order", err)
		return
	}

	event := events.OrderTimeUpdated{
		OrderID:       order.ID,
		Minutes:       req.Minutes,
		CustomerPhone: order.CustomerPhone,
		ChangedBy:     middleware.GetUserID(c),
		OccurredAt:    time.Now(),
	}
	if restaurant, err := loadRestaurant(config.DB); err == nil {
		event.RestaurantName = restaurant.Name
	}
	dispatch(c, event)

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Order time set to %d minutes", req.Minutes),
		"order":   order,
	})
}
