package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"phone-order-api/config"
	"phone-order-api/models"
	"phone-order-api/phone"
)

// customerByKey resolves a path key: ten digits after normalisation is a phone
// number, anything else numeric is an id.
func customerByKey(db *gorm.DB, key string) (*models.Customer, error) {
	var customer models.Customer
	if digits, err := phone.Normalize(key); err == nil {
		if err := db.Where("phone = ?", digits).First(&customer).Error; err != nil {
			return nil, err
		}
		return &customer, nil
	}
	id, err := strconv.ParseUint(strings.TrimSpace(key), 10, 64)
	if err != nil || id == 0 {
		return nil, notFound("Customer not found")
	}
	if err := db.First(&customer, id).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func respondCustomerError(c *gin.Context, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(c, http.StatusNotFound, "Customer not found", nil)
		return
	}
	respondTxError(c, err, "Failed to load customer")
}

// ListCustomers returns up to 100 customers, newest first
func ListCustomers(c *gin.Context) {
	var customers []models.Customer
	if err := config.DB.Order("created_at desc").Order("id desc").Limit(100).Find(&customers).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to load customers", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(customers), "customers": customers})
}

func CreateCustomer(c *gin.Context) {
	var req models.CustomerRequest
	if !bindJSON(c, &req) {
		return
	}
	digits, err := phone.Normalize(req.Phone)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Phone number must contain exactly 10 digits", err)
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		respondError(c, http.StatusBadRequest, "Customer name is required", nil)
		return
	}

	var existing int64
	if err := config.DB.Model(&models.Customer{}).Where("phone = ?", digits).Count(&existing).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to create customer", err)
		return
	}
	if existing > 0 {
		respondError(c, http.StatusConflict, "A customer with this phone number already exists", nil)
		return
	}

	customer := models.Customer{
		Name:                   name,
		Phone:                  digits,
		Email:                  req.Email,
		PreferredPaymentMethod: req.PreferredPaymentMethod,
		DietaryPreferences:     req.DietaryPreferences,
	}
	if err := config.DB.Create(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			respondError(c, http.StatusConflict, "A customer with this phone number already exists", nil)
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to create customer", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Customer created", "customer": customer})
}

// GetCustomer looks a customer up by phone number or id
func GetCustomer(c *gin.Context) {
	customer, err := customerByKey(config.DB, c.Param("key"))
	if err != nil {
		respondCustomerError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"customer": customer})
}

// UpdateCustomer applies a partial update to the customer with the given phone number
func UpdateCustomer(c *gin.Context) {
	digits, err := phone.Normalize(c.Param("key"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Phone number must contain exactly 10 digits", err)
		return
	}
	var customer models.Customer
	if err := config.DB.Where("phone = ?", digits).First(&customer).Error; err != nil {
		respondCustomerError(c, err)
		return
	}

	var req models.CustomerUpdate
	if !bindJSON(c, &req) {
		return
	}
	update := map[string]interface{}{}
	if req.Name != nil {
		update["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Phone != nil {
		newPhone, err := phone.Normalize(*req.Phone)
		if err != nil {
			respondError(c, http.StatusBadRequest, "Phone number must contain exactly 10 digits", err)
			return
		}
		update["phone"] = newPhone
	}
	if req.Email != nil {
		update["email"] = *req.Email
	}
	if req.PreferredPaymentMethod != nil {
		update["preferred_payment_method"] = *req.PreferredPaymentMethod
	}
	if req.DietaryPreferences != nil {
		update["dietary_preferences"] = *req.DietaryPreferences
	}

	if len(update) > 0 {
		if err := config.DB.Model(&customer).Updates(update).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				respondError(c, http.StatusConflict, "A customer with this phone number already exists", nil)
				return
			}
			respondError(c, http.StatusInternalServerError, "Failed to update customer", err)
			return
		}
	}
	if err := config.DB.First(&customer, customer.ID).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to load customer", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Customer updated", "customer": customer})
}

// GetCustomerOrders returns the customer's order history, newest first
func GetCustomerOrders(c *gin.Context) {
	customer, err := customerByKey(config.DB, c.Param("key"))
	if err != nil {
		respondCustomerError(c, err)
		return
	}
	var orders []models.Order
	err = config.DB.Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("id asc") }).
		Where("customer_id = ? OR customer_phone = ?", customer.ID, customer.Phone).
		Order("created_at desc").Order("id desc").
		Find(&orders).Error
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to load orders", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(orders), "orders": orders})
}
