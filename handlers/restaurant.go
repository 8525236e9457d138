package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"phone-order-api/config"
	"phone-order-api/models"
)

// loadRestaurant returns the settings record. The first row is the singleton.
func loadRestaurant(db *gorm.DB) (*models.Restaurant, error) {
	var restaurant models.Restaurant
	if err := db.Order("id asc").First(&restaurant).Error; err != nil {
		return nil, err
	}
	return &restaurant, nil
}

// GetRestaurant returns the restaurant settings, by id when one is given
func GetRestaurant(c *gin.Context) {
	var restaurant models.Restaurant
	if c.Param("id") != "" {
		id, ok := paramID(c, "id")
		if !ok || !findOr404(c, config.DB, &restaurant, id, "Restaurant") {
			return
		}
		c.JSON(http.StatusOK, gin.H{"restaurant": restaurant})
		return
	}

	r, err := loadRestaurant(config.DB)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(c, http.StatusNotFound, "Restaurant information not found", nil)
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to load restaurant", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"restaurant": r})
}

// UpdateRestaurant applies a partial update, including the is_active switch (admin only)
func UpdateRestaurant(c *gin.Context) {
	var restaurant models.Restaurant
	if c.Param("id") != "" {
		id, ok := paramID(c, "id")
		if !ok || !findOr404(c, config.DB, &restaurant, id, "Restaurant") {
			return
		}
	} else {
		r, err := loadRestaurant(config.DB)
		if err != nil {
			respondTxError(c, err, "Failed to load restaurant")
			return
		}
		restaurant = *r
	}

	var req models.RestaurantUpdate
	if !bindJSON(c, &req) {
		return
	}

	// Only supplied fields change
	update := map[string]interface{}{}
	if req.Name != nil {
		update["name"] = *req.Name
	}
	if req.Address != nil {
		update["address"] = *req.Address
	}
	if req.Phone != nil {
		update["phone"] = *req.Phone
	}
	if req.Email != nil {
		update["email"] = *req.Email
	}
	if req.OpeningHours != nil {
		update["opening_hours"] = *req.OpeningHours
	}
	if req.IsActive != nil {
		update["is_active"] = *req.IsActive
	}
	if len(update) > 0 {
		if err := config.DB.Model(&restaurant).Updates(update).Error; err != nil {
			respondError(c, http.StatusInternalServerError, "Failed to update restaurant information", err)
			return
		}
	}
	if err := config.DB.First(&restaurant, restaurant.ID).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to load restaurant", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Restaurant updated", "restaurant": restaurant})
}
