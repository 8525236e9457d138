package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"phone-order-api/config"
	"phone-order-api/models"
)

// catalogQuery applies the ?category= and ?available= filters shared by menu and add-ons.
func catalogQuery(c *gin.Context) (*gorm.DB, bool) {
	query := config.DB
	if category := strings.TrimSpace(c.Query("category")); category != "" {
		query = query.Where("category = ?", category)
	}
	if raw := c.Query("available"); raw != "" {
		available, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "available must be true or false", err)
			return nil, false
		}
		query = query.Where("is_available = ?", available)
	}
	return query, true
}

// ListMenuItems returns the menu, optionally filtered by category and availability
func ListMenuItems(c *gin.Context) {
	query, ok := catalogQuery(c)
	if !ok {
		return
	}
	var items []models.MenuItem
	if err := query.Order("category asc").Order("id asc").Find(&items).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to load menu", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(items), "menu": items})
}

func GetMenuItem(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var item models.MenuItem
	if !findOr404(c, config.DB, &item, id, "Menu item") {
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": item})
}

// CreateMenuItem adds a new item to the menu. Items are available unless told otherwise.
func CreateMenuItem(c *gin.Context) {
	var req models.MenuItemRequest
	if !bindJSON(c, &req) {
		return
	}
	name, category := strings.TrimSpace(req.Name), strings.TrimSpace(req.Category)
	if name == "" || category == "" {
		respondError(c, http.StatusBadRequest, "Name and category are required", nil)
		return
	}

	item := models.MenuItem{
		Name:        name,
		Category:    category,
		BasePrice:   req.BasePrice,
		Description: req.Description,
		IsAvailable: req.IsAvailable == nil || *req.IsAvailable,
	}
	if err := config.DB.Create(&item).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to add menu item", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Menu item added", "item": item})
}

// UpdateMenuItem changes only the supplied fields; toggling availability is a
// body of just {"is_available": false}.
func UpdateMenuItem(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var item models.MenuItem
	if !findOr404(c, config.DB, &item, id, "Menu item") {
		return
	}
	var req models.MenuItemUpdate
	if !bindJSON(c, &req) {
		return
	}

	update := map[string]interface{}{}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			respondError(c, http.StatusBadRequest, "Name cannot be empty", nil)
			return
		}
		update["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Category != nil {
		if strings.TrimSpace(*req.Category) == "" {
			respondError(c, http.StatusBadRequest, "Category cannot be empty", nil)
			return
		}
		update["category"] = strings.TrimSpace(*req.Category)
	}
	if req.BasePrice != nil {
		update["base_price"] = *req.BasePrice
	}
	if req.Description != nil {
		update["description"] = *req.Description
	}
	if req.IsAvailable != nil {
		update["is_available"] = *req.IsAvailable
	}

	if len(update) > 0 {
		if err := config.DB.Model(&item).Updates(update).Error; err != nil {
			respondError(c, http.StatusInternalServerError, "Failed to update menu item", err)
			return
		}
	}
	if err := config.DB.First(&item, item.ID).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to load menu item", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Menu item updated", "item": item})
}

// DeleteMenuItem removes the item. Orders keep their snapshot of it.
func DeleteMenuItem(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var item models.MenuItem
	if !findOr404(c, config.DB, &item, id, "Menu item") {
		return
	}
	if err := config.DB.Delete(&item).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to delete menu item", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Menu item deleted"})
}
