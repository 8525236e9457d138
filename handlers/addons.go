package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"phone-order-api/config"
	"phone-order-api/models"
)

func ListAddOns(c *gin.Context) {
	query, ok := catalogQuery(c)
	if !ok {
		return
	}
	var addOns []models.AddOn
	if err := query.Order("category asc").Order("id asc").Find(&addOns).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to load add-ons", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(addOns), "addons": addOns})
}

func GetAddOn(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var addOn models.AddOn
	if !findOr404(c, config.DB, &addOn, id, "Add-on") {
		return
	}
	c.JSON(http.StatusOK, gin.H{"addon": addOn})
}

func CreateAddOn(c *gin.Context) {
	var req models.AddOnRequest
	if !bindJSON(c, &req) {
		return
	}
	name, category := strings.TrimSpace(req.Name), strings.TrimSpace(req.Category)
	if name == "" || category == "" {
		respondError(c, http.StatusBadRequest, "Name and category are required", nil)
		return
	}

	addOn := models.AddOn{
		Name:        name,
		Category:    category,
		Type:        strings.TrimSpace(req.Type),
		Price:       req.Price,
		IsAvailable: req.IsAvailable == nil || *req.IsAvailable,
	}
	if err := config.DB.Create(&addOn).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to add add-on", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Add-on added", "addon": addOn})
}

// UpdateAddOn is a partial update, same rules as UpdateMenuItem
func UpdateAddOn(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var addOn models.AddOn
	if !findOr404(c, config.DB, &addOn, id, "Add-on") {
		return
	}
	var req models.AddOnUpdate
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
	if req.Type != nil {
		update["type"] = strings.TrimSpace(*req.Type)
	}
	if req.Price != nil {
		update["price"] = *req.Price
	}
	if req.IsAvailable != nil {
		update["is_available"] = *req.IsAvailable
	}

	if len(update) > 0 {
		if err := config.DB.Model(&addOn).Updates(update).Error; err != nil {
			respondError(c, http.StatusInternalServerError, "Failed to update add-on", err)
			return
		}
	}
	if err := config.DB.First(&addOn, addOn.ID).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to load add-on", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Add-on updated", "addon": addOn})
}

func DeleteAddOn(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var addOn models.AddOn
	if !findOr404(c, config.DB, &addOn, id, "Add-on") {
		return
	}
	if err := config.DB.Delete(&addOn).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to delete add-on", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Add-on deleted"})
}
