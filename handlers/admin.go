package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"phone-order-api/config"
	"phone-order-api/middleware"
	"phone-order-api/models"
)

// AdminListUsers returns all accounts, optionally only active or admin ones
func AdminListUsers(c *gin.Context) {
	var users []models.User
	query := config.DB
	if c.Query("active") == "true" {
		query = query.Where("is_active = ?", true)
	}
	if c.Query("admin") == "true" {
		query = query.Where("is_admin = ?", true)
	}
	if err := query.Order("id asc").Find(&users).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to load users", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(users), "users": users})
}

// AdminUpdateUser activates, deactivates, promotes or demotes an account
func AdminUpdateUser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var user models.User
	if !findOr404(c, config.DB, &user, id, "User") {
		return
	}
	var req models.UserAdminUpdate
	if !bindJSON(c, &req) {
		return
	}

	self := id == middleware.GetUserID(c)
	if self && ((req.IsActive != nil && !*req.IsActive) || (req.IsAdmin != nil && !*req.IsAdmin)) {
		respondError(c, http.StatusBadRequest, "You cannot deactivate or demote your own account", nil)
		return
	}

	update := map[string]interface{}{}
	if req.IsActive != nil {
		update["is_active"] = *req.IsActive
	}
	if req.IsAdmin != nil {
		update["is_admin"] = *req.IsAdmin
	}
	if len(update) > 0 {
		if err := config.DB.Model(&user).Updates(update).Error; err != nil {
			respondError(c, http.StatusInternalServerError, "Failed to update user", err)
			return
		}
	}
	if err := config.DB.First(&user, user.ID).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to load user", err)
		return
	}
	log.WithFields(log.Fields{"user_id": user.ID, "by": middleware.GetUserID(c)}).Info("User updated by admin")
	c.JSON(http.StatusOK, gin.H{"message": "User updated", "user": user})
}

// AdminDeleteUser removes an account other than the caller's
func AdminDeleteUser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if id == middleware.GetUserID(c) {
		respondError(c, http.StatusBadRequest, "You cannot delete your own account", nil)
		return
	}
	var user models.User
	if !findOr404(c, config.DB, &user, id, "User") {
		return
	}
	if err := config.DB.Delete(&user).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to delete user", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}
