package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"phone-order-api/config"
	"phone-order-api/middleware"
	"phone-order-api/models"
)

// Register creates a new staff account
func Register(c *gin.Context) {
	var req models.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if username == "" {
		respondError(c, http.StatusBadRequest, "Username is required", nil)
		return
	}

	// Check uniqueness
	var count int64
	if err := config.DB.Model(&models.User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to create user", err)
		return
	}
	if count > 0 {
		respondError(c, http.StatusConflict, "Username or email already registered", nil)
		return
	}

	user, err := CreateUser(config.DB, username, email, req.Password, false)
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			respondError(c, http.StatusConflict, "Username or email already registered", nil)
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to create user", err)
		return
	}
	log.WithField("user_id", user.ID).Info("User registered")

	c.JSON(http.StatusCreated, gin.H{"message": "Account created successfully", "user": user})
}

// CreateUser hashes the password and stores an active account.
func CreateUser(db *gorm.DB, username, email, password string, admin bool) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := models.User{
		Username:     username,
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: string(hash),
		IsActive:     true,
		IsAdmin:      admin,
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Login authenticates a user and returns a bearer token
func Login(c *gin.Context) {
	var req models.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	var user models.User
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := config.DB.Where("email = ?", email).First(&user).Error; err != nil {
		respondError(c, http.StatusUnauthorized, "Invalid email or password", nil)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		respondError(c, http.StatusUnauthorized, "Invalid email or password", nil)
		return
	}
	if !user.IsActive {
		respondError(c, http.StatusUnauthorized, "Account is disabled", nil)
		return
	}

	token, err := middleware.GenerateToken(&user)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to generate token", err)
		return
	}

	c.JSON(http.StatusOK, models.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        user,
	})
}

// GetProfile returns the authenticated user's profile
func GetProfile(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": middleware.CurrentUser(c)})
}

// UpdateProfile changes the caller's username or email
func UpdateProfile(c *gin.Context) {
	user := middleware.CurrentUser(c)
	var req models.ProfileUpdate
	if !bindJSON(c, &req) {
		return
	}

	update := map[string]interface{}{}
	if req.Username != nil {
		update["username"] = strings.TrimSpace(*req.Username)
	}
	if req.Email != nil {
		update["email"] = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if len(update) > 0 {
		var taken int64
		if err := config.DB.Model(&models.User{}).
			Where("id <> ? AND (username = ? OR email = ?)", user.ID, update["username"], update["email"]).
			Count(&taken).Error; err != nil {
			respondError(c, http.StatusInternalServerError, "Failed to update profile", err)
			return
		}
		if taken > 0 {
			respondError(c, http.StatusConflict, "Username or email already registered", nil)
			return
		}
		if err := config.DB.Model(user).Updates(update).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				respondError(c, http.StatusConflict, "Username or email already registered", nil)
				return
			}
			respondError(c, http.StatusInternalServerError, "Failed to update profile", err)
			return
		}
	}
	if err := config.DB.First(user, user.ID).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to load profile", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated", "user": user})
}

// ChangePassword requires the current password before storing a new hash
func ChangePassword(c *gin.Context) {
	user := middleware.CurrentUser(c)
	var req models.ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		respondError(c, http.StatusBadRequest, "Current password is incorrect", nil)
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to hash password", err)
		return
	}
	if err := config.DB.Model(user).Update("password_hash", string(hash)).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to change password", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password changed"})
}
