package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"phone-order-api/middleware"
)

// requestError is returned from inside transactions to pick the HTTP status.
type requestError struct {
	status  int
	message string
}

func (e *requestError) Error() string { return e.message }

func badRequest(msg string) error { return &requestError{status: http.StatusBadRequest, message: msg} }

func notFound(msg string) error { return &requestError{status: http.StatusNotFound, message: msg} }

// respondError logs the failure and aborts with {"error": msg}.
func respondError(c *gin.Context, status int, msg string, err error) {
	entry := log.WithFields(log.Fields{
		"path":       c.FullPath(),
		"status":     status,
		"request_id": c.GetString(middleware.RequestIDKey),
	})
	if err != nil {
		entry = entry.WithError(err)
	}
	if status >= http.StatusInternalServerError {
		entry.Error(msg)
	} else {
		entry.Warn(msg)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// respondTxError maps an error returned from a transaction.
func respondTxError(c *gin.Context, err error, fallback string) {
	var reqErr *requestError
	switch {
	case errors.As(err, &reqErr):
		respondError(c, reqErr.status, reqErr.message, nil)
	case errors.Is(err, gorm.ErrRecordNotFound):
		respondError(c, http.StatusNotFound, "Record not found", err)
	default:
		respondError(c, http.StatusInternalServerError, fallback, err)
	}
}

// bindJSON binds the body and answers 400 on failure.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, err.Error(), nil)
		return false
	}
	return true
}

// paramID parses a numeric path parameter and answers 400 when it is not one.
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		respondError(c, http.StatusBadRequest, "Invalid "+name, err)
		return 0, false
	}
	return uint(id), true
}

// findOr404 loads a record by id, answering 404 or 500 itself.
func findOr404(c *gin.Context, db *gorm.DB, dst interface{}, id uint, what string) bool {
	if err := db.First(dst, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, what+" not found", nil)
		} else {
			respondError(c, http.StatusInternalServerError, "Failed to load "+what, err)
		}
		return false
	}
	return true
}
