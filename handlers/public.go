package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"phone-order-api/config"
	"phone-order-api/statemachine"
)

// GetStateMachineInfo returns the full state machine for informational purposes
func GetStateMachineInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"state_machine":   statemachine.GetAllTransitions(),
		"terminal_states": statemachine.TerminalStatuses(),
		"description":     "Phone order lifecycle state machine",
	})
}

// Health reports whether the database answers.
func Health(c *gin.Context) {
	status, code := "healthy", http.StatusOK
	if sqlDB, err := config.DB.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
		status, code = "degraded", http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":  status,
		"service": "Phone Order API",
		"version": "1.0.0",
	})
}
