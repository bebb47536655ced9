// internal/handlers/service.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Dasione/ai-fitness/internal/processor"
)

func StartProcessorService(sup *processor.Supervisor) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := sup.Start(); err != nil {
			if errors.Is(err, processor.ErrAlreadyRunning) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Processor service already running"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start processor service"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Processor service started", "state": sup.State()})
	}
}

func StopProcessorService(sup *processor.Supervisor) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := sup.Stop(); err != nil {
			if errors.Is(err, processor.ErrNotRunning) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Processor service not running"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to stop processor service"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Processor service stopping", "state": sup.State()})
	}
}
