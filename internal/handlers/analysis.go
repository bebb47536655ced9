// internal/handlers/analysis.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Dasione/ai-fitness/internal/analysis"
	"github.com/Dasione/ai-fitness/internal/scoring"
)

type StartAnalysisRequest struct {
	Hand      string `json:"hand" binding:"required"`
	ReAnalyze bool   `json:"reAnalyze"`
}

// StartAnalysis blocks until the processor answers or times out; the client
// should treat it as a long-running call.
func StartAnalysis(analyses *analysis.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req StartAnalysisRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		result, err := analyses.Start(c.Request.Context(), c.Param("id"), req.Hand, req.ReAnalyze)
		if err != nil {
			var scoreErr *scoring.Error
			switch {
			case errors.Is(err, analysis.ErrVideoNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "Video not found"})
			case errors.Is(err, analysis.ErrHandRequired), errors.Is(err, analysis.ErrInvalidHand):
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			case errors.Is(err, analysis.ErrAnalysisInProgress):
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			case errors.As(err, &scoreErr):
				c.JSON(http.StatusInternalServerError, gin.H{"message": "Analysis failed", "error": scoreErr.Reason})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"message": "Analysis failed", "error": err.Error()})
			}
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Analysis completed", "analysis": result})
	}
}

func GetAnalysis(analyses *analysis.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := analyses.Get(c.Request.Context(), c.Param("id"), c.Query("hand"))
		if err != nil {
			if errors.Is(err, analysis.ErrAnalysisNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Analysis not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch analysis"})
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func DeleteAnalysis(analyses *analysis.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := analyses.Delete(c.Request.Context(), c.Param("id"), c.Query("hand"))
		if err != nil {
			switch {
			case errors.Is(err, analysis.ErrHandRequired):
				c.JSON(http.StatusBadRequest, gin.H{"error": "Hand parameter is required"})
			case errors.Is(err, analysis.ErrAnalysisNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "Analysis not found"})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete analysis"})
			}
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Analysis deleted"})
	}
}
