// internal/handlers/stats.go
package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Dasione/ai-fitness/internal/stats"
)

// GetUserRanking returns one page of the leaderboard; the pre-pagination
// total goes out in the X-Total-Count header.
func GetUserRanking(statsSvc *stats.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "10"))

		ranking, total, err := statsSvc.Ranking(c.Request.Context(), page, pageSize, time.Now())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user ranking"})
			return
		}

		c.Header("X-Total-Count", strconv.Itoa(total))
		c.JSON(http.StatusOK, ranking)
	}
}
