// internal/handlers/videos.go
package handlers

import (
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Dasione/ai-fitness/internal/stats"
	"github.com/Dasione/ai-fitness/internal/video"
)

func GetVideos(videos *video.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("userID")

		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

		list, total, err := videos.List(c.Request.Context(), userID, page, limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch videos"})
			return
		}

		totalPages := int(total) / limit
		if int(total)%limit != 0 {
			totalPages++
		}
		c.JSON(http.StatusOK, gin.H{
			"videos":     list,
			"total":      total,
			"page":       page,
			"totalPages": totalPages,
		})
	}
}

func GetVideo(videos *video.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, err := videos.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, video.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Video not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch video"})
			return
		}
		c.JSON(http.StatusOK, v)
	}
}

func UploadVideo(videos *video.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("userID")

		file, err := c.FormFile("video")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No video file provided"})
			return
		}

		ext := filepath.Ext(file.Filename)
		if ext != ".mp4" && ext != ".webm" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Only MP4 and WebM files are allowed"})
			return
		}

		title := c.PostForm("title")
		if title == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Video title is required"})
			return
		}
		description := c.PostForm("description")

		src, err := file.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read file"})
			return
		}
		defer src.Close()

		v, err := videos.Upload(c.Request.Context(), userID, title, description, file.Filename, src, file.Size)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save video"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"message": "Video uploaded, processing started",
			"video":   v,
		})
	}
}

type UpdateVideoRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func UpdateVideo(videos *video.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateVideoRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		v, err := videos.Update(c.Request.Context(), c.Param("id"), req.Title, req.Description)
		if err != nil {
			switch {
			case errors.Is(err, video.ErrTitleRequired):
				c.JSON(http.StatusBadRequest, gin.H{"error": "Video title is required"})
			case errors.Is(err, video.ErrNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "Video not found"})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update video"})
			}
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Video updated", "video": v})
	}
}

func DeleteVideo(videos *video.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("userID")

		err := videos.Delete(c.Request.Context(), userID, c.Param("id"))
		if err != nil {
			switch {
			case errors.Is(err, video.ErrNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "Video not found"})
			case errors.Is(err, video.ErrForbidden):
				c.JSON(http.StatusForbidden, gin.H{"error": "Not allowed to delete this video"})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete video"})
			}
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Video deleted"})
	}
}

type BatchDeleteRequest struct {
	VideoIDs []string `json:"video_ids" binding:"required,min=1"`
}

// BatchDeleteVideos deletes each requested video and reports per-item
// outcomes so the caller can tell full success from partial.
func BatchDeleteVideos(videos *video.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("userID")

		var req BatchDeleteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No videos selected"})
			return
		}

		results, err := videos.DeleteBatch(c.Request.Context(), userID, req.VideoIDs)
		if err != nil {
			if errors.Is(err, video.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "No matching videos found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete videos"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"results": results})
	}
}

func GetDashboard(statsSvc *stats.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("userID")

		dash, err := statsSvc.Dashboard(c.Request.Context(), userID, time.Now())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch dashboard stats"})
			return
		}
		c.JSON(http.StatusOK, dash)
	}
}
