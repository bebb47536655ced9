// internal/video/service.go
package video

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Dasione/ai-fitness/internal/media"
	"github.com/Dasione/ai-fitness/internal/models"
	"github.com/Dasione/ai-fitness/internal/storage"
)

var (
	ErrNotFound      = errors.New("video not found")
	ErrForbidden     = errors.New("not allowed to modify this video")
	ErrTitleRequired = errors.New("video title is required")
)

// Prober extracts duration and a thumbnail from a video file. Satisfied by
// *media.FFmpegProber.
type Prober interface {
	Probe(ctx context.Context, videoPath, thumbnailDir string) (*media.ProbeResult, error)
}

// Service owns the video lifecycle: upload, async probing, metadata updates
// and the delete cascade over analyses and artifacts.
type Service struct {
	db            *gorm.DB
	store         storage.Store
	prober        Prober
	videosDir     string
	thumbnailsDir string
	segmentsDir   string
}

func NewService(db *gorm.DB, store storage.Store, prober Prober, videosDir, thumbnailsDir, segmentsDir string) *Service {
	return &Service{
		db:            db,
		store:         store,
		prober:        prober,
		videosDir:     videosDir,
		thumbnailsDir: thumbnailsDir,
		segmentsDir:   segmentsDir,
	}
}

// Upload persists the blob and the row, then kicks off the probe step in the
// background. The returned video is still unprocessed with duration 0.
func (s *Service) Upload(ctx context.Context, userID, title, description, filename string, r io.Reader, size int64) (*models.Video, error) {
	if title == "" {
		return nil, ErrTitleRequired
	}

	ext := filepath.Ext(filename)
	name := uuid.NewString() + ext
	contentType := "application/octet-stream"
	switch ext {
	case ".mp4":
		contentType = "video/mp4"
	case ".webm":
		contentType = "video/webm"
	}

	relPath, err := s.store.Save(ctx, s.videosDir, name, r, size, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to store video file: %w", err)
	}

	video := &models.Video{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		FilePath:    relPath,
		FileSize:    size,
		Duration:    0,
		Status:      models.VideoStatusUnprocessed,
		UserID:      userID,
	}
	if err := s.db.WithContext(ctx).Create(video).Error; err != nil {
		return nil, err
	}

	go s.probeVideo(context.Background(), video.ID)

	return video, nil
}

// probeVideo runs the media probe and records the result. Probe failure is
// never fatal: duration is forced to 0 and the status left untouched.
func (s *Service) probeVideo(ctx context.Context, videoID string) {
	var video models.Video
	if err := s.db.WithContext(ctx).First(&video, "id = ?", videoID).Error; err != nil {
		log.Printf("probe: video %s not found: %v", videoID, err)
		return
	}

	videoPath, cleanup, err := s.resolvePath(ctx, &video)
	if err != nil {
		s.probeFailed(ctx, videoID, err)
		return
	}
	defer cleanup()

	thumbDir, err := os.MkdirTemp("", "thumbnails")
	if err != nil {
		s.probeFailed(ctx, videoID, err)
		return
	}
	defer os.RemoveAll(thumbDir)

	result, err := s.prober.Probe(ctx, videoPath, thumbDir)
	if err != nil {
		s.probeFailed(ctx, videoID, err)
		return
	}

	duration := result.Duration
	if math.IsNaN(duration) || duration < 0 {
		duration = 0
	}

	thumbnailRel := ""
	if result.ThumbnailPath != "" {
		f, err := os.Open(result.ThumbnailPath)
		if err == nil {
			info, _ := f.Stat()
			var size int64
			if info != nil {
				size = info.Size()
			}
			thumbnailRel, err = s.store.Save(ctx, s.thumbnailsDir, filepath.Base(result.ThumbnailPath), f, size, "image/jpeg")
			f.Close()
			if err != nil {
				log.Printf("probe: failed to store thumbnail for video %s: %v", videoID, err)
				thumbnailRel = ""
			}
		}
	}

	updates := map[string]interface{}{
		"duration": int(math.Round(duration)),
		"status":   models.VideoStatusUnprocessed,
	}
	if thumbnailRel != "" {
		updates["thumbnail_path"] = thumbnailRel
	}
	if err := s.db.WithContext(ctx).Model(&models.Video{}).Where("id = ?", videoID).Updates(updates).Error; err != nil {
		log.Printf("probe: failed to update video %s: %v", videoID, err)
	}
}

func (s *Service) probeFailed(ctx context.Context, videoID string, cause error) {
	log.Printf("probe failed for video %s: %v", videoID, cause)
	if err := s.db.WithContext(ctx).Model(&models.Video{}).Where("id = ?", videoID).
		Update("duration", 0).Error; err != nil {
		log.Printf("probe: failed to reset duration for video %s: %v", videoID, err)
	}
}

func (s *Service) Get(ctx context.Context, videoID string) (*models.Video, error) {
	var video models.Video
	if err := s.db.WithContext(ctx).First(&video, "id = ?", videoID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &video, nil
}

// List returns one page of the owner's videos, newest first, with the
// pre-pagination total.
func (s *Service) List(ctx context.Context, userID string, page, limit int) ([]models.Video, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Video{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var videos []models.Video
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&videos).Error
	if err != nil {
		return nil, 0, err
	}
	return videos, total, nil
}

func (s *Service) Update(ctx context.Context, videoID, title, description string) (*models.Video, error) {
	if title == "" {
		return nil, ErrTitleRequired
	}

	video, err := s.Get(ctx, videoID)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Model(video).Updates(map[string]interface{}{
		"title":       title,
		"description": description,
	}).Error
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, videoID)
}

// Delete cascades: analysis rows and the video row go in one transaction,
// then the physical files are removed best-effort. A file already missing
// from storage never surfaces as an error.
func (s *Service) Delete(ctx context.Context, userID, videoID string) error {
	var video models.Video
	if err := s.db.WithContext(ctx).First(&video, "id = ?", videoID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if video.UserID != userID {
		return ErrForbidden
	}
	return s.deleteCascade(ctx, &video)
}

func (s *Service) deleteCascade(ctx context.Context, video *models.Video) error {
	var analyses []models.VideoAnalysis
	if err := s.db.WithContext(ctx).Find(&analyses, "video_id = ?", video.ID).Error; err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.VideoAnalysis{}, "video_id = ?", video.ID).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Video{}, "id = ?", video.ID).Error
	})
	if err != nil {
		return err
	}

	if _, err := s.store.Delete(ctx, s.videosDir, filepath.Base(video.FilePath)); err != nil {
		log.Printf("failed to delete video file for %s: %v", video.ID, err)
	}
	if video.ThumbnailPath != "" {
		if _, err := s.store.Delete(ctx, s.thumbnailsDir, filepath.Base(video.ThumbnailPath)); err != nil {
			log.Printf("failed to delete thumbnail for %s: %v", video.ID, err)
		}
	}

	var manifest []string
	for _, a := range analyses {
		manifest = append(manifest, a.OutputArr...)
	}
	storage.DeleteArtifacts(ctx, s.store, s.segmentsDir, manifest, video.BaseName())
	return nil
}

// DeleteResult reports one item of a batch delete.
type DeleteResult struct {
	VideoID string `json:"video_id"`
	Deleted bool   `json:"deleted"`
	Error   string `json:"error,omitempty"`
}

// DeleteBatch cascades every requested video the user owns, continuing past
// per-item failures and reporting each outcome individually.
func (s *Service) DeleteBatch(ctx context.Context, userID string, videoIDs []string) ([]DeleteResult, error) {
	var videos []models.Video
	if err := s.db.WithContext(ctx).Find(&videos, "id IN ? AND user_id = ?", videoIDs, userID).Error; err != nil {
		return nil, err
	}
	if len(videos) == 0 {
		return nil, ErrNotFound
	}

	found := make(map[string]*models.Video, len(videos))
	for i := range videos {
		found[videos[i].ID] = &videos[i]
	}

	results := make([]DeleteResult, 0, len(videoIDs))
	for _, id := range videoIDs {
		video, ok := found[id]
		if !ok {
			results = append(results, DeleteResult{VideoID: id, Error: "video not found"})
			continue
		}
		if err := s.deleteCascade(ctx, video); err != nil {
			log.Printf("batch delete: failed to delete video %s: %v", id, err)
			results = append(results, DeleteResult{VideoID: id, Error: err.Error()})
			continue
		}
		results = append(results, DeleteResult{VideoID: id, Deleted: true})
	}
	return results, nil
}

// resolvePath mirrors the analysis service: local path when available,
// otherwise a temp fetch.
func (s *Service) resolvePath(ctx context.Context, video *models.Video) (string, func(), error) {
	name := filepath.Base(video.FilePath)
	if p, ok := s.store.LocalPath(s.videosDir, name); ok {
		return p, func() {}, nil
	}
	tmp := filepath.Join(os.TempDir(), fmt.Sprintf("probe_%s%s", uuid.NewString(), filepath.Ext(name)))
	if err := s.store.Fetch(ctx, s.videosDir, name, tmp); err != nil {
		return "", nil, fmt.Errorf("failed to fetch video from storage: %w", err)
	}
	return tmp, func() { os.Remove(tmp) }, nil
}
