// internal/analysis/service.go
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Dasione/ai-fitness/internal/models"
	"github.com/Dasione/ai-fitness/internal/scoring"
	"github.com/Dasione/ai-fitness/internal/storage"
)

var (
	ErrVideoNotFound      = errors.New("video not found")
	ErrAnalysisNotFound   = errors.New("analysis not found")
	ErrHandRequired       = errors.New("hand parameter is required")
	ErrInvalidHand        = errors.New("invalid hand choice")
	ErrAnalysisInProgress = errors.New("analysis already in progress for this video and hand")
)

// Scorer is the external processor boundary, satisfied by *scoring.Client.
type Scorer interface {
	Score(ctx context.Context, videoPath, hand string) (*scoring.Result, error)
}

// Service drives the per-(video, hand) analysis state machine:
// none -> processing -> completed|error. A re-analyze request forces any
// state back to none before starting over.
type Service struct {
	db          *gorm.DB
	scorer      Scorer
	store       storage.Store
	videosDir   string
	segmentsDir string
}

func NewService(db *gorm.DB, scorer Scorer, store storage.Store, videosDir, segmentsDir string) *Service {
	return &Service{
		db:          db,
		scorer:      scorer,
		store:       store,
		videosDir:   videosDir,
		segmentsDir: segmentsDir,
	}
}

// Start runs one analysis for (videoID, hand), blocking until the processor
// answers or times out. Without reAnalyze a completed row short-circuits and
// the processor is not called again. The (video_id, hand_choice) unique
// index is the only guard against concurrent duplicates: the loser of a race
// gets ErrAnalysisInProgress instead of a second scoring run.
func (s *Service) Start(ctx context.Context, videoID, hand string, reAnalyze bool) (*models.VideoAnalysis, error) {
	if hand == "" {
		return nil, ErrHandRequired
	}
	if !models.ValidHand(hand) {
		return nil, ErrInvalidHand
	}

	var video models.Video
	if err := s.db.WithContext(ctx).First(&video, "id = ?", videoID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVideoNotFound
		}
		return nil, err
	}

	var prior *models.VideoAnalysis
	var existing models.VideoAnalysis
	err := s.db.WithContext(ctx).First(&existing, "video_id = ? AND hand_choice = ?", videoID, hand).Error
	switch {
	case err == nil:
		if !reAnalyze && existing.Status == models.AnalysisStatusCompleted {
			return &existing, nil
		}
		if reAnalyze {
			prior = &existing
		}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	run := &models.VideoAnalysis{
		ID:         uuid.NewString(),
		VideoID:    videoID,
		HandChoice: hand,
		Status:     models.AnalysisStatusProcessing,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if prior != nil {
			if err := tx.Delete(&models.VideoAnalysis{}, "id = ?", prior.ID).Error; err != nil {
				return err
			}
		}
		if err := tx.Create(run).Error; err != nil {
			return err
		}
		return tx.Model(&models.Video{}).Where("id = ?", videoID).
			Update("status", models.VideoStatusProcessing).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAnalysisInProgress
		}
		return nil, err
	}

	if prior != nil {
		storage.DeleteArtifacts(ctx, s.store, s.segmentsDir, prior.OutputArr, video.BaseName())
	}

	videoPath, cleanup, err := s.resolveVideoPath(ctx, &video)
	if err != nil {
		s.finalizeFailure(ctx, run, err.Error())
		return nil, err
	}
	defer cleanup()

	result, err := s.scorer.Score(ctx, videoPath, hand)
	if err != nil {
		s.finalizeFailure(ctx, run, err.Error())
		return nil, err
	}

	updates := map[string]interface{}{
		"case_arr":      models.JSONArray(result.CaseArr),
		"score_arr":     models.JSONArray(result.ScoreArr),
		"output_arr":    models.StringArray(result.OutputArr),
		"average_score": result.AverageScore,
		"status":        models.AnalysisStatusCompleted,
	}
	if result.Suggestions != "" {
		updates["suggestions"] = result.Suggestions
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(run).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Model(&models.Video{}).Where("id = ?", videoID).
			Update("status", models.VideoStatusProcessed).Error
	})
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).First(run, "id = ?", run.ID).Error; err != nil {
		return nil, err
	}
	return run, nil
}

// Get is a pure read of the analysis row for (videoID, hand).
func (s *Service) Get(ctx context.Context, videoID, hand string) (*models.VideoAnalysis, error) {
	var analysis models.VideoAnalysis
	err := s.db.WithContext(ctx).First(&analysis, "video_id = ? AND hand_choice = ?", videoID, hand).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAnalysisNotFound
		}
		return nil, err
	}
	return &analysis, nil
}

// Delete removes the analysis row and its segment artifacts. Artifacts are
// cleaned by manifest plus a prefix scan keyed by the video id, matching the
// names the processor writes for ad-hoc runs.
func (s *Service) Delete(ctx context.Context, videoID, hand string) error {
	if hand == "" {
		return ErrHandRequired
	}

	var existing models.VideoAnalysis
	err := s.db.WithContext(ctx).First(&existing, "video_id = ? AND hand_choice = ?", videoID, hand).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			storage.DeleteArtifacts(ctx, s.store, s.segmentsDir, nil, videoID)
			return ErrAnalysisNotFound
		}
		return err
	}

	if err := s.db.WithContext(ctx).Delete(&models.VideoAnalysis{}, "id = ?", existing.ID).Error; err != nil {
		return err
	}
	storage.DeleteArtifacts(ctx, s.store, s.segmentsDir, existing.OutputArr, videoID)
	return nil
}

// resolveVideoPath returns an absolute local path for the processor to read.
// With the local backend that is the stored file itself; otherwise the blob
// is fetched to a temp file and the returned cleanup removes it.
func (s *Service) resolveVideoPath(ctx context.Context, video *models.Video) (string, func(), error) {
	name := filepath.Base(video.FilePath)
	if p, ok := s.store.LocalPath(s.videosDir, name); ok {
		return p, func() {}, nil
	}

	tmp := filepath.Join(os.TempDir(), fmt.Sprintf("video_%s%s", uuid.NewString(), filepath.Ext(name)))
	if err := s.store.Fetch(ctx, s.videosDir, name, tmp); err != nil {
		return "", nil, fmt.Errorf("failed to fetch video from storage: %w", err)
	}
	return tmp, func() { os.Remove(tmp) }, nil
}

// finalizeFailure persists the error state on both rows in one transaction.
func (s *Service) finalizeFailure(ctx context.Context, run *models.VideoAnalysis, reason string) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Video{}).Where("id = ?", run.VideoID).
			Update("status", models.VideoStatusError).Error; err != nil {
			return err
		}
		return tx.Model(run).Updates(map[string]interface{}{
			"status":        models.AnalysisStatusError,
			"error_message": "analysis failed: " + reason,
		}).Error
	})
	if err != nil {
		log.Printf("failed to record analysis failure for video %s: %v", run.VideoID, err)
	}
}
