// internal/models/models.go
package models

import (
	"path/filepath"
	"strings"
	"time"
)

// Video status values.
const (
	VideoStatusUnprocessed = "unprocessed"
	VideoStatusProcessing  = "processing"
	VideoStatusProcessed   = "processed"
	VideoStatusError       = "error"
)

// Analysis status values.
const (
	AnalysisStatusProcessing = "processing"
	AnalysisStatusCompleted  = "completed"
	AnalysisStatusError      = "error"
)

// Hand choices accepted by the scoring processor.
const (
	HandLeft  = "left"
	HandRight = "right"
)

func ValidHand(hand string) bool {
	return hand == HandLeft || hand == HandRight
}

type User struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	Username  string    `gorm:"size:50;unique;not null" json:"username"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	Email     string    `gorm:"size:100;unique" json:"email"`
	Avatar    string    `gorm:"size:255" json:"avatar"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Videos []Video `gorm:"foreignKey:UserID" json:"videos,omitempty"`
}

type Video struct {
	ID            string    `gorm:"type:uuid;primarykey" json:"id"`
	Title         string    `gorm:"size:255;not null" json:"title"`
	Description   string    `gorm:"size:1000" json:"description"`
	FilePath      string    `gorm:"size:255;not null" json:"file_path"`
	ThumbnailPath string    `gorm:"size:255" json:"thumbnail_path"`
	Duration      int       `json:"duration"`  // seconds, 0 until probed
	FileSize      int64     `json:"file_size"` // bytes
	Status        string    `gorm:"size:20;default:'unprocessed'" json:"status"`
	UserID        string    `gorm:"type:uuid;not null;index:videos_user_status_date,priority:1" json:"user_id"`
	CreatedAt     time.Time `gorm:"index:videos_user_status_date,priority:2" json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	Analyses []VideoAnalysis `gorm:"foreignKey:VideoID" json:"analyses,omitempty"`
}

// BaseName returns the video's file name without directory or extension,
// the prefix under which the processor writes its segment artifacts.
func (v *Video) BaseName() string {
	name := filepath.Base(v.FilePath)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// VideoAnalysis holds one scoring run for a (video, hand) pair. The unique
// index on that pair is what rejects a duplicate concurrent run.
type VideoAnalysis struct {
	ID           string      `gorm:"type:uuid;primarykey" json:"id"`
	VideoID      string      `gorm:"type:uuid;not null;uniqueIndex:unique_video_hand" json:"video_id"`
	HandChoice   string      `gorm:"size:10;not null;uniqueIndex:unique_video_hand" json:"hand_choice"`
	CaseArr      JSONArray   `gorm:"type:text" json:"case_arr"`
	ScoreArr     JSONArray   `gorm:"type:text" json:"score_arr"`
	OutputArr    StringArray `gorm:"type:text" json:"output_arr"`
	AverageScore *float64    `json:"average_score"`
	Suggestions  *string     `json:"suggestions"`
	Status       string      `gorm:"size:20;default:'processing'" json:"status"`
	ErrorMessage string      `json:"error_message,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`

	Video *Video `gorm:"foreignKey:VideoID" json:"video,omitempty"`
}
