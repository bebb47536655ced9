// internal/stats/service.go
package stats

import (
	"context"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/Dasione/ai-fitness/internal/models"
)

// Service recomputes every statistic straight from the record store on each
// call. There is no cache to invalidate; read cost is the trade.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

type ScoreDistribution struct {
	Excellent int `json:"excellent"` // >= 90
	Good      int `json:"good"`      // >= 80
	Fair      int `json:"fair"`      // >= 70
	Poor      int `json:"poor"`
}

type DailyUploads struct {
	Day   string `json:"day"` // "M/D" in local time
	Count int    `json:"count"`
}

type ScorePoint struct {
	Title string    `json:"title"`
	Score float64   `json:"score"`
	Date  time.Time `json:"date"`
}

type RecentAnalysis struct {
	VideoID    string    `json:"videoId"`
	VideoTitle string    `json:"videoTitle"`
	Date       time.Time `json:"date"`
	Score      float64   `json:"score"`
	Status     string    `json:"status"`
	Hand       string    `json:"hand"`
}

type Dashboard struct {
	TotalVideos        int64             `json:"totalVideos"`
	TotalDuration      int64             `json:"totalDuration"`
	TotalAnalysis      int64             `json:"totalAnalysis"`
	WeeklyTrainings    int               `json:"weeklyTrainings"`
	WeeklyDuration     int64             `json:"weeklyDuration"`
	WeeklyAverageScore float64           `json:"weeklyAverageScore"`
	WeeklyUploads      int               `json:"weeklyUploads"`
	UploadTrend        []DailyUploads    `json:"uploadTrend"`
	ScoreDistribution  ScoreDistribution `json:"scoreDistribution"`
	ScoreTrend         []ScorePoint      `json:"scoreTrend"`
	RecentAnalysis     []RecentAnalysis  `json:"recentAnalysis"`
}

type analysisWithTitle struct {
	models.VideoAnalysis
	VideoTitle *string
}

// Dashboard aggregates the owner's statistics. The weekly window starts at
// local midnight seven days before now and runs through now.
func (s *Service) Dashboard(ctx context.Context, userID string, now time.Time) (*Dashboard, error) {
	dash := &Dashboard{}

	db := s.db.WithContext(ctx)

	if err := db.Model(&models.Video{}).Where("user_id = ?", userID).Count(&dash.TotalVideos).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Video{}).Where("user_id = ?", userID).
		Select("COALESCE(SUM(duration), 0)").Scan(&dash.TotalDuration).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.VideoAnalysis{}).
		Joins("JOIN videos ON videos.id = video_analyses.video_id").
		Where("videos.user_id = ?", userID).
		Count(&dash.TotalAnalysis).Error; err != nil {
		return nil, err
	}

	ws := now.AddDate(0, 0, -7)
	weekStart := time.Date(ws.Year(), ws.Month(), ws.Day(), 0, 0, 0, 0, now.Location())

	var weeklyVideos []models.Video
	if err := db.Preload("Analyses").
		Where("user_id = ? AND created_at >= ?", userID, weekStart).
		Find(&weeklyVideos).Error; err != nil {
		return nil, err
	}

	dash.WeeklyTrainings = len(weeklyVideos)
	dash.WeeklyUploads = len(weeklyVideos)

	var scoreSum float64
	var scoreCount int
	for _, v := range weeklyVideos {
		dash.WeeklyDuration += int64(v.Duration)
		for _, a := range v.Analyses {
			if a.AverageScore != nil {
				scoreSum += *a.AverageScore
				scoreCount++
			}
		}
	}
	if scoreCount > 0 {
		dash.WeeklyAverageScore = scoreSum / float64(scoreCount)
	}

	dash.UploadTrend = uploadTrend(weeklyVideos, now)

	var all []analysisWithTitle
	if err := db.Model(&models.VideoAnalysis{}).
		Select("video_analyses.*, videos.title AS video_title").
		Joins("JOIN videos ON videos.id = video_analyses.video_id").
		Where("videos.user_id = ?", userID).
		Order("video_analyses.created_at ASC").
		Scan(&all).Error; err != nil {
		return nil, err
	}

	for _, a := range all {
		for _, item := range a.ScoreArr {
			bucketScore(&dash.ScoreDistribution, item)
		}
	}

	dash.ScoreTrend = make([]ScorePoint, 0, len(all))
	for _, a := range all {
		point := ScorePoint{Title: "unknown", Date: a.CreatedAt}
		if a.VideoTitle != nil && *a.VideoTitle != "" {
			point.Title = *a.VideoTitle
		}
		if a.AverageScore != nil {
			point.Score = *a.AverageScore
		}
		dash.ScoreTrend = append(dash.ScoreTrend, point)
	}

	var recent []analysisWithTitle
	if err := db.Model(&models.VideoAnalysis{}).
		Select("video_analyses.*, videos.title AS video_title").
		Joins("JOIN videos ON videos.id = video_analyses.video_id").
		Where("videos.user_id = ?", userID).
		Order("video_analyses.created_at DESC").
		Limit(10).
		Scan(&recent).Error; err != nil {
		return nil, err
	}

	dash.RecentAnalysis = make([]RecentAnalysis, 0, len(recent))
	for _, a := range recent {
		item := RecentAnalysis{
			VideoID:    a.VideoID,
			VideoTitle: "unknown",
			Date:       a.CreatedAt,
			Status:     "unknown",
			Hand:       "unknown",
		}
		if a.VideoTitle != nil && *a.VideoTitle != "" {
			item.VideoTitle = *a.VideoTitle
		}
		if a.AverageScore != nil {
			item.Score = *a.AverageScore
		}
		if a.Status != "" {
			item.Status = a.Status
		}
		if a.HandChoice != "" {
			item.Hand = a.HandChoice
		}
		dash.RecentAnalysis = append(dash.RecentAnalysis, item)
	}

	return dash, nil
}

// bucketScore counts one per-segment score. The processor sometimes wraps a
// score in a single-element array; unwrap one level before comparing.
// Non-numeric entries are skipped.
func bucketScore(dist *ScoreDistribution, item interface{}) {
	if arr, ok := item.([]interface{}); ok {
		if len(arr) == 0 {
			return
		}
		item = arr[0]
	}
	score, ok := item.(float64)
	if !ok {
		return
	}
	switch {
	case score >= 90:
		dist.Excellent++
	case score >= 80:
		dist.Good++
	case score >= 70:
		dist.Fair++
	default:
		dist.Poor++
	}
}

// uploadTrend buckets uploads per local calendar day over the 7 days ending
// today.
func uploadTrend(videos []models.Video, now time.Time) []DailyUploads {
	counts := make(map[string]int)
	for _, v := range videos {
		counts[v.CreatedAt.In(now.Location()).Format("2006-01-02")]++
	}

	trend := make([]DailyUploads, 0, 7)
	for i := 0; i < 7; i++ {
		date := now.AddDate(0, 0, -(6 - i))
		trend = append(trend, DailyUploads{
			Day:   date.Format("1/2"),
			Count: counts[date.Format("2006-01-02")],
		})
	}
	return trend
}

type UserRank struct {
	Username      string    `json:"username"`
	Avatar        string    `json:"avatar"`
	TotalDuration int       `json:"totalDuration"`
	AverageScore  float64   `json:"averageScore"`
	VideoCount    int       `json:"videoCount"`
	LastActivity  time.Time `json:"lastActivity"`
}

// Ranking builds the cross-user leaderboard: duration sum plus the average
// over every analysis score per user. Users with no training data (duration
// and score both zero) are dropped; the order is duration descending. The
// returned total is the pre-pagination count.
func (s *Service) Ranking(ctx context.Context, page, pageSize int, now time.Time) ([]UserRank, int, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Preload("Videos.Analyses").Find(&users).Error; err != nil {
		return nil, 0, err
	}

	ranking := make([]UserRank, 0, len(users))
	for _, u := range users {
		rank := UserRank{
			Username:   u.Username,
			Avatar:     u.Avatar,
			VideoCount: len(u.Videos),
		}

		var scoreSum float64
		var scoreCount int
		var lastActivity time.Time
		for _, v := range u.Videos {
			rank.TotalDuration += v.Duration
			if v.CreatedAt.After(lastActivity) {
				lastActivity = v.CreatedAt
			}
			for _, a := range v.Analyses {
				if a.AverageScore != nil {
					scoreSum += *a.AverageScore
				}
				scoreCount++
			}
		}
		if scoreCount > 0 {
			rank.AverageScore = scoreSum / float64(scoreCount)
		}
		if lastActivity.IsZero() {
			rank.LastActivity = now
		} else {
			rank.LastActivity = lastActivity
		}

		if rank.TotalDuration == 0 && rank.AverageScore == 0 {
			continue
		}
		ranking = append(ranking, rank)
	}

	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].TotalDuration > ranking[j].TotalDuration
	})

	total := len(ranking)

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return ranking[start:end], total, nil
}
