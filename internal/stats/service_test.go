// internal/stats/service_test.go
package stats

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Dasione/ai-fitness/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to access underlying DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.User{}, &models.Video{}, &models.VideoAnalysis{}); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		ID:       uuid.NewString(),
		Username: username,
		Password: "hash",
		Email:    username + "@example.com",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	return user
}

func createVideo(t *testing.T, db *gorm.DB, userID string, duration int, createdAt time.Time) *models.Video {
	t.Helper()
	video := &models.Video{
		ID:        uuid.NewString(),
		Title:     "Session " + uuid.NewString()[:8],
		FilePath:  "uploads/videos/" + uuid.NewString() + ".mp4",
		Duration:  duration,
		Status:    models.VideoStatusProcessed,
		UserID:    userID,
		CreatedAt: createdAt,
	}
	if err := db.Create(video).Error; err != nil {
		t.Fatalf("Failed to create video: %v", err)
	}
	return video
}

func createAnalysis(t *testing.T, db *gorm.DB, videoID, hand string, avg *float64, scores models.JSONArray, createdAt time.Time) *models.VideoAnalysis {
	t.Helper()
	row := &models.VideoAnalysis{
		ID:           uuid.NewString(),
		VideoID:      videoID,
		HandChoice:   hand,
		ScoreArr:     scores,
		AverageScore: avg,
		Status:       models.AnalysisStatusCompleted,
		CreatedAt:    createdAt,
	}
	if err := db.Create(row).Error; err != nil {
		t.Fatalf("Failed to create analysis: %v", err)
	}
	return row
}

func ptr(f float64) *float64 { return &f }

func TestBucketScore(t *testing.T) {
	cases := []struct {
		name string
		item interface{}
		want ScoreDistribution
	}{
		{"Excellent", 90.0, ScoreDistribution{Excellent: 1}},
		{"GoodUpperEdge", 89.999, ScoreDistribution{Good: 1}},
		{"Good", 80.0, ScoreDistribution{Good: 1}},
		{"FairUpperEdge", 79.999, ScoreDistribution{Fair: 1}},
		{"Fair", 70.0, ScoreDistribution{Fair: 1}},
		{"Poor", 69.999, ScoreDistribution{Poor: 1}},
		{"NestedUnwrap", []interface{}{85.0}, ScoreDistribution{Good: 1}},
		{"EmptyNested", []interface{}{}, ScoreDistribution{}},
		{"NonNumeric", "n/a", ScoreDistribution{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var dist ScoreDistribution
			bucketScore(&dist, tc.item)
			if dist != tc.want {
				t.Errorf("bucketScore(%v) = %+v, want %+v", tc.item, dist, tc.want)
			}
		})
	}
}

func TestUploadTrend(t *testing.T) {
	now := time.Date(2026, 8, 30, 15, 0, 0, 0, time.Local)
	videos := []models.Video{
		{CreatedAt: now},                       // today
		{CreatedAt: now.AddDate(0, 0, -2)},     // two days ago
		{CreatedAt: now.AddDate(0, 0, -2)},     // same day again
		{CreatedAt: now.AddDate(0, 0, -6)},     // oldest visible day
	}

	trend := uploadTrend(videos, now)
	if len(trend) != 7 {
		t.Fatalf("Expected 7 trend entries, got %d", len(trend))
	}
	if trend[0].Day != "8/24" || trend[6].Day != "8/30" {
		t.Errorf("Unexpected day labels: first=%s last=%s", trend[0].Day, trend[6].Day)
	}
	if trend[0].Count != 1 {
		t.Errorf("Expected 1 upload six days ago, got %d", trend[0].Count)
	}
	if trend[4].Count != 2 {
		t.Errorf("Expected 2 uploads two days ago, got %d", trend[4].Count)
	}
	if trend[6].Count != 1 {
		t.Errorf("Expected 1 upload today, got %d", trend[6].Count)
	}
}

func TestDashboard(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	user := createUser(t, db, "athlete")
	other := createUser(t, db, "bystander")

	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.Local)
	weekStart := time.Date(2026, 8, 23, 0, 0, 0, 0, time.Local)

	// Exactly on the boundary: included in the weekly window.
	boundary := createVideo(t, db, user.ID, 60, weekStart)
	// One second before: totals only.
	old := createVideo(t, db, user.ID, 120, weekStart.Add(-time.Second))
	// Well inside the window.
	recent := createVideo(t, db, user.ID, 30, now.AddDate(0, 0, -2))
	// Someone else's video never shows up.
	createVideo(t, db, other.ID, 999, now)

	createAnalysis(t, db, boundary.ID, models.HandLeft, ptr(95), models.JSONArray{95.0}, weekStart.Add(time.Hour))
	createAnalysis(t, db, recent.ID, models.HandLeft, ptr(85), models.JSONArray{[]interface{}{85.0}, 72.0, 50.0}, now.AddDate(0, 0, -1))
	createAnalysis(t, db, old.ID, models.HandRight, nil, nil, weekStart.Add(-time.Hour))

	dash, err := svc.Dashboard(context.Background(), user.ID, now)
	if err != nil {
		t.Fatalf("Dashboard failed: %v", err)
	}

	if dash.TotalVideos != 3 {
		t.Errorf("Expected 3 total videos, got %d", dash.TotalVideos)
	}
	if dash.TotalDuration != 210 {
		t.Errorf("Expected total duration 210, got %d", dash.TotalDuration)
	}
	if dash.TotalAnalysis != 3 {
		t.Errorf("Expected 3 total analyses, got %d", dash.TotalAnalysis)
	}
	if dash.WeeklyUploads != 2 || dash.WeeklyTrainings != 2 {
		t.Errorf("Expected 2 weekly uploads, got uploads=%d trainings=%d", dash.WeeklyUploads, dash.WeeklyTrainings)
	}
	if dash.WeeklyDuration != 90 {
		t.Errorf("Expected weekly duration 90, got %d", dash.WeeklyDuration)
	}
	if dash.WeeklyAverageScore != 90 {
		t.Errorf("Expected weekly average (95+85)/2 = 90, got %f", dash.WeeklyAverageScore)
	}

	want := ScoreDistribution{Excellent: 1, Good: 1, Fair: 1, Poor: 1}
	if dash.ScoreDistribution != want {
		t.Errorf("Unexpected score distribution: %+v", dash.ScoreDistribution)
	}

	if len(dash.UploadTrend) != 7 {
		t.Errorf("Expected 7 upload trend entries, got %d", len(dash.UploadTrend))
	}

	if len(dash.ScoreTrend) != 3 {
		t.Fatalf("Expected 3 score trend points, got %d", len(dash.ScoreTrend))
	}
	// Oldest first; the nil-score analysis contributes a zero point.
	if dash.ScoreTrend[0].Score != 0 {
		t.Errorf("Expected oldest point score 0, got %f", dash.ScoreTrend[0].Score)
	}
	if dash.ScoreTrend[2].Score != 85 {
		t.Errorf("Expected newest point score 85, got %f", dash.ScoreTrend[2].Score)
	}

	if len(dash.RecentAnalysis) != 3 {
		t.Fatalf("Expected 3 recent analyses, got %d", len(dash.RecentAnalysis))
	}
	// Newest first.
	if dash.RecentAnalysis[0].VideoID != recent.ID {
		t.Errorf("Expected newest analysis first, got video %s", dash.RecentAnalysis[0].VideoID)
	}
	if dash.RecentAnalysis[0].VideoTitle != recent.Title {
		t.Errorf("Expected video title %q, got %q", recent.Title, dash.RecentAnalysis[0].VideoTitle)
	}
	if dash.RecentAnalysis[0].Hand != models.HandLeft {
		t.Errorf("Expected hand left, got %s", dash.RecentAnalysis[0].Hand)
	}
}

func TestDashboardEmpty(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	user := createUser(t, db, "newcomer")

	dash, err := svc.Dashboard(context.Background(), user.ID, time.Now())
	if err != nil {
		t.Fatalf("Dashboard failed: %v", err)
	}
	if dash.TotalVideos != 0 || dash.TotalDuration != 0 || dash.TotalAnalysis != 0 {
		t.Errorf("Expected empty totals, got %+v", dash)
	}
	if dash.WeeklyAverageScore != 0 {
		t.Errorf("Expected weekly average 0 with no analyses, got %f", dash.WeeklyAverageScore)
	}
	if len(dash.UploadTrend) != 7 {
		t.Errorf("Expected trend padded to 7 days, got %d", len(dash.UploadTrend))
	}
}

func TestRanking(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.Local)

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	createUser(t, db, "carol") // no data at all

	v1 := createVideo(t, db, alice.ID, 100, now.Add(-48*time.Hour))
	createVideo(t, db, alice.ID, 50, now.Add(-24*time.Hour))
	createVideo(t, db, bob.ID, 300, now.Add(-2*time.Hour))

	// One scored analysis and one still-nil analysis. The nil score still
	// counts in the denominator.
	createAnalysis(t, db, v1.ID, models.HandLeft, ptr(90), models.JSONArray{90.0}, now)
	createAnalysis(t, db, v1.ID, models.HandRight, nil, nil, now)

	dave := createUser(t, db, "dave")
	dv := createVideo(t, db, dave.ID, 0, now.Add(-time.Hour))
	createAnalysis(t, db, dv.ID, models.HandLeft, ptr(42), models.JSONArray{42.0}, now)

	ranks, total, err := svc.Ranking(context.Background(), 1, 10, now)
	if err != nil {
		t.Fatalf("Ranking failed: %v", err)
	}
	if total != 3 {
		t.Fatalf("Expected 3 ranked users (carol dropped), got %d", total)
	}

	if ranks[0].Username != "bob" || ranks[1].Username != "alice" || ranks[2].Username != "dave" {
		t.Errorf("Unexpected order: %s, %s, %s", ranks[0].Username, ranks[1].Username, ranks[2].Username)
	}
	if ranks[0].TotalDuration != 300 {
		t.Errorf("Expected bob's duration 300, got %d", ranks[0].TotalDuration)
	}
	if ranks[1].AverageScore != 45 {
		t.Errorf("Expected alice's average 90/2 = 45, got %f", ranks[1].AverageScore)
	}
	if ranks[2].TotalDuration != 0 || ranks[2].AverageScore != 42 {
		t.Errorf("Expected dave kept on score alone, got %+v", ranks[2])
	}
	if ranks[1].VideoCount != 2 {
		t.Errorf("Expected alice's video count 2, got %d", ranks[1].VideoCount)
	}
}

func TestRankingPagination(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	now := time.Now()

	for i, name := range []string{"u1", "u2", "u3"} {
		u := createUser(t, db, name)
		createVideo(t, db, u.ID, (i+1)*100, now.Add(-time.Hour))
	}

	page1, total, err := svc.Ranking(context.Background(), 1, 2, now)
	if err != nil {
		t.Fatalf("Ranking failed: %v", err)
	}
	if total != 3 {
		t.Errorf("Expected pre-pagination total 3, got %d", total)
	}
	if len(page1) != 2 || page1[0].TotalDuration != 300 || page1[1].TotalDuration != 200 {
		t.Errorf("Unexpected first page: %+v", page1)
	}

	page2, _, err := svc.Ranking(context.Background(), 2, 2, now)
	if err != nil {
		t.Fatalf("Ranking page 2 failed: %v", err)
	}
	if len(page2) != 1 || page2[0].TotalDuration != 100 {
		t.Errorf("Unexpected second page: %+v", page2)
	}

	page9, _, err := svc.Ranking(context.Background(), 9, 2, now)
	if err != nil {
		t.Fatalf("Ranking page 9 failed: %v", err)
	}
	if len(page9) != 0 {
		t.Errorf("Expected empty out-of-range page, got %+v", page9)
	}
}
