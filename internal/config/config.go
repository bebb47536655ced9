// internal/config/config.go
package config

import "os"

// Config collects the environment settings the server needs. Every field has
// a development default so the server starts with an empty environment.
type Config struct {
	Port        string
	DatabaseDSN string
	JWTSecret   string

	// Blob storage. Backend is "local" or "minio".
	StorageBackend string
	DataDir        string // root for the local backend

	// Relative directories inside the blob store.
	VideosDir     string
	ThumbnailsDir string
	AvatarsDir    string
	SegmentsDir   string // where the processor writes analysis segments

	// Scoring processor.
	ProcessorURL    string
	ProcessorScript string
	PythonExec      string

	// MinIO backend.
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
}

func Load() *Config {
	return &Config{
		Port:           getenv("PORT", "8080"),
		DatabaseDSN:    getenv("DATABASE_DSN", "host=localhost user=fitness password=fitness dbname=fitness port=5432 sslmode=disable"),
		JWTSecret:      getenv("JWT_SECRET", "your-secret-key"),
		StorageBackend: getenv("STORAGE_BACKEND", "local"),
		DataDir:        getenv("DATA_DIR", "data"),
		VideosDir:      getenv("VIDEOS_DIR", "uploads/videos"),
		ThumbnailsDir:  getenv("THUMBNAILS_DIR", "uploads/thumbnails"),
		AvatarsDir:     getenv("AVATARS_DIR", "uploads/avatars"),
		SegmentsDir:    getenv("SEGMENTS_DIR", "runs"),
		ProcessorURL:   getenv("PROCESSOR_URL", "http://localhost:8766"),
		ProcessorScript: getenv("PROCESSOR_SCRIPT", "scripts/video_processor.py"),
		PythonExec:     getenv("PYTHON_EXECUTABLE", "python3"),
		MinioEndpoint:  getenv("MINIO_ENDPOINT", "localhost:9000"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:    getenv("MINIO_BUCKET", "ai-fitness"),
		MinioUseSSL:    os.Getenv("MINIO_USE_SSL") == "true",
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
