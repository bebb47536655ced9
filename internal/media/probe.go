// internal/media/probe.go
package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// ProbeResult carries what the prober extracted from a video file.
type ProbeResult struct {
	Duration      float64 // seconds; 0 when the container reports none
	ThumbnailPath string  // local path of the generated thumbnail
}

// FFmpegProber extracts duration via ffprobe and renders a first-frame
// thumbnail via ffmpeg. Binary paths are env-overridable, matching how the
// processor scripts are resolved.
type FFmpegProber struct {
	ffprobe string
	ffmpeg  string
}

func NewFFmpegProber() *FFmpegProber {
	ffprobe := os.Getenv("FFPROBE_PATH")
	if ffprobe == "" {
		ffprobe = "ffprobe"
	}
	ffmpeg := os.Getenv("FFMPEG_PATH")
	if ffmpeg == "" {
		ffmpeg = "ffmpeg"
	}
	return &FFmpegProber{ffprobe: ffprobe, ffmpeg: ffmpeg}
}

type ffprobeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		Duration string `json:"duration"`
	} `json:"streams"`
}

// Probe runs duration extraction and thumbnail generation. The thumbnail is
// written into thumbnailDir as thumbnail-<basename>.jpg.
func (p *FFmpegProber) Probe(ctx context.Context, videoPath, thumbnailDir string) (*ProbeResult, error) {
	if err := os.MkdirAll(thumbnailDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create thumbnail directory: %w", err)
	}

	duration, err := p.probeDuration(ctx, videoPath)
	if err != nil {
		return nil, err
	}

	base := strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))
	thumbnailPath := filepath.Join(thumbnailDir, fmt.Sprintf("thumbnail-%s.jpg", base))
	if err := p.generateThumbnail(ctx, videoPath, thumbnailPath); err != nil {
		return nil, err
	}

	return &ProbeResult{Duration: duration, ThumbnailPath: thumbnailPath}, nil
}

func (p *FFmpegProber) probeDuration(ctx context.Context, videoPath string) (float64, error) {
	cmd := exec.CommandContext(ctx, p.ffprobe,
		"-v", "quiet",
		"-select_streams", "v:0",
		"-show_entries", "format=duration:stream=duration",
		"-of", "json",
		videoPath,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("ffprobe failed: %s - %s", err.Error(), stderr.String())
	}

	var out ffprobeOutput
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		return 0, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	raw := out.Format.Duration
	if raw == "" && len(out.Streams) > 0 {
		raw = out.Streams[0].Duration
	}
	if raw == "" {
		return 0, nil
	}
	duration, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, nil
	}
	return duration, nil
}

func (p *FFmpegProber) generateThumbnail(ctx context.Context, videoPath, thumbnailPath string) error {
	cmd := exec.CommandContext(ctx, p.ffmpeg,
		"-y",
		"-i", videoPath,
		"-ss", "0",
		"-vframes", "1",
		"-vf", "scale=640:360",
		thumbnailPath,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("thumbnail generation failed: %s - %s", err.Error(), stderr.String())
	}
	if _, err := os.Stat(thumbnailPath); os.IsNotExist(err) {
		return fmt.Errorf("thumbnail file not created")
	}
	return nil
}
