// internal/scoring/client.go
package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ScoreTimeout bounds one scoring call. The processor runs pose estimation
// over the whole video, so minutes are expected.
const ScoreTimeout = 5 * time.Minute

// Error is the single failure type the client surfaces: timeout, transport
// error, non-success status and malformed payloads all collapse into it.
// The client never retries; retry policy belongs to the caller.
type Error struct {
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("scoring failed: %s", e.Reason)
}

// Result is the processor's per-video verdict. Segment arrays carry one
// entry per detected exercise repetition.
type Result struct {
	CaseArr      []interface{} `json:"case_arr"`
	ScoreArr     []interface{} `json:"score_arr"`
	OutputArr    []string      `json:"output_arr"`
	AverageScore float64       `json:"average_score"`
	Suggestions  string        `json:"suggestions"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: ScoreTimeout},
	}
}

// Score submits one synchronous analysis request for the given hand.
func (c *Client) Score(ctx context.Context, videoPath, hand string) (*Result, error) {
	payload, err := json.Marshal(map[string]string{
		"video_path": videoPath,
		"hand":       hand,
	})
	if err != nil {
		return nil, &Error{Reason: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze", bytes.NewReader(payload))
	if err != nil {
		return nil, &Error{Reason: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Reason: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &Error{Reason: fmt.Sprintf("processor returned %d: %s", resp.StatusCode, string(body))}
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &Error{Reason: fmt.Sprintf("malformed processor response: %s", err)}
	}
	return &result, nil
}
