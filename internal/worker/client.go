package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/your-org/trackd/internal/config"
	"github.com/your-org/trackd/pkg/dto"
)

// Client calls the compute worker's own HTTP API. Only the synchronous
// search-person lookup goes this way; everything else is dispatched over
// the message channel.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(cfg config.WorkerConfig) *Client {
	return &Client{
		baseURL: cfg.BaseURL(),
		http:    &http.Client{Timeout: cfg.Timeout},
	}
}

type searchPersonRequest struct {
	ReportID  string `json:"report_id"`
	VideoID   string `json:"video_id"`
	Timestamp int64  `json:"timestamp"`
}

// SearchPersonInFrame asks the worker for the mask polygons around a person
// at one frame of one video.
func (c *Client) SearchPersonInFrame(ctx context.Context, req *dto.SearchPersonRequest) (*dto.SearchPersonResponse, error) {
	slog.Info("searching person in frame via worker API",
		"report_id", req.ReportID,
		"video_id", req.VideoID,
		"timestamp", req.Timestamp,
	)

	body, err := json.Marshal(searchPersonRequest{
		ReportID:  req.ReportID,
		VideoID:   req.VideoID,
		Timestamp: req.Timestamp,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	url := c.baseURL + "/api/v1/search-person/"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call worker search-person: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("worker search-person returned %d: %s", resp.StatusCode, data)
	}

	var result dto.SearchPersonResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return &result, nil
}
