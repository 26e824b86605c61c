package videohost

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
	"weokto/course-app/internal/config"
	"weokto/course-app/internal/domain"
)

// The transcode provider is a black-box collaborator: videos are registered
// with a source URL to pull from, then transcoded asynchronously. This client
// consumes its API; it never reimplements any transcoding.

var (
	ErrVideoNotFound  = errors.New("video not found at provider")
	ErrProviderDenied = errors.New("provider rejected the request")
)

// Video is the provider's representation of a registered video.
type Video struct {
	VideoID         string `json:"videoId"`
	LibraryID       string `json:"libraryId"`
	Status          string `json:"status"` // "processing", "ready", "error" (provider may report other non-terminal values)
	DurationSeconds int    `json:"durationSeconds,omitempty"`
	ThumbnailURL    string `json:"thumbnailUrl,omitempty"`
}

// AssetStatus normalizes the provider status into the domain enumeration.
// Unknown values count as still processing; only ready/error are terminal.
func (v Video) AssetStatus() domain.AssetStatus {
	switch v.Status {
	case "ready":
		return domain.AssetStatusReady
	case "error", "failed":
		return domain.AssetStatusError
	default:
		return domain.AssetStatusProcessing
	}
}

// Client talks to the transcode provider's HTTP API.
type Client struct {
	baseURL    string
	apiKey     string
	libraryID  string
	httpClient *http.Client
}

// NewClient creates a provider client from configuration.
func NewClient(cfg config.VideoHostConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		libraryID:  cfg.LibraryID,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type registerVideoRequest struct {
	Title     string `json:"title"`
	SourceURL string `json:"sourceUrl"` // Presigned URL the provider pulls the original from
}

// RegisterVideo registers a new video in the configured library and hands the
// provider a source URL to fetch the original from. Transcoding starts
// asynchronously; the returned status is almost always non-terminal.
func (c *Client) RegisterVideo(ctx context.Context, title, sourceURL string) (*Video, error) {
	payload, err := json.Marshal(registerVideoRequest{Title: title, SourceURL: sourceURL})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/library/%s/videos", c.baseURL, c.libraryID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("AccessKey", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, ErrProviderDenied
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("provider returned status %d: %s", resp.StatusCode, readErrorMessage(resp.Body))
	}

	var video Video
	if err := json.NewDecoder(resp.Body).Decode(&video); err != nil {
		return nil, fmt.Errorf("failed to decode provider response: %w", err)
	}
	if video.LibraryID == "" {
		video.LibraryID = c.libraryID
	}
	return &video, nil
}

// GetVideo fetches the current processing state of a registered video.
func (c *Client) GetVideo(ctx context.Context, videoID string) (*Video, error) {
	url := fmt.Sprintf("%s/library/%s/videos/%s", c.baseURL, c.libraryID, videoID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("AccessKey", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrVideoNotFound
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrProviderDenied
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("provider returned status %d: %s", resp.StatusCode, readErrorMessage(resp.Body))
	}

	var video Video
	if err := json.NewDecoder(resp.Body).Decode(&video); err != nil {
		return nil, fmt.Errorf("failed to decode provider response: %w", err)
	}
	return &video, nil
}

// readErrorMessage extracts {"error": "..."} from an error body, falling back
// to the raw body when it is not JSON.
func readErrorMessage(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil || len(raw) == 0 {
		return "no error details"
	}
	var parsed struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &parsed) == nil && parsed.Error != "" {
		return parsed.Error
	}
	return string(raw)
}
