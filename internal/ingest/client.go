package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
	"weokto/course-app/internal/domain"
)

var (
	// ErrTransport marks a network-level failure: the request never got a
	// response. The user must re-initiate the step manually.
	ErrTransport = errors.New("transport error")

	// ErrUploadRejected marks a non-2xx response from the ingestion
	// endpoint, carrying the server-provided message when present.
	ErrUploadRejected = errors.New("upload rejected")

	// ErrLessonRejected marks a non-2xx response from the lesson creation
	// endpoint. The draft is retained so submission can be retried.
	ErrLessonRejected = errors.New("lesson creation failed")
)

// Client calls the course platform's ingestion, status and lesson creation
// endpoints. It holds no workflow state; the workflow types own sequencing.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates an API client for the given server.
// A zero timeout is deliberate for the upload path; per-call deadlines come
// from the caller's context.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{},
	}
}

type assetStatusResponse struct {
	RemoteAssetID   string `json:"remoteAssetId"`
	Status          string `json:"status"`
	ThumbnailURL    string `json:"thumbnailUrl,omitempty"`
	DurationSeconds int    `json:"durationSeconds,omitempty"`
}

// AssetStatus queries the status endpoint for the given remote asset id.
func (c *Client) AssetStatus(ctx context.Context, remoteAssetID string) (domain.AssetStatus, *RemoteAsset, error) {
	url := fmt.Sprintf("%s/api/v1/supplier/videos/%s/status", c.baseURL, remoteAssetID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", nil, err
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", nil, ctx.Err()
		}
		return "", nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", nil, fmt.Errorf("status query failed: %s", serverErrorMessage(resp.Body, resp.StatusCode))
	}

	var parsed assetStatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", nil, fmt.Errorf("decoding status response: %w", err)
	}

	status := domain.AssetStatus(parsed.Status)
	return status, &RemoteAsset{
		RemoteAssetID:   parsed.RemoteAssetID,
		Status:          status,
		ThumbnailURL:    parsed.ThumbnailURL,
		DurationSeconds: parsed.DurationSeconds,
	}, nil
}

type createLessonRequest struct {
	Title           string `json:"title"`
	Description     string `json:"description,omitempty"`
	IsFree          bool   `json:"isFree"`
	RemoteAssetID   string `json:"remoteAssetId"`
	RemoteLibraryID string `json:"remoteLibraryId"`
	ThumbnailURL    string `json:"thumbnailUrl,omitempty"`
	Status          string `json:"status,omitempty"`
	VideoDuration   int    `json:"videoDuration,omitempty"`
}

// CreateLesson submits the lesson metadata bound to the remote asset.
func (c *Client) CreateLesson(ctx context.Context, moduleID string, draft LessonDraft, asset *RemoteAsset) (*Lesson, error) {
	payload, err := json.Marshal(createLessonRequest{
		Title:           draft.Title,
		Description:     draft.Description,
		IsFree:          draft.IsFree,
		RemoteAssetID:   asset.RemoteAssetID,
		RemoteLibraryID: asset.RemoteLibraryID,
		ThumbnailURL:    asset.ThumbnailURL,
		Status:          string(asset.Status),
		VideoDuration:   asset.DurationSeconds,
	})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/api/v1/supplier/modules/%s/lessons", c.baseURL, moduleID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s", ErrLessonRejected, serverErrorMessage(resp.Body, resp.StatusCode))
	}

	var lesson Lesson
	if err := json.NewDecoder(resp.Body).Decode(&lesson); err != nil {
		return nil, fmt.Errorf("decoding lesson response: %w", err)
	}
	return &lesson, nil
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

// serverErrorMessage extracts {"error": "..."} from an error response body,
// falling back to the HTTP status when the body carries no message.
func serverErrorMessage(body io.Reader, statusCode int) string {
	raw, err := io.ReadAll(io.LimitReader(body, 4096))
	if err == nil && len(raw) > 0 {
		var parsed struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &parsed) == nil && parsed.Error != "" {
			return parsed.Error
		}
	}
	return fmt.Sprintf("HTTP %d", statusCode)
}

// withTimeout is a convenience for callers that want a per-call deadline
// without building their own context plumbing.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
