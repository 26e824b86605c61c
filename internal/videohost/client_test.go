package videohost

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"weokto/course-app/internal/config"
	"weokto/course-app/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(serverURL string) *Client {
	return NewClient(config.VideoHostConfig{
		BaseURL:   serverURL,
		APIKey:    "secret-key",
		LibraryID: "lib-42",
	})
}

func TestRegisterVideo(t *testing.T) {
	var gotPath, gotAccessKey, gotSourceURL, gotTitle string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAccessKey = r.Header.Get("AccessKey")

		var req struct {
			Title     string `json:"title"`
			SourceURL string `json:"sourceUrl"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotTitle = req.Title
		gotSourceURL = req.SourceURL

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(Video{VideoID: "vid-1", Status: "queued"})
	}))
	defer server.Close()

	video, err := newTestClient(server.URL).RegisterVideo(context.Background(), "Intro", "https://s3.test/videos/abc.mp4?signed")
	require.NoError(t, err)

	assert.Equal(t, "/library/lib-42/videos", gotPath)
	assert.Equal(t, "secret-key", gotAccessKey)
	assert.Equal(t, "Intro", gotTitle)
	assert.Equal(t, "https://s3.test/videos/abc.mp4?signed", gotSourceURL)
	assert.Equal(t, "vid-1", video.VideoID)
	assert.Equal(t, "lib-42", video.LibraryID, "missing library id falls back to the configured one")
}

func TestRegisterVideoDenied(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).RegisterVideo(context.Background(), "Intro", "https://src")
	assert.ErrorIs(t, err, ErrProviderDenied)
}

func TestGetVideo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/library/lib-42/videos/vid-1", r.URL.Path)
		json.NewEncoder(w).Encode(Video{VideoID: "vid-1", LibraryID: "lib-42", Status: "ready", DurationSeconds: 58})
	}))
	defer server.Close()

	video, err := newTestClient(server.URL).GetVideo(context.Background(), "vid-1")
	require.NoError(t, err)
	assert.Equal(t, 58, video.DurationSeconds)
	assert.Equal(t, domain.AssetStatusReady, video.AssetStatus())
}

func TestGetVideoNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).GetVideo(context.Background(), "vid-missing")
	assert.ErrorIs(t, err, ErrVideoNotFound)
}

func TestAssetStatusNormalization(t *testing.T) {
	cases := map[string]domain.AssetStatus{
		"ready":      domain.AssetStatusReady,
		"error":      domain.AssetStatusError,
		"failed":     domain.AssetStatusError,
		"processing": domain.AssetStatusProcessing,
		"queued":     domain.AssetStatusProcessing,
		"encoding":   domain.AssetStatusProcessing,
		"":           domain.AssetStatusProcessing,
	}
	for providerStatus, want := range cases {
		video := Video{Status: providerStatus}
		assert.Equal(t, want, video.AssetStatus(), "provider status %q", providerStatus)
	}
}
