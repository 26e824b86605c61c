package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
	"weokto/course-app/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ingestServer fakes the three platform endpoints the workflow touches and
// counts every call so tests can assert on the exact traffic.
type ingestServer struct {
	mu            sync.Mutex
	uploads       int
	statusQueries int
	lessonPosts   int

	statusScript []domain.AssetStatus // One entry per status query, last repeats
	rejectTitles map[string]bool      // Titles refused with "duplicate title"
}

func (s *ingestServer) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/supplier/videos", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.uploads++
		s.mu.Unlock()

		reader, err := r.MultipartReader()
		require.NoError(t, err)
		title := ""
		for {
			part, err := reader.NextPart()
			if err == io.EOF {
				break
			}
			require.NoError(t, err)
			if part.FormName() == "title" {
				raw, _ := io.ReadAll(part)
				title = string(raw)
			} else {
				io.Copy(io.Discard, part)
			}
		}

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(RemoteAsset{
			RemoteAssetID:   "ra-e2e",
			RemoteLibraryID: "lib-1",
			Status:          domain.AssetStatusProcessing,
			Title:           title,
		})
	})

	mux.HandleFunc("GET /api/v1/supplier/videos/ra-e2e/status", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		idx := s.statusQueries
		s.statusQueries++
		s.mu.Unlock()

		if idx >= len(s.statusScript) {
			idx = len(s.statusScript) - 1
		}
		status := s.statusScript[idx]

		resp := map[string]any{"remoteAssetId": "ra-e2e", "status": string(status)}
		if status == domain.AssetStatusReady {
			resp["thumbnailUrl"] = "https://cdn/thumb.jpg"
			resp["durationSeconds"] = 127
		}
		json.NewEncoder(w).Encode(resp)
	})

	mux.HandleFunc("POST /api/v1/supplier/modules/mod-1/lessons", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.lessonPosts++
		s.mu.Unlock()

		var req struct {
			Title         string `json:"title"`
			VideoDuration int    `json:"videoDuration"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		if s.rejectTitles[req.Title] {
			w.WriteHeader(http.StatusConflict)
			json.NewEncoder(w).Encode(map[string]string{"error": "duplicate title"})
			return
		}

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(Lesson{
			ID:            "l-1",
			ModuleID:      "mod-1",
			Title:         req.Title,
			Position:      0,
			RemoteAssetID: "ra-e2e",
			VideoDuration: req.VideoDuration,
		})
	})

	return mux
}

func testVideo(name string) *SelectedAsset {
	payload := bytes.Repeat([]byte("v"), 64*1024)
	return &SelectedAsset{
		FileName:    name,
		Size:        int64(len(payload)),
		ContentType: "video/mp4",
		Body:        io.NopCloser(bytes.NewReader(payload)),
	}
}

func TestWorkflowHappyPath(t *testing.T) {
	backend := &ingestServer{
		statusScript: []domain.AssetStatus{
			domain.AssetStatusProcessing,
			domain.AssetStatusProcessing,
			domain.AssetStatusReady,
		},
	}
	server := httptest.NewServer(backend.handler(t))
	defer server.Close()

	var statuses []domain.AssetStatus
	var lastProgress int
	workflow := NewWorkflow(NewClient(server.URL, "tok"), PollPolicy{
		Interval:    time.Millisecond,
		MaxInterval: 2 * time.Millisecond,
		Factor:      1.5,
		MaxAttempts: 10,
	}, Events{
		UploadProgress: func(pct int) { lastProgress = pct },
		StatusChanged:  func(st domain.AssetStatus) { statuses = append(statuses, st) },
	})

	lesson, remote, err := workflow.Run(context.Background(), testVideo("Lesson One.mp4"), "mod-1", LessonDraft{
		Description: "covers the basics",
	})
	require.NoError(t, err)

	assert.Equal(t, "Lesson One", lesson.Title, "empty draft title falls back to the file name")
	assert.Equal(t, 127, lesson.VideoDuration)
	assert.Equal(t, domain.AssetStatusReady, remote.Status)
	assert.Equal(t, 100, lastProgress)
	assert.Equal(t, []domain.AssetStatus{domain.AssetStatusProcessing, domain.AssetStatusReady}, statuses)

	assert.Equal(t, 1, backend.uploads)
	assert.Equal(t, 3, backend.statusQueries)
	assert.Equal(t, 1, backend.lessonPosts)
}

func TestWorkflowRejectsInvalidFileWithoutTraffic(t *testing.T) {
	backend := &ingestServer{statusScript: []domain.AssetStatus{domain.AssetStatusReady}}
	server := httptest.NewServer(backend.handler(t))
	defer server.Close()

	workflow := NewWorkflow(NewClient(server.URL, "tok"), DefaultPollPolicy, Events{})

	oversize := testVideo("big.mp4")
	oversize.Size = 3 * 1024 * 1024 * 1024
	_, _, err := workflow.Run(context.Background(), oversize, "mod-1", LessonDraft{})
	assert.ErrorIs(t, err, ErrSizeExceeded)

	avi := testVideo("clip.avi")
	avi.ContentType = "video/x-msvideo"
	_, _, err = workflow.Run(context.Background(), avi, "mod-1", LessonDraft{})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	assert.Zero(t, backend.uploads, "validation failures must not reach the network")
	assert.Zero(t, backend.statusQueries)
	assert.Zero(t, backend.lessonPosts)
}

func TestWorkflowSkipsPollingWhenUploadReturnsReady(t *testing.T) {
	backend := &ingestServer{statusScript: []domain.AssetStatus{domain.AssetStatusReady}}
	mux := backend.handler(t)

	// Wrap the upload endpoint so it reports an immediately-ready asset.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.URL.Path == "/api/v1/supplier/videos" {
			backend.mu.Lock()
			backend.uploads++
			backend.mu.Unlock()
			io.Copy(io.Discard, r.Body)
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(RemoteAsset{
				RemoteAssetID:   "ra-e2e",
				RemoteLibraryID: "lib-1",
				Status:          domain.AssetStatusReady,
			})
			return
		}
		mux.ServeHTTP(w, r)
	}))
	defer server.Close()

	workflow := NewWorkflow(NewClient(server.URL, "tok"), DefaultPollPolicy, Events{})
	lesson, _, err := workflow.Run(context.Background(), testVideo("quick.mp4"), "mod-1", LessonDraft{Title: "Quick one"})
	require.NoError(t, err)

	assert.Equal(t, "Quick one", lesson.Title)
	assert.Zero(t, backend.statusQueries, "an already-terminal asset needs no polling")
}

func TestWorkflowDuplicateTitleRetainsDraftForRetry(t *testing.T) {
	backend := &ingestServer{
		statusScript: []domain.AssetStatus{domain.AssetStatusReady},
		rejectTitles: map[string]bool{"Intro": true},
	}
	server := httptest.NewServer(backend.handler(t))
	defer server.Close()

	workflow := NewWorkflow(NewClient(server.URL, "tok"), PollPolicy{
		Interval:    time.Millisecond,
		MaxAttempts: 5,
	}, Events{})

	draft := LessonDraft{Title: "Intro", Description: "first lesson"}
	_, remote, err := workflow.Run(context.Background(), testVideo("intro.mp4"), "mod-1", draft)
	require.ErrorIs(t, err, ErrLessonRejected)
	require.NotNil(t, remote, "the tracked asset survives a rejected submission")
	assert.Contains(t, err.Error(), "duplicate title")

	// Correct the title and resubmit: no second upload, no new polling.
	draft.Title = "Intro and Overview"
	lesson, err := workflow.RetrySubmit(context.Background(), "mod-1", draft, remote)
	require.NoError(t, err)
	assert.Equal(t, "Intro and Overview", lesson.Title)

	assert.Equal(t, 1, backend.uploads)
	assert.Equal(t, 1, backend.statusQueries)
	assert.Equal(t, 2, backend.lessonPosts)
}
