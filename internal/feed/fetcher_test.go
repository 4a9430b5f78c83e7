package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/reel/internal/config"
)

func newTestHTTPSource(t *testing.T, handler http.HandlerFunc) *HTTPSource {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.TestConfig().Source
	cfg.Kind = config.SourceHTTP
	cfg.BaseURL = server.URL + "/api/"
	src, err := NewHTTPSource(&cfg)
	require.NoError(t, err)
	return src
}

func TestNewHTTPSource_ValidatesBaseURL(t *testing.T) {
	cfg := config.SourceConfig{BaseURL: "http://localhost:8080"}
	_, err := NewHTTPSource(&cfg)
	assert.Error(t, err, "localhost is rejected unless permissive")

	cfg.Permissive = true
	src, err := NewHTTPSource(&cfg)
	require.NoError(t, err)
	assert.Equal(t, "http:http://localhost:8080", src.Name())

	_, err = NewHTTPSource(&config.SourceConfig{BaseURL: "ftp://videos.reel.dev"})
	assert.Error(t, err)
}

func TestHTTPSource_FetchPage(t *testing.T) {
	src := newTestHTTPSource(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/videos", r.URL.Path)
		assert.Equal(t, "reel-test/1.0", r.Header.Get("User-Agent"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))

		switch r.URL.Query().Get("cursor") {
		case "":
			w.Write([]byte(`{"videos": [{"id": 1, "userID": 10, "username": "ana", "profilePicURL": "", "description": "d", "topic": "t", "viewers": 1, "likes": 1, "video": "https://cdn.reel.dev/1.mp4", "thumbnail": ""}], "next_cursor": "abc"}`))
		case "abc":
			w.Write([]byte(`{"videos": []}`))
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	})

	page, err := src.FetchPage(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, page.Videos, 1)
	assert.Equal(t, "ana", page.Videos[0].Username)
	assert.Equal(t, "abc", page.NextCursor)

	page, err = src.FetchPage(context.Background(), "abc")
	require.NoError(t, err)
	assert.Empty(t, page.Videos)

	_, err = src.FetchPage(context.Background(), "zzz")
	assert.ErrorContains(t, err, "HTTP error: 400")
}

func TestHTTPSource_ErrorKinds(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		target  error
		message string
	}{
		{
			name:    "not found",
			handler: func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNotFound) },
			target:  ErrNotFound,
		},
		{
			name:    "malformed",
			handler: func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(`{"items": []}`)) },
			target:  ErrDecode,
		},
		{
			name: "throttled",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Retry-After", "120")
				w.WriteHeader(http.StatusTooManyRequests)
			},
			message: "retry after 2m0s",
		},
		{
			name:    "server error",
			handler: func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusInternalServerError) },
			message: "HTTP error: 500",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := newTestHTTPSource(t, tt.handler)
			_, err := src.FetchPage(context.Background(), "")
			require.Error(t, err)
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}
			if tt.message != "" {
				assert.Contains(t, err.Error(), tt.message)
			}
		})
	}
}

func TestHTTPSource_CommentsRevalidate(t *testing.T) {
	var hits atomic.Int32
	src := newTestHTTPSource(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/comments", r.URL.Path)
		hits.Add(1)
		if r.Header.Get("If-None-Match") == `"v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		w.Write([]byte(`{"comments": [{"id": 1, "username": "fan", "picURL": "", "comment": "hi"}]}`))
	})

	first, err := src.FetchComments(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := src.FetchComments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(2), hits.Load())
}

func TestHTTPSource_ContextTimeout(t *testing.T) {
	src := newTestHTTPSource(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := src.FetchPage(ctx, "")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRetryAfter(t *testing.T) {
	resp := &http.Response{Header: http.Header{}}
	assert.Equal(t, 30*time.Second, retryAfter(resp))

	resp.Header.Set("Retry-After", "5")
	assert.Equal(t, 5*time.Second, retryAfter(resp))

	resp.Header.Set("Retry-After", "soon")
	assert.Equal(t, 30*time.Second, retryAfter(resp))
}
