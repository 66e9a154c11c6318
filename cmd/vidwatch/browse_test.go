package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/vidwatch/internal/adapters/secondary/logging"
	"github.com/fredcamaral/vidwatch/internal/domain/entities"
)

func TestRenderVideoTable(t *testing.T) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	t.Run("rows", func(t *testing.T) {
		videos := []entities.Video{
			{
				ID:              "abc123",
				Title:           "Gophers at work",
				ChannelTitle:    "Go Team",
				DurationSeconds: 754,
				PublishedAt:     now.Add(-48 * time.Hour),
				Statistics:      &entities.VideoStatistics{ViewCount: 1200},
			},
			{
				ID:           "live42",
				Title:        "Live stream",
				ChannelTitle: "Go Team",
				PublishedAt:  now.Add(-2 * time.Hour),
			},
		}

		var buf bytes.Buffer
		renderVideoTable(&buf, videos, now)
		out := buf.String()

		assert.Contains(t, out, "TITLE")
		assert.Contains(t, out, "abc123")
		assert.Contains(t, out, "12:34")
		assert.Contains(t, out, "1.2K views")
		assert.Contains(t, out, "live42")
		assert.Contains(t, out, entities.FormatPublishedAgo(now.Add(-2*time.Hour), now))
	})

	t.Run("empty", func(t *testing.T) {
		var buf bytes.Buffer
		renderVideoTable(&buf, nil, now)
		assert.Equal(t, "No videos found\n", buf.String())
	})
}

func TestSearchCommand(t *testing.T) {
	out, err := executeCommand(t, context.Background(), "search", "never", "gonna", "--fixtures")
	require.NoError(t, err)
	assert.Contains(t, out, "dQw4w9WgXcQ")
	assert.Contains(t, out, "Rick Astley")

	out, err = executeCommand(t, context.Background(), "search", "zzzz-no-such-video", "--fixtures")
	require.NoError(t, err)
	assert.Contains(t, out, "No videos found")
}

func TestSearchCommand_RequiresQuery(t *testing.T) {
	_, err := executeCommand(t, context.Background(), "search")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg(s)")
}

func TestPopularCommand(t *testing.T) {
	out, err := executeCommand(t, context.Background(), "popular", "--fixtures", "--category", "10", "--max", "2")
	require.NoError(t, err)
	assert.NotContains(t, out, "No videos found")

	rows := 0
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "views") {
			rows++
		}
	}
	assert.LessOrEqual(t, rows, 2)
}

func TestPopularCommand_InvalidRegion(t *testing.T) {
	_, err := executeCommand(t, context.Background(), "popular", "--fixtures", "--region", "USA")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "region code")
}

func TestNewCatalog(t *testing.T) {
	logger := logging.Nop()

	t.Run("fixtures without an api key", func(t *testing.T) {
		cfg := &entities.Config{}
		catalog, err := newCatalog(cfg, logger)
		require.NoError(t, err)
		assert.NotNil(t, catalog.Video(context.Background(), "dQw4w9WgXcQ"))
	})

	t.Run("fixtures back up a failing api", func(t *testing.T) {
		api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":{"code":403,"message":"quota"}}`, http.StatusForbidden)
		}))
		defer api.Close()

		cfg := &entities.Config{YouTube: entities.YouTubeConfig{APIKey: "key", BaseURL: api.URL}}
		catalog, err := newCatalog(cfg, logger)
		require.NoError(t, err)
		assert.NotNil(t, catalog.Video(context.Background(), "dQw4w9WgXcQ"))
	})
}
