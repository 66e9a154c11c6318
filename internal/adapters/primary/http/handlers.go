package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/fredcamaral/vidwatch/internal/domain/entities"
	"github.com/fredcamaral/vidwatch/internal/domain/ports"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string    `json:"error"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// VideoResponse is a video with the labels the pages display
type VideoResponse struct {
	entities.Video
	ViewsLabel      string `json:"views_label,omitempty"`
	PublishedLabel  string `json:"published_label"`
	PublishedAgo    string `json:"published_ago"`
	DurationLabel   string `json:"duration_label,omitempty"`
	DescriptionHTML string `json:"description_html,omitempty"`
	EmbedURL        string `json:"embed_url"`
}

// VideoListResponse is a page of videos
type VideoListResponse struct {
	Items         []VideoResponse `json:"items"`
	NextPageToken string          `json:"next_page_token,omitempty"`
}

// ChannelResponse is a channel with its display labels
type ChannelResponse struct {
	entities.Channel
	SubscribersLabel string `json:"subscribers_label"`
}

// HealthResponse reports what the server is holding
type HealthResponse struct {
	Status      string `json:"status"`
	Sessions    int    `json:"sessions"`
	Connections int    `json:"connections"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, HealthResponse{
		Status:      "ok",
		Sessions:    s.sessions.Count(),
		Connections: s.connMgr.Count(),
	})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.catalog.HomeCategories(r.Context(), r.URL.Query().Get("region")))
}

func (s *Server) handlePopular(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	maxResults, err := parseOptionalInt(q.Get("maxResults"))
	if err != nil {
		s.handleError(w, err, http.StatusBadRequest)
		return
	}

	list := s.catalog.Popular(r.Context(), entities.PopularQuery{
		PageToken:  q.Get("pageToken"),
		RegionCode: q.Get("region"),
		MaxResults: maxResults,
		CategoryID: q.Get("categoryId"),
	})
	s.writeJSON(w, s.toListResponse(list))
}

func (s *Server) handleTrending(w http.ResponseWriter, r *http.Request) {
	videos, err := s.catalog.Trending(r.Context(), r.URL.Query().Get("tab"))
	if err != nil {
		s.handleError(w, err, http.StatusBadRequest)
		return
	}
	s.writeJSON(w, s.toListResponse(entities.VideoList{Items: videos}))
}

func (s *Server) handleMusic(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.toListResponse(entities.VideoList{Items: s.catalog.Music(r.Context())}))
}

func (s *Server) handleVideo(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	video := s.catalog.Video(r.Context(), id)
	if video == nil {
		s.handleError(w, fmt.Errorf("video %s not found", id), http.StatusNotFound)
		return
	}
	s.writeJSON(w, s.toVideoResponse(*video, true))
}

func (s *Server) handleRelated(w http.ResponseWriter, r *http.Request) {
	maxResults, err := parseOptionalInt(r.URL.Query().Get("maxResults"))
	if err != nil {
		s.handleError(w, err, http.StatusBadRequest)
		return
	}

	related := s.catalog.Related(r.Context(), mux.Vars(r)["id"], maxResults)
	s.writeJSON(w, s.toListResponse(entities.VideoList{Items: related}))
}

func (s *Server) handleChannel(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	channel := s.catalog.Channel(r.Context(), id)
	if channel == nil {
		s.handleError(w, fmt.Errorf("channel %s not found", id), http.StatusNotFound)
		return
	}
	s.writeJSON(w, ChannelResponse{
		Channel:          *channel,
		SubscribersLabel: channel.SubscribersLabel(),
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := q.Get("q")
	if query == "" {
		s.handleError(w, errors.New("missing search query"), http.StatusBadRequest)
		return
	}

	list := s.catalog.Search(r.Context(), entities.SearchQuery{
		Query:     query,
		PageToken: q.Get("pageToken"),
	})
	s.writeJSON(w, s.toListResponse(list))
}

func (s *Server) toListResponse(list entities.VideoList) VideoListResponse {
	items := make([]VideoResponse, 0, len(list.Items))
	for _, v := range list.Items {
		items = append(items, s.toVideoResponse(v, false))
	}
	return VideoListResponse{Items: items, NextPageToken: list.NextPageToken}
}

// toVideoResponse adds display labels; the rendered description is only
// produced for single-video responses
func (s *Server) toVideoResponse(v entities.Video, withDescription bool) VideoResponse {
	resp := VideoResponse{
		Video:          v,
		ViewsLabel:     v.ViewsLabel(),
		PublishedLabel: entities.FormatPublishedDate(v.PublishedAt),
		PublishedAgo:   entities.FormatPublishedAgo(v.PublishedAt, time.Now()),
		EmbedURL:       s.embedURL(v.ID),
	}
	if v.DurationSeconds > 0 {
		resp.DurationLabel = entities.FormatClock(float64(v.DurationSeconds))
	}
	if withDescription && s.renderer != nil {
		html, err := s.renderer.Render(v.Description)
		if err != nil {
			s.logger.Warn("Rendering description of %s: %v", v.ID, err)
		}
		resp.DescriptionHTML = html
	}
	return resp
}

// embedURL is the iframe src for a video, with the JS API enabled and the
// embed's own controls hidden
func (s *Server) embedURL(videoID string) string {
	return s.config.Player.GetEmbedBaseURL() + videoID + "?enablejsapi=1&controls=0&rel=0"
}

func parseOptionalInt(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid number %q", raw)
	}
	return n, nil
}

// handleError handles error responses with sanitized messages
func (s *Server) handleError(w http.ResponseWriter, err error, status int) {
	writeError(w, s.logger, err, status)
}

// writeError logs err and writes a sanitized JSON error
func writeError(w http.ResponseWriter, logger ports.Logger, err error, status int) {
	var message string
	switch status {
	case http.StatusBadRequest:
		message = "Invalid request"
	case http.StatusForbidden:
		message = "Forbidden"
	case http.StatusNotFound:
		message = "Resource not found"
	case http.StatusMethodNotAllowed:
		message = "Method not allowed"
	case http.StatusTooManyRequests:
		message = "Too many requests"
	case http.StatusInternalServerError:
		message = "Internal server error"
	default:
		message = "An error occurred"
	}

	// Log the actual error for debugging (server-side only)
	if status >= http.StatusInternalServerError {
		logger.Error("HTTP error (status %d): %v", status, err)
	} else {
		logger.Debug("HTTP error (status %d): %v", status, err)
	}

	response := ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Time:    time.Now(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encodeErr := json.NewEncoder(w).Encode(response); encodeErr != nil {
		logger.Error("Failed to encode error response: %v", encodeErr)
	}
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, data interface{}) {
	s.writeJSONStatus(w, http.StatusOK, data)
}

func (s *Server) writeJSONStatus(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("Failed to encode JSON response: %v", err)
	}
}
