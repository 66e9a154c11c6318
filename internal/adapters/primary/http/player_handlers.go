package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/fredcamaral/vidwatch/internal/domain/entities"
	"github.com/fredcamaral/vidwatch/internal/domain/services"
)

// maxBodyBytes bounds player API request bodies
const maxBodyBytes = 4 << 10

// CreateSessionRequest mounts an overlay for a video
type CreateSessionRequest struct {
	VideoID         string  `json:"video_id"`
	DurationSeconds float64 `json:"duration_seconds,omitempty"`
}

// SessionResponse describes a mounted player session
type SessionResponse struct {
	SessionID    string               `json:"session_id"`
	TargetOrigin string               `json:"target_origin"`
	EmbedURL     string               `json:"embed_url"`
	State        entities.PlayerState `json:"state"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.handleError(w, err, http.StatusBadRequest)
		return
	}

	// Use the listed duration when the caller does not know it
	if req.DurationSeconds <= 0 && req.VideoID != "" {
		if v := s.catalog.Video(r.Context(), req.VideoID); v != nil && v.DurationSeconds > 0 {
			req.DurationSeconds = float64(v.DurationSeconds)
		}
	}

	session, err := s.sessions.Mount(req.VideoID, req.DurationSeconds)
	if err != nil {
		s.handleError(w, err, sessionStatus(err))
		return
	}

	state, err := session.Overlay.Snapshot()
	if err != nil {
		s.handleError(w, err, sessionStatus(err))
		return
	}

	s.writeJSONStatus(w, http.StatusCreated, SessionResponse{
		SessionID:    session.ID,
		TargetOrigin: session.Channel.TargetOrigin(),
		EmbedURL:     s.embedURL(session.VideoID),
		State:        state,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.sessions.Get(mux.Vars(r)["id"])
	if err != nil {
		s.handleError(w, err, sessionStatus(err))
		return
	}

	state, err := session.Overlay.Snapshot()
	if err != nil {
		s.handleError(w, err, sessionStatus(err))
		return
	}
	s.writeJSON(w, state)
}

func (s *Server) handleGesture(w http.ResponseWriter, r *http.Request) {
	session, err := s.sessions.Get(mux.Vars(r)["id"])
	if err != nil {
		s.handleError(w, err, sessionStatus(err))
		return
	}

	var gesture entities.Gesture
	if err := decodeBody(w, r, &gesture); err != nil {
		s.handleError(w, err, http.StatusBadRequest)
		return
	}

	state, err := session.Overlay.Dispatch(gesture)
	if err != nil {
		s.handleError(w, err, sessionStatus(err))
		return
	}
	s.writeJSON(w, state)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.sessions.Unmount(id); err != nil {
		s.handleError(w, err, sessionStatus(err))
		return
	}
	s.connMgr.CloseSession(id)
	w.WriteHeader(http.StatusNoContent)
}

// decodeBody decodes a bounded JSON body, rejecting unknown fields
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decoding request body: %w", err)
	}
	return nil
}

// sessionStatus maps session errors to HTTP status codes
func sessionStatus(err error) int {
	if errors.Is(err, services.ErrSessionNotFound) || errors.Is(err, services.ErrOverlayUnmounted) {
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}
