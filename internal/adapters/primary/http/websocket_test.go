package http

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/vidwatch/internal/domain/entities"
	"github.com/fredcamaral/vidwatch/internal/domain/ports"
)

// wsEvent is an UpdateEvent with its payload left raw
type wsEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func surfaceURL(srv *httptest.Server, sessionID, embedOrigin string) string {
	q := url.Values{}
	q.Set("session", sessionID)
	if embedOrigin != "" {
		q.Set("embed_origin", embedOrigin)
	}
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/surface?" + q.Encode()
}

func dialSurface(t *testing.T, srv *httptest.Server, sessionID string) *websocket.Conn {
	t.Helper()
	ws, _, err := websocket.DefaultDialer.Dial(surfaceURL(srv, sessionID, testEmbedOrigin), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })

	connected := readUntil(t, ws, ports.EventTypeConnected)
	var data struct {
		SessionID    string `json:"session_id"`
		TargetOrigin string `json:"target_origin"`
	}
	require.NoError(t, json.Unmarshal(connected.Data, &data))
	require.Equal(t, sessionID, data.SessionID)
	return ws
}

func sendMessage(t *testing.T, ws *websocket.Conn, msgType string, data interface{}) {
	t.Helper()
	msg := map[string]interface{}{"type": msgType}
	if data != nil {
		msg["data"] = data
	}
	require.NoError(t, ws.WriteJSON(msg))
}

// readUntil reads events until one of eventType arrives
func readUntil(t *testing.T, ws *websocket.Conn, eventType string) wsEvent {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var ev wsEvent
		require.NoError(t, ws.ReadJSON(&ev), "waiting for %s", eventType)
		if ev.Type == eventType {
			return ev
		}
	}
}

func readState(t *testing.T, ws *websocket.Conn, match func(entities.PlayerState) bool) entities.PlayerState {
	t.Helper()
	for {
		ev := readUntil(t, ws, ports.EventTypePlayerState)
		var state entities.PlayerState
		require.NoError(t, json.Unmarshal(ev.Data, &state))
		if match(state) {
			return state
		}
	}
}

func TestSurface_RelaysCommands(t *testing.T) {
	srv := newTestServer(t, nil).serve(t)
	session := createSession(t, srv.URL, `{"video_id":"dQw4w9WgXcQ"}`)
	ws := dialSurface(t, srv, session.SessionID)

	sendMessage(t, ws, ports.MessageTypeReady, nil)
	sendMessage(t, ws, ports.MessageTypeGesture, map[string]interface{}{"type": "toggle_play"})

	ev := readUntil(t, ws, ports.EventTypeCommand)
	var msg entities.CommandMessage
	require.NoError(t, json.Unmarshal(ev.Data, &msg))
	assert.Equal(t, "command", msg.Event)
	assert.Equal(t, entities.ActionPlay, msg.Func)
	assert.Equal(t, testEmbedOrigin, msg.TargetOrigin)

	state := readState(t, ws, func(s entities.PlayerState) bool { return s.Playback.IsPlaying })
	assert.Equal(t, session.SessionID, state.SessionID)

	sendMessage(t, ws, ports.MessageTypeGesture, map[string]interface{}{"type": "seek", "value": 100})
	ev = readUntil(t, ws, ports.EventTypeCommand)
	require.NoError(t, json.Unmarshal(ev.Data, &msg))
	assert.Equal(t, "seekTo,213", msg.Command().String())
}

func TestSurface_DropsCommandsUntilReady(t *testing.T) {
	srv := newTestServer(t, nil).serve(t)
	session := createSession(t, srv.URL, `{"video_id":"dQw4w9WgXcQ"}`)
	ws := dialSurface(t, srv, session.SessionID)

	// Not ready yet: state changes, the command is dropped
	sendMessage(t, ws, ports.MessageTypeGesture, map[string]interface{}{"type": "toggle_play"})
	readState(t, ws, func(s entities.PlayerState) bool { return s.Playback.IsPlaying })

	sendMessage(t, ws, ports.MessageTypeReady, nil)
	sendMessage(t, ws, ports.MessageTypeGesture, map[string]interface{}{"type": "toggle_play"})

	ev := readUntil(t, ws, ports.EventTypeCommand)
	var msg entities.CommandMessage
	require.NoError(t, json.Unmarshal(ev.Data, &msg))
	assert.Equal(t, entities.ActionPause, msg.Func, "the earlier playVideo must not have been queued")
}

func TestSurface_Fullscreen(t *testing.T) {
	srv := newTestServer(t, nil).serve(t)
	session := createSession(t, srv.URL, `{"video_id":"dQw4w9WgXcQ"}`)
	ws := dialSurface(t, srv, session.SessionID)

	sendMessage(t, ws, ports.MessageTypeGesture, map[string]interface{}{"type": "toggle_fullscreen"})

	ev := readUntil(t, ws, ports.EventTypeFullscreenRequest)
	var req struct {
		Enter bool `json:"enter"`
	}
	require.NoError(t, json.Unmarshal(ev.Data, &req))
	assert.True(t, req.Enter)

	state := readState(t, ws, func(s entities.PlayerState) bool { return s.Fullscreen.Pending })
	assert.True(t, state.Fullscreen.IsFullscreen, "optimistic flip")

	sendMessage(t, ws, ports.MessageTypeFullscreenChange, map[string]interface{}{"fullscreen": true})
	state = readState(t, ws, func(s entities.PlayerState) bool { return !s.Fullscreen.Pending })
	assert.True(t, state.Fullscreen.IsFullscreen)

	// The page could not leave fullscreen
	sendMessage(t, ws, ports.MessageTypeGesture, map[string]interface{}{"type": "toggle_fullscreen"})
	readUntil(t, ws, ports.EventTypeFullscreenRequest)
	sendMessage(t, ws, ports.MessageTypeFullscreenError, nil)
	state = readState(t, ws, func(s entities.PlayerState) bool { return !s.Fullscreen.Pending })
	assert.True(t, state.Fullscreen.IsFullscreen, "reverted to the confirmed value")
}

func TestSurface_RejectsBadMessages(t *testing.T) {
	srv := newTestServer(t, nil).serve(t)
	session := createSession(t, srv.URL, `{"video_id":"dQw4w9WgXcQ"}`)
	ws := dialSurface(t, srv, session.SessionID)

	sendMessage(t, ws, "teleport", nil)
	ev := readUntil(t, ws, ports.EventTypeError)
	assert.Contains(t, string(ev.Data), "teleport")

	sendMessage(t, ws, ports.MessageTypeGesture, map[string]interface{}{"type": "rewind"})
	ev = readUntil(t, ws, ports.EventTypeError)
	assert.Contains(t, string(ev.Data), "rewind")

	// Garbage is ignored and the connection stays usable
	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte("{not json")))
	sendMessage(t, ws, ports.MessageTypeGesture, map[string]interface{}{"type": "toggle_mute"})
	state := readState(t, ws, func(s entities.PlayerState) bool { return s.Audio.IsMuted })
	assert.True(t, state.Audio.IsMuted)
}

func TestSurface_HandshakeRejections(t *testing.T) {
	srv := newTestServer(t, nil).serve(t)
	session := createSession(t, srv.URL, `{"video_id":"dQw4w9WgXcQ"}`)

	tests := []struct {
		name   string
		url    string
		origin string
		status int
	}{
		{"unknown session", surfaceURL(srv, "nope", testEmbedOrigin), "", http.StatusNotFound},
		{"embed origin mismatch", surfaceURL(srv, session.SessionID, "https://evil.example"), "", http.StatusForbidden},
		{"foreign page origin", surfaceURL(srv, session.SessionID, testEmbedOrigin), "http://evil.example", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := http.Header{}
			if tt.origin != "" {
				header.Set("Origin", tt.origin)
			}
			_, resp, err := websocket.DefaultDialer.Dial(tt.url, header)
			require.Error(t, err)
			require.NotNil(t, resp)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}

	t.Run("local page origin", func(t *testing.T) {
		header := http.Header{}
		header.Set("Origin", "http://localhost:8080")
		ws, _, err := websocket.DefaultDialer.Dial(surfaceURL(srv, session.SessionID, ""), header)
		require.NoError(t, err)
		_ = ws.Close()
	})
}

func TestSurface_DisconnectDetaches(t *testing.T) {
	ts := newTestServer(t, nil)
	srv := ts.serve(t)
	created := createSession(t, srv.URL, `{"video_id":"dQw4w9WgXcQ"}`)
	session, err := ts.sessions.Get(created.SessionID)
	require.NoError(t, err)

	ws := dialSurface(t, srv, created.SessionID)
	assert.True(t, session.Channel.Attached())
	assert.Equal(t, 1, ts.connMgr.Count())

	require.NoError(t, ws.Close())

	assert.Eventually(t, func() bool {
		return !session.Channel.Attached() && ts.connMgr.Count() == 0
	}, 2*time.Second, 10*time.Millisecond)

	// The overlay keeps working without a surface until the orphan timeout
	state, err := session.Overlay.TogglePlay()
	require.NoError(t, err)
	assert.True(t, state.Playback.IsPlaying)
	assert.Equal(t, 1, ts.sessions.Count())

	countdown := ts.clock.PendingTimer(ts.config.Player.GetOrphanTimeout())
	require.NotNil(t, countdown)
	require.True(t, countdown.Fire())

	assert.Eventually(t, func() bool { return ts.sessions.Count() == 0 }, 2*time.Second, 10*time.Millisecond)
	<-session.Overlay.Done()
	assert.Equal(t, 0, ts.clock.ActiveTickers())
}

func TestSurface_UnattachedSessionsAreReaped(t *testing.T) {
	ts := newTestServer(t, nil)
	srv := ts.serve(t)

	for i := 0; i < 5; i++ {
		createSession(t, srv.URL, `{"video_id":"dQw4w9WgXcQ"}`)
	}
	require.Equal(t, 5, ts.sessions.Count())

	orphanTimeout := ts.config.Player.GetOrphanTimeout()
	for _, timer := range ts.clock.Timers() {
		if timer.Pending() && timer.Duration() == orphanTimeout {
			require.True(t, timer.Fire())
		}
	}

	assert.Eventually(t, func() bool { return ts.sessions.Count() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestSurface_SessionDeleteClosesConnection(t *testing.T) {
	srv := newTestServer(t, nil).serve(t)
	session := createSession(t, srv.URL, `{"video_id":"dQw4w9WgXcQ"}`)
	ws := dialSurface(t, srv, session.SessionID)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/api/player/sessions/"+session.SessionID, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			var netErr net.Error
			assert.False(t, errors.As(err, &netErr) && netErr.Timeout(), "connection should close, got %v", err)
			return
		}
	}
}

func TestIsDevelopmentOrigin(t *testing.T) {
	tests := map[string]bool{
		"http://localhost:8080":  true,
		"http://127.0.0.1:3000":  true,
		"http://192.168.1.20":    true,
		"http://10.0.0.5":        true,
		"http://172.20.1.1":      true,
		"http://172.40.1.1":      false,
		"https://www.google.com": false,
	}

	for origin, want := range tests {
		u, err := url.Parse(origin)
		require.NoError(t, err)
		assert.Equal(t, want, isDevelopmentOrigin(u), origin)
	}
}

func TestIsProductionOrigin(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.config.Server.Environment = "production"
	ts.config.Server.CORSOrigins = []string{"https://watch.example.com", "*.example.org"}

	for origin, want := range map[string]bool{
		"https://watch.example.com":  true,
		"https://WATCH.example.com/": true,
		"https://tv.example.org":     true,
		"http://localhost:8080":      false,
		"https://example.net":        false,
	} {
		r := httptest.NewRequest(http.MethodGet, "/ws/surface", nil)
		r.Header.Set("Origin", origin)
		assert.Equal(t, want, ts.isValidOrigin(r), origin)
	}
}
