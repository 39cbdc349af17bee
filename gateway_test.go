/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Seednode/wordparty/games/taboo"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type inbound struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func newTestServer(t *testing.T) (*httptest.Server, *Gateway, *taboo.Registry) {
	t.Helper()

	cfg := testConfig()

	words, err := loadWords(cfg)
	require.NoError(t, err)

	gw := newGateway(cfg)
	reg := taboo.NewRegistry(cfg.settings(), gw, words)
	gw.registry = reg

	errs := make(chan error, 16)
	srv := httptest.NewServer(newRouter(cfg, gw, reg, errs))

	t.Cleanup(func() {
		srv.Close()
		reg.Close()
	})

	return srv, gw, reg
}

func dial(t *testing.T, srv *httptest.Server) (*websocket.Conn, *http.Response) {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return conn, resp
}

func send(t *testing.T, conn *websocket.Conn, kind string, payload any) {
	t.Helper()

	require.NoError(t, conn.WriteJSON(map[string]any{"type": kind, "payload": payload}))
}

// readUntil discards messages until one of the given type arrives.
func readUntil(t *testing.T, conn *websocket.Conn, kind string) inbound {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var msg inbound
		require.NoError(t, conn.ReadJSON(&msg), "waiting for %s", kind)
		if msg.Type == kind {
			return msg
		}
	}
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, string(body)
}

func TestGatewayRoomLifecycle(t *testing.T) {
	srv, gw, reg := newTestServer(t)

	alice, resp := dial(t, srv)
	assert.NotEmpty(t, resp.Header.Get("Set-Cookie"), "new clients receive an identity cookie")

	send(t, alice, taboo.CmdCreateRoom, map[string]string{"name": "alice"})
	created := readUntil(t, alice, taboo.EventRoomCreated)

	var body struct {
		Token    taboo.Token    `json:"token"`
		Snapshot taboo.Snapshot `json:"snapshot"`
	}
	require.NoError(t, json.Unmarshal(created.Payload, &body))
	code := body.Token.RoomCode
	require.Len(t, code, taboo.CodeLength)
	assert.Equal(t, "alice", body.Snapshot.Host)

	bob, _ := dial(t, srv)
	send(t, bob, taboo.CmdJoinRoom, map[string]string{"code": strings.ToLower(code), "name": "bob"})
	readUntil(t, bob, taboo.EventRoomJoined)
	readUntil(t, alice, taboo.EventPlayerJoined)

	assert.Equal(t, 2, gw.Len())
	assert.Equal(t, 1, reg.Len())

	resp, raw := get(t, srv.URL+"/api/rooms/"+code)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var summary taboo.Summary
	require.NoError(t, json.Unmarshal([]byte(raw), &summary))
	assert.Equal(t, 2, summary.Players)
	assert.False(t, summary.InGame)

	require.NoError(t, bob.Close())
	readUntil(t, alice, taboo.EventPlayerDisconnected)
}

func TestGatewayRejectsBadMessages(t *testing.T) {
	srv, _, _ := newTestServer(t)

	conn, _ := dial(t, srv)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	msg := readUntil(t, conn, taboo.EventError)
	assert.JSONEq(t, `{"code":"INVALID_COMMAND","message":"invalid command"}`, string(msg.Payload))

	send(t, conn, taboo.CmdStartTurn, nil)
	msg = readUntil(t, conn, taboo.EventError)
	assert.Contains(t, string(msg.Payload), "NOT_AUTHORIZED")

	send(t, conn, taboo.CmdJoinRoom, map[string]string{"code": "ZZZZZ", "name": "bob"})
	msg = readUntil(t, conn, taboo.EventError)
	assert.Contains(t, string(msg.Payload), "ROOM_NOT_FOUND")
}

func TestRoomEndpoints(t *testing.T) {
	srv, _, _ := newTestServer(t)

	tests := []struct {
		path   string
		status int
		kind   string
	}{
		{path: "/api/rooms/ZZZZZ", status: http.StatusNotFound, kind: "application/json"},
		{path: "/api/rooms/AB", status: http.StatusBadRequest, kind: "application/json"},
		{path: "/room/abcde/qr", status: http.StatusOK, kind: "image/png"},
		{path: "/room/ABC01/qr", status: http.StatusBadRequest},
		{path: "/healthz", status: http.StatusOK, kind: "text/plain"},
		{path: "/version", status: http.StatusOK, kind: "text/plain"},
		{path: "/robots.txt", status: http.StatusOK, kind: "text/plain"},
	}

	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			resp, _ := get(t, srv.URL+tc.path)
			assert.Equal(t, tc.status, resp.StatusCode)
			if tc.kind != "" {
				assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), tc.kind), resp.Header.Get("Content-Type"))
			}
		})
	}
}

func TestHomePage(t *testing.T) {
	srv, _, _ := newTestServer(t)

	resp, body := get(t, srv.URL+"/?room=abcde")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Join room ABCDE")
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))

	var found bool
	for _, c := range resp.Cookies() {
		if c.Name == clientCookieName {
			found = c.Value != ""
		}
	}
	assert.True(t, found)

	_, body = get(t, srv.URL+"/?room=nope")
	assert.Contains(t, body, "wordparty v"+releaseVersion)
}

func TestRealIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:5000"
	assert.Equal(t, "10.0.0.1:5000", realIP(r))

	r.Header.Set("X-Real-IP", "203.0.113.9")
	assert.Equal(t, "203.0.113.9:5000", realIP(r))

	r.Header.Set("CF-Connecting-IP", "2001:db8::1")
	assert.Equal(t, "[2001:db8::1]:5000", realIP(r))
}
