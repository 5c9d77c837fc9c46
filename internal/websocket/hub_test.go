package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableone/pkg/contracts/events"
)

func dialTestHub(t *testing.T) (*Hub, *gws.Conn) {
	t.Helper()
	hub := NewHub(nil)
	hub.Start()
	t.Cleanup(hub.Stop)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWS(hub, w, r)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := gws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return hub, conn
}

func readEnvelope(t *testing.T, conn *gws.Conn) events.Envelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var env events.Envelope
	require.NoError(t, json.Unmarshal(data, &env))
	return env
}

func TestHub_ConnectionMessage(t *testing.T) {
	_, conn := dialTestHub(t)

	env := readEnvelope(t, conn)
	assert.Equal(t, events.TypeConnection, env.Type)

	data, ok := env.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "connected", data["status"])
	assert.NotEmpty(t, data["client_id"])
}

func TestHub_Broadcast(t *testing.T) {
	hub, conn := dialTestHub(t)
	readEnvelope(t, conn) // connection message

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 },
		time.Second, 10*time.Millisecond)

	hub.Broadcast(events.TypeProgress, events.ProgressPayload{
		RunID:   "run-1",
		StageID: "analyze",
		Status:  "active",
	})

	env := readEnvelope(t, conn)
	assert.Equal(t, events.TypeProgress, env.Type)

	data, ok := env.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "run-1", data["run_id"])
	assert.Equal(t, "analyze", data["stage_id"])
}

func TestHub_ClientCountAfterDisconnect(t *testing.T) {
	hub, conn := dialTestHub(t)
	readEnvelope(t, conn)

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 },
		time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 },
		time.Second, 10*time.Millisecond)
}
