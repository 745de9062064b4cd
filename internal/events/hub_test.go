package events

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/i474232898/weather-dashboard/internal/dashboard"
)

func dialHub(t *testing.T) (*Hub, *websocket.Conn) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := NewHub(zap.NewNop())
	go hub.Run(ctx)

	srv := httptest.NewServer(hub)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)
	return hub, conn
}

func readMessage(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg map[string]any
	require.NoError(t, json.Unmarshal(payload, &msg))
	return msg
}

func TestPublishReachesClients(t *testing.T) {
	hub, conn := dialHub(t)

	hub.Publish(dashboard.Event{Type: dashboard.EventPanelRemoved, PanelID: "tab-pune-1"})

	msg := readMessage(t, conn)
	assert.Equal(t, "panel.removed", msg["type"])
	data, ok := msg["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "tab-pune-1", data["panelId"])
}

func TestNotifyBroadcastsNotification(t *testing.T) {
	hub, conn := dialHub(t)

	require.NoError(t, hub.Notify(context.Background(), dashboard.Notification{ID: "n1", Title: "Rain alert"}))

	msg := readMessage(t, conn)
	assert.Equal(t, "notification", msg["type"])
	data := msg["data"].(map[string]any)
	assert.Equal(t, "Rain alert", data["title"])
}

func TestNotifyReportsDroppedNotification(t *testing.T) {
	// no Run loop, so nothing drains the queue
	hub := NewHub(zap.NewNop())
	for i := 0; i < cap(hub.broadcast); i++ {
		hub.Broadcast("panel.updated", nil)
	}

	err := hub.Notify(context.Background(), dashboard.Notification{ID: "n1", Title: "Rain alert"})
	require.ErrorIs(t, err, ErrQueueFull)
}

func TestPermission(t *testing.T) {
	hub := NewHub(zap.NewNop())
	assert.Equal(t, dashboard.PermissionDefault, hub.Permission())

	hub.SetPermission(dashboard.PermissionGranted)
	assert.Equal(t, dashboard.PermissionGranted, hub.Permission())
}

func TestClientDisconnectUnregisters(t *testing.T) {
	hub, conn := dialHub(t)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)
}
