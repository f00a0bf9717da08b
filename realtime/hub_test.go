package realtime

import (
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go-restaurant-ordering/models"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dial(t *testing.T, srv *httptest.Server, origin string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	header := http.Header{}
	if origin != "" {
		header.Set("Origin", origin)
	}
	return websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), header)
}

func waitForClients(t *testing.T, h *Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return h.ClientCount() == n }, 2*time.Second, 10*time.Millisecond)
}

func TestHubBroadcastsEvents(t *testing.T) {
	hub := NewHub(nil, log.New(io.Discard, "", 0))
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn, _, err := dial(t, srv, "")
	require.NoError(t, err)
	defer conn.Close()
	waitForClients(t, hub, 1)

	hub.NotifyNewOrder(models.Order{OrderID: "ORD-100001", OrderStatus: models.StatusOpen})

	var event models.BoardEvent
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, models.EventNewOrder, event.Event)
	assert.Equal(t, "ORD-100001", event.Payload.OrderID)

	hub.NotifyOrderUpdated(models.Order{OrderID: "ORD-100001", OrderStatus: models.StatusKitchen})
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, models.EventOrderUpdated, event.Event)
	assert.Equal(t, models.StatusKitchen, event.Payload.OrderStatus)
}

func TestHubForgetsClosedClients(t *testing.T) {
	hub := NewHub(nil, log.New(io.Discard, "", 0))
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn, _, err := dial(t, srv, "")
	require.NoError(t, err)
	waitForClients(t, hub, 1)

	conn.Close()
	waitForClients(t, hub, 0)
}

func TestHubRejectsUnknownOrigin(t *testing.T) {
	hub := NewHub([]string{"https://kitchen.example"}, log.New(io.Discard, "", 0))
	srv := httptest.NewServer(hub)
	defer srv.Close()

	_, resp, err := dial(t, srv, "https://evil.example")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	conn, _, err := dial(t, srv, "https://kitchen.example")
	require.NoError(t, err)
	conn.Close()
}
