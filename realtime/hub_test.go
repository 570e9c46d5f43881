package realtime

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cafesantander/cart"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func TestHubPushesToOwnerOnly(t *testing.T) {
	hub := NewHub(nil)
	defer hub.Close()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := uint(1)
		if r.URL.Query().Get("u") == "2" {
			userID = 2
		}
		_ = hub.Serve(w, r, userID)
	}))
	defer srv.Close()

	mine := dial(t, srv)
	defer mine.Close()
	other, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"?u=2", nil)
	require.NoError(t, err)
	defer other.Close()

	require.Eventually(t, func() bool { return hub.Connections(1) == 1 && hub.Connections(2) == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.CartChanged(1, cart.Contents{CartID: 5, Items: []cart.Line{{ID: 9, ProductID: 1, Quantity: 2}}, Total: decimal.NewFromInt(5)})

	_ = mine.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := mine.ReadMessage()
	require.NoError(t, err)
	var ev Event
	require.NoError(t, json.Unmarshal(data, &ev))
	assert.Equal(t, EventCart, ev.Type)
	assert.Equal(t, uint(5), ev.Cart.CartID)
	require.Len(t, ev.Cart.Items, 1)
	assert.Equal(t, 2, ev.Cart.Items[0].Quantity)

	_ = other.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, _, err = other.ReadMessage()
	assert.Error(t, err) // nothing for user 2
}

func TestHubForgetsClosedSockets(t *testing.T) {
	hub := NewHub(nil)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.Serve(w, r, 3)
	}))
	defer srv.Close()

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return hub.Connections(3) == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.Connections(3) == 0 }, 2*time.Second, 10*time.Millisecond)

	// Notifying a user without sockets is harmless
	hub.CartChanged(3, cart.Contents{})
}

func TestHubRejectsPlainHTTP(t *testing.T) {
	hub := NewHub(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/cart/ws", nil)
	assert.Error(t, hub.Serve(rec, req, 1))
	assert.Equal(t, 0, hub.Connections(1))
}
