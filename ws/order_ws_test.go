package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"pedeai/entity"
	"pedeai/events"
	"pedeai/middlewares"
	"pedeai/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "ws-secret"

func startHub(t *testing.T) (*OrderHub, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctx, cancel := context.WithCancel(context.Background())
	hub := NewOrderHub(nil)
	go hub.Run(ctx)

	r := gin.New()
	r.GET("/ws/orders", middlewares.WSAuthMiddleware(secret), hub.HandleWebSocket)
	srv := httptest.NewServer(r)

	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/orders"
}

func dial(t *testing.T, url string, userID uint, role string) *websocket.Conn {
	t.Helper()
	tok, err := utils.GenerateToken(userID, role, secret, time.Hour)
	require.NoError(t, err)

	conn, res, err := websocket.DefaultDialer.Dial(url+"?token="+tok, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusSwitchingProtocols, res.StatusCode)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) events.OrderEvent {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var e events.OrderEvent
	require.NoError(t, conn.ReadJSON(&e))
	return e
}

func TestOrderHub_RoutesEventsByOwner(t *testing.T) {
	hub, url := startHub(t)

	ana := dial(t, url, 1, entity.RoleCustomer)
	bob := dial(t, url, 2, entity.RoleCustomer)
	admin := dial(t, url, 99, entity.RoleAdmin)

	require.Eventually(t, func() bool {
		return hub.Connections(1) == 1 && hub.Connections(2) == 1 && hub.AdminConnections() == 1
	}, 2*time.Second, 10*time.Millisecond)

	ctx := context.Background()
	require.NoError(t, hub.Publish(ctx, events.OrderEvent{Type: events.OrderCreated, OrderID: 10, UserID: 1}))
	require.NoError(t, hub.Publish(ctx, events.OrderEvent{Type: events.OrderCreated, OrderID: 20, UserID: 2}))

	assert.Equal(t, uint(10), read(t, ana).OrderID)
	// bob's first frame is his own order, so ana's was never sent to him
	assert.Equal(t, uint(20), read(t, bob).OrderID)

	assert.Equal(t, uint(10), read(t, admin).OrderID)
	assert.Equal(t, uint(20), read(t, admin).OrderID)
}

func TestOrderHub_UnregistersClosedSockets(t *testing.T) {
	hub, url := startHub(t)

	conn := dial(t, url, 5, entity.RoleCustomer)
	require.Eventually(t, func() bool { return hub.Connections(5) == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.Connections(5) == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestOrderHub_RejectsMissingToken(t *testing.T) {
	_, url := startHub(t)

	_, res, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, res)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestOrderHub_PublishAfterStopDoesNotBlock(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewOrderHub(nil)
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	done := make(chan error, 1)
	go func() {
		for i := 0; i < cap(hub.broadcast)+1; i++ {
			if err := hub.Publish(context.Background(), events.OrderEvent{OrderID: uint(i)}); err != nil {
				done <- err
				return
			}
		}
		done <- nil
	}()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked after the hub stopped")
	}
}
