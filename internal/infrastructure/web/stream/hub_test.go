package stream

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticker-cache-service/internal/application/dto"
	"ticker-cache-service/internal/domain/entities"
)

func snapshotWith(price string, at time.Time) *entities.Snapshot {
	return entities.NewSnapshot(map[string]entities.AssetRecord{
		"BTC": {ID: "BTC", CurrentPrice: decimal.NewNullDecimal(decimal.RequireFromString(price))},
	}, at)
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) dto.StreamMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg dto.StreamMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestHub_PushesSnapshots(t *testing.T) {
	hub := NewHub("USD")
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 5*time.Millisecond)

	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	hub.OnSnapshot(context.Background(), snapshotWith("64000", at))

	msg := readMessage(t, conn)
	assert.Equal(t, "snapshot", msg.Type)
	assert.Equal(t, "USD", msg.Currency)
	assert.True(t, msg.FetchedAt.Equal(at))
	require.Len(t, msg.Assets, 1)
	assert.Equal(t, "64000", msg.Assets[0].CurrentPrice.Decimal.String())
}

func TestHub_NewClientGetsLatestSnapshot(t *testing.T) {
	hub := NewHub("USD")
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	hub.OnSnapshot(context.Background(), snapshotWith("1", time.Now()))
	hub.OnSnapshot(context.Background(), snapshotWith("2", time.Now()))

	conn := dial(t, srv)
	msg := readMessage(t, conn)
	require.Len(t, msg.Assets, 1)
	assert.Equal(t, "2", msg.Assets[0].CurrentPrice.Decimal.String())
}

func TestHub_CloseDisconnectsClients(t *testing.T) {
	hub := NewHub("USD")
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 5*time.Millisecond)

	hub.Close()
	assert.Equal(t, 0, hub.Clients())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
}

func TestHub_SlowClientIsDropped(t *testing.T) {
	hub := NewHub("USD")
	c := &client{send: make(chan []byte, 1)}
	hub.clients[c] = struct{}{}

	hub.OnSnapshot(context.Background(), snapshotWith("1", time.Now()))
	assert.Equal(t, 1, hub.Clients())

	hub.OnSnapshot(context.Background(), snapshotWith("2", time.Now()))
	assert.Equal(t, 0, hub.Clients())

	_, ok := <-c.send
	assert.True(t, ok, "buffered message is still delivered")
	_, ok = <-c.send
	assert.False(t, ok, "channel closed after drop")
}
