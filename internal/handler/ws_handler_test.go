package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	ws "github.com/vigilo-labs/vigilo-backend/internal/websocket"
)

// dialMonitor runs serveMonitor behind an httptest server fed by the given
// event channel and returns a connected client.
func dialMonitor(t *testing.T, events <-chan *redis.Message) *websocket.Conn {
	t.Helper()

	h := &WSHandler{log: zerolog.Nop(), upgrader: buildUpgrader(nil)}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		h.serveMonitor(ws.NewConn(conn), events, zerolog.Nop())
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestMonitorRelaysEventsWhileAnsweringPings(t *testing.T) {
	const eventCount = 200
	const pingCount = 50

	events := make(chan *redis.Message)
	client := dialMonitor(t, events)

	go func() {
		for i := 0; i < eventCount; i++ {
			events <- &redis.Message{Payload: `{"type":"answer"}`}
		}
		close(events)
	}()
	go func() {
		for i := 0; i < pingCount; i++ {
			if err := client.WriteJSON(ws.RequestEnvelope{Action: ws.ActionPing}); err != nil {
				return
			}
		}
	}()

	var pongs, relayed int
	for pongs < pingCount || relayed < eventCount {
		client.SetReadDeadline(time.Now().Add(5 * time.Second))
		var msg struct {
			Event   ws.Event `json:"event"`
			Payload string   `json:"payload"`
		}
		if err := client.ReadJSON(&msg); err != nil {
			t.Fatalf("read after %d pongs / %d events: %v", pongs, relayed, err)
		}
		switch msg.Event {
		case ws.EventPong:
			pongs++
		case ws.EventAttempt:
			if msg.Payload != `{"type":"answer"}` {
				t.Fatalf("relayed payload = %q", msg.Payload)
			}
			relayed++
		default:
			t.Fatalf("unexpected event %q", msg.Event)
		}
	}
}

func TestMonitorRejectsUnknownAction(t *testing.T) {
	events := make(chan *redis.Message)
	defer close(events)
	client := dialMonitor(t, events)

	if err := client.WriteJSON(ws.RequestEnvelope{Action: "subscribe"}); err != nil {
		t.Fatalf("write: %v", err)
	}

	client.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg ws.ErrorResponse
	if err := client.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	if msg.Event != ws.EventError || !strings.Contains(msg.Error, "subscribe") {
		t.Errorf("error response = %+v", msg)
	}
}
