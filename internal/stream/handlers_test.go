package stream

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gorilla/websocket"
)

func TestStreamHandlersUpgradeRequired(t *testing.T) {
	app := fiber.New()
	RegisterRoutes(app.Group("/stream"), NewHub(nil))

	req := httptest.NewRequest(http.MethodGet, "/stream/ws/"+TopicCommunity, nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	if resp.StatusCode == http.StatusOK {
		t.Fatalf("expected non-200 for non-websocket request")
	}
}

func dialStream(t *testing.T, hub *Hub, topic string) (*websocket.Conn, func()) {
	t.Helper()
	app := fiber.New()
	RegisterRoutes(app.Group("/stream"), hub)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen error: %v", err)
	}

	go func() {
		_ = app.Listener(ln)
	}()

	wsURL := "ws://" + ln.Addr().String() + "/stream/ws/" + topic
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		ln.Close()
		t.Fatalf("dial error: %v", err)
	}

	// give the handler a moment to register with the hub
	time.Sleep(20 * time.Millisecond)
	return conn, func() {
		conn.Close()
		_ = app.Shutdown()
		ln.Close()
	}
}

func TestStreamHandlersWebsocketBroadcast(t *testing.T) {
	hub := NewHub(nil)
	conn, stop := dialStream(t, hub, TopicCommunity)
	defer stop()

	hub.Broadcast(TopicCommunity, []byte(`{"event":"reloaded"}`))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read error: %v", err)
	}
	if string(msg) != `{"event":"reloaded"}` {
		t.Fatalf("unexpected message %q", msg)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte("client")); err != nil {
		t.Fatalf("write error: %v", err)
	}
}

func TestStreamHandlersTopicIsolation(t *testing.T) {
	hub := NewHub(nil)
	conn, stop := dialStream(t, hub, TopicAuth)
	defer stop()

	hub.Broadcast(TopicCommunity, []byte("community-only"))
	hub.Broadcast(TopicAuth, []byte("auth-event"))

	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read error: %v", err)
	}
	if string(msg) != "auth-event" {
		t.Fatalf("auth subscriber must only see auth events, got %q", msg)
	}
}

func TestStreamHandlersWebsocketWriteError(t *testing.T) {
	hub := NewHub(nil)
	conn, stop := dialStream(t, hub, TopicCommunity)
	defer stop()
	conn.Close()

	hub.Broadcast(TopicCommunity, []byte("ping"))
	time.Sleep(20 * time.Millisecond)
}

func TestStreamHandlersWebsocketCloseMessage(t *testing.T) {
	hub := NewHub(nil)
	conn, stop := dialStream(t, hub, TopicAuth)
	defer stop()

	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
	conn.Close()

	hub.Broadcast(TopicAuth, []byte("ping"))
	time.Sleep(20 * time.Millisecond)
}
