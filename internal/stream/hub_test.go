package stream

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestHubBroadcast(t *testing.T) {
	hub := NewHub(nil)
	client := hub.Register("user-1")
	defer hub.Unregister(client)

	payload := []byte(`{"status":"running"}`)
	hub.Broadcast("user-1", payload)

	select {
	case msg := <-client.Send:
		if string(msg) != string(payload) {
			t.Fatalf("unexpected message %q", msg)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatalf("timeout waiting for message")
	}
}

func TestHubBroadcastOtherUserSilent(t *testing.T) {
	hub := NewHub(nil)
	client := hub.Register("user-1")
	defer hub.Unregister(client)

	hub.Broadcast("user-2", []byte("x"))

	select {
	case msg := <-client.Send:
		t.Fatalf("unexpected message %q", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubHelpers(t *testing.T) {
	ch := redisChannel("user-1")
	if ch != "sync:user-1:events" {
		t.Fatalf("channel = %q", ch)
	}
	if userIDFromChannel(ch) != "user-1" {
		t.Fatalf("unexpected user id")
	}
	if userIDFromChannel("bad") != "" {
		t.Fatalf("expected empty user id")
	}
}

func TestUnregisterCloses(t *testing.T) {
	hub := NewHub(nil)
	client := hub.Register("user-2")
	hub.Unregister(client)
	_, ok := <-client.Send
	if ok {
		t.Fatalf("expected channel closed")
	}
}

func TestHubRedisRoundTrip(t *testing.T) {
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer client.Close()

	hub := NewHub(client)
	ws := hub.Register("user-redis")
	defer hub.Unregister(ws)

	// give the pattern subscription a moment to settle
	time.Sleep(50 * time.Millisecond)
	hub.Broadcast("user-redis", []byte("ping"))

	select {
	case msg := <-ws.Send:
		if string(msg) != "ping" {
			t.Fatalf("unexpected message %q", msg)
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("timeout waiting for pubsub round trip")
	}
}

func TestHubRedisPublishError(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	server.Close()
	defer client.Close()

	hub := NewHub(client)
	clientNode := hub.Register("user-bad")
	defer hub.Unregister(clientNode)

	hub.Broadcast("user-bad", []byte("ping"))
}
