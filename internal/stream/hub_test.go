package stream

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestHubBroadcast(t *testing.T) {
	hub := NewHub(nil)
	client := hub.Register()
	defer hub.Unregister(client)

	payload := []byte("hello")
	hub.Broadcast(payload)

	select {
	case msg := <-client.Send:
		if string(msg) != "hello" {
			t.Fatalf("unexpected message")
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatalf("timeout waiting for message")
	}
}

func TestUnregisterCloses(t *testing.T) {
	hub := NewHub(nil)
	client := hub.Register()
	hub.Unregister(client)
	_, ok := <-client.Send
	if ok {
		t.Fatalf("expected channel closed")
	}
}

func TestUnregisterTwice(t *testing.T) {
	hub := NewHub(nil)
	client := hub.Register()
	hub.Unregister(client)
	hub.Unregister(client)
}

func TestBroadcastSkipsSlowClient(t *testing.T) {
	hub := NewHub(nil)
	client := hub.Register()
	defer hub.Unregister(client)

	for i := 0; i < cap(client.Send)+8; i++ {
		hub.Broadcast([]byte("x"))
	}
}

func TestHubRedisBroadcastAndSubscribe(t *testing.T) {
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer client.Close()

	hub := NewHub(client)
	ws := hub.Register()
	defer hub.Unregister(ws)

	hub.Broadcast([]byte("ping"))

	select {
	case msg := <-ws.Send:
		if string(msg) != "ping" {
			t.Fatalf("unexpected message")
		}
	case <-time.After(200 * time.Millisecond):
		t.Fatalf("timeout waiting for broadcast")
	}

	// a publish from another instance reaches local clients through redis
	time.Sleep(20 * time.Millisecond)
	if err := client.Publish(context.Background(), recordChannel, "pong").Err(); err != nil {
		t.Fatalf("publish error: %v", err)
	}

	deadline := time.After(200 * time.Millisecond)
	for {
		select {
		case msg := <-ws.Send:
			if string(msg) == "pong" {
				return
			}
		case <-deadline:
			t.Fatalf("timeout waiting for redis message")
		}
	}
}

func TestHubRedisPublishError(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	server.Close()
	defer client.Close()

	hub := NewHub(client)
	clientNode := hub.Register()
	defer hub.Unregister(clientNode)

	hub.Broadcast([]byte("ping"))
}
