package notify

import (
	"context"
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"
)

// Notifier delivers a fire-and-forget alert. No delivery confirmation is
// relied upon anywhere.
type Notifier interface {
	Send(title, body string)
}

// LogNotifier writes alerts to the process log. Used when no redis is
// configured and as a fallback sink in tests.
type LogNotifier struct{}

func (LogNotifier) Send(title, body string) {
	log.Printf("alert: %s: %s", title, body)
}

// RedisNotifier publishes alerts to a channel a push gateway subscribes to.
type RedisNotifier struct {
	client  *redis.Client
	channel string
}

type alertPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func (n *RedisNotifier) Send(title, body string) {
	payload, _ := json.Marshal(alertPayload{Title: title, Body: body})
	if err := n.client.Publish(context.Background(), n.channel, payload).Err(); err != nil {
		log.Printf("alert publish error: %v", err)
	}
}

// NewNotifier picks the sink for the given redis client, which may be nil.
func NewNotifier(client *redis.Client, channel string) Notifier {
	if client == nil {
		return LogNotifier{}
	}
	return &RedisNotifier{client: client, channel: channel}
}
