package location

import (
	"encoding/json"
	"log"
	"time"

	"backend-peaktrack/internal/config"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

// MQTTSource subscribes to a broker topic carrying fix JSON from devices and
// exposes the decoded stream on a channel. It is optional; ConnectMQTT
// returns nil when no broker is configured, mirroring how redis is treated.
type MQTTSource struct {
	client mqtt.Client
	topic  string
	fixes  chan Fix
}

var connectMQTTClientFn = func(opts *mqtt.ClientOptions) (mqtt.Client, error) {
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return client, nil
}

func ConnectMQTT(cfg config.Config) (*MQTTSource, error) {
	if cfg.MQTTBroker == "" {
		return nil, nil
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.MQTTBroker)
	opts.SetClientID("peaktrack-" + uuid.NewString())
	opts.SetAutoReconnect(true)
	opts.SetKeepAlive(60 * time.Second)

	client, err := connectMQTTClientFn(opts)
	if err != nil {
		return nil, err
	}

	s := &MQTTSource{
		client: client,
		topic:  cfg.MQTTTopic,
		fixes:  make(chan Fix, 64),
	}
	if token := client.Subscribe(s.topic, 0, s.handleMessage); token.Wait() && token.Error() != nil {
		client.Disconnect(250)
		return nil, token.Error()
	}
	log.Printf("mqtt: subscribed to %s", s.topic)
	return s, nil
}

// Fixes is the decoded fix stream. The channel is never closed while the
// source is connected; when it is full the newest sample is dropped.
func (s *MQTTSource) Fixes() <-chan Fix {
	return s.fixes
}

func (s *MQTTSource) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	var fix Fix
	if err := json.Unmarshal(msg.Payload(), &fix); err != nil {
		log.Printf("mqtt: dropping malformed fix on %s: %v", msg.Topic(), err)
		return
	}
	select {
	case s.fixes <- fix.Normalize():
	default:
		log.Printf("mqtt: fix channel full, dropping sample")
	}
}

// Close disconnects the broker and closes the fix channel so any goroutine
// ranging over Fixes terminates. No messages arrive after Disconnect returns.
func (s *MQTTSource) Close() {
	if s.client != nil {
		s.client.Disconnect(250)
	}
	close(s.fixes)
}
