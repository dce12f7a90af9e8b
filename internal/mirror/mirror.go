// internal/mirror/mirror.go
package mirror

import (
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// Reading is one cycle's outcome as mirrored to the broker.
type Reading struct {
	Device      string `json:"device"`
	DistanceCm  int    `json:"distance_cm"`
	ThresholdCm int    `json:"threshold_cm"`
	Alert       bool   `json:"alert"`
	Ts          int64  `json:"ts"`
}

type Config struct {
	Broker   string
	Topic    string
	ClientID string
	Timeout  time.Duration
}

// Publisher mirrors readings to an MQTT topic at QoS 0.
// It is a best-effort side channel: the HTTP telemetry endpoint stays
// the system of record.
type Publisher struct {
	client  mqtt.Client
	topic   string
	timeout time.Duration
	log     *zap.SugaredLogger
}

// Connect dials the broker once. Paho reconnects on its own afterwards.
func Connect(c Config, log *zap.SugaredLogger) (*Publisher, error) {
	if c.Broker == "" {
		return nil, errors.New("mirror: broker required")
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	opts := mqtt.NewClientOptions().
		AddBroker(c.Broker).
		SetClientID(c.ClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(c.Timeout).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			log.Warnw("mirror connection lost", "err", err)
		}).
		SetOnConnectHandler(func(mqtt.Client) {
			log.Infow("mirror connected", "broker", c.Broker)
		})

	client := mqtt.NewClient(opts)
	tok := client.Connect()
	if !tok.WaitTimeout(c.Timeout) {
		return nil, fmt.Errorf("mirror: connect to %s timed out", c.Broker)
	}
	if err := tok.Error(); err != nil {
		return nil, fmt.Errorf("mirror: connect: %w", err)
	}

	return newPublisher(client, c.Topic, c.Timeout, log), nil
}

func newPublisher(client mqtt.Client, topic string, timeout time.Duration, log *zap.SugaredLogger) *Publisher {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Publisher{client: client, topic: topic, timeout: timeout, log: log}
}

// Publish sends r and waits at most the configured timeout.
func (p *Publisher) Publish(r Reading) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("mirror: encode: %w", err)
	}

	tok := p.client.Publish(p.topic, 0, false, payload)
	if !tok.WaitTimeout(p.timeout) {
		return errors.New("mirror: publish timed out")
	}
	if err := tok.Error(); err != nil {
		return fmt.Errorf("mirror: publish: %w", err)
	}
	return nil
}

func (p *Publisher) Close() {
	p.client.Disconnect(250)
	p.log.Infow("mirror disconnected", "topic", p.topic)
}
