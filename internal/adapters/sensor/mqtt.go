// Package sensor subscribes to motion samples published by a device and
// feeds them into the recognition pipeline.
package sensor

import (
	"context"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/okian/tactile/internal/domain/motion"
	"github.com/okian/tactile/pkg/logger"
	"github.com/okian/tactile/pkg/metrics"
)

const (
	defaultBroker   = "tcp://localhost:1883"
	defaultTopic    = "tactile/motion"
	defaultClientID = "tactile-sensor"
	connectTimeout  = 10 * time.Second
	disconnectQuiet = 250 // ms
)

// Enqueuer accepts decoded samples. It must not block.
type Enqueuer interface {
	Enqueue(ctx context.Context, s motion.Sample) bool
}

// MQTTSource subscribes to a topic and enqueues every decodable payload.
// Malformed payloads and rejected samples are logged and counted.
type MQTTSource struct {
	broker   string
	topic    string
	clientID string
	qos      byte

	sink   Enqueuer
	client mqtt.Client
	logger logger.Logger

	mu      sync.Mutex
	started bool
}

// Option applies a configuration option to the MQTTSource.
type Option func(*MQTTSource)

// WithBroker sets the broker URL, e.g. tcp://pi.local:1883.
func WithBroker(broker string) Option {
	return func(s *MQTTSource) {
		if broker != "" {
			s.broker = broker
		}
	}
}

// WithTopic sets the subscription topic.
func WithTopic(topic string) Option {
	return func(s *MQTTSource) {
		if topic != "" {
			s.topic = topic
		}
	}
}

// WithClientID sets the MQTT client id.
func WithClientID(id string) Option {
	return func(s *MQTTSource) {
		if id != "" {
			s.clientID = id
		}
	}
}

// WithClient uses an existing client instead of dialing the broker.
func WithClient(c mqtt.Client) Option {
	return func(s *MQTTSource) { s.client = c }
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(s *MQTTSource) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewMQTTSource creates a source that feeds sink.
func NewMQTTSource(sink Enqueuer, opts ...Option) *MQTTSource {
	s := &MQTTSource{
		broker:   defaultBroker,
		topic:    defaultTopic,
		clientID: defaultClientID,
		sink:     sink,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("sensor")
	}
	if s.client == nil {
		s.client = mqtt.NewClient(mqtt.NewClientOptions().
			AddBroker(s.broker).
			SetClientID(s.clientID).
			SetAutoReconnect(true).
			SetConnectRetry(true))
	}

	return s
}

// Start connects and subscribes. Samples are enqueued with ctx.
func (s *MQTTSource) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if !s.client.IsConnected() {
		if token := s.client.Connect(); !token.WaitTimeout(connectTimeout) || token.Error() != nil {
			return fmt.Errorf("%w: connect %s: %v", ErrNotConnected, s.broker, token.Error())
		}
	}

	handler := func(_ mqtt.Client, msg mqtt.Message) { s.onMessage(ctx, msg) }
	if token := s.client.Subscribe(s.topic, s.qos, handler); token.Wait() && token.Error() != nil {
		s.client.Disconnect(disconnectQuiet)
		return fmt.Errorf("subscribe %s: %w", s.topic, token.Error())
	}

	s.started = true
	s.logger.Info(ctx, "subscribed to motion topic",
		logger.String("broker", s.broker),
		logger.String("topic", s.topic),
	)
	return nil
}

// Stop unsubscribes and disconnects.
func (s *MQTTSource) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.client.Unsubscribe(s.topic).WaitTimeout(connectTimeout)
	s.client.Disconnect(disconnectQuiet)
	s.started = false
	s.logger.Info(context.Background(), "motion source stopped")
}

func (s *MQTTSource) onMessage(ctx context.Context, msg mqtt.Message) {
	metrics.RecordSensorMessage()

	sample, err := Decode(msg.Payload())
	if err != nil {
		metrics.RecordSensorDecodeError()
		s.logger.Warn(ctx, "dropping motion payload",
			logger.String("topic", msg.Topic()),
			logger.Error(err),
		)
		return
	}

	if !s.sink.Enqueue(ctx, sample) {
		metrics.RecordErrorByComponent("sensor", "backpressure")
		s.logger.Debug(ctx, "sample rejected by queue", logger.String("topic", msg.Topic()))
	}
}
