package renderer

import (
	"context"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/okian/tactile/internal/domain/haptic"
	"github.com/okian/tactile/pkg/logger"
)

const (
	defaultBroker   = "tcp://localhost:1883"
	defaultTopic    = "tactile/haptics"
	defaultClientID = "tactile-haptics"
	connectTimeout  = 10 * time.Second
	publishGrace    = 50 * time.Millisecond
	disconnectQuiet = 250 // ms
)

// MQTTRenderer publishes play requests for a device to consume.
type MQTTRenderer struct {
	broker   string
	topic    string
	clientID string
	qos      byte

	client mqtt.Client
	logger logger.Logger

	mu    sync.Mutex
	ready bool
}

// MQTTOption applies a configuration option to the MQTTRenderer.
type MQTTOption func(*MQTTRenderer)

// WithBroker sets the broker URL.
func WithBroker(broker string) MQTTOption {
	return func(r *MQTTRenderer) {
		if broker != "" {
			r.broker = broker
		}
	}
}

// WithTopic sets the publish topic.
func WithTopic(topic string) MQTTOption {
	return func(r *MQTTRenderer) {
		if topic != "" {
			r.topic = topic
		}
	}
}

// WithClientID sets the MQTT client id.
func WithClientID(id string) MQTTOption {
	return func(r *MQTTRenderer) {
		if id != "" {
			r.clientID = id
		}
	}
}

// WithClient uses an existing client instead of dialing the broker.
func WithClient(c mqtt.Client) MQTTOption {
	return func(r *MQTTRenderer) { r.client = c }
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) MQTTOption {
	return func(r *MQTTRenderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewMQTTRenderer creates a renderer publishing to a broker.
func NewMQTTRenderer(opts ...MQTTOption) *MQTTRenderer {
	r := &MQTTRenderer{
		broker:   defaultBroker,
		topic:    defaultTopic,
		clientID: defaultClientID,
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.logger == nil {
		r.logger = logger.Get()
	}
	r.logger = r.logger.Named("haptics")

	if r.client == nil {
		r.client = mqtt.NewClient(mqtt.NewClientOptions().
			AddBroker(r.broker).
			SetClientID(r.clientID).
			SetAutoReconnect(true))
	}
	return r
}

// Prepare connects to the broker.
func (r *MQTTRenderer) Prepare(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ready {
		return nil
	}
	if !r.client.IsConnected() {
		token := r.client.Connect()
		if !token.WaitTimeout(connectTimeout) {
			return fmt.Errorf("%w: connect %s: timed out", ErrNotConnected, r.broker)
		}
		if err := token.Error(); err != nil {
			return fmt.Errorf("%w: connect %s: %w", ErrNotConnected, r.broker, err)
		}
	}

	r.ready = true
	r.logger.Info(ctx, "mqtt renderer ready",
		logger.String("broker", r.broker),
		logger.String("topic", r.topic),
	)
	return nil
}

// Play publishes e. It waits only briefly for the publish token so that a
// slow broker never stalls recognition.
func (r *MQTTRenderer) Play(_ context.Context, e haptic.Effect) error {
	r.mu.Lock()
	ready := r.ready
	r.mu.Unlock()
	if !ready {
		return ErrNotPrepared
	}

	payload, err := encode(e)
	if err != nil {
		return err
	}

	token := r.client.Publish(r.topic, r.qos, false, payload)
	select {
	case <-token.Done():
		return token.Error()
	case <-time.After(publishGrace):
		return nil
	}
}

// Shutdown disconnects from the broker.
func (r *MQTTRenderer) Shutdown(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.ready {
		return
	}
	r.client.Disconnect(disconnectQuiet)
	r.ready = false
	r.logger.Info(ctx, "mqtt renderer stopped")
}
