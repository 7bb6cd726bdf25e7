// Package renderer provides haptic renderers: the collaborators that turn
// effect requests into output on a device.
package renderer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/okian/tactile/internal/config"
	"github.com/okian/tactile/internal/domain/haptic"
	"github.com/okian/tactile/pkg/logger"
)

// Renderer matches the engine's haptic port.
type Renderer interface {
	Prepare(ctx context.Context) error
	Play(ctx context.Context, e haptic.Effect) error
	Shutdown(ctx context.Context)
}

// Request is the wire form of one play request sent to a device.
type Request struct {
	ID     string            `json:"id"`
	At     time.Time         `json:"at"`
	Effect haptic.Definition `json:"effect"`
}

func newRequest(e haptic.Effect) Request {
	return Request{
		ID:     uuid.NewString(),
		At:     time.Now().UTC(),
		Effect: haptic.DefinitionOf(e),
	}
}

func encode(e haptic.Effect) ([]byte, error) {
	b, err := json.Marshal(newRequest(e))
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", e, err)
	}
	return b, nil
}

// New builds the renderers listed in cfg.Renderer. A single name returns
// that renderer; several are combined in a Fanout in the listed order.
func New(cfg config.HapticConfig, l logger.Logger) (Renderer, error) {
	names := cfg.Renderers()
	rs := make([]Renderer, 0, len(names))
	for _, name := range names {
		r, err := newNamed(name, cfg, l)
		if err != nil {
			return nil, err
		}
		rs = append(rs, r)
	}
	if len(rs) == 1 {
		return rs[0], nil
	}
	return NewFanout(rs...), nil
}

func newNamed(name string, cfg config.HapticConfig, l logger.Logger) (Renderer, error) {
	switch name {
	case config.RendererLog:
		return NewLogRenderer(l), nil
	case config.RendererMQTT:
		return NewMQTTRenderer(
			WithBroker(cfg.Broker),
			WithTopic(cfg.Topic),
			WithClientID(config.UniqueClientID(cfg.ClientID)),
			WithLogger(l),
		), nil
	case config.RendererWebSocket:
		return NewWebSocketRenderer(
			WithWSLogger(l),
			RequireClient(cfg.RequireClient),
			WithCheckOrigin(AllowOrigins(cfg.AllowedOrigins)),
		), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRenderer, name)
	}
}

// Handler returns the HTTP endpoint clients attach to, if r or one of the
// renderers in a Fanout serves one.
func Handler(r Renderer) (http.Handler, bool) {
	if h, ok := r.(http.Handler); ok {
		return h, true
	}
	if f, ok := r.(*Fanout); ok {
		for _, member := range f.renderers {
			if h, ok := Handler(member); ok {
				return h, true
			}
		}
	}
	return nil, false
}
