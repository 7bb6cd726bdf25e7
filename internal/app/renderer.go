package service

import (
	"context"
	"fmt"

	"github.com/okian/tactile/internal/domain/haptic"
)

// Renderer is the haptic collaborator. The engine holds one for its whole
// lifetime.
type Renderer interface {
	// Prepare readies the output. It is called once per engine start.
	Prepare(ctx context.Context) error

	// Play submits an effect. It must not wait for playback to finish.
	Play(ctx context.Context, e haptic.Effect) error

	// Shutdown releases the output. It is called once per engine stop.
	Shutdown(ctx context.Context)
}

type handleState uint8

const (
	handleAbsent handleState = iota
	handleReady
)

func (s handleState) String() string {
	if s == handleReady {
		return "ready"
	}
	return "absent"
}

// rendererHandle tracks whether the renderer is prepared. Play is only
// forwarded while ready.
type rendererHandle struct {
	renderer Renderer
	state    handleState
}

func (h *rendererHandle) ready() bool { return h.state == handleReady }

func (h *rendererHandle) prepare(ctx context.Context) error {
	if h.ready() {
		return nil
	}
	if err := h.renderer.Prepare(ctx); err != nil {
		return err
	}
	h.state = handleReady
	return nil
}

func (h *rendererHandle) play(ctx context.Context, e haptic.Effect) error {
	if !h.ready() {
		return fmt.Errorf("renderer %s", h.state)
	}
	return h.renderer.Play(ctx, e)
}

func (h *rendererHandle) release(ctx context.Context) {
	if !h.ready() {
		return
	}
	h.renderer.Shutdown(ctx)
	h.state = handleAbsent
}
