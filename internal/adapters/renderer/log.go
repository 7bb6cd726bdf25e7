package renderer

import (
	"context"
	"sync/atomic"

	"github.com/okian/tactile/internal/domain/haptic"
	"github.com/okian/tactile/pkg/logger"
)

// LogRenderer writes every effect to the log. It is the default when no
// device is attached.
type LogRenderer struct {
	logger logger.Logger
	ready  atomic.Bool
	played atomic.Int64
}

// NewLogRenderer creates a LogRenderer. A nil logger uses the global one.
func NewLogRenderer(l logger.Logger) *LogRenderer {
	if l == nil {
		l = logger.Get()
	}
	return &LogRenderer{logger: l.Named("haptics")}
}

func (r *LogRenderer) Prepare(ctx context.Context) error {
	r.ready.Store(true)
	r.logger.Info(ctx, "log renderer ready")
	return nil
}

func (r *LogRenderer) Play(ctx context.Context, e haptic.Effect) error {
	if !r.ready.Load() {
		return ErrNotPrepared
	}
	r.played.Add(1)
	r.logger.Info(ctx, "play",
		logger.String("effect", e.Kind.String()),
		logger.Float64("intensity", float64(e.Intensity)),
		logger.Float64("sharpness", float64(e.Sharpness)),
		logger.Duration("duration", e.EffectiveDuration()),
	)
	return nil
}

func (r *LogRenderer) Shutdown(ctx context.Context) {
	r.ready.Store(false)
	r.logger.Info(ctx, "log renderer stopped")
}

// Played returns how many effects were played.
func (r *LogRenderer) Played() int64 {
	return r.played.Load()
}
