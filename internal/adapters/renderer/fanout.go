package renderer

import (
	"context"
	"errors"

	"github.com/okian/tactile/internal/domain/haptic"
)

// Fanout plays every effect on several renderers.
type Fanout struct {
	renderers []Renderer
}

// NewFanout combines rs. Nil entries are skipped.
func NewFanout(rs ...Renderer) *Fanout {
	f := &Fanout{}
	for _, r := range rs {
		if r != nil {
			f.renderers = append(f.renderers, r)
		}
	}
	return f
}

// Prepare prepares every renderer. If one fails the ones already prepared
// are shut down again.
func (f *Fanout) Prepare(ctx context.Context) error {
	for i, r := range f.renderers {
		if err := r.Prepare(ctx); err != nil {
			for j := i - 1; j >= 0; j-- {
				f.renderers[j].Shutdown(ctx)
			}
			return err
		}
	}
	return nil
}

// Play plays e on every renderer and joins their errors.
func (f *Fanout) Play(ctx context.Context, e haptic.Effect) error {
	var errs []error
	for _, r := range f.renderers {
		if err := r.Play(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Shutdown shuts every renderer down in reverse order.
func (f *Fanout) Shutdown(ctx context.Context) {
	for i := len(f.renderers) - 1; i >= 0; i-- {
		f.renderers[i].Shutdown(ctx)
	}
}
