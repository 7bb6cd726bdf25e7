package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/okian/tactile/internal/adapters/mq/queue"
	"github.com/okian/tactile/internal/domain/motion"
)

const (
	defaultMaxBatch = 256
	maxBodyBytes    = 1 << 20
)

// SamplesHandler accepts motion samples over HTTP.
type SamplesHandler struct {
	deps     SampleSubmitter
	maxBatch int
}

// NewSamplesHandler creates a new samples handler.
func NewSamplesHandler(deps SampleSubmitter) *SamplesHandler {
	return &SamplesHandler{deps: deps, maxBatch: defaultMaxBatch}
}

// HandlePostSamples handles POST /samples. The body is one sample object
// or an array of samples, queued in order.
//
//	202 every sample queued
//	400 malformed body
//	429 queue full; "accepted" tells how many made it in
//	503 service not running
func (h *SamplesHandler) HandlePostSamples(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	samples, err := h.decode(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}

	for i, s := range samples {
		err := h.deps.Submit(r.Context(), s)
		switch {
		case err == nil:
			continue
		case errors.Is(err, queue.ErrQueueFull):
			writeJSON(w, http.StatusTooManyRequests, ackResponse{Status: ErrBackpressure.Error(), Accepted: i})
		default:
			writeError(w, http.StatusServiceUnavailable, "unavailable", fmt.Errorf("%w: %w", ErrUnavailable, err))
		}
		return
	}

	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", Accepted: len(samples)})
}

func (h *SamplesHandler) decode(body io.Reader) ([]motion.Sample, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, errors.New("empty body")
	}

	var samples []motion.Sample
	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &samples); err != nil {
			return nil, err
		}
	} else {
		var s motion.Sample
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		samples = []motion.Sample{s}
	}

	switch {
	case len(samples) == 0:
		return nil, errors.New("no samples")
	case len(samples) > h.maxBatch:
		return nil, fmt.Errorf("batch of %d exceeds limit %d", len(samples), h.maxBatch)
	}
	return samples, nil
}
