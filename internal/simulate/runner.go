package simulate

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/okian/tactile/internal/domain/motion"
	"github.com/okian/tactile/pkg/logger"
)

// Runner defaults.
const (
	DefaultBaseURL = "http://localhost:9080"
	DefaultTimeout = 10 * time.Second
	DefaultSettle  = 3 * time.Second
	settlePoll     = 50 * time.Millisecond
)

// Config holds one run's parameters.
type Config struct {
	BaseURL  string        // service base URL
	Scenario *Scenario     // scenario to replay
	RateHz   int           // overrides the scenario's rate when positive
	Batch    int           // samples per POST, default 1
	Timeout  time.Duration // HTTP request timeout
	Settle   time.Duration // how long to wait for the queue to drain
	Seed     uint64        // jitter seed; zero picks one from the run ID
	Realtime bool          // pace POSTs at the tick rate instead of sending as fast as possible
}

// Report summarizes a run.
type Report struct {
	RunID    string
	Scenario string
	Samples  int
	Accepted int
	Rejected int
	Fired    int64
	Expected int
	Duration time.Duration
}

// Passed reports whether the service fired at least the expected count.
func (r *Report) Passed() bool {
	return r.Fired >= int64(r.Expected)
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.BaseURL == "" {
		out.BaseURL = DefaultBaseURL
	}
	if out.Batch < 1 {
		out.Batch = 1
	}
	if out.Timeout <= 0 {
		out.Timeout = DefaultTimeout
	}
	if out.Settle <= 0 {
		out.Settle = DefaultSettle
	}
	return out
}

// Run checks health, replays the scenario, waits for the queue to drain
// and compares the fired counter against the scenario's expectation. The
// report is returned even when verification fails.
func Run(ctx context.Context, cfg *Config) (*Report, error) {
	if cfg == nil || cfg.Scenario == nil {
		return nil, fmt.Errorf("%w: no scenario", ErrInvalidScenario)
	}
	c := cfg.withDefaults()
	log := logger.Named("simulate")

	runID := uuid.New()
	report := &Report{
		RunID:    runID.String(),
		Scenario: c.Scenario.Name,
		Expected: c.Scenario.Expect,
	}
	started := time.Now()

	log.Info(ctx, "starting scenario",
		logger.String("run", report.RunID),
		logger.String("scenario", c.Scenario.Name),
		logger.String("baseURL", c.BaseURL),
		logger.Int("rateHz", c.Scenario.Rate(c.RateHz)))

	client := newHTTPClient(c.BaseURL, c.Timeout)
	if err := client.health(ctx); err != nil {
		return nil, err
	}

	before, err := client.stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read stats: %w", err)
	}

	seed := c.Seed
	if seed == 0 {
		seed = uint64(runID.ID())
	}
	samples := c.Scenario.Samples(c.firstTimestamp(time.Now()), c.RateHz, rand.New(rand.NewPCG(seed, seed)))
	report.Samples = len(samples)

	if err := send(ctx, client, &c, samples, report); err != nil {
		return report, err
	}

	after, err := settle(ctx, client, c.Settle)
	if err != nil {
		return report, fmt.Errorf("failed to read stats: %w", err)
	}
	report.Fired = number(after, "fired") - number(before, "fired")
	report.Duration = time.Since(started)

	log.Info(ctx, "scenario finished",
		logger.String("run", report.RunID),
		logger.Int("samples", report.Samples),
		logger.Int("accepted", report.Accepted),
		logger.Int("rejected", report.Rejected),
		logger.Int64("fired", report.Fired),
		logger.Int("expected", report.Expected),
		logger.Duration("duration", report.Duration))

	if !report.Passed() {
		return report, fmt.Errorf("%w: fired %d, expected at least %d", ErrVerification, report.Fired, report.Expected)
	}
	return report, nil
}

// firstTimestamp places the virtual timeline so that no sample is stamped
// later than the moment it is posted. The service replaces timestamps that
// run ahead of its clock, which would change what debounces.
func (c *Config) firstTimestamp(now time.Time) time.Time {
	if !c.Realtime {
		return now.Add(-c.Scenario.Duration())
	}
	tick := time.Second / time.Duration(c.Scenario.Rate(c.RateHz))
	return now.Add(-tick * time.Duration(c.Batch))
}

// send posts samples in batches. In realtime mode each batch waits for
// its share of ticks.
func send(ctx context.Context, client *httpClient, c *Config, samples []motion.Sample, report *Report) error {
	var ticker *time.Ticker
	if c.Realtime {
		tick := time.Second / time.Duration(c.Scenario.Rate(c.RateHz))
		ticker = time.NewTicker(tick * time.Duration(c.Batch))
		defer ticker.Stop()
	}

	for start := 0; start < len(samples); start += c.Batch {
		end := min(start+c.Batch, len(samples))
		batch := samples[start:end]

		accepted, err := client.postSamples(ctx, batch)
		if err != nil {
			return err
		}
		report.Accepted += accepted
		report.Rejected += len(batch) - accepted

		if ticker != nil && end < len(samples) {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
		}
	}
	return nil
}

// settle polls /stats until the queue is empty and the processed count
// holds still across two polls, or the deadline passes. It returns the
// last snapshot.
func settle(ctx context.Context, client *httpClient, within time.Duration) (map[string]any, error) {
	deadline := time.Now().Add(within)
	last := int64(-1)
	for {
		stats, err := client.stats(ctx)
		if err != nil {
			return nil, err
		}
		processed := number(stats, "samples")
		if (number(stats, "queueLength") == 0 && processed == last) || time.Now().After(deadline) {
			return stats, nil
		}
		last = processed
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(settlePoll):
		}
	}
}
