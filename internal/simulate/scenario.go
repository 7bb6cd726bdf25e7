// Package simulate generates synthetic motion and replays it against a
// running service.
package simulate

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/okian/tactile/internal/domain/motion"
)

const defaultRateHz = 50

// Scenario is a sequence of phases, each holding one sample shape for a
// duration. Expect is the minimum number of firings the scenario should
// cause when the matching mapping is registered.
type Scenario struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	RateHz      int     `yaml:"rate_hz"`
	Expect      int     `yaml:"expect"`
	Phases      []Phase `yaml:"phases"`
}

// Phase holds Sample for Duration. Jitter adds uniform noise in
// [-Jitter, Jitter] to every acceleration and rotation component.
type Phase struct {
	Name     string        `yaml:"name"`
	Duration string        `yaml:"duration"`
	Jitter   float64       `yaml:"jitter"`
	Sample   motion.Sample `yaml:"sample"`
}

// Validate checks that every phase has a positive duration.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidScenario)
	}
	if len(s.Phases) == 0 {
		return fmt.Errorf("%w: %s has no phases", ErrInvalidScenario, s.Name)
	}
	if s.RateHz < 0 || s.Expect < 0 {
		return fmt.Errorf("%w: %s has a negative rate or expectation", ErrInvalidScenario, s.Name)
	}
	for i, p := range s.Phases {
		d, err := time.ParseDuration(p.Duration)
		if err != nil {
			return fmt.Errorf("%w: %s phase %d: %w", ErrInvalidScenario, s.Name, i, err)
		}
		if d <= 0 {
			return fmt.Errorf("%w: %s phase %d: duration must be positive", ErrInvalidScenario, s.Name, i)
		}
		if p.Jitter < 0 {
			return fmt.Errorf("%w: %s phase %d: negative jitter", ErrInvalidScenario, s.Name, i)
		}
	}
	return nil
}

// Duration is the sum of all phase durations.
func (s *Scenario) Duration() time.Duration {
	var total time.Duration
	for _, p := range s.Phases {
		d, _ := time.ParseDuration(p.Duration)
		total += d
	}
	return total
}

// Rate returns the tick rate, falling back to rate when the scenario does
// not set one and to 50 Hz when neither does.
func (s *Scenario) Rate(override int) int {
	switch {
	case override > 0:
		return override
	case s.RateHz > 0:
		return s.RateHz
	default:
		return defaultRateHz
	}
}

// Samples renders the scenario at rateHz, timestamping the first sample at
// start. Every phase yields at least one sample. rng may be nil when no
// phase uses jitter.
func (s *Scenario) Samples(start time.Time, rateHz int, rng *rand.Rand) []motion.Sample {
	tick := time.Second / time.Duration(s.Rate(rateHz))

	var out []motion.Sample
	at := start
	for _, p := range s.Phases {
		d, _ := time.ParseDuration(p.Duration)
		n := int(d / tick)
		if n < 1 {
			n = 1
		}
		for i := 0; i < n; i++ {
			sample := p.Sample
			if p.Jitter > 0 && rng != nil {
				sample.Acceleration = jitter(sample.Acceleration, p.Jitter, rng)
				sample.RotationRate = jitter(sample.RotationRate, p.Jitter, rng)
			}
			sample.Timestamp = at
			out = append(out, sample)
			at = at.Add(tick)
		}
	}
	return out
}

func jitter(v motion.Vector3, amp float64, rng *rand.Rand) motion.Vector3 {
	return motion.Vector3{
		X: v.X + (rng.Float64()*2-1)*amp,
		Y: v.Y + (rng.Float64()*2-1)*amp,
		Z: v.Z + (rng.Float64()*2-1)*amp,
	}
}
