package simulate_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/okian/tactile/internal/adapters/http/api"
	"github.com/okian/tactile/internal/adapters/renderer"
	service "github.com/okian/tactile/internal/app"
	"github.com/okian/tactile/internal/domain/gesture"
	"github.com/okian/tactile/internal/domain/haptic"
	"github.com/okian/tactile/internal/domain/model"
	"github.com/okian/tactile/internal/domain/motion"
	"github.com/okian/tactile/internal/simulate"
	"github.com/okian/tactile/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// newStack serves the real engine behind the HTTP API with one mapping.
func newStack(t *testing.T, m model.Mapping) *httptest.Server {
	t.Helper()

	engine, err := service.NewEngine(renderer.NewLogRenderer(logger.Nop()), service.WithMappings(m))
	if err != nil {
		t.Fatal(err)
	}
	svc := service.New(engine, service.WithQueueSize(4096), service.WithAutoStart(true), service.WithLogger(logger.Nop()))
	if err := svc.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	mux := http.NewServeMux()
	api.NewServer(svc, svc).Register(context.Background(), mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(func() {
		srv.Close()
		svc.Stop()
	})
	return srv
}

func TestRunBuiltins(t *testing.T) {
	reg, err := simulate.NewRegistry()
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		scenario string
		mapping  model.Mapping
	}{
		{"shake", model.Mapping{Gesture: gesture.Shake(1.8), Effect: haptic.Tap(1, 0.5)}},
		{"twist", model.Mapping{Gesture: gesture.Twist(motion.AxisZ, 3), Effect: haptic.Buzz(0.6, 0.4, 80*time.Millisecond)}},
		{"tap", model.Mapping{Gesture: gesture.DeviceTap(2), Effect: haptic.Tap(0.8, 1)}},
		{"flip", model.Mapping{Gesture: gesture.FlipOver(), Effect: haptic.Tap(1, 1)}},
		{"idle", model.Mapping{Gesture: gesture.Shake(1.8), Effect: haptic.Tap(1, 0.5)}},
	}

	for _, tc := range cases {
		Convey("Given the "+tc.scenario+" scenario against a live service", t, func() {
			srv := newStack(t, tc.mapping)
			s, err := reg.Get(tc.scenario)
			So(err, ShouldBeNil)

			Convey("When it is replayed in batches", func() {
				report, err := simulate.Run(context.Background(), &simulate.Config{
					BaseURL:  srv.URL,
					Scenario: s,
					Batch:    16,
					Seed:     7,
					Settle:   2 * time.Second,
				})

				Convey("Then the service fires exactly the expected count", func() {
					So(err, ShouldBeNil)
					So(report.RunID, ShouldNotBeEmpty)
					So(report.Accepted, ShouldEqual, report.Samples)
					So(report.Rejected, ShouldEqual, 0)
					So(report.Fired, ShouldEqual, int64(s.Expect))
					So(report.Passed(), ShouldBeTrue)
				})
			})
		})
	}
}

func TestRunFailures(t *testing.T) {
	Convey("Given a service with no matching mapping", t, func() {
		srv := newStack(t, model.Mapping{Gesture: gesture.FlipOver(), Effect: haptic.Tap(1, 1)})
		reg, err := simulate.NewRegistry()
		So(err, ShouldBeNil)
		shake, err := reg.Get("shake")
		So(err, ShouldBeNil)

		Convey("Then the run reports a verification failure with its report", func() {
			report, err := simulate.Run(context.Background(), &simulate.Config{BaseURL: srv.URL, Scenario: shake, Batch: 32})
			So(errors.Is(err, simulate.ErrVerification), ShouldBeTrue)
			So(report, ShouldNotBeNil)
			So(report.Fired, ShouldEqual, int64(0))
			So(report.Passed(), ShouldBeFalse)
		})
	})

	Convey("Given an unhealthy service", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		Convey("Then the run stops at the health check", func() {
			_, err := simulate.Run(context.Background(), &simulate.Config{BaseURL: srv.URL, Scenario: &simulate.Scenario{Name: "x"}})
			So(errors.Is(err, simulate.ErrUnhealthy), ShouldBeTrue)
		})
	})

	Convey("Given a service that refuses samples", t, func() {
		mux := http.NewServeMux()
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {})
		mux.HandleFunc("/stats", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte(`{}`)) })
		mux.HandleFunc("/samples", func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "not started", http.StatusServiceUnavailable)
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		Convey("Then the run fails with ErrRejected", func() {
			s := &simulate.Scenario{Name: "x", Phases: []simulate.Phase{{Duration: "100ms"}}}
			_, err := simulate.Run(context.Background(), &simulate.Config{BaseURL: srv.URL, Scenario: s})
			So(errors.Is(err, simulate.ErrRejected), ShouldBeTrue)
		})
	})

	Convey("Given a service that records when samples arrive", t, func() {
		var (
			mu   sync.Mutex
			lead time.Duration
		)
		mux := http.NewServeMux()
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {})
		mux.HandleFunc("/stats", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte(`{}`)) })
		mux.HandleFunc("/samples", func(w http.ResponseWriter, r *http.Request) {
			received := time.Now()
			var batch []motion.Sample
			_ = json.NewDecoder(r.Body).Decode(&batch)
			mu.Lock()
			for _, s := range batch {
				lead = max(lead, s.Timestamp.Sub(received))
			}
			mu.Unlock()
			w.WriteHeader(http.StatusAccepted)
			_, _ = w.Write([]byte(fmt.Sprintf(`{"accepted":%d}`, len(batch))))
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		reg, err := simulate.NewRegistry()
		So(err, ShouldBeNil)
		shake, err := reg.Get("shake")
		So(err, ShouldBeNil)

		Convey("When a multi-second scenario is sent as fast as possible", func() {
			_, _ = simulate.Run(context.Background(), &simulate.Config{
				BaseURL:  srv.URL,
				Scenario: shake,
				Batch:    64,
				Settle:   10 * time.Millisecond,
			})

			Convey("Then no sample is stamped ahead of its arrival", func() {
				So(shake.Duration(), ShouldBeGreaterThan, 2*time.Second)
				mu.Lock()
				defer mu.Unlock()
				So(lead, ShouldEqual, time.Duration(0))
			})
		})
	})

	Convey("Given no scenario", t, func() {
		_, err := simulate.Run(context.Background(), &simulate.Config{})
		So(errors.Is(err, simulate.ErrInvalidScenario), ShouldBeTrue)
	})
}
