package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	service "github.com/okian/tactile/internal/app"
	"github.com/okian/tactile/internal/domain/gesture"
	"github.com/okian/tactile/internal/domain/model"
	"github.com/okian/tactile/internal/domain/motion"
	"github.com/okian/tactile/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a service with auto start", t, func() {
		r := &fakeRenderer{}
		e := newEngine(r, service.WithMappings(model.Mapping{Gesture: gesture.Shake(1), Effect: effectA}))
		svc := service.New(e, service.WithAutoStart(true), service.WithQueueSize(8), service.WithLogger(logger.Nop()))
		defer svc.Stop()

		ctx := context.Background()

		Convey("When enqueueing before start", func() {
			err := svc.Submit(ctx, accel(2, 0))

			Convey("Then the sample is rejected", func() {
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
				So(svc.Enqueue(ctx, accel(2, 0)), ShouldBeFalse)
			})
		})

		Convey("When started", func() {
			So(svc.Start(ctx), ShouldBeNil)
			So(svc.Start(ctx), ShouldBeNil)

			Convey("Then the engine runs and the renderer is prepared once", func() {
				So(svc.EngineState(ctx), ShouldEqual, service.StateRunning)
				So(svc.EngineStatus(ctx), ShouldEqual, "running")
				So(r.prepares, ShouldEqual, 1)
				stats := svc.GetStats()
				So(stats["started"], ShouldBeTrue)
				So(stats["queueSize"], ShouldEqual, 8)
			})

			Convey("And a matching sample is enqueued", func() {
				So(svc.Enqueue(ctx, accel(2, 0)), ShouldBeTrue)

				Convey("Then the worker dispatches it", func() {
					So(waitFor(func() bool { return len(r.plays()) == 1 }), ShouldBeTrue)
				})
			})

			Convey("And the engine is stopped through the service", func() {
				svc.StopEngine(ctx)
				So(svc.Enqueue(ctx, accel(2, 0)), ShouldBeTrue)

				Convey("Then queued samples are no-ops", func() {
					So(waitFor(func() bool { return svc.GetStats()["queueLength"] == 0 }), ShouldBeTrue)
					So(r.plays(), ShouldBeEmpty)
				})

				Convey("And it can be started again", func() {
					So(svc.StartEngine(ctx), ShouldBeNil)
					So(svc.EngineState(ctx), ShouldEqual, service.StateRunning)
				})
			})

			Convey("And the service is stopped", func() {
				svc.Stop()

				Convey("Then the renderer is shut down and samples are refused", func() {
					So(r.shutdowns, ShouldEqual, 1)
					So(svc.EngineState(ctx), ShouldEqual, service.StateStopped)
					So(svc.Enqueue(ctx, accel(2, 0)), ShouldBeFalse)
				})
			})
		})
	})

	Convey("Given a service whose renderer cannot prepare", t, func() {
		r := &fakeRenderer{prepareErr: errors.New("unsupported")}
		svc := service.New(newEngine(r), service.WithAutoStart(true), service.WithLogger(logger.Nop()))
		defer svc.Stop()

		Convey("When started", func() {
			err := svc.Start(context.Background())

			Convey("Then the engine error is returned but the pipeline runs", func() {
				So(errors.Is(err, service.ErrEngineUnavailable), ShouldBeTrue)
				So(svc.GetStats()["started"], ShouldBeTrue)
				So(svc.EngineState(context.Background()), ShouldEqual, service.StateStopped)
			})
		})
	})
}

func TestService_Mappings(t *testing.T) {
	Convey("Given a service", t, func() {
		svc := service.New(newEngine(&fakeRenderer{}), service.WithLogger(logger.Nop()))
		ctx := context.Background()

		Convey("When mappings are registered", func() {
			So(svc.RegisterMapping(ctx, gesture.Twist(motion.AxisY, 2), effectB), ShouldBeNil)
			err := svc.RegisterMapping(ctx, gesture.DeviceTap(-0.1), effectA)

			Convey("Then valid ones are listed and invalid ones rejected", func() {
				So(errors.Is(err, service.ErrConfiguration), ShouldBeTrue)
				ms := svc.Mappings(ctx)
				So(len(ms), ShouldEqual, 1)
				So(ms[0].Gesture, ShouldResemble, gesture.Twist(motion.AxisY, 2))
			})
		})

		Convey("When a mapping is added after another", func() {
			So(svc.RegisterMapping(ctx, gesture.Shake(1.5), effectA), ShouldBeNil)
			idx, err := svc.AddMapping(ctx, gesture.FlipOver(), effectB)

			Convey("Then its position is returned", func() {
				So(err, ShouldBeNil)
				So(idx, ShouldEqual, 1)
				So(svc.Mappings(ctx)[idx].Gesture, ShouldResemble, gesture.FlipOver())
			})
		})
	})
}
