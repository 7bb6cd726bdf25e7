package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/tactile/internal/config"
	"github.com/okian/tactile/internal/domain/gesture"
	"github.com/okian/tactile/internal/domain/haptic"
	"github.com/okian/tactile/internal/domain/types"
	"github.com/okian/tactile/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func testConfig() *config.Config {
	cfg := config.New()
	cfg.Mappings = []config.MappingConfig{
		{
			Gesture: gesture.Definition{Type: "shake", Threshold: 1.8},
			Effect:  haptic.Definition{Type: "tap", Intensity: 1, Sharpness: 0.5},
		},
		{
			Gesture: gesture.Definition{Type: "flip"},
			Effect:  haptic.Definition{Type: "buzz", Intensity: 0.7, Sharpness: 0.3, DurationMS: 120},
		},
	}
	return cfg
}

func serve(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestBuild(t *testing.T) {
	convey.Convey("Given the default configuration with two mappings", t, func() {
		ctx := context.Background()
		a, err := build(ctx, testConfig(), logger.Nop())
		convey.So(err, convey.ShouldBeNil)
		convey.So(a.source, convey.ShouldBeNil)

		convey.Convey("When the application starts", func() {
			convey.So(a.start(ctx), convey.ShouldBeNil)
			defer a.stop()

			convey.Convey("Then the configured mappings are served in order", func() {
				rec := serve(a.handler, http.MethodGet, "/mappings", "")
				convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
				var entries []types.MappingEntry
				convey.So(json.Unmarshal(rec.Body.Bytes(), &entries), convey.ShouldBeNil)
				convey.So(entries, convey.ShouldHaveLength, 2)
				convey.So(entries[0].Gesture.Type, convey.ShouldEqual, "shake")
				convey.So(entries[1].Effect.DurationMS, convey.ShouldEqual, 120)
			})

			convey.Convey("Then the engine is running", func() {
				rec := serve(a.handler, http.MethodGet, "/engine", "")
				convey.So(rec.Body.String(), convey.ShouldContainSubstring, `"running"`)
			})

			convey.Convey("Then every surface is mounted", func() {
				convey.So(serve(a.handler, http.MethodGet, "/healthz", "").Code, convey.ShouldEqual, http.StatusOK)
				convey.So(serve(a.handler, http.MethodGet, "/stats", "").Code, convey.ShouldEqual, http.StatusOK)
				convey.So(serve(a.handler, http.MethodGet, "/api-docs", "").Code, convey.ShouldEqual, http.StatusOK)
				convey.So(serve(a.handler, http.MethodGet, "/openapi.yaml", "").Code, convey.ShouldEqual, http.StatusOK)
				convey.So(serve(a.handler, http.MethodGet, "/", "").Code, convey.ShouldEqual, http.StatusOK)
			})

			convey.Convey("Then the log renderer exposes no haptic stream", func() {
				convey.So(serve(a.handler, http.MethodGet, "/haptics/ws", "").Code, convey.ShouldEqual, http.StatusNotFound)
			})

			convey.Convey("Then samples are accepted", func() {
				rec := serve(a.handler, http.MethodPost, "/samples", `{"acceleration":{"x":2,"y":0,"z":0}}`)
				convey.So(rec.Code, convey.ShouldEqual, http.StatusAccepted)
			})
		})
	})

	convey.Convey("Given the websocket renderer", t, func() {
		cfg := testConfig()
		cfg.Haptic.Renderer = config.RendererWebSocket
		a, err := build(context.Background(), cfg, logger.Nop())
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("Then /haptics/ws is mounted and refuses clients until the engine starts", func() {
			rec := serve(a.handler, http.MethodGet, "/haptics/ws", "")
			convey.So(rec.Code, convey.ShouldEqual, http.StatusServiceUnavailable)
		})
	})

	convey.Convey("Given log and websocket renderers together", t, func() {
		cfg := testConfig()
		cfg.Haptic.Renderer = "log,websocket"
		a, err := build(context.Background(), cfg, logger.Nop())
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("Then the websocket stream inside the fanout is mounted", func() {
			rec := serve(a.handler, http.MethodGet, "/haptics/ws", "")
			convey.So(rec.Code, convey.ShouldEqual, http.StatusServiceUnavailable)
		})
	})

	convey.Convey("Given the MQTT sensor is enabled", t, func() {
		cfg := testConfig()
		cfg.Sensor.Enabled = true
		a, err := build(context.Background(), cfg, logger.Nop())

		convey.Convey("Then a source is built but not started", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(a.source, convey.ShouldNotBeNil)
		})
	})

	convey.Convey("Given an invalid mapping", t, func() {
		cfg := testConfig()
		cfg.Mappings[0].Effect.Intensity = 3

		convey.Convey("Then build fails", func() {
			_, err := build(context.Background(), cfg, logger.Nop())
			convey.So(err, convey.ShouldNotBeNil)
		})
	})

	convey.Convey("Given an unknown renderer", t, func() {
		cfg := testConfig()
		cfg.Haptic.Renderer = "piezo"

		convey.Convey("Then build fails", func() {
			_, err := build(context.Background(), cfg, logger.Nop())
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestMetricsUpdaters(t *testing.T) {
	convey.Convey("Given a built application", t, func() {
		a, err := build(context.Background(), testConfig(), logger.Nop())
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("Then the updaters run without panicking", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
			convey.So(func() { updateServiceMetrics(a.svc) }, convey.ShouldNotPanic)
		})

		convey.Convey("Then the background loops exit with their context", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			convey.So(func() {
				startSystemMetricsUpdater(ctx)
				startServiceMetricsUpdater(ctx, a.svc)
			}, convey.ShouldNotPanic)
		})
	})
}
