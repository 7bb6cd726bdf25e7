package simulate

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestRegistry(t *testing.T) {
	Convey("Given the built-in registry", t, func() {
		r, err := NewRegistry()
		So(err, ShouldBeNil)

		Convey("Then every built-in scenario is listed in name order", func() {
			names := make([]string, 0)
			for _, s := range r.List() {
				names = append(names, s.Name)
			}
			So(names, ShouldResemble, []string{"flip", "idle", "shake", "tap", "twist"})
		})

		Convey("Then scenarios carry their expectations", func() {
			s, err := r.Get("shake")
			So(err, ShouldBeNil)
			So(s.Expect, ShouldEqual, 3)
			So(s.Phases[1].Sample.Acceleration.X, ShouldEqual, 2.5)

			flip, err := r.Get("flip")
			So(err, ShouldBeNil)
			So(flip.Phases[1].Sample.Attitude.Pitch, ShouldEqual, 3.0)
		})

		Convey("When asking for an unknown scenario", func() {
			_, err := r.Get("wave")
			So(errors.Is(err, ErrUnknownScenario), ShouldBeTrue)
		})

		Convey("When loading a scenario file", func() {
			path := filepath.Join(t.TempDir(), "custom.yaml")
			So(os.WriteFile(path, []byte(`
name: custom
expect: 1
phases:
  - duration: 100ms
    sample:
      rotation_rate: {x: 5, y: 0, z: 0}
`), 0o600), ShouldBeNil)

			s, err := r.LoadFile(path)

			Convey("Then it is parsed and registered", func() {
				So(err, ShouldBeNil)
				So(s.Phases[0].Sample.RotationRate.X, ShouldEqual, 5)
				got, err := r.Get("custom")
				So(err, ShouldBeNil)
				So(got, ShouldEqual, s)
			})
		})

		Convey("When loading an invalid file", func() {
			path := filepath.Join(t.TempDir(), "bad.yaml")
			So(os.WriteFile(path, []byte("name: bad\nphases: []\n"), 0o600), ShouldBeNil)
			_, err := r.LoadFile(path)
			So(errors.Is(err, ErrInvalidScenario), ShouldBeTrue)

			_, err = r.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Given YAML that is not a scenario", t, func() {
		_, err := Parse([]byte("phases: {"))
		So(errors.Is(err, ErrInvalidScenario), ShouldBeTrue)
	})
}
