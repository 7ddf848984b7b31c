package repository

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/ringside/internal/domain/scope"
	"github.com/okian/ringside/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

const sampleFixture = `
coaches:
  - id: c1
    role: admin
athletes:
  - id: a1
    coach_id: c1
    name: Alex
    gender: male
    date_of_birth: 2001-05-04
events:
  - id: e1
    athlete_id: a1
    event_date: 2024-01-02
    metrics:
      test_type: CMJ
      height_cm: 45.5
      body_mass_kg: 72
sessions:
  - id: t1
    athlete_id: a1
    session_date: 2024-01-03
    training_type: conditioning
    duration_minutes: 60
    rpe: 7
    srpe: 400
`

func TestFixture(t *testing.T) {
	Convey("Given a YAML fixture", t, func() {
		f, err := ReadFixture(strings.NewReader(sampleFixture))
		So(err, ShouldBeNil)

		Convey("Then every section should decode", func() {
			So(len(f.Coaches), ShouldEqual, 1)
			So(f.Coaches[0].Role, ShouldEqual, types.RoleAdmin)
			So(f.Athletes[0].DateOfBirth, ShouldNotBeNil)
			So(f.Athletes[0].DateOfBirth.Year(), ShouldEqual, 2001)
			So(f.Events[0].EventDate.Format("2006-01-02"), ShouldEqual, "2024-01-02")
			v, ok := f.Events[0].Metrics.Lookup("height_cm")
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, 45.5)
			m, ok := f.Events[0].BodyMass()
			So(ok, ShouldBeTrue)
			So(m, ShouldEqual, 72)
			So(*f.Sessions[0].SRPE, ShouldEqual, 400)
			So(f.Sessions[0].Load(), ShouldEqual, 400)
		})

		Convey("Then it should load into a memory store", func() {
			s := NewMemStore()
			So(s.Load(f), ShouldBeNil)
			events, err := s.ListPopulation(context.Background(), scope.Filter{Source: scope.SourceHouse})
			So(err, ShouldBeNil)
			So(len(events), ShouldEqual, 1)
			So(events[0].Gender, ShouldEqual, types.GenderMale)
		})

		Convey("Then it should survive a write and read back", func() {
			var buf bytes.Buffer
			So(WriteFixture(&buf, f), ShouldBeNil)
			back, err := ReadFixture(&buf)
			So(err, ShouldBeNil)
			So(back.Events[0].ID, ShouldEqual, "e1")
			So(back.Events[0].EventDate.Equal(f.Events[0].EventDate), ShouldBeTrue)
			So(back.Events[0].Metrics.Has("height_cm"), ShouldBeTrue)
		})
	})

	Convey("Given malformed input", t, func() {
		_, err := ReadFixture(strings.NewReader("coaches: [\n"))
		So(err, ShouldNotBeNil)

		_, err = ReadFixture(strings.NewReader("unknown_section: []\n"))
		So(err, ShouldNotBeNil)

		f, err := ReadFixture(strings.NewReader(""))
		So(err, ShouldBeNil)
		So(f.Coaches, ShouldBeEmpty)
	})

	Convey("Given a fixture file", t, func() {
		path := filepath.Join(t.TempDir(), "fixture.yaml")
		So(os.WriteFile(path, []byte(sampleFixture), 0o600), ShouldBeNil)
		f, err := LoadFixture(path)
		So(err, ShouldBeNil)
		So(len(f.Athletes), ShouldEqual, 1)

		_, err = LoadFixture(filepath.Join(t.TempDir(), "missing.yaml"))
		So(err, ShouldNotBeNil)
	})
}
