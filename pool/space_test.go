package pool

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	. "github.com/smartystreets/goconvey/convey"
)

func TestResultSpace(t *testing.T) {
	Convey("Given a result space", t, func() {
		rs := NewResultSpace(zerolog.Nop())
		defer rs.Close()

		Convey("Awaiting before Store delivers once the value arrives", func() {
			ch := rs.Await("pending")
			So(rs.Exists("pending"), ShouldBeFalse)

			rs.Store("pending", 1.5, nil, 0)

			select {
			case r := <-ch:
				So(r.Error, ShouldBeNil)
				So(r.Value, ShouldAlmostEqual, 1.5)
			case <-time.After(time.Second):
				t.Fatal("waiter was not notified")
			}
			So(rs.Exists("pending"), ShouldBeTrue)
		})

		Convey("Awaiting after Store resolves immediately", func() {
			rs.Store("ready", 2.5, nil, 0)

			r := <-rs.Await("ready")
			So(r.Value, ShouldAlmostEqual, 2.5)
		})

		Convey("Every waiter on the same ID gets the result", func() {
			first := rs.Await("shared")
			second := rs.Await("shared")
			rs.Store("shared", 3, nil, 0)

			So((<-first).Value, ShouldAlmostEqual, 3)
			So((<-second).Value, ShouldAlmostEqual, 3)
		})

		Convey("Expired results are dropped by cleanup", func() {
			rs.Store("ephemeral", 4, nil, time.Nanosecond)
			rs.Store("durable", 5, nil, 0)
			time.Sleep(time.Millisecond)

			rs.mu.Lock()
			rs.cleanupExpired()
			rs.mu.Unlock()

			So(rs.Exists("ephemeral"), ShouldBeFalse)
			So(rs.Exists("durable"), ShouldBeTrue)
		})
	})
}
