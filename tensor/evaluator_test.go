package tensor

import (
	"context"
	"math"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"gonum.org/v1/gonum/mat"

	"github.com/entanglab/qcut/ising"
)

func isingGraph(n int, data []float64) *ising.Graph {
	g, err := ising.NewGraph(mat.NewDense(n, n, data))
	if err != nil {
		panic(err)
	}
	return g
}

func TestExpectation(t *testing.T) {
	Convey("Given a single coupled pair without local fields", t, func() {
		w := 0.25
		g := isingGraph(2, []float64{
			0, w,
			w, 0,
		})
		e := NewEvaluator(g)

		Convey("Zero angles leave every local expectation at zero", func() {
			v, err := e.Expectation(context.Background(), []float64{0, 0})
			So(err, ShouldBeNil)
			So(v, ShouldAlmostEqual, 0.0)
		})

		Convey("One layer matches the closed form −w·sin(4β)·sin(γw)", func() {
			gamma, beta := 0.7, 0.3
			v, err := e.Expectation(context.Background(), []float64{gamma, beta})
			So(err, ShouldBeNil)
			So(v, ShouldAlmostEqual, -w*math.Sin(4*beta)*math.Sin(gamma*w), 1e-10)
		})

		Convey("Evaluations are deterministic", func() {
			params := []float64{0.4, 0.9}
			v1, err := e.Expectation(context.Background(), params)
			So(err, ShouldBeNil)
			v2, err := e.Expectation(context.Background(), params)
			So(err, ShouldBeNil)
			So(v1, ShouldEqual, v2)
		})

		Convey("Each evaluation appends to the history", func() {
			So(e.History(), ShouldBeEmpty)
			_, err := e.Expectation(context.Background(), []float64{0.1, 0.2})
			So(err, ShouldBeNil)
			_, err = e.Expectation(context.Background(), []float64{0.3, 0.4})
			So(err, ShouldBeNil)
			So(e.History(), ShouldHaveLength, 2)
		})
	})

	Convey("Given a parameter vector of the wrong length", t, func() {
		g := isingGraph(2, []float64{0, 1, 1, 0})

		Convey("Depth 1 wants exactly two values", func() {
			e := NewEvaluator(g)
			_, err := e.Expectation(context.Background(), []float64{0.1})
			So(err, ShouldWrap, ErrParams)
		})

		Convey("Depth 2 wants exactly four values", func() {
			e := NewEvaluator(g, WithDepth(2))
			So(e.Depth(), ShouldEqual, 2)
			_, err := e.Expectation(context.Background(), []float64{0.1, 0.2})
			So(err, ShouldWrap, ErrParams)
		})
	})

	Convey("Given a cancelled context", t, func() {
		g := isingGraph(2, []float64{0, 1, 1, 0})
		e := NewEvaluator(g)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		Convey("Evaluation stops early", func() {
			_, err := e.Expectation(ctx, []float64{0.1, 0.2})
			So(err, ShouldWrap, context.Canceled)
		})
	})
}

func TestExpectationParallel(t *testing.T) {
	Convey("Given a path graph with local fields", t, func() {
		data := []float64{
			0.5, 1, 0, 0,
			1, 0.5, 1, 0,
			0, 1, 0.5, 1,
			0, 0, 1, 0.5,
		}
		params := []float64{0.35, 0.6, 0.8, 0.15}

		Convey("Serial and pooled evaluation agree", func() {
			serial := NewEvaluator(isingGraph(4, data), WithDepth(2))
			want, err := serial.Expectation(context.Background(), params)
			So(err, ShouldBeNil)

			pooled := NewEvaluator(isingGraph(4, data), WithDepth(2), WithParallel(3))
			got, err := pooled.Expectation(context.Background(), params)
			So(err, ShouldBeNil)
			So(got, ShouldAlmostEqual, want, 1e-10)
		})

		Convey("A cancelled context stops the pooled evaluation promptly", func() {
			e := NewEvaluator(isingGraph(4, data), WithDepth(2), WithParallel(2))
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			done := make(chan error, 1)
			go func() {
				_, err := e.Expectation(ctx, params)
				done <- err
			}()

			select {
			case err := <-done:
				So(err, ShouldWrap, context.Canceled)
			case <-time.After(2 * time.Second):
				t.Fatal("pooled evaluation hung on a cancelled context")
			}
		})

		Convey("A narrow radius changes the neighborhoods but still sums cleanly", func() {
			e := NewEvaluator(isingGraph(4, data), WithDepth(2), WithRadius(1))
			v, err := e.Expectation(context.Background(), params)
			So(err, ShouldBeNil)
			So(math.IsNaN(v), ShouldBeFalse)
			So(e.History(), ShouldHaveLength, 1)
		})
	})
}

func TestSavePlot(t *testing.T) {
	Convey("Given an evaluator without history", t, func() {
		g := isingGraph(2, []float64{0, 1, 1, 0})
		e := NewEvaluator(g)

		Convey("Plotting is refused", func() {
			So(e.SavePlot("unused.png"), ShouldWrap, ErrNoHistory)
		})
	})

	Convey("Given an evaluator with history", t, func() {
		g := isingGraph(2, []float64{0, 1, 1, 0})
		e := NewEvaluator(g)
		_, err := e.Expectation(context.Background(), []float64{0.2, 0.4})
		So(err, ShouldBeNil)

		Convey("The plot lands at the requested path", func() {
			path := t.TempDir() + "/history.png"
			So(e.SavePlot(path), ShouldBeNil)
		})
	})
}
