package ising

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"gonum.org/v1/gonum/mat"
)

func TestFromQUBO(t *testing.T) {
	Convey("Given the QUBO matrix of an unweighted two-node cut", t, func() {
		q := mat.NewDense(2, 2, []float64{
			-1, 1,
			1, -1,
		})

		Convey("The Ising matrix carries h on the diagonal and J/4 off it", func() {
			m, err := FromQUBO(q)
			So(err, ShouldBeNil)

			// h_i = q_ii/2 + rowsum − q_ii = −0.5 + 0 + 1 = 0.5
			So(m.At(0, 0), ShouldAlmostEqual, 0.5)
			So(m.At(1, 1), ShouldAlmostEqual, 0.5)
			So(m.At(0, 1), ShouldAlmostEqual, 0.25)
			So(m.At(1, 0), ShouldAlmostEqual, 0.25)
		})
	})

	Convey("Given a weighted triangle QUBO", t, func() {
		q := mat.NewDense(3, 3, []float64{
			-3, 1, 2,
			1, -4, 3,
			2, 3, -5,
		})

		Convey("Every off-diagonal entry is divided by four", func() {
			m, err := FromQUBO(q)
			So(err, ShouldBeNil)
			So(m.At(0, 1), ShouldAlmostEqual, 0.25)
			So(m.At(0, 2), ShouldAlmostEqual, 0.5)
			So(m.At(1, 2), ShouldAlmostEqual, 0.75)
		})

		Convey("The diagonal mixes the halved entry with the row sum", func() {
			m, err := FromQUBO(q)
			So(err, ShouldBeNil)
			// q_00/2 + (q_00+q_01+q_02) − q_00 = −1.5 + 0 + 3 = 1.5
			So(m.At(0, 0), ShouldAlmostEqual, 1.5)
			// −2 + 0 + 4 = 2
			So(m.At(1, 1), ShouldAlmostEqual, 2)
			// −2.5 + 0 + 5 = 2.5
			So(m.At(2, 2), ShouldAlmostEqual, 2.5)
		})
	})

	Convey("Given a non-square matrix", t, func() {
		q := mat.NewDense(2, 3, nil)

		Convey("Conversion is rejected", func() {
			_, err := FromQUBO(q)
			So(err, ShouldWrap, ErrNotSquare)
		})
	})
}
