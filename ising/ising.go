// Package ising converts QUBO formulations into Ising form and exposes the
// resulting weighted graph model the circuit evaluator consumes.
package ising

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ErrNotSquare indicates a QUBO/Ising matrix with mismatched dimensions.
var ErrNotSquare = errors.New("ising: matrix is not square")

// FromQUBO calculates the Ising matrix for the Q matrix of a problem.
//
// The diagonal carries the local fields h_i = q_ii/2 + Σ_j q_ij − q_ii and
// the off-diagonal entries carry the couplings J_ij = q_ij/4.
func FromQUBO(q *mat.Dense) (*mat.Dense, error) {
	rows, cols := q.Dims()
	if rows != cols {
		return nil, fmt.Errorf("%w: %dx%d", ErrNotSquare, rows, cols)
	}

	out := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		rowSum := 0.0
		for j := 0; j < cols; j++ {
			rowSum += q.At(i, j)
		}
		for j := 0; j < cols; j++ {
			if i == j {
				out.Set(i, i, q.At(i, i)/2.0+rowSum-q.At(i, i))
			} else {
				out.Set(i, j, q.At(i, j)/4.0)
			}
		}
	}

	return out, nil
}
