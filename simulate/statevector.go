// Package simulate holds the dense state-vector kernel the circuit
// evaluator contracts its per-element circuits with. It covers exactly the
// gate set those circuits need (H, X, RX, RZ, RZZ) plus local Pauli-Z
// expectations; everything else stays out on purpose.
package simulate

import (
	"fmt"
	"math"
	"math/cmplx"
)

// MaxQubits bounds the register size; 2^26 amplitudes is already a gigabyte.
const MaxQubits = 26

// StateVector is a dense 2^n amplitude vector over n qubits, initialized to
// the all-zeros basis state. Qubit q maps to bit q of the basis index.
type StateVector struct {
	amps []complex128
	n    int
}

// New creates a state vector for n qubits in |0...0⟩.
func New(n int) (*StateVector, error) {
	if n < 1 || n > MaxQubits {
		return nil, fmt.Errorf("simulate: qubit count %d outside [1, %d]", n, MaxQubits)
	}
	amps := make([]complex128, 1<<n)
	amps[0] = 1
	return &StateVector{amps: amps, n: n}, nil
}

// NumQubits returns the register size.
func (s *StateVector) NumQubits() int { return s.n }

// Amplitude returns the amplitude of basis state i.
func (s *StateVector) Amplitude(i int) complex128 { return s.amps[i] }

// H applies a Hadamard gate to qubit q.
func (s *StateVector) H(q int) {
	factor := complex(1.0/math.Sqrt2, 0)
	bit := 1 << q
	for i := range s.amps {
		if i&bit == 0 {
			j := i | bit
			a, b := s.amps[i], s.amps[j]
			s.amps[i] = factor * (a + b)
			s.amps[j] = factor * (a - b)
		}
	}
}

// X applies a Pauli-X gate to qubit q.
func (s *StateVector) X(q int) {
	bit := 1 << q
	for i := range s.amps {
		if i&bit == 0 {
			j := i | bit
			s.amps[i], s.amps[j] = s.amps[j], s.amps[i]
		}
	}
}

// RX applies exp(−iθX/2) to qubit q.
func (s *StateVector) RX(q int, theta float64) {
	c := complex(math.Cos(theta/2), 0)
	js := complex(0, -math.Sin(theta/2))
	bit := 1 << q
	for i := range s.amps {
		if i&bit == 0 {
			j := i | bit
			a, b := s.amps[i], s.amps[j]
			s.amps[i] = c*a + js*b
			s.amps[j] = js*a + c*b
		}
	}
}

// RZ applies exp(−iθZ/2) to qubit q.
func (s *StateVector) RZ(q int, theta float64) {
	phase := cmplx.Exp(complex(0, theta/2))
	bit := 1 << q
	for i := range s.amps {
		if i&bit != 0 {
			s.amps[i] *= phase
		} else {
			s.amps[i] *= cmplx.Conj(phase)
		}
	}
}

// RZZ applies exp(−iθ(Z⊗Z)/2) to qubits u and v.
func (s *StateVector) RZZ(u, v int, theta float64) {
	phase := cmplx.Exp(complex(0, theta/2))
	conj := cmplx.Conj(phase)
	uBit, vBit := 1<<u, 1<<v
	for i := range s.amps {
		if (i&uBit != 0) == (i&vBit != 0) {
			s.amps[i] *= conj
		} else {
			s.amps[i] *= phase
		}
	}
}

// Probabilities returns |amp|² per basis state.
func (s *StateVector) Probabilities() []float64 {
	probs := make([]float64, len(s.amps))
	for i, a := range s.amps {
		probs[i] = real(a * cmplx.Conj(a))
	}
	return probs
}

// Norm returns the 2-norm of the state; 1 up to rounding for any sequence
// of supported gates.
func (s *StateVector) Norm() float64 {
	sum := 0.0
	for _, a := range s.amps {
		sum += real(a * cmplx.Conj(a))
	}
	return math.Sqrt(sum)
}

// ExpectationZ returns ⟨Z_q⟩.
func (s *StateVector) ExpectationZ(q int) float64 {
	bit := 1 << q
	exp := 0.0
	for i, a := range s.amps {
		p := real(a * cmplx.Conj(a))
		if i&bit == 0 {
			exp += p
		} else {
			exp -= p
		}
	}
	return exp
}

// ExpectationZZ returns ⟨Z_u Z_v⟩.
func (s *StateVector) ExpectationZZ(u, v int) float64 {
	uBit, vBit := 1<<u, 1<<v
	exp := 0.0
	for i, a := range s.amps {
		p := real(a * cmplx.Conj(a))
		if (i&uBit != 0) == (i&vBit != 0) {
			exp += p
		} else {
			exp -= p
		}
	}
	return exp
}
