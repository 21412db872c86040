package ising

import (
	"errors"
	"fmt"
	"sort"
)

// ErrNoStates indicates an empty sample-count map.
var ErrNoStates = errors.New("ising: no sampled states")

// Energy evaluates the Ising Hamiltonian for a basis state given as bits
// (0 → spin −1, 1 → spin +1).
func (g *Graph) Energy(bits []int) (float64, error) {
	if len(bits) != g.n {
		return 0, fmt.Errorf("ising: state has %d bits, graph has %d nodes", len(bits), g.n)
	}

	spins := make([]float64, g.n)
	for i, b := range bits {
		if b == 0 {
			spins[i] = -1
		} else {
			spins[i] = 1
		}
	}

	e := 0.0
	for u := 0; u < g.n; u++ {
		e += g.nodeW[u] * spins[u]
	}
	for _, edge := range g.edges {
		e += edge.Weight * spins[edge.U] * spins[edge.V]
	}
	return e, nil
}

// MinEnergyState returns the sampled bitstring with the lowest Ising energy
// together with that energy. Keys are bitstrings ("0"/"1" per node, node 0
// first); counts only select which states are candidates. Ties resolve to
// the lexicographically smallest bitstring.
func (g *Graph) MinEnergyState(counts map[string]int) ([]int, float64, error) {
	if len(counts) == 0 {
		return nil, 0, ErrNoStates
	}

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var best []int
	bestEnergy := 0.0
	found := false
	for _, key := range keys {
		bits, err := parseBits(key, g.n)
		if err != nil {
			return nil, 0, err
		}
		e, err := g.Energy(bits)
		if err != nil {
			return nil, 0, err
		}
		if !found || e < bestEnergy {
			best, bestEnergy, found = bits, e, true
		}
	}
	return best, bestEnergy, nil
}

func parseBits(key string, n int) ([]int, error) {
	if len(key) != n {
		return nil, fmt.Errorf("ising: state %q has %d bits, graph has %d nodes", key, len(key), n)
	}
	bits := make([]int, n)
	for i, c := range key {
		switch c {
		case '0':
			bits[i] = 0
		case '1':
			bits[i] = 1
		default:
			return nil, fmt.Errorf("ising: state %q contains non-binary digit %q", key, c)
		}
	}
	return bits, nil
}
