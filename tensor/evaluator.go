// Package tensor evaluates the expectation value of a parameterized circuit
// over an Ising graph. For every graph element (node or edge) it builds a
// small circuit on the element's neighborhood, contracts it with the
// state-vector kernel to get a weighted local expectation, and sums the
// contributions — either serially or distributed over the worker pool.
package tensor

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/entanglab/qcut/ising"
	"github.com/entanglab/qcut/pool"
	"github.com/entanglab/qcut/simulate"
)

// Sentinel errors for evaluation.
var (
	// ErrParams indicates a parameter vector whose length is not 2p.
	ErrParams = errors.New("tensor: parameter vector must hold p gammas then p betas")

	// ErrNoHistory indicates a plot request before any evaluation ran.
	ErrNoHistory = errors.New("tensor: no expectation history yet")
)

// Evaluator computes total expectation values for an Ising graph.
//
// Per layer k the element circuit applies H (first layer only) and
// RZ(2·γ_k·w_u) to every node, RZZ(−γ_k·w_uv) to every edge, and RX(2·β_k)
// to every node. The element's contribution is ⟨Z⟩ or ⟨ZZ⟩ at the element,
// scaled by the element's weight.
type Evaluator struct {
	graph    *ising.Graph
	depth    int
	radius   int
	parallel bool
	workers  int
	log      zerolog.Logger

	mu      sync.Mutex
	history []float64
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithDepth sets the number of circuit layers p (default 1).
func WithDepth(p int) Option {
	return func(e *Evaluator) { e.depth = p }
}

// WithRadius sets the neighborhood radius in hops used for element
// subgraphs. Zero (the default) tracks the circuit depth.
func WithRadius(hops int) Option {
	return func(e *Evaluator) { e.radius = hops }
}

// WithParallel distributes element evaluations over a worker pool. A
// non-positive worker count sizes the pool from the CPU count.
func WithParallel(workers int) Option {
	return func(e *Evaluator) {
		e.parallel = true
		e.workers = workers
	}
}

// WithLogger overrides the default logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Evaluator) { e.log = logger }
}

// NewEvaluator creates an evaluator for the given Ising graph.
func NewEvaluator(g *ising.Graph, opts ...Option) *Evaluator {
	e := &Evaluator{
		graph: g,
		depth: 1,
		log:   log.With().Str("component", "tensor").Logger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.depth < 1 {
		e.depth = 1
	}
	return e
}

// Depth returns the number of circuit layers.
func (e *Evaluator) Depth() int { return e.depth }

// Expectation evaluates the total expectation for the parameter vector
// params = gammas‖betas of length 2p. The result is appended to the
// evaluator's history. Serial and parallel execution produce the same sum.
func (e *Evaluator) Expectation(ctx context.Context, params []float64) (float64, error) {
	if len(params) != 2*e.depth {
		return 0, fmt.Errorf("%w: got %d values for depth %d", ErrParams, len(params), e.depth)
	}
	gammas, betas := params[:e.depth], params[e.depth:]
	elements := e.graph.Elements()

	var (
		total float64
		err   error
	)
	if e.parallel {
		total, err = e.sumParallel(ctx, elements, gammas, betas)
	} else {
		total, err = e.sumSerial(ctx, elements, gammas, betas)
	}
	if err != nil {
		return 0, err
	}

	e.mu.Lock()
	e.history = append(e.history, total)
	e.mu.Unlock()

	e.log.Info().
		Float64("expectation", total).
		Int("elements", len(elements)).
		Bool("parallel", e.parallel).
		Msg("total expectation of original graph")
	return total, nil
}

// History returns the expectation value of each evaluation so far.
func (e *Evaluator) History() []float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]float64, len(e.history))
	copy(out, e.history)
	return out
}

func (e *Evaluator) sumSerial(ctx context.Context, elements []ising.Element, gammas, betas []float64) (float64, error) {
	total := 0.0
	for _, el := range elements {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		v, err := e.elementExpectation(el, gammas, betas)
		if err != nil {
			return 0, err
		}
		total += v
	}
	return total, nil
}

func (e *Evaluator) sumParallel(ctx context.Context, elements []ising.Element, gammas, betas []float64) (float64, error) {
	workers := e.workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(elements) {
		workers = len(elements)
	}

	p := pool.New(ctx, workers, nil)
	defer p.Close()

	results := make([]chan pool.Result, len(elements))
	for i, el := range elements {
		el := el
		results[i] = p.Schedule(el.String(), func() (float64, error) {
			return e.elementExpectation(el, gammas, betas)
		})
	}

	total := 0.0
	for i := range results {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case r, ok := <-results[i]:
			if !ok {
				if err := ctx.Err(); err != nil {
					return 0, err
				}
				return 0, fmt.Errorf("tensor: element %s: no result", elements[i])
			}
			if r.Error != nil {
				return 0, fmt.Errorf("tensor: element %s: %w", elements[i], r.Error)
			}
			total += r.Value
		}
	}
	return total, nil
}

// elementExpectation builds the circuit for one element's neighborhood and
// returns its weighted local expectation.
func (e *Evaluator) elementExpectation(el ising.Element, gammas, betas []float64) (float64, error) {
	hops := e.radius
	if hops <= 0 {
		hops = e.depth
	}
	sub := e.graph.Neighborhood(el, hops)

	qubitOf := make(map[int]int, len(sub.Nodes))
	for q, node := range sub.Nodes {
		qubitOf[node] = q
	}

	sv, err := simulate.New(len(sub.Nodes))
	if err != nil {
		return 0, fmt.Errorf("tensor: element %s: %w", el, err)
	}

	for k := 0; k < e.depth; k++ {
		for _, node := range sub.Nodes {
			q := qubitOf[node]
			if k == 0 {
				sv.H(q)
			}
			sv.RZ(q, 2*gammas[k]*e.graph.NodeWeight(node))
		}
		for _, edge := range sub.Edges {
			u, v := qubitOf[edge[0]], qubitOf[edge[1]]
			if u == v {
				continue
			}
			w, _ := e.graph.EdgeWeight(edge[0], edge[1])
			sv.RZZ(u, v, -gammas[k]*w)
		}
		for _, node := range sub.Nodes {
			sv.RX(qubitOf[node], 2*betas[k])
		}
	}

	if el.IsEdge {
		w, _ := e.graph.EdgeWeight(el.U, el.V)
		return sv.ExpectationZZ(qubitOf[el.U], qubitOf[el.V]) * w, nil
	}
	return sv.ExpectationZ(qubitOf[el.U]) * e.graph.NodeWeight(el.U), nil
}
