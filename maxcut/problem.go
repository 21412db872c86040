// Package maxcut formulates the weighted Max-Cut problem: divide the vertex
// set of a graph into two sets so that the total weight of edges crossing
// the cut is as large as possible. The wrapper generates random regular
// instances, derives the QUBO matrix, and reduces it to an Ising graph for
// the circuit evaluator.
package maxcut

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/katalvlaran/lvlath/builder"
	"github.com/katalvlaran/lvlath/core"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/entanglab/qcut/ising"
)

// Sentinel errors for problem construction.
var (
	// ErrNoInstance indicates neither a graph nor a node count was provided.
	ErrNoInstance = errors.New("maxcut: need a graph or a positive node count")

	// ErrParity indicates nodes*degree is odd, which admits no regular graph.
	ErrParity = errors.New("maxcut: nodes*degree must be even")

	// ErrDimension indicates an assignment vector of the wrong length.
	ErrDimension = errors.New("maxcut: assignment length does not match node count")
)

const (
	defaultDegree      = 3
	defaultWeightRange = 10
	maxAutoSeed        = 10598
)

type config struct {
	graph       *core.Graph
	nodes       int
	degree      int
	weightRange int64
	seed        int64
	seeded      bool
}

// Option configures problem construction.
type Option func(*config)

// WithGraph wraps an existing undirected weighted graph instead of
// generating one.
func WithGraph(g *core.Graph) Option {
	return func(c *config) { c.graph = g }
}

// WithNodes sets the node count for random instance generation.
func WithNodes(n int) Option {
	return func(c *config) { c.nodes = n }
}

// WithDegree sets the regular degree of generated instances (default 3).
func WithDegree(d int) Option {
	return func(c *config) { c.degree = d }
}

// WithWeightRange draws edge weights uniformly from [1, w] (default 10).
func WithWeightRange(w int64) Option {
	return func(c *config) { c.weightRange = w }
}

// WithSeed freezes the RNG for reproducible instances.
func WithSeed(seed int64) Option {
	return func(c *config) {
		c.seed = seed
		c.seeded = true
	}
}

// Problem wraps a Max-Cut instance over an undirected weighted graph.
type Problem struct {
	graph *core.Graph
	n     int
	index map[string]int
	qubo  *mat.Dense
}

// New builds a problem from the given options. Without WithGraph a random
// d-regular weighted graph is generated; the seed is randomized unless
// WithSeed was given, mirroring how instances are usually sampled.
func New(opts ...Option) (*Problem, error) {
	cfg := config{
		degree:      defaultDegree,
		weightRange: defaultWeightRange,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	p := &Problem{}
	if cfg.graph != nil {
		p.graph = cfg.graph
	} else {
		if cfg.nodes <= 0 {
			return nil, ErrNoInstance
		}
		if (cfg.nodes*cfg.degree)%2 != 0 {
			return nil, fmt.Errorf("%w: nodes=%d degree=%d", ErrParity, cfg.nodes, cfg.degree)
		}
		if !cfg.seeded {
			cfg.seed = 1 + rand.Int63n(maxAutoSeed)
		}
		g, err := randomRegular(cfg)
		if err != nil {
			return nil, err
		}
		p.graph = g
	}

	p.reindex()
	return p, nil
}

// Regenerate replaces the instance with a fresh random regular graph.
func (p *Problem) Regenerate(nodes, degree int, weightRange, seed int64) error {
	if (nodes*degree)%2 != 0 {
		return fmt.Errorf("%w: nodes=%d degree=%d", ErrParity, nodes, degree)
	}
	g, err := randomRegular(config{
		nodes:       nodes,
		degree:      degree,
		weightRange: weightRange,
		seed:        seed,
	})
	if err != nil {
		return err
	}

	p.graph = g
	p.qubo = nil
	p.reindex()
	return nil
}

func randomRegular(cfg config) (*core.Graph, error) {
	weightFn := func(rng *rand.Rand) float64 {
		if rng == nil || cfg.weightRange <= 1 {
			return 1
		}
		return float64(1 + rng.Int63n(cfg.weightRange))
	}

	g, err := builder.BuildGraph(
		[]core.GraphOption{core.WithWeighted()},
		[]builder.Option{
			builder.WithSeed(cfg.seed),
			builder.WithWeightFn(weightFn),
		},
		builder.RandomRegular(cfg.nodes, cfg.degree),
	)
	if err != nil {
		return nil, fmt.Errorf("maxcut: random regular graph: %w", err)
	}
	return g, nil
}

func (p *Problem) reindex() {
	ids := p.graph.Vertices()
	p.n = len(ids)
	p.index = make(map[string]int, p.n)
	for i, id := range ids {
		p.index[id] = i
	}
}

// NumNodes returns the instance size.
func (p *Problem) NumNodes() int { return p.n }

// Graph returns the underlying lvlath graph.
func (p *Problem) Graph() *core.Graph { return p.graph }

// Adjacency returns the dense weighted adjacency matrix, rows/columns in
// sorted vertex-ID order.
func (p *Problem) Adjacency() *mat.Dense {
	adj := mat.NewDense(p.n, p.n, nil)
	for _, e := range p.graph.Edges() {
		i, j := p.index[e.From], p.index[e.To]
		w := float64(e.Weight)
		adj.Set(i, j, w)
		adj.Set(j, i, w)
	}
	return adj
}

// QUBO returns the Q matrix of the QUBO model: the adjacency matrix with
// each diagonal entry replaced by minus the off-diagonal row sum.
func (p *Problem) QUBO() *mat.Dense {
	if p.qubo != nil {
		return p.qubo
	}

	q := p.Adjacency()
	for i := 0; i < p.n; i++ {
		rowSum := 0.0
		for j := 0; j < p.n; j++ {
			rowSum += q.At(i, j)
		}
		q.Set(i, i, -(rowSum - q.At(i, i)))
	}

	p.qubo = q
	return p.qubo
}

// CutValue computes the value of a cut for a binary assignment x, as
// Σ_ij w_ij · x_i · (1 − x_j).
func (p *Problem) CutValue(x []float64) (float64, error) {
	if len(x) != p.n {
		return 0, fmt.Errorf("%w: got %d, want %d", ErrDimension, len(x), p.n)
	}

	complement := make([]float64, p.n)
	copy(complement, x)
	floats.Scale(-1, complement)
	floats.AddConst(1, complement)

	var outer mat.Dense
	outer.Outer(1, mat.NewVecDense(p.n, x), mat.NewVecDense(p.n, complement))
	outer.MulElem(&outer, p.Adjacency())
	return mat.Sum(&outer), nil
}

// Run reduces the instance to its Ising graph: QUBO matrix, Ising matrix,
// then the weighted graph the evaluator consumes.
func (p *Problem) Run() (*ising.Graph, error) {
	isingMat, err := ising.FromQUBO(p.QUBO())
	if err != nil {
		return nil, err
	}
	return ising.NewGraph(isingMat)
}
