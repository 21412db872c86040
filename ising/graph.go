package ising

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// weightEps is the threshold below which an Ising coupling is treated as
// absent when building the graph.
const weightEps = 1e-8

// Edge is an undirected coupling between two nodes, U < V.
type Edge struct {
	U, V   int
	Weight float64
}

// Element identifies a node or an edge of the graph. The evaluator computes
// one local expectation per element.
type Element struct {
	U, V   int
	IsEdge bool
}

// NodeElement returns the element for node u.
func NodeElement(u int) Element {
	return Element{U: u, V: u}
}

// EdgeElement returns the element for edge (u, v), normalized so U < V.
func EdgeElement(u, v int) Element {
	if u > v {
		u, v = v, u
	}
	return Element{U: u, V: v, IsEdge: true}
}

func (e Element) String() string {
	if e.IsEdge {
		return fmt.Sprintf("edge(%d,%d)", e.U, e.V)
	}
	return fmt.Sprintf("node(%d)", e.U)
}

type edgeKey struct{ u, v int }

// Graph is an Ising model viewed as a weighted graph: node weights are the
// local fields on the diagonal, edge weights the pairwise couplings. Both
// are real-valued.
type Graph struct {
	n     int
	nodeW []float64
	adj   [][]int
	edges []Edge
	edgeW map[edgeKey]float64
}

// NewGraph builds the weighted graph model for an Ising matrix. Off-diagonal
// entries with magnitude below 1e-8 produce no edge. The upper triangle wins
// for (numerically) asymmetric input.
func NewGraph(isingMat *mat.Dense) (*Graph, error) {
	rows, cols := isingMat.Dims()
	if rows != cols {
		return nil, fmt.Errorf("%w: %dx%d", ErrNotSquare, rows, cols)
	}

	g := &Graph{
		n:     rows,
		nodeW: make([]float64, rows),
		adj:   make([][]int, rows),
		edgeW: make(map[edgeKey]float64),
	}
	for i := 0; i < rows; i++ {
		g.nodeW[i] = isingMat.At(i, i)
	}
	for i := 0; i < rows; i++ {
		for j := i + 1; j < cols; j++ {
			w := isingMat.At(i, j)
			if math.Abs(w) <= weightEps {
				continue
			}
			g.addEdge(i, j, w)
		}
	}

	return g, nil
}

func (g *Graph) addEdge(u, v int, w float64) {
	g.edges = append(g.edges, Edge{U: u, V: v, Weight: w})
	g.edgeW[edgeKey{u, v}] = w
	g.adj[u] = append(g.adj[u], v)
	g.adj[v] = append(g.adj[v], u)
}

// NumNodes returns the node count.
func (g *Graph) NumNodes() int { return g.n }

// NodeWeight returns the local field of node u.
func (g *Graph) NodeWeight(u int) float64 { return g.nodeW[u] }

// EdgeWeight returns the coupling of edge (u, v) and whether it exists.
func (g *Graph) EdgeWeight(u, v int) (float64, bool) {
	if u > v {
		u, v = v, u
	}
	w, ok := g.edgeW[edgeKey{u, v}]
	return w, ok
}

// Edges returns all edges ordered by (U, V).
func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	sort.Slice(out, func(i, j int) bool {
		if out[i].U != out[j].U {
			return out[i].U < out[j].U
		}
		return out[i].V < out[j].V
	})
	return out
}

// Neighbors returns the nodes adjacent to u.
func (g *Graph) Neighbors(u int) []int {
	out := make([]int, len(g.adj[u]))
	copy(out, g.adj[u])
	sort.Ints(out)
	return out
}

// Elements lists every node element followed by every edge element. The
// total expectation of the graph is the sum of their local expectations.
func (g *Graph) Elements() []Element {
	out := make([]Element, 0, g.n+len(g.edges))
	for u := 0; u < g.n; u++ {
		out = append(out, NodeElement(u))
	}
	for _, e := range g.Edges() {
		out = append(out, EdgeElement(e.U, e.V))
	}
	return out
}

// Subgraph is the induced neighborhood of an element: the node set, sorted
// ascending, and every graph edge with both endpoints inside it.
type Subgraph struct {
	Nodes []int
	Edges [][2]int
}

// Neighborhood returns the induced subgraph of all nodes within hops hops of
// the element's endpoints. hops < 0 is treated as 0, which yields just the
// element itself (plus, for an edge element, its two endpoints).
func (g *Graph) Neighborhood(el Element, hops int) *Subgraph {
	seen := map[int]bool{el.U: true}
	frontier := []int{el.U}
	if el.IsEdge {
		seen[el.V] = true
		frontier = append(frontier, el.V)
	}

	for depth := 0; depth < hops; depth++ {
		var next []int
		for _, u := range frontier {
			for _, v := range g.adj[u] {
				if !seen[v] {
					seen[v] = true
					next = append(next, v)
				}
			}
		}
		if len(next) == 0 {
			break
		}
		frontier = next
	}

	nodes := make([]int, 0, len(seen))
	for u := range seen {
		nodes = append(nodes, u)
	}
	sort.Ints(nodes)

	sub := &Subgraph{Nodes: nodes}
	for _, e := range g.Edges() {
		if seen[e.U] && seen[e.V] {
			sub.Edges = append(sub.Edges, [2]int{e.U, e.V})
		}
	}
	return sub
}
