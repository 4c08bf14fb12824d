package core

import (
	"sort"
	"sync"

	"bundle-resolver/internal/types"
)

// DefaultGraphRoot names the virtual root when no product is known.
const DefaultGraphRoot = "<root>"

// Graph records "requires" edges between bundle names. Nodes are created on
// first use. The graph may contain cycles. It is safe for concurrent use.
//
// There is no shared cursor: callers hold the name of the node they are
// expanding and pass it in, so restoring the previous node after a subtree
// is simply going back to the caller's own value.
type Graph struct {
	root string

	mu    sync.RWMutex
	nodes map[string]map[string]struct{}
}

func NewGraph(root string) *Graph {
	if root == "" {
		root = DefaultGraphRoot
	}
	return &Graph{
		root:  root,
		nodes: map[string]map[string]struct{}{root: {}},
	}
}

// Root is the node top-level resolutions start from.
func (g *Graph) Root() string {
	return g.root
}

// AddDependency adds the edge parent -> child.
func (g *Graph) AddDependency(parent string, child string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.addEdgeLocked(parent, child)
}

// AddNodeDependency adds an edge from the current node to name without
// descending into it.
func (g *Graph) AddNodeDependency(current string, name string) {
	g.AddDependency(current, name)
}

// Traverse adds an edge from the current node to name and returns name as
// the node to expand next. The caller keeps current to return to once the
// subtree is done.
func (g *Graph) Traverse(current string, name string) string {
	g.AddDependency(current, name)
	return name
}

func (g *Graph) addEdgeLocked(parent string, child string) {
	children, ok := g.nodes[parent]
	if !ok {
		children = map[string]struct{}{}
		g.nodes[parent] = children
	}
	children[child] = struct{}{}
	if _, ok := g.nodes[child]; !ok {
		g.nodes[child] = map[string]struct{}{}
	}
}

func (g *Graph) HasNode(name string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.nodes[name]
	return ok
}

// Nodes returns all node names, sorted. The root is included.
func (g *Graph) Nodes() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]string, 0, len(g.nodes))
	for name := range g.nodes {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Children returns the sorted direct dependencies of name.
func (g *Graph) Children(name string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]string, 0, len(g.nodes[name]))
	for child := range g.nodes[name] {
		out = append(out, child)
	}
	sort.Strings(out)
	return out
}

// Edges returns every edge ordered by source then target.
func (g *Graph) Edges() []types.GraphEdge {
	var edges []types.GraphEdge
	for _, from := range g.Nodes() {
		for _, to := range g.Children(from) {
			edges = append(edges, types.GraphEdge{From: from, To: to})
		}
	}
	return edges
}
