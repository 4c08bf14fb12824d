package core

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"bundle-resolver/internal/types"
)

func TestGraphTraverseMirrorsCallStack(t *testing.T) {
	graph := NewGraph("product")
	root := graph.Root()

	core := graph.Traverse(root, "core.lib")
	util := graph.Traverse(core, "util.lib")
	graph.AddNodeDependency(util, "core.lib")
	graph.AddNodeDependency(root, "util.lib")
	graph.AddDependency("host.lib", "frag.lib")

	assert.Equal(t, "core.lib", core)
	want := []types.GraphEdge{
		{From: "core.lib", To: "util.lib"},
		{From: "host.lib", To: "frag.lib"},
		{From: "product", To: "core.lib"},
		{From: "product", To: "util.lib"},
		{From: "util.lib", To: "core.lib"},
	}
	if diff := cmp.Diff(want, graph.Edges()); diff != "" {
		t.Fatalf("unexpected edges (-want +got):\n%s", diff)
	}
	assert.True(t, graph.HasNode("frag.lib"))
	assert.Empty(t, graph.Children("frag.lib"))
}

func TestGraphDefaultRoot(t *testing.T) {
	graph := NewGraph("")
	assert.Equal(t, DefaultGraphRoot, graph.Root())
	assert.Equal(t, []string{DefaultGraphRoot}, graph.Nodes())
}
