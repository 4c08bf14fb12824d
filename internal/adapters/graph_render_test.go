package adapters

import (
	"strings"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bundle-resolver/internal/types"
)

func TestGraphvizRendererAdapterRendersSVG(t *testing.T) {
	dot := graphDOT("app", []types.GraphEdge{{From: "app", To: "core.lib"}})

	svg, err := NewGraphvizRendererAdapter().RenderSVG(t.Context(), dot)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(svg), "<svg"))
	assert.True(t, strings.Contains(string(svg), "core.lib"))
}

func TestGraphvizRendererAdapterRejectsInvalidDOT(t *testing.T) {
	_, err := NewGraphvizRendererAdapter().RenderSVG(t.Context(), "digraph {")
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}
