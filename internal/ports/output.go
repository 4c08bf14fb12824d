package ports

import (
	"context"

	"bundle-resolver/internal/types"
)

// OutputPort writes the results of a resolution run.
type OutputPort interface {
	WriteBundlesLock(bundles []types.ResolvedBundle) error
	WriteReport(report types.ResolutionReport) error
	WriteFeatures(features map[string][]string) error

	// WriteGraphDOT writes the graph and returns its DOT source.
	WriteGraphDOT(root string, edges []types.GraphEdge) (string, error)
	WriteGraphSVG(svg []byte) error
}

// GraphRendererPort turns DOT source into an image.
type GraphRendererPort interface {
	RenderSVG(ctx context.Context, dot string) ([]byte, error)
}
