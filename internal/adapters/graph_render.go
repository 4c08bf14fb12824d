package adapters

import (
	"bytes"
	"context"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/goccy/go-graphviz"

	"bundle-resolver/internal/ports"
)

// GraphvizRendererAdapter renders DOT in-process with the embedded
// Graphviz build.
type GraphvizRendererAdapter struct{}

func NewGraphvizRendererAdapter() GraphvizRendererAdapter {
	return GraphvizRendererAdapter{}
}

func (a GraphvizRendererAdapter) RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, renderError("failed to init graphviz", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse DOT").
			WithCause(err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, renderError("failed to render graph", err)
	}
	return buf.Bytes(), nil
}

func renderError(msg string, err error) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg(msg).
		WithCause(err)
}

var _ ports.GraphRendererPort = GraphvizRendererAdapter{}
