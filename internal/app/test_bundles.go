package app

import (
	"context"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"bundle-resolver/internal/core"
	"bundle-resolver/internal/types"
)

// ResolveTests registers test libraries and the bundles of the test
// directories, resolves what they require and writes the run outputs.
func (s Service) ResolveTests(ctx context.Context, req TestRequest) (ResolveResult, error) {
	if err := validateRunRequest(req.ResolveRequest); err != nil {
		return ResolveResult{}, err
	}
	if len(req.TestLibraries) == 0 && len(req.TestBundles) == 0 {
		return ResolveResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("test libraries or test bundle directories are required")
	}

	r, ctx := s.start(ctx, req.ResolveRequest, types.Descriptor{})
	if err := r.plugins.ResolveTestBundles(ctx, core.RootFrame(r.graph), req.TestLibraries, req.TestBundles); err != nil {
		return ResolveResult{}, err
	}
	return s.finish(ctx, r, req.ResolveRequest)
}
