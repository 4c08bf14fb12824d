package app

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"bundle-resolver/internal/core"
	"bundle-resolver/internal/types"
)

// Resolve resolves the plugins and features of a product descriptor plus
// any extra bundle references, then writes the run outputs. Entries that
// cannot be resolved are reported, not fatal.
func (s Service) Resolve(ctx context.Context, req ResolveRequest) (ResolveResult, error) {
	if err := validateRunRequest(req); err != nil {
		return ResolveResult{}, err
	}
	productPath := strings.TrimSpace(req.ProductPath)
	if productPath == "" && len(req.Bundles) == 0 {
		return ResolveResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("product descriptor or bundle references are required")
	}

	var refs []types.BundleRef
	for _, clause := range req.Bundles {
		ref, err := core.ParseBundleRef(clause)
		if err != nil {
			return ResolveResult{}, err
		}
		refs = append(refs, ref)
	}

	var product types.Descriptor
	if productPath != "" {
		var err error
		product, err = s.Products.Read(productPath)
		if err != nil {
			return ResolveResult{}, err
		}
	}

	r, ctx := s.start(ctx, req, product)
	frame := core.RootFrame(r.graph)
	plugins, features := r.features.Entries(product)

	var g errgroup.Group
	g.SetLimit(workerCount(req.Workers))
	for _, plugin := range plugins {
		g.Go(func() error {
			if err := r.features.ResolvePlugin(ctx, frame, plugin); err != nil {
				log.Ctx(ctx).Error().Err(err).Str("plugin", plugin.ID).Msg("product plugin not resolved")
			}
			return nil
		})
	}
	for _, feature := range features {
		g.Go(func() error {
			if err := r.features.ResolveFeature(ctx, frame, feature.ID); err != nil {
				log.Ctx(ctx).Error().Err(err).Str("feature", feature.ID).Msg("product feature not resolved")
			}
			return nil
		})
	}
	for _, ref := range refs {
		g.Go(func() error {
			if err := r.plugins.Resolve(ctx, frame, ref, nil); err != nil {
				log.Ctx(ctx).Error().Err(err).Str("bundle", ref.String()).Msg("bundle not resolved")
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return ResolveResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("resolution canceled").
			WithCause(err)
	}
	return s.finish(ctx, r, req)
}
