package app

import (
	"context"
	"path/filepath"
	"strings"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"bundle-resolver/internal/adapters"
	"bundle-resolver/internal/core"
	"bundle-resolver/internal/metrics"
	"bundle-resolver/internal/policies"
	"bundle-resolver/internal/ports"
	"bundle-resolver/internal/types"
)

const defaultWorkers = 4

// run holds the engine state shared by every entry point of one run.
type run struct {
	id       string
	product  string
	registry *core.Registry
	graph    *core.Graph
	plugins  *core.PluginResolver
	features *core.FeatureResolver
	metrics  *metrics.Recorder
}

func validateRunRequest(req ResolveRequest) error {
	if strings.TrimSpace(req.OutputDir) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("output directory is required")
	}
	if len(req.Catalogs) > 0 && strings.TrimSpace(req.CacheDir) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("cache directory is required with catalogs")
	}
	return nil
}

// start builds the engine for req and returns a context carrying the
// run's logger.
func (s Service) start(ctx context.Context, req ResolveRequest, product types.Descriptor) (*run, context.Context) {
	runID := s.NewRunID()
	assert.NotEmpty(ctx, runID, "run id must be set")

	base := zerolog.Ctx(ctx)
	if base.GetLevel() == zerolog.Disabled {
		base = &log.Logger
	}
	logger := base.With().Str("run_id", runID).Logger()
	ctx = logger.WithContext(ctx)

	root := product.ID
	if root == "" {
		root = core.DefaultGraphRoot
	}
	recorder := metrics.NewRecorder()
	platform := policies.NewPlatform(req.OS, req.WS, req.Arch)
	policy := policies.NewBundlePolicy(req.Exclude, req.PreferOlder, req.FolderNames)

	registry := core.NewRegistry(req.ProductPath)
	graph := core.NewGraph(root)
	cache := core.NewLookupCache(recorder)

	manager := core.NewRepositoryManager(cache, platform)
	var repos []ports.RepositoryPort
	for _, catalog := range req.Catalogs {
		repos = append(repos, adapters.NewCatalogRepositoryAdapter(catalog, req.CacheDir, req.HTTP))
	}
	manager.Init(ctx, repos)

	plugins := core.NewPluginResolver(
		registry,
		graph,
		cache,
		adapters.NewPluginDirsAdapter(req.PluginRoots),
		s.Manifests,
		policy,
		recorder,
	)
	features := core.NewFeatureResolver(
		plugins,
		adapters.LoadFeatureStorage(ctx, req.FeatureRoots),
		platform,
		s.Products,
		s.Features,
	)
	log.Ctx(ctx).Info().Str("root", root).Int("repositories", len(manager.Active())).Msg("resolution started")
	return &run{
		id:       runID,
		product:  product.ID,
		registry: registry,
		graph:    graph,
		plugins:  plugins,
		features: features,
		metrics:  recorder,
	}, ctx
}

// finish writes every output of the run.
func (s Service) finish(ctx context.Context, r *run, req ResolveRequest) (ResolveResult, error) {
	bundles := resolvedBundles(r.registry)
	unresolved := r.registry.Unresolved()
	output := adapters.NewOutputFileAdapter(req.OutputDir)

	if err := output.WriteBundlesLock(bundles); err != nil {
		return ResolveResult{}, err
	}
	report := types.ResolutionReport{
		RunID:      r.id,
		Product:    r.product,
		Bundles:    bundles,
		Features:   r.registry.FeatureBundles(),
		Unresolved: unresolved,
	}
	if err := output.WriteReport(report); err != nil {
		return ResolveResult{}, err
	}
	if err := output.WriteFeatures(report.Features); err != nil {
		return ResolveResult{}, err
	}
	dot, err := output.WriteGraphDOT(r.graph.Root(), r.graph.Edges())
	if err != nil {
		return ResolveResult{}, err
	}
	if req.GraphSVG {
		svg, err := s.Renderer.RenderSVG(ctx, dot)
		if err != nil {
			return ResolveResult{}, err
		}
		if err := output.WriteGraphSVG(svg); err != nil {
			return ResolveResult{}, err
		}
	}

	r.metrics.ObserveRun(len(bundles), len(unresolved))
	if path := strings.TrimSpace(req.MetricsFile); path != "" {
		if err := r.metrics.WriteTextfile(path); err != nil {
			return ResolveResult{}, err
		}
	}

	event := log.Ctx(ctx).Info()
	if len(unresolved) > 0 {
		event = log.Ctx(ctx).Warn().Strs("unresolved", unresolved)
	}
	event.Int("bundles", len(bundles)).Str("output", filepath.Clean(req.OutputDir)).Msg("resolution finished")

	return ResolveResult{
		RunID:      r.id,
		Product:    r.product,
		OutputDir:  req.OutputDir,
		Bundles:    len(bundles),
		Unresolved: unresolved,
	}, nil
}

func workerCount(n int) int {
	if n <= 0 {
		return defaultWorkers
	}
	return n
}
