package core

import (
	"context"
	"fmt"
	"slices"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"bundle-resolver/internal/ports"
	"bundle-resolver/internal/types"
)

// Frame is the resolver's position in the graph: the node being expanded,
// the feature bundles are recorded against, and the bundles on the active
// resolution path. Frames are values; descending returns a new one.
type Frame struct {
	Node    string
	Feature string

	active []string
}

// RootFrame starts at the root of graph.
func RootFrame(graph *Graph) Frame {
	return Frame{Node: graph.Root()}
}

// WithFeature returns a frame recording into feature.
func (f Frame) WithFeature(feature string) Frame {
	f.Feature = feature
	return f
}

func (f Frame) onPath(key string) bool {
	return slices.Contains(f.active, key)
}

func (f Frame) descend(node string, key string) Frame {
	active := make([]string, len(f.active), len(f.active)+1)
	copy(active, f.active)
	return Frame{Node: node, Feature: f.Feature, active: append(active, key)}
}

// PluginResolver resolves bundle references into the Registry and Graph,
// scanning local plugin roots first and the remote LookupCache second.
type PluginResolver struct {
	Registry  *Registry
	Graph     *Graph
	Cache     *LookupCache
	Locator   ports.PluginLocatorPort
	Manifests ports.ManifestSourcePort
	Policy    ports.BundlePolicyPort
	Metrics   ports.MetricsPort
}

func NewPluginResolver(
	registry *Registry,
	graph *Graph,
	cache *LookupCache,
	locator ports.PluginLocatorPort,
	manifests ports.ManifestSourcePort,
	policy ports.BundlePolicyPort,
	metrics ports.MetricsPort,
) *PluginResolver {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &PluginResolver{
		Registry:  registry,
		Graph:     graph,
		Cache:     cache,
		Locator:   locator,
		Manifests: manifests,
		Policy:    policy,
		Metrics:   metrics,
	}
}

// Resolve finds a bundle for ref, registers it under frame.Node and
// recursively resolves what it requires. A reference that cannot be
// satisfied returns a CodeNotFound error and is marked unresolved; failures
// below it are logged and do not abort the subtree.
func (r *PluginResolver) Resolve(ctx context.Context, frame Frame, ref types.BundleRef, startLevel *int) error {
	if r.Policy.IsExcluded(ref.Name) {
		r.Metrics.ObserveResolution(ports.OutcomeExcluded)
		return nil
	}

	if prev, ok := r.Registry.BundleByRef(ref); ok {
		r.Metrics.ObserveResolution(ports.OutcomeMemoized)
		r.Registry.RecordFeatureBundle(frame.Feature, prev)
		r.Graph.AddNodeDependency(frame.Node, prev.Name)
		if prev.StartLevel == nil && startLevel != nil {
			r.Registry.AddBundle(prev.WithStartLevel(startLevel))
		}
		return nil
	}

	local := r.scanLocal(ctx, ref, startLevel)
	preferOlder := r.Policy.PreferOlder(ref.Name)

	var (
		chosen  *types.BundleInfo
		outcome = ports.OutcomeLocal
		err     error
	)
	switch len(local) {
	case 0:
		remote := r.Cache.BestRemoteBundle(ref, preferOlder)
		if remote == nil {
			r.Metrics.ObserveResolution(ports.OutcomeNotFound)
			r.Registry.MarkUnresolved(ref)
			return errbuilder.New().
				WithCode(errbuilder.CodeNotFound).
				WithMsg(fmt.Sprintf("couldn't find plugin %s", ref))
		}
		chosen, err = r.materialize(ctx, remote, startLevel)
		outcome = ports.OutcomeRemote
	case 1:
		chosen = local[0]
		remote := r.Cache.BestRemoteBundle(ref, preferOlder)
		if remote != nil && remote.Version().Compare(chosen.ParsedVersion()) > 0 {
			downloaded, downloadErr := r.materialize(ctx, remote, startLevel)
			if downloadErr != nil {
				log.Ctx(ctx).Warn().
					Err(downloadErr).
					Str("bundle", ref.String()).
					Str("remote", remote.Entry.Version).
					Str("local", chosen.Path).
					Msg("newer remote bundle unavailable, using local copy")
				break
			}
			chosen = downloaded
			outcome = ports.OutcomeRemote
		}
	default:
		chosen = local[0]
		for _, shadowed := range local[1:] {
			log.Ctx(ctx).Debug().
				Str("bundle", ref.String()).
				Str("used", chosen.Path).
				Str("shadowed", shadowed.Path).
				Msg("multiple local plugins found, first is used")
		}
	}
	if err != nil {
		r.Registry.MarkUnresolved(ref)
		return err
	}
	r.Metrics.ObserveResolution(outcome)
	return r.link(ctx, frame, ref, chosen)
}

// scanLocal reads the candidate of every plugin root in order and keeps the
// ones whose version satisfies ref. Unreadable candidates are skipped.
func (r *PluginResolver) scanLocal(ctx context.Context, ref types.BundleRef, startLevel *int) []*types.BundleInfo {
	folder := r.Policy.CorrectFolderName(ref.Name)
	var matches []*types.BundleInfo
	for _, root := range r.Locator.BundleRoots() {
		path, ok := r.Locator.FindFirstChildByPackageName(root, folder)
		if !ok {
			continue
		}
		info, err := r.readBundle(path, startLevel)
		if err != nil {
			r.Metrics.ObserveResolution(ports.OutcomeParseError)
			log.Ctx(ctx).Warn().Err(err).Str("path", path).Msg("couldn't extract bundle info")
			continue
		}
		v := info.ParsedVersion()
		if types.IsCompatible(ref.Range, &v) {
			matches = append(matches, info)
		}
	}
	return matches
}

// readBundle parses the manifest of the folder or jar at path.
func (r *PluginResolver) readBundle(path string, startLevel *int) (*types.BundleInfo, error) {
	headers, err := r.Manifests.ReadHeaders(path)
	if err != nil {
		return nil, err
	}
	return ParseManifest(path, startLevel, headers)
}

// materialize downloads a remote bundle and reads its manifest. When the
// download has no readable manifest the catalog metadata is used.
func (r *PluginResolver) materialize(ctx context.Context, remote *RemoteBundle, startLevel *int) (*types.BundleInfo, error) {
	if err := remote.Resolve(ctx); err != nil {
		return nil, err
	}
	path := remote.Path()
	info, err := r.readBundle(path, startLevel)
	if err != nil {
		log.Ctx(ctx).Debug().Err(err).Str("path", path).Msg("using catalog metadata for downloaded bundle")
		return remote.Info.WithPath(path).WithStartLevel(startLevel), nil
	}
	return info, nil
}

// link registers info as the match for ref, moves into its node, attaches
// it to its fragment host and resolves its required bundles.
func (r *PluginResolver) link(ctx context.Context, frame Frame, ref types.BundleRef, info *types.BundleInfo) error {
	key := info.Key()
	if frame.onPath(key) {
		return errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg(fmt.Sprintf("dependency cycle detected at %s", key))
	}

	r.Registry.AddBundle(info)
	r.Registry.Remember(ref, info)
	r.Registry.RecordFeatureBundle(frame.Feature, info)
	child := frame.descend(r.Graph.Traverse(frame.Node, info.Name), key)

	if info.FragmentHost != nil {
		host := r.hostBundle(*info.FragmentHost)
		if host == nil {
			log.Ctx(ctx).Error().
				Str("fragment", key).
				Str("host", info.FragmentHost.String()).
				Msg("fragment host bundle not found")
		} else {
			r.Registry.AttachFragment(host.Key(), info)
			r.Graph.AddDependency(host.Name, info.Name)
		}
	}

	for _, required := range info.RequireBundles {
		if err := r.Resolve(ctx, child, required, nil); err != nil {
			log.Ctx(ctx).Error().
				Err(err).
				Str("bundle", key).
				Str("requires", required.String()).
				Msg("required bundle not resolved")
		}
	}
	return nil
}

// hostBundle finds the host of a fragment among registered bundles first
// and the remote catalog second, by name and range.
func (r *PluginResolver) hostBundle(host types.BundleRef) *types.BundleInfo {
	for _, candidate := range r.Registry.BundlesByName(host.Name) {
		v := candidate.ParsedVersion()
		if types.IsCompatible(host.Range, &v) {
			return candidate
		}
	}
	for _, remote := range r.Cache.RemoteBundlesByName(host.Name) {
		v := remote.Version()
		if types.IsCompatible(host.Range, &v) {
			return remote.Info
		}
	}
	return nil
}
