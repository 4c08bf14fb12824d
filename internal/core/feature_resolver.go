package core

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"bundle-resolver/internal/ports"
	"bundle-resolver/internal/types"
)

// FeatureDescriptorName is the descriptor file inside a feature folder.
const FeatureDescriptorName = "feature.xml"

// FeatureResolver walks product and feature descriptors and feeds their
// plugins into the PluginResolver. Bundles resolved under a feature are
// recorded against it.
type FeatureResolver struct {
	Plugins  *PluginResolver
	Storage  ports.FeatureStoragePort
	Platform ports.PlatformPort
	Products ports.DescriptorReaderPort
	Features ports.DescriptorReaderPort

	mu      sync.Mutex
	visited map[string]struct{}
}

func NewFeatureResolver(
	plugins *PluginResolver,
	storage ports.FeatureStoragePort,
	platform ports.PlatformPort,
	products ports.DescriptorReaderPort,
	features ports.DescriptorReaderPort,
) *FeatureResolver {
	return &FeatureResolver{
		Plugins:  plugins,
		Storage:  storage,
		Platform: platform,
		Products: products,
		Features: features,
		visited:  map[string]struct{}{},
	}
}

// Read parses a descriptor with the reader for its kind.
func (f *FeatureResolver) Read(kind types.DescriptorKind, path string) (types.Descriptor, error) {
	var reader ports.DescriptorReaderPort
	switch kind {
	case types.DescriptorKindProduct:
		reader = f.Products
	case types.DescriptorKindFeature:
		reader = f.Features
	}
	if reader == nil {
		return types.Descriptor{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("no reader for %s descriptors", kind))
	}
	return reader.Read(path)
}

// Entries returns the plugins and features of d that apply to the target
// platform.
func (f *FeatureResolver) Entries(d types.Descriptor) ([]types.PluginEntry, []types.FeatureEntry) {
	var plugins []types.PluginEntry
	for _, p := range d.Plugins {
		if f.Platform.Matches(p.Platform) {
			plugins = append(plugins, p)
		}
	}
	var features []types.FeatureEntry
	for _, fe := range d.Features {
		if f.Platform.Matches(fe.Platform) {
			features = append(features, fe)
		}
	}
	return plugins, features
}

// ResolvePlugin resolves a descriptor plugin entry. Descriptor versions
// are not used as constraints.
func (f *FeatureResolver) ResolvePlugin(ctx context.Context, frame Frame, entry types.PluginEntry) error {
	return f.Plugins.Resolve(ctx, frame, types.BundleRef{Name: entry.ID}, entry.StartLevel)
}

// ResolveFeature locates a feature descriptor, locally or through the
// remote cache, and resolves everything it lists. Each feature is walked
// once per run.
func (f *FeatureResolver) ResolveFeature(ctx context.Context, frame Frame, name string) error {
	if !f.claim(name) {
		return nil
	}
	path, err := f.locate(ctx, name)
	if err != nil {
		f.Plugins.Registry.MarkUnresolved(types.BundleRef{Name: name})
		return err
	}
	descriptor, err := f.Read(types.DescriptorKindFeature, path)
	if err != nil {
		return err
	}
	log.Ctx(ctx).Debug().Str("feature", name).Str("path", path).Msg("resolving feature")

	frame = frame.WithFeature(name)
	plugins, features := f.Entries(descriptor)
	for _, p := range plugins {
		if err := f.ResolvePlugin(ctx, frame, p); err != nil {
			log.Ctx(ctx).Error().Err(err).Str("feature", name).Str("plugin", p.ID).Msg("feature plugin not resolved")
		}
	}
	for _, included := range features {
		if err := f.ResolveFeature(ctx, frame, included.ID); err != nil {
			log.Ctx(ctx).Error().Err(err).Str("feature", name).Str("includes", included.ID).Msg("included feature not resolved")
		}
	}
	return nil
}

func (f *FeatureResolver) claim(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.visited[name]; ok {
		return false
	}
	f.visited[name] = struct{}{}
	return true
}

func (f *FeatureResolver) locate(ctx context.Context, name string) (string, error) {
	if path, ok := f.Storage.FeatureXML(name); ok {
		return path, nil
	}
	remote := f.Plugins.Cache.BestRemoteFeature(name, f.Plugins.Policy.PreferOlder(name))
	if remote == nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("couldn't find feature %s", name))
	}
	if err := remote.Resolve(ctx); err != nil {
		return "", err
	}
	return filepath.Join(remote.Path(), FeatureDescriptorName), nil
}
