package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"bundle-resolver/internal/ports"
	"bundle-resolver/internal/types"
)

const (
	kindBundle  = "bundle"
	kindFeature = "feature"
)

// remoteEntry is the download state shared by remote bundles and features.
// The path moves from empty to set exactly once.
type remoteEntry struct {
	Entry types.CatalogEntry

	kind    string
	repo    ports.RepositoryPort
	flight  *singleflight.Group
	metrics ports.MetricsPort

	mu   sync.Mutex
	path string
}

func (e *remoteEntry) Repository() ports.RepositoryPort {
	return e.repo
}

func (e *remoteEntry) Name() string {
	return e.Entry.Name
}

func (e *remoteEntry) Version() types.Version {
	return types.ParseVersion(e.Entry.Version)
}

// Path returns the local path once downloaded, or "".
func (e *remoteEntry) Path() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.path
}

func (e *remoteEntry) IsDownloaded() bool {
	return e.Path() != ""
}

func (e *remoteEntry) flightKey() string {
	return fmt.Sprintf("%s/%s/%s", e.repo.Name(), e.kind, types.BundleKey(e.Entry.Name, e.Entry.Version))
}

// resolve downloads the entry unless it already is. Concurrent callers for
// the same entry share a single fetch; other entries are not blocked. The
// fetch is detached from the caller's cancellation: a canceled caller stops
// waiting while the others still receive the shared result.
func (e *remoteEntry) resolve(ctx context.Context, fetch func(context.Context, types.CatalogEntry) (string, error)) error {
	if e.IsDownloaded() {
		return nil
	}
	detached := context.WithoutCancel(ctx)
	done := e.flight.DoChan(e.flightKey(), func() (any, error) {
		if path := e.Path(); path != "" {
			return path, nil
		}
		log.Ctx(ctx).Info().
			Str("kind", e.kind).
			Str("name", e.Entry.Name).
			Str("version", e.Entry.Version).
			Str("repository", e.repo.Name()).
			Msg("downloading")
		start := time.Now()
		path, err := fetch(detached, e.Entry)
		if err == nil && path == "" {
			err = errbuilder.New().
				WithCode(errbuilder.CodeNotFound).
				WithMsg(fmt.Sprintf("repository %s returned no path for %s", e.repo.Name(), e.Entry.Name))
		}
		e.metrics.ObserveDownload(e.kind, time.Since(start), err)
		if err != nil {
			return nil, err
		}
		e.mu.Lock()
		e.path = path
		e.mu.Unlock()
		return path, nil
	})
	select {
	case result := <-done:
		return result.Err
	case <-ctx.Done():
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("download of %s canceled", e.Entry.Name)).
			WithCause(ctx.Err())
	}
}

// RemoteBundle is a bundle advertised by a repository catalog. Info carries
// the catalog metadata until the bundle is downloaded and its manifest can
// be read.
type RemoteBundle struct {
	*remoteEntry
	Info *types.BundleInfo
}

// Resolve downloads the bundle if needed. It is idempotent.
func (b *RemoteBundle) Resolve(ctx context.Context) error {
	return b.resolve(ctx, b.repo.ResolveBundle)
}

// RemoteFeature is a feature advertised by a repository catalog.
type RemoteFeature struct {
	*remoteEntry
}

// Resolve downloads the feature if needed. It is idempotent.
func (f *RemoteFeature) Resolve(ctx context.Context) error {
	return f.resolve(ctx, f.repo.ResolveFeature)
}

// LookupCache indexes the catalogs of all initialised repositories by name.
type LookupCache struct {
	metrics ports.MetricsPort
	flight  singleflight.Group

	mu       sync.RWMutex
	bundles  map[string][]*RemoteBundle
	features map[string][]*RemoteFeature
}

func NewLookupCache(metrics ports.MetricsPort) *LookupCache {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &LookupCache{
		metrics:  metrics,
		bundles:  map[string][]*RemoteBundle{},
		features: map[string][]*RemoteFeature{},
	}
}

func (c *LookupCache) newEntry(kind string, repo ports.RepositoryPort, entry types.CatalogEntry) *remoteEntry {
	return &remoteEntry{
		Entry:   entry,
		kind:    kind,
		repo:    repo,
		flight:  &c.flight,
		metrics: c.metrics,
	}
}

// IndexBundle adds a catalog bundle. Entries whose requirements cannot be
// parsed are skipped.
func (c *LookupCache) IndexBundle(repo ports.RepositoryPort, entry types.CatalogEntry) {
	info, err := catalogBundleInfo(entry)
	if err != nil {
		log.Warn().Err(err).Str("repository", repo.Name()).Str("bundle", entry.Name).Msg("skipping catalog entry")
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, existing := range c.bundles[entry.Name] {
		if existing.repo.Name() == repo.Name() && existing.Entry.Version == entry.Version {
			return
		}
	}
	c.bundles[entry.Name] = append(c.bundles[entry.Name], &RemoteBundle{
		remoteEntry: c.newEntry(kindBundle, repo, entry),
		Info:        info,
	})
}

func (c *LookupCache) IndexFeature(repo ports.RepositoryPort, entry types.CatalogEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, existing := range c.features[entry.Name] {
		if existing.repo.Name() == repo.Name() && existing.Entry.Version == entry.Version {
			return
		}
	}
	c.features[entry.Name] = append(c.features[entry.Name], &RemoteFeature{
		remoteEntry: c.newEntry(kindFeature, repo, entry),
	})
}

// RemoteBundlesByName returns the indexed bundles in indexing order.
func (c *LookupCache) RemoteBundlesByName(name string) []*RemoteBundle {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]*RemoteBundle(nil), c.bundles[name]...)
}

func (c *LookupCache) RemoteFeaturesByName(name string) []*RemoteFeature {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]*RemoteFeature(nil), c.features[name]...)
}

// BestRemoteBundle picks the highest version compatible with ref, or the
// lowest when preferOlder is set. Ties keep the first indexed entry.
func (c *LookupCache) BestRemoteBundle(ref types.BundleRef, preferOlder bool) *RemoteBundle {
	var best *RemoteBundle
	for _, candidate := range c.RemoteBundlesByName(ref.Name) {
		v := candidate.Version()
		if !types.IsCompatible(ref.Range, &v) {
			continue
		}
		if best == nil || better(v, best.Version(), preferOlder) {
			best = candidate
		}
	}
	return best
}

// BestRemoteFeature applies the same selection policy to features.
func (c *LookupCache) BestRemoteFeature(name string, preferOlder bool) *RemoteFeature {
	var best *RemoteFeature
	for _, candidate := range c.RemoteFeaturesByName(name) {
		if best == nil || better(candidate.Version(), best.Version(), preferOlder) {
			best = candidate
		}
	}
	return best
}

func better(candidate types.Version, current types.Version, preferOlder bool) bool {
	if preferOlder {
		return candidate.Compare(current) < 0
	}
	return candidate.Compare(current) > 0
}

func catalogBundleInfo(entry types.CatalogEntry) (*types.BundleInfo, error) {
	var requires []types.BundleRef
	for _, clause := range entry.Requires {
		ref, err := clauseRef(clause)
		if err != nil {
			return nil, err
		}
		requires = append(requires, ref)
	}
	var host *types.BundleRef
	if entry.Fragment != nil {
		r, err := types.ParseVersionRange(entry.Fragment.Range)
		if err != nil {
			return nil, err
		}
		host = &types.BundleRef{Name: entry.Fragment.Name, Range: r}
	}
	return types.NewBundleInfoBuilder().
		Name(entry.Name).
		Version(entry.Version).
		RequireBundles(requires).
		FragmentHost(host).
		Build(), nil
}

var _ ports.CatalogIndex = (*LookupCache)(nil)
