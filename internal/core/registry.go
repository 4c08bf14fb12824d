package core

import (
	"sort"
	"sync"

	"bundle-resolver/internal/types"
)

// Registry stores every bundle discovered during one resolution run. It is
// safe for concurrent use.
type Registry struct {
	productPath string

	mu        sync.RWMutex
	byName    map[string]map[string]*types.BundleInfo // name -> version -> info
	memo      map[string]string                       // ref key -> version
	fragments map[string][]*types.BundleInfo          // host key -> fragments
	features  map[string]map[string]struct{}          // feature -> bundle keys
	missing   map[string]struct{}                     // unresolved references
}

func NewRegistry(productPath string) *Registry {
	return &Registry{
		productPath: productPath,
		byName:      map[string]map[string]*types.BundleInfo{},
		memo:        map[string]string{},
		fragments:   map[string][]*types.BundleInfo{},
		features:    map[string]map[string]struct{}{},
		missing:     map[string]struct{}{},
	}
}

func (r *Registry) ProductPath() string {
	return r.productPath
}

// AddBundle inserts info, replacing a bundle with the same name and
// version. Replacement is how a later resolution fills in a start level;
// a start level already registered is kept.
func (r *Registry) AddBundle(info *types.BundleInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	versions, ok := r.byName[info.Name]
	if !ok {
		versions = map[string]*types.BundleInfo{}
		r.byName[info.Name] = versions
	}
	if existing, ok := versions[info.Version]; ok && existing.StartLevel != nil {
		info = info.WithStartLevel(existing.StartLevel)
	}
	versions[info.Version] = info
}

// Remember records info as the resolved match for ref.
func (r *Registry) Remember(ref types.BundleRef, info *types.BundleInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.memo[ref.Key()] = info.Version
}

// BundleByRef returns the bundle previously resolved for ref. Without a
// memo entry it falls back to the highest registered version satisfying
// the range and memoizes that.
func (r *Registry) BundleByRef(ref types.BundleRef) (*types.BundleInfo, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if version, ok := r.memo[ref.Key()]; ok {
		if info, ok := r.byName[ref.Name][version]; ok {
			return info, true
		}
	}
	var best *types.BundleInfo
	var bestVersion types.Version
	for _, info := range r.byName[ref.Name] {
		v := info.ParsedVersion()
		if !types.IsCompatible(ref.Range, &v) {
			continue
		}
		if best == nil || v.Compare(bestVersion) > 0 {
			best, bestVersion = info, v
		}
	}
	if best == nil {
		return nil, false
	}
	r.memo[ref.Key()] = best.Version
	return best, true
}

// BundlesByName returns every registered version of name, lowest first.
func (r *Registry) BundlesByName(name string) []*types.BundleInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*types.BundleInfo, 0, len(r.byName[name]))
	for _, info := range r.byName[name] {
		out = append(out, info)
	}
	sortBundles(out)
	return out
}

// Bundles returns a snapshot of all registered bundles ordered by name then
// version.
func (r *Registry) Bundles() []*types.BundleInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*types.BundleInfo
	for _, versions := range r.byName {
		for _, info := range versions {
			out = append(out, info)
		}
	}
	sortBundles(out)
	return out
}

// AttachFragment appends fragment to the fragments of host. Attaching the
// same fragment version twice is a no-op.
func (r *Registry) AttachFragment(hostKey string, fragment *types.BundleInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.fragments[hostKey] {
		if existing.Key() == fragment.Key() {
			return
		}
	}
	r.fragments[hostKey] = append(r.fragments[hostKey], fragment)
}

func (r *Registry) Fragments(hostKey string) []*types.BundleInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*types.BundleInfo(nil), r.fragments[hostKey]...)
}

// RecordFeatureBundle notes that feature depends on info. An empty feature
// name is ignored.
func (r *Registry) RecordFeatureBundle(feature string, info *types.BundleInfo) {
	if feature == "" || info == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.features[feature]
	if !ok {
		set = map[string]struct{}{}
		r.features[feature] = set
	}
	set[info.Key()] = struct{}{}
}

// FeatureBundles returns feature -> sorted bundle keys.
func (r *Registry) FeatureBundles() map[string][]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string][]string, len(r.features))
	for feature, set := range r.features {
		keys := make([]string, 0, len(set))
		for key := range set {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		out[feature] = keys
	}
	return out
}

// MarkUnresolved records a reference no candidate satisfied.
func (r *Registry) MarkUnresolved(ref types.BundleRef) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.missing[ref.String()] = struct{}{}
}

// Unresolved returns the sorted references that could not be resolved.
func (r *Registry) Unresolved() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.missing))
	for ref := range r.missing {
		out = append(out, ref)
	}
	sort.Strings(out)
	return out
}

func sortBundles(bundles []*types.BundleInfo) {
	sort.Slice(bundles, func(i, j int) bool {
		if bundles[i].Name != bundles[j].Name {
			return bundles[i].Name < bundles[j].Name
		}
		return bundles[i].ParsedVersion().Compare(bundles[j].ParsedVersion()) < 0
	})
}
