package app

import (
	"bundle-resolver/internal/adapters"
	"bundle-resolver/internal/types"
)

// ResolveRequest configures one resolution run.
type ResolveRequest struct {
	ProductPath  string
	Bundles      []string
	PluginRoots  []string
	FeatureRoots []string
	Catalogs     []string
	CacheDir     string
	OutputDir    string
	Workers      int
	Exclude      []string
	PreferOlder  []string
	FolderNames  map[string]string
	OS           string
	WS           string
	Arch         string
	GraphSVG     bool
	MetricsFile  string
	HTTP         adapters.HTTPConfig
}

type ResolveResult struct {
	RunID      string
	Product    string
	OutputDir  string
	Bundles    int
	Unresolved []string
}

// TestRequest resolves test libraries and test bundle directories on top
// of the regular run settings.
type TestRequest struct {
	ResolveRequest
	TestLibraries []string
	TestBundles   []string
}

type ManifestRequest struct {
	Path string
}

type ManifestResult struct {
	Bundle types.ResolvedBundle
}
