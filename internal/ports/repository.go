package ports

import (
	"context"

	"bundle-resolver/internal/types"
)

// RepositoryPort is a remote catalog of downloadable bundles and features.
type RepositoryPort interface {
	Name() string

	// Init loads the repository catalog and indexes every entry accepted by
	// filter. An error excludes this repository from the run.
	Init(ctx context.Context, index CatalogIndex, filter CatalogFilter) error

	// ResolveBundle downloads the bundle and returns its local path.
	ResolveBundle(ctx context.Context, entry types.CatalogEntry) (string, error)

	// ResolveFeature downloads the feature and returns the local path of
	// its directory.
	ResolveFeature(ctx context.Context, entry types.CatalogEntry) (string, error)
}

// CatalogIndex receives catalog entries during repository initialisation.
type CatalogIndex interface {
	IndexBundle(repo RepositoryPort, entry types.CatalogEntry)
	IndexFeature(repo RepositoryPort, entry types.CatalogEntry)
}

// CatalogFilter decides whether a catalog entry applies to the current
// build, e.g. by platform.
type CatalogFilter interface {
	Accept(entry types.CatalogEntry) bool
}
