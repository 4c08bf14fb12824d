package ports

import "bundle-resolver/internal/types"

// BundlePolicyPort holds the build-specific switches of the resolver.
type BundlePolicyPort interface {
	// IsExcluded opts a bundle out of resolution entirely.
	IsExcluded(name string) bool

	// PreferOlder makes the remote selection pick the lowest compatible
	// version of name instead of the highest.
	PreferOlder(name string) bool

	// CorrectFolderName maps a symbolic name to its on-disk folder name.
	CorrectFolderName(name string) string
}

// PlatformPort matches descriptor elements and catalog entries against the
// target os/ws/arch.
type PlatformPort interface {
	CatalogFilter
	Matches(filter types.PlatformFilter) bool
}
