package types

// DescriptorKind selects the reader used for an assembly descriptor.
type DescriptorKind string

const (
	DescriptorKindProduct DescriptorKind = "product"
	DescriptorKindFeature DescriptorKind = "feature"
)

// Descriptor is the dialect-independent content of a product or feature
// file: the plugins it lists and the features it pulls in.
type Descriptor struct {
	Kind     DescriptorKind
	ID       string
	Version  string
	Plugins  []PluginEntry
	Features []FeatureEntry
}

// PluginEntry is a plugin (bundle) reference inside a descriptor.
type PluginEntry struct {
	ID         string
	Version    string
	StartLevel *int
	Fragment   bool
	Platform   PlatformFilter
}

// FeatureEntry is an included or imported feature.
type FeatureEntry struct {
	ID       string
	Version  string
	Platform PlatformFilter
}

// PlatformFilter holds the os/ws/arch attributes of a descriptor element.
// Empty fields match any platform; a field may list several values
// separated by commas.
type PlatformFilter struct {
	OS   string
	WS   string
	Arch string
}
