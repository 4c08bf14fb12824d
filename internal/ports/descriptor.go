package ports

import "bundle-resolver/internal/types"

// DescriptorReaderPort reads one descriptor dialect.
type DescriptorReaderPort interface {
	Kind() types.DescriptorKind
	Read(path string) (types.Descriptor, error)
}

// FeatureStoragePort locates feature descriptors that are present locally.
type FeatureStoragePort interface {
	FeatureXML(name string) (string, bool)
}
