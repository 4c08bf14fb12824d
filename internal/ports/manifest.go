package ports

// ManifestSourcePort extracts the manifest of a bundle folder or jar.
type ManifestSourcePort interface {
	// ReadHeaders returns the main-section headers of the bundle manifest.
	// A bundle without a manifest yields a CodeNotFound error.
	ReadHeaders(path string) (map[string]string, error)
}
