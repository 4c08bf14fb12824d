package ports

// PluginLocatorPort finds candidate bundle folders and jars on disk.
type PluginLocatorPort interface {
	// BundleRoots returns the plugin directories in scan order.
	BundleRoots() []string

	// FindFirstChildByPackageName returns the first entry under root whose
	// name denotes the given bundle (name, name.jar, name_<version>,
	// name_<version>.jar).
	FindFirstChildByPackageName(root string, name string) (string, bool)

	// BundleFolders lists the directories directly under dir, sorted.
	BundleFolders(dir string) ([]string, error)
}
