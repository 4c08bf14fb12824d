package adapters

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"bundle-resolver/internal/ports"
)

const jarSuffix = ".jar"

// PluginDirsAdapter locates bundles in a fixed list of plugin directories.
type PluginDirsAdapter struct {
	Roots []string
}

func NewPluginDirsAdapter(roots []string) PluginDirsAdapter {
	var cleaned []string
	for _, root := range roots {
		if trimmed := strings.TrimSpace(root); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return PluginDirsAdapter{Roots: cleaned}
}

func (a PluginDirsAdapter) BundleRoots() []string {
	return append([]string(nil), a.Roots...)
}

// FindFirstChildByPackageName returns the first entry of root, in name
// order, that is the bundle folder or jar of name: "name", "name.jar",
// "name_<version>" or "name_<version>.jar".
func (a PluginDirsAdapter) FindFirstChildByPackageName(root string, name string) (string, bool) {
	entries, err := os.ReadDir(root)
	if err != nil || name == "" {
		return "", false
	}
	for _, entry := range entries {
		if matchesBundleEntry(entry.Name(), name, entry.IsDir()) {
			return filepath.Join(root, entry.Name()), true
		}
	}
	return "", false
}

func (a PluginDirsAdapter) BundleFolders(dir string) ([]string, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("bundle directory is empty")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("failed to list bundle directory").
			WithCause(err)
	}
	var folders []string
	for _, entry := range entries {
		if entry.IsDir() && !shouldSkipPluginDir(entry.Name()) {
			folders = append(folders, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(folders)
	return folders, nil
}

func matchesBundleEntry(entry string, name string, isDir bool) bool {
	base := entry
	if !isDir {
		if !strings.HasSuffix(entry, jarSuffix) {
			return false
		}
		base = strings.TrimSuffix(entry, jarSuffix)
	}
	if base == name {
		return true
	}
	rest, ok := strings.CutPrefix(base, name+"_")
	if !ok || rest == "" {
		return false
	}
	return rest[0] >= '0' && rest[0] <= '9'
}

func shouldSkipPluginDir(name string) bool {
	return strings.HasPrefix(name, ".")
}

var _ ports.PluginLocatorPort = PluginDirsAdapter{}
