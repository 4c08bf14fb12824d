package adapters

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"bundle-resolver/internal/ports"
)

const featureXMLName = "feature.xml"

// FeatureStorageAdapter maps feature folder names to their feature.xml.
// The first root containing a feature wins.
type FeatureStorageAdapter struct {
	files map[string]string
}

// LoadFeatureStorage indexes the feature folders directly under roots.
func LoadFeatureStorage(ctx context.Context, roots []string) FeatureStorageAdapter {
	files := map[string]string{}
	for _, root := range roots {
		entries, err := os.ReadDir(root)
		if err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("root", root).Msg("no feature folders found")
			continue
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			path := filepath.Join(root, entry.Name(), featureXMLName)
			if _, err := os.Stat(path); err != nil {
				log.Ctx(ctx).Warn().Str("folder", filepath.Join(root, entry.Name())).Msgf("%s is not found", featureXMLName)
				continue
			}
			for _, name := range featureNames(entry.Name()) {
				if _, ok := files[name]; !ok {
					files[name] = path
				}
			}
		}
	}
	return FeatureStorageAdapter{files: files}
}

// featureNames returns the folder name and, for "name_<version>" folders,
// the bare feature name.
func featureNames(folder string) []string {
	names := []string{folder}
	for i := len(folder) - 1; i > 0; i-- {
		if folder[i] != '_' {
			continue
		}
		if matchesBundleEntry(folder, folder[:i], true) {
			names = append(names, folder[:i])
		}
		break
	}
	return names
}

func (a FeatureStorageAdapter) FeatureXML(name string) (string, bool) {
	path, ok := a.files[name]
	return path, ok
}

var _ ports.FeatureStoragePort = FeatureStorageAdapter{}
