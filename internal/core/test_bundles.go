package core

import (
	"context"
	"path/filepath"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"bundle-resolver/internal/types"
)

// testLibraryStartLevel is assigned to test libraries found locally.
const testLibraryStartLevel = 0

// ResolveTestBundles registers the named test libraries and every bundle
// directly under the test directories, then resolves their required
// bundles and fragment hosts. A test bundle whose manifest exists but
// cannot be read fails the call.
func (r *PluginResolver) ResolveTestBundles(ctx context.Context, frame Frame, libraries []string, dirs []string) error {
	var pending []*types.BundleInfo
	for _, library := range libraries {
		pending = append(pending, r.testLibrary(ctx, library)...)
	}

	for _, dir := range dirs {
		bundles, err := r.testBundlesIn(ctx, dir)
		if err != nil {
			return err
		}
		pending = append(pending, bundles...)
	}

	for _, info := range pending {
		r.Registry.AddBundle(info)
		child := frame.descend(r.Graph.Traverse(frame.Node, info.Name), info.Key())
		for _, required := range info.RequireBundles {
			if err := r.Resolve(ctx, child, required, nil); err != nil {
				log.Ctx(ctx).Error().Err(err).
					Str("bundle", info.Key()).
					Str("requires", required.String()).
					Msg("test bundle requirement not resolved")
			}
		}
		if info.FragmentHost != nil {
			if err := r.Resolve(ctx, child, *info.FragmentHost, nil); err != nil {
				log.Ctx(ctx).Error().Err(err).
					Str("bundle", info.Key()).
					Str("host", info.FragmentHost.String()).
					Msg("test bundle fragment host not resolved")
			}
		}
	}
	return nil
}

// testLibrary returns the bundles newly registered for a test library. A
// library that is already registered contributes nothing.
func (r *PluginResolver) testLibrary(ctx context.Context, name string) []*types.BundleInfo {
	if len(r.Registry.BundlesByName(name)) > 0 {
		return nil
	}
	level := testLibraryStartLevel
	folder := r.Policy.CorrectFolderName(name)
	var found []*types.BundleInfo
	for _, root := range r.Locator.BundleRoots() {
		path, ok := r.Locator.FindFirstChildByPackageName(root, folder)
		if !ok {
			continue
		}
		info, err := r.readBundle(path, &level)
		if err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("path", path).Msg("couldn't extract test library info")
			continue
		}
		found = append(found, info)
	}
	if len(found) > 0 {
		return found
	}

	remotes := r.Cache.RemoteBundlesByName(name)
	if len(remotes) == 0 {
		log.Ctx(ctx).Warn().Str("library", name).Msg("test library not found")
		r.Registry.MarkUnresolved(types.BundleRef{Name: name})
		return nil
	}
	info, err := r.materialize(ctx, remotes[0], nil)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("library", name).Msg("test library download failed")
		r.Registry.MarkUnresolved(types.BundleRef{Name: name})
		return nil
	}
	return []*types.BundleInfo{info}
}

// testBundlesIn reads the manifest of every folder directly under dir.
// Folders without a manifest are skipped.
func (r *PluginResolver) testBundlesIn(ctx context.Context, dir string) ([]*types.BundleInfo, error) {
	folders, err := r.Locator.BundleFolders(dir)
	if err != nil {
		log.Ctx(ctx).Debug().Err(err).Str("dir", dir).Msg("skipping test bundle directory")
		return nil, nil
	}
	var bundles []*types.BundleInfo
	for _, folder := range folders {
		info, err := r.readBundle(folder, nil)
		if err != nil {
			switch errbuilder.CodeOf(err) {
			case errbuilder.CodeNotFound:
				continue
			case errbuilder.CodeInvalidArgument:
				log.Ctx(ctx).Warn().Err(err).Str("path", folder).Msg("skipping test bundle")
				continue
			}
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to read test bundle " + filepath.Base(folder)).
				WithCause(err)
		}
		bundles = append(bundles, info)
	}
	return bundles, nil
}
