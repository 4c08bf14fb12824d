package app

import (
	"sort"

	"bundle-resolver/internal/core"
	"bundle-resolver/internal/types"
)

func resolvedBundles(registry *core.Registry) []types.ResolvedBundle {
	var out []types.ResolvedBundle
	for _, info := range registry.Bundles() {
		out = append(out, resolvedBundle(info, registry.Fragments(info.Key())))
	}
	return out
}

func resolvedBundle(info *types.BundleInfo, fragments []*types.BundleInfo) types.ResolvedBundle {
	bundle := types.ResolvedBundle{
		Name:                         info.Name,
		Version:                      info.Version,
		Path:                         info.Path,
		StartLevel:                   info.StartLevel,
		Classpath:                    info.ClasspathLibs,
		RequiredFragments:            info.RequiredFragments,
		RequiredExecutionEnvironment: info.RequiredExecutionEnvironment,
	}
	for _, ref := range info.RequireBundles {
		bundle.Requires = append(bundle.Requires, ref.String())
	}
	for name := range info.ReexportedBundles {
		bundle.Reexports = append(bundle.Reexports, name)
	}
	sort.Strings(bundle.Reexports)
	if info.FragmentHost != nil {
		bundle.FragmentHost = info.FragmentHost.String()
	}
	for _, fragment := range fragments {
		bundle.Fragments = append(bundle.Fragments, fragment.Key())
	}
	sort.Strings(bundle.Fragments)
	return bundle
}
