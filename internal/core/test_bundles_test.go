package core

import (
	"errors"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bundle-resolver/internal/types"
)

// failingManifests returns err for one path and defers to the rest.
type failingManifests struct {
	testManifests
	path string
	err  error
}

func (m failingManifests) ReadHeaders(path string) (map[string]string, error) {
	if path == m.path {
		return nil, m.err
	}
	return m.testManifests.ReadHeaders(path)
}

func TestResolveTestBundles(t *testing.T) {
	locator := testLocator{
		roots: []string{"plugins"},
		entries: map[string]map[string]string{"plugins": {
			"junit":    "plugins/junit",
			"core.lib": "plugins/core.lib",
		}},
		folders: map[string][]string{"tests": {
			"tests/core.lib.tests",
			"tests/docs",
			"tests/broken",
		}},
	}
	resolver := newTestResolver(t, locator, testManifests{
		"plugins/junit":        bundleHeaders("junit", "4.13.0"),
		"plugins/core.lib":     bundleHeaders("core.lib", "1.0.0"),
		"tests/core.lib.tests": bundleHeaders("core.lib.tests", "1.0.0", HeaderFragmentHost, "core.lib", HeaderRequireBundle, "junit"),
		"tests/broken":         {HeaderVersion: "1.0.0"},
	})

	err := resolver.ResolveTestBundles(t.Context(), RootFrame(resolver.Graph), []string{"junit", "mockito"}, []string{"tests", "missing"})
	require.NoError(t, err)

	var keys []string
	for _, info := range resolver.Registry.Bundles() {
		keys = append(keys, info.Key())
	}
	want := []string{"core.lib@1.0.0", "core.lib.tests@1.0.0", "junit@4.13.0"}
	if diff := cmp.Diff(want, keys); diff != "" {
		t.Fatalf("unexpected bundles (-want +got):\n%s", diff)
	}

	junit := resolver.Registry.BundlesByName("junit")
	require.Len(t, junit, 1)
	require.NotNil(t, junit[0].StartLevel)
	assert.Equal(t, 0, *junit[0].StartLevel)
	assert.Equal(t, []string{"mockito"}, resolver.Registry.Unresolved())
	assert.Equal(t, []string{"core.lib", "junit"}, resolver.Graph.Children("core.lib.tests"))
}

func TestResolveTestBundlesDownloadsRemoteLibrary(t *testing.T) {
	repo := &testRepo{name: "repo", dir: "cache", bundles: []types.CatalogEntry{{Name: "junit", Version: "5.0.0"}}}
	resolver := newTestResolver(t, testLocator{}, testManifests{}, repo)

	require.NoError(t, resolver.ResolveTestBundles(t.Context(), RootFrame(resolver.Graph), []string{"junit"}, nil))

	junit := resolver.Registry.BundlesByName("junit")
	require.Len(t, junit, 1)
	assert.Equal(t, "cache/junit_5.0.0.jar", junit[0].Path)
	assert.Nil(t, junit[0].StartLevel)
}

func TestResolveTestBundlesFailsOnUnreadableManifest(t *testing.T) {
	locator := testLocator{folders: map[string][]string{"tests": {"tests/core.lib.tests"}}}
	resolver := newTestResolver(t, locator, nil)
	resolver.Manifests = failingManifests{path: "tests/core.lib.tests", err: errors.New("permission denied")}

	err := resolver.ResolveTestBundles(t.Context(), RootFrame(resolver.Graph), nil, []string{"tests"})
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInternal, errbuilder.CodeOf(err))
}
