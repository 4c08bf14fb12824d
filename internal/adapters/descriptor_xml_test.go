package adapters

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bundle-resolver/internal/types"
)

func writeFile(t *testing.T, path string, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func intPtr(v int) *int {
	return &v
}

func TestProductXMLAdapterRead(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), "app.product"), `<?xml version="1.0" encoding="UTF-8"?>
<product name="App" uid="app.product" id="org.example.app" version="1.0.0.qualifier">
  <plugins>
    <plugin id="org.example.core" version="1.0.0.qualifier"/>
    <plugin id="org.example.ui.gtk" fragment="true" ws="gtk" os="linux"/>
    <plugin id=""/>
  </plugins>
  <features>
    <feature id="org.example.base.feature" version="1.0.0"/>
  </features>
  <configurations>
    <plugin id="org.example.core" autoStart="true" startLevel="4"/>
    <plugin id="org.eclipse.equinox.ds" autoStart="true" startLevel="2"/>
  </configurations>
</product>`)

	descriptor, err := NewProductXMLAdapter().Read(path)
	require.NoError(t, err)

	want := types.Descriptor{
		Kind:    types.DescriptorKindProduct,
		ID:      "org.example.app",
		Version: "1.0.0.qualifier",
		Plugins: []types.PluginEntry{
			{ID: "org.example.core", Version: "1.0.0.qualifier", StartLevel: intPtr(4)},
			{ID: "org.example.ui.gtk", Fragment: true, Platform: types.PlatformFilter{OS: "linux", WS: "gtk"}},
			{ID: "org.eclipse.equinox.ds", StartLevel: intPtr(2)},
		},
		Features: []types.FeatureEntry{{ID: "org.example.base.feature", Version: "1.0.0"}},
	}
	if diff := cmp.Diff(want, descriptor); diff != "" {
		t.Fatalf("unexpected product (-want +got):\n%s", diff)
	}
	assert.Equal(t, types.DescriptorKindProduct, NewProductXMLAdapter().Kind())
}

func TestProductXMLAdapterRejectsBadStartLevel(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), "app.product"), `<product id="app">
  <configurations><plugin id="core" startLevel="high"/></configurations>
</product>`)
	_, err := NewProductXMLAdapter().Read(path)
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}

func TestFeatureXMLAdapterRead(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), "feature.xml"), `<?xml version="1.0" encoding="UTF-8"?>
<feature id="org.example.base.feature" label="Base" version="1.2.0">
  <requires>
    <import plugin="org.example.util" version="1.0.0" match="compatible"/>
    <import feature="org.example.rt.feature" version="2.0.0"/>
  </requires>
  <includes id="org.example.ui.feature" version="0.0.0" os="win32"/>
  <plugin id="org.example.core" version="0.0.0" unpack="false"/>
  <plugin id="org.example.core.linux" os="linux" arch="x86_64" fragment="true"/>
</feature>`)

	descriptor, err := NewFeatureXMLAdapter().Read(path)
	require.NoError(t, err)

	want := types.Descriptor{
		Kind:    types.DescriptorKindFeature,
		ID:      "org.example.base.feature",
		Version: "1.2.0",
		Plugins: []types.PluginEntry{
			{ID: "org.example.core", Version: "0.0.0"},
			{ID: "org.example.core.linux", Fragment: true, Platform: types.PlatformFilter{OS: "linux", Arch: "x86_64"}},
			{ID: "org.example.util", Version: "1.0.0"},
		},
		Features: []types.FeatureEntry{
			{ID: "org.example.rt.feature", Version: "2.0.0"},
			{ID: "org.example.ui.feature", Version: "0.0.0", Platform: types.PlatformFilter{OS: "win32"}},
		},
	}
	if diff := cmp.Diff(want, descriptor); diff != "" {
		t.Fatalf("unexpected feature (-want +got):\n%s", diff)
	}
}

func TestDescriptorReadErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := NewFeatureXMLAdapter().Read(filepath.Join(dir, "missing.xml"))
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))

	broken := writeFile(t, filepath.Join(dir, "broken.xml"), "<feature id=")
	_, err = NewFeatureXMLAdapter().Read(broken)
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}
