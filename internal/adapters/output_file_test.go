package adapters

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"bundle-resolver/internal/types"
)

func TestOutputFileAdapterFormats(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	adapter := NewOutputFileAdapter(dir)
	level := 4
	bundles := []types.ResolvedBundle{
		{Name: "util.lib", Version: "1.1.0", Path: "plugins/util.lib"},
		{Name: "core.lib", Version: "1.2.0", Path: "plugins/core.lib", StartLevel: &level, Requires: []string{"util.lib [1.0.0,2.0.0)"}},
	}

	require.NoError(t, adapter.WriteBundlesLock(bundles))
	data, err := os.ReadFile(filepath.Join(dir, BundlesLockFile))
	require.NoError(t, err)
	if diff := cmp.Diff("core.lib=1.2.0\nutil.lib=1.1.0", strings.TrimSpace(string(data))); diff != "" {
		t.Fatalf("unexpected bundles.lock content (-want +got):\n%s", diff)
	}

	report := types.ResolutionReport{
		RunID:      "run-1",
		Product:    "org.example.app",
		Bundles:    bundles,
		Features:   map[string][]string{"base": {"core.lib@1.2.0"}},
		Unresolved: []string{"gone.lib"},
	}
	require.NoError(t, adapter.WriteReport(report))
	data, err = os.ReadFile(filepath.Join(dir, ReportFile))
	require.NoError(t, err)
	var decoded types.ResolutionReport
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, "run-1", decoded.RunID)
	require.Len(t, decoded.Bundles, 2)
	assert.Equal(t, "core.lib", decoded.Bundles[0].Name)
	require.NotNil(t, decoded.Bundles[0].StartLevel)
	assert.Equal(t, 4, *decoded.Bundles[0].StartLevel)
	assert.Equal(t, []string{"gone.lib"}, decoded.Unresolved)
	assert.Equal(t, "util.lib", report.Bundles[0].Name, "caller slice must not be reordered")

	require.NoError(t, adapter.WriteFeatures(nil))
	data, err = os.ReadFile(filepath.Join(dir, FeaturesFile))
	require.NoError(t, err)
	assert.Equal(t, "{}", strings.TrimSpace(string(data)))
}

func TestOutputFileAdapterGraph(t *testing.T) {
	dir := t.TempDir()
	adapter := NewOutputFileAdapter(dir)

	dot, err := adapter.WriteGraphDOT("app", []types.GraphEdge{
		{From: "app", To: "core.lib"},
		{From: "core.lib", To: "util.lib"},
	})
	require.NoError(t, err)
	want := `digraph bundles {
  rankdir=LR;
  node [shape=box, style="rounded,filled", fillcolor=white];
  "app" [shape=doubleoctagon, fillcolor=lightgrey];
  "app" -> "core.lib";
  "core.lib" -> "util.lib";
}
`
	if diff := cmp.Diff(want, dot); diff != "" {
		t.Fatalf("unexpected DOT (-want +got):\n%s", diff)
	}
	written, err := os.ReadFile(filepath.Join(dir, GraphDOTFile))
	require.NoError(t, err)
	assert.Equal(t, dot, string(written))

	require.NoError(t, adapter.WriteGraphSVG([]byte("<svg/>")))
	assert.FileExists(t, filepath.Join(dir, GraphSVGFile))
}

func TestOutputFileAdapterRequiresDir(t *testing.T) {
	err := NewOutputFileAdapter("").WriteBundlesLock(nil)
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}
