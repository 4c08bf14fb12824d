package adapters

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFeatureStorage(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	writeFile(t, filepath.Join(first, "base.feature", "feature.xml"), "<feature/>")
	writeFile(t, filepath.Join(first, "ui.feature_1.2.0", "feature.xml"), "<feature/>")
	require.NoError(t, os.MkdirAll(filepath.Join(first, "empty.feature"), 0755))
	writeFile(t, filepath.Join(second, "base.feature", "feature.xml"), "<feature/>")
	writeFile(t, filepath.Join(second, "rt.feature", "feature.xml"), "<feature/>")

	storage := LoadFeatureStorage(t.Context(), []string{first, filepath.Join(first, "missing"), second})

	path, ok := storage.FeatureXML("base.feature")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(first, "base.feature", "feature.xml"), path)

	path, ok = storage.FeatureXML("ui.feature")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(first, "ui.feature_1.2.0", "feature.xml"), path)
	_, ok = storage.FeatureXML("ui.feature_1.2.0")
	assert.True(t, ok)

	_, ok = storage.FeatureXML("rt.feature")
	assert.True(t, ok)
	_, ok = storage.FeatureXML("empty.feature")
	assert.False(t, ok)
}
