package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bundle-resolver/internal/ports"
)

func TestRecorderCountsOutcomes(t *testing.T) {
	r := NewRecorder()
	r.ObserveResolution(ports.OutcomeLocal)
	r.ObserveResolution(ports.OutcomeLocal)
	r.ObserveResolution(ports.OutcomeNotFound)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.resolutions.WithLabelValues(ports.OutcomeLocal)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.resolutions.WithLabelValues(ports.OutcomeNotFound)))
}

func TestRecorderCountsDownloadErrors(t *testing.T) {
	r := NewRecorder()
	r.ObserveDownload("bundle", time.Second, nil)
	r.ObserveDownload("bundle", time.Second, errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(r.downloads.WithLabelValues("bundle")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.downloadErrors.WithLabelValues("bundle")))
}

func TestRecorderWritesTextfile(t *testing.T) {
	r := NewRecorder()
	r.ObserveResolution(ports.OutcomeRemote)
	r.ObserveRun(3, 1)

	path := filepath.Join(t.TempDir(), "bundle-resolver.prom")
	require.NoError(t, r.WriteTextfile(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), `bundle_resolver_resolutions_total{outcome="remote"} 1`)
	assert.Contains(t, string(content), "bundle_resolver_bundles 3")
	assert.Contains(t, string(content), "bundle_resolver_unresolved 1")
}
