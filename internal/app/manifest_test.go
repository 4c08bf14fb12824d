package app

import (
	"path/filepath"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bundle-resolver/internal/types"
)

func TestManifest(t *testing.T) {
	folder := writeBundle(t, t.TempDir(), "ui.lib.linux", "2.0.0",
		`Fragment-Host: ui.lib;bundle-version="[2.0.0,3.0.0)"`,
		"Bundle-ClassPath: .,lib/native.jar",
		"Require-Bundle: core.lib;visibility:=reexport,util.lib",
	)

	result, err := testService(&fakeRenderer{}).Manifest(t.Context(), ManifestRequest{Path: folder})
	require.NoError(t, err)

	want := types.ResolvedBundle{
		Name:         "ui.lib.linux",
		Version:      "2.0.0",
		Path:         folder,
		Classpath:    []string{"lib/native.jar"},
		Requires:     []string{"core.lib", "util.lib"},
		Reexports:    []string{"core.lib"},
		FragmentHost: "ui.lib [2.0.0,3.0.0)",
	}
	if diff := cmp.Diff(want, result.Bundle); diff != "" {
		t.Fatalf("unexpected bundle (-want +got):\n%s", diff)
	}
}

func TestManifestErrors(t *testing.T) {
	service := testService(&fakeRenderer{})

	_, err := service.Manifest(t.Context(), ManifestRequest{Path: "  "})
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))

	_, err = service.Manifest(t.Context(), ManifestRequest{Path: filepath.Join(t.TempDir(), "absent")})
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))
}
