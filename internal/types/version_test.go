package types

import (
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		input string
		want  Version
	}{
		{input: "1.2.3", want: Version{Major: 1, Minor: 2, Micro: 3}},
		{input: "1", want: Version{Major: 1}},
		{input: "1.2", want: Version{Major: 1, Minor: 2}},
		{input: "1.2.3.v20240101-1200", want: Version{Major: 1, Minor: 2, Micro: 3, Qualifier: "v20240101-1200"}},
		{input: "1.2.3.a.b", want: Version{Major: 1, Minor: 2, Micro: 3, Qualifier: "a.b"}},
		{input: "3-SNAPSHOT.x", want: Version{Major: 3}},
		{input: "", want: Version{}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, ParseVersion(tt.input)); diff != "" {
				t.Fatalf("unexpected version (-want +got):\n%s", diff)
			}
		})
	}
}

func TestVersionCompare(t *testing.T) {
	assert.Equal(t, -1, ParseVersion("1.0.0").Compare(ParseVersion("1.0.1")))
	assert.Equal(t, 1, ParseVersion("1.10.0").Compare(ParseVersion("1.9.0")))
	assert.Equal(t, 0, ParseVersion("1.0").Compare(ParseVersion("1.0.0")))
	assert.Equal(t, -1, ParseVersion("1.0.0").Compare(ParseVersion("1.0.0.qualifier")))
	assert.Equal(t, 1, ParseVersion("1.0.0.b").Compare(ParseVersion("1.0.0.a")))
}

func TestVersionRangeSuitability(t *testing.T) {
	v1, v2, v3 := ParseVersion("1.0.0"), ParseVersion("1.5.0"), ParseVersion("2.0.0")

	halfOpen, err := ParseVersionRange("[1.0.0,2.0.0)")
	require.NoError(t, err)
	assert.True(t, halfOpen.IsSuitable(v1))
	assert.True(t, halfOpen.IsSuitable(v2))
	assert.False(t, halfOpen.IsSuitable(v3))

	closed, err := ParseVersionRange("[1.0.0,2.0.0]")
	require.NoError(t, err)
	assert.True(t, closed.IsSuitable(v3))

	open, err := ParseVersionRange("(1.0.0,2.0.0)")
	require.NoError(t, err)
	assert.False(t, open.IsSuitable(v1))
	assert.True(t, open.IsSuitable(v2))
}

func TestParseVersionRange(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantNil  bool
		rendered string
	}{
		{name: "empty", input: "", wantNil: true},
		{name: "zero sentinel", input: "0.0.0", wantNil: true},
		{name: "bare version", input: "1.2.0", rendered: "1.2.0"},
		{name: "quoted", input: `"[1.0.0,2.0.0)"`, rendered: "[1.0.0,2.0.0)"},
		{name: "doubled parentheses", input: "((1.0.0,2.0.0))", rendered: "(1.0.0,2.0.0)"},
		{name: "short versions", input: "[1,2)", rendered: "[1.0.0,2.0.0)"},
		{name: "open upper", input: "[1.0.0,)", rendered: "1.0.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := ParseVersionRange(tt.input)
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, r)
				return
			}
			require.NotNil(t, r)
			assert.Equal(t, tt.rendered, r.String())
		})
	}
}

func TestParseVersionRangeRoundTrip(t *testing.T) {
	r, err := ParseVersionRange("[1.0.0,2.0.0)")
	require.NoError(t, err)
	again, err := ParseVersionRange(r.String())
	require.NoError(t, err)
	if diff := cmp.Diff(r, again); diff != "" {
		t.Fatalf("round trip changed range (-want +got):\n%s", diff)
	}
}

func TestParseVersionRangeMalformed(t *testing.T) {
	for _, input := range []string{"[1.0.0]", "[1.0.0,2.0.0", "x[1.0.0,2.0.0)", "[1,2,3)"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseVersionRange(input)
			require.Error(t, err)
			assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
		})
	}
}

func TestIsCompatible(t *testing.T) {
	r, err := ParseVersionRange("[1.0.0,2.0.0)")
	require.NoError(t, err)
	inside, outside := ParseVersion("1.1.0"), ParseVersion("2.1.0")

	assert.True(t, IsCompatible(nil, &outside))
	assert.True(t, IsCompatible(r, nil))
	assert.True(t, IsCompatible(r, &inside))
	assert.False(t, IsCompatible(r, &outside))
}

func TestBundleRefKeyAndString(t *testing.T) {
	r, err := ParseVersionRange("[1.0.0,2.0.0)")
	require.NoError(t, err)
	ranged := BundleRef{Name: "core.lib", Range: r}
	bare := BundleRef{Name: "core.lib"}

	assert.Equal(t, "core.lib [1.0.0,2.0.0)", ranged.String())
	assert.Equal(t, "core.lib", bare.String())
	assert.NotEqual(t, ranged.Key(), bare.Key())
}

func TestBundleInfoCopies(t *testing.T) {
	level := 4
	info := NewBundleInfoBuilder().Name("core.lib").Version("1.0.0").Path("a").Build()
	leveled := info.WithStartLevel(&level)
	moved := info.WithPath("b")

	assert.Nil(t, info.StartLevel)
	assert.Equal(t, "a", info.Path)
	assert.Equal(t, 4, *leveled.StartLevel)
	assert.Equal(t, "b", moved.Path)
	assert.Equal(t, "core.lib@1.0.0", moved.Key())
	assert.NotNil(t, info.ReexportedBundles)
	assert.False(t, info.IsFragment())
}
