package policies

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestBundlePolicyExcludesByPattern(t *testing.T) {
	policy := NewBundlePolicy([]string{"org.eclipse.swt.*", "com.sun.jna", " "}, nil, nil)

	tests := []struct {
		name string
		want bool
	}{
		{name: "org.eclipse.swt.gtk.linux.x86_64", want: true},
		{name: "org.eclipse.swt.", want: true},
		{name: "org.eclipse.swt", want: false},
		{name: "com.sun.jna", want: true},
		{name: "com.sun.jna.platform", want: false},
		{name: "org.jkiss.dbeaver.core", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, policy.IsExcluded(tt.name))
		})
	}
}

func TestBundlePolicyWildcardPreferOlder(t *testing.T) {
	policy := NewBundlePolicy(nil, []string{"*"}, nil)
	assert.True(t, policy.PreferOlder("anything"))
	assert.False(t, policy.IsExcluded("anything"))
}

func TestBundlePolicyCorrectsFolderNames(t *testing.T) {
	policy := NewBundlePolicy(nil, nil, map[string]string{
		"org.jkiss.bundle.gis": "org.jkiss.bundle.gis.runtime",
		"":                     "ignored",
		"blank":                " ",
	})

	got := []string{
		policy.CorrectFolderName("org.jkiss.bundle.gis"),
		policy.CorrectFolderName("blank"),
		policy.CorrectFolderName("other"),
	}
	want := []string{"org.jkiss.bundle.gis.runtime", "blank", "other"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected folder names (-want +got):\n%s", diff)
	}
}
