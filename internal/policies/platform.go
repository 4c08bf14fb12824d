package policies

import (
	"strings"

	"bundle-resolver/internal/ports"
	"bundle-resolver/internal/types"
)

// Platform is the os/ws/arch triple a build targets. An empty field
// accepts every value for that attribute.
type Platform struct {
	OS   string
	WS   string
	Arch string
}

func NewPlatform(os string, ws string, arch string) Platform {
	return Platform{
		OS:   strings.TrimSpace(os),
		WS:   strings.TrimSpace(ws),
		Arch: strings.TrimSpace(arch),
	}
}

// Matches reports whether a descriptor element declared for filter applies
// to this platform.
func (p Platform) Matches(filter types.PlatformFilter) bool {
	return matchesDeclared(p.OS, filter.OS) &&
		matchesDeclared(p.WS, filter.WS) &&
		matchesDeclared(p.Arch, filter.Arch)
}

// Accept applies the same rule to catalog entries.
func (p Platform) Accept(entry types.CatalogEntry) bool {
	return p.Matches(types.PlatformFilter{OS: entry.OS, WS: entry.WS, Arch: entry.Arch})
}

func matchesDeclared(target string, declared string) bool {
	declared = strings.TrimSpace(declared)
	if target == "" || declared == "" {
		return true
	}
	for _, value := range strings.Split(declared, ",") {
		if strings.EqualFold(strings.TrimSpace(value), target) {
			return true
		}
	}
	return false
}

var _ ports.PlatformPort = Platform{}
