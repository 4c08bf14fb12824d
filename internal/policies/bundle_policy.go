package policies

import (
	"strings"

	"bundle-resolver/internal/ports"
)

// BundlePolicy decides which bundles are skipped, which prefer the oldest
// remote version, and where a bundle's folder is found on disk. Patterns
// are exact names, prefixes ending in "*", or "*" alone.
type BundlePolicy struct {
	exclude     patternSet
	preferOlder patternSet
	folderNames map[string]string
}

func NewBundlePolicy(exclude []string, preferOlder []string, folderNames map[string]string) BundlePolicy {
	names := make(map[string]string, len(folderNames))
	for name, folder := range folderNames {
		name, folder = strings.TrimSpace(name), strings.TrimSpace(folder)
		if name == "" || folder == "" {
			continue
		}
		names[name] = folder
	}
	return BundlePolicy{
		exclude:     compilePatterns(exclude),
		preferOlder: compilePatterns(preferOlder),
		folderNames: names,
	}
}

func (p BundlePolicy) IsExcluded(name string) bool {
	return p.exclude.matches(name)
}

func (p BundlePolicy) PreferOlder(name string) bool {
	return p.preferOlder.matches(name)
}

func (p BundlePolicy) CorrectFolderName(name string) string {
	if folder, ok := p.folderNames[name]; ok {
		return folder
	}
	return name
}

type patternKind int

const (
	patternExact patternKind = iota
	patternPrefix
	patternWildcard
	patternInvalid
)

type patternSet struct {
	exact    map[string]struct{}
	prefixes []string
	wildcard bool
}

func compilePatterns(patterns []string) patternSet {
	set := patternSet{exact: map[string]struct{}{}}
	for _, pattern := range patterns {
		name, kind := parseNamePattern(pattern)
		switch kind {
		case patternWildcard:
			set.wildcard = true
		case patternExact:
			set.exact[name] = struct{}{}
		case patternPrefix:
			set.prefixes = append(set.prefixes, name)
		}
	}
	return set
}

func (s patternSet) matches(name string) bool {
	if s.wildcard {
		return true
	}
	if _, ok := s.exact[name]; ok {
		return true
	}
	for _, prefix := range s.prefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

func parseNamePattern(value string) (string, patternKind) {
	pattern := strings.TrimSpace(value)
	if pattern == "" {
		return "", patternInvalid
	}
	if pattern == "*" {
		return "", patternWildcard
	}
	if strings.HasSuffix(pattern, "*") {
		return strings.TrimSuffix(pattern, "*"), patternPrefix
	}
	return pattern, patternExact
}

var _ ports.BundlePolicyPort = BundlePolicy{}
