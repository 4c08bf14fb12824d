package types

import "fmt"

// BundleRef names a bundle and optionally constrains its version.
type BundleRef struct {
	Name  string
	Range *VersionRange
}

func (r BundleRef) String() string {
	if r.Range == nil {
		return r.Name
	}
	return fmt.Sprintf("%s %s", r.Name, r.Range.String())
}

// Key identifies the reference for memoization. Two references with the
// same name and an equal rendered range share a key.
func (r BundleRef) Key() string {
	return r.Name + "|" + r.Range.String()
}

// PackageExport is an Export-Package clause with its exact version.
type PackageExport struct {
	Name    string
	Version *Version
}

// PackageImport is an Import-Package clause with its optional range.
type PackageImport struct {
	Name  string
	Range *VersionRange
}

// BundleInfo is the parsed metadata of one bundle. It is not modified after
// construction; use the With* methods to derive an updated copy.
type BundleInfo struct {
	Path                         string
	Name                         string
	Version                      string
	ClasspathLibs                []string
	RequireBundles               []BundleRef
	ReexportedBundles            map[string]struct{}
	ExportPackages               []PackageExport
	ImportPackages               []PackageImport
	RequiredFragments            []string
	FragmentHost                 *BundleRef
	StartLevel                   *int
	RequiredExecutionEnvironment string
}

// Key identifies a concrete bundle version: name@version.
func (b *BundleInfo) Key() string {
	return BundleKey(b.Name, b.Version)
}

func BundleKey(name string, version string) string {
	return name + "@" + version
}

// ParsedVersion returns the bundle version as a Version.
func (b *BundleInfo) ParsedVersion() Version {
	return ParseVersion(b.Version)
}

func (b *BundleInfo) IsFragment() bool {
	return b.FragmentHost != nil
}

func (b *BundleInfo) Reexports(name string) bool {
	_, ok := b.ReexportedBundles[name]
	return ok
}

// WithStartLevel returns a copy carrying the given start level.
func (b *BundleInfo) WithStartLevel(level *int) *BundleInfo {
	clone := *b
	clone.StartLevel = level
	return &clone
}

// WithPath returns a copy located at path.
func (b *BundleInfo) WithPath(path string) *BundleInfo {
	clone := *b
	clone.Path = path
	return &clone
}

// BundleInfoBuilder collects the independent optional fields of a
// BundleInfo.
type BundleInfoBuilder struct {
	info BundleInfo
}

func NewBundleInfoBuilder() *BundleInfoBuilder {
	return &BundleInfoBuilder{}
}

func (b *BundleInfoBuilder) Path(path string) *BundleInfoBuilder {
	b.info.Path = path
	return b
}

func (b *BundleInfoBuilder) Name(name string) *BundleInfoBuilder {
	b.info.Name = name
	return b
}

func (b *BundleInfoBuilder) Version(version string) *BundleInfoBuilder {
	b.info.Version = version
	return b
}

func (b *BundleInfoBuilder) ClasspathLibs(libs []string) *BundleInfoBuilder {
	b.info.ClasspathLibs = libs
	return b
}

func (b *BundleInfoBuilder) RequireBundles(refs []BundleRef) *BundleInfoBuilder {
	b.info.RequireBundles = refs
	return b
}

func (b *BundleInfoBuilder) ReexportedBundles(names map[string]struct{}) *BundleInfoBuilder {
	b.info.ReexportedBundles = names
	return b
}

func (b *BundleInfoBuilder) ExportPackages(exports []PackageExport) *BundleInfoBuilder {
	b.info.ExportPackages = exports
	return b
}

func (b *BundleInfoBuilder) ImportPackages(imports []PackageImport) *BundleInfoBuilder {
	b.info.ImportPackages = imports
	return b
}

func (b *BundleInfoBuilder) RequiredFragments(names []string) *BundleInfoBuilder {
	b.info.RequiredFragments = names
	return b
}

func (b *BundleInfoBuilder) FragmentHost(host *BundleRef) *BundleInfoBuilder {
	b.info.FragmentHost = host
	return b
}

func (b *BundleInfoBuilder) StartLevel(level *int) *BundleInfoBuilder {
	b.info.StartLevel = level
	return b
}

func (b *BundleInfoBuilder) RequiredExecutionEnvironment(env string) *BundleInfoBuilder {
	b.info.RequiredExecutionEnvironment = env
	return b
}

func (b *BundleInfoBuilder) Build() *BundleInfo {
	info := b.info
	if info.ReexportedBundles == nil {
		info.ReexportedBundles = map[string]struct{}{}
	}
	return &info
}
