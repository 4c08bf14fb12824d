package core

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"bundle-resolver/internal/types"
)

// Manifest header names read by ParseManifest.
const (
	HeaderSymbolicName      = "Bundle-SymbolicName"
	HeaderVersion           = "Bundle-Version"
	HeaderClassPath         = "Bundle-ClassPath"
	HeaderRequireBundle     = "Require-Bundle"
	HeaderRequireFragment   = "X-Require-Fragment"
	HeaderExecutionEnv      = "Bundle-RequiredExecutionEnvironment"
	HeaderExportPackage     = "Export-Package"
	HeaderImportPackage     = "Import-Package"
	HeaderFragmentHost      = "Fragment-Host"
	directiveOptional       = "resolution:=optional"
	directiveReexport       = "visibility:=reexport"
	classpathCurrentDirName = "."
)

// versionAttr captures the value of a version= or bundle-version= attribute,
// quoted or bare. The leading .* makes the last occurrence win.
var versionAttr = regexp.MustCompile(`.*(?:version|bundle-version)=(?:"([^"]*)"?|([^;,\s"]+))`)

// ParseManifest turns manifest main-section headers into a BundleInfo. A
// missing Bundle-SymbolicName or a malformed version range in any clause
// fails the whole bundle.
func ParseManifest(path string, startLevel *int, headers map[string]string) (*types.BundleInfo, error) {
	symbolicName, ok := headers[HeaderSymbolicName]
	if !ok || strings.TrimSpace(symbolicName) == "" {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("manifest without %s: %s", HeaderSymbolicName, path))
	}

	requireBundles, err := parseRequireBundles(headers[HeaderRequireBundle])
	if err != nil {
		return nil, manifestClauseError(path, HeaderRequireBundle, err)
	}
	exports, err := parseExportPackages(headers[HeaderExportPackage])
	if err != nil {
		return nil, manifestClauseError(path, HeaderExportPackage, err)
	}
	imports, err := parseImportPackages(headers[HeaderImportPackage])
	if err != nil {
		return nil, manifestClauseError(path, HeaderImportPackage, err)
	}
	fragmentHost, err := parseFragmentHost(headers[HeaderFragmentHost])
	if err != nil {
		return nil, manifestClauseError(path, HeaderFragmentHost, err)
	}

	var execEnv string
	if value, ok := headers[HeaderExecutionEnv]; ok {
		execEnv = strings.TrimSpace(value)
	}

	return types.NewBundleInfoBuilder().
		Path(path).
		Name(TrimBundleName(symbolicName)).
		Version(strings.TrimSpace(headers[HeaderVersion])).
		ClasspathLibs(parseBundleClasspath(headers[HeaderClassPath])).
		RequireBundles(requireBundles).
		ReexportedBundles(parseReexportedBundles(headers[HeaderRequireBundle])).
		ExportPackages(exports).
		ImportPackages(imports).
		RequiredFragments(parseRequiredFragments(headers[HeaderRequireFragment])).
		FragmentHost(fragmentHost).
		StartLevel(startLevel).
		RequiredExecutionEnvironment(execEnv).
		Build(), nil
}

func manifestClauseError(path string, header string, err error) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(fmt.Sprintf("invalid %s in %s", header, path)).
		WithCause(err)
}

// TrimBundleName strips attributes and directives from a clause, leaving
// the bare symbolic or package name.
func TrimBundleName(clause string) string {
	name, _, _ := strings.Cut(clause, ";")
	return strings.TrimSpace(name)
}

// SplitTopLevel splits a header value on commas that are outside every
// (), [] and {} pair and outside double quotes.
func SplitTopLevel(value string) []string {
	var (
		out     []string
		current strings.Builder
		depth   []rune
		quoted  bool
	)
	flush := func() {
		clause := strings.TrimSpace(current.String())
		if clause != "" {
			out = append(out, clause)
		}
		current.Reset()
	}
	for _, c := range value {
		switch {
		case c == '"':
			quoted = !quoted
		case quoted:
		case c == '(' || c == '[' || c == '{':
			depth = append(depth, c)
		case c == ')' || c == ']' || c == '}':
			if len(depth) > 0 {
				depth = depth[:len(depth)-1]
			}
		case c == ',' && len(depth) == 0:
			flush()
			continue
		}
		current.WriteRune(c)
	}
	flush()
	return out
}

// clauses splits a header and drops resolution:=optional entries.
func clauses(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	var out []string
	for _, clause := range SplitTopLevel(value) {
		if strings.Contains(clause, directiveOptional) {
			continue
		}
		out = append(out, clause)
	}
	return out
}

// clauseVersion returns the version attribute of a clause, if any.
func clauseVersion(clause string) (string, bool) {
	m := versionAttr.FindStringSubmatch(clause)
	if m == nil {
		return "", false
	}
	if m[1] != "" {
		return m[1], true
	}
	return m[2], m[2] != ""
}

// ParseBundleRef reads a single Require-Bundle style clause, such as
// `org.example.core;bundle-version="[1.0.0,2.0.0)"`, into a reference.
func ParseBundleRef(clause string) (types.BundleRef, error) {
	ref, err := clauseRef(clause)
	if err != nil {
		return types.BundleRef{}, err
	}
	if ref.Name == "" {
		return types.BundleRef{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("bundle reference without name: %q", clause))
	}
	return ref, nil
}

func clauseRef(clause string) (types.BundleRef, error) {
	ref := types.BundleRef{Name: TrimBundleName(clause)}
	if raw, ok := clauseVersion(clause); ok {
		r, err := types.ParseVersionRange(raw)
		if err != nil {
			return types.BundleRef{}, err
		}
		ref.Range = r
	}
	return ref, nil
}

func parseRequireBundles(value string) ([]types.BundleRef, error) {
	var refs []types.BundleRef
	for _, clause := range clauses(value) {
		ref, err := clauseRef(clause)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

func parseReexportedBundles(value string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, clause := range clauses(value) {
		if strings.Contains(clause, directiveReexport) {
			out[TrimBundleName(clause)] = struct{}{}
		}
	}
	return out
}

func parseRequiredFragments(value string) []string {
	var names []string
	for _, clause := range clauses(value) {
		names = append(names, TrimBundleName(clause))
	}
	return names
}

func parseBundleClasspath(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	var libs []string
	for _, entry := range SplitTopLevel(value) {
		lib := strings.TrimSpace(entry)
		if lib == classpathCurrentDirName {
			continue
		}
		libs = append(libs, lib)
	}
	return libs
}

func parseExportPackages(value string) ([]types.PackageExport, error) {
	var exports []types.PackageExport
	seen := map[string]struct{}{}
	for _, clause := range clauses(value) {
		export := types.PackageExport{Name: TrimBundleName(clause)}
		if raw, ok := clauseVersion(clause); ok {
			v := types.ParseVersion(raw)
			export.Version = &v
		}
		key := export.Name
		if export.Version != nil {
			key += "@" + export.Version.String()
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		exports = append(exports, export)
	}
	return exports, nil
}

func parseImportPackages(value string) ([]types.PackageImport, error) {
	var imports []types.PackageImport
	seen := map[string]struct{}{}
	for _, clause := range clauses(value) {
		ref, err := clauseRef(clause)
		if err != nil {
			return nil, err
		}
		key := ref.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		imports = append(imports, types.PackageImport{Name: ref.Name, Range: ref.Range})
	}
	return imports, nil
}

func parseFragmentHost(value string) (*types.BundleRef, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	ref, err := clauseRef(value)
	if err != nil {
		return nil, err
	}
	return &ref, nil
}
