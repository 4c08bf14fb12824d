package adapters

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/klauspost/compress/zip"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"bundle-resolver/internal/ports"
	"bundle-resolver/internal/shared"
	"bundle-resolver/internal/types"
)

const (
	cachePluginsDir  = "plugins"
	cacheFeaturesDir = "features"
)

// CatalogRepositoryAdapter serves bundles and features listed in a YAML
// catalog. The catalog and its entries may live on disk or behind HTTP;
// entry locations are relative to the catalog.
type CatalogRepositoryAdapter struct {
	Source   string
	CacheDir string

	http httpRetryConfig
	name string
}

func NewCatalogRepositoryAdapter(source string, cacheDir string, cfg HTTPConfig) *CatalogRepositoryAdapter {
	return &CatalogRepositoryAdapter{
		Source:   strings.TrimSpace(source),
		CacheDir: cacheDir,
		http:     normalizeHTTPConfig(cfg),
	}
}

// Name is the catalog's declared name once loaded, else its source.
func (a *CatalogRepositoryAdapter) Name() string {
	if a.name != "" {
		return a.name
	}
	return a.Source
}

func (a *CatalogRepositoryAdapter) Init(ctx context.Context, index ports.CatalogIndex, filter ports.CatalogFilter) error {
	if a.Source == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("catalog source is empty")
	}
	body, err := a.open(ctx, a.Source)
	if err != nil {
		return err
	}
	defer body.Close()

	var catalog types.CatalogFile
	if err := yaml.NewDecoder(body).Decode(&catalog); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("invalid catalog format").
			WithCause(err)
	}
	if name := strings.TrimSpace(catalog.Name); name != "" {
		a.name = name
	}

	bundles := a.indexEntries(ctx, catalog.Bundles, filter, index.IndexBundle)
	features := a.indexEntries(ctx, catalog.Features, filter, index.IndexFeature)
	log.Ctx(ctx).Info().
		Str("repository", a.Name()).
		Int("bundles", bundles).
		Int("features", features).
		Msg("catalog loaded")
	return nil
}

func (a *CatalogRepositoryAdapter) indexEntries(
	ctx context.Context,
	entries []types.CatalogEntry,
	filter ports.CatalogFilter,
	add func(ports.RepositoryPort, types.CatalogEntry),
) int {
	count := 0
	for _, entry := range entries {
		if strings.TrimSpace(entry.Name) == "" || strings.TrimSpace(entry.Version) == "" || strings.TrimSpace(entry.Location) == "" {
			log.Ctx(ctx).Warn().Str("repository", a.Name()).Str("entry", entry.Name).Msg("catalog entry without name, version or location")
			continue
		}
		if filter != nil && !filter.Accept(entry) {
			continue
		}
		add(a, entry)
		count++
	}
	return count
}

// ResolveBundle returns a local path for the bundle, downloading it into the
// cache directory when needed. Bundle folders of an on-disk catalog are
// used in place.
func (a *CatalogRepositoryAdapter) ResolveBundle(ctx context.Context, entry types.CatalogEntry) (string, error) {
	location := a.resolveLocation(entry.Location)
	if dir, ok := localDir(location); ok {
		return dir, nil
	}
	target, err := a.cachePath(cachePluginsDir, archiveName(entry))
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(target); err == nil {
		return target, nil
	}
	if err := a.download(ctx, location, target); err != nil {
		return "", err
	}
	return target, nil
}

// ResolveFeature returns the directory holding the feature descriptor,
// extracting a downloaded feature archive into the cache directory.
func (a *CatalogRepositoryAdapter) ResolveFeature(ctx context.Context, entry types.CatalogEntry) (string, error) {
	location := a.resolveLocation(entry.Location)
	if dir, ok := localDir(location); ok {
		return dir, nil
	}
	dir, err := a.cachePath(cacheFeaturesDir, types.BundleKey(entry.Name, entry.Version))
	if err != nil {
		return "", err
	}
	if _, ok := localDir(dir); ok {
		return dir, nil
	}
	archive := dir + ".jar"
	if err := a.download(ctx, location, archive); err != nil {
		return "", err
	}
	if err := extractArchive(archive, dir); err != nil {
		return "", err
	}
	return dir, nil
}

func (a *CatalogRepositoryAdapter) resolveLocation(location string) string {
	location = strings.TrimSpace(location)
	if shared.IsRemoteLocation(location) || filepath.IsAbs(location) {
		return location
	}
	if shared.IsRemoteLocation(a.Source) {
		base, err := url.Parse(a.Source)
		if err != nil {
			return location
		}
		ref, err := url.Parse(location)
		if err != nil {
			return location
		}
		return base.ResolveReference(ref).String()
	}
	return filepath.Join(filepath.Dir(a.Source), filepath.FromSlash(location))
}

func (a *CatalogRepositoryAdapter) cachePath(kind string, name string) (string, error) {
	if strings.TrimSpace(a.CacheDir) == "" {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("cache directory is empty")
	}
	return filepath.Join(a.CacheDir, shared.SanitizeName(a.Name()), kind, name), nil
}

func (a *CatalogRepositoryAdapter) open(ctx context.Context, location string) (io.ReadCloser, error) {
	if !shared.IsRemoteLocation(location) {
		file, err := os.Open(location)
		if err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeNotFound).
				WithMsg(fmt.Sprintf("failed to open %s", location)).
				WithCause(err)
		}
		return file, nil
	}
	resp, err := doRequest(ctx, location, a.http)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("%s not found", location)).
			WithCause(shared.HTTPStatusError(resp.StatusCode, location))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("failed to fetch %s", location)).
			WithCause(shared.HTTPStatusErrorWithBody(resp.StatusCode, location, strings.TrimSpace(string(body))))
	}
	return resp.Body, nil
}

// download copies location to target through a temporary file so a failed
// transfer never leaves a partial target behind.
func (a *CatalogRepositoryAdapter) download(ctx context.Context, location string, target string) error {
	body, err := a.open(ctx, location)
	if err != nil {
		return err
	}
	defer body.Close()

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create cache directory").
			WithCause(err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(target), ".download-*")
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create download file").
			WithCause(err)
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("failed to download %s", location)).
			WithCause(err)
	}
	if err := tmp.Close(); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write download file").
			WithCause(err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to move download into cache").
			WithCause(err)
	}
	return nil
}

func archiveName(entry types.CatalogEntry) string {
	base := path.Base(strings.TrimSpace(entry.Location))
	if base == "" || base == "." || base == "/" {
		return fmt.Sprintf("%s_%s.jar", entry.Name, entry.Version)
	}
	return base
}

func localDir(location string) (string, bool) {
	if shared.IsRemoteLocation(location) {
		return "", false
	}
	info, err := os.Stat(location)
	if err != nil || !info.IsDir() {
		return "", false
	}
	return location, true
}

// extractArchive unpacks a zip archive into dest. Entries escaping dest are
// rejected.
func extractArchive(archive string, dest string) error {
	reader, err := zip.OpenReader(archive)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("failed to open archive %s", archive)).
			WithCause(err)
	}
	defer reader.Close()

	root := filepath.Clean(dest) + string(os.PathSeparator)
	for _, file := range reader.File {
		target := filepath.Join(dest, filepath.FromSlash(file.Name))
		if !strings.HasPrefix(target, root) {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("archive entry %s escapes %s", file.Name, dest))
		}
		if file.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return extractError(archive, err)
			}
			continue
		}
		if err := extractFile(file, target); err != nil {
			return extractError(archive, err)
		}
	}
	return nil
}

func extractFile(file *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}
	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()
	dst, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}

func extractError(archive string, err error) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg(fmt.Sprintf("failed to extract %s", archive)).
		WithCause(err)
}

var _ ports.RepositoryPort = (*CatalogRepositoryAdapter)(nil)
