package app

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"bundle-resolver/internal/core"
)

// Manifest parses the manifest of a single bundle folder or jar.
func (s Service) Manifest(ctx context.Context, req ManifestRequest) (ManifestResult, error) {
	path := strings.TrimSpace(req.Path)
	if path == "" {
		return ManifestResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("bundle path is required")
	}
	headers, err := s.Manifests.ReadHeaders(path)
	if err != nil {
		return ManifestResult{}, err
	}
	info, err := core.ParseManifest(path, nil, headers)
	if err != nil {
		return ManifestResult{}, err
	}
	log.Ctx(ctx).Debug().Str("bundle", info.Key()).Msg("manifest parsed")
	return ManifestResult{Bundle: resolvedBundle(info, nil)}, nil
}
