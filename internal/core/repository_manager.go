package core

import (
	"context"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"bundle-resolver/internal/ports"
)

// RepositoryManager initialises remote repositories into a LookupCache.
type RepositoryManager struct {
	Cache  *LookupCache
	Filter ports.CatalogFilter

	active []ports.RepositoryPort
}

func NewRepositoryManager(cache *LookupCache, filter ports.CatalogFilter) *RepositoryManager {
	return &RepositoryManager{Cache: cache, Filter: filter}
}

// Init initialises every repository in order. A repository that fails is
// logged and left out; the run continues with the others.
func (m *RepositoryManager) Init(ctx context.Context, repos []ports.RepositoryPort) {
	for _, repo := range repos {
		if err := repo.Init(ctx, m.Cache, m.Filter); err != nil {
			wrapped := errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("repository initialisation failed: " + repo.Name()).
				WithCause(err)
			log.Ctx(ctx).Error().Err(wrapped).Msg("repository excluded")
			continue
		}
		m.active = append(m.active, repo)
	}
	log.Ctx(ctx).Debug().Int("repositories", len(m.active)).Msg("repositories initialised")
}

// Active returns the repositories that initialised successfully.
func (m *RepositoryManager) Active() []ports.RepositoryPort {
	return append([]ports.RepositoryPort(nil), m.active...)
}
