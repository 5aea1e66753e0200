// Package services implements the orchestration layer: Tagger (the public
// operation surface) and Projection (internal -> public tag conversion).
package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/kheina-com/tagsvc/internal/cache"
	"github.com/kheina-com/tagsvc/internal/domain/entities"
	"github.com/kheina-com/tagsvc/internal/domain/repositories"
)

// Projection converts InternalTag (internal form) to Tag (public form) by
// resolving the owner handle through the user directory and the usage
// count through CounterStore.
type Projection struct {
	users    repositories.UserDirectory
	counters cache.CounterStore
}

func NewProjection(users repositories.UserDirectory, counters cache.CounterStore) *Projection {
	return &Projection{users: users, counters: counters}
}

// Tag projects a single InternalTag.
func (p *Projection) Tag(ctx context.Context, internal *entities.InternalTag) (*entities.Tag, error) {
	tag := &entities.Tag{
		Name:          internal.Name,
		Group:         internal.Group,
		Deprecated:    internal.Deprecated,
		InheritedTags: internal.InheritedTags,
		Description:   internal.Description,
	}

	g, gctx := errgroup.WithContext(ctx)
	if internal.Owner != nil {
		g.Go(func() error {
			owner, err := p.users.FetchUserByID(gctx, *internal.Owner)
			if err != nil {
				return err
			}
			tag.Owner = owner
			return nil
		})
	}
	g.Go(func() error {
		count, err := p.counters.Get(gctx, internal.Name)
		if err != nil {
			return err
		}
		tag.Count = count
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tag, nil
}

// TagAll projects a slice, fanning out one task per tag and joining before
// returning.
func (p *Projection) TagAll(ctx context.Context, internals []*entities.InternalTag) ([]*entities.Tag, error) {
	out := make([]*entities.Tag, len(internals))
	g, gctx := errgroup.WithContext(ctx)
	for i, internal := range internals {
		i, internal := i, internal
		g.Go(func() error {
			tag, err := p.Tag(gctx, internal)
			if err != nil {
				return err
			}
			out[i] = tag
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
