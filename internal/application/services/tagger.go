package services

import (
	"context"
	"sort"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kheina-com/tagsvc/internal/cache"
	"github.com/kheina-com/tagsvc/internal/domain/entities"
	"github.com/kheina-com/tagsvc/internal/domain/repositories"
	authsvc "github.com/kheina-com/tagsvc/internal/domain/services"
	"github.com/kheina-com/tagsvc/internal/shared/apperr"
	"github.com/kheina-com/tagsvc/pkg/logger"
)

// FrequentLimits holds the per-group top-N cutoffs for frequentlyUsed.
type FrequentLimits struct {
	Misc  int
	Other int
}

// Tagger is the orchestrator for the public tag operations, coordinating
// CounterStore, TagCache, TagSnapshot, TagRepository, AuthGate, and the
// user/post directory collaborators.
type Tagger struct {
	repo       repositories.TagRepository
	tagCache   cache.TagCache
	counters   cache.CounterStore
	snapshot   *cache.TagSnapshot
	users      repositories.UserDirectory
	posts      repositories.PostDirectory
	projection *Projection
	gate       *authsvc.AuthGate
	limits     FrequentLimits
}

func NewTagger(
	repo repositories.TagRepository,
	tagCache cache.TagCache,
	counters cache.CounterStore,
	snapshot *cache.TagSnapshot,
	users repositories.UserDirectory,
	posts repositories.PostDirectory,
	projection *Projection,
	limits FrequentLimits,
) *Tagger {
	return &Tagger{
		repo:       repo,
		tagCache:   tagCache,
		counters:   counters,
		snapshot:   snapshot,
		users:      users,
		posts:      posts,
		projection: projection,
		gate:       authsvc.NewAuthGate(),
		limits:     limits,
	}
}

func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func diffNew(want, have []string) []string {
	haveSet := make(map[string]struct{}, len(have))
	for _, t := range have {
		haveSet[t] = struct{}{}
	}
	var out []string
	for _, t := range want {
		if _, ok := haveSet[t]; !ok {
			out = append(out, t)
		}
	}
	return out
}

func flatten(groups entities.TagGroups) []string {
	var out []string
	for _, names := range groups {
		out = append(out, names...)
	}
	return out
}

// AddTags applies tags to post_id, creating rows as needed, then bumps the
// public counter for every tag newly present on a public post.
func (t *Tagger) AddTags(ctx context.Context, user entities.AuthUser, postID entities.PostID, tags []string) error {
	if err := t.gate.RequireAuthenticated(user); err != nil {
		return err
	}
	tags = normalizeTags(tags)
	if len(tags) == 0 {
		return nil
	}

	existing, _, _ := t.repo.FetchTagsByPost(ctx, postID)
	var existingFlat []string
	if existing != nil {
		existingFlat = flatten(existing)
	}

	if err := t.repo.AddTags(ctx, postID, user.ID, tags); err != nil {
		return err
	}

	post, err := t.posts.FetchPost(ctx, postID)
	if err == nil && post.Privacy == entities.PrivacyPublic {
		newlyAdded := diffNew(tags, existingFlat)
		for _, tag := range newlyAdded {
			if err := t.counters.Increment(ctx, tag); err != nil {
				logger.Log.Warn("tagger: counter increment failed", zap.String("tag", tag), zap.Error(err))
			}
		}
	} else if err != nil {
		logger.Log.Warn("tagger: failed to read post privacy for counter update", zap.Error(err))
	}

	if err := t.tagCache.RemovePostTags(ctx, postID); err != nil {
		logger.Log.Warn("tagger: failed to invalidate post cache", zap.String("post_id", postID.String()), zap.Error(err))
	}
	return nil
}

// RemoveTags removes associations, decrementing only tags that were
// actually present on a public post.
func (t *Tagger) RemoveTags(ctx context.Context, user entities.AuthUser, postID entities.PostID, tags []string) error {
	if err := t.gate.RequireAuthenticated(user); err != nil {
		return err
	}
	tags = normalizeTags(tags)
	if len(tags) == 0 {
		return nil
	}

	existing, _, _ := t.repo.FetchTagsByPost(ctx, postID)
	var existingFlat []string
	if existing != nil {
		existingFlat = flatten(existing)
	}

	if err := t.repo.RemoveTags(ctx, postID, user.ID, tags); err != nil {
		return err
	}

	post, err := t.posts.FetchPost(ctx, postID)
	if err == nil && post.Privacy == entities.PrivacyPublic {
		removed := intersect(tags, existingFlat)
		for _, tag := range removed {
			if err := t.counters.Decrement(ctx, tag); err != nil {
				logger.Log.Warn("tagger: counter decrement failed", zap.String("tag", tag), zap.Error(err))
			}
		}
	} else if err != nil {
		logger.Log.Warn("tagger: failed to read post privacy for counter update", zap.Error(err))
	}

	if err := t.tagCache.RemovePostTags(ctx, postID); err != nil {
		logger.Log.Warn("tagger: failed to invalidate post cache", zap.String("post_id", postID.String()), zap.Error(err))
	}
	return nil
}

func intersect(a, b []string) []string {
	bSet := make(map[string]struct{}, len(b))
	for _, v := range b {
		bSet[v] = struct{}{}
	}
	var out []string
	for _, v := range a {
		if _, ok := bSet[v]; ok {
			out = append(out, v)
		}
	}
	return out
}

// InheritTag requires admin, lowercases both names, and invokes the stored
// procedure. On success it patches the parent's cache entry in place rather
// than invalidating it.
func (t *Tagger) InheritTag(ctx context.Context, user entities.AuthUser, parent, child string, deprecate bool) error {
	if err := t.gate.RequireAuthenticated(user); err != nil {
		return err
	}
	if !t.gate.MayInherit(user) {
		return apperr.Forbidden("only admins may create inheritance edges")
	}

	parent, child = strings.ToLower(parent), strings.ToLower(child)
	if err := t.repo.InheritTag(ctx, user.ID, parent, child, deprecate); err != nil {
		return err
	}

	if cached, ok, err := t.tagCache.GetTag(ctx, parent); err == nil && ok {
		patched := cached.Clone()
		patched.InheritedTags = append(patched.InheritedTags, child)
		if err := t.tagCache.SetTag(ctx, patched); err != nil {
			logger.Log.Warn("tagger: failed to patch parent cache entry", zap.String("parent", parent), zap.Error(err))
		}
	}
	return nil
}

// RemoveInheritance requires admin and deletes the edge, patching the
// parent's cache entry if present.
func (t *Tagger) RemoveInheritance(ctx context.Context, user entities.AuthUser, parent, child string) error {
	if err := t.gate.RequireAuthenticated(user); err != nil {
		return err
	}
	if !t.gate.MayRemoveInheritance(user) {
		return apperr.Forbidden("only admins may remove inheritance edges")
	}

	parent, child = strings.ToLower(parent), strings.ToLower(child)
	if err := t.repo.RemoveInheritance(ctx, parent, child); err != nil {
		return err
	}

	if cached, ok, err := t.tagCache.GetTag(ctx, parent); err == nil && ok {
		patched := cached.Clone()
		filtered := patched.InheritedTags[:0]
		for _, c := range patched.InheritedTags {
			if c != child {
				filtered = append(filtered, c)
			}
		}
		patched.InheritedTags = filtered
		if err := t.tagCache.SetTag(ctx, patched); err != nil {
			logger.Log.Warn("tagger: failed to patch parent cache entry", zap.String("parent", parent), zap.Error(err))
		}
	}
	return nil
}

// UpdateTag patches the named tag row.
func (t *Tagger) UpdateTag(ctx context.Context, user entities.AuthUser, name string, patch repositories.TagUpdate) error {
	if err := t.gate.RequireAuthenticated(user); err != nil {
		return err
	}
	if patch.IsEmpty() {
		return apperr.BadRequest("patch must set at least one field")
	}

	current, err := t.repo.FetchTag(ctx, name)
	if err != nil {
		return err
	}
	if !t.gate.MayEdit(user, current) {
		return apperr.Forbidden("you do not own this tag")
	}
	if patch.Deprecated != nil && !t.gate.MayEditDeprecation(user) {
		return apperr.Forbidden("only mods may edit a tag's deprecated status")
	}
	if patch.Description != nil && utf8.RuneCountInString(*patch.Description) > entities.MaxDescriptionLen {
		return apperr.BadRequest("description exceeds the maximum length")
	}
	if patch.Group != nil {
		if _, ok := entities.KnownGroups[*patch.Group]; !ok {
			return apperr.BadRequest("unknown tag group")
		}
	}
	if patch.OwnerHandle != nil {
		if _, err := t.users.FetchUser(ctx, *patch.OwnerHandle); err != nil {
			return err
		}
	}

	if err := t.repo.UpdateTag(ctx, name, patch); err != nil {
		return err
	}

	if err := t.tagCache.RemoveTag(ctx, name); err != nil {
		logger.Log.Warn("tagger: failed to invalidate old tag cache entry", zap.String("tag", name), zap.Error(err))
	}
	if patch.Name != nil && *patch.Name != name {
		if refreshed, err := t.repo.FetchTag(ctx, *patch.Name); err == nil {
			if err := t.tagCache.SetTag(ctx, refreshed); err != nil {
				logger.Log.Warn("tagger: failed to seed renamed tag cache entry", zap.String("tag", *patch.Name), zap.Error(err))
			}
		}
	}
	return nil
}

// FetchTagsByPost runs the post-tag and post-privacy reads concurrently
// then authorizes. A denied caller sees NotFound rather than Forbidden to
// avoid leaking post existence.
func (t *Tagger) FetchTagsByPost(ctx context.Context, user entities.AuthUser, postID entities.PostID) (entities.TagGroups, error) {
	var (
		groups    entities.TagGroups
		post      *entities.InternalPost
		fromCache bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if cached, ok, err := t.tagCache.GetPostTags(gctx, postID); err == nil && ok {
			groups = cached
			fromCache = true
		}
		return nil
	})
	g.Go(func() error {
		p, err := t.posts.FetchPost(gctx, postID)
		if err != nil {
			return err
		}
		post = p
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if !t.gate.MaySeePostTags(user, post) {
		return nil, apperr.NotFound("post not found")
	}

	if fromCache {
		return groups.Sorted(), nil
	}

	groups, _, err := t.repo.FetchTagsByPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	if err := t.tagCache.SetPostTags(ctx, postID, groups); err != nil {
		logger.Log.Warn("tagger: failed to cache post tags", zap.String("post_id", postID.String()), zap.Error(err))
	}
	return groups.Sorted(), nil
}

// FetchTag returns a single tag by exact name, read cache-through against
// tag:{name} so a rename's invalidation takes effect immediately rather
// than waiting out the snapshot TTL.
func (t *Tagger) FetchTag(ctx context.Context, user entities.AuthUser, name string) (*entities.Tag, error) {
	name = strings.ToLower(name)

	if cached, ok, err := t.tagCache.GetTag(ctx, name); err == nil && ok {
		return t.projection.Tag(ctx, cached)
	}

	internal, err := t.repo.FetchTag(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := t.tagCache.SetTag(ctx, internal); err != nil {
		logger.Log.Warn("tagger: failed to cache tag", zap.String("tag", name), zap.Error(err))
	}
	return t.projection.Tag(ctx, internal)
}

// TagLookup takes the snapshot, filters by prefix, and projects every match
// concurrently. An empty prefix returns everything.
func (t *Tagger) TagLookup(ctx context.Context, user entities.AuthUser, prefix string) ([]*entities.Tag, error) {
	matches, err := t.snapshot.ByPrefix(ctx, prefix)
	if err != nil {
		return nil, err
	}
	return t.projection.TagAll(ctx, matches)
}

// FetchTagsByUser resolves handle to a user id, reads the cached owned-tag
// list, and projects each.
func (t *Tagger) FetchTagsByUser(ctx context.Context, user entities.AuthUser, handle string) ([]*entities.Tag, error) {
	owner, err := t.users.FetchUser(ctx, handle)
	if err != nil {
		return nil, err
	}

	key := owner.ID.String()
	if cached, ok, err := t.tagCache.GetUserTags(ctx, key); err == nil && ok {
		if len(cached) == 0 {
			return nil, apperr.NotFound("user has no tags")
		}
		return t.projection.TagAll(ctx, cached)
	}

	tags, err := t.repo.FetchUserTags(ctx, owner.ID)
	if err != nil {
		return nil, err
	}
	if len(tags) == 0 {
		return nil, apperr.NotFound("user has no tags")
	}

	if err := t.tagCache.SetUserTags(ctx, key, tags); err != nil {
		logger.Log.Warn("tagger: failed to cache user tags", zap.String("user_id", key), zap.Error(err))
	}
	return t.projection.TagAll(ctx, tags)
}

// FrequentlyUsed aggregates tag counts across the caller's recent posts and
// returns the top-N per group (25 for misc, 10 otherwise).
func (t *Tagger) FrequentlyUsed(ctx context.Context, user entities.AuthUser) (entities.TagGroups, error) {
	if err := t.gate.RequireAuthenticated(user); err != nil {
		return nil, err
	}

	if cached, ok, err := t.tagCache.GetFrequent(ctx, user.ID.String()); err == nil && ok {
		return cached, nil
	}

	recentPosts, err := t.posts.UserPosts(ctx, user)
	if err != nil {
		return nil, err
	}

	perPost := make([]entities.TagGroups, len(recentPosts))
	g, gctx := errgroup.WithContext(ctx)
	for i, post := range recentPosts {
		i, post := i, post
		g.Go(func() error {
			groups, _, err := t.repo.FetchTagsByPost(gctx, post.PostID)
			if err != nil {
				return nil // a single unreadable post does not fail the whole aggregation
			}
			perPost[i] = groups
			return nil
		})
	}
	_ = g.Wait()

	counts := map[entities.TagGroupName]map[string]int{}
	for _, groups := range perPost {
		for group, names := range groups {
			if counts[group] == nil {
				counts[group] = map[string]int{}
			}
			for _, name := range names {
				counts[group][name]++
			}
		}
	}

	result := entities.TagGroups{}
	for group, names := range counts {
		limit := t.limits.Other
		if group == entities.GroupMisc {
			limit = t.limits.Misc
		}
		result[group] = topN(names, limit)
	}

	if err := t.tagCache.SetFrequent(ctx, user.ID.String(), result); err != nil {
		logger.Log.Warn("tagger: failed to cache frequently-used tags", zap.String("user_id", user.ID.String()), zap.Error(err))
	}
	return result, nil
}

func topN(counts map[string]int, n int) []string {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})
	if len(names) > n {
		names = names[:n]
	}
	return names
}
