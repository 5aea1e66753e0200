package cache

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/kheina-com/tagsvc/internal/domain/entities"
)

// snapshotData is the immutable payload held behind the atomic pointer.
type snapshotData struct {
	tags    []*entities.InternalTag
	expires time.Time
}

// RefreshFunc loads the full tag table that repopulates a snapshot. The
// production wiring is TagRepository.FetchAllTags, which reads tags joined
// with their classes in one query and then each tag's inheritance children
// in one further query per tag; it does not join the users table.
type RefreshFunc func(ctx context.Context) ([]*entities.InternalTag, error)

// TagSnapshot is the process-local, short-TTL cache of the entire tag table
// used for prefix lookup. A refresh race between two concurrent misses is
// resolved last-writer-wins on the atomic pointer; both refreshes are
// individually correct, so this is safe.
type TagSnapshot struct {
	ptr     atomic.Pointer[snapshotData]
	ttl     time.Duration
	refresh RefreshFunc
}

func NewTagSnapshot(ttl time.Duration, refresh RefreshFunc) *TagSnapshot {
	return &TagSnapshot{ttl: ttl, refresh: refresh}
}

// All returns every tag in the snapshot, refreshing first if expired or
// never populated.
func (s *TagSnapshot) All(ctx context.Context) ([]*entities.InternalTag, error) {
	cur := s.ptr.Load()
	if cur != nil && time.Now().Before(cur.expires) {
		return cur.tags, nil
	}

	tags, err := s.refresh(ctx)
	if err != nil {
		if cur != nil {
			// serve stale data rather than fail the request outright
			return cur.tags, nil
		}
		return nil, err
	}

	s.ptr.Store(&snapshotData{tags: tags, expires: time.Now().Add(s.ttl)})
	return tags, nil
}

// ByPrefix filters the snapshot by a case-insensitive name prefix. An empty
// prefix returns every tag.
func (s *TagSnapshot) ByPrefix(ctx context.Context, prefix string) ([]*entities.InternalTag, error) {
	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	if prefix == "" {
		return all, nil
	}

	prefix = strings.ToLower(prefix)
	matches := make([]*entities.InternalTag, 0, len(all))
	for _, tag := range all {
		if strings.HasPrefix(tag.Name, prefix) {
			matches = append(matches, tag)
		}
	}
	return matches, nil
}
