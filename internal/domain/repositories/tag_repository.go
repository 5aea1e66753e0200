// Package repositories defines the data-access contracts the application
// layer depends on; concrete implementations live under
// internal/infrastructure.
package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/kheina-com/tagsvc/internal/domain/entities"
)

// TagUpdate carries the patchable fields of UpdateTag. A nil pointer means
// the field is absent (no-op); ClearDescription is the only way to set
// Description to the empty string.
type TagUpdate struct {
	Name             *string
	Group            *entities.TagGroupName
	OwnerHandle      *string
	Description      *string
	ClearDescription bool
	Deprecated       *bool
}

// IsEmpty reports whether every field of the patch is absent.
func (u TagUpdate) IsEmpty() bool {
	return u.Name == nil && u.Group == nil && u.OwnerHandle == nil &&
		u.Description == nil && !u.ClearDescription && u.Deprecated == nil
}

// TagRepository is the SQL-backed facade over tags, their classification,
// inheritance edges, and tag-to-post associations.
type TagRepository interface {
	// AddTags applies tags to post, creating any tag rows that don't yet
	// exist; idempotent with respect to already-present tags.
	AddTags(ctx context.Context, postID entities.PostID, userID uuid.UUID, tags []string) error

	// RemoveTags removes associations; silently ignores tags not on the post.
	RemoveTags(ctx context.Context, postID entities.PostID, userID uuid.UUID, tags []string) error

	// InheritTag inserts a (parent, child) edge on behalf of userID,
	// optionally deprecating child. Conflict on a duplicate edge,
	// BadRequest if it would cycle.
	InheritTag(ctx context.Context, userID uuid.UUID, parent, child string, deprecate bool) error

	// RemoveInheritance deletes the edge; no error if it is already absent.
	RemoveInheritance(ctx context.Context, parent, child string) error

	// UpdateTag patches the tag row named name within a transaction that
	// first checks the row exists (apperr.NotFound otherwise). The
	// transaction performs no authorization; the caller authorizes before
	// this call, from a separate read outside the transaction.
	UpdateTag(ctx context.Context, name string, patch TagUpdate) error

	// FetchTagsByPost returns the post's non-deprecated tags grouped, plus
	// the post record for authorization. A nil *entities.InternalPost with
	// a nil error never happens: a missing post returns apperr.NotFound.
	FetchTagsByPost(ctx context.Context, postID entities.PostID) (entities.TagGroups, *entities.InternalPost, error)

	// FetchTag returns the named tag, or apperr.NotFound.
	FetchTag(ctx context.Context, name string) (*entities.InternalTag, error)

	// FetchUserTags returns every tag owned by userID.
	FetchUserTags(ctx context.Context, userID uuid.UUID) ([]*entities.InternalTag, error)

	// FetchAllTags returns the full tag table, joined with classes,
	// inheritance, and owners. Used to build a TagSnapshot.
	FetchAllTags(ctx context.Context) ([]*entities.InternalTag, error)

	// CountPublicPostsForTag runs the CounterStore populate query.
	CountPublicPostsForTag(ctx context.Context, name string) (int64, error)
}
