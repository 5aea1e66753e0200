package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/kheina-com/tagsvc/internal/domain/entities"
)

// UserDirectory resolves handles and ids against the external user service.
type UserDirectory interface {
	FetchUser(ctx context.Context, handle string) (*entities.UserPortable, error)
	FetchUserByID(ctx context.Context, id uuid.UUID) (*entities.UserPortable, error)
}

// PostDirectory resolves post records and a caller's recent posts against
// the external post service.
type PostDirectory interface {
	FetchPost(ctx context.Context, postID entities.PostID) (*entities.InternalPost, error)
	UserPosts(ctx context.Context, user entities.AuthUser) ([]*entities.InternalPost, error)
}
