package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/kheina-com/tagsvc/internal/domain/entities"
	"github.com/kheina-com/tagsvc/internal/domain/repositories"
)

type mockRepo struct {
	mock.Mock
	repositories.TagRepository
}

func (m *mockRepo) AddTags(ctx context.Context, postID entities.PostID, userID uuid.UUID, tags []string) error {
	args := m.Called(ctx, postID, userID, tags)
	return args.Error(0)
}

func (m *mockRepo) RemoveTags(ctx context.Context, postID entities.PostID, userID uuid.UUID, tags []string) error {
	args := m.Called(ctx, postID, userID, tags)
	return args.Error(0)
}

func (m *mockRepo) InheritTag(ctx context.Context, userID uuid.UUID, parent, child string, deprecate bool) error {
	args := m.Called(ctx, userID, parent, child, deprecate)
	return args.Error(0)
}

func (m *mockRepo) RemoveInheritance(ctx context.Context, parent, child string) error {
	args := m.Called(ctx, parent, child)
	return args.Error(0)
}

func (m *mockRepo) UpdateTag(ctx context.Context, name string, patch repositories.TagUpdate) error {
	args := m.Called(ctx, name, patch)
	return args.Error(0)
}

func (m *mockRepo) FetchTagsByPost(ctx context.Context, postID entities.PostID) (entities.TagGroups, *entities.InternalPost, error) {
	args := m.Called(ctx, postID)
	var groups entities.TagGroups
	if g := args.Get(0); g != nil {
		groups = g.(entities.TagGroups)
	}
	var post *entities.InternalPost
	if p := args.Get(1); p != nil {
		post = p.(*entities.InternalPost)
	}
	return groups, post, args.Error(2)
}

func (m *mockRepo) FetchTag(ctx context.Context, name string) (*entities.InternalTag, error) {
	args := m.Called(ctx, name)
	var tag *entities.InternalTag
	if t := args.Get(0); t != nil {
		tag = t.(*entities.InternalTag)
	}
	return tag, args.Error(1)
}

func (m *mockRepo) FetchUserTags(ctx context.Context, userID uuid.UUID) ([]*entities.InternalTag, error) {
	args := m.Called(ctx, userID)
	var tags []*entities.InternalTag
	if t := args.Get(0); t != nil {
		tags = t.([]*entities.InternalTag)
	}
	return tags, args.Error(1)
}

func (m *mockRepo) FetchAllTags(ctx context.Context) ([]*entities.InternalTag, error) {
	args := m.Called(ctx)
	var tags []*entities.InternalTag
	if t := args.Get(0); t != nil {
		tags = t.([]*entities.InternalTag)
	}
	return tags, args.Error(1)
}

func (m *mockRepo) CountPublicPostsForTag(ctx context.Context, name string) (int64, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(int64), args.Error(1)
}

type mockTagCache struct {
	mock.Mock
}

func (m *mockTagCache) GetTag(ctx context.Context, name string) (*entities.InternalTag, bool, error) {
	args := m.Called(ctx, name)
	var tag *entities.InternalTag
	if t := args.Get(0); t != nil {
		tag = t.(*entities.InternalTag)
	}
	return tag, args.Bool(1), args.Error(2)
}

func (m *mockTagCache) SetTag(ctx context.Context, tag *entities.InternalTag) error {
	return m.Called(ctx, tag).Error(0)
}

func (m *mockTagCache) RemoveTag(ctx context.Context, name string) error {
	return m.Called(ctx, name).Error(0)
}

func (m *mockTagCache) GetPostTags(ctx context.Context, postID entities.PostID) (entities.TagGroups, bool, error) {
	args := m.Called(ctx, postID)
	var groups entities.TagGroups
	if g := args.Get(0); g != nil {
		groups = g.(entities.TagGroups)
	}
	return groups, args.Bool(1), args.Error(2)
}

func (m *mockTagCache) SetPostTags(ctx context.Context, postID entities.PostID, groups entities.TagGroups) error {
	return m.Called(ctx, postID, groups).Error(0)
}

func (m *mockTagCache) RemovePostTags(ctx context.Context, postID entities.PostID) error {
	return m.Called(ctx, postID).Error(0)
}

func (m *mockTagCache) GetUserTags(ctx context.Context, userID string) ([]*entities.InternalTag, bool, error) {
	args := m.Called(ctx, userID)
	var tags []*entities.InternalTag
	if t := args.Get(0); t != nil {
		tags = t.([]*entities.InternalTag)
	}
	return tags, args.Bool(1), args.Error(2)
}

func (m *mockTagCache) SetUserTags(ctx context.Context, userID string, tags []*entities.InternalTag) error {
	return m.Called(ctx, userID, tags).Error(0)
}

func (m *mockTagCache) GetFrequent(ctx context.Context, userID string) (entities.TagGroups, bool, error) {
	args := m.Called(ctx, userID)
	var groups entities.TagGroups
	if g := args.Get(0); g != nil {
		groups = g.(entities.TagGroups)
	}
	return groups, args.Bool(1), args.Error(2)
}

func (m *mockTagCache) SetFrequent(ctx context.Context, userID string, groups entities.TagGroups) error {
	return m.Called(ctx, userID, groups).Error(0)
}

type mockCounters struct {
	mock.Mock
}

func (m *mockCounters) Get(ctx context.Context, tag string) (int64, error) {
	args := m.Called(ctx, tag)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockCounters) Increment(ctx context.Context, tag string) error {
	return m.Called(ctx, tag).Error(0)
}

func (m *mockCounters) Decrement(ctx context.Context, tag string) error {
	return m.Called(ctx, tag).Error(0)
}

type mockUsers struct {
	mock.Mock
}

func (m *mockUsers) FetchUser(ctx context.Context, handle string) (*entities.UserPortable, error) {
	args := m.Called(ctx, handle)
	var u *entities.UserPortable
	if v := args.Get(0); v != nil {
		u = v.(*entities.UserPortable)
	}
	return u, args.Error(1)
}

func (m *mockUsers) FetchUserByID(ctx context.Context, id uuid.UUID) (*entities.UserPortable, error) {
	args := m.Called(ctx, id)
	var u *entities.UserPortable
	if v := args.Get(0); v != nil {
		u = v.(*entities.UserPortable)
	}
	return u, args.Error(1)
}

type mockPosts struct {
	mock.Mock
}

func (m *mockPosts) FetchPost(ctx context.Context, postID entities.PostID) (*entities.InternalPost, error) {
	args := m.Called(ctx, postID)
	var p *entities.InternalPost
	if v := args.Get(0); v != nil {
		p = v.(*entities.InternalPost)
	}
	return p, args.Error(1)
}

func (m *mockPosts) UserPosts(ctx context.Context, user entities.AuthUser) ([]*entities.InternalPost, error) {
	args := m.Called(ctx, user)
	var posts []*entities.InternalPost
	if v := args.Get(0); v != nil {
		posts = v.([]*entities.InternalPost)
	}
	return posts, args.Error(1)
}
