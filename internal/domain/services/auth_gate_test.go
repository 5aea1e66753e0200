package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/kheina-com/tagsvc/internal/domain/entities"
)

func TestAuthGate_MayEdit(t *testing.T) {
	owner := uuid.New()
	other := uuid.New()
	tag := &entities.InternalTag{Name: "fox", Owner: &owner}

	gate := NewAuthGate()

	assert.True(t, gate.MayEdit(entities.AuthUser{ID: owner, Authenticated: true}, tag))
	assert.False(t, gate.MayEdit(entities.AuthUser{ID: other, Authenticated: true}, tag))
	assert.True(t, gate.MayEdit(entities.AuthUser{ID: other, Scopes: entities.NewScopeSet(entities.ScopeMod), Authenticated: true}, tag))
}

func TestAuthGate_MayEditDeprecation(t *testing.T) {
	gate := NewAuthGate()
	assert.False(t, gate.MayEditDeprecation(entities.AuthUser{}))
	assert.True(t, gate.MayEditDeprecation(entities.AuthUser{Scopes: entities.NewScopeSet(entities.ScopeMod)}))
}

func TestAuthGate_MayInherit(t *testing.T) {
	gate := NewAuthGate()
	assert.False(t, gate.MayInherit(entities.AuthUser{Scopes: entities.NewScopeSet(entities.ScopeMod)}))
	assert.True(t, gate.MayInherit(entities.AuthUser{Scopes: entities.NewScopeSet(entities.ScopeAdmin)}))
}

func TestAuthGate_MaySeePostTags(t *testing.T) {
	gate := NewAuthGate()
	owner := uuid.New()
	other := uuid.New()

	pub := &entities.InternalPost{Uploader: owner, Privacy: entities.PrivacyPublic}
	assert.True(t, gate.MaySeePostTags(entities.AuthUser{}, pub))

	priv := &entities.InternalPost{Uploader: owner, Privacy: entities.PrivacyPrivate}
	assert.True(t, gate.MaySeePostTags(entities.AuthUser{ID: owner, Authenticated: true}, priv))
	assert.False(t, gate.MaySeePostTags(entities.AuthUser{ID: other, Authenticated: true}, priv))
	assert.False(t, gate.MaySeePostTags(entities.AuthUser{}, priv))

	internal := entities.AuthUser{Scopes: entities.NewScopeSet(entities.ScopeInternal), Authenticated: true}
	assert.True(t, gate.MaySeePostTags(internal, priv))
}
