// Package services holds pure domain logic that needs no I/O: the
// ownership and scope checks gating tag mutations.
package services

import (
	"github.com/kheina-com/tagsvc/internal/domain/entities"
	"github.com/kheina-com/tagsvc/internal/shared/apperr"
)

// AuthGate evaluates ownership and scope predicates over an authenticated
// user record. It performs no I/O and is fully unit-testable without mocks.
type AuthGate struct{}

func NewAuthGate() *AuthGate {
	return &AuthGate{}
}

// RequireAuthenticated fails with Unauthorized if user is not authenticated.
func (AuthGate) RequireAuthenticated(user entities.AuthUser) error {
	if !user.Authenticated {
		return apperr.Unauthorized("authentication required")
	}
	return nil
}

// MayEdit reports whether user may edit tag: owner or moderator.
func (AuthGate) MayEdit(user entities.AuthUser, tag *entities.InternalTag) bool {
	if tag.Owner != nil && user.ID == *tag.Owner {
		return true
	}
	return user.Scopes.Has(entities.ScopeMod)
}

// MayEditDeprecation reports whether user may toggle a tag's deprecated bit.
func (AuthGate) MayEditDeprecation(user entities.AuthUser) bool {
	return user.Scopes.Has(entities.ScopeMod)
}

// MayInherit reports whether user may create an inheritance edge.
func (AuthGate) MayInherit(user entities.AuthUser) bool {
	return user.Scopes.Has(entities.ScopeAdmin)
}

// MayRemoveInheritance reports whether user may delete an inheritance edge.
func (AuthGate) MayRemoveInheritance(user entities.AuthUser) bool {
	return user.Scopes.Has(entities.ScopeAdmin)
}

// MaySeePostTags reports whether user may see post's tag listing. Internal
// callers (the shared-secret i1 surface) see every post.
func (AuthGate) MaySeePostTags(user entities.AuthUser, post *entities.InternalPost) bool {
	if user.Scopes.Has(entities.ScopeInternal) {
		return true
	}
	if post.Privacy == entities.PrivacyPublic || post.Privacy == entities.PrivacyUnlisted {
		return true
	}
	return user.Authenticated && post.Uploader == user.ID
}
