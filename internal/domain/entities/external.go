package entities

import (
	"github.com/google/uuid"

	"github.com/kheina-com/tagsvc/internal/shared/apperr"
)

// Scope is a named role granted to an authenticated user.
type Scope string

const (
	ScopeUser     Scope = "user"
	ScopeMod      Scope = "mod"
	ScopeAdmin    Scope = "admin"
	ScopeInternal Scope = "internal" // granted only to the shared-secret internal route
)

// ScopeSet is a set of Scope values.
type ScopeSet map[Scope]struct{}

// NewScopeSet builds a ScopeSet from a variadic list of scopes.
func NewScopeSet(scopes ...Scope) ScopeSet {
	s := make(ScopeSet, len(scopes))
	for _, sc := range scopes {
		s[sc] = struct{}{}
	}
	return s
}

// Has reports whether scope is a member of the set.
func (s ScopeSet) Has(scope Scope) bool {
	_, ok := s[scope]
	return ok
}

// AuthUser is the authenticated-user record the core sees once an external
// JWT middleware has parsed the bearer token.
type AuthUser struct {
	ID            uuid.UUID
	Scopes        ScopeSet
	Authenticated bool
}

// UserPortable is the handle/id pair and display identity resolved through
// the external user-directory service.
type UserPortable struct {
	ID     uuid.UUID `json:"id"`
	Handle string    `json:"handle"`
	Name   string    `json:"name,omitempty"`
}

// Privacy is a post's visibility level.
type Privacy string

const (
	PrivacyPublic   Privacy = "public"
	PrivacyUnlisted Privacy = "unlisted"
	PrivacyPrivate  Privacy = "private"
)

// InternalPost is the subset of post-directory fields the tag service
// needs: identity, owner, and visibility.
type InternalPost struct {
	PostID   PostID    `json:"post_id"`
	Uploader uuid.UUID `json:"uploader"`
	Privacy  Privacy   `json:"privacy"`
}

// ParsePostID validates and parses the opaque string form of a post id used
// at the HTTP boundary. The int64 form itself is resolved by the post
// directory / repository layer; here we only reject the obviously malformed
// (empty or over-long) identifiers before any downstream call is made.
func ParsePostID(raw string) (PostID, error) {
	if raw == "" {
		return PostID{}, apperr.BadRequest("post id is required")
	}
	if len(raw) > 64 {
		return PostID{}, apperr.BadRequest("post id is too long")
	}
	return PostID{raw: raw}, nil
}
