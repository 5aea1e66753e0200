// Package dto holds the request/response bodies for the tag HTTP surface,
// validated with go-playground/validator struct tags.
package dto

import "github.com/kheina-com/tagsvc/internal/domain/entities"

// TagsRequest is the body of add_tags/remove_tags.
type TagsRequest struct {
	PostID string   `json:"post_id" validate:"required"`
	Tags   []string `json:"tags" validate:"required,min=1,dive,required"`
}

// InheritRequest is the body of inherit_tag.
type InheritRequest struct {
	ParentTag string `json:"parent_tag" validate:"required"`
	ChildTag  string `json:"child_tag" validate:"required"`
	Deprecate bool   `json:"deprecate"`
}

// RemoveInheritanceRequest is the body of remove_inheritance.
type RemoveInheritanceRequest struct {
	ParentTag string `json:"parent_tag" validate:"required"`
	ChildTag  string `json:"child_tag" validate:"required"`
}

// UpdateTagRequest is the body of PATCH /v1/tag/{tag}. Every field is
// optional; ClearDescription is the explicit way to blank out Description,
// since an absent field is a no-op.
type UpdateTagRequest struct {
	Name             *string                `json:"name,omitempty"`
	Group            *entities.TagGroupName `json:"group,omitempty"`
	Owner            *string                `json:"owner,omitempty"`
	Description      *string                `json:"description,omitempty"`
	ClearDescription bool                   `json:"clear_description,omitempty"`
	Deprecated       *bool                  `json:"deprecated,omitempty"`
}

// LookupRequest is the body of lookup_tags.
type LookupRequest struct {
	Tag string `json:"tag"`
}
