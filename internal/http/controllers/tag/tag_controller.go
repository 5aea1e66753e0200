// Package tag implements the Fiber handlers for the tag HTTP surface,
// delegating all orchestration to services.Tagger.
package tag

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/kheina-com/tagsvc/internal/application/services"
	"github.com/kheina-com/tagsvc/internal/domain/entities"
	"github.com/kheina-com/tagsvc/internal/domain/repositories"
	"github.com/kheina-com/tagsvc/internal/http/dto"
	"github.com/kheina-com/tagsvc/internal/http/middleware"
	"github.com/kheina-com/tagsvc/internal/shared/apperr"
)

// Controller wires the Fiber handlers to a Tagger instance.
type Controller struct {
	tagger   *services.Tagger
	validate *validator.Validate
}

func NewController(tagger *services.Tagger) *Controller {
	return &Controller{tagger: tagger, validate: validator.New()}
}

func (ctl *Controller) bind(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return apperr.BadRequest("malformed request body")
	}
	if err := ctl.validate.Struct(out); err != nil {
		return apperr.BadRequest("validation failed").WithDetails("error", err.Error())
	}
	return nil
}

// AddTags handles POST /v1/add_tags.
func (ctl *Controller) AddTags(c *fiber.Ctx) error {
	var req dto.TagsRequest
	if err := ctl.bind(c, &req); err != nil {
		return err
	}
	postID, err := entities.ParsePostID(req.PostID)
	if err != nil {
		return err
	}
	user := middleware.UserFromCtx(c)
	if err := ctl.tagger.AddTags(c.Context(), user, postID, req.Tags); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// RemoveTags handles POST /v1/remove_tags.
func (ctl *Controller) RemoveTags(c *fiber.Ctx) error {
	var req dto.TagsRequest
	if err := ctl.bind(c, &req); err != nil {
		return err
	}
	postID, err := entities.ParsePostID(req.PostID)
	if err != nil {
		return err
	}
	user := middleware.UserFromCtx(c)
	if err := ctl.tagger.RemoveTags(c.Context(), user, postID, req.Tags); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// InheritTag handles POST /v1/inherit_tag.
func (ctl *Controller) InheritTag(c *fiber.Ctx) error {
	var req dto.InheritRequest
	if err := ctl.bind(c, &req); err != nil {
		return err
	}
	user := middleware.UserFromCtx(c)
	if err := ctl.tagger.InheritTag(c.Context(), user, req.ParentTag, req.ChildTag, req.Deprecate); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// RemoveInheritance handles POST /v1/remove_inheritance.
func (ctl *Controller) RemoveInheritance(c *fiber.Ctx) error {
	var req dto.RemoveInheritanceRequest
	if err := ctl.bind(c, &req); err != nil {
		return err
	}
	user := middleware.UserFromCtx(c)
	if err := ctl.tagger.RemoveInheritance(c.Context(), user, req.ParentTag, req.ChildTag); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// UpdateTag handles PATCH /v1/tag/{tag}.
func (ctl *Controller) UpdateTag(c *fiber.Ctx) error {
	name := c.Params("tag")
	if name == "" {
		return apperr.BadRequest("tag name is required")
	}
	var req dto.UpdateTagRequest
	if err := ctl.bind(c, &req); err != nil {
		return err
	}

	patch := repositories.TagUpdate{
		Name:             req.Name,
		Group:            req.Group,
		OwnerHandle:      req.Owner,
		Description:      req.Description,
		ClearDescription: req.ClearDescription,
		Deprecated:       req.Deprecated,
	}

	user := middleware.UserFromCtx(c)
	if err := ctl.tagger.UpdateTag(c.Context(), user, name, patch); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// FetchTagsByPost handles GET /v1/fetch_tags/{post_id} and the internal
// GET /i1/tags/{post_id} (on the internal route the visibility check still
// runs, and passes for every post because InternalOnly stamped an
// internal-scoped AuthUser).
func (ctl *Controller) FetchTagsByPost(c *fiber.Ctx) error {
	postID, err := entities.ParsePostID(c.Params("post_id"))
	if err != nil {
		return err
	}
	user := middleware.UserFromCtx(c)
	groups, err := ctl.tagger.FetchTagsByPost(c.Context(), user, postID)
	if err != nil {
		return err
	}
	return c.JSON(groups)
}

// LookupTags handles POST /v1/lookup_tags.
func (ctl *Controller) LookupTags(c *fiber.Ctx) error {
	var req dto.LookupRequest
	if err := ctl.bind(c, &req); err != nil {
		return err
	}
	user := middleware.UserFromCtx(c)
	tags, err := ctl.tagger.TagLookup(c.Context(), user, req.Tag)
	if err != nil {
		return err
	}
	return c.JSON(tags)
}

// GetUserTags handles GET /v1/get_user_tags/{handle}.
func (ctl *Controller) GetUserTags(c *fiber.Ctx) error {
	handle := c.Params("handle")
	if handle == "" {
		return apperr.BadRequest("handle is required")
	}
	user := middleware.UserFromCtx(c)
	tags, err := ctl.tagger.FetchTagsByUser(c.Context(), user, handle)
	if err != nil {
		return err
	}
	return c.JSON(tags)
}

// FrequentlyUsed handles GET /v1/frequently_used.
func (ctl *Controller) FrequentlyUsed(c *fiber.Ctx) error {
	user := middleware.UserFromCtx(c)
	groups, err := ctl.tagger.FrequentlyUsed(c.Context(), user)
	if err != nil {
		return err
	}
	return c.JSON(groups)
}

// GetTag handles GET /v1/tag/{tag}.
func (ctl *Controller) GetTag(c *fiber.Ctx) error {
	name := c.Params("tag")
	if name == "" {
		return apperr.BadRequest("tag name is required")
	}
	user := middleware.UserFromCtx(c)
	tag, err := ctl.tagger.FetchTag(c.Context(), user, name)
	if err != nil {
		return err
	}
	return c.JSON(tag)
}
