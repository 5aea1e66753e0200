// Package routes wires HTTP paths to the tag controller, grouped by the
// v1 (bearer token) and i1 (internal shared-secret) namespaces.
package routes

import (
	"github.com/gofiber/fiber/v2"

	tagctrl "github.com/kheina-com/tagsvc/internal/http/controllers/tag"
	"github.com/kheina-com/tagsvc/internal/http/middleware"
)

// Register attaches every tag route to app.
func Register(app *fiber.App, ctl *tagctrl.Controller) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	v1 := app.Group("/v1", middleware.Auth())
	v1.Post("/add_tags", ctl.AddTags)
	v1.Post("/remove_tags", ctl.RemoveTags)
	v1.Post("/inherit_tag", ctl.InheritTag)
	v1.Post("/remove_inheritance", ctl.RemoveInheritance)
	v1.Patch("/tag/:tag", ctl.UpdateTag)
	v1.Get("/tag/:tag", ctl.GetTag)
	v1.Get("/fetch_tags/:post_id", ctl.FetchTagsByPost)
	v1.Post("/lookup_tags", ctl.LookupTags)
	v1.Get("/get_user_tags/:handle", ctl.GetUserTags)
	v1.Get("/frequently_used", ctl.FrequentlyUsed)

	i1 := app.Group("/i1", middleware.InternalOnly())
	i1.Get("/tags/:post_id", ctl.FetchTagsByPost)
}
