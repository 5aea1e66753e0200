// Package router assembles the Fiber application: global middleware, error
// handling, and route registration, handing cmd/server.go a ready
// *fiber.App.
package router

import (
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/kheina-com/tagsvc/internal/application/services"
	tagctrl "github.com/kheina-com/tagsvc/internal/http/controllers/tag"
	"github.com/kheina-com/tagsvc/internal/http/middleware"
	"github.com/kheina-com/tagsvc/internal/http/routes"
)

// NewFiberRouter builds the application's *fiber.App, wired to tagger.
func NewFiberRouter(tagger *services.Tagger) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())

	ctl := tagctrl.NewController(tagger)
	routes.Register(app, ctl)

	return app
}
