package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/kheina-com/tagsvc/internal/shared/apperr"
	"github.com/kheina-com/tagsvc/pkg/logger"
)

// ErrorHandler translates apperr.Error (and any other error a handler
// returns) into the JSON error envelope, logging Internal failures at
// Error level; other kinds are not logged. Install via fiber.Config.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(fiber.Map{"message": fiberErr.Message})
		}
		appErr = apperr.Internal("internal error", err)
	}

	if appErr.Kind == apperr.KindInternal {
		logger.Log.Error("request failed", zap.Error(appErr), zap.String("path", c.Path()))
	}

	body := fiber.Map{"message": appErr.Message}
	if appErr.Details != nil {
		body["details"] = appErr.Details
	}
	return c.Status(appErr.HTTPStatus()).JSON(body)
}
