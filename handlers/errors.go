package handlers

import (
	"github.com/anjiri1684/matrix_mlm/services"
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// respondError maps a service failure to its HTTP status and the
// {"error","code"} body every route returns.
func respondError(c *fiber.Ctx, err error) error {
	var typed *services.Error
	if !errors.As(err, &typed) {
		log.WithFields(log.Fields{"path": c.Path(), "method": c.Method()}).Errorf("🔥 unhandled error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error", "code": "INTERNAL"})
	}

	status := fiber.StatusInternalServerError
	switch typed.Kind {
	case services.KindValidation:
		status = fiber.StatusBadRequest
	case services.KindNotFound:
		status = fiber.StatusNotFound
	case services.KindConflict:
		status = fiber.StatusConflict
	}
	if typed.Code == services.ErrUnauthenticated.Code {
		status = fiber.StatusUnauthorized
	}

	if status == fiber.StatusInternalServerError {
		log.WithFields(log.Fields{"path": c.Path(), "code": typed.Code}).Errorf("🔥 %v", err)
	}
	return c.Status(status).JSON(fiber.Map{"error": typed.Message, "code": typed.Code})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg, "code": "BAD_REQUEST"})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid or expired JWT", "code": "UNAUTHENTICATED"})
}
