package handlers

import (
	"github.com/anjiri1684/matrix_mlm/middleware"
	"github.com/anjiri1684/matrix_mlm/services"
	"github.com/gofiber/fiber/v2"
)

type CaptureRequest struct {
	OrderID string `json:"order_id" validate:"required"`
}

func CreateActivationOrder(c *fiber.Ctx) error {
	code, ok := middleware.MemberCode(c)
	if !ok {
		return unauthorized(c)
	}

	payment, err := services.CreateActivationPayment(c.UserContext(), code)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"payment_id": payment.ID,
		"order_id":   payment.ProviderOrderID,
		"amount":     payment.Amount,
		"currency":   payment.Currency,
	})
}

func CaptureActivationOrder(c *fiber.Ctx) error {
	code, ok := middleware.MemberCode(c)
	if !ok {
		return unauthorized(c)
	}
	var req CaptureRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Cannot parse JSON")
	}
	if err := validate.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	payment, result, err := services.CompleteActivationPayment(c.UserContext(), code, req.OrderID)
	if err != nil {
		return respondError(c, err)
	}
	if result == nil {
		return c.JSON(fiber.Map{"message": "Payment already processed", "status": payment.Status})
	}
	return c.JSON(fiber.Map{"status": payment.Status, "activation": result})
}
