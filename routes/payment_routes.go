package routes

import (
	"github.com/anjiri1684/matrix_mlm/handlers"
	"github.com/anjiri1684/matrix_mlm/middleware"
	"github.com/gofiber/fiber/v2"
)

func PaymentRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	paypal := api.Group("/payments/activation/paypal", middleware.Protected())
	paypal.Post("/order", handlers.CreateActivationOrder)
	paypal.Post("/capture", handlers.CaptureActivationOrder)
}
