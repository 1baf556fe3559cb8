package routes

import (
	"github.com/anjiri1684/matrix_mlm/handlers"
	"github.com/gofiber/fiber/v2"
)

func AuthRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Post("/register", handlers.RegisterMember)
	auth.Post("/login", handlers.LoginMember)
}
