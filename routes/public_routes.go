package routes

import (
	"github.com/anjiri1684/matrix_mlm/handlers"
	"github.com/gofiber/fiber/v2"
)

func PublicRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Get("/ranks", handlers.ListRanks)
	api.Get("/leaderboard", handlers.GetLeaderboard)
}
