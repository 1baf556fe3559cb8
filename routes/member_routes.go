package routes

import (
	"github.com/anjiri1684/matrix_mlm/handlers"
	"github.com/anjiri1684/matrix_mlm/middleware"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

func MemberRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	me := api.Group("/members/me", middleware.Protected())
	me.Get("", handlers.GetMyProfile)
	me.Put("/bank", handlers.UpdateMyBankDetails)
	me.Get("/wallet", handlers.GetMyWallet)
	me.Get("/tree", handlers.GetMyTree)
	me.Get("/directs", handlers.GetMyDirects)
	me.Get("/ranks", handlers.GetMyRanks)
	me.Post("/withdrawals", handlers.CreateMyWithdrawal)
	me.Get("/withdrawals", handlers.ListMyWithdrawals)
	me.Get("/id-card", handlers.GetMyIDCard)
	me.Get("/kyc/upload-signature", handlers.GenerateKYCUploadSignature)

	api.Use("/ws/earnings", handlers.EarningsUpgrade)
	api.Get("/ws/earnings", websocket.New(handlers.ServeEarnings))
}
