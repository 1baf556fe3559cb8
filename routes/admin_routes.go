package routes

import (
	"github.com/anjiri1684/matrix_mlm/handlers"
	"github.com/anjiri1684/matrix_mlm/middleware"
	"github.com/gofiber/fiber/v2"
)

func AdminRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	admin := api.Group("/admin", middleware.Protected(), middleware.AdminRequired())

	admin.Get("/stats", handlers.GetDashboardStats)

	members := admin.Group("/members")
	members.Get("", handlers.ListMembers)
	members.Put("/:memberId/status", handlers.SetMemberStatus)
	members.Put("/:memberId/kyc", handlers.VerifyMemberKYC)
	members.Post("/:memberId/activate", handlers.ActivateMember)
	members.Get("/:memberId/tree", handlers.GetMemberTree)

	admin.Get("/withdrawals", handlers.ListWithdrawals)
	admin.Post("/withdrawals/:withdrawalId/resolve", handlers.ResolveWithdrawal)

	reports := admin.Group("/reports")
	reports.Get("/withdrawals", handlers.GenerateWithdrawalReport)
}
