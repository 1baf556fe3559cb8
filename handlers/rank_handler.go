package handlers

import (
	"strconv"

	config "github.com/anjiri1684/matrix_mlm/configs"
	"github.com/anjiri1684/matrix_mlm/services"
	"github.com/gofiber/fiber/v2"
)

func ListRanks(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"ranks":                 config.Business.Ranks,
		"direct_referral_bonus": config.Business.DirectBonus(),
		"matrix_width":          config.Business.MatrixWidth,
		"currency":              config.Business.Currency,
	})
}

func GetLeaderboard(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	entries, err := services.Leaderboard(c.UserContext(), limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(entries)
}
