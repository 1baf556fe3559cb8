package handlers

import (
	"strconv"

	"github.com/anjiri1684/matrix_mlm/middleware"
	"github.com/anjiri1684/matrix_mlm/models"
	"github.com/anjiri1684/matrix_mlm/services"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type BankDetailsRequest struct {
	AccountName   string `json:"account_name" validate:"required"`
	AccountNumber string `json:"account_number" validate:"required"`
	BankName      string `json:"bank_name" validate:"required"`
	BranchCode    string `json:"branch_code"`
	TaxID         string `json:"tax_id"`
}

type WithdrawalRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func GetMyProfile(c *fiber.Ctx) error {
	code, ok := middleware.MemberCode(c)
	if !ok {
		return unauthorized(c)
	}
	member, err := services.GetMember(c.UserContext(), code)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(member)
}

func UpdateMyBankDetails(c *fiber.Ctx) error {
	code, ok := middleware.MemberCode(c)
	if !ok {
		return unauthorized(c)
	}
	var req BankDetailsRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Cannot parse JSON")
	}
	if err := validate.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	member, err := services.SubmitBankDetails(c.UserContext(), code, models.BankDetails{
		AccountName:   req.AccountName,
		AccountNumber: req.AccountNumber,
		BankName:      req.BankName,
		BranchCode:    req.BranchCode,
		TaxID:         req.TaxID,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(member.Bank)
}

func GetMyWallet(c *fiber.Ctx) error {
	code, ok := middleware.MemberCode(c)
	if !ok {
		return unauthorized(c)
	}
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	view, err := services.GetWallet(c.UserContext(), code, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(view)
}

func GetMyTree(c *fiber.Ctx) error {
	code, ok := middleware.MemberCode(c)
	if !ok {
		return unauthorized(c)
	}
	depth, _ := strconv.Atoi(c.Query("depth", "0"))
	tree, err := services.BuildTree(c.UserContext(), code, depth)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(tree)
}

func GetMyDirects(c *fiber.Ctx) error {
	code, ok := middleware.MemberCode(c)
	if !ok {
		return unauthorized(c)
	}
	directs, err := services.ListDirects(c.UserContext(), code)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(directs)
}

func GetMyRanks(c *fiber.Ctx) error {
	code, ok := middleware.MemberCode(c)
	if !ok {
		return unauthorized(c)
	}
	progress, err := services.GetRankProgress(c.UserContext(), code)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(progress)
}

func CreateMyWithdrawal(c *fiber.Ctx) error {
	code, ok := middleware.MemberCode(c)
	if !ok {
		return unauthorized(c)
	}
	var req WithdrawalRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Cannot parse JSON")
	}

	withdrawal, err := services.RequestWithdrawal(c.UserContext(), code, req.Amount)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(withdrawal)
}

func ListMyWithdrawals(c *fiber.Ctx) error {
	code, ok := middleware.MemberCode(c)
	if !ok {
		return unauthorized(c)
	}
	list, err := services.ListMemberWithdrawals(c.UserContext(), code)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

// GetMyIDCard returns the stored card, generating it on first request.
func GetMyIDCard(c *fiber.Ctx) error {
	code, ok := middleware.MemberCode(c)
	if !ok {
		return unauthorized(c)
	}
	member, err := services.GetMember(c.UserContext(), code)
	if err != nil {
		return respondError(c, err)
	}
	if member.IDCardURL != nil && *member.IDCardURL != "" && c.Query("refresh") != "true" {
		return c.JSON(fiber.Map{"url": *member.IDCardURL})
	}

	url, err := services.GenerateIDCard(c.UserContext(), code)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"url": url})
}
