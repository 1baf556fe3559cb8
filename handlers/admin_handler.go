package handlers

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/anjiri1684/matrix_mlm/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type StatusRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

type KYCRequest struct {
	Verified *bool `json:"verified" validate:"required"`
}

type ResolveWithdrawalRequest struct {
	Decision      string `json:"decision" validate:"required,oneof=approved rejected"`
	Remark        string `json:"remark"`
	TransactionID string `json:"transaction_id"`
}

func GetDashboardStats(c *fiber.Ctx) error {
	stats, err := services.GetStats(c.UserContext(), c.Query("range", services.Range7Days))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stats)
}

func ListMembers(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	result, err := services.ListMembers(c.UserContext(), page, limit, c.Query("search"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

func SetMemberStatus(c *fiber.Ctx) error {
	var req StatusRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Cannot parse JSON")
	}
	if err := validate.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}
	member, err := services.SetMemberStatus(c.UserContext(), c.Params("memberId"), *req.IsActive)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(member)
}

func VerifyMemberKYC(c *fiber.Ctx) error {
	var req KYCRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Cannot parse JSON")
	}
	if err := validate.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}
	member, err := services.VerifyKYC(c.UserContext(), c.Params("memberId"), *req.Verified)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(member.Bank)
}

func ActivateMember(c *fiber.Ctx) error {
	result, err := services.ActivateMember(c.UserContext(), c.Params("memberId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

func GetMemberTree(c *fiber.Ctx) error {
	depth, _ := strconv.Atoi(c.Query("depth", "0"))
	tree, err := services.BuildTree(c.UserContext(), c.Params("memberId"), depth)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(tree)
}

func ListWithdrawals(c *fiber.Ctx) error {
	list, err := services.ListWithdrawals(c.UserContext(), c.Query("status"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

func ResolveWithdrawal(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("withdrawalId"))
	if err != nil {
		return badRequest(c, "Invalid withdrawal ID")
	}
	var req ResolveWithdrawalRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Cannot parse JSON")
	}
	if err := validate.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	withdrawal, err := services.ResolveWithdrawal(c.UserContext(), id, services.ResolveInput{
		Decision:      req.Decision,
		Remark:        req.Remark,
		TransactionID: req.TransactionID,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"id": withdrawal.ID, "status": withdrawal.Status})
}

func GenerateWithdrawalReport(c *fiber.Ctx) error {
	list, err := services.ListWithdrawals(c.UserContext(), c.Query("status"))
	if err != nil {
		return respondError(c, err)
	}

	b := new(bytes.Buffer)
	w := csv.NewWriter(b)

	headers := []string{"Withdrawal ID", "Requested", "Member", "Name", "Amount", "Status", "Bank", "Account", "Transaction ID", "Processed"}
	if err := w.Write(headers); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to write CSV header", "code": "INTERNAL"})
	}

	for _, wd := range list {
		txnID, processed := "", ""
		if wd.TransactionID != nil {
			txnID = *wd.TransactionID
		}
		if wd.ProcessedAt != nil {
			processed = wd.ProcessedAt.Format("2006-01-02 15:04")
		}
		row := []string{
			wd.ID.String(),
			wd.RequestedAt.Format("2006-01-02 15:04"),
			wd.MemberCode,
			wd.Member.FullName,
			wd.Amount.StringFixed(2),
			wd.Status,
			wd.Bank.BankName,
			wd.Bank.AccountNumber,
			txnID,
			processed,
		}
		if err := w.Write(row); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to write CSV row", "code": "INTERNAL"})
		}
	}
	w.Flush()

	c.Set("Content-Type", "text/csv")
	c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"withdrawals_%s.csv\"", time.Now().Format("2006-01-02")))
	return c.Send(b.Bytes())
}
