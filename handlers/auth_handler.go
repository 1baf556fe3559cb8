package handlers

import (
	"github.com/anjiri1684/matrix_mlm/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

type RegisterRequest struct {
	FullName    string `json:"full_name" validate:"required,min=3"`
	Email       string `json:"email" validate:"required,email"`
	Mobile      string `json:"mobile" validate:"required,min=7,max=20"`
	Password    string `json:"password" validate:"required,min=6"`
	SponsorCode string `json:"sponsor_code" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func RegisterMember(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Cannot parse JSON")
	}
	if err := validate.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	member, err := services.RegisterMember(c.UserContext(), services.RegisterInput{
		FullName:    req.FullName,
		Email:       req.Email,
		Mobile:      req.Mobile,
		Password:    req.Password,
		SponsorCode: req.SponsorCode,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"member_id":  member.MemberCode,
		"sponsor_id": member.SponsorID,
		"upline_id":  member.UplineID,
	})
}

func LoginMember(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Cannot parse JSON")
	}
	if err := validate.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	member, err := services.VerifyCredentials(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	t, err := services.IssueToken(member)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create token", "code": "INTERNAL"})
	}

	return c.JSON(fiber.Map{
		"token":       t,
		"member_code": member.MemberCode,
		"role":        member.Role,
	})
}
