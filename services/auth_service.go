package services

import (
	"context"
	"strings"
	"time"

	config "github.com/anjiri1684/matrix_mlm/configs"
	"github.com/anjiri1684/matrix_mlm/database"
	"github.com/anjiri1684/matrix_mlm/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const tokenTTL = 72 * time.Hour

// VerifyCredentials returns the member owning email when password matches.
// Unknown email and wrong password fail the same way.
func VerifyCredentials(ctx context.Context, email, password string) (*models.Member, error) {
	var member models.Member
	err := database.DB.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, aborted(err, "load member")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(member.Password), []byte(password)); err != nil {
		return nil, ErrUnauthenticated
	}
	return &member, nil
}

// IssueToken signs the session token carried by the member routes.
func IssueToken(member *models.Member) (string, error) {
	claims := jwt.MapClaims{
		"user_id":     member.ID.String(),
		"member_code": member.MemberCode,
		"role":        member.Role,
		"exp":         time.Now().Add(tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.Config("JWT_SECRET")))
}
