package services

import (
	"context"
	"strings"

	"github.com/anjiri1684/matrix_mlm/database"
	"github.com/anjiri1684/matrix_mlm/models"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SubmitBankDetails stores the member's bank record. Any change drops the
// verified flag until an admin checks it again.
func SubmitBankDetails(ctx context.Context, memberCode string, bank models.BankDetails) (*models.Member, error) {
	bank.Verified = false
	if !bank.Complete() {
		return nil, &Error{Kind: KindValidation, Code: "INCOMPLETE_BANK_DETAILS", Message: "account name, account number and bank name are required"}
	}

	res := database.DB.WithContext(ctx).Model(&models.Member{}).
		Where("member_code = ?", memberCode).
		Updates(map[string]interface{}{
			"bank_account_name":   bank.AccountName,
			"bank_account_number": bank.AccountNumber,
			"bank_bank_name":      bank.BankName,
			"bank_branch_code":    bank.BranchCode,
			"bank_tax_id":         bank.TaxID,
			"bank_verified":       false,
		})
	if res.Error != nil {
		return nil, aborted(res.Error, "save bank details")
	}
	if res.RowsAffected == 0 {
		return nil, ErrMemberNotFound
	}
	return GetMember(ctx, memberCode)
}

// VerifyKYC sets the verified flag on a member's bank record.
func VerifyKYC(ctx context.Context, memberCode string, verified bool) (*models.Member, error) {
	member, err := GetMember(ctx, memberCode)
	if err != nil {
		return nil, err
	}
	if verified && !member.Bank.Complete() {
		return nil, &Error{Kind: KindConflict, Code: "INCOMPLETE_BANK_DETAILS", Message: "member has not submitted complete bank details"}
	}

	if err := database.DB.WithContext(ctx).Model(&models.Member{}).
		Where("member_code = ?", memberCode).
		UpdateColumn("bank_verified", verified).Error; err != nil {
		return nil, aborted(err, "update kyc status")
	}
	member.Bank.Verified = verified

	log.WithFields(log.Fields{"member_code": memberCode, "verified": verified}).Info("kyc status changed")
	return member, nil
}

// SetMemberStatus toggles is_active directly. It never runs the activation
// cascade and never clears activated_at, so a later activation attempt is
// still refused.
func SetMemberStatus(ctx context.Context, memberCode string, active bool) (*models.Member, error) {
	res := database.DB.WithContext(ctx).Model(&models.Member{}).
		Where("member_code = ?", memberCode).
		UpdateColumn("is_active", active)
	if res.Error != nil {
		return nil, aborted(res.Error, "update member status")
	}
	if res.RowsAffected == 0 {
		return nil, ErrMemberNotFound
	}
	return GetMember(ctx, memberCode)
}

type MemberPage struct {
	Members []models.Member `json:"members"`
	Total   int64           `json:"total"`
	Page    int             `json:"page"`
	Limit   int             `json:"limit"`
}

// ListMembers pages through members, optionally filtered by a search term on
// code, name, email or mobile.
func ListMembers(ctx context.Context, page, limit int, search string) (*MemberPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	q := database.DB.WithContext(ctx).Model(&models.Member{})
	if term := strings.TrimSpace(search); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q = q.Where("LOWER(member_code) LIKE ? OR LOWER(full_name) LIKE ? OR LOWER(email) LIKE ? OR mobile LIKE ?",
			like, like, like, like)
	}

	result := &MemberPage{Page: page, Limit: limit}
	if err := q.Session(&gorm.Session{}).Count(&result.Total).Error; err != nil {
		return nil, aborted(err, "count members")
	}
	if err := q.Order("seq asc").Offset((page - 1) * limit).Limit(limit).Find(&result.Members).Error; err != nil {
		return nil, aborted(err, "list members")
	}
	return result, nil
}

// SetIDCardURL records where the member's generated ID card lives.
func SetIDCardURL(ctx context.Context, memberCode, url string) error {
	res := database.DB.WithContext(ctx).Model(&models.Member{}).
		Where("member_code = ?", memberCode).UpdateColumn("id_card_url", url)
	if res.Error != nil {
		return aborted(res.Error, "save id card url")
	}
	if res.RowsAffected == 0 {
		return ErrMemberNotFound
	}
	return nil
}

func memberByCode(tx *gorm.DB, memberCode string) (*models.Member, error) {
	var member models.Member
	if err := tx.Where("member_code = ?", memberCode).First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, aborted(err, "load member")
	}
	return &member, nil
}
