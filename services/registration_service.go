package services

import (
	"context"
	"strings"

	config "github.com/anjiri1684/matrix_mlm/configs"
	"github.com/anjiri1684/matrix_mlm/database"
	"github.com/anjiri1684/matrix_mlm/metrics"
	"github.com/anjiri1684/matrix_mlm/models"
	"github.com/anjiri1684/matrix_mlm/notifications"
	"github.com/anjiri1684/matrix_mlm/utils"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RegisterInput struct {
	FullName    string
	Email       string
	Mobile      string
	Password    string
	SponsorCode string
}

// RegisterMember creates an inactive member under SponsorCode. Sponsor lookup,
// the direct-referral cap, code allocation, placement and the insert share
// one transaction.
func RegisterMember(ctx context.Context, in RegisterInput) (*models.Member, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	mobile := strings.TrimSpace(in.Mobile)
	sponsorCode := utils.NormalizeMemberCode(in.SponsorCode)

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}

	var member models.Member
	err = database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sponsor models.Member
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("member_code = ?", sponsorCode).First(&sponsor).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSponsorNotFound
			}
			return aborted(err, "load sponsor")
		}

		var directs int64
		if err := tx.Model(&models.Member{}).Where("sponsor_id = ?", sponsor.MemberCode).Count(&directs).Error; err != nil {
			return aborted(err, "count direct referrals")
		}
		if directs >= int64(config.Business.MatrixWidth) {
			return ErrSponsorCapacityExceeded
		}

		var taken int64
		if err := tx.Model(&models.Member{}).Where("email = ? OR mobile = ?", email, mobile).Count(&taken).Error; err != nil {
			return aborted(err, "check contact uniqueness")
		}
		if taken > 0 {
			return ErrDuplicateContact
		}

		code, seq, err := NextMemberID(tx)
		if err != nil {
			return err
		}

		uplineCode, err := FindPlacement(tx, sponsor.MemberCode)
		if err != nil {
			return err
		}
		if err := claimSlot(tx, uplineCode); err != nil {
			return err
		}

		sponsorID := sponsor.MemberCode
		member = models.Member{
			MemberCode: code,
			Seq:        seq,
			FullName:   strings.TrimSpace(in.FullName),
			Email:      email,
			Mobile:     mobile,
			Password:   string(hashedPassword),
			Role:       models.RoleUser,
			SponsorID:  &sponsorID,
			UplineID:   &uplineCode,
			ReferredBy: &sponsorID,
			IsActive:   false,
			Rank:       config.Business.InitialRank().Name,
		}
		if err := tx.Create(&member).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateContact
			}
			return aborted(err, "insert member")
		}
		return nil
	})
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues("failed").Inc()
		return nil, err
	}

	metrics.RegistrationsTotal.WithLabelValues("created").Inc()
	log.WithFields(log.Fields{
		"member_code": member.MemberCode,
		"sponsor_id":  *member.SponsorID,
		"upline_id":   *member.UplineID,
	}).Info("member registered")

	subject, body := notifications.WelcomeEmail(member.FullName, member.MemberCode, *member.SponsorID)
	if notifications.EmailClient != nil {
		go notifications.SendEmail(member.FullName, member.Email, subject, body)
	}
	return &member, nil
}

// claimSlot locks the chosen parent and re-counts its children inside the
// inserting transaction, so two registrations cannot both take its last slot.
func claimSlot(tx *gorm.DB, uplineCode string) error {
	var parent models.Member
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("member_code = ?", uplineCode).First(&parent).Error; err != nil {
		return aborted(err, "lock placement parent")
	}

	children, err := countPlacementChildren(tx, uplineCode)
	if err != nil {
		return aborted(err, "recount placement children")
	}
	if children >= int64(config.Business.MatrixWidth) {
		return &Error{
			Kind:    KindAborted,
			Code:    ErrTransactionAborted.Code,
			Message: "placement slot under " + uplineCode + " was taken concurrently",
		}
	}
	return nil
}
