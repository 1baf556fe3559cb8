package services

import (
	"context"
	"fmt"
	"time"

	config "github.com/anjiri1684/matrix_mlm/configs"
	"github.com/anjiri1684/matrix_mlm/database"
	"github.com/anjiri1684/matrix_mlm/metrics"
	"github.com/anjiri1684/matrix_mlm/models"
	"github.com/anjiri1684/matrix_mlm/notifications"
	"github.com/anjiri1684/matrix_mlm/websocket"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// UplineUpdate describes what one activation did to one upline node.
type UplineUpdate struct {
	MemberCode string `json:"member_code"`
	TeamSize   int    `json:"team_size"`
	Upgraded   bool   `json:"upgraded"`
	NewRank    string `json:"new_rank,omitempty"`
}

type ActivationResult struct {
	MemberCode      string               `json:"member_code"`
	ReferrerCode    string               `json:"referrer_code,omitempty"`
	DirectBonusPaid bool                 `json:"direct_bonus_paid"`
	Uplines         []UplineUpdate       `json:"uplines"`
	Credits         []models.WalletEntry `json:"-"`
}

// ActivateMember flips the member to active and runs the commission cascade,
// all in one transaction.
func ActivateMember(ctx context.Context, memberCode string) (*ActivationResult, error) {
	var result *ActivationResult
	err := database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		result, err = activateTx(tx, memberCode, time.Now())
		return err
	})
	if err != nil {
		return nil, aborted(err, "activate member")
	}

	afterActivation(result)
	return result, nil
}

// activateTx performs the false -> true transition exactly once, guarded by
// activated_at in the UPDATE itself, and only then runs the cascade.
func activateTx(tx *gorm.DB, memberCode string, now time.Time) (*ActivationResult, error) {
	res := tx.Model(&models.Member{}).
		Where("member_code = ? AND activated_at IS NULL", memberCode).
		Updates(map[string]interface{}{"is_active": true, "activated_at": now})
	if res.Error != nil {
		return nil, aborted(res.Error, "mark member active")
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := tx.Model(&models.Member{}).Where("member_code = ?", memberCode).Count(&count).Error; err != nil {
			return nil, aborted(err, "lookup member")
		}
		if count == 0 {
			return nil, ErrMemberNotFound
		}
		return nil, ErrAlreadyActive
	}

	var member models.Member
	if err := tx.Where("member_code = ?", memberCode).First(&member).Error; err != nil {
		return nil, aborted(err, "load member")
	}

	result := &ActivationResult{MemberCode: memberCode, Uplines: []UplineUpdate{}}
	if member.ReferredBy == nil || *member.ReferredBy == "" {
		return result, nil
	}

	var referrer models.Member
	if err := tx.Where("member_code = ?", *member.ReferredBy).First(&referrer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSponsorNotFound
		}
		return nil, aborted(err, "load referrer")
	}
	result.ReferrerCode = referrer.MemberCode

	paid, entry, err := payDirectBonus(tx, &referrer, &member)
	if err != nil {
		return nil, err
	}
	result.DirectBonusPaid = paid
	if entry != nil {
		result.Credits = append(result.Credits, *entry)
	}

	// The referrer's own team count moves only when its upline is walked, so the
	// walk begins one level above it.
	visited := map[string]bool{member.MemberCode: true, referrer.MemberCode: true}
	next := referrer.ReferredBy
	for next != nil && *next != "" {
		code := *next
		if visited[code] {
			return nil, ErrCorruptGraph
		}
		visited[code] = true

		update, node, credit, err := growTeam(tx, code, now)
		if err != nil {
			return nil, err
		}
		result.Uplines = append(result.Uplines, *update)
		if credit != nil {
			result.Credits = append(result.Credits, *credit)
		}
		next = node.ReferredBy
	}

	return result, nil
}

// payDirectBonus credits the referrer for one of its first MatrixWidth
// activated directs. The cap check and the increment are one guarded UPDATE.
func payDirectBonus(tx *gorm.DB, referrer, member *models.Member) (bool, *models.WalletEntry, error) {
	biz := config.Business
	bonus := biz.DirectBonus()

	res := tx.Model(&models.Member{}).
		Where("member_code = ? AND active_direct_count < ?", referrer.MemberCode, biz.MatrixWidth).
		UpdateColumn("active_direct_count", gorm.Expr("active_direct_count + ?", 1))
	if res.Error != nil {
		return false, nil, aborted(res.Error, "count active direct")
	}
	if res.RowsAffected == 0 {
		return false, nil, nil
	}

	var entry *models.WalletEntry
	if bonus.IsPositive() {
		var err error
		entry, err = Credit(tx, referrer.MemberCode, bonus, models.CategoryDirectReferral,
			fmt.Sprintf("Direct referral bonus for %s", member.MemberCode))
		if err != nil {
			return false, nil, err
		}
	}

	updates := map[string]interface{}{
		"direct_earnings": gorm.Expr("direct_earnings + ?", bonus),
		"total_earnings":  gorm.Expr("total_earnings + ?", bonus),
	}
	if err := tx.Model(&models.Member{}).Where("member_code = ?", referrer.MemberCode).
		UpdateColumns(updates).Error; err != nil {
		return false, nil, aborted(err, "record direct earnings")
	}

	if err := tx.Where("member_code = ?", referrer.MemberCode).First(referrer).Error; err != nil {
		return false, nil, aborted(err, "reload referrer")
	}
	if referrer.ActiveDirectCount == biz.MatrixWidth && !referrer.Level1Complete {
		if err := tx.Model(&models.Member{}).Where("member_code = ?", referrer.MemberCode).
			UpdateColumn("level1_complete", true).Error; err != nil {
			return false, nil, aborted(err, "mark level one complete")
		}
		referrer.Level1Complete = true
	}
	return true, entry, nil
}

// growTeam adds one to the node's team and upgrades its rank when the new team
// size reaches a higher threshold. The rank guard keeps ranks monotonic.
func growTeam(tx *gorm.DB, code string, now time.Time) (*UplineUpdate, *models.Member, *models.WalletEntry, error) {
	res := tx.Model(&models.Member{}).Where("member_code = ?", code).
		UpdateColumn("total_team", gorm.Expr("total_team + ?", 1))
	if res.Error != nil {
		return nil, nil, nil, aborted(res.Error, "grow team")
	}
	if res.RowsAffected == 0 {
		return nil, nil, nil, ErrMemberNotFound
	}

	var node models.Member
	if err := tx.Where("member_code = ?", code).First(&node).Error; err != nil {
		return nil, nil, nil, aborted(err, "reload upline")
	}
	update := &UplineUpdate{MemberCode: code, TeamSize: node.TotalTeam}

	rank, level := config.Business.RankFor(node.TotalTeam)
	if level <= node.RankLevel {
		return update, &node, nil, nil
	}

	res = tx.Model(&models.Member{}).
		Where("member_code = ? AND rank_level < ?", code, level).
		Updates(map[string]interface{}{"rank": rank.Name, "rank_level": level})
	if res.Error != nil {
		return nil, nil, nil, aborted(res.Error, "upgrade rank")
	}
	if res.RowsAffected == 0 {
		return update, &node, nil, nil
	}

	bonus := decimal.NewFromFloat(rank.Bonus)
	history := models.RankHistory{
		MemberCode: code,
		Rank:       rank.Name,
		RankLevel:  level,
		TeamSize:   node.TotalTeam,
		Bonus:      bonus,
		AchievedAt: now,
	}
	if err := tx.Create(&history).Error; err != nil {
		return nil, nil, nil, aborted(err, "record rank history")
	}

	var entry *models.WalletEntry
	if bonus.IsPositive() {
		var err error
		entry, err = Credit(tx, code, bonus, models.CategoryRankBonus, fmt.Sprintf("%s rank bonus", rank.Name))
		if err != nil {
			return nil, nil, nil, err
		}
		if err := tx.Model(&models.Member{}).Where("member_code = ?", code).UpdateColumns(map[string]interface{}{
			"team_earnings":  gorm.Expr("team_earnings + ?", bonus),
			"total_earnings": gorm.Expr("total_earnings + ?", bonus),
		}).Error; err != nil {
			return nil, nil, nil, aborted(err, "record rank earnings")
		}
	}

	if rank.Reward != "" {
		reward := models.Reward{
			MemberCode:  code,
			Rank:        rank.Name,
			Description: rank.Reward,
			Status:      models.RewardPending,
		}
		if err := tx.Create(&reward).Error; err != nil {
			return nil, nil, nil, aborted(err, "record reward")
		}
	}

	node.Rank = rank.Name
	node.RankLevel = level
	update.Upgraded = true
	update.NewRank = rank.Name
	return update, &node, entry, nil
}

// afterActivation runs the side effects that must only follow a commit.
func afterActivation(result *ActivationResult) {
	metrics.ActivationsTotal.Inc()

	for _, credit := range result.Credits {
		metrics.CommissionCredited.WithLabelValues(credit.Category).Add(credit.Amount.InexactFloat64())
		websocket.Publish(websocket.EarningEvent{
			MemberCode: credit.MemberCode,
			Category:   credit.Category,
			Amount:     credit.Amount,
			Balance:    credit.BalanceAfter,
			At:         credit.CreatedAt,
		})
	}

	for _, u := range result.Uplines {
		if !u.Upgraded {
			continue
		}
		metrics.RankUpgradesTotal.WithLabelValues(u.NewRank).Inc()
		if notifications.EmailClient != nil {
			go notifyRankUpgrade(u)
		}
	}

	log.WithFields(log.Fields{
		"member_code":       result.MemberCode,
		"referrer_code":     result.ReferrerCode,
		"direct_bonus_paid": result.DirectBonusPaid,
		"uplines_touched":   len(result.Uplines),
	}).Info("member activated")
}

func notifyRankUpgrade(u UplineUpdate) {
	var member models.Member
	if err := database.DB.Select("full_name", "email").Where("member_code = ?", u.MemberCode).First(&member).Error; err != nil {
		log.WithField("member_code", u.MemberCode).Warnf("rank upgrade mail skipped: %v", err)
		return
	}
	notifications.SendEmail(
		member.FullName,
		member.Email,
		fmt.Sprintf("You reached %s rank!", u.NewRank),
		fmt.Sprintf("<h1>Congratulations!</h1><p>Your team has grown to %d members and you are now %s. Your rank bonus has been added to your wallet.</p>", u.TeamSize, u.NewRank),
	)
}
