package services

import (
	config "github.com/anjiri1684/matrix_mlm/configs"
	"github.com/anjiri1684/matrix_mlm/models"
	"github.com/anjiri1684/matrix_mlm/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NextMemberID mints the next member code inside tx. The increment happens in
// the store, and the row stays locked by tx until it commits, so concurrent
// registrations never observe the same value. A rolled back tx gives its
// number back instead of leaving a gap, so aborted registrations do not burn
// codes. A committed number is never reused.
func NextMemberID(tx *gorm.DB) (string, int64, error) {
	biz := config.Business

	seed := models.Counter{Name: models.MemberCounter, Seq: biz.SequenceBase}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return "", 0, aborted(err, "seed member counter")
	}

	res := tx.Model(&models.Counter{}).
		Where("name = ?", models.MemberCounter).
		UpdateColumn("seq", gorm.Expr("seq + ?", 1))
	if res.Error != nil {
		return "", 0, aborted(res.Error, "increment member counter")
	}

	var counter models.Counter
	if err := tx.Where("name = ?", models.MemberCounter).First(&counter).Error; err != nil {
		return "", 0, aborted(err, "read member counter")
	}

	return utils.FormatMemberCode(biz.MemberPrefix, counter.Seq), counter.Seq, nil
}
