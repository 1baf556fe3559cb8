package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/anjiri1684/matrix_mlm/models"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var contactSeq int64

func registerUnder(t *testing.T, sponsor, name string) *models.Member {
	t.Helper()
	n := atomic.AddInt64(&contactSeq, 1)
	m, err := RegisterMember(context.Background(), RegisterInput{
		FullName:    name,
		Email:       fmt.Sprintf("%s-%d@example.com", name, n),
		Mobile:      fmt.Sprintf("0711%06d", n),
		Password:    "password123",
		SponsorCode: sponsor,
	})
	require.NoError(t, err)
	return m
}

func reload(t *testing.T, db *gorm.DB, code string) models.Member {
	t.Helper()
	var m models.Member
	require.NoError(t, db.Where("member_code = ?", code).First(&m).Error)
	return m
}

func entriesFor(t *testing.T, db *gorm.DB, code, category string) []models.WalletEntry {
	t.Helper()
	var entries []models.WalletEntry
	require.NoError(t, db.Where("member_code = ? AND category = ?", code, category).Find(&entries).Error)
	return entries
}

func requireLedgerConsistent(t *testing.T, db *gorm.DB) {
	t.Helper()
	var wallets []models.Wallet
	require.NoError(t, db.Find(&wallets).Error)
	for _, w := range wallets {
		replayed, err := ReplayBalance(db, w.MemberCode)
		require.NoError(t, err)
		require.Truef(t, replayed.Equal(w.Balance), "wallet %s: balance %s, replayed %s", w.MemberCode, w.Balance, replayed)
	}
}
