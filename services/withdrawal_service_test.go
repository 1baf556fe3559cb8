package services

import (
	"context"
	"testing"

	"github.com/anjiri1684/matrix_mlm/models"
	"github.com/anjiri1684/matrix_mlm/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func verifiedMemberWithBalance(t *testing.T, db *gorm.DB, balance int64) models.Member {
	t.Helper()
	m := testutil.InsertMember(t, db, "W1", nil, nil)
	_, err := SubmitBankDetails(context.Background(), m.MemberCode, models.BankDetails{
		AccountName:   "Jane Doe",
		AccountNumber: "0011223344",
		BankName:      "First Bank",
	})
	require.NoError(t, err)
	_, err = VerifyKYC(context.Background(), m.MemberCode, true)
	require.NoError(t, err)

	_, err = Credit(db, m.MemberCode, decimal.NewFromInt(balance), models.CategoryAdjustment, "opening")
	require.NoError(t, err)
	return m
}

func balanceOf(t *testing.T, db *gorm.DB, code string) decimal.Decimal {
	t.Helper()
	var w models.Wallet
	require.NoError(t, db.Where("member_code = ?", code).First(&w).Error)
	return w.Balance
}

func TestRequestWithdrawalDebitsAndSnapshotsBank(t *testing.T) {
	db := testutil.SetupDB(t)
	m := verifiedMemberWithBalance(t, db, 500)

	w, err := RequestWithdrawal(context.Background(), m.MemberCode, decimal.NewFromInt(300))
	require.NoError(t, err)
	assert.Equal(t, models.WithdrawalPending, w.Status)
	assert.Equal(t, "0011223344", w.Bank.AccountNumber)
	assert.True(t, balanceOf(t, db, m.MemberCode).Equal(decimal.NewFromInt(200)))

	// Later bank edits do not touch the snapshot.
	_, err = SubmitBankDetails(context.Background(), m.MemberCode, models.BankDetails{
		AccountName: "Jane Doe", AccountNumber: "9999", BankName: "Other Bank",
	})
	require.NoError(t, err)
	var stored models.Withdrawal
	require.NoError(t, db.First(&stored, "id = ?", w.ID).Error)
	assert.Equal(t, "0011223344", stored.Bank.AccountNumber)
}

func TestRequestWithdrawalGuards(t *testing.T) {
	db := testutil.SetupDB(t)
	m := verifiedMemberWithBalance(t, db, 500)
	ctx := context.Background()

	_, err := RequestWithdrawal(ctx, m.MemberCode, decimal.NewFromInt(199))
	assert.ErrorIs(t, err, ErrBelowMinimumWithdrawal)

	_, err = RequestWithdrawal(ctx, m.MemberCode, decimal.NewFromInt(600))
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	_, err = RequestWithdrawal(ctx, m.MemberCode, decimal.Zero)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = VerifyKYC(ctx, m.MemberCode, false)
	require.NoError(t, err)
	_, err = RequestWithdrawal(ctx, m.MemberCode, decimal.NewFromInt(250))
	assert.ErrorIs(t, err, ErrKYCNotVerified)

	var count int64
	require.NoError(t, db.Model(&models.Withdrawal{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.True(t, balanceOf(t, db, m.MemberCode).Equal(decimal.NewFromInt(500)))
}

func TestRejectWithdrawalRefundsExactlyOnce(t *testing.T) {
	db := testutil.SetupDB(t)
	m := verifiedMemberWithBalance(t, db, 500)
	ctx := context.Background()

	w, err := RequestWithdrawal(ctx, m.MemberCode, decimal.NewFromInt(300))
	require.NoError(t, err)
	before := balanceOf(t, db, m.MemberCode)

	resolved, err := ResolveWithdrawal(ctx, w.ID, ResolveInput{Decision: "rejected", Remark: "bank mismatch"})
	require.NoError(t, err)
	assert.Equal(t, models.WithdrawalRejected, resolved.Status)
	require.NotNil(t, resolved.AdminRemark)
	assert.Equal(t, "bank mismatch", *resolved.AdminRemark)
	assert.NotNil(t, resolved.ProcessedAt)

	after := balanceOf(t, db, m.MemberCode)
	assert.True(t, after.Sub(before).Equal(decimal.NewFromInt(300)))

	_, err = ResolveWithdrawal(ctx, w.ID, ResolveInput{Decision: "rejected"})
	assert.ErrorIs(t, err, ErrAlreadyProcessed)
	_, err = ResolveWithdrawal(ctx, w.ID, ResolveInput{Decision: "approved"})
	assert.ErrorIs(t, err, ErrAlreadyProcessed)

	assert.True(t, balanceOf(t, db, m.MemberCode).Equal(after))
	assert.Len(t, entriesFor(t, db, m.MemberCode, models.CategoryRefund), 1)
	requireLedgerConsistent(t, db)
}

func TestApproveWithdrawalLeavesWallet(t *testing.T) {
	db := testutil.SetupDB(t)
	m := verifiedMemberWithBalance(t, db, 500)
	ctx := context.Background()

	w, err := RequestWithdrawal(ctx, m.MemberCode, decimal.NewFromInt(250))
	require.NoError(t, err)

	resolved, err := ResolveWithdrawal(ctx, w.ID, ResolveInput{Decision: "Approved", TransactionID: "TXN-1"})
	require.NoError(t, err)
	assert.Equal(t, models.WithdrawalApproved, resolved.Status)
	require.NotNil(t, resolved.TransactionID)
	assert.Equal(t, "TXN-1", *resolved.TransactionID)
	assert.True(t, balanceOf(t, db, m.MemberCode).Equal(decimal.NewFromInt(250)))

	stale, err := StalePendingWithdrawals(ctx, w.RequestedAt.Add(1))
	require.NoError(t, err)
	assert.Empty(t, stale)
}

func TestResolveWithdrawalErrors(t *testing.T) {
	testutil.SetupDB(t)
	ctx := context.Background()

	_, err := ResolveWithdrawal(ctx, uuid.New(), ResolveInput{Decision: "approved"})
	assert.ErrorIs(t, err, ErrWithdrawalNotFound)

	_, err = ResolveWithdrawal(ctx, uuid.New(), ResolveInput{Decision: "maybe"})
	assert.ErrorIs(t, err, ErrInvalidDecision)
}
