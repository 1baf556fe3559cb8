package services

import (
	"context"
	"time"

	config "github.com/anjiri1684/matrix_mlm/configs"
	"github.com/anjiri1684/matrix_mlm/database"
	"github.com/anjiri1684/matrix_mlm/models"
	"github.com/anjiri1684/matrix_mlm/payments"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const ProviderPayPal = "paypal"

var ErrPaymentNotCompleted = &Error{Kind: KindConflict, Code: "PAYMENT_NOT_COMPLETED", Message: "payment was not completed by the provider"}

// Provider calls are package variables so they can be replaced in tests.
var (
	createOrder  = payments.CreatePayPalOrder
	captureOrder = payments.CapturePayPalOrder
)

// CreateActivationPayment opens a PayPal order for the activation fee of an
// inactive member and records it as pending.
func CreateActivationPayment(ctx context.Context, memberCode string) (*models.ActivationPayment, error) {
	member, err := memberByCode(database.DB.WithContext(ctx), memberCode)
	if err != nil {
		return nil, err
	}
	if member.ActivatedAt != nil {
		return nil, ErrAlreadyActive
	}

	biz := config.Business
	amount := biz.ActivationValue()
	order, err := createOrder(amount, biz.Currency, memberCode)
	if err != nil {
		return nil, &Error{Kind: KindAborted, Code: "PROVIDER_ERROR", Message: "failed to create payment order", Err: err}
	}

	payment := models.ActivationPayment{
		MemberCode:      memberCode,
		Amount:          amount,
		Currency:        biz.Currency,
		Provider:        ProviderPayPal,
		Status:          models.PaymentPending,
		ProviderOrderID: &order.ID,
	}
	if err := database.DB.WithContext(ctx).Create(&payment).Error; err != nil {
		return nil, aborted(err, "record activation payment")
	}
	return &payment, nil
}

// CompleteActivationPayment captures the PayPal order and activates the
// member. Completing an order twice activates once.
func CompleteActivationPayment(ctx context.Context, memberCode, orderID string) (*models.ActivationPayment, *ActivationResult, error) {
	var payment models.ActivationPayment
	if err := database.DB.WithContext(ctx).
		Where("provider_order_id = ? AND member_code = ?", orderID, memberCode).
		First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrPaymentNotFound
		}
		return nil, nil, aborted(err, "load activation payment")
	}
	if payment.Status == models.PaymentSucceeded {
		return &payment, nil, nil
	}

	order, err := captureOrder(orderID)
	if err != nil {
		return nil, nil, &Error{Kind: KindAborted, Code: "PROVIDER_ERROR", Message: "failed to capture payment", Err: err}
	}
	if order.Status != payments.StatusCompleted {
		if err := database.DB.WithContext(ctx).Model(&models.ActivationPayment{}).
			Where("id = ? AND status = ?", payment.ID, models.PaymentPending).
			UpdateColumn("status", models.PaymentFailed).Error; err != nil {
			log.WithFields(log.Fields{
				"payment_id": payment.ID,
				"order_id":   orderID,
			}).Errorf("🔥 failed to mark activation payment failed: %v", err)
		}
		return nil, nil, ErrPaymentNotCompleted
	}

	return SettleActivationPayment(ctx, orderID, order.CaptureID())
}

// SettleActivationPayment marks a captured order as paid and activates its
// member in the same transaction. A member an admin already activated keeps
// the payment without a second cascade.
func SettleActivationPayment(ctx context.Context, orderID, captureID string) (*models.ActivationPayment, *ActivationResult, error) {
	var (
		payment models.ActivationPayment
		result  *ActivationResult
	)
	err := database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("provider_order_id = ?", orderID).First(&payment).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPaymentNotFound
			}
			return aborted(err, "load activation payment")
		}

		updates := map[string]interface{}{"status": models.PaymentSucceeded}
		if captureID != "" {
			updates["provider_txn_id"] = captureID
		}
		res := tx.Model(&models.ActivationPayment{}).
			Where("id = ? AND status <> ?", payment.ID, models.PaymentSucceeded).
			Updates(updates)
		if res.Error != nil {
			return aborted(res.Error, "settle activation payment")
		}
		if res.RowsAffected == 0 {
			return nil
		}

		var err error
		result, err = activateTx(tx, payment.MemberCode, time.Now())
		if errors.Is(err, ErrAlreadyActive) {
			log.WithField("member_code", payment.MemberCode).Warn("activation fee paid by an already active member")
			result = nil
			err = nil
		}
		if err != nil {
			return err
		}
		return tx.Where("id = ?", payment.ID).First(&payment).Error
	})
	if err != nil {
		return nil, nil, aborted(err, "settle activation payment")
	}

	if result != nil {
		afterActivation(result)
	}
	return &payment, result, nil
}
