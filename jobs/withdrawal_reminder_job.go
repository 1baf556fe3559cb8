package jobs

import (
	"context"
	"fmt"
	"strings"
	"time"

	config "github.com/anjiri1684/matrix_mlm/configs"
	"github.com/anjiri1684/matrix_mlm/notifications"
	"github.com/anjiri1684/matrix_mlm/services"
	log "github.com/sirupsen/logrus"
)

const staleWithdrawalAge = 48 * time.Hour

// SendWithdrawalReminders mails the admin a list of withdrawals that have
// been pending for more than two days.
func SendWithdrawalReminders() {
	log.Info("Running job: SendWithdrawalReminders...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	stale, err := services.StalePendingWithdrawals(ctx, time.Now().Add(-staleWithdrawalAge))
	if err != nil {
		log.Errorf("Error checking for stale withdrawals: %v", err)
		return
	}
	if len(stale) == 0 {
		return
	}

	var rows strings.Builder
	for _, w := range stale {
		fmt.Fprintf(&rows, "<li>%s: %s %s requested %s</li>",
			w.MemberCode, w.Amount.StringFixed(2), config.Business.Currency, w.RequestedAt.Format("2006-01-02 15:04"))
	}

	adminEmail := config.Config("ADMIN_EMAIL")
	if adminEmail == "" {
		log.Warnf("%d withdrawals pending over 48h, ADMIN_EMAIL not set", len(stale))
		return
	}
	go notifications.SendEmail(
		config.ConfigOr("ADMIN_FULL_NAME", "Admin"),
		adminEmail,
		fmt.Sprintf("%d withdrawal requests awaiting review", len(stale)),
		fmt.Sprintf("<h1>Pending withdrawals</h1><p>These requests have been waiting for more than 48 hours:</p><ul>%s</ul>", rows.String()),
	)
}
