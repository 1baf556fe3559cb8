package jobs

import (
	"context"
	"time"

	"github.com/anjiri1684/matrix_mlm/metrics"
	"github.com/anjiri1684/matrix_mlm/services"
	log "github.com/sirupsen/logrus"
)

// AuditLedgers replays every wallet and reports balances that no longer
// match their entries.
func AuditLedgers() {
	log.Info("Running job: AuditLedgers...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	mismatches, err := services.AuditLedgers(ctx)
	if err != nil {
		log.Errorf("Error auditing wallet ledgers: %v", err)
		return
	}

	metrics.LedgerMismatches.Set(float64(len(mismatches)))
	for _, m := range mismatches {
		log.WithFields(log.Fields{
			"member_code": m.MemberCode,
			"balance":     m.Balance.String(),
			"replayed":    m.Replayed.String(),
		}).Error("🔥 wallet balance does not match its ledger")
	}
}
