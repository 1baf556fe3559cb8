package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	config "github.com/anjiri1684/matrix_mlm/configs"
	"github.com/anjiri1684/matrix_mlm/database"
	"github.com/anjiri1684/matrix_mlm/models"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	Range7Days   = "7d"
	Range30Days  = "30d"
	Range12Month = "12m"
)

const statsCacheTTL = 60 * time.Second

type RevenueBucket struct {
	Label       string          `json:"label"`
	Start       time.Time       `json:"start"`
	Activations int             `json:"activations"`
	Revenue     decimal.Decimal `json:"revenue"`
}

type Stats struct {
	Range              string          `json:"range"`
	AsOf               time.Time       `json:"as_of"`
	ActiveMembers      int64           `json:"active_members"`
	InactiveMembers    int64           `json:"inactive_members"`
	TodayJoins         int64           `json:"today_joins"`
	PendingWithdrawals int64           `json:"pending_withdrawals"`
	PendingLiability   decimal.Decimal `json:"pending_liability"`
	TotalRevenue       decimal.Decimal `json:"total_revenue"`
	Revenue            []RevenueBucket `json:"revenue"`
}

// revenueBuckets returns the empty, chronologically ordered buckets for rng
// ending at asOf: days for 7d and 30d, calendar months for 12m.
func revenueBuckets(asOf time.Time, rng string) ([]RevenueBucket, error) {
	var (
		n       int
		monthly bool
	)
	switch rng {
	case Range7Days:
		n = 7
	case Range30Days:
		n = 30
	case Range12Month:
		n, monthly = 12, true
	default:
		return nil, ErrInvalidRange
	}

	buckets := make([]RevenueBucket, n)
	y, m, d := asOf.Date()
	for i := 0; i < n; i++ {
		back := n - 1 - i
		var start time.Time
		var label string
		if monthly {
			start = time.Date(y, m-time.Month(back), 1, 0, 0, 0, 0, asOf.Location())
			label = start.Format("2006-01")
		} else {
			start = time.Date(y, m, d-back, 0, 0, 0, 0, asOf.Location())
			label = start.Format("2006-01-02")
		}
		buckets[i] = RevenueBucket{Label: label, Start: start, Revenue: decimal.Zero}
	}
	return buckets, nil
}

func bucketEnd(b RevenueBucket, rng string) time.Time {
	if rng == Range12Month {
		return b.Start.AddDate(0, 1, 0)
	}
	return b.Start.AddDate(0, 0, 1)
}

// ComputeAggregates counts members, today's joins and pending withdrawal
// liability, and buckets activation revenue over rng. Only role=user members
// are counted.
func ComputeAggregates(ctx context.Context, asOf time.Time, rng string) (*Stats, error) {
	buckets, err := revenueBuckets(asOf, rng)
	if err != nil {
		return nil, err
	}
	db := database.DB.WithContext(ctx)
	users := func() *gorm.DB { return db.Model(&models.Member{}).Where("role = ?", models.RoleUser) }

	stats := &Stats{Range: rng, AsOf: asOf, Revenue: buckets, TotalRevenue: decimal.Zero, PendingLiability: decimal.Zero}

	if err := users().Where("is_active = ?", true).Count(&stats.ActiveMembers).Error; err != nil {
		return nil, aborted(err, "count active members")
	}
	if err := users().Where("is_active = ?", false).Count(&stats.InactiveMembers).Error; err != nil {
		return nil, aborted(err, "count inactive members")
	}

	y, m, d := asOf.Date()
	dayStart := time.Date(y, m, d, 0, 0, 0, 0, asOf.Location())
	if err := users().Where("created_at >= ? AND created_at < ?", dayStart, dayStart.AddDate(0, 0, 1)).
		Count(&stats.TodayJoins).Error; err != nil {
		return nil, aborted(err, "count today joins")
	}

	var pending []decimal.Decimal
	if err := db.Model(&models.Withdrawal{}).Where("status = ?", models.WithdrawalPending).
		Pluck("amount", &pending).Error; err != nil {
		return nil, aborted(err, "sum pending withdrawals")
	}
	stats.PendingWithdrawals = int64(len(pending))
	for _, a := range pending {
		stats.PendingLiability = stats.PendingLiability.Add(a)
	}

	var activations []time.Time
	if err := users().Where("activated_at IS NOT NULL").Pluck("activated_at", &activations).Error; err != nil {
		return nil, aborted(err, "load activations")
	}

	value := config.Business.ActivationValue()
	windowStart := buckets[0].Start
	windowEnd := bucketEnd(buckets[len(buckets)-1], rng)
	for _, at := range activations {
		at = at.In(asOf.Location())
		if at.Before(windowStart) || !at.Before(windowEnd) {
			continue
		}
		for i := range buckets {
			if !at.Before(buckets[i].Start) && at.Before(bucketEnd(buckets[i], rng)) {
				buckets[i].Activations++
				buckets[i].Revenue = buckets[i].Revenue.Add(value)
				stats.TotalRevenue = stats.TotalRevenue.Add(value)
				break
			}
		}
	}

	return stats, nil
}

func statsCacheKey(rng string, asOf time.Time) string {
	return fmt.Sprintf("matrix_mlm:stats:%s:%s", rng, asOf.Format("2006-01-02"))
}

// GetStats serves the admin dashboard. Results are cached in redis per range
// and day for a minute when redis is configured.
func GetStats(ctx context.Context, rng string) (*Stats, error) {
	now := time.Now()
	key := statsCacheKey(rng, now)

	if database.Redis != nil {
		raw, err := database.Redis.Get(ctx, key).Bytes()
		if err == nil {
			var cached Stats
			if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil {
				return &cached, nil
			}
		} else if err != redis.Nil {
			log.Warnf("stats cache read failed: %v", err)
		}
	}

	stats, err := ComputeAggregates(ctx, now, rng)
	if err != nil {
		return nil, err
	}

	if database.Redis != nil {
		if raw, err := json.Marshal(stats); err == nil {
			if err := database.Redis.Set(ctx, key, raw, statsCacheTTL).Err(); err != nil {
				log.Warnf("stats cache write failed: %v", err)
			}
		}
	}
	return stats, nil
}
