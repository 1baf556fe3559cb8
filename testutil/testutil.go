// Package testutil wires the package-level stores to in-memory backends for
// tests.
package testutil

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	config "github.com/anjiri1684/matrix_mlm/configs"
	"github.com/anjiri1684/matrix_mlm/database"
	"github.com/anjiri1684/matrix_mlm/models"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	RootEmail    = "root@example.com"
	RootPassword = "root-secret"
)

// SetupDB opens a fresh in-memory SQLite store, migrates it and installs it
// as database.DB for the duration of the test.
func SetupDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), database.GormConfig())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.AutoMigrate(db))

	prev := database.DB
	database.DB = db
	t.Cleanup(func() {
		database.DB = prev
		sqlDB.Close()
	})
	return db
}

// SeedRoot creates the root member and returns it.
func SeedRoot(t testing.TB, db *gorm.DB) models.Member {
	t.Helper()
	require.NoError(t, database.SeedRootMember(db, "Root Admin", RootEmail, "0700000000", RootPassword))

	var root models.Member
	require.NoError(t, db.Where("member_code = ?", config.Business.RootMemberCode()).First(&root).Error)
	return root
}

// SetupRedis starts a miniredis server and installs a client for it as
// database.Redis.
func SetupRedis(t testing.TB) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	require.NoError(t, client.Ping(context.Background()).Err())

	prev := database.Redis
	database.Redis = client
	t.Cleanup(func() {
		database.Redis = prev
		client.Close()
	})
	return mr
}

// UseBusiness swaps the business configuration for the test.
func UseBusiness(t testing.TB, cfg config.BusinessConfig) {
	t.Helper()
	require.NoError(t, cfg.Validate())
	prev := config.Business
	config.Business = cfg
	t.Cleanup(func() { config.Business = prev })
}

var seq int64 = 5000

// InsertMember writes a member row directly, bypassing registration rules.
// It is used to build tree shapes registration would refuse.
func InsertMember(t testing.TB, db *gorm.DB, code string, sponsor, upline *string) models.Member {
	t.Helper()
	n := atomic.AddInt64(&seq, 1)
	m := models.Member{
		MemberCode: code,
		Seq:        n,
		FullName:   "Member " + code,
		Email:      fmt.Sprintf("%s-%d@example.com", code, n),
		Mobile:     fmt.Sprintf("07%08d", n),
		Password:   "x",
		Role:       models.RoleUser,
		SponsorID:  sponsor,
		UplineID:   upline,
		ReferredBy: sponsor,
		Rank:       config.Business.InitialRank().Name,
	}
	require.NoError(t, db.Create(&m).Error)
	return m
}

func Ptr(s string) *string { return &s }
