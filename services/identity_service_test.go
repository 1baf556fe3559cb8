package services

import (
	"sort"
	"sync"
	"testing"

	"github.com/anjiri1684/matrix_mlm/database"
	"github.com/anjiri1684/matrix_mlm/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestNextMemberIDSequential(t *testing.T) {
	db := testutil.SetupDB(t)
	testutil.SeedRoot(t, db)

	var codes []string
	for i := 0; i < 3; i++ {
		err := db.Transaction(func(tx *gorm.DB) error {
			code, _, err := NextMemberID(tx)
			codes = append(codes, code)
			return err
		})
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"MX1001", "MX1002", "MX1003"}, codes)
}

func TestNextMemberIDSeedsCounter(t *testing.T) {
	db := testutil.SetupDB(t)

	var code string
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		code, _, err = NextMemberID(tx)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, "MX1001", code)
}

func TestNextMemberIDConcurrent(t *testing.T) {
	db := testutil.SetupDB(t)
	testutil.SeedRoot(t, db)

	const n = 25
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seqs []int64
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := database.DB.Transaction(func(tx *gorm.DB) error {
				_, seq, err := NextMemberID(tx)
				if err == nil {
					mu.Lock()
					seqs = append(seqs, seq)
					mu.Unlock()
				}
				return err
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	require.Len(t, seqs, n)
	sort.Slice(seqs, func(i, j int) bool { return seqs[i] < seqs[j] })
	for i, s := range seqs {
		assert.Equal(t, int64(1001+i), s)
	}
}

func TestNextMemberIDRollbackReturnsNumber(t *testing.T) {
	db := testutil.SetupDB(t)
	testutil.SeedRoot(t, db)

	var rolledBack, committed string
	err := db.Transaction(func(tx *gorm.DB) error {
		code, _, err := NextMemberID(tx)
		require.NoError(t, err)
		rolledBack = code
		return ErrDuplicateContact
	})
	require.ErrorIs(t, err, ErrDuplicateContact)

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		code, _, err := NextMemberID(tx)
		committed = code
		return err
	}))

	assert.Equal(t, "MX1001", rolledBack)
	assert.Equal(t, rolledBack, committed)
}
