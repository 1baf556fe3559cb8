package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useBusiness(t *testing.T) {
	prev := Business
	t.Cleanup(func() { Business = prev })
}

func TestDefaultBusinessIsValid(t *testing.T) {
	b := DefaultBusiness()
	require.NoError(t, b.Validate())
	assert.Equal(t, "MX1000", b.RootMemberCode())
	assert.Equal(t, "Associate", b.InitialRank().Name)
	assert.Equal(t, "100", b.DirectBonus().String())
}

func TestRankForPicksHighestReachedThreshold(t *testing.T) {
	b := DefaultBusiness()
	cases := []struct {
		team  int
		rank  string
		level int
	}{
		{0, "Associate", 0},
		{11, "Associate", 0},
		{12, "Bronze", 1},
		{38, "Bronze", 1},
		{39, "Silver", 2},
		{5000, "Diamond", 5},
	}
	for _, tc := range cases {
		rank, level := b.RankFor(tc.team)
		assert.Equal(t, tc.rank, rank.Name, "team %d", tc.team)
		assert.Equal(t, tc.level, level, "team %d", tc.team)
	}
}

func TestValidateRejectsBadTables(t *testing.T) {
	b := DefaultBusiness()
	b.Ranks[2].Threshold = b.Ranks[1].Threshold
	assert.Error(t, b.Validate())

	b = DefaultBusiness()
	b.Ranks[0].Threshold = 1
	assert.Error(t, b.Validate())

	b = DefaultBusiness()
	b.Ranks = nil
	assert.Error(t, b.Validate())

	b = DefaultBusiness()
	b.MatrixWidth = 0
	assert.Error(t, b.Validate())

	b = DefaultBusiness()
	b.MinimumWithdrawal = -1
	assert.Error(t, b.Validate())
}

func TestLoadBusinessOverlaysFile(t *testing.T) {
	useBusiness(t)
	dir := t.TempDir()
	yaml := "direct_referral_bonus: 150\nmember_prefix: ZZ\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "business.yaml"), []byte(yaml), 0o644))

	require.NoError(t, LoadBusiness(dir))
	assert.Equal(t, "150", Business.DirectBonus().String())
	assert.Equal(t, "ZZ1000", Business.RootMemberCode())
	assert.Equal(t, 3, Business.MatrixWidth)
	assert.Len(t, Business.Ranks, 6)
}

func TestLoadBusinessCustomRanks(t *testing.T) {
	useBusiness(t)
	dir := t.TempDir()
	yaml := `ranks:
  - name: Starter
    threshold: 0
  - name: Leader
    threshold: 5
    bonus: 25
    reward: Mug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "business.yaml"), []byte(yaml), 0o644))

	require.NoError(t, LoadBusiness(dir))
	require.Len(t, Business.Ranks, 2)
	assert.Equal(t, "Leader", Business.Ranks[1].Name)
	assert.Equal(t, 25.0, Business.Ranks[1].Bonus)
	assert.Equal(t, "Mug", Business.Ranks[1].Reward)
}

func TestLoadBusinessRejectsInvalidFile(t *testing.T) {
	useBusiness(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "business.yaml"), []byte("matrix_width: 0\n"), 0o644))

	assert.Error(t, LoadBusiness(dir))
	assert.Equal(t, 3, Business.MatrixWidth)
}

func TestLoadBusinessWithoutFileKeepsDefaults(t *testing.T) {
	useBusiness(t)
	require.NoError(t, LoadBusiness(t.TempDir()))
	assert.Equal(t, DefaultBusiness().MatrixWidth, Business.MatrixWidth)
}

func TestShippedBusinessFileMatchesDefaults(t *testing.T) {
	useBusiness(t)
	require.NoError(t, LoadBusiness("."))
	assert.Equal(t, DefaultBusiness(), Business)
}

func TestConfigOr(t *testing.T) {
	t.Setenv("MATRIX_TEST_KEY", "set")
	assert.Equal(t, "set", ConfigOr("MATRIX_TEST_KEY", "fallback"))
	assert.Equal(t, "fallback", ConfigOr("MATRIX_TEST_MISSING", "fallback"))
}
