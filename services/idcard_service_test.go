package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/anjiri1684/matrix_mlm/models"
	"github.com/anjiri1684/matrix_mlm/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderIDCardHTML(t *testing.T) {
	html, err := renderIDCardHTML(&models.Member{
		MemberCode: "MX1001",
		FullName:   "Ann <Script>",
		Rank:       "Bronze",
		SponsorID:  testutil.Ptr("MX1000"),
	}, time.Date(2026, time.January, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Contains(t, html, "MX1001")
	assert.Contains(t, html, "Sponsor: MX1000")
	assert.Contains(t, html, "January 2, 2026")
	assert.Contains(t, html, "Ann &lt;Script&gt;")
}

func TestGenerateIDCardStoresURL(t *testing.T) {
	db := testutil.SetupDB(t)
	root := testutil.SeedRoot(t, db)

	prevRender, prevUpload := renderPDF, uploadIDCard
	t.Cleanup(func() { renderPDF, uploadIDCard = prevRender, prevUpload })
	renderPDF = func(ctx context.Context, html string) ([]byte, error) { return []byte("%PDF"), nil }
	uploadIDCard = func(ctx context.Context, pdf []byte, code string) (string, error) {
		return "https://cdn.example.com/" + code + ".pdf", nil
	}

	url, err := GenerateIDCard(context.Background(), root.MemberCode)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/MX1000.pdf", url)

	stored := reload(t, db, root.MemberCode)
	require.NotNil(t, stored.IDCardURL)
	assert.Equal(t, url, *stored.IDCardURL)

	uploadIDCard = func(context.Context, []byte, string) (string, error) { return "", errors.New("offline") }
	_, err = GenerateIDCard(context.Background(), root.MemberCode)
	assert.Error(t, err)
}
