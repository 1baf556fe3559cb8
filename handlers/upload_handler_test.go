package handlers

import (
	"testing"

	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKYCUploadParams(t *testing.T) {
	params := kycUploadParams("MX1001")

	assert.Equal(t, "matrix_mlm_kyc/MX1001", params.Folder)
	assert.Equal(t, "bank_proof", params.PublicID)
	require.NotNil(t, params.Overwrite)
	assert.True(t, *params.Overwrite)

	signed, err := api.StructToParams(params)
	require.NoError(t, err)
	assert.Equal(t, "jpg,jpeg,png,pdf", signed.Get("allowed_formats"))
	assert.Equal(t, "kyc,MX1001", signed.Get("tags"))
	assert.Equal(t, "matrix_mlm_kyc/MX1001", signed.Get("folder"))
}
