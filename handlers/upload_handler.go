package handlers

import (
	"net/url"
	"strconv"
	"time"

	config "github.com/anjiri1684/matrix_mlm/configs"
	"github.com/anjiri1684/matrix_mlm/middleware"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/gofiber/fiber/v2"
)

const kycFolderRoot = "matrix_mlm_kyc"

// kycDocumentFormats are the file types accepted as bank or identity proof.
var kycDocumentFormats = api.CldAPIArray{"jpg", "jpeg", "png", "pdf"}

func kycFolder(memberCode string) string {
	return kycFolderRoot + "/" + memberCode
}

// kycUploadParams pins a signed upload to one overwritable document per
// member, so a resubmission replaces the previous proof.
func kycUploadParams(memberCode string) uploader.UploadParams {
	overwrite := true
	return uploader.UploadParams{
		Folder:         kycFolder(memberCode),
		PublicID:       "bank_proof",
		Overwrite:      &overwrite,
		AllowedFormats: kycDocumentFormats,
		Tags:           api.CldAPIArray{"kyc", memberCode},
	}
}

// GenerateKYCUploadSignature signs a direct browser upload of a member's KYC
// document into that member's folder.
func GenerateKYCUploadSignature(c *fiber.Ctx) error {
	code, ok := middleware.MemberCode(c)
	if !ok {
		return unauthorized(c)
	}
	params := kycUploadParams(code)

	cloudinaryURL := config.Config("CLOUDINARY_URL")
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to initialize Cloudinary", "code": "INTERNAL"})
	}

	parsedURL, err := url.Parse(cloudinaryURL)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to parse Cloudinary URL", "code": "INTERNAL"})
	}
	secret, _ := parsedURL.User.Password()

	paramsToSign, err := api.StructToParams(params)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to prepare signature params", "code": "INTERNAL"})
	}

	timestamp := time.Now().Unix()
	paramsToSign.Set("timestamp", strconv.FormatInt(timestamp, 10))

	signature, err := api.SignParameters(paramsToSign, secret)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to sign upload params", "code": "INTERNAL"})
	}

	return c.JSON(fiber.Map{
		"signature":       signature,
		"timestamp":       timestamp,
		"api_key":         cld.Config.Cloud.APIKey,
		"cloud_name":      cld.Config.Cloud.CloudName,
		"folder":          params.Folder,
		"public_id":       params.PublicID,
		"overwrite":       true,
		"allowed_formats": paramsToSign.Get("allowed_formats"),
		"tags":            paramsToSign.Get("tags"),
	})
}
