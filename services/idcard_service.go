package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	config "github.com/anjiri1684/matrix_mlm/configs"
	"github.com/anjiri1684/matrix_mlm/models"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

var idCardTemplate = template.Must(template.New("id_card").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  body { font-family: Helvetica, Arial, sans-serif; margin: 0; }
  .card { width: 86mm; height: 54mm; border: 1px solid #1f2d3d; border-radius: 4mm; padding: 5mm; box-sizing: border-box; }
  .brand { font-size: 10pt; letter-spacing: 2px; color: #1f6feb; text-transform: uppercase; }
  .name { font-size: 14pt; font-weight: bold; margin-top: 4mm; }
  .code { font-size: 18pt; font-family: monospace; margin-top: 2mm; }
  .meta { font-size: 8pt; color: #555; margin-top: 3mm; }
</style>
</head>
<body>
  <div class="card">
    <div class="brand">Member ID Card</div>
    <div class="name">{{.FullName}}</div>
    <div class="code">{{.MemberCode}}</div>
    <div class="meta">Rank: {{.Rank}} &middot; Sponsor: {{.Sponsor}}</div>
    <div class="meta">Issued {{.IssuedOn}}</div>
  </div>
</body>
</html>`))

// Rendering and upload are package variables so tests can run without a
// browser or a Cloudinary account.
var (
	renderPDF    = generatePDFFromHTML
	uploadIDCard = uploadToCloudinary
)

// GenerateIDCard renders the member's ID card to PDF, uploads it and stores
// the resulting URL on the member.
func GenerateIDCard(ctx context.Context, memberCode string) (string, error) {
	member, err := GetMember(ctx, memberCode)
	if err != nil {
		return "", err
	}

	htmlData, err := renderIDCardHTML(member, time.Now())
	if err != nil {
		return "", errors.Wrap(err, "render id card")
	}

	pdfBytes, err := renderPDF(ctx, htmlData)
	if err != nil {
		log.Errorf("🔥 Failed to generate ID card PDF for %s: %v", memberCode, err)
		return "", errors.Wrap(err, "generate id card pdf")
	}

	url, err := uploadIDCard(ctx, pdfBytes, memberCode)
	if err != nil {
		log.Errorf("🔥 Failed to upload ID card for %s: %v", memberCode, err)
		return "", errors.Wrap(err, "upload id card")
	}

	if err := SetIDCardURL(ctx, memberCode, url); err != nil {
		return "", err
	}
	log.Infof("✅ Generated ID card for %s", memberCode)
	return url, nil
}

func renderIDCardHTML(member *models.Member, issued time.Time) (string, error) {
	sponsor := "-"
	if member.SponsorID != nil {
		sponsor = *member.SponsorID
	}
	data := struct {
		FullName   string
		MemberCode string
		Rank       string
		Sponsor    string
		IssuedOn   string
	}{
		FullName:   member.FullName,
		MemberCode: member.MemberCode,
		Rank:       member.Rank,
		Sponsor:    sponsor,
		IssuedOn:   issued.Format("January 2, 2006"),
	}

	var rendered bytes.Buffer
	if err := idCardTemplate.Execute(&rendered, data); err != nil {
		return "", err
	}
	return rendered.String(), nil
}

func generatePDFFromHTML(ctx context.Context, htmlContent string) ([]byte, error) {
	ctx, cancel := chromedp.NewContext(ctx)
	defer cancel()

	var pdfBuffer []byte
	err := chromedp.Run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, htmlContent).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			pdf, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(3.4).
				WithPaperHeight(2.2).
				Do(ctx)
			if err != nil {
				return err
			}
			pdfBuffer = pdf
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdfBuffer, nil
}

func uploadToCloudinary(ctx context.Context, fileBytes []byte, memberCode string) (string, error) {
	cld, err := cloudinary.NewFromURL(config.Config("CLOUDINARY_URL"))
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	uploadParams := uploader.UploadParams{
		PublicID:     fmt.Sprintf("%s_%s", memberCode, uuid.New().String()),
		Folder:       "matrix_mlm_id_cards",
		ResourceType: "raw",
	}

	uploadResult, err := cld.Upload.Upload(ctx, bytes.NewReader(fileBytes), uploadParams)
	if err != nil {
		return "", err
	}
	return uploadResult.SecureURL, nil
}
