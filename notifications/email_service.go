package notifications

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	config "github.com/anjiri1684/matrix_mlm/configs"
	log "github.com/sirupsen/logrus"
)

const brevoURL = "https://api.brevo.com/v3/smtp/email"

type BrevoService struct {
	APIKey      string
	SenderEmail string
	SenderName  string
	Endpoint    string
	client      *http.Client
}

var EmailClient *BrevoService

type brevoPayload struct {
	Sender      map[string]string   `json:"sender"`
	To          []map[string]string `json:"to"`
	Subject     string              `json:"subject"`
	HTMLContent string              `json:"htmlContent"`
}

func InitEmailService() {
	apiKey := config.Config("BREVO_API_KEY")
	senderEmail := config.Config("EMAIL_SENDER")
	senderName := config.ConfigOr("EMAIL_SENDER_NAME", "Matrix MLM")

	if apiKey == "" || senderEmail == "" {
		log.Warn("⚠️ Email service not configured. Missing API Key or Sender Email.")
		EmailClient = nil
		return
	}

	EmailClient = NewBrevoService(apiKey, senderEmail, senderName, brevoURL)
	log.WithField("sender", senderEmail).Info("✅ Email service initialized successfully.")
}

func NewBrevoService(apiKey, senderEmail, senderName, endpoint string) *BrevoService {
	return &BrevoService{
		APIKey:      apiKey,
		SenderEmail: senderEmail,
		SenderName:  senderName,
		Endpoint:    endpoint,
		client:      &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *BrevoService) Send(toEmail, toName, subject, htmlContent string) error {
	if toEmail == "" || !strings.Contains(toEmail, "@") {
		return fmt.Errorf("invalid recipient email: %s", toEmail)
	}

	recipientName := toName
	if recipientName == "" {
		recipientName = toEmail[:strings.Index(toEmail, "@")]
	}

	payload := brevoPayload{
		Sender:      map[string]string{"name": s.SenderName, "email": s.SenderEmail},
		To:          []map[string]string{{"email": toEmail, "name": recipientName}},
		Subject:     subject,
		HTMLContent: htmlContent,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, s.Endpoint, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("api-key", s.APIKey)
	req.Header.Set("content-type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %v", err)
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusCreated {
		log.WithField("status", resp.StatusCode).Errorf("Brevo API error: %s", string(bodyBytes))
		return fmt.Errorf("failed to send email via Brevo: %s", string(bodyBytes))
	}
	return nil
}

// SendEmail is fire-and-forget; failures are logged only.
func SendEmail(toName, toEmail, subject, htmlContent string) {
	if EmailClient == nil {
		log.Debug("Email client not initialized, skipping email send.")
		return
	}

	if err := EmailClient.Send(toEmail, toName, subject, htmlContent); err != nil {
		log.Errorf("🔥 Failed to send email to %s: %v", toEmail, err)
		return
	}
	log.Infof("✅ Email sent successfully to %s", toEmail)
}

func WelcomeEmail(fullName, memberCode, sponsorCode string) (string, string) {
	subject := "Welcome to the team!"
	body := fmt.Sprintf(`<h1>Welcome, %s!</h1>
<p>Your member ID is <strong>%s</strong>. You were referred by %s.</p>
<p>Share your ID with friends so they can join under you. Complete your activation to start earning.</p>`,
		fullName, memberCode, sponsorCode)
	return subject, body
}

func WithdrawalDecisionEmail(fullName, status, amount, remark string) (string, string) {
	subject := fmt.Sprintf("Your withdrawal was %s", status)
	body := fmt.Sprintf(`<p>Hi %s,</p><p>Your withdrawal request of <strong>%s</strong> has been <strong>%s</strong>.</p>`,
		fullName, amount, status)
	if remark != "" {
		body += fmt.Sprintf("<p>Remark: %s</p>", remark)
	}
	return subject, body
}
