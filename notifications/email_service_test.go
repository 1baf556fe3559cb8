package notifications

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrevoSendPostsPayload(t *testing.T) {
	var got brevoPayload
	var apiKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKey = r.Header.Get("api-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"messageId":"1"}`))
	}))
	defer srv.Close()

	s := NewBrevoService("key-123", "noreply@example.com", "Matrix", srv.URL)
	require.NoError(t, s.Send("jane@example.com", "", "Hello", "<p>hi</p>"))

	assert.Equal(t, "key-123", apiKey)
	assert.Equal(t, "Hello", got.Subject)
	require.Len(t, got.To, 1)
	assert.Equal(t, "jane", got.To[0]["name"])
	assert.Equal(t, "noreply@example.com", got.Sender["email"])
}

func TestBrevoSendReportsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"bad sender"}`))
	}))
	defer srv.Close()

	s := NewBrevoService("key", "noreply@example.com", "Matrix", srv.URL)
	assert.Error(t, s.Send("jane@example.com", "Jane", "Hello", "<p>hi</p>"))
	assert.Error(t, s.Send("not-an-email", "Jane", "Hello", "<p>hi</p>"))
}

func TestInitEmailServiceWithoutKey(t *testing.T) {
	t.Setenv("BREVO_API_KEY", "")
	t.Setenv("EMAIL_SENDER", "")
	InitEmailService()
	assert.Nil(t, EmailClient)

	// Must not panic when unconfigured.
	SendEmail("Jane", "jane@example.com", "Hello", "<p>hi</p>")
}

func TestEmailTemplates(t *testing.T) {
	subject, body := WelcomeEmail("Jane", "MX1001", "MX1000")
	assert.Contains(t, subject, "Welcome")
	assert.Contains(t, body, "MX1001")

	subject, body = WithdrawalDecisionEmail("Jane", "rejected", "300.00 USD", "bank mismatch")
	assert.Equal(t, "Your withdrawal was rejected", subject)
	assert.Contains(t, body, "bank mismatch")
}
