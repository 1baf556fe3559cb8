package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	config "github.com/anjiri1684/matrix_mlm/configs"
	"github.com/anjiri1684/matrix_mlm/testutil"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")

	db := testutil.SetupDB(t)
	testutil.SeedRoot(t, db)
	testutil.SetupRedis(t)

	app := fiber.New()
	Setup(app)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]interface{}{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp.StatusCode, out
}

func register(t *testing.T, app *fiber.App, n int, sponsor string) (int, map[string]interface{}) {
	return doJSON(t, app, http.MethodPost, "/api/v1/auth/register", "", fiber.Map{
		"full_name":    fmt.Sprintf("Member %d", n),
		"email":        fmt.Sprintf("member%d@example.com", n),
		"mobile":       fmt.Sprintf("07110000%02d", n),
		"password":     "password1",
		"sponsor_code": sponsor,
	})
}

func login(t *testing.T, app *fiber.App, email, password string) string {
	t.Helper()
	status, body := doJSON(t, app, http.MethodPost, "/api/v1/auth/login", "", fiber.Map{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, status)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)

	status, body := doJSON(t, app, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestRegisterEnforcesSponsorCapacity(t *testing.T) {
	app := newTestApp(t)
	root := config.Business.RootMemberCode()

	for i := 1; i <= 3; i++ {
		status, body := register(t, app, i, root)
		require.Equal(t, http.StatusCreated, status, body)
		assert.Equal(t, root, body["sponsor_id"])
		assert.Equal(t, root, body["upline_id"])
	}

	status, body := register(t, app, 4, root)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "SPONSOR_CAPACITY_EXCEEDED", body["code"])
}

func TestRegisterRejectsBadInput(t *testing.T) {
	app := newTestApp(t)

	status, body := register(t, app, 1, "MX9999")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "SPONSOR_NOT_FOUND", body["code"])

	status, body = doJSON(t, app, http.MethodPost, "/api/v1/auth/register", "", fiber.Map{"email": "nope"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "BAD_REQUEST", body["code"])
}

func TestLoginAndProfile(t *testing.T) {
	app := newTestApp(t)
	status, created := register(t, app, 1, config.Business.RootMemberCode())
	require.Equal(t, http.StatusCreated, status)

	status, body := doJSON(t, app, http.MethodPost, "/api/v1/auth/login", "", fiber.Map{
		"email":    "member1@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHENTICATED", body["code"])

	token := login(t, app, "member1@example.com", "password1")

	status, profile := doJSON(t, app, http.MethodGet, "/api/v1/members/me", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, created["member_id"], profile["member_code"])

	status, body = doJSON(t, app, http.MethodGet, "/api/v1/members/me", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "MALFORMED_TOKEN", body["code"])

	status, body = doJSON(t, app, http.MethodGet, "/api/v1/members/me", token+"x", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHENTICATED", body["code"])
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	app := newTestApp(t)
	status, created := register(t, app, 1, config.Business.RootMemberCode())
	require.Equal(t, http.StatusCreated, status)
	code := created["member_id"].(string)

	userToken := login(t, app, "member1@example.com", "password1")
	status, body := doJSON(t, app, http.MethodPost, "/api/v1/admin/members/"+code+"/activate", userToken, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", body["code"])

	adminToken := login(t, app, testutil.RootEmail, testutil.RootPassword)
	status, body = doJSON(t, app, http.MethodPost, "/api/v1/admin/members/"+code+"/activate", adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, code, body["member_code"])
	assert.Equal(t, true, body["direct_bonus_paid"])

	status, body = doJSON(t, app, http.MethodPost, "/api/v1/admin/members/"+code+"/activate", adminToken, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "ALREADY_ACTIVE", body["code"])

	status, stats := doJSON(t, app, http.MethodGet, "/api/v1/admin/stats?range=7d", adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, stats["active_members"])
}

func TestPublicRanks(t *testing.T) {
	app := newTestApp(t)

	status, body := doJSON(t, app, http.MethodGet, "/api/v1/ranks", "", nil)
	require.Equal(t, http.StatusOK, status)
	ranks, ok := body["ranks"].([]interface{})
	require.True(t, ok)
	assert.Len(t, ranks, len(config.Business.Ranks))
	assert.EqualValues(t, config.Business.MatrixWidth, body["matrix_width"])
}
