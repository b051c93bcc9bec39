package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/flickster/flickster/backend/internal/config"
	"github.com/flickster/flickster/backend/internal/repository"
	"github.com/flickster/flickster/backend/internal/service"
	"github.com/flickster/flickster/backend/pkg/testutil"
	"github.com/flickster/flickster/backend/pkg/token"
	"github.com/gofiber/fiber/v2"
)

type apiEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type authFlowEnv struct {
	app     *fiber.App
	authSvc *service.AuthService
	mailer  *recordingMailer
	cleanup func()
}

func newAuthFlowEnv(t *testing.T) *authFlowEnv {
	t.Helper()

	db, cleanup := testutil.SetupDB(t)
	userRepo := repository.NewUserRepository(db)
	codec := token.NewCodec("test-secret-key-for-testing")
	cfg := &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:           "test-secret-key-for-testing",
			SessionTTLHours:     24,
			RecoveryTTLSeconds:  900,
			PasswordResetDomain: "http://localhost:8080",
		},
	}

	authSvc := service.NewAuthService(userRepo, codec, cfg)
	userSvc := service.NewUserService(userRepo, service.NewMediaService(noopStore{}))
	mailer := &recordingMailer{}
	authHandler := NewAuthHandler(authSvc, userSvc, mailer, cfg.Auth.PasswordResetDomain)

	app := fiber.New()
	auth := app.Group("/api/v1/auth")
	auth.Post("/sign-up", authHandler.SignUp)
	auth.Post("/login", authHandler.Login)
	auth.Post("/forget-password", authHandler.ForgetPassword)
	auth.Post("/change-password/:token", authHandler.ChangePassword)
	auth.Get("/me", AuthMiddleware(authSvc), authHandler.Me)

	return &authFlowEnv{app: app, authSvc: authSvc, mailer: mailer, cleanup: cleanup}
}

// recordingMailer captures outgoing mail instead of delivering it.
type recordingMailer struct {
	lastResetLink string
}

func (m *recordingMailer) SendWelcome(_ context.Context, _, _ string) error { return nil }

func (m *recordingMailer) SendPasswordReset(_ context.Context, _, _, resetLink string) error {
	m.lastResetLink = resetLink
	return nil
}

// noopStore satisfies storage.ObjectStore for flows that never upload.
type noopStore struct{}

func (noopStore) Upload(_ context.Context, key, _ string, _ []byte) (string, error) {
	return "https://test-bucket.s3.amazonaws.com/" + key, nil
}

func (noopStore) Delete(_ context.Context, _ string) error { return nil }

func postJSON(t *testing.T, app *fiber.App, path string, payload interface{}) (*http.Response, apiEnvelope) {
	t.Helper()

	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}

	raw, _ := io.ReadAll(resp.Body)
	var envelope apiEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		t.Fatalf("unmarshal response %q: %v", raw, err)
	}
	return resp, envelope
}

func signUpBody(email, username string) map[string]string {
	return map[string]string{
		"first_name": "Flow",
		"last_name":  "Tester",
		"email":      email,
		"username":   username,
		"password":   "integration-pass-1",
	}
}

func TestSignUpAndLoginFlow(t *testing.T) {
	env := newAuthFlowEnv(t)
	defer env.cleanup()

	resp, envelope := postJSON(t, env.app, "/api/v1/auth/sign-up", signUpBody("flow@example.com", "flow"))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", resp.StatusCode, envelope.Error)
	}
	if !envelope.Success {
		t.Fatalf("expected success, got error %q", envelope.Error)
	}

	resp, envelope = postJSON(t, env.app, "/api/v1/auth/login", map[string]string{
		"email":    "flow@example.com",
		"password": "integration-pass-1",
	})
	if resp.StatusCode != http.StatusOK || !envelope.Success {
		t.Fatalf("login failed: %d %q", resp.StatusCode, envelope.Error)
	}

	var loginData struct {
		Message string `json:"message"`
		Token   string `json:"token"`
	}
	if err := json.Unmarshal(envelope.Data, &loginData); err != nil {
		t.Fatalf("unmarshal login data: %v", err)
	}
	if loginData.Message != "Correct Credentials" || loginData.Token == "" {
		t.Fatalf("unexpected login payload: %+v", loginData)
	}

	// The minted token opens the gate.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+loginData.Token)
	meResp, err := env.app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	if meResp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from /me, got %d", meResp.StatusCode)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	env := newAuthFlowEnv(t)
	defer env.cleanup()

	if resp, envelope := postJSON(t, env.app, "/api/v1/auth/sign-up", signUpBody("wp@example.com", "wp")); resp.StatusCode != http.StatusCreated {
		t.Fatalf("sign-up failed: %d %q", resp.StatusCode, envelope.Error)
	}

	resp, envelope := postJSON(t, env.app, "/api/v1/auth/login", map[string]string{
		"email":    "wp@example.com",
		"password": "not-the-password",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	if envelope.Error != "invalid credentials" {
		t.Fatalf("unexpected error message: %q", envelope.Error)
	}
}

func TestLoginUnknownEmailSameMessage(t *testing.T) {
	env := newAuthFlowEnv(t)
	defer env.cleanup()

	resp, envelope := postJSON(t, env.app, "/api/v1/auth/login", map[string]string{
		"email":    "ghost@example.com",
		"password": "whatever-pass",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	if envelope.Error != "invalid credentials" {
		t.Fatalf("unknown email must not be distinguishable: %q", envelope.Error)
	}
}

func TestSignUpDuplicateEmailConflict(t *testing.T) {
	env := newAuthFlowEnv(t)
	defer env.cleanup()

	if resp, _ := postJSON(t, env.app, "/api/v1/auth/sign-up", signUpBody("dup@example.com", "dupone")); resp.StatusCode != http.StatusCreated {
		t.Fatalf("first sign-up failed: %d", resp.StatusCode)
	}

	resp, _ := postJSON(t, env.app, "/api/v1/auth/sign-up", signUpBody("dup@example.com", "duptwo"))
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}

func TestPasswordRecoveryFlow(t *testing.T) {
	env := newAuthFlowEnv(t)
	defer env.cleanup()

	if resp, _ := postJSON(t, env.app, "/api/v1/auth/sign-up", signUpBody("rec@example.com", "rec")); resp.StatusCode != http.StatusCreated {
		t.Fatalf("sign-up failed: %d", resp.StatusCode)
	}

	resp, envelope := postJSON(t, env.app, "/api/v1/auth/forget-password", map[string]string{"email": "rec@example.com"})
	if resp.StatusCode != http.StatusOK || !envelope.Success {
		t.Fatalf("forget-password failed: %d %q", resp.StatusCode, envelope.Error)
	}

	// The reset link carries the raw token; grab it from the service the
	// same way a fresh request would have minted it.
	_, raw, err := env.authSvc.CreateRecoveryToken("rec@example.com")
	if err != nil {
		t.Fatalf("CreateRecoveryToken failed: %v", err)
	}

	resp, envelope = postJSON(t, env.app, "/api/v1/auth/change-password/"+raw, map[string]string{
		"password": "brand-new-pass-1",
	})
	if resp.StatusCode != http.StatusOK || !envelope.Success {
		t.Fatalf("change-password failed: %d %q", resp.StatusCode, envelope.Error)
	}

	// Old password rejected, new one accepted.
	resp, _ = postJSON(t, env.app, "/api/v1/auth/login", map[string]string{
		"email":    "rec@example.com",
		"password": "integration-pass-1",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("old password still accepted: %d", resp.StatusCode)
	}

	resp, _ = postJSON(t, env.app, "/api/v1/auth/login", map[string]string{
		"email":    "rec@example.com",
		"password": "brand-new-pass-1",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("new password rejected: %d", resp.StatusCode)
	}

	// The token is single use.
	resp, envelope = postJSON(t, env.app, "/api/v1/auth/change-password/"+raw, map[string]string{
		"password": "yet-another-pass-1",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 on replay, got %d", resp.StatusCode)
	}
	if envelope.Error != "Invalid Token" {
		t.Fatalf("unexpected replay message: %q", envelope.Error)
	}
}

func TestResetEmailLinkTargetsMountedRoute(t *testing.T) {
	env := newAuthFlowEnv(t)
	defer env.cleanup()

	if resp, _ := postJSON(t, env.app, "/api/v1/auth/sign-up", signUpBody("link@example.com", "link")); resp.StatusCode != http.StatusCreated {
		t.Fatalf("sign-up failed: %d", resp.StatusCode)
	}

	resp, envelope := postJSON(t, env.app, "/api/v1/auth/forget-password", map[string]string{"email": "link@example.com"})
	if resp.StatusCode != http.StatusOK || !envelope.Success {
		t.Fatalf("forget-password failed: %d %q", resp.StatusCode, envelope.Error)
	}

	if env.mailer.lastResetLink == "" {
		t.Fatal("no reset link was mailed")
	}
	link, err := url.Parse(env.mailer.lastResetLink)
	if err != nil {
		t.Fatalf("mailed reset link %q does not parse: %v", env.mailer.lastResetLink, err)
	}

	// The path in the emailed link must be the mounted redeem route.
	resp, envelope = postJSON(t, env.app, link.Path, map[string]string{
		"password": "relinked-pass-1",
	})
	if resp.StatusCode != http.StatusOK || !envelope.Success {
		t.Fatalf("emailed link path %q does not reach the change-password route: %d %q", link.Path, resp.StatusCode, envelope.Error)
	}

	resp, _ = postJSON(t, env.app, "/api/v1/auth/login", map[string]string{
		"email":    "link@example.com",
		"password": "relinked-pass-1",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("password set via emailed link rejected at login: %d", resp.StatusCode)
	}
}

func TestChangePasswordGarbageToken(t *testing.T) {
	env := newAuthFlowEnv(t)
	defer env.cleanup()

	resp, _ := postJSON(t, env.app, "/api/v1/auth/change-password/not-a-real-token", map[string]string{
		"password": "whatever-pass-1",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for undecodable token, got %d", resp.StatusCode)
	}
}
