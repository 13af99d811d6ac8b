package commands

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/snackshop-dev/snackadmin/internal/cli/auth"
	"github.com/snackshop-dev/snackadmin/internal/cli/client"
	"github.com/snackshop-dev/snackadmin/internal/cli/router"
)

func TestLogin_WithFlags(t *testing.T) {
	// Setup
	ta := newTestApp(t, "")
	ta.api.reply("POST /auth/login", http.StatusOK, client.LoginResponse{Token: "new-token", User: &testAdmin})

	// Execute
	err := ta.execute(NewLoginCmd(ta.App), "login", "--email", "admin@snack.vn", "--password", "secret")
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}

	// Assert the session was stored and announced
	token, err := ta.store.Get(auth.KeyToken)
	if err != nil || token != "new-token" {
		t.Errorf("expected stored token, got %q (%v)", token, err)
	}
	if !ta.Session.Snapshot().IsAuthenticated() {
		t.Error("expected authenticated session")
	}
	if n := ta.notes.Count("Login successful"); n != 1 {
		t.Errorf("expected success notification, got %+v", ta.notes.All())
	}
	if !strings.Contains(ta.out.String(), "admin@snack.vn") {
		t.Errorf("expected user details, got: %s", ta.out.String())
	}
	if !strings.Contains(string(ta.api.body("POST /auth/login")), `"source":"admin"`) {
		t.Errorf("expected admin source in body, got: %s", ta.api.body("POST /auth/login"))
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	// Setup
	ta := newTestApp(t, "")
	ta.api.reply("POST /auth/login", http.StatusUnauthorized, map[string]string{"message": "Invalid email or password"})

	// Execute
	err := ta.execute(NewLoginCmd(ta.App), "login", "--email", "admin@snack.vn", "--password", "wrong")
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	// The server's message is shown once, never as an expired session
	if n := ta.notes.Count("Invalid email or password"); n != 1 {
		t.Errorf("expected server message once, got %+v", ta.notes.All())
	}
	if n := ta.notes.Count(client.MsgSessionExpired); n != 0 {
		t.Errorf("expected no session expired notification, got %d", n)
	}
	if ta.store.Has(auth.KeyToken) {
		t.Error("expected no stored token")
	}

	ta.ReportError(err)
	if strings.Contains(ta.errOut.String(), "Error:") {
		t.Errorf("expected no repeated error, got: %s", ta.errOut.String())
	}
}

func TestLogin_PromptsForMissingValues(t *testing.T) {
	ta := newTestApp(t, "", "admin@snack.vn", "secret")
	ta.api.reply("POST /auth/login", http.StatusOK, client.LoginResponse{Token: "t", User: &testAdmin})

	if err := ta.execute(NewLoginCmd(ta.App), "login"); err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}

	if got := strings.Join(ta.prompter.Asked, ","); got != "Email,Password" {
		t.Errorf("expected email then password prompts, got %q", got)
	}
}

func TestLogout_ClearsEvenWhenAPIFails(t *testing.T) {
	ta := newTestApp(t, "tok")
	ta.api.reply("POST /auth/logout", http.StatusInternalServerError, map[string]string{"message": "down"})

	if err := ta.execute(NewLogoutCmd(ta.App), "logout"); err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}

	if ta.store.Has(auth.KeyToken) || ta.store.Has(auth.KeyUser) {
		t.Error("expected storage to be cleared")
	}
	if n := ta.notes.Count(client.MsgServerError); n != 0 {
		t.Errorf("expected logout failure to stay silent, got %+v", ta.notes.All())
	}
	if n := ta.notes.Count("Logged out"); n != 1 {
		t.Errorf("expected logout notification, got %+v", ta.notes.All())
	}
}

func TestWhoami_ShowsTokenExpiry(t *testing.T) {
	// Setup
	exp := time.Now().Add(2 * time.Hour)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   testAdmin.ID,
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	ta := newTestApp(t, token)

	// Execute
	if err := ta.execute(NewWhoamiCmd(ta.App), "whoami"); err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}

	out := ta.out.String()
	if !strings.Contains(out, "Nguyen An") {
		t.Errorf("expected user name, got: %s", out)
	}
	if !strings.Contains(out, "Session expires") {
		t.Errorf("expected expiry line, got: %s", out)
	}
}

func TestTokenExpiry_OpaqueToken(t *testing.T) {
	if got := tokenExpiry("not-a-jwt"); got != nil {
		t.Errorf("expected nil expiry, got %v", got)
	}
	if got := tokenExpiry(""); got != nil {
		t.Errorf("expected nil expiry, got %v", got)
	}
}

func TestShell_LoginThenHome(t *testing.T) {
	// Setup: no session, so the shell opens on the login page
	ta := newTestApp(t, "", "admin@snack.vn", "secret", menuQuit)
	ta.api.reply("POST /auth/login", http.StatusOK, client.LoginResponse{Token: "t", User: &testAdmin})
	ta.api.handle("GET /orders/statistics/completed", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer t" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{"totalRevenue":250000,"totalCompletedOrders":3,"topProducts":[]}}`))
	})

	// Execute
	if err := ta.execute(NewShellCmd(ta.App), "shell"); err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}

	// Assert
	if got := strings.Join(ta.prompter.Asked, ","); got != "Email,Password,Go to" {
		t.Errorf("unexpected prompts: %q", got)
	}
	out := ta.out.String()
	if !strings.Contains(out, "Welcome back, Nguyen An") {
		t.Errorf("expected home page after login, got: %s", out)
	}
	if !strings.Contains(out, "250.000đ") {
		t.Errorf("expected completed revenue, got: %s", out)
	}
}

func TestShell_ExpiredSessionRedirectsToLogin(t *testing.T) {
	// Setup: the products page rejects the token
	ta := newTestApp(t, "tok", "Products")
	ta.api.reply("GET /orders/statistics/completed", http.StatusOK, map[string]any{"success": true, "data": map[string]any{}})
	ta.api.reply("GET /snacks", http.StatusUnauthorized, map[string]string{"message": "expired"})

	sh := newShell(ta.App)

	// Execute: home, then Products, then the login page runs out of answers
	err := sh.run(t.Context())
	if err != nil {
		t.Fatalf("expected the shell to end quietly, got: %v", err)
	}

	// Assert the products entry was replaced, so Back cannot return to it
	history := sh.router.History()
	if len(history) != 2 || history[0] != HomePath || history[1] != router.LoginPath {
		t.Errorf("expected [/ /login], got %v", history)
	}
	if n := ta.notes.Count(client.MsgSessionExpired); n != 1 {
		t.Errorf("expected one session expired notification, got %d", n)
	}
	if ta.Session.Snapshot().IsAuthenticated() {
		t.Error("expected session to be cleared")
	}
}
