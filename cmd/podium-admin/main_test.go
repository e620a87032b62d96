package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"podium/internal/adminapi"
)

type adminTestEnv struct {
	server     *httptest.Server
	configPath string
	stateDir   string
}

func setupAdminTestEnv(t *testing.T, handler http.Handler) *adminTestEnv {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	base := t.TempDir()
	stateDir := filepath.Join(base, "state")
	logDir := filepath.Join(base, "logs")
	configPath := filepath.Join(base, "config.toml")

	content := "[server]\nbase_url = \"" + server.URL + "\"\n" +
		"[paths]\nstate_dir = \"" + stateDir + "\"\nlog_dir = \"" + logDir + "\"\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	return &adminTestEnv{server: server, configPath: configPath, stateDir: stateDir}
}

func (e *adminTestEnv) saveToken(t *testing.T) {
	t.Helper()
	store := adminapi.NewFileTokenStore(adminapi.DefaultTokenPath(e.stateDir))
	if err := adminapi.SaveToken(store, "test-token", "admin"); err != nil {
		t.Fatalf("seed token: %v", err)
	}
}

func runCLI(t *testing.T, env *adminTestEnv, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", env.configPath}, args...))
	err := cmd.Execute()
	return stdout.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got:\n%s", needle, haystack)
	}
}

func TestLoginStoresSession(t *testing.T) {
	env := setupAdminTestEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/admin/api/login" {
			t.Errorf("unexpected request: %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(adminapi.LoginResult{Token: "issued", Username: "admin"})
	}))

	out, err := runCLI(t, env, "admin\nsecret\n", "login")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	requireContains(t, out, "Logged in as admin")

	store := adminapi.NewFileTokenStore(adminapi.DefaultTokenPath(env.stateDir))
	token, username, err := adminapi.LoadToken(store)
	if err != nil {
		t.Fatalf("load stored token: %v", err)
	}
	if token != "issued" || username != "admin" {
		t.Fatalf("unexpected stored session: %q / %q", token, username)
	}
}

func TestProductsListRendersTable(t *testing.T) {
	env := setupAdminTestEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("expected bearer header, got %q", got)
		}
		_ = json.NewEncoder(w).Encode([]adminapi.Product{
			{ID: 1, Name: "Standing Desk", Slug: "standing-desk", Status: "ready"},
			{ID: 2, Name: "Task Chair", Slug: "task-chair", Status: "processing"},
		})
	}))
	env.saveToken(t)

	out, err := runCLI(t, env, "", "products", "list")
	if err != nil {
		t.Fatalf("products list: %v", err)
	}
	requireContains(t, out, "Standing Desk")
	requireContains(t, out, "Task Chair")
	requireContains(t, out, "processing")
}

func TestProductsShowRendersDetails(t *testing.T) {
	env := setupAdminTestEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/admin/api/products/7" {
			t.Errorf("unexpected request: %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(adminapi.Product{
			ID:          7,
			Name:        "Standing Desk",
			Slug:        "standing-desk",
			Description: "Motorized sit-stand desk",
			Status:      "ready",
			CreatedAt:   "2026-08-01T10:00:00Z",
			UpdatedAt:   "2026-08-15T09:30:00Z",
		})
	}))
	env.saveToken(t)

	out, err := runCLI(t, env, "", "products", "show", "7")
	if err != nil {
		t.Fatalf("products show: %v", err)
	}
	requireContains(t, out, "Standing Desk")
	requireContains(t, out, "Motorized sit-stand desk")
	requireContains(t, out, "Status: ready")
	requireContains(t, out, "2026-08-15T09:30:00Z")
}

func TestCommandsRequireLogin(t *testing.T) {
	env := setupAdminTestEnv(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Error("no request should reach the server without a session")
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := runCLI(t, env, "", "products", "list")
	if err == nil || !strings.Contains(err.Error(), "not logged in") {
		t.Fatalf("expected not-logged-in error, got %v", err)
	}
}

func TestExpiredSessionClearsStoredToken(t *testing.T) {
	env := setupAdminTestEnv(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	env.saveToken(t)

	_, err := runCLI(t, env, "", "products", "list")
	if err == nil || !strings.Contains(err.Error(), "session expired") {
		t.Fatalf("expected session-expired hint, got %v", err)
	}

	// The dead token must not survive; the next command should ask for a
	// fresh login instead of replaying it.
	store := adminapi.NewFileTokenStore(adminapi.DefaultTokenPath(env.stateDir))
	token, _, err := adminapi.LoadToken(store)
	if err != nil {
		t.Fatalf("load token after 401: %v", err)
	}
	if token != "" {
		t.Fatalf("expected stored session cleared after 401, got token %q", token)
	}
}

func TestLogoutClearsSession(t *testing.T) {
	env := setupAdminTestEnv(t, http.NotFoundHandler())
	env.saveToken(t)

	if _, err := runCLI(t, env, "", "logout"); err != nil {
		t.Fatalf("logout: %v", err)
	}

	store := adminapi.NewFileTokenStore(adminapi.DefaultTokenPath(env.stateDir))
	token, _, err := adminapi.LoadToken(store)
	if err != nil {
		t.Fatalf("load token after logout: %v", err)
	}
	if token != "" {
		t.Fatalf("expected cleared session, got token %q", token)
	}
}

func TestSettingsShow(t *testing.T) {
	env := setupAdminTestEnv(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(adminapi.Settings{
			"tts_voice":   "asteria",
			"tts_enabled": "true",
		})
	}))
	env.saveToken(t)

	out, err := runCLI(t, env, "", "settings")
	if err != nil {
		t.Fatalf("settings: %v", err)
	}
	requireContains(t, out, "tts_voice")
	requireContains(t, out, "asteria")
}
