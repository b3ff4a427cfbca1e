package commands_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"taskboard/internal/cli"
	"taskboard/internal/commands"
	"taskboard/internal/config"
	"taskboard/internal/exitcode"
)

const testOAuthClient = `{"installed":{"client_id":"test","client_secret":"test","redirect_uris":["http://localhost"]}}`

// writeCredentials puts an OAuth client and a token into dir.
func writeCredentials(t *testing.T, dir string) (clientPath, tokenPath string) {
	t.Helper()
	clientPath = filepath.Join(dir, config.OAuthClientFile)
	tokenPath = filepath.Join(dir, config.TokenFile)
	if err := os.WriteFile(clientPath, []byte(testOAuthClient), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(tokenPath, []byte(`{"access_token":"a","refresh_token":"r"}`), 0600); err != nil {
		t.Fatal(err)
	}
	return clientPath, tokenPath
}

func dispatch(t *testing.T, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	var out, errOut bytes.Buffer
	d := cli.NewDispatcher(commands.DefaultRegistry, nil)
	code = d.Run(context.Background(), args, &out, &errOut)
	return out.String(), errOut.String(), code
}

func TestLogout_GoogleTasksNeedsLoginAgain(t *testing.T) {
	dir := t.TempDir()
	clientPath, tokenPath := writeCredentials(t, dir)

	stdout, stderr, code := dispatch(t, "logout", "--config", dir, "--backend", "googletasks")
	if code != exitcode.Success || stdout != "ok\n" || stderr != "" {
		t.Fatalf("logout: code=%d stdout=%q stderr=%q", code, stdout, stderr)
	}
	if _, err := os.Stat(tokenPath); !os.IsNotExist(err) {
		t.Error("token.json should be removed")
	}
	if _, err := os.Stat(clientPath); err != nil {
		t.Error("oauth_client.json should be kept")
	}

	_, stderr, code = dispatch(t, "board", "--config", dir, "--backend", "googletasks")
	if code != exitcode.AuthError {
		t.Errorf("board after logout: code = %d, want %d", code, exitcode.AuthError)
	}
	if stderr != "error: not logged in (run: taskboard login)\n" {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestLogout_NotLoggedIn(t *testing.T) {
	tests := []struct {
		name   string
		quiet  bool
		stdout string
	}{
		{"normal", false, "not logged in\n"},
		{"quiet", true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := []string{"logout", "--config", t.TempDir()}
			if tt.quiet {
				args = append(args, "-q")
			}
			stdout, stderr, code := dispatch(t, args...)
			if code != exitcode.Success || stdout != tt.stdout || stderr != "" {
				t.Errorf("code=%d stdout=%q stderr=%q", code, stdout, stderr)
			}
		})
	}
}

func TestLogin_RESTBackendNeedsNoLogin(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		io.WriteString(w, `[{"id":1,"titulo":"Fix login","estado":"PENDIENTE","prioridad":"ALTA"}]`)
	}))
	defer srv.Close()
	dir := t.TempDir()

	stdout, stderr, code := dispatch(t, "login", "--config", dir, "--backend", "rest", "--api", srv.URL+"/api/tareas")
	if code != exitcode.Success || stdout != "rest backend needs no login\n" || stderr != "" {
		t.Fatalf("login: code=%d stdout=%q stderr=%q", code, stdout, stderr)
	}
	if n := calls.Load(); n != 0 {
		t.Errorf("login called the task API %d times", n)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("login wrote %d files to the config dir", len(entries))
	}

	stdout, stderr, code = dispatch(t, "list", "--config", dir, "--backend", "rest", "--api", srv.URL+"/api/tareas")
	if code != exitcode.Success {
		t.Fatalf("list: code=%d stderr=%q", code, stderr)
	}
	if stdout != "   1  Pending      high    Fix login\n" {
		t.Errorf("list = %q", stdout)
	}
}

func TestLogin_GoogleTasksWithoutClient(t *testing.T) {
	dir := t.TempDir()

	stdout, stderr, code := dispatch(t, "login", "--config", dir, "--backend", "googletasks")
	if code != exitcode.AuthError {
		t.Errorf("code = %d, want %d", code, exitcode.AuthError)
	}
	if stdout != "" {
		t.Errorf("stdout = %q", stdout)
	}
	if !strings.HasPrefix(stderr, "error: oauth_client.json not found in "+dir+"\n") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestLogin_UnusableTokenStartsFlow(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"corrupt", `{"access_token":`},
		{"no refresh token", `{"access_token":"a","token_type":"Bearer","expiry":"2020-01-01T00:00:00Z"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeCredentials(t, dir)
			if err := os.WriteFile(filepath.Join(dir, config.TokenFile), []byte(tt.token), 0600); err != nil {
				t.Fatal(err)
			}
			cfg := &config.Config{Dir: dir, Backend: config.BackendGoogleTasks}

			// A cancelled context stops the flow at the browser callback.
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			var out, errOut bytes.Buffer
			code := (&commands.LoginCmd{}).Run(ctx, cfg, nil, nil, &out, &errOut)

			if code != exitcode.AuthError {
				t.Errorf("code = %d, want %d", code, exitcode.AuthError)
			}
			if out.String() == "already logged in\n" {
				t.Error("an unusable token must not count as logged in")
			}
			if out.Len() != 0 {
				t.Errorf("stdout = %q", out.String())
			}
		})
	}
}
