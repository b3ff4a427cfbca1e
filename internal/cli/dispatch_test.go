package cli_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"taskboard/internal/cli"
	"taskboard/internal/commands"
	"taskboard/internal/config"
	"taskboard/internal/exitcode"
	"taskboard/internal/service"
	"taskboard/internal/testutil"
)

// testFactory creates a service factory that returns the given FakeService.
func testFactory(svc *testutil.FakeService) cli.ServiceFactory {
	return func(ctx context.Context, cfg *config.Config) (service.Service, error) {
		return svc, nil
	}
}

func run(t *testing.T, d *cli.Dispatcher, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	var outBuf, errBuf bytes.Buffer
	code = d.Run(context.Background(), args, &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

func TestDispatcher_UnknownCommand(t *testing.T) {
	svc := testutil.NewFakeService()
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(svc))

	_, stderr, code := run(t, dispatcher, "unknowncmd")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: unknowncmd\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_FlagBeforeCommand(t *testing.T) {
	svc := testutil.NewFakeService()
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(svc))

	_, stderr, code := run(t, dispatcher, "--quiet")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: --quiet\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_HelpCommand(t *testing.T) {
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, func(ctx context.Context, cfg *config.Config) (service.Service, error) {
		t.Error("help should not create a service")
		return nil, nil
	})

	stdout, stderr, code := run(t, dispatcher, "help", "--config", t.TempDir())

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if !strings.Contains(stdout, "Usage:") {
		t.Error("expected help output to contain 'Usage:'")
	}
}

func TestDispatcher_VersionCommand(t *testing.T) {
	svc := testutil.NewFakeService()
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(svc))

	stdout, stderr, code := run(t, dispatcher, "version", "--config", t.TempDir())

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "taskboard 0.1.0\n" {
		t.Errorf("expected 'taskboard 0.1.0\\n', got %q", stdout)
	}
}

func TestDispatcher_UnknownFlag(t *testing.T) {
	svc := testutil.NewFakeService()
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(svc))

	_, stderr, code := run(t, dispatcher, "help", "--unknown")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown flag: -unknown\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_MissingFlagValue(t *testing.T) {
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeService()))

	_, stderr, code := run(t, dispatcher, "list", "--status")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: flag needs an argument: -status\n" {
		t.Errorf("got %q", stderr)
	}
}

func TestDispatcher_NoArgsPrintsBoard(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	svc := testutil.NewFakeService()
	svc.AddTask(service.Task{Title: "Fix login", Status: service.StatusPending, Priority: service.PriorityHigh})
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(svc))

	stdout, stderr, code := run(t, dispatcher)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (%s)", exitcode.Success, code, stderr)
	}
	for _, want := range []string{"Pending (1)", "Fix login", "Done (0)"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("board missing %q:\n%s", want, stdout)
		}
	}
}

func TestDispatcher_FlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("TASKBOARD_BACKEND", "googletasks")
	t.Setenv("TASKBOARD_API_URL", "http://env.example/api/tareas")

	var got *config.Config
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, func(ctx context.Context, cfg *config.Config) (service.Service, error) {
		got = cfg
		return testutil.NewFakeService(), nil
	})

	dir := t.TempDir()
	_, stderr, code := run(t, dispatcher, "list", "--config", dir, "--backend", "REST", "--api", "http://flag.example/tasks", "-q")

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (%s)", exitcode.Success, code, stderr)
	}
	if got == nil {
		t.Fatal("factory not called")
	}
	if got.Dir != dir || got.Backend != config.BackendREST || got.APIURL != "http://flag.example/tasks" || !got.Quiet {
		t.Errorf("config = %+v", got)
	}
}

func TestDispatcher_InvalidBackend(t *testing.T) {
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeService()))

	_, stderr, code := run(t, dispatcher, "list", "--config", t.TempDir(), "--backend", "ftp")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.HasPrefix(stderr, "error: unknown backend") {
		t.Errorf("got %q", stderr)
	}
}

func TestDispatcher_BackendFlagOverridesBadEnvironment(t *testing.T) {
	t.Setenv("TASKBOARD_BACKEND", "bogus")
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeService()))

	_, stderr, code := run(t, dispatcher, "list", "--config", t.TempDir(), "--backend", "rest")
	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d (%s)", exitcode.Success, code, stderr)
	}

	_, stderr, code = run(t, dispatcher, "list", "--config", t.TempDir())
	if code != exitcode.UserError || !strings.HasPrefix(stderr, "error: unknown backend") {
		t.Errorf("got %d %q", code, stderr)
	}
}

func TestDispatcher_GoogleTasksPreflight(t *testing.T) {
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, nil)
	dir := t.TempDir()

	_, stderr, code := run(t, dispatcher, "list", "--config", dir, "--backend", "googletasks")
	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if stderr != "error: oauth_client.json not found in "+dir+"\n" {
		t.Errorf("got %q", stderr)
	}

	oauthClient := `{"installed":{"client_id":"test","client_secret":"test","redirect_uris":["http://localhost"]}}`
	if err := os.WriteFile(filepath.Join(dir, config.OAuthClientFile), []byte(oauthClient), 0600); err != nil {
		t.Fatal(err)
	}
	_, stderr, code = run(t, dispatcher, "list", "--config", dir, "--backend", "googletasks")
	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if stderr != "error: not logged in (run: taskboard login)\n" {
		t.Errorf("got %q", stderr)
	}
}

func TestDispatcher_RESTBadURL(t *testing.T) {
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, nil)

	_, stderr, code := run(t, dispatcher, "list", "--config", t.TempDir(), "--backend", "rest", "--api", "ftp://example.com/tasks")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.HasPrefix(stderr, "error: ") {
		t.Errorf("got %q", stderr)
	}
}

func TestDispatcher_DebugLogs(t *testing.T) {
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeService()))

	stdout, stderr, code := run(t, dispatcher, "version", "--config", t.TempDir(), "--debug")

	if code != exitcode.Success || stdout != "taskboard 0.1.0\n" {
		t.Fatalf("got %d %q", code, stdout)
	}
	if !strings.Contains(stderr, "msg=dispatch") || !strings.Contains(stderr, "command=version") {
		t.Errorf("expected debug record, got %q", stderr)
	}
}
