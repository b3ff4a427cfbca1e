package commands_test

import (
	"bytes"
	"context"
	"flag"
	"io"
	"net/http"
	"strings"
	"testing"

	"taskboard/internal/commands"
	"taskboard/internal/config"
	"taskboard/internal/exitcode"
	"taskboard/internal/service"
	"taskboard/internal/testutil"
)

// runCommand parses argv with the command's flags and runs it, the way the
// dispatcher does.
func runCommand(t *testing.T, cmd commands.Command, svc service.Service, argv []string, quiet bool) (stdout, stderr string, code int) {
	t.Helper()

	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cmd.RegisterFlags(fs)
	if err := fs.Parse(argv); err != nil {
		t.Fatalf("parse %v: %v", argv, err)
	}

	var outBuf, errBuf bytes.Buffer
	cfg := &config.Config{
		Dir:   t.TempDir(),
		Quiet: quiet,
	}

	code = cmd.Run(context.Background(), cfg, svc, fs.Args(), &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

func seeded() *testutil.FakeService {
	svc := testutil.NewFakeService()
	svc.AddTask(service.Task{Title: "Fix login", Status: service.StatusPending, Priority: service.PriorityHigh})
	svc.AddTask(service.Task{Title: "Ship release", Status: service.StatusDone, Priority: service.PriorityMedium})
	return svc
}

func TestVersionCommand(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.VersionCmd{}, nil, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "taskboard 0.1.0\n" {
		t.Errorf("expected version output, got %q", stdout)
	}
}

func TestHelpCommand(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.HelpCmd{}, nil, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	for _, want := range []string{"Usage:", "taskboard move", "taskboard serve", "--backend <name>"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("help output should contain %q", want)
		}
	}
}

func TestHelpCommand_SingleCommand(t *testing.T) {
	stdout, _, code := runCommand(t, &commands.HelpCmd{}, nil, []string{"mv"}, false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if !strings.Contains(stdout, "taskboard move <id>") || !strings.Contains(stdout, "Aliases: mv") {
		t.Errorf("unexpected help: %q", stdout)
	}

	_, stderr, code := runCommand(t, &commands.HelpCmd{}, nil, []string{"nope"}, false)
	if code != exitcode.UserError || stderr != "error: unknown command: nope\n" {
		t.Errorf("got %d %q", code, stderr)
	}
}

func TestListCommand(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.ListCmd{}, seeded(), nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	expected := "   1  Pending      high    Fix login\n" +
		"   2  Done         medium  Ship release\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

func TestListCommand_Filters(t *testing.T) {
	stdout, _, code := runCommand(t, &commands.ListCmd{}, seeded(), []string{"--status", "done"}, false)
	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "   2  Done         medium  Ship release\n" {
		t.Errorf("got %q", stdout)
	}

	stdout, _, _ = runCommand(t, &commands.ListCmd{}, seeded(), []string{"-t", "LOGIN"}, false)
	if !strings.Contains(stdout, "Fix login") || strings.Contains(stdout, "Ship release") {
		t.Errorf("text filter: %q", stdout)
	}
}

func TestListCommand_InvalidFilterMakesNoCall(t *testing.T) {
	svc := seeded()
	_, stderr, code := runCommand(t, &commands.ListCmd{}, svc, []string{"--priority", "urgent"}, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: invalid priority filter: urgent\n" {
		t.Errorf("got %q", stderr)
	}
	if svc.TotalCalls() != 0 {
		t.Errorf("service called %d times", svc.TotalCalls())
	}
}

func TestListCommand_Empty(t *testing.T) {
	stdout, _, code := runCommand(t, &commands.ListCmd{}, testutil.NewFakeService(), nil, false)
	if code != exitcode.Success || stdout != "no tasks\n" {
		t.Errorf("got %d %q", code, stdout)
	}

	stdout, _, code = runCommand(t, &commands.ListCmd{}, testutil.NewFakeService(), nil, true)
	if code != exitcode.Success || stdout != "" {
		t.Errorf("quiet: got %d %q", code, stdout)
	}
}

func TestListCommand_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   int
		prefix string
	}{
		{"unavailable", testutil.ErrUnavailable, exitcode.BackendError, "error: backend error:"},
		{"network", &service.NetworkError{Op: "list", Err: io.ErrUnexpectedEOF}, exitcode.BackendError, "error: backend error:"},
		{"unauthorized", &service.ServiceError{Op: "list", StatusCode: http.StatusUnauthorized}, exitcode.AuthError, "error: auth error:"},
		{"forbidden", &service.ServiceError{Op: "list", StatusCode: http.StatusForbidden}, exitcode.AuthError, "error: auth error:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := seeded()
			svc.ListErr = tt.err

			stdout, stderr, code := runCommand(t, &commands.ListCmd{}, svc, nil, false)
			if code != tt.code {
				t.Errorf("expected exit code %d, got %d", tt.code, code)
			}
			if stdout != "" {
				t.Errorf("expected no stdout, got %q", stdout)
			}
			if !strings.HasPrefix(stderr, tt.prefix) {
				t.Errorf("stderr = %q, want prefix %q", stderr, tt.prefix)
			}
		})
	}
}

func TestShowCommand(t *testing.T) {
	stdout, _, code := runCommand(t, &commands.ShowCmd{}, seeded(), []string{"1"}, false)
	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	for _, want := range []string{"ID:          1\n", "Title:       Fix login\n", "Priority:    high\n", "Due:         -\n"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("show output missing %q:\n%s", want, stdout)
		}
	}

	_, stderr, code := runCommand(t, &commands.ShowCmd{}, seeded(), []string{"99"}, false)
	if code != exitcode.UserError || stderr != "error: task not found: 99\n" {
		t.Errorf("got %d %q", code, stderr)
	}

	_, stderr, code = runCommand(t, &commands.ShowCmd{}, seeded(), nil, false)
	if code != exitcode.UserError || stderr != "error: task id required\n" {
		t.Errorf("got %d %q", code, stderr)
	}
}

func TestAddCommand_Success(t *testing.T) {
	svc := seeded()
	argv := []string{"-p", "high", "--status", "in-progress", "-a", "ana", "--due", "2025-06-01", "Write", "the", "docs"}

	stdout, stderr, code := runCommand(t, &commands.AddCmd{}, svc, argv, false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (%s)", exitcode.Success, code, stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok\\n', got %q", stdout)
	}
	stored := svc.Stored()
	if len(stored) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(stored))
	}
	want := service.Task{
		ID:       "3",
		Title:    "Write the docs",
		Status:   service.StatusInProgress,
		Priority: service.PriorityHigh,
		Assignee: "ana",
		DueDate:  "2025-06-01",
	}
	if stored[2] != want {
		t.Errorf("stored %+v, want %+v", stored[2], want)
	}
}

func TestAddCommand_Defaults(t *testing.T) {
	svc := testutil.NewFakeService()

	stdout, _, code := runCommand(t, &commands.AddCmd{}, svc, []string{"--due=", "Buy milk"}, true)

	if code != exitcode.Success || stdout != "" {
		t.Fatalf("got %d %q", code, stdout)
	}
	got := svc.Stored()[0]
	if got.Status != service.StatusPending || got.Priority != service.PriorityMedium || got.DueDate != "" {
		t.Errorf("defaults not applied: %+v", got)
	}
}

func TestAddCommand_NoTitle(t *testing.T) {
	svc := testutil.NewFakeService()
	stdout, stderr, code := runCommand(t, &commands.AddCmd{}, svc, []string{"  "}, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stdout != "" || stderr != "error: title required\n" {
		t.Errorf("got %q %q", stdout, stderr)
	}
	if svc.TotalCalls() != 0 {
		t.Error("service should not be called")
	}
}

func TestAddCommand_InvalidFields(t *testing.T) {
	for _, argv := range [][]string{
		{"--due", "tomorrow", "Buy milk"},
		{"-p", "urgent", "Buy milk"},
	} {
		svc := testutil.NewFakeService()
		_, stderr, code := runCommand(t, &commands.AddCmd{}, svc, argv, false)

		if code != exitcode.UserError {
			t.Errorf("%v: expected exit code %d, got %d", argv, exitcode.UserError, code)
		}
		if !strings.HasPrefix(stderr, "error: invalid task:") {
			t.Errorf("%v: stderr = %q", argv, stderr)
		}
		if svc.CallCount("Create") != 0 {
			t.Errorf("%v: Create called", argv)
		}
	}
}

func TestEditCommand(t *testing.T) {
	svc := seeded()

	stdout, _, code := runCommand(t, &commands.EditCmd{}, svc, []string{"--title", "Fix login page", "1"}, false)
	if code != exitcode.Success || stdout != "ok\n" {
		t.Fatalf("got %d %q", code, stdout)
	}
	got := svc.Stored()[0]
	if got.Title != "Fix login page" || got.Priority != service.PriorityHigh || got.Status != service.StatusPending {
		t.Errorf("unexpected update: %+v", got)
	}
}

func TestEditCommand_Errors(t *testing.T) {
	tests := []struct {
		name   string
		argv   []string
		stderr string
	}{
		{"no id", []string{"--title", "x"}, "error: task id required\n"},
		{"nothing to change", []string{"1"}, "error: nothing to change\n"},
		{"unknown id", []string{"--title", "x", "99"}, "error: task not found: 99\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := seeded()
			_, stderr, code := runCommand(t, &commands.EditCmd{}, svc, tt.argv, false)
			if code != exitcode.UserError {
				t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
			}
			if stderr != tt.stderr {
				t.Errorf("expected %q, got %q", tt.stderr, stderr)
			}
			if svc.CallCount("Update") != 0 {
				t.Error("Update called")
			}
		})
	}
}

func TestMoveCommand(t *testing.T) {
	svc := seeded()

	stdout, _, code := runCommand(t, &commands.MoveCmd{}, svc, []string{"1", "in-progress"}, false)
	if code != exitcode.Success || stdout != "ok\n" {
		t.Fatalf("got %d %q", code, stdout)
	}
	if got := svc.Stored()[0].Status; got != service.StatusInProgress {
		t.Errorf("status = %s", got)
	}
}

func TestMoveCommand_Errors(t *testing.T) {
	tests := []struct {
		name   string
		argv   []string
		code   int
		stderr string
	}{
		{"missing status", []string{"1"}, exitcode.UserError, "error: task id and status required\n"},
		{"bad status", []string{"1", "archived"}, exitcode.UserError, "error: invalid status: archived\n"},
		{"unknown id", []string{"99", "done"}, exitcode.UserError, "error: task not found: 99\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, stderr, code := runCommand(t, &commands.MoveCmd{}, seeded(), tt.argv, false)
			if code != tt.code || stderr != tt.stderr {
				t.Errorf("got %d %q, want %d %q", code, stderr, tt.code, tt.stderr)
			}
		})
	}
}

func TestMoveCommand_UpdateFails(t *testing.T) {
	svc := seeded()
	svc.UpdateErr = testutil.ErrUnavailable

	_, stderr, code := runCommand(t, &commands.MoveCmd{}, svc, []string{"1", "done"}, false)
	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if !strings.HasPrefix(stderr, "error: backend error:") {
		t.Errorf("stderr = %q", stderr)
	}
	if got := svc.Stored()[0].Status; got != service.StatusPending {
		t.Errorf("status = %s", got)
	}
}

func TestDoneCommand(t *testing.T) {
	svc := seeded()

	stdout, _, code := runCommand(t, &commands.DoneCmd{}, svc, []string{"1"}, false)
	if code != exitcode.Success || stdout != "ok\n" {
		t.Fatalf("got %d %q", code, stdout)
	}
	if got := svc.Stored()[0].Status; got != service.StatusDone {
		t.Errorf("status = %s", got)
	}

	// Already done: no update call.
	calls := svc.CallCount("Update")
	if _, _, code := runCommand(t, &commands.DoneCmd{}, svc, []string{"2"}, false); code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if svc.CallCount("Update") != calls {
		t.Error("moving to the same column should not call the service")
	}
}

func TestRmCommand_Yes(t *testing.T) {
	svc := seeded()

	stdout, stderr, code := runCommand(t, &commands.RmCmd{}, svc, []string{"--yes", "1"}, false)
	if code != exitcode.Success || stdout != "ok\n" || stderr != "" {
		t.Fatalf("got %d %q %q", code, stdout, stderr)
	}
	if stored := svc.Stored(); len(stored) != 1 || stored[0].ID != "2" {
		t.Errorf("stored = %+v", stored)
	}
}

func TestRmCommand_Prompt(t *testing.T) {
	tests := []struct {
		answer  string
		deleted bool
		stdout  string
	}{
		{"y\n", true, "ok\n"},
		{"yes\n", true, "ok\n"},
		{"n\n", false, "cancelled\n"},
		{"\n", false, "cancelled\n"},
		{"", false, "cancelled\n"},
	}
	for _, tt := range tests {
		svc := seeded()
		cmd := &commands.RmCmd{In: strings.NewReader(tt.answer)}

		stdout, stderr, code := runCommand(t, cmd, svc, []string{"1"}, false)
		if code != exitcode.Success || stdout != tt.stdout {
			t.Errorf("%q: got %d %q", tt.answer, code, stdout)
		}
		if stderr != "Delete this task? [y/N] " {
			t.Errorf("%q: prompt = %q", tt.answer, stderr)
		}
		if deleted := len(svc.Stored()) == 1; deleted != tt.deleted {
			t.Errorf("%q: deleted = %v", tt.answer, deleted)
		}
		if !tt.deleted && svc.CallCount("Delete") != 0 {
			t.Errorf("%q: Delete called after decline", tt.answer)
		}
	}
}

func TestRmCommand_Errors(t *testing.T) {
	_, stderr, code := runCommand(t, &commands.RmCmd{}, seeded(), nil, false)
	if code != exitcode.UserError || stderr != "error: task id required\n" {
		t.Errorf("got %d %q", code, stderr)
	}

	svc := seeded()
	svc.DeleteErr = testutil.ErrUnavailable
	_, stderr, code = runCommand(t, &commands.RmCmd{}, svc, []string{"-y", "1"}, false)
	if code != exitcode.BackendError || !strings.HasPrefix(stderr, "error: backend error:") {
		t.Errorf("got %d %q", code, stderr)
	}
	if len(svc.Stored()) != 2 {
		t.Error("task should still exist")
	}
}

func TestBoardCommand_Plain(t *testing.T) {
	stdout, _, code := runCommand(t, &commands.BoardCmd{}, seeded(), []string{"--plain"}, false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	expected := "------------\nPending (1)\n------------\n" +
		"   1  Pending      high    Fix login\n" +
		"------------\nIn progress (0)\n------------\n" +
		"------------\nDone (1)\n------------\n" +
		"   2  Done         medium  Ship release\n" +
		"2 tasks: 1 pending, 0 in progress, 1 done (50% complete)\n"
	if stdout != expected {
		t.Errorf("expected:\n%s\ngot:\n%s", expected, stdout)
	}
}

func TestBoardCommand_Columns(t *testing.T) {
	stdout, _, code := runCommand(t, &commands.BoardCmd{}, seeded(), []string{"--width", "90"}, false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	for _, want := range []string{"Pending (1)", "In progress (0)", "Done (1)", "Fix login", "Ship release", "(empty)", "50%"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("board missing %q:\n%s", want, stdout)
		}
	}

	_, stderr, code := runCommand(t, &commands.BoardCmd{}, seeded(), []string{"--width", "0"}, false)
	if code != exitcode.UserError || stderr != "error: invalid width: 0\n" {
		t.Errorf("got %d %q", code, stderr)
	}
}

func TestSummaryCommand(t *testing.T) {
	stdout, _, code := runCommand(t, &commands.SummaryCmd{}, seeded(), nil, false)
	if code != exitcode.Success || stdout != "2 tasks: 1 pending, 0 in progress, 1 done (50% complete)\n" {
		t.Errorf("got %d %q", code, stdout)
	}

	stdout, _, _ = runCommand(t, &commands.SummaryCmd{}, seeded(), []string{"--priority", "high"}, false)
	if stdout != "1 tasks: 1 pending, 0 in progress, 0 done (0% complete)\n" {
		t.Errorf("filtered summary: %q", stdout)
	}
}

func TestRegistry(t *testing.T) {
	for _, name := range []string{"board", "list", "ls", "show", "add", "create", "edit", "move", "mv", "done", "rm", "delete", "summary", "serve", "tui", "login", "logout", "help", "version"} {
		if _, ok := commands.DefaultRegistry.Find(name); !ok {
			t.Errorf("command %q not registered", name)
		}
	}

	r := commands.NewRegistry()
	if err := r.Register(&commands.ListCmd{}); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(&commands.ListCmd{}); err == nil {
		t.Error("duplicate registration should fail")
	}
}
