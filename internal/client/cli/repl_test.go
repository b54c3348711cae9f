package cli

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

type fakeExec struct {
	loggedIn bool

	calls      []string
	updateArgs []string
}

func (f *fakeExec) isLoggedIn(context.Context) bool { return f.loggedIn }
func (f *fakeExec) Login(context.Context) error {
	f.calls = append(f.calls, "login")
	f.loggedIn = true
	return nil
}
func (f *fakeExec) GuestLogin(context.Context) error {
	f.calls = append(f.calls, "guest")
	f.loggedIn = true
	return nil
}
func (f *fakeExec) Logout(context.Context) error {
	f.calls = append(f.calls, "logout")
	f.loggedIn = false
	return nil
}
func (f *fakeExec) WhoAmI(context.Context) error  { f.calls = append(f.calls, "whoami"); return nil }
func (f *fakeExec) Profile(context.Context) error { f.calls = append(f.calls, "profile"); return nil }
func (f *fakeExec) Update(_ context.Context, args []string) error {
	f.calls = append(f.calls, "update")
	f.updateArgs = args
	return nil
}
func (f *fakeExec) Sync(context.Context) error { f.calls = append(f.calls, "sync"); return nil }

// captureOutput replaces printlnFn and returns the printed lines.
func captureOutput(t *testing.T) *[]string {
	t.Helper()
	orig := printlnFn
	var lines []string
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func TestRunREPL_LoginFlowAndCommands(t *testing.T) {
	out := captureOutput(t)

	input := strings.Join([]string{
		"help",
		"login",
		"help",
		"",
		"profile",
		"update weight=70 city=成都",
		"sync",
		"whoami",
		"logout",
		"foobar",
		"exit",
		"login",
	}, "\n")

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "status" }, rdr(input))

	want := []string{"login", "profile", "update", "sync", "whoami", "logout"}
	if strings.Join(exec.calls, ",") != strings.Join(want, ",") {
		t.Fatalf("calls = %v, want %v", exec.calls, want)
	}
	if strings.Join(exec.updateArgs, " ") != "weight=70 city=成都" {
		t.Fatalf("update args = %v", exec.updateArgs)
	}

	joined := strings.Join(*out, "\n")
	for _, s := range []string{
		"Available commands: login, guest, whoami, exit",
		"Available commands: whoami, profile",
		"Unknown command: foobar",
		"Bye!",
		"hk> status > ",
	} {
		if !strings.Contains(joined, s) {
			t.Fatalf("output missing %q:\n%s", s, joined)
		}
	}
}

func TestRunREPL_UsageAndQuit(t *testing.T) {
	out := captureOutput(t)

	exec := &fakeExec{loggedIn: true}
	runREPL(context.Background(), exec, func() string { return "s" }, rdr("update\nguest\nquit\n"))

	if strings.Join(exec.calls, ",") != "guest" {
		t.Fatalf("unexpected calls: %v", exec.calls)
	}
	if !strings.Contains(strings.Join(*out, "\n"), "Usage: update field=value") {
		t.Fatalf("usage not printed: %v", *out)
	}
}

func TestRunREPL_StopsOnEOF(t *testing.T) {
	captureOutput(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, rdr("login"))

	if len(exec.calls) != 1 {
		t.Fatalf("unexpected calls: %v", exec.calls)
	}
}

func TestRunREPL_StopsOnCancelledContext(t *testing.T) {
	captureOutput(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	exec := &fakeExec{}
	runREPL(ctx, exec, func() string { return "" }, rdr("login\nguest\n"))

	if len(exec.calls) != 0 {
		t.Fatalf("unexpected calls: %v", exec.calls)
	}
}
