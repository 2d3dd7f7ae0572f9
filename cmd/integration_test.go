package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/quocvuong92/cmdrouter/internal/command"
	"github.com/quocvuong92/cmdrouter/internal/config"
	"github.com/quocvuong92/cmdrouter/internal/executor"
)

// isolate points every config, data and working directory at a temp dir
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	oldWd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(oldWd) })
	t.Setenv("PWD", dir)
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, ".config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, ".local", "share"))
	for _, env := range []string{
		config.EnvLanguage, config.EnvPluginName, config.EnvLogLevel, config.EnvLogFormat,
		config.EnvDebug, config.EnvSettingsPath, config.EnvLocaleDir, config.EnvHistoryPath,
		config.EnvCaller,
	} {
		t.Setenv(env, "")
		os.Unsetenv(env)
	}
	return dir
}

// newTestApp builds a wired App writing to buffers
func newTestApp(t *testing.T, mutate ...func(*config.Config)) (*App, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	dir := isolate(t)

	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	app := NewApp()
	app.out = out
	app.errOut = errOut
	app.cfg.SettingsPath = filepath.Join(dir, "settings.json")
	app.cfg.HistoryPath = filepath.Join(dir, "history.json")
	app.cfg.LogFormat = "json"
	for _, m := range mutate {
		m(app.cfg)
	}
	if err := app.setup(); err != nil {
		t.Fatalf("setup() error = %v", err)
	}
	return app, out, errOut
}

func player(name string) command.Caller {
	return caller{name: name, kind: command.Interactive}
}

func run(app *App, c command.Caller, line string) executor.Outcome {
	return app.dispatch(context.Background(), c, strings.Fields(line))
}

func TestCallerFor(t *testing.T) {
	tests := []struct {
		name     string
		wantKind command.CallerKind
	}{
		{"", command.Console},
		{"console", command.Console},
		{"CONSOLE", command.Console},
		{"alice", command.Interactive},
	}
	for _, tt := range tests {
		c := callerFor(&config.Config{Caller: tt.name})
		if c.Kind() != tt.wantKind {
			t.Errorf("callerFor(%q).Kind() = %v, want %v", tt.name, c.Kind(), tt.wantKind)
		}
	}
	if callerFor(&config.Config{Caller: "alice"}).Name() != "alice" {
		t.Error("player name should be kept")
	}
}

func TestBuiltins_Register(t *testing.T) {
	app, _, _ := newTestApp(t)

	want := []string{"help-page", "help", "whoami", "reload", "version", "perms", "grant", "revoke", "op", "deop", "say"}
	all := app.registry.All()
	if len(all) != len(want) {
		t.Fatalf("registered %d commands, want %d", len(all), len(want))
	}
	for i, d := range all {
		if d.Name() != want[i] {
			t.Errorf("command %d = %q, want %q", i, d.Name(), want[i])
		}
	}
}

func TestDispatch_ConsoleVersion(t *testing.T) {
	app, _, errOut := newTestApp(t)

	outcome := run(app, consoleCaller, "version")
	if outcome.State != executor.Executed || outcome.HandlerErr != nil {
		t.Fatalf("outcome = %+v", outcome)
	}
	if !strings.Contains(errOut.String(), "cmdrouter version") {
		t.Errorf("console output should be logged, got %q", errOut.String())
	}
}

func TestDispatch_Outcomes(t *testing.T) {
	tests := []struct {
		name      string
		caller    command.Caller
		line      string
		wantState executor.State
		wantOut   string
	}{
		{"unknown command", player("alice"), "frobnicate", executor.UnknownCommand, "An invalid command was specified."},
		{"missing capability", player("alice"), "say hello", executor.PermissionDenied, "You do not have permission"},
		{"console rejected", consoleCaller, "whoami", executor.ConsoleNotSupported, ""},
		{"static extra token", player("alice"), "version now", executor.ArgumentCount, "Usage: version"},
		{"short help page", player("alice"), "help page", executor.ArgumentCount, "Usage: help page <n>"},
		{"short say", player("alice"), "say", executor.ArgumentCount, "Usage: say <message...>"},
		{"whoami as player", player("alice"), "whoami", executor.Executed, "You are alice (interactive)."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, out, _ := newTestApp(t)

			outcome := run(app, tt.caller, tt.line)
			if outcome.State != tt.wantState {
				t.Errorf("State = %v, want %v", outcome.State, tt.wantState)
			}
			if tt.wantOut != "" && !strings.Contains(out.String(), tt.wantOut) {
				t.Errorf("output %q should contain %q", out.String(), tt.wantOut)
			}
		})
	}
}

func TestDispatch_GrantThenSay(t *testing.T) {
	app, out, _ := newTestApp(t)

	if o := run(app, consoleCaller, "grant alice cmdrouter.say"); o.State != executor.Executed || o.HandlerErr != nil {
		t.Fatalf("grant outcome = %+v", o)
	}

	outcome := app.dispatch(context.Background(), player("alice"), []string{"say", "hello", "world"})
	if outcome.State != executor.Executed {
		t.Fatalf("say outcome = %+v", outcome)
	}
	if !strings.Contains(out.String(), "<alice> hello world") {
		t.Errorf("output = %q", out.String())
	}
	if got := outcome.Invocation.Args; len(got) != 2 || got[0] != "hello" {
		t.Errorf("Args = %v, root token should be omitted", got)
	}

	// One-shot grants are written to disk
	data, err := os.ReadFile(app.cfg.SettingsPath)
	if err != nil {
		t.Fatalf("settings not saved: %v", err)
	}
	if !strings.Contains(string(data), "cmdrouter.say") {
		t.Errorf("settings file = %s", data)
	}
}

func TestDispatch_DenyWins(t *testing.T) {
	app, _, _ := newTestApp(t)

	run(app, consoleCaller, "grant alice cmdrouter.*")
	run(app, consoleCaller, "grant alice -cmdrouter.say")

	if o := run(app, player("alice"), "say hi"); o.State != executor.PermissionDenied {
		t.Errorf("say State = %v, deny should win", o.State)
	}
	if o := run(app, player("alice"), "perms bob"); o.State != executor.Executed {
		t.Errorf("perms State = %v, wildcard should allow", o.State)
	}
}

func TestDispatch_OperatorIsElevated(t *testing.T) {
	app, _, _ := newTestApp(t)

	if o := run(app, player("alice"), "reload"); o.State != executor.PermissionDenied {
		t.Fatalf("reload before op = %v", o.State)
	}
	run(app, consoleCaller, "op alice")
	if o := run(app, player("alice"), "reload"); o.State != executor.Executed || o.HandlerErr != nil {
		t.Errorf("reload after op = %+v", o)
	}
	run(app, consoleCaller, "deop alice")
	if o := run(app, player("alice"), "reload"); o.State != executor.PermissionDenied {
		t.Errorf("reload after deop = %v", o.State)
	}
}

func TestDispatch_RevokeAndPerms(t *testing.T) {
	app, out, _ := newTestApp(t)

	run(app, consoleCaller, "grant alice cmdrouter.say")
	run(app, consoleCaller, "op bob")

	out.Reset()
	if o := run(app, player("bob"), "perms alice"); o.State != executor.Executed {
		t.Fatalf("perms outcome = %+v", o)
	}
	if !strings.Contains(out.String(), "cmdrouter.say") {
		t.Errorf("perms output = %q", out.String())
	}

	out.Reset()
	run(app, player("bob"), "revoke alice cmdrouter.say")
	if !strings.Contains(out.String(), "Revoked cmdrouter.say from alice.") {
		t.Errorf("revoke output = %q", out.String())
	}

	out.Reset()
	run(app, player("bob"), "revoke alice cmdrouter.say")
	if !strings.Contains(out.String(), "alice has no rule for cmdrouter.say.") {
		t.Errorf("second revoke output = %q", out.String())
	}

	out.Reset()
	run(app, player("bob"), "perms alice")
	if !strings.Contains(out.String(), "alice has no rules.") {
		t.Errorf("perms after revoke = %q", out.String())
	}
}

func TestHelp_ListsRunnableCommands(t *testing.T) {
	app, out, _ := newTestApp(t)

	if o := run(app, player("alice"), "help"); o.State != executor.Executed || o.HandlerErr != nil {
		t.Fatalf("help outcome = %+v", o)
	}
	text := out.String()
	if !strings.Contains(text, "`whoami`") || !strings.Contains(text, "`version`") {
		t.Errorf("help should list commands without capabilities:\n%s", text)
	}
	if strings.Contains(text, "`grant") {
		t.Errorf("help should hide commands alice cannot run:\n%s", text)
	}
}

func TestHelp_Pages(t *testing.T) {
	app, out, _ := newTestApp(t)

	if o := run(app, consoleCaller, "help page 2"); o.State != executor.Executed || o.HandlerErr != nil {
		t.Fatalf("help page 2 outcome = %+v", o)
	}
	if !strings.Contains(out.String(), "Page 2 of 2") {
		t.Errorf("output = %q", out.String())
	}

	tests := []string{"help page 9", "help page zero"}
	for _, line := range tests {
		o := run(app, player("alice"), line)
		if o.State != executor.Executed || o.HandlerErr == nil {
			t.Errorf("%q should run and fail in the handler, got %+v", line, o)
		}
	}
}

func TestLocalizedMessages(t *testing.T) {
	app, out, _ := newTestApp(t, func(c *config.Config) { c.Language = "de" })

	run(app, player("alice"), "frobnicate")
	if !strings.Contains(out.String(), "Es wurde ein ungültiger Befehl angegeben.") {
		t.Errorf("output = %q", out.String())
	}

	out.Reset()
	run(app, player("alice"), "whoami")
	if !strings.Contains(out.String(), "Du bist alice") {
		t.Errorf("built-in messages should be translated, got %q", out.String())
	}
}

func TestPluginNamePrefix(t *testing.T) {
	app, out, _ := newTestApp(t, func(c *config.Config) { c.PluginName = "Guard" })

	run(app, player("alice"), "frobnicate")
	if !strings.Contains(out.String(), "[Guard]") {
		t.Errorf("player messages should carry the plugin prefix, got %q", out.String())
	}
}

func TestListCommands(t *testing.T) {
	app, out, _ := newTestApp(t)

	app.listCommands()
	text := out.String()
	for _, want := range []string{"help-page", "dynamic", "variable", "static", "cmdrouter.perms.grant"} {
		if !strings.Contains(text, want) {
			t.Errorf("commands table should contain %q:\n%s", want, text)
		}
	}
}

func TestListGrants(t *testing.T) {
	app, out, _ := newTestApp(t)
	run(app, consoleCaller, "op carol")
	run(app, consoleCaller, "grant alice -cmdrouter.say")

	app.store.Manager().AddSessionGrant("dave", "cmdrouter.say")

	out.Reset()
	app.listGrants(false)
	text := out.String()
	if !strings.Contains(text, "carol") || !strings.Contains(text, "deny") || !strings.Contains(text, "dave") {
		t.Errorf("grants output:\n%s", text)
	}

	// The global file holds what was saved, not session grants
	out.Reset()
	app.listGrants(true)
	text = out.String()
	if !strings.Contains(text, "carol") || !strings.Contains(text, "alice") {
		t.Errorf("global grants output:\n%s", text)
	}
	if strings.Contains(text, "dave") {
		t.Errorf("session grants should not be listed as global:\n%s", text)
	}
}

func TestWhoami_OperatorLineIsUnprefixed(t *testing.T) {
	app, out, _ := newTestApp(t, func(c *config.Config) { c.PluginName = "Guard" })
	run(app, consoleCaller, "op alice")

	out.Reset()
	if o := run(app, player("alice"), "whoami"); o.State != executor.Executed {
		t.Fatalf("whoami outcome = %+v", o)
	}
	var found bool
	for _, line := range strings.Split(out.String(), "\n") {
		if !strings.Contains(line, "You are an operator.") {
			continue
		}
		found = true
		if strings.Contains(line, "[Guard]") {
			t.Errorf("follow-up line should not carry the prefix: %q", line)
		}
	}
	if !found {
		t.Errorf("whoami output = %q", out.String())
	}
	if !strings.Contains(out.String(), "[Guard]") {
		t.Error("first whoami line should carry the prefix")
	}
}

func TestRootCommand(t *testing.T) {
	dir := isolate(t)

	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{"version as console", []string{"version"}, false},
		{"unknown command", []string{"frobnicate"}, true},
		{"player-only from console", []string{"whoami"}, true},
		{"as player", []string{"--as", "alice", "whoami"}, false},
		{"dispatcher help", []string{"help"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := NewApp()
			app.out = &bytes.Buffer{}
			app.errOut = &bytes.Buffer{}
			root := app.newRootCmd()
			root.SetOut(app.out)
			root.SetErr(app.errOut)
			root.SetArgs(append([]string{"--settings", filepath.Join(dir, tt.name+".json")}, tt.args...))

			err := root.Execute()
			if (err != nil) != tt.wantErr {
				t.Errorf("Execute() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestVariableCommandsRequireArguments(t *testing.T) {
	app, _, errOut := newTestApp(t)

	for _, line := range []string{"grant alice", "perms", "op", "revoke"} {
		o := run(app, consoleCaller, line)
		if o.State != executor.Executed || o.HandlerErr == nil {
			t.Errorf("%q should match and fail in the handler, got %+v", line, o)
		}
	}
	if !strings.Contains(errOut.String(), "Usage: grant") {
		t.Errorf("usage should be reported to the console, got %q", errOut.String())
	}
}
