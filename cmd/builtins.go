package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/quocvuong92/cmdrouter/internal/command"
	"github.com/quocvuong92/cmdrouter/internal/constants"
	"github.com/quocvuong92/cmdrouter/internal/display"
	"github.com/quocvuong92/cmdrouter/internal/executor"
	"github.com/quocvuong92/cmdrouter/internal/locale"
	"github.com/quocvuong92/cmdrouter/internal/settings"
)

// Message keys for the built-in commands
const (
	msgWhoami         = "builtin.whoami"
	msgWhoamiOperator = "builtin.whoami_operator"
	msgVersion        = "builtin.version"
	msgReloadDone     = "builtin.reload_done"
	msgReloadFailed   = "builtin.reload_failed"
	msgGrantSession   = "builtin.grant_session"
	msgGrantSaved     = "builtin.grant_saved"
	msgDenySaved      = "builtin.deny_saved"
	msgRevokeDone     = "builtin.revoke_done"
	msgRevokeNone     = "builtin.revoke_none"
	msgOpDone         = "builtin.op_done"
	msgOpAlready      = "builtin.op_already"
	msgDeopDone       = "builtin.deop_done"
	msgDeopNone       = "builtin.deop_none"
	msgPermsNone      = "builtin.perms_none"
	msgPermsOperator  = "builtin.perms_operator"
	msgHelpPage       = "builtin.help_page"
	msgSay            = "builtin.say"
)

// builtinMessages are the English defaults appended to the catalog
func builtinMessages() map[string]string {
	return map[string]string{
		msgWhoami:         "You are %s (%s).",
		msgWhoamiOperator: "You are an operator.",
		msgVersion:        "%s version %s",
		msgReloadDone:     "Settings reloaded.",
		msgReloadFailed:   "Settings could not be reloaded: %v",
		msgGrantSession:   "Granted %s to %s for this session.",
		msgGrantSaved:     "Granted %s to %s.",
		msgDenySaved:      "Denied %s to %s.",
		msgRevokeDone:     "Revoked %s from %s.",
		msgRevokeNone:     "%s has no rule for %s.",
		msgOpDone:         "%s is now an operator.",
		msgOpAlready:      "%s is already an operator.",
		msgDeopDone:       "%s is no longer an operator.",
		msgDeopNone:       "%s is not an operator.",
		msgPermsNone:      "%s has no rules.",
		msgPermsOperator:  "%s is an operator.",
		msgHelpPage:       "Page %d of %d",
		msgSay:            "<%s> %s",
	}
}

// builtins returns the host's own commands in registration order. "help
// page <n>" comes before "help" so a short "help page" reports its usage.
func (app *App) builtins() []*command.Definition {
	return []*command.Definition{
		command.MustNew("help-page", command.ParsePattern("help page <n>"), command.Dynamic,
			command.WithHandler(app.helpPage),
			command.WithHelp("Show one page of the command list")),
		command.MustNew("help", command.ParsePattern("help"), command.Static,
			command.WithHandler(app.help),
			command.WithHelp("List the commands you can run")),
		command.MustNew("whoami", command.ParsePattern("whoami"), command.Static,
			command.WithHandler(app.whoami),
			command.WithConsole(false),
			command.WithHelp("Show your name and capability rules")),
		command.MustNew("reload", command.ParsePattern("reload"), command.Static,
			command.WithHandler(app.reload),
			command.WithCapabilities(constants.CapReload),
			command.WithHelp("Re-read capability settings from disk")),
		command.MustNew("version", command.ParsePattern("version"), command.Static,
			command.WithHandler(app.version),
			command.WithHelp("Show the version")),
		command.MustNew("perms", command.ParsePattern("perms <player>"), command.Variable,
			command.WithHandler(app.perms),
			command.WithCapabilities(constants.CapPermsView),
			command.WithHelp("Show a player's capability rules")),
		command.MustNew("grant", command.ParsePattern("grant <player> <capability>"), command.Variable,
			command.WithHandler(app.grant),
			command.WithCapabilities(constants.CapPermsGrant),
			command.WithSyntax("grant <player> <capability|-capability> [persist]"),
			command.WithHelp("Allow or deny a capability")),
		command.MustNew("revoke", command.ParsePattern("revoke <player> <capability>"), command.Variable,
			command.WithHandler(app.revoke),
			command.WithCapabilities(constants.CapPermsRevoke),
			command.WithHelp("Remove a capability rule")),
		command.MustNew("op", command.ParsePattern("op <player>"), command.Variable,
			command.WithHandler(app.op),
			command.WithCapabilities(constants.CapOp),
			command.WithHelp("Make a player an operator")),
		command.MustNew("deop", command.ParsePattern("deop <player>"), command.Variable,
			command.WithHandler(app.deop),
			command.WithCapabilities(constants.CapOp),
			command.WithHelp("Remove operator status")),
		command.MustNew("say", command.ParsePattern("say <message>"), command.Dynamic,
			command.WithFactory(app.newSayHandler),
			command.WithArity(2),
			command.WithCapabilities(constants.CapSay),
			command.WithSyntax("say <message...>"),
			command.WithHelp("Broadcast a message")),
	}
}

func (app *App) text(key string, args ...interface{}) string {
	if len(args) == 0 {
		return app.catalog.Text(key)
	}
	return app.catalog.Textf(key, args...)
}

// errIllegalArgument carries the localized illegal-argument message
func (app *App) errIllegalArgument(detail string) error {
	msg := app.catalog.Text(locale.KeyIllegalArgs)
	if detail != "" {
		msg += " (" + detail + ")"
	}
	return errors.New(msg)
}

// requireArgs rejects a variable-shape call that is missing arguments the
// handler needs. Matching accepted it; the handler answers with its usage.
func (app *App) requireArgs(inv *command.Invocation, n int) error {
	if len(inv.Args) >= n {
		return nil
	}
	return errors.New(app.catalog.Text(locale.KeyUsage) + inv.Definition().Syntax())
}

// runnable returns the commands c passes the capability and console checks for
func (app *App) runnable(c command.Caller) []*command.Definition {
	checker := executor.NewPermissionChecker(app.store)
	var out []*command.Definition
	for _, d := range app.registry.All() {
		if res, _ := checker.Check(c, d); res == executor.Permitted {
			out = append(out, d)
		}
	}
	return out
}

// helpMarkdown renders one page of the command list as a markdown table
func (app *App) helpMarkdown(defs []*command.Definition, page, pages int) string {
	var b strings.Builder
	b.WriteString("# Commands\n\n")
	b.WriteString("| Command | Description |\n|---|---|\n")
	for _, d := range defs {
		fmt.Fprintf(&b, "| `%s` | %s |\n", d.Syntax(), d.Help())
	}
	if pages > 1 {
		b.WriteString("\n_" + app.text(msgHelpPage, page, pages) + "_\n")
	}
	return b.String()
}

func (app *App) showHelpPage(c command.Caller, page int) error {
	defs := app.runnable(c)
	size := constants.DefaultHelpPageSize
	pages := (len(defs) + size - 1) / size
	if pages == 0 {
		pages = 1
	}
	if page < 1 || page > pages {
		return app.errIllegalArgument(fmt.Sprintf("1-%d", pages))
	}

	start := (page - 1) * size
	end := start + size
	if end > len(defs) {
		end = len(defs)
	}
	fmt.Fprint(app.sink.Writer(), display.RenderMarkdown(app.helpMarkdown(defs[start:end], page, pages)))
	return nil
}

func (app *App) help(ctx context.Context, inv *command.Invocation) error {
	return app.showHelpPage(inv.Caller, 1)
}

func (app *App) helpPage(ctx context.Context, inv *command.Invocation) error {
	// Args omits the root, so the page number follows "page"
	n, err := strconv.Atoi(inv.Arg(1))
	if err != nil {
		return app.errIllegalArgument(inv.Arg(1))
	}
	return app.showHelpPage(inv.Caller, n)
}

func (app *App) whoami(ctx context.Context, inv *command.Invocation) error {
	c := inv.Caller
	app.sink.Sendf(c, app.catalog.Text(msgWhoami), c.Name(), c.Kind())

	operator, _ := app.store.Describe(c.Name())
	if operator {
		// whoami never runs for the console, so this is always a terminal line
		app.sink.SendPlayerPlain(c, app.text(msgWhoamiOperator))
	}
	app.writeRules(c.Name(), app.store.Manager().EffectiveRules(c.Name()))
	return nil
}

func (app *App) version(ctx context.Context, inv *command.Invocation) error {
	app.sink.Sendf(inv.Caller, app.catalog.Text(msgVersion), constants.AppName, constants.Version)
	return nil
}

func (app *App) reload(ctx context.Context, inv *command.Invocation) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultReloadTimeout)
	defer cancel()

	s := display.NewSpinner("Reloading settings...")
	s.Start()
	done := make(chan error, 1)
	go func() { done <- app.store.Reload() }()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}
	s.Stop()

	if err != nil {
		return errors.New(app.text(msgReloadFailed, err))
	}
	app.sink.Send(inv.Caller, app.text(msgReloadDone))
	return nil
}

func (app *App) perms(ctx context.Context, inv *command.Invocation) error {
	if err := app.requireArgs(inv, 1); err != nil {
		return err
	}
	player := inv.Arg(0)
	operator, rules := app.store.Describe(player)
	if operator {
		app.sink.Sendf(inv.Caller, app.catalog.Text(msgPermsOperator), player)
	}
	if len(rules.Allow) == 0 && len(rules.Deny) == 0 {
		app.sink.Sendf(inv.Caller, app.catalog.Text(msgPermsNone), player)
		return nil
	}
	app.writeRules(player, rules)
	return nil
}

func (app *App) grant(ctx context.Context, inv *command.Invocation) error {
	if err := app.requireArgs(inv, 2); err != nil {
		return err
	}
	player, capability := inv.Arg(0), inv.Arg(1)
	// One-shot runs have no session to hold a grant, so they always persist
	persist := !app.cfg.Interactive || strings.EqualFold(inv.Arg(2), "persist")

	rule, err := app.store.Grant(player, capability, persist)
	if err != nil {
		return err
	}
	switch {
	case rule.Deny:
		app.sink.Sendf(inv.Caller, app.catalog.Text(msgDenySaved), rule.Capability, player)
	case persist:
		app.sink.Sendf(inv.Caller, app.catalog.Text(msgGrantSaved), rule.Capability, player)
	default:
		app.sink.Sendf(inv.Caller, app.catalog.Text(msgGrantSession), rule.Capability, player)
	}
	return nil
}

func (app *App) revoke(ctx context.Context, inv *command.Invocation) error {
	if err := app.requireArgs(inv, 2); err != nil {
		return err
	}
	player, capability := inv.Arg(0), inv.Arg(1)
	removed, err := app.store.Revoke(player, capability)
	if err != nil {
		return err
	}
	if !removed {
		app.sink.Sendf(inv.Caller, app.catalog.Text(msgRevokeNone), player, capability)
		return nil
	}
	app.sink.Sendf(inv.Caller, app.catalog.Text(msgRevokeDone), capability, player)
	return nil
}

func (app *App) op(ctx context.Context, inv *command.Invocation) error {
	if err := app.requireArgs(inv, 1); err != nil {
		return err
	}
	player := inv.Arg(0)
	added, err := app.store.Op(player)
	if err != nil {
		return err
	}
	if !added {
		app.sink.Sendf(inv.Caller, app.catalog.Text(msgOpAlready), player)
		return nil
	}
	app.sink.Sendf(inv.Caller, app.catalog.Text(msgOpDone), player)
	return nil
}

func (app *App) deop(ctx context.Context, inv *command.Invocation) error {
	if err := app.requireArgs(inv, 1); err != nil {
		return err
	}
	player := inv.Arg(0)
	removed, err := app.store.Deop(player)
	if err != nil {
		return err
	}
	if !removed {
		app.sink.Sendf(inv.Caller, app.catalog.Text(msgDeopNone), player)
		return nil
	}
	app.sink.Sendf(inv.Caller, app.catalog.Text(msgDeopDone), player)
	return nil
}

// sayHandler holds the message being built for one invocation
type sayHandler struct {
	app   *App
	words []string
}

func (app *App) newSayHandler() command.Handler {
	return &sayHandler{app: app}
}

func (h *sayHandler) Execute(ctx context.Context, inv *command.Invocation) error {
	h.words = append(h.words, inv.Args...)
	msg := h.app.text(msgSay, inv.Caller.Name(), strings.Join(h.words, " "))
	h.app.sink.SendPlayer(inv.Caller, msg)
	return nil
}

// writeRules prints a player's rules as a table
func (app *App) writeRules(player string, rules settings.Rules) {
	tbl := display.NewTable(app.sink.Writer(), "Player", "Rule", "Capability")
	for _, c := range rules.Allow {
		tbl.AddRow(player, "allow", c)
	}
	for _, c := range rules.Deny {
		tbl.AddRow(player, "deny", c)
	}
	tbl.Print()
}
