package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quocvuong92/cmdrouter/internal/display"
	"github.com/quocvuong92/cmdrouter/internal/settings"
)

// newGrantsCmd creates the grants subcommand. Changing grants is done with
// the grant, revoke, op and deop commands; this only inspects the store.
func (app *App) newGrantsCmd() *cobra.Command {
	grantsCmd := &cobra.Command{
		Use:   "grants",
		Short: "Inspect stored capability grants",
		Long: `Inspect the capability settings file.

Use the registered commands to change grants, for example:
  cmdrouter grant alice cmdrouter.say
  cmdrouter grant alice -cmdrouter.reload
  cmdrouter op alice

Examples:
  cmdrouter grants list
  cmdrouter grants list --global
  cmdrouter grants path`,
	}

	var globalOnly bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List operators, default rules and player rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.setup(); err != nil {
				display.ShowError(err.Error())
				return err
			}
			app.listGrants(globalOnly)
			return nil
		},
	}
	listCmd.Flags().BoolVar(&globalOnly, "global", false, "Only show the global settings file, without project rules or session grants")
	grantsCmd.AddCommand(listCmd)

	grantsCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show the settings file locations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.setup(); err != nil {
				display.ShowError(err.Error())
				return err
			}
			mgr := app.store.Manager()
			fmt.Fprintf(app.out, "Global:  %s\n", mgr.GetGlobalPath())
			if p := mgr.GetProjectPath(); p != "" {
				fmt.Fprintf(app.out, "Project: %s\n", p)
			}
			return nil
		},
	})

	return grantsCmd
}

// listGrants prints the effective grants, or only the global file's
func (app *App) listGrants(globalOnly bool) {
	mgr := app.store.Manager()

	var (
		ops      []string
		defaults settings.Rules
		players  []string
		rulesFor func(string) settings.Rules
	)
	if globalOnly {
		global := mgr.GetGlobal()
		ops = append([]string{}, global.Operators...)
		sort.Strings(ops)
		defaults = global.Defaults
		for p := range global.Players {
			players = append(players, p)
		}
		sort.Strings(players)
		rulesFor = func(p string) settings.Rules { return global.Players[p] }
	} else {
		ops = mgr.Operators()
		defaults = mgr.GetMerged().Defaults
		players = mgr.Players()
		rulesFor = mgr.PlayerRules
	}

	fmt.Fprintln(app.out, display.Header("Operators"))
	if len(ops) > 0 {
		fmt.Fprintln(app.out, strings.Join(ops, ", "))
	} else {
		fmt.Fprintln(app.out, "(none)")
	}
	fmt.Fprintln(app.out)

	fmt.Fprintln(app.out, display.Header("Rules"))
	tbl := display.NewTable(app.out, "Player", "Rule", "Capability")
	for _, c := range defaults.Allow {
		tbl.AddRow("*", "allow", c)
	}
	for _, c := range defaults.Deny {
		tbl.AddRow("*", "deny", c)
	}
	for _, p := range players {
		rules := rulesFor(p)
		for _, c := range rules.Allow {
			tbl.AddRow(p, "allow", c)
		}
		for _, c := range rules.Deny {
			tbl.AddRow(p, "deny", c)
		}
	}
	tbl.Print()
}
