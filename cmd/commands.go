package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quocvuong92/cmdrouter/internal/config"
	"github.com/quocvuong92/cmdrouter/internal/display"
)

// newCommandsCmd creates the commands subcommand
func (app *App) newCommandsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "commands",
		Short: "List registered commands",
		Long: `List every registered command with its shape, syntax and required
capabilities, in dispatch order.

Examples:
  cmdrouter commands`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.setup(); err != nil {
				display.ShowError(err.Error())
				return err
			}
			app.listCommands()
			return nil
		},
	}
}

func (app *App) listCommands() {
	tbl := display.NewTable(app.out, "Name", "Shape", "Syntax", "Capabilities", "Console")
	for _, d := range app.registry.All() {
		caps := strings.Join(d.Capabilities(), ", ")
		if caps == "" {
			caps = "-"
		}
		tbl.AddRow(d.Name(), d.Shape(), d.Syntax(), caps, d.ConsoleEligible())
	}
	tbl.Print()
}

// newConfigCmd creates the config subcommand
func (app *App) newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write a commented default config file",
		Long: `Write a commented default config file to the user config directory.

Examples:
  cmdrouter config init`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.CreateDefaultConfigFile()
			if err != nil {
				display.ShowError(err.Error())
				return err
			}
			fmt.Fprintf(app.out, "Created config file at %s\n", path)
			return nil
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.setup(); err != nil {
				display.ShowError(err.Error())
				return err
			}
			app.showConfig()
			return nil
		},
	})

	return configCmd
}

func (app *App) showConfig() {
	tbl := display.NewTable(app.out, "Key", "Value")
	tbl.AddRow("language", app.catalog.Language())
	tbl.AddRow("plugin_name", app.cfg.PluginName)
	tbl.AddRow("caller", app.cfg.Caller)
	tbl.AddRow("log_level", app.cfg.LogLevel)
	tbl.AddRow("log_format", app.cfg.LogFormat)
	tbl.AddRow("debug", app.cfg.Debug)
	tbl.AddRow("settings", app.store.Manager().GetGlobalPath())
	tbl.AddRow("locales", valueOrDash(app.cfg.LocaleDir))
	tbl.AddRow("history", valueOrDash(app.cfg.HistoryPath))
	tbl.Print()
}

func valueOrDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
