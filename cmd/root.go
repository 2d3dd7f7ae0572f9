package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quocvuong92/cmdrouter/internal/command"
	"github.com/quocvuong92/cmdrouter/internal/config"
	"github.com/quocvuong92/cmdrouter/internal/constants"
	"github.com/quocvuong92/cmdrouter/internal/display"
	"github.com/quocvuong92/cmdrouter/internal/executor"
	"github.com/quocvuong92/cmdrouter/internal/locale"
	"github.com/quocvuong92/cmdrouter/internal/logging"
	"github.com/quocvuong92/cmdrouter/internal/settings"
)

// App holds the application state
type App struct {
	cfg     *config.Config
	verbose bool

	out    io.Writer
	errOut io.Writer

	logger   *logging.Logger
	catalog  *locale.Catalog
	store    *settings.Store
	registry *command.Registry
	exec     *executor.Executor
	sink     *display.Sink
}

// NewApp creates a new App instance with default configuration
func NewApp() *App {
	return &App{
		cfg:    config.NewConfig(),
		out:    os.Stdout,
		errOut: os.Stderr,
	}
}

// caller is a named user of the host
type caller struct {
	name string
	kind command.CallerKind
}

func (c caller) Name() string             { return c.name }
func (c caller) Kind() command.CallerKind { return c.kind }

// consoleCaller is the operator channel; it is always elevated
var consoleCaller = caller{name: constants.DefaultCaller, kind: command.Console}

// callerFor maps the configured caller name onto a caller
func callerFor(cfg *config.Config) command.Caller {
	if cfg.Caller == "" || cfg.IsConsoleCaller() {
		return consoleCaller
	}
	return caller{name: cfg.Caller, kind: command.Interactive}
}

// Execute runs the root command
func Execute() {
	app := NewApp()
	if err := app.newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func (app *App) newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cmdrouter [command tokens...]",
		Short: "Dispatch typed commands through a pattern-matching command registry",
		Long: `cmdrouter resolves a typed command line against a registry of static,
variable and dynamic command patterns, checks the caller's capabilities and
runs exactly one handler.

Capabilities are stored per player in settings.json. The console is always
elevated; operators skip capability checks.

Examples:
  cmdrouter help
  cmdrouter --as alice whoami
  cmdrouter grant alice cmdrouter.say
  cmdrouter --as alice say hello everyone
  cmdrouter -i --as alice                 # Interactive mode
  cmdrouter --lang de kick                # Messages in German`,
		Args:          cobra.ArbitraryArgs,
		Version:       constants.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.run(cmd, args)
		},
	}
	// Tokens after the program name belong to the dispatcher, not cobra
	rootCmd.Flags().SetInterspersed(false)
	// "help" is a registered command; keep cobra's help off that name
	rootCmd.SetHelpCommand(&cobra.Command{Use: "cli-help", Short: "Help about the command line", Hidden: true,
		Run: func(cmd *cobra.Command, args []string) { _ = rootCmd.Help() }})

	rootCmd.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&app.cfg.ConfigPath, "config", "", "Config file (default: search ./.cmdrouter, ~/.config/cmdrouter)")
	rootCmd.PersistentFlags().StringVar(&app.cfg.Language, "lang", "", "Message language (en, de, es)")
	rootCmd.PersistentFlags().StringVar(&app.cfg.LogFormat, "log-format", "", "Log format: text or json")
	rootCmd.PersistentFlags().BoolVar(&app.cfg.Debug, "debug", false, "Trace every pattern comparison")
	rootCmd.PersistentFlags().StringVar(&app.cfg.SettingsPath, "settings", "", "Capability settings file")
	rootCmd.Flags().StringVar(&app.cfg.Caller, "as", "", "Run as this player (default: console)")
	rootCmd.Flags().BoolVarP(&app.cfg.Interactive, "interactive", "i", false, "Interactive command prompt")

	rootCmd.AddCommand(app.newCommandsCmd())
	rootCmd.AddCommand(app.newGrantsCmd())
	rootCmd.AddCommand(app.newConfigCmd())

	return rootCmd
}

// setup builds the runtime from configuration. It is safe to call more
// than once; later calls are no-ops.
func (app *App) setup() error {
	if app.exec != nil {
		return nil
	}

	if err := config.LoadDotEnv(); err != nil {
		display.ShowWarning(err.Error())
	}
	if app.verbose {
		app.cfg.LogLevel = "debug"
	}
	if err := app.cfg.Validate(); err != nil {
		return err
	}

	app.logger = logging.New(logging.Options{
		Level:  logging.ParseLevel(app.cfg.LogLevel),
		Format: logging.ParseFormat(app.cfg.LogFormat),
		Output: app.errOut,
	})

	app.catalog = locale.New(app.cfg.Language,
		locale.WithDir(app.cfg.LocaleDir),
		locale.WithLogger(app.logger),
	)
	app.catalog.Append(builtinMessages())

	mgr := settings.NewManager()
	if app.cfg.SettingsPath != "" {
		mgr.SetGlobalPath(app.cfg.SettingsPath)
	}
	if err := mgr.Load(); err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	app.store = settings.NewStore(mgr)

	app.sink = display.NewSink(app.cfg.PluginName, app.out, app.logger)

	app.registry = command.NewRegistry(
		command.WithLogger(app.logger),
		command.WithText(app.catalog),
		command.WithDebug(app.cfg.Debug),
	)
	registered := app.registry.RegisterStore(app.builtins()...)
	app.logger.Debug("registered built-in commands", logging.Fields{"count": registered})

	app.exec = executor.New(app.registry, app.store,
		executor.WithText(app.catalog),
		executor.WithSink(app.sink),
		executor.WithLogger(app.logger),
	)
	return nil
}

func (app *App) run(cmd *cobra.Command, args []string) error {
	if err := app.setup(); err != nil {
		display.ShowError(err.Error())
		return err
	}

	// Interactive mode
	if app.cfg.Interactive {
		app.runInteractive()
		return nil
	}

	// Require tokens if not interactive mode
	if len(args) == 0 {
		_ = cmd.Help()
		return fmt.Errorf("no command given")
	}

	outcome := app.dispatch(cmd.Context(), callerFor(app.cfg), args)
	if err := outcome.Err(); err != nil {
		return err
	}
	return nil
}

// dispatch runs one command line as caller
func (app *App) dispatch(ctx context.Context, c command.Caller, tokens []string) executor.Outcome {
	if ctx == nil {
		ctx = context.Background()
	}
	outcome := app.exec.Run(ctx, c, tokens)
	app.logger.Debug("dispatched", logging.Fields{
		"caller": c.Name(),
		"tokens": strings.Join(tokens, " "),
		"state":  outcome.State.String(),
	})
	return outcome
}
