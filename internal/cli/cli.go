package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/amoebajs/builder-sub000/internal/app"
)

// EnvPrefix prefixes every environment variable the CLI reads, e.g.
// AMOEBA_LOG_LEVEL.
const EnvPrefix = "AMOEBA"

// ConfigName is the base name of the optional configuration file looked up
// in the working directory (amoeba.yaml, amoeba.toml, amoeba.json).
const ConfigName = "amoeba"

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	if e.Message == "" && e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error, if any.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// Action is the subcommand selected on the command line.
type Action string

const (
	ActionBuild     Action = "build"
	ActionWatch     Action = "watch"
	ActionTemplates Action = "templates"
)

// Invocation is a parsed command line.
type Invocation struct {
	Action Action
	Config *app.Config
}

// Parse processes command-line arguments. It returns the selected invocation,
// a boolean indicating if the program should exit cleanly (help was shown),
// or an ExitError with code 2 for usage errors.
func Parse(args []string, output io.Writer) (*Invocation, bool, error) {
	slog.Debug("CLI parser started.")

	var inv *Invocation
	v := viper.New()
	root := newRootCommand(v, func(a Action, cfg *app.Config) {
		inv = &Invocation{Action: a, Config: cfg}
	})
	if args == nil {
		args = []string{}
	}
	root.SetArgs(args)
	root.SetOut(output)
	root.SetErr(output)

	if err := root.Execute(); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return nil, false, exitErr
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error(), Err: err}
	}
	if inv == nil {
		slog.Debug("No command selected, exiting.")
		return nil, true, nil
	}
	slog.Debug("CLI parser finished successfully.", "action", inv.Action)
	return inv, false, nil
}

func newRootCommand(v *viper.Viper, selected func(Action, *app.Config)) *cobra.Command {
	root := &cobra.Command{
		Use:   "amoeba",
		Short: "Compile declarative page trees into TSX documents",
		Long: TitleStyle.Render("amoeba") + SubtitleStyle.Render(" - compile declarative page trees into TSX documents") + `

Pages are declared in .hcl files as trees of components, directives and
compositions. Each page compiles into one .tsx document.

` + SubtitleStyle.Render("Examples:") + `
  amoeba build ./pages                 Print every compiled page
  amoeba build ./pages --out ./gen     Write one .tsx file per page
  amoeba watch ./pages --out ./gen     Rebuild on every change
  amoeba templates ./pages             List the available templates`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "config file (default is ./amoeba.{yaml,toml,json})")
	flags.String("log-level", "info", "log level: 'debug', 'info', 'warn' or 'error'")
	flags.String("log-format", "text", "log format: 'text', 'json' or 'pretty'")
	flags.String("provider", app.DefaultProvider, "output provider: 'react' or 'plain'")
	flags.String("compositions", "", "directory of declared composition .hcl files")
	flags.StringP("out", "o", "", "output directory; documents are printed when empty")
	flags.String("publish-url", "", "server receiving every document in watch mode")
	flags.String("publish-transport", "socketio", "publish transport: 'socketio' or 'webhook'")
	flags.String("publish-event", "", "event name for published documents")
	flags.String("publish-namespace", "/", "socket.io namespace for published documents")
	flags.Duration("debounce", 0, "quiet period before a rebuild in watch mode")

	root.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		return initConfig(v, cmd.Flags())
	}

	root.AddCommand(
		newPathCommand(v, ActionBuild, "Compile every page once", selected),
		newPathCommand(v, ActionWatch, "Compile every page and recompile on change", selected),
		newPathCommand(v, ActionTemplates, "List the registered templates and providers", selected),
	)
	return root
}

func newPathCommand(v *viper.Viper, action Action, short string, selected func(Action, *app.Config)) *cobra.Command {
	return &cobra.Command{
		Use:   string(action) + " [PAGES_PATH]",
		Short: short,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if len(args) == 1 {
				v.Set("pages", args[0])
			}
			if v.GetString("pages") == "" && action == ActionTemplates {
				v.Set("pages", ".")
			}
			cfg, err := configFromViper(v)
			if err != nil {
				return &ExitError{Code: 2, Message: err.Error(), Err: err}
			}
			selected(action, cfg)
			return nil
		},
	}
}

// initConfig layers flags over environment variables over the config file
// over flag defaults.
func initConfig(v *viper.Viper, flags *pflag.FlagSet) error {
	if err := v.BindPFlags(flags); err != nil {
		return err
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path := v.GetString("config"); path != "" {
		if _, err := os.Stat(path); err != nil {
			return &ExitError{Code: 2, Message: fmt.Sprintf("failed to read config file: %v", err), Err: err}
		}
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(ConfigName)
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return &ExitError{Code: 2, Message: fmt.Sprintf("failed to read config file: %v", err), Err: err}
		}
		slog.Debug("No config file found, using flags and environment.")
		return nil
	}
	slog.Debug("Config file loaded.", "path", v.ConfigFileUsed())
	return nil
}

func configFromViper(v *viper.Viper) (*app.Config, error) {
	if v.GetString("pages") == "" {
		return nil, errors.New("a pages path is required: pass PAGES_PATH or set 'pages' in the config file")
	}
	return app.NewConfig(app.Config{
		PagesPath:        v.GetString("pages"),
		CompositionsPath: v.GetString("compositions"),
		OutputDir:        v.GetString("out"),
		Provider:         strings.ToLower(v.GetString("provider")),
		LogFormat:        strings.ToLower(v.GetString("log-format")),
		LogLevel:         strings.ToLower(v.GetString("log-level")),
		PublishURL:       v.GetString("publish-url"),
		PublishTransport: strings.ToLower(v.GetString("publish-transport")),
		PublishEvent:     v.GetString("publish-event"),
		PublishNamespace: v.GetString("publish-namespace"),
		Debounce:         v.GetDuration("debounce"),
	})
}
