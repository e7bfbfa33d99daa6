// -- cmd/root.go --
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xkilldash9x/igcomment/internal/browser"
	"github.com/xkilldash9x/igcomment/internal/config"
	"github.com/xkilldash9x/igcomment/internal/instagram"
	"github.com/xkilldash9x/igcomment/internal/observability"
)

// Process exit codes.
const (
	ExitOK           = 0
	ExitConfigError  = 1
	ExitTimeout      = 2
	ExitFailure      = 3
	ExitLaunchFailed = 4
)

// SuccessMessage is printed on stdout once the comment has been submitted.
const SuccessMessage = "Comment posted successfully!"

// sessionLauncher starts the browser for a run.
type sessionLauncher interface {
	Launch(ctx context.Context, requested browser.LaunchSpec) (*browser.Session, error)
}

// newLauncher is swapped out in tests.
var newLauncher = func(cfg config.BrowserConfig, logger *zap.Logger, out io.Writer) sessionLauncher {
	return browser.NewLauncher(cfg, logger, out)
}

// exitError carries the process exit code and the stderr prefix for err.
type exitError struct {
	code   int
	prefix string
	err    error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func configError(err error) error {
	return &exitError{code: ExitConfigError, prefix: "Error", err: err}
}

// rootOptions holds the flag values and loaded settings of one command instance.
type rootOptions struct {
	cfgFile    string
	logLevel   string
	reportPath string
	chromePath string
	stealth    bool

	v   *viper.Viper
	cfg config.Interface
}

// NewRootCommand builds a fresh root command with its own viper instance.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{v: viper.New()}

	cmd := &cobra.Command{
		Use:   "igcomment [env-file]",
		Short: "Post a comment on the latest post of an Instagram profile.",
		Long: `igcomment reads Instagram credentials, a comment and a profile URL from an
environment file (default ./.env), logs in with a controlled Chrome browser,
opens the first post on the profile and submits the comment.`,
		Version:       Version,
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// This function runs before the command, setting up config and logging.
			if err := opts.initialize(cmd); err != nil {
				return configError(err)
			}
			observability.GetLogger().Debug("Starting igcomment", zap.String("version", Version))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			envPath := config.DefaultEnvFile
			if len(args) == 1 {
				envPath = args[0]
			}
			return opts.run(cmd.Context(), envPath, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.cfgFile, "config", "c", "", "settings file (default is ./igcomment.yaml)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override logger.level (debug, info, warn, error)")
	cmd.Flags().StringVar(&opts.reportPath, "report", "", "write a JSON run report to this path")
	cmd.Flags().StringVar(&opts.chromePath, "chrome-path", "", "Chrome executable to launch (overrides browser.exec_path)")
	cmd.Flags().BoolVar(&opts.stealth, "stealth", false, "mask automation fingerprints (overrides browser.stealth)")
	cmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
	return cmd
}

// initialize reads settings, applies flag overrides and starts the logger.
func (o *rootOptions) initialize(cmd *cobra.Command) error {
	config.SetDefaults(o.v)
	if err := initializeConfig(o.v, o.cfgFile); err != nil {
		return err
	}

	cfg, err := config.NewConfigFromViper(o.v)
	if err != nil {
		return err
	}
	if o.logLevel != "" {
		cfg.SetLoggerLevel(o.logLevel)
	}
	if o.chromePath != "" {
		cfg.SetBrowserExecPath(o.chromePath)
	}
	if cmd.Flags().Changed("stealth") {
		cfg.SetBrowserStealth(o.stealth)
	}
	o.cfg = cfg

	observability.InitializeLogger(cfg.Logger())
	return nil
}

// initializeConfig reads in the settings file and IGCOMMENT_ environment variables.
func initializeConfig(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("igcomment")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("IGCOMMENT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// No settings file; defaults and env vars apply.
	}
	return nil
}

// run performs one comment run: account settings, browser launch, automation.
func (o *rootOptions) run(ctx context.Context, envPath string, stdout, stderr io.Writer) error {
	// Every configuration failure happens before the browser starts.
	acct, err := config.LoadAccount(envPath)
	if err != nil {
		return configError(err)
	}

	logger := observability.GetLogger()
	launcher := newLauncher(o.cfg.Browser(), logger, stderr)
	session, err := launcher.Launch(ctx, browser.LaunchSpec{Headless: acct.Headless, UserDataDir: acct.UserDataDir})
	if err != nil {
		if errors.Is(err, browser.ErrLaunchFailed) {
			return &exitError{code: ExitLaunchFailed, prefix: "Error", err: err}
		}
		return &exitError{code: ExitFailure, prefix: "Unexpected error", err: err}
	}
	defer session.Close()

	commenter := instagram.NewCommenter(session.Driver(), o.cfg.Automation(), logger)
	report, runErr := commenter.Run(session.Context(), acct)

	if o.reportPath != "" && report != nil {
		if err := report.WriteReport(o.reportPath); err != nil {
			logger.Warn("Could not write run report", zap.Error(err))
		} else {
			logger.Info("Run report written", zap.String("path", o.reportPath))
		}
	}

	if runErr != nil {
		if code := instagram.ExitCode(runErr); code == ExitTimeout {
			return &exitError{code: code, prefix: "Automation timed out", err: runErr}
		}
		return &exitError{code: ExitFailure, prefix: "Unexpected error", err: runErr}
	}

	fmt.Fprintln(stdout, SuccessMessage)
	return nil
}

// Execute runs the root command with the process arguments and returns the
// exit code.
func Execute(ctx context.Context) int {
	return execute(ctx, NewRootCommand(), os.Args[1:])
}

func execute(ctx context.Context, root *cobra.Command, args []string) int {
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	defer observability.Sync()

	if err == nil {
		return ExitOK
	}

	var ee *exitError
	if errors.As(err, &ee) {
		fmt.Fprintf(root.ErrOrStderr(), "%s: %v\n", ee.prefix, ee.err)
		return ee.code
	}
	// Flag and argument errors from cobra.
	fmt.Fprintf(root.ErrOrStderr(), "Error: %v\n", err)
	return ExitConfigError
}
