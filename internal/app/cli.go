package wrapper

import (
	"errors"
	"fmt"
	"os"
	"strings"

	config "subagent-wrapper/internal/config"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const version = "1.0.0"

var exitFn = os.Exit

type exitError struct {
	code int
}

func (e exitError) Error() string {
	return fmt.Sprintf("exit %d", e.code)
}

type cliOptions struct {
	Model   string
	Context string
	Tools   string
	WorkDir string
	Timeout int

	Parallel bool

	Cleanup    bool
	Version    bool
	ConfigFile string
}

func Main() {
	Run()
}

// Run is the program entrypoint for cmd/subagent-wrapper/main.go.
func Run() {
	exitFn(run())
}

func run() int {
	cmd := newRootCommand()
	cmd.SetArgs(os.Args[1:])
	if err := cmd.Execute(); err != nil {
		var ee exitError
		if errors.As(err, &ee) {
			return ee.code
		}
		return 1
	}
	return 0
}

func newRootCommand() *cobra.Command {
	name := currentWrapperName()
	opts := &cliOptions{}

	cmd := &cobra.Command{
		Use:           fmt.Sprintf("%s [flags] <task> [workdir]", name),
		Short:         "Delegate coding tasks to subagent fleets",
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Version {
				fmt.Printf("%s version %s\n", name, version)
				return nil
			}
			if opts.Cleanup {
				code := runCleanupMode()
				if code == 0 {
					return nil
				}
				return exitError{code: code}
			}

			exitCode := runWithLoggerAndCleanup(func() int {
				v, err := config.NewViper(opts.ConfigFile)
				if err != nil {
					logError(err.Error())
					return 1
				}
				cfg := buildConfig(cmd, opts, v)

				if opts.Parallel {
					return runParallelMode(args, cfg, name)
				}

				logInfo("Script started")
				return runSingleMode(args, cfg, name)
			})

			if exitCode == 0 {
				return nil
			}
			return exitError{code: exitCode}
		},
	}
	cmd.CompletionOptions.DisableDefaultCmd = true

	addRootFlags(cmd.Flags(), opts)
	cmd.AddCommand(newVersionCommand(name), newCleanupCommand())

	return cmd
}

func addRootFlags(fs *pflag.FlagSet, opts *cliOptions) {
	fs.StringVar(&opts.ConfigFile, "config", "", "Config file path (default: $HOME/.subagent/config.*)")
	fs.BoolVarP(&opts.Version, "version", "v", false, "Print version and exit")
	fs.BoolVar(&opts.Cleanup, "cleanup", false, "Clean up old logs and exit")

	fs.BoolVar(&opts.Parallel, "parallel", false, "Run tasks in parallel (config from stdin)")

	fs.StringVar(&opts.Model, "model", "", "Model token or canonical provider/id")
	fs.StringVar(&opts.Context, "context", "", "Background text prepended to the task")
	fs.StringVar(&opts.Tools, "tools", "", "Comma-separated tool names the subagent may use")
	fs.StringVar(&opts.WorkDir, "workdir", "", "Working directory for the agent subprocess")
	fs.IntVar(&opts.Timeout, "timeout", 0, "Timeout in seconds (0 = none)")
}

func newVersionCommand(name string) *cobra.Command {
	return &cobra.Command{
		Use:           "version",
		Short:         "Print version and exit",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("%s version %s\n", name, version)
			return nil
		},
	}
}

func newCleanupCommand() *cobra.Command {
	return &cobra.Command{
		Use:           "cleanup",
		Short:         "Clean up old logs and exit",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			code := runCleanupMode()
			if code == 0 {
				return nil
			}
			return exitError{code: code}
		},
	}
}

// buildConfig layers flag overrides on top of the file/env configuration.
func buildConfig(cmd *cobra.Command, opts *cliOptions, v *viper.Viper) *config.Config {
	cfg := config.FromViper(v)

	if cmd.Flags().Changed("model") {
		cfg.Model = strings.TrimSpace(opts.Model)
	} else {
		cfg.Model = strings.TrimSpace(v.GetString("model"))
	}
	if cmd.Flags().Changed("context") {
		cfg.Context = opts.Context
	}
	if cmd.Flags().Changed("tools") {
		cfg.Tools = config.SplitToolList(opts.Tools)
	} else if val := v.GetString("tools"); strings.TrimSpace(val) != "" {
		cfg.Tools = config.SplitToolList(val)
	}
	if cmd.Flags().Changed("workdir") {
		cfg.WorkDir = strings.TrimSpace(opts.WorkDir)
	}
	if cmd.Flags().Changed("timeout") && opts.Timeout > 0 {
		cfg.Timeout = opts.Timeout
	}
	if cfg.WorkDir == "" {
		cfg.WorkDir = "."
	}
	cfg.Parallel = opts.Parallel
	return cfg
}

func runWithLoggerAndCleanup(fn func() int) (exitCode int) {
	logger, err := NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: failed to initialize logger: %v\n", err)
		return 1
	}
	setLogger(logger)

	defer func() {
		logger := activeLogger()
		if logger != nil {
			logger.Flush()
		}
		if err := closeLogger(); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: failed to close logger: %v\n", err)
		}
		if logger == nil {
			return
		}

		keepLog := config.EnvFlagEnabled("SUBAGENT_KEEP_LOGS")
		if exitCode != 0 {
			if entries := logger.ExtractRecentErrors(10); len(entries) > 0 {
				fmt.Fprintln(os.Stderr, "\n=== Recent Errors ===")
				for _, entry := range entries {
					fmt.Fprintln(os.Stderr, entry)
				}
				if keepLog {
					fmt.Fprintf(os.Stderr, "Log file: %s\n", logger.Path())
				} else {
					fmt.Fprintf(os.Stderr, "Log file: %s (deleted)\n", logger.Path())
				}
			}
		}
		if keepLog {
			return
		}
		_ = logger.RemoveLogFile()
	}()
	defer runCleanupHook()

	// Clean up stale logs from previous runs unless explicitly disabled.
	if config.EnvFlagDefaultTrue("SUBAGENT_AUTO_CLEANUP") {
		scheduleStartupCleanup()
	}

	return fn()
}
