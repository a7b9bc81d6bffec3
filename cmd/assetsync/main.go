package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/bamsammich/assetsync/internal/bundle"
	"github.com/bamsammich/assetsync/internal/config"
	"github.com/bamsammich/assetsync/internal/dest"
	"github.com/bamsammich/assetsync/internal/engine"
	"github.com/bamsammich/assetsync/internal/event"
	"github.com/bamsammich/assetsync/internal/filter"
	"github.com/bamsammich/assetsync/internal/manifest"
	"github.com/bamsammich/assetsync/internal/stats"
	"github.com/bamsammich/assetsync/internal/ui"
	"github.com/bamsammich/assetsync/internal/ui/tui"
)

var version = "dev"

func main() {
	os.Exit(run())
}

// options holds every root command flag.
type options struct {
	manifest    string
	root        string
	policy      string
	prefix      string
	bufferSize  string
	bwLimit     string
	configFile  string
	filterFile  string
	logFile     string
	sshKey      string
	sshPort     int
	dryRun      bool
	verbose     bool
	quiet       bool
	noProgress  bool
	tuiFlag     bool
	showVersion bool
}

// filterFlag keeps --exclude and --include in command-line order by
// appending to one shared chain.
type filterFlag struct {
	chain   *filter.Chain
	include bool
}

func (*filterFlag) String() string { return "" }
func (*filterFlag) Type() string   { return "pattern" }

func (f *filterFlag) Set(val string) error {
	return f.chain.Add(val, f.include)
}

var _ pflag.Value = (*filterFlag)(nil)

//nolint:gocyclo,revive // cyclomatic,cognitive-complexity: main CLI entry point orchestrates flag parsing and mode selection
func run() int {
	var opts options
	chain := filter.NewChain()

	rootCmd := &cobra.Command{
		Use:   "assetsync [flags] <source> <destination>",
		Short: "Deploy a bundled asset tree onto a writable directory, copying only what changed",
		Args: func(cmd *cobra.Command, args []string) error {
			if opts.showVersion {
				return nil
			}
			return cobra.ExactArgs(2)(cmd, args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.showVersion {
				fmt.Fprintf(os.Stdout, "assetsync %s\n", version)
				return nil
			}

			cfg, err := loadConfig(opts.configFile)
			if err != nil {
				slog.Warn("failed to load config", "error", err)
			}
			applyConfigDefaults(cmd, cfg.Defaults, &opts)

			policy, err := engine.ParsePolicy(opts.policy)
			if err != nil {
				return usageError(err)
			}
			bufferSize, err := parseSize("--buffer-size", opts.bufferSize)
			if err != nil {
				return usageError(err)
			}
			bwLimit, err := parseSize("--bwlimit", opts.bwLimit)
			if err != nil {
				return usageError(err)
			}

			if opts.filterFile != "" {
				if err := chain.LoadFile(opts.filterFile); err != nil {
					return usageError(err)
				}
			}

			logger, closeLog, err := setupLogging(opts)
			if err != nil {
				return err
			}
			defer closeLog()
			slog.SetDefault(logger)

			if opts.dryRun {
				slog.Info("dry run mode")
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			loc, src, srcCloser, err := openSource(ctx, cmd.Flags(), args[0], sourceFlags{
				prefix:  opts.prefix,
				sshKey:  opts.sshKey,
				sshPort: opts.sshPort,
			})
			if err != nil {
				return err
			}
			defer srcCloser.Close()

			dstRoot := args[1]
			target, err := dest.OpenOS(dstRoot)
			if err != nil {
				return fmt.Errorf("destination %s: %w", dstRoot, err)
			}

			collector := stats.NewCollector()
			events := event.NewChannel(0)

			presenterEvents := events.Events()

			engineCtx, engineCancel := context.WithCancel(ctx)
			defer engineCancel()

			isTTY := ui.IsTTY(os.Stderr.Fd())
			useTUI := opts.tuiFlag && isTTY
			var presenter ui.Presenter
			if useTUI {
				presenter = tui.NewPresenter(tui.Config{
					Stats:   collector,
					SrcRoot: loc.String(),
					DstRoot: dstRoot,
					Theme:   cfg.Theme,
					Stop:    engineCancel,
				})
			} else {
				if opts.tuiFlag {
					slog.Warn("--tui requires a terminal, falling back to inline output")
				}
				presenter = ui.NewPresenter(ui.Config{
					Writer:     os.Stdout,
					ErrWriter:  os.Stderr,
					Stats:      collector,
					IsTTY:      isTTY,
					Quiet:      opts.quiet,
					Verbose:    opts.verbose,
					NoProgress: opts.noProgress,
					DryRun:     opts.dryRun,
				})
			}

			engineCfg := engine.Config{
				Source:     src,
				Target:     target,
				Manifest:   opts.manifest,
				Root:       opts.root,
				Policy:     policy,
				BufferSize: int(bufferSize), //nolint:gosec // G115: parsed sizes are far below MaxInt
				BWLimit:    int64(bwLimit),  //nolint:gosec // G115: parsed sizes are far below MaxInt64
				DryRun:     opts.dryRun,
				Events:     events,
				Filter:     chain,
				Stats:      collector,
				Logger:     logger,
			}
			// With --log, every event is also written as a structured record.
			if opts.logFile != "" {
				engineCfg.EventLog = logger
			}

			slog.Debug("starting sync",
				"source", loc.String(),
				"destination", dstRoot,
				"manifest", opts.manifest,
				"root", opts.root,
				"policy", policy.String(),
			)

			var result engine.Result
			if useTUI {
				// TUI mode: session in the background, TUI in the foreground so
				// Bubble Tea owns stdin.
				var wg sync.WaitGroup
				wg.Add(1)
				go func() {
					defer wg.Done()
					result = engine.Run(engineCtx, engineCfg)
				}()

				_ = presenter.Run(presenterEvents) //nolint:errcheck // presenter error is non-fatal

				// The user quit the TUI; stop the session if it is still running.
				engineCancel()
				wg.Wait()
				stop()
			} else {
				var presenterErr error
				var wg sync.WaitGroup
				wg.Add(1)
				go func() {
					defer wg.Done()
					presenterErr = presenter.Run(presenterEvents)
				}()

				result = engine.Run(engineCtx, engineCfg)
				stop()
				wg.Wait()
				if presenterErr != nil {
					fmt.Fprintf(os.Stderr, "presenter: %v\n", presenterErr)
				}
			}

			if opts.dryRun && !opts.quiet {
				if err := ui.WriteWorklist(os.Stdout, result.Worklist); err != nil {
					slog.Warn("failed to write dry-run listing", "error", err)
				}
			}
			if !opts.quiet {
				if summary := presenter.Summary(); summary != "" {
					fmt.Fprintln(os.Stderr, summary)
				}
			}
			if dropped := events.Dropped(); dropped > 0 {
				slog.Debug("progress events dropped", "count", dropped)
			}

			return exitFor(result)
		},
	}

	f := rootCmd.Flags()
	f.BoolVar(&opts.showVersion, "version", false, "print version and exit")
	f.StringVar(&opts.manifest, "manifest", manifest.DefaultName, "bundle path of the directory manifest")
	f.StringVar(&opts.root, "root", "", "bundle subtree to deploy (default: whole bundle)")
	f.StringVar(&opts.policy, "policy", "size", "staleness policy: size or digest")
	f.StringVar(&opts.prefix, "prefix", "", "entry prefix inside a zip archive or bucket (default: assets/ for .apk)")
	f.StringVar(&opts.bufferSize, "buffer-size", "", "copy buffer size (e.g. 32KiB, 1MiB)")
	f.StringVar(&opts.bwLimit, "bwlimit", "", "bandwidth limit (e.g. 10MB, 1GiB)")
	f.StringVar(&opts.configFile, "config", "", "config file (default: $XDG_CONFIG_HOME/assetsync/config.toml)")
	f.Var(&filterFlag{chain: chain}, "exclude", "exclude bundle paths matching PATTERN (repeatable)")
	f.Var(&filterFlag{chain: chain, include: true}, "include", "include bundle paths matching PATTERN (repeatable)")
	f.StringVar(&opts.filterFile, "filter", "", "read include/exclude rules from FILE")
	f.StringVar(&opts.sshKey, "ssh-key", "", "private key for sftp sources (default: agent, then ~/.ssh/id_*)")
	f.IntVar(&opts.sshPort, "ssh-port", 0, "SSH port for sftp sources (default: 22)")
	f.StringVar(&opts.logFile, "log", "", "write structured JSON log to FILE")
	f.BoolVar(&opts.dryRun, "dry-run", false, "show what would be copied without writing")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")
	f.BoolVarP(&opts.quiet, "quiet", "q", false, "suppress all output except errors")
	f.BoolVar(&opts.noProgress, "no-progress", false, "disable progress display")
	f.BoolVar(&opts.tuiFlag, "tui", false, "full-screen TUI (Bubble Tea)")

	rootCmd.AddCommand(newPromptCmd())
	rootCmd.AddCommand(newCopyAssetsCmd())
	rootCmd.AddCommand(docsCmd)

	if err := rootCmd.Execute(); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			if exitErr.err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", exitErr.err)
			}
			return exitErr.code
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	return 0
}

func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

// applyConfigDefaults applies config file defaults for flags not explicitly
// set on the command line.
func applyConfigDefaults(cmd *cobra.Command, defaults config.DefaultsConfig, opts *options) {
	setString := func(name string, dst *string, v *string) {
		if !cmd.Flags().Changed(name) && v != nil {
			*dst = *v
		}
	}
	setBool := func(name string, dst *bool, v *bool) {
		if !cmd.Flags().Changed(name) && v != nil {
			*dst = *v
		}
	}
	setString("manifest", &opts.manifest, defaults.Manifest)
	setString("root", &opts.root, defaults.Root)
	setString("policy", &opts.policy, defaults.Policy)
	setString("buffer-size", &opts.bufferSize, defaults.BufferSize)
	setString("bwlimit", &opts.bwLimit, defaults.BWLimit)
	setBool("tui", &opts.tuiFlag, defaults.TUI)
	setBool("quiet", &opts.quiet, defaults.Quiet)
}

// parseSize parses a human size such as "10MB" or "1MiB". Empty is zero.
func parseSize(flag, s string) (uint64, error) {
	if s == "" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", flag, err)
	}
	return n, nil
}

// setupLogging builds the process logger: a console handler on stderr plus,
// with --log, a JSON handler that records everything at debug level.
func setupLogging(opts options) (*slog.Logger, func(), error) {
	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	} else if !opts.quiet {
		level = slog.LevelInfo
	}

	console := ui.NewConsoleHandler(os.Stderr, level)
	if opts.logFile == "" {
		return slog.New(console), func() {}, nil
	}

	lf, err := os.Create(opts.logFile)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	jsonHandler := slog.NewJSONHandler(lf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(ui.NewMultiHandler(console, jsonHandler)), func() { _ = lf.Close() }, nil
}

// sourceFlags are the flags that shape how a source argument is opened.
type sourceFlags struct {
	prefix  string
	sshKey  string
	sshPort int
}

// openSource parses and opens a source argument. --prefix and --ssh-port
// override the parsed location only when set on the command line.
func openSource(ctx context.Context, flags *pflag.FlagSet, arg string, sf sourceFlags) (bundle.Location, bundle.Provider, io.Closer, error) {
	loc, err := bundle.ParseLocation(arg)
	if err != nil {
		return loc, nil, nil, usageError(fmt.Errorf("source: %w", err))
	}
	if flags.Changed("prefix") {
		loc.Prefix = sf.prefix
	}
	if loc.Kind == bundle.KindSFTP && flags.Changed("ssh-port") {
		loc.Port = sf.sshPort
	}
	creds := credentialsFromEnv()
	creds.SSHKeyFile = sf.sshKey
	src, closer, err := loc.Open(ctx, creds)
	if err != nil {
		return loc, nil, nil, fmt.Errorf("source %s: %w", loc, err)
	}
	return loc, src, closer, nil
}

// credentialsFromEnv reads source credentials, preferring the
// assetsync-specific variables over the AWS ones.
func credentialsFromEnv() bundle.Credentials {
	first := func(keys ...string) string {
		for _, k := range keys {
			if v := os.Getenv(k); v != "" {
				return v
			}
		}
		return ""
	}
	return bundle.Credentials{
		AccessKey:   first("ASSETSYNC_ACCESS_KEY", "AWS_ACCESS_KEY_ID"),
		SecretKey:   first("ASSETSYNC_SECRET_KEY", "AWS_SECRET_ACCESS_KEY"),
		SSHPassword: first("ASSETSYNC_SSH_PASSWORD"),
	}
}

// exitFor maps a session result to the process exit status: 0 when clean,
// 1 when some items failed but others were copied, 2 otherwise.
func exitFor(res engine.Result) error {
	if res.OK() {
		return nil
	}
	if res.Err != nil {
		slog.Error("sync interrupted", "error", res.Err)
	} else {
		slog.Error("sync finished with failures", "failures", len(res.Failures))
	}
	if res.Stats.FilesCopied > 0 {
		return &exitError{code: 1}
	}
	return &exitError{code: 2}
}

func usageError(err error) error {
	return &exitError{code: 2, err: err}
}

type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	return fmt.Sprintf("exit code %d", e.code)
}

func (e *exitError) Unwrap() error { return e.err }
