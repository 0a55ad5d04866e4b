package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dmorgan81/imagine/internal/config"
	"github.com/dmorgan81/imagine/internal/inject"
	"github.com/dmorgan81/imagine/internal/log"
	"github.com/samber/do"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

type options struct {
	cfgFile   string
	endpoint  string
	timeout   time.Duration
	logLevel  string
	outputDir string
	html      bool
	backend   string
}

// app is what every subcommand runs against once configuration is resolved.
type app struct {
	ctx      context.Context
	cfg      *config.Config
	injector *do.Injector
	logFile  io.Closer
}

// fullscreenAnnotation marks commands that draw on the terminal; their logs
// go to --log-file or nowhere.
const fullscreenAnnotation = "imagine/fullscreen"

var configFreeCommands = []string{"version", "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd}

// NewRootCommand creates the root command
func NewRootCommand(version, commit, date string) *cobra.Command {
	opts := &options{}
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "imagine",
		Short: "Generate images from prompts through a webhook",
		Long: `imagine sends a text prompt to an image-generation webhook as JSON and
saves the image it returns.

The webhook URL comes from the config file, IMAGINE_ENDPOINT, --endpoint or an
AWS Parameter Store path.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !needsConfig(cmd) {
				return nil
			}
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			out, err := a.logOutput(cmd)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.ctx = log.NewContext(cmd.Context(), log.New(out, log.ParseLevel(cfg.LogLevel)))
			a.injector = inject.Setup(a.ctx, cfg)
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.logFile != nil {
				defer a.logFile.Close()
			}
			if a.injector == nil {
				return nil
			}
			return a.injector.Shutdown()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.cfgFile, "config", "c", "", "config file path")
	flags.StringVarP(&opts.endpoint, "endpoint", "e", "", "webhook URL")
	flags.DurationVar(&opts.timeout, "timeout", 0, "request timeout (0 disables)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.StringVarP(&opts.outputDir, "output-dir", "o", "", "directory for generated images")
	flags.BoolVar(&opts.html, "html", false, "write an HTML page next to each image")
	flags.StringVar(&opts.backend, "store", "", "result store (file, s3)")

	rootCmd.AddCommand(newGenerateCommand(a))
	rootCmd.AddCommand(newTUICommand(a))
	rootCmd.AddCommand(newLambdaCommand(a))
	rootCmd.AddCommand(newFeedCommand(a))
	rootCmd.AddCommand(newVersionCommand(version, commit, date))

	return rootCmd
}

// needsConfig reports whether cmd runs against a configured injector. Shell
// completion and version output must work before anything is configured.
func needsConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if lo.Contains(configFreeCommands, c.Name()) {
			return false
		}
	}
	return true
}

func (a *app) logOutput(cmd *cobra.Command) (io.Writer, error) {
	if _, ok := cmd.Annotations[fullscreenAnnotation]; !ok {
		return os.Stderr, nil
	}
	path, _ := cmd.Flags().GetString("log-file")
	if path == "" {
		return io.Discard, nil
	}
	f, err := tea.LogToFile(path, "imagine")
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	a.logFile = f
	return f, nil
}

// loadConfig resolves files and environment, then applies flags the user set.
func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	cfg, err := config.NewLoader().LoadUnvalidated(opts.cfgFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("endpoint") {
		cfg.Endpoint = opts.endpoint
	}
	if flags.Changed("timeout") {
		cfg.Timeout = opts.timeout
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	if flags.Changed("output-dir") {
		cfg.Output.Dir = opts.outputDir
	}
	if flags.Changed("html") {
		cfg.Output.HTML = opts.html
	}
	if flags.Changed("store") {
		cfg.Store.Backend = opts.backend
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func newVersionCommand(version, commit, date string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			if version == "" || version == "dev" {
				version = "development"
			}
			if commit == "" {
				commit = "local-build"
			}
			if date == "" {
				date = "local-build"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imagine %s (%s) built on %s\n", version, commit, date)
			fmt.Fprintf(cmd.OutOrStdout(), "Go version: %s\n", runtime.Version())
			fmt.Fprintf(cmd.OutOrStdout(), "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}
