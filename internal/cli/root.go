package cli

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	DB            string
	RulesDir      string
	MaxIterations int
	Seed          uint64
	AutoPass      bool
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the vibe CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "vibe",
		Short: "vibe - audited rule-and-act engine",
		Long: `Run acts against the audited state, evaluate the LIL rule set and
inspect the audit log.

Settings come from VIBE_* environment variables; flags override them.
Without --db the state lives only for the duration of one command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			cfg, err := config.Load()
			if err != nil {
				return WrapExitError(ExitCommandError, "configuration", err)
			}
			applyConfig(cmd, opts, cfg)
			if opts.MaxIterations < 1 {
				return NewExitError(ExitCommandError, "--max-iterations must be >= 1")
			}

			level, _ := cfg.Level()
			if opts.Verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	flags.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	flags.StringVar(&opts.DB, "db", "", "sqlite file for snapshots and the audit log (env VIBE_DB)")
	flags.StringVar(&opts.RulesDir, "rules", "", "CUE package directory replacing the built-in rules (env VIBE_RULES_DIR)")
	flags.IntVar(&opts.MaxIterations, "max-iterations", 16, "rule pass iteration cap (env VIBE_MAX_ITERATIONS)")
	flags.Uint64Var(&opts.Seed, "seed", 1, "seed of the deterministic random source (env VIBE_SEED)")
	flags.BoolVar(&opts.AutoPass, "auto-pass", false, "run a rule pass after every successful act (env VIBE_AUTO_PASS)")

	cmd.AddCommand(NewInvokeCommand(opts))
	cmd.AddCommand(NewSayCommand(opts))
	cmd.AddCommand(NewPassCommand(opts))
	cmd.AddCommand(NewStateCommand(opts))
	cmd.AddCommand(NewLogCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewRulesCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewReplCommand(opts))
	cmd.AddCommand(NewScenarioCommand(opts))

	return cmd
}

// applyConfig fills every flag the user did not set from cfg.
func applyConfig(cmd *cobra.Command, opts *RootOptions, cfg config.Config) {
	changed := cmd.Flags().Changed
	if !changed("db") {
		opts.DB = cfg.DB
	}
	if !changed("rules") {
		opts.RulesDir = cfg.RulesDir
	}
	if !changed("max-iterations") {
		opts.MaxIterations = cfg.MaxIterations
	}
	if !changed("seed") {
		opts.Seed = cfg.Seed
	}
	if !changed("auto-pass") {
		opts.AutoPass = cfg.AutoPass
	}
}

func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// newFormatter builds the formatter for one command invocation.
func newFormatter(cmd *cobra.Command, opts *RootOptions) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}
