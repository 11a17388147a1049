package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/arcanaland/cardsmith/internal/config"
	"github.com/arcanaland/cardsmith/internal/engine"
	"github.com/arcanaland/cardsmith/internal/interact"
	"github.com/arcanaland/cardsmith/internal/render"
	"github.com/arcanaland/cardsmith/internal/store"
)

var (
	// Global flags
	configPath string
	envFile    string
	deckFile   string
	caller     string
	verbose    bool

	logger *zap.Logger
	cfg    *config.Config
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "cardsmith",
	Short: "Edit the card decks of the party game",
	Long: `Cardsmith manages named decks of statements, objects and verbs for the party game.

Decks are stored in a single JSON document. Card ids are positions in the deck:
deleting or replacing a card renumbers other cards, so search again before
reusing an id.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if envFile != "" {
			if err := godotenv.Load(envFile); err != nil {
				return fmt.Errorf("error loading env file: %w", err)
			}
		}

		var err error
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			return err
		}
		if deckFile != "" {
			cfg.DeckFile = deckFile
		}

		logger, err = newLogger(verbose || strings.EqualFold(cfg.LogLevel, "debug"))
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $XDG_CONFIG_HOME/cardsmith/config.toml)")
	RootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "load CARDSMITH_* variables from a dotenv file")
	RootCmd.PersistentFlags().StringVar(&deckFile, "deck-file", "", "deck document, overrides deck_file from the config")
	RootCmd.PersistentFlags().StringVar(&caller, "as", os.Getenv("USER"), "caller id used for permission checks")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return RootCmd.Execute()
}

func newLogger(debug bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	zc.OutputPaths = []string{"stderr"}
	if debug {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		zc.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	}
	return zc.Build()
}

// openEngine loads the deck document and wires the engine. prompter may be nil.
func openEngine(prompter interact.Prompter) (*engine.Engine, *store.Store, error) {
	s, err := store.Open(cfg.DeckFile, store.WithLogger(logger.Named("store")))
	if err != nil {
		return nil, nil, fmt.Errorf("error opening decks: %w", err)
	}
	reportInvalidCards(s)

	opts := []engine.Option{
		engine.WithLogger(logger.Named("engine")),
		engine.WithResultsLimit(cfg.ResultsLimit),
		engine.WithUsagePrefix(cfg.CmdPrefix + cfg.Command),
	}
	if prompter != nil {
		opts = append(opts, engine.WithPrompter(prompter))
	}
	return engine.New(s, cfg, opts...), s, nil
}

// runReply dispatches args and renders the outcome. A failed command makes
// the process exit non-zero. When output is "-" the attached file goes to
// stdout and the reply text to stderr.
func runReply(cmd *cobra.Command, e *engine.Engine, args []string, output string) error {
	reply := e.Dispatch(cmd.Context(), caller, args)

	out := cmd.OutOrStdout()
	if output == "-" {
		out = cmd.ErrOrStderr()
	}
	render.New(out).Reply(reply)
	if reply.Err != nil {
		return ErrCommandFailed
	}
	if reply.File != nil {
		return writeFile(cmd.OutOrStdout(), *reply.File, output)
	}
	return nil
}

// ErrCommandFailed is returned after a failed command has already been
// reported to the user.
var ErrCommandFailed = errors.New("command failed")
