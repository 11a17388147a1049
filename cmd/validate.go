package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arcanaland/cardsmith/internal/store"
	"github.com/arcanaland/cardsmith/internal/validator"
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Validate a deck document",
	Long: `Validate checks every card of a deck document against the card rules.
Documents written by hand or by older versions may hold cards the editor would
reject. Without a path the configured deck_file is checked.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfg.DeckFile
		if len(args) == 1 {
			path = args[0]
		}

		// Check if path exists
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return fmt.Errorf("deck document not found: %s", path)
		}

		decks, err := store.ReadDocument(path)
		if err != nil {
			return fmt.Errorf("validation error: %v", err)
		}
		results := validator.NewValidator(decks).Validate()

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Validation Results:")
		fmt.Fprintln(out, "-------------------")

		if results.Valid() {
			fmt.Fprintf(out, "✅ Document '%s' holds %d valid deck(s).\n", path, len(decks))
		} else {
			fmt.Fprintf(out, "❌ Document '%s' has %d validation errors:\n", path, len(results.Errors))
			for i, err := range results.Errors {
				fmt.Fprintf(out, "%d. %s\n", i+1, err)
			}
		}

		if len(results.Warnings) > 0 {
			fmt.Fprintln(out, "\nWarnings:")
			for i, warn := range results.Warnings {
				fmt.Fprintf(out, "%d. %s\n", i+1, warn)
			}
		}

		if !results.Valid() {
			return ErrCommandFailed
		}
		return nil
	},
}

// reportInvalidCards logs the problems of a freshly loaded document. Cards
// are served as stored, so this only warns.
func reportInvalidCards(s *store.Store) {
	results := validator.NewValidator(s.Snapshot()).Validate()
	for _, msg := range results.Errors {
		logger.Warn("Invalid card in deck document", zap.String("path", s.Path()), zap.String("problem", msg))
	}
	for _, msg := range results.Warnings {
		logger.Debug("Deck document warning", zap.String("path", s.Path()), zap.String("problem", msg))
	}
}

func init() {
	RootCmd.AddCommand(validateCmd)
}
