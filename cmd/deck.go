package cmd

import (
	"github.com/spf13/cobra"

	"github.com/arcanaland/cardsmith/internal/interact"
)

// runDispatch opens the decks and runs one editor command.
func runDispatch(cmd *cobra.Command, name string, args []string) error {
	e, _, err := openEngine(nil)
	if err != nil {
		return err
	}
	return runReply(cmd, e, append([]string{name}, args...), "")
}

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the decks",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDispatch(cmd, "list", args)
	},
}

// createCmd represents the create command
var createCmd = &cobra.Command{
	Use:   "create [deck]",
	Short: "Create an empty deck (admins only)",
	Long: `Create an empty deck. Deck names are lower-cased and must not contain spaces.
New decks are private: only admins can see or edit them.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDispatch(cmd, "create", args)
	},
}

// removeDeckCmd represents the remove-deck command
var removeDeckCmd = &cobra.Command{
	Use:   "remove-deck [deck]",
	Short: "Remove a deck and all of its cards (admins only)",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")

		var prompter interact.Prompter
		if !yes {
			prompter = newStdinPrompter(cmd.InOrStdin(), cmd.OutOrStdout(), cfg.InteractionTimeout.Duration, logger.Named("interact"))
		}

		e, _, err := openEngine(prompter)
		if err != nil {
			return err
		}
		return runReply(cmd, e, append([]string{"remove-deck"}, args...), "")
	},
}

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats [deck]",
	Short: "Count the cards of a deck by type",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDispatch(cmd, "stats", args)
	},
}

func init() {
	RootCmd.AddCommand(listCmd)
	RootCmd.AddCommand(createCmd)
	RootCmd.AddCommand(removeDeckCmd)
	RootCmd.AddCommand(statsCmd)

	removeDeckCmd.Flags().BoolP("yes", "y", false, "remove without asking for confirmation")
}
