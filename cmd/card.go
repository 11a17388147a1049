package cmd

import (
	"github.com/spf13/cobra"
)

// addCmd represents the add command
var addCmd = &cobra.Command{
	Use:   "add [deck] [type] [text...]",
	Short: "Add a card to a deck",
	Long: `Add a card to the end of a deck and print its id.

The type is one of STATEMENT, OBJECT or VERB. Statements need between one and
three gaps, written as underscores. Objects and verbs must not contain gaps.

Examples:
  cardsmith add party STATEMENT "I never leave home without _."
  cardsmith add party object a rubber duck`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDispatch(cmd, "add", args)
	},
}

// replaceCmd represents the replace command
var replaceCmd = &cobra.Command{
	Use:   "replace [deck] [id] [type] [text...]",
	Short: "Replace the card at an id",
	Long: `Replace the card at an id with a new card.

The card previously at the end of the deck takes the replaced id and the new
card is appended, so both ids change unless the last card was replaced.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDispatch(cmd, "replace", args)
	},
}

// deleteCmd represents the delete command
var deleteCmd = &cobra.Command{
	Use:   "delete [deck] [id]",
	Short: "Delete the card at an id",
	Long: `Delete the card at an id. Every card after it moves down by one, so
search again before reusing an id.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDispatch(cmd, "delete", args)
	},
}

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search [deck] [query...]",
	Short: "Find cards containing a text",
	Long: `Search a deck for cards whose text contains the query, ignoring case.
At most results_limit matches are shown.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDispatch(cmd, "search", args)
	},
}

func init() {
	RootCmd.AddCommand(addCmd)
	RootCmd.AddCommand(replaceCmd)
	RootCmd.AddCommand(deleteCmd)
	RootCmd.AddCommand(searchCmd)
}
