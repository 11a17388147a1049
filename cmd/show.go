package cmd

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	apperrors "github.com/arcanaland/cardsmith/internal/errors"
	"github.com/arcanaland/cardsmith/internal/render"
)

var showCmd = &cobra.Command{
	Use:   "show [deck] [id]",
	Short: "Display a single card",
	Long: `Show displays one card of a deck with its type and number of gaps.
Gaps are highlighted when the output is a terminal.

Examples:
  cardsmith show party 0
  cardsmith show --as alice secret 12`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, _, err := openEngine(nil)
		if err != nil {
			return err
		}

		// Malformed operands get the same syntax reply as the other commands
		if len(args) != 2 {
			return runReply(cmd, e, append([]string{"show"}, args...), "")
		}
		id, convErr := strconv.Atoi(args[1])
		if convErr != nil {
			return runReply(cmd, e, append([]string{"show"}, args...), "")
		}

		name := strings.ToLower(args[0])
		r := render.New(cmd.OutOrStdout())

		c, err := e.Card(cmd.Context(), caller, name, id)
		if err != nil {
			appErr := apperrors.As(err)
			if appErr == nil {
				appErr = apperrors.Wrap(apperrors.CodeUnknown, "Something went wrong.", err)
			}
			r.Embed(render.ErrorEmbed(appErr))
			return ErrCommandFailed
		}

		r.Card(name, id, c)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(showCmd)
}
