package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/arcanaland/cardsmith/internal/engine"
	"github.com/arcanaland/cardsmith/internal/store"
)

// downloadCmd represents the download command
var downloadCmd = &cobra.Command{
	Use:   "download [deck]",
	Short: "Save a readable listing of a deck",
	Long: `Download writes every card of a deck with its id to <deck>.txt.
The listing is meant for reading and cannot be imported by the game.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFileCommand(cmd, "download", args)
	},
}

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export [deck]",
	Short: "Save a deck in the game's import format",
	Long: `Export writes a deck to <deck>.tsv, one card per line as text, a tab
and the card type.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFileCommand(cmd, "export", args)
	},
}

func runFileCommand(cmd *cobra.Command, name string, args []string) error {
	output, _ := cmd.Flags().GetString("output")

	e, _, err := openEngine(nil)
	if err != nil {
		return err
	}
	return runReply(cmd, e, append([]string{name}, args...), output)
}

// writeFile stores an attached file. output "-" streams it to out, an empty
// output uses the file's own name in the working directory and a directory
// output places the file inside it.
func writeFile(out io.Writer, f engine.File, output string) error {
	if output == "-" {
		_, err := out.Write(f.Content)
		return err
	}

	path := output
	if path == "" {
		path = f.Name
	} else if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, f.Name)
	}

	if err := store.WriteAtomic(path, f.Content); err != nil {
		return fmt.Errorf("error writing %s: %w", path, err)
	}
	fmt.Fprintf(out, "Saved %s\n", path)
	return nil
}

func init() {
	RootCmd.AddCommand(downloadCmd)
	RootCmd.AddCommand(exportCmd)

	downloadCmd.Flags().StringP("output", "o", "", "destination file or directory, - for stdout (default <deck>.txt)")
	exportCmd.Flags().StringP("output", "o", "", "destination file or directory, - for stdout (default <deck>.tsv)")
}
