package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/robalobadob/wordle-arena/internal/extract"
)

var extractAll bool

func init() {
	extractCmd.Flags().BoolVar(&extractAll, "all", false, "Print every candidate instead of the selected one")
}

var extractCmd = &cobra.Command{
	Use:   "extract [file]",
	Short: "Show the strategy that would be played from a model reply",
	Long: `Read a model reply from a file or stdin and print the strategy function
that play would select from it.

Examples:
  wordle-arena extract reply.txt
  cat reply.txt | wordle-arena extract --all`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExtract,
}

func runExtract(cmd *cobra.Command, args []string) error {
	var b []byte
	var err error
	if len(args) == 0 || args[0] == "-" {
		b, err = io.ReadAll(cmd.InOrStdin())
	} else {
		b, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("read reply: %w", err)
	}

	out := cmd.OutOrStdout()
	if extractAll {
		for i, c := range extract.Candidates(string(b)) {
			fmt.Fprintf(out, "# candidate %d\n%s\n\n", i+1, c)
		}
		return nil
	}
	source, err := extractSource(string(b))
	if err != nil {
		return err
	}
	fmt.Fprintln(out, source)
	return nil
}

func extractSource(text string) (string, error) {
	return extract.Extract(text)
}
