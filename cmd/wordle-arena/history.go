package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/robalobadob/wordle-arena/internal/history"
)

var (
	histOutcome string
	histLimit   int
	histJSON    bool
)

func init() {
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.PersistentFlags().BoolVar(&histJSON, "json", false, "Output results as JSON")
	historyCmd.Flags().StringVar(&histOutcome, "outcome", "", "Filter by outcome (WON, LOST, ABORTED_INVALID_GUESS, ABORTED_ERROR)")
	historyCmd.Flags().IntVar(&histLimit, "limit", 20, "Maximum number of runs to list")
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded games",
	Long: `List games recorded by play, most recent first, followed by totals.

Examples:
  wordle-arena history --outcome WON --limit 5
  wordle-arena history show <run-id>`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		hs, err := history.Open(cfg.HistoryDB)
		if err != nil {
			return err
		}
		defer hs.Close()

		runs, err := hs.List(cmd.Context(), histOutcome, histLimit)
		if err != nil {
			return err
		}
		totals, err := hs.Totals(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if histJSON {
			return json.NewEncoder(out).Encode(map[string]any{"runs": runs, "totals": totals})
		}
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tFINISHED\tMODEL\tOUTCOME\tATTEMPTS\tACCURACY\tREWARD\tWORD")
		for _, r := range runs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d%%\t%.2f\t%s\n",
				r.ID, r.FinishedAt.Format("2006-01-02 15:04:05"), r.Model, r.Outcome,
				r.Attempts, r.Accuracy, r.Reward, r.CorrectWord)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(out, "\nplayed %d  won %d  lost %d  aborted %d  avg attempts (won) %.2f  avg accuracy %.1f%%\n",
			totals.Played, totals.Won, totals.Lost, totals.Aborted, totals.AvgAttempts, totals.AvgAccuracy)
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one recorded game with its strategy",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hs, err := history.Open(cfg.HistoryDB)
		if err != nil {
			return err
		}
		defer hs.Close()

		r, err := hs.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if histJSON {
			return json.NewEncoder(out).Encode(r)
		}
		fmt.Fprintf(out, "run       %s\nmodel     %s\noutcome   %s\nattempts  %d\nguesses   %v\nword      %s\nreward    %.2f\n",
			r.ID, r.Model, r.Outcome, r.Attempts, r.Guesses, r.CorrectWord, r.Reward)
		if r.Error != "" {
			fmt.Fprintf(out, "error     %s\n", r.Error)
		}
		fmt.Fprintf(out, "\n%s\n", r.Strategy)
		return nil
	},
}
