package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/wordle-arena/internal/board"
	"github.com/robalobadob/wordle-arena/internal/history"
	"github.com/robalobadob/wordle-arena/internal/metrics"
	"github.com/robalobadob/wordle-arena/internal/model"
	"github.com/robalobadob/wordle-arena/internal/orchestrator"
	"github.com/robalobadob/wordle-arena/internal/sandbox"
)

var (
	playTextFile  string
	playNoHistory bool
	playQuiet     bool
	playJSON      bool
)

func init() {
	playCmd.Flags().StringVar(&playTextFile, "text-file", "", "Play a saved model reply instead of generating one ('-' for stdin)")
	playCmd.Flags().BoolVar(&playNoHistory, "no-history", false, "Do not record the run in the history database")
	playCmd.Flags().BoolVar(&playQuiet, "quiet", false, "Print only the final outcome")
	playCmd.Flags().BoolVar(&playJSON, "json", false, "Print the final outcome as JSON")
}

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Generate a strategy and play one game with it",
	Long: `Generate a strategy with the configured model, then play one game.

Examples:
  # Generate with a local Ollama model and play in-process
  wordle-arena play

  # Replay a saved model reply against a remote environment
  ENV_URL=http://localhost:5175 wordle-arena play --text-file reply.txt`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func runPlay(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	started := time.Now().UTC()

	text, modelName, err := strategyText(cmd)
	if err != nil {
		return err
	}
	factory, err := envFactory(cfg)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	g := orchestrator.Game{
		Text:    text,
		Factory: factory,
		Sandbox: []sandbox.Option{
			sandbox.WithMaxSteps(cfg.SandboxMaxSteps),
			sandbox.WithSeed(cfg.SandboxSeed),
		},
		Options: []orchestrator.Option{
			orchestrator.WithMetrics(metrics.NewPrometheusRecorder(reg)),
		},
	}

	out := cmd.OutOrStdout()
	var last orchestrator.Frame
	for f := range g.Run(ctx) {
		last = f
		if !playQuiet && !playJSON {
			renderFrame(out, f)
		}
	}
	o := last.Outcome
	if o == nil {
		return fmt.Errorf("game ended without an outcome")
	}
	logMetrics(reg)

	if !playNoHistory {
		source, _ := extractSource(text)
		record(cmd, &history.Run{
			StartedAt:   started,
			Model:       modelName,
			Outcome:     string(o.Kind),
			Attempts:    o.AttemptsUsed,
			Accuracy:    last.Stats.AccuracyPercent,
			Reward:      o.TotalReward,
			CorrectWord: o.CorrectWord,
			Guesses:     o.Guesses,
			Strategy:    source,
			Error:       errString(o.Err),
		})
	}

	if playJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"outcome":     o.Kind,
			"attempts":    o.AttemptsUsed,
			"correctWord": o.CorrectWord,
			"reward":      o.TotalReward,
			"accuracy":    last.Stats.AccuracyPercent,
			"guesses":     o.Guesses,
			"error":       errString(o.Err),
		})
	}
	fmt.Fprintln(out, o.Message())
	return nil
}

// strategyText returns the model reply to play, generating it unless --text-file is set.
func strategyText(cmd *cobra.Command) (text, modelName string, err error) {
	switch playTextFile {
	case "":
	case "-":
		b, err := io.ReadAll(cmd.InOrStdin())
		return string(b), "stdin", err
	default:
		b, err := os.ReadFile(playTextFile)
		return string(b), "file:" + playTextFile, err
	}

	mc := model.Config{
		Backend:     cfg.ModelBackend,
		Host:        cfg.OllamaHost,
		Name:        cfg.ModelName,
		APIKey:      cfg.AnthropicAPIKey,
		File:        cfg.ModelFile,
		MaxTokens:   cfg.ModelMaxTokens,
		Temperature: cfg.ModelTemperature,
	}
	gen, err := model.New(mc)
	if err != nil {
		return "", "", err
	}
	modelName = cfg.ModelBackend + "/" + mc.ModelName()

	log.Info().Str("model", modelName).Msg("generating strategy")
	for acc, err := range model.Accumulate(gen.Generate(cmd.Context(), model.Prompt)) {
		if err != nil {
			return "", modelName, fmt.Errorf("generate strategy: %w", err)
		}
		text = acc
		if !playQuiet && !playJSON && strings.HasSuffix(acc, "\n") {
			log.Debug().Int("chars", len(acc)).Msg("generation progress")
		}
	}
	if strings.TrimSpace(text) == "" {
		return "", modelName, model.ErrEmptyCompletion
	}
	return text, modelName, nil
}

func record(cmd *cobra.Command, r *history.Run) {
	hs, err := history.Open(cfg.HistoryDB)
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.HistoryDB).Msg("open history")
		return
	}
	defer hs.Close()
	if err := hs.Insert(cmd.Context(), r); err != nil {
		log.Warn().Err(err).Msg("record run")
		return
	}
	log.Debug().Str("run", r.ID).Msg("run recorded")
}

// metricTotals sums each gathered family by name: counter values, gauge values
// and histogram sample counts, plus "<name>_sum" for histograms.
func metricTotals(g prometheus.Gatherer) (map[string]any, error) {
	mfs, err := g.Gather()
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(mfs))
	for _, mf := range mfs {
		var total, sum float64
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				total += m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				total += m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				total += float64(m.GetHistogram().GetSampleCount())
				sum += m.GetHistogram().GetSampleSum()
			}
		}
		out[mf.GetName()] = total
		if sum != 0 {
			out[mf.GetName()+"_sum"] = sum
		}
	}
	return out, nil
}

// logMetrics reports what the game recorded in reg.
func logMetrics(reg prometheus.Gatherer) {
	totals, err := metricTotals(reg)
	if err != nil {
		log.Warn().Err(err).Msg("gather game metrics")
		return
	}
	log.Info().Fields(totals).Msg("game metrics")
}

func errString(err *orchestrator.GameError) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// renderFrame prints a frame as a text grid: [X] correct, (X) misplaced, " X " absent.
func renderFrame(w io.Writer, f orchestrator.Frame) {
	switch f.State {
	case orchestrator.StateReady:
		fmt.Fprintln(w, "Game started")
		return
	case orchestrator.StateAwaitingFeedback:
		fmt.Fprintf(w, "Trying %s...\n", f.Guess)
		return
	}
	for r := range f.Board.Status {
		var sb strings.Builder
		for c, st := range f.Board.Status[r] {
			l := f.Board.Letters[r][c]
			switch board.Status(st) {
			case board.Correct:
				sb.WriteString("[" + l + "]")
			case board.Misplaced:
				sb.WriteString("(" + l + ")")
			case board.Absent:
				sb.WriteString(" " + l + " ")
			default:
				sb.WriteString(" _ ")
			}
		}
		fmt.Fprintln(w, sb.String())
	}
	fmt.Fprintf(w, "attempts %d  accuracy %d%%  reward %.2f\n\n", f.Attempt, f.Stats.AccuracyPercent, f.Reward)
}
