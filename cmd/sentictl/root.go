package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/bryanwahyu/sentichain/internal/application"
	appanalysis "github.com/bryanwahyu/sentichain/internal/application/analysis"
	"github.com/bryanwahyu/sentichain/internal/domain/sentiment"
	"github.com/bryanwahyu/sentichain/internal/presenter"
)

type options struct {
	seed    int64
	jsonOut bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "sentictl",
		Short: "Offline sentiment scoring",
		Long: `sentictl runs the local sentiment scorers without the API server.
Text comes from the arguments, or from stdin when no argument is given.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().Int64Var(&opts.seed, "seed", 0, "random seed for the consensus simulation (0 = time based)")
	root.PersistentFlags().BoolVar(&opts.jsonOut, "json", false, "print the raw result as JSON")

	root.AddCommand(
		newScoreCmd(opts),
		newConsensusCmd(opts),
		newTopicsCmd(opts),
		newBatchCmd(opts),
	)
	return root
}

func newScoreCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "score [text...]",
		Short: "Score text with the keyword model",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := inputText(cmd, args)
			if err != nil {
				return err
			}
			start := time.Now()
			r := sentiment.Score(text)
			return printResult(cmd.OutOrStdout(), opts, r, time.Since(start))
		},
	}
}

func newConsensusCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "consensus [text...]",
		Short: "Run the validator consensus simulation",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := inputText(cmd, args)
			if err != nil {
				return err
			}
			start := time.Now()
			r := sentiment.NewSimulator(opts.rand()).Simulate(text)
			return printResult(cmd.OutOrStdout(), opts, r, time.Since(start))
		},
	}
}

func newTopicsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "topics [text...]",
		Short: "Show topic categories with their share of keyword hits",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := inputText(cmd, args)
			if err != nil {
				return err
			}
			scores := sentiment.ExtractTopicScores(text)
			out := cmd.OutOrStdout()
			if opts.jsonOut {
				return writeJSON(out, scores)
			}
			if len(scores) == 0 {
				_, err := fmt.Fprintln(out, "no topics")
				return err
			}
			for _, s := range scores {
				if _, err := fmt.Fprintf(out, "%-20s %5.1f%%\n", s.Topic, s.Percentage); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newBatchCmd(opts *options) *cobra.Command {
	var model string
	cmd := &cobra.Command{
		Use:   "batch FILE.csv",
		Short: "Score the 'text' column of a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			rnd := opts.rand()
			svc := &appanalysis.Service{
				Simulator: sentiment.NewSimulator(rnd),
				Sleeper:   application.NoSleep{},
				Rand:      rnd,
			}
			rows, err := svc.AnalyzeBatch(cmd.Context(), f, sentiment.Model(model))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if opts.jsonOut {
				return writeJSON(out, rows)
			}
			for _, row := range rows {
				r := row.Result
				if _, err := fmt.Fprintf(out, "%d\t%s\t%.1f%%\t%s\n", row.Row, r.Sentiment, r.Confidence, snippet(row.Text, 60)); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&model, "model", "basic", "basic or blockchain")
	return cmd
}

func (o *options) rand() sentiment.Rand {
	seed := o.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return sentiment.NewSeededRand(seed)
}

// inputText joins args, or reads stdin when there are none.
func inputText(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	b, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(b), nil
}

func printResult(w io.Writer, opts *options, r sentiment.Result, elapsed time.Duration) error {
	if opts.jsonOut {
		return writeJSON(w, r)
	}
	return presenter.Render(w, presenter.Present(r, elapsed))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func snippet(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
