package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"dupscore/internal/classifier"
	"dupscore/internal/logging"
	"dupscore/internal/records"
	"dupscore/internal/scorer"
)

type scoreOutput struct {
	QueryID  string             `json:"q_sr_id"`
	MatchID  string             `json:"m_sr_id"`
	Class    string             `json:"class"`
	Features map[string]float64 `json:"features"`
	Order    []string           `json:"feature_order"`
}

func newScoreCommand(ctx *commandContext) *cobra.Command {
	var query string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "score [q_sr_id=<id>&m_sr_id=<id>]",
		Short: "Classify one record pair and show its features",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := query
			if raw == "" && len(args) == 1 {
				raw = args[0]
			}
			pair, err := scorer.ParseQuery(scorer.DecodeBody(raw))
			if err != nil {
				return err
			}
			return runScore(cmd, ctx, pair, jsonOutput)
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "Request string q_sr_id=<id>&m_sr_id=<id>")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func runScore(cmd *cobra.Command, ctx *commandContext, pair scorer.Pair, jsonOutput bool) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := ctx.toolLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	model, err := classifier.Load(cfg)
	if err != nil {
		return err
	}

	runCtx := cmd.Context()
	if runCtx == nil {
		runCtx = context.Background()
	}
	runCtx = logging.WithRequestID(runCtx, "")
	runCtx, cancel := context.WithTimeout(runCtx, cfg.RequestTimeout())
	defer cancel()

	store, err := records.Open(runCtx, cfg)
	if err != nil {
		return fmt.Errorf("open record store: %w", err)
	}
	defer store.Close()

	svc, err := scorer.NewService(store, model, logger)
	if err != nil {
		return err
	}
	result, err := svc.Score(runCtx, pair)
	if err != nil {
		return err
	}

	if jsonOutput {
		return writeJSON(cmd, scoreOutput{
			QueryID:  pair.QueryID,
			MatchID:  pair.MatchID,
			Class:    result.Label.String(),
			Features: result.Vector.Map(),
			Order:    result.Vector.Names(),
		})
	}

	rows := make([][]string, 0, len(result.Vector))
	for _, f := range result.Vector {
		rows = append(rows, []string{f.Name, strconv.FormatFloat(f.Value, 'f', -1, 64)})
	}
	out := cmd.OutOrStdout()
	printTable(out, []string{"Feature", "Value"}, rows, []columnAlignment{alignLeft, alignRight})
	fmt.Fprintf(out, "Class: %s\n", result.Label)
	return nil
}
