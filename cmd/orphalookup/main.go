package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/zatekoja/rarediseaseguide/internal/application/services"
	"github.com/zatekoja/rarediseaseguide/internal/bootstrap"
	"github.com/zatekoja/rarediseaseguide/internal/evaluation"
	"github.com/zatekoja/rarediseaseguide/internal/infrastructure/observability"
	"github.com/zatekoja/rarediseaseguide/pkg/config"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "orphalookup",
		Short:        "Resolve rare disease names against Orphadata",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(extractCmd())
	rootCmd.AddCommand(searchCmd())
	rootCmd.AddCommand(detailsCmd())
	rootCmd.AddCommand(evaluateCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func extractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract <message>",
		Short: "Print the disease names found in a message",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			message := strings.Join(args, " ")
			return printJSON(cmd.OutOrStdout(), map[string]interface{}{
				"candidates": services.ExtractMultipleDiseaseNames(message),
				"language":   services.DetectLanguage(message, nil),
			})
		},
	}
}

func searchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <term>",
		Short: "Find the best matching disease and print its enriched record",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lang, _ := cmd.Flags().GetString("lang")
			resolver, err := newResolver(cmd.Context())
			if err != nil {
				return err
			}
			defer resolver.Close()

			term := strings.Join(args, " ")
			record, found := resolver.Service.SearchDisease(cmd.Context(), term, lang)
			if !found {
				return fmt.Errorf("no disease found for %q", term)
			}
			return printJSON(cmd.OutOrStdout(), record)
		},
	}
	cmd.Flags().String("lang", "", "Orphadata language code (defaults to ORPHADATA_DEFAULT_LANG)")
	return cmd
}

func detailsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "details <orpha-code>",
		Short: "Print the enriched record for an ORPHA code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lang, _ := cmd.Flags().GetString("lang")
			resolver, err := newResolver(cmd.Context())
			if err != nil {
				return err
			}
			defer resolver.Close()

			record, found := resolver.Service.GetDiseaseDetails(cmd.Context(), args[0], lang)
			if !found {
				return fmt.Errorf("no disease found for ORPHA code %s", args[0])
			}
			return printJSON(cmd.OutOrStdout(), record)
		},
	}
	cmd.Flags().String("lang", "", "Orphadata language code (defaults to ORPHADATA_DEFAULT_LANG)")
	return cmd
}

func evaluateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Score the extractor and catalog index against a golden query set",
		RunE: func(cmd *cobra.Command, args []string) error {
			goldenPath, _ := cmd.Flags().GetString("golden")
			withResults, _ := cmd.Flags().GetBool("results")
			minAccuracy, _ := cmd.Flags().GetFloat64("min-accuracy")
			minRecall, _ := cmd.Flags().GetFloat64("min-recall")
			minMRR, _ := cmd.Flags().GetFloat64("min-mrr")

			queries, err := evaluation.LoadGoldenQueries(goldenPath)
			if err != nil {
				return err
			}
			if err := evaluation.ValidateGoldenQueries(queries); err != nil {
				return err
			}

			resolver, err := newResolver(cmd.Context())
			if err != nil {
				return err
			}
			defer resolver.Close()

			if err := resolver.Index.EnsureLoaded(cmd.Context()); err != nil {
				return fmt.Errorf("failed to load disease catalog: %w", err)
			}

			runner := evaluation.NewRunner(resolver.Index, services.ExtractDiseaseName)
			summary, err := runner.Run(cmd.Context(), queries)
			if err != nil {
				return fmt.Errorf("evaluation failed: %w", err)
			}
			if !withResults {
				summary.Results = nil
			}
			if err := printJSON(cmd.OutOrStdout(), summary); err != nil {
				return err
			}

			guardrails := evaluation.NewGuardrails(evaluation.GuardrailConfig{
				MinExtractionAccuracy: minAccuracy,
				MinRecallAt10:         minRecall,
				MinMRRAt10:            minMRR,
			})
			if violations := guardrails.Violations(summary); len(violations) > 0 {
				return fmt.Errorf("evaluation below thresholds: %s", strings.Join(violations, "; "))
			}
			return nil
		},
	}
	cmd.Flags().String("golden", "config/golden_queries.json", "Path to the golden query set")
	cmd.Flags().Bool("results", false, "Include per-query results in the output")
	cmd.Flags().Float64("min-accuracy", 0, "Fail when extraction accuracy is below this value")
	cmd.Flags().Float64("min-recall", 0, "Fail when average recall@10 is below this value")
	cmd.Flags().Float64("min-mrr", 0, "Fail when average MRR@10 is below this value")
	return cmd
}

// newResolver builds a resolver from the environment; logs go to stderr so stdout stays JSON.
func newResolver(ctx context.Context) (*bootstrap.Resolver, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	observability.InitLoggerWithWriter(os.Stderr, cfg.OTEL.ServiceName, cfg.Log.Env, cfg.Log.Level)

	return bootstrap.NewResolver(ctx, cfg, nil)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
