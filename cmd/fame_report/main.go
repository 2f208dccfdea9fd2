package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"creator-growth/internal/config"
	"creator-growth/internal/domain"
	"creator-growth/internal/llm"
	"creator-growth/internal/pdf"
	"creator-growth/internal/service"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:           "fame_report",
		Short:         "Run the Fame Score pipeline from the command line",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log pipeline steps to stderr")
	newLogger := func() *zap.Logger {
		if !verbose {
			return zap.NewNop()
		}
		logger, err := zap.NewDevelopment()
		if err != nil {
			return zap.NewNop()
		}
		return logger
	}

	root.AddCommand(newAnalyzeCmd(newLogger), newProductsCmd())
	return root
}

type analyzeOptions struct {
	profilePath string
	userID      string
	outPDF      string
	outJSON     string
}

func newAnalyzeCmd(newLogger func() *zap.Logger) *cobra.Command {
	var opts analyzeOptions
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a creator profile and write the JSON result and PDF report",
		Long: `Analyze reads a creator profile (JSON) and runs the full pipeline.

Providers are taken from the environment (ANTHROPIC_API_KEY, OPENAI_API_KEY,
GEMINI_API_KEY, LLM_API_KEY). Without credentials the command runs offline
with the canned market research.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAnalyze(cmd, opts, newLogger())
		},
	}
	cmd.Flags().StringVar(&opts.profilePath, "profile", "", "path to the creator profile JSON")
	cmd.Flags().StringVar(&opts.userID, "user-id", "cli", "user id recorded in the result")
	cmd.Flags().StringVar(&opts.outPDF, "out", "fame-report.pdf", "where to write the PDF report (empty to skip)")
	cmd.Flags().StringVar(&opts.outJSON, "json", "", "where to write the JSON result (default stdout)")
	_ = cmd.MarkFlagRequired("profile")
	return cmd
}

// offlineClient falla siempre; el pipeline cae al research y narrativa canned.
type offlineClient struct{}

func (offlineClient) Generate(context.Context, string, string) (string, error) {
	return "", llm.ErrNoProviderConfigured
}

func runAnalyze(cmd *cobra.Command, opts analyzeOptions, logger *zap.Logger) error {
	raw, err := os.ReadFile(opts.profilePath)
	if err != nil {
		return fmt.Errorf("read profile: %w", err)
	}
	var profile domain.CreatorProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return fmt.Errorf("decode profile: %w", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	providers := llm.ProvidersFromConfig(ctx, cfg, logger)
	if len(providers) == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "no llm provider configured, running offline")
		providers = []llm.Provider{{Name: "offline", Client: offlineClient{}}}
	}

	svc := service.NewAnalysisService(service.AnalysisDeps{
		Providers: providers,
		Research:  service.NewResearchService(providers, cfg.ResearchTimeout, logger),
		Narrative: service.NewNarrativeWriter(providers, cfg.ResearchTimeout, logger),
		Logger:    logger,
	})
	result, err := svc.Analyze(ctx, service.AnalyzeInput{UserID: opts.userID, Profile: profile})
	if err != nil {
		return err
	}

	if opts.outPDF != "" {
		doc, err := pdf.NewRenderer("Fame Score").Render(result)
		if err != nil {
			return err
		}
		if err := os.WriteFile(opts.outPDF, doc, 0o644); err != nil {
			return fmt.Errorf("write pdf: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "report written to %s\n", opts.outPDF)
	}

	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if opts.outJSON == "" {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
		return err
	}
	return os.WriteFile(opts.outJSON, encoded, 0o644)
}

func newProductsCmd() *cobra.Command {
	var engagement float64
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Print the commercial viability of every catalog product",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if engagement < 0 || engagement > 1 {
				return fmt.Errorf("engagement must be between 0 and 1")
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tDEMAND\tCOMPETITION\tPRICE\tSCORE")
			for _, p := range service.ScoreCatalog(nil, engagement) {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\n", p.ProductID, p.Name, p.MarketDemand, p.Competition, p.PriceRange, p.CommercialScore)
			}
			return w.Flush()
		},
	}
	cmd.Flags().Float64Var(&engagement, "engagement", 0, "audience engagement signal between 0 and 1")
	return cmd
}
