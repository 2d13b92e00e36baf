package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"nhsrag/internal/app"
	"nhsrag/internal/config"
	"nhsrag/internal/domain"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		cfgPath string
		query   string
		model   string
		topK    int
		source  string
	)

	cmd := &cobra.Command{
		Use:           "nhsrag",
		Short:         "Query the NHS health-conditions knowledge base",
		Long:          "Ask a natural-language question and stream a grounded answer with citations from trusted NHS health condition sources.",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()

			var cfg *config.AppConfig
			var err error
			if cfgPath == "" {
				cfg, _, err = config.LoadDefault()
			} else {
				cfg, err = config.Load(cfgPath)
			}
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if model == "" {
				model = cfg.Defaults.Model
			}
			if topK == 0 {
				topK = cfg.Defaults.TopK
			}
			if source == "" {
				source = cfg.Defaults.Source
			}

			log, err := zap.NewProduction()
			if err != nil {
				return err
			}
			defer log.Sync()

			pipe, err := app.BuildPipeline(cfg, log)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			fmt.Printf("=== Query: %s ===\n", query)
			fmt.Printf("Source: %s\n", source)
			fmt.Printf("LLM Model: %s\n", model)
			fmt.Print("\n=== Response ===\n\n")

			var citations []domain.Citation
			for chunk := range pipe.Run(ctx, query, model, topK, source) {
				fmt.Print(chunk.Text)
				citations = chunk.Citations
			}
			fmt.Println()
			printSources(citations)
			return nil
		},
	}

	cmd.Flags().StringVar(&cfgPath, "config", "", "path to YAML config file (optional)")
	cmd.Flags().StringVarP(&query, "query", "q", "What are the symptoms of ADHD in adults?", "the query text")
	cmd.Flags().StringVarP(&model, "model", "m", "", "the LLM model to use")
	cmd.Flags().IntVarP(&topK, "top-k", "k", 0, "number of passages to retrieve")
	cmd.Flags().StringVarP(&source, "source", "s", "", "information source to query")
	return cmd
}

func printSources(citations []domain.Citation) {
	if len(citations) == 0 {
		return
	}
	fmt.Print("\n=== Sources ===\n\n")
	for i, c := range citations {
		fmt.Printf("Source %d:\n", i+1)
		fmt.Printf("  Section: %s\n", c.CleanSection)
		if c.URL != "" {
			fmt.Printf("  URL: %s\n", c.URL)
		}
		fmt.Println()
	}
}
