package main

import (
	"flag"
	"log"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"nhsrag/internal/app"
	"nhsrag/internal/config"
	"nhsrag/internal/tui"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	var model string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/nhsrag/config.yaml if not provided)")
	flag.StringVar(&model, "model", "", "LLM model to use (overrides config default)")
	flag.Parse()

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if model == "" {
		model = cfg.Defaults.Model
	}

	// The TUI owns the terminal, so logs go to a file instead of stderr.
	zapCfg := zap.NewProductionConfig()
	zapCfg.OutputPaths = []string{"nhsrag-chat.log"}
	logger, err := zapCfg.Build()
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	pipe, err := app.BuildPipeline(cfg, logger)
	if err != nil {
		log.Fatalf("failed to build pipeline: %v", err)
	}

	m := tui.New(pipe, tui.Options{
		Model:  model,
		TopK:   cfg.Defaults.TopK,
		Source: cfg.Defaults.Source,
	})
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		log.Fatal(err)
	}
}
