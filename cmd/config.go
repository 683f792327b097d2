package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/termchat/termchat/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func configPath() (string, error) {
	return config.Path()
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	path, err := configPath()
	if err != nil {
		return err
	}

	exists := ""
	if _, err := os.Stat(path); os.IsNotExist(err) {
		exists = " (not created yet)"
	}

	fmt.Printf("Config file:       %s%s\n", path, exists)
	fmt.Printf("Ollama URL:        %s\n", cfg.OllamaURL)
	fmt.Printf("Default model:     %s\n", orNone(cfg.DefaultModel))
	fmt.Printf("Conversations dir: %s\n", cfg.ConversationsDir)
	fmt.Printf("Auto-save:         %t\n", cfg.AutoSave)
	fmt.Printf("System prompt:     %s\n", orNone(cfg.SystemPrompt))
	fmt.Printf("seed:              %s\n", optInt(cfg.Options.Seed))
	fmt.Printf("temperature:       %s\n", optFloat(cfg.Options.Temperature))
	fmt.Printf("top_p:             %s\n", optFloat(cfg.Options.TopP))
	fmt.Printf("num_ctx:           %s\n", optInt(cfg.Options.NumCtx))
	return nil
}
