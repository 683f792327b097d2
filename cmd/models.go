package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/termchat/termchat/internal/config"
	"github.com/termchat/termchat/internal/ollama"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List models installed on the Ollama server",
	RunE:  runModels,
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}

func runModels(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if flagURL != "" {
		cfg.OllamaURL = flagURL
	}

	ctx := cmd.Context()
	client := ollama.NewClient(cfg.OllamaURL)
	if !client.Available(ctx) {
		return fmt.Errorf("cannot reach Ollama at %s (is `ollama serve` running?)", cfg.OllamaURL)
	}

	models, err := client.ListModels(ctx)
	if err != nil {
		return err
	}
	if len(models) == 0 {
		fmt.Println("No models installed.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "NAME\tSIZE\tMODIFIED\n")
	for _, m := range models {
		fmt.Fprintf(w, "%s\t%s\t%s\n", m.Name, formatSize(m.Size), m.ModifiedAt.Format("2006-01-02"))
	}
	return w.Flush()
}
