package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

var (
	flagModel  string
	flagURL    string
	flagSystem string
	showStats  bool
)

var rootCmd = &cobra.Command{
	Use:   "termchat",
	Short: "Chat with local Ollama models in your terminal",
	Long: `termchat is an interactive terminal chat client for a local Ollama
server, with streaming markdown rendering, conversation save/load, and
per-turn generation stats.

Examples:
  termchat                          # start a chat with the default model
  termchat -m llama3.2              # pick the model explicitly
  termchat --stats                  # show stats after every response
  termchat models                   # list installed models
  termchat export my-chat -f html   # export a saved conversation`,
	CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
	RunE:              runREPL,
}

func init() {
	rootCmd.Version = Version
	rootCmd.Flags().StringVarP(&flagModel, "model", "m", "", "Model to chat with (overrides config)")
	rootCmd.Flags().StringVar(&flagURL, "url", "", "Ollama server URL (overrides config)")
	rootCmd.Flags().StringVar(&flagSystem, "system", "", "System prompt for this session")
	rootCmd.Flags().BoolVar(&showStats, "stats", false, "Show generation statistics after each response")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
