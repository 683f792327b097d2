package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/termchat/termchat/internal/config"
	"github.com/termchat/termchat/internal/usage"
)

var usageDays int

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show per-model token usage from past sessions",
	Long: `Show aggregated token usage recorded locally after each completed
response.

Examples:
  termchat usage             # last 30 days
  termchat usage --days 7
  termchat usage --days 0    # all time`,
	RunE: runUsage,
}

func init() {
	rootCmd.AddCommand(usageCmd)
	usageCmd.Flags().IntVar(&usageDays, "days", 30, "Days of history to include (0 = all)")
}

func runUsage(cmd *cobra.Command, args []string) error {
	path, err := config.UsageDBPath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Println("No usage recorded yet.")
		return nil
	}

	log, err := usage.Open(path)
	if err != nil {
		return err
	}
	defer log.Close()

	rows, err := log.Summary(cmd.Context(), usageDays)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Println("No usage recorded for that period.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(w, "MODEL\t TURNS\t PROMPT\t GENERATED\t TIME\t\n")
	var turns, prompt, eval int
	for _, r := range rows {
		turns += r.Turns
		prompt += r.PromptTokens
		eval += r.EvalTokens
		fmt.Fprintf(w, "%s\t %d\t %s\t %s\t %.0fs\t\n",
			r.Model, r.Turns, formatTokens(r.PromptTokens), formatTokens(r.EvalTokens),
			r.TotalDuration.Seconds())
	}
	fmt.Fprintf(w, "Total\t %d\t %s\t %s\t\t\n", turns, formatTokens(prompt), formatTokens(eval))
	return w.Flush()
}

// formatTokens formats a token count in human-readable form (e.g., 1.5M, 384k)
func formatTokens(n int) string {
	if n >= 1_000_000 {
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	}
	if n >= 1_000 {
		return fmt.Sprintf("%.1fk", float64(n)/1_000)
	}
	return fmt.Sprintf("%d", n)
}
