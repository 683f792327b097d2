package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/termchat/termchat/internal/config"
	"github.com/termchat/termchat/internal/export"
	"github.com/termchat/termchat/internal/store"
)

var (
	exportFormat   string
	exportOutput   string
	exportWrap     int
	exportNoHeader bool
)

var exportCmd = &cobra.Command{
	Use:   "export <name>",
	Short: "Export a saved conversation as text, markdown, or HTML",
	Long: `Export a saved conversation to stdout or a file.

Examples:
  termchat export my-chat                    # plain text to stdout
  termchat export my-chat -f markdown
  termchat export my-chat -f html -o chat.html
  termchat export my-chat --wrap 100`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg, err := config.Load()
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		return store.New(cfg.ConversationsDir).Names(), cobra.ShellCompDirectiveNoFileComp
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "text", "Output format: text, markdown, html")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Write to file instead of stdout")
	exportCmd.Flags().IntVar(&exportWrap, "wrap", 0, "Wrap text output at this column (text format only)")
	exportCmd.Flags().BoolVar(&exportNoHeader, "no-header", false, "Omit the model and system prompt header")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	doc, err := store.New(cfg.ConversationsDir).Read(args[0])
	if err != nil {
		return err
	}

	out, err := export.Convert(doc, export.Format(exportFormat), export.Options{
		Header: !exportNoHeader,
		Wrap:   exportWrap,
	})
	if err != nil {
		return err
	}

	if exportOutput == "" {
		fmt.Print(out)
		return nil
	}
	if err := os.WriteFile(exportOutput, []byte(out), 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	fmt.Printf("Exported to %s\n", exportOutput)
	return nil
}
