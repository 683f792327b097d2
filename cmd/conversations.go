package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/termchat/termchat/internal/config"
	"github.com/termchat/termchat/internal/store"
)

var conversationsCmd = &cobra.Command{
	Use:     "conversations",
	Aliases: []string{"ls"},
	Short:   "List saved conversations",
	RunE:    runConversations,
}

func init() {
	rootCmd.AddCommand(conversationsCmd)
}

func runConversations(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	st := store.New(cfg.ConversationsDir)
	entries, err := st.List()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Printf("No saved conversations in %s\n", st.Dir())
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "NAME\tMODIFIED\n")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\n", e.Name, e.ModTime.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}
