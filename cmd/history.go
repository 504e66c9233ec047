package cmd

import (
	"fmt"

	"github.com/klemjul/novachat/internal/app"
	"github.com/klemjul/novachat/internal/chat"
	"github.com/klemjul/novachat/internal/ui"
	"github.com/spf13/cobra"
)

const (
	MsgHistoryCleared = "History cleared."
	MsgHistoryEmpty   = "No history."
)

func HistoryCommand(app app.App) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Print the stored conversation.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, app)
		},
	}
	historyCmd.Flags().Bool("clear", false, "Delete the stored conversation instead.")

	return historyCmd
}

func runHistory(cmd *cobra.Command, app app.App) error {
	logger, closeLog, err := chatLogger(app)
	if err != nil {
		return err
	}
	defer closeLog()

	store, err := openStore(app)
	if err != nil {
		return err
	}
	defer store.Close()

	history := chat.NewHistory(store, logger)
	out := cmd.OutOrStdout()

	if clearHistory, _ := cmd.Flags().GetBool("clear"); clearHistory {
		if err := history.Clear(); err != nil {
			return fmt.Errorf("failed to clear history: %v", err)
		}
		fmt.Fprintln(out, MsgHistoryCleared)
		return nil
	}

	messages := history.Load()
	if len(messages) == 0 {
		fmt.Fprintln(out, MsgHistoryEmpty)
		return nil
	}

	transcript := ui.NewPrintTranscript(out, markdownRenderer(app))
	for _, msg := range messages {
		transcript.Append(chat.Entry{Message: msg})
	}
	return nil
}
