package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/staffplan/internal/cli/formatter"
)

func newHistoryCmd(app *App) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent recommendation requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := app.History.ListRecent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(records)
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatHistory(records, time.Now()))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of entries to show")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON, including the stored responses")

	return cmd
}
