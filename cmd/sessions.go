package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/davzula/blinkwatch/internal/utils"
)

var sessionsLimit int

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List recorded blink history from the local archive",
	Run: func(cmd *cobra.Command, args []string) {
		runSessions(cmd.Context())
	},
}

func init() {
	sessionsCmd.Flags().IntVarP(&sessionsLimit, "limit", "n", 50, "Maximum number of records to show")
	rootCmd.AddCommand(sessionsCmd)
}

func runSessions(ctx context.Context) {
	if Archive == nil {
		utils.Die("No archive database configured", fmt.Errorf("set --db or the POSTGRES_* environment variables"), nil)
	}

	records, err := Archive.ListRecords(ctx, sessionsLimit)
	if err != nil {
		utils.Die("Failed to list records", err, nil)
	}

	if len(records) == 0 {
		fmt.Println("No records found in archive.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "RECORDED\tUSER\tKIND\tRATE\tSTATUS\tTOTAL\tSESSION")
	fmt.Fprintln(w, "--------\t----\t----\t----\t------\t-----\t-------")

	for _, rec := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d/min\t%s\t%d\t%.2fm\n",
			rec.RecordedAt.Local().Format("2006-01-02 15:04"),
			rec.UserName,
			rec.Kind,
			rec.BlinksPerMinute,
			rec.HealthStatus,
			rec.TotalBlinks,
			rec.DurationMinutes,
		)
	}
	w.Flush()
}
