package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/davzula/blinkwatch/internal/utils"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear the local session archive",
	Long:  "Drops the archive tables. Cloud records are never touched.",
	Run: func(cmd *cobra.Command, args []string) {
		if Archive == nil {
			utils.Die("No archive database configured", fmt.Errorf("set --db or the POSTGRES_* environment variables"), nil)
		}

		reader := bufio.NewReader(os.Stdin)
		if !confirm(reader, "⚠️  Are you sure you want to DROP all archived blink history?") {
			fmt.Println("Aborted.")
			return
		}

		fmt.Println("🗑️  Clearing archive...")
		if err := Archive.Reset(cmd.Context()); err != nil {
			utils.Die("Failed to reset archive", err, nil)
		}
		fmt.Println("✨ Archive cleared.")
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)
}

func confirm(r *bufio.Reader, prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	res, _ := r.ReadString('\n')
	res = strings.TrimSpace(strings.ToLower(res))
	return res == "y" || res == "yes"
}
