package cmd

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/sw33tLie/covidboard/pkg/storage"
)

var diffCmd = &cobra.Command{
	Use:   "diff [older-id newer-id]",
	Short: "Show per-country changes between two snapshots (default: the latest two)",
	Args:  cobra.RangeArgs(0, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		if len(args) == 1 {
			return fmt.Errorf("diff takes either no ids or two ids")
		}

		db, err := openExistingDB()
		if err != nil {
			return err
		}
		defer db.Close()

		var older, newer int64
		if len(args) == 2 {
			if older, err = strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("invalid snapshot id %q", args[0])
			}
			if newer, err = strconv.ParseInt(args[1], 10, 64); err != nil {
				return fmt.Errorf("invalid snapshot id %q", args[1])
			}
		} else {
			snaps, err := db.ListSnapshots(cmd.Context(), 2)
			if err != nil {
				return err
			}
			if len(snaps) < 2 {
				return fmt.Errorf("need at least two snapshots to compare, found %d", len(snaps))
			}
			older, newer = snaps[1].ID, snaps[0].ID
		}

		deltas, err := db.DiffSnapshots(cmd.Context(), older, newer)
		if err != nil {
			return err
		}

		fmt.Println(titleStyle.Render(fmt.Sprintf("Snapshot #%d -> #%d", older, newer)))
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		shown := 0
		for _, d := range deltas {
			if d.Kind == storage.DeltaUnchanged && !all {
				continue
			}
			fmt.Fprintf(w, "%-9s\t%s\tcases=%+d\tdeaths=%+d\trecovered=%+d\n", d.Kind, d.Country, d.Cases, d.Deaths, d.Recovered)
			shown++
		}
		w.Flush()
		if shown == 0 {
			fmt.Println("No changes.")
		}
		return nil
	},
}

func init() {
	dbCmd.AddCommand(diffCmd)
	diffCmd.Flags().Bool("all", false, "Also list unchanged countries")
}
