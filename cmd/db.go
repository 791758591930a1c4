package cmd

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/sw33tLie/covidboard/pkg/format"
	"github.com/sw33tLie/covidboard/pkg/storage"
)

var dbPath string

// dbCmd represents the db command
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Record and compare snapshots in a local SQLite database",
}

// openExistingDB opens the database, failing if the file does not exist yet.
func openExistingDB() (*storage.DB, error) {
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("database file not found: %s", dbPath)
	}
	return storage.Open(dbPath)
}

// snapshotCmd fetches the current data and stores it.
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Fetch the current data and save it as a new snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		gw, err := newGateway(cmd)
		if err != nil {
			return err
		}
		agg, err := gw.FetchAggregate(cmd.Context())
		if err != nil {
			return err
		}

		db, err := storage.Open(dbPath)
		if err != nil {
			return err
		}
		defer db.Close()
		rec, err := storage.NewRecorder(db, dbPath)
		if err != nil {
			return err
		}
		id, err := rec.Record(cmd.Context(), agg)
		if err != nil {
			return err
		}
		fmt.Printf("Saved snapshot #%d (%d countries)\n", id, len(agg.Countries))
		return nil
	},
}

// listCmd prints the stored snapshots.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored snapshots, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		db, err := openExistingDB()
		if err != nil {
			return err
		}
		defer db.Close()

		snaps, err := db.ListSnapshots(context.Background(), limit)
		if err != nil {
			return err
		}
		if len(snaps) == 0 {
			fmt.Println("No snapshots in the database.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight)
		fmt.Fprintln(w, "ID\tFETCHED\tUPSTREAM UPDATE\tCOUNTRIES\tCASES\t")
		for _, s := range snaps {
			fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t\n",
				s.ID, s.FetchedAt.Format("2006-01-02 15:04:05"), format.FormatTimestamp(s.Updated), s.CountryCount, format.FormatCount(s.GlobalCases))
		}
		return w.Flush()
	},
}

// shellCmd opens sqlite3 on the database after a short overview of what is stored.
var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Open an interactive sqlite3 shell on the snapshot database",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openExistingDB()
		if err != nil {
			return err
		}
		snapshots, rows, err := db.TableCounts(cmd.Context())
		db.Close()
		if err != nil {
			return err
		}

		sqlitePath, err := exec.LookPath("sqlite3")
		if err != nil {
			return fmt.Errorf("sqlite3 not found in PATH, install it to use db shell")
		}

		fmt.Println(titleStyle.Render(dbPath))
		fmt.Println(mutedStyle.Render(fmt.Sprintf("snapshots: %d rows, snapshot_countries: %d rows", snapshots, rows)))
		fmt.Println(mutedStyle.Render("Try: SELECT id, fetched_at FROM snapshots ORDER BY id DESC LIMIT 5;"))
		fmt.Println()

		c := exec.CommandContext(cmd.Context(), sqlitePath, "-header", "-column", dbPath)
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		return c.Run()
	},
}

func init() {
	rootCmd.AddCommand(dbCmd)
	dbCmd.AddCommand(snapshotCmd)
	dbCmd.AddCommand(listCmd)
	dbCmd.AddCommand(shellCmd)
	dbCmd.PersistentFlags().StringVar(&dbPath, "dbpath", "covidboard.sqlite", "Path to SQLite DB file")
	listCmd.Flags().Int("limit", 50, "Number of snapshots to show")
}
