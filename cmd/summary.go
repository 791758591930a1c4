package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/sw33tLie/covidboard/pkg/format"
)

// summaryCmd represents the summary command
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Prints the global COVID-19 totals.",
	Long:  "Fetches the worldwide summary and the country list and prints the global totals.",
	RunE: func(cmd *cobra.Command, args []string) error {
		gw, err := newGateway(cmd)
		if err != nil {
			return err
		}
		loc, err := displayLocation()
		if err != nil {
			return err
		}

		agg, err := gw.FetchAggregate(cmd.Context())
		if err != nil {
			return err
		}
		gs := agg.Global

		fmt.Println(titleStyle.Render("Global COVID-19 Statistics"))
		fmt.Println(mutedStyle.Render("Last updated: " + format.FormatTimestampIn(gs.Updated, loc)))
		fmt.Println()

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight)
		fmt.Fprintln(w, "METRIC\tTOTAL\tDETAIL\t")
		fmt.Fprintf(w, "Cases\t%s\t%s\t\n", format.FormatCount(gs.Cases), todayDetail(gs.TodayCases))
		fmt.Fprintf(w, "Active\t%s\t%s of cases\t\n", format.FormatCount(gs.Active), format.FormatShare(gs.Active, gs.Cases))
		fmt.Fprintf(w, "Recovered\t%s\t%s\t\n", format.FormatCount(gs.Recovered), todayDetail(gs.TodayRecovered))
		fmt.Fprintf(w, "Deaths\t%s\t%s\t\n", format.FormatCount(gs.Deaths), todayDetail(gs.TodayDeaths))
		fmt.Fprintf(w, "Critical\t%s\t%s of cases\t\n", format.FormatCount(gs.Critical), format.FormatShare(gs.Critical, gs.Cases))
		fmt.Fprintf(w, "Tests\t%s\t%s per million\t\n", format.FormatCount(gs.Tests), format.FormatPerMillion(gs.TestsPerOneMillion))
		fmt.Fprintln(w, " \t \t \t")
		fmt.Fprintf(w, "Countries\t%d\t\t\n", len(agg.Countries))

		return w.Flush()
	},
}

func todayDetail(n int64) string {
	if d := format.FormatDelta(n); d != "" {
		return d + " today"
	}
	return "-"
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}
