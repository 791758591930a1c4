package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/sw33tLie/covidboard/pkg/charts"
	"github.com/sw33tLie/covidboard/pkg/format"
	"github.com/sw33tLie/covidboard/pkg/gateway"
)

var historyCmd = &cobra.Command{
	Use:   "history [country]",
	Short: "Show the daily timeline of a country, or of the world without an argument",
	RunE: func(cmd *cobra.Command, args []string) error {
		days, _ := cmd.Flags().GetInt("days")
		pngPath, _ := cmd.Flags().GetString("png")
		name := strings.Join(args, " ")
		if name == "" {
			name = "all"
		}

		gw, err := newGateway(cmd)
		if err != nil {
			return err
		}
		series, err := gw.FetchHistory(cmd.Context(), name, days)
		if err != nil {
			return notFoundOr(err, name)
		}
		if len(series.Points) == 0 {
			fmt.Printf("No history available for %s.\n", series.Country)
			return nil
		}

		if pngPath != "" {
			f, err := os.Create(pngPath)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := charts.RenderTimelinePNG(f, series); err != nil {
				return err
			}
			fmt.Printf("Wrote %s\n", pngPath)
			return nil
		}

		daily := gateway.DailyNew(series)
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight)
		fmt.Fprintln(w, "DATE\tCASES\tNEW\tDEATHS\tRECOVERED\t")
		for i, p := range series.Points {
			newCases := "-"
			if i > 0 {
				newCases = format.FormatDelta(daily[i-1].Cases)
			}
			fmt.Fprintf(w, "%s\t%d\t%s\t%d\t%d\t\n",
				p.Date.Format("2006-01-02"), p.Cases, newCases, p.Deaths, p.Recovered)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("days", "d", gateway.DefaultHistoryDays, "Number of days to show")
	historyCmd.Flags().String("png", "", "Write the timeline as a PNG image to this file instead of printing it")
}
