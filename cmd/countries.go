package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/sw33tLie/covidboard/pkg/format"
	"github.com/sw33tLie/covidboard/pkg/selection"
	"github.com/sw33tLie/covidboard/pkg/stats"
)

// countriesCmd lists countries, optionally filtered and re-sorted.
var countriesCmd = &cobra.Command{
	Use:   "countries",
	Short: "List countries with their totals",
	RunE: func(cmd *cobra.Command, _ []string) error {
		search, _ := cmd.Flags().GetString("search")
		sortBy, _ := cmd.Flags().GetString("sort")
		order, _ := cmd.Flags().GetString("order")
		top, _ := cmd.Flags().GetInt("top")
		raw, _ := cmd.Flags().GetBool("raw")

		if sortBy != "" && !selection.ValidSortKey(sortBy) {
			return fmt.Errorf("invalid sort key %q", sortBy)
		}
		if order != "" && order != "asc" && order != "desc" {
			return fmt.Errorf("invalid order %q, want asc or desc", order)
		}

		gw, err := newGateway(cmd)
		if err != nil {
			return err
		}
		agg, err := gw.FetchAggregate(cmd.Context())
		if err != nil {
			return err
		}

		rows := selection.Sort(selection.Filter(agg.Countries, search), sortBy, order)
		if top > 0 && top < len(rows) {
			rows = rows[:top]
		}
		if len(rows) == 0 {
			fmt.Println(alertStyle.Render(fmt.Sprintf("No countries found for '%s'.", search)))
			return nil
		}
		printCountries(rows, raw)
		return nil
	},
}

func printCountries(rows []stats.CountryRecord, raw bool) {
	count := format.FormatCount
	if raw {
		count = func(n int64) string { return fmt.Sprint(n) }
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "COUNTRY\tCASES\tTODAY\tACTIVE\tRECOVERED\tDEATHS\t")
	for _, c := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t\n",
			c.Country, count(c.Cases), format.FormatDelta(c.TodayCases), count(c.Active), count(c.Recovered), count(c.Deaths))
	}
	w.Flush()
}

func init() {
	rootCmd.AddCommand(countriesCmd)
	countriesCmd.Flags().StringP("search", "s", "", "Only show countries whose name contains this text (case-insensitive)")
	countriesCmd.Flags().String("sort", "", "Sort by country, cases, todayCases, active, recovered or deaths (default: API order)")
	countriesCmd.Flags().String("order", "", "Sort order: asc or desc (default depends on the column)")
	countriesCmd.Flags().IntP("top", "n", 0, "Only show the first N rows (0 for all)")
	countriesCmd.Flags().Bool("raw", false, "Print exact counts instead of abbreviations")
}
