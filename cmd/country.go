package cmd

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/sw33tLie/covidboard/pkg/format"
	"github.com/sw33tLie/covidboard/pkg/gateway"
	"github.com/sw33tLie/covidboard/pkg/stats"
)

var countryCmd = &cobra.Command{
	Use:   "country <name>",
	Short: "Show the statistics of one country",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.Join(args, " ")
		gw, err := newGateway(cmd)
		if err != nil {
			return err
		}
		loc, err := displayLocation()
		if err != nil {
			return err
		}

		c, err := gw.FetchCountry(cmd.Context(), name)
		if err != nil {
			return notFoundOr(err, name)
		}
		printCountry(c, loc)
		return nil
	},
}

// notFoundOr turns an upstream 404 into a friendlier error.
func notFoundOr(err error, name string) error {
	var fe *gateway.FetchError
	if errors.As(err, &fe) && fe.StatusCode == http.StatusNotFound {
		return fmt.Errorf("country not found: %s", name)
	}
	return err
}

func printCountry(c stats.CountryRecord, loc *time.Location) {
	title := c.Country
	if c.Continent != "" {
		title += " (" + c.Continent + ")"
	}
	fmt.Println(titleStyle.Render(title))
	fmt.Println(mutedStyle.Render("Last updated: " + format.FormatTimestampIn(c.Updated, loc)))
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight)
	fmt.Fprintf(w, "Cases\t%s\t%s\t\n", format.FormatCount(c.Cases), todayDetail(c.TodayCases))
	fmt.Fprintf(w, "Active\t%s\t%s of cases\t\n", format.FormatCount(c.Active), format.FormatShare(c.Active, c.Cases))
	fmt.Fprintf(w, "Recovered\t%s\t%s\t\n", format.FormatCount(c.Recovered), todayDetail(c.TodayRecovered))
	fmt.Fprintf(w, "Deaths\t%s\t%s\t\n", format.FormatCount(c.Deaths), todayDetail(c.TodayDeaths))
	fmt.Fprintf(w, "Critical\t%s\t%s of cases\t\n", format.FormatCount(c.Critical), format.FormatShare(c.Critical, c.Cases))
	fmt.Fprintf(w, "Tests\t%s\t%s per million\t\n", format.FormatCount(c.Tests), format.FormatPerMillion(c.TestsPerOneMillion))
	fmt.Fprintf(w, "Population\t%s\t\t\n", format.FormatCount(c.Population))
	w.Flush()
}

func init() {
	rootCmd.AddCommand(countryCmd)
}
