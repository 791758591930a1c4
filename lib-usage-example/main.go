package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/sw33tLie/covidboard/pkg/charts"
	"github.com/sw33tLie/covidboard/pkg/format"
	"github.com/sw33tLie/covidboard/pkg/gateway"
	"github.com/sw33tLie/covidboard/pkg/selection"
)

func main() {
	// Usage: go run *.go -search "land" -mode doughnut

	searchFlag := flag.String("search", "", "Only keep countries whose name contains this text")
	modeFlag := flag.String("mode", "bar", "Chart mode: bar, line or doughnut")
	topFlag := flag.Int("top", 5, "Number of countries to chart")

	// Parse the command-line flags
	flag.Parse()

	client, err := gateway.New(gateway.Config{})
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	agg, err := client.FetchAggregate(context.Background())
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	fmt.Println("World:", format.FormatCount(agg.Global.Cases), "cases")

	rows := selection.Filter(agg.Countries, *searchFlag)
	if len(rows) > *topFlag {
		rows = rows[:*topFlag]
	}
	for _, c := range rows {
		fmt.Println(c.Country, format.FormatCount(c.Cases), format.FormatDelta(c.TodayCases))
	}

	// The same config the dashboard hands to Chart.js
	cfg, err := charts.Build(rows, charts.ParseMode(*modeFlag))
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	fmt.Println(string(cfg))
}
