package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"airtraffic/statboard/internal/analytics"
	"airtraffic/statboard/internal/common"
	"airtraffic/statboard/internal/config"
	"airtraffic/statboard/internal/constants"
	"airtraffic/statboard/internal/db"
	"airtraffic/statboard/internal/db/repositories"
	"airtraffic/statboard/internal/frames"
	"airtraffic/statboard/internal/logging"
	"airtraffic/statboard/internal/metrics"
	"airtraffic/statboard/internal/services"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/go-gota/gota/dataframe"
	"github.com/olekukonko/tablewriter"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// report prints the statistics dashboards and the ranking comparison to
// the terminal.
func main() {
	mixYear := flag.String("mix-year", constants.Year2023, "year of the traffic mix summary")
	flag.Parse()

	cfg := config.Load()
	logging.SetLogger(zap.NewNop().Sugar())

	conns, err := db.Open(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to store: %v", err)
	}
	defer conns.Close()

	m := metrics.NewMetricsRegistry(prometheus.NewRegistry())
	tables := services.NewTableService(repositories.NewTableRepository(conns.SQL), common.NewCacheService(0, 0), m)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	stats := services.NewStatsService(tables, m)
	for _, flow := range services.Flows {
		fs, err := stats.FlowStatistics(ctx, flow)
		if err != nil {
			color.Red("%s: %v", flow, err)
			continue
		}
		color.Cyan("\n=== %s passengers ===", fs.Label)
		fmt.Printf("Airports: %d   2023: %s   2022: %s   Growth: %s\n",
			fs.Airports,
			humanize.Comma(int64(fs.Total2023)),
			humanize.Comma(int64(fs.Total2022)),
			growthText(fs.Growth))
		renderFrame(fs.Table)
		for _, d := range fs.Distributions {
			fmt.Printf("  %s: %s, %s\n", d.Year, d.Skew, d.Kurtosis)
		}
	}

	rc, err := services.NewTrafficService(tables, m).RankComparison(ctx)
	if err != nil {
		color.Red("ranking comparison: %v", err)
	} else {
		color.Yellow("\nTop %d airports, 2023 vs 2022", services.ComparisonRankLimit)
		renderFrame(rc.Top)
		renderFrame(rc.Statistics)
		if rc.TopGrowth != nil {
			color.Green("Highest growth: %s (%s)", rc.TopGrowth.Airport, analytics.FormatPercent(rc.TopGrowth.Value))
		}
		if rc.LargestDrop != nil {
			color.Red("Largest rank drop: %s (%+.0f)", rc.LargestDrop.Airport, rc.LargestDrop.Value)
		}
	}

	mix, err := services.NewMixService(tables, m).TrafficMix(ctx, *mixYear, "", "")
	if err != nil {
		color.Red("traffic mix: %v", err)
		return
	}
	color.Yellow("\nTraffic mix %s", mix.Year)
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Category", "Airports"})
	for _, cat := range analytics.Categories {
		table.Append([]string{string(cat), fmt.Sprintf("%d", mix.Summary.CategoryCounts[cat])})
	}
	table.SetFooter([]string{"Domestic / International",
		fmt.Sprintf("%.1f%% / %.1f%%", mix.Summary.PctDomestic, mix.Summary.PctInternational)})
	table.Render()
}

func renderFrame(df dataframe.DataFrame) {
	if frames.IsEmpty(df) {
		color.Yellow(constants.MsgNoData)
		return
	}
	records := df.Records()
	table := tablewriter.NewWriter(os.Stdout)
	table.SetAutoFormatHeaders(false)
	table.SetHeader(records[0])
	for _, row := range records[1:] {
		for i, cell := range row {
			if cell == "NaN" {
				row[i] = analytics.MissingText
			}
		}
		table.Append(row)
	}
	table.Render()
}

func growthText(v float64) string {
	s := analytics.FormatPercent(v)
	if v > 0 {
		return color.GreenString("+" + s)
	}
	if v < 0 {
		return color.RedString(s)
	}
	return s
}
