// Command gridscopectl inspects and controls the forecast model service
// from the terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/gridscope/gridscope/pkg/common"
	"github.com/gridscope/gridscope/pkg/forecast"
	"github.com/gridscope/gridscope/pkg/scoring"
	"github.com/gridscope/gridscope/pkg/trend"
	"github.com/gridscope/gridscope/pkg/types"
	"github.com/gridscope/gridscope/pkg/zones"
)

var (
	apiBase = flag.String("api-base", "http://localhost:8001", "Base URL of the forecast model service (or set GRIDSCOPE_API_BASE)")
	timeout = flag.Duration("timeout", 10*time.Second, "Request timeout")
	version = flag.Bool("version", false, "Show version")
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: %s [flags] <command>

Commands:
  models           list available forecast models
  current          show the active model
  select <id>      make a model active
  metrics          show error metrics for the active model
  trend [zone]     show the demand trend for a zone (default STATEWIDE)
  zones            list CAISO zones

Flags:
`, os.Args[0])
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if *version {
		fmt.Println("gridscopectl " + common.Version())
		return
	}

	if flag.NArg() < 1 {
		usage()
		os.Exit(1)
	}

	if *apiBase == "http://localhost:8001" && os.Getenv("GRIDSCOPE_API_BASE") != "" {
		*apiBase = os.Getenv("GRIDSCOPE_API_BASE")
	}

	client := forecast.New(*apiBase, *timeout, time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), *timeout*4)
	defer cancel()

	var err error
	switch cmd := flag.Arg(0); cmd {
	case "models":
		err = runModels(ctx, client)
	case "current":
		err = runCurrent(ctx, client)
	case "select":
		if flag.NArg() != 2 {
			usage()
			os.Exit(1)
		}
		err = runSelect(ctx, client, flag.Arg(1))
	case "metrics":
		err = runMetrics(ctx, client)
	case "trend":
		zone := zones.Statewide
		if flag.NArg() > 1 {
			zone = flag.Arg(1)
		}
		err = runTrend(ctx, client, zone)
	case "zones":
		err = runZones()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		usage()
		os.Exit(1)
	}
	if err != nil {
		color.Red("error: %v", err)
		os.Exit(1)
	}
}

func runModels(ctx context.Context, client *forecast.Client) error {
	models, err := client.Models(ctx)
	if err != nil {
		return err
	}
	for _, m := range models {
		marker := "  "
		line := fmt.Sprintf("%-16s %-24s accuracy %.1f%%  trained %s", m.ModelID, m.Name, m.Accuracy*100, m.TrainingDate)
		if m.IsActive {
			marker = color.GreenString("* ")
			line = color.New(color.Bold).Sprint(line)
		}
		fmt.Println(marker + line)
	}
	return nil
}

func runCurrent(ctx context.Context, client *forecast.Client) error {
	current, err := client.CurrentModel(ctx)
	if err != nil {
		return err
	}
	fmt.Println(current)
	return nil
}

func runSelect(ctx context.Context, client *forecast.Client, modelID string) error {
	changed, err := client.SelectModel(ctx, modelID)
	if err != nil {
		return err
	}
	if !changed {
		fmt.Printf("%s is already active\n", modelID)
		return nil
	}
	color.Green("switched active model to %s", modelID)
	return nil
}

// tierColor maps a quality tier label to its badge color.
func tierColor(label string) *color.Color {
	switch label {
	case "Excellent":
		return color.New(color.FgGreen)
	case "Very Good":
		return color.New(color.FgCyan)
	case "Good":
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed)
	}
}

func runMetrics(ctx context.Context, client *forecast.Client) error {
	m, err := client.CurrentMetrics(ctx)
	if err != nil {
		return err
	}
	a := scoring.Assess(m)

	fmt.Printf("MAE   %10.2f MW\n", m.MAE)
	fmt.Printf("RMSE  %10.2f MW\n", m.RMSE)
	fmt.Printf("MAPE  %10.2f %%   %s\n", m.MAPE, tierColor(a.MAPERating).Sprint(a.MAPERating))
	fmt.Printf("R²    %10.4f      %s\n", m.R2, tierColor(a.R2Rating).Sprint(a.R2Rating))
	fmt.Printf("Overall: %s\n", tierColor(a.OverallRating).Sprint(a.OverallRating))
	if !m.LastUpdated.IsZero() {
		fmt.Printf("Updated %s\n", humanize.Time(m.LastUpdated))
	}
	return nil
}

func runTrend(ctx context.Context, client *forecast.Client, zoneKey string) error {
	z, ok := zones.Get(zoneKey)
	if !ok {
		return fmt.Errorf("unknown zone: %s", zoneKey)
	}

	t, err := client.DemandTrend(ctx, zoneKey)
	if err != nil {
		return err
	}
	now := time.Now()
	s := trend.Summarize(t, now)

	directionColor := color.New(color.Faint)
	switch t.Direction {
	case types.TrendRising:
		directionColor = color.New(color.FgGreen)
	case types.TrendFalling:
		directionColor = color.New(color.FgRed)
	}

	fmt.Printf("%s (%s)\n", z.FullName, z.Name)
	fmt.Printf("  load      %s MW %s\n",
		humanize.CommafWithDigits(t.CurrentLoadMW, 0),
		directionColor.Sprintf("%s %.1f%%", s.Arrow, t.TrendPercentage))
	fmt.Printf("  next peak %s MW in %s (%s)\n",
		humanize.CommafWithDigits(t.NextPeakLoadMW, 0),
		s.HoursToPeakLabel,
		trend.FormatPeakTime(t.NextPeakTime, now))
	if t.IsPeakHours {
		color.Yellow("  currently in peak hours")
	}
	return nil
}

func runZones() error {
	for _, c := range zones.Categories() {
		color.New(color.Bold).Println(c.ClimateRegion)
		for _, z := range c.Zones {
			fmt.Printf("  %-12s %-42s load %4.0f%%  %s\n", z.Name, z.FullName, z.LoadWeight*100, z.MajorCity)
		}
	}
	return nil
}
