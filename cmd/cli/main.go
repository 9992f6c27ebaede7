package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog"
	"github.com/wcharczuk/go-chart/v2"

	"github.com/finlens/statement-analyzer/internal/analyze"
	"github.com/finlens/statement-analyzer/internal/categorize"
	"github.com/finlens/statement-analyzer/internal/gcsfetch"
	"github.com/finlens/statement-analyzer/internal/jobs"
	"github.com/finlens/statement-analyzer/internal/jobs/inmemory"
	"github.com/finlens/statement-analyzer/internal/logger"
	"github.com/finlens/statement-analyzer/internal/pipeline"
)

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "analyze":
		runAnalyze(log)
	case "upload":
		runUpload(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Statement Analyzer CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  analyze   Analyze one or more local statement files")
	fmt.Println("  upload    Upload a statement file to GCS")
	fmt.Println("  help      Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

func runAnalyze(log zerolog.Logger) {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	password := fs.String("password", "", "password for protected statements")
	rulesPath := fs.String("rules", "", "optional YAML file with category rules")
	chartPath := fs.String("chart", "", "write a monthly trend chart PNG to this path")
	fs.Parse(os.Args[2:])

	files := fs.Args()
	if len(files) == 0 {
		log.Fatal().Msg("Error: at least one statement file is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	var inputs []jobs.FileInput
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Fatal().Err(err).Str("file", path).Msg("Reading statement file")
		}
		inputs = append(inputs, jobs.FileInput{
			Name:     filepath.Base(path),
			Password: *password,
			Data:     data,
		})
	}

	opts := []pipeline.Option{}
	if *rulesPath != "" {
		rules, err := categorize.LoadRules(*rulesPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", *rulesPath).Msg("Loading category rules")
		}
		opts = append(opts, pipeline.WithCategorizer(categorize.NewEngine(rules)))
	}

	pipe := pipeline.New(inmemory.NewStore(), opts...)

	job := &jobs.AnalyzeStatementsJob{
		JobID:     "cli",
		Inputs:    inputs,
		Status:    jobs.JobStatusProcessing,
		CreatedAt: time.Now(),
	}

	if err := pipe.Run(ctx, job); err != nil {
		log.Fatal().Err(err).Msg("Analysis failed")
	}

	printReport(job.Result)

	if *chartPath != "" {
		if err := writeTrendChart(job.Result.Report.MonthlyTrend, *chartPath); err != nil {
			log.Fatal().Err(err).Msg("Writing trend chart")
		}
		fmt.Printf("\nTrend chart written to %s\n", *chartPath)
	}
}

func printReport(result *jobs.Result) {
	bold := color.New(color.Bold)
	red := color.New(color.FgRed)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	bold.Println("\nFiles")
	fileTable := tablewriter.NewWriter(os.Stdout)
	fileTable.SetHeader([]string{"File", "Bank", "Transactions", "Skipped", "Error"})
	for _, rec := range result.Files {
		bank := ""
		if rec.Bank != nil {
			bank = fmt.Sprintf("%s (%d%%)", rec.Bank.BankName, rec.Bank.Confidence)
		}
		fileTable.Append([]string{
			rec.Name,
			bank,
			fmt.Sprintf("%d", rec.TransactionCount),
			fmt.Sprintf("%d", rec.SkippedLines),
			rec.Error,
		})
	}
	fileTable.Render()

	report := result.Report
	if report == nil {
		return
	}

	if s := report.Summary; s != nil {
		bold.Println("\nSummary")
		fmt.Printf("  Transactions: %d\n", s.TransactionCount)
		green.Printf("  Credits:      %.2f\n", s.TotalCredits)
		red.Printf("  Debits:       %.2f\n", s.TotalDebits)
		fmt.Printf("  Net:          %.2f\n", s.Net)
	}

	if len(report.MonthlyTrend) > 0 {
		bold.Println("\nMonthly trend")
		trendTable := tablewriter.NewWriter(os.Stdout)
		trendTable.SetHeader([]string{"Month", "Credits", "Debits", "Net", "Count"})
		for _, b := range report.MonthlyTrend {
			trendTable.Append([]string{
				b.Month,
				fmt.Sprintf("%.2f", b.Credits),
				fmt.Sprintf("%.2f", b.Debits),
				fmt.Sprintf("%.2f", b.Net),
				fmt.Sprintf("%d", b.TransactionCount),
			})
		}
		trendTable.Render()
	}

	if len(report.RedAlerts) > 0 {
		bold.Println("\nRed alerts")
		for _, alert := range report.RedAlerts {
			line := fmt.Sprintf("  [%s] %s: %s", strings.ToUpper(string(alert.Severity)), alert.Type, alert.Message)
			switch alert.Severity {
			case analyze.SeverityHigh:
				red.Println(line)
			case analyze.SeverityMedium:
				yellow.Println(line)
			default:
				fmt.Println(line)
			}
		}
	}

	if risk := report.Risk; risk != nil {
		bold.Println("\nRisk")
		line := fmt.Sprintf("  Score %d (%s), compliance %d", risk.Score, risk.Level, risk.ComplianceScore)
		switch {
		case risk.Score >= 60:
			red.Println(line)
		case risk.Score >= 30:
			yellow.Println(line)
		default:
			green.Println(line)
		}
		for _, factor := range risk.Factors {
			fmt.Printf("  - %s: %s\n", factor.Name, factor.Description)
		}
	}

	if n := result.Narrative; n != nil {
		if n.ExecutiveSummary != "" {
			bold.Println("\nNarrative")
			fmt.Println("  " + n.ExecutiveSummary)
		}
		if n.Projection != nil {
			fmt.Printf("\n  Projected next-period net: %.2f (basis %d months)\n",
				n.Projection.NextPeriodNet, n.Projection.BasisMonths)
		}
	}
}

// writeTrendChart renders monthly credits and debits as a bar-style chart.
func writeTrendChart(trend []analyze.MonthlyBucket, path string) error {
	if len(trend) == 0 {
		return fmt.Errorf("writeTrendChart: no monthly data to chart")
	}

	xs := make([]float64, len(trend))
	credits := make([]float64, len(trend))
	debits := make([]float64, len(trend))
	ticks := make([]chart.Tick, len(trend))
	for i, b := range trend {
		xs[i] = float64(i)
		credits[i] = b.Credits
		debits[i] = b.Debits
		ticks[i] = chart.Tick{Value: float64(i), Label: b.Month}
	}

	graph := chart.Chart{
		Title: "Monthly cash flow",
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{Ticks: ticks},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Credits",
				XValues: xs,
				YValues: credits,
			},
			chart.ContinuousSeries{
				Name:    "Debits",
				XValues: xs,
				YValues: debits,
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("writeTrendChart: create %s: %w", path, err)
	}
	defer f.Close()

	if err := graph.Render(chart.PNG, f); err != nil {
		return fmt.Errorf("writeTrendChart: render: %w", err)
	}
	return nil
}

func runUpload(log zerolog.Logger) {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	bucket := fs.String("bucket", os.Getenv("GCS_BUCKET"), "GCS bucket name (or set GCS_BUCKET env)")
	object := fs.String("object", "", "object name, defaults to statements/<filename>")
	fs.Parse(os.Args[2:])

	if fs.NArg() != 1 {
		log.Fatal().Msg("Error: exactly one file to upload is required")
	}
	if *bucket == "" {
		log.Fatal().Msg("Error: --bucket is required")
	}

	path := fs.Arg(0)
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatal().Err(err).Str("file", path).Msg("Reading file")
	}

	objectName := *object
	if objectName == "" {
		objectName = "statements/" + filepath.Base(path)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	client := gcsfetch.NewClient()
	if err := client.Upload(ctx, *bucket, objectName, data); err != nil {
		log.Fatal().Err(err).Msg("Upload failed")
	}

	fmt.Printf("Uploaded to gs://%s/%s\n", *bucket, objectName)
}
