package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"route-planning-report/internal/api"
	"route-planning-report/internal/config"
	"route-planning-report/internal/db"
	"route-planning-report/internal/export"
	"route-planning-report/internal/models"
	"route-planning-report/internal/parser"
	"route-planning-report/internal/report"
	"route-planning-report/internal/sample"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	dbPath     string
	configPath string
	cfg        *config.Config
	database   *db.Database
)

func main() {
	envErr := godotenv.Load()
	setupLogging()
	if envErr == nil {
		log.Debug().Msg("Loaded .env file")
	}

	rootCmd := &cobra.Command{
		Use:   "route-report",
		Short: "Route Planning Report - per-route metrics and costs from depot planning exports",
		Long: `A CLI tool that merges the daily planning exports of several depots and
produces one row per route with stops, distance, fill rate, time window,
duration and cost. Reports are written as CSV, stored in SQLite or
PostgreSQL and served over a REST API.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(cmd)
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", os.Getenv("ROUTE_REPORT_CONFIG"), "Path to YAML configuration")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", os.Getenv("ROUTE_REPORT_DB"), "SQLite path or postgres:// DSN")

	// Add commands
	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(serverCmd())
	rootCmd.AddCommand(queryCmd())
	rootCmd.AddCommand(runsCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(generateCmd())

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Send()
		os.Exit(1)
	}
}

func setupLogging() {
	if os.Getenv("ROUTE_REPORT_LOG_FORMAT") != "JSON" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	if os.Getenv("ROUTE_REPORT_DEBUG") == "YES" {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	} else {
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
	}
}

// loadConfig reads the configuration file if one is given; --db wins over it
func loadConfig(cmd *cobra.Command) error {
	cfg = config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
		log.Debug().Str("config", configPath).Int("sources", len(cfg.Sources)).Msg("Loaded configuration")
	}
	if dbPath == "" {
		dbPath = cfg.Database
	}
	return nil
}

// initDB initializes database connection
func initDB() error {
	var err error
	database, err = db.New(dbPath)
	return err
}

// reportCmd builds the route report from the depot planning exports
func reportCmd() *cobra.Command {
	var sourceFlags []string
	var output string
	var appendRows bool
	var lang string
	var depotMarker string
	var noStore bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Build the route report from depot planning exports",
		RunE: func(cmd *cobra.Command, args []string) error {
			sources := cfg.Sources
			if len(sourceFlags) > 0 {
				sources = nil
				for _, v := range sourceFlags {
					s, err := config.ParseSourceFlag(v)
					if err != nil {
						return err
					}
					sources = append(sources, s)
				}
			}
			if len(sources) == 0 {
				return fmt.Errorf("%w: use --source name=path or a config file", models.ErrNoSources)
			}

			if !cmd.Flags().Changed("output") {
				output = cfg.Output.Path
			}
			if !cmd.Flags().Changed("append") {
				appendRows = cfg.Output.Append
			}
			if !cmd.Flags().Changed("lang") {
				lang = cfg.Language
			}
			if !cmd.Flags().Changed("depot") {
				depotMarker = cfg.DepotMarker
			}

			toLoad := make([]parser.Source, len(sources))
			for i, s := range sources {
				toLoad[i] = parser.Source{Name: s.Name, Path: s.Path, Format: s.Format}
			}

			start := time.Now()
			batches, err := parser.LoadSources(toLoad)
			if err != nil {
				return err
			}

			res, err := report.Build(batches, report.Options{DepotMarker: depotMarker})
			if err != nil {
				return err
			}
			for _, w := range res.Warnings {
				fmt.Printf("  ⚠️  %s\n", w)
			}

			if err := printTable(res.Summaries, lang); err != nil {
				return err
			}

			if output != "" {
				if dir := filepath.Dir(output); dir != "." {
					if err := os.MkdirAll(dir, 0o755); err != nil {
						return fmt.Errorf("create output directory: %w", err)
					}
				}
				if err := export.WriteFile(output, res.Summaries, lang, appendRows); err != nil {
					return err
				}
				fmt.Printf("Report written to %s\n", output)
			}

			if !noStore {
				if err := initDB(); err != nil {
					return fmt.Errorf("database error: %w", err)
				}
				defer database.Close()

				run := &models.ReportRun{Sources: res.Sources, RecordCount: res.RecordCount}
				if err := database.InsertRun(run, res.Summaries); err != nil {
					return fmt.Errorf("database error: %w", err)
				}
				fmt.Printf("Stored as run %d in %s\n", run.ID, dbPath)
			}

			fmt.Printf("\n✓ %d routes from %d records in %v\n", len(res.Summaries), res.RecordCount, time.Since(start))
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&sourceFlags, "source", "s", nil, "Depot source as name=path (repeatable, overrides config)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "CSV output path (empty disables)")
	cmd.Flags().BoolVarP(&appendRows, "append", "a", false, "Append to the CSV output instead of overwriting")
	cmd.Flags().StringVarP(&lang, "lang", "l", export.DefaultLanguage, "Column labels ("+strings.Join(export.Languages(), ", ")+")")
	cmd.Flags().StringVar(&depotMarker, "depot", report.DefaultDepotMarker, "locationFunction value of depot visits")
	cmd.Flags().BoolVar(&noStore, "no-store", false, "Do not store the run in the database")
	return cmd
}

// printTable writes the summaries as an aligned console table
func printTable(summaries []models.RouteSummary, lang string) error {
	labels, err := export.Labels(lang)
	if err != nil {
		return err
	}

	format := "%-10s %8s %-12s %-16s %10s %6s %10s %8s %8s %8s %9s %10s\n"
	header := make([]interface{}, len(labels))
	for i, l := range labels {
		header[i] = l
	}
	fmt.Printf(format, header...)
	fmt.Println(strings.Repeat("-", 126))

	for _, s := range summaries {
		row := export.Row(s)
		values := make([]interface{}, len(row))
		for i, v := range row {
			values[i] = v
		}
		fmt.Printf(format, values...)
	}
	return nil
}

// serverCmd starts the REST API server
func serverCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the REST API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := initDB(); err != nil {
				return fmt.Errorf("database error: %w", err)
			}
			defer database.Close()

			if !cmd.Flags().Changed("port") && cfg.Server.Port != 0 {
				port = cfg.Server.Port
			}

			server := api.NewServer(database, cfg.DepotMarker)
			addr := fmt.Sprintf(":%d", port)

			fmt.Printf("🚚 Route Planning Report API Server\n")
			fmt.Printf("   Listening on http://localhost%s\n", addr)
			fmt.Printf("   Database: %s\n\n", dbPath)
			fmt.Println("Available endpoints:")
			fmt.Println("  GET  /health")
			fmt.Println("  GET  /api/v1/runs")
			fmt.Println("  POST /api/v1/reports")
			fmt.Println("  GET  /api/v1/routes")
			fmt.Println("  GET  /api/v1/routes/{location}/{route_id}")
			fmt.Println("  GET  /api/v1/stats")
			fmt.Println()

			srv := &http.Server{
				Addr:              addr,
				Handler:           server.Router(),
				ReadHeaderTimeout: 5 * time.Second,
				ReadTimeout:       30 * time.Second,
				WriteTimeout:      60 * time.Second,
				IdleTimeout:       60 * time.Second,
			}
			return srv.ListenAndServe()
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8080, "Server port")
	return cmd
}

// queryCmd queries stored route summaries
func queryCmd() *cobra.Command {
	var runID int64
	var location string
	var driver string
	var routeID int64
	var limit int
	var outputFormat string
	var lang string

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Query stored route summaries",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := initDB(); err != nil {
				return fmt.Errorf("database error: %w", err)
			}
			defer database.Close()

			q := models.SummaryQuery{
				RunID:    runID,
				Location: location,
				Driver:   driver,
				RouteID:  routeID,
				Limit:    limit,
			}

			start := time.Now()
			results, err := database.QuerySummaries(q)
			if err != nil {
				return fmt.Errorf("query error: %w", err)
			}
			elapsed := time.Since(start)

			switch outputFormat {
			case "json":
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			case "csv":
				return export.WriteCSV(os.Stdout, results, export.Options{Language: lang})
			default:
				fmt.Printf("Found %d routes (query time: %v)\n\n", len(results), elapsed)
				return printTable(results, lang)
			}
		},
	}

	cmd.Flags().Int64VarP(&runID, "run", "r", 0, "Run ID (default latest)")
	cmd.Flags().StringVarP(&location, "location", "L", "", "Filter by depot")
	cmd.Flags().StringVarP(&driver, "driver", "d", "", "Filter by driver")
	cmd.Flags().Int64Var(&routeID, "route", 0, "Filter by route ID")
	cmd.Flags().IntVarP(&limit, "limit", "l", 100, "Maximum routes to return")
	cmd.Flags().StringVarP(&outputFormat, "output", "o", "table", "Output format (table, json, csv)")
	cmd.Flags().StringVar(&lang, "lang", export.DefaultLanguage, "Column labels")
	return cmd
}

// runsCmd lists stored report runs
func runsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List stored report runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := initDB(); err != nil {
				return fmt.Errorf("database error: %w", err)
			}
			defer database.Close()

			runs, err := database.ListRuns(limit)
			if err != nil {
				return fmt.Errorf("error listing runs: %w", err)
			}

			if len(runs) == 0 {
				fmt.Println("No runs found. Use 'route-report report' to build one.")
				return nil
			}

			fmt.Printf("%-6s %-20s %-8s %-8s %s\n", "ID", "Created", "Records", "Routes", "Sources")
			fmt.Println(strings.Repeat("-", 64))
			for _, r := range runs {
				fmt.Printf("%-6d %-20s %-8d %-8d %s\n", r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
					r.RecordCount, r.RouteCount, strings.Join(r.Sources, ", "))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "Maximum runs to list")
	return cmd
}

// statsCmd shows database statistics
func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show database statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := initDB(); err != nil {
				return fmt.Errorf("database error: %w", err)
			}
			defer database.Close()

			stats, err := database.GetStats()
			if err != nil {
				return fmt.Errorf("error getting stats: %w", err)
			}

			fmt.Println("📊 Route Planning Report Statistics")
			fmt.Println("===================================")
			fmt.Printf("  Report Runs:         %v\n", stats["total_runs"])
			fmt.Printf("  Route Summaries:     %v\n", stats["total_route_summaries"])
			fmt.Printf("  Latest Run:          %v\n", stats["latest_run_id"])
			fmt.Printf("  Latest Run Routes:   %v\n", stats["latest_run_routes"])
			fmt.Printf("  Latest Run Distance: %v km\n", stats["latest_run_distance_km"])
			fmt.Printf("  Latest Run Cost:     %.2f\n", stats["latest_run_cost"])
			fmt.Printf("  Database:            %s\n", dbPath)

			return nil
		},
	}
}

// generateCmd writes sample planning exports
func generateCmd() *cobra.Command {
	var routes int
	var maxStops int
	var depots []string
	var dir string
	var seed int64

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate sample depot planning exports",
		RunE: func(cmd *cobra.Command, args []string) error {
			if seed == 0 {
				seed = time.Now().UnixNano()
			}
			rng := rand.New(rand.NewSource(seed))

			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}

			for _, depot := range depots {
				rows := sample.Generate(rng, depot, sample.Options{Routes: routes, MaxStops: maxStops, DepotMarker: cfg.DepotMarker})
				path := filepath.Join(dir, fmt.Sprintf("Planning_%s.csv", depot))
				if err := sample.WriteCSV(path, rows); err != nil {
					return err
				}
				fmt.Printf("✓ %s: %d routes, %d stops -> %s\n", depot, routes, len(rows), path)
			}

			fmt.Printf("\nBuild the report with:\n  route-report report")
			for _, depot := range depots {
				fmt.Printf(" -s %s=%s", depot, filepath.Join(dir, fmt.Sprintf("Planning_%s.csv", depot)))
			}
			fmt.Println()
			return nil
		},
	}

	cmd.Flags().IntVarP(&routes, "routes", "n", 10, "Routes per depot")
	cmd.Flags().IntVar(&maxStops, "max-stops", 8, "Maximum customer stops per route")
	cmd.Flags().StringSliceVar(&depots, "depots", []string{"Jumet", "Geel", "Triton"}, "Depot names")
	cmd.Flags().StringVarP(&dir, "dir", "d", "data", "Output directory")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed (0 uses the clock)")
	return cmd
}
