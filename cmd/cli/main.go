package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"adinsight/api"
	"adinsight/domain/ads"
	"adinsight/domain/report"
	"adinsight/internal/adgen"
	"adinsight/internal/config"
	"adinsight/internal/container"
	"adinsight/internal/render"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "adinsight",
		Short: "Multi-agent analysis of advertising performance data",
	}

	rootCmd.AddCommand(
		newAnalyzeCmd(),
		newServeCmd(),
		newGendataCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newAnalyzeCmd() *cobra.Command {
	var dataFile string
	var format string
	var outDir string

	cmd := &cobra.Command{
		Use:   "analyze [question]",
		Short: "Answer an analytical question about ad performance",
		Long: `Run the full analysis loop against a dataset and print the report.

Example: adinsight analyze "Why did ROAS drop last week?" --data data/fb_ads_data.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if dataFile != "" {
				cfg.Data.FilePath = dataFile
			}

			c, err := container.New(cfg)
			if err != nil {
				return err
			}
			if c.Orchestrator == nil {
				return fmt.Errorf("analysis requires ANTHROPIC_API_KEY")
			}

			result, err := c.Orchestrator.Run(cmd.Context(), args[0], cfg.Data.FilePath)
			if err != nil {
				return err
			}

			switch format {
			case "json":
				out, err := json.MarshalIndent(result.Report, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(out))
			case "markdown", "md":
				fmt.Print(render.Markdown(result.Report))
			default:
				return fmt.Errorf("unsupported format %q (use json or markdown)", format)
			}

			if outDir != "" {
				if err := saveReport(outDir, result.Report); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "saved %s to %s\n", result.Report.ReportID, outDir)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dataFile, "data", "", "dataset file (csv or xlsx); defaults to DATA_FILE")
	cmd.Flags().StringVar(&format, "format", "markdown", "output format: markdown or json")
	cmd.Flags().StringVar(&outDir, "out", "", "directory to save the report as markdown and json")
	return cmd
}

func saveReport(dir string, r *report.FinalReport) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	base := filepath.Join(dir, r.ReportID)
	if err := os.WriteFile(base+".md", []byte(render.Markdown(r)), 0o644); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(base+".json", raw, 0o644)
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP analysis API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			gin.SetMode(cfg.Server.GinMode)

			c, err := container.New(cfg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if cfg.Database.URL != "" {
				db, err := sqlx.Open("postgres", cfg.Database.URL)
				if err != nil {
					return err
				}
				if err := c.InitWithDatabase(ctx, db); err != nil {
					return err
				}
			}

			server := api.NewServer(c.Orchestrator, c.ReportRepo, cfg.Data.FilePath, c.Sink)
			c.Logger.Info("listening on :%s", cfg.Server.Port)
			if err := api.Serve(ctx, ":"+cfg.Server.Port, server.Handler()); err != nil {
				return err
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return c.Shutdown(shutdownCtx)
		},
	}
	return cmd
}

func newGendataCmd() *cobra.Command {
	var out string
	var days int
	var seed int64
	var start string

	cmd := &cobra.Command{
		Use:   "gendata",
		Short: "Generate a deterministic synthetic ad performance dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			startDate, err := time.ParseInLocation("2006-01-02", start, time.UTC)
			if err != nil {
				return fmt.Errorf("invalid --start (expected YYYY-MM-DD): %w", err)
			}

			cfg := adgen.DefaultConfig()
			cfg.Days = days
			cfg.Seed = seed
			cfg.StartDate = startDate

			ds, err := adgen.Generate(cfg)
			if err != nil {
				return err
			}
			if err := writeDataset(out, ds); err != nil {
				return err
			}
			fmt.Printf("wrote %d rows to %s\n", ds.Len(), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "data/fb_ads_data.csv", "output file (.csv or .xlsx)")
	cmd.Flags().IntVar(&days, "days", 90, "number of days to generate")
	cmd.Flags().Int64Var(&seed, "seed", 42, "RNG seed (deterministic)")
	cmd.Flags().StringVar(&start, "start", "2025-01-01", "start date (YYYY-MM-DD)")
	return cmd
}

func writeDataset(path string, ds *ads.Dataset) error {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return adgen.WriteXLSX(path, ds)
	}
	return adgen.WriteCSV(path, ds)
}
