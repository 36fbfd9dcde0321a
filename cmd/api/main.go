package main

import (
	"fmt"
	"net/url"
	"os"

	"github.com/PuerkitoBio/goquery"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/applytrack/applytrackd/internal/capture"
	"github.com/applytrack/applytrackd/internal/config"
	"github.com/applytrack/applytrackd/internal/database"
	"github.com/applytrack/applytrackd/internal/extract"
	"github.com/applytrack/applytrackd/internal/handlers"
	"github.com/applytrack/applytrackd/internal/selectors"
	"github.com/applytrack/applytrackd/internal/services"
)

func main() {
	root := &cobra.Command{
		Use:          "applytrackd",
		Short:        "Job application tracker backend",
		SilenceUsage: true,
	}
	root.AddCommand(serveCommand(), exportCommand(), importCommand(), captureCommand())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup is the shared startup path: .env → config → logger → database →
// services.
func setup() (*config.Config, *zap.Logger, *gorm.DB, *services.RecordService, error) {
	// Missing .env is fine, the environment may already be set.
	_ = godotenv.Load()

	cfg := config.Load()
	logger, err := zap.NewProduction()
	if err != nil {
		return nil, nil, nil, nil, err
	}
	db, err := database.Connect(cfg, logger)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return cfg, logger, db, services.NewRecordService(db, logger), nil
}

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API the extension surfaces talk to",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, _, records, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			jobs := handlers.NewJobHandler(records, services.NewCSVService(logger), services.NewStatsService(), logger)
			captures := handlers.NewCaptureHandler(records, logger)
			r := handlers.NewRouter(jobs, captures)

			logger.Info("server starting", zap.String("port", cfg.Port))
			return r.Run(":" + cfg.Port)
		},
	}
}

func exportCommand() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the record store as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, _, records, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			list, err := records.ListAll()
			if err != nil {
				return err
			}
			data := services.NewCSVService(logger).Export(list)
			if out == "" {
				_, err = os.Stdout.Write(data)
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return err
			}
			fmt.Printf("exported %d record(s) to %s\n", len(list), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (default stdout)")
	return cmd
}

// captureCommand replays the page-side flow against a running server from a
// saved page: extract a draft, checkpoint it, submit it across the message
// boundary. Useful for exercising the selector table against real job-board
// HTML without a browser.
func captureCommand() *cobra.Command {
	var (
		server   string
		pageURL  string
		company  string
		position string
		location string
		salary   string
		notes    string
	)
	cmd := &cobra.Command{
		Use:   "capture <page.html>",
		Short: "Extract a saved job page and submit it to a running server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			cfg := config.Load()
			logger, err := zap.NewProduction()
			if err != nil {
				return err
			}
			defer logger.Sync()

			u, err := url.Parse(pageURL)
			if err != nil {
				return err
			}
			entry := selectors.Lookup(u.Hostname())
			if entry == nil {
				return fmt.Errorf("no selector entry for host %q", u.Hostname())
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			doc, err := goquery.NewDocumentFromReader(f)
			if err != nil {
				return err
			}
			draft := extract.Extract(doc, entry, pageURL)

			client := capture.NewHTTPSender(server)
			session := capture.NewSession(client, client, capture.Config{
				MaxRetries: cfg.CaptureMaxRetries,
				RetryDelay: cfg.CaptureRetryDelay,
				CloseDelay: cfg.CaptureCloseDelay,
			}, logger)
			if err := session.Open(draft, false); err != nil {
				return err
			}

			form := capture.SubmitForm{
				Company:  draft.Company,
				Position: draft.Position,
				Location: draft.Location,
				Salary:   draft.Salary,
				Notes:    notes,
			}
			if company != "" {
				form.Company = company
			}
			if position != "" {
				form.Position = position
			}
			if location != "" {
				form.Location = location
			}
			if salary != "" {
				form.Salary = salary
			}

			record, err := session.Submit(cmd.Context(), form)
			if err != nil {
				session.Cancel()
				return err
			}
			fmt.Printf("saved %s at %s (%s)\n", record.Position, record.Company, record.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&server, "server", "http://localhost:8080", "base URL of the running API")
	cmd.Flags().StringVar(&pageURL, "url", "", "original page URL, used for site matching")
	cmd.Flags().StringVar(&company, "company", "", "override the extracted company")
	cmd.Flags().StringVar(&position, "position", "", "override the extracted position")
	cmd.Flags().StringVar(&location, "location", "", "override the extracted location")
	cmd.Flags().StringVar(&salary, "salary", "", "override the extracted salary")
	cmd.Flags().StringVar(&notes, "notes", "", "notes to save with the record")
	cmd.MarkFlagRequired("url")
	return cmd
}

func importCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import records from a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, _, records, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			rows, err := services.NewCSVService(logger).Import(f)
			if err != nil {
				return err
			}
			n, err := records.BulkImport(rows)
			if err != nil {
				return err
			}
			fmt.Printf("imported %d job application(s)\n", n)
			return nil
		},
	}
}
