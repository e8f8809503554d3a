package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/insightdelivered/phone-bill-splitter/internal/api"
	"github.com/insightdelivered/phone-bill-splitter/internal/bill"
	"github.com/insightdelivered/phone-bill-splitter/internal/config"
	"github.com/insightdelivered/phone-bill-splitter/internal/mail"
	"github.com/insightdelivered/phone-bill-splitter/internal/report"
	"github.com/insightdelivered/phone-bill-splitter/internal/writer"
)

const version = "1.0.0"

func main() {
	app := &cli.App{
		Name:    "phone-bill-splitter",
		Usage:   "split a family phone bill PDF into per-member charges",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "configs.yml",
				Usage:   "path to the YAML config file",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "enable debug logging",
			},
		},
		Before: func(c *cli.Context) error {
			setupLogger(c.Bool("verbose"))
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "analyze",
				Usage:     "analyze a bill PDF and write the summary CSV",
				ArgsUsage: "[bill.pdf]",
				Action:    runAnalyze,
			},
			{
				Name:   "fetch",
				Usage:  "fetch the latest bill PDF from the configured inbox",
				Action: runFetch,
			},
			{
				Name:   "send",
				Usage:  "email the summary for an already-analyzed bill",
				Action: runSend,
			},
			{
				Name:   "run",
				Usage:  "fetch, analyze, and send in one go",
				Action: runAll,
			},
			{
				Name:  "serve",
				Usage: "start the HTTP analysis service",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "addr",
						Value: ":8080",
						Usage: "listen address",
					},
				},
				Action: runServe,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("command failed", "err", err)
		os.Exit(1)
	}
}

func setupLogger(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	return config.Load(c.String("config"))
}

// analyze runs the pipeline on one bill and writes both artifacts. The
// reconciliation check runs inside the pipeline, so nothing is written when
// the totals do not match.
func analyze(cfg *config.Config, billPath string) (*bill.Result, error) {
	if billPath == "" {
		billPath = cfg.BillPath
	}
	if billPath == "" {
		return nil, fmt.Errorf("no bill path: pass one as an argument or set bill_path in the config")
	}

	result, err := bill.Analyze(bill.Request{
		BillPath:              billPath,
		SummaryPage:           cfg.PageNumber,
		FamilyCount:           cfg.FamilyCount,
		PlanCostForAllMembers: cfg.PlanCostForAllMembers,
		MemberNames:           cfg.MemberNumbers,
		OCRFallback:           cfg.OCRFallback,
	})
	if err != nil {
		return nil, err
	}

	w := &writer.SummaryWriter{}
	if err := w.WriteToFile(cfg.SummaryPath, result.Rows); err != nil {
		return nil, err
	}
	slog.Info("summary written", "path", cfg.SummaryPath)

	if result.BillingPeriod != "" {
		if err := writer.WriteBillingPeriod(cfg.BillingMonthPath, result.BillingPeriod); err != nil {
			slog.Warn("billing period not written", "err", err)
		}
	}

	return result, nil
}

func runAnalyze(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	result, err := analyze(cfg, c.Args().First())
	if err != nil {
		return err
	}
	fmt.Println(report.FormatSummary(result.Rows))
	return nil
}

func runFetch(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	path, err := mail.FetchBill(cfg)
	if err != nil {
		return err
	}
	fmt.Printf("Bill saved: %s\n", path)
	return nil
}

func runSend(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	rows, err := writer.ReadFromFile(cfg.SummaryPath)
	if err != nil {
		return err
	}
	period := writer.ReadBillingPeriod(cfg.BillingMonthPath, "")
	if err := mail.SendSummary(cfg, report.EmailBody(rows, period)); err != nil {
		return err
	}
	if cfg.DeleteAttachments {
		if err := mail.CleanAttachments(cfg.AttachmentDir); err != nil {
			slog.Warn("attachment cleanup failed", "err", err)
		}
	}
	return nil
}

func runAll(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	slog.Info("getting the bill")
	billPath, err := mail.FetchBill(cfg)
	if err != nil {
		return err
	}

	slog.Info("bill analysis started")
	result, err := analyze(cfg, billPath)
	if err != nil {
		return err
	}

	slog.Info("sending the summary")
	if err := mail.SendSummary(cfg, report.EmailBody(result.Rows, result.BillingPeriod)); err != nil {
		return err
	}
	if cfg.DeleteAttachments {
		if err := mail.CleanAttachments(cfg.AttachmentDir); err != nil {
			slog.Warn("attachment cleanup failed", "err", err)
		}
	}

	slog.Info("done")
	return nil
}

func runServe(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	server := api.NewServer(cfg)
	addr := c.String("addr")
	slog.Info("starting HTTP service", "addr", addr)
	return server.App().Listen(addr)
}
