// Command analyze runs the analysis pipeline once against a local dataset
// and writes the formatted summary table to disk.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"tableone/internal/analysis"
	"tableone/internal/client"
	"tableone/internal/config"
	"tableone/internal/exporter"
	"tableone/internal/infrastructure"
	"tableone/internal/pipeline"
	"tableone/internal/privacy"
	"tableone/internal/report"
	"tableone/internal/session"
	"tableone/pkg/contracts/domain"
)

func main() {
	var (
		filePath    = flag.String("file", "", "dataset to analyze (.csv, .xlsx or .xls)")
		groupVar    = flag.String("group", "", "grouping variable")
		autoMode    = flag.Bool("auto", true, "classify variables automatically")
		aiModel     = flag.String("ai-model", "", "model hint for automatic classification")
		catVars     = flag.String("cat", "", "comma-separated categorical variables (manual mode)")
		contVars    = flag.String("cont", "", "comma-separated continuous variables (manual mode)")
		fillNA      = flag.Bool("fill-na", false, "impute missing values before analysis")
		method      = flag.String("method", "median", "imputation method: mean, median, mode or knn")
		output      = flag.String("output", exporter.DefaultExcelFilename, "output path (.xlsx or .csv)")
		sheet       = flag.String("sheet", "", "spreadsheet sheet name")
		acknowledge = flag.Bool("acknowledge-sensitive", false, "proceed past the sensitive-column warning")
	)
	flag.Parse()

	if *filePath == "" {
		fmt.Fprintln(os.Stderr, "usage: analyze -file dataset.csv [-group col] [-output table.xlsx]")
		os.Exit(2)
	}

	if err := run(*filePath, *groupVar, *autoMode, *aiModel, *catVars, *contVars,
		*fillNA, *method, *output, *sheet, *acknowledge); err != nil {
		fmt.Fprintln(os.Stderr, "analyze:", err)
		os.Exit(1)
	}
}

func run(filePath, groupVar string, autoMode bool, aiModel, catVars, contVars string,
	fillNA bool, method, output, sheet string, acknowledge bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return err
	}
	defer infrastructure.CloseLogFile()

	content, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("reading dataset: %w", err)
	}

	backendClient := client.New(cfg.Backend,
		client.WithLogger(infrastructure.WithComponent(logger, "backend-client")))
	store := session.NewStore()
	gate := privacy.NewGate()
	reporter := report.NewLogReporter(logger)

	runner := pipeline.NewRunner(pipeline.Deps{
		Config:   cfg,
		Session:  store,
		Service:  analysis.NewService(backendClient, reporter, analysis.WithLogger(logger)),
		Tokens:   analysis.StaticToken(cfg.Backend.Token),
		Detector: privacy.NewDetector(cfg.Privacy.ExtraWhitelist, logger),
		Gate:     gate,
		Reporter: reporter,
		Logger:   logger,
	})

	input := pipeline.Input{
		Filename: filepath.Base(filePath),
		Content:  content,
		GroupVar: groupVar,
		AutoMode: autoMode,
		AIModel:  aiModel,
		Classification: domain.VariableClassification{
			GroupVar: groupVar,
			CatVars:  splitList(catVars),
			ContVars: splitList(contVars),
		},
		FillNA: fillNA,
		Method: domain.ImputationMethod(method),
	}

	ctx := infrastructure.EnsureCorrelationID(context.Background())
	outcome := runner.Start(ctx, input)

	if outcome.Paused {
		_, columns, _, _ := gate.Snapshot()
		if !acknowledge {
			return fmt.Errorf("sensitive columns detected (%s); re-run with -acknowledge-sensitive to proceed",
				strings.Join(columns, ", "))
		}
		logger.Warn("proceeding past sensitive-column warning",
			slog.String("columns", strings.Join(columns, ", ")))
		if appErr := gate.Confirm(); appErr != nil {
			return appErr
		}
		outcome = runner.Resume(ctx)
	}

	if outcome.Err != nil {
		return outcome.Err
	}
	for _, warning := range outcome.Warnings {
		logger.Warn("analysis warning", slog.String("warning", warning))
	}

	var artifact *exporter.Artifact
	switch strings.ToLower(filepath.Ext(output)) {
	case ".csv":
		csvExporter := exporter.NewCSVExporter(logger)
		art, appErr := csvExporter.Export(outcome.ExportTable, filepath.Base(output))
		if appErr != nil {
			return appErr
		}
		artifact = art
	default:
		excelExporter := exporter.NewExcelExporter(logger)
		art, appErr := excelExporter.Export(outcome.ExportTable, sheet, filepath.Base(output))
		if appErr != nil {
			return appErr
		}
		artifact = art
	}

	if appErr := exporter.WriteFile(artifact, output); appErr != nil {
		return appErr
	}

	logger.Info("analysis complete",
		slog.String("output", output),
		slog.Int("rows", len(outcome.ExportTable.Rows)))
	return nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
