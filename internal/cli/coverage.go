package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	testrigerrors "github.com/AndreyAkinshin/testrig/internal/errors"
	"github.com/AndreyAkinshin/testrig/internal/testparser"
)

// Coverage report locations relative to the project root.
const (
	istanbulSummaryPath = "coverage/coverage-summary.json"
	coveragePyPath      = "coverage.json"
)

type coverageOptions struct {
	testType string
	file     string
	files    bool
}

func (a *app) coverageCommand() *cobra.Command {
	var opts coverageOptions
	cmd := &cobra.Command{
		Use:   "coverage",
		Short: "Check the last coverage report against the configured thresholds",
		Long: `Read the coverage report of the last run (coverage/coverage-summary.json
for vitest and jest, coverage.json for pytest) and compare line coverage
against coverage_threshold in test-rig.config.yaml.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return a.runCoverage(opts)
		},
	}
	cmd.Flags().StringVarP(&opts.testType, "type", "t", "unit", "threshold to apply: unit or integration")
	cmd.Flags().StringVar(&opts.file, "file", "", "coverage report path (default depends on the framework)")
	cmd.Flags().BoolVar(&opts.files, "files", false, "list per-file coverage")
	return cmd
}

func (a *app) runCoverage(opts coverageOptions) error {
	p, err := a.loadProject()
	if err != nil {
		return err
	}

	var threshold float64
	switch opts.testType {
	case "unit":
		threshold = p.Config.CoverageThreshold.Unit
	case "integration":
		threshold = p.Config.CoverageThreshold.Integration
	default:
		return testrigerrors.Configf("invalid coverage type %q (want unit or integration)", opts.testType)
	}

	pytest := p.Config.Framework == "pytest"
	path := opts.file
	if path == "" {
		path = istanbulSummaryPath
		if pytest {
			path = coveragePyPath
		}
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(p.Root, path)
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		a.out.Hint("Generate it with: %s", coverageHint(p.Config.Framework))
		return testrigerrors.NotFound("coverage report", relPath(p.Root, path))
	}
	if err != nil {
		return err
	}

	parse := testparser.ParseVitestCoverage
	if pytest {
		parse = testparser.ParsePytestCoverage
	}
	cov, err := parse(data)
	if err != nil {
		return testrigerrors.Wrap(err, relPath(p.Root, path))
	}

	a.out.Title("Coverage (%s)", opts.testType)
	if opts.files && len(cov.Files) > 0 {
		rows := make([][]string, 0, len(cov.Files))
		for _, f := range cov.Files {
			rows = append(rows, []string{relPath(p.Root, f.Path), pct(f.Lines), pct(f.Branches), pct(f.Functions)})
		}
		a.out.Table([]string{"File", "Lines", "Branches", "Functions"}, rows)
		a.out.Println("")
	}
	a.out.SummaryItem("Lines", metric(cov.Lines))
	a.out.SummaryItem("Statements", metric(cov.Statements))
	a.out.SummaryItem("Functions", metric(cov.Functions))
	a.out.SummaryItem("Branches", metric(cov.Branches))
	a.out.SummaryItem("Threshold", fmt.Sprintf("%.1f%%", threshold))

	if cov.Lines.Pct < threshold {
		a.out.FinalFailure("Line coverage %.1f%% is below the %s threshold of %.1f%%", cov.Lines.Pct, opts.testType, threshold)
		return errTestsFailed
	}
	a.out.FinalSuccess("Line coverage %.1f%% meets the %s threshold", cov.Lines.Pct, opts.testType)
	return nil
}

func coverageHint(framework string) string {
	switch framework {
	case "pytest":
		return "pytest --cov --cov-report=json"
	case "jest":
		return "npx jest --coverage --coverageReporters=json-summary"
	default:
		return "npx vitest run --coverage --coverage.reporter=json-summary"
	}
}

func pct(m testparser.CoverageMetric) string {
	return fmt.Sprintf("%.1f%%", m.Pct)
}

func metric(m testparser.CoverageMetric) string {
	return fmt.Sprintf("%.1f%% (%d/%d)", m.Pct, m.Covered, m.Total)
}
