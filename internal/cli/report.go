package cli

import (
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	testrigerrors "github.com/AndreyAkinshin/testrig/internal/errors"
	"github.com/AndreyAkinshin/testrig/internal/testparser"
)

var reportParsers = testparser.NewRegistry()

func (a *app) reportCommand() *cobra.Command {
	var fw string
	cmd := &cobra.Command{
		Use:   "report [file]",
		Short: "Summarize a saved vitest, jest or pytest JSON report",
		Long: `Parse a JSON report written by vitest --reporter=json, jest --json or
pytest --json-report and print the normalized summary. Without a file, or
with "-", the report is read from stdin.`,
		Example: `  npx vitest run --reporter=json | testrig report
  testrig report .report.json -f pytest`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			file := "-"
			if len(args) == 1 {
				file = args[0]
			}
			return a.runReport(file, fw)
		},
	}
	cmd.Flags().StringVarP(&fw, "framework", "f", "", "report format: vitest, jest or pytest (default: guessed from the file)")
	return cmd
}

func (a *app) runReport(file, fw string) error {
	var (
		data []byte
		err  error
	)
	if file == "-" {
		data, err = io.ReadAll(a.stdin)
	} else {
		data, err = os.ReadFile(file)
	}
	if err != nil {
		return testrigerrors.Wrap(err, "read report")
	}

	if fw == "" {
		fw = guessReportFormat(data)
	}
	parser := reportParsers.GetParser(fw)
	if parser == nil {
		return testrigerrors.Configf("unknown report format %q (want vitest, jest or pytest)", fw)
	}

	res, err := parser.Parse(data)
	if err != nil {
		a.out.Hint("hint: pass --framework if the format was guessed wrong")
		return testrigerrors.Wrap(err, "parse "+parser.Name()+" report")
	}

	a.out.Results(res, nil, 0)
	if res.Failed > 0 {
		return errTestsFailed
	}
	return nil
}

// guessReportFormat tells pytest-json-report output from vitest and jest,
// which share a format. pytest reports carry a top-level "summary" object.
func guessReportFormat(data []byte) string {
	if strings.Contains(string(data), `"numTotalTests"`) {
		return "vitest"
	}
	if strings.Contains(string(data), `"summary"`) {
		return "pytest"
	}
	return "vitest"
}
