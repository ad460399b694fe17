package testparser

import (
	"encoding/json"
	"fmt"
	"sort"
)

// CoverageMetric is one coverage dimension (lines, branches, ...).
type CoverageMetric struct {
	Pct     float64 `json:"pct"`
	Covered int     `json:"covered"`
	Total   int     `json:"total"`
}

// FileCoverage holds per-file coverage.
type FileCoverage struct {
	Path       string         `json:"path"`
	Lines      CoverageMetric `json:"lines"`
	Statements CoverageMetric `json:"statements"`
	Functions  CoverageMetric `json:"functions"`
	Branches   CoverageMetric `json:"branches"`
}

// Coverage is a normalized coverage summary.
type Coverage struct {
	Lines      CoverageMetric `json:"lines"`
	Statements CoverageMetric `json:"statements"`
	Functions  CoverageMetric `json:"functions"`
	Branches   CoverageMetric `json:"branches"`
	Files      []FileCoverage `json:"files,omitempty"`
}

type istanbulEntry struct {
	Lines      CoverageMetric `json:"lines"`
	Statements CoverageMetric `json:"statements"`
	Functions  CoverageMetric `json:"functions"`
	Branches   CoverageMetric `json:"branches"`
}

// ParseVitestCoverage parses an istanbul coverage-summary.json as written by
// `vitest --coverage`. Files are sorted by path.
func ParseVitestCoverage(data []byte) (Coverage, error) {
	var raw map[string]istanbulEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return Coverage{}, fmt.Errorf("invalid coverage summary: %w", err)
	}
	total, ok := raw["total"]
	if !ok {
		return Coverage{}, fmt.Errorf("invalid coverage summary: missing \"total\"")
	}

	cov := Coverage{
		Lines:      total.Lines,
		Statements: total.Statements,
		Functions:  total.Functions,
		Branches:   total.Branches,
	}
	for path, entry := range raw {
		if path == "total" {
			continue
		}
		cov.Files = append(cov.Files, FileCoverage{
			Path:       path,
			Lines:      entry.Lines,
			Statements: entry.Statements,
			Functions:  entry.Functions,
			Branches:   entry.Branches,
		})
	}
	sort.Slice(cov.Files, func(i, j int) bool { return cov.Files[i].Path < cov.Files[j].Path })

	return cov, nil
}

type coveragePySummary struct {
	PercentCovered  float64 `json:"percent_covered"`
	CoveredLines    int     `json:"covered_lines"`
	NumStatements   int     `json:"num_statements"`
	CoveredBranches int     `json:"covered_branches"`
	NumBranches     int     `json:"num_branches"`
}

// ParsePytestCoverage parses coverage.py's JSON report (coverage.json).
// coverage.py does not track functions, so the line metric stands in for
// statements and functions.
func ParsePytestCoverage(data []byte) (Coverage, error) {
	var raw struct {
		Totals coveragePySummary `json:"totals"`
		Files  map[string]struct {
			Summary coveragePySummary `json:"summary"`
		} `json:"files"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Coverage{}, fmt.Errorf("invalid coverage report: %w", err)
	}

	cov := fromCoveragePy(raw.Totals)
	for path, f := range raw.Files {
		fc := fromCoveragePy(f.Summary)
		cov.Files = append(cov.Files, FileCoverage{
			Path:       path,
			Lines:      fc.Lines,
			Statements: fc.Statements,
			Functions:  fc.Functions,
			Branches:   fc.Branches,
		})
	}
	sort.Slice(cov.Files, func(i, j int) bool { return cov.Files[i].Path < cov.Files[j].Path })

	return cov, nil
}

func fromCoveragePy(s coveragePySummary) Coverage {
	lines := CoverageMetric{Pct: s.PercentCovered, Covered: s.CoveredLines, Total: s.NumStatements}
	branches := CoverageMetric{Covered: s.CoveredBranches, Total: s.NumBranches}
	if s.NumBranches > 0 {
		branches.Pct = float64(s.CoveredBranches) / float64(s.NumBranches) * 100
	}
	return Coverage{
		Lines:      lines,
		Statements: lines,
		Functions:  lines,
		Branches:   branches,
	}
}
