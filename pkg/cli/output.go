package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"mercator-hq/ganymede/pkg/engine"
	"mercator-hq/ganymede/pkg/findings"
)

// OutputFormat represents the output format for command results.
type OutputFormat string

const (
	// FormatText is human-readable text output (default).
	FormatText OutputFormat = "text"
	// FormatJSON is JSON output.
	FormatJSON OutputFormat = "json"
	// FormatCSV is CSV output.
	FormatCSV OutputFormat = "csv"
)

// ParseFormat converts a --format flag value to an OutputFormat.
func ParseFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case FormatText, FormatJSON, FormatCSV:
		return OutputFormat(s), nil
	default:
		return "", fmt.Errorf("unknown output format %q (expected text, json, or csv)", s)
	}
}

// WriteReport renders an evaluation report in the given format.
func WriteReport(w io.Writer, format OutputFormat, report *engine.Report) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, report)
	case FormatCSV:
		return writeReportCSV(w, report)
	default:
		return writeReportText(w, report)
	}
}

func writeJSON(w io.Writer, data interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func writeReportText(w io.Writer, report *engine.Report) error {
	for _, res := range report.Results {
		if _, err := fmt.Fprintf(w, "%-8s %s\n", res.Verdict, res.RuleName); err != nil {
			return err
		}
		for _, v := range res.Violations {
			if _, err := fmt.Fprintf(w, "         %s: %s\n", v.Path, v.Message); err != nil {
				return err
			}
		}
		if res.Err != nil {
			if _, err := fmt.Fprintf(w, "         error: %v\n", res.Err); err != nil {
				return err
			}
		}
	}

	passed, failed, skipped := report.Counts()
	_, err := fmt.Fprintf(w, "\n%d passed, %d failed, %d skipped (%s)\n",
		passed, failed, skipped, report.Duration.Round(time.Microsecond))
	return err
}

func writeReportCSV(w io.Writer, report *engine.Report) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"rule", "verdict", "path", "message"}); err != nil {
		return err
	}
	for _, res := range report.Results {
		if len(res.Violations) == 0 {
			if err := cw.Write([]string{res.RuleName, string(res.Verdict), "", ""}); err != nil {
				return err
			}
			continue
		}
		for _, v := range res.Violations {
			if err := cw.Write([]string{res.RuleName, string(res.Verdict), v.Path, v.Message}); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteRuns renders stored evaluation runs in the given format.
func WriteRuns(w io.Writer, format OutputFormat, runs []*findings.Run) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, runs)
	case FormatCSV:
		return writeRunsCSV(w, runs)
	default:
		return writeRunsText(w, runs)
	}
}

func writeRunsText(w io.Writer, runs []*findings.Run) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "no runs recorded")
		return err
	}

	for _, run := range runs {
		status := "COMPLIANT"
		if !run.Compliant() {
			status = "NON-COMPLIANT"
		}
		if _, err := fmt.Fprintf(w, "%s  %-13s  %d passed, %d failed, %d skipped  %s\n",
			run.EvaluatedAt.Format(time.RFC3339), status,
			run.Passed, run.Failed, run.Skipped, run.TemplatePath); err != nil {
			return err
		}
	}
	return nil
}

func writeRunsCSV(w io.Writer, runs []*findings.Run) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"id", "evaluated_at", "template", "rules", "passed", "failed", "skipped", "violations"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, run := range runs {
		record := []string{
			run.ID,
			run.EvaluatedAt.Format(time.RFC3339),
			run.TemplatePath,
			run.RulesPath,
			strconv.Itoa(run.Passed),
			strconv.Itoa(run.Failed),
			strconv.Itoa(run.Skipped),
			strconv.Itoa(len(run.Violations)),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
