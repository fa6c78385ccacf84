package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"gostreak/adapters/stats/measures"
	"gostreak/app"
	"gostreak/domain/core"
	"gostreak/internal/analysis"
	"gostreak/ports"
)

const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

var (
	significant = color.New(color.FgGreen, color.Bold).SprintFunc()
	muted       = color.New(color.Faint).SprintFunc()
)

type curvePoint struct {
	Games       int     `json:"games"`
	Expectation float64 `json:"expectation"`
}

type expectationPoint struct {
	Games       int     `json:"games"`
	K           int     `json:"k"`
	P           float64 `json:"p"`
	Expectation float64 `json:"expectation"`
	Bias        float64 `json:"bias"`
}

func validateOutput(format string) error {
	switch format {
	case outputTable, outputJSON, outputYAML:
		return nil
	}
	return core.NewUnknownMethodError("output format", format)
}

// render writes v in the requested format; table output uses the given printer
func render(w io.Writer, format string, v interface{}, table func(io.Writer) error) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case outputYAML:
		return writeYAML(w, v)
	}
	return table(w)
}

// writeYAML goes through JSON so field names and null handling match the
// JSON output, then re-emits the document in block style
func writeYAML(w io.Writer, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return err
	}
	clearStyle(&node)

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return err
	}
	return enc.Close()
}

func clearStyle(n *yaml.Node) {
	n.Style = 0
	for _, child := range n.Content {
		clearStyle(child)
	}
}

func num(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.4f", v)
}

func pValue(p, alpha float64) string {
	if math.IsNaN(p) {
		return "-"
	}
	if p < alpha {
		return significant(fmt.Sprintf("%.4f *", p))
	}
	return fmt.Sprintf("%.4f", p)
}

func measureTable(result *measures.Result) func(io.Writer) error {
	return func(out io.Writer) error {
		fmt.Fprintf(out, "%s (%s)\n\n", result.Measure, result.Polarity)

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "Team\tGames\tW\tL\tPct\tValue")
		fmt.Fprintln(w, "----\t-----\t-\t-\t---\t-----")
		for _, u := range result.Units {
			fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%.3f\t%s\n", u.Unit, u.Games, u.Wins, u.Losses, u.WinPct, num(u.Value))
		}
		return w.Flush()
	}
}

func significanceTable(result *ports.SignificanceResult, histogram *ports.Histogram, alpha float64) func(io.Writer) error {
	return func(out io.Writer) error {
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "Team\t%s\n", result.Unit)
		fmt.Fprintf(w, "Measure\t%s\n", result.Measure)
		fmt.Fprintf(w, "Trials\t%d\n", result.Trials)
		fmt.Fprintf(w, "Observed\t%s\n", num(result.Observed))
		fmt.Fprintf(w, "Null mean\t%s\n", num(result.Summary.Mean))
		fmt.Fprintf(w, "Null std dev\t%s\n", num(result.Summary.StdDev))
		fmt.Fprintf(w, "Null 95th / 99th\t%s / %s\n", num(result.Summary.Percentile95), num(result.Summary.Percentile99))
		fmt.Fprintf(w, "Null percentile\t%.1f%%\n", 100*result.NullPercentile)
		fmt.Fprintf(w, "p-value\t%s\n", pValue(result.PValue, alpha))
		fmt.Fprintf(w, "Run\t%s\n", muted(result.RunID.String()))
		if err := w.Flush(); err != nil {
			return err
		}

		fmt.Fprintln(out, "\nNull distribution")
		peak := 0.0
		for _, c := range histogram.Counts {
			peak = math.Max(peak, c)
		}
		w = tabwriter.NewWriter(out, 0, 0, 1, ' ', 0)
		for i, c := range histogram.Counts {
			bar := 0
			if peak > 0 {
				bar = int(math.Round(40 * c / peak))
			}
			fmt.Fprintf(w, "[%s, %s)\t%4.0f\t%s\n", num(histogram.Dividers[i]), num(histogram.Dividers[i+1]), c, strings.Repeat("#", bar))
		}
		return w.Flush()
	}
}

func expectationTable(point expectationPoint) func(io.Writer) error {
	return func(out io.Writer) error {
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "N\t%d\n", point.Games)
		fmt.Fprintf(w, "k\t%d\n", point.K)
		fmt.Fprintf(w, "p\t%.4f\n", point.P)
		fmt.Fprintf(w, "E[proportion after streak]\t%.6f\n", point.Expectation)
		fmt.Fprintf(w, "Bias\t%+.6f\n", point.Bias)
		return w.Flush()
	}
}

func curveTable(points []curvePoint, p float64) func(io.Writer) error {
	return func(out io.Writer) error {
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "N\tExpectation\tBias")
		fmt.Fprintln(w, "-\t-----------\t----")
		for _, pt := range points {
			fmt.Fprintf(w, "%d\t%.6f\t%+.6f\n", pt.Games, pt.Expectation, pt.Expectation-p)
		}
		return w.Flush()
	}
}

func autocorrelationTable(report *analysis.AutocorrelationReport) func(io.Writer) error {
	return func(out io.Writer) error {
		fmt.Fprintf(out, "Outcomes after %d straight wins\n\n", report.K)

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "Team\tGames\tAfter streak\tStreak mean\tOverall\tDiff\tExpected\tDiff to expected")
		fmt.Fprintln(w, "----\t-----\t------------\t-----------\t-------\t----\t--------\t----------------")
		for _, r := range report.Rows {
			fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%s\t%s\t%s\t%s\n",
				r.Unit, r.Games, r.Candidates, num(r.StreakMean), num(r.OverallMean),
				num(r.Difference), num(r.ExpectedStreakMean), num(r.DifferenceToExpectation))
		}
		fmt.Fprintf(w, "Mean\t\t\t\t\t%s\t\t%s\n", num(report.MeanDifference), num(report.MeanDifferenceToExpectation))
		return w.Flush()
	}
}

func summaryTable(rows []analysis.SummaryRow) func(io.Writer) error {
	return func(out io.Writer) error {
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "Team\tW\tL\tPct\tW streaks\tW mean\tW std\tL streaks\tL mean\tL std\tRuns\tz\tp\tGap\tClump W\t2nd moment\tEntropy\tLog utility\tClump L")
		for _, r := range rows {
			fmt.Fprintf(w, "%s\t%d\t%d\t%.3f\t%d\t%s\t%s\t%d\t%s\t%s\t%.0f\t%s\t%s\t%s\t%.0f\t%.0f\t%s\t%s\t%.0f\n",
				r.Unit, r.Wins, r.Losses, r.WinPct,
				r.WinStreaks.Count, num(r.WinStreaks.Mean), num(r.WinStreaks.StdDev),
				r.LossStreaks.Count, num(r.LossStreaks.Mean), num(r.LossStreaks.StdDev),
				r.Runs, num(r.RunsZ), num(r.RunsP),
				num(r.Gap), r.ClumpWins, r.SecondMoment, num(r.Entropy), num(r.LogUtility), r.ClumpLosses)
		}
		return w.Flush()
	}
}

func sweepTable(result *app.SweepResult, alpha float64) func(io.Writer) error {
	return func(out io.Writer) error {
		fmt.Fprintf(out, "%d permutations per test, successes = %s\n", result.Trials, result.Polarity)
		fmt.Fprintf(out, "%s\n\n", muted("sweep "+result.SweepID.String()+" started "+result.StartedAt.String()))

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "Team\tMeasure\tObserved\tPercentile\tp-value")
		fmt.Fprintln(w, "----\t-------\t--------\t----------\t-------")
		hits := 0
		for _, r := range result.Rows {
			if r.PValue < alpha {
				hits++
			}
			// the colored column is last so escape codes do not skew alignment
			fmt.Fprintf(w, "%s\t%s\t%s\t%.1f%%\t%s\n", r.Unit, r.Measure, num(r.Observed), 100*r.NullPercentile, pValue(r.PValue, alpha))
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(out, "\n%d of %d tests below alpha = %.2f (%dms)\n", hits, len(result.Rows), alpha, result.RuntimeMs)
		return nil
	}
}
