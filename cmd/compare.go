package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/riskbench/internal/benchmark"
	"github.com/sells-group/riskbench/internal/model"
)

var (
	compareBusinessID string
	compareIndustry   string
	compareRevenue    float64
	compareExpenses   float64
	compareCustomers  float64
	compareFormat     string
	compareOutput     string
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Benchmark a business against its industry cohort",
	Long: `Runs a full cohort comparison for a business: relative position gauge,
normalized radar axes across the main industry categories, and per-metric
differences against the cohort average.

Examples:
  # Compare using the stored diagnosis score
  compare --business b-1 --industry cafe --revenue 38000000

  # Export as CSV
  compare --business b-1 --industry 치킨 --format csv --output compare.csv

  # Export as XLSX
  compare --business b-1 --industry retail --format xlsx --output compare.xlsx`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx, "compare")
		if err != nil {
			return err
		}
		defer env.Close()

		business := model.DiagnosisResult{BusinessID: compareBusinessID}
		latest, err := env.Service.Diagnose(ctx, compareBusinessID)
		if err != nil {
			return err
		}
		if latest != nil {
			business = *latest
		}

		payload, err := env.Service.Compare(ctx, benchmark.CompareInput{
			Business:  business,
			Industry:  compareIndustry,
			Revenue:   compareRevenue,
			Expenses:  compareExpenses,
			Customers: compareCustomers,
		})
		if err != nil {
			return err
		}

		return outputComparison(payload, compareFormat, compareOutput)
	},
}

func outputComparison(p model.ComparisonPayload, format, outputPath string) error {
	if format == "xlsx" {
		if outputPath == "" {
			return eris.New("compare: xlsx format requires --output")
		}
		return writeCompareXLSX(outputPath, p)
	}

	w := os.Stdout
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return eris.Wrapf(err, "compare: create output file %s", outputPath)
		}
		defer f.Close() //nolint:errcheck
		w = f
	}

	switch format {
	case "csv":
		return writeCompareCSV(w, p)
	case "table":
		return writeCompareTable(w, p)
	default:
		return eris.Errorf("compare: unsupported format %q", format)
	}
}

// comparisonMetrics returns the metric names in stable order.
func comparisonMetrics(p model.ComparisonPayload) []string {
	names := make([]string, 0, len(p.Comparison))
	for name := range p.Comparison {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func writeCompareTable(w io.Writer, p model.ComparisonPayload) error {
	fmt.Fprintf(w, "Industry:          %s\n", p.IndustryID)
	fmt.Fprintf(w, "Business score:    %.1f\n", p.BusinessScore)
	fmt.Fprintf(w, "Industry average:  %.1f\n", p.IndustryAverage)
	fmt.Fprintf(w, "Relative position: %.1f / 100\n\n", p.RelativePosition)

	fmt.Fprintf(w, "%-12s %15s %15s %8s\n", "Metric", "Business", "Cohort Avg", "Diff%")
	fmt.Fprintln(w, strings.Repeat("-", 53))
	for _, name := range comparisonMetrics(p) {
		c := p.Comparison[name]
		fmt.Fprintf(w, "%-12s %15.0f %15.0f %+7.1f%%\n", name, c.User, c.Average, c.DiffPct)
	}

	fmt.Fprintf(w, "\n%-20s %s\n", "Radar axis", "Values (by category)")
	fmt.Fprintln(w, strings.Repeat("-", 53))
	for _, axis := range p.Radar {
		values := make([]string, len(axis.Values))
		for i, v := range axis.Values {
			values[i] = fmt.Sprintf("%3d", v)
		}
		fmt.Fprintf(w, "%-20s %s\n", axis.Metric, strings.Join(values, " "))
	}
	return nil
}

func writeCompareCSV(w io.Writer, p model.ComparisonPayload) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"metric", "business", "cohort_average", "diff_pct"}); err != nil {
		return eris.Wrap(err, "compare: write CSV header")
	}
	for _, name := range comparisonMetrics(p) {
		c := p.Comparison[name]
		row := []string{
			name,
			fmt.Sprintf("%.2f", c.User),
			fmt.Sprintf("%.2f", c.Average),
			fmt.Sprintf("%.2f", c.DiffPct),
		}
		if err := cw.Write(row); err != nil {
			return eris.Wrap(err, "compare: write CSV row")
		}
	}
	return nil
}

func writeCompareXLSX(path string, p model.ComparisonPayload) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Comparison")
	if err != nil {
		return eris.Wrap(err, "compare: add sheet")
	}

	addRow := func(values ...string) {
		row := sheet.AddRow()
		for _, v := range values {
			row.AddCell().Value = v
		}
	}

	addRow("industry", p.IndustryID)
	addRow("business_score", fmt.Sprintf("%.1f", p.BusinessScore))
	addRow("industry_average", fmt.Sprintf("%.1f", p.IndustryAverage))
	addRow("relative_position", fmt.Sprintf("%.1f", p.RelativePosition))
	addRow()

	addRow("metric", "business", "cohort_average", "diff_pct")
	for _, name := range comparisonMetrics(p) {
		c := p.Comparison[name]
		addRow(name,
			fmt.Sprintf("%.2f", c.User),
			fmt.Sprintf("%.2f", c.Average),
			fmt.Sprintf("%.2f", c.DiffPct))
	}
	addRow()

	for _, axis := range p.Radar {
		values := []string{axis.Metric}
		for _, v := range axis.Values {
			values = append(values, fmt.Sprintf("%d", v))
		}
		addRow(values...)
	}

	return eris.Wrapf(f.Save(path), "compare: save xlsx %s", path)
}

func init() {
	f := compareCmd.Flags()
	f.StringVar(&compareBusinessID, "business", "", "business ID (required)")
	f.StringVar(&compareIndustry, "industry", "", "industry code or localized label")
	f.Float64Var(&compareRevenue, "revenue", 0, "annual revenue")
	f.Float64Var(&compareExpenses, "expenses", 0, "annual expenses")
	f.Float64Var(&compareCustomers, "customers", 0, "customer count")
	f.StringVar(&compareFormat, "format", "table", "output format: table, csv, xlsx")
	f.StringVar(&compareOutput, "output", "", "output file path (default stdout)")
	_ = compareCmd.MarkFlagRequired("business")
	rootCmd.AddCommand(compareCmd)
}
