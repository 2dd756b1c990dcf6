package main

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/riskbench/internal/model"
	"github.com/sells-group/riskbench/internal/service"
)

var (
	importCohortsPath   string
	importDiagnosesPath string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import cohort aggregates and diagnosis history from CSV",
	Long: `Loads reference data into the store. Cohort CSVs carry one industry
aggregate per row; diagnosis CSVs carry oracle score exports, accepting
both 0-100 scores and 0-1 fractions.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if importCohortsPath == "" && importDiagnosesPath == "" {
			return eris.New("import: at least one of --cohorts or --diagnoses is required")
		}

		env, err := initEnv(ctx, "import")
		if err != nil {
			return err
		}
		defer env.Close()

		if importCohortsPath != "" {
			n, err := importCohorts(cmd, env, importCohortsPath)
			if err != nil {
				return err
			}
			zap.L().Info("cohorts imported",
				zap.Int("count", n),
				zap.String("csv", importCohortsPath),
			)
		}

		if importDiagnosesPath != "" {
			n, err := importDiagnoses(cmd, env, importDiagnosesPath)
			if err != nil {
				return err
			}
			zap.L().Info("diagnoses imported",
				zap.Int("count", n),
				zap.String("csv", importDiagnosesPath),
			)
		}

		return nil
	},
}

// Cohort CSV columns, header required:
// industry,region,avg_risk,population,revenue_avg,revenue_med,
// expenses_avg,expenses_med,customers_avg,customers_med,
// margin_avg,margin_med,green,yellow,orange,red
const cohortColumns = 16

func importCohorts(cmd *cobra.Command, e *env, path string) (int, error) {
	rows, err := readCSV(path)
	if err != nil {
		return 0, err
	}

	count := 0
	for i, row := range rows {
		cohort, err := parseCohortRow(row)
		if err != nil {
			return count, eris.Wrapf(err, "import: cohort row %d", i+2)
		}
		if err := e.Store.UpsertCohort(cmd.Context(), cohort); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

func parseCohortRow(row []string) (model.IndustryCohort, error) {
	if len(row) != cohortColumns {
		return model.IndustryCohort{}, eris.Errorf("expected %d columns, got %d", cohortColumns, len(row))
	}

	nums := make([]float64, 0, cohortColumns-2)
	for _, raw := range row[2:] {
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return model.IndustryCohort{}, eris.Wrapf(err, "parse %q", raw)
		}
		nums = append(nums, n)
	}

	return model.IndustryCohort{
		IndustryID:       row[0],
		Region:           row[1],
		AverageRiskScore: nums[0],
		Population:       int(nums[1]),
		Metrics: model.CohortMetrics{
			Revenue:      model.MetricStat{Average: nums[2], Median: nums[3]},
			Expenses:     model.MetricStat{Average: nums[4], Median: nums[5]},
			Customers:    model.MetricStat{Average: nums[6], Median: nums[7]},
			ProfitMargin: model.MetricStat{Average: nums[8], Median: nums[9]},
		},
		Distribution: model.RiskDistribution{
			Green:  int(nums[10]),
			Yellow: int(nums[11]),
			Orange: int(nums[12]),
			Red:    int(nums[13]),
		},
	}, nil
}

// Diagnosis CSV columns, header required:
// business_id,overall_score,sales,customer,market,created_at
const diagnosisColumns = 6

func importDiagnoses(cmd *cobra.Command, e *env, path string) (int, error) {
	rows, err := readCSV(path)
	if err != nil {
		return 0, err
	}

	count := 0
	for i, row := range rows {
		d, err := parseDiagnosisRow(row)
		if err != nil {
			return count, eris.Wrapf(err, "import: diagnosis row %d", i+2)
		}
		if _, err := e.Service.RecordDiagnosis(cmd.Context(), d); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

func parseDiagnosisRow(row []string) (model.DiagnosisResult, error) {
	if len(row) != diagnosisColumns {
		return model.DiagnosisResult{}, eris.Errorf("expected %d columns, got %d", diagnosisColumns, len(row))
	}

	scores := make([]float64, 4)
	for i, raw := range row[1:5] {
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return model.DiagnosisResult{}, eris.Wrapf(err, "parse %q", raw)
		}
		scores[i] = service.ScoreFromFraction(n)
	}

	createdAt, err := time.Parse(time.RFC3339, row[5])
	if err != nil {
		return model.DiagnosisResult{}, eris.Wrapf(err, "parse timestamp %q", row[5])
	}

	return model.DiagnosisResult{
		BusinessID:   row[0],
		OverallScore: scores[0],
		Components: model.RiskComponents{
			Sales:    scores[1],
			Customer: scores[2],
			Market:   scores[3],
		},
		CreatedAt: createdAt,
	}, nil
}

// readCSV returns all data rows of a headered CSV file.
func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "import: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	r := csv.NewReader(f)
	if _, err := r.Read(); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "import: read header %s", path)
	}

	rows, err := r.ReadAll()
	if err != nil {
		return nil, eris.Wrapf(err, "import: read rows %s", path)
	}
	return rows, nil
}

func init() {
	importCmd.Flags().StringVar(&importCohortsPath, "cohorts", "", "path to cohort aggregates CSV")
	importCmd.Flags().StringVar(&importDiagnosesPath, "diagnoses", "", "path to diagnosis history CSV")
	rootCmd.AddCommand(importCmd)
}
