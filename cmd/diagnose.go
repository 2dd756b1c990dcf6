package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/riskbench/internal/service"
)

var (
	diagnoseOraclePath string
	diagnoseJSON       bool
)

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose <business-id>",
	Short: "Show a business's latest diagnosis and trend",
	Long: `Prints the latest stored diagnosis and the directional trend over the
business's history. With --from, first records a new diagnosis from an
oracle JSON payload, re-deriving the alert level from the score.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		businessID := args[0]

		env, err := initEnv(ctx, "diagnose")
		if err != nil {
			return err
		}
		defer env.Close()

		if diagnoseOraclePath != "" {
			data, err := os.ReadFile(diagnoseOraclePath)
			if err != nil {
				return eris.Wrapf(err, "read oracle payload %s", diagnoseOraclePath)
			}
			d, err := service.ParseOracle(businessID, data)
			if err != nil {
				return err
			}
			if _, err := env.Service.RecordDiagnosis(ctx, *d); err != nil {
				return err
			}
			zap.L().Info("diagnosis recorded",
				zap.String("business_id", businessID),
				zap.Float64("score", d.OverallScore),
				zap.String("alert", d.Alert.String()),
			)
		}

		latest, err := env.Service.Diagnose(ctx, businessID)
		if err != nil {
			return err
		}
		if latest == nil {
			return eris.Errorf("no diagnosis on record for %s", businessID)
		}

		trend, sufficient, err := env.Service.Trend(ctx, businessID, 0)
		if err != nil {
			return err
		}

		if diagnoseJSON {
			out := map[string]any{"diagnosis": latest}
			if sufficient {
				out["trend"] = trend
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return eris.Wrap(enc.Encode(out), "encode output")
		}

		fmt.Printf("Business:  %s\n", latest.BusinessID)
		fmt.Printf("Score:     %.1f\n", latest.OverallScore)
		fmt.Printf("Alert:     %s\n", latest.Alert)
		fmt.Printf("Diagnosed: %s\n", latest.CreatedAt.Format("2006-01-02 15:04"))
		if sufficient {
			fmt.Printf("Trend:     %s (delta %+.1f)\n", trend.Label, trend.Delta)
		} else {
			fmt.Println("Trend:     insufficient history")
		}
		return nil
	},
}

func init() {
	diagnoseCmd.Flags().StringVar(&diagnoseOraclePath, "from", "", "oracle JSON payload to record before reporting")
	diagnoseCmd.Flags().BoolVar(&diagnoseJSON, "json", false, "emit JSON instead of text")
	rootCmd.AddCommand(diagnoseCmd)
}
