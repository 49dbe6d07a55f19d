package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/cyclone-constraint-service/internal/adapter/climo"
	"github.com/couchcryptid/cyclone-constraint-service/internal/constraint"
	"github.com/couchcryptid/cyclone-constraint-service/internal/domain"
	"github.com/couchcryptid/cyclone-constraint-service/internal/pipeline"
)

var (
	inputPath       string
	calibrationPath string
	outputFormat    string
)

func init() {
	runCmd.Flags().StringVar(&inputPath, "input", "", "path to a JSON array of raw advisory documents (required)")
	runCmd.Flags().StringVar(&calibrationPath, "calibration", "", "optional YAML calibration file overriding the defaults")
	runCmd.Flags().StringVar(&outputFormat, "format", "table", "output format: table or json")
	_ = runCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Replay an advisory file through the constraint engine",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cal := constraint.DefaultCalibration()
		if calibrationPath != "" {
			var err error
			if cal, err = constraint.LoadCalibration(calibrationPath); err != nil {
				return err
			}
		}

		observations, err := loadObservations(inputPath)
		if err != nil {
			return err
		}

		engine := constraint.NewEngine(cal)
		estimator := climo.NewEstimator(256)
		tl, results, err := pipeline.Replay(engine, estimator, observations)
		if err != nil {
			return err
		}

		switch outputFormat {
		case "json":
			return writeJSON(cmd, results)
		case "table":
			return writeTable(cmd, tl.StormID(), results)
		default:
			return fmt.Errorf("unknown format %q: want table or json", outputFormat)
		}
	},
}

// loadObservations parses and validates an advisory file through the same
// boundary conversion the live pipeline applies to Kafka messages.
func loadObservations(path string) ([]domain.StormObservation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read advisory file: %w", err)
	}

	var advisories []domain.RawAdvisory
	if err := json.Unmarshal(data, &advisories); err != nil {
		return nil, fmt.Errorf("parse advisory file %s: %w", path, err)
	}

	observations := make([]domain.StormObservation, 0, len(advisories))
	for i, adv := range advisories {
		obs, err := adv.Validate()
		if err != nil {
			return nil, fmt.Errorf("advisory %d: %w", i, err)
		}
		observations = append(observations, obs)
	}
	return observations, nil
}

func writeJSON(cmd *cobra.Command, results []pipeline.CycleResult) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

func writeTable(cmd *cobra.Command, stormID string, results []pipeline.CycleResult) error {
	fmt.Fprintf(cmd.OutOrStdout(), "Storm %s: %d snapshots\n\n", stormID, len(results))

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tI\tR\tS\tL\tΔL\tREGIME\tRISK")
	for _, r := range results {
		snap := r.Snapshot
		gradient := "—"
		if snap.Gradient != nil {
			gradient = fmt.Sprintf("%+.3f", *snap.Gradient)
		}
		fmt.Fprintf(w, "%s\t%.3f\t%.3f\t%.3f\t%.3f\t%s\t%s\t%s\n",
			snap.Timestamp.Format("2006-01-02 15:04"),
			snap.Indicative, snap.Relational, snap.Semantic, snap.Admissibility,
			gradient, snap.Regime, snap.RefusalRisk)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(results) > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "\nFinal insight: %s\n", results[len(results)-1].Insight)
	}
	return nil
}
