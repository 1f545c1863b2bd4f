package cmd

import (
	"fmt"
	"os"

	"github.com/frahmantamala/evaluation-criteria/internal/category"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var weightsCmd = &cobra.Command{
	Use:   "weights",
	Short: "Weight distribution tools",
}

var weightsFile string

var validateWeightsCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a proposed weight distribution offline",
	Long: `Read a YAML document of the form

  weights:
    - category_id: 1
      weight: 60
    - category_id: 2
      weight: 40

and report whether it would be accepted by a rebalance. No database is needed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(weightsFile)
		if err != nil {
			return fmt.Errorf("read %s: %w", weightsFile, err)
		}

		var doc struct {
			Weights []category.WeightPair `yaml:"weights"`
		}
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return fmt.Errorf("parse %s: %w", weightsFile, err)
		}

		result := category.ValidateWeights(doc.Weights)

		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(result); err != nil {
			return err
		}
		if err := enc.Close(); err != nil {
			return err
		}

		if !result.Valid {
			return fmt.Errorf("distribution rejected: total %.2f, delta %+.2f", result.Total, result.Delta)
		}
		return nil
	},
}

func init() {
	validateWeightsCmd.Flags().StringVarP(&weightsFile, "file", "f", "", "YAML file with the proposed weights")
	_ = validateWeightsCmd.MarkFlagRequired("file")

	weightsCmd.AddCommand(validateWeightsCmd)
	rootCmd.AddCommand(weightsCmd)
}
