package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/resellkit/research-core/internal/crossval"
	"github.com/resellkit/research-core/internal/model"
)

var (
	validateObsPath string
	validateField   string
	validateSummary bool
)

// validationReport pairs per-field results with their rollup.
type validationReport struct {
	Fields  []model.CrossValidatedField `json:"fields"`
	Summary crossval.Summary            `json:"summary"`
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Cross-validate field observations",
	Long:  "Reads a JSON file mapping field names to source observations and prints the cross-validated value, confidence, and conflicts for each field.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		observations, err := readObservations(validateObsPath)
		if err != nil {
			return err
		}

		var results []model.CrossValidatedField
		if validateField != "" {
			sources, ok := observations[validateField]
			if !ok {
				return eris.Errorf("validate: no observations for field %q", validateField)
			}
			results = []model.CrossValidatedField{crossval.ValidateField(validateField, sources)}
		} else {
			results = crossval.ValidateAll(observations)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if validateSummary {
			return enc.Encode(validationReport{Fields: results, Summary: crossval.Summarize(results)})
		}
		return enc.Encode(results)
	},
}

func init() {
	validateCmd.Flags().StringVar(&validateObsPath, "observations", "", "path to the observations JSON (required)")
	validateCmd.Flags().StringVar(&validateField, "field", "", "validate a single field instead of all")
	validateCmd.Flags().BoolVar(&validateSummary, "summary", false, "include an aggregate rollup in the output")
	_ = validateCmd.MarkFlagRequired("observations")
	rootCmd.AddCommand(validateCmd)
}

// readObservations loads a field-name to observations mapping.
func readObservations(path string) (map[string][]model.FieldDataSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "validate: read observations")
	}

	var observations map[string][]model.FieldDataSource
	if err := json.Unmarshal(data, &observations); err != nil {
		return nil, eris.Wrap(err, "validate: parse observations")
	}
	if len(observations) == 0 {
		return nil, eris.New("validate: no observations in file")
	}
	return observations, nil
}
