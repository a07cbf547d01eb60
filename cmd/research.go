package main

import (
	"encoding/json"
	"os"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/resellkit/research-core/internal/model"
)

var researchItem model.Item

var researchCmd = &cobra.Command{
	Use:   "research",
	Short: "Research a single inventory item",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initRunEnv(ctx, "research")
		if err != nil {
			return err
		}
		defer env.Close()

		item := researchItem
		if item.ID == "" {
			item.ID = uuid.NewString()
		}

		run, err := env.Runner.Run(ctx, item)
		if err != nil {
			return eris.Wrap(err, "research run")
		}

		if run.Result != nil {
			zap.L().Info("research complete",
				zap.String("item", item.Name),
				zap.String("status", string(run.Status)),
				zap.String("stop_reason", string(run.Result.StopReason)),
				zap.Float64("completion_score", run.Result.CompletionScore),
				zap.Float64("cost_usd", run.Result.CostUsd),
				zap.Int("iterations", run.Result.Iterations),
			)
		}

		// Print the run JSON to stdout
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(run)
	},
}

func init() {
	researchCmd.Flags().StringVar(&researchItem.Name, "name", "", "item name or listing title (required)")
	researchCmd.Flags().StringVar(&researchItem.ID, "id", "", "item ID (generated when empty)")
	researchCmd.Flags().StringVar(&researchItem.Category, "category", "", "item category (electronics, apparel, ...)")
	researchCmd.Flags().StringVar(&researchItem.Brand, "brand", "", "brand if already known")
	researchCmd.Flags().StringVar(&researchItem.Model, "model", "", "model number if already known")
	researchCmd.Flags().StringVar(&researchItem.Barcode, "barcode", "", "UPC/EAN barcode")
	researchCmd.Flags().StringVar(&researchItem.Condition, "condition", "", "item condition (new, good, fair, ...)")
	researchCmd.Flags().IntVar(&researchItem.ImageCount, "images", 0, "number of photos on hand")
	researchCmd.Flags().StringVar(&researchItem.Notes, "notes", "", "free-form intake notes")
	_ = researchCmd.MarkFlagRequired("name")
	rootCmd.AddCommand(researchCmd)
}
