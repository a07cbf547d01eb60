package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/resellkit/research-core/internal/model"
	"github.com/resellkit/research-core/internal/planner"
	"github.com/resellkit/research-core/internal/registry"
)

var planSnapshotPath string

// planSnapshot is the on-disk shape of a planning decision's inputs.
// Constraints, history, and catalog are optional: missing constraints come
// from the configured mode, a missing history means a fresh session, and a
// missing catalog falls back to the configured tool catalog.
type planSnapshot struct {
	States      *model.ItemFieldStates     `json:"states"`
	Constraints *model.ResearchConstraints `json:"constraints,omitempty"`
	Context     model.ResearchContext      `json:"context"`
	History     *model.ResearchTaskHistory `json:"history,omitempty"`
	Catalog     []model.Tool               `json:"catalog,omitempty"`
}

// planDecision is what the plan command prints: exactly one side is set.
type planDecision struct {
	Task       *model.ResearchTask `json:"task,omitempty"`
	StopReason model.StopReason    `json:"stop_reason,omitempty"`
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Replay one planning decision from a session snapshot",
	Long:  "Reads a session snapshot (field states, history, context) and prints the next task the planner would pick, or the reason it would stop. Useful for debugging why a session spent where it did.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		snap, err := readPlanSnapshot(planSnapshotPath)
		if err != nil {
			return err
		}

		var fallback []model.Tool
		if len(snap.Catalog) == 0 {
			catalog, err := registry.LoadCatalog(cfg.Registry.ToolsPath)
			if err != nil {
				return eris.Wrap(err, "load tool catalog")
			}
			fallback = catalog.Tools()
		}

		in := buildPlanInput(snap, fallback, cfg.Pipeline.Constraints())

		task, reason := planner.New(planner.DefaultConfig()).PlanNext(in)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(planDecision{Task: task, StopReason: reason})
	},
}

func init() {
	planCmd.Flags().StringVar(&planSnapshotPath, "snapshot", "", "path to the session snapshot JSON (required)")
	_ = planCmd.MarkFlagRequired("snapshot")
	rootCmd.AddCommand(planCmd)
}

// readPlanSnapshot loads and parses a snapshot file.
func readPlanSnapshot(path string) (planSnapshot, error) {
	var snap planSnapshot

	data, err := os.ReadFile(path)
	if err != nil {
		return snap, eris.Wrap(err, "plan: read snapshot")
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return snap, eris.Wrap(err, "plan: parse snapshot")
	}
	if snap.States == nil {
		return snap, eris.New("plan: snapshot has no field states")
	}
	return snap, nil
}

// buildPlanInput fills a snapshot's optional parts with fallbacks.
func buildPlanInput(snap planSnapshot, fallbackCatalog []model.Tool, fallbackConstraints model.ResearchConstraints) planner.Input {
	in := planner.Input{
		States:      snap.States,
		Constraints: fallbackConstraints,
		Context:     snap.Context,
		History:     snap.History,
		Catalog:     snap.Catalog,
	}
	if snap.Constraints != nil {
		in.Constraints = *snap.Constraints
	}
	if in.History == nil {
		in.History = model.NewTaskHistory()
	}
	if len(in.Catalog) == 0 {
		in.Catalog = fallbackCatalog
	}
	return in
}
