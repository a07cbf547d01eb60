package main

import (
	"encoding/json"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/resellkit/research-core/internal/goals"
	"github.com/resellkit/research-core/internal/model"
)

var (
	goalsConfidence   float64
	goalsSnapshotPath string
)

var goalsCmd = &cobra.Command{
	Use:   "goals",
	Short: "Inspect goal routing",
	Long:  "Commands for seeding a goal list and replaying routing decisions against it.",
}

// -- goals init --

var goalsInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Print a fresh goal list",
	RunE: func(cmd *cobra.Command, _ []string) error {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(goals.DefaultGoals(goalsConfidence))
	},
}

// -- goals route --

// goalSnapshot is the on-disk shape of a routing decision's inputs.
type goalSnapshot struct {
	Goals                    model.GoalList `json:"goals"`
	IdentificationConfidence float64        `json:"identification_confidence"`
}

// routeDecision pairs the directive with the goal list it may have mutated.
type routeDecision struct {
	Directive goals.Directive `json:"directive"`
	Goals     model.GoalList  `json:"goals"`
}

var goalsRouteCmd = &cobra.Command{
	Use:   "route",
	Short: "Replay one routing decision from a goal snapshot",
	Long:  "Reads a goal snapshot and prints the directive the router would issue, plus the goal list after any status changes the routing itself makes.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		snap, err := readGoalSnapshot(goalsSnapshotPath)
		if err != nil {
			return err
		}

		directive := goals.Route(snap.Goals, snap.IdentificationConfidence, time.Now().UTC())

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(routeDecision{Directive: directive, Goals: snap.Goals})
	},
}

func init() {
	goalsInitCmd.Flags().Float64Var(&goalsConfidence, "confidence", 0.85, "required identification confidence")

	goalsRouteCmd.Flags().StringVar(&goalsSnapshotPath, "snapshot", "", "path to the goal snapshot JSON (required)")
	_ = goalsRouteCmd.MarkFlagRequired("snapshot")

	goalsCmd.AddCommand(goalsInitCmd)
	goalsCmd.AddCommand(goalsRouteCmd)
	rootCmd.AddCommand(goalsCmd)
}

// readGoalSnapshot loads and parses a goal snapshot file.
func readGoalSnapshot(path string) (goalSnapshot, error) {
	var snap goalSnapshot

	data, err := os.ReadFile(path)
	if err != nil {
		return snap, eris.Wrap(err, "goals: read snapshot")
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return snap, eris.Wrap(err, "goals: parse snapshot")
	}
	if len(snap.Goals) == 0 {
		return snap, eris.New("goals: snapshot has no goals")
	}
	return snap, nil
}
