package pipeline

import (
	"github.com/resellkit/research-core/internal/goals"
	"github.com/resellkit/research-core/internal/model"
)

// Observer receives session lifecycle events. All methods are called from
// the runner goroutine; implementations must not block.
type Observer interface {
	OnPhaseChange(itemID string, from, to goals.Phase)
	OnTask(itemID string, directive goals.Directive, task model.ResearchTask)
	OnConflict(itemID string, conflict model.Conflict)
	OnStop(itemID string, reason model.StopReason, result *model.RunResult)
}

// NopObserver discards every event.
type NopObserver struct{}

func (NopObserver) OnPhaseChange(string, goals.Phase, goals.Phase) {}

func (NopObserver) OnTask(string, goals.Directive, model.ResearchTask) {}

func (NopObserver) OnConflict(string, model.Conflict) {}

func (NopObserver) OnStop(string, model.StopReason, *model.RunResult) {}
