package ports

import "timeherosim/internal/domain/game"

// ActionMetrics counts dispatch outcomes per action type. Refusals are
// precondition or resource failures; failures are routing or domain faults.
type ActionMetrics interface {
	RecordSuccess(actionType game.ActionType)
	RecordRefusal(actionType game.ActionType)
	RecordFailure(actionType game.ActionType)
}
