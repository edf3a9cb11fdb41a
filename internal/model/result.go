package model

import (
	"time"

	"github.com/eitrtech/azurestate/pkg/propdiff"
)

// Action names the corrective operation a reconciliation took or, in dry-run
// mode, predicts.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionNoOp   Action = "no-op"
)

// Outcome is the terminal state of one reconciliation call.
type Outcome string

const (
	// OutcomeConverged means the remote state matches the descriptor, either
	// because it already did or because a corrective call succeeded.
	OutcomeConverged Outcome = "converged"
	// OutcomeFailed means the reconciliation stopped on an error. The result
	// carries the originating error and its taxonomy kind.
	OutcomeFailed Outcome = "failed"
	// OutcomePlanned is the dry-run terminal state: the action and diff are
	// predictions and no mutating call was made.
	OutcomePlanned Outcome = "planned"
)

// ReconcileResult captures the outcome of reconciling a single descriptor.
type ReconcileResult struct {
	DescriptorID string
	Identity     Identity
	Outcome      Outcome
	Action       Action
	// Changed reports whether a corrective call was applied. Dry-run predicts
	// it without performing the action.
	Changed   bool
	Comment   string
	Diff      propdiff.Diff
	Observed  *Observed
	Err       error
	ErrKind   string
	Duration  time.Duration
	Timestamp time.Time
}

// Failed reports whether the reconciliation ended in the Failed outcome.
func (r *ReconcileResult) Failed() bool {
	return r != nil && r.Outcome == OutcomeFailed
}
