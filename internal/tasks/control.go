package tasks

import "github.com/desertthunder/podfix/internal/models"

// ControlMode identifies the checkpoint at which the operator is consulted.
type ControlMode int

const (
	// ControlPreProcess fires once after the first page fetch, before any
	// episode is processed; the operator may resize the batch and the first
	// page is re-fetched with the new size.
	ControlPreProcess ControlMode = iota
	// ControlBatchComplete fires after each processed batch; a batch size
	// change applies to the next fetch only.
	ControlBatchComplete
	// ControlPageError fires when a page fetch fails after retries.
	ControlPageError
)

func (m ControlMode) String() string {
	switch m {
	case ControlPreProcess:
		return "pre_process"
	case ControlBatchComplete:
		return "batch_complete"
	case ControlPageError:
		return "page_error"
	default:
		return ""
	}
}

// BatchTotals summarizes one processed batch.
type BatchTotals struct {
	Processed int
	Success   int
	Failed    int
	Skipped   int
}

// ControlPoint carries batch and run state to the operator at a checkpoint.
type ControlPoint struct {
	Mode      ControlMode
	Page      int
	BatchSize int
	Batch     BatchTotals        // last batch; zero value at pre-process
	Run       models.RunMetadata // cumulative run state
	Err       error              // set only for ControlPageError
}

// Decision is the operator's answer at a checkpoint.
type Decision struct {
	Continue  bool
	BatchSize int // desired next batch size; 0 keeps the current size
}

// ControlFunc supplies continue/stop/resize decisions between batches. An
// interactive deployment prompts a human; automated ones substitute a policy
// function. Implementations may block indefinitely on input.
type ControlFunc func(ControlPoint) Decision

// AutoContinue is the policy for unattended runs: always continue, keep the
// batch size constant.
func AutoContinue(ControlPoint) Decision {
	return Decision{Continue: true}
}
