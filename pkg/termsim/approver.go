package termsim

import "context"

// Approver confirms destructive operations such as discarding saved
// progress.
//
// Implementations:
//   - ForcedApprover: shows a short countdown and approves
//   - InteractiveApprover: asks the user to type the exercise id
type Approver interface {
	// RequestApproval returns true when the user agrees to discard the
	// saved progress of exerciseID.
	RequestApproval(ctx context.Context, exerciseID string) (bool, error)
}
