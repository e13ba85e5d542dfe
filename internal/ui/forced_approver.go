package ui

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/darwinyusef/termsim/pkg/termsim"
)

// Status symbols shared by the approvers.
const (
	SymbolCheck = "✓"
	SymbolCross = "✗"
)

// ForcedApprover is used with --force: it displays a countdown and then
// approves, giving the user a moment to press Ctrl+C.
type ForcedApprover struct {
	output    io.Writer
	countdown time.Duration
	sleepFn   func(time.Duration)
}

// NewForcedApprover writes the countdown to output. A zero countdown
// approves immediately.
func NewForcedApprover(output io.Writer, countdown time.Duration) termsim.Approver {
	return &ForcedApprover{output: output, countdown: countdown, sleepFn: time.Sleep}
}

// RequestApproval displays a countdown and automatically approves after it.
func (a *ForcedApprover) RequestApproval(ctx context.Context, exerciseID string) (bool, error) {
	fmt.Fprintf(a.output, "\nDiscarding saved progress for '%s' (--force)\n", exerciseID)

	for i := int(a.countdown.Seconds()); i > 0; i-- {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		default:
			fmt.Fprintf(a.output, "\rResetting in: %d seconds... (Press Ctrl+C to cancel)", i)
			a.sleepFn(time.Second)
		}
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	fmt.Fprintf(a.output, "\r%s Resetting progress...                                   \n", SymbolCheck)
	return true, nil
}

// Verify ForcedApprover implements the Approver interface at compile time
var _ termsim.Approver = (*ForcedApprover)(nil)
