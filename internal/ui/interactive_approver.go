package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/darwinyusef/termsim/pkg/termsim"
)

// InteractiveApprover asks the user to type the exercise id before its
// progress is discarded.
type InteractiveApprover struct {
	input  io.Reader
	output io.Writer
}

// NewInteractiveApprover reads the answer from input and writes prompts to
// output.
func NewInteractiveApprover(input io.Reader, output io.Writer) termsim.Approver {
	return &InteractiveApprover{input: input, output: output}
}

// RequestApproval prompts the user to type exerciseID to confirm.
func (a *InteractiveApprover) RequestApproval(ctx context.Context, exerciseID string) (bool, error) {
	fmt.Fprintf(a.output, "\nWARNING: You are about to discard all saved progress for '%s'\n", exerciseID)
	fmt.Fprintln(a.output, "Points and the current step will be lost.")
	fmt.Fprintf(a.output, "\nTo confirm, type the exercise id '%s' and press Enter: ", exerciseID)

	// Read user input with context cancellation support
	inputChan := make(chan string, 1)
	errChan := make(chan error, 1)

	go func() {
		reader := bufio.NewReader(a.input)
		input, err := reader.ReadString('\n')
		if err != nil && (err != io.EOF || input == "") {
			errChan <- err
			return
		}
		inputChan <- strings.TrimSpace(input)
	}()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case err := <-errChan:
		return false, fmt.Errorf("failed to read input: %w", err)
	case input := <-inputChan:
		if input == exerciseID {
			fmt.Fprintln(a.output, SymbolCheck+" Confirmed. Resetting progress...")
			return true, nil
		}
		fmt.Fprintf(a.output, "%s Input '%s' does not match exercise id '%s'. Operation cancelled.\n", SymbolCross, input, exerciseID)
		return false, nil
	}
}

// Verify InteractiveApprover implements the Approver interface at compile time
var _ termsim.Approver = (*InteractiveApprover)(nil)
