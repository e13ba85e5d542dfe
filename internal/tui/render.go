package tui

import (
	"fmt"
	"strings"

	"github.com/darwinyusef/termsim/internal/events"
	"github.com/darwinyusef/termsim/pkg/termsim"
)

// FormatEvent renders e as terminal lines. Unknown events render nothing.
func FormatEvent(e events.Event) []string {
	switch p := e.Payload.(type) {
	case events.ExerciseLoaded:
		return []string{
			SuccessStyle.Render("Exercise loaded: " + p.Title),
			fmt.Sprintf("Total steps: %d", p.TotalSteps),
			"",
		}
	case events.StepChanged:
		return []string{StepStyle.Render(fmt.Sprintf("[Step %d] %s", p.Index+1, p.Step.Instruction))}
	case events.StepCompleted:
		return []string{
			SuccessStyle.Render(SymbolCheck + " " + p.Feedback),
			SuccessStyle.Render(fmt.Sprintf("+%d points (Total: %d)", p.Points, p.TotalPoints)),
			"",
		}
	case events.StepFailed:
		return []string{ErrorStyle.Render(SymbolCross + " " + p.Feedback), ""}
	case events.ExerciseCompleted:
		return []string{
			"",
			SuccessStyle.Render(SymbolComplete + " Exercise completed!"),
			SuccessStyle.Render(fmt.Sprintf("Total points: %d", p.TotalPoints)),
			"",
		}
	case events.Error:
		return []string{ErrorStyle.Render("Error: " + p.Message)}
	}
	return nil
}

// FormatOutput splits command output into lines. The clear-screen sentinel
// and empty output yield no lines.
func FormatOutput(text string) []string {
	if text == "" || text == termsim.ClearScreen {
		return nil
	}
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}

// Prompt renders the shell prompt for user in cwd.
func Prompt(user, cwd string) string {
	return PromptUserStyle.Render(user) + ":" + PromptPathStyle.Render(cwd) + "$ "
}

// Welcome is shown when the terminal starts.
func Welcome() []string {
	return []string{
		SuccessStyle.Render("Welcome to Terminal Simulator"),
		"Type commands to interact with the virtual Linux system.",
		"Type 'help' for the available commands, 'exit' or Ctrl+D to leave.",
		"",
	}
}
