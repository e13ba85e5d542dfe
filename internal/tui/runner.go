package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/darwinyusef/termsim/internal/events"
	"github.com/darwinyusef/termsim/internal/services"
	"github.com/darwinyusef/termsim/pkg/termsim"
)

// Run starts the full-screen terminal and blocks until the user quits or
// ctx is cancelled.
func Run(ctx context.Context, mgr *services.ExerciseManager, bus *events.Bus, cfg Config) error {
	m := NewModel(ctx, mgr, bus, cfg)
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("terminal: %w", err)
	}
	return nil
}

// RenderMarkdown renders md for a terminal of the given width. Without an
// interactive terminal, or if rendering fails, md is returned as is.
func RenderMarkdown(md string, width int) string {
	if !IsInteractive() {
		return md
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}

// ExerciseMarkdown describes ex and its steps as markdown.
func ExerciseMarkdown(ex *termsim.Exercise) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", ex.Title)
	var meta []string
	for _, v := range []string{ex.ID, ex.Category, ex.Difficulty} {
		if v != "" {
			meta = append(meta, "`"+v+"`")
		}
	}
	if len(meta) > 0 {
		b.WriteString(strings.Join(meta, " · "))
		b.WriteString("\n\n")
	}
	if ex.Description != "" {
		b.WriteString(ex.Description)
		b.WriteString("\n\n")
	}

	fmt.Fprintf(&b, "## Steps (%d points)\n\n", ex.TotalPoints())
	for i, s := range ex.Steps {
		fmt.Fprintf(&b, "%d. %s *(%d pts, %s)*\n", i+1, s.Instruction, s.Points, s.Validation.Type)
	}
	return b.String()
}
