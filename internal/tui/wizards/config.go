// Package wizards holds the interactive setup flows.
package wizards

import (
	"fmt"
	"net/url"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/darwinyusef/termsim/internal/config"
	"github.com/darwinyusef/termsim/internal/tui/components"
)

// Field keys of the details form.
const (
	fieldExercisesDir = "exercises_dir"
	fieldExercisesURL = "exercises_url"
	fieldAIEndpoint   = "ai_endpoint"
	fieldStore        = "progress_store"
	fieldStoreTarget  = "progress_target"
	fieldLogLevel     = "log_level"
)

// ConfigResult holds the result of the config wizard.
type ConfigResult struct {
	Cancelled bool
	Config    config.Config
}

// ConfigWizard guides users through creating termsim.yaml.
type ConfigWizard struct {
	step   configStep
	source components.Selector
	form   components.Form
	result ConfigResult
	styles wizardStyles
}

type configStep int

const (
	configStepSource configStep = iota
	configStepDetails
	configStepDone
)

type wizardStyles struct {
	Title   lipgloss.Style
	Success lipgloss.Style
	Muted   lipgloss.Style
}

func defaultWizardStyles() wizardStyles {
	return wizardStyles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")).MarginBottom(1),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("34")),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

// NewConfigWizard creates a new config wizard.
func NewConfigWizard() ConfigWizard {
	return ConfigWizard{
		step: configStepSource,
		source: components.NewSelector("Where do exercises come from?", []components.Option{
			{Label: "Built-in catalog", Description: "Exercises shipped with termsim", Value: config.SourceBuiltin},
			{Label: "Local directory", Description: "JSON or YAML exercise files on disk", Value: config.SourceDir},
			{Label: "Exercise server", Description: "Another instance running termsim serve", Value: config.SourceHTTP},
		}),
		styles: defaultWizardStyles(),
	}
}

// Init implements tea.Model.
func (w ConfigWizard) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (w ConfigWizard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch w.step {
	case configStepSource:
		w.source, cmd = w.source.Update(msg)
		switch {
		case w.source.Cancelled():
			return w.cancel()
		case w.source.Submitted():
			w.form = detailsForm(w.source.Value())
			w.step = configStepDetails
		}

	case configStepDetails:
		w.form, cmd = w.form.Update(msg)
		switch {
		case w.form.Cancelled():
			return w.cancel()
		case w.form.Submitted():
			w.result.Config = buildConfig(w.source.Value(), w.form.Values())
			w.step = configStepDone
			return w, tea.Quit
		}
	}
	return w, cmd
}

func (w ConfigWizard) cancel() (tea.Model, tea.Cmd) {
	w.result.Cancelled = true
	w.step = configStepDone
	return w, tea.Quit
}

// View implements tea.Model.
func (w ConfigWizard) View() string {
	var b strings.Builder
	b.WriteString(w.styles.Title.Render("termsim setup"))
	b.WriteString("\n")

	switch w.step {
	case configStepSource:
		b.WriteString(w.source.View())
	case configStepDetails:
		b.WriteString(w.form.View())
	case configStepDone:
		if w.result.Cancelled {
			b.WriteString(w.styles.Muted.Render("Setup cancelled."))
		} else {
			b.WriteString(w.styles.Success.Render("Configuration ready."))
		}
	}
	b.WriteString("\n")
	return b.String()
}

// Result returns the wizard result.
func (w ConfigWizard) Result() ConfigResult {
	return w.result
}

func detailsForm(source string) components.Form {
	var fields []components.TextField
	switch source {
	case config.SourceDir:
		fields = append(fields, components.NewTextField(fieldExercisesDir, "Exercises directory", "./exercises").
			WithRequired(true))
	case config.SourceHTTP:
		fields = append(fields, components.NewTextField(fieldExercisesURL, "Exercise server URL", "http://localhost:3000").
			WithRequired(true).
			WithValidator(validateHTTPURL))
	}

	fields = append(fields,
		components.NewTextField(fieldAIEndpoint, "AI validation endpoint (optional)", "http://localhost:8000/validate").
			WithValidator(validateHTTPURL),
		components.NewTextField(fieldStore, "Progress store (file, memory or postgres)", "file").
			WithValue("file").
			WithRequired(true).
			WithValidator(oneOf("file", "memory", "postgres")),
		components.NewTextField(fieldStoreTarget, "Progress file path or PostgreSQL DSN (optional)", "default location"),
		components.NewTextField(fieldLogLevel, "Log level (verbose, info or error)", "info").
			WithValue("info").
			WithValidator(oneOf("verbose", "info", "error")),
	)
	return components.NewForm("Settings", fields...)
}

func buildConfig(source string, values map[string]string) config.Config {
	cfg := config.Config{
		Exercises: config.ExercisesConfig{
			Source: source,
			Dir:    values[fieldExercisesDir],
			URL:    values[fieldExercisesURL],
		},
		AI:  config.AIConfig{Endpoint: values[fieldAIEndpoint]},
		Log: config.LogConfig{Level: strings.ToLower(values[fieldLogLevel])},
	}

	cfg.Progress.Store = strings.ToLower(values[fieldStore])
	switch target := values[fieldStoreTarget]; cfg.Progress.Store {
	case "postgres":
		cfg.Progress.DSN = target
	case "file":
		cfg.Progress.Path = target
	}
	return cfg
}

func validateHTTPURL(v string) error {
	u, err := url.Parse(v)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("must be an http(s) URL")
	}
	return nil
}

func oneOf(allowed ...string) func(string) error {
	return func(v string) error {
		for _, a := range allowed {
			if strings.EqualFold(v, a) {
				return nil
			}
		}
		return fmt.Errorf("must be one of: %s", strings.Join(allowed, ", "))
	}
}
