package wizards

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darwinyusef/termsim/internal/config"
)

var (
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
	keyBksp  = tea.KeyMsg{Type: tea.KeyBackspace}
)

func feed(t *testing.T, w ConfigWizard, msgs ...tea.Msg) ConfigWizard {
	t.Helper()
	var m tea.Model = w
	for _, msg := range msgs {
		m, _ = m.Update(msg)
	}
	out, ok := m.(ConfigWizard)
	require.True(t, ok)
	return out
}

func text(s string) []tea.Msg {
	msgs := make([]tea.Msg, 0, len(s))
	for _, r := range s {
		msgs = append(msgs, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return msgs
}

func seq(parts ...[]tea.Msg) []tea.Msg {
	var out []tea.Msg
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func one(m tea.Msg) []tea.Msg { return []tea.Msg{m} }

func repeat(m tea.Msg, n int) []tea.Msg {
	out := make([]tea.Msg, n)
	for i := range out {
		out[i] = m
	}
	return out
}

func TestConfigWizard_BuiltinDefaults(t *testing.T) {
	w := feed(t, NewConfigWizard(), seq(
		one(keyEnter), // built-in
		one(keyEnter), // ai endpoint, empty
		one(keyEnter), // store: file
		one(keyEnter), // target, empty
		one(keyEnter), // log level: info
	)...)

	res := w.Result()
	require.False(t, res.Cancelled)
	assert.Equal(t, config.SourceBuiltin, res.Config.Exercises.Source)
	assert.Equal(t, "file", res.Config.Progress.Store)
	assert.Equal(t, "info", res.Config.Log.Level)
	assert.Empty(t, res.Config.AI.Endpoint)
	assert.Contains(t, w.View(), "Configuration ready.")
	require.NoError(t, res.Config.Validate())
}

func TestConfigWizard_HTTPSourceWithPostgres(t *testing.T) {
	w := feed(t, NewConfigWizard(), seq(
		one(keyDown), one(keyDown), one(keyEnter), // exercise server
		text("http://exercises:3000"), one(keyEnter),
		text("http://ai:8000/validate"), one(keyEnter),
		repeat(keyBksp, 4), text("postgres"), one(keyEnter),
		text("postgresql://termsim@db/termsim"), one(keyEnter),
		repeat(keyBksp, 4), text("Error"), one(keyEnter),
	)...)

	res := w.Result()
	require.False(t, res.Cancelled)
	assert.Equal(t, config.SourceHTTP, res.Config.Exercises.Source)
	assert.Equal(t, "http://exercises:3000", res.Config.Exercises.URL)
	assert.Equal(t, "http://ai:8000/validate", res.Config.AI.Endpoint)
	assert.Equal(t, "postgres", res.Config.Progress.Store)
	assert.Equal(t, "postgresql://termsim@db/termsim", res.Config.Progress.DSN)
	assert.Empty(t, res.Config.Progress.Path)
	assert.Equal(t, "error", res.Config.Log.Level)
}

func TestConfigWizard_DirectoryRequired(t *testing.T) {
	w := feed(t, NewConfigWizard(), keyDown, keyEnter, keyEnter)

	assert.Contains(t, w.View(), "this field is required")
	assert.Contains(t, w.View(), "Exercises directory")
	assert.False(t, w.Result().Cancelled)

	w = feed(t, w, seq(text("./exercises"), one(keyTab), repeat(keyEnter, 4))...)
	assert.Equal(t, config.SourceDir, w.Result().Config.Exercises.Source)
	assert.Equal(t, "./exercises", w.Result().Config.Exercises.Dir)
}

func TestConfigWizard_RejectsBadEndpoint(t *testing.T) {
	w := feed(t, NewConfigWizard(), seq(one(keyEnter), text("localhost:8000"), one(keyEnter))...)
	assert.Contains(t, w.View(), "must be an http(s) URL")
}

func TestConfigWizard_CancelFromSource(t *testing.T) {
	w := feed(t, NewConfigWizard(), keyEsc)
	assert.True(t, w.Result().Cancelled)
	assert.Contains(t, w.View(), "Setup cancelled.")
}

func TestConfigWizard_CancelFromDetails(t *testing.T) {
	w := feed(t, NewConfigWizard(), keyEnter, keyEsc)
	assert.True(t, w.Result().Cancelled)
}

func TestConfigWizard_FileStorePath(t *testing.T) {
	w := feed(t, NewConfigWizard(), seq(
		one(keyEnter),
		one(keyEnter),
		one(keyEnter),
		text("state/progress.json"), one(keyEnter),
		one(keyEnter),
	)...)
	assert.Equal(t, "state/progress.json", w.Result().Config.Progress.Path)
}
