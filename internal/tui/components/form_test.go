package components

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func typeInto(f Form, text string) Form {
	for _, r := range text {
		f, _ = f.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return f
}

func newTestForm() Form {
	return NewForm("Settings",
		NewTextField("name", "Name", "student").WithRequired(true),
		NewTextField("url", "URL", "http://...").WithValidator(func(v string) error {
			if !strings.HasPrefix(v, "http") {
				return errors.New("must be an http URL")
			}
			return nil
		}),
	)
}

func TestForm_SubmitsValues(t *testing.T) {
	f := newTestForm()
	f = typeInto(f, "alice")
	f, _ = f.Update(keyEnter)
	require.Equal(t, 1, f.Focused())

	f = typeInto(f, "http://localhost")
	f, _ = f.Update(keyEnter)

	assert.True(t, f.Submitted())
	assert.Equal(t, map[string]string{"name": "alice", "url": "http://localhost"}, f.Values())
}

func TestForm_RequiredFieldBlocksNavigation(t *testing.T) {
	f := newTestForm()
	f, _ = f.Update(keyEnter)

	assert.Equal(t, 0, f.Focused())
	assert.ErrorIs(t, f.Field(0).Error(), ErrFieldRequired)
	assert.Contains(t, f.View(), "this field is required")
}

func TestForm_ValidatorBlocksSubmit(t *testing.T) {
	f := newTestForm()
	f = typeInto(f, "alice")
	f, _ = f.Update(tea.KeyMsg{Type: tea.KeyTab})
	f = typeInto(f, "ftp://x")
	f, _ = f.Update(keyEnter)

	assert.False(t, f.Submitted())
	assert.Contains(t, f.View(), "must be an http URL")
}

func TestForm_OptionalFieldMayBeEmpty(t *testing.T) {
	f := newTestForm()
	f = typeInto(f, "alice")
	f, _ = f.Update(keyEnter)
	f, _ = f.Update(keyEnter)

	assert.True(t, f.Submitted())
	assert.Equal(t, "", f.Values()["url"])
}

func TestForm_PrevAndCancel(t *testing.T) {
	f := newTestForm()
	f = typeInto(f, "alice")
	f, _ = f.Update(keyDown)
	f, _ = f.Update(keyUp)
	assert.Equal(t, 0, f.Focused())

	f, _ = f.Update(keyEsc)
	assert.True(t, f.Cancelled())
	assert.False(t, f.Submitted())
}

func TestForm_InitialValue(t *testing.T) {
	f := NewForm("Settings", NewTextField("level", "Log level", "info").WithValue("  error "))
	assert.Equal(t, "error", f.Values()["level"])
	assert.Nil(t, f.Field(3))
}
