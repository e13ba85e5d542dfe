package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/darwinyusef/termsim/pkg/termsim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

var (
	_ termsim.Logger = (*ConsoleLogger)(nil)
	_ termsim.Logger = (*NullLogger)(nil)
	_ termsim.Logger = (*ZapLogger)(nil)
)

func TestConsoleLogger_Prefixes(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger(&buf, true)

	l.Verbose("loaded %s", "linux-basics")
	l.Info("ready")
	l.Error("failed: %d", 3)
	l.Info("100% literal")

	assert.Equal(t, "[VERBOSE] loaded linux-basics\nready\n[ERROR] failed: 3\n100% literal\n", buf.String())
}

func TestConsoleLogger_QuietDropsVerbose(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger(&buf, false)
	l.Verbose("hidden")
	l.Info("shown")
	assert.Equal(t, "shown\n", buf.String())
}

func TestConsoleLogger_ConcurrentLinesStayWhole(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger(&buf, false)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			l.Info("line %02d", i)
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 50)
	for _, line := range lines {
		assert.Regexp(t, `^line \d\d$`, line)
	}
}

func TestJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewJSONLogger(&buf, zapcore.InfoLevel)

	l.Verbose("dropped")
	l.Info("exercise %s loaded", "linux-basics")
	require.NoError(t, l.Sync())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "exercise linux-basics loaded", entry["msg"])
	assert.Contains(t, entry, "time")
	assert.Contains(t, entry["caller"], "logging_test.go")
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer

	l, err := New("", "", false, &buf)
	require.NoError(t, err)
	assert.IsType(t, &ConsoleLogger{}, l)
	assert.False(t, l.(*ConsoleLogger).verbose)

	l, err = New("text", "info", true, &buf)
	require.NoError(t, err)
	assert.True(t, l.(*ConsoleLogger).verbose)

	l, err = New("json", "error", false, &buf)
	require.NoError(t, err)
	assert.IsType(t, &ZapLogger{}, l)

	_, err = New("xml", "", false, &buf)
	assert.ErrorIs(t, err, termsim.ErrInvalidConfig)

	_, err = New("text", "loud", false, &buf)
	assert.ErrorIs(t, err, termsim.ErrInvalidConfig)
}
