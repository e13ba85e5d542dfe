package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

var termsimEnv = []string{
	"TERMSIM_EXERCISES_SOURCE", "TERMSIM_EXERCISES_DIR", "TERMSIM_EXERCISES_URL",
	"TERMSIM_AI_ENDPOINT", "TERMSIM_PROGRESS_STORE", "TERMSIM_PROGRESS_DSN",
	"TERMSIM_LOG_LEVEL", "TERMSIM_LOG_FORMAT", "TERMSIM_SERVER_ADDR", "DATABASE_URL",
}

// setupProject writes termsim.yaml into a temp dir, points --config at it
// and isolates the test from the caller's environment. It returns the dir.
func setupProject(t *testing.T, yaml string) string {
	t.Helper()

	dir := t.TempDir()
	t.Chdir(dir)
	for _, key := range termsimEnv {
		t.Setenv(key, "")
	}
	t.Setenv("TERMSIM_NON_INTERACTIVE", "1")

	if yaml == "" {
		yaml = "progress:\n  store: file\n  path: progress.json\n"
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "termsim.yaml"), []byte(yaml), 0o644))

	original := rootFlags
	rootFlags.configPath = filepath.Join(dir, "termsim.yaml")
	rootFlags.logFormat = ""
	rootFlags.logLevel = ""
	rootFlags.verbose = false
	t.Cleanup(func() { rootFlags = original })
	return dir
}

// capture redirects cmd's streams, feeding it stdin, for the test's duration.
func capture(t *testing.T, cmd *cobra.Command, stdin string) (*bytes.Buffer, *bytes.Buffer) {
	t.Helper()

	var out, errOut bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	t.Cleanup(func() {
		cmd.SetIn(nil)
		cmd.SetOut(nil)
		cmd.SetErr(nil)
	})
	return &out, &errOut
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
