package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServe_StopsWithContext(t *testing.T) {
	setupProject(t, "server:\n  addr: 127.0.0.1:0\n")
	_, errOut := capture(t, serveCmd, "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	serveCmd.SetContext(ctx)
	t.Cleanup(func() { serveCmd.SetContext(context.Background()) })

	require.NoError(t, runServe(serveCmd, nil))
	assert.Contains(t, errOut.String(), "Serving exercises from built-in catalog")
}

func TestServe_InvalidAddr(t *testing.T) {
	setupProject(t, "server:\n  addr: 127.0.0.1:notaport\n")
	capture(t, serveCmd, "")

	err := runServe(serveCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listen on 127.0.0.1:notaport")
}
