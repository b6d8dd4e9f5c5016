package server

import (
	"path/filepath"
	"testing"

	"ai-scorestudio/internal/bootstrap"
	"ai-scorestudio/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The cors middleware rejects a wildcard origin combined with credentials at
// construction time, so a bad default would make startup panic before any
// request is served.
func TestServerStartsWithDefaultConfig(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "ollama")
	t.Setenv("LOG_FILE_PATH", filepath.Join(t.TempDir(), "app.log"))

	cfg := config.Load()
	assert.NotEqual(t, "*", cfg.App.CorsAllowedOrigins,
		"default origin must be concrete, wildcard cannot carry credentials")

	container := bootstrap.NewContainer(cfg)
	defer container.Bus.Close()

	var srv *Server
	require.NotPanics(t, func() { srv = New(cfg, container) })
	require.NotNil(t, srv.GetApp())
}
