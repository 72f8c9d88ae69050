package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_RegistersCommands(t *testing.T) {
	names := make([]string, 0, len(rootCmd.Commands()))
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}

	for _, want := range []string{
		"serve", "ingest", "search", "document", "redact",
		"extract", "mcp", "settings", "tasks", "version",
	} {
		assert.Contains(t, names, want)
	}
}

func TestRootCmd_PersistentFlags(t *testing.T) {
	v := rootCmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, v)
	assert.Equal(t, "v", v.Shorthand)
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("log-json"))
}

func TestServeCmd_Flags(t *testing.T) {
	for _, name := range []string{"addr", "no-mcp", "no-inbox"} {
		assert.NotNil(t, serveCmd.Flags().Lookup(name), name)
	}
}

func TestServeCmd_ServiceNotConfigured(t *testing.T) {
	SetServices(Services{})
	resetFlags(rootCmd)

	_, err := execute(t, "serve")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "settings service not configured")
}

func TestServeCmd_RejectsMissingSearch(t *testing.T) {
	ts, cleanup := setupTestServicesWith()
	defer cleanup()
	SetServices(Services{Settings: ts.settings})

	_, err := execute(t, "serve")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "validating ports")
}

func TestMCPServeCmd_HasPortFlag(t *testing.T) {
	flag := mcpServeCmd.Flags().Lookup("port")
	require.NotNil(t, flag)
	assert.Equal(t, "p", flag.Shorthand)
	assert.Equal(t, "0", flag.DefValue)
}
