package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command against a temp config dir and captures
// combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	originalConfigDir := configDir
	configDir = t.TempDir()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		configDir = originalConfigDir
	})

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRootCmd_RegistersSubcommands(t *testing.T) {
	var names []string
	for _, cmd := range rootCmd.Commands() {
		names = append(names, cmd.Name())
	}

	assert.Contains(t, names, "ingest")
	assert.Contains(t, names, "generate")
	assert.Contains(t, names, "status")
	assert.Contains(t, names, "config")
	assert.Contains(t, names, "version")
}

func TestVersionCmd_Executes(t *testing.T) {
	originalVersion := version
	version = "test-version-1.0.0"
	defer func() { version = originalVersion }()

	out, err := execute(t, "version")

	assert.NoError(t, err)
	assert.Contains(t, out, "decker version test-version-1.0.0")
}

func TestConfigSetGet_RoundTrips(t *testing.T) {
	originalConfigDir := configDir
	configDir = t.TempDir()
	defer func() { configDir = originalConfigDir }()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	defer rootCmd.SetArgs(nil)

	rootCmd.SetArgs([]string{"config", "set", "llm.provider", "anthropic"})
	require.NoError(t, rootCmd.Execute())

	buf.Reset()
	rootCmd.SetArgs([]string{"config", "get", "llm.provider"})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), "anthropic")
}

func TestConfigGet_MissingKey(t *testing.T) {
	_, err := execute(t, "config", "get", "nope")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not set")
}

func TestStatusCmd_UnconfiguredProviders(t *testing.T) {
	out, err := execute(t, "status")

	require.NoError(t, err)
	assert.Contains(t, out, "Embedding:  not configured")
	assert.Contains(t, out, "LLM:        not configured")
	assert.Contains(t, out, "Index:      absent")
}

func TestIngestCmd_MissingDirectory(t *testing.T) {
	_, err := execute(t, "ingest", "/nonexistent/docs")

	assert.Error(t, err)
}

func TestIngestCmd_RequiresArg(t *testing.T) {
	_, err := execute(t, "ingest")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestGenerateCmd_RequiresArg(t *testing.T) {
	_, err := execute(t, "generate")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestCoerce(t *testing.T) {
	assert.Equal(t, true, coerce("true"))
	assert.Equal(t, false, coerce("false"))
	assert.Equal(t, int64(42), coerce("42"))
	assert.Equal(t, "hello", coerce("hello"))
	assert.Equal(t, "1h", coerce("1h"))
}
