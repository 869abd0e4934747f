package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoot(t *testing.T) {
	cmd := Root()

	require.NotNil(t, cmd)
	assert.Equal(t, "apm", cmd.Use)
	assert.Equal(t, "Issue and write sensor factory numbers", cmd.Short)
}

func TestRoot_HasSubcommands(t *testing.T) {
	cmd := Root()

	expectedSubcommands := []string{
		"console",
		"read",
		"codec",
		"fake-backend",
		"version",
		"completion",
	}

	subcommands := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		subcommands[sub.Name()] = true
	}

	for _, expected := range expectedSubcommands {
		assert.True(t, subcommands[expected], "Expected subcommand %s not found", expected)
	}
	assert.Len(t, cmd.Commands(), len(expectedSubcommands))
}

func TestConsole_Flags(t *testing.T) {
	cmd := Console()

	for _, name := range []string{"config", "report", "plain", "verbose", "log-file"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "missing flag %s", name)
	}
	assert.Equal(t, "settings.yml", cmd.Flags().Lookup("config").DefValue)
	assert.Equal(t, "c", cmd.Flags().Lookup("config").Shorthand)
}

func TestConsole_RejectsArgs(t *testing.T) {
	root := Root()
	root.SetArgs([]string{"console", "extra"})

	assert.Error(t, root.Execute())
}

func TestFakeBackend_Flags(t *testing.T) {
	cmd := FakeBackend()

	assert.Equal(t, ":8000", cmd.Flags().Lookup("addr").DefValue)
	assert.NotNil(t, cmd.Flags().Lookup("seed"))
}
