package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	cmds := rootCmd.Commands()

	// Collect subcommand names.
	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}

	// Verify expected subcommands are registered.
	expected := []string{"research", "batch", "runs", "plan", "validate", "goals", "tools", "schema"}
	for _, name := range expected {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "research-core", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestResearchCommand_Flags(t *testing.T) {
	flag := researchCmd.Flags().Lookup("name")
	require.NotNil(t, flag, "research command should have --name flag")

	for _, flagName := range []string{"id", "category", "brand", "model", "barcode", "condition", "images", "notes"} {
		assert.NotNil(t, researchCmd.Flags().Lookup(flagName), "research should have --%s flag", flagName)
	}
}

func TestBatchCommand_Flags(t *testing.T) {
	flag := batchCmd.Flags().Lookup("manifest")
	require.NotNil(t, flag, "batch command should have --manifest flag")

	limitFlag := batchCmd.Flags().Lookup("limit")
	require.NotNil(t, limitFlag, "batch command should have --limit flag")
	assert.Equal(t, "0", limitFlag.DefValue)
}

func TestRunsCommand_HasSubcommands(t *testing.T) {
	cmds := runsCmd.Commands()
	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}

	expected := []string{"list", "show", "stats", "watch"}
	for _, name := range expected {
		assert.True(t, names[name], "runs should have subcommand %q", name)
	}
}

func TestGoalsCommand_HasSubcommands(t *testing.T) {
	cmds := goalsCmd.Commands()
	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}

	for _, name := range []string{"init", "route"} {
		assert.True(t, names[name], "goals should have subcommand %q", name)
	}
}
