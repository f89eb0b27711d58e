package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_ErrorsWhenNoCommandSpecified(t *testing.T) {
	t.Setenv("IDIS_DATABASE_URL", "postgres://localhost/idis")

	err := run(nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no command specified")
}

func TestRun_ErrorsWhenDSNMissing(t *testing.T) {
	t.Setenv("IDIS_DATABASE_URL", "")

	err := run([]string{"migrate", "version"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "dsn is required")
}

func TestRun_ErrorsOnUnknownCommand(t *testing.T) {
	t.Setenv("IDIS_DATABASE_URL", "postgres://localhost/idis")

	err := run([]string{"bogus"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown command "bogus"`)
}

func TestRun_HelpStillRequiresDSNBecauseTheCheckPrecedesDispatch(t *testing.T) {
	t.Setenv("IDIS_DATABASE_URL", "")

	err := run([]string{"help"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "dsn is required")
}

func TestRun_HelpReturnsNilWhenDSNConfigured(t *testing.T) {
	t.Setenv("IDIS_DATABASE_URL", "postgres://localhost/idis")

	err := run([]string{"help"})

	assert.NoError(t, err)
}

func TestHandleMigrate_ErrorsWhenSubcommandMissing(t *testing.T) {
	err := handleMigrate("postgres://localhost/idis", nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "usage: idisctl migrate")
}

func TestHandleMigrate_ErrorsOnUnknownSubcommand(t *testing.T) {
	err := handleMigrate("postgres://localhost/idis", []string{"sideways"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown migrate subcommand "sideways"`)
}
