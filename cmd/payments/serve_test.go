package main

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateFlag(t *testing.T) {
	t.Run("serve defaults to migrating", func(t *testing.T) {
		cmd := serveCmd()
		require.NoError(t, cmd.ParseFlags(nil))
		assert.True(t, migrateFlag(cmd))
	})

	t.Run("serve honours --migrate=false", func(t *testing.T) {
		cmd := serveCmd()
		require.NoError(t, cmd.ParseFlags([]string{"--migrate=false"}))
		assert.False(t, migrateFlag(cmd))
	})

	t.Run("root command without the flag migrates", func(t *testing.T) {
		assert.True(t, migrateFlag(&cobra.Command{Use: "payments"}))
	})
}
