package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// executeCommand runs the root command with args and returns its output.
// Flag values and contexts are reset afterwards since the commands are
// package globals.
func executeCommand(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(append(args, "--config", filepath.Join(t.TempDir(), "config.toml")))

	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		resetFlags(rootCmd)
	})

	err := rootCmd.ExecuteContext(ctx)
	return buf.String(), err
}

// resetFlags restores flag defaults and drops the context cobra keeps on
// each command; a subcommand only inherits the root's context while its own
// is nil.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.SetContext(nil)
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func TestRootCommand(t *testing.T) {
	names := make([]string, 0, len(rootCmd.Commands()))
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	require.Subset(t, names, []string{"serve", "popular", "search"})

	require.NotNil(t, rootCmd.PersistentFlags().Lookup("verbose"))
	require.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))
}

type ctxKey struct{}

func TestExecuteCommandResetsState(t *testing.T) {
	first := context.WithValue(context.Background(), ctxKey{}, "first")
	t.Run("first run", func(t *testing.T) {
		_, err := executeCommand(t, first, "search", "gopher", "--fixtures", "--max", "3")
		require.NoError(t, err)
		assert.Equal(t, "first", searchCmd.Context().Value(ctxKey{}))
	})

	assert.Nil(t, searchCmd.Context(), "subcommand context cleared")
	assert.False(t, searchCmd.Flags().Changed("max"))

	second := context.WithValue(context.Background(), ctxKey{}, "second")
	t.Run("second run sees its own context", func(t *testing.T) {
		_, err := executeCommand(t, second, "search", "gopher", "--fixtures")
		require.NoError(t, err)
		assert.Equal(t, "second", searchCmd.Context().Value(ctxKey{}))
	})
}
