package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func executeCommand(root *cobra.Command, args ...string) error {
	buf := &bytes.Buffer{}
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	return root.Execute()
}

func writeStateFile(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "state.yaml")
	doc := `version: "1.0"
name: test-estate
resources:
  - id: core_rg
    kind: resource_group
    ensure: present
    name: core
    location: eastus
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	return path
}

func swapApplyRunner(t *testing.T) *applyOptions {
	t.Helper()

	original := applyCmdRunner
	t.Cleanup(func() { applyCmdRunner = original })

	captured := &applyOptions{}
	applyCmdRunner = func(opts applyOptions) error {
		*captured = opts
		return nil
	}
	return captured
}

func TestApplyCommandParsesFlags(t *testing.T) {
	path := writeStateFile(t)
	captured := swapApplyRunner(t)

	err := executeCommand(newRootCmd(), "apply", "--config", path, "--profile", "staging", "--verbose")
	require.NoError(t, err)

	require.Equal(t, path, captured.ConfigPath)
	require.Equal(t, "staging", captured.Profile)
	require.True(t, captured.Verbose)
	require.False(t, captured.DryRun)
}

func TestApplyCommandValidatesStateFile(t *testing.T) {
	err := executeCommand(newRootCmd(), "apply", "--config", "/path/does/not/exist")
	require.Error(t, err)
	require.Contains(t, err.Error(), "does not exist")
}

func TestPlanCommandForcesDryRun(t *testing.T) {
	path := writeStateFile(t)
	captured := swapApplyRunner(t)

	err := executeCommand(newRootCmd(), "plan", "--config", path)
	require.NoError(t, err)
	require.True(t, captured.DryRun)
}

func TestCredentialsFlagReachesRunner(t *testing.T) {
	path := writeStateFile(t)
	captured := swapApplyRunner(t)

	err := executeCommand(newRootCmd(), "apply", "--config", path, "--credentials", "/tmp/creds.yaml")
	require.NoError(t, err)
	require.Equal(t, "/tmp/creds.yaml", captured.CredentialsPath)
}

func TestValidateApplyOptions(t *testing.T) {
	t.Parallel()

	t.Run("returns error when state path is empty", func(t *testing.T) {
		t.Parallel()
		err := validateApplyOptions(applyOptions{ConfigPath: ""})
		require.Error(t, err)
		require.Contains(t, err.Error(), "required")
	})

	t.Run("returns error when state path is whitespace", func(t *testing.T) {
		t.Parallel()
		err := validateApplyOptions(applyOptions{ConfigPath: "   "})
		require.Error(t, err)
		require.Contains(t, err.Error(), "required")
	})

	t.Run("returns error when state path is a directory", func(t *testing.T) {
		t.Parallel()
		err := validateApplyOptions(applyOptions{ConfigPath: t.TempDir()})
		require.Error(t, err)
		require.Contains(t, err.Error(), "directory")
	})
}
