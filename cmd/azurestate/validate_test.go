package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateCommandAcceptsValidState(t *testing.T) {
	path := writeStateFile(t)

	root := newRootCmd()
	buf := &bytes.Buffer{}
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs([]string{"validate", "--config", path})

	require.NoError(t, root.Execute())
	require.Contains(t, buf.String(), "is valid: 1 resource(s)")
}

func TestValidateCommandRejectsInvalidState(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.yaml")
	doc := `version: "1.0"
name: test-estate
resources:
  - id: bad_vm
    kind: virtual_machine
    ensure: present
    name: vm1
    resource_group: core
    location: eastus
    size: Standard_B2s
    admin_username: ops
    admin_password: hunter2hunter2
    ssh_public_key: ssh-rsa AAAA
    network_interface: nic1
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	err := executeCommand(newRootCmd(), "validate", "--config", path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "admin_password")
}

func TestValidateCommandRejectsMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: [unclosed"), 0o644))

	err := executeCommand(newRootCmd(), "validate", "--config", path)
	require.Error(t, err)
}
