package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	azerrors "github.com/eitrtech/azurestate/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "state.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseConfigFullDocument(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
version: "1.0"
name: demo-infra
profile: default
settings:
  parallel: 4
  max_retries: 3
  timeout: 600
resources:
  - id: rg1
    kind: resource_group
    ensure: present
    name: demo-group
    location: eastus
    tags:
      env: demo
  - id: net1
    kind: virtual_network
    name: demo-net
    resource_group: demo-group
    location: eastus
    address_prefixes:
      - 10.0.0.0/16
    dns_servers:
      - 10.0.0.4
  - id: store1
    kind: storage_account
    name: demostore001
    resource_group: demo-group
    location: eastus
    sku: Standard_LRS
    access_tier: Hot
`)

	cfg, err := ParseConfig(path)
	require.NoError(t, err)
	require.Equal(t, "demo-infra", cfg.Name)
	require.Len(t, cfg.Resources, 3)

	rg := cfg.Resources[0]
	require.Equal(t, "present", rg.Ensure)
	require.NotNil(t, rg.Group)
	require.Equal(t, "eastus", rg.Group.Location)
	require.Equal(t, map[string]string{"env": "demo"}, rg.Tags)

	net := cfg.Resources[1]
	require.Equal(t, "present", net.Ensure, "ensure defaults to present")
	require.NotNil(t, net.VirtualNetwork)
	require.Equal(t, []string{"10.0.0.0/16"}, net.VirtualNetwork.AddressPrefixes)

	store := cfg.Resources[2]
	require.NotNil(t, store.StorageAccount)
	require.Equal(t, "Standard_LRS", store.StorageAccount.SKU)
}

func TestParseConfigAbsentNeedsOnlyIdentity(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
version: "1.0"
name: teardown
resources:
  - id: old_group
    kind: resource_group
    ensure: absent
    name: legacy-group
`)

	cfg, err := ParseConfig(path)
	require.NoError(t, err)
	require.True(t, cfg.Resources[0].Absent())
	require.Nil(t, cfg.Resources[0].Group)
}

func TestParseConfigMissingFile(t *testing.T) {
	t.Parallel()

	_, err := ParseConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)

	var parseErr *azerrors.ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestParseConfigInvalidYAMLReportsLine(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "version: \"1.0\"\nname: broken\nresources:\n  - id: [oops\n")

	_, err := ParseConfig(path)
	require.Error(t, err)

	var parseErr *azerrors.ParseError
	require.ErrorAs(t, err, &parseErr)
	require.Greater(t, parseErr.Line, 0)
}

func TestResourcePropertiesDeclaredOnly(t *testing.T) {
	t.Parallel()

	rsrc := Resource{
		Kind: "storage_account",
		Name: "demostore001",
		StorageAccount: &StorageAccountSpec{
			Location: "eastus",
			SKU:      "Standard_GRS",
		},
	}

	props := rsrc.Properties()
	require.Equal(t, "Standard_GRS", props["sku"])
	require.NotContains(t, props, "access_tier", "undeclared properties are not managed")
	require.NotContains(t, props, "location", "create-only properties are never diffed")
	require.NotContains(t, props, "tags", "tags omitted unless declared")
}

func TestResourceIdentityScope(t *testing.T) {
	t.Parallel()

	rsrc := Resource{Kind: "virtual_network", Name: "net1", ResourceGroup: "grp1"}
	id := rsrc.Identity("sub-1")
	require.Equal(t, "sub-1", id.Subscription)
	require.Equal(t, "grp1", id.ResourceGroup)
	require.Equal(t, "net1", id.Name)
}
