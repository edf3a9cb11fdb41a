package virtualmachine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eitrtech/azurestate/internal/config"
)

func TestParseImageURN(t *testing.T) {
	t.Parallel()

	ref, err := parseImageURN("Canonical:ubuntu-24_04-lts:server:latest")
	require.NoError(t, err)
	require.Equal(t, "Canonical", *ref.Publisher)
	require.Equal(t, "ubuntu-24_04-lts", *ref.Offer)
	require.Equal(t, "server", *ref.SKU)
	require.Equal(t, "latest", *ref.Version)
}

func TestParseImageURNDefault(t *testing.T) {
	t.Parallel()

	ref, err := parseImageURN("")
	require.NoError(t, err)
	require.Equal(t, "Canonical", *ref.Publisher)
}

func TestParseImageURNRejectsMalformed(t *testing.T) {
	t.Parallel()

	_, err := parseImageURN("ubuntu")
	require.Error(t, err)
	require.Contains(t, err.Error(), "publisher:offer:sku:version")
}

func TestNicIDExpandsBareName(t *testing.T) {
	t.Parallel()

	got := nicID("sub-1", "grp1", "vm1-nic")
	require.Equal(t, "/subscriptions/sub-1/resourceGroups/grp1/providers/Microsoft.Network/networkInterfaces/vm1-nic", got)
}

func TestNicIDPassesThroughFullID(t *testing.T) {
	t.Parallel()

	full := "/subscriptions/other/resourceGroups/net/providers/Microsoft.Network/networkInterfaces/shared-nic"
	require.Equal(t, full, nicID("sub-1", "grp1", full))
}

func TestOSProfileSSHKeyDisablesPasswordAuth(t *testing.T) {
	t.Parallel()

	spec := &config.VirtualMachineSpec{
		AdminUsername: "azureuser",
		SSHPublicKey:  "ssh-ed25519 AAAA...",
	}

	profile := osProfile("vm1", spec)
	require.Nil(t, profile.AdminPassword)
	require.NotNil(t, profile.LinuxConfiguration)
	require.True(t, *profile.LinuxConfiguration.DisablePasswordAuthentication)

	keys := profile.LinuxConfiguration.SSH.PublicKeys
	require.Len(t, keys, 1)
	require.Equal(t, "/home/azureuser/.ssh/authorized_keys", *keys[0].Path)
	require.Equal(t, "ssh-ed25519 AAAA...", *keys[0].KeyData)
}

func TestOSProfilePasswordAuth(t *testing.T) {
	t.Parallel()

	spec := &config.VirtualMachineSpec{
		AdminUsername: "azureuser",
		AdminPassword: "hunter2hunter2",
	}

	profile := osProfile("vm1", spec)
	require.Nil(t, profile.LinuxConfiguration)
	require.Equal(t, "hunter2hunter2", *profile.AdminPassword)
}
