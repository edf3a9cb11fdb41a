package resourcegroup

import (
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"
	"github.com/stretchr/testify/require"
)

func TestObserveMapsDeclaredProperties(t *testing.T) {
	t.Parallel()

	group := armresources.ResourceGroup{
		ID:        to.Ptr("/subscriptions/sub-1/resourceGroups/grp1"),
		Location:  to.Ptr("eastus"),
		ManagedBy: to.Ptr("/subscriptions/sub-1/resourceGroups/ops"),
		Tags:      map[string]*string{"env": to.Ptr("prod")},
		Properties: &armresources.ResourceGroupProperties{
			ProvisioningState: to.Ptr("Succeeded"),
		},
	}

	obs := observe(group)
	require.Equal(t, "/subscriptions/sub-1/resourceGroups/grp1", obs.ID)
	require.Equal(t, map[string]string{"env": "prod"}, obs.Properties["tags"])
	require.Equal(t, "/subscriptions/sub-1/resourceGroups/ops", obs.Properties["managed_by"])
	require.Equal(t, "Succeeded", obs.ProvisioningState)

	// Location is create-only and never part of the diffable properties.
	require.NotContains(t, obs.Properties, "location")
}

func TestObserveWithoutOptionalFields(t *testing.T) {
	t.Parallel()

	obs := observe(armresources.ResourceGroup{Location: to.Ptr("westus")})
	require.Equal(t, map[string]string{}, obs.Properties["tags"])
	require.NotContains(t, obs.Properties, "managed_by")
}
