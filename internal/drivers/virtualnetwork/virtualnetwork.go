// Package virtualnetwork reconciles Azure virtual networks: address space,
// optional DNS servers, and tags.
package virtualnetwork

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/network/armnetwork/v6"

	"github.com/eitrtech/azurestate/internal/acct"
	"github.com/eitrtech/azurestate/internal/config"
	"github.com/eitrtech/azurestate/internal/driver"
	"github.com/eitrtech/azurestate/internal/model"
	azerrors "github.com/eitrtech/azurestate/pkg/errors"
	"github.com/eitrtech/azurestate/pkg/propdiff"
)

type vnetDriver struct{}

// New creates the virtual network driver.
func New() driver.Driver {
	return &vnetDriver{}
}

func init() {
	if err := driver.Register(New()); err != nil {
		panic(err)
	}
}

func (d *vnetDriver) Kind() string {
	return "virtual_network"
}

func (d *vnetDriver) Schema() any {
	return config.VirtualNetworkSpec{}
}

func (d *vnetDriver) client(cred *acct.Credential) (*armnetwork.VirtualNetworksClient, error) {
	return armnetwork.NewVirtualNetworksClient(cred.SubscriptionID, cred.Token(), cred.ClientOptions())
}

func (d *vnetDriver) Fetch(ctx context.Context, cred *acct.Credential, id model.Identity) (*model.Observed, error) {
	client, err := d.client(cred)
	if err != nil {
		return nil, azerrors.NewExecutionError(id.String(), err)
	}

	resp, err := client.Get(ctx, id.ResourceGroup, id.Name, nil)
	if err != nil {
		return nil, driver.Classify(id.String(), "fetch", err)
	}

	return observe(resp.VirtualNetwork), nil
}

func (d *vnetDriver) Create(ctx context.Context, cred *acct.Credential, rsrc *config.Resource) (*model.Observed, error) {
	id := rsrc.Identity(cred.SubscriptionID)

	client, err := d.client(cred)
	if err != nil {
		return nil, azerrors.NewExecutionError(id.String(), err)
	}

	vnet := armnetwork.VirtualNetwork{
		Location: to.Ptr(rsrc.VirtualNetwork.Location),
		Tags:     driver.TagsToARM(rsrc.Tags),
		Properties: &armnetwork.VirtualNetworkPropertiesFormat{
			AddressSpace: &armnetwork.AddressSpace{
				AddressPrefixes: driver.StringsToARM(rsrc.VirtualNetwork.AddressPrefixes),
			},
		},
	}
	if len(rsrc.VirtualNetwork.DNSServers) > 0 {
		vnet.Properties.DhcpOptions = &armnetwork.DhcpOptions{
			DNSServers: driver.StringsToARM(rsrc.VirtualNetwork.DNSServers),
		}
	}

	return d.applyAndPoll(ctx, client, id, vnet)
}

func (d *vnetDriver) Update(ctx context.Context, cred *acct.Credential, rsrc *config.Resource, diff propdiff.Diff) (*model.Observed, error) {
	id := rsrc.Identity(cred.SubscriptionID)

	client, err := d.client(cred)
	if err != nil {
		return nil, azerrors.NewExecutionError(id.String(), err)
	}

	// Tag-only drift can PATCH; anything touching the network body re-reads
	// the live object and mutates only the drifted properties so that fields
	// outside the declared schema (subnets, peerings) stay intact.
	if !diff.Contains("address_prefixes") && !diff.Contains("dns_servers") {
		resp, err := client.UpdateTags(ctx, id.ResourceGroup, id.Name, armnetwork.TagsObject{Tags: driver.TagsToARM(rsrc.Tags)}, nil)
		if err != nil {
			return nil, driver.Classify(id.String(), "update", err)
		}
		return observe(resp.VirtualNetwork), nil
	}

	current, err := client.Get(ctx, id.ResourceGroup, id.Name, nil)
	if err != nil {
		return nil, driver.Classify(id.String(), "update", err)
	}

	vnet := current.VirtualNetwork
	if vnet.Properties == nil {
		vnet.Properties = &armnetwork.VirtualNetworkPropertiesFormat{}
	}
	if diff.Contains("address_prefixes") {
		vnet.Properties.AddressSpace = &armnetwork.AddressSpace{
			AddressPrefixes: driver.StringsToARM(rsrc.VirtualNetwork.AddressPrefixes),
		}
	}
	if diff.Contains("dns_servers") {
		vnet.Properties.DhcpOptions = &armnetwork.DhcpOptions{
			DNSServers: driver.StringsToARM(rsrc.VirtualNetwork.DNSServers),
		}
	}
	if diff.Contains("tags") {
		vnet.Tags = driver.TagsToARM(rsrc.Tags)
	}

	return d.applyAndPoll(ctx, client, id, vnet)
}

func (d *vnetDriver) applyAndPoll(ctx context.Context, client *armnetwork.VirtualNetworksClient, id model.Identity, vnet armnetwork.VirtualNetwork) (*model.Observed, error) {
	poller, err := client.BeginCreateOrUpdate(ctx, id.ResourceGroup, id.Name, vnet, nil)
	if err != nil {
		return nil, driver.Classify(id.String(), "apply", err)
	}

	resp, err := poller.PollUntilDone(ctx, nil)
	if err != nil {
		return nil, driver.Classify(id.String(), "apply", err)
	}

	return observe(resp.VirtualNetwork), nil
}

func (d *vnetDriver) Delete(ctx context.Context, cred *acct.Credential, id model.Identity) error {
	client, err := d.client(cred)
	if err != nil {
		return azerrors.NewExecutionError(id.String(), err)
	}

	poller, err := client.BeginDelete(ctx, id.ResourceGroup, id.Name, nil)
	if err != nil {
		err = driver.Classify(id.String(), "delete", err)
		if azerrors.IsNotFound(err) {
			return nil
		}
		return err
	}

	if _, err := poller.PollUntilDone(ctx, nil); err != nil {
		return driver.Classify(id.String(), "delete", err)
	}

	return nil
}

func observe(vnet armnetwork.VirtualNetwork) *model.Observed {
	obs := &model.Observed{
		ID: driver.Deref(vnet.ID),
		Properties: map[string]any{
			"tags": driver.TagsFromARM(vnet.Tags),
		},
	}

	if vnet.Properties != nil {
		if vnet.Properties.AddressSpace != nil {
			obs.Properties["address_prefixes"] = driver.StringsFromARM(vnet.Properties.AddressSpace.AddressPrefixes)
		}
		if vnet.Properties.DhcpOptions != nil {
			obs.Properties["dns_servers"] = driver.StringsFromARM(vnet.Properties.DhcpOptions.DNSServers)
		}
		if vnet.Properties.ProvisioningState != nil {
			obs.ProvisioningState = string(*vnet.Properties.ProvisioningState)
		}
	}

	return obs
}
