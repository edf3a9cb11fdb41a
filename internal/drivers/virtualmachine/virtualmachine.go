// Package virtualmachine reconciles Azure virtual machines. The driver
// manages size and tags after creation; image, admin credentials, and the
// network interface are create-only. Admin auth uses either an SSH public key
// or a password, enforced upstream by descriptor validation.
package virtualmachine

import (
	"context"
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute/v6"

	"github.com/eitrtech/azurestate/internal/acct"
	"github.com/eitrtech/azurestate/internal/config"
	"github.com/eitrtech/azurestate/internal/driver"
	"github.com/eitrtech/azurestate/internal/model"
	azerrors "github.com/eitrtech/azurestate/pkg/errors"
	"github.com/eitrtech/azurestate/pkg/propdiff"
)

// defaultImage is used when the descriptor omits an image URN.
const defaultImage = "Canonical:0001-com-ubuntu-server-jammy:22_04-lts-gen2:latest"

type vmDriver struct{}

// New creates the virtual machine driver.
func New() driver.Driver {
	return &vmDriver{}
}

func init() {
	if err := driver.Register(New()); err != nil {
		panic(err)
	}
}

func (d *vmDriver) Kind() string {
	return "virtual_machine"
}

func (d *vmDriver) Schema() any {
	return config.VirtualMachineSpec{}
}

func (d *vmDriver) client(cred *acct.Credential) (*armcompute.VirtualMachinesClient, error) {
	return armcompute.NewVirtualMachinesClient(cred.SubscriptionID, cred.Token(), cred.ClientOptions())
}

func (d *vmDriver) Fetch(ctx context.Context, cred *acct.Credential, id model.Identity) (*model.Observed, error) {
	client, err := d.client(cred)
	if err != nil {
		return nil, azerrors.NewExecutionError(id.String(), err)
	}

	resp, err := client.Get(ctx, id.ResourceGroup, id.Name, nil)
	if err != nil {
		return nil, driver.Classify(id.String(), "fetch", err)
	}

	return observe(resp.VirtualMachine), nil
}

func (d *vmDriver) Create(ctx context.Context, cred *acct.Credential, rsrc *config.Resource) (*model.Observed, error) {
	id := rsrc.Identity(cred.SubscriptionID)

	client, err := d.client(cred)
	if err != nil {
		return nil, azerrors.NewExecutionError(id.String(), err)
	}

	spec := rsrc.VirtualMachine

	imageRef, err := parseImageURN(spec.Image)
	if err != nil {
		return nil, azerrors.NewValidationError("image", err.Error(), err)
	}

	vm := armcompute.VirtualMachine{
		Location: to.Ptr(spec.Location),
		Tags:     driver.TagsToARM(rsrc.Tags),
		Properties: &armcompute.VirtualMachineProperties{
			HardwareProfile: &armcompute.HardwareProfile{
				VMSize: to.Ptr(armcompute.VirtualMachineSizeTypes(spec.Size)),
			},
			StorageProfile: &armcompute.StorageProfile{
				ImageReference: imageRef,
				OSDisk: &armcompute.OSDisk{
					Name:         to.Ptr(id.Name + "-osdisk"),
					CreateOption: to.Ptr(armcompute.DiskCreateOptionTypesFromImage),
					ManagedDisk: &armcompute.ManagedDiskParameters{
						StorageAccountType: to.Ptr(armcompute.StorageAccountTypesStandardLRS),
					},
				},
			},
			OSProfile: osProfile(id.Name, spec),
			NetworkProfile: &armcompute.NetworkProfile{
				NetworkInterfaces: []*armcompute.NetworkInterfaceReference{
					{ID: to.Ptr(nicID(cred.SubscriptionID, id.ResourceGroup, spec.NetworkInterface))},
				},
			},
		},
	}

	poller, err := client.BeginCreateOrUpdate(ctx, id.ResourceGroup, id.Name, vm, nil)
	if err != nil {
		return nil, driver.Classify(id.String(), "create", err)
	}

	resp, err := poller.PollUntilDone(ctx, nil)
	if err != nil {
		return nil, driver.Classify(id.String(), "create", err)
	}

	return observe(resp.VirtualMachine), nil
}

func (d *vmDriver) Update(ctx context.Context, cred *acct.Credential, rsrc *config.Resource, diff propdiff.Diff) (*model.Observed, error) {
	id := rsrc.Identity(cred.SubscriptionID)

	client, err := d.client(cred)
	if err != nil {
		return nil, azerrors.NewExecutionError(id.String(), err)
	}

	// VirtualMachineUpdate is PATCH semantics; only drifted properties go on
	// the wire.
	update := armcompute.VirtualMachineUpdate{}
	if diff.Contains("tags") {
		update.Tags = driver.TagsToARM(rsrc.Tags)
	}
	if diff.Contains("size") {
		update.Properties = &armcompute.VirtualMachineProperties{
			HardwareProfile: &armcompute.HardwareProfile{
				VMSize: to.Ptr(armcompute.VirtualMachineSizeTypes(rsrc.VirtualMachine.Size)),
			},
		}
	}

	poller, err := client.BeginUpdate(ctx, id.ResourceGroup, id.Name, update, nil)
	if err != nil {
		return nil, driver.Classify(id.String(), "update", err)
	}

	resp, err := poller.PollUntilDone(ctx, nil)
	if err != nil {
		return nil, driver.Classify(id.String(), "update", err)
	}

	return observe(resp.VirtualMachine), nil
}

func (d *vmDriver) Delete(ctx context.Context, cred *acct.Credential, id model.Identity) error {
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

func osProfile(name string, spec *config.VirtualMachineSpec) *armcompute.OSProfile {
	profile := &armcompute.OSProfile{
		ComputerName:  to.Ptr(name),
		AdminUsername: to.Ptr(spec.AdminUsername),
	}

	if spec.SSHPublicKey != "" {
		profile.LinuxConfiguration = &armcompute.LinuxConfiguration{
			DisablePasswordAuthentication: to.Ptr(true),
			SSH: &armcompute.SSHConfiguration{
				PublicKeys: []*armcompute.SSHPublicKey{
					{
						Path:    to.Ptr(fmt.Sprintf("/home/%s/.ssh/authorized_keys", spec.AdminUsername)),
						KeyData: to.Ptr(spec.SSHPublicKey),
					},
				},
			},
		}
		return profile
	}

	profile.AdminPassword = to.Ptr(spec.AdminPassword)
	return profile
}

// parseImageURN splits "publisher:offer:sku:version" into an image reference.
func parseImageURN(urn string) (*armcompute.ImageReference, error) {
	if urn == "" {
		urn = defaultImage
	}

	parts := strings.Split(urn, ":")
	if len(parts) != 4 {
		return nil, fmt.Errorf("image %q is not in publisher:offer:sku:version form", urn)
	}

	return &armcompute.ImageReference{
		Publisher: to.Ptr(parts[0]),
		Offer:     to.Ptr(parts[1]),
		SKU:       to.Ptr(parts[2]),
		Version:   to.Ptr(parts[3]),
	}, nil
}

// nicID accepts either a bare NIC name in the VM's resource group or a full
// resource ID.
func nicID(subscription, resourceGroup, nic string) string {
	if strings.HasPrefix(nic, "/subscriptions/") {
		return nic
	}
	return fmt.Sprintf(
		"/subscriptions/%s/resourceGroups/%s/providers/Microsoft.Network/networkInterfaces/%s",
		subscription, resourceGroup, nic,
	)
}

func observe(vm armcompute.VirtualMachine) *model.Observed {
	obs := &model.Observed{
		ID: driver.Deref(vm.ID),
		Properties: map[string]any{
			"tags": driver.TagsFromARM(vm.Tags),
		},
	}

	if vm.Properties != nil {
		if vm.Properties.HardwareProfile != nil && vm.Properties.HardwareProfile.VMSize != nil {
			obs.Properties["size"] = string(*vm.Properties.HardwareProfile.VMSize)
		}
		obs.ProvisioningState = driver.Deref(vm.Properties.ProvisioningState)
	}

	return obs
}
