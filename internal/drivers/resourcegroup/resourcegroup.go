// Package resourcegroup reconciles Azure resource groups. Resource groups are
// scoped to the subscription; location and managed_by are create-only while
// tags remain mutable.
package resourcegroup

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"

	"github.com/eitrtech/azurestate/internal/acct"
	"github.com/eitrtech/azurestate/internal/config"
	"github.com/eitrtech/azurestate/internal/driver"
	"github.com/eitrtech/azurestate/internal/model"
	azerrors "github.com/eitrtech/azurestate/pkg/errors"
	"github.com/eitrtech/azurestate/pkg/propdiff"
)

type groupDriver struct{}

// New creates the resource group driver.
func New() driver.Driver {
	return &groupDriver{}
}

func init() {
	if err := driver.Register(New()); err != nil {
		panic(err)
	}
}

func (d *groupDriver) Kind() string {
	return "resource_group"
}

func (d *groupDriver) Schema() any {
	return config.ResourceGroupSpec{}
}

func (d *groupDriver) client(cred *acct.Credential) (*armresources.ResourceGroupsClient, error) {
	return armresources.NewResourceGroupsClient(cred.SubscriptionID, cred.Token(), cred.ClientOptions())
}

func (d *groupDriver) Fetch(ctx context.Context, cred *acct.Credential, id model.Identity) (*model.Observed, error) {
	client, err := d.client(cred)
	if err != nil {
		return nil, azerrors.NewExecutionError(id.String(), err)
	}

	resp, err := client.Get(ctx, id.Name, nil)
	if err != nil {
		return nil, driver.Classify(id.String(), "fetch", err)
	}

	return observe(resp.ResourceGroup), nil
}

func (d *groupDriver) Create(ctx context.Context, cred *acct.Credential, rsrc *config.Resource) (*model.Observed, error) {
	id := rsrc.Identity(cred.SubscriptionID)

	client, err := d.client(cred)
	if err != nil {
		return nil, azerrors.NewExecutionError(id.String(), err)
	}

	group := armresources.ResourceGroup{
		Location: to.Ptr(rsrc.Group.Location),
		Tags:     driver.TagsToARM(rsrc.Tags),
	}
	if rsrc.Group.ManagedBy != "" {
		group.ManagedBy = to.Ptr(rsrc.Group.ManagedBy)
	}

	resp, err := client.CreateOrUpdate(ctx, id.Name, group, nil)
	if err != nil {
		return nil, driver.Classify(id.String(), "create", err)
	}

	return observe(resp.ResourceGroup), nil
}

func (d *groupDriver) Update(ctx context.Context, cred *acct.Credential, rsrc *config.Resource, diff propdiff.Diff) (*model.Observed, error) {
	id := rsrc.Identity(cred.SubscriptionID)

	client, err := d.client(cred)
	if err != nil {
		return nil, azerrors.NewExecutionError(id.String(), err)
	}

	// Resource groups patch through ResourceGroupPatchable; only drifted
	// properties are sent.
	patch := armresources.ResourceGroupPatchable{}
	if diff.Contains("tags") {
		patch.Tags = driver.TagsToARM(rsrc.Tags)
	}
	if diff.Contains("managed_by") {
		patch.ManagedBy = to.Ptr(rsrc.Group.ManagedBy)
	}

	resp, err := client.Update(ctx, id.Name, patch, nil)
	if err != nil {
		return nil, driver.Classify(id.String(), "update", err)
	}

	return observe(resp.ResourceGroup), nil
}

func (d *groupDriver) Delete(ctx context.Context, cred *acct.Credential, id model.Identity) error {
	client, err := d.client(cred)
	if err != nil {
		return azerrors.NewExecutionError(id.String(), err)
	}

	poller, err := client.BeginDelete(ctx, id.Name, nil)
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

func observe(group armresources.ResourceGroup) *model.Observed {
	obs := &model.Observed{
		ID: driver.Deref(group.ID),
		Properties: map[string]any{
			"tags": driver.TagsFromARM(group.Tags),
		},
	}
	if group.ManagedBy != nil {
		obs.Properties["managed_by"] = *group.ManagedBy
	}
	if group.Properties != nil {
		obs.ProvisioningState = driver.Deref(group.Properties.ProvisioningState)
	}
	return obs
}
