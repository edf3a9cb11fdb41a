// Package storageaccount reconciles Azure storage accounts: SKU, access
// tier, HTTPS enforcement, and tags. The account kind is create-only.
package storageaccount

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/storage/armstorage"

	"github.com/eitrtech/azurestate/internal/acct"
	"github.com/eitrtech/azurestate/internal/config"
	"github.com/eitrtech/azurestate/internal/driver"
	"github.com/eitrtech/azurestate/internal/model"
	azerrors "github.com/eitrtech/azurestate/pkg/errors"
	"github.com/eitrtech/azurestate/pkg/propdiff"
)

const defaultAccountKind = "StorageV2"

type accountDriver struct{}

// New creates the storage account driver.
func New() driver.Driver {
	return &accountDriver{}
}

func init() {
	if err := driver.Register(New()); err != nil {
		panic(err)
	}
}

func (d *accountDriver) Kind() string {
	return "storage_account"
}

func (d *accountDriver) Schema() any {
	return config.StorageAccountSpec{}
}

func (d *accountDriver) client(cred *acct.Credential) (*armstorage.AccountsClient, error) {
	return armstorage.NewAccountsClient(cred.SubscriptionID, cred.Token(), cred.ClientOptions())
}

func (d *accountDriver) Fetch(ctx context.Context, cred *acct.Credential, id model.Identity) (*model.Observed, error) {
	client, err := d.client(cred)
	if err != nil {
		return nil, azerrors.NewExecutionError(id.String(), err)
	}

	resp, err := client.GetProperties(ctx, id.ResourceGroup, id.Name, nil)
	if err != nil {
		return nil, driver.Classify(id.String(), "fetch", err)
	}

	return observe(resp.Account), nil
}

func (d *accountDriver) Create(ctx context.Context, cred *acct.Credential, rsrc *config.Resource) (*model.Observed, error) {
	id := rsrc.Identity(cred.SubscriptionID)

	client, err := d.client(cred)
	if err != nil {
		return nil, azerrors.NewExecutionError(id.String(), err)
	}

	spec := rsrc.StorageAccount
	accountKind := spec.Kind
	if accountKind == "" {
		accountKind = defaultAccountKind
	}

	params := armstorage.AccountCreateParameters{
		Location: to.Ptr(spec.Location),
		Kind:     to.Ptr(armstorage.Kind(accountKind)),
		SKU:      &armstorage.SKU{Name: to.Ptr(armstorage.SKUName(spec.SKU))},
		Tags:     driver.TagsToARM(rsrc.Tags),
	}

	props := &armstorage.AccountPropertiesCreateParameters{}
	if spec.AccessTier != "" {
		props.AccessTier = to.Ptr(armstorage.AccessTier(spec.AccessTier))
	}
	if spec.HTTPSOnly != nil {
		props.EnableHTTPSTrafficOnly = spec.HTTPSOnly
	}
	params.Properties = props

	poller, err := client.BeginCreate(ctx, id.ResourceGroup, id.Name, params, nil)
	if err != nil {
		return nil, driver.Classify(id.String(), "create", err)
	}

	resp, err := poller.PollUntilDone(ctx, nil)
	if err != nil {
		return nil, driver.Classify(id.String(), "create", err)
	}

	return observe(resp.Account), nil
}

func (d *accountDriver) Update(ctx context.Context, cred *acct.Credential, rsrc *config.Resource, diff propdiff.Diff) (*model.Observed, error) {
	id := rsrc.Identity(cred.SubscriptionID)

	client, err := d.client(cred)
	if err != nil {
		return nil, azerrors.NewExecutionError(id.String(), err)
	}

	// Account updates are PATCH semantics: only drifted properties are sent.
	params := armstorage.AccountUpdateParameters{}
	if diff.Contains("sku") {
		params.SKU = &armstorage.SKU{Name: to.Ptr(armstorage.SKUName(rsrc.StorageAccount.SKU))}
	}
	if diff.Contains("tags") {
		params.Tags = driver.TagsToARM(rsrc.Tags)
	}

	props := &armstorage.AccountPropertiesUpdateParameters{}
	propsTouched := false
	if diff.Contains("access_tier") {
		props.AccessTier = to.Ptr(armstorage.AccessTier(rsrc.StorageAccount.AccessTier))
		propsTouched = true
	}
	if diff.Contains("https_only") {
		props.EnableHTTPSTrafficOnly = rsrc.StorageAccount.HTTPSOnly
		propsTouched = true
	}
	if propsTouched {
		params.Properties = props
	}

	resp, err := client.Update(ctx, id.ResourceGroup, id.Name, params, nil)
	if err != nil {
		return nil, driver.Classify(id.String(), "update", err)
	}

	return observe(resp.Account), nil
}

func (d *accountDriver) Delete(ctx context.Context, cred *acct.Credential, id model.Identity) error {
	client, err := d.client(cred)
	if err != nil {
		return azerrors.NewExecutionError(id.String(), err)
	}

	if _, err := client.Delete(ctx, id.ResourceGroup, id.Name, nil); err != nil {
		err = driver.Classify(id.String(), "delete", err)
		if azerrors.IsNotFound(err) {
			return nil
		}
		return err
	}

	return nil
}

func observe(account armstorage.Account) *model.Observed {
	obs := &model.Observed{
		ID: driver.Deref(account.ID),
		Properties: map[string]any{
			"tags": driver.TagsFromARM(account.Tags),
		},
	}

	if account.SKU != nil && account.SKU.Name != nil {
		obs.Properties["sku"] = string(*account.SKU.Name)
	}
	if account.Properties != nil {
		if account.Properties.AccessTier != nil {
			obs.Properties["access_tier"] = string(*account.Properties.AccessTier)
		}
		if account.Properties.EnableHTTPSTrafficOnly != nil {
			obs.Properties["https_only"] = *account.Properties.EnableHTTPSTrafficOnly
		}
		if account.Properties.ProvisioningState != nil {
			obs.ProvisioningState = string(*account.Properties.ProvisioningState)
		}
	}

	return obs
}
