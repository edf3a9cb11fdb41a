// Package dnszone reconciles public Azure DNS zones. Zones are global
// resources; tags are the only mutable property the driver manages.
package dnszone

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/dns/armdns"

	"github.com/eitrtech/azurestate/internal/acct"
	"github.com/eitrtech/azurestate/internal/config"
	"github.com/eitrtech/azurestate/internal/driver"
	"github.com/eitrtech/azurestate/internal/model"
	azerrors "github.com/eitrtech/azurestate/pkg/errors"
	"github.com/eitrtech/azurestate/pkg/propdiff"
)

type zoneDriver struct{}

// New creates the DNS zone driver.
func New() driver.Driver {
	return &zoneDriver{}
}

func init() {
	if err := driver.Register(New()); err != nil {
		panic(err)
	}
}

func (d *zoneDriver) Kind() string {
	return "dns_zone"
}

func (d *zoneDriver) Schema() any {
	return config.DNSZoneSpec{}
}

func (d *zoneDriver) client(cred *acct.Credential) (*armdns.ZonesClient, error) {
	return armdns.NewZonesClient(cred.SubscriptionID, cred.Token(), cred.ClientOptions())
}

func (d *zoneDriver) Fetch(ctx context.Context, cred *acct.Credential, id model.Identity) (*model.Observed, error) {
	client, err := d.client(cred)
	if err != nil {
		return nil, azerrors.NewExecutionError(id.String(), err)
	}

	resp, err := client.Get(ctx, id.ResourceGroup, id.Name, nil)
	if err != nil {
		return nil, driver.Classify(id.String(), "fetch", err)
	}

	return observe(resp.Zone), nil
}

func (d *zoneDriver) Create(ctx context.Context, cred *acct.Credential, rsrc *config.Resource) (*model.Observed, error) {
	return d.createOrUpdate(ctx, cred, rsrc, "create")
}

func (d *zoneDriver) Update(ctx context.Context, cred *acct.Credential, rsrc *config.Resource, _ propdiff.Diff) (*model.Observed, error) {
	return d.createOrUpdate(ctx, cred, rsrc, "update")
}

func (d *zoneDriver) createOrUpdate(ctx context.Context, cred *acct.Credential, rsrc *config.Resource, op string) (*model.Observed, error) {
	id := rsrc.Identity(cred.SubscriptionID)

	client, err := d.client(cred)
	if err != nil {
		return nil, azerrors.NewExecutionError(id.String(), err)
	}

	zone := armdns.Zone{
		Location: to.Ptr("global"),
		Tags:     driver.TagsToARM(rsrc.Tags),
	}

	resp, err := client.CreateOrUpdate(ctx, id.ResourceGroup, id.Name, zone, nil)
	if err != nil {
		return nil, driver.Classify(id.String(), op, err)
	}

	return observe(resp.Zone), nil
}

func (d *zoneDriver) Delete(ctx context.Context, cred *acct.Credential, id model.Identity) error {
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

func observe(zone armdns.Zone) *model.Observed {
	obs := &model.Observed{
		ID: driver.Deref(zone.ID),
		Properties: map[string]any{
			"tags": driver.TagsFromARM(zone.Tags),
		},
	}
	if zone.Properties != nil && zone.Properties.NumberOfRecordSets != nil {
		obs.Properties["record_sets"] = *zone.Properties.NumberOfRecordSets
	}
	return obs
}
