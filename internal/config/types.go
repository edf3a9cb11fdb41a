package config

import (
	"gopkg.in/yaml.v3"

	"github.com/eitrtech/azurestate/internal/acct"
	"github.com/eitrtech/azurestate/internal/model"
)

// Config represents a full declarative state document: a named set of
// resource descriptors plus run settings.
type Config struct {
	Version   string     `yaml:"version" validate:"required,semver"`
	Name      string     `yaml:"name" validate:"required,min=1,max=100"`
	Profile   string     `yaml:"profile,omitempty"`
	Settings  Settings   `yaml:"settings,omitempty"`
	Resources []Resource `yaml:"resources" validate:"required,min=1,dive"`
}

// Settings holds global reconciliation parameters.
type Settings struct {
	Parallel   int  `yaml:"parallel,omitempty" validate:"omitempty,min=1,max=32"`
	MaxRetries int  `yaml:"max_retries,omitempty" validate:"omitempty,min=0,max=10"`
	Timeout    int  `yaml:"timeout,omitempty" validate:"omitempty,min=1,max=7200"`
	DryRun     bool `yaml:"dry_run,omitempty"`
	Verbose    bool `yaml:"verbose,omitempty"`
}

// Resource describes the desired state of one cloud resource. Descriptors are
// constructed fresh per run from the YAML document and never mutated.
type Resource struct {
	ID            string            `yaml:"id" validate:"required,resource_id"`
	Kind          string            `yaml:"kind" validate:"required,oneof=resource_group virtual_network storage_account dns_zone virtual_machine"`
	Ensure        string            `yaml:"ensure" validate:"required,oneof=present absent"`
	Name          string            `yaml:"name" validate:"required,min=1,max=90"`
	ResourceGroup string            `yaml:"resource_group,omitempty"`
	Profile       string            `yaml:"profile,omitempty"`
	Tags          map[string]string `yaml:"tags,omitempty"`

	Group          *ResourceGroupSpec  `yaml:"-"`
	VirtualNetwork *VirtualNetworkSpec `yaml:"-"`
	StorageAccount *StorageAccountSpec `yaml:"-"`
	DNSZone        *DNSZoneSpec        `yaml:"-"`
	VirtualMachine *VirtualMachineSpec `yaml:"-"`
}

// ResourceGroupSpec declares a resource group. Location cannot be changed
// after creation and is therefore excluded from drift detection.
type ResourceGroupSpec struct {
	Location  string `yaml:"location" validate:"required"`
	ManagedBy string `yaml:"managed_by,omitempty"`
}

// VirtualNetworkSpec declares a virtual network.
type VirtualNetworkSpec struct {
	Location        string   `yaml:"location" validate:"required"`
	AddressPrefixes []string `yaml:"address_prefixes" validate:"required,min=1,dive,cidr"`
	DNSServers      []string `yaml:"dns_servers,omitempty" validate:"omitempty,dive,ip"`
}

// StorageAccountSpec declares a storage account.
type StorageAccountSpec struct {
	Location   string `yaml:"location" validate:"required"`
	SKU        string `yaml:"sku" validate:"required,oneof=Standard_LRS Standard_GRS Standard_RAGRS Standard_ZRS Premium_LRS Premium_ZRS"`
	Kind       string `yaml:"account_kind,omitempty" validate:"omitempty,oneof=StorageV2 BlobStorage FileStorage BlockBlobStorage"`
	AccessTier string `yaml:"access_tier,omitempty" validate:"omitempty,oneof=Hot Cool"`
	HTTPSOnly  *bool  `yaml:"https_only,omitempty"`
}

// DNSZoneSpec declares a public DNS zone. Zones are global, so the spec
// carries no location.
type DNSZoneSpec struct{}

// VirtualMachineSpec declares a virtual machine. Exactly one of AdminPassword
// and SSHPublicKey must be supplied; validation enforces the exclusivity
// before any remote call.
type VirtualMachineSpec struct {
	Location         string `yaml:"location" validate:"required"`
	Size             string `yaml:"size" validate:"required"`
	Image            string `yaml:"image,omitempty"`
	AdminUsername    string `yaml:"admin_username" validate:"required"`
	AdminPassword    string `yaml:"admin_password,omitempty"`
	SSHPublicKey     string `yaml:"ssh_public_key,omitempty"`
	NetworkInterface string `yaml:"network_interface" validate:"required"`
}

// UnmarshalYAML customises resource decoding to populate the kind-specific
// section without key conflicts between kinds.
func (r *Resource) UnmarshalYAML(value *yaml.Node) error {
	type baseResource struct {
		ID            string            `yaml:"id"`
		Kind          string            `yaml:"kind"`
		Ensure        string            `yaml:"ensure"`
		Name          string            `yaml:"name"`
		ResourceGroup string            `yaml:"resource_group"`
		Profile       string            `yaml:"profile"`
		Tags          map[string]string `yaml:"tags"`
	}

	var base baseResource
	if err := value.Decode(&base); err != nil {
		return err
	}

	r.ID = base.ID
	r.Kind = base.Kind
	r.Ensure = base.Ensure
	if r.Ensure == "" {
		r.Ensure = "present"
	}
	r.Name = base.Name
	r.ResourceGroup = base.ResourceGroup
	r.Profile = base.Profile
	r.Tags = base.Tags

	r.Group = nil
	r.VirtualNetwork = nil
	r.StorageAccount = nil
	r.DNSZone = nil
	r.VirtualMachine = nil

	// Absent descriptors only need the identity, not the full kind section.
	if r.Ensure == "absent" {
		return nil
	}

	switch base.Kind {
	case "resource_group":
		var spec ResourceGroupSpec
		if err := value.Decode(&spec); err != nil {
			return err
		}
		r.Group = &spec
	case "virtual_network":
		var spec VirtualNetworkSpec
		if err := value.Decode(&spec); err != nil {
			return err
		}
		r.VirtualNetwork = &spec
	case "storage_account":
		var spec StorageAccountSpec
		if err := value.Decode(&spec); err != nil {
			return err
		}
		r.StorageAccount = &spec
	case "dns_zone":
		var spec DNSZoneSpec
		if err := value.Decode(&spec); err != nil {
			return err
		}
		r.DNSZone = &spec
	case "virtual_machine":
		var spec VirtualMachineSpec
		if err := value.Decode(&spec); err != nil {
			return err
		}
		r.VirtualMachine = &spec
	}

	return nil
}

// Identity returns the live-resource identity for this descriptor within the
// given subscription.
func (r *Resource) Identity(subscription string) model.Identity {
	return model.Identity{
		Kind:          r.Kind,
		Subscription:  subscription,
		ResourceGroup: r.ResourceGroup,
		Name:          r.Name,
	}
}

// Absent reports whether the descriptor asks for the resource to not exist.
func (r *Resource) Absent() bool {
	return r.Ensure == "absent"
}

// EffectiveProfile resolves the credential profile that will reconcile this
// descriptor: the descriptor's own profile, falling back to the document
// default, falling back to "default". Identity keys must use this rather than
// the raw profile so that an omitted profile and an explicit "default" name
// the same resource.
func (r *Resource) EffectiveProfile(documentProfile string) string {
	if r.Profile != "" {
		return r.Profile
	}
	if documentProfile != "" {
		return documentProfile
	}
	return acct.DefaultProfile
}

// Properties returns the declared, mutable properties used for drift
// detection. Create-only properties such as location are excluded: they are
// consumed by Create but never diffed against observed state.
func (r *Resource) Properties() map[string]any {
	props := make(map[string]any)

	if r.Tags != nil {
		props["tags"] = r.Tags
	}

	switch r.Kind {
	case "resource_group":
		if r.Group != nil && r.Group.ManagedBy != "" {
			props["managed_by"] = r.Group.ManagedBy
		}
	case "virtual_network":
		if r.VirtualNetwork != nil {
			props["address_prefixes"] = r.VirtualNetwork.AddressPrefixes
			if r.VirtualNetwork.DNSServers != nil {
				props["dns_servers"] = r.VirtualNetwork.DNSServers
			}
		}
	case "storage_account":
		if r.StorageAccount != nil {
			props["sku"] = r.StorageAccount.SKU
			if r.StorageAccount.AccessTier != "" {
				props["access_tier"] = r.StorageAccount.AccessTier
			}
			if r.StorageAccount.HTTPSOnly != nil {
				props["https_only"] = *r.StorageAccount.HTTPSOnly
			}
		}
	case "virtual_machine":
		if r.VirtualMachine != nil {
			props["size"] = r.VirtualMachine.Size
		}
	}

	return props
}
