// Package acct resolves Azure Resource Manager credential profiles. Profiles
// live in a YAML file keyed by provider and profile name:
//
//	azurerm:
//	    default:
//	        subscription_id: 3287abc8-f98a-c678-3bde-326766fd3617
//	        tenant: ABCDEFAB-1234-ABCD-1234-ABCDEFABCDEF
//	        client_id: ABCDEFAB-1234-ABCD-1234-ABCDEFABCDEF
//	        secret: XXXXXXXXXXXXXXXXXXXXXXXX
//	        cloud_environment: AZURE_PUBLIC_CLOUD
//
// The secret may be omitted from the file and supplied through the
// AZURESTATE_SECRET_<PROFILE> environment variable instead.
package acct

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/cloud"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"gopkg.in/yaml.v3"

	azerrors "github.com/eitrtech/azurestate/pkg/errors"
)

// DefaultProfile is used when a descriptor does not name a profile.
const DefaultProfile = "default"

const secretEnvPrefix = "AZURESTATE_SECRET_"

// Credential is an immutable resolved credential. It is shared by reference
// across concurrent reconciliations for the lifetime of a run.
type Credential struct {
	Profile        string
	SubscriptionID string
	Tenant         string
	ClientID       string

	token        azcore.TokenCredential
	clientOption *arm.ClientOptions
}

// Token returns the token credential used to authenticate ARM clients.
func (c *Credential) Token() azcore.TokenCredential {
	return c.token
}

// ClientOptions returns ARM client options carrying the cloud configuration.
func (c *Credential) ClientOptions() *arm.ClientOptions {
	return c.clientOption
}

type profileEntry struct {
	SubscriptionID   string `yaml:"subscription_id"`
	Tenant           string `yaml:"tenant"`
	ClientID         string `yaml:"client_id"`
	Secret           string `yaml:"secret"`
	CloudEnvironment string `yaml:"cloud_environment"`
}

type profileFile struct {
	AzureRM map[string]profileEntry `yaml:"azurerm"`
}

// Store loads credential profiles once and resolves them on demand. Resolved
// credentials are cached; the cache is safe for concurrent use.
type Store struct {
	profiles map[string]profileEntry

	mu       sync.Mutex
	resolved map[string]*Credential
}

// NewStore parses the profile file at path.
func NewStore(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, azerrors.NewAuthError("", fmt.Errorf("read credential file: %w", err))
	}

	var file profileFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, azerrors.NewAuthError("", fmt.Errorf("parse credential file %s: %w", path, err))
	}

	if len(file.AzureRM) == 0 {
		return nil, azerrors.NewAuthError("", fmt.Errorf("credential file %s declares no azurerm profiles", path))
	}

	return &Store{
		profiles: file.AzureRM,
		resolved: make(map[string]*Credential),
	}, nil
}

// Resolve returns the credential for the named profile, building the
// service-principal token credential on first use. An empty name selects the
// default profile.
func (s *Store) Resolve(profile string) (*Credential, error) {
	if profile == "" {
		profile = DefaultProfile
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if cred, ok := s.resolved[profile]; ok {
		return cred, nil
	}

	entry, ok := s.profiles[profile]
	if !ok {
		return nil, azerrors.NewAuthError(profile, fmt.Errorf("profile not found in credential file"))
	}

	secret := entry.Secret
	if env := os.Getenv(secretEnvPrefix + strings.ToUpper(profile)); env != "" {
		secret = env
	}

	if entry.SubscriptionID == "" || entry.Tenant == "" || entry.ClientID == "" || secret == "" {
		return nil, azerrors.NewAuthError(profile, fmt.Errorf("profile requires subscription_id, tenant, client_id and secret"))
	}

	cloudCfg, err := cloudConfiguration(entry.CloudEnvironment)
	if err != nil {
		return nil, azerrors.NewAuthError(profile, err)
	}

	opts := &azidentity.ClientSecretCredentialOptions{
		ClientOptions: azcore.ClientOptions{Cloud: cloudCfg},
	}
	token, err := azidentity.NewClientSecretCredential(entry.Tenant, entry.ClientID, secret, opts)
	if err != nil {
		return nil, azerrors.NewAuthError(profile, err)
	}

	cred := &Credential{
		Profile:        profile,
		SubscriptionID: entry.SubscriptionID,
		Tenant:         entry.Tenant,
		ClientID:       entry.ClientID,
		token:          token,
		clientOption: &arm.ClientOptions{
			ClientOptions: azcore.ClientOptions{Cloud: cloudCfg},
		},
	}
	s.resolved[profile] = cred
	return cred, nil
}

func cloudConfiguration(name string) (cloud.Configuration, error) {
	switch name {
	case "", "AZURE_PUBLIC_CLOUD":
		return cloud.AzurePublic, nil
	case "AZURE_US_GOV_CLOUD":
		return cloud.AzureGovernment, nil
	case "AZURE_CHINA_CLOUD":
		return cloud.AzureChina, nil
	default:
		return cloud.Configuration{}, fmt.Errorf("unknown cloud_environment %q", name)
	}
}
